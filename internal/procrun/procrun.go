// Package procrun spawns and polls the external renderer process. It never
// blocks waiting for a child to exit; callers poll on their own schedule, and
// background goroutines drain the child's stdout/stderr continuously so a
// chatty renderer never deadlocks on a full pipe buffer.
//
// This mirrors the subprocess lifecycle pattern the reference org's
// foundrybotcustodian/foundrybotrunner packages use (spawn, background
// drain, non-blocking poll via a done channel), generalized from "restart a
// long-lived bot binary" to "run one renderer invocation to completion".
package procrun

import (
	"bufio"
	"context"
	"io"
	"os/exec"
	"sync"

	shellquote "github.com/kballard/go-shellquote"
	"github.com/pkg/errors"
)

// Status is the externally observable state of a spawned process.
type Status int

const (
	// None means no subprocess has been spawned yet.
	None Status = iota
	Running
	Finished
	Errored
)

func (s Status) String() string {
	switch s {
	case None:
		return "none"
	case Running:
		return "running"
	case Finished:
		return "finished"
	case Errored:
		return "errored"
	default:
		return "unknown"
	}
}

// SplitArgs splits a command line with POSIX shell-style quoting, so an
// argument containing whitespace inside quotes survives intact. Whitespace
// splitting (strings.Fields) is not sufficient: see the reference org's own
// exec.ParseCommand, which is explicitly naive and documents that callers
// needing real quoting must look elsewhere — this is that elsewhere.
func SplitArgs(cmdline string) ([]string, error) {
	args, err := shellquote.Split(cmdline)
	if err != nil {
		return nil, errors.Wrap(err, "procrun: splitting command line")
	}
	return args, nil
}

// SpawnOptions customizes a spawned renderer invocation.
type SpawnOptions struct {
	Dir string
	Env []string
	// SetGroup, if non-empty, requests the child run under the named POSIX
	// group (used in Server mode to run as the "bender" group). Applying
	// this is platform-specific and lives in procrun_unix.go/procrun_other.go.
	SetGroup string
}

// Handle is a single in-flight (or completed) subprocess invocation. At most
// one Handle should be live per Work engine at a time, per the single
// in-flight-subprocess invariant.
type Handle struct {
	cmd  *exec.Cmd
	done chan struct{}

	mu       sync.Mutex
	waitErr  error
	stdout   []string
	stderr   []string
	newLines chan string
}

// Spawn starts name with args under opts, piping stdout/stderr and draining
// them continuously on background goroutines so the child never blocks on a
// full pipe. A spawn failure (binary not found, fork failure, etc.) is
// returned as an error and no Handle is produced.
func Spawn(ctx context.Context, name string, args []string, opts SpawnOptions) (*Handle, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	if opts.Dir != "" {
		cmd.Dir = opts.Dir
	}
	if opts.Env != nil {
		cmd.Env = opts.Env
	}
	applyPlatformAttrs(cmd, opts)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, errors.Wrap(err, "procrun: stdout pipe")
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, errors.Wrap(err, "procrun: stderr pipe")
	}

	if err := cmd.Start(); err != nil {
		return nil, errors.Wrapf(err, "procrun: spawning %s", name)
	}

	h := &Handle{
		cmd:      cmd,
		done:     make(chan struct{}),
		newLines: make(chan string, 256),
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go h.drain(&wg, stdout, &h.stdout)
	go h.drain(&wg, stderr, &h.stderr)

	go func() {
		wg.Wait()
		h.waitErr = cmd.Wait()
		close(h.done)
	}()

	return h, nil
}

func (h *Handle) drain(wg *sync.WaitGroup, r io.Reader, dst *[]string) {
	defer wg.Done()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		h.mu.Lock()
		*dst = append(*dst, line)
		h.mu.Unlock()
		select {
		case h.newLines <- line:
		default:
		}
	}
}

// Poll reports the child's current status without blocking. It does no
// reading itself: the goroutines started by Spawn drain stdout/stderr.
func (h *Handle) Poll() Status {
	select {
	case <-h.done:
		if h.waitErr != nil {
			return Errored
		}
		return Finished
	default:
		return Running
	}
}

// DrainedStdoutLines returns every stdout line observed so far, as a
// snapshot copy safe to retain across calls.
func (h *Handle) DrainedStdoutLines() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.stdout))
	copy(out, h.stdout)
	return out
}

// DrainedStderrLines returns every stderr line observed so far.
func (h *Handle) DrainedStderrLines() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.stderr))
	copy(out, h.stderr)
	return out
}

// ErrorMessage returns a short description of why the child failed, valid
// once Poll reports Errored.
func (h *Handle) ErrorMessage() string {
	if h.waitErr == nil {
		return ""
	}
	return h.waitErr.Error()
}

// Pid returns the child's process id.
func (h *Handle) Pid() int {
	if h.cmd.Process == nil {
		return 0
	}
	return h.cmd.Process.Pid
}
