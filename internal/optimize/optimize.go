// Package optimize runs the embedded side-car script against a downloaded
// scene file in a detached renderer instance, transitioning it to a state
// ready for dispatch once the script reports success.
package optimize

import (
	_ "embed"
	"os"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
)

//go:embed optimize_blend.py
var sideCarScript []byte

// RendererPath is overridable in tests; production callers leave it as the
// zero value to use the "blender" binary on PATH.
type Optimizer struct {
	RendererPath string
}

// New returns an Optimizer that invokes "blender" on PATH.
func New() *Optimizer {
	return &Optimizer{RendererPath: "blender"}
}

func (o *Optimizer) rendererPath() string {
	if o.RendererPath != "" {
		return o.RendererPath
	}
	return "blender"
}

// Run writes the embedded side-car script to a temp file, spawns the
// renderer in batch headless mode pointed at it, waits synchronously, and
// collects every stdout line that begins with "{". Empty output after
// filtering is treated as failure, matching the reference implementation.
// On success the scene file's permission bits are best-effort set to 0775.
func (o *Optimizer) Run(scenePath string) (string, error) {
	if _, err := os.Stat(scenePath); err != nil {
		return "", errors.Wrapf(err, "optimize: scene file not found at %s", scenePath)
	}

	tmp, err := os.CreateTemp("", "optimize-*.py")
	if err != nil {
		return "", errors.Wrap(err, "optimize: creating temp file for side-car script")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(sideCarScript); err != nil {
		tmp.Close()
		return "", errors.Wrap(err, "optimize: writing side-car script to temp file")
	}
	if err := tmp.Close(); err != nil {
		return "", errors.Wrap(err, "optimize: closing side-car temp file")
	}

	cmd := exec.Command(o.rendererPath(), "-b", scenePath, "--disable-autoexec", "--python", tmp.Name())
	out, err := cmd.Output()
	if err != nil {
		return "", errors.Wrapf(err, "optimize: running %s against %s", o.rendererPath(), scenePath)
	}

	var jsonLines []string
	for _, line := range strings.Split(string(out), "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "{") {
			jsonLines = append(jsonLines, trimmed)
		}
	}
	result := strings.Join(jsonLines, "\n")
	if result == "" {
		return "", errors.Errorf("optimize: side-car produced no JSON output: %s", string(out))
	}

	setPermissive(scenePath)

	return result, nil
}
