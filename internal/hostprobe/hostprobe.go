// Package hostprobe answers the two startup/runtime questions the engine
// asks of the host machine: is there enough free disk space to accept new
// work, and is the renderer binary actually on PATH. Grounded on the
// reference org's standalone host-interrogation package, narrowed from full
// CPU/GPU/OS fingerprinting down to the two facts this worker actually
// needs.
package hostprobe

import (
	"os/exec"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/disk"
)

// FreeBytes returns the number of free bytes on the filesystem containing
// path.
func FreeBytes(path string) (uint64, error) {
	usage, err := disk.Usage(path)
	if err != nil {
		return 0, errors.Wrapf(err, "hostprobe: statting free space at %s", path)
	}
	return usage.Free, nil
}

// HasEnoughSpace reports whether path has at least limit free bytes. Errors
// probing disk usage are treated as "not enough space", erring towards
// suppressing Intake rather than risking disk exhaustion.
func HasEnoughSpace(path string, limit uint64) bool {
	free, err := FreeBytes(path)
	if err != nil {
		return false
	}
	return free >= limit
}

// FreeSpaceSummary renders free space at path in human-readable form for
// logging, e.g. "12 GB".
func FreeSpaceSummary(path string) string {
	free, err := FreeBytes(path)
	if err != nil {
		return "unknown"
	}
	return humanize.Bytes(free)
}

// RendererOnPath reports whether name (typically "blender") resolves to an
// executable on PATH.
func RendererOnPath(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
