package engine

import (
	"fmt"
	"path/filepath"

	shellquote "github.com/kballard/go-shellquote"

	"github.com/atoav/bender-worker-go/internal/task"
)

// constructRendererCommand materializes a Task's Renderer command string
// from its scene path and output directory: the frame of the first
// FrameOutput slot, rendered to a zero-padded PNG inside outDir. Any further
// slots are left untouched. The argument string is built
// with shellquote.Join so a scene or output path containing whitespace
// survives the later SplitArgs round-trip intact (§9 design note).
func constructRendererCommand(t *task.Task, scenePath, outDir string) error {
	if t.Command.Kind != task.KindRenderer || len(t.Command.FrameOutputs) == 0 {
		return nil
	}

	fo := &t.Command.FrameOutputs[0]
	outputPattern := filepath.Join(outDir, "#####")
	outputPath := filepath.Join(outDir, fmt.Sprintf("%05d.png", fo.Frame))

	args := shellquote.Join(
		"blender",
		"-b", scenePath,
		"-o", outputPattern,
		"-F", "PNG",
		"-f", fmt.Sprintf("%d", fo.Frame),
	)

	t.Command.ScenePath = scenePath
	t.Command.OutputDir = outDir
	t.Command.Args = args
	fo.Path = outputPath
	return nil
}
