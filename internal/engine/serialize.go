package engine

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/atoav/bender-worker-go/internal/task"
)

// wireTask is the broker payload shape for one Task: just enough to build a
// Renderer command once a scene is available. The reference implementation
// defers this to an external crate; there is no equivalent library in the
// example corpus for a render-task wire format, so this is a small
// hand-rolled JSON envelope, encoded/decoded with the standard library (a
// bespoke domain format has no ecosystem serializer to reach for).
type wireTask struct {
	TaskID   string `json:"task_id"`
	ParentID string `json:"parent_id"`
	Frame    int    `json:"frame"`
}

// DeserializeTask decodes one broker message body into a fresh Task. A
// malformed payload is reported as an error so the caller can ack-and-drop
// it per the poison-message policy.
func DeserializeTask(body []byte) (*task.Task, error) {
	var w wireTask
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, errors.Wrap(err, "engine: decoding task payload")
	}
	if w.TaskID == "" || w.ParentID == "" {
		return nil, errors.New("engine: task payload missing task_id or parent_id")
	}

	t := task.New(w.TaskID, w.ParentID)
	t.Command = task.Command{
		Kind:         task.KindRenderer,
		FrameOutputs: []task.FrameOutput{{Frame: w.Frame}},
	}
	return t, nil
}
