package engine

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/atoav/bender-worker-go/internal/now"
	"github.com/atoav/bender-worker-go/internal/procrun"
	"github.com/atoav/bender-worker-go/internal/scene"
	"github.com/atoav/bender-worker-go/internal/task"
	"github.com/atoav/bender-worker-go/internal/transport"
)

// fakeHTTP is an in-memory stand-in for HTTPTransport.
type fakeHTTP struct {
	sceneBytes     []byte
	downloadErr    error
	statusSequence []string
	statusIdx      int
	statusErr      error
	uploadErr      error
	uploadCalls    int
	downloadCalls  int
}

func (f *fakeHTTP) DownloadScene(ctx context.Context, jobID, destPath string) error {
	f.downloadCalls++
	if f.downloadErr != nil {
		return f.downloadErr
	}
	return os.WriteFile(destPath, f.sceneBytes, 0o644)
}

func (f *fakeHTTP) JobStatus(ctx context.Context, jobID string) (string, error) {
	if f.statusErr != nil {
		return "", f.statusErr
	}
	if len(f.statusSequence) == 0 {
		return `{'Job': 'Queued'}`, nil
	}
	idx := f.statusIdx
	if idx >= len(f.statusSequence) {
		idx = len(f.statusSequence) - 1
	}
	f.statusIdx++
	return f.statusSequence[idx], nil
}

func (f *fakeHTTP) UploadFrames(ctx context.Context, jobID, taskID string, files []transport.UploadFile) error {
	f.uploadCalls++
	if f.uploadErr != nil {
		return f.uploadErr
	}
	return nil
}

// fakeOptimizer fails its first failTimes calls, then always succeeds.
type fakeOptimizer struct {
	failTimes int
	calls     int
}

func (o *fakeOptimizer) Run(scenePath string) (string, error) {
	o.calls++
	if o.failTimes > 0 {
		o.failTimes--
		return "", errVal("optimize failed")
	}
	return `{"ok":true}`, nil
}

type errVal string

func (e errVal) Error() string { return string(e) }

// fakeRenderer stands in for the real renderer binary. On success it writes
// the expected output file up front and returns a Handle for a real "true"
// process; otherwise it returns a Handle for a real "false" process.
type fakeRenderer struct {
	outDir      string
	frame       int
	exitSuccess bool
	spawnErr    error
	outputPath  string
}

// Spawn returns spawnErr if set; otherwise it spawns a short-lived real
// process whose exit status follows exitSuccess, so Poll reports Finished or
// Errored once that process exits.
func (r *fakeRenderer) Spawn(ctx context.Context, args []string, opts procrun.SpawnOptions) (*procrun.Handle, error) {
	if r.spawnErr != nil {
		return nil, r.spawnErr
	}
	if err := os.MkdirAll(r.outDir, 0o755); err != nil {
		return nil, err
	}
	if r.exitSuccess {
		_ = os.WriteFile(r.outputPath, []byte("rendered-bytes"), 0o644)
		return procrun.Spawn(ctx, "true", nil, procrun.SpawnOptions{})
	}
	return procrun.Spawn(ctx, "false", nil, procrun.SpawnOptions{})
}

func newTestWork(t *testing.T, mode Mode, http HTTPTransport, workload int) (*Work, string, string) {
	t.Helper()
	blendDir := t.TempDir()
	outDir := t.TempDir()
	w := New(Config{
		WorkerID:         "w1",
		BlendPath:        blendDir,
		OutPath:          outDir,
		DiskLimit:        0,
		Workload:         workload,
		GracePeriod:      0,
		Mode:             mode,
		HeartRateSeconds: 5,
	}, http, nil, nil)
	w.pollSleep = func(time.Duration) {}
	return w, blendDir, outDir
}

func taskPayload(t *testing.T, taskID, parentID string, frame int) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"task_id":   taskID,
		"parent_id": parentID,
		"frame":     frame,
	})
	require.NoError(t, err)
	return body
}

// TestT1_SingleFlight exercises T1: current in Running implies no queued
// Task is also Running, and subprocess implies current is present.
func TestT1_SingleFlight(t *testing.T) {
	http := &fakeHTTP{sceneBytes: make([]byte, 1024)}
	w, _, outDir := newTestWork(t, Independent, http, 1)
	w.optimizer = &fakeOptimizer{}
	outPath := filepath.Join(outDir, "job-1", "00042.png")
	w.renderer = &fakeRenderer{outDir: filepath.Join(outDir, "job-1"), exitSuccess: true, outputPath: outPath}

	broker := transport.NewFakeBroker()
	broker.Enqueue(transport.Delivery{Tag: 7, Body: taskPayload(t, "a1b2c3", "job-1", 42)})

	ctx := now.TimeTravelingContext(time.Unix(0, 0))
	for i := 0; i < 6; i++ {
		require.NoError(t, w.Tick(ctx, broker))
		for _, qt := range w.Tasks() {
			require.NotEqual(t, task.Running, qt.Status, "no queued task may be Running")
		}
		if w.subprocess != nil {
			require.NotNil(t, w.current, "subprocess implies current present")
		}
		ctx.SetTime(ctx.Context.Value(now.ContextKey).(now.NowProvider)().Add(2 * time.Second))
	}
}

// TestS1_HappyPathSingleFrame drives the full S1 scenario end to end.
func TestS1_HappyPathSingleFrame(t *testing.T) {
	http := &fakeHTTP{
		sceneBytes:     make([]byte, 1024),
		statusSequence: []string{`{'Job': 'Queued'}`, `{'Job': 'Queued'}`, `{'Job': 'Finished'}`, `{'Job': 'Finished'}`, `{'Job': 'Finished'}`, `{'Job': 'Finished'}`},
	}
	w, _, outDir := newTestWork(t, Independent, http, 1)
	w.optimizer = &fakeOptimizer{}

	outPath := filepath.Join(outDir, "job-1", "00042.png")
	w.renderer = &fakeRenderer{outDir: filepath.Join(outDir, "job-1"), exitSuccess: true, outputPath: outPath}

	broker := transport.NewFakeBroker()
	broker.Enqueue(transport.Delivery{Tag: 7, Body: taskPayload(t, "a1b2c3", "job-1", 42)})

	ctx := now.TimeTravelingContext(time.Unix(0, 0))
	advance := func(d time.Duration) {
		cur := ctx.Context.Value(now.ContextKey).(now.NowProvider)()
		ctx.SetTime(cur.Add(d))
	}

	// Run enough ticks to move the task through intake -> scene -> optimize
	// -> select -> dispatch -> wait -> finish -> stat -> upload -> reclaim.
	for i := 0; i < 40; i++ {
		require.NoError(t, w.Tick(ctx, broker))
		advance(2 * time.Second)
	}

	require.Equal(t, 1, broker.AckCount(7), "exactly one ack for tag 7")
	require.Empty(t, w.Scenes(), "final scenes map empty after reclamation")
	require.Empty(t, w.Tasks(), "final tasks empty after reclamation")

	var sawStart, sawFinish, sawHeart bool
	for _, ev := range broker.Published() {
		switch ev.Event {
		case transport.EventStart:
			sawStart = true
		case transport.EventFinish:
			sawFinish = true
		case transport.EventHeart:
			sawHeart = true
		}
	}
	require.True(t, sawStart, "expected a start event")
	require.True(t, sawFinish, "expected a finish event")
	require.True(t, sawHeart, "expected at least one heartbeat")
}

// TestS2_TwoTasksSameParent_SingleSceneDownload verifies only one download
// occurs for two Tasks sharing a parent Job.
func TestS2_TwoTasksSameParent_SingleSceneDownload(t *testing.T) {
	http := &fakeHTTP{
		sceneBytes:     make([]byte, 1024),
		statusSequence: []string{`{'Job': 'Finished'}`},
	}
	w, _, _ := newTestWork(t, Independent, http, 2)
	w.optimizer = &fakeOptimizer{}

	broker := transport.NewFakeBroker()
	broker.Enqueue(transport.Delivery{Tag: 1, Body: taskPayload(t, "x1", "j", 1)})
	broker.Enqueue(transport.Delivery{Tag: 2, Body: taskPayload(t, "x2", "j", 2)})

	ctx := now.TimeTravelingContext(time.Unix(0, 0))
	// Run a few full ticks without a fake renderer (the default "blender"
	// renderer never produces a finished frame here) to check the scene is
	// downloaded exactly once despite two Tasks referencing it.
	for i := 0; i < 3; i++ {
		require.NoError(t, w.Tick(ctx, broker))
		cur := ctx.Context.Value(now.ContextKey).(now.NowProvider)()
		ctx.SetTime(cur.Add(2 * time.Second))
	}

	require.Equal(t, 1, http.downloadCalls, "scene for shared parent downloaded exactly once")
	require.Len(t, w.Scenes(), 1)
}

// TestS3_DeserializationGarbage verifies an undecodable payload is acked
// once and produces no Task.
func TestS3_DeserializationGarbage(t *testing.T) {
	w, _, _ := newTestWork(t, Independent, &fakeHTTP{}, 1)
	broker := transport.NewFakeBroker()
	broker.Enqueue(transport.Delivery{Tag: 9, Body: []byte("not json at all")})

	ctx := now.TimeTravelingContext(time.Unix(0, 0))
	require.NoError(t, w.Tick(ctx, broker))

	require.Equal(t, 1, broker.AckCount(9))
	require.Empty(t, w.Tasks())
	require.Nil(t, w.Current())
}

// TestS4_RendererCrash verifies a non-zero exit marks the Task Errored,
// publishes an error event, does not ack, and leaves the scene intact.
func TestS4_RendererCrash(t *testing.T) {
	http := &fakeHTTP{sceneBytes: make([]byte, 1024)}
	w, _, outDir := newTestWork(t, Independent, http, 1)
	w.optimizer = &fakeOptimizer{}
	w.renderer = &fakeRenderer{outDir: filepath.Join(outDir, "job-1"), exitSuccess: false}

	broker := transport.NewFakeBroker()
	broker.Enqueue(transport.Delivery{Tag: 7, Body: taskPayload(t, "a1", "job-1", 42)})

	ctx := now.TimeTravelingContext(time.Unix(0, 0))
	advance := func(d time.Duration) {
		cur := ctx.Context.Value(now.ContextKey).(now.NowProvider)()
		ctx.SetTime(cur.Add(d))
	}
	for i := 0; i < 10; i++ {
		require.NoError(t, w.Tick(ctx, broker))
		advance(2 * time.Second)
	}

	require.Equal(t, 0, broker.AckCount(7), "delivery tag not acked on error path")
	var sawError bool
	for _, ev := range broker.Published() {
		if ev.Event == transport.EventError {
			sawError = true
		}
	}
	require.True(t, sawError, "expected an error event")

	var errored bool
	for _, qt := range w.Tasks() {
		if qt.Status == task.Errored {
			errored = true
		}
	}
	require.True(t, errored, "task should have transitioned to Errored")
	require.Contains(t, w.Scenes(), "job-1", "scene retained, not reclaimed")
}

// TestS5_BackoffOnUpload verifies repeated upload failures register
// on_failure on last_upload before the eventual success.
func TestS5_BackoffOnUpload(t *testing.T) {
	http := &fakeHTTP{uploadErr: errVal("503")}
	w, _, outDir := newTestWork(t, Independent, http, 1)

	outPath := filepath.Join(outDir, "job-1", "00042.png")
	require.NoError(t, os.MkdirAll(filepath.Dir(outPath), 0o755))
	require.NoError(t, os.WriteFile(outPath, []byte("rendered"), 0o644))

	size := int64(8)
	hash := uint64(42)
	tk := task.New("a1", "job-1")
	tk.Status = task.Finished
	tk.Command = task.Command{
		Kind:         task.KindRenderer,
		FrameOutputs: []task.FrameOutput{{Frame: 42, Path: outPath, Size: &size, Hash: &hash}},
	}
	w.tasks = append(w.tasks, tk)

	broker := transport.NewFakeBroker()
	ctx := now.TimeTravelingContext(time.Unix(0, 0))
	advance := func(d time.Duration) {
		cur := ctx.Context.Value(now.ContextKey).(now.NowProvider)()
		ctx.SetTime(cur.Add(d))
	}

	for i := 0; i < 3; i++ {
		w.upload(ctx, broker, ctx.Context.Value(now.ContextKey).(now.NowProvider)())
		advance(200 * time.Second)
	}
	require.Equal(t, 3, w.lastUpload.Failures())
	require.False(t, tk.Command.AllFramesUploaded())

	http.uploadErr = nil
	w.upload(ctx, broker, ctx.Context.Value(now.ContextKey).(now.NowProvider)())
	require.Equal(t, 0, w.lastUpload.Failures())
	require.True(t, tk.Command.AllFramesUploaded())
}

// TestS6_DiskLowSuppressesIntake verifies Intake yields zero Tasks when
// free disk space is below the configured limit, regardless of queue
// contents: the queued message stays on the queue, un-acked.
func TestS6_DiskLowSuppressesIntake(t *testing.T) {
	w, _, _ := newTestWork(t, Independent, &fakeHTTP{}, 1)
	w.cfg.DiskLimit = ^uint64(0) // effectively unreachable free-space floor

	broker := transport.NewFakeBroker()
	broker.Enqueue(transport.Delivery{Tag: 1, Body: taskPayload(t, "a1", "job-1", 1)})

	ctx := now.TimeTravelingContext(time.Unix(0, 0))
	require.NoError(t, w.Tick(ctx, broker))

	require.Empty(t, w.Tasks(), "no task admitted while disk space is below disklimit")
	require.Equal(t, 1, broker.QueueLen(), "message remains on the queue, un-acked")
}

// TestAckExactlyOnce_T4 verifies the Finish path acks exactly once, in the
// same tick as the Finished transition.
func TestAckExactlyOnce_T4(t *testing.T) {
	http := &fakeHTTP{sceneBytes: make([]byte, 1024)}
	w, _, outDir := newTestWork(t, Independent, http, 1)
	w.optimizer = &fakeOptimizer{}
	outPath := filepath.Join(outDir, "job-1", "00042.png")
	w.renderer = &fakeRenderer{outDir: filepath.Join(outDir, "job-1"), exitSuccess: true, outputPath: outPath}

	broker := transport.NewFakeBroker()
	broker.Enqueue(transport.Delivery{Tag: 7, Body: taskPayload(t, "a1", "job-1", 42)})

	ctx := now.TimeTravelingContext(time.Unix(0, 0))
	finishedThisTick := false
	for i := 0; i < 10 && !finishedThisTick; i++ {
		require.NoError(t, w.Tick(ctx, broker))
		for _, qt := range w.Tasks() {
			if qt.Status == task.Finished {
				finishedThisTick = true
			}
		}
		cur := ctx.Context.Value(now.ContextKey).(now.NowProvider)()
		ctx.SetTime(cur.Add(2 * time.Second))
	}
	require.True(t, finishedThisTick)
	require.Equal(t, 1, broker.AckCount(7))
}

// TestDeserializeTask_RoundTrip covers the wire envelope used by Intake.
func TestDeserializeTask_RoundTrip(t *testing.T) {
	body := taskPayload(t, "t1", "p1", 3)
	tk, err := DeserializeTask(body)
	require.NoError(t, err)
	require.Equal(t, "t1", tk.ID)
	require.Equal(t, "p1", tk.ParentID)
	require.Equal(t, task.KindRenderer, tk.Command.Kind)
	require.Len(t, tk.Command.FrameOutputs, 1)
	require.Equal(t, 3, tk.Command.FrameOutputs[0].Frame)
}

func TestDeserializeTask_MissingFieldsIsError(t *testing.T) {
	_, err := DeserializeTask([]byte(`{"frame":1}`))
	require.Error(t, err)
}

// TestReclamationBlockedByErroredUnuploadedTask proves an Errored Task with
// an unuploaded frame permanently blocks reclaim for its parent, even once
// the job status reports Finished and the grace period has elapsed: an
// Errored Task never reached Finished, so it must not be exempted from the
// upload-completeness check the way only-Finished tasks were before.
func TestReclamationBlockedByErroredUnuploadedTask(t *testing.T) {
	http := &fakeHTTP{statusSequence: []string{`{'Job': 'Finished'}`}}
	w, _, outDir := newTestWork(t, Independent, http, 1)

	outPath := filepath.Join(outDir, "job-1", "00042.png")
	require.NoError(t, os.MkdirAll(filepath.Dir(outPath), 0o755))
	require.NoError(t, os.WriteFile(outPath, []byte("rendered"), 0o644))

	size := int64(8)
	hash := uint64(42)
	tk := task.New("a1", "job-1")
	tk.Status = task.Errored
	tk.Command = task.Command{
		Kind:         task.KindRenderer,
		FrameOutputs: []task.FrameOutput{{Frame: 42, Path: outPath, Size: &size, Hash: &hash, Uploaded: false}},
	}
	w.tasks = append(w.tasks, tk)

	f := scene.New(filepath.Join(outDir, "job-1.blend"), time.Unix(0, 0))
	f.Variant = scene.Optimized
	w.scenes["job-1"] = f

	broker := transport.NewFakeBroker()
	ctx := now.TimeTravelingContext(time.Unix(0, 0))
	ctx.SetTime(time.Unix(0, 0).Add(10000 * time.Hour))

	require.NoError(t, w.Tick(ctx, broker))

	require.Contains(t, w.Scenes(), "job-1", "scene must not be reclaimed while an Errored task has unuploaded frames")
	require.NotEmpty(t, w.Tasks(), "task history must not be discarded while unuploaded")
}

// TestT2_TaskStatusMonotone drives a Task through a full happy-path run and
// asserts its Status only ever moves forward through
// Waiting -> Queued -> Running -> Finished, never backward and never through
// Running twice in a row without an intervening terminal state.
func TestT2_TaskStatusMonotone(t *testing.T) {
	http := &fakeHTTP{
		sceneBytes:     make([]byte, 1024),
		statusSequence: []string{`{'Job': 'Queued'}`, `{'Job': 'Finished'}`, `{'Job': 'Finished'}`, `{'Job': 'Finished'}`},
	}
	w, _, outDir := newTestWork(t, Independent, http, 1)
	w.optimizer = &fakeOptimizer{}
	outPath := filepath.Join(outDir, "job-1", "00042.png")
	w.renderer = &fakeRenderer{outDir: filepath.Join(outDir, "job-1"), exitSuccess: true, outputPath: outPath}

	broker := transport.NewFakeBroker()
	broker.Enqueue(transport.Delivery{Tag: 7, Body: taskPayload(t, "a1b2c3", "job-1", 42)})

	ctx := now.TimeTravelingContext(time.Unix(0, 0))
	advance := func(d time.Duration) {
		cur := ctx.Context.Value(now.ContextKey).(now.NowProvider)()
		ctx.SetTime(cur.Add(d))
	}

	order := []task.Status{task.Waiting}
	for i := 0; i < 40; i++ {
		require.NoError(t, w.Tick(ctx, broker))
		for _, qt := range w.Tasks() {
			if qt.ID == "a1b2c3" && qt.Status != order[len(order)-1] {
				order = append(order, qt.Status)
			}
		}
		advance(2 * time.Second)
	}

	seen := map[task.Status]bool{}
	for i, s := range order {
		require.False(t, seen[s], "status %s repeated non-adjacently", s)
		seen[s] = true
		if i > 0 {
			require.Greater(t, int(s), int(order[i-1]), "status must only move forward")
		}
	}
}

// TestT3_SceneVariantMonotone drives a scene through Downloaded -> Optimized
// and asserts it is never observed regressing back to None or Downloaded
// once Optimized, across every tick of a full run (the reclamation phase
// removes the entry entirely rather than regressing its variant).
func TestT3_SceneVariantMonotone(t *testing.T) {
	http := &fakeHTTP{
		sceneBytes:     make([]byte, 1024),
		statusSequence: []string{`{'Job': 'Queued'}`, `{'Job': 'Finished'}`, `{'Job': 'Finished'}`, `{'Job': 'Finished'}`, `{'Job': 'Finished'}`, `{'Job': 'Finished'}`},
	}
	w, _, outDir := newTestWork(t, Independent, http, 1)
	w.optimizer = &fakeOptimizer{}
	outPath := filepath.Join(outDir, "job-1", "00042.png")
	w.renderer = &fakeRenderer{outDir: filepath.Join(outDir, "job-1"), exitSuccess: true, outputPath: outPath}

	broker := transport.NewFakeBroker()
	broker.Enqueue(transport.Delivery{Tag: 7, Body: taskPayload(t, "a1b2c3", "job-1", 42)})

	ctx := now.TimeTravelingContext(time.Unix(0, 0))
	advance := func(d time.Duration) {
		cur := ctx.Context.Value(now.ContextKey).(now.NowProvider)()
		ctx.SetTime(cur.Add(d))
	}

	highest := scene.None
	everSawOptimized := false
	for i := 0; i < 40; i++ {
		require.NoError(t, w.Tick(ctx, broker))
		if f, ok := w.Scenes()["job-1"]; ok {
			require.GreaterOrEqual(t, int(f.Variant), int(highest), "scene variant must not regress")
			highest = f.Variant
			if f.Variant == scene.Optimized {
				everSawOptimized = true
			}
		} else if everSawOptimized {
			// Absent from the map after having been Optimized means
			// reclamation removed it outright, not a regression.
			highest = scene.None
		}
		advance(2 * time.Second)
	}
	require.True(t, everSawOptimized, "scene should have reached Optimized at some point")
}

// TestT7_HeartbeatRate verifies a heartbeat publishes at most once per
// configured HeartRateSeconds window, not once per tick.
func TestT7_HeartbeatRate(t *testing.T) {
	w, _, _ := newTestWork(t, Independent, &fakeHTTP{}, 1)
	w.cfg.HeartRateSeconds = 10

	broker := transport.NewFakeBroker()
	ctx := now.TimeTravelingContext(time.Unix(0, 0))
	advance := func(d time.Duration) {
		cur := ctx.Context.Value(now.ContextKey).(now.NowProvider)()
		ctx.SetTime(cur.Add(d))
	}

	countHeartbeats := func() int {
		n := 0
		for _, ev := range broker.Published() {
			if ev.Event == transport.EventHeart {
				n++
			}
		}
		return n
	}

	// Five ticks spaced 2s apart (10s elapsed) should yield exactly one
	// heartbeat: one at the first tick (lastHeartbeat nil => due), none
	// until the window (10s) has elapsed again.
	for i := 0; i < 5; i++ {
		require.NoError(t, w.Tick(ctx, broker))
		advance(2 * time.Second)
	}
	require.Equal(t, 1, countHeartbeats(), "only one heartbeat within the first window")

	// Advancing past the 10s window should allow exactly one more.
	advance(1 * time.Second)
	require.NoError(t, w.Tick(ctx, broker))
	require.Equal(t, 2, countHeartbeats(), "a second heartbeat once the rate window has elapsed")
}

// TestT8_SceneVariantRoundTrip drives a fresh engine with one Task whose
// parent has no scene at all through enough ticks for the scene to be
// downloaded and optimized, proving the full None -> Downloaded -> Optimized
// round trip with mocked HTTP/optimizer success.
func TestT8_SceneVariantRoundTrip(t *testing.T) {
	http := &fakeHTTP{sceneBytes: make([]byte, 1024)}
	w, _, _ := newTestWork(t, Independent, http, 1)
	w.optimizer = &fakeOptimizer{}

	broker := transport.NewFakeBroker()
	broker.Enqueue(transport.Delivery{Tag: 1, Body: taskPayload(t, "t1", "job-1", 1)})

	ctx := now.TimeTravelingContext(time.Unix(0, 0))
	require.NotContains(t, w.Scenes(), "job-1", "no scene known before any tick")

	for i := 0; i < 5; i++ {
		require.NoError(t, w.Tick(ctx, broker))
		cur := ctx.Context.Value(now.ContextKey).(now.NowProvider)()
		ctx.SetTime(cur.Add(2 * time.Second))
	}

	f, ok := w.Scenes()["job-1"]
	require.True(t, ok, "scene should have been downloaded")
	require.Equal(t, scene.Optimized, f.Variant, "scene should have reached Optimized")
	require.Equal(t, 1, http.downloadCalls, "downloaded exactly once")
}

func TestConstructRendererCommand_QuotesWhitespace(t *testing.T) {
	tk := task.New("t1", "p1")
	tk.Command = task.Command{Kind: task.KindRenderer, FrameOutputs: []task.FrameOutput{{Frame: 5}}}

	err := constructRendererCommand(tk, "/tmp/my scene.blend", "/tmp/out dir")
	require.NoError(t, err)
	require.Contains(t, tk.Command.Args, "'/tmp/my scene.blend'")

	args, err := procrun.SplitArgs(tk.Command.Args)
	require.NoError(t, err)
	require.Contains(t, args, "/tmp/my scene.blend")
}
