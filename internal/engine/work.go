// Package engine implements the Work aggregate: the single-owner state
// machine that drives every Task through intake, scene acquisition,
// optimization, dispatch, stat/hash, upload, reclamation, and heartbeat, one
// bounded tick at a time.
package engine

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/atoav/bender-worker-go/internal/hostprobe"
	"github.com/atoav/bender-worker-go/internal/now"
	"github.com/atoav/bender-worker-go/internal/obs"
	"github.com/atoav/bender-worker-go/internal/optimize"
	"github.com/atoav/bender-worker-go/internal/procrun"
	"github.com/atoav/bender-worker-go/internal/ratelimit"
	"github.com/atoav/bender-worker-go/internal/scene"
	"github.com/atoav/bender-worker-go/internal/task"
	"github.com/atoav/bender-worker-go/internal/transport"
)

// Mode selects whether the worker owns its directories and talks HTTP
// (Independent) or runs co-located with the coordinator on shared storage
// (Server), which disables reclamation.
type Mode int

const (
	Independent Mode = iota
	Server
)

func (m Mode) String() string {
	if m == Server {
		return "server"
	}
	return "independent"
}

// HTTPTransport is the subset of transport.HTTPClient the engine needs,
// narrowed to an interface so tests can substitute a fake.
type HTTPTransport interface {
	DownloadScene(ctx context.Context, jobID, destPath string) error
	JobStatus(ctx context.Context, jobID string) (string, error)
	UploadFrames(ctx context.Context, jobID, taskID string, files []transport.UploadFile) error
}

// Renderer spawns the external renderer process for one Task; narrowed to
// an interface so tests can substitute a fake without touching procrun.
type Renderer interface {
	Spawn(ctx context.Context, args []string, opts procrun.SpawnOptions) (*procrun.Handle, error)
}

type realRenderer struct {
	path string
}

func (r *realRenderer) Spawn(ctx context.Context, args []string, opts procrun.SpawnOptions) (*procrun.Handle, error) {
	return procrun.Spawn(ctx, r.path, args, opts)
}

// Config is the Work engine's immutable-after-construction configuration.
type Config struct {
	WorkerID         string
	BenderURL        string
	BlendPath        string
	OutPath          string
	DiskLimit        uint64
	Workload         int
	GracePeriod      time.Duration
	Mode             Mode
	HeartRateSeconds int64
	RendererPath     string
}

// Work is the single long-lived aggregate: the Task set, the per-Job scene
// map, the single in-flight Task, the single in-flight subprocess, and the
// parent-Job status cache. All interior mutation happens through Tick; there
// is no second thread to contend with, so Work carries no locks.
type Work struct {
	cfg Config

	tasks      []*task.Task
	current    *task.Task
	subprocess *procrun.Handle

	scenes     map[string]*scene.File
	parentJobs map[string]string

	lastHeartbeat *time.Time
	lastStatus    *ratelimit.RateLimiter
	lastDownload  *ratelimit.RateLimiter
	lastUpload    *ratelimit.RateLimiter

	optimizer Optimizer
	renderer  Renderer
	http      HTTPTransport

	logger  *zap.SugaredLogger
	metrics *obs.Metrics

	// pollSleep is overridable in tests so the dispatch-and-wait phase's
	// "sleep up to 1s" doesn't actually block test runs.
	pollSleep func(d time.Duration)
}

// Optimizer narrows optimize.Optimizer to the one method the engine calls.
type Optimizer interface {
	Run(scenePath string) (string, error)
}

// New constructs a fresh Work aggregate. http may be nil in Server mode,
// where the engine never makes HTTP calls.
func New(cfg Config, http HTTPTransport, logger *zap.SugaredLogger, metrics *obs.Metrics) *Work {
	rendererPath := cfg.RendererPath
	if rendererPath == "" {
		rendererPath = "blender"
	}
	return &Work{
		cfg:          cfg,
		scenes:       map[string]*scene.File{},
		parentJobs:   map[string]string{},
		lastStatus:   ratelimit.Default(),
		lastDownload: ratelimit.Default(),
		lastUpload:   ratelimit.Default(),
		optimizer:    optimize.New(),
		renderer:     &realRenderer{path: rendererPath},
		http:         http,
		logger:       logger,
		metrics:      metrics,
		pollSleep:    time.Sleep,
	}
}

// Tasks returns a snapshot of the not-currently-in-flight Task queue, for
// tests and introspection.
func (w *Work) Tasks() []*task.Task { return w.tasks }

// Current returns the single in-flight Task, or nil.
func (w *Work) Current() *task.Task { return w.current }

// Scenes returns the per-Job scene map, for tests and introspection.
func (w *Work) Scenes() map[string]*scene.File { return w.scenes }

func (w *Work) logf(taskID, jobID, command, msg string, args ...interface{}) {
	if w.logger == nil {
		return
	}
	fields := obs.Rubric(taskID, jobID, command)
	w.logger.Infow(fmt.Sprintf(msg, args...), fields...)
}

func (w *Work) errf(taskID, jobID, command string, err error, msg string) {
	if w.logger == nil {
		return
	}
	fields := append(obs.Rubric(taskID, jobID, command), "error", err)
	w.logger.Errorw(msg, fields...)
}

// nonTerminalCount returns the number of Tasks (queued + current) whose
// status is not terminal, per the spec's fix to "non-terminal Tasks" for the
// workload boundary (design note, §9 open question).
func (w *Work) nonTerminalCount() int {
	n := 0
	for _, t := range w.tasks {
		if !t.Status.IsTerminal() {
			n++
		}
	}
	if w.current != nil && !w.current.Status.IsTerminal() {
		n++
	}
	return n
}

func (w *Work) uniqueParentIDs() []string {
	seen := map[string]bool{}
	var ids []string
	add := func(t *task.Task) {
		if t == nil {
			return
		}
		if !seen[t.ParentID] {
			seen[t.ParentID] = true
			ids = append(ids, t.ParentID)
		}
	}
	for _, t := range w.tasks {
		add(t)
	}
	add(w.current)
	return ids
}

func (w *Work) hasSceneFor(parentID string) (*scene.File, bool) {
	f, ok := w.scenes[parentID]
	return f, ok
}

// Tick runs one bounded update pass: intake, job-status refresh, scene
// acquisition, command construction, optimization, selection, dispatch &
// wait, stat & hash, upload, reclamation, heartbeat, idle sleep.
func (w *Work) Tick(ctx context.Context, broker transport.Broker) error {
	n := now.Now(ctx)

	w.intake(ctx, broker, n)
	w.refreshJobStatus(ctx, n)
	w.acquireScenes(ctx, n)
	w.constructCommands()
	w.optimizeScenes()
	w.selectTask(ctx, broker, n)
	if err := w.dispatchAndWait(ctx, broker, n); err != nil {
		return err
	}
	w.statAndHash(ctx, broker)
	w.upload(ctx, broker, n)
	if w.cfg.Mode == Independent {
		w.reclaimScenes(n)
		w.reclaimFrames()
	}
	w.heartbeat(ctx, broker, n)
	w.idleSleepIfEmpty()

	if w.metrics != nil {
		w.metrics.Ticks.Inc()
		w.metrics.InFlightTasks.Set(float64(w.nonTerminalCount()))
	}
	return nil
}

// phase 1: Intake.
func (w *Work) intake(ctx context.Context, broker transport.Broker, n time.Time) {
	if w.nonTerminalCount() >= w.cfg.Workload {
		return
	}
	if !hostprobe.HasEnoughSpace(w.cfg.OutPath, w.cfg.DiskLimit) {
		return
	}

	delivery, ok, err := broker.Intake(ctx)
	if err != nil {
		w.errf("", "", "intake", err, "failed to pull from work queue")
		return
	}
	if !ok {
		return
	}

	t, err := DeserializeTask(delivery.Body)
	if err != nil {
		if ackErr := broker.Ack(ctx, delivery.Tag); ackErr != nil {
			w.errf("", "", "intake", ackErr, "failed to ack undecodable delivery")
		}
		w.errf("", "", "intake", err, "dropped undecodable broker message")
		return
	}

	t.SetData(task.DataDeliveryTagKey, fmt.Sprintf("%d", delivery.Tag))
	t.Status = task.Queued
	w.tasks = append(w.tasks, t)
	w.logf(t.ID, t.ParentID, "intake", "accepted task onto queue")
}

// phase 2: Job-status refresh.
func (w *Work) refreshJobStatus(ctx context.Context, n time.Time) {
	if !w.lastStatus.ShouldRun(n) {
		return
	}

	fresh := map[string]string{}
	failed := false
	for _, id := range w.uniqueParentIDs() {
		var body string
		var err error
		if w.cfg.Mode == Server {
			body, err = w.readServerJobStatus(id)
		} else if w.http != nil {
			body, err = w.http.JobStatus(ctx, id)
		}
		if err != nil {
			failed = true
			w.errf("", id, "status", err, "failed to refresh job status")
			continue
		}
		status, ok := transport.ParseJobStatus(body)
		if !ok {
			// Fragile wire format: any deviation is "unknown", cache
			// left untouched for this id rather than guessed.
			if prev, had := w.parentJobs[id]; had {
				fresh[id] = prev
			}
			continue
		}
		fresh[id] = status
	}

	w.parentJobs = fresh
	if failed {
		w.lastStatus.OnFailure(n)
	} else {
		w.lastStatus.OnSuccess(n)
	}
}

func (w *Work) readServerJobStatus(jobID string) (string, error) {
	path := filepath.Join(w.cfg.BlendPath, jobID, "data.json")
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "engine: reading server-mode job status at %s", path)
	}
	return string(raw), nil
}

// phase 3: Scene acquisition.
func (w *Work) acquireScenes(ctx context.Context, n time.Time) {
	if !w.lastDownload.ShouldRun(n) {
		return
	}

	anyAttempted := false
	anyFailed := false
	for _, id := range w.uniqueParentIDs() {
		if _, ok := w.hasSceneFor(id); ok {
			continue
		}
		anyAttempted = true

		var path string
		var err error
		if w.cfg.Mode == Server {
			path, err = w.discoverServerScene(id)
		} else {
			path, err = w.downloadScene(ctx, id)
		}
		if err != nil {
			anyFailed = true
			w.errf("", id, "scene", err, "failed to acquire scene")
			continue
		}
		w.scenes[id] = scene.New(path, n)
		w.logf("", id, "scene", "downloaded scene to %s", path)
	}

	if anyAttempted {
		if anyFailed {
			w.lastDownload.OnFailure(n)
		} else {
			w.lastDownload.OnSuccess(n)
		}
	}
}

func (w *Work) downloadScene(ctx context.Context, jobID string) (string, error) {
	if w.http == nil {
		return "", errors.New("engine: no HTTP transport configured in independent mode")
	}
	dest := filepath.Join(w.cfg.BlendPath, jobID+".blend")
	if err := w.http.DownloadScene(ctx, jobID, dest); err != nil {
		return "", err
	}
	return dest, nil
}

func (w *Work) discoverServerScene(jobID string) (string, error) {
	dir := filepath.Join(w.cfg.BlendPath, jobID)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", errors.Wrapf(err, "engine: listing server-mode scene dir %s", dir)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if hasBlendPrefix(filepath.Ext(e.Name())) {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return "", errors.Errorf("engine: no blend* file found in %s", dir)
}

func hasBlendPrefix(ext string) bool {
	// ext includes the leading dot, e.g. ".blend", ".blend1".
	trimmed := ext
	if len(trimmed) > 0 && trimmed[0] == '.' {
		trimmed = trimmed[1:]
	}
	return len(trimmed) >= 5 && trimmed[:5] == "blend"
}

// phase 4: Command construction.
func (w *Work) constructCommands() {
	for _, t := range w.tasks {
		if t.Status != task.Queued || t.Command.IsConstructed() {
			continue
		}
		scenePath, ok := t.Data[task.DataBlendfileKey]
		if !ok {
			if f, ok := w.scenes[t.ParentID]; ok {
				scenePath = f.Path
				t.SetData(task.DataBlendfileKey, scenePath)
			} else {
				continue
			}
		}

		outDir := filepath.Join(w.cfg.OutPath, t.ParentID)
		if err := os.MkdirAll(outDir, 0o2775); err != nil {
			w.errf(t.ID, t.ParentID, "construct", err, "failed to create output directory")
			continue
		}

		if err := constructRendererCommand(t, scenePath, outDir); err != nil {
			w.errf(t.ID, t.ParentID, "construct", err, "failed to construct command")
		}
	}
}

// phase 5: Optimization.
func (w *Work) optimizeScenes() {
	for id, f := range w.scenes {
		if f.Variant != scene.Downloaded {
			continue
		}
		if _, err := w.optimizer.Run(f.Path); err != nil {
			w.errf("", id, "optimize", err, "scene optimization failed, retaining Downloaded")
			if w.metrics != nil {
				w.metrics.OptimizeFailures.Inc()
			}
			continue
		}
		f.Variant = scene.Optimized
		w.logf("", id, "optimize", "scene optimized")
	}
}

// phase 6: Selection.
func (w *Work) selectTask(ctx context.Context, broker transport.Broker, n time.Time) {
	if w.current != nil {
		return
	}
	for i, t := range w.tasks {
		if t.Status != task.Queued {
			continue
		}
		f, ok := w.scenes[t.ParentID]
		if !ok || f.Variant != scene.Optimized {
			continue
		}
		if !t.Command.IsConstructed() {
			continue
		}

		w.tasks = append(w.tasks[:i], w.tasks[i+1:]...)
		t.Start()
		w.current = t
		if w.metrics != nil {
			w.metrics.TaskTransitions.WithLabelValues("queued", "running").Inc()
		}
		if err := broker.Publish(ctx, transport.EventStart, w.cfg.WorkerID, nil); err != nil {
			w.errf(t.ID, t.ParentID, "select", err, "failed to publish start event")
		}
		w.logf(t.ID, t.ParentID, "select", "selected task for dispatch")
		return
	}
}

// phase 7: Dispatch & wait.
func (w *Work) dispatchAndWait(ctx context.Context, broker transport.Broker, n time.Time) error {
	switch {
	case w.current != nil && w.subprocess == nil:
		return w.dispatch(ctx, broker)
	case w.current != nil && w.subprocess != nil:
		return w.wait(ctx, broker)
	default:
		return nil
	}
}

func (w *Work) dispatch(ctx context.Context, broker transport.Broker) error {
	if w.current.Command.Kind != task.KindRenderer {
		return nil
	}
	args, err := procrun.SplitArgs(w.current.Command.Args)
	if err != nil {
		return w.errorCurrent(ctx, broker, err)
	}

	var opts procrun.SpawnOptions
	if w.cfg.Mode == Server {
		opts.SetGroup = "bender"
	}

	h, err := w.renderer.Spawn(ctx, args, opts)
	if err != nil {
		return w.errorCurrent(ctx, broker, err)
	}
	w.subprocess = h
	w.logf(w.current.ID, w.current.ParentID, "dispatch", "spawned renderer pid=%d", h.Pid())
	return nil
}

func (w *Work) errorCurrent(ctx context.Context, broker transport.Broker, cause error) error {
	w.errf(w.current.ID, w.current.ParentID, "dispatch", cause, "subprocess spawn failed")
	w.current.Error()
	if w.metrics != nil {
		w.metrics.TaskTransitions.WithLabelValues("running", "errored").Inc()
	}
	if err := broker.Publish(ctx, transport.EventError, w.cfg.WorkerID, nil); err != nil {
		w.errf(w.current.ID, w.current.ParentID, "dispatch", err, "failed to publish error event")
	}
	w.tasks = append(w.tasks, w.current)
	w.current = nil
	w.subprocess = nil
	return nil
}

func (w *Work) wait(ctx context.Context, broker transport.Broker) error {
	w.pollSleep(1 * time.Second)
	status := w.subprocess.Poll()

	switch status {
	case procrun.Finished:
		return w.finishCurrent(ctx, broker)
	case procrun.Errored:
		return w.errorCurrentRunning(ctx, broker)
	default:
		// still running; procrun's background goroutines drain
		// stdout/stderr continuously.
		_ = w.subprocess.DrainedStdoutLines()
		return nil
	}
}

func (w *Work) errorCurrentRunning(ctx context.Context, broker transport.Broker) error {
	w.errf(w.current.ID, w.current.ParentID, "wait", errors.New(w.subprocess.ErrorMessage()), "renderer exited non-zero")
	w.current.Error()
	if w.metrics != nil {
		w.metrics.TaskTransitions.WithLabelValues("running", "errored").Inc()
	}
	if err := broker.Publish(ctx, transport.EventError, w.cfg.WorkerID, nil); err != nil {
		w.errf(w.current.ID, w.current.ParentID, "wait", err, "failed to publish error event")
	}
	w.tasks = append(w.tasks, w.current)
	w.current = nil
	w.subprocess = nil
	return nil
}

// phase 8: Finish path.
func (w *Work) finishCurrent(ctx context.Context, broker transport.Broker) error {
	n := now.Now(ctx)
	t := w.current
	t.Finish()
	if w.metrics != nil {
		w.metrics.TaskTransitions.WithLabelValues("running", "finished").Inc()
	}
	w.tasks = append(w.tasks, t)

	if raw, ok := t.Data[task.DataDeliveryTagKey]; ok {
		var tag uint64
		if _, err := fmt.Sscanf(raw, "%d", &tag); err == nil {
			if err := broker.Ack(ctx, tag); err != nil {
				w.errf(t.ID, t.ParentID, "finish", err, "failed to ack delivery tag")
			}
		}
	}

	if err := broker.Publish(ctx, transport.EventFinish, w.cfg.WorkerID, nil); err != nil {
		w.errf(t.ID, t.ParentID, "finish", err, "failed to publish finish event")
	}

	if f, ok := w.scenes[t.ParentID]; ok {
		f.RecordFrame(n)
	}

	w.current = nil
	w.subprocess = nil
	w.logf(t.ID, t.ParentID, "finish", "task finished")
	return nil
}

// phase 9: Stat & hash.
func (w *Work) statAndHash(ctx context.Context, broker transport.Broker) {
	for _, t := range w.tasks {
		if t.Status != task.Finished || t.Command.Kind != task.KindRenderer {
			continue
		}
		changed := false
		for i := range t.Command.FrameOutputs {
			fo := &t.Command.FrameOutputs[i]
			if fo.Size == nil {
				if size, err := statSize(fo.Path); err == nil {
					fo.Size = &size
					changed = true
				} else {
					w.errf(t.ID, t.ParentID, "stat", err, "failed to stat frame output")
				}
			}
		}
		for i := range t.Command.FrameOutputs {
			fo := &t.Command.FrameOutputs[i]
			if fo.Hash == nil {
				if hash, err := hashFile(fo.Path); err == nil {
					fo.Hash = &hash
					changed = true
				} else {
					w.errf(t.ID, t.ParentID, "stat", err, "failed to hash frame output")
				}
			}
		}
		if changed && t.Command.AllFramesHaveSizeAndHash() {
			if err := broker.Publish(ctx, transport.EventStat, w.cfg.WorkerID, nil); err != nil {
				w.errf(t.ID, t.ParentID, "stat", err, "failed to publish stat event")
			}
		}
	}
}

func statSize(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, errors.Wrapf(err, "engine: statting frame output %s", path)
	}
	return info.Size(), nil
}

func hashFile(path string) (uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, errors.Wrapf(err, "engine: opening frame output %s for hashing", path)
	}
	defer f.Close()

	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return 0, errors.Wrapf(err, "engine: hashing frame output %s", path)
	}
	return h.Sum64(), nil
}

// phase 10: Upload.
func (w *Work) upload(ctx context.Context, broker transport.Broker, n time.Time) {
	if !w.lastUpload.ShouldRun(n) {
		return
	}

	attempted := false
	failed := false
	for _, t := range w.tasks {
		if t.Status != task.Finished || t.Command.Kind != task.KindRenderer {
			continue
		}
		if !t.Command.AllFramesHaveSizeAndHash() || t.Command.AllFramesUploaded() {
			continue
		}
		attempted = true

		if w.cfg.Mode == Server {
			for i := range t.Command.FrameOutputs {
				t.Command.FrameOutputs[i].Uploaded = true
			}
			continue
		}

		if w.http == nil {
			failed = true
			continue
		}
		var files []transport.UploadFile
		for i, fo := range t.Command.FrameOutputs {
			files = append(files, transport.UploadFile{FieldName: fmt.Sprintf("frame%d", i), FilePath: fo.Path})
		}
		if err := w.http.UploadFrames(ctx, t.ParentID, t.ID, files); err != nil {
			failed = true
			if w.metrics != nil {
				w.metrics.UploadRetries.Inc()
			}
			w.errf(t.ID, t.ParentID, "upload", err, "frame upload failed")
			continue
		}
		for i := range t.Command.FrameOutputs {
			t.Command.FrameOutputs[i].Uploaded = true
		}
		if err := broker.Publish(ctx, transport.EventStat, w.cfg.WorkerID, nil); err != nil {
			w.errf(t.ID, t.ParentID, "upload", err, "failed to publish post-upload stat event")
		}
		w.logf(t.ID, t.ParentID, "upload", "uploaded frames")
	}

	if attempted {
		if failed {
			w.lastUpload.OnFailure(n)
		} else {
			w.lastUpload.OnSuccess(n)
		}
	}
}

// phase 11: Scene reclamation (Independent mode only).
func (w *Work) reclaimScenes(n time.Time) {
	for id, f := range w.scenes {
		if f.Variant != scene.Optimized {
			continue
		}
		if !w.allLocalTasksTerminalAndUploaded(id) {
			continue
		}
		if !f.IsPastGrace(n, w.cfg.GracePeriod) {
			continue
		}
		status, ok := w.parentJobs[id]
		if !ok || !containsFinished(status) {
			continue
		}

		if err := os.Remove(f.Path); err != nil && !os.IsNotExist(err) {
			w.errf("", id, "reclaim", err, "failed to remove scene file")
			continue
		}
		_ = os.Remove(f.Path + "~")
		outDir := filepath.Join(w.cfg.OutPath, id)
		if err := os.RemoveAll(outDir); err != nil {
			w.errf("", id, "reclaim", err, "failed to remove output directory")
		}

		remaining := w.tasks[:0]
		for _, t := range w.tasks {
			if t.ParentID != id {
				remaining = append(remaining, t)
			}
		}
		w.tasks = remaining
		delete(w.scenes, id)
		if w.metrics != nil {
			w.metrics.ReclamationEvents.Inc()
		}
		w.logf("", id, "reclaim", "reclaimed scene and output directory")
	}
}

func containsFinished(status string) bool {
	return strings.Contains(status, "Finished")
}

func (w *Work) allLocalTasksTerminalAndUploaded(parentID string) bool {
	found := false
	for _, t := range w.tasks {
		if t.ParentID != parentID {
			continue
		}
		found = true
		if !t.Status.IsTerminal() {
			return false
		}
		if t.Command.Kind == task.KindRenderer && !t.Command.AllFramesUploaded() {
			return false
		}
	}
	return found
}

// phase 12: Frame reclamation (Independent mode only).
func (w *Work) reclaimFrames() {
	for _, t := range w.tasks {
		if t.Status != task.Finished || t.Command.Kind != task.KindRenderer {
			continue
		}
		if !t.Command.AllFramesUploaded() {
			continue
		}
		for _, fo := range t.Command.FrameOutputs {
			if err := os.Remove(fo.Path); err != nil && !os.IsNotExist(err) {
				w.errf(t.ID, t.ParentID, "reclaim-frames", err, "failed to remove frame output")
			}
		}
	}
}

// phase 13: Heartbeat.
func (w *Work) heartbeat(ctx context.Context, broker transport.Broker, n time.Time) {
	due := w.lastHeartbeat == nil || n.Sub(*w.lastHeartbeat) >= time.Duration(w.cfg.HeartRateSeconds)*time.Second
	if !due {
		return
	}
	if err := broker.Publish(ctx, transport.EventHeart, w.cfg.WorkerID, nil); err != nil {
		w.errf("", "", "heartbeat", err, "failed to publish heartbeat")
		return
	}
	w.lastHeartbeat = &n
	if w.metrics != nil {
		w.metrics.Heartbeats.Inc()
	}
}

// phase 14: Idle sleep.
func (w *Work) idleSleepIfEmpty() {
	if len(w.tasks) == 0 && w.current == nil {
		w.pollSleep(2 * time.Second)
	}
}
