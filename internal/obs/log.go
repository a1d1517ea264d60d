// Package obs is the worker's observability surface: structured logging and
// Prometheus metrics, constructed once at startup and threaded explicitly
// through the engine rather than reached for as package globals.
package obs

import (
	"go.uber.org/zap"
)

// NewLogger builds the process-wide logger: development mode under local
// (human-readable, debug-level, synchronous) mirrors the reference org's own
// local/prod logging split; production mode emits structured JSON.
func NewLogger(local bool) (*zap.SugaredLogger, error) {
	var cfg zap.Config
	if local {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

// Rubric returns the structured fields for the worker's standard log rubric
// [WORKER][task_id][job_id][command]. Fields are always included whether or
// not a Task/Job/command is known; empty string signals "not applicable" so
// log lines stay uniformly shaped and greppable.
func Rubric(taskID, jobID, command string) []interface{} {
	return []interface{}{"task_id", taskID, "job_id", jobID, "command", command}
}
