// Package statusserver exposes the worker's /healthz and /metrics endpoints
// on a small dedicated HTTP server, grounded on the reference org's own
// machine-monitor status server (same ReadTimeout/WriteTimeout/MaxHeaderBytes
// discipline), but routed with stdlib http.ServeMux rather than gorilla/mux:
// two fixed routes don't justify the extra dependency, and the reference
// corpus elsewhere (go/httputils-style servers) uses stdlib routing for
// equally small surfaces.
package statusserver

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Snapshot is the small slice of engine health the status server is allowed
// to read; it never touches the Work aggregate directly.
type Snapshot struct {
	WorkerID    string
	TicksRun    uint64
	LastTickAt  time.Time
	HasTickedOK bool
}

// Server serves /healthz and /metrics on its own goroutine.
type Server struct {
	addr string
	http *http.Server

	mu       sync.RWMutex
	snapshot Snapshot
}

// New returns a Server bound to addr (e.g. ":8181"), not yet listening.
func New(addr string) *Server {
	s := &Server{addr: addr}
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.Handle("/metrics", promhttp.Handler())

	s.http = &http.Server{
		Addr:           addr,
		Handler:        mux,
		ReadTimeout:    5 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}
	return s
}

// UpdateSnapshot replaces the health snapshot the server reports. Call this
// once per tick from the engine's run loop.
func (s *Server) UpdateSnapshot(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snap
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	snap := s.snapshot
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	if !snap.HasTickedOK {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"ok":           snap.HasTickedOK,
		"worker_id":    snap.WorkerID,
		"ticks_run":    snap.TicksRun,
		"last_tick_at": snap.LastTickAt,
	})
}

// ListenAndServe blocks serving until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
