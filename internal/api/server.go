package api

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"apexgo/pkg/logging"
	"apexgo/pkg/version"
)

// Handlers groups the endpoint handlers NewServer mounts. Stream may be nil.
type Handlers struct {
	Snapshot *SnapshotHandler
	Control  *ControlHandler
	Stats    *StatsHandler
	Stream   *Stream
}

// NewServer creates and configures the HTTP server. shutdown is called,
// after the response is flushed, when a client asks the process to exit.
func NewServer(addr string, h Handlers, shutdown func()) *http.Server {
	mux := http.NewServeMux()

	// 1. Health and version
	mux.HandleFunc("GET /health", handleHealth)
	mux.HandleFunc("GET /api/version", handleVersion)

	// 2. Dashboard
	mux.Handle("GET /api/snapshot", h.Snapshot)
	if h.Stream != nil {
		mux.Handle("GET /ws", h.Stream)
	}

	// 3. Lifecycle
	mux.HandleFunc("GET /api/status", h.Control.HandleStatus)
	mux.HandleFunc("GET /api/scenarios", h.Control.HandleScenarios)
	mux.HandleFunc("POST /api/control/start", h.Control.HandleStart)
	mux.HandleFunc("POST /api/control/stop", h.Control.HandleStop)
	mux.HandleFunc("POST /api/control/scenario/{name}", h.Control.HandleScenario)

	// 4. Diagnostics
	mux.Handle("GET /api/stats", h.Stats)
	mux.HandleFunc("GET /api/log/latest", handleLatestLog)

	// 5. Shutdown
	mux.HandleFunc("POST /api/shutdown", func(w http.ResponseWriter, r *http.Request) {
		slog.Info("Graceful shutdown initiated via API")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("Shutting down...")); err != nil {
			slog.Error("Failed to write shutdown response", "error", err)
		}
		go func() {
			time.Sleep(100 * time.Millisecond)
			shutdown()
		}()
	})

	return &http.Server{
		Addr:        addr,
		Handler:     logRequests(mux),
		ReadTimeout: 15 * time.Second,
		// No WriteTimeout: it would cut long-lived /ws connections.
		IdleTimeout: 60 * time.Second,
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Hijack passes the connection through for /ws upgrades.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

// logRequests writes one line per request to the request log.
func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logging.RequestLogger.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
			"remote", r.RemoteAddr,
		)
	})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		slog.Error("Failed to write health response", "error", err)
	}
}

func handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if _, err := fmt.Fprintf(w, `{"version": "%s"}`, version.Version); err != nil {
		slog.Error("Failed to write version response", "error", err)
	}
}
