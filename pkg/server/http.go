package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/bastiangx/itemserve/internal/utils"
	"github.com/bastiangx/itemserve/pkg/config"
	"github.com/bastiangx/itemserve/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/heptiolabs/healthcheck"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var errNotReady = errors.New("dictionary not loaded")

// HTTPServer serves completions, statistics, metrics and health probes.
type HTTPServer struct {
	completer *suggest.Completer
	cfg       config.ServerConfig
	metrics   *Metrics
	health    healthcheck.Handler
	mux       *http.ServeMux
}

// NewHTTPServer wires the HTTP routes. metrics may be nil, in which case
// /metrics is not served.
func NewHTTPServer(completer *suggest.Completer, cfg config.ServerConfig, metrics *Metrics) *HTTPServer {
	h := &HTTPServer{
		completer: completer,
		cfg:       cfg,
		metrics:   metrics,
		health:    healthcheck.NewHandler(),
		mux:       http.NewServeMux(),
	}

	h.health.AddLivenessCheck("goroutine-threshold", healthcheck.GoroutineCountCheck(10000))
	h.health.AddReadinessCheck("dictionary", func() error {
		if err := completer.Loader().Err(); err != nil {
			return err
		}
		if !completer.Ready() {
			return errNotReady
		}
		return nil
	})

	h.mux.HandleFunc("/complete", h.handleComplete)
	h.mux.HandleFunc("/stats", h.handleStats)
	h.mux.HandleFunc("/live", h.health.LiveEndpoint)
	h.mux.HandleFunc("/ready", h.health.ReadyEndpoint)
	if metrics != nil {
		h.mux.Handle("/metrics", metrics.Handler())
	}
	return h
}

// Handler returns the root handler.
func (h *HTTPServer) Handler() http.Handler {
	return h.mux
}

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (h *HTTPServer) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h.mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Debugf("HTTP listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

func (h *HTTPServer) handleComplete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	start := time.Now()
	query := r.URL.Query()
	prefix := query.Get("q")

	limit := 0
	if raw := query.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.metrics.Observe(TransportHTTP, OutcomeInvalid, 0, 0)
			writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = n
	}
	if err := utils.ValidateQuery(prefix, h.cfg.MinPrefix, h.cfg.MaxPrefix); err != nil {
		h.metrics.Observe(TransportHTTP, OutcomeInvalid, 0, 0)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.completer.Wait(r.Context()); err != nil {
		log.Debugf("Completion for '%s' not served: %v", prefix, err)
		writeError(w, http.StatusServiceUnavailable, "dictionary unavailable")
		return
	}

	suggestions := toWire(h.completer.Complete(prefix, limit))
	elapsed := time.Since(start)
	h.metrics.Observe(TransportHTTP, outcomeFor(len(suggestions), false), elapsed, len(suggestions))

	writeJSON(w, http.StatusOK, CompletionResponse{
		Suggestions: suggestions,
		Count:       len(suggestions),
		TimeTaken:   elapsed.Microseconds(),
	})
}

func (h *HTTPServer) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatsResponse{Stats: h.completer.Stats()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Errorf("Marshaling response: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, CompletionError{Error: message, Code: status})
}
