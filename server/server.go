// Package server exposes topology ingest, layout and rendering over HTTP.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/nettap/topoviz/config"
	"github.com/nettap/topoviz/ingest"
	"github.com/nettap/topoviz/models"
	"github.com/nettap/topoviz/physics"
	"github.com/nettap/topoviz/render"
)

// maxSnapshotBody bounds ingest request bodies.
const maxSnapshotBody = 10 << 20 // 10 MB

// Server serves snapshot ingest and layout rendering.
type Server struct {
	cfg       *config.Config
	log       zerolog.Logger
	store     *SnapshotStore
	metrics   *Metrics
	processor *ingest.JSONProcessor
	router    chi.Router
}

// New creates a server with an explicit store and metrics registry.
func New(cfg *config.Config, log zerolog.Logger, store *SnapshotStore, reg prometheus.Registerer) *Server {
	s := &Server{
		cfg:       cfg,
		log:       log,
		store:     store,
		metrics:   NewMetrics(reg),
		processor: ingest.NewJSONProcessor(),
	}
	s.router = s.routes(reg)
	return s
}

// Handler returns the server's HTTP handler, exposed for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes(reg prometheus.Registerer) chi.Router {
	r := chi.NewRouter()
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)
	if gatherer, ok := reg.(prometheus.Gatherer); ok {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/snapshots", func(r chi.Router) {
		r.Post("/", s.handleIngest)
		r.Get("/", s.handleList)
		r.Get("/{id}", s.handleSnapshot)
		r.Get("/{id}/layout", s.handleLayout)
	})
	return r
}

// Start runs the server until the context is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", srv.Addr).Msg("server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.log.Info().Msg("shutting down")
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// requestLogger logs one line per request with method, path, status and
// duration.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleIngest accepts a snapshot export, stores it and returns its ID.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxSnapshotBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "error reading request body")
		return
	}

	snap, err := s.processor.ProcessData(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.store.Put(snap)
	s.metrics.SnapshotsTotal.Inc()
	s.log.Info().
		Str("snapshot", snap.ID).
		Int("devices", len(snap.Devices)).
		Int("connections", len(snap.Connections)).
		Msg("snapshot ingested")

	writeJSON(w, http.StatusCreated, map[string]string{"id": snap.ID})
}

// handleList returns the stored snapshot IDs.
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"snapshots": s.store.IDs()})
}

// handleSnapshot returns a stored snapshot verbatim.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.store.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "snapshot not found")
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// handleLayout computes the layout for a stored snapshot and renders it in
// the requested format. Width and height query parameters override the
// snapshot's viewport.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.store.Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "snapshot not found")
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}
	renderer, err := render.GetRenderer(format)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	options := s.renderOptions(format, snap)
	if v := r.URL.Query().Get("width"); v != "" {
		if width, err := strconv.ParseFloat(v, 64); err == nil && width > 0 {
			options.Width = width
		}
	}
	if v := r.URL.Query().Get("height"); v != "" {
		if height, err := strconv.ParseFloat(v, 64); err == nil && height > 0 {
			options.Height = height
		}
	}

	// Layout works on a shallow copy so concurrent requests with different
	// viewports never race on the stored snapshot.
	working := *snap
	working.SetDimensions(options.Width, options.Height)

	start := time.Now()
	positioned := physics.Run(s.cfg.Layout.NewAlgorithm(), &working)
	s.metrics.LayoutDuration.Observe(time.Since(start).Seconds())
	s.metrics.LayoutDevices.Set(float64(len(positioned)))

	out, err := renderer.Render(positioned, working.Connections, options)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.metrics.RendersTotal.WithLabelValues(format).Inc()

	switch format {
	case "svg":
		w.Header().Set("Content-Type", "image/svg+xml")
	case "dot":
		w.Header().Set("Content-Type", "text/vnd.graphviz")
	default:
		w.Header().Set("Content-Type", "application/json")
	}
	w.Write(out)
}

// renderOptions builds render options from config defaults and the
// snapshot's own viewport.
func (s *Server) renderOptions(format string, snap *models.Snapshot) *render.Options {
	options := render.NewDefaultOptions(format)
	options.Background = s.cfg.Render.Background
	options.NodeRadius = s.cfg.Layout.NodeRadius
	options.FontSize = s.cfg.Render.FontSize
	options.ShowLabels = s.cfg.Render.ShowLabels
	options.MaxLabel = s.cfg.Render.MaxLabel
	if snap.Width > 0 {
		options.Width = snap.Width
	}
	if snap.Height > 0 {
		options.Height = snap.Height
	}
	return options
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
