// Package server exposes scored catalog snapshots over a read-only HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/euroalt/trustscore/internal/catalog"
	"github.com/euroalt/trustscore/internal/render"
	"github.com/euroalt/trustscore/internal/scoring"
	"github.com/euroalt/trustscore/internal/telemetry"
)

// Loader produces a fresh scored report, typically by reloading the data
// directory and running catalog.ScoreAll.
type Loader func(ctx context.Context) (*catalog.Report, error)

// Server serves the most recent successfully loaded report.
type Server struct {
	load    Loader
	logger  *slog.Logger
	metrics telemetry.Metrics
	current atomic.Pointer[catalog.Report]
}

// New loads the initial report. It fails when the first load fails; later
// reload failures keep the previous report.
func New(ctx context.Context, load Loader, logger *slog.Logger, metrics telemetry.Metrics) (*Server, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{load: load, logger: logger, metrics: metrics}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload replaces the served report. On error the previous report stays.
func (s *Server) Reload(ctx context.Context) error {
	report, err := s.load(ctx)
	s.metrics.RecordReload(ctx, err)
	if err != nil {
		s.logger.Error("reload failed, keeping previous snapshot", "error", err)
		return err
	}
	s.current.Store(report)
	s.logger.Info("snapshot loaded", "entries", len(report.Entries), "data_hash", report.DataHash)
	return nil
}

// Report returns the report currently being served.
func (s *Server) Report() *catalog.Report {
	return s.current.Load()
}

// Router creates the API router.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.healthz)
	r.Get("/meta", s.meta)
	r.Get("/entries", s.listEntries)
	r.Get("/entries/{id}", s.getEntry)
	r.Get("/entries/{id}/explain", s.explainEntry)

	return r
}

// Response wraps API responses.
type Response struct {
	Data  any       `json:"data,omitempty"`
	Meta  *Meta     `json:"meta,omitempty"`
	Error *ErrorMsg `json:"error,omitempty"`
}

// Meta describes the snapshot a response was served from.
type Meta struct {
	Total       int       `json:"total"`
	DataHash    string    `json:"dataHash"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// ErrorMsg represents an error response.
type ErrorMsg struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Summary is the list view of one scored entry.
type Summary struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Score      float64           `json:"score"`
	Status     catalog.Status    `json:"status"`
	BaseClass  scoring.BaseClass `json:"baseClass"`
	CapApplied *float64          `json:"capApplied"`
	Flags      int               `json:"flags"`
}

func (s *Server) snapshotMeta(report *catalog.Report, total int) *Meta {
	return &Meta{Total: total, DataHash: report.DataHash, GeneratedAt: report.GeneratedAt}
}

// healthz handles GET /healthz
func (s *Server) healthz(w http.ResponseWriter, r *http.Request) {
	report := s.Report()
	respondJSON(w, http.StatusOK, Response{
		Data: map[string]string{"status": "ok"},
		Meta: s.snapshotMeta(report, len(report.Entries)),
	})
}

// listEntries handles GET /entries
// Optional filters: class, status. sort=score orders by displayed score.
func (s *Server) listEntries(w http.ResponseWriter, r *http.Request) {
	report := s.Report()
	q := r.URL.Query()

	class := scoring.BaseClass(q.Get("class"))
	if class != "" && !class.Valid() {
		respondError(w, http.StatusBadRequest, "invalid_class", "Unknown base class")
		return
	}
	status := catalog.Status(q.Get("status"))
	if status != "" && !status.Valid() {
		respondError(w, http.StatusBadRequest, "invalid_status", "Unknown status")
		return
	}

	var matched []catalog.Scored
	for _, sc := range report.Entries {
		if class != "" && sc.Result.Breakdown.BaseClass != class {
			continue
		}
		if status != "" && sc.Status != status {
			continue
		}
		matched = append(matched, sc)
	}
	switch q.Get("sort") {
	case "", "catalog":
	case "score":
		catalog.SortByScore(matched)
	default:
		respondError(w, http.StatusBadRequest, "invalid_sort", "sort must be catalog or score")
		return
	}

	out := make([]Summary, 0, len(matched))
	for _, sc := range matched {
		out = append(out, Summary{
			ID:         sc.Entry.ID,
			Name:       sc.Entry.Name,
			Score:      sc.Score,
			Status:     sc.Status,
			BaseClass:  sc.Result.Breakdown.BaseClass,
			CapApplied: sc.Result.Breakdown.CapApplied,
			Flags:      len(sc.Result.Flags),
		})
	}
	respondJSON(w, http.StatusOK, Response{Data: out, Meta: s.snapshotMeta(report, len(out))})
}

// getEntry handles GET /entries/{id}
func (s *Server) getEntry(w http.ResponseWriter, r *http.Request) {
	report := s.Report()
	sc, ok := report.Find(chi.URLParam(r, "id"))
	if !ok {
		respondError(w, http.StatusNotFound, "not_found", "Entry not found")
		return
	}
	respondJSON(w, http.StatusOK, Response{Data: sc, Meta: s.snapshotMeta(report, 1)})
}

// explainEntry handles GET /entries/{id}/explain
func (s *Server) explainEntry(w http.ResponseWriter, r *http.Request) {
	sc, ok := s.Report().Find(chi.URLParam(r, "id"))
	if !ok {
		respondError(w, http.StatusNotFound, "not_found", "Entry not found")
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(render.Explain(sc)))
}

// ScoringModel publishes the constants behind every score.
type ScoringModel struct {
	BaseScores           map[scoring.BaseClass]float64 `json:"baseScores"`
	ClassCaps            map[scoring.BaseClass]float64 `json:"classCaps"`
	DimensionMaxes       map[scoring.Dimension]float64 `json:"dimensionMaxes"`
	AdSurveillanceCap    float64                       `json:"adSurveillanceCap"`
	CumulativePenaltyCap float64                       `json:"cumulativePenaltyCap"`
	RecencyBrackets      []Bracket                     `json:"recencyBrackets"`
}

// Bracket is a recency bracket; MaxYears is null for the open-ended last one.
type Bracket struct {
	MaxYears   *float64 `json:"maxYears"`
	Multiplier float64  `json:"multiplier"`
}

// Model returns the published scoring model.
func Model() ScoringModel {
	m := ScoringModel{
		BaseScores:           scoring.BaseScores,
		ClassCaps:            scoring.ClassCaps,
		DimensionMaxes:       scoring.DimensionMaxes,
		AdSurveillanceCap:    scoring.AdSurveillanceCap,
		CumulativePenaltyCap: scoring.CumulativePenaltyCap,
	}
	for _, b := range scoring.RecencyBrackets {
		br := Bracket{Multiplier: b.Multiplier}
		if !math.IsInf(b.MaxYears, 1) {
			years := b.MaxYears
			br.MaxYears = &years
		}
		m.RecencyBrackets = append(m.RecencyBrackets, br)
	}
	return m
}

// meta handles GET /meta
func (s *Server) meta(w http.ResponseWriter, r *http.Request) {
	report := s.Report()
	respondJSON(w, http.StatusOK, Response{Data: Model(), Meta: s.snapshotMeta(report, len(report.Entries))})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, Response{
		Error: &ErrorMsg{
			Code:    code,
			Message: message,
		},
	})
}

// ListenAndServe serves h on addr until ctx is cancelled, then shuts down
// gracefully.
func ListenAndServe(ctx context.Context, addr string, h http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
