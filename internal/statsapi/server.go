package statsapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

// Purger removes readings older than a cutoff date
type Purger interface {
	Purge(ctx context.Context, beforeDate string) (int64, error)
}

// Server exposes the stats service over HTTP JSON. Handlers report what the
// data supports and nothing more: an empty store yields empty aggregates,
// never fabricated numbers.
type Server struct {
	svc    *Service
	purger Purger
	logger *slog.Logger
}

// NewServer creates the HTTP layer over a stats service. purger may be nil
// when the admin surface is not wanted.
func NewServer(svc *Service, purger Purger, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{svc: svc, purger: purger, logger: logger}
}

// Routes builds the request mux
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/stats/hourly", s.handleHourly)
	mux.HandleFunc("GET /api/stats/extended", s.handleExtended)
	mux.HandleFunc("GET /api/stats/month", s.handleMonth)
	mux.HandleFunc("GET /api/stats/season", s.handleSeason)
	mux.HandleFunc("GET /api/stats/week-ago", s.handleWeekAgo)
	mux.HandleFunc("POST /api/admin/purge", s.handlePurge)
	return mux
}

func (s *Server) handleHourly(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.HourlyStats(r.Context())
	if err != nil {
		s.fail(w, "hourly stats", err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleExtended(w http.ResponseWriter, r *http.Request) {
	stats, err := s.svc.ExtendedStats(r.Context())
	if err != nil {
		s.fail(w, "extended stats", err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleMonth(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	year, err := queryInt(r, "year", now.Year())
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid year")
		return
	}
	month, err := queryInt(r, "month", int(now.Month()))
	if err != nil || month < 1 || month > 12 {
		s.writeError(w, http.StatusBadRequest, "invalid month")
		return
	}

	summary, err := s.svc.MonthSummary(r.Context(), year, month)
	if err != nil {
		s.fail(w, "month summary", err)
		return
	}
	s.writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleSeason(w http.ResponseWriter, r *http.Request) {
	year, err := queryInt(r, "year", 0)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid year")
		return
	}

	cmp, err := s.svc.NewYearEffect(r.Context(), year)
	if err != nil {
		s.fail(w, "season comparison", err)
		return
	}
	s.writeJSON(w, http.StatusOK, cmp)
}

func (s *Server) handleWeekAgo(w http.ResponseWriter, r *http.Request) {
	reading, err := s.svc.WeekAgoReading(r.Context())
	if err != nil {
		s.fail(w, "week-ago reading", err)
		return
	}

	resp := map[string]interface{}{"has_data": reading != nil}
	if reading != nil {
		resp["reading"] = reading
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePurge(w http.ResponseWriter, r *http.Request) {
	if s.purger == nil {
		s.writeError(w, http.StatusNotFound, "purge not available")
		return
	}

	before := r.URL.Query().Get("before")
	if _, err := time.Parse("2006-01-02", before); err != nil {
		s.writeError(w, http.StatusBadRequest, "before must be YYYY-MM-DD")
		return
	}

	deleted, err := s.purger.Purge(r.Context(), before)
	if err != nil {
		s.fail(w, "purge", err)
		return
	}

	s.svc.InvalidateRolling(r.Context())
	s.logger.Info("Admin purge completed", "before", before, "deleted", deleted)
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"deleted": deleted})
}

func (s *Server) fail(w http.ResponseWriter, what string, err error) {
	s.logger.Error("Request failed", "operation", what, "error", err)
	s.writeError(w, http.StatusInternalServerError, "internal error")
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
