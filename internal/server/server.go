// Package server exposes the dashboard query engine as a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"lol-dashboard/internal/domain"
	"lol-dashboard/internal/query"
)

// errMissingIDs marks a history request without an ids parameter. Mapped
// to 400, unlike malformed ids which are a 422.
var errMissingIDs = errors.New("missing required ids parameter")

// DashboardService is the query surface the HTTP handlers call into.
type DashboardService interface {
	GetTeamLeaderboard(ctx context.Context, f domain.LeaderboardFilters) (domain.Page[domain.TeamRow], error)
	GetPlayerLeaderboard(ctx context.Context, f domain.LeaderboardFilters) (domain.Page[domain.PlayerRow], error)
	GetTopGrinders(ctx context.Context, f domain.LeaderboardFilters) ([]domain.GrinderRow, error)
	GetTopLpGainers(ctx context.Context, f domain.LeaderboardFilters) ([]domain.LpMoverRow, error)
	GetTopLpLosers(ctx context.Context, f domain.LeaderboardFilters) ([]domain.LpMoverRow, error)
	GetBatchTeamHistory(ctx context.Context, f domain.LeaderboardFilters) (map[int64][]domain.HistoryPoint, error)
	GetBatchPlayerHistory(ctx context.Context, f domain.LeaderboardFilters) (map[int64][]domain.HistoryPoint, error)
	GetStreakLeaderboard(ctx context.Context, f domain.LeaderboardFilters) (domain.Page[domain.StreakRow], error)
	InvalidateDashboards(ctx context.Context)
}

// HealthChecker reports readiness of the backing store. *sql.DB satisfies it.
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

type DashboardServer struct {
	svc    DashboardService
	health HealthChecker
	logger zerolog.Logger
}

func NewDashboardServer(svc DashboardService, health HealthChecker, logger zerolog.Logger) *DashboardServer {
	return &DashboardServer{svc: svc, health: health, logger: logger}
}

// Routes registers every dashboard endpoint on a fresh mux.
func (s *DashboardServer) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/dashboard/teams", s.handleTeamLeaderboard)
	mux.HandleFunc("GET /api/dashboard/players", s.handlePlayerLeaderboard)
	mux.HandleFunc("GET /api/dashboard/grinders", s.handleTopGrinders)
	mux.HandleFunc("GET /api/dashboard/lp-gainers", s.handleLpGainers)
	mux.HandleFunc("GET /api/dashboard/lp-losers", s.handleLpLosers)
	mux.HandleFunc("GET /api/dashboard/teams/history", s.handleTeamHistory)
	mux.HandleFunc("GET /api/dashboard/players/history", s.handlePlayerHistory)
	mux.HandleFunc("GET /api/dashboard/streaks", s.handleStreaks)
	mux.HandleFunc("POST /api/dashboard/cache/purge", s.handleCachePurge)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	return mux
}

func (s *DashboardServer) handleTeamLeaderboard(w http.ResponseWriter, r *http.Request) {
	f, err := parseLeaderboardFilters(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	f.ViewMode = domain.ViewModeTeam

	page, err := s.svc.GetTeamLeaderboard(r.Context(), f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, page)
}

func (s *DashboardServer) handlePlayerLeaderboard(w http.ResponseWriter, r *http.Request) {
	f, err := parseLeaderboardFilters(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	f.ViewMode = domain.ViewModePlayer

	page, err := s.svc.GetPlayerLeaderboard(r.Context(), f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, page)
}

func (s *DashboardServer) handleTopGrinders(w http.ResponseWriter, r *http.Request) {
	f, err := parseLeaderboardFilters(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if f.ViewMode, err = parseViewMode(r.URL.Query(), domain.ViewModeTeam); err != nil {
		s.writeError(w, r, err)
		return
	}
	if f.Limit, err = parseLimit(r.URL.Query()); err != nil {
		s.writeError(w, r, err)
		return
	}

	grinders, err := s.svc.GetTopGrinders(r.Context(), f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, dataEnvelope{Data: grinders})
}

func (s *DashboardServer) handleLpGainers(w http.ResponseWriter, r *http.Request) {
	s.handleLpMovers(w, r, s.svc.GetTopLpGainers)
}

func (s *DashboardServer) handleLpLosers(w http.ResponseWriter, r *http.Request) {
	s.handleLpMovers(w, r, s.svc.GetTopLpLosers)
}

func (s *DashboardServer) handleLpMovers(w http.ResponseWriter, r *http.Request,
	fetch func(context.Context, domain.LeaderboardFilters) ([]domain.LpMoverRow, error)) {
	f, err := parseLeaderboardFilters(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if f.ViewMode, err = parseViewMode(r.URL.Query(), domain.ViewModePlayer); err != nil {
		s.writeError(w, r, err)
		return
	}
	if f.Limit, err = parseLimit(r.URL.Query()); err != nil {
		s.writeError(w, r, err)
		return
	}

	movers, err := fetch(r.Context(), f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, dataEnvelope{Data: movers})
}

func (s *DashboardServer) handleTeamHistory(w http.ResponseWriter, r *http.Request) {
	s.handleHistory(w, r, s.svc.GetBatchTeamHistory)
}

func (s *DashboardServer) handlePlayerHistory(w http.ResponseWriter, r *http.Request) {
	s.handleHistory(w, r, s.svc.GetBatchPlayerHistory)
}

func (s *DashboardServer) handleHistory(w http.ResponseWriter, r *http.Request,
	fetch func(context.Context, domain.LeaderboardFilters) (map[int64][]domain.HistoryPoint, error)) {
	f, err := parseLeaderboardFilters(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if f.EntityIDs, err = parseEntityIDs(r); err != nil {
		s.writeError(w, r, err)
		return
	}

	series, err := fetch(r.Context(), f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	// history responses are a bare id -> series map, no envelope
	s.writeJSON(w, http.StatusOK, series)
}

func (s *DashboardServer) handleStreaks(w http.ResponseWriter, r *http.Request) {
	f, err := parseLeaderboardFilters(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	page, err := s.svc.GetStreakLeaderboard(r.Context(), f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, page)
}

func (s *DashboardServer) handleCachePurge(w http.ResponseWriter, r *http.Request) {
	s.svc.InvalidateDashboards(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (s *DashboardServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if s.health != nil {
		if err := s.health.PingContext(r.Context()); err != nil {
			s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type dataEnvelope struct {
	Data any `json:"data"`
}

type errorEnvelope struct {
	Error string `json:"error"`
}

func (s *DashboardServer) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error().Err(err).Msg("failed to encode response")
	}
}

func (s *DashboardServer) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var paramErr *ParamError
	var timeoutErr *query.QueryTimeoutError

	switch {
	case errors.As(err, &paramErr):
		s.writeJSON(w, http.StatusUnprocessableEntity, errorEnvelope{Error: paramErr.Error()})
	case errors.Is(err, errMissingIDs):
		s.writeJSON(w, http.StatusBadRequest, errorEnvelope{Error: err.Error()})
	case errors.As(err, &timeoutErr):
		s.logger.Warn().Str("path", r.URL.Path).Str("operation", timeoutErr.Operation).Msg("query timed out")
		s.writeJSON(w, http.StatusGatewayTimeout, errorEnvelope{Error: timeoutErr.Error()})
	default:
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		s.writeJSON(w, http.StatusInternalServerError, errorEnvelope{Error: "internal server error"})
	}
}
