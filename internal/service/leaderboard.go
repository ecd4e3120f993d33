package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"lol-dashboard/internal/cache"
	"lol-dashboard/internal/constants"
	"lol-dashboard/internal/domain"
	"lol-dashboard/internal/query"
	"lol-dashboard/internal/rank"
	"lol-dashboard/internal/repository"
)

// LeaderboardStore is the aggregation query surface the service orchestrates.
type LeaderboardStore interface {
	TeamLeaderboard(ctx context.Context, f domain.LeaderboardFilters) ([]domain.TeamRow, error)
	TeamLeaderboardCount(ctx context.Context, f domain.LeaderboardFilters) (int, error)
	TeamPeriodStats(ctx context.Context, f domain.LeaderboardFilters) (map[int64]repository.EntityPeriodStat, error)
	PlayerLeaderboard(ctx context.Context, f domain.LeaderboardFilters) ([]domain.PlayerRow, error)
	PlayerLeaderboardCount(ctx context.Context, f domain.LeaderboardFilters) (int, error)
	PlayerPeriodStats(ctx context.Context, f domain.LeaderboardFilters) (map[int64]repository.EntityPeriodStat, error)
	TopGrinders(ctx context.Context, f domain.LeaderboardFilters) ([]domain.GrinderRow, error)
	TopLpGainers(ctx context.Context, f domain.LeaderboardFilters) ([]domain.LpMoverRow, error)
	TopLpLosers(ctx context.Context, f domain.LeaderboardFilters) ([]domain.LpMoverRow, error)
	BatchTeamHistory(ctx context.Context, f domain.LeaderboardFilters) (map[int64][]domain.HistoryPoint, error)
	BatchPlayerHistory(ctx context.Context, f domain.LeaderboardFilters) (map[int64][]domain.HistoryPoint, error)
	StreakLeaderboard(ctx context.Context, f domain.LeaderboardFilters) ([]domain.StreakRow, error)
	StreakLeaderboardCount(ctx context.Context, f domain.LeaderboardFilters) (int, error)
}

type LeaderboardService struct {
	store  LeaderboardStore
	cache  *cache.Cache
	logger zerolog.Logger
}

func NewLeaderboardService(store LeaderboardStore, c *cache.Cache, logger zerolog.Logger) *LeaderboardService {
	return &LeaderboardService{store: store, cache: c, logger: logger}
}

// filterParams canonicalizes the filter set for cache keying. Zero values are
// omitted so "filter not supplied" and "filter empty" key identically.
func filterParams(f domain.LeaderboardFilters) map[string]any {
	params := map[string]any{
		"startDate": f.StartDate.Format("2006-01-02"),
		"endDate":   f.EndDate.Format("2006-01-02"),
		"leagues":   f.Leagues,
		"roles":     f.Roles,
		"search":    f.Search,
		"sort":      f.Sort,
		"viewMode":  f.ViewMode,
	}
	if f.MinGames > 0 {
		params["minGames"] = f.MinGames
	}
	if f.Page > 0 {
		params["page"] = f.Page
	}
	if f.PerPage > 0 {
		params["perPage"] = f.PerPage
	}
	if f.Limit > 0 {
		params["limit"] = f.Limit
	}
	if len(f.EntityIDs) > 0 {
		params["entityIds"] = f.EntityIDs
	}
	return params
}

// previousWindow shifts the filter window back by its own span, adjacent and
// non-overlapping, for period-over-period deltas.
func previousWindow(f domain.LeaderboardFilters) domain.LeaderboardFilters {
	span := f.EndDate.Sub(f.StartDate) + 24*time.Hour
	prev := f
	prev.StartDate = f.StartDate.Add(-span)
	prev.EndDate = f.EndDate.Add(-span)
	return prev
}

func pageMeta(total, page, perPage int) domain.PageMeta {
	lastPage := (total + perPage - 1) / perPage
	if lastPage < 1 {
		lastPage = 1
	}
	return domain.PageMeta{
		Total:       total,
		PerPage:     perPage,
		CurrentPage: page,
		LastPage:    lastPage,
	}
}

// GetTeamLeaderboard returns one page of team rows with embedded players and
// accounts, period-over-period deltas and stable ranking.
func (s *LeaderboardService) GetTeamLeaderboard(ctx context.Context, f domain.LeaderboardFilters) (domain.Page[domain.TeamRow], error) {
	key := cache.BuildKey("teams", filterParams(f))

	return cache.GetOrSet(ctx, s.cache, key, constants.LeaderboardCacheTTL, func(ctx context.Context) (domain.Page[domain.TeamRow], error) {
		return query.ExecuteWithTimeout(ctx, "getTeamLeaderboard", constants.TeamLeaderboardTimeout, func(ctx context.Context) (domain.Page[domain.TeamRow], error) {
			var (
				rows  []domain.TeamRow
				total int
				prev  map[int64]repository.EntityPeriodStat
			)

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() (err error) {
				rows, err = s.store.TeamLeaderboard(gctx, f)
				return err
			})
			g.Go(func() (err error) {
				total, err = s.store.TeamLeaderboardCount(gctx, f)
				return err
			})
			g.Go(func() (err error) {
				prev, err = s.store.TeamPeriodStats(gctx, previousWindow(f))
				return err
			})
			if err := g.Wait(); err != nil {
				s.logger.Error().Err(err).Msg("team leaderboard failed")
				return domain.Page[domain.TeamRow]{}, err
			}

			offset := (f.Page - 1) * f.PerPage
			for i := range rows {
				row := &rows[i]
				row.Rank = offset + i + 1
				for j := range row.Players {
					rank.SortAccounts(row.Players[j].Accounts)
				}
				rank.SortPlayersByRole(row.Players)
				row.TotalLP = rank.TeamTotalLP(row.Players)
				if p, ok := prev[row.TeamID]; ok {
					row.GamesChange = row.Games - p.Games
					row.LPChange = row.TotalLP - p.TotalLP
				} else {
					row.GamesChange = row.Games
					row.LPChange = row.TotalLP
				}
			}

			s.logger.Info().Int("teams", len(rows)).Int("total", total).Msg("team leaderboard computed")
			return domain.Page[domain.TeamRow]{Data: rows, Meta: pageMeta(total, f.Page, f.PerPage)}, nil
		})
	})
}

// GetPlayerLeaderboard returns one page of player rows with embedded
// accounts and deltas.
func (s *LeaderboardService) GetPlayerLeaderboard(ctx context.Context, f domain.LeaderboardFilters) (domain.Page[domain.PlayerRow], error) {
	key := cache.BuildKey("players", filterParams(f))

	return cache.GetOrSet(ctx, s.cache, key, constants.LeaderboardCacheTTL, func(ctx context.Context) (domain.Page[domain.PlayerRow], error) {
		return query.ExecuteWithTimeout(ctx, "getPlayerLeaderboard", constants.PlayerLeaderboardTimeout, func(ctx context.Context) (domain.Page[domain.PlayerRow], error) {
			var (
				rows  []domain.PlayerRow
				total int
				prev  map[int64]repository.EntityPeriodStat
			)

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() (err error) {
				rows, err = s.store.PlayerLeaderboard(gctx, f)
				return err
			})
			g.Go(func() (err error) {
				total, err = s.store.PlayerLeaderboardCount(gctx, f)
				return err
			})
			g.Go(func() (err error) {
				prev, err = s.store.PlayerPeriodStats(gctx, previousWindow(f))
				return err
			})
			if err := g.Wait(); err != nil {
				s.logger.Error().Err(err).Msg("player leaderboard failed")
				return domain.Page[domain.PlayerRow]{}, err
			}

			offset := (f.Page - 1) * f.PerPage
			for i := range rows {
				row := &rows[i]
				row.Rank = offset + i + 1
				rank.SortAccounts(row.Accounts)
				if p, ok := prev[row.PlayerID]; ok {
					row.GamesChange = row.Games - p.Games
					row.LPChange = row.TotalLP - p.TotalLP
				} else {
					row.GamesChange = row.Games
					row.LPChange = row.TotalLP
				}
			}

			s.logger.Info().Int("players", len(rows)).Int("total", total).Msg("player leaderboard computed")
			return domain.Page[domain.PlayerRow]{Data: rows, Meta: pageMeta(total, f.Page, f.PerPage)}, nil
		})
	})
}

// GetTopGrinders ranks entities by games played in the window.
func (s *LeaderboardService) GetTopGrinders(ctx context.Context, f domain.LeaderboardFilters) ([]domain.GrinderRow, error) {
	key := cache.BuildKey("grinders", filterParams(f))

	return cache.GetOrSet(ctx, s.cache, key, constants.GrinderCacheTTL, func(ctx context.Context) ([]domain.GrinderRow, error) {
		return query.ExecuteWithTimeout(ctx, "getTopGrinders", constants.GrinderTimeout, func(ctx context.Context) ([]domain.GrinderRow, error) {
			return s.store.TopGrinders(ctx, f)
		})
	})
}

// GetTopLpGainers lists entities whose LP rose over the window.
func (s *LeaderboardService) GetTopLpGainers(ctx context.Context, f domain.LeaderboardFilters) ([]domain.LpMoverRow, error) {
	key := cache.BuildKey("lp-gainers", filterParams(f))

	return cache.GetOrSet(ctx, s.cache, key, constants.LpMoverCacheTTL, func(ctx context.Context) ([]domain.LpMoverRow, error) {
		return query.ExecuteWithTimeout(ctx, "getTopLpGainers", constants.LpMoverTimeout, func(ctx context.Context) ([]domain.LpMoverRow, error) {
			return s.store.TopLpGainers(ctx, f)
		})
	})
}

// GetTopLpLosers lists entities whose LP fell over the window.
func (s *LeaderboardService) GetTopLpLosers(ctx context.Context, f domain.LeaderboardFilters) ([]domain.LpMoverRow, error) {
	key := cache.BuildKey("lp-losers", filterParams(f))

	return cache.GetOrSet(ctx, s.cache, key, constants.LpMoverCacheTTL, func(ctx context.Context) ([]domain.LpMoverRow, error) {
		return query.ExecuteWithTimeout(ctx, "getTopLpLosers", constants.LpMoverTimeout, func(ctx context.Context) ([]domain.LpMoverRow, error) {
			return s.store.TopLpLosers(ctx, f)
		})
	})
}

// GetBatchTeamHistory returns per-team daily series keyed by team id. Ids
// with no data are omitted, never an error.
func (s *LeaderboardService) GetBatchTeamHistory(ctx context.Context, f domain.LeaderboardFilters) (map[int64][]domain.HistoryPoint, error) {
	key := cache.BuildKey("team-history", filterParams(f))

	return cache.GetOrSet(ctx, s.cache, key, constants.HistoryCacheTTL, func(ctx context.Context) (map[int64][]domain.HistoryPoint, error) {
		return query.ExecuteWithTimeout(ctx, "getBatchTeamHistory", constants.BatchHistoryTimeout, func(ctx context.Context) (map[int64][]domain.HistoryPoint, error) {
			return s.store.BatchTeamHistory(ctx, f)
		})
	})
}

// GetBatchPlayerHistory returns per-player daily series keyed by player id.
func (s *LeaderboardService) GetBatchPlayerHistory(ctx context.Context, f domain.LeaderboardFilters) (map[int64][]domain.HistoryPoint, error) {
	key := cache.BuildKey("player-history", filterParams(f))

	return cache.GetOrSet(ctx, s.cache, key, constants.HistoryCacheTTL, func(ctx context.Context) (map[int64][]domain.HistoryPoint, error) {
		return query.ExecuteWithTimeout(ctx, "getBatchPlayerHistory", constants.BatchHistoryTimeout, func(ctx context.Context) (map[int64][]domain.HistoryPoint, error) {
			return s.store.BatchPlayerHistory(ctx, f)
		})
	})
}

// InvalidateDashboards drops every cached dashboard result, for use after
// out-of-band data corrections. Safe to call with the cache disabled.
func (s *LeaderboardService) InvalidateDashboards(ctx context.Context) {
	s.cache.DeletePattern(ctx, "dashboard:*")
	s.logger.Info().Msg("dashboard cache purged")
}

// GetStreakLeaderboard pages players by current win streak.
func (s *LeaderboardService) GetStreakLeaderboard(ctx context.Context, f domain.LeaderboardFilters) (domain.Page[domain.StreakRow], error) {
	key := cache.BuildKey("streaks", filterParams(f))

	return cache.GetOrSet(ctx, s.cache, key, constants.StreakCacheTTL, func(ctx context.Context) (domain.Page[domain.StreakRow], error) {
		return query.ExecuteWithTimeout(ctx, "getStreakLeaderboard", constants.StreakTimeout, func(ctx context.Context) (domain.Page[domain.StreakRow], error) {
			var (
				rows  []domain.StreakRow
				total int
			)

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() (err error) {
				rows, err = s.store.StreakLeaderboard(gctx, f)
				return err
			})
			g.Go(func() (err error) {
				total, err = s.store.StreakLeaderboardCount(gctx, f)
				return err
			})
			if err := g.Wait(); err != nil {
				s.logger.Error().Err(err).Msg("streak leaderboard failed")
				return domain.Page[domain.StreakRow]{}, err
			}

			return domain.Page[domain.StreakRow]{Data: rows, Meta: pageMeta(total, f.Page, f.PerPage)}, nil
		})
	})
}
