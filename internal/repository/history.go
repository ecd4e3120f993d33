package repository

import (
	"context"
	"fmt"
	"time"

	"lol-dashboard/internal/domain"
	"lol-dashboard/internal/query"
)

func playerHistoryConditions(f domain.LeaderboardFilters) (*conditionSet, error) {
	cs := &conditionSet{}
	if err := cs.addIn("p.id", query.Int64s(f.EntityIDs)); err != nil {
		return nil, err
	}
	cs.add("ds.date BETWEEN ? AND ?", f.StartDate, f.EndDate)
	if err := cs.validate(); err != nil {
		return nil, err
	}
	return cs, nil
}

// teamHistoryConditions gates team series to active teams with open
// contracts, the same eligibility every roster scan applies.
func teamHistoryConditions(f domain.LeaderboardFilters) (*conditionSet, error) {
	cs := &conditionSet{}
	if err := cs.addIn("t.id", query.Int64s(f.EntityIDs)); err != nil {
		return nil, err
	}
	cs.add("t.is_active = true")
	cs.add("pc.end_date IS NULL")
	cs.add("ds.date BETWEEN ? AND ?", f.StartDate, f.EndDate)
	if err := cs.validate(); err != nil {
		return nil, err
	}
	return cs, nil
}

// historyRollup sums games and wins per (entity, day) and takes the LP of the
// best-ranked account that day: tier first, then effective LP, then account
// id, matching the best-account comparator used everywhere else.
const historyRollup = `
SELECT dd.entity_id, dd.date, SUM(dd.games) AS games, SUM(dd.wins) AS wins,
       (array_agg(dd.effective_lp ORDER BY dd.tier_rank DESC, dd.effective_lp DESC, dd.account_id))[1] AS lp
FROM daily dd
GROUP BY dd.entity_id, dd.date
ORDER BY dd.entity_id, dd.date`

func buildPlayerHistorySQL(where string) string {
	return fmt.Sprintf(`WITH daily AS (
    SELECT p.id AS entity_id, ds.date, ds.account_id, ds.games, ds.wins,
           CASE WHEN ds.tier IN `+lpEligibleTiers+` THEN ds.lp ELSE 0 END AS effective_lp,
           %s AS tier_rank
    FROM players p
    JOIN lol_accounts a ON a.player_id = p.id
    JOIN lol_daily_stats ds ON ds.account_id = a.id
    WHERE %s
)`+historyRollup, tierRankSQL("ds.tier"), where)
}

func buildTeamHistorySQL(where string) string {
	return fmt.Sprintf(`WITH daily AS (
    SELECT t.id AS entity_id, ds.date, ds.account_id, ds.games, ds.wins,
           CASE WHEN ds.tier IN `+lpEligibleTiers+` THEN ds.lp ELSE 0 END AS effective_lp,
           %s AS tier_rank
    FROM teams t
    JOIN player_contracts pc ON pc.team_id = t.id
    JOIN lol_accounts a ON a.player_id = pc.player_id
    JOIN lol_daily_stats ds ON ds.account_id = a.id
    WHERE %s
)`+historyRollup, tierRankSQL("ds.tier"), where)
}

// BatchPlayerHistory returns a per-player daily series for up to 50 player
// ids in a single query. Ids with no rows in the window are simply absent
// from the result.
func (r *LeaderboardRepository) BatchPlayerHistory(ctx context.Context, f domain.LeaderboardFilters) (map[int64][]domain.HistoryPoint, error) {
	cs, err := playerHistoryConditions(f)
	if err != nil {
		return nil, err
	}
	return r.scanHistory(ctx, buildPlayerHistorySQL(cs.where()), cs.args)
}

// BatchTeamHistory returns a per-team daily series, aggregated over the
// team's current roster accounts.
func (r *LeaderboardRepository) BatchTeamHistory(ctx context.Context, f domain.LeaderboardFilters) (map[int64][]domain.HistoryPoint, error) {
	cs, err := teamHistoryConditions(f)
	if err != nil {
		return nil, err
	}
	return r.scanHistory(ctx, buildTeamHistorySQL(cs.where()), cs.args)
}

func (r *LeaderboardRepository) scanHistory(ctx context.Context, sqlText string, args []any) (map[int64][]domain.HistoryPoint, error) {
	rows, err := r.db.QueryContext(ctx, query.Rebind(sqlText), args...)
	if err != nil {
		return nil, fmt.Errorf("batch history query: %w", err)
	}
	defer rows.Close()

	series := make(map[int64][]domain.HistoryPoint)
	for rows.Next() {
		var entityID int64
		var date time.Time
		var point domain.HistoryPoint
		if err := rows.Scan(&entityID, &date, &point.Games, &point.Wins, &point.LP); err != nil {
			return nil, fmt.Errorf("batch history scan: %w", err)
		}
		point.Date = date.Format("2006-01-02")
		if point.Games > 0 {
			point.Winrate = roundPct(point.Wins, point.Games)
		}
		series[entityID] = append(series[entityID], point)
	}
	return series, rows.Err()
}
