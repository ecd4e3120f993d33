package repository

import (
	"context"
	"fmt"

	"lol-dashboard/internal/domain"
	"lol-dashboard/internal/query"
)

// TopGrinders ranks entities (teams or players, by view mode) by total games
// played in the window.
func (r *LeaderboardRepository) TopGrinders(ctx context.Context, f domain.LeaderboardFilters) ([]domain.GrinderRow, error) {
	byTeam := f.ViewMode != domain.ViewModePlayer

	searchCond, idColumn := "(p.pseudo ILIKE ? OR p.slug ILIKE ?)", "p.id"
	entityCols := "p.id, MIN(p.pseudo), MIN(t.league)"
	groupBy := "p.id"
	if byTeam {
		searchCond, idColumn = "(t.name ILIKE ? OR t.short_name ILIKE ?)", "t.id"
		entityCols = "t.id, MIN(t.name), MIN(t.league)"
		groupBy = "t.id"
	}

	cs, err := rosterConditions(f, searchCond, idColumn)
	if err != nil {
		return nil, err
	}

	sqlText := fmt.Sprintf(`SELECT %s,
       COALESCE(SUM(ds.games), 0) AS games,
       COALESCE(SUM(ds.wins), 0) AS wins
FROM teams t
JOIN player_contracts pc ON pc.team_id = t.id
JOIN players p ON p.id = pc.player_id
JOIN lol_accounts a ON a.player_id = p.id
LEFT JOIN lol_daily_stats ds ON ds.account_id = a.id AND ds.date BETWEEN ? AND ?
WHERE %s
GROUP BY %s
ORDER BY games DESC, %s
LIMIT ?`, entityCols, cs.where(), groupBy, groupBy)

	args := make([]any, 0, len(cs.args)+3)
	args = append(args, f.StartDate, f.EndDate)
	args = append(args, cs.args...)
	args = append(args, f.Limit)

	rows, err := r.db.QueryContext(ctx, query.Rebind(sqlText), args...)
	if err != nil {
		return nil, fmt.Errorf("top grinders query: %w", err)
	}
	defer rows.Close()

	grinders := []domain.GrinderRow{}
	for rows.Next() {
		var row domain.GrinderRow
		if err := rows.Scan(&row.EntityID, &row.Name, &row.League, &row.Games, &row.Wins); err != nil {
			return nil, fmt.Errorf("top grinders scan: %w", err)
		}
		if row.Games > 0 {
			row.Winrate = roundPct(row.Wins, row.Games)
		}
		grinders = append(grinders, row)
	}
	return grinders, rows.Err()
}

func roundPct(wins, games int) float64 {
	return float64(int(float64(wins)/float64(games)*10000+0.5)) / 100
}

// moverCTEs anchors a rank snapshot at each end of the window, computes the
// per-account signed LP delta, and picks each player's reference account by
// the requested anchor (end for gainers, start for losers).
const moverCTEs = `WITH roster AS (
    SELECT t.id AS team_id, t.league, p.id AS player_id, p.pseudo, a.id AS account_id
    FROM teams t
    JOIN player_contracts pc ON pc.team_id = t.id
    JOIN players p ON p.id = pc.player_id
    JOIN lol_accounts a ON a.player_id = p.id
    WHERE %s
),
start_snap AS (
    SELECT DISTINCT ON (ds.account_id) ds.account_id, ds.tier, ds.lp
    FROM lol_daily_stats ds
    WHERE ds.date BETWEEN ? AND ?
    ORDER BY ds.account_id, ds.date ASC
),
end_snap AS (
    SELECT DISTINCT ON (ds.account_id) ds.account_id, ds.tier, ds.lp
    FROM lol_daily_stats ds
    WHERE ds.date BETWEEN ? AND ?
    ORDER BY ds.account_id, ds.date DESC
),
account_change AS (
    SELECT r.team_id, r.league, r.player_id, r.pseudo, r.account_id,
           CASE WHEN ss.tier IN ` + lpEligibleTiers + ` THEN COALESCE(ss.lp, 0) ELSE 0 END AS start_lp,
           CASE WHEN es.tier IN ` + lpEligibleTiers + ` THEN COALESCE(es.lp, 0) ELSE 0 END AS end_lp,
           COALESCE(es.tier, 'UNRANKED') AS end_tier,
           COALESCE(ss.tier, 'UNRANKED') AS start_tier,
           %s AS end_tier_rank,
           %s AS start_tier_rank
    FROM roster r
    JOIN start_snap ss ON ss.account_id = r.account_id
    JOIN end_snap es ON es.account_id = r.account_id
),
picked AS (
    SELECT *, end_lp - start_lp AS lp_change,
           ROW_NUMBER() OVER (
               PARTITION BY player_id
               ORDER BY %s DESC, %s DESC, account_id
           ) AS rn
    FROM account_change
)`

func buildMoverCTEs(whereClause string, endAnchored bool) string {
	anchorRank, anchorLP := "end_tier_rank", "end_lp"
	if !endAnchored {
		anchorRank, anchorLP = "start_tier_rank", "start_lp"
	}
	return fmt.Sprintf(moverCTEs, whereClause,
		tierRankSQL("es.tier"), tierRankSQL("ss.tier"), anchorRank, anchorLP)
}

// TopLpGainers returns entities with the largest positive LP delta over the
// window, referenced against the best account at the window's end.
func (r *LeaderboardRepository) TopLpGainers(ctx context.Context, f domain.LeaderboardFilters) ([]domain.LpMoverRow, error) {
	return r.lpMovers(ctx, f, true)
}

// TopLpLosers returns entities with the largest negative LP delta, referenced
// against the best account at the window's start.
func (r *LeaderboardRepository) TopLpLosers(ctx context.Context, f domain.LeaderboardFilters) ([]domain.LpMoverRow, error) {
	return r.lpMovers(ctx, f, false)
}

func (r *LeaderboardRepository) lpMovers(ctx context.Context, f domain.LeaderboardFilters, gainers bool) ([]domain.LpMoverRow, error) {
	byTeam := f.ViewMode == domain.ViewModeTeam

	searchCond, idColumn := "(p.pseudo ILIKE ? OR p.slug ILIKE ?)", "p.id"
	if byTeam {
		searchCond, idColumn = "(t.name ILIKE ? OR t.short_name ILIKE ?)", "t.id"
	}

	cs, err := rosterConditions(f, searchCond, idColumn)
	if err != nil {
		return nil, err
	}

	comparison, order := "> 0", "lp_change DESC"
	if !gainers {
		comparison, order = "< 0", "lp_change ASC"
	}

	var sqlText string
	if byTeam {
		// Team LP change sums the top-5 reference accounts, so the anchor
		// semantics match the leaderboard's top-5 aggregation.
		sqlText = buildMoverCTEs(cs.where(), gainers) + fmt.Sprintf(`,
team_change AS (
    SELECT team_id, MIN(league) AS league,
           COALESCE(SUM(start_lp) FILTER (WHERE team_rank <= 5), 0) AS start_lp,
           COALESCE(SUM(end_lp) FILTER (WHERE team_rank <= 5), 0) AS end_lp
    FROM (
        SELECT *, ROW_NUMBER() OVER (
            PARTITION BY team_id ORDER BY %s DESC, %s DESC, player_id
        ) AS team_rank
        FROM picked
        WHERE rn = 1
    ) ranked
    GROUP BY team_id
)
SELECT tc.team_id, t.name, tc.league, '' AS tier,
       tc.start_lp, tc.end_lp, tc.end_lp - tc.start_lp AS lp_change
FROM team_change tc
JOIN teams t ON t.id = tc.team_id
WHERE tc.end_lp - tc.start_lp %s
ORDER BY %s, tc.team_id
LIMIT ?`, anchorRankColumn(gainers), anchorLPColumn(gainers), comparison, order)
	} else {
		sqlText = buildMoverCTEs(cs.where(), gainers) + fmt.Sprintf(`
SELECT player_id, pseudo, league,
       CASE WHEN %s THEN end_tier ELSE start_tier END AS tier,
       start_lp, end_lp, lp_change
FROM picked
WHERE rn = 1 AND lp_change %s
ORDER BY %s, player_id
LIMIT ?`, boolSQL(gainers), comparison, order)
	}

	args := make([]any, 0, len(cs.args)+5)
	args = append(args, cs.args...)
	args = append(args, f.StartDate, f.EndDate, f.StartDate, f.EndDate, f.Limit)

	rows, err := r.db.QueryContext(ctx, query.Rebind(sqlText), args...)
	if err != nil {
		return nil, fmt.Errorf("lp movers query: %w", err)
	}
	defer rows.Close()

	movers := []domain.LpMoverRow{}
	for rows.Next() {
		var row domain.LpMoverRow
		if err := rows.Scan(&row.EntityID, &row.Name, &row.League, &row.Tier,
			&row.StartLP, &row.EndLP, &row.LPChange); err != nil {
			return nil, fmt.Errorf("lp movers scan: %w", err)
		}
		movers = append(movers, row)
	}
	return movers, rows.Err()
}

func anchorRankColumn(endAnchored bool) string {
	if endAnchored {
		return "end_tier_rank"
	}
	return "start_tier_rank"
}

func anchorLPColumn(endAnchored bool) string {
	if endAnchored {
		return "end_lp"
	}
	return "start_lp"
}

func boolSQL(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}
