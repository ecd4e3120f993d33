package repository

import (
	"context"
	"fmt"

	"lol-dashboard/internal/domain"
	"lol-dashboard/internal/query"
)

// StreakLeaderboard pages players by their current signed streak, longest win
// streak first.
func (r *LeaderboardRepository) StreakLeaderboard(ctx context.Context, f domain.LeaderboardFilters) ([]domain.StreakRow, error) {
	cs, err := streakConditions(f)
	if err != nil {
		return nil, err
	}

	sqlText := fmt.Sprintf(`%s
SELECT p.id, p.pseudo, a.riot_name, COALESCE(t.league, '') AS league,
       ls.current, ls.best
FROM lol_streaks ls
JOIN lol_accounts a ON a.id = ls.account_id
JOIN players p ON p.id = a.player_id
LEFT JOIN open_contracts oc ON oc.player_id = p.id
LEFT JOIN teams t ON t.id = oc.team_id
WHERE %s
ORDER BY ls.current DESC, p.id
LIMIT ? OFFSET ?`, streakContractCTE, cs.where())

	args := append(append([]any{}, cs.args...), f.PerPage, (f.Page-1)*f.PerPage)

	rows, err := r.db.QueryContext(ctx, query.Rebind(sqlText), args...)
	if err != nil {
		return nil, fmt.Errorf("streak leaderboard query: %w", err)
	}
	defer rows.Close()

	streaks := []domain.StreakRow{}
	for rows.Next() {
		var row domain.StreakRow
		if err := rows.Scan(&row.PlayerID, &row.Pseudo, &row.RiotName, &row.League,
			&row.Current, &row.Best); err != nil {
			return nil, fmt.Errorf("streak leaderboard scan: %w", err)
		}
		streaks = append(streaks, row)
	}
	return streaks, rows.Err()
}

func (r *LeaderboardRepository) StreakLeaderboardCount(ctx context.Context, f domain.LeaderboardFilters) (int, error) {
	cs, err := streakConditions(f)
	if err != nil {
		return 0, err
	}

	sqlText := fmt.Sprintf(`%s
SELECT COUNT(*)
FROM lol_streaks ls
JOIN lol_accounts a ON a.id = ls.account_id
JOIN players p ON p.id = a.player_id
LEFT JOIN open_contracts oc ON oc.player_id = p.id
LEFT JOIN teams t ON t.id = oc.team_id
WHERE %s`, streakContractCTE, cs.where())

	var total int
	if err := r.db.QueryRowContext(ctx, query.Rebind(sqlText), cs.args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("streak leaderboard count: %w", err)
	}
	return total, nil
}

// One open contract per player keeps the streak join from fanning out.
const streakContractCTE = `WITH open_contracts AS (
    SELECT DISTINCT ON (pc.player_id) pc.player_id, pc.team_id
    FROM player_contracts pc
    WHERE pc.end_date IS NULL
    ORDER BY pc.player_id, pc.start_date DESC
)`

func streakConditions(f domain.LeaderboardFilters) (*conditionSet, error) {
	cs := &conditionSet{}
	if len(f.Leagues) > 0 {
		if err := cs.addIn("t.league", query.Strings(f.Leagues)); err != nil {
			return nil, err
		}
	}
	if f.Search != "" {
		pattern := "%" + query.EscapeLike(f.Search) + "%"
		cs.add("(p.pseudo ILIKE ? OR p.slug ILIKE ?)", pattern, pattern)
	}
	if err := cs.validate(); err != nil {
		return nil, err
	}
	return cs, nil
}
