// Package repository executes the dashboard aggregation SQL. Every query is
// assembled exclusively from whitelisted filter fragments joined with AND;
// user values only ever travel as bound parameters.
package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"lol-dashboard/internal/domain"
	"lol-dashboard/internal/query"
)

type LeaderboardRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewLeaderboardRepository(sqlDB *sql.DB, logger zerolog.Logger) *LeaderboardRepository {
	return &LeaderboardRepository{
		db:     sqlDB,
		logger: logger,
	}
}

// lpEligibleTiers gates LP aggregation to the apex tiers; everything below
// contributes games and wins but zero LP.
const lpEligibleTiers = `('MASTER','GRANDMASTER','CHALLENGER')`

func tierRankSQL(column string) string {
	return `CASE ` + column + `
        WHEN 'CHALLENGER' THEN 10
        WHEN 'GRANDMASTER' THEN 9
        WHEN 'MASTER' THEN 8
        WHEN 'DIAMOND' THEN 7
        WHEN 'EMERALD' THEN 6
        WHEN 'PLATINUM' THEN 5
        WHEN 'GOLD' THEN 4
        WHEN 'SILVER' THEN 3
        WHEN 'BRONZE' THEN 2
        WHEN 'IRON' THEN 1
        ELSE 0 END`
}

// conditionSet accumulates validated fragments and their bound values in
// placeholder order.
type conditionSet struct {
	conds []string
	args  []any
}

func (c *conditionSet) add(cond string, args ...any) {
	c.conds = append(c.conds, cond)
	c.args = append(c.args, args...)
}

func (c *conditionSet) addIn(column string, values []any) error {
	fragment, bound, err := query.BuildInClause(column, values)
	if err != nil {
		return err
	}
	c.add(fragment, bound...)
	return nil
}

// validate runs every accumulated fragment through the whitelist. Internal
// call sites only compose approved shapes, so a failure here means a bug or
// a hostile composition; either way the query must not run.
func (c *conditionSet) validate() error {
	return query.ValidateConditions(c.conds)
}

func (c *conditionSet) where() string {
	if len(c.conds) == 0 {
		return "TRUE"
	}
	return strings.Join(c.conds, " AND ")
}

// rosterConditions builds the eligibility filter shared by every roster scan:
// active team, open contract, plus the caller's optional league/role/search/id
// filters. searchCond distinguishes the team and player search shapes.
func rosterConditions(f domain.LeaderboardFilters, searchCond string, idColumn string) (*conditionSet, error) {
	cs := &conditionSet{}
	cs.add("t.is_active = true")
	cs.add("pc.end_date IS NULL")

	if len(f.Leagues) > 0 {
		if err := cs.addIn("t.league", query.Strings(f.Leagues)); err != nil {
			return nil, err
		}
	}
	if len(f.Roles) > 0 {
		if err := cs.addIn("pc.role", query.Strings(f.Roles)); err != nil {
			return nil, err
		}
	}
	if f.Search != "" {
		pattern := "%" + query.EscapeLike(f.Search) + "%"
		cs.add(searchCond, pattern, pattern)
	}
	if len(f.EntityIDs) > 0 {
		if err := cs.addIn(idColumn, query.Int64s(f.EntityIDs)); err != nil {
			return nil, err
		}
	}

	if err := cs.validate(); err != nil {
		return nil, err
	}
	return cs, nil
}

func havingConditions(f domain.LeaderboardFilters) (*conditionSet, error) {
	cs := &conditionSet{}
	if f.MinGames > 0 {
		cs.add("SUM(rp.games) >= ?", f.MinGames)
	}
	if err := cs.validate(); err != nil {
		return nil, err
	}
	return cs, nil
}

func havingClause(cs *conditionSet) string {
	if len(cs.conds) == 0 {
		return ""
	}
	return " HAVING " + strings.Join(cs.conds, " AND ")
}

// teamSortColumns maps the public sort keys onto deterministic ORDER BY
// clauses. Every order ends on the entity id so pagination stays stable.
var teamSortColumns = map[string]string{
	domain.SortGames:   "ts.games DESC, ts.team_id",
	domain.SortLP:      "ts.total_lp DESC, ts.team_id",
	domain.SortWinrate: "winrate DESC, ts.team_id",
}

var playerSortColumns = map[string]string{
	domain.SortGames:   "ps.games DESC, ps.player_id",
	domain.SortLP:      "ps.best_lp DESC, ps.player_id",
	domain.SortWinrate: "winrate DESC, ps.player_id",
}

func sortClause(columns map[string]string, sort string) string {
	if clause, ok := columns[sort]; ok {
		return clause
	}
	return columns[domain.SortGames]
}

// teamAggregationCTEs stages the team leaderboard aggregation:
//
//	roster         eligible (team, player, account) tuples after filters
//	period         per-account games/wins summed over the window
//	snapshot       per-account rank snapshot at the window's end
//	account_stats  roster joined to both, with effective LP and tier rank
//	best_accounts  row-numbered per player, best first
//	player_stats   per-player rollup with the best account's LP
//	ranked_players per-team LP ordering of players
//	team_stats     per-team rollup; LP sums only the top 5 players
const teamAggregationCTEs = `WITH roster AS (
    SELECT t.id AS team_id, p.id AS player_id, p.pseudo, p.slug, pc.role,
           a.id AS account_id, a.riot_name, a.riot_tag, a.region AS account_region
    FROM teams t
    JOIN player_contracts pc ON pc.team_id = t.id
    JOIN players p ON p.id = pc.player_id
    JOIN lol_accounts a ON a.player_id = p.id
    WHERE %s
),
period AS (
    SELECT ds.account_id, SUM(ds.games) AS games, SUM(ds.wins) AS wins
    FROM lol_daily_stats ds
    WHERE ds.date BETWEEN ? AND ?
    GROUP BY ds.account_id
),
snapshot AS (
    SELECT DISTINCT ON (ds.account_id) ds.account_id, ds.tier, ds.lp
    FROM lol_daily_stats ds
    WHERE ds.date BETWEEN ? AND ?
    ORDER BY ds.account_id, ds.date DESC
),
account_stats AS (
    SELECT r.team_id, r.player_id, r.pseudo, r.slug, r.role,
           r.account_id, r.riot_name, r.riot_tag, r.account_region,
           COALESCE(pe.games, 0) AS games,
           COALESCE(pe.wins, 0) AS wins,
           COALESCE(sn.tier, 'UNRANKED') AS tier,
           COALESCE(sn.lp, 0) AS lp,
           CASE WHEN sn.tier IN ` + lpEligibleTiers + ` THEN COALESCE(sn.lp, 0) ELSE 0 END AS effective_lp,
           ` + "%s" + ` AS tier_rank
    FROM roster r
    LEFT JOIN period pe ON pe.account_id = r.account_id
    LEFT JOIN snapshot sn ON sn.account_id = r.account_id
),
best_accounts AS (
    SELECT *, ROW_NUMBER() OVER (
        PARTITION BY team_id, player_id
        ORDER BY tier_rank DESC, effective_lp DESC, account_id
    ) AS rn
    FROM account_stats
),
player_stats AS (
    SELECT rp.team_id, rp.player_id,
           MIN(rp.pseudo) AS pseudo, MIN(rp.slug) AS slug, MIN(rp.role) AS role,
           SUM(rp.games) AS games, SUM(rp.wins) AS wins,
           MAX(CASE WHEN rp.rn = 1 THEN rp.effective_lp ELSE 0 END) AS best_lp
    FROM best_accounts rp
    GROUP BY rp.team_id, rp.player_id
),
ranked_players AS (
    SELECT *, ROW_NUMBER() OVER (
        PARTITION BY team_id ORDER BY best_lp DESC, player_id
    ) AS lp_rank
    FROM player_stats
),
team_stats AS (
    SELECT rp.team_id, SUM(rp.games) AS games, SUM(rp.wins) AS wins,
           COALESCE(SUM(rp.best_lp) FILTER (WHERE rp.lp_rank <= 5), 0) AS total_lp
    FROM ranked_players rp
    GROUP BY rp.team_id%s
)`

func buildTeamCTEs(whereClause, having string) string {
	return fmt.Sprintf(teamAggregationCTEs, whereClause, tierRankSQL("sn.tier"), having)
}

// TeamLeaderboard returns one fully hydrated page of team rows: aggregates,
// end-of-period LP and the embedded player/account tree from a single query.
func (r *LeaderboardRepository) TeamLeaderboard(ctx context.Context, f domain.LeaderboardFilters) ([]domain.TeamRow, error) {
	cs, err := rosterConditions(f, "(t.name ILIKE ? OR t.short_name ILIKE ?)", "t.id")
	if err != nil {
		return nil, err
	}
	hs, err := havingConditions(f)
	if err != nil {
		return nil, err
	}

	sqlText := buildTeamCTEs(cs.where(), havingClause(hs)) + `
SELECT ts.team_id, t.name, t.short_name, t.region, t.league,
       ts.games, ts.wins,
       CASE WHEN ts.games > 0 THEN ROUND(ts.wins * 100.0 / ts.games, 2)::float8 ELSE 0 END AS winrate,
       ts.total_lp,
       (
           SELECT COALESCE(json_agg(json_build_object(
               'playerId', ps.player_id,
               'pseudo', ps.pseudo,
               'slug', ps.slug,
               'role', ps.role,
               'games', ps.games,
               'wins', ps.wins,
               'winrate', CASE WHEN ps.games > 0 THEN ROUND(ps.wins * 100.0 / ps.games, 2) ELSE 0 END,
               'totalLp', ps.best_lp,
               'accounts', (
                   SELECT COALESCE(json_agg(json_build_object(
                       'accountId', ba.account_id,
                       'riotName', ba.riot_name,
                       'riotTag', ba.riot_tag,
                       'region', ba.account_region,
                       'tier', ba.tier,
                       'lp', ba.lp,
                       'games', ba.games,
                       'wins', ba.wins,
                       'winrate', CASE WHEN ba.games > 0 THEN ROUND(ba.wins * 100.0 / ba.games, 2) ELSE 0 END
                   )), '[]'::json)
                   FROM best_accounts ba
                   WHERE ba.team_id = ps.team_id AND ba.player_id = ps.player_id
               )
           )), '[]'::json)
           FROM player_stats ps
           WHERE ps.team_id = ts.team_id
       ) AS players
FROM team_stats ts
JOIN teams t ON t.id = ts.team_id
ORDER BY ` + sortClause(teamSortColumns, f.Sort) + `
LIMIT ? OFFSET ?`

	args := make([]any, 0, len(cs.args)+len(hs.args)+6)
	args = append(args, cs.args...)
	args = append(args, f.StartDate, f.EndDate, f.StartDate, f.EndDate)
	args = append(args, hs.args...)
	args = append(args, f.PerPage, (f.Page-1)*f.PerPage)

	rows, err := r.db.QueryContext(ctx, query.Rebind(sqlText), args...)
	if err != nil {
		return nil, fmt.Errorf("team leaderboard query: %w", err)
	}
	defer rows.Close()

	teams := []domain.TeamRow{}
	for rows.Next() {
		var row domain.TeamRow
		var players []byte
		if err := rows.Scan(
			&row.TeamID, &row.Name, &row.ShortName, &row.Region, &row.League,
			&row.Games, &row.Wins, &row.Winrate, &row.TotalLP, &players,
		); err != nil {
			return nil, fmt.Errorf("team leaderboard scan: %w", err)
		}
		if err := json.Unmarshal(players, &row.Players); err != nil {
			return nil, fmt.Errorf("team leaderboard players decode: %w", err)
		}
		teams = append(teams, row)
	}
	return teams, rows.Err()
}

// TeamLeaderboardCount returns the total number of teams matching the
// filters, for pagination metadata.
func (r *LeaderboardRepository) TeamLeaderboardCount(ctx context.Context, f domain.LeaderboardFilters) (int, error) {
	cs, err := rosterConditions(f, "(t.name ILIKE ? OR t.short_name ILIKE ?)", "t.id")
	if err != nil {
		return 0, err
	}
	hs, err := havingConditions(f)
	if err != nil {
		return 0, err
	}

	sqlText := buildTeamCTEs(cs.where(), havingClause(hs)) + `
SELECT COUNT(*) FROM team_stats`

	args := make([]any, 0, len(cs.args)+len(hs.args)+4)
	args = append(args, cs.args...)
	args = append(args, f.StartDate, f.EndDate, f.StartDate, f.EndDate)
	args = append(args, hs.args...)

	var total int
	if err := r.db.QueryRowContext(ctx, query.Rebind(sqlText), args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("team leaderboard count: %w", err)
	}
	return total, nil
}

// EntityPeriodStat is a per-entity aggregate used for period-over-period
// deltas.
type EntityPeriodStat struct {
	EntityID int64
	Games    int
	TotalLP  int
}

// TeamPeriodStats returns per-team games and LP for an arbitrary window,
// keyed by team id. Used to compute deltas against the previous period.
func (r *LeaderboardRepository) TeamPeriodStats(ctx context.Context, f domain.LeaderboardFilters) (map[int64]EntityPeriodStat, error) {
	cs, err := rosterConditions(f, "(t.name ILIKE ? OR t.short_name ILIKE ?)", "t.id")
	if err != nil {
		return nil, err
	}
	hs := &conditionSet{}

	sqlText := buildTeamCTEs(cs.where(), havingClause(hs)) + `
SELECT ts.team_id, ts.games, ts.total_lp FROM team_stats ts`

	args := make([]any, 0, len(cs.args)+4)
	args = append(args, cs.args...)
	args = append(args, f.StartDate, f.EndDate, f.StartDate, f.EndDate)

	rows, err := r.db.QueryContext(ctx, query.Rebind(sqlText), args...)
	if err != nil {
		return nil, fmt.Errorf("team period stats query: %w", err)
	}
	defer rows.Close()

	stats := make(map[int64]EntityPeriodStat)
	for rows.Next() {
		var s EntityPeriodStat
		if err := rows.Scan(&s.EntityID, &s.Games, &s.TotalLP); err != nil {
			return nil, fmt.Errorf("team period stats scan: %w", err)
		}
		stats[s.EntityID] = s
	}
	return stats, rows.Err()
}

// playerAggregationCTEs mirrors the team chain without the team rollup.
const playerAggregationCTEs = `WITH roster AS (
    SELECT p.id AS player_id, p.pseudo, p.slug, pc.role,
           a.id AS account_id, a.riot_name, a.riot_tag, a.region AS account_region
    FROM teams t
    JOIN player_contracts pc ON pc.team_id = t.id
    JOIN players p ON p.id = pc.player_id
    JOIN lol_accounts a ON a.player_id = p.id
    WHERE %s
),
period AS (
    SELECT ds.account_id, SUM(ds.games) AS games, SUM(ds.wins) AS wins
    FROM lol_daily_stats ds
    WHERE ds.date BETWEEN ? AND ?
    GROUP BY ds.account_id
),
snapshot AS (
    SELECT DISTINCT ON (ds.account_id) ds.account_id, ds.tier, ds.lp
    FROM lol_daily_stats ds
    WHERE ds.date BETWEEN ? AND ?
    ORDER BY ds.account_id, ds.date DESC
),
account_stats AS (
    SELECT r.player_id, r.pseudo, r.slug, r.role,
           r.account_id, r.riot_name, r.riot_tag, r.account_region,
           COALESCE(pe.games, 0) AS games,
           COALESCE(pe.wins, 0) AS wins,
           COALESCE(sn.tier, 'UNRANKED') AS tier,
           COALESCE(sn.lp, 0) AS lp,
           CASE WHEN sn.tier IN ` + lpEligibleTiers + ` THEN COALESCE(sn.lp, 0) ELSE 0 END AS effective_lp,
           ` + "%s" + ` AS tier_rank
    FROM roster r
    LEFT JOIN period pe ON pe.account_id = r.account_id
    LEFT JOIN snapshot sn ON sn.account_id = r.account_id
),
best_accounts AS (
    SELECT *, ROW_NUMBER() OVER (
        PARTITION BY player_id
        ORDER BY tier_rank DESC, effective_lp DESC, account_id
    ) AS rn
    FROM account_stats
),
player_stats AS (
    SELECT rp.player_id,
           MIN(rp.pseudo) AS pseudo, MIN(rp.slug) AS slug, MIN(rp.role) AS role,
           SUM(rp.games) AS games, SUM(rp.wins) AS wins,
           MAX(CASE WHEN rp.rn = 1 THEN rp.effective_lp ELSE 0 END) AS best_lp
    FROM best_accounts rp
    GROUP BY rp.player_id%s
)`

func buildPlayerCTEs(whereClause, having string) string {
	return fmt.Sprintf(playerAggregationCTEs, whereClause, tierRankSQL("sn.tier"), having)
}

// PlayerLeaderboard returns one page of player rows with their accounts
// embedded, from a single query.
func (r *LeaderboardRepository) PlayerLeaderboard(ctx context.Context, f domain.LeaderboardFilters) ([]domain.PlayerRow, error) {
	cs, err := rosterConditions(f, "(p.pseudo ILIKE ? OR p.slug ILIKE ?)", "p.id")
	if err != nil {
		return nil, err
	}
	hs, err := havingConditions(f)
	if err != nil {
		return nil, err
	}

	sqlText := buildPlayerCTEs(cs.where(), havingClause(hs)) + `
SELECT ps.player_id, ps.pseudo, ps.slug, ps.role,
       ps.games, ps.wins,
       CASE WHEN ps.games > 0 THEN ROUND(ps.wins * 100.0 / ps.games, 2)::float8 ELSE 0 END AS winrate,
       ps.best_lp,
       (
           SELECT COALESCE(json_agg(json_build_object(
               'accountId', ba.account_id,
               'riotName', ba.riot_name,
               'riotTag', ba.riot_tag,
               'region', ba.account_region,
               'tier', ba.tier,
               'lp', ba.lp,
               'games', ba.games,
               'wins', ba.wins,
               'winrate', CASE WHEN ba.games > 0 THEN ROUND(ba.wins * 100.0 / ba.games, 2) ELSE 0 END
           )), '[]'::json)
           FROM best_accounts ba
           WHERE ba.player_id = ps.player_id
       ) AS accounts
FROM player_stats ps
ORDER BY ` + sortClause(playerSortColumns, f.Sort) + `
LIMIT ? OFFSET ?`

	args := make([]any, 0, len(cs.args)+len(hs.args)+6)
	args = append(args, cs.args...)
	args = append(args, f.StartDate, f.EndDate, f.StartDate, f.EndDate)
	args = append(args, hs.args...)
	args = append(args, f.PerPage, (f.Page-1)*f.PerPage)

	rows, err := r.db.QueryContext(ctx, query.Rebind(sqlText), args...)
	if err != nil {
		return nil, fmt.Errorf("player leaderboard query: %w", err)
	}
	defer rows.Close()

	players := []domain.PlayerRow{}
	for rows.Next() {
		var row domain.PlayerRow
		var accounts []byte
		if err := rows.Scan(
			&row.PlayerID, &row.Pseudo, &row.Slug, &row.Role,
			&row.Games, &row.Wins, &row.Winrate, &row.TotalLP, &accounts,
		); err != nil {
			return nil, fmt.Errorf("player leaderboard scan: %w", err)
		}
		if err := json.Unmarshal(accounts, &row.Accounts); err != nil {
			return nil, fmt.Errorf("player leaderboard accounts decode: %w", err)
		}
		players = append(players, row)
	}
	return players, rows.Err()
}

func (r *LeaderboardRepository) PlayerLeaderboardCount(ctx context.Context, f domain.LeaderboardFilters) (int, error) {
	cs, err := rosterConditions(f, "(p.pseudo ILIKE ? OR p.slug ILIKE ?)", "p.id")
	if err != nil {
		return 0, err
	}
	hs, err := havingConditions(f)
	if err != nil {
		return 0, err
	}

	sqlText := buildPlayerCTEs(cs.where(), havingClause(hs)) + `
SELECT COUNT(*) FROM player_stats`

	args := make([]any, 0, len(cs.args)+len(hs.args)+4)
	args = append(args, cs.args...)
	args = append(args, f.StartDate, f.EndDate, f.StartDate, f.EndDate)
	args = append(args, hs.args...)

	var total int
	if err := r.db.QueryRowContext(ctx, query.Rebind(sqlText), args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("player leaderboard count: %w", err)
	}
	return total, nil
}

// PlayerPeriodStats returns per-player games and best-account LP for an
// arbitrary window, keyed by player id.
func (r *LeaderboardRepository) PlayerPeriodStats(ctx context.Context, f domain.LeaderboardFilters) (map[int64]EntityPeriodStat, error) {
	cs, err := rosterConditions(f, "(p.pseudo ILIKE ? OR p.slug ILIKE ?)", "p.id")
	if err != nil {
		return nil, err
	}
	hs := &conditionSet{}

	sqlText := buildPlayerCTEs(cs.where(), havingClause(hs)) + `
SELECT ps.player_id, ps.games, ps.best_lp FROM player_stats ps`

	args := make([]any, 0, len(cs.args)+4)
	args = append(args, cs.args...)
	args = append(args, f.StartDate, f.EndDate, f.StartDate, f.EndDate)

	rows, err := r.db.QueryContext(ctx, query.Rebind(sqlText), args...)
	if err != nil {
		return nil, fmt.Errorf("player period stats query: %w", err)
	}
	defer rows.Close()

	stats := make(map[int64]EntityPeriodStat)
	for rows.Next() {
		var s EntityPeriodStat
		if err := rows.Scan(&s.EntityID, &s.Games, &s.TotalLP); err != nil {
			return nil, fmt.Errorf("player period stats scan: %w", err)
		}
		stats[s.EntityID] = s
	}
	return stats, rows.Err()
}
