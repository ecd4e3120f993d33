package domain

import (
	"time"
)

const (
	SortGames   = "games"
	SortLP      = "lp"
	SortWinrate = "winrate"
)

const (
	ViewModeTeam   = "team"
	ViewModePlayer = "player"
)

// LeaderboardFilters is the already-validated filter set handed to the query
// engine. Validation (date span, bounds, id parsing) happens at the transport
// layer; the engine trusts these values as-is.
type LeaderboardFilters struct {
	StartDate time.Time
	EndDate   time.Time
	Leagues   []string
	Roles     []string
	MinGames  int
	Search    string
	Page      int
	PerPage   int
	Sort      string
	ViewMode  string
	Limit     int
	EntityIDs []int64
}

type PageMeta struct {
	Total       int `json:"total"`
	PerPage     int `json:"perPage"`
	CurrentPage int `json:"currentPage"`
	LastPage    int `json:"lastPage"`
}

// Page is the paginated response envelope for leaderboard endpoints.
type Page[T any] struct {
	Data []T      `json:"data"`
	Meta PageMeta `json:"meta"`
}

type AccountRow struct {
	AccountID int64   `json:"accountId"`
	RiotName  string  `json:"riotName"`
	RiotTag   string  `json:"riotTag"`
	Region    string  `json:"region"`
	Tier      string  `json:"tier"`
	LP        int     `json:"lp"`
	Games     int     `json:"games"`
	Wins      int     `json:"wins"`
	Winrate   float64 `json:"winrate"`
}

type PlayerRow struct {
	PlayerID    int64        `json:"playerId"`
	Pseudo      string       `json:"pseudo"`
	Slug        string       `json:"slug"`
	Role        string       `json:"role"`
	Rank        int          `json:"rank"`
	Games       int          `json:"games"`
	Wins        int          `json:"wins"`
	Winrate     float64      `json:"winrate"`
	TotalLP     int          `json:"totalLp"`
	LPChange    int          `json:"lpChange"`
	GamesChange int          `json:"gamesChange"`
	Accounts    []AccountRow `json:"accounts"`
}

type TeamRow struct {
	TeamID      int64       `json:"teamId"`
	Name        string      `json:"name"`
	ShortName   string      `json:"shortName"`
	Region      string      `json:"region"`
	League      string      `json:"league"`
	Rank        int         `json:"rank"`
	Games       int         `json:"games"`
	Wins        int         `json:"wins"`
	Winrate     float64     `json:"winrate"`
	TotalLP     int         `json:"totalLp"`
	LPChange    int         `json:"lpChange"`
	GamesChange int         `json:"gamesChange"`
	Players     []PlayerRow `json:"players"`
}

// GrinderRow is one entity (team or player, per view mode) ranked by total
// games played in the period.
type GrinderRow struct {
	EntityID int64   `json:"entityId"`
	Name     string  `json:"name"`
	League   string  `json:"league"`
	Games    int     `json:"games"`
	Wins     int     `json:"wins"`
	Winrate  float64 `json:"winrate"`
}

type LpMoverRow struct {
	EntityID int64  `json:"entityId"`
	Name     string `json:"name"`
	League   string `json:"league"`
	Tier     string `json:"tier"`
	StartLP  int    `json:"startLp"`
	EndLP    int    `json:"endLp"`
	LPChange int    `json:"lpChange"`
}

type HistoryPoint struct {
	Date    string  `json:"date"`
	Games   int     `json:"games"`
	Wins    int     `json:"wins"`
	Winrate float64 `json:"winrate"`
	LP      int     `json:"lp"`
}

type StreakRow struct {
	PlayerID int64  `json:"playerId"`
	Pseudo   string `json:"pseudo"`
	RiotName string `json:"riotName"`
	League   string `json:"league"`
	Current  int    `json:"current"`
	Best     int    `json:"best"`
}
