package domain

import (
	"time"
)

type Team struct {
	ID        int64
	Name      string
	ShortName string
	Slug      string
	Region    string
	League    string
	LogoURL   string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Player struct {
	ID        int64
	Slug      string
	Pseudo    string
	Country   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PlayerContract links a player to a team. An open contract (EndDate nil)
// means current membership; aggregation only ever looks at open contracts.
type PlayerContract struct {
	ID        int64
	PlayerID  int64
	TeamID    int64
	Role      string // "TOP", "JUNGLE", "MID", "BOT", "SUPPORT"
	IsStarter bool
	StartDate time.Time
	EndDate   *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

type LolAccount struct {
	ID        int64
	PlayerID  int64
	Puuid     string
	RiotName  string
	RiotTag   string
	Region    string
	IsMain    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// LolDailyStat is one row per (account, date), appended by the collection
// worker. Tier/Division/LP are the rank snapshot as of that date.
type LolDailyStat struct {
	AccountID       int64
	Date            time.Time
	Games           int
	Wins            int
	Kills           int
	Deaths          int
	Assists         int
	DurationSeconds int
	Tier            string
	Division        string
	LP              int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// LolStreak holds signed streak counters: positive = win streak,
// negative = loss streak.
type LolStreak struct {
	AccountID int64
	Current   int
	Best      int
	UpdatedAt time.Time
}
