package constants

import "time"

const (
	LeaderboardCacheTTL = 5 * time.Minute
	GrinderCacheTTL     = 5 * time.Minute
	LpMoverCacheTTL     = 1 * time.Minute
	HistoryCacheTTL     = 5 * time.Minute
	StreakCacheTTL      = 5 * time.Minute
	MetadataCacheTTL    = 1 * time.Hour
)

const (
	TeamLeaderboardTimeout   = 10 * time.Second
	PlayerLeaderboardTimeout = 10 * time.Second
	GrinderTimeout           = 5 * time.Second
	LpMoverTimeout           = 5 * time.Second
	BatchHistoryTimeout      = 15 * time.Second
	StreakTimeout            = 5 * time.Second
	RequestTimeout           = 30 * time.Second
)

const (
	DBMaxOpenConns    = 25
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	DefaultPerPage = 25
	MaxPerPage     = 100
	MaxBatchIDs    = 50
	MaxDateSpan    = 365 * 24 * time.Hour
	TopRosterSize  = 5
	MoverLimit     = 10
)

const (
	ShutdownTimeout = 5 * time.Second
)
