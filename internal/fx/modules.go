package fx

import (
	"database/sql"

	"go.uber.org/fx"

	"lol-dashboard/internal/cache"
	"lol-dashboard/internal/config"
	"lol-dashboard/internal/database"
	"lol-dashboard/internal/logger"
	"lol-dashboard/internal/repository"
	"lol-dashboard/internal/server"
	"lol-dashboard/internal/service"
)

func provideStore(repo *repository.LeaderboardRepository) service.LeaderboardStore {
	return repo
}

func provideDashboardService(svc *service.LeaderboardService) server.DashboardService {
	return svc
}

func provideHealthChecker(db *sql.DB) server.HealthChecker {
	return db
}

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	fx.Provide(cache.New),
	// repo
	fx.Provide(repository.NewLeaderboardRepository),
	fx.Provide(provideStore),
	// svc
	fx.Provide(service.NewLeaderboardService),
	fx.Provide(provideDashboardService),
	// server
	fx.Provide(provideHealthChecker),
	fx.Provide(server.NewDashboardServer),
)
