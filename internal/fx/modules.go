package fx

import (
	"go.uber.org/fx"

	"classroom-tracker/internal/api"
	"classroom-tracker/internal/catalog"
	"classroom-tracker/internal/config"
	"classroom-tracker/internal/database"
	"classroom-tracker/internal/logger"
	"classroom-tracker/internal/repository"
	"classroom-tracker/internal/scheduler"
	"classroom-tracker/internal/server"
	"classroom-tracker/internal/service"
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	fx.Provide(database.New),
	fx.Provide(catalog.Default),
	// repos
	fx.Provide(repository.NewPlayerRepository),
	fx.Provide(repository.NewEventRepository),
	fx.Provide(repository.NewStatsRepository),
	fx.Provide(repository.NewFranchiseStatsRepository),
	fx.Provide(repository.NewPeriodStatRepository),
	fx.Provide(repository.NewBadgeRepository),
	fx.Provide(repository.NewHallOfFameRepository),
	// webhook client
	fx.Provide(api.NewAnnouncer),
	// svc
	fx.Provide(service.NewBadgeEngine),
	fx.Provide(service.NewHallOfFameService),
	fx.Provide(service.NewScoringService),
	fx.Provide(service.NewRankingService),
	fx.Provide(service.NewRosterService),
	// scheduler + server
	fx.Provide(scheduler.New),
	fx.Provide(server.NewClassroomServer),
)
