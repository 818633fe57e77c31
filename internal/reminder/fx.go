package reminder

import (
	"go.uber.org/fx"

	"github.com/escolaris/finance/internal/reminder/guard"
	"github.com/escolaris/finance/internal/reminder/repository"
	"github.com/escolaris/finance/internal/reminder/service"
)

var Module = fx.Module("reminder",
	fx.Provide(repository.Provide),
	fx.Provide(guard.New),
	fx.Provide(service.NewSweepTracker),
	fx.Provide(service.NewLogSender),
	fx.Provide(service.NewService),
)
