package risksnapshot

import (
	"go.uber.org/fx"

	"github.com/escolaris/finance/internal/risksnapshot/repository"
	"github.com/escolaris/finance/internal/risksnapshot/service"
)

var Module = fx.Module("risksnapshot",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
