package debt

import (
	"go.uber.org/fx"

	"github.com/escolaris/finance/internal/debt/repository"
	"github.com/escolaris/finance/internal/debt/service"
)

var Module = fx.Module("debt",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
