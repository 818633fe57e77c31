package allocation

import (
	"go.uber.org/fx"

	"github.com/escolaris/finance/internal/allocation/service"
)

var Module = fx.Module("allocation",
	fx.Provide(service.NewService),
)
