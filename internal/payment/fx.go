package payment

import (
	"go.uber.org/fx"

	"github.com/escolaris/finance/internal/payment/repository"
	"github.com/escolaris/finance/internal/payment/service"
)

var Module = fx.Module("payment",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
