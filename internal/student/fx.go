package student

import (
	"go.uber.org/fx"

	"github.com/escolaris/finance/internal/student/repository"
)

var Module = fx.Module("student",
	fx.Provide(repository.Provide),
)
