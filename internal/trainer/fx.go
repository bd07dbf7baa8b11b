package trainer

import (
	"github.com/smallbiznis/gymdesk/internal/trainer/repository"
	"github.com/smallbiznis/gymdesk/internal/trainer/service"
	"go.uber.org/fx"
)

var Module = fx.Module("trainer.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
