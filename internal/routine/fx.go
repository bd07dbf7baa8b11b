package routine

import (
	"github.com/smallbiznis/gymdesk/internal/routine/repository"
	"github.com/smallbiznis/gymdesk/internal/routine/service"
	"go.uber.org/fx"
)

var Module = fx.Module("routine.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
