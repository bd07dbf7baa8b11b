package auth

import (
	"context"

	"github.com/smallbiznis/gymdesk/internal/auth/domain"
	"github.com/smallbiznis/gymdesk/internal/auth/repository"
	"github.com/smallbiznis/gymdesk/internal/auth/service"
	"github.com/smallbiznis/gymdesk/internal/auth/token"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.New),
	fx.Provide(token.NewIssuerFromConfig),
	fx.Provide(service.New),
	fx.Invoke(registerAdminSeed),
)

func registerAdminSeed(lc fx.Lifecycle, svc domain.Service) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return svc.SeedAdmin(ctx)
		},
	})
}
