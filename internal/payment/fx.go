package payment

import (
	"github.com/smallbiznis/gymdesk/internal/config"
	"github.com/smallbiznis/gymdesk/internal/payment/gateway"
	"github.com/smallbiznis/gymdesk/internal/payment/repository"
	"github.com/smallbiznis/gymdesk/internal/payment/service"
	"github.com/smallbiznis/gymdesk/internal/payment/signature"
	"go.uber.org/fx"
)

var Module = fx.Module("payment.service",
	fx.Provide(repository.Provide),
	fx.Provide(gateway.Provide),
	fx.Provide(func(cfg config.Config) *signature.Verifier {
		return signature.NewVerifier(cfg.Gateway)
	}),
	fx.Provide(service.New),
)
