package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/gymdesk/internal/clock"
	"github.com/smallbiznis/gymdesk/internal/config"
	"github.com/smallbiznis/gymdesk/internal/member"
	"github.com/smallbiznis/gymdesk/internal/migration"
	"github.com/smallbiznis/gymdesk/internal/observability"
	"github.com/smallbiznis/gymdesk/internal/plan"
	"github.com/smallbiznis/gymdesk/internal/ratelimit"
	"github.com/smallbiznis/gymdesk/internal/server"
	"github.com/smallbiznis/gymdesk/internal/trainer"
	"github.com/smallbiznis/gymdesk/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		clock.Module,
		ratelimit.Module,

		plan.Module,
		trainer.Module,
		member.Module,

		// No scheduler; run apps/scheduler alongside.
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
