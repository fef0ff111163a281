package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/taxbridge/internal/clock"
	"github.com/smallbiznis/taxbridge/internal/config"
	"github.com/smallbiznis/taxbridge/internal/metricspush"
	"github.com/smallbiznis/taxbridge/internal/observability"
	"github.com/smallbiznis/taxbridge/internal/order"
	"github.com/smallbiznis/taxbridge/internal/scheduler"
	"github.com/smallbiznis/taxbridge/internal/taxjar"
	"github.com/smallbiznis/taxbridge/internal/taxlog"
	"github.com/smallbiznis/taxbridge/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		// Domain services required by scheduler
		taxjar.Module,
		taxlog.Module,
		order.Module,
		scheduler.Module,

		// No server module, so metrics are pushed instead of scraped.
		metricspush.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(3)
	if err != nil {
		panic(err)
	}
	return node
}
