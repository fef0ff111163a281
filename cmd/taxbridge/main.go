package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/taxbridge/internal/clock"
	"github.com/smallbiznis/taxbridge/internal/config"
	"github.com/smallbiznis/taxbridge/internal/migration"
	"github.com/smallbiznis/taxbridge/internal/observability"
	"github.com/smallbiznis/taxbridge/internal/order"
	"github.com/smallbiznis/taxbridge/internal/scheduler"
	"github.com/smallbiznis/taxbridge/internal/server"
	"github.com/smallbiznis/taxbridge/internal/taxjar"
	"github.com/smallbiznis/taxbridge/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core Infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		// TaxJar gateway, HTTP surface and background jobs in one process.
		// server.Module brings nexus, taxprovider and taxlog.
		taxjar.Module,
		order.Module,
		scheduler.Module,
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
