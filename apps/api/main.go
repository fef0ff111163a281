package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/taxbridge/internal/clock"
	"github.com/smallbiznis/taxbridge/internal/config"
	"github.com/smallbiznis/taxbridge/internal/migration"
	"github.com/smallbiznis/taxbridge/internal/observability"
	"github.com/smallbiznis/taxbridge/internal/server"
	"github.com/smallbiznis/taxbridge/internal/taxjar"
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
		migration.Module,

		taxjar.Module,

		// No scheduler: /api/jobs answers 503 here.
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(2)
	if err != nil {
		panic(err)
	}
	return node
}
