package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/holidaytable/holidaytable/internal/migration"
	"github.com/holidaytable/holidaytable/internal/observability"
	"github.com/holidaytable/holidaytable/internal/server"
	"github.com/holidaytable/holidaytable/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		server.Module,
		migration.Module,
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
