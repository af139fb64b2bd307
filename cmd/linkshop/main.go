package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/linkshophq/linkshop/internal/clock"
	"github.com/linkshophq/linkshop/internal/migration"
	"github.com/linkshophq/linkshop/internal/observability"
	"github.com/linkshophq/linkshop/internal/server"
	"github.com/linkshophq/linkshop/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
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
