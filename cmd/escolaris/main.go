package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/escolaris/finance/internal/allocation"
	"github.com/escolaris/finance/internal/clock"
	"github.com/escolaris/finance/internal/config"
	"github.com/escolaris/finance/internal/debt"
	"github.com/escolaris/finance/internal/lock"
	"github.com/escolaris/finance/internal/migration"
	"github.com/escolaris/finance/internal/observability"
	"github.com/escolaris/finance/internal/payment"
	"github.com/escolaris/finance/internal/reminder"
	"github.com/escolaris/finance/internal/risksnapshot"
	"github.com/escolaris/finance/internal/scheduler"
	"github.com/escolaris/finance/internal/server"
	"github.com/escolaris/finance/internal/student"
	"github.com/escolaris/finance/pkg/db"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,
		lock.Module,

		student.Module,
		debt.Module,
		payment.Module,
		allocation.Module,
		reminder.Module,
		risksnapshot.Module,
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
