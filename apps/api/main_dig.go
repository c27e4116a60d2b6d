package main

import (
	"github.com/jmoiron/sqlx"

	dig_container "github.com/trezcool/sems/apps/api/di/dig"
	echoapi "github.com/trezcool/sems/apps/api/echo"
	"github.com/trezcool/sems/core"
)

func startWithDig() {
	c := dig_container.New()

	must(c.Invoke(func(
		conf *core.Config,
		apiLogger core.Logger,
		dbLoggerParam dig_container.DBLoggerParam,
		db *sqlx.DB,
		server *echoapi.Server,
	) {
		initApp(conf, apiLogger)

		dbLogger := dbLoggerParam.Logger
		defer func() {
			if err := db.Close(); err != nil {
				dbLogger.Fatal("Failed to close", err)
			}
		}()

		serve(conf, apiLogger, server)
	}))
}
