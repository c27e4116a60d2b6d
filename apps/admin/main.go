package main

import (
	"context"
	"log"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/sems/core"
	"github.com/trezcool/sems/core/user"
	appfs "github.com/trezcool/sems/fs"
	logsvc "github.com/trezcool/sems/services/logger"
	"github.com/trezcool/sems/storage/database"
	"github.com/trezcool/sems/storage/database/sqlxrepos"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)
	defer logger.Close()

	// set up DB
	db, err := database.Open(context.Background(), conf.Database)
	if err != nil {
		logger.Fatal("setting up database", err)
	}

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	user.LoadCommonPasswords(appfs.FS, logger)

	// start CLI
	cli := commandLine{
		db:       db.DB,
		usrRepo:  sqlxrepos.NewUserRepository(db),
		validate: validate,
	}
	err = cli.run(os.Args)
	_ = db.Close()
	if err != nil {
		if err != errHelp {
			if vErr, ok := core.TranslateErrors(err, translator); ok {
				err = vErr
			}
			logger.Error("error: " + err.Error())
		}
		os.Exit(1)
	}
}
