package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/go-playground/validator/v10"
	"golang.org/x/term"

	"github.com/trezcool/sems/core"
	"github.com/trezcool/sems/core/exam"
	"github.com/trezcool/sems/core/examinee"
	"github.com/trezcool/sems/core/registration"
	"github.com/trezcool/sems/core/report"
	"github.com/trezcool/sems/core/result"
	"github.com/trezcool/sems/core/user"
	appfs "github.com/trezcool/sems/fs"
	emailsvc "github.com/trezcool/sems/services/email"
	logsvc "github.com/trezcool/sems/services/logger"
	"github.com/trezcool/sems/storage/database"
	"github.com/trezcool/sems/storage/database/sqlxrepos"
)

func main() {
	conf := core.NewConfig()

	// logs go to stderr so they never mix with the screens
	logger := logsvc.NewRollbarLogger(log.New(os.Stderr, "CONSOLE : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	defer logger.Close()

	// set up DB
	db, err := database.Open(context.Background(), conf.Database)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("closing database", err)
		}
	}()
	if err = database.Migrate(db.DB); err != nil {
		logger.Fatal(fmt.Sprintf("migrating database: %v", err), err)
	}
	txRunner := database.NewTxRunner(db)

	core.ParseEmailTemplates(appfs.FS, logger, false /* strict */)
	user.LoadCommonPasswords(appfs.FS, logger)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	exam.InitValidators(validate, translator)

	var mailSvc core.EmailService
	if conf.Debug || conf.SendgridApiKey == "" {
		mailSvc = emailsvc.NewConsoleService(conf, logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	examineeRepo := sqlxrepos.NewExamineeRepository(db)
	examRepo := sqlxrepos.NewExamRepository(db)

	c := newConsole(consoleDeps{
		conf:        conf,
		logger:      logger,
		userSvc:     user.NewService(sqlxrepos.NewUserRepository(db)),
		examineeSvc: examinee.NewService(examineeRepo),
		examSvc:     exam.NewService(examRepo),
		regSvc:      registration.NewService(txRunner, sqlxrepos.NewRegistrationRepository(db), examineeRepo, examRepo, mailSvc),
		resultSvc:   result.NewService(txRunner, sqlxrepos.NewResultRepository(db)),
		reportSvc:   report.NewService(sqlxrepos.NewReportRepository(db)),
		validate:    validate,
		translator:  translator,
	}, os.Stdin, os.Stdout)

	if fd := int(os.Stdin.Fd()); term.IsTerminal(fd) {
		c.readPassword = func() (string, error) {
			pwd, err := term.ReadPassword(fd)
			fmt.Fprintln(c.out)
			return string(pwd), err
		}
	}

	if err = c.run(); err != nil {
		logger.Error("console: "+err.Error(), err)
		os.Exit(1)
	}
}
