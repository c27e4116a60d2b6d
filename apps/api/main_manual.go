package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/go-playground/validator/v10"

	echoapi "github.com/trezcool/sems/apps/api/echo"
	"github.com/trezcool/sems/core"
	"github.com/trezcool/sems/core/exam"
	"github.com/trezcool/sems/core/examinee"
	"github.com/trezcool/sems/core/registration"
	"github.com/trezcool/sems/core/report"
	"github.com/trezcool/sems/core/result"
	"github.com/trezcool/sems/core/user"
	emailsvc "github.com/trezcool/sems/services/email"
	logsvc "github.com/trezcool/sems/services/logger"
	"github.com/trezcool/sems/storage/database"
	"github.com/trezcool/sems/storage/database/sqlxrepos"
)

func startManual() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug && conf.RollbarToken != "")

	// set up DB
	db, err := database.Open(context.Background(), conf.Database)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()
	if err = database.Migrate(db.DB); err != nil {
		logger.Fatal(fmt.Sprintf("migrating database: %v", err), err)
	}
	txRunner := database.NewTxRunner(db)

	// set up repositories & services
	var mailSvc core.EmailService
	if conf.Debug || conf.SendgridApiKey == "" {
		mailSvc = emailsvc.NewConsoleService(conf, logger)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	examineeRepo := sqlxrepos.NewExamineeRepository(db)
	examRepo := sqlxrepos.NewExamRepository(db)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	exam.InitValidators(validate, translator)

	initApp(conf, logger)

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:            conf,
			Logger:          logger,
			UserSvc:         user.NewService(sqlxrepos.NewUserRepository(db)),
			ExamineeSvc:     examinee.NewService(examineeRepo),
			ExamSvc:         exam.NewService(examRepo),
			RegistrationSvc: registration.NewService(txRunner, sqlxrepos.NewRegistrationRepository(db), examineeRepo, examRepo, mailSvc),
			ResultSvc:       result.NewService(txRunner, sqlxrepos.NewResultRepository(db)),
			ReportSvc:       report.NewService(sqlxrepos.NewReportRepository(db)),
			Validate:        validate,
			Translator:      translator,
		},
	)

	serve(conf, logger, server)
}

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
