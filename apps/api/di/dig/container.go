package dig_container

import (
	"context"
	"fmt"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

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

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

type serverParams struct {
	dig.In

	Conf            *core.Config
	Logger          core.Logger
	UserSvc         user.Service
	ExamineeSvc     examinee.Service
	ExamSvc         exam.Service
	RegistrationSvc registration.Service
	ResultSvc       result.Service
	ReportSvc       report.Service
	Validate        *validator.Validate
	Translator      ut.Translator
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	return logger
}

func newDB(conf *core.Config, loggerParam DBLoggerParam) (*sqlx.DB, core.DB, core.DBExecutor) {
	setUp := func() (*sqlx.DB, error) {
		db, err := database.Open(context.Background(), conf.Database)
		if err != nil {
			return nil, err
		}
		if err = database.Migrate(db.DB); err != nil {
			_ = db.Close()
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return db, db, db
}

func newEmailService(conf *core.Config, logger core.Logger) core.EmailService {
	if conf.Debug || conf.SendgridApiKey == "" {
		return emailsvc.NewConsoleService(conf, logger)
	}
	return emailsvc.NewSendgridService(conf, logger)
}

func newValidate(translator ut.Translator) *validator.Validate {
	validate := validator.New()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	exam.InitValidators(validate, translator)
	return validate
}

func newServer(p serverParams) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:            p.Conf,
		Logger:          p.Logger,
		UserSvc:         p.UserSvc,
		ExamineeSvc:     p.ExamineeSvc,
		ExamSvc:         p.ExamSvc,
		RegistrationSvc: p.RegistrationSvc,
		ResultSvc:       p.ResultSvc,
		ReportSvc:       p.ReportSvc,
		Validate:        p.Validate,
		Translator:      p.Translator,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(core.NewConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newDB))
	must(c.Provide(database.NewTxRunner))
	must(c.Provide(newEmailService))

	// repositories
	must(c.Provide(sqlxrepos.NewUserRepository))
	must(c.Provide(sqlxrepos.NewExamineeRepository))
	must(c.Provide(sqlxrepos.NewExamRepository))
	must(c.Provide(sqlxrepos.NewRegistrationRepository))
	must(c.Provide(sqlxrepos.NewResultRepository))
	must(c.Provide(sqlxrepos.NewReportRepository))

	// services
	must(c.Provide(user.NewService))
	must(c.Provide(examinee.NewService))
	must(c.Provide(exam.NewService))
	must(c.Provide(registration.NewService))
	must(c.Provide(result.NewService))
	must(c.Provide(report.NewService))

	must(c.Provide(core.NewTranslator))
	must(c.Provide(newValidate))
	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
