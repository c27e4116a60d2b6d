package logsvc

import (
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/trezcool/sems/core"
	"github.com/trezcool/sems/core/exam"
	"github.com/trezcool/sems/core/examinee"
	"github.com/trezcool/sems/core/registration"
	"github.com/trezcool/sems/core/result"
	"github.com/trezcool/sems/core/user"
)

// RollbarLogger prints to a log.Logger and reports to Rollbar when enabled.
// Domain records passed as args are reduced to their identifiers: they are
// sent to Rollbar as extras and appended to the printed line.
type RollbarLogger struct {
	std *log.Logger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetEnabled(conf.RollbarToken != "" && !conf.Debug && !conf.TestMode)
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	return &RollbarLogger{std: std}
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// Close flushes the pending Rollbar items.
func (l RollbarLogger) Close() {
	rollbar.Close()
}

// entry is a log call split into what Rollbar and the printer need.
type entry struct {
	person *user.User
	extras map[string]interface{} // domain identifiers and caller maps, merged
	rest   []interface{}          // errors and anything unrecognized
}

func newEntry(args []interface{}) entry {
	var e entry
	extra := func(k string, v interface{}) {
		if e.extras == nil {
			e.extras = make(map[string]interface{})
		}
		e.extras[k] = v
	}
	for _, arg := range args {
		switch v := arg.(type) {
		case user.User:
			if e.person == nil { // the first user is the actor
				usr := v
				e.person = &usr
			} else {
				extra("user_id", v.ID)
			}
		case examinee.Examinee:
			extra("examinee_id", v.ID)
			extra("registration_number", v.RegistrationNumber)
		case exam.Exam:
			extra("exam_id", v.ID)
			extra("exam_code", v.Code)
		case registration.Registration:
			extra("registration_id", v.ID)
			extra("hall_ticket_number", v.HallTicketNumber)
		case registration.HallTicket:
			extra("registration_id", v.Registration.ID)
			extra("hall_ticket_number", v.Registration.HallTicketNumber)
			extra("exam_code", v.Exam.Code)
			extra("registration_number", v.Examinee.RegistrationNumber)
		case result.Result:
			extra("result_id", v.ID)
			extra("registration_id", v.RegistrationID)
		case map[string]interface{}:
			for k, val := range v {
				extra(k, val)
			}
		default:
			e.rest = append(e.rest, arg)
		}
	}
	return e
}

// report sends the entry to Rollbar in the order the client expects: msg | error, extras.
func (l RollbarLogger) report(send func(...interface{}), msg string, e entry) {
	if e.person != nil {
		rollbar.SetPerson(strconv.Itoa(e.person.ID), e.person.Username, e.person.Email)
	} else {
		rollbar.ClearPerson()
	}
	args := make([]interface{}, 0, len(e.rest)+2)
	args = append(args, msg)
	args = append(args, e.rest...)
	if e.extras != nil {
		args = append(args, e.extras)
	}
	send(args...)
}

func (l RollbarLogger) print(msg string, e entry) {
	line := msg
	if e.person != nil {
		line += " user=" + e.person.Username
	}
	if len(e.extras) > 0 {
		keys := make([]string, 0, len(e.extras))
		for k := range e.extras {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, fmt.Sprintf("%s=%v", k, e.extras[k]))
		}
		line += " [" + strings.Join(pairs, " ") + "]"
	}
	l.std.Println(line)
	for _, arg := range e.rest {
		l.std.Printf("%+v\n", arg)
	}
}

func (l RollbarLogger) emit(send func(...interface{}), msg string, args []interface{}) {
	e := newEntry(args)
	l.report(send, msg, e)
	l.print(msg, e)
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	l.emit(rollbar.Debug, msg, args)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	l.emit(rollbar.Info, msg, args)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	l.emit(rollbar.Warning, msg, args)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	l.emit(rollbar.Error, msg, args)
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	l.emit(rollbar.Critical, msg, args)
	l.std.Fatal(msg)
}
