package main

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/sems/core"
	"github.com/trezcool/sems/core/exam"
	"github.com/trezcool/sems/core/examinee"
	"github.com/trezcool/sems/core/registration"
	"github.com/trezcool/sems/core/report"
	"github.com/trezcool/sems/core/result"
	"github.com/trezcool/sems/core/user"
	appfs "github.com/trezcool/sems/fs"
	"github.com/trezcool/sems/services/email"
	"github.com/trezcool/sems/services/logger"
	"github.com/trezcool/sems/storage/database/dummy"
	"github.com/trezcool/sems/testutil"
)

const (
	adminPwd = "S3cure#Pwd"
	staffPwd = "An0ther#Pwd"
)

var (
	usrRepo      user.Repository
	examineeRepo examinee.Repository
	examRepo     exam.Repository
	regRepo      registration.Repository
	resRepo      result.Repository
)

// setup returns a console over a fresh dummy store, with an admin and a staff user.
func setup(t *testing.T) *console {
	t.Helper()

	color.NoColor = true
	conf := &core.Config{
		AppName:          "SEMS",
		Env:              "TEST",
		TestMode:         true,
		WorkDir:          t.TempDir(),
		DefaultFromEmail: mail.Address{Name: "SEMS", Address: "noreply@test.in"},
		Console:          core.ConsoleConfig{ActionTimeout: 5 * time.Second},
	}
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
	core.ParseEmailTemplates(appfs.FS, logger, true /* strict */)
	emailsvc.ClearSentMessages()

	db := dummydb.Open()
	usrRepo = dummydb.NewUserRepository(db)
	examineeRepo = dummydb.NewExamineeRepository(db)
	examRepo = dummydb.NewExamRepository(db)
	regRepo = dummydb.NewRegistrationRepository(db)
	resRepo = dummydb.NewResultRepository(db)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	user.LoadCommonPasswords(appfs.FS, logger)
	exam.InitValidators(validate, translator)

	testutil.CreateUser(t, usrRepo, "admin", adminPwd, user.RoleAdmin, true)
	testutil.CreateUser(t, usrRepo, "staff", staffPwd, user.RoleStaff, true)

	return newConsole(consoleDeps{
		conf:        conf,
		logger:      logger,
		userSvc:     user.NewService(usrRepo),
		examineeSvc: examinee.NewService(examineeRepo),
		examSvc:     exam.NewService(examRepo),
		regSvc:      registration.NewService(db, regRepo, examineeRepo, examRepo, emailsvc.NewConsoleServiceMock(conf, logger)),
		resultSvc:   result.NewService(db, resRepo),
		reportSvc:   report.NewService(dummydb.NewReportRepository(db)),
		validate:    validate,
		translator:  translator,
	}, nil, nil)
}

// play feeds the input lines to c and returns everything it printed.
func play(t *testing.T, c *console, lines ...string) string {
	t.Helper()

	out := new(bytes.Buffer)
	c.in = newScanner(strings.Join(lines, "\n") + "\n")
	c.out = out
	if err := c.run(); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	return out.String()
}

func newScanner(input string) *bufio.Scanner {
	return bufio.NewScanner(strings.NewReader(input))
}

func bgCtx() context.Context {
	return context.Background()
}

type consoleTest struct {
	name    string
	input   []string
	want    []string // printed
	notWant []string // never printed
}

func runConsoleTests(t *testing.T, tests []consoleTest) {
	t.Helper()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := play(t, setup(t), tt.input...)
			for _, s := range tt.want {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.notWant {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func Test_console_login(t *testing.T) {
	tests := []consoleTest{
		{
			name:  "exit right away",
			input: []string{""},
			want:  []string{"Welcome to SEMS", "Bye!"},
		},
		{
			name:    "wrong password",
			input:   []string{"staff", "wrong", ""},
			want:    []string{"Error: invalid username or password", "Bye!"},
			notWant: []string{"Dashboard"},
		},
		{
			name:  "unknown user",
			input: []string{"nobody", staffPwd, ""},
			want:  []string{"Error: invalid username or password"},
		},
		{
			name:    "staff dashboard",
			input:   []string{"staff", staffPwd, "0", ""},
			want:    []string{"Welcome, User staff!", "Staff Dashboard (staff)", "Exam Registration", "Logged out.", "Bye!"},
			notWant: []string{"Manage Users"},
		},
		{
			name:  "admin dashboard",
			input: []string{"admin", adminPwd, "0", ""},
			want:  []string{"Admin Dashboard (admin)", "Manage Users"},
		},
		{
			name:    "exit from dashboard",
			input:   []string{"staff", staffPwd, "7"},
			want:    []string{"Bye!"},
			notWant: []string{"Logged out."},
		},
		{
			name:  "invalid choice",
			input: []string{"staff", staffPwd, "42", "abc", "0", ""},
			want:  []string{"Error: invalid choice"},
		},
		{
			name:  "input runs out",
			input: []string{"staff", staffPwd, "1"},
			want:  []string{"Manage Examinees", "Bye!"},
		},
	}
	runConsoleTests(t, tests)
}

func Test_console_examinees(t *testing.T) {
	alice := []string{"REG001", "Alice", "Doe", "alice@test.in", "", "2000-01-15", "", "Pune", "", ""}
	login := []string{"staff", staffPwd, "1"}
	logout := []string{"0", "0", ""}

	var add, addTwice, badEmail, list []string
	add = append(append(append(append(add, login...), "2"), alice...), logout...)
	addTwice = append(append(append(append(append(addTwice, login...), "2"), alice...), "2"), alice...)
	addTwice = append(addTwice, logout...)
	badEmail = append(append(append(badEmail, login...), "2", "REG002", "Bob", "Roe", "not-an-email", "", "", "", "", "", ""), logout...)
	list = append(append(append(append(list, login...), "2"), alice...), "1", "ali")
	list = append(list, logout...)

	tests := []consoleTest{
		{name: "add", input: add, want: []string{"Examinee REG001 added (ID 1)."}},
		{
			name:  "duplicate registration number",
			input: addTwice,
			want:  []string{"Examinee REG001 added", "Error: duplicate: an examinee with this registration number already exists"},
		},
		{name: "invalid email", input: badEmail, want: []string{"Error: email: "}, notWant: []string{"added"}},
		{name: "search", input: list, want: []string{"Alice Doe", "alice@test.in", "1 examinee(s)"}},
	}
	runConsoleTests(t, tests)
}

func Test_console_exams(t *testing.T) {
	c := setup(t)
	out := play(t, c,
		"staff", staffPwd, "2",
		// add
		"2", "CS101", "Computer Science", "", "2030-06-01", "10:00", "13:00", "Main Hall", "", "2",
		// same code
		"2", "CS101", "Again", "", "2030-06-02", "10:00", "13:00", "", "", "",
		// end before start
		"2", "CS102", "Bad Times", "", "2030-06-03", "13:00", "10:00", "", "", "",
		"4", "1", "ongoing",
		"4", "1", "postponed",
		"5", "1",
		"1", "", "",
		"0", "0", "",
	)

	assert.Contains(t, out, "Exam CS101 scheduled on 2030-06-01 (ID 1).")
	assert.Contains(t, out, "Error: duplicate: an exam with this code already exists")
	assert.NotContains(t, out, "Exam CS102 scheduled")
	assert.Contains(t, out, "Exam status set to ongoing.")
	assert.Contains(t, out, "Error: status: invalid exam status")
	assert.Contains(t, out, "Computer Science (CS101): 0/2 seats taken, 2 remaining")

	e, err := c.examSvc.GetByCode(bgCtx(), "CS101")
	if assert.NoError(t, err) {
		assert.Equal(t, exam.StatusOngoing, e.Status)
		assert.Equal(t, 180, e.DurationMinutes)
		assert.Equal(t, 2, e.MaxCapacity)
	}
}

func Test_console_registrations(t *testing.T) {
	c := setup(t)
	alice := testutil.CreateExaminee(t, examineeRepo, "REG001", "Alice", "Doe")
	bob := testutil.CreateExaminee(t, examineeRepo, "REG002", "Bob", "Roe")
	cs := testutil.CreateExam(t, examRepo, "CS101", "Computer Science", 1)

	out := play(t, c,
		"staff", staffPwd, "3",
		"1", "REG001", "CS101", "",
		"1", "REG002", "CS101", "",
		"5", "1",
		"1", "REG002", "CS101", "",
		"4", "1",
		"6", registration.HallTicketNumber(cs.ID, bob.ID),
		"7", "2",
		"2", "CS101",
		"0", "0", "",
	)

	assert.Contains(t, out, "Alice Doe registered for CS101. Hall ticket: "+registration.HallTicketNumber(cs.ID, alice.ID))
	assert.Contains(t, out, "Error: exam has reached its maximum capacity")
	assert.Contains(t, out, "Registration HT-1-1 is now cancelled.")
	assert.Contains(t, out, "Bob Roe registered for CS101. Hall ticket: HT-1-2")
	assert.Contains(t, out, "Error: registration status cannot be changed")
	assert.Contains(t, out, "HALL TICKET")
	assert.Contains(t, out, "Hall Ticket No : HT-1-2")
	assert.Contains(t, out, "Hall ticket HT-1-2 sent.")

	msg, ok := emailsvc.LastSentMessage()
	if assert.True(t, ok) {
		assert.Contains(t, msg.Subject, "HT-1-2")
		if assert.Len(t, msg.To, 1) {
			assert.Equal(t, bob.Email, msg.To[0].Address)
		}
	}
}

func Test_console_results(t *testing.T) {
	c := setup(t)
	alice := testutil.CreateExaminee(t, examineeRepo, "REG001", "Alice", "Doe")
	bob := testutil.CreateExaminee(t, examineeRepo, "REG002", "Bob", "Roe")
	carol := testutil.CreateExaminee(t, examineeRepo, "REG003", "Carol", "Poe")
	cs := testutil.CreateExam(t, examRepo, "CS101", "Computer Science", 10)
	testutil.CreateRegistration(t, regRepo, alice.ID, cs.ID, "HT-A", registration.StatusConfirmed)
	testutil.CreateRegistration(t, regRepo, bob.ID, cs.ID, "HT-B", registration.StatusRegistered)
	testutil.CreateRegistration(t, regRepo, carol.ID, cs.ID, "HT-C", registration.StatusCancelled)

	out := play(t, c,
		"staff", staffPwd,
		"4", "CS101", "", "85", "Good", "39.99", "",
		"5",
		"1", "CS101",
		"2", "REG001",
		"3", "CS101", "",
		"0",
		"6", "",
		"0", "",
	)

	assert.Contains(t, out, "HT-A: 85.00% (A)")
	assert.Contains(t, out, "HT-B: 39.99% (Fail)")
	assert.NotContains(t, out, "Marks for HT-C")
	assert.Contains(t, out, "2 result(s) saved for CS101.")
	assert.Contains(t, out, "2 result(s), 1 passed, 1 failed")
	assert.Contains(t, out, "1 result(s), 1 passed, 0 failed")
	assert.Contains(t, out, "2 result(s) exported to ")
	assert.Contains(t, out, "1 (50.00%)")

	data, err := os.ReadFile(filepath.Join(c.conf.WorkDir, defaultExportFile))
	if assert.NoError(t, err) {
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		if assert.Len(t, lines, 3) {
			assert.True(t, strings.HasPrefix(lines[0], "Hall Ticket,"))
			assert.True(t, strings.HasPrefix(lines[1], "HT-A,REG001,Alice Doe,CS101"))
		}
	}

	// re-entering marks updates the stored result
	out = play(t, c, "staff", staffPwd, "4", "CS101", "50", "40", "", "", "0", "")
	assert.Contains(t, out, "HT-A: 80.00% (A)")
	assert.Contains(t, out, "1 result(s) saved for CS101.")
	results, err := c.resultSvc.QueryByExam(bgCtx(), cs.ID)
	if assert.NoError(t, err) {
		assert.Len(t, results, 2)
	}
}

func Test_console_users(t *testing.T) {
	c := setup(t)
	out := play(t, c,
		"admin", adminPwd, "7",
		"2", "bob", "Bob Builder", "", "", "", "N3w#Secret", "N3w#Secret",
		"2", "bob", "Bob Again", "", "", "", "N3w#Secret", "N3w#Secret",
		"2", "carl", "Carl", "", "", "", "12345678", "12345678",
		"3", "bob",
		"3", "admin",
		"4", "staff", "Fr3sh#Pass", "Fr3sh#Pass",
		"5", "bob", "y",
		"1",
		"0", "8",
	)

	assert.Contains(t, out, "User bob created (ID 3).")
	assert.Contains(t, out, "Error: duplicate: a user with this username already exists")
	assert.Contains(t, out, "Error: password: ")
	assert.Contains(t, out, "User bob deactivated.")
	assert.Contains(t, out, "Error: you cannot do this to your own account")
	assert.Contains(t, out, "Password of staff reset.")
	assert.Contains(t, out, "User bob deleted.")
	assert.Contains(t, out, "Bye!")

	_, err := c.userSvc.Authenticate(bgCtx(), "staff", "Fr3sh#Pass")
	assert.NoError(t, err)
	_, err = c.userSvc.GetByUsername(bgCtx(), "bob")
	assert.Equal(t, user.ErrNotFound, err)
}
