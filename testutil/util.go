// Package testutil holds the fixtures shared by the tests of the repositories, services and apps.
package testutil

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/trezcool/sems/core"
	"github.com/trezcool/sems/core/exam"
	"github.com/trezcool/sems/core/examinee"
	"github.com/trezcool/sems/core/registration"
	"github.com/trezcool/sems/core/result"
	"github.com/trezcool/sems/core/user"
	"github.com/trezcool/sems/storage/database"
)

// DatabaseURLEnv names the variable holding the URL of the Postgres database used by integration tests.
const DatabaseURLEnv = "SEMS_TEST_DATABASE_URL"

var db *sqlx.DB

// PrepareDB opens (once) and migrates the test database, then empties it.
// The test is skipped when no test database is configured.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()

	url := os.Getenv(DatabaseURLEnv)
	if url == "" {
		t.Skipf("%s is not set", DatabaseURLEnv)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if db == nil {
		conn, err := database.Open(ctx, core.DatabaseConfig{URL: url, DisableTLS: true, MaxOpenConns: 5, MaxIdleConns: 2})
		if err != nil {
			t.Fatalf("PrepareDB() failed: %v", err)
		}
		if err = database.Migrate(conn.DB); err != nil {
			t.Fatalf("PrepareDB() failed: %v", err)
		}
		db = conn
	}
	if err := database.Reset(ctx, db); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	return db
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	uname, pwd, role string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Username:  uname,
		Role:      role,
		FullName:  "User " + uname,
		Email:     uname + "@test.in",
		IsActive:  isActive,
		CreatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateExaminee(t *testing.T, repo examinee.Repository, regNum, firstName, lastName string) examinee.Examinee {
	t.Helper()

	now := time.Now().UTC()
	e, err := repo.CreateExaminee(context.Background(), examinee.Examinee{
		RegistrationNumber: regNum,
		FirstName:          firstName,
		LastName:           lastName,
		Email:              regNum + "@test.in",
		City:               "Pune",
		CreatedAt:          now,
		UpdatedAt:          now,
	})
	if err != nil {
		t.Fatalf("CreateExaminee() failed: %v", err)
	}
	return e
}

// CreateExam creates a scheduled exam taking place in 30 days.
func CreateExam(t *testing.T, repo exam.Repository, code, name string, maxCapacity int, createdBy ...int) exam.Exam {
	t.Helper()

	var by int
	if len(createdBy) > 0 {
		by = createdBy[0]
	}
	now := time.Now().UTC()
	e, err := repo.CreateExam(context.Background(), exam.Exam{
		Name:            name,
		Code:            code,
		Date:            now.AddDate(0, 0, 30).Truncate(24 * time.Hour),
		StartTime:       "10:00",
		EndTime:         "13:00",
		DurationMinutes: 180,
		Venue:           "Main Hall",
		MaxCapacity:     maxCapacity,
		Status:          exam.StatusScheduled,
		CreatedBy:       by,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		t.Fatalf("CreateExam() failed: %v", err)
	}
	return e
}

func CreateRegistration(t *testing.T, repo registration.Repository, examineeID, examID int, hallTicket, status string) registration.Registration {
	t.Helper()

	reg, err := repo.CreateRegistration(context.Background(), registration.Registration{
		ExamineeID:       examineeID,
		ExamID:           examID,
		RegistrationDate: time.Now().UTC(),
		Status:           status,
		HallTicketNumber: hallTicket,
	})
	if err != nil {
		t.Fatalf("CreateRegistration() failed: %v", err)
	}
	return reg
}

// CreateResult stores a graded result of marks out of maxMarks.
func CreateResult(t *testing.T, repo result.Repository, registrationID int, marks, maxMarks string, enteredBy ...int) result.Result {
	t.Helper()

	res := result.Result{
		RegistrationID: registrationID,
		MarksObtained:  decimal.RequireFromString(marks),
		MaxMarks:       decimal.RequireFromString(maxMarks),
		EnteredAt:      time.Now().UTC(),
	}
	res.UpdatedAt = res.EnteredAt
	if len(enteredBy) > 0 {
		res.EnteredBy = enteredBy[0]
	}
	res.Percentage = result.CalculatePercentage(res.MarksObtained, res.MaxMarks)
	res.Grade = result.CalculateGrade(res.Percentage)

	res, err := repo.CreateResult(context.Background(), res)
	if err != nil {
		t.Fatalf("CreateResult() failed: %v", err)
	}
	return res
}
