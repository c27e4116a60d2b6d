package sqlxrepos_test

import (
	"context"
	"io"
	"log"
	"net/mail"
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/sems/core"
	"github.com/trezcool/sems/core/exam"
	"github.com/trezcool/sems/core/examinee"
	"github.com/trezcool/sems/core/registration"
	"github.com/trezcool/sems/core/report"
	"github.com/trezcool/sems/core/result"
	"github.com/trezcool/sems/core/user"
	"github.com/trezcool/sems/services/email"
	"github.com/trezcool/sems/services/logger"
	"github.com/trezcool/sems/storage/database"
	"github.com/trezcool/sems/storage/database/sqlxrepos"
	"github.com/trezcool/sems/testutil"
)

func TestUserRepository(t *testing.T) {
	db := testutil.PrepareDB(t)
	repo := sqlxrepos.NewUserRepository(db)
	svc := user.NewService(repo)
	ctx := context.Background()

	usr := testutil.CreateUser(t, repo, "staff", "S3cure#Pwd", user.RoleStaff, true)
	testutil.CreateUser(t, repo, "admin", "S3cure#Pwd", user.RoleAdmin, true)

	if _, err := repo.CreateUser(ctx, user.User{Username: "staff", Role: user.RoleStaff}); errors.Cause(err) != user.ErrUsernameExists {
		t.Errorf("CreateUser() error = %v, wantErr %v", err, user.ErrUsernameExists)
	}

	got, err := svc.Authenticate(ctx, "STAFF", "S3cure#Pwd")
	if assert.NoError(t, err) {
		assert.Equal(t, usr.ID, got.ID)
		assert.False(t, got.LastLogin.IsZero())
	}

	admins, err := svc.Query(ctx, &user.QueryFilter{Role: user.RoleAdmin}, nil)
	if assert.NoError(t, err) && assert.Len(t, admins, 1) {
		assert.Equal(t, "admin", admins[0].Username)
	}

	if assert.NoError(t, svc.Delete(ctx, usr.ID)) {
		if _, err = svc.GetByID(ctx, usr.ID); errors.Cause(err) != user.ErrNotFound {
			t.Errorf("GetByID() error = %v, wantErr %v", err, user.ErrNotFound)
		}
	}
}

func TestExamineeAndExamRepositories(t *testing.T) {
	db := testutil.PrepareDB(t)
	examineeRepo := sqlxrepos.NewExamineeRepository(db)
	examRepo := sqlxrepos.NewExamRepository(db)
	examineeSvc := examinee.NewService(examineeRepo)
	examSvc := exam.NewService(examRepo)
	ctx := context.Background()

	alice, err := examineeSvc.Create(ctx, examinee.NewExaminee{
		RegistrationNumber: "REG001",
		FirstName:          "Alice",
		LastName:           "Doe",
		Email:              "alice@test.in",
		DateOfBirth:        "2001-02-03",
	})
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, "2001-02-03", core.FormatDate(alice.DateOfBirth))

	_, err = examineeSvc.Create(ctx, examinee.NewExaminee{RegistrationNumber: "REG001", FirstName: "A", LastName: "B"})
	if errors.Cause(err) != examinee.ErrRegistrationNumberExists {
		t.Errorf("Create() error = %v, wantErr %v", err, examinee.ErrRegistrationNumberExists)
	}

	found, err := examineeSvc.Query(ctx, &examinee.QueryFilter{Search: "ALICE@"})
	if assert.NoError(t, err) {
		assert.Len(t, found, 1)
	}

	cs, err := examSvc.Create(ctx, exam.NewExam{
		Name:            "Computer Science",
		Code:            "CS101",
		Date:            "2030-06-01",
		StartTime:       "10:00",
		EndTime:         "13:00",
		DurationMinutes: 180,
		Venue:           "Main Hall",
		MaxCapacity:     1,
	}, 0)
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, exam.StatusScheduled, cs.Status)
	assert.Equal(t, "10:00", cs.StartTime)

	if assert.NoError(t, examSvc.UpdateStatus(ctx, cs.ID, exam.StatusOngoing)) {
		got, err := examSvc.GetByCode(ctx, "CS101")
		if assert.NoError(t, err) {
			assert.Equal(t, exam.StatusOngoing, got.Status)
			assert.Equal(t, "2030-06-01", core.FormatDate(got.Date))
		}
	}
	if err = examSvc.UpdateStatus(ctx, 999, exam.StatusOngoing); errors.Cause(err) != exam.ErrNotFound {
		t.Errorf("UpdateStatus() error = %v, wantErr %v", err, exam.ErrNotFound)
	}

	n, err := examSvc.Count(ctx)
	if assert.NoError(t, err) {
		assert.Equal(t, 1, n)
	}
}

func TestRegistrationResultAndReportRepositories(t *testing.T) {
	db := testutil.PrepareDB(t)
	ctx := context.Background()

	conf := &core.Config{AppName: "SEMS", DefaultFromEmail: mail.Address{Address: "noreply@test.in"}}
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
	txRunner := database.NewTxRunner(db)
	examineeRepo := sqlxrepos.NewExamineeRepository(db)
	examRepo := sqlxrepos.NewExamRepository(db)
	regSvc := registration.NewService(
		txRunner,
		sqlxrepos.NewRegistrationRepository(db),
		examineeRepo,
		examRepo,
		emailsvc.NewConsoleServiceMock(conf, logger),
	)
	resultSvc := result.NewService(txRunner, sqlxrepos.NewResultRepository(db))
	reportSvc := report.NewService(sqlxrepos.NewReportRepository(db))

	alice := testutil.CreateExaminee(t, examineeRepo, "REG001", "Alice", "Doe")
	bob := testutil.CreateExaminee(t, examineeRepo, "REG002", "Bob", "Roe")
	cs := testutil.CreateExam(t, examRepo, "CS101", "Computer Science", 1)

	reg, err := regSvc.Register(ctx, alice.ID, cs.ID, "")
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, registration.HallTicketNumber(cs.ID, alice.ID), reg.HallTicketNumber)

	tests := []struct {
		name       string
		examineeID int
		examID     int
		wantErr    error
	}{
		{name: "duplicate with generated hall ticket", examineeID: alice.ID, examID: cs.ID, wantErr: registration.ErrAlreadyRegistered},
		{name: "exam full", examineeID: bob.ID, examID: cs.ID, wantErr: registration.ErrExamFull},
		{name: "unknown exam", examineeID: bob.ID, examID: 999, wantErr: registration.ErrExamNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := regSvc.Register(ctx, tt.examineeID, tt.examID, ""); errors.Cause(err) != tt.wantErr {
				t.Errorf("Register() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	confirmed, err := regSvc.Confirm(ctx, reg.ID)
	if assert.NoError(t, err) {
		assert.Equal(t, registration.StatusConfirmed, confirmed.Status)
		assert.Equal(t, "Alice Doe", confirmed.ExamineeName)
		assert.Equal(t, "CS101", confirmed.ExamCode)
	}

	res, err := resultSvc.Save(ctx, result.NewResult{
		RegistrationID: reg.ID,
		MarksObtained:  decimal.RequireFromString("45.5"),
		MaxMarks:       decimal.RequireFromString("70"),
	}, 0)
	if assert.NoError(t, err) {
		assert.Equal(t, "65", res.Percentage.String())
		assert.Equal(t, result.GradeC, res.Grade)
	}
	if _, err = resultSvc.Save(ctx, result.NewResult{
		RegistrationID: 999,
		MarksObtained:  decimal.NewFromInt(1),
		MaxMarks:       decimal.NewFromInt(2),
	}, 0); errors.Cause(err) != result.ErrRegistrationNotFound {
		t.Errorf("Save() error = %v, wantErr %v", err, result.ErrRegistrationNotFound)
	}

	sum, err := reportSvc.Summary(ctx, 0)
	if assert.NoError(t, err) {
		assert.Equal(t, 2, sum.TotalExaminees)
		assert.Equal(t, 1, sum.TotalExams)
		assert.Equal(t, 1, sum.ActiveRegistrations)
		assert.Equal(t, 1, sum.PassCount)
		assert.Equal(t, "100", sum.PassRatio.String())
		if assert.Len(t, sum.TopExaminees, 1) {
			assert.Equal(t, "REG001", sum.TopExaminees[0].RegistrationNumber)
		}
	}

	// deleting the exam cascades to registrations and results
	if assert.NoError(t, sqlxrepos.NewExamRepository(db).DeleteExams(ctx, []int{cs.ID})) {
		if _, err = regSvc.GetByID(ctx, reg.ID); errors.Cause(err) != registration.ErrNotFound {
			t.Errorf("GetByID() error = %v, wantErr %v", err, registration.ErrNotFound)
		}
		if _, err = resultSvc.GetByRegistration(ctx, reg.ID); errors.Cause(err) != result.ErrNotFound {
			t.Errorf("GetByRegistration() error = %v, wantErr %v", err, result.ErrNotFound)
		}
	}
}
