package report_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/sems/core/registration"
	"github.com/trezcool/sems/core/report"
	"github.com/trezcool/sems/storage/database/dummy"
	"github.com/trezcool/sems/testutil"
)

func TestRatios(t *testing.T) {
	tests := []struct {
		name               string
		passed, failed     int
		wantPass, wantFail string
	}{
		{name: "no results", wantPass: "0", wantFail: "0"},
		{name: "all passed", passed: 4, wantPass: "100", wantFail: "0"},
		{name: "thirds", passed: 2, failed: 1, wantPass: "66.67", wantFail: "33.33"},
		{name: "half", passed: 3, failed: 3, wantPass: "50", wantFail: "50"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pass, fail := report.Ratios(tt.passed, tt.failed)
			if pass.String() != tt.wantPass || fail.String() != tt.wantFail {
				t.Errorf("Ratios() = %v, %v, want %v, %v", pass, fail, tt.wantPass, tt.wantFail)
			}
		})
	}
}

func TestService_Summary(t *testing.T) {
	db := dummydb.Open()
	svc := report.NewService(dummydb.NewReportRepository(db))
	ctx := context.Background()

	empty, err := svc.Summary(ctx, 0)
	if assert.NoError(t, err) {
		assert.Equal(t, 0, empty.TotalExaminees)
		assert.NotNil(t, empty.TopExaminees)
		assert.Empty(t, empty.TopExaminees)
	}

	examineeRepo := dummydb.NewExamineeRepository(db)
	examRepo := dummydb.NewExamRepository(db)
	regRepo := dummydb.NewRegistrationRepository(db)
	resRepo := dummydb.NewResultRepository(db)

	alice := testutil.CreateExaminee(t, examineeRepo, "REG001", "Alice", "Doe")
	bob := testutil.CreateExaminee(t, examineeRepo, "REG002", "Bob", "Roe")
	carol := testutil.CreateExaminee(t, examineeRepo, "REG003", "Carol", "Poe")
	cs := testutil.CreateExam(t, examRepo, "CS101", "Computer Science", 10)
	math := testutil.CreateExam(t, examRepo, "MATH101", "Mathematics", 10)

	aliceCS := testutil.CreateRegistration(t, regRepo, alice.ID, cs.ID, "HT-1", registration.StatusConfirmed)
	aliceMath := testutil.CreateRegistration(t, regRepo, alice.ID, math.ID, "HT-2", registration.StatusRegistered)
	bobCS := testutil.CreateRegistration(t, regRepo, bob.ID, cs.ID, "HT-3", registration.StatusConfirmed)
	testutil.CreateRegistration(t, regRepo, carol.ID, cs.ID, "HT-4", registration.StatusCancelled)

	testutil.CreateResult(t, resRepo, aliceCS.ID, "72", "100")
	testutil.CreateResult(t, resRepo, aliceMath.ID, "95", "100")
	testutil.CreateResult(t, resRepo, bobCS.ID, "30", "100")

	sum, err := svc.Summary(ctx, 1)
	if !assert.NoError(t, err) {
		return
	}
	assert.Equal(t, 3, sum.TotalExaminees)
	assert.Equal(t, 2, sum.TotalExams)
	assert.Equal(t, 4, sum.TotalRegistrations)
	assert.Equal(t, 3, sum.ActiveRegistrations)
	assert.Equal(t, 2, sum.PassCount)
	assert.Equal(t, 1, sum.FailCount)
	assert.Equal(t, "66.67", sum.PassRatio.String())
	assert.Equal(t, "33.33", sum.FailRatio.String())
	if assert.Len(t, sum.TopExaminees, 1) {
		top := sum.TopExaminees[0]
		assert.Equal(t, "REG001", top.RegistrationNumber)
		assert.Equal(t, "Alice Doe", top.Name)
		assert.Equal(t, "95", top.BestPercentage.String())
	}

	// default top N
	sum, err = svc.Summary(ctx, 0)
	if assert.NoError(t, err) {
		assert.Len(t, sum.TopExaminees, 2)
	}
}
