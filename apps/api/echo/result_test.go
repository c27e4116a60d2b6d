package echoapi_test

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"strconv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/sems/core/registration"
	"github.com/trezcool/sems/core/report"
	"github.com/trezcool/sems/core/result"
	"github.com/trezcool/sems/core/user"
	"github.com/trezcool/sems/testutil"
)

func Test_resultApi_save(t *testing.T) {
	app := setup(t)

	clerk := testutil.CreateUser(t, usrRepo, "clerk", "", user.RoleStaff, true)
	admin := testutil.CreateUser(t, usrRepo, "admin", "", user.RoleAdmin, true)
	e := testutil.CreateExam(t, examRepo, "MATH101", "Maths", 10)
	alice := testutil.CreateExaminee(t, examineeRepo, "EX001", "Alice", "Doe")
	reg := testutil.CreateRegistration(t, regRepo, alice.ID, e.ID, "HT-1", registration.StatusConfirmed)

	body := func(regID int, marks, max string) []byte {
		return marchallObj(t, result.NewResult{
			RegistrationID: regID,
			MarksObtained:  decimal.RequireFromString(marks),
			MaxMarks:       decimal.RequireFromString(max),
			Remarks:        "  well done ",
		})
	}

	runHttpTests(t, app, []httpTest{
		{name: "Auth required", method: http.MethodPut, path: "/v1/results", body: body(reg.ID, "75", "100"), wantCode: http.StatusUnauthorized},
		{
			name: "Unknown role", method: http.MethodPut, path: "/v1/results",
			token: getToken(t, user.User{ID: clerk.ID, Username: "clerk", Role: "guest"}),
			body:  body(reg.ID, "75", "100"), wantCode: http.StatusForbidden,
		},
		{
			name: "Marks above max", method: http.MethodPut, path: "/v1/results", token: getToken(t, clerk),
			body: body(reg.ID, "120", "100"), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"marks_obtained": result.ErrInvalidMarks.Error()}),
		},
		{
			name: "No max marks", method: http.MethodPut, path: "/v1/results", token: getToken(t, clerk),
			body: body(reg.ID, "0", "0"), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"max_marks": result.ErrInvalidMaxMarks.Error()}),
		},
		{
			name: "Marks below a cent", method: http.MethodPut, path: "/v1/results", token: getToken(t, clerk),
			body: body(reg.ID, "0.005", "1"), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"marks_obtained": result.ErrMarksPrecision.Error()}),
		},
		{
			name: "Unknown registration", method: http.MethodPut, path: "/v1/results", token: getToken(t, clerk),
			body: body(999, "75", "100"), wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: result.ErrRegistrationNotFound.Error()}),
		},
		{name: "Created", method: http.MethodPut, path: "/v1/results", token: getToken(t, clerk), body: body(reg.ID, "75", "100")},
	})

	first, err := resRepo.GetResult(context.Background(), result.GetFilter{RegistrationID: reg.ID})
	require.NoError(t, err)
	assert.Equal(t, result.GradeB, first.Grade)
	assert.True(t, first.Percentage.Equal(decimal.NewFromInt(75)), first.Percentage.String())
	assert.Equal(t, "well done", first.Remarks)
	assert.Equal(t, clerk.ID, first.EnteredBy)

	// saving again updates the same row
	req, rec := newAuthRequest(http.MethodPut, "/v1/results", getToken(t, admin), body(reg.ID, "39.99", "100"))
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var got result.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, first.ID, got.ID)
	assert.Equal(t, result.GradeFail, got.Grade)
	assert.Equal(t, clerk.ID, got.EnteredBy)
	assert.Equal(t, "HT-1", got.HallTicketNumber)
	assert.Equal(t, "Alice Doe", got.ExamineeName)

	// registration result
	req, rec = newAuthRequest(http.MethodGet, "/v1/registrations/"+strconv.Itoa(reg.ID)+"/result", getToken(t, clerk))
	app.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func Test_resultApi_query(t *testing.T) {
	app := setup(t)

	clerk := testutil.CreateUser(t, usrRepo, "clerk", "", user.RoleStaff, true)
	token := getToken(t, clerk)
	e := testutil.CreateExam(t, examRepo, "MATH101", "Maths", 10)
	alice := testutil.CreateExaminee(t, examineeRepo, "EX001", "Alice", "Doe")
	bob := testutil.CreateExaminee(t, examineeRepo, "EX002", "Bob", "Roe")
	r1 := testutil.CreateRegistration(t, regRepo, alice.ID, e.ID, "HT-1", registration.StatusConfirmed)
	r2 := testutil.CreateRegistration(t, regRepo, bob.ID, e.ID, "HT-2", registration.StatusConfirmed)
	res1 := testutil.CreateResult(t, resRepo, r1.ID, "45", "100", clerk.ID)
	res2 := testutil.CreateResult(t, resRepo, r2.ID, "91", "100", clerk.ID)

	examPath := "/v1/results?exam_id=" + strconv.Itoa(e.ID)

	t.Run("Filter required", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/results", token)
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("By exam, best first", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, examPath, token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var got []result.Result
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		require.Len(t, got, 2)
		assert.Equal(t, res2.ID, got[0].ID)
		assert.Equal(t, res1.ID, got[1].ID)
		assert.Equal(t, result.GradeAPlus, got[0].Grade)
		assert.Equal(t, "Bob Roe", got[0].ExamineeName)
	})

	t.Run("By examinee", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/examinees/"+strconv.Itoa(alice.ID)+"/results", token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var got []result.Result
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		require.Len(t, got, 1)
		assert.Equal(t, result.GradeE, got[0].Grade)
	})

	t.Run("CSV export", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, examPath+"&format=csv", token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), "exam_results.csv")

		rows, err := csv.NewReader(rec.Body).ReadAll()
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, "Hall Ticket", rows[0][0])
		assert.Equal(t, []string{"HT-2", "EX002", "Bob Roe", "MATH101", "Maths"}, rows[1][:5])
		assert.Equal(t, "Pass", rows[1][9])
		assert.Equal(t, "Pass", rows[2][9])
	})

	t.Run("Delete", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/results/"+strconv.Itoa(res1.ID), token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code)

		_, err := resRepo.GetResult(context.Background(), result.GetFilter{ID: res1.ID})
		assert.Equal(t, result.ErrNotFound, err)
	})
}

func Test_reportApi_summary(t *testing.T) {
	app := setup(t)

	clerk := testutil.CreateUser(t, usrRepo, "clerk", "", user.RoleStaff, true)
	token := getToken(t, clerk)
	maths := testutil.CreateExam(t, examRepo, "MATH101", "Maths", 10)
	physics := testutil.CreateExam(t, examRepo, "PHY101", "Physics", 10)
	alice := testutil.CreateExaminee(t, examineeRepo, "EX001", "Alice", "Doe")
	bob := testutil.CreateExaminee(t, examineeRepo, "EX002", "Bob", "Roe")
	carol := testutil.CreateExaminee(t, examineeRepo, "EX003", "Carol", "Poe")
	r1 := testutil.CreateRegistration(t, regRepo, alice.ID, maths.ID, "HT-1", registration.StatusConfirmed)
	r2 := testutil.CreateRegistration(t, regRepo, alice.ID, physics.ID, "HT-2", registration.StatusConfirmed)
	r3 := testutil.CreateRegistration(t, regRepo, bob.ID, maths.ID, "HT-3", registration.StatusConfirmed)
	testutil.CreateRegistration(t, regRepo, carol.ID, maths.ID, "HT-4", registration.StatusCancelled)
	testutil.CreateResult(t, resRepo, r1.ID, "60", "100")
	testutil.CreateResult(t, resRepo, r2.ID, "95", "100")
	testutil.CreateResult(t, resRepo, r3.ID, "20", "100")

	t.Run("Auth required", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/reports/summary")
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Summary", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/reports/summary?top=1", token)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var got report.Summary
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, 3, got.TotalExaminees)
		assert.Equal(t, 2, got.TotalExams)
		assert.Equal(t, 4, got.TotalRegistrations)
		assert.Equal(t, 3, got.ActiveRegistrations)
		assert.Equal(t, 2, got.PassCount)
		assert.Equal(t, 1, got.FailCount)
		assert.Equal(t, "66.67", got.PassRatio.StringFixed(2))
		assert.Equal(t, "33.33", got.FailRatio.StringFixed(2))
		if assert.Len(t, got.TopExaminees, 1) {
			assert.Equal(t, alice.ID, got.TopExaminees[0].ExamineeID)
			assert.Equal(t, "95", got.TopExaminees[0].BestPercentage.String())
		}
	})
}
