package echoapi_test

import (
	"context"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/sems/apps/api/echo"
	"github.com/trezcool/sems/core"
	"github.com/trezcool/sems/core/exam"
	"github.com/trezcool/sems/core/examinee"
	"github.com/trezcool/sems/core/registration"
	"github.com/trezcool/sems/core/user"
	"github.com/trezcool/sems/testutil"
)

func Test_examApi_create(t *testing.T) {
	app := setup(t)

	clerk := testutil.CreateUser(t, usrRepo, "clerk", "", user.RoleStaff, true)
	token := getToken(t, clerk)
	testutil.CreateExam(t, examRepo, "MATH101", "Maths", 10)

	date := core.FormatDate(time.Now().AddDate(0, 1, 0))
	newExam := func(code, start, end string, capacity int) []byte {
		return marchallObj(t, exam.NewExam{
			Name:            "Physics",
			Code:            code,
			Date:            date,
			StartTime:       start,
			EndTime:         end,
			DurationMinutes: 120,
			Venue:           "Hall B",
			MaxCapacity:     capacity,
		})
	}

	runHttpTests(t, app, []httpTest{
		{name: "Auth required", method: http.MethodPost, path: "/v1/exams", body: newExam("PHY101", "09:00", "11:00", 5), wantCode: http.StatusUnauthorized},
		{
			name: "Ends before start", method: http.MethodPost, path: "/v1/exams", token: token,
			body: newExam("PHY101", "11:00", "09:00", 5), wantCode: http.StatusBadRequest,
		},
		{
			name: "Invalid clock", method: http.MethodPost, path: "/v1/exams", token: token,
			body: newExam("PHY101", "9h", "11:00", 5), wantCode: http.StatusBadRequest,
		},
		{
			name: "No capacity", method: http.MethodPost, path: "/v1/exams", token: token,
			body: newExam("PHY101", "09:00", "11:00", 0), wantCode: http.StatusBadRequest,
		},
		{
			name: "Duplicate code", method: http.MethodPost, path: "/v1/exams", token: token,
			body: newExam("MATH101", "09:00", "11:00", 5), wantCode: http.StatusConflict,
			wantData: marchallObj(t, httpErr{Error: exam.ErrCodeExists.Error()}),
		},
		{
			name: "Created", method: http.MethodPost, path: "/v1/exams", token: token,
			body: newExam("PHY101", "09:00", "11:00", 5), wantCode: http.StatusCreated,
		},
	})

	e, err := examRepo.GetExam(context.Background(), exam.GetFilter{Code: "PHY101"})
	if err != nil {
		t.Fatalf("GetExam() error = %v", err)
	}
	assert.Equal(t, exam.StatusScheduled, e.Status)
	assert.Equal(t, clerk.ID, e.CreatedBy)
	assert.Equal(t, date, core.FormatDate(e.Date))
}

func Test_examApi_statusAndCapacity(t *testing.T) {
	app := setup(t)

	clerk := testutil.CreateUser(t, usrRepo, "clerk", "", user.RoleStaff, true)
	token := getToken(t, clerk)
	e := testutil.CreateExam(t, examRepo, "MATH101", "Maths", 2)
	alice := testutil.CreateExaminee(t, examineeRepo, "EX001", "Alice", "Doe")
	bob := testutil.CreateExaminee(t, examineeRepo, "EX002", "Bob", "Roe")
	testutil.CreateRegistration(t, regRepo, alice.ID, e.ID, "HT-A", registration.StatusRegistered)
	testutil.CreateRegistration(t, regRepo, bob.ID, e.ID, "HT-B", registration.StatusCancelled)

	examPath := "/v1/exams/" + strconv.Itoa(e.ID)
	runHttpTests(t, app, []httpTest{
		{
			name: "Capacity", path: examPath + "/capacity", token: token,
			wantData: marchallObj(t, CapacityResponse{MaxCapacity: 2, ActiveRegistrations: 1, Remaining: 1}),
		},
		{
			name: "Invalid status", method: http.MethodPut, path: examPath + "/status", token: token,
			body: marchallObj(t, StatusRequest{Status: "postponed"}), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"status": exam.ErrInvalidStatus.Error()}),
		},
		{
			name: "Status updated", method: http.MethodPut, path: examPath + "/status", token: token,
			body: marchallObj(t, StatusRequest{Status: "Ongoing"}),
		},
		{name: "Unknown exam", path: "/v1/exams/999", token: token, wantCode: http.StatusNotFound},
		{name: "Count", path: "/v1/exams/count", token: token, wantData: marchallObj(t, CountResponse{Count: 1})},
	})

	got, err := examRepo.GetExam(context.Background(), exam.GetFilter{ID: e.ID})
	if err != nil {
		t.Fatalf("GetExam() error = %v", err)
	}
	assert.Equal(t, exam.StatusOngoing, got.Status)
}

func Test_examApi_query(t *testing.T) {
	app := setup(t)

	clerk := testutil.CreateUser(t, usrRepo, "clerk", "", user.RoleStaff, true)
	token := getToken(t, clerk)
	maths := testutil.CreateExam(t, examRepo, "MATH101", "Maths", 10)
	physics := testutil.CreateExam(t, examRepo, "PHY101", "Physics", 10)

	runHttpTests(t, app, []httpTest{
		{name: "Get all", path: "/v1/exams", token: token, wantData: marchallList(t, maths, physics)},
		{name: "search=phy", path: "/v1/exams?search=phy", token: token, wantData: marchallList(t, physics)},
		{name: "status=completed", path: "/v1/exams?status=completed", token: token, wantData: marchallList(t)},
		{
			name: "Invalid date", path: "/v1/exams?date_from=tomorrow", token: token, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"date_from": "must be a valid date (YYYY-MM-DD)"}),
		},
	})
}

func Test_examineeApi(t *testing.T) {
	app := setup(t)

	clerk := testutil.CreateUser(t, usrRepo, "clerk", "", user.RoleStaff, true)
	token := getToken(t, clerk)
	alice := testutil.CreateExaminee(t, examineeRepo, "EX001", "Alice", "Doe")
	bob := testutil.CreateExaminee(t, examineeRepo, "EX002", "Bob", "Roe")
	e := testutil.CreateExam(t, examRepo, "MATH101", "Maths", 10)
	testutil.CreateRegistration(t, regRepo, bob.ID, e.ID, "HT-B", registration.StatusRegistered)

	newExaminee := func(regNum, email, dob string) []byte {
		return marchallObj(t, examinee.NewExaminee{
			RegistrationNumber: regNum,
			FirstName:          "Carol",
			LastName:           "Poe",
			Email:              email,
			DateOfBirth:        dob,
		})
	}
	bobPath := "/v1/examinees/" + strconv.Itoa(bob.ID)

	runHttpTests(t, app, []httpTest{
		{name: "Auth required", path: "/v1/examinees", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Get all", path: "/v1/examinees", token: token, wantData: marchallList(t, alice, bob)},
		{name: "search=ali", path: "/v1/examinees?search=ali", token: token, wantData: marchallList(t, alice)},
		{name: "Retrieve", path: "/v1/examinees/" + strconv.Itoa(alice.ID), token: token, wantData: marchallObj(t, alice)},
		{
			name: "Invalid email", method: http.MethodPost, path: "/v1/examinees", token: token,
			body: newExaminee("EX003", "carol", ""), wantCode: http.StatusBadRequest,
		},
		{
			name: "Invalid date of birth", method: http.MethodPost, path: "/v1/examinees", token: token,
			body: newExaminee("EX003", "", "31/12/2000"), wantCode: http.StatusBadRequest,
		},
		{
			name: "Duplicate registration number", method: http.MethodPost, path: "/v1/examinees", token: token,
			body: newExaminee("EX001", "", ""), wantCode: http.StatusConflict,
			wantData: marchallObj(t, httpErr{Error: examinee.ErrRegistrationNumberExists.Error()}),
		},
		{
			name: "Created", method: http.MethodPost, path: "/v1/examinees", token: token,
			body: newExaminee("EX003", "carol@test.in", "2000-12-31"), wantCode: http.StatusCreated,
		},
		{name: "Count", path: "/v1/examinees/count", token: token, wantData: marchallObj(t, CountResponse{Count: 3})},
		{name: "Delete cascades", method: http.MethodDelete, path: bobPath, token: token, wantCode: http.StatusNoContent},
		{name: "Deleted", path: bobPath, token: token, wantCode: http.StatusNotFound},
	})

	regs, err := regRepo.QueryRegistrations(context.Background(), &registration.QueryFilter{ExamID: e.ID})
	if err != nil {
		t.Fatalf("QueryRegistrations() error = %v", err)
	}
	assert.Empty(t, regs)
}
