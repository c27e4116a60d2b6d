package logsvc

import (
	"bytes"
	"log"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/sems/core"
	"github.com/trezcool/sems/core/exam"
	"github.com/trezcool/sems/core/examinee"
	"github.com/trezcool/sems/core/registration"
	"github.com/trezcool/sems/core/user"
)

func Test_newEntry(t *testing.T) {
	errBoom := errors.New("boom")
	actor := user.User{ID: 1, Username: "admin"}

	tests := []struct {
		name       string
		args       []interface{}
		wantPerson string
		wantExtras map[string]interface{}
		wantRest   []interface{}
	}{
		{name: "no args"},
		{name: "error only", args: []interface{}{errBoom}, wantRest: []interface{}{errBoom}},
		{
			name:       "first user is the actor",
			args:       []interface{}{actor, user.User{ID: 7, Username: "staff"}},
			wantPerson: "admin",
			wantExtras: map[string]interface{}{"user_id": 7},
		},
		{
			name: "domain records",
			args: []interface{}{
				errBoom,
				examinee.Examinee{ID: 3, RegistrationNumber: "REG001"},
				exam.Exam{ID: 4, Code: "CS101"},
				map[string]interface{}{"email_to": 1},
			},
			wantExtras: map[string]interface{}{
				"examinee_id": 3, "registration_number": "REG001",
				"exam_id": 4, "exam_code": "CS101",
				"email_to": 1,
			},
			wantRest: []interface{}{errBoom},
		},
		{
			name: "hall ticket",
			args: []interface{}{registration.HallTicket{
				Registration: registration.Registration{ID: 9, HallTicketNumber: "HT-4-3"},
				Examinee:     examinee.Examinee{RegistrationNumber: "REG001"},
				Exam:         exam.Exam{Code: "CS101"},
			}},
			wantExtras: map[string]interface{}{
				"registration_id": 9, "hall_ticket_number": "HT-4-3",
				"exam_code": "CS101", "registration_number": "REG001",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEntry(tt.args)
			if tt.wantPerson == "" {
				assert.Nil(t, e.person)
			} else if assert.NotNil(t, e.person) {
				assert.Equal(t, tt.wantPerson, e.person.Username)
			}
			assert.Equal(t, tt.wantExtras, e.extras)
			assert.Equal(t, tt.wantRest, e.rest)
		})
	}
}

func TestRollbarLogger_Error(t *testing.T) {
	var buf bytes.Buffer
	logger := NewRollbarLogger(log.New(&buf, "", 0), &core.Config{Debug: true})

	logger.Error("registering failed", errors.New("boom"), user.User{ID: 1, Username: "admin"},
		registration.Registration{ID: 9, HallTicketNumber: "HT-4-3"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if assert.GreaterOrEqual(t, len(lines), 2) {
		assert.Equal(t, "registering failed user=admin [hall_ticket_number=HT-4-3 registration_id=9]", lines[0])
		assert.Equal(t, "boom", lines[1])
	}
}
