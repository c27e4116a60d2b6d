package core_test

import (
	"encoding/base64"
	"io"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/sems/core"
	"github.com/trezcool/sems/core/exam"
	"github.com/trezcool/sems/core/examinee"
	"github.com/trezcool/sems/core/registration"
	appfs "github.com/trezcool/sems/fs"
	"github.com/trezcool/sems/services/logger"
)

func TestEmailMessage_Render(t *testing.T) {
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), &core.Config{})
	core.ParseEmailTemplates(appfs.FS, logger, true /* strict */)

	ticket := registration.HallTicket{
		Registration: registration.Registration{HallTicketNumber: "HT-1-2", Status: registration.StatusConfirmed},
		Examinee:     examinee.Examinee{RegistrationNumber: "REG002", FirstName: "Bob", LastName: "Roe"},
		Exam: exam.Exam{
			Name: "Computer Science", Code: "CS101", Date: time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC),
			StartTime: "10:00", EndTime: "13:00", Venue: "Main Hall",
		},
	}

	tests := []struct {
		name     string
		msg      core.EmailMessage
		wantText []string
		wantHTML bool
	}{
		{
			name:     "plain body",
			msg:      core.EmailMessage{BodyStr: "hello"},
			wantText: []string{"hello"},
		},
		{
			name:     "hall ticket template",
			msg:      core.EmailMessage{TemplateName: "hall_ticket", TemplateData: ticket},
			wantText: []string{"Dear Bob Roe,", "Computer Science (CS101)", "HT-1-2", "2030-06-01", "10:00 - 13:00", "Main Hall"},
			wantHTML: true,
		},
		{
			name: "unknown template",
			msg:  core.EmailMessage{TemplateName: "nope"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.msg
			if err := msg.Render("SEMS"); err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			for _, s := range tt.wantText {
				assert.Contains(t, msg.TextContent, s)
			}
			if len(tt.wantText) == 0 {
				assert.False(t, msg.HasContent())
			}
			assert.Equal(t, tt.wantHTML, msg.HTMLContent != "")
			if tt.wantHTML {
				assert.Contains(t, msg.HTMLContent, "HT-1-2")
			}
		})
	}
}

func TestEmailMessage_Attach(t *testing.T) {
	var msg core.EmailMessage
	if err := msg.Attach(strings.NewReader("HALL TICKET"), "HT-1-2.txt", "text/plain"); err != nil {
		t.Fatalf("Attach() error = %v", err)
	}
	if err := msg.Attach(strings.NewReader("a,b\n1,2\n"), "results.csv"); err != nil {
		t.Fatalf("Attach() error = %v", err)
	}

	if assert.Len(t, msg.Attachments, 2) {
		at := msg.Attachments[0]
		assert.Equal(t, "HT-1-2.txt", at.Filename)
		assert.Equal(t, "text/plain", at.ContentType)
		decoded, err := base64.StdEncoding.DecodeString(at.Content.String())
		if assert.NoError(t, err) {
			assert.Equal(t, "HALL TICKET", string(decoded))
		}
		assert.True(t, strings.HasPrefix(msg.Attachments[1].ContentType, "text/plain"))
	}
	assert.True(t, msg.HasAttachments())
	assert.False(t, msg.HasRecipients())
}
