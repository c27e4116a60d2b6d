package registration

import (
	"fmt"
	"strings"
	"time"

	"github.com/trezcool/sems/core"
	"github.com/trezcool/sems/core/exam"
	"github.com/trezcool/sems/core/examinee"
)

// Statuses
const (
	StatusRegistered = "registered"
	StatusConfirmed  = "confirmed"
	StatusCancelled  = "cancelled"
)

var (
	AllStatuses = []string{StatusRegistered, StatusConfirmed, StatusCancelled}

	// allowed status transitions: {from: {to}}
	transitions = map[string][]string{
		StatusRegistered: {StatusConfirmed, StatusCancelled},
		StatusConfirmed:  {StatusCancelled},
	}
)

func IsValidStatus(status string) bool {
	for _, s := range AllStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// CanTransition reports whether a registration may move from one status to another.
func CanTransition(from, to string) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// HallTicketNumber is the hall ticket assigned when none is provided on registration.
func HallTicketNumber(examID, examineeID int) string {
	return fmt.Sprintf("HT-%d-%d", examID, examineeID)
}

type Registration struct {
	ID               int       `json:"id"`
	ExamineeID       int       `json:"examinee_id"`
	ExamID           int       `json:"exam_id"`
	RegistrationDate time.Time `json:"registration_date"` // UTC
	Status           string    `json:"status"`
	HallTicketNumber string    `json:"hall_ticket_number"`
	Remarks          string    `json:"remarks"`

	// read-only, filled on queries
	ExamineeName       string `json:"examinee_name,omitempty"`
	RegistrationNumber string `json:"registration_number,omitempty"`
	ExamName           string `json:"exam_name,omitempty"`
	ExamCode           string `json:"exam_code,omitempty"`
}

func (r Registration) IsActive() bool {
	return r.Status != StatusCancelled
}

// HallTicket gathers what is printed on an examinee's hall ticket.
type HallTicket struct {
	Registration Registration      `json:"registration"`
	Examinee     examinee.Examinee `json:"examinee"`
	Exam         exam.Exam         `json:"exam"`
}

func (ht HallTicket) ExamDate() string {
	return core.FormatDate(ht.Exam.Date)
}

// String renders the hall ticket as plain text.
func (ht HallTicket) String() string {
	var b strings.Builder
	line := strings.Repeat("=", 48)
	b.WriteString(line + "\n")
	b.WriteString("                  HALL TICKET\n")
	b.WriteString(line + "\n")
	fmt.Fprintf(&b, "Hall Ticket No : %s\n", ht.Registration.HallTicketNumber)
	fmt.Fprintf(&b, "Name           : %s\n", ht.Examinee.FullName())
	fmt.Fprintf(&b, "Registration   : %s\n", ht.Examinee.RegistrationNumber)
	fmt.Fprintf(&b, "Exam           : %s (%s)\n", ht.Exam.Name, ht.Exam.Code)
	fmt.Fprintf(&b, "Date           : %s\n", ht.ExamDate())
	fmt.Fprintf(&b, "Time           : %s - %s (%d min)\n", ht.Exam.StartTime, ht.Exam.EndTime, ht.Exam.DurationMinutes)
	fmt.Fprintf(&b, "Venue          : %s\n", ht.Exam.Venue)
	fmt.Fprintf(&b, "Status         : %s\n", ht.Registration.Status)
	b.WriteString(line + "\n")
	return b.String()
}

type GetFilter struct {
	ID               int
	HallTicketNumber string
}

type QueryFilter struct {
	ExamID     int    `query:"exam_id"`
	ExamineeID int    `query:"examinee_id"`
	Status     string `query:"status"`
}
