package exam

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/sems/core"
)

// Statuses
const (
	StatusScheduled = "scheduled"
	StatusOngoing   = "ongoing"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

var AllStatuses = []string{StatusScheduled, StatusOngoing, StatusCompleted, StatusCancelled}

func IsValidStatus(status string) bool {
	for _, s := range AllStatuses {
		if s == status {
			return true
		}
	}
	return false
}

type Exam struct {
	ID                   int       `json:"id"`
	Name                 string    `json:"exam_name"`
	Code                 string    `json:"exam_code"`
	Description          string    `json:"description"`
	Date                 time.Time `json:"exam_date"`
	StartTime            string    `json:"start_time"` // HH:MM
	EndTime              string    `json:"end_time"`   // HH:MM
	DurationMinutes      int       `json:"duration_minutes"`
	Venue                string    `json:"venue"`
	MaxCapacity          int       `json:"max_capacity"`
	CurrentRegistrations int       `json:"current_registrations"`
	Status               string    `json:"status"`
	CreatedBy            int       `json:"created_by"` // 0 if unknown
	CreatedAt            time.Time `json:"created_at"` // UTC
	UpdatedAt            time.Time `json:"updated_at"` // UTC
}

// HasCapacity reports whether the stored registration counter is below the capacity.
func (e Exam) HasCapacity() bool {
	return e.CurrentRegistrations < e.MaxCapacity
}

func (e Exam) RemainingCapacity() int {
	if rem := e.MaxCapacity - e.CurrentRegistrations; rem > 0 {
		return rem
	}
	return 0
}

// NewExam contains information needed to create a new Exam.
type NewExam struct {
	Name            string `json:"exam_name" validate:"required,max=100"`
	Code            string `json:"exam_code" validate:"required,max=20"`
	Description     string `json:"description"`
	Date            string `json:"exam_date" validate:"required,date"`  // YYYY-MM-DD
	StartTime       string `json:"start_time" validate:"required,clock"` // HH:MM
	EndTime         string `json:"end_time" validate:"required,clock"`   // HH:MM
	DurationMinutes int    `json:"duration_minutes" validate:"required,gt=0"`
	Venue           string `json:"venue" validate:"omitempty,max=200"`
	MaxCapacity     int    `json:"max_capacity" validate:"required,gt=0"`
	Status          string `json:"status" validate:"omitempty,oneof=scheduled ongoing completed cancelled"`
}

func (ne *NewExam) Validate(validate *validator.Validate) error {
	ne.clean()
	return validate.Struct(ne)
}

func (ne *NewExam) clean() {
	ne.Name = core.CleanString(ne.Name)
	ne.Code = core.CleanString(ne.Code)
	ne.Description = core.CleanString(ne.Description)
	ne.Date = core.CleanString(ne.Date)
	ne.StartTime = core.CleanString(ne.StartTime)
	ne.EndTime = core.CleanString(ne.EndTime)
	ne.Venue = core.CleanString(ne.Venue)
	ne.Status = core.CleanString(ne.Status, true /* lower */)
}

func (ne NewExam) apply(e *Exam) {
	date, _ := core.ParseDate(ne.Date)
	e.Name = ne.Name
	e.Code = ne.Code
	e.Description = ne.Description
	e.Date = date
	e.StartTime = ne.StartTime
	e.EndTime = ne.EndTime
	e.DurationMinutes = ne.DurationMinutes
	e.Venue = ne.Venue
	e.MaxCapacity = ne.MaxCapacity
	if ne.Status != "" {
		e.Status = ne.Status
	}
}

// UpdateExam is the full row of an existing Exam.
type UpdateExam struct {
	NewExam
	CurrentRegistrations int `json:"current_registrations" validate:"gte=0"`
}

func (ue *UpdateExam) Validate(validate *validator.Validate) error {
	ue.clean()
	return validate.Struct(ue)
}

type GetFilter struct {
	ID   int
	Code string
}

type QueryFilter struct {
	Search   string    `query:"search"`
	Status   string    `query:"status"`
	DateFrom time.Time `query:"date_from"`
	DateTo   time.Time `query:"date_to"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Status = core.CleanString(qf.Status, true /* lower */)
}
