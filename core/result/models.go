package result

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/trezcool/sems/core"
)

type Result struct {
	ID             int             `json:"id"`
	RegistrationID int             `json:"registration_id"`
	MarksObtained  decimal.Decimal `json:"marks_obtained"`
	MaxMarks       decimal.Decimal `json:"max_marks"`
	Percentage     decimal.Decimal `json:"percentage"`
	Grade          string          `json:"grade"`
	Remarks        string          `json:"remarks"`
	EnteredBy      int             `json:"entered_by"` // 0 if unknown
	EnteredAt      time.Time       `json:"entered_at"` // UTC
	UpdatedAt      time.Time       `json:"updated_at"` // UTC

	// read-only, filled on queries
	HallTicketNumber   string `json:"hall_ticket_number,omitempty"`
	ExamineeID         int    `json:"examinee_id,omitempty"`
	ExamineeName       string `json:"examinee_name,omitempty"`
	RegistrationNumber string `json:"registration_number,omitempty"`
	ExamID             int    `json:"exam_id,omitempty"`
	ExamName           string `json:"exam_name,omitempty"`
	ExamCode           string `json:"exam_code,omitempty"`
}

func (r Result) IsPass() bool {
	return IsPass(r.Grade)
}

// NewResult contains the marks entered for a registration.
type NewResult struct {
	RegistrationID int             `json:"registration_id" validate:"required,gt=0"`
	MarksObtained  decimal.Decimal `json:"marks_obtained"`
	MaxMarks       decimal.Decimal `json:"max_marks"`
	Remarks        string          `json:"remarks" validate:"omitempty,max=500"`
}

func (nr *NewResult) Validate(validate *validator.Validate) error {
	nr.Remarks = core.CleanString(nr.Remarks)
	if err := validate.Struct(nr); err != nil {
		return err
	}
	return nr.validateMarks()
}

// marksLimit is the largest value a NUMERIC(6,2) column holds.
var marksLimit = decimal.RequireFromString("9999.99")

// validateMarks checks 0 <= marks_obtained <= max_marks and max_marks > 0,
// both storable with 2 decimal places.
func (nr NewResult) validateMarks() error {
	var flds []core.FieldError
	if err := storable(nr.MaxMarks); err != nil {
		flds = append(flds, core.FieldError{Field: "max_marks", Error: err.Error()})
	} else if nr.MaxMarks.Sign() <= 0 {
		flds = append(flds, core.FieldError{Field: "max_marks", Error: ErrInvalidMaxMarks.Error()})
	}
	if err := storable(nr.MarksObtained); err != nil {
		flds = append(flds, core.FieldError{Field: "marks_obtained", Error: err.Error()})
	} else if nr.MarksObtained.Sign() < 0 || (nr.MaxMarks.Sign() > 0 && nr.MarksObtained.GreaterThan(nr.MaxMarks)) {
		flds = append(flds, core.FieldError{Field: "marks_obtained", Error: ErrInvalidMarks.Error()})
	}
	if flds != nil {
		return core.NewValidationError(nil, flds...)
	}
	return nil
}

func storable(marks decimal.Decimal) error {
	if !marks.Equal(marks.Round(2)) {
		return ErrMarksPrecision
	}
	if marks.GreaterThan(marksLimit) {
		return ErrMarksTooLarge
	}
	return nil
}

type GetFilter struct {
	ID             int
	RegistrationID int
}

type QueryFilter struct {
	ExamID     int `query:"exam_id"`
	ExamineeID int `query:"examinee_id"`
}
