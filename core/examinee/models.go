package examinee

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/sems/core"
)

type Examinee struct {
	ID                 int       `json:"id"`
	RegistrationNumber string    `json:"registration_number"`
	FirstName          string    `json:"first_name"`
	LastName           string    `json:"last_name"`
	Email              string    `json:"email"`
	Phone              string    `json:"phone"`
	DateOfBirth        time.Time `json:"date_of_birth"` // zero if unknown
	Address            string    `json:"address"`
	City               string    `json:"city"`
	State              string    `json:"state"`
	Pincode            string    `json:"pincode"`
	CreatedAt          time.Time `json:"created_at"` // UTC
	UpdatedAt          time.Time `json:"updated_at"` // UTC
}

func (e Examinee) FullName() string {
	return e.FirstName + " " + e.LastName
}

// NewExaminee contains the full row of an examinee, used both on create and on update.
type NewExaminee struct {
	RegistrationNumber string `json:"registration_number" validate:"required,max=50"`
	FirstName          string `json:"first_name" validate:"required,max=50"`
	LastName           string `json:"last_name" validate:"required,max=50"`
	Email              string `json:"email" validate:"omitempty,email,max=100"`
	Phone              string `json:"phone" validate:"omitempty,max=15"`
	DateOfBirth        string `json:"date_of_birth" validate:"omitempty,date"` // YYYY-MM-DD
	Address            string `json:"address"`
	City               string `json:"city" validate:"omitempty,max=50"`
	State              string `json:"state" validate:"omitempty,max=50"`
	Pincode            string `json:"pincode" validate:"omitempty,max=10"`
}

func (ne *NewExaminee) Validate(validate *validator.Validate) error {
	ne.RegistrationNumber = core.CleanString(ne.RegistrationNumber)
	ne.FirstName = core.CleanString(ne.FirstName)
	ne.LastName = core.CleanString(ne.LastName)
	ne.Email = core.CleanString(ne.Email, true /* lower */)
	ne.Phone = core.CleanString(ne.Phone)
	ne.DateOfBirth = core.CleanString(ne.DateOfBirth)
	ne.Address = core.CleanString(ne.Address)
	ne.City = core.CleanString(ne.City)
	ne.State = core.CleanString(ne.State)
	ne.Pincode = core.CleanString(ne.Pincode)
	return validate.Struct(ne)
}

// apply copies the payload onto e. Payloads are validated beforehand.
func (ne NewExaminee) apply(e *Examinee) {
	dob, _ := core.ParseDate(ne.DateOfBirth)
	e.RegistrationNumber = ne.RegistrationNumber
	e.FirstName = ne.FirstName
	e.LastName = ne.LastName
	e.Email = ne.Email
	e.Phone = ne.Phone
	e.DateOfBirth = dob
	e.Address = ne.Address
	e.City = ne.City
	e.State = ne.State
	e.Pincode = ne.Pincode
}

type GetFilter struct {
	ID                 int
	RegistrationNumber string
}

type QueryFilter struct {
	Search string `query:"search"`
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}
