package user

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/sems/core"
)

// Roles
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

var (
	AllRoles = []string{RoleAdmin, RoleStaff}

	Roles = []Role{
		{Name: "Administrator", Value: RoleAdmin},
		{Name: "Staff", Value: RoleStaff},
	}
)

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

func IsValidRole(role string) bool {
	for _, r := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	PasswordHash []byte    `json:"-"`
	Role         string    `json:"role"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	LastLogin    time.Time `json:"last_login"` // UTC; zero if never logged in
}

func (u *User) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return nil
}

func (u *User) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(pwd))
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// NewUser contains information needed to create a new User.
type NewUser struct {
	Username        string `json:"username" validate:"required,min=3,max=50,alphanum_"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
	Role            string `json:"role" validate:"required,oneof=admin staff"`
	FullName        string `json:"full_name" validate:"required,max=100"`
	Email           string `json:"email" validate:"omitempty,email,max=100"`
	Phone           string `json:"phone" validate:"omitempty,max=15"`
}

func (nu *NewUser) Validate(validate *validator.Validate) error {
	nu.Username = core.CleanString(nu.Username, true /* lower */)
	nu.FullName = core.CleanString(nu.FullName)
	nu.Email = core.CleanString(nu.Email, true /* lower */)
	nu.Phone = core.CleanString(nu.Phone)
	nu.Role = core.CleanString(nu.Role, true /* lower */)
	return validate.Struct(nu)
}

// UpdateUser defines what information may be provided to modify an existing User.
// Empty strings keep the current values.
type UpdateUser struct {
	Role     string `json:"role" validate:"omitempty,oneof=admin staff"`
	FullName string `json:"full_name" validate:"omitempty,max=100"`
	Email    string `json:"email" validate:"omitempty,email,max=100"`
	Phone    string `json:"phone" validate:"omitempty,max=15"`
	IsActive *bool  `json:"is_active"`
}

func (uu *UpdateUser) Validate(validate *validator.Validate) error {
	uu.Role = core.CleanString(uu.Role, true /* lower */)
	uu.FullName = core.CleanString(uu.FullName)
	uu.Email = core.CleanString(uu.Email, true /* lower */)
	uu.Phone = core.CleanString(uu.Phone)
	return validate.Struct(uu)
}

type ResetUserPassword struct {
	Username        string `json:"-"`
	FullName        string `json:"-"`
	Email           string `json:"-"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required,eqfield=Password"`
}

// Validate checks the new password against the policy and the attributes of usr.
func (rp *ResetUserPassword) Validate(usr User, validate *validator.Validate) error {
	rp.Username = usr.Username
	rp.FullName = usr.FullName
	rp.Email = usr.Email
	return validate.Struct(rp)
}

type GetFilter struct {
	ID       int
	Username string
}

type QueryFilter struct {
	Search   string `query:"search"`
	Role     string `query:"role"`
	IsActive *bool  `query:"is_active"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Role == "" && qf.IsActive == nil
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Role = core.CleanString(qf.Role, true /* lower */)
}
