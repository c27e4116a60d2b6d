package user_test

import (
	"io"
	"log"
	"testing"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/sems/core"
	"github.com/trezcool/sems/core/user"
	appfs "github.com/trezcool/sems/fs"
	"github.com/trezcool/sems/services/logger"
)

func TestNewUser_Validate_password(t *testing.T) {
	conf := &core.Config{}
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	user.LoadCommonPasswords(appfs.FS, logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf))

	tests := []struct {
		name    string
		pwd     string
		wantErr string
	}{
		{name: "too short", pwd: "Ab1#", wantErr: "password must contain at least 8 characters"},
		{name: "whitespace", pwd: "Abc 123#xyz", wantErr: "password must not contain whitespace"},
		{name: "all numeric", pwd: "12345678", wantErr: "password cannot be entirely numeric"},
		{name: "no special", pwd: "Abcd1234", wantErr: "password must contain at least 1 uppercase character, 1 lowercase character, 1 digit and 1 special character"},
		{name: "no upper", pwd: "abcd#1234", wantErr: "password must contain at least 1 uppercase character, 1 lowercase character, 1 digit and 1 special character"},
		{name: "similar to username", pwd: "Johnsmith1!", wantErr: "password cannot be similar to user attributes"},
		{name: "common", pwd: "P@ssw0rd1", wantErr: "password is too common"},
		{name: "valid", pwd: "Tr1cky#Kite"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nu := user.NewUser{
				Username:        "johnsmith",
				Password:        tt.pwd,
				PasswordConfirm: tt.pwd,
				Role:            user.RoleStaff,
				FullName:        "John Smith",
			}
			err := nu.Validate(validate)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			vErr, ok := core.TranslateErrors(err, translator)
			if !ok {
				t.Fatalf("Validate() error = %v, want validation errors", err)
			}
			if got := vErr.FieldMap()["password"]; got != tt.wantErr {
				t.Errorf("Validate() password error = %q, want %q", got, tt.wantErr)
			}
		})
	}
}

func TestPasswordSimilarity(t *testing.T) {
	tests := []struct {
		pwd, attr string
		atLeast   float64
		below     float64
	}{
		{pwd: "Johnsmith1!", attr: "johnsmith", atLeast: .7, below: 1.01},
		{pwd: "Tr1cky#Kite", attr: "John Smith", atLeast: 0, below: .7},
		{pwd: "anything", attr: "", atLeast: 0, below: .01},
	}
	for _, tt := range tests {
		t.Run(tt.pwd+"/"+tt.attr, func(t *testing.T) {
			got := user.PasswordSimilarity(tt.pwd, tt.attr)
			if got < tt.atLeast || got >= tt.below {
				t.Errorf("PasswordSimilarity() = %v, want in [%v, %v)", got, tt.atLeast, tt.below)
			}
		})
	}
}
