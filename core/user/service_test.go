package user_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/trezcool/sems/core/user"
	"github.com/trezcool/sems/storage/database/dummy"
	"github.com/trezcool/sems/testutil"
)

func TestService_Authenticate(t *testing.T) {
	repo := dummydb.NewUserRepository(dummydb.Open())
	svc := user.NewService(repo)
	ctx := context.Background()

	testutil.CreateUser(t, repo, "staff", "S3cure#Pwd", user.RoleStaff, true)
	testutil.CreateUser(t, repo, "gone", "S3cure#Pwd", user.RoleStaff, false)

	tests := []struct {
		name    string
		uname   string
		pwd     string
		wantErr error
	}{
		{name: "unknown user", uname: "nobody", pwd: "S3cure#Pwd", wantErr: user.ErrInvalidCredentials},
		{name: "blank username", uname: " ", pwd: "S3cure#Pwd", wantErr: user.ErrInvalidCredentials},
		{name: "wrong password", uname: "staff", pwd: "S3cure#pwd", wantErr: user.ErrInvalidCredentials},
		{name: "inactive", uname: "gone", pwd: "S3cure#Pwd", wantErr: user.ErrInvalidCredentials},
		{name: "valid", uname: "staff", pwd: "S3cure#Pwd"},
		{name: "username is case insensitive", uname: " STAFF ", pwd: "S3cure#Pwd"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := time.Now().UTC().Add(-time.Second)
			usr, err := svc.Authenticate(ctx, tt.uname, tt.pwd)
			if errors.Cause(err) != tt.wantErr {
				t.Fatalf("Authenticate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			assert.Equal(t, "staff", usr.Username)
			assert.True(t, usr.LastLogin.After(before))

			stored, err := svc.GetByID(ctx, usr.ID)
			if assert.NoError(t, err) {
				assert.False(t, stored.LastLogin.IsZero())
			}
		})
	}
}

func TestService_CreateAndUpdate(t *testing.T) {
	svc := user.NewService(dummydb.NewUserRepository(dummydb.Open()))
	ctx := context.Background()

	nu := user.NewUser{Username: "bob", Password: "N3w#Secret", Role: user.RoleStaff, FullName: "Bob Builder"}
	usr, err := svc.Create(ctx, nu)
	if !assert.NoError(t, err) {
		return
	}
	assert.True(t, usr.IsActive)
	assert.NoError(t, usr.CheckPassword("N3w#Secret"))
	assert.NotEqual(t, []byte("N3w#Secret"), usr.PasswordHash)

	if _, err = svc.Create(ctx, nu); errors.Cause(err) != user.ErrUsernameExists {
		t.Errorf("Create() error = %v, wantErr %v", err, user.ErrUsernameExists)
	}

	inactive := false
	usr, err = svc.Update(ctx, usr.ID, user.UpdateUser{Role: user.RoleAdmin, IsActive: &inactive})
	if assert.NoError(t, err) {
		assert.True(t, usr.IsAdmin())
		assert.False(t, usr.IsActive)
		assert.Equal(t, "Bob Builder", usr.FullName)
	}

	if assert.NoError(t, svc.ResetPassword(ctx, usr.ID, "An0ther#Pwd")) {
		usr, err = svc.GetByUsername(ctx, "bob")
		if assert.NoError(t, err) {
			assert.NoError(t, usr.CheckPassword("An0ther#Pwd"))
		}
	}

	if assert.NoError(t, svc.Delete(ctx, usr.ID)) {
		if _, err = svc.GetByID(ctx, usr.ID); errors.Cause(err) != user.ErrNotFound {
			t.Errorf("GetByID() error = %v, wantErr %v", err, user.ErrNotFound)
		}
	}
}
