package main

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/sems/core"
	"github.com/trezcool/sems/core/user"
)

var errInvalidRole = errors.New("role must be admin or staff")

// addUser updates or creates an active user.User
func (cli *commandLine) addUser(uname, role, name, email, pwd string) error {
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)
	role = core.CleanString(role, true /* lower */)
	name = core.CleanString(name)
	email = core.CleanString(email, true /* lower */)

	if !user.IsValidRole(role) {
		return errInvalidRole
	}

	usr, err := cli.usrRepo.GetUser(ctx, user.GetFilter{Username: uname})
	exists := err == nil
	if err != nil {
		if errors.Cause(err) != user.ErrNotFound {
			return err
		}
		usr = user.User{
			Username:  uname,
			FullName:  uname,
			CreatedAt: time.Now().UTC(),
		}
	}
	usr.Role = role
	usr.IsActive = true
	if name != "" {
		usr.FullName = name
	}
	if email != "" {
		usr.Email = email
	}

	if err = cli.checkPassword(usr, pwd); err != nil {
		return err
	}
	if err = usr.SetPassword(pwd); err != nil {
		return err
	}

	if exists {
		_, err = cli.usrRepo.UpdateUser(ctx, usr)
	} else {
		_, err = cli.usrRepo.CreateUser(ctx, usr)
	}
	return err
}

// checkPassword runs the password policy against usr's attributes.
func (cli *commandLine) checkPassword(usr user.User, pwd string) error {
	if cli.validate == nil {
		return nil
	}
	data := user.ResetUserPassword{Password: pwd, PasswordConfirm: pwd}
	return data.Validate(usr, cli.validate)
}
