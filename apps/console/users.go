package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/trezcool/sems/core"
	"github.com/trezcool/sems/core/user"
)

func (c *console) usersMenu() error {
	return c.menu("Manage Users", "Back", []menuItem{
		{"List users", c.listUsers},
		{"Add user", c.addUser},
		{"Activate / deactivate user", c.toggleUser},
		{"Reset user password", c.resetUserPassword},
		{"Delete user", c.deleteUser},
	})
}

func (c *console) listUsers() error {
	ctx, cancel := c.actionCtx()
	defer cancel()
	users, err := c.userSvc.Query(ctx, nil, nil)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(users))
	for _, usr := range users {
		lastLogin := "never"
		if !usr.LastLogin.IsZero() {
			lastLogin = core.FormatDate(usr.LastLogin)
		}
		rows = append(rows, []string{
			strconv.Itoa(usr.ID), usr.Username, usr.FullName, usr.Role, strconv.FormatBool(usr.IsActive), lastLogin,
		})
	}
	c.table([]string{"ID", "Username", "Name", "Role", "Active", "Last Login"}, rows)
	return nil
}

func (c *console) promptNewPassword() (pwd, confirm string, err error) {
	if pwd, err = c.promptPassword("Password"); err != nil {
		return "", "", err
	}
	if confirm, err = c.promptPassword("Confirm password"); err != nil {
		return "", "", err
	}
	return pwd, confirm, nil
}

func (c *console) addUser() error {
	var (
		nu  user.NewUser
		err error
	)
	if nu.Username, err = c.prompt("Username"); err != nil {
		return err
	}
	if nu.FullName, err = c.prompt("Full name"); err != nil {
		return err
	}
	if nu.Email, err = c.prompt("Email"); err != nil {
		return err
	}
	if nu.Phone, err = c.prompt("Phone"); err != nil {
		return err
	}
	if nu.Role, err = c.promptDefault("Role ("+strings.Join(user.AllRoles, "/")+")", user.RoleStaff); err != nil {
		return err
	}
	if nu.Password, nu.PasswordConfirm, err = c.promptNewPassword(); err != nil {
		return err
	}
	if err = nu.Validate(c.validate); err != nil {
		return err
	}

	ctx, cancel := c.actionCtx()
	defer cancel()
	usr, err := c.userSvc.Create(ctx, nu)
	if err != nil {
		return err
	}
	c.success("User %s created (ID %d).", usr.Username, usr.ID)
	return nil
}

func (c *console) promptUser() (user.User, error) {
	uname, err := c.promptRequired("Username")
	if err != nil {
		return user.User{}, err
	}

	ctx, cancel := c.actionCtx()
	defer cancel()
	return c.userSvc.GetByUsername(ctx, uname)
}

func (c *console) toggleUser() error {
	usr, err := c.promptUser()
	if err != nil {
		return err
	}
	if usr.ID == c.usr.ID {
		return errSelfAction
	}

	active := !usr.IsActive
	ctx, cancel := c.actionCtx()
	defer cancel()
	if _, err = c.userSvc.Update(ctx, usr.ID, user.UpdateUser{IsActive: &active}); err != nil {
		return err
	}
	state := "deactivated"
	if active {
		state = "activated"
	}
	c.success("User %s %s.", usr.Username, state)
	return nil
}

func (c *console) resetUserPassword() error {
	usr, err := c.promptUser()
	if err != nil {
		return err
	}

	var rp user.ResetUserPassword
	if rp.Password, rp.PasswordConfirm, err = c.promptNewPassword(); err != nil {
		return err
	}
	if err = rp.Validate(usr, c.validate); err != nil {
		return err
	}

	ctx, cancel := c.actionCtx()
	defer cancel()
	if err = c.userSvc.ResetPassword(ctx, usr.ID, rp.Password); err != nil {
		return err
	}
	c.success("Password of %s reset.", usr.Username)
	return nil
}

func (c *console) deleteUser() error {
	usr, err := c.promptUser()
	if err != nil {
		return err
	}
	if usr.ID == c.usr.ID {
		return errSelfAction
	}
	ok, err := c.confirm(fmt.Sprintf("Delete user %s?", usr.Username))
	if err != nil {
		return err
	}
	if !ok {
		return errCancelled
	}

	ctx, cancel := c.actionCtx()
	defer cancel()
	if err = c.userSvc.Delete(ctx, usr.ID); err != nil {
		return err
	}
	c.success("User %s deleted.", usr.Username)
	return nil
}
