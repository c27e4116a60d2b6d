package main

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/sems/core/user"
)

var errExit = errors.New("exit")

// loginScreen authenticates a user and opens the dashboard of their role.
// It returns errExit when the user chooses to leave the application.
func (c *console) loginScreen() error {
	c.title("Login")
	fmt.Fprintln(c.out, "Enter your credentials (leave the username blank to exit).")

	uname, err := c.prompt("Username")
	if err != nil {
		return err
	}
	if uname == "" {
		return errExit
	}
	pwd, err := c.promptPassword("Password")
	if err != nil {
		return err
	}

	ctx, cancel := c.actionCtx()
	usr, err := c.userSvc.Authenticate(ctx, uname, pwd)
	cancel()
	if err != nil {
		c.printError(err)
		return nil
	}

	c.usr = usr
	defer func() { c.usr = user.User{} }()
	c.success("Welcome, %s!", usr.FullName)

	if err = c.dashboard(); err != nil {
		return err
	}
	c.success("Logged out.")
	return nil
}

// dashboard lists the modules available to the logged in user's role.
func (c *console) dashboard() error {
	items := []menuItem{
		{"Manage Examinees", c.examineesMenu},
		{"Manage Exams", c.examsMenu},
		{"Exam Registration", c.registrationsMenu},
		{"Enter Results", c.enterResults},
		{"View Results", c.resultsMenu},
		{"Reports", c.showReport},
	}
	title := "Staff Dashboard"
	if c.usr.IsAdmin() {
		items = append(items, menuItem{"Manage Users", c.usersMenu})
		title = "Admin Dashboard"
	}
	items = append(items, menuItem{"Exit", func() error { return errExit }})

	return c.menu(fmt.Sprintf("%s (%s)", title, c.usr.Username), "Logout", items)
}
