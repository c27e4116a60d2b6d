package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"

	"github.com/trezcool/sems/core"
	"github.com/trezcool/sems/core/exam"
	"github.com/trezcool/sems/core/examinee"
	"github.com/trezcool/sems/core/registration"
	"github.com/trezcool/sems/core/report"
	"github.com/trezcool/sems/core/result"
	"github.com/trezcool/sems/core/user"
)

var (
	errInvalidChoice = errors.New("invalid choice")
	errNotANumber    = errors.New("please enter a number")
	errRequired      = errors.New("this field is required")
	errCancelled     = errors.New("cancelled")
	errSelfAction    = errors.New("you cannot do this to your own account")

	// knownErrors are printed as is; anything else is logged and reported as unexpected.
	knownErrors = map[error]bool{
		errInvalidChoice: true,
		errNotANumber:    true,
		errRequired:      true,
		errCancelled:     true,
		errSelfAction:    true,

		user.ErrNotFound:                     true,
		user.ErrUsernameExists:               true,
		user.ErrInvalidCredentials:           true,
		examinee.ErrNotFound:                 true,
		examinee.ErrRegistrationNumberExists: true,
		exam.ErrNotFound:                     true,
		exam.ErrCodeExists:                   true,
		exam.ErrInvalidStatus:                true,
		registration.ErrNotFound:             true,
		registration.ErrAlreadyRegistered:    true,
		registration.ErrHallTicketExists:     true,
		registration.ErrExamNotFound:         true,
		registration.ErrExamineeNotFound:     true,
		registration.ErrExamFull:             true,
		registration.ErrInvalidTransition:    true,
		registration.ErrInvalidStatus:        true,
		registration.ErrInvalidID:            true,
		registration.ErrNoEmail:              true,
		result.ErrNotFound:                   true,
		result.ErrRegistrationNotFound:       true,
		result.ErrResultExists:               true,
		result.ErrInvalidMaxMarks:            true,
		result.ErrInvalidMarks:               true,
	}

	// duplicateErrors are reported with a "duplicate" prefix.
	duplicateErrors = map[error]bool{
		user.ErrUsernameExists:               true,
		examinee.ErrRegistrationNumberExists: true,
		exam.ErrCodeExists:                   true,
		result.ErrResultExists:               true,
	}
)

type consoleDeps struct {
	conf        *core.Config
	logger      core.Logger
	userSvc     user.Service
	examineeSvc examinee.Service
	examSvc     exam.Service
	regSvc      registration.Service
	resultSvc   result.Service
	reportSvc   report.Service
	validate    *validator.Validate
	translator  ut.Translator
}

// console is a line-oriented front end over the core services.
// One console serves one session at a time.
type console struct {
	consoleDeps

	in  *bufio.Scanner
	out io.Writer

	// readPassword reads a secret without echoing it when the input is a terminal.
	readPassword func() (string, error)

	usr user.User // logged in user; zero when logged out

	errColor     *color.Color
	successColor *color.Color
	titleColor   *color.Color
}

func newConsole(deps consoleDeps, in io.Reader, out io.Writer) *console {
	c := &console{
		consoleDeps:  deps,
		in:           bufio.NewScanner(in),
		out:          out,
		errColor:     color.New(color.FgRed),
		successColor: color.New(color.FgGreen),
		titleColor:   color.New(color.FgCyan, color.Bold),
	}
	c.readPassword = func() (string, error) {
		return c.readLine()
	}
	return c
}

// run shows the login screen until the user exits or the input runs out.
func (c *console) run() error {
	fmt.Fprintf(c.out, "Welcome to %s\n", c.conf.AppName)
	for {
		err := c.loginScreen()
		switch {
		case err == nil:
		case err == io.EOF || err == errExit:
			fmt.Fprintln(c.out, "Bye!")
			return nil
		default:
			return err
		}
	}
}

// actionCtx bounds a single service call.
func (c *console) actionCtx() (context.Context, context.CancelFunc) {
	timeout := c.conf.Console.ActionTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return context.WithTimeout(context.Background(), timeout)
}

// =========================================================================
// Output

func (c *console) title(s string) {
	fmt.Fprintln(c.out)
	_, _ = c.titleColor.Fprintln(c.out, "== "+s+" ==")
}

func (c *console) success(format string, args ...interface{}) {
	_, _ = c.successColor.Fprintln(c.out, fmt.Sprintf(format, args...))
}

// printError prints a red one line message for err.
func (c *console) printError(err error) {
	_, _ = c.errColor.Fprintln(c.out, "Error: "+c.errorMessage(err))
}

func (c *console) errorMessage(err error) string {
	cause := errors.Cause(err)
	switch e := cause.(type) {
	case validator.ValidationErrors:
		vErr, _ := core.TranslateErrors(e, c.translator)
		return fieldErrors(vErr.Fields)
	case *core.ValidationError:
		if e.Err != nil {
			if vErr, ok := core.TranslateErrors(e.Err, c.translator); ok {
				return fieldErrors(vErr.Fields)
			}
		}
		return fieldErrors(e.Fields)
	}

	if knownErrors[cause] {
		msg := cause.Error()
		if duplicateErrors[cause] {
			msg = "duplicate: " + msg
		}
		return msg
	}
	if cause == context.DeadlineExceeded {
		return "the operation timed out, please try again"
	}
	c.logger.Error(err.Error(), err, c.usr)
	return "something went wrong, please try again"
}

func fieldErrors(flds []core.FieldError) string {
	msgs := make([]string, 0, len(flds))
	for _, f := range flds {
		msgs = append(msgs, f.Field+": "+f.Error)
	}
	sort.Strings(msgs)
	return strings.Join(msgs, "; ")
}

func (c *console) table(header []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Fprintln(c.out, "No records found.")
		return
	}
	table := tablewriter.NewWriter(c.out)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.AppendBulk(rows)
	table.Render()
}

// =========================================================================
// Input

func (c *console) readLine() (string, error) {
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(c.in.Text()), nil
}

func (c *console) prompt(label string) (string, error) {
	fmt.Fprintf(c.out, "%s: ", label)
	return c.readLine()
}

// promptDefault returns current when the answer is blank.
func (c *console) promptDefault(label, current string) (string, error) {
	fmt.Fprintf(c.out, "%s [%s]: ", label, current)
	s, err := c.readLine()
	if err != nil || s == "" {
		return current, err
	}
	return s, nil
}

func (c *console) promptRequired(label string) (string, error) {
	s, err := c.prompt(label)
	if err == nil && s == "" {
		err = errRequired
	}
	return s, err
}

func (c *console) promptInt(label string) (int, error) {
	s, err := c.prompt(label)
	if err != nil {
		return 0, err
	}
	return parseInt(s)
}

func (c *console) promptIntDefault(label string, current int) (int, error) {
	s, err := c.promptDefault(label, strconv.Itoa(current))
	if err != nil {
		return 0, err
	}
	return parseInt(s)
}

func (c *console) promptPassword(label string) (string, error) {
	fmt.Fprintf(c.out, "%s: ", label)
	pwd, err := c.readPassword()
	if err != nil {
		return "", err
	}
	return pwd, nil
}

// confirm asks a yes/no question; only "y" and "yes" mean yes.
func (c *console) confirm(question string) (bool, error) {
	s, err := c.prompt(question + " (y/N)")
	if err != nil {
		return false, err
	}
	s = strings.ToLower(s)
	return s == "y" || s == "yes", nil
}

func parseInt(s string) (int, error) {
	if s == "" {
		return 0, errRequired
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errNotANumber
	}
	return n, nil
}

// =========================================================================
// Menus

type menuItem struct {
	label  string
	action func() error
}

// menu loops over items until the user picks 0. Action errors are printed and the menu shown again.
func (c *console) menu(title, backLabel string, items []menuItem) error {
	for {
		c.title(title)
		for i, item := range items {
			fmt.Fprintf(c.out, "%2d. %s\n", i+1, item.label)
		}
		fmt.Fprintf(c.out, "%2d. %s\n", 0, backLabel)

		choice, err := c.promptInt("Choice")
		if err != nil {
			if err == io.EOF {
				return err
			}
			c.printError(errInvalidChoice)
			continue
		}
		if choice == 0 {
			return nil
		}
		if choice < 0 || choice > len(items) {
			c.printError(errInvalidChoice)
			continue
		}

		if err = items[choice-1].action(); err != nil {
			if err == io.EOF || err == errExit {
				return err
			}
			c.printError(err)
		}
	}
}
