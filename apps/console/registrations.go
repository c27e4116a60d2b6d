package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/trezcool/sems/core"
	"github.com/trezcool/sems/core/registration"
)

func (c *console) registrationsMenu() error {
	return c.menu("Exam Registration", "Back", []menuItem{
		{"Register examinee for an exam", c.registerExaminee},
		{"List registrations of an exam", c.listExamRegistrations},
		{"List registrations of an examinee", c.listExamineeRegistrations},
		{"Confirm registration", c.confirmRegistration},
		{"Cancel registration", c.cancelRegistration},
		{"View hall ticket", c.viewHallTicket},
		{"Email hall ticket", c.sendHallTicket},
		{"Delete registration", c.deleteRegistration},
	})
}

func (c *console) registerExaminee() error {
	regNum, err := c.promptRequired("Examinee registration number")
	if err != nil {
		return err
	}
	code, err := c.promptRequired("Exam code")
	if err != nil {
		return err
	}
	hallTicket, err := c.prompt("Hall ticket number (blank to generate)")
	if err != nil {
		return err
	}

	ctx, cancel := c.actionCtx()
	defer cancel()
	e, err := c.examineeSvc.GetByRegistrationNumber(ctx, regNum)
	if err != nil {
		return err
	}
	ex, err := c.examSvc.GetByCode(ctx, code)
	if err != nil {
		return err
	}
	reg, err := c.regSvc.Register(ctx, e.ID, ex.ID, hallTicket)
	if err != nil {
		return err
	}
	c.success("%s registered for %s. Hall ticket: %s (registration ID %d).", e.FullName(), ex.Code, reg.HallTicketNumber, reg.ID)
	return nil
}

func (c *console) listExamRegistrations() error {
	code, err := c.promptRequired("Exam code")
	if err != nil {
		return err
	}

	ctx, cancel := c.actionCtx()
	defer cancel()
	ex, err := c.examSvc.GetByCode(ctx, code)
	if err != nil {
		return err
	}
	regs, err := c.regSvc.QueryByExam(ctx, ex.ID)
	if err != nil {
		return err
	}
	c.printRegistrations(regs)
	return nil
}

func (c *console) listExamineeRegistrations() error {
	regNum, err := c.promptRequired("Examinee registration number")
	if err != nil {
		return err
	}

	ctx, cancel := c.actionCtx()
	defer cancel()
	e, err := c.examineeSvc.GetByRegistrationNumber(ctx, regNum)
	if err != nil {
		return err
	}
	regs, err := c.regSvc.QueryByExaminee(ctx, e.ID)
	if err != nil {
		return err
	}
	c.printRegistrations(regs)
	return nil
}

func (c *console) printRegistrations(regs []registration.Registration) {
	rows := make([][]string, 0, len(regs))
	for _, reg := range regs {
		rows = append(rows, []string{
			strconv.Itoa(reg.ID),
			reg.HallTicketNumber,
			reg.RegistrationNumber,
			reg.ExamineeName,
			reg.ExamCode,
			core.FormatDate(reg.RegistrationDate),
			reg.Status,
		})
	}
	c.table([]string{"ID", "Hall Ticket", "Reg No", "Examinee", "Exam", "Registered On", "Status"}, rows)
}

func (c *console) confirmRegistration() error {
	return c.changeRegistrationStatus(c.regSvc.Confirm)
}

func (c *console) cancelRegistration() error {
	return c.changeRegistrationStatus(c.regSvc.Cancel)
}

func (c *console) changeRegistrationStatus(change func(ctx context.Context, id int) (registration.Registration, error)) error {
	id, err := c.promptInt("Registration ID")
	if err != nil {
		return err
	}

	ctx, cancel := c.actionCtx()
	defer cancel()
	reg, err := change(ctx, id)
	if err != nil {
		return err
	}
	c.success("Registration %s is now %s.", reg.HallTicketNumber, reg.Status)
	return nil
}

// promptRegistration finds a registration by its hall ticket number, or by ID when a number is entered.
func (c *console) promptRegistration() (registration.Registration, error) {
	s, err := c.promptRequired("Hall ticket number or registration ID")
	if err != nil {
		return registration.Registration{}, err
	}

	ctx, cancel := c.actionCtx()
	defer cancel()
	if id, err := strconv.Atoi(s); err == nil {
		return c.regSvc.GetByID(ctx, id)
	}
	return c.regSvc.GetByHallTicket(ctx, s)
}

func (c *console) viewHallTicket() error {
	reg, err := c.promptRegistration()
	if err != nil {
		return err
	}

	ctx, cancel := c.actionCtx()
	defer cancel()
	ticket, err := c.regSvc.HallTicket(ctx, reg.ID)
	if err != nil {
		return err
	}
	fmt.Fprint(c.out, ticket.String())
	return nil
}

func (c *console) sendHallTicket() error {
	reg, err := c.promptRegistration()
	if err != nil {
		return err
	}

	ctx, cancel := c.actionCtx()
	defer cancel()
	if err = c.regSvc.SendHallTicket(ctx, reg.ID); err != nil {
		return err
	}
	c.success("Hall ticket %s sent.", reg.HallTicketNumber)
	return nil
}

func (c *console) deleteRegistration() error {
	reg, err := c.promptRegistration()
	if err != nil {
		return err
	}
	ok, err := c.confirm(fmt.Sprintf("Delete registration %s and its result?", reg.HallTicketNumber))
	if err != nil {
		return err
	}
	if !ok {
		return errCancelled
	}

	ctx, cancel := c.actionCtx()
	defer cancel()
	if err = c.regSvc.Delete(ctx, reg.ID); err != nil {
		return err
	}
	c.success("Registration %s deleted.", reg.HallTicketNumber)
	return nil
}
