package main

import (
	"fmt"
	"strconv"

	"github.com/trezcool/sems/core"
	"github.com/trezcool/sems/core/examinee"
)

func (c *console) examineesMenu() error {
	return c.menu("Manage Examinees", "Back", []menuItem{
		{"List / search examinees", c.listExaminees},
		{"Add examinee", c.addExaminee},
		{"Update examinee", c.updateExaminee},
		{"Delete examinee", c.deleteExaminee},
	})
}

func (c *console) listExaminees() error {
	search, err := c.prompt("Search (blank for all)")
	if err != nil {
		return err
	}

	ctx, cancel := c.actionCtx()
	defer cancel()
	examinees, err := c.examineeSvc.Query(ctx, &examinee.QueryFilter{Search: search})
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(examinees))
	for _, e := range examinees {
		rows = append(rows, []string{
			strconv.Itoa(e.ID), e.RegistrationNumber, e.FullName(), e.Email, e.Phone, e.City,
		})
	}
	c.table([]string{"ID", "Reg No", "Name", "Email", "Phone", "City"}, rows)
	fmt.Fprintf(c.out, "%d examinee(s)\n", len(examinees))
	return nil
}

// examineeForm prompts for every field of an examinee, defaulting to the values of cur.
func (c *console) examineeForm(cur examinee.NewExaminee) (examinee.NewExaminee, error) {
	var ne examinee.NewExaminee
	fields := []struct {
		label string
		dest  *string
		cur   string
	}{
		{"Registration number", &ne.RegistrationNumber, cur.RegistrationNumber},
		{"First name", &ne.FirstName, cur.FirstName},
		{"Last name", &ne.LastName, cur.LastName},
		{"Email", &ne.Email, cur.Email},
		{"Phone", &ne.Phone, cur.Phone},
		{"Date of birth (YYYY-MM-DD)", &ne.DateOfBirth, cur.DateOfBirth},
		{"Address", &ne.Address, cur.Address},
		{"City", &ne.City, cur.City},
		{"State", &ne.State, cur.State},
		{"Pincode", &ne.Pincode, cur.Pincode},
	}
	for _, f := range fields {
		var err error
		if f.cur != "" {
			*f.dest, err = c.promptDefault(f.label, f.cur)
		} else {
			*f.dest, err = c.prompt(f.label)
		}
		if err != nil {
			return ne, err
		}
	}
	return ne, ne.Validate(c.validate)
}

func (c *console) addExaminee() error {
	ne, err := c.examineeForm(examinee.NewExaminee{})
	if err != nil {
		return err
	}

	ctx, cancel := c.actionCtx()
	defer cancel()
	e, err := c.examineeSvc.Create(ctx, ne)
	if err != nil {
		return err
	}
	c.success("Examinee %s added (ID %d).", e.RegistrationNumber, e.ID)
	return nil
}

func (c *console) updateExaminee() error {
	id, err := c.promptInt("Examinee ID")
	if err != nil {
		return err
	}

	ctx, cancel := c.actionCtx()
	e, err := c.examineeSvc.GetByID(ctx, id)
	cancel()
	if err != nil {
		return err
	}

	cur := examinee.NewExaminee{
		RegistrationNumber: e.RegistrationNumber,
		FirstName:          e.FirstName,
		LastName:           e.LastName,
		Email:              e.Email,
		Phone:              e.Phone,
		Address:            e.Address,
		City:               e.City,
		State:              e.State,
		Pincode:            e.Pincode,
	}
	if !e.DateOfBirth.IsZero() {
		cur.DateOfBirth = core.FormatDate(e.DateOfBirth)
	}
	ne, err := c.examineeForm(cur)
	if err != nil {
		return err
	}

	ctx, cancel = c.actionCtx()
	defer cancel()
	if _, err = c.examineeSvc.Update(ctx, id, ne); err != nil {
		return err
	}
	c.success("Examinee %s updated.", ne.RegistrationNumber)
	return nil
}

func (c *console) deleteExaminee() error {
	id, err := c.promptInt("Examinee ID")
	if err != nil {
		return err
	}

	ctx, cancel := c.actionCtx()
	e, err := c.examineeSvc.GetByID(ctx, id)
	cancel()
	if err != nil {
		return err
	}
	ok, err := c.confirm(fmt.Sprintf("Delete %s (%s) and all their registrations and results?", e.FullName(), e.RegistrationNumber))
	if err != nil {
		return err
	}
	if !ok {
		return errCancelled
	}

	ctx, cancel = c.actionCtx()
	defer cancel()
	if err = c.examineeSvc.Delete(ctx, id); err != nil {
		return err
	}
	c.success("Examinee %s deleted.", e.RegistrationNumber)
	return nil
}
