package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/trezcool/sems/core"
	"github.com/trezcool/sems/core/exam"
)

func (c *console) examsMenu() error {
	return c.menu("Manage Exams", "Back", []menuItem{
		{"List / search exams", c.listExams},
		{"Add exam", c.addExam},
		{"Update exam", c.updateExam},
		{"Change exam status", c.changeExamStatus},
		{"Check exam capacity", c.examCapacity},
		{"Delete exam", c.deleteExam},
	})
}

func (c *console) listExams() error {
	search, err := c.prompt("Search (blank for all)")
	if err != nil {
		return err
	}
	status, err := c.prompt("Status (" + strings.Join(exam.AllStatuses, "/") + ", blank for all)")
	if err != nil {
		return err
	}
	filter := &exam.QueryFilter{Search: search, Status: strings.ToLower(status)}
	if filter.Status != "" && !exam.IsValidStatus(filter.Status) {
		return exam.ErrInvalidStatus
	}

	ctx, cancel := c.actionCtx()
	defer cancel()
	exams, err := c.examSvc.Query(ctx, filter)
	if err != nil {
		return err
	}
	c.printExams(exams)
	return nil
}

func (c *console) printExams(exams []exam.Exam) {
	rows := make([][]string, 0, len(exams))
	for _, e := range exams {
		rows = append(rows, []string{
			strconv.Itoa(e.ID),
			e.Code,
			e.Name,
			core.FormatDate(e.Date),
			e.StartTime + "-" + e.EndTime,
			e.Venue,
			strconv.Itoa(e.MaxCapacity),
			e.Status,
		})
	}
	c.table([]string{"ID", "Code", "Name", "Date", "Time", "Venue", "Capacity", "Status"}, rows)
}

// examForm prompts for every field of an exam, defaulting to the values of cur.
func (c *console) examForm(cur exam.NewExam) (exam.NewExam, error) {
	var ne exam.NewExam
	fields := []struct {
		label string
		dest  *string
		cur   string
	}{
		{"Exam code", &ne.Code, cur.Code},
		{"Exam name", &ne.Name, cur.Name},
		{"Description", &ne.Description, cur.Description},
		{"Date (YYYY-MM-DD)", &ne.Date, cur.Date},
		{"Start time (HH:MM)", &ne.StartTime, cur.StartTime},
		{"End time (HH:MM)", &ne.EndTime, cur.EndTime},
		{"Venue", &ne.Venue, cur.Venue},
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

	var err error
	if ne.DurationMinutes, err = c.promptIntDefault("Duration (minutes)", cur.DurationMinutes); err != nil {
		return ne, err
	}
	if ne.MaxCapacity, err = c.promptIntDefault("Max capacity", cur.MaxCapacity); err != nil {
		return ne, err
	}
	ne.Status = cur.Status
	return ne, nil
}

func (c *console) addExam() error {
	ne, err := c.examForm(exam.NewExam{DurationMinutes: 180, MaxCapacity: 100})
	if err != nil {
		return err
	}
	if err = ne.Validate(c.validate); err != nil {
		return err
	}

	ctx, cancel := c.actionCtx()
	defer cancel()
	e, err := c.examSvc.Create(ctx, ne, c.usr.ID)
	if err != nil {
		return err
	}
	c.success("Exam %s scheduled on %s (ID %d).", e.Code, core.FormatDate(e.Date), e.ID)
	return nil
}

func (c *console) updateExam() error {
	id, err := c.promptInt("Exam ID")
	if err != nil {
		return err
	}

	ctx, cancel := c.actionCtx()
	e, err := c.examSvc.GetByID(ctx, id)
	cancel()
	if err != nil {
		return err
	}

	ne, err := c.examForm(exam.NewExam{
		Name:            e.Name,
		Code:            e.Code,
		Description:     e.Description,
		Date:            core.FormatDate(e.Date),
		StartTime:       e.StartTime,
		EndTime:         e.EndTime,
		DurationMinutes: e.DurationMinutes,
		Venue:           e.Venue,
		MaxCapacity:     e.MaxCapacity,
		Status:          e.Status,
	})
	if err != nil {
		return err
	}
	ue := exam.UpdateExam{NewExam: ne, CurrentRegistrations: e.CurrentRegistrations}
	if err = ue.Validate(c.validate); err != nil {
		return err
	}

	ctx, cancel = c.actionCtx()
	defer cancel()
	if _, err = c.examSvc.Update(ctx, id, ue); err != nil {
		return err
	}
	c.success("Exam %s updated.", ue.Code)
	return nil
}

func (c *console) changeExamStatus() error {
	id, err := c.promptInt("Exam ID")
	if err != nil {
		return err
	}
	status, err := c.promptRequired("New status (" + strings.Join(exam.AllStatuses, "/") + ")")
	if err != nil {
		return err
	}

	ctx, cancel := c.actionCtx()
	defer cancel()
	if err = c.examSvc.UpdateStatus(ctx, id, strings.ToLower(status)); err != nil {
		return err
	}
	c.success("Exam status set to %s.", strings.ToLower(status))
	return nil
}

// examCapacity compares the capacity of an exam with its active registrations.
func (c *console) examCapacity() error {
	id, err := c.promptInt("Exam ID")
	if err != nil {
		return err
	}

	ctx, cancel := c.actionCtx()
	defer cancel()
	e, err := c.examSvc.GetByID(ctx, id)
	if err != nil {
		return err
	}
	active, err := c.regSvc.ActiveCount(ctx, id)
	if err != nil {
		return err
	}

	remaining := e.MaxCapacity - active
	if remaining < 0 {
		remaining = 0
	}
	fmt.Fprintf(c.out, "%s (%s): %d/%d seats taken, %d remaining\n", e.Name, e.Code, active, e.MaxCapacity, remaining)
	return nil
}

func (c *console) deleteExam() error {
	id, err := c.promptInt("Exam ID")
	if err != nil {
		return err
	}

	ctx, cancel := c.actionCtx()
	e, err := c.examSvc.GetByID(ctx, id)
	cancel()
	if err != nil {
		return err
	}
	ok, err := c.confirm(fmt.Sprintf("Delete exam %s and all its registrations and results?", e.Code))
	if err != nil {
		return err
	}
	if !ok {
		return errCancelled
	}

	ctx, cancel = c.actionCtx()
	defer cancel()
	if err = c.examSvc.Delete(ctx, id); err != nil {
		return err
	}
	c.success("Exam %s deleted.", e.Code)
	return nil
}
