package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/trezcool/sems/core/result"
)

const defaultExportFile = "exam_results.csv"

var defaultMaxMarks = decimal.NewFromInt(100)

// enterResults walks through the active registrations of an exam and saves the marks entered for each.
// Blank marks skip an examinee; existing results are updated.
func (c *console) enterResults() error {
	code, err := c.promptRequired("Exam code")
	if err != nil {
		return err
	}

	ctx, cancel := c.actionCtx()
	ex, err := c.examSvc.GetByCode(ctx, code)
	if err != nil {
		cancel()
		return err
	}
	regs, err := c.regSvc.QueryByExam(ctx, ex.ID)
	cancel()
	if err != nil {
		return err
	}
	sort.Slice(regs, func(i, j int) bool { return regs[i].HallTicketNumber < regs[j].HallTicketNumber })

	maxStr, err := c.promptDefault("Max marks", defaultMaxMarks.String())
	if err != nil {
		return err
	}
	maxMarks, err := decimal.NewFromString(maxStr)
	if err != nil {
		return errNotANumber
	}

	saved := 0
	for _, reg := range regs {
		if !reg.IsActive() {
			continue
		}
		marksStr, err := c.prompt(fmt.Sprintf("Marks for %s - %s (blank to skip)", reg.HallTicketNumber, reg.ExamineeName))
		if err != nil {
			return err
		}
		if marksStr == "" {
			continue
		}
		marks, err := decimal.NewFromString(marksStr)
		if err != nil {
			c.printError(errNotANumber)
			continue
		}
		remarks, err := c.prompt("Remarks")
		if err != nil {
			return err
		}

		nr := result.NewResult{RegistrationID: reg.ID, MarksObtained: marks, MaxMarks: maxMarks, Remarks: remarks}
		if err = nr.Validate(c.validate); err != nil {
			c.printError(err)
			continue
		}
		ctx, cancel := c.actionCtx()
		res, err := c.resultSvc.Save(ctx, nr, c.usr.ID)
		cancel()
		if err != nil {
			c.printError(err)
			continue
		}
		saved++
		c.success("%s: %s%% (%s)", reg.HallTicketNumber, res.Percentage.StringFixed(2), res.Grade)
	}
	fmt.Fprintf(c.out, "%d result(s) saved for %s.\n", saved, ex.Code)
	return nil
}

func (c *console) resultsMenu() error {
	return c.menu("View Results", "Back", []menuItem{
		{"Results of an exam", c.listExamResults},
		{"Results of an examinee", c.listExamineeResults},
		{"Export exam results to CSV", c.exportResults},
		{"Delete a result", c.deleteResult},
	})
}

func (c *console) queryExamResults() ([]result.Result, error) {
	code, err := c.promptRequired("Exam code")
	if err != nil {
		return nil, err
	}

	ctx, cancel := c.actionCtx()
	defer cancel()
	ex, err := c.examSvc.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	return c.resultSvc.QueryByExam(ctx, ex.ID)
}

func (c *console) listExamResults() error {
	results, err := c.queryExamResults()
	if err != nil {
		return err
	}
	c.printResults(results)
	return nil
}

func (c *console) listExamineeResults() error {
	search, err := c.promptRequired("Examinee registration number")
	if err != nil {
		return err
	}

	ctx, cancel := c.actionCtx()
	defer cancel()
	e, err := c.examineeSvc.GetByRegistrationNumber(ctx, search)
	if err != nil {
		return err
	}
	results, err := c.resultSvc.QueryByExaminee(ctx, e.ID)
	if err != nil {
		return err
	}
	c.printResults(results)
	return nil
}

func (c *console) printResults(results []result.Result) {
	rows := make([][]string, 0, len(results))
	passed := 0
	for _, res := range results {
		status := "Fail"
		if res.IsPass() {
			status = "Pass"
			passed++
		}
		rows = append(rows, []string{
			strconv.Itoa(res.ID),
			res.HallTicketNumber,
			res.ExamineeName,
			res.ExamCode,
			res.MarksObtained.StringFixed(2) + "/" + res.MaxMarks.StringFixed(2),
			res.Percentage.StringFixed(2),
			res.Grade,
			status,
		})
	}
	c.table([]string{"ID", "Hall Ticket", "Examinee", "Exam", "Marks", "%", "Grade", "Status"}, rows)
	if len(results) > 0 {
		fmt.Fprintf(c.out, "%d result(s), %d passed, %d failed\n", len(results), passed, len(results)-passed)
	}
}

func (c *console) exportResults() error {
	results, err := c.queryExamResults()
	if err != nil {
		return err
	}
	path, err := c.promptDefault("File", defaultExportFile)
	if err != nil {
		return err
	}
	if !filepath.IsAbs(path) && c.conf.WorkDir != "" {
		path = filepath.Join(c.conf.WorkDir, path)
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating export file")
	}
	if err = result.WriteCSV(f, results); err != nil {
		_ = f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return errors.Wrap(err, "closing export file")
	}
	c.success("%d result(s) exported to %s.", len(results), path)
	return nil
}

func (c *console) deleteResult() error {
	id, err := c.promptInt("Result ID")
	if err != nil {
		return err
	}
	ok, err := c.confirm("Delete result " + strconv.Itoa(id) + "?")
	if err != nil {
		return err
	}
	if !ok {
		return errCancelled
	}

	ctx, cancel := c.actionCtx()
	defer cancel()
	if err = c.resultSvc.Delete(ctx, id); err != nil {
		return err
	}
	c.success("Result %d deleted.", id)
	return nil
}
