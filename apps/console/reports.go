package main

import (
	"fmt"
	"strconv"

	"github.com/trezcool/sems/core/report"
)

func (c *console) showReport() error {
	topN, err := c.promptIntDefault("Number of top examinees", report.DefaultTopN)
	if err != nil {
		return err
	}

	ctx, cancel := c.actionCtx()
	defer cancel()
	sum, err := c.reportSvc.Summary(ctx, topN)
	if err != nil {
		return err
	}

	c.title("Summary")
	c.table([]string{"Metric", "Value"}, [][]string{
		{"Examinees", strconv.Itoa(sum.TotalExaminees)},
		{"Exams", strconv.Itoa(sum.TotalExams)},
		{"Registrations", strconv.Itoa(sum.TotalRegistrations)},
		{"Active registrations", strconv.Itoa(sum.ActiveRegistrations)},
		{"Passed", fmt.Sprintf("%d (%s%%)", sum.PassCount, sum.PassRatio.StringFixed(2))},
		{"Failed", fmt.Sprintf("%d (%s%%)", sum.FailCount, sum.FailRatio.StringFixed(2))},
	})

	c.title("Top Examinees")
	rows := make([][]string, 0, len(sum.TopExaminees))
	for i, top := range sum.TopExaminees {
		rows = append(rows, []string{
			strconv.Itoa(i + 1), top.RegistrationNumber, top.Name, top.BestPercentage.StringFixed(2),
		})
	}
	c.table([]string{"Rank", "Reg No", "Name", "Best %"}, rows)
	return nil
}
