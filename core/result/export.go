package result

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/pkg/errors"

	"github.com/trezcool/sems/core"
)

var csvHeader = []string{
	"Hall Ticket", "Registration No", "Examinee", "Exam Code", "Exam",
	"Marks Obtained", "Max Marks", "Percentage", "Grade", "Status", "Remarks", "Entered At",
}

// WriteCSV writes results as CSV rows, header first.
func WriteCSV(w io.Writer, results []Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return errors.Wrap(err, "writing csv header")
	}
	for _, res := range results {
		status := "Fail"
		if res.IsPass() {
			status = "Pass"
		}
		row := []string{
			res.HallTicketNumber,
			res.RegistrationNumber,
			res.ExamineeName,
			res.ExamCode,
			res.ExamName,
			res.MarksObtained.StringFixed(2),
			res.MaxMarks.StringFixed(2),
			res.Percentage.StringFixed(2),
			res.Grade,
			status,
			res.Remarks,
			core.FormatDate(res.EnteredAt),
		}
		if err := cw.Write(row); err != nil {
			return errors.Wrap(err, "writing csv row "+strconv.Itoa(res.ID))
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flushing csv")
}
