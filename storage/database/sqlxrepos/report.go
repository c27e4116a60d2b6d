package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/trezcool/sems/core"
	"github.com/trezcool/sems/core/report"
)

const countsQuery = `
SELECT
    (SELECT COUNT(*) FROM examinees)                                          AS examinees,
    (SELECT COUNT(*) FROM exams)                                              AS exams,
    (SELECT COUNT(*) FROM exam_registrations)                                 AS registrations,
    (SELECT COUNT(*) FROM exam_registrations WHERE status <> 'cancelled')     AS active_registrations,
    (SELECT COUNT(*) FROM results WHERE grade IS NOT NULL AND grade NOT LIKE 'Fail%') AS passed,
    (SELECT COUNT(*) FROM results WHERE grade IS NULL OR grade LIKE 'Fail%')  AS failed`

type countsRow struct {
	Examinees           int `db:"examinees"`
	Exams               int `db:"exams"`
	Registrations       int `db:"registrations"`
	ActiveRegistrations int `db:"active_registrations"`
	Passed              int `db:"passed"`
	Failed              int `db:"failed"`
}

type topExamineeRow struct {
	ExamineeID         int             `db:"examinee_id"`
	RegistrationNumber string          `db:"registration_number"`
	Name               string          `db:"name"`
	BestPercentage     decimal.Decimal `db:"best_percentage"`
}

type reportRepository struct {
	repository
}

var _ report.Repository = (*reportRepository)(nil) // interface compliance check

func NewReportRepository(exec core.DBExecutor) report.Repository {
	return &reportRepository{repository{exec: exec}}
}

func (repo reportRepository) Counts(ctx context.Context, exec ...core.DBExecutor) (report.Counts, error) {
	var row countsRow
	if err := getOne(ctx, repo.getExec(exec), &row, rawQuery(countsQuery)); err != nil {
		return report.Counts{}, errors.Wrap(err, "counting totals")
	}
	return report.Counts(row), nil
}

func (repo reportRepository) TopExaminees(ctx context.Context, limit int, exec ...core.DBExecutor) ([]report.TopExaminee, error) {
	b := psql.Select(
		"e.examinee_id", "e.registration_number",
		"e.first_name || ' ' || e.last_name AS name",
		"MAX(res.percentage) AS best_percentage",
	).
		From(resultsTable + " res").
		Join(registrationsTable + " r ON r.registration_id = res.registration_id").
		Join(examineesTable + " e ON e.examinee_id = r.examinee_id").
		Where("res.percentage IS NOT NULL").
		GroupBy("e.examinee_id", "e.registration_number", "e.first_name", "e.last_name").
		OrderBy("best_percentage DESC", "e.registration_number ASC").
		Limit(uint64(limit))

	var rows []topExamineeRow
	if err := selectAll(ctx, repo.getExec(exec), &rows, b); err != nil {
		return nil, errors.Wrap(err, "querying top examinees")
	}
	top := make([]report.TopExaminee, 0, len(rows))
	for _, row := range rows {
		top = append(top, report.TopExaminee(row))
	}
	return top, nil
}
