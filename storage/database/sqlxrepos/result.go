package sqlxrepos

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/sems/core"
	"github.com/trezcool/sems/core/result"
	"github.com/trezcool/sems/storage/database"
)

const (
	resultsTable = "results"

	constraintResultRegistrationFK = "results_registration_id_fkey"
)

var (
	resultColumns = []string{
		"result_id", "registration_id", "marks_obtained", "max_marks", "percentage", "grade", "remarks",
		"entered_by", "entered_at", "updated_at",
	}
	resultOrderColumns = map[string]string{
		"id":         "res.result_id",
		"percentage": "res.percentage",
		"entered_at": "res.entered_at",
		"grade":      "res.grade",
	}
)

type resultRow struct {
	ID                 int                 `db:"result_id"`
	RegistrationID     int                 `db:"registration_id"`
	MarksObtained      decimal.Decimal     `db:"marks_obtained"`
	MaxMarks           decimal.Decimal     `db:"max_marks"`
	Percentage         decimal.NullDecimal `db:"percentage"`
	Grade              null.String         `db:"grade"`
	Remarks            null.String         `db:"remarks"`
	EnteredBy          null.Int            `db:"entered_by"`
	EnteredAt          time.Time           `db:"entered_at"`
	UpdatedAt          time.Time           `db:"updated_at"`
	HallTicketNumber   null.String         `db:"hall_ticket_number"`
	ExamineeID         null.Int            `db:"examinee_id"`
	ExamineeName       null.String         `db:"examinee_name"`
	RegistrationNumber null.String         `db:"registration_number"`
	ExamID             null.Int            `db:"exam_id"`
	ExamName           null.String         `db:"exam_name"`
	ExamCode           null.String         `db:"exam_code"`
}

type resultRepository struct {
	repository
}

var _ result.Repository = (*resultRepository)(nil) // interface compliance check

func NewResultRepository(exec core.DBExecutor) result.Repository {
	return &resultRepository{repository{exec: exec}}
}

func (repo resultRepository) fromRow(row resultRow) result.Result {
	return result.Result{
		ID:                 row.ID,
		RegistrationID:     row.RegistrationID,
		MarksObtained:      row.MarksObtained,
		MaxMarks:           row.MaxMarks,
		Percentage:         row.Percentage.Decimal,
		Grade:              row.Grade.String,
		Remarks:            row.Remarks.String,
		EnteredBy:          row.EnteredBy.Int,
		EnteredAt:          row.EnteredAt.UTC(),
		UpdatedAt:          row.UpdatedAt.UTC(),
		HallTicketNumber:   row.HallTicketNumber.String,
		ExamineeID:         row.ExamineeID.Int,
		ExamineeName:       row.ExamineeName.String,
		RegistrationNumber: row.RegistrationNumber.String,
		ExamID:             row.ExamID.Int,
		ExamName:           row.ExamName.String,
		ExamCode:           row.ExamCode.String,
	}
}

// selectDetailed selects results along with their registration, examinee and exam labels.
func (repo resultRepository) selectDetailed() sq.SelectBuilder {
	return psql.Select(
		"res.result_id", "res.registration_id", "res.marks_obtained", "res.max_marks", "res.percentage",
		"res.grade", "res.remarks", "res.entered_by", "res.entered_at", "res.updated_at",
		"r.hall_ticket_number", "r.examinee_id", "r.exam_id",
		"e.first_name || ' ' || e.last_name AS examinee_name", "e.registration_number",
		"x.exam_name", "x.exam_code",
	).
		From(resultsTable + " res").
		Join(registrationsTable + " r ON r.registration_id = res.registration_id").
		Join(examineesTable + " e ON e.examinee_id = r.examinee_id").
		Join(examsTable + " x ON x.exam_id = r.exam_id")
}

func (repo resultRepository) CreateResult(ctx context.Context, res result.Result, exec ...core.DBExecutor) (result.Result, error) {
	b := psql.Insert(resultsTable).
		Columns(resultColumns[1:]...).
		Values(res.RegistrationID, res.MarksObtained, res.MaxMarks, res.Percentage, nullString(res.Grade),
			nullString(res.Remarks), null.NewInt(res.EnteredBy, res.EnteredBy != 0), res.EnteredAt.UTC(), res.UpdatedAt.UTC()).
		Suffix("RETURNING " + joinColumns(resultColumns))

	var row resultRow
	if err := getOne(ctx, repo.getExec(exec), &row, b); err != nil {
		if constraint, ok := database.ForeignKeyViolation(err); ok && constraint == constraintResultRegistrationFK {
			return result.Result{}, result.ErrRegistrationNotFound
		}
		if _, ok := database.UniqueViolation(err); ok {
			return result.Result{}, result.ErrResultExists
		}
		return result.Result{}, errors.Wrap(err, "inserting result")
	}
	return repo.fromRow(row), nil
}

func (repo resultRepository) UpdateResult(ctx context.Context, res result.Result, exec ...core.DBExecutor) (result.Result, error) {
	b := psql.Update(resultsTable).
		SetMap(map[string]interface{}{
			"marks_obtained": res.MarksObtained,
			"max_marks":      res.MaxMarks,
			"percentage":     res.Percentage,
			"grade":          nullString(res.Grade),
			"remarks":        nullString(res.Remarks),
			"updated_at":     res.UpdatedAt.UTC(),
		}).
		Where(sq.Eq{"result_id": res.ID}).
		Suffix("RETURNING " + joinColumns(resultColumns))

	var row resultRow
	if err := getOne(ctx, repo.getExec(exec), &row, b); err != nil {
		return result.Result{}, trapNoRowsErr(err, result.ErrNotFound, "updating result")
	}
	return repo.fromRow(row), nil
}

func (repo resultRepository) GetResult(ctx context.Context, filter result.GetFilter, exec ...core.DBExecutor) (result.Result, error) {
	b := repo.selectDetailed()
	switch {
	case filter.ID != 0:
		b = b.Where(sq.Eq{"res.result_id": filter.ID})
	case filter.RegistrationID != 0:
		b = b.Where(sq.Eq{"res.registration_id": filter.RegistrationID})
	default:
		return result.Result{}, result.ErrNotFound
	}

	var row resultRow
	if err := getOne(ctx, repo.getExec(exec), &row, b); err != nil {
		return result.Result{}, trapNoRowsErr(err, result.ErrNotFound, "finding result")
	}
	return repo.fromRow(row), nil
}

func (repo resultRepository) QueryResults(ctx context.Context, filter *result.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]result.Result, error) {
	b := repo.selectDetailed()
	if filter != nil {
		if filter.ExamID != 0 {
			b = b.Where(sq.Eq{"r.exam_id": filter.ExamID})
		}
		if filter.ExamineeID != 0 {
			b = b.Where(sq.Eq{"r.examinee_id": filter.ExamineeID})
		}
	}
	b = b.OrderBy(append(orderBy(ordering, resultOrderColumns), "res.result_id ASC")...)

	var rows []resultRow
	if err := selectAll(ctx, repo.getExec(exec), &rows, b); err != nil {
		return nil, errors.Wrap(err, "querying results")
	}
	results := make([]result.Result, 0, len(rows))
	for _, row := range rows {
		results = append(results, repo.fromRow(row))
	}
	return results, nil
}

func (repo resultRepository) DeleteResults(ctx context.Context, ids []int, exec ...core.DBExecutor) error {
	if _, err := execute(ctx, repo.getExec(exec), psql.Delete(resultsTable).Where(sq.Eq{"result_id": ids})); err != nil {
		return errors.Wrap(err, "deleting results")
	}
	return nil
}
