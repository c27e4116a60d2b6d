package sqlxrepos

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/sems/core"
	"github.com/trezcool/sems/core/exam"
	"github.com/trezcool/sems/storage/database"
)

const examsTable = "exams"

var (
	examColumns = []string{
		"exam_id", "exam_name", "exam_code", "description", "exam_date", "start_time", "end_time", "duration_minutes",
		"venue", "max_capacity", "current_registrations", "status", "created_by", "created_at", "updated_at",
	}
	examOrderColumns = map[string]string{
		"id":        "exam_id",
		"exam_name": "exam_name",
		"exam_code": "exam_code",
		"exam_date": "exam_date",
		"status":    "status",
	}
)

type examRow struct {
	ID                   int         `db:"exam_id"`
	Name                 string      `db:"exam_name"`
	Code                 string      `db:"exam_code"`
	Description          null.String `db:"description"`
	Date                 time.Time   `db:"exam_date"`
	StartTime            string      `db:"start_time"`
	EndTime              string      `db:"end_time"`
	DurationMinutes      int         `db:"duration_minutes"`
	Venue                null.String `db:"venue"`
	MaxCapacity          int         `db:"max_capacity"`
	CurrentRegistrations int         `db:"current_registrations"`
	Status               string      `db:"status"`
	CreatedBy            null.Int    `db:"created_by"`
	CreatedAt            time.Time   `db:"created_at"`
	UpdatedAt            time.Time   `db:"updated_at"`
}

type examRepository struct {
	repository
}

var _ exam.Repository = (*examRepository)(nil) // interface compliance check

func NewExamRepository(exec core.DBExecutor) exam.Repository {
	return &examRepository{repository{exec: exec}}
}

// clock trims the seconds of a TIME column.
func clock(t string) string {
	if len(t) > 5 {
		return t[:5]
	}
	return t
}

func (repo examRepository) toRow(e exam.Exam) examRow {
	return examRow{
		ID:                   e.ID,
		Name:                 e.Name,
		Code:                 e.Code,
		Description:          nullString(e.Description),
		Date:                 e.Date,
		StartTime:            e.StartTime,
		EndTime:              e.EndTime,
		DurationMinutes:      e.DurationMinutes,
		Venue:                nullString(e.Venue),
		MaxCapacity:          e.MaxCapacity,
		CurrentRegistrations: e.CurrentRegistrations,
		Status:               e.Status,
		CreatedBy:            null.NewInt(e.CreatedBy, e.CreatedBy != 0),
		CreatedAt:            e.CreatedAt.UTC(),
		UpdatedAt:            e.UpdatedAt.UTC(),
	}
}

func (repo examRepository) fromRow(row examRow) exam.Exam {
	return exam.Exam{
		ID:                   row.ID,
		Name:                 row.Name,
		Code:                 row.Code,
		Description:          row.Description.String,
		Date:                 row.Date,
		StartTime:            clock(row.StartTime),
		EndTime:              clock(row.EndTime),
		DurationMinutes:      row.DurationMinutes,
		Venue:                row.Venue.String,
		MaxCapacity:          row.MaxCapacity,
		CurrentRegistrations: row.CurrentRegistrations,
		Status:               row.Status,
		CreatedBy:            row.CreatedBy.Int,
		CreatedAt:            row.CreatedAt.UTC(),
		UpdatedAt:            row.UpdatedAt.UTC(),
	}
}

func (repo examRepository) trapWriteErr(err error, msg string) error {
	if _, ok := database.UniqueViolation(err); ok {
		return exam.ErrCodeExists
	}
	return trapNoRowsErr(err, exam.ErrNotFound, msg)
}

func (repo examRepository) CreateExam(ctx context.Context, e exam.Exam, exec ...core.DBExecutor) (exam.Exam, error) {
	r := repo.toRow(e)
	b := psql.Insert(examsTable).
		Columns(examColumns[1:]...).
		Values(r.Name, r.Code, r.Description, r.Date, r.StartTime, r.EndTime, r.DurationMinutes,
			r.Venue, r.MaxCapacity, r.CurrentRegistrations, r.Status, r.CreatedBy, r.CreatedAt, r.UpdatedAt).
		Suffix("RETURNING " + joinColumns(examColumns))

	var row examRow
	if err := getOne(ctx, repo.getExec(exec), &row, b); err != nil {
		return exam.Exam{}, repo.trapWriteErr(err, "inserting exam")
	}
	return repo.fromRow(row), nil
}

func (repo examRepository) QueryExams(ctx context.Context, filter *exam.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]exam.Exam, error) {
	b := psql.Select(examColumns...).From(examsTable)

	if filter != nil {
		if filter.Search != "" {
			val := likeValue(filter.Search)
			b = b.Where(sq.Or{
				sq.Expr("LOWER(exam_name) LIKE ?", val),
				sq.Expr("LOWER(exam_code) LIKE ?", val),
				sq.Expr("LOWER(venue) LIKE ?", val),
			})
		}
		if filter.Status != "" {
			b = b.Where(sq.Eq{"status": filter.Status})
		}
		if !filter.DateFrom.IsZero() {
			b = b.Where(sq.GtOrEq{"exam_date": filter.DateFrom})
		}
		if !filter.DateTo.IsZero() {
			b = b.Where(sq.LtOrEq{"exam_date": filter.DateTo})
		}
	}
	b = b.OrderBy(append(orderBy(ordering, examOrderColumns), "exam_id DESC")...)

	var rows []examRow
	if err := selectAll(ctx, repo.getExec(exec), &rows, b); err != nil {
		return nil, errors.Wrap(err, "querying exams")
	}
	exams := make([]exam.Exam, 0, len(rows))
	for _, row := range rows {
		exams = append(exams, repo.fromRow(row))
	}
	return exams, nil
}

func (repo examRepository) GetExam(ctx context.Context, filter exam.GetFilter, exec ...core.DBExecutor) (exam.Exam, error) {
	b := psql.Select(examColumns...).From(examsTable)
	switch {
	case filter.ID != 0:
		b = b.Where(sq.Eq{"exam_id": filter.ID})
	case filter.Code != "":
		b = b.Where(sq.Eq{"exam_code": filter.Code})
	default:
		return exam.Exam{}, exam.ErrNotFound
	}

	var row examRow
	if err := getOne(ctx, repo.getExec(exec), &row, b); err != nil {
		return exam.Exam{}, trapNoRowsErr(err, exam.ErrNotFound, "finding exam")
	}
	return repo.fromRow(row), nil
}

func (repo examRepository) UpdateExam(ctx context.Context, e exam.Exam, exec ...core.DBExecutor) (exam.Exam, error) {
	r := repo.toRow(e)
	b := psql.Update(examsTable).
		SetMap(map[string]interface{}{
			"exam_name":             r.Name,
			"exam_code":             r.Code,
			"description":           r.Description,
			"exam_date":             r.Date,
			"start_time":            r.StartTime,
			"end_time":              r.EndTime,
			"duration_minutes":      r.DurationMinutes,
			"venue":                 r.Venue,
			"max_capacity":          r.MaxCapacity,
			"current_registrations": r.CurrentRegistrations,
			"status":                r.Status,
			"updated_at":            r.UpdatedAt,
		}).
		Where(sq.Eq{"exam_id": e.ID}).
		Suffix("RETURNING " + joinColumns(examColumns))

	var row examRow
	if err := getOne(ctx, repo.getExec(exec), &row, b); err != nil {
		return exam.Exam{}, repo.trapWriteErr(err, "updating exam")
	}
	return repo.fromRow(row), nil
}

func (repo examRepository) UpdateExamStatus(ctx context.Context, id int, status string, exec ...core.DBExecutor) error {
	b := psql.Update(examsTable).
		Set("status", status).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Eq{"exam_id": id})
	n, err := execute(ctx, repo.getExec(exec), b)
	if err != nil {
		return errors.Wrap(err, "updating exam status")
	}
	if n == 0 {
		return exam.ErrNotFound
	}
	return nil
}

func (repo examRepository) DeleteExams(ctx context.Context, ids []int, exec ...core.DBExecutor) error {
	if _, err := execute(ctx, repo.getExec(exec), psql.Delete(examsTable).Where(sq.Eq{"exam_id": ids})); err != nil {
		return errors.Wrap(err, "deleting exams")
	}
	return nil
}

func (repo examRepository) CountExams(ctx context.Context, exec ...core.DBExecutor) (int, error) {
	n, err := count(ctx, repo.getExec(exec), psql.Select("COUNT(*)").From(examsTable))
	return n, errors.Wrap(err, "counting exams")
}
