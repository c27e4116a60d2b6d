package sqlxrepos

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/sems/core"
	"github.com/trezcool/sems/core/examinee"
	"github.com/trezcool/sems/storage/database"
)

const examineesTable = "examinees"

var (
	examineeColumns = []string{
		"examinee_id", "registration_number", "first_name", "last_name", "email", "phone", "date_of_birth",
		"address", "city", "state", "pincode", "created_at", "updated_at",
	}
	examineeOrderColumns = map[string]string{
		"id":                  "examinee_id",
		"registration_number": "registration_number",
		"first_name":          "first_name",
		"last_name":           "last_name",
		"created_at":          "created_at",
	}
)

type examineeRow struct {
	ID                 int         `db:"examinee_id"`
	RegistrationNumber string      `db:"registration_number"`
	FirstName          string      `db:"first_name"`
	LastName           string      `db:"last_name"`
	Email              null.String `db:"email"`
	Phone              null.String `db:"phone"`
	DateOfBirth        null.Time   `db:"date_of_birth"`
	Address            null.String `db:"address"`
	City               null.String `db:"city"`
	State              null.String `db:"state"`
	Pincode            null.String `db:"pincode"`
	CreatedAt          time.Time   `db:"created_at"`
	UpdatedAt          time.Time   `db:"updated_at"`
}

type examineeRepository struct {
	repository
}

var _ examinee.Repository = (*examineeRepository)(nil) // interface compliance check

func NewExamineeRepository(exec core.DBExecutor) examinee.Repository {
	return &examineeRepository{repository{exec: exec}}
}

func nullString(s string) null.String {
	return null.NewString(s, s != "")
}

func (repo examineeRepository) toRow(e examinee.Examinee) examineeRow {
	return examineeRow{
		ID:                 e.ID,
		RegistrationNumber: e.RegistrationNumber,
		FirstName:          e.FirstName,
		LastName:           e.LastName,
		Email:              nullString(e.Email),
		Phone:              nullString(e.Phone),
		DateOfBirth:        null.NewTime(e.DateOfBirth, !e.DateOfBirth.IsZero()),
		Address:            nullString(e.Address),
		City:               nullString(e.City),
		State:              nullString(e.State),
		Pincode:            nullString(e.Pincode),
		CreatedAt:          e.CreatedAt.UTC(),
		UpdatedAt:          e.UpdatedAt.UTC(),
	}
}

func (repo examineeRepository) fromRow(row examineeRow) examinee.Examinee {
	return examinee.Examinee{
		ID:                 row.ID,
		RegistrationNumber: row.RegistrationNumber,
		FirstName:          row.FirstName,
		LastName:           row.LastName,
		Email:              row.Email.String,
		Phone:              row.Phone.String,
		DateOfBirth:        row.DateOfBirth.Time,
		Address:            row.Address.String,
		City:               row.City.String,
		State:              row.State.String,
		Pincode:            row.Pincode.String,
		CreatedAt:          row.CreatedAt.UTC(),
		UpdatedAt:          row.UpdatedAt.UTC(),
	}
}

func (repo examineeRepository) trapUniqueErr(err error, msg string) error {
	if _, ok := database.UniqueViolation(err); ok {
		return examinee.ErrRegistrationNumberExists
	}
	return errors.Wrap(err, msg)
}

func (repo examineeRepository) CreateExaminee(ctx context.Context, e examinee.Examinee, exec ...core.DBExecutor) (examinee.Examinee, error) {
	r := repo.toRow(e)
	b := psql.Insert(examineesTable).
		Columns(examineeColumns[1:]...).
		Values(r.RegistrationNumber, r.FirstName, r.LastName, r.Email, r.Phone, r.DateOfBirth,
			r.Address, r.City, r.State, r.Pincode, r.CreatedAt, r.UpdatedAt).
		Suffix("RETURNING " + joinColumns(examineeColumns))

	var row examineeRow
	if err := getOne(ctx, repo.getExec(exec), &row, b); err != nil {
		return examinee.Examinee{}, repo.trapUniqueErr(err, "inserting examinee")
	}
	return repo.fromRow(row), nil
}

func (repo examineeRepository) QueryExaminees(ctx context.Context, filter *examinee.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]examinee.Examinee, error) {
	b := psql.Select(examineeColumns...).From(examineesTable)

	if filter != nil && filter.Search != "" {
		val := likeValue(filter.Search)
		b = b.Where(sq.Or{
			sq.Expr("LOWER(first_name) LIKE ?", val),
			sq.Expr("LOWER(last_name) LIKE ?", val),
			sq.Expr("LOWER(email) LIKE ?", val),
			sq.Expr("LOWER(registration_number) LIKE ?", val),
		})
	}
	b = b.OrderBy(append(orderBy(ordering, examineeOrderColumns), "examinee_id ASC")...)

	var rows []examineeRow
	if err := selectAll(ctx, repo.getExec(exec), &rows, b); err != nil {
		return nil, errors.Wrap(err, "querying examinees")
	}
	examinees := make([]examinee.Examinee, 0, len(rows))
	for _, row := range rows {
		examinees = append(examinees, repo.fromRow(row))
	}
	return examinees, nil
}

func (repo examineeRepository) GetExaminee(ctx context.Context, filter examinee.GetFilter, exec ...core.DBExecutor) (examinee.Examinee, error) {
	b := psql.Select(examineeColumns...).From(examineesTable)
	switch {
	case filter.ID != 0:
		b = b.Where(sq.Eq{"examinee_id": filter.ID})
	case filter.RegistrationNumber != "":
		b = b.Where(sq.Eq{"registration_number": filter.RegistrationNumber})
	default:
		return examinee.Examinee{}, examinee.ErrNotFound
	}

	var row examineeRow
	if err := getOne(ctx, repo.getExec(exec), &row, b); err != nil {
		return examinee.Examinee{}, trapNoRowsErr(err, examinee.ErrNotFound, "finding examinee")
	}
	return repo.fromRow(row), nil
}

func (repo examineeRepository) UpdateExaminee(ctx context.Context, e examinee.Examinee, exec ...core.DBExecutor) (examinee.Examinee, error) {
	r := repo.toRow(e)
	b := psql.Update(examineesTable).
		SetMap(map[string]interface{}{
			"registration_number": r.RegistrationNumber,
			"first_name":          r.FirstName,
			"last_name":           r.LastName,
			"email":               r.Email,
			"phone":               r.Phone,
			"date_of_birth":       r.DateOfBirth,
			"address":             r.Address,
			"city":                r.City,
			"state":               r.State,
			"pincode":             r.Pincode,
			"updated_at":          r.UpdatedAt,
		}).
		Where(sq.Eq{"examinee_id": e.ID}).
		Suffix("RETURNING " + joinColumns(examineeColumns))

	var row examineeRow
	if err := getOne(ctx, repo.getExec(exec), &row, b); err != nil {
		if _, ok := database.UniqueViolation(err); ok {
			return examinee.Examinee{}, examinee.ErrRegistrationNumberExists
		}
		return examinee.Examinee{}, trapNoRowsErr(err, examinee.ErrNotFound, "updating examinee")
	}
	return repo.fromRow(row), nil
}

func (repo examineeRepository) DeleteExaminees(ctx context.Context, ids []int, exec ...core.DBExecutor) error {
	if _, err := execute(ctx, repo.getExec(exec), psql.Delete(examineesTable).Where(sq.Eq{"examinee_id": ids})); err != nil {
		return errors.Wrap(err, "deleting examinees")
	}
	return nil
}

func (repo examineeRepository) CountExaminees(ctx context.Context, exec ...core.DBExecutor) (int, error) {
	n, err := count(ctx, repo.getExec(exec), psql.Select("COUNT(*)").From(examineesTable))
	return n, errors.Wrap(err, "counting examinees")
}
