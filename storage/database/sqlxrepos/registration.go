package sqlxrepos

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/sems/core"
	"github.com/trezcool/sems/core/registration"
	"github.com/trezcool/sems/storage/database"
)

const (
	registrationsTable = "exam_registrations"

	constraintRegExamineeExam = "exam_registrations_examinee_exam_key"
	constraintRegHallTicket   = "exam_registrations_hall_ticket_number_key"
	constraintRegExamineeFK   = "exam_registrations_examinee_id_fkey"
	constraintRegExamFK       = "exam_registrations_exam_id_fkey"
)

var registrationColumns = []string{
	"registration_id", "examinee_id", "exam_id", "registration_date", "status", "hall_ticket_number", "remarks",
}

type registrationRow struct {
	ID                 int         `db:"registration_id"`
	ExamineeID         int         `db:"examinee_id"`
	ExamID             int         `db:"exam_id"`
	RegistrationDate   time.Time   `db:"registration_date"`
	Status             string      `db:"status"`
	HallTicketNumber   null.String `db:"hall_ticket_number"`
	Remarks            null.String `db:"remarks"`
	ExamineeName       null.String `db:"examinee_name"`
	RegistrationNumber null.String `db:"registration_number"`
	ExamName           null.String `db:"exam_name"`
	ExamCode           null.String `db:"exam_code"`
}

type registrationRepository struct {
	repository
}

var _ registration.Repository = (*registrationRepository)(nil) // interface compliance check

func NewRegistrationRepository(exec core.DBExecutor) registration.Repository {
	return &registrationRepository{repository{exec: exec}}
}

func (repo registrationRepository) fromRow(row registrationRow) registration.Registration {
	return registration.Registration{
		ID:                 row.ID,
		ExamineeID:         row.ExamineeID,
		ExamID:             row.ExamID,
		RegistrationDate:   row.RegistrationDate.UTC(),
		Status:             row.Status,
		HallTicketNumber:   row.HallTicketNumber.String,
		Remarks:            row.Remarks.String,
		ExamineeName:       row.ExamineeName.String,
		RegistrationNumber: row.RegistrationNumber.String,
		ExamName:           row.ExamName.String,
		ExamCode:           row.ExamCode.String,
	}
}

// selectDetailed selects registrations along with their examinee and exam labels.
func (repo registrationRepository) selectDetailed() sq.SelectBuilder {
	return psql.Select(
		"r.registration_id", "r.examinee_id", "r.exam_id", "r.registration_date", "r.status",
		"r.hall_ticket_number", "r.remarks",
		"e.first_name || ' ' || e.last_name AS examinee_name", "e.registration_number",
		"x.exam_name", "x.exam_code",
	).
		From(registrationsTable + " r").
		Join(examineesTable + " e ON e.examinee_id = r.examinee_id").
		Join(examsTable + " x ON x.exam_id = r.exam_id")
}

func (repo registrationRepository) trapInsertErr(err error) error {
	if constraint, ok := database.UniqueViolation(err); ok {
		if constraint == constraintRegHallTicket {
			return registration.ErrHallTicketExists
		}
		return registration.ErrAlreadyRegistered
	}
	if constraint, ok := database.ForeignKeyViolation(err); ok {
		if constraint == constraintRegExamFK {
			return registration.ErrExamNotFound
		}
		return registration.ErrExamineeNotFound
	}
	return errors.Wrap(err, "inserting registration")
}

func (repo registrationRepository) CreateRegistration(ctx context.Context, reg registration.Registration, exec ...core.DBExecutor) (registration.Registration, error) {
	b := psql.Insert(registrationsTable).
		Columns(registrationColumns[1:]...).
		Values(reg.ExamineeID, reg.ExamID, reg.RegistrationDate.UTC(), reg.Status,
			nullString(reg.HallTicketNumber), nullString(reg.Remarks)).
		Suffix("RETURNING " + joinColumns(registrationColumns))

	var row registrationRow
	if err := getOne(ctx, repo.getExec(exec), &row, b); err != nil {
		return registration.Registration{}, repo.trapInsertErr(err)
	}
	return repo.fromRow(row), nil
}

func (repo registrationRepository) GetRegistration(ctx context.Context, filter registration.GetFilter, exec ...core.DBExecutor) (registration.Registration, error) {
	b := repo.selectDetailed()
	switch {
	case filter.ID != 0:
		b = b.Where(sq.Eq{"r.registration_id": filter.ID})
	case filter.HallTicketNumber != "":
		b = b.Where(sq.Eq{"r.hall_ticket_number": filter.HallTicketNumber})
	default:
		return registration.Registration{}, registration.ErrNotFound
	}

	var row registrationRow
	if err := getOne(ctx, repo.getExec(exec), &row, b); err != nil {
		return registration.Registration{}, trapNoRowsErr(err, registration.ErrNotFound, "finding registration")
	}
	return repo.fromRow(row), nil
}

func (repo registrationRepository) QueryRegistrations(ctx context.Context, filter *registration.QueryFilter, exec ...core.DBExecutor) ([]registration.Registration, error) {
	b := repo.selectDetailed()
	if filter != nil {
		if filter.ExamID != 0 {
			b = b.Where(sq.Eq{"r.exam_id": filter.ExamID})
		}
		if filter.ExamineeID != 0 {
			b = b.Where(sq.Eq{"r.examinee_id": filter.ExamineeID})
		}
		if filter.Status != "" {
			b = b.Where(sq.Eq{"r.status": filter.Status})
		}
	}
	b = b.OrderBy("r.registration_date DESC", "r.registration_id DESC")

	var rows []registrationRow
	if err := selectAll(ctx, repo.getExec(exec), &rows, b); err != nil {
		return nil, errors.Wrap(err, "querying registrations")
	}
	regs := make([]registration.Registration, 0, len(rows))
	for _, row := range rows {
		regs = append(regs, repo.fromRow(row))
	}
	return regs, nil
}

func (repo registrationRepository) UpdateRegistrationStatus(ctx context.Context, id int, status string, exec ...core.DBExecutor) error {
	b := psql.Update(registrationsTable).Set("status", status).Where(sq.Eq{"registration_id": id})
	n, err := execute(ctx, repo.getExec(exec), b)
	if err != nil {
		return errors.Wrap(err, "updating registration status")
	}
	if n == 0 {
		return registration.ErrNotFound
	}
	return nil
}

func (repo registrationRepository) CountActiveRegistrations(ctx context.Context, examID int, exec ...core.DBExecutor) (int, error) {
	b := psql.Select("COUNT(*)").From(registrationsTable).
		Where(sq.Eq{"exam_id": examID}).
		Where(sq.NotEq{"status": registration.StatusCancelled})
	n, err := count(ctx, repo.getExec(exec), b)
	return n, errors.Wrap(err, "counting active registrations")
}

func (repo registrationRepository) LockExamCapacity(ctx context.Context, examID int, exec ...core.DBExecutor) (int, error) {
	b := psql.Select("max_capacity").From(examsTable).Where(sq.Eq{"exam_id": examID}).Suffix("FOR UPDATE")
	var capacity int
	if err := getOne(ctx, repo.getExec(exec), &capacity, b); err != nil {
		return 0, trapNoRowsErr(err, registration.ErrExamNotFound, "locking exam")
	}
	return capacity, nil
}

func (repo registrationRepository) DeleteRegistrations(ctx context.Context, ids []int, exec ...core.DBExecutor) error {
	if _, err := execute(ctx, repo.getExec(exec), psql.Delete(registrationsTable).Where(sq.Eq{"registration_id": ids})); err != nil {
		return errors.Wrap(err, "deleting registrations")
	}
	return nil
}
