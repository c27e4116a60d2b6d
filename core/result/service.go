package result

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/sems/core"
)

var (
	nowFunc = time.Now // mockable

	// errors
	ErrNotFound             = errors.New("result not found")
	ErrRegistrationNotFound = errors.New("registration not found")
	ErrResultExists         = errors.New("a result already exists for this registration")
	ErrInvalidMaxMarks      = errors.New("max marks must be greater than 0")
	ErrInvalidMarks         = errors.New("marks obtained must be between 0 and max marks")
	ErrMarksPrecision       = errors.New("marks can have at most 2 decimal places")
	ErrMarksTooLarge        = errors.New("marks cannot exceed 9999.99")

	byPercentage = []core.DBOrdering{{Field: "percentage", Ascending: false}}
	byEnteredAt  = []core.DBOrdering{{Field: "entered_at", Ascending: false}}
)

type (
	Repository interface {
		// CreateResult maps a missing registration to ErrRegistrationNotFound and a second result to ErrResultExists.
		CreateResult(ctx context.Context, res Result, exec ...core.DBExecutor) (Result, error)
		// UpdateResult writes the marks, percentage, grade, remarks and updated_at of res.
		UpdateResult(ctx context.Context, res Result, exec ...core.DBExecutor) (Result, error)
		GetResult(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (Result, error)
		QueryResults(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Result, error)
		DeleteResults(ctx context.Context, ids []int, exec ...core.DBExecutor) error
	}

	Service interface {
		Save(ctx context.Context, nr NewResult, enteredBy int) (Result, error)
		GetByRegistration(ctx context.Context, registrationID int) (Result, error)
		QueryByExam(ctx context.Context, examID int) ([]Result, error)
		QueryByExaminee(ctx context.Context, examineeID int) ([]Result, error)
		Delete(ctx context.Context, ids ...int) error
	}

	service struct {
		db   core.TxRunner
		repo Repository
	}
)

var _ Service = (*service)(nil) // interface compliance check

func NewService(db core.TxRunner, repo Repository) Service {
	return &service{db: db, repo: repo}
}

// Save computes the percentage and grade of nr and stores them, updating the
// existing result of the registration in place if there is one.
func (svc *service) Save(ctx context.Context, nr NewResult, enteredBy int) (Result, error) {
	if err := nr.validateMarks(); err != nil {
		return Result{}, err
	}
	if nr.RegistrationID <= 0 {
		return Result{}, ErrRegistrationNotFound
	}

	pct := CalculatePercentage(nr.MarksObtained, nr.MaxMarks)
	grade := CalculateGrade(pct)
	now := nowFunc().UTC()

	var res Result
	err := svc.db.RunInTx(ctx, func(ctx context.Context, exec core.DBExecutor) error {
		existing, err := svc.repo.GetResult(ctx, GetFilter{RegistrationID: nr.RegistrationID}, exec)
		switch {
		case err == nil:
			existing.MarksObtained = nr.MarksObtained
			existing.MaxMarks = nr.MaxMarks
			existing.Percentage = pct
			existing.Grade = grade
			existing.Remarks = nr.Remarks
			existing.UpdatedAt = now
			res, err = svc.repo.UpdateResult(ctx, existing, exec)
			return err
		case errors.Cause(err) == ErrNotFound:
			res, err = svc.repo.CreateResult(ctx, Result{
				RegistrationID: nr.RegistrationID,
				MarksObtained:  nr.MarksObtained,
				MaxMarks:       nr.MaxMarks,
				Percentage:     pct,
				Grade:          grade,
				Remarks:        nr.Remarks,
				EnteredBy:      enteredBy,
				EnteredAt:      now,
				UpdatedAt:      now,
			}, exec)
			return err
		default:
			return err
		}
	})
	if err != nil {
		return Result{}, err
	}
	return res, nil
}

func (svc *service) GetByRegistration(ctx context.Context, registrationID int) (Result, error) {
	if registrationID <= 0 {
		return Result{}, ErrNotFound
	}
	return svc.repo.GetResult(ctx, GetFilter{RegistrationID: registrationID})
}

func (svc *service) QueryByExam(ctx context.Context, examID int) ([]Result, error) {
	return svc.repo.QueryResults(ctx, &QueryFilter{ExamID: examID}, byPercentage)
}

func (svc *service) QueryByExaminee(ctx context.Context, examineeID int) ([]Result, error) {
	return svc.repo.QueryResults(ctx, &QueryFilter{ExamineeID: examineeID}, byEnteredAt)
}

func (svc *service) Delete(ctx context.Context, ids ...int) error {
	if len(ids) == 0 {
		return nil
	}
	return svc.repo.DeleteResults(ctx, ids)
}
