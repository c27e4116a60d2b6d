package exam

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/sems/core"
)

var (
	nowFunc = time.Now // mockable

	// errors
	ErrNotFound      = errors.New("exam not found")
	ErrCodeExists    = errors.New("an exam with this code already exists")
	ErrInvalidStatus = errors.New("invalid exam status")
)

type (
	Repository interface {
		CreateExam(ctx context.Context, e Exam, exec ...core.DBExecutor) (Exam, error)
		// QueryExams does a case-insensitive match of QueryFilter.Search on the name, code or venue.
		QueryExams(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Exam, error)
		GetExam(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (Exam, error)
		UpdateExam(ctx context.Context, e Exam, exec ...core.DBExecutor) (Exam, error)
		UpdateExamStatus(ctx context.Context, id int, status string, exec ...core.DBExecutor) error
		// DeleteExams also deletes their registrations and results.
		DeleteExams(ctx context.Context, ids []int, exec ...core.DBExecutor) error
		CountExams(ctx context.Context, exec ...core.DBExecutor) (int, error)
	}

	Service interface {
		Create(ctx context.Context, ne NewExam, createdBy int) (Exam, error)
		Query(ctx context.Context, filter *QueryFilter) ([]Exam, error)
		GetByID(ctx context.Context, id int) (Exam, error)
		GetByCode(ctx context.Context, code string) (Exam, error)
		Update(ctx context.Context, id int, ue UpdateExam) (Exam, error)
		UpdateStatus(ctx context.Context, id int, status string) error
		Delete(ctx context.Context, ids ...int) error
		Count(ctx context.Context) (int, error)
	}

	service struct {
		repo Repository
	}
)

var (
	_ Service = (*service)(nil) // interface compliance check

	defaultOrdering = []core.DBOrdering{{Field: "exam_date", Ascending: false}}
)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Create(ctx context.Context, ne NewExam, createdBy int) (Exam, error) {
	now := nowFunc().UTC()
	e := Exam{
		Status:    StatusScheduled,
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
	ne.apply(&e)
	return svc.repo.CreateExam(ctx, e)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter) ([]Exam, error) {
	return svc.repo.QueryExams(ctx, filter, defaultOrdering)
}

func (svc *service) GetByID(ctx context.Context, id int) (Exam, error) {
	if id <= 0 {
		return Exam{}, ErrNotFound
	}
	return svc.repo.GetExam(ctx, GetFilter{ID: id})
}

func (svc *service) GetByCode(ctx context.Context, code string) (Exam, error) {
	code = core.CleanString(code)
	if code == "" {
		return Exam{}, ErrNotFound
	}
	return svc.repo.GetExam(ctx, GetFilter{Code: code})
}

func (svc *service) Update(ctx context.Context, id int, ue UpdateExam) (Exam, error) {
	e, err := svc.GetByID(ctx, id)
	if err != nil {
		return Exam{}, err
	}
	ue.apply(&e)
	e.CurrentRegistrations = ue.CurrentRegistrations
	e.UpdatedAt = nowFunc().UTC()
	return svc.repo.UpdateExam(ctx, e)
}

func (svc *service) UpdateStatus(ctx context.Context, id int, status string) error {
	status = core.CleanString(status, true /* lower */)
	if !IsValidStatus(status) {
		return core.NewFieldValidationError("status", ErrInvalidStatus)
	}
	if id <= 0 {
		return ErrNotFound
	}
	return svc.repo.UpdateExamStatus(ctx, id, status)
}

func (svc *service) Delete(ctx context.Context, ids ...int) error {
	if len(ids) == 0 {
		return nil
	}
	return svc.repo.DeleteExams(ctx, ids)
}

func (svc *service) Count(ctx context.Context) (int, error) {
	return svc.repo.CountExams(ctx)
}
