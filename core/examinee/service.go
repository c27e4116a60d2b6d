package examinee

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/sems/core"
)

var (
	nowFunc = time.Now // mockable

	// errors
	ErrNotFound                 = errors.New("examinee not found")
	ErrRegistrationNumberExists = errors.New("an examinee with this registration number already exists")
)

type (
	Repository interface {
		CreateExaminee(ctx context.Context, e Examinee, exec ...core.DBExecutor) (Examinee, error)
		// QueryExaminees does a case-insensitive match of QueryFilter.Search on the
		// first name, last name, email or registration number.
		QueryExaminees(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Examinee, error)
		GetExaminee(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (Examinee, error)
		UpdateExaminee(ctx context.Context, e Examinee, exec ...core.DBExecutor) (Examinee, error)
		// DeleteExaminees also deletes their registrations and results.
		DeleteExaminees(ctx context.Context, ids []int, exec ...core.DBExecutor) error
		CountExaminees(ctx context.Context, exec ...core.DBExecutor) (int, error)
	}

	Service interface {
		Create(ctx context.Context, ne NewExaminee) (Examinee, error)
		Query(ctx context.Context, filter *QueryFilter) ([]Examinee, error)
		GetByID(ctx context.Context, id int) (Examinee, error)
		GetByRegistrationNumber(ctx context.Context, regNum string) (Examinee, error)
		Update(ctx context.Context, id int, ne NewExaminee) (Examinee, error)
		Delete(ctx context.Context, ids ...int) error
		Count(ctx context.Context) (int, error)
	}

	service struct {
		repo Repository
	}
)

var (
	_ Service = (*service)(nil) // interface compliance check

	defaultOrdering = []core.DBOrdering{{Field: "registration_number", Ascending: true}}
)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Create(ctx context.Context, ne NewExaminee) (Examinee, error) {
	now := nowFunc().UTC()
	e := Examinee{CreatedAt: now, UpdatedAt: now}
	ne.apply(&e)
	return svc.repo.CreateExaminee(ctx, e)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter) ([]Examinee, error) {
	return svc.repo.QueryExaminees(ctx, filter, defaultOrdering)
}

func (svc *service) GetByID(ctx context.Context, id int) (Examinee, error) {
	if id <= 0 {
		return Examinee{}, ErrNotFound
	}
	return svc.repo.GetExaminee(ctx, GetFilter{ID: id})
}

func (svc *service) GetByRegistrationNumber(ctx context.Context, regNum string) (Examinee, error) {
	regNum = core.CleanString(regNum)
	if regNum == "" {
		return Examinee{}, ErrNotFound
	}
	return svc.repo.GetExaminee(ctx, GetFilter{RegistrationNumber: regNum})
}

func (svc *service) Update(ctx context.Context, id int, ne NewExaminee) (Examinee, error) {
	e, err := svc.GetByID(ctx, id)
	if err != nil {
		return Examinee{}, err
	}
	ne.apply(&e)
	e.UpdatedAt = nowFunc().UTC()
	return svc.repo.UpdateExaminee(ctx, e)
}

func (svc *service) Delete(ctx context.Context, ids ...int) error {
	if len(ids) == 0 {
		return nil
	}
	return svc.repo.DeleteExaminees(ctx, ids)
}

func (svc *service) Count(ctx context.Context) (int, error) {
	return svc.repo.CountExaminees(ctx)
}
