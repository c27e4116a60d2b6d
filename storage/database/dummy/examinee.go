package dummydb

import (
	"context"
	"strings"

	"github.com/trezcool/sems/core"
	"github.com/trezcool/sems/core/examinee"
	"github.com/trezcool/sems/core/registration"
)

type examineeRepository struct {
	db *DB
}

var _ examinee.Repository = (*examineeRepository)(nil) // interface compliance check

func NewExamineeRepository(db *DB) examinee.Repository {
	return &examineeRepository{db: db}
}

// checkUniqueness must be called with the lock held.
func (repo *examineeRepository) checkUniqueness(e examinee.Examinee) error {
	for _, other := range repo.db.examinees {
		if other.ID != e.ID && other.RegistrationNumber == e.RegistrationNumber {
			return examinee.ErrRegistrationNumberExists
		}
	}
	return nil
}

func (repo *examineeRepository) CreateExaminee(_ context.Context, e examinee.Examinee, _ ...core.DBExecutor) (examinee.Examinee, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if err := repo.checkUniqueness(e); err != nil {
		return examinee.Examinee{}, err
	}
	e.ID = repo.db.nextPK("examinees")
	repo.db.examinees[e.ID] = &e
	return e, nil
}

func (repo *examineeRepository) QueryExaminees(_ context.Context, filter *examinee.QueryFilter, ordering []core.DBOrdering, _ ...core.DBExecutor) ([]examinee.Examinee, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	list := make([]examinee.Examinee, 0, len(repo.db.examinees))
	for _, e := range repo.db.examinees {
		if filter != nil && filter.Search != "" &&
			!containsFold(filter.Search, e.FirstName, e.LastName, e.Email, e.RegistrationNumber) {
			continue
		}
		list = append(list, *e)
	}

	sortBy(len(list), ordering, comparators{
		"id":                  func(i, j int) int { return compareInts(list[i].ID, list[j].ID) },
		"registration_number": func(i, j int) int { return strings.Compare(list[i].RegistrationNumber, list[j].RegistrationNumber) },
		"first_name":          func(i, j int) int { return strings.Compare(list[i].FirstName, list[j].FirstName) },
		"last_name":           func(i, j int) int { return strings.Compare(list[i].LastName, list[j].LastName) },
		"created_at":          func(i, j int) int { return compareTimes(list[i].CreatedAt, list[j].CreatedAt) },
	}, func(i, j int) int {
		return compareInts(list[i].ID, list[j].ID)
	}, func(i, j int) {
		list[i], list[j] = list[j], list[i]
	})
	return list, nil
}

func (repo *examineeRepository) GetExaminee(_ context.Context, filter examinee.GetFilter, _ ...core.DBExecutor) (examinee.Examinee, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if filter.ID != 0 {
		if e, ok := repo.db.examinees[filter.ID]; ok {
			return *e, nil
		}
		return examinee.Examinee{}, examinee.ErrNotFound
	}
	if filter.RegistrationNumber != "" {
		for _, e := range repo.db.examinees {
			if e.RegistrationNumber == filter.RegistrationNumber {
				return *e, nil
			}
		}
	}
	return examinee.Examinee{}, examinee.ErrNotFound
}

func (repo *examineeRepository) UpdateExaminee(_ context.Context, e examinee.Examinee, _ ...core.DBExecutor) (examinee.Examinee, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.examinees[e.ID]
	if !ok {
		return examinee.Examinee{}, examinee.ErrNotFound
	}
	if err := repo.checkUniqueness(e); err != nil {
		return examinee.Examinee{}, err
	}
	e.CreatedAt = orig.CreatedAt
	repo.db.examinees[e.ID] = &e
	return e, nil
}

func (repo *examineeRepository) DeleteExaminees(_ context.Context, ids []int, _ ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		delete(repo.db.examinees, id)
		repo.db.cascadeRegistrations(func(reg *registration.Registration) bool { return reg.ExamineeID == id })
	}
	return nil
}

func (repo *examineeRepository) CountExaminees(_ context.Context, _ ...core.DBExecutor) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return len(repo.db.examinees), nil
}
