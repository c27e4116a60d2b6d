package dummydb

import (
	"context"
	"strings"

	"github.com/trezcool/sems/core"
	"github.com/trezcool/sems/core/result"
)

type resultRepository struct {
	db *DB
}

var _ result.Repository = (*resultRepository)(nil) // interface compliance check

func NewResultRepository(db *DB) result.Repository {
	return &resultRepository{db: db}
}

// detailed fills the read-only labels of res. It must be called with the lock held.
func (repo *resultRepository) detailed(res result.Result) result.Result {
	reg, ok := repo.db.registrations[res.RegistrationID]
	if !ok {
		return res
	}
	res.HallTicketNumber = reg.HallTicketNumber
	res.ExamineeID = reg.ExamineeID
	res.ExamID = reg.ExamID
	if e, ok := repo.db.examinees[reg.ExamineeID]; ok {
		res.ExamineeName = e.FullName()
		res.RegistrationNumber = e.RegistrationNumber
	}
	if x, ok := repo.db.exams[reg.ExamID]; ok {
		res.ExamName = x.Name
		res.ExamCode = x.Code
	}
	return res
}

func (repo *resultRepository) CreateResult(_ context.Context, res result.Result, _ ...core.DBExecutor) (result.Result, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.registrations[res.RegistrationID]; !ok {
		return result.Result{}, result.ErrRegistrationNotFound
	}
	for _, other := range repo.db.results {
		if other.RegistrationID == res.RegistrationID {
			return result.Result{}, result.ErrResultExists
		}
	}
	if _, ok := repo.db.users[res.EnteredBy]; !ok {
		res.EnteredBy = 0
	}

	res.ID = repo.db.nextPK("results")
	repo.db.results[res.ID] = &res
	return res, nil
}

func (repo *resultRepository) UpdateResult(_ context.Context, res result.Result, _ ...core.DBExecutor) (result.Result, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.results[res.ID]
	if !ok {
		return result.Result{}, result.ErrNotFound
	}
	orig.MarksObtained = res.MarksObtained
	orig.MaxMarks = res.MaxMarks
	orig.Percentage = res.Percentage
	orig.Grade = res.Grade
	orig.Remarks = res.Remarks
	orig.UpdatedAt = res.UpdatedAt
	return *orig, nil
}

func (repo *resultRepository) GetResult(_ context.Context, filter result.GetFilter, _ ...core.DBExecutor) (result.Result, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, res := range repo.db.results {
		if (filter.ID != 0 && res.ID == filter.ID) ||
			(filter.ID == 0 && filter.RegistrationID != 0 && res.RegistrationID == filter.RegistrationID) {
			return repo.detailed(*res), nil
		}
	}
	return result.Result{}, result.ErrNotFound
}

func (repo *resultRepository) QueryResults(_ context.Context, filter *result.QueryFilter, ordering []core.DBOrdering, _ ...core.DBExecutor) ([]result.Result, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	list := make([]result.Result, 0)
	for _, res := range repo.db.results {
		r := repo.detailed(*res)
		if filter != nil {
			if filter.ExamID != 0 && r.ExamID != filter.ExamID {
				continue
			}
			if filter.ExamineeID != 0 && r.ExamineeID != filter.ExamineeID {
				continue
			}
		}
		list = append(list, r)
	}

	sortBy(len(list), ordering, comparators{
		"id":         func(i, j int) int { return compareInts(list[i].ID, list[j].ID) },
		"percentage": func(i, j int) int { return list[i].Percentage.Cmp(list[j].Percentage) },
		"entered_at": func(i, j int) int { return compareTimes(list[i].EnteredAt, list[j].EnteredAt) },
		"grade":      func(i, j int) int { return strings.Compare(list[i].Grade, list[j].Grade) },
	}, func(i, j int) int {
		return compareInts(list[i].ID, list[j].ID)
	}, func(i, j int) {
		list[i], list[j] = list[j], list[i]
	})
	return list, nil
}

func (repo *resultRepository) DeleteResults(_ context.Context, ids []int, _ ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		delete(repo.db.results, id)
	}
	return nil
}
