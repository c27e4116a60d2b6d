package dummydb

import (
	"context"
	"strings"

	"github.com/trezcool/sems/core"
	"github.com/trezcool/sems/core/exam"
	"github.com/trezcool/sems/core/registration"
)

type examRepository struct {
	db *DB
}

var _ exam.Repository = (*examRepository)(nil) // interface compliance check

func NewExamRepository(db *DB) exam.Repository {
	return &examRepository{db: db}
}

// checkUniqueness must be called with the lock held.
func (repo *examRepository) checkUniqueness(e exam.Exam) error {
	for _, other := range repo.db.exams {
		if other.ID != e.ID && other.Code == e.Code {
			return exam.ErrCodeExists
		}
	}
	return nil
}

func (repo *examRepository) CreateExam(_ context.Context, e exam.Exam, _ ...core.DBExecutor) (exam.Exam, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if err := repo.checkUniqueness(e); err != nil {
		return exam.Exam{}, err
	}
	if _, ok := repo.db.users[e.CreatedBy]; !ok {
		e.CreatedBy = 0
	}
	e.ID = repo.db.nextPK("exams")
	repo.db.exams[e.ID] = &e
	return e, nil
}

func (repo *examRepository) QueryExams(_ context.Context, filter *exam.QueryFilter, ordering []core.DBOrdering, _ ...core.DBExecutor) ([]exam.Exam, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	list := make([]exam.Exam, 0, len(repo.db.exams))
	for _, e := range repo.db.exams {
		if filter != nil {
			if filter.Search != "" && !containsFold(filter.Search, e.Name, e.Code, e.Venue) {
				continue
			}
			if filter.Status != "" && e.Status != filter.Status {
				continue
			}
			if !filter.DateFrom.IsZero() && e.Date.Before(filter.DateFrom) {
				continue
			}
			if !filter.DateTo.IsZero() && e.Date.After(filter.DateTo) {
				continue
			}
		}
		list = append(list, *e)
	}

	sortBy(len(list), ordering, comparators{
		"id":        func(i, j int) int { return compareInts(list[i].ID, list[j].ID) },
		"exam_name": func(i, j int) int { return strings.Compare(list[i].Name, list[j].Name) },
		"exam_code": func(i, j int) int { return strings.Compare(list[i].Code, list[j].Code) },
		"exam_date": func(i, j int) int { return compareTimes(list[i].Date, list[j].Date) },
		"status":    func(i, j int) int { return strings.Compare(list[i].Status, list[j].Status) },
	}, func(i, j int) int {
		return compareInts(list[i].ID, list[j].ID)
	}, func(i, j int) {
		list[i], list[j] = list[j], list[i]
	})
	return list, nil
}

func (repo *examRepository) GetExam(_ context.Context, filter exam.GetFilter, _ ...core.DBExecutor) (exam.Exam, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if filter.ID != 0 {
		if e, ok := repo.db.exams[filter.ID]; ok {
			return *e, nil
		}
		return exam.Exam{}, exam.ErrNotFound
	}
	if filter.Code != "" {
		for _, e := range repo.db.exams {
			if e.Code == filter.Code {
				return *e, nil
			}
		}
	}
	return exam.Exam{}, exam.ErrNotFound
}

func (repo *examRepository) UpdateExam(_ context.Context, e exam.Exam, _ ...core.DBExecutor) (exam.Exam, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	orig, ok := repo.db.exams[e.ID]
	if !ok {
		return exam.Exam{}, exam.ErrNotFound
	}
	if err := repo.checkUniqueness(e); err != nil {
		return exam.Exam{}, err
	}
	e.CreatedBy = orig.CreatedBy
	e.CreatedAt = orig.CreatedAt
	repo.db.exams[e.ID] = &e
	return e, nil
}

func (repo *examRepository) UpdateExamStatus(_ context.Context, id int, status string, _ ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	e, ok := repo.db.exams[id]
	if !ok {
		return exam.ErrNotFound
	}
	e.Status = status
	return nil
}

func (repo *examRepository) DeleteExams(_ context.Context, ids []int, _ ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		delete(repo.db.exams, id)
		repo.db.cascadeRegistrations(func(reg *registration.Registration) bool { return reg.ExamID == id })
	}
	return nil
}

func (repo *examRepository) CountExams(_ context.Context, _ ...core.DBExecutor) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return len(repo.db.exams), nil
}
