package dummydb

import (
	"context"

	"github.com/trezcool/sems/core"
	"github.com/trezcool/sems/core/registration"
)

type registrationRepository struct {
	db *DB
}

var _ registration.Repository = (*registrationRepository)(nil) // interface compliance check

func NewRegistrationRepository(db *DB) registration.Repository {
	return &registrationRepository{db: db}
}

// detailed fills the read-only labels of reg. It must be called with the lock held.
func (repo *registrationRepository) detailed(reg registration.Registration) registration.Registration {
	if e, ok := repo.db.examinees[reg.ExamineeID]; ok {
		reg.ExamineeName = e.FullName()
		reg.RegistrationNumber = e.RegistrationNumber
	}
	if x, ok := repo.db.exams[reg.ExamID]; ok {
		reg.ExamName = x.Name
		reg.ExamCode = x.Code
	}
	return reg
}

func (repo *registrationRepository) CreateRegistration(_ context.Context, reg registration.Registration, _ ...core.DBExecutor) (registration.Registration, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, other := range repo.db.registrations {
		if other.ExamineeID == reg.ExamineeID && other.ExamID == reg.ExamID {
			return registration.Registration{}, registration.ErrAlreadyRegistered
		}
	}
	for _, other := range repo.db.registrations {
		if other.HallTicketNumber != "" && other.HallTicketNumber == reg.HallTicketNumber {
			return registration.Registration{}, registration.ErrHallTicketExists
		}
	}
	if _, ok := repo.db.exams[reg.ExamID]; !ok {
		return registration.Registration{}, registration.ErrExamNotFound
	}
	if _, ok := repo.db.examinees[reg.ExamineeID]; !ok {
		return registration.Registration{}, registration.ErrExamineeNotFound
	}

	reg.ID = repo.db.nextPK("exam_registrations")
	stored := reg
	stored.ExamineeName, stored.RegistrationNumber, stored.ExamName, stored.ExamCode = "", "", "", ""
	repo.db.registrations[reg.ID] = &stored
	return stored, nil
}

func (repo *registrationRepository) GetRegistration(_ context.Context, filter registration.GetFilter, _ ...core.DBExecutor) (registration.Registration, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if filter.ID != 0 {
		if reg, ok := repo.db.registrations[filter.ID]; ok {
			return repo.detailed(*reg), nil
		}
		return registration.Registration{}, registration.ErrNotFound
	}
	if filter.HallTicketNumber != "" {
		for _, reg := range repo.db.registrations {
			if reg.HallTicketNumber == filter.HallTicketNumber {
				return repo.detailed(*reg), nil
			}
		}
	}
	return registration.Registration{}, registration.ErrNotFound
}

func (repo *registrationRepository) QueryRegistrations(_ context.Context, filter *registration.QueryFilter, _ ...core.DBExecutor) ([]registration.Registration, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	regs := make([]registration.Registration, 0)
	for _, reg := range repo.db.registrations {
		if filter != nil {
			if filter.ExamID != 0 && reg.ExamID != filter.ExamID {
				continue
			}
			if filter.ExamineeID != 0 && reg.ExamineeID != filter.ExamineeID {
				continue
			}
			if filter.Status != "" && reg.Status != filter.Status {
				continue
			}
		}
		regs = append(regs, repo.detailed(*reg))
	}

	// newest first
	sortBy(len(regs), nil, nil, func(i, j int) int {
		if c := compareTimes(regs[j].RegistrationDate, regs[i].RegistrationDate); c != 0 {
			return c
		}
		return compareInts(regs[j].ID, regs[i].ID)
	}, func(i, j int) {
		regs[i], regs[j] = regs[j], regs[i]
	})
	return regs, nil
}

func (repo *registrationRepository) UpdateRegistrationStatus(_ context.Context, id int, status string, _ ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	reg, ok := repo.db.registrations[id]
	if !ok {
		return registration.ErrNotFound
	}
	reg.Status = status
	return nil
}

func (repo *registrationRepository) CountActiveRegistrations(_ context.Context, examID int, _ ...core.DBExecutor) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	n := 0
	for _, reg := range repo.db.registrations {
		if reg.ExamID == examID && reg.IsActive() {
			n++
		}
	}
	return n, nil
}

func (repo *registrationRepository) LockExamCapacity(_ context.Context, examID int, _ ...core.DBExecutor) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	e, ok := repo.db.exams[examID]
	if !ok {
		return 0, registration.ErrExamNotFound
	}
	return e.MaxCapacity, nil
}

func (repo *registrationRepository) DeleteRegistrations(_ context.Context, ids []int, _ ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	for _, id := range ids {
		repo.db.cascadeResults(id)
		delete(repo.db.registrations, id)
	}
	return nil
}
