package dummydb

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/trezcool/sems/core"
	"github.com/trezcool/sems/core/report"
	"github.com/trezcool/sems/core/result"
)

type reportRepository struct {
	db *DB
}

var _ report.Repository = (*reportRepository)(nil) // interface compliance check

func NewReportRepository(db *DB) report.Repository {
	return &reportRepository{db: db}
}

func (repo *reportRepository) Counts(_ context.Context, _ ...core.DBExecutor) (report.Counts, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	counts := report.Counts{
		Examinees:     len(repo.db.examinees),
		Exams:         len(repo.db.exams),
		Registrations: len(repo.db.registrations),
	}
	for _, reg := range repo.db.registrations {
		if reg.IsActive() {
			counts.ActiveRegistrations++
		}
	}
	for _, res := range repo.db.results {
		if result.IsPass(res.Grade) {
			counts.Passed++
		} else {
			counts.Failed++
		}
	}
	return counts, nil
}

func (repo *reportRepository) TopExaminees(_ context.Context, limit int, _ ...core.DBExecutor) ([]report.TopExaminee, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	best := make(map[int]decimal.Decimal)
	for _, res := range repo.db.results {
		reg, ok := repo.db.registrations[res.RegistrationID]
		if !ok {
			continue
		}
		if pct, ok := best[reg.ExamineeID]; !ok || res.Percentage.GreaterThan(pct) {
			best[reg.ExamineeID] = res.Percentage
		}
	}

	top := make([]report.TopExaminee, 0, len(best))
	for id, pct := range best {
		e, ok := repo.db.examinees[id]
		if !ok {
			continue
		}
		top = append(top, report.TopExaminee{
			ExamineeID:         id,
			RegistrationNumber: e.RegistrationNumber,
			Name:               e.FullName(),
			BestPercentage:     pct,
		})
	}
	sortBy(len(top), nil, nil, func(i, j int) int {
		if c := top[j].BestPercentage.Cmp(top[i].BestPercentage); c != 0 {
			return c
		}
		return strings.Compare(top[i].RegistrationNumber, top[j].RegistrationNumber)
	}, func(i, j int) {
		top[i], top[j] = top[j], top[i]
	})

	if limit > 0 && len(top) > limit {
		top = top[:limit]
	}
	return top, nil
}
