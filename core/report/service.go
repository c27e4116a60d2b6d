package report

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/trezcool/sems/core"
)

const DefaultTopN = 5

var hundred = decimal.NewFromInt(100)

type (
	// Counts are the raw totals a Summary is built from.
	Counts struct {
		Examinees           int
		Exams               int
		Registrations       int
		ActiveRegistrations int
		Passed              int // results with a passing grade
		Failed              int // any other result
	}

	TopExaminee struct {
		ExamineeID         int             `json:"examinee_id"`
		RegistrationNumber string          `json:"registration_number"`
		Name               string          `json:"name"`
		BestPercentage     decimal.Decimal `json:"best_percentage"`
	}

	Summary struct {
		TotalExaminees      int             `json:"total_examinees"`
		TotalExams          int             `json:"total_exams"`
		TotalRegistrations  int             `json:"total_registrations"`
		ActiveRegistrations int             `json:"active_registrations"`
		PassCount           int             `json:"pass_count"`
		FailCount           int             `json:"fail_count"`
		PassRatio           decimal.Decimal `json:"pass_ratio"` // percent
		FailRatio           decimal.Decimal `json:"fail_ratio"` // percent
		TopExaminees        []TopExaminee   `json:"top_examinees"`
	}

	Repository interface {
		Counts(ctx context.Context, exec ...core.DBExecutor) (Counts, error)
		// TopExaminees ranks examinees by their best result percentage.
		TopExaminees(ctx context.Context, limit int, exec ...core.DBExecutor) ([]TopExaminee, error)
	}

	Service interface {
		Summary(ctx context.Context, topN int) (Summary, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil) // interface compliance check

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Summary(ctx context.Context, topN int) (Summary, error) {
	if topN <= 0 {
		topN = DefaultTopN
	}

	counts, err := svc.repo.Counts(ctx)
	if err != nil {
		return Summary{}, errors.Wrap(err, "counting")
	}
	top, err := svc.repo.TopExaminees(ctx, topN)
	if err != nil {
		return Summary{}, errors.Wrap(err, "querying top examinees")
	}
	if top == nil {
		top = []TopExaminee{}
	}

	passRatio, failRatio := Ratios(counts.Passed, counts.Failed)
	return Summary{
		TotalExaminees:      counts.Examinees,
		TotalExams:          counts.Exams,
		TotalRegistrations:  counts.Registrations,
		ActiveRegistrations: counts.ActiveRegistrations,
		PassCount:           counts.Passed,
		FailCount:           counts.Failed,
		PassRatio:           passRatio,
		FailRatio:           failRatio,
		TopExaminees:        top,
	}, nil
}

// Ratios returns the pass and fail shares in percent, rounded to 2 places. Both are 0 without results.
func Ratios(passed, failed int) (decimal.Decimal, decimal.Decimal) {
	total := passed + failed
	if total == 0 {
		return decimal.Zero, decimal.Zero
	}
	t := decimal.NewFromInt(int64(total))
	pass := decimal.NewFromInt(int64(passed)).Mul(hundred).DivRound(t, 2)
	fail := decimal.NewFromInt(int64(failed)).Mul(hundred).DivRound(t, 2)
	return pass, fail
}
