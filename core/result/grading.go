package result

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Grades
const (
	GradeAPlus = "A+"
	GradeA     = "A"
	GradeB     = "B"
	GradeC     = "C"
	GradeD     = "D"
	GradeE     = "E"
	GradeFail  = "Fail"
)

var (
	hundred = decimal.NewFromInt(100)

	// lower bounds (inclusive), highest first
	gradeScale = []struct {
		min   decimal.Decimal
		grade string
	}{
		{decimal.NewFromInt(90), GradeAPlus},
		{decimal.NewFromInt(80), GradeA},
		{decimal.NewFromInt(70), GradeB},
		{decimal.NewFromInt(60), GradeC},
		{decimal.NewFromInt(50), GradeD},
		{decimal.NewFromInt(40), GradeE},
	}
)

// CalculatePercentage returns marks/max rounded half-up to 4 places, times 100, rounded half-up to 2 places.
func CalculatePercentage(marks, max decimal.Decimal) decimal.Decimal {
	if max.Sign() <= 0 {
		return decimal.Zero
	}
	return marks.DivRound(max, 4).Mul(hundred).Round(2)
}

func CalculateGrade(percentage decimal.Decimal) string {
	for _, step := range gradeScale {
		if percentage.GreaterThanOrEqual(step.min) {
			return step.grade
		}
	}
	return GradeFail
}

// IsPass reports whether grade is a passing grade. Missing grades do not pass.
func IsPass(grade string) bool {
	return grade != "" && !strings.HasPrefix(grade, GradeFail)
}
