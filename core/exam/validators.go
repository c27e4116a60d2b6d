package exam

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/sems/core"
)

var (
	endAfterStartTag  = "endafterstart"
	endAfterStartText = "end time must be after start time"
)

// InitValidators registers the exam schedule checks.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(examStructValidation, NewExam{})
	core.RegisterCustomTranslation(validate, translator, endAfterStartTag, endAfterStartText)
}

// examStructValidation checks that the exam ends after it starts.
func examStructValidation(sl validator.StructLevel) {
	ne, ok := sl.Current().Interface().(NewExam)
	if !ok {
		return
	}
	start, err := core.ParseClock(ne.StartTime)
	if err != nil {
		return // reported by `clock`
	}
	end, err := core.ParseClock(ne.EndTime)
	if err != nil {
		return
	}
	if !end.After(start) {
		sl.ReportError(ne.EndTime, "end_time", "EndTime", endAfterStartTag, "")
	}
}
