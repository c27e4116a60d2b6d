package echoapi

import (
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/sems/core"
)

var (
	orderingParam = "ordering"

	errInvalidID   = errors.New("must be a positive number")
	errInvalidBool = errors.New("must be true or false")
)

type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	val := ctx.QueryParam(orderingParam)
	if val == "" {
		return
	}

	for _, field := range strings.Split(val, ",") {
		field = strings.TrimSpace(field)
		descending := strings.HasPrefix(field, "-")
		if descending {
			field = field[1:] // drop "-"
		}
		if field != "" {
			ord.Orderings = append(ord.Orderings, core.DBOrdering{Field: field, Ascending: !descending})
		}
	}
}

// idParam reads a positive integer path parameter.
func idParam(ctx echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(ctx.Param(name))
	if err != nil || id <= 0 {
		return 0, errHttpNotFound
	}
	return id, nil
}

// queryID reads an optional positive integer query parameter; 0 if absent.
func queryID(ctx echo.Context, name string) (int, error) {
	val := ctx.QueryParam(name)
	if val == "" {
		return 0, nil
	}
	id, err := strconv.Atoi(val)
	if err != nil || id <= 0 {
		return 0, core.NewFieldValidationError(name, errInvalidID)
	}
	return id, nil
}

func queryBool(ctx echo.Context, name string) (*bool, error) {
	val := ctx.QueryParam(name)
	if val == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return nil, core.NewFieldValidationError(name, errInvalidBool)
	}
	return &b, nil
}

func queryDate(ctx echo.Context, name string) (date time.Time, err error) {
	if date, err = core.ParseDate(ctx.QueryParam(name)); err != nil {
		return date, core.NewFieldValidationError(name, errors.New("must be a valid date (YYYY-MM-DD)"))
	}
	return date, nil
}

// validationError translates validator errors into a core.ValidationError.
func (s *Server) validationError(err error) error {
	if vErr, ok := core.TranslateErrors(errors.Cause(err), s.deps.Translator); ok {
		return vErr
	}
	return err
}
