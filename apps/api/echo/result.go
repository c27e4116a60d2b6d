package echoapi

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/sems/core"
	"github.com/trezcool/sems/core/result"
	"github.com/trezcool/sems/core/user"
)

const resultsCSVFilename = "exam_results.csv"

type resultApi struct {
	*Server
	svc result.Service
}

func registerResultAPI(g *echo.Group, jwt echo.MiddlewareFunc, s *Server) {
	api := resultApi{Server: s, svc: s.deps.ResultSvc}

	rg := g.Group("/results", jwt)
	rg.GET("", api.query)

	// marks are entered by the exam cell
	entry := roleMiddleware(user.RoleAdmin, user.RoleStaff)
	rg.PUT("", api.save, entry)
	rg.DELETE("/:id", api.destroy, entry)
}

// query lists the results of an exam or of an examinee, as JSON or as CSV with `?format=csv`.
func (api *resultApi) query(ctx echo.Context) error {
	examID, err := queryID(ctx, "exam_id")
	if err != nil {
		return err
	}
	examineeID, err := queryID(ctx, "examinee_id")
	if err != nil {
		return err
	}

	var results []result.Result
	switch {
	case examID != 0:
		results, err = api.svc.QueryByExam(ctx.Request().Context(), examID)
	case examineeID != 0:
		results, err = api.svc.QueryByExaminee(ctx.Request().Context(), examineeID)
	default:
		return core.NewValidationError(errExamOrExamineeRequired)
	}
	if err != nil {
		return errors.Wrap(err, "querying results")
	}
	if results == nil {
		results = []result.Result{}
	}

	if ctx.QueryParam("format") == "csv" {
		var buf bytes.Buffer
		if err = result.WriteCSV(&buf, results); err != nil {
			return errors.Wrap(err, "exporting results")
		}
		ctx.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename="+resultsCSVFilename)
		return ctx.Blob(http.StatusOK, "text/csv", buf.Bytes())
	}
	return ctx.JSON(http.StatusOK, results)
}

func (api *resultApi) save(ctx echo.Context) error {
	var data result.NewResult
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewResult")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return api.validationError(err)
	}

	ctxUsr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	res, err := api.svc.Save(ctx.Request().Context(), data, ctxUsr.ID)
	if err != nil {
		return errors.Wrap(err, "saving result")
	}
	if res, err = api.svc.GetByRegistration(ctx.Request().Context(), res.RegistrationID); err != nil {
		return errors.Wrap(err, "finding result by registration")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *resultApi) destroy(ctx echo.Context) error {
	id, err := idParam(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting result")
	}
	return ctx.NoContent(http.StatusNoContent)
}
