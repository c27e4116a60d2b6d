package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/sems/core/examinee"
	"github.com/trezcool/sems/core/registration"
	"github.com/trezcool/sems/core/result"
)

type examineeApi struct {
	*Server
	svc examinee.Service
}

func registerExamineeAPI(g *echo.Group, jwt echo.MiddlewareFunc, s *Server) {
	api := examineeApi{Server: s, svc: s.deps.ExamineeSvc}

	eg := g.Group("/examinees", jwt)
	eg.GET("", api.query)
	eg.POST("", api.create)
	eg.GET("/count", api.count)

	dg := eg.Group("/:id", api.objectMiddleware)
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
	dg.GET("/registrations", api.registrations)
	dg.GET("/results", api.results)
}

func (api *examineeApi) query(ctx echo.Context) error {
	filter := &examinee.QueryFilter{Search: ctx.QueryParam("search")}
	filter.Clean()

	list, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying examinees")
	}
	return ctx.JSON(http.StatusOK, list)
}

func (api *examineeApi) count(ctx echo.Context) error {
	n, err := api.svc.Count(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "counting examinees")
	}
	return ctx.JSON(http.StatusOK, CountResponse{Count: n})
}

func (api *examineeApi) create(ctx echo.Context) error {
	var data examinee.NewExaminee
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewExaminee")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return api.validationError(err)
	}

	e, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating examinee")
	}
	return ctx.JSON(http.StatusCreated, e)
}

func (api *examineeApi) retrieve(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, ctx.Get("object"))
}

func (api *examineeApi) update(ctx echo.Context) error {
	e := ctx.Get("object").(examinee.Examinee)

	var data examinee.NewExaminee
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewExaminee")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return api.validationError(err)
	}

	e, err := api.svc.Update(ctx.Request().Context(), e.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating examinee")
	}
	return ctx.JSON(http.StatusOK, e)
}

func (api *examineeApi) destroy(ctx echo.Context) error {
	e := ctx.Get("object").(examinee.Examinee)
	if err := api.svc.Delete(ctx.Request().Context(), e.ID); err != nil {
		return errors.Wrap(err, "deleting examinee")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *examineeApi) registrations(ctx echo.Context) error {
	e := ctx.Get("object").(examinee.Examinee)
	regs, err := api.deps.RegistrationSvc.QueryByExaminee(ctx.Request().Context(), e.ID)
	if err != nil {
		return errors.Wrap(err, "querying examinee registrations")
	}
	if regs == nil {
		regs = []registration.Registration{}
	}
	return ctx.JSON(http.StatusOK, regs)
}

func (api *examineeApi) results(ctx echo.Context) error {
	e := ctx.Get("object").(examinee.Examinee)
	results, err := api.deps.ResultSvc.QueryByExaminee(ctx.Request().Context(), e.ID)
	if err != nil {
		return errors.Wrap(err, "querying examinee results")
	}
	if results == nil {
		results = []result.Result{}
	}
	return ctx.JSON(http.StatusOK, results)
}

func (api *examineeApi) objectMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		id, err := idParam(ctx, "id")
		if err != nil {
			return err
		}
		e, err := api.svc.GetByID(ctx.Request().Context(), id)
		if err != nil {
			return errors.Wrap(err, "finding examinee by ID")
		}
		ctx.Set("object", e)
		return next(ctx)
	}
}

type CountResponse struct {
	Count int `json:"count"`
}
