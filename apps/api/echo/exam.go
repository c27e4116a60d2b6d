package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/sems/core/exam"
	"github.com/trezcool/sems/core/registration"
)

type examApi struct {
	*Server
	svc exam.Service
}

func registerExamAPI(g *echo.Group, jwt echo.MiddlewareFunc, s *Server) {
	api := examApi{Server: s, svc: s.deps.ExamSvc}

	eg := g.Group("/exams", jwt)
	eg.GET("", api.query)
	eg.POST("", api.create)
	eg.GET("/count", api.count)
	eg.GET("/statuses", api.queryStatuses)

	dg := eg.Group("/:id", api.objectMiddleware)
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.PUT("/status", api.updateStatus)
	dg.DELETE("", api.destroy)
	dg.GET("/registrations", api.registrations)
	dg.GET("/capacity", api.capacity)
}

func (api *examApi) query(ctx echo.Context) error {
	from, err := queryDate(ctx, "date_from")
	if err != nil {
		return err
	}
	to, err := queryDate(ctx, "date_to")
	if err != nil {
		return err
	}
	filter := &exam.QueryFilter{
		Search:   ctx.QueryParam("search"),
		Status:   ctx.QueryParam("status"),
		DateFrom: from,
		DateTo:   to,
	}
	filter.Clean()

	list, err := api.svc.Query(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying exams")
	}
	return ctx.JSON(http.StatusOK, list)
}

func (api *examApi) count(ctx echo.Context) error {
	n, err := api.svc.Count(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "counting exams")
	}
	return ctx.JSON(http.StatusOK, CountResponse{Count: n})
}

func (api *examApi) queryStatuses(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, exam.AllStatuses)
}

func (api *examApi) create(ctx echo.Context) error {
	var data exam.NewExam
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewExam")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return api.validationError(err)
	}

	ctxUsr, err := getContextUser(ctx, api.deps.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	e, err := api.svc.Create(ctx.Request().Context(), data, ctxUsr.ID)
	if err != nil {
		return errors.Wrap(err, "creating exam")
	}
	return ctx.JSON(http.StatusCreated, e)
}

func (api *examApi) retrieve(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, ctx.Get("object"))
}

func (api *examApi) update(ctx echo.Context) error {
	e := ctx.Get("object").(exam.Exam)

	data := exam.UpdateExam{CurrentRegistrations: e.CurrentRegistrations}
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateExam")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return api.validationError(err)
	}

	e, err := api.svc.Update(ctx.Request().Context(), e.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating exam")
	}
	return ctx.JSON(http.StatusOK, e)
}

func (api *examApi) updateStatus(ctx echo.Context) error {
	e := ctx.Get("object").(exam.Exam)

	var data StatusRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StatusRequest")
	}
	if err := api.svc.UpdateStatus(ctx.Request().Context(), e.ID, data.Status); err != nil {
		return errors.Wrap(err, "updating exam status")
	}

	e, err := api.svc.GetByID(ctx.Request().Context(), e.ID)
	if err != nil {
		return errors.Wrap(err, "finding exam by ID")
	}
	return ctx.JSON(http.StatusOK, e)
}

func (api *examApi) destroy(ctx echo.Context) error {
	e := ctx.Get("object").(exam.Exam)
	if err := api.svc.Delete(ctx.Request().Context(), e.ID); err != nil {
		return errors.Wrap(err, "deleting exam")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *examApi) registrations(ctx echo.Context) error {
	e := ctx.Get("object").(exam.Exam)
	regs, err := api.deps.RegistrationSvc.QueryByExam(ctx.Request().Context(), e.ID)
	if err != nil {
		return errors.Wrap(err, "querying exam registrations")
	}
	if regs == nil {
		regs = []registration.Registration{}
	}
	return ctx.JSON(http.StatusOK, regs)
}

// capacity reports the capacity figures of an exam, active registrations included.
func (api *examApi) capacity(ctx echo.Context) error {
	e := ctx.Get("object").(exam.Exam)
	active, err := api.deps.RegistrationSvc.ActiveCount(ctx.Request().Context(), e.ID)
	if err != nil {
		return errors.Wrap(err, "counting active registrations")
	}
	remaining := e.MaxCapacity - active
	if remaining < 0 {
		remaining = 0
	}
	return ctx.JSON(http.StatusOK, CapacityResponse{
		MaxCapacity:          e.MaxCapacity,
		CurrentRegistrations: e.CurrentRegistrations,
		ActiveRegistrations:  active,
		Remaining:            remaining,
	})
}

func (api *examApi) objectMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		id, err := idParam(ctx, "id")
		if err != nil {
			return err
		}
		e, err := api.svc.GetByID(ctx.Request().Context(), id)
		if err != nil {
			return errors.Wrap(err, "finding exam by ID")
		}
		ctx.Set("object", e)
		return next(ctx)
	}
}

type (
	StatusRequest struct {
		Status string `json:"status"`
	}

	CapacityResponse struct {
		MaxCapacity          int `json:"max_capacity"`
		CurrentRegistrations int `json:"current_registrations"`
		ActiveRegistrations  int `json:"active_registrations"`
		Remaining            int `json:"remaining"`
	}
)
