package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/sems/core"
	"github.com/trezcool/sems/core/registration"
)

var errExamOrExamineeRequired = errors.New("exam_id or examinee_id is required")

type registrationApi struct {
	*Server
	svc registration.Service
}

func registerRegistrationAPI(g *echo.Group, jwt echo.MiddlewareFunc, s *Server) {
	api := registrationApi{Server: s, svc: s.deps.RegistrationSvc}

	rg := g.Group("/registrations", jwt)
	rg.GET("", api.query)
	rg.POST("", api.create)
	rg.GET("/hall-tickets/:number", api.retrieveByHallTicket)

	dg := rg.Group("/:id", api.objectMiddleware)
	dg.GET("", api.retrieve)
	dg.DELETE("", api.destroy)
	dg.PUT("/status", api.updateStatus)
	dg.POST("/confirm", api.confirm)
	dg.POST("/cancel", api.cancel)
	dg.GET("/hall-ticket", api.hallTicket)
	dg.POST("/hall-ticket/send", api.sendHallTicket)
	dg.GET("/result", api.result)
}

func (api *registrationApi) query(ctx echo.Context) error {
	examID, err := queryID(ctx, "exam_id")
	if err != nil {
		return err
	}
	examineeID, err := queryID(ctx, "examinee_id")
	if err != nil {
		return err
	}

	var regs []registration.Registration
	switch {
	case examID != 0:
		regs, err = api.svc.QueryByExam(ctx.Request().Context(), examID)
	case examineeID != 0:
		regs, err = api.svc.QueryByExaminee(ctx.Request().Context(), examineeID)
	default:
		return core.NewValidationError(errExamOrExamineeRequired)
	}
	if err != nil {
		return errors.Wrap(err, "querying registrations")
	}

	// both filters
	if examID != 0 && examineeID != 0 {
		filtered := make([]registration.Registration, 0, 1)
		for _, reg := range regs {
			if reg.ExamineeID == examineeID {
				filtered = append(filtered, reg)
			}
		}
		regs = filtered
	}
	if regs == nil {
		regs = []registration.Registration{}
	}
	return ctx.JSON(http.StatusOK, regs)
}

func (api *registrationApi) create(ctx echo.Context) error {
	var data RegisterRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RegisterRequest")
	}

	reg, err := api.svc.Register(ctx.Request().Context(), data.ExamineeID, data.ExamID, data.HallTicketNumber)
	if err != nil {
		return errors.Wrap(err, "registering examinee")
	}
	// fill in the labels
	if reg, err = api.svc.GetByID(ctx.Request().Context(), reg.ID); err != nil {
		return errors.Wrap(err, "finding registration by ID")
	}
	return ctx.JSON(http.StatusCreated, reg)
}

func (api *registrationApi) retrieve(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, ctx.Get("object"))
}

func (api *registrationApi) retrieveByHallTicket(ctx echo.Context) error {
	reg, err := api.svc.GetByHallTicket(ctx.Request().Context(), ctx.Param("number"))
	if err != nil {
		return errors.Wrap(err, "finding registration by hall ticket")
	}
	return ctx.JSON(http.StatusOK, reg)
}

func (api *registrationApi) destroy(ctx echo.Context) error {
	reg := ctx.Get("object").(registration.Registration)
	if err := api.svc.Delete(ctx.Request().Context(), reg.ID); err != nil {
		return errors.Wrap(err, "deleting registration")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *registrationApi) updateStatus(ctx echo.Context) error {
	reg := ctx.Get("object").(registration.Registration)

	var data StatusRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to StatusRequest")
	}
	reg, err := api.svc.UpdateStatus(ctx.Request().Context(), reg.ID, data.Status)
	if err != nil {
		return errors.Wrap(err, "updating registration status")
	}
	return ctx.JSON(http.StatusOK, reg)
}

func (api *registrationApi) confirm(ctx echo.Context) error {
	reg := ctx.Get("object").(registration.Registration)
	reg, err := api.svc.Confirm(ctx.Request().Context(), reg.ID)
	if err != nil {
		return errors.Wrap(err, "confirming registration")
	}
	return ctx.JSON(http.StatusOK, reg)
}

func (api *registrationApi) cancel(ctx echo.Context) error {
	reg := ctx.Get("object").(registration.Registration)
	reg, err := api.svc.Cancel(ctx.Request().Context(), reg.ID)
	if err != nil {
		return errors.Wrap(err, "cancelling registration")
	}
	return ctx.JSON(http.StatusOK, reg)
}

// hallTicket returns the hall ticket as JSON, or as plain text with `?format=text`.
func (api *registrationApi) hallTicket(ctx echo.Context) error {
	reg := ctx.Get("object").(registration.Registration)
	ticket, err := api.svc.HallTicket(ctx.Request().Context(), reg.ID)
	if err != nil {
		return errors.Wrap(err, "building hall ticket")
	}
	if ctx.QueryParam("format") == "text" {
		return ctx.String(http.StatusOK, ticket.String())
	}
	return ctx.JSON(http.StatusOK, ticket)
}

func (api *registrationApi) sendHallTicket(ctx echo.Context) error {
	reg := ctx.Get("object").(registration.Registration)
	if err := api.svc.SendHallTicket(ctx.Request().Context(), reg.ID); err != nil {
		return errors.Wrap(err, "sending hall ticket")
	}
	return ctx.JSON(http.StatusAccepted, SuccessResponse{Success: "Hall ticket sent."})
}

func (api *registrationApi) result(ctx echo.Context) error {
	reg := ctx.Get("object").(registration.Registration)
	res, err := api.deps.ResultSvc.GetByRegistration(ctx.Request().Context(), reg.ID)
	if err != nil {
		return errors.Wrap(err, "finding registration result")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *registrationApi) objectMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		id, err := idParam(ctx, "id")
		if err != nil {
			return err
		}
		reg, err := api.svc.GetByID(ctx.Request().Context(), id)
		if err != nil {
			return errors.Wrap(err, "finding registration by ID")
		}
		ctx.Set("object", reg)
		return next(ctx)
	}
}

type RegisterRequest struct {
	ExamineeID       int    `json:"examinee_id"`
	ExamID           int    `json:"exam_id"`
	HallTicketNumber string `json:"hall_ticket_number"`
}
