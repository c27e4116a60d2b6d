package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

func registerReportAPI(g *echo.Group, jwt echo.MiddlewareFunc, s *Server) {
	svc := s.deps.ReportSvc
	g.GET("/reports/summary", func(ctx echo.Context) error {
		top, err := queryID(ctx, "top")
		if err != nil {
			return err
		}
		summary, err := svc.Summary(ctx.Request().Context(), top)
		if err != nil {
			return errors.Wrap(err, "building summary")
		}
		return ctx.JSON(http.StatusOK, summary)
	}, jwt)
}
