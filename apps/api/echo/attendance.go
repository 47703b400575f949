package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core/attendance"
)

type attendanceApi struct {
	svc attendance.Service
}

func registerAttendanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc attendance.Service) {
	api := attendanceApi{svc: svc}

	ag := g.Group("/attendance", jwt)
	ag.POST("/mark/:sessionId", api.mark)

	dg := ag.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
}

// mark checks the authenticated student in to a live session.
func (api *attendanceApi) mark(ctx echo.Context) error {
	var data MarkAttendanceRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to MarkAttendanceRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	att, err := api.svc.Mark(ctx.Request().Context(), ctx.Param("sessionId"), claims.Subject, data.Code)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, att)
}

func (api *attendanceApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	att, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"), claims.Subject)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, att)
}

func (api *attendanceApi) update(ctx echo.Context) error {
	var data attendance.UpdateAttendance
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateAttendance")
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	att, err := api.svc.UpdateStatus(ctx.Request().Context(), ctx.Param("id"), data, claims.Subject)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, att)
}

func (api *attendanceApi) destroy(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	if err = api.svc.Delete(ctx.Request().Context(), claims.Subject, ctx.Param("id")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
