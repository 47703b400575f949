package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core/attendance"
	"github.com/trezcool/kelasi/core/course"
)

type sessionApi struct {
	svc    course.SessionService
	attSvc attendance.Service
}

func registerSessionAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc course.SessionService, attSvc attendance.Service) {
	api := sessionApi{svc: svc, attSvc: attSvc}

	sg := g.Group("/sessions/:id", jwt)
	sg.GET("", api.retrieve)
	sg.PUT("", api.update)
	sg.DELETE("", api.destroy)
	sg.GET("/attendances", api.queryAttendances)
}

func (api *sessionApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	sess, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"), claims.Subject)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sess)
}

func (api *sessionApi) update(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	orig, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"), claims.Subject)
	if err != nil {
		return err
	}

	var data course.UpdateSession
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSession")
	}
	if err = data.Validate(orig); err != nil {
		return err
	}

	sess, err := api.svc.Update(ctx.Request().Context(), orig.ID, data, claims.Subject)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sess)
}

func (api *sessionApi) destroy(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	if err = api.svc.Delete(ctx.Request().Context(), ctx.Param("id"), claims.Subject); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *sessionApi) queryAttendances(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	atts, err := api.attSvc.QueryBySession(ctx.Request().Context(), ctx.Param("id"), claims.Subject)
	if err != nil {
		return err
	}
	if atts == nil {
		atts = []attendance.Attendance{}
	}
	return ctx.JSON(http.StatusOK, atts)
}
