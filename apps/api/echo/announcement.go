package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core/announcement"
)

type announcementApi struct {
	svc announcement.Service
}

func registerAnnouncementAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc announcement.Service) {
	api := announcementApi{svc: svc}

	ag := g.Group("/announcements/:id", jwt)
	ag.GET("", api.retrieve)
	ag.PUT("", api.update)
	ag.DELETE("", api.destroy)
}

func (api *announcementApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	ann, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"), claims.Subject)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ann)
}

func (api *announcementApi) update(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	orig, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"), claims.Subject)
	if err != nil {
		return err
	}

	var data announcement.UpdateAnnouncement
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateAnnouncement")
	}
	if err = data.Validate(orig); err != nil {
		return err
	}

	ann, err := api.svc.Update(ctx.Request().Context(), orig.ID, data, claims.Subject)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ann)
}

func (api *announcementApi) destroy(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	if err = api.svc.Delete(ctx.Request().Context(), ctx.Param("id"), claims.Subject); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
