package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core/announcement"
	"github.com/trezcool/kelasi/core/course"
	"github.com/trezcool/kelasi/core/user"
)

type courseApi struct {
	svc     course.Service
	sessSvc course.SessionService
	annSvc  announcement.Service
	usrSvc  user.Service
}

func registerCourseAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc course.Service,
	sessSvc course.SessionService,
	annSvc announcement.Service,
	usrSvc user.Service,
) {
	api := courseApi{svc: svc, sessSvc: sessSvc, annSvc: annSvc, usrSvc: usrSvc}

	cg := g.Group("/courses", jwt)
	cg.POST("", api.create)
	cg.GET("", api.queryMine)
	cg.POST("/join", api.join)

	dg := cg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
	dg.POST("/leave", api.leave)
	dg.GET("/sessions", api.querySessions)
	dg.POST("/sessions", api.createSession)
	dg.GET("/announcements", api.queryAnnouncements)
	dg.POST("/announcements", api.createAnnouncement)
}

func (api *courseApi) create(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	crs, err := api.svc.Create(ctx.Request().Context(), data, ctxUsr)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, crs)
}

func (api *courseApi) queryMine(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	courses, err := api.svc.QueryByUser(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	if courses == nil {
		courses = []course.Course{}
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) join(ctx echo.Context) error {
	var data course.JoinCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to JoinCourse")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	crs, err := api.svc.JoinByCode(ctx.Request().Context(), data.JoinCode, claims.Subject)
	if err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return errHttpNotFound
		}
		return err
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	crs, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"), claims.Subject)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) update(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	orig, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"), claims.Subject)
	if err != nil {
		return err
	}

	var data course.UpdateCourse
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCourse")
	}
	if err = data.Validate(orig); err != nil {
		return err
	}

	crs, err := api.svc.Update(ctx.Request().Context(), orig.ID, data, claims.Subject)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) destroy(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	if err = api.svc.Delete(ctx.Request().Context(), ctx.Param("id"), claims.Subject); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) leave(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	if err = api.svc.Leave(ctx.Request().Context(), ctx.Param("id"), claims.Subject); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) querySessions(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	sessions, err := api.sessSvc.QueryByCourse(ctx.Request().Context(), ctx.Param("id"), claims.Subject)
	if err != nil {
		return err
	}
	if sessions == nil {
		sessions = []course.Session{}
	}
	return ctx.JSON(http.StatusOK, sessions)
}

func (api *courseApi) createSession(ctx echo.Context) error {
	var data course.NewSession
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSession")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	sess, err := api.sessSvc.Create(ctx.Request().Context(), ctx.Param("id"), data, claims.Subject)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, sess)
}

func (api *courseApi) queryAnnouncements(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	anns, err := api.annSvc.QueryByCourse(ctx.Request().Context(), ctx.Param("id"), claims.Subject)
	if err != nil {
		return err
	}
	if anns == nil {
		anns = []announcement.Announcement{}
	}
	return ctx.JSON(http.StatusOK, anns)
}

func (api *courseApi) createAnnouncement(ctx echo.Context) error {
	var data announcement.NewAnnouncement
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAnnouncement")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return err
	}

	ann, err := api.annSvc.Create(ctx.Request().Context(), ctx.Param("id"), data, claims.Subject)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, ann)
}
