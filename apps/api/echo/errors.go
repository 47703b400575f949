package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core"
	"github.com/trezcool/kelasi/core/announcement"
	"github.com/trezcool/kelasi/core/attendance"
	"github.com/trezcool/kelasi/core/course"
	"github.com/trezcool/kelasi/core/user"
)

var (
	errUnauthorized         = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errAuthenticationFailed = echo.NewHTTPError(http.StatusBadRequest, "authentication failed")
	errAccountDeactivated   = echo.NewHTTPError(http.StatusForbidden, "account deactivated")
	errRefreshExpired       = echo.NewHTTPError(http.StatusForbidden, "refresh has expired")
	errHttpNotFound         = echo.NewHTTPError(http.StatusNotFound, "not found")
)

// statusCode maps domain errors to HTTP statuses. Ownership and enrollment
// failures deliberately read as 401 while role failures read as 403.
func statusCode(err error) (int, bool) {
	switch err {
	case user.ErrNotFound, course.ErrNotFound, course.ErrSessionNotFound,
		announcement.ErrNotFound, attendance.ErrNotFound:
		return http.StatusNotFound, true
	case attendance.ErrInvalidCode, attendance.ErrNotEnrolled,
		course.ErrNotCourseOwner, course.ErrNotCourseMember:
		return http.StatusUnauthorized, true
	case attendance.ErrNotStudent, course.ErrNotProfessor:
		return http.StatusForbidden, true
	case course.ErrAlreadyEnrolled:
		return http.StatusConflict, true
	case course.ErrNotEnrolled:
		return http.StatusBadRequest, true
	}
	return 0, false
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		cause := errors.Cause(err)
		if status, ok := statusCode(cause); ok {
			code = status
			message = cause.Error()
			sendErrorResponse(ctx, code, message, err)
			return
		}

		switch origErr := cause.(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				message = origErr.Message
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(core.Translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		default: // any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg

			var usr user.User
			if claims, cErr := getContextClaims(ctx); cErr == nil {
				usr.ID = claims.Subject
				usr.Email = claims.Email
			}
			logger.Error(msg, errors.Wrap(err, msg), usr)

			// shutting down...
			if core.IsShutdown(cause) {
				signalShutdown()
			}
		}

		sendErrorResponse(ctx, code, message, err)
	}
}

func sendErrorResponse(ctx echo.Context, code int, message interface{}, err error) {
	if ctx.Echo().Debug {
		message = err.Error()
	} else if m, ok := message.(string); ok {
		message = echo.Map{"error": m}
	}

	if !ctx.Response().Committed {
		if ctx.Request().Method == http.MethodHead { // Issue #608
			err = ctx.NoContent(code)
		} else {
			err = ctx.JSON(code, message)
		}
		if err != nil {
			ctx.Echo().Logger.Error(err)
		}
	}
}
