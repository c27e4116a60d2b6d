package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/sems/core"
	"github.com/trezcool/sems/core/exam"
	"github.com/trezcool/sems/core/examinee"
	"github.com/trezcool/sems/core/registration"
	"github.com/trezcool/sems/core/result"
	"github.com/trezcool/sems/core/user"
)

var (
	errUnauthorized       = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errAccountDeactivated = echo.NewHTTPError(http.StatusForbidden, "account deactivated")
	errRefreshExpired     = echo.NewHTTPError(http.StatusForbidden, "refresh has expired")
	errHttpForbidden      = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound       = echo.NewHTTPError(http.StatusNotFound, "not found")

	// domainErrorCodes maps the service errors to their HTTP status codes.
	domainErrorCodes = map[error]int{
		user.ErrInvalidCredentials:       http.StatusBadRequest,
		registration.ErrNoEmail:          http.StatusBadRequest,
		user.ErrNotFound:                 http.StatusNotFound,
		examinee.ErrNotFound:             http.StatusNotFound,
		exam.ErrNotFound:                 http.StatusNotFound,
		registration.ErrNotFound:         http.StatusNotFound,
		registration.ErrExamNotFound:     http.StatusNotFound,
		registration.ErrExamineeNotFound: http.StatusNotFound,
		result.ErrNotFound:               http.StatusNotFound,
		result.ErrRegistrationNotFound:   http.StatusNotFound,

		user.ErrUsernameExists:               http.StatusConflict,
		examinee.ErrRegistrationNumberExists: http.StatusConflict,
		exam.ErrCodeExists:                   http.StatusConflict,
		registration.ErrAlreadyRegistered:    http.StatusConflict,
		registration.ErrHallTicketExists:     http.StatusConflict,
		registration.ErrExamFull:             http.StatusConflict,
		registration.ErrInvalidTransition:    http.StatusConflict,
		result.ErrResultExists:               http.StatusConflict,
	}
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		cause := errors.Cause(err)
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
			vErr, _ := core.TranslateErrors(origErr, translator)
			code = http.StatusBadRequest
			message = vErr.FieldMap()
		case *core.ValidationError:
			if origErr.Fields != nil {
				message = origErr.FieldMap()
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		default:
			if c, ok := domainErrorCodes[cause]; ok {
				code = c
				message = cause.Error()
				break
			}

			// any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg

			var usr user.User
			if claims, cErr := getContextClaims(ctx); cErr == nil {
				usr.ID, _ = claims.UserID()
				usr.Username = claims.Username
			}
			args := []interface{}{errors.Wrap(err, msg), usr}
			if obj := ctx.Get("object"); obj != nil {
				args = append(args, obj) // the exam, examinee, registration or user being handled
			}
			logger.Error(msg, args...)

			if ctx.Echo().Debug {
				message = err.Error()
			}

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
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
}
