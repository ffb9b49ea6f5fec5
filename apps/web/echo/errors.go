package echoadmin

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/shulehq/shule-admin/core"
)

var (
	errUnauthorized  = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errHttpForbidden = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errHttpNotFound  = echo.NewHTTPError(http.StatusNotFound, "not found")
	errBadGateway    = echo.NewHTTPError(http.StatusBadGateway, "the learning service could not be reached")
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how
// to surface our error taxonomy: field errors for validation failures, one
// message for everything else. signalShutdown is called whenever a
// core.shutdown error is caught so the Server can stop gracefully.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string][]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = append(fldErrs[vErr.Field()], vErr.Translate(translator))
			}
			code = http.StatusUnprocessableEntity
			message = echo.Map{"errors": fldErrs}
		case *core.ValidationError:
			if origErr.Fields != nil {
				code = http.StatusUnprocessableEntity
				message = echo.Map{"errors": origErr.FieldMap()}
			} else {
				code = http.StatusBadRequest
				message = origErr.Error()
			}
		case *core.APIError:
			if origErr.IsNetwork() {
				code = errBadGateway.Code
				message = errBadGateway.Message
			} else {
				code = origErr.Code
				message = origErr.Message
			}
		default:
			if origErr == core.ErrUnauthenticated {
				code = errUnauthorized.Code
				message = errUnauthorized.Message
				break
			}

			// any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg

			args := []interface{}{errors.Wrap(err, msg)}
			if s := getContextSession(ctx); s != nil {
				args = append(args, s.User)
			}
			logger.Error(msg, args...)

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
