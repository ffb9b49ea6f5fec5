package echoadmin

import (
	"github.com/labstack/echo/v4"

	"github.com/shulehq/shule-admin/core"
	"github.com/shulehq/shule-admin/core/session"
)

const (
	contextSessionKey = "session"
	contextSIDKey     = "sid"
)

// sessionMiddleware resolves the browser cookie into a live session and makes
// it available both on the echo context and on the request context (where the
// LMS client's credential resolver reads it).
func sessionMiddleware(store *session.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			cookie, err := ctx.Cookie(core.Conf.Server.SessionCookie)
			if err != nil {
				return next(ctx)
			}
			s := store.Get(cookie.Value)
			if s == nil {
				return next(ctx)
			}

			req := ctx.Request()
			ctx.SetRequest(req.WithContext(session.NewContext(req.Context(), s)))
			ctx.Set(contextSessionKey, s)
			ctx.Set(contextSIDKey, cookie.Value)
			return next(ctx)
		}
	}
}

// adminMiddleware requires a logged-in caller with an admin role.
func adminMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			s := getContextSession(ctx)
			if s == nil {
				return errUnauthorized
			}
			if !s.User.IsAdmin() {
				return errHttpForbidden
			}
			return next(ctx)
		}
	}
}

func getContextSession(ctx echo.Context) *session.Session {
	s, _ := ctx.Get(contextSessionKey).(*session.Session)
	return s
}

func getContextSID(ctx echo.Context) string {
	sid, _ := ctx.Get(contextSIDKey).(string)
	return sid
}
