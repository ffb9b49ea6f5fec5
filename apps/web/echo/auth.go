package echoadmin

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/shulehq/shule-admin/core"
	"github.com/shulehq/shule-admin/services/lms"
)

// login exchanges credentials with the identity provider, registers the
// session and sets the browser cookie.
func (s *server) login(ctx echo.Context) error {
	var creds lms.Credentials
	if err := ctx.Bind(&creds); err != nil {
		return errors.Wrap(err, "binding to Credentials")
	}
	creds.Email = core.CleanString(creds.Email, true /* lower */)
	if err := s.opts.Validate.Struct(creds); err != nil {
		return err
	}

	sess, err := s.opts.Client.Login(ctx.Request().Context(), creds)
	if err != nil {
		if errors.Cause(err) == core.ErrInvalidCredentials {
			return core.NewValidationError(core.ErrInvalidCredentials)
		}
		return errors.Wrap(err, "logging in")
	}

	sid := s.opts.Sessions.Put(sess)
	ctx.SetCookie(&http.Cookie{
		Name:     core.Conf.Server.SessionCookie,
		Value:    sid,
		Path:     "/",
		Expires:  cookieExpiry(sess.ExpiresAt),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return ctx.JSON(http.StatusOK, echo.Map{"user": sess.User})
}

// logout revokes the token upstream (best effort) and drops the session.
func (s *server) logout(ctx echo.Context) error {
	if err := s.opts.Client.Logout(ctx.Request().Context()); err != nil {
		s.opts.Logger.Warn("logout: revoking token upstream", err)
	}
	if sid := getContextSID(ctx); sid != "" {
		s.opts.Sessions.Delete(sid)
	}
	ctx.SetCookie(&http.Cookie{
		Name:     core.Conf.Server.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	return ctx.NoContent(http.StatusNoContent)
}

// me returns the logged-in caller's profile.
func (s *server) me(ctx echo.Context) error {
	sess := getContextSession(ctx)
	if sess == nil {
		return errUnauthorized
	}
	return ctx.JSON(http.StatusOK, echo.Map{"user": sess.User})
}

// cookieExpiry caps the cookie's lifetime at the token's own expiry.
func cookieExpiry(tokenExpiry time.Time) time.Time {
	max := time.Now().Add(core.Conf.Server.SessionTTL)
	if !tokenExpiry.IsZero() && tokenExpiry.Before(max) {
		return tokenExpiry
	}
	return max
}
