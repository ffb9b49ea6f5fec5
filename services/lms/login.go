package lms

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/shulehq/shule-admin/core"
	"github.com/shulehq/shule-admin/core/session"
)

// Credentials is the login submission.
type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// loginPayload is the identity provider's login response body.
type loginPayload struct {
	User        session.User `json:"user"`
	AccessToken string       `json:"access_token"`
	ExpiresAt   string       `json:"expires_at"`
	Roles       []string     `json:"roles"`
	Permissions []string     `json:"permissions"`
}

// Login exchanges credentials for a session. A rejection (wrong password,
// unknown email, null response) is core.ErrInvalidCredentials; anything else
// keeps its normalized shape.
func (c *Client) Login(ctx context.Context, creds Credentials) (*session.Session, error) {
	body, err := json.Marshal(creds)
	if err != nil {
		return nil, errors.Wrap(err, "encoding credentials")
	}

	env, err := c.call(ctx, "", http.MethodPost, "login", nil, "application/json", bytes.NewReader(body))
	if err != nil {
		switch cause := errors.Cause(err).(type) {
		case *core.ValidationError:
			return nil, core.ErrInvalidCredentials
		case *core.APIError:
			if cause.Code == http.StatusUnauthorized || cause.Code == http.StatusBadRequest {
				return nil, core.ErrInvalidCredentials
			}
		}
		return nil, err
	}

	if len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
		return nil, core.ErrInvalidCredentials
	}
	var lp loginPayload
	if err := json.Unmarshal(env.Data, &lp); err != nil {
		return nil, core.NewAPIError(env.status, "unexpected response from server")
	}
	if lp.AccessToken == "" {
		return nil, core.ErrInvalidCredentials
	}

	s := &session.Session{
		AccessToken: lp.AccessToken,
		User:        lp.User,
	}
	if len(lp.Roles) > 0 {
		s.User.Roles = lp.Roles
	}
	if len(lp.Permissions) > 0 {
		s.User.Permissions = lp.Permissions
	}
	if lp.ExpiresAt != "" {
		if at, err := time.Parse(time.RFC3339, lp.ExpiresAt); err == nil {
			s.ExpiresAt = at
		}
	}
	// the token itself is the fallback for anything the body left out
	if s.ExpiresAt.IsZero() || s.User.Email == "" {
		_ = s.FillFromToken()
	}
	return s, nil
}

// Logout tells the provider to revoke the session's token. Best effort: the
// local session is gone either way.
func (c *Client) Logout(ctx context.Context) error {
	token, err := c.token(ctx)
	if err != nil {
		return err
	}
	if _, err := c.call(ctx, token, http.MethodPost, "logout", nil, "", nil); err != nil {
		return err
	}
	return nil
}
