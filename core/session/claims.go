package session

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/pkg/errors"
)

// Claims mirrors the authorization claims the identity provider embeds in the
// access token. The token is issued and verified by the provider; we only
// peek at it to recover expiry and role data a login response may omit.
type Claims struct {
	jwt.StandardClaims
	Name        string   `json:"name,omitempty"`
	Email       string   `json:"email,omitempty"`
	Roles       []string `json:"roles,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

// ParseClaims decodes the access token's claims without verifying its
// signature (verification is the remote API's job, it holds the key).
func ParseClaims(token string) (*Claims, error) {
	claims := new(Claims)
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return nil, errors.Wrap(err, "parsing access token")
	}
	return claims, nil
}

// FillFromToken completes a session from its own access token: expiry from
// the `exp` claim when ExpiresAt is unset, profile fields when empty.
func (s *Session) FillFromToken() error {
	claims, err := ParseClaims(s.AccessToken)
	if err != nil {
		return err
	}
	if s.ExpiresAt.IsZero() && claims.ExpiresAt > 0 {
		s.ExpiresAt = time.Unix(claims.ExpiresAt, 0)
	}
	if s.User.Name == "" {
		s.User.Name = claims.Name
	}
	if s.User.Email == "" {
		s.User.Email = claims.Email
	}
	if len(s.User.Roles) == 0 {
		s.User.Roles = claims.Roles
	}
	if len(s.User.Permissions) == 0 {
		s.User.Permissions = claims.Permissions
	}
	return nil
}
