package session

import (
	"context"
	"strings"
	"time"
)

// Roles (as reported by the identity provider)
const (
	RoleAdmin          = "admin:"
	RoleAdminOwner     = "admin:owner"
	RoleAdminPrincipal = "admin:principal"
	RoleTeacher        = "teacher:"
	RoleStudent        = "student:"
)

// User is the profile attached to a session at login time.
type User struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Email       string   `json:"email"`
	Roles       []string `json:"roles"`
	Permissions []string `json:"permissions"`
}

func (u User) RoleStartsWith(prefix string) bool {
	for _, role := range u.Roles {
		if strings.HasPrefix(role, prefix) {
			return true
		}
	}
	return false
}

func (u User) IsAdmin() bool { return u.RoleStartsWith(RoleAdmin) }

func (u User) HasPermission(perm string) bool {
	for _, p := range u.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}

// Session identifies a logged-in caller. It is owned by the identity
// provider's login response; this package only ever reads it.
type Session struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        User      `json:"user"`
}

// Expired reports whether the access token must be treated as absent at `now`.
// A token expiring exactly now is already expired.
func (s *Session) Expired(now time.Time) bool {
	return s == nil || s.AccessToken == "" || !s.ExpiresAt.After(now)
}

// Provider exposes the caller's current session, if any. Implementations are
// read-only and may be backed by a store, a request context or a fixed value.
type Provider interface {
	Current(ctx context.Context) *Session
}

// StaticProvider always yields the same session; nil means logged out.
type StaticProvider struct {
	Session *Session
}

func (p *StaticProvider) Current(context.Context) *Session { return p.Session }

type contextKey int

const sessionKey contextKey = iota

// NewContext returns a context carrying the given session.
func NewContext(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionKey, s)
}

// FromContext extracts the session attached to ctx, or nil.
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionKey).(*Session)
	return s
}

// ContextProvider resolves the session from the request context; used by the
// admin gateway where each request carries its own caller.
type ContextProvider struct{}

func (ContextProvider) Current(ctx context.Context) *Session { return FromContext(ctx) }
