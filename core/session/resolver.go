package session

import (
	"context"
	"time"

	"github.com/shulehq/shule-admin/core"
)

// NowFunc returns the reference time for token expiry checks. mockable
var NowFunc = time.Now

// Resolver turns the caller's current session into a bearer token.
//
// Resolution is a pure read and happens on every call: the session source is
// external and may change (or expire) between two requests, so the resolved
// token is never cached here.
type Resolver struct {
	provider Provider
}

func NewResolver(provider Provider) *Resolver {
	return &Resolver{provider: provider}
}

// Resolve returns the bearer token for ctx's caller, or
// core.ErrUnauthenticated when there is no session, no token, or the token
// is past (or at) its expiry.
func (r *Resolver) Resolve(ctx context.Context) (string, error) {
	s := r.provider.Current(ctx)
	if s.Expired(NowFunc()) {
		return "", core.ErrUnauthenticated
	}
	return s.AccessToken, nil
}
