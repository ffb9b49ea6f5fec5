package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Store keeps the admin gateway's live sessions in memory, keyed by the
// opaque ID set in the browser cookie. Sessions are owned by the remote
// identity provider; the store only caches them for the cookie's lifetime.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// Put registers a session and returns its new ID.
func (st *Store) Put(s *Session) string {
	sid := uuid.New().String()
	st.mu.Lock()
	st.sessions[sid] = s
	st.mu.Unlock()
	return sid
}

// Get returns the session for sid, dropping it if the token has expired.
func (st *Store) Get(sid string) *Session {
	st.mu.RLock()
	s := st.sessions[sid]
	st.mu.RUnlock()

	if s != nil && s.Expired(NowFunc()) {
		st.Delete(sid)
		return nil
	}
	return s
}

func (st *Store) Delete(sid string) {
	st.mu.Lock()
	delete(st.sessions, sid)
	st.mu.Unlock()
}

// StoreProvider adapts one stored session ID to the Provider interface.
type StoreProvider struct {
	Store *Store
	SID   string
}

func (p *StoreProvider) Current(context.Context) *Session { return p.Store.Get(p.SID) }
