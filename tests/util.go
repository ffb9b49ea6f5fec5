package testutil

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shulehq/shule-admin/core/session"
)

// WriteJSON writes an HTTP response body the way the LMS API does.
func WriteJSON(t *testing.T, w http.ResponseWriter, status int, body interface{}) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		t.Fatalf("WriteJSON() failed: %v", err)
	}
}

// Envelope wraps data in the API's success envelope.
func Envelope(data interface{}) map[string]interface{} {
	return map[string]interface{}{
		"success": true,
		"message": "",
		"code":    http.StatusOK,
		"data":    data,
	}
}

// MessageBody is the API's non-validation failure body.
func MessageBody(msg string) map[string]interface{} {
	return map[string]interface{}{
		"success": false,
		"message": msg,
	}
}

// ValidationBody is the API's 422 body.
func ValidationBody(errs map[string][]string) map[string]interface{} {
	return map[string]interface{}{
		"success": false,
		"message": "the given data was invalid",
		"errors":  errs,
	}
}

// ListBody nests records and pagination under the resource's key.
func ListBody(resource string, records interface{}, page, lastPage, perPage, total int) map[string]interface{} {
	return map[string]interface{}{
		resource: records,
		"pagination": map[string]interface{}{
			"current_page": page,
			"last_page":    lastPage,
			"per_page":     perPage,
			"total":        total,
		},
	}
}

// AdminSession returns a live admin session whose token expires in ttl.
func AdminSession(ttl time.Duration) *session.Session {
	return &session.Session{
		AccessToken: "test-token",
		ExpiresAt:   time.Now().Add(ttl),
		User: session.User{
			ID:    1,
			Name:  "Admin",
			Email: "admin@test.cd",
			Roles: []string{session.RoleAdmin},
		},
	}
}

// StudentSession returns a live non-admin session.
func StudentSession(ttl time.Duration) *session.Session {
	s := AdminSession(ttl)
	s.User.Roles = []string{session.RoleStudent}
	return s
}

// CountingHandler wraps a handler and counts the requests that reach it.
type CountingHandler struct {
	calls int64
	next  http.Handler
}

func NewCountingHandler(next http.Handler) *CountingHandler {
	return &CountingHandler{next: next}
}

func (h *CountingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt64(&h.calls, 1)
	h.next.ServeHTTP(w, r)
}

func (h *CountingHandler) Calls() int64 { return atomic.LoadInt64(&h.calls) }
