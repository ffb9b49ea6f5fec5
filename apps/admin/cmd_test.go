package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shulehq/shule-admin/core"
	"github.com/shulehq/shule-admin/core/session"
	"github.com/shulehq/shule-admin/services/lms"
	"github.com/shulehq/shule-admin/storage/cache"
	testutil "github.com/shulehq/shule-admin/tests"
)

func mockPassword(t *testing.T, pwd string) {
	t.Helper()
	original := readPasswordFunc
	readPasswordFunc = func(fd int) ([]byte, error) { return []byte(pwd), nil }
	t.Cleanup(func() { readPasswordFunc = original })
}

// fakeAPI serves login plus the course and group endpoints the CLI drives.
func fakeAPI(t *testing.T) http.Handler {
	t.Helper()

	authed := func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") != "Bearer cli-token" {
				testutil.WriteJSON(t, w, http.StatusUnauthorized, testutil.MessageBody("unauthenticated"))
				return
			}
			next(w, r)
		}
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteJSON(t, w, http.StatusOK, testutil.Envelope(map[string]interface{}{
			"access_token": "cli-token",
			"expires_at":   time.Now().Add(time.Hour).UTC().Format(time.RFC3339),
			"user":         map[string]interface{}{"id": 1, "name": "Admin", "email": "admin@test.cd"},
			"roles":        []string{session.RoleAdmin},
		}))
	})
	mux.HandleFunc("/courses", authed(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			testutil.WriteJSON(t, w, http.StatusOK, testutil.Envelope(testutil.ListBody("courses",
				[]interface{}{
					map[string]interface{}{"id": 1, "title": "Algebra", "code": "alg-101", "level": "beginner"},
					map[string]interface{}{"id": 2, "title": "Biology", "code": "bio-101", "level": "beginner"},
				}, 1, 1, 20, 2)))
		case http.MethodPost:
			testutil.WriteJSON(t, w, http.StatusCreated, testutil.Envelope(
				map[string]interface{}{"id": 9, "title": "Chemistry", "code": "chem-101"}))
		}
	}))
	mux.HandleFunc("/courses/2", authed(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		testutil.WriteJSON(t, w, http.StatusOK, testutil.MessageBody("deleted"))
	}))
	mux.HandleFunc("/groups", authed(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			testutil.WriteJSON(t, w, http.StatusOK, testutil.Envelope(testutil.ListBody("groups",
				[]interface{}{map[string]interface{}{"id": 4, "name": "Cohort A", "course_id": 1, "capacity": 30}},
				1, 1, 20, 1)))
		case http.MethodPost:
			testutil.WriteJSON(t, w, http.StatusCreated, testutil.Envelope(
				map[string]interface{}{"id": 5, "name": "Cohort B", "course_id": 1}))
		}
	}))
	return mux
}

func newCLI(t *testing.T, handler http.Handler) (*commandLine, *bytes.Buffer) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	provider := &session.StaticProvider{}
	client, err := lms.NewClient(srv.URL, session.NewResolver(provider))
	require.NoError(t, err)

	store := cache.New()
	validate, translator := core.NewValidator()
	var out bytes.Buffer
	return &commandLine{
		client:     client,
		provider:   provider,
		courses:    lms.NewCourseService(client, store),
		groups:     lms.NewGroupService(client, store),
		validate:   validate,
		translator: translator,
		out:        &out,
	}, &out
}

func TestCLI_usage(t *testing.T) {
	tests := [][]string{
		{"admin"},
		{"admin", "wat"},
	}
	for _, args := range tests {
		cli, out := newCLI(t, fakeAPI(t))
		err := cli.run(args)
		assert.Equal(t, errHelp, err)
		assert.Contains(t, out.String(), "Usage:")
	}
}

func TestCLI_listCourses(t *testing.T) {
	mockPassword(t, "s3cret")
	cli, out := newCLI(t, fakeAPI(t))

	err := cli.run([]string{"admin", "courses", "-email", "admin@test.cd"})
	require.NoError(t, err)

	got := out.String()
	assert.Contains(t, got, "alg-101")
	assert.Contains(t, got, "Biology")
	assert.Contains(t, got, "page 1/1 (2 total)")
}

func TestCLI_listGroups(t *testing.T) {
	mockPassword(t, "s3cret")
	cli, out := newCLI(t, fakeAPI(t))

	err := cli.run([]string{"admin", "groups", "-email", "admin@test.cd"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Cohort A")
}

func TestCLI_addCourse(t *testing.T) {
	mockPassword(t, "s3cret")
	cli, out := newCLI(t, fakeAPI(t))

	err := cli.run([]string{"admin", "addcourse", "-email", "admin@test.cd", "-title", "Chemistry", "-code", "chem-101"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "course 9 (chem-101) created")
}

func TestCLI_addCourse_invalid(t *testing.T) {
	mockPassword(t, "s3cret")
	cli, out := newCLI(t, fakeAPI(t))

	// missing title, bad code: rejected locally, nothing hits the API
	err := cli.run([]string{"admin", "addcourse", "-email", "admin@test.cd", "-code", "chem 101!"})
	require.EqualError(t, err, "submission rejected")
	got := out.String()
	assert.Contains(t, got, "title:")
	assert.Contains(t, got, "code:")
}

func TestCLI_addCourse_upstreamRejection(t *testing.T) {
	mockPassword(t, "s3cret")

	api := http.NewServeMux()
	api.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteJSON(t, w, http.StatusOK, testutil.Envelope(map[string]interface{}{
			"access_token": "cli-token",
			"expires_at":   time.Now().Add(time.Hour).UTC().Format(time.RFC3339),
		}))
	})
	api.HandleFunc("/courses", func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteJSON(t, w, http.StatusUnprocessableEntity,
			testutil.ValidationBody(map[string][]string{"code": {"has already been taken"}}))
	})
	cli, out := newCLI(t, api)

	err := cli.run([]string{"admin", "addcourse", "-email", "admin@test.cd", "-title", "Chemistry", "-code", "chem-101"})
	require.EqualError(t, err, "submission rejected")
	assert.Contains(t, out.String(), "code: has already been taken")
}

func TestCLI_addGroup(t *testing.T) {
	mockPassword(t, "s3cret")
	cli, out := newCLI(t, fakeAPI(t))

	err := cli.run([]string{"admin", "addgroup", "-email", "admin@test.cd", "-name", "Cohort B", "-course", "1", "-capacity", "25"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "group 5 (Cohort B) created")
}

func TestCLI_delCourse(t *testing.T) {
	mockPassword(t, "s3cret")
	cli, out := newCLI(t, fakeAPI(t))

	err := cli.run([]string{"admin", "delcourse", "-email", "admin@test.cd", "-id", "2"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "course 2 deleted")
}

func TestCLI_loginRequired(t *testing.T) {
	cli, _ := newCLI(t, fakeAPI(t))

	// no email
	err := cli.run([]string{"admin", "courses"})
	assert.Equal(t, errHelp, err)

	// empty password
	mockPassword(t, "")
	err = cli.run([]string{"admin", "courses", "-email", "admin@test.cd"})
	assert.Equal(t, errHelp, err)
}

func TestCLI_badCredentials(t *testing.T) {
	mockPassword(t, "wrong")
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		testutil.WriteJSON(t, w, http.StatusUnauthorized, testutil.MessageBody("invalid credentials"))
	})
	cli, _ := newCLI(t, mux)

	err := cli.run([]string{"admin", "courses", "-email", "admin@test.cd"})
	assert.Equal(t, core.ErrInvalidCredentials, err)
}
