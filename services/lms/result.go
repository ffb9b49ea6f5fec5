package lms

import (
	"encoding/json"
	"io"
	"net/http"
	"sort"

	"github.com/pkg/errors"

	"github.com/shulehq/shule-admin/core"
)

// envelope is the API's uniform response wrapper:
// {success, message, code, data} on the happy path, {errors} on 422.
type envelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Code    int                 `json:"code"`
	Data    json.RawMessage     `json:"data"`
	Errors  map[string][]string `json:"errors"`

	status int // transport status, not part of the body
}

func decodeEnvelope(resp *http.Response) (*envelope, error) {
	env := &envelope{status: resp.StatusCode}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, core.NewAPIError(0, err.Error())
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, env); err != nil {
			if succeeded(resp.StatusCode) {
				// a mangled body never yields partially-typed success data
				return nil, core.NewAPIError(resp.StatusCode, "unexpected response from server")
			}
			// non-success with an unreadable body: the status is the story
			return env, nil
		}
	}
	return env, nil
}

// normalize maps a decoded response onto the error taxonomy: nil for success,
// *core.ValidationError for a 422 with field errors, *core.APIError for the
// rest. Every operation ends in exactly one of these three shapes.
func normalize(env *envelope) error {
	switch {
	case succeeded(env.status):
		return nil
	case env.status == http.StatusUnprocessableEntity && len(env.Errors) > 0:
		fields := make([]core.FieldError, 0, len(env.Errors))
		for _, name := range sortedFieldNames(env.Errors) {
			fields = append(fields, core.FieldError{Field: name, Errors: env.Errors[name]})
		}
		msg := env.Message
		if msg == "" {
			msg = "the given data was invalid"
		}
		return core.NewValidationError(errors.New(msg), fields...)
	default:
		return core.NewAPIError(env.status, env.Message)
	}
}

func succeeded(status int) bool {
	return status >= http.StatusOK && status < http.StatusMultipleChoices
}

func sortedFieldNames(errs map[string][]string) []string {
	names := make([]string, 0, len(errs))
	for name := range errs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// marshalFields renders the scalar part of a payload as a JSON object.
func marshalFields(p core.Payload) ([]byte, error) {
	if p.Fields == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(p.Fields)
}
