package forms_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shulehq/shule-admin/core"
	"github.com/shulehq/shule-admin/forms"
)

type record struct {
	ID    int
	Title string
}

// capture remembers the payloads a form hands to its bound operation and
// replies with whatever the test queued up.
type capture struct {
	payloads []core.Payload
	rec      record
	err      error
}

func (c *capture) submit(ctx context.Context, p core.Payload) (record, error) {
	c.payloads = append(c.payloads, p)
	return c.rec, c.err
}

func newForm(t *testing.T, op *capture, fields ...*forms.Field) *forms.Form[record] {
	t.Helper()
	validate, translator := core.NewValidator()
	return forms.New[record](op.submit, validate, translator, fields...)
}

func TestForm_Submit(t *testing.T) {
	op := &capture{rec: record{ID: 7, Title: "Algebra"}}
	f := newForm(t, op,
		forms.NewField("title", "required,max=120"),
		forms.NewField("description", "").Opt(),
	)
	f.Set("title", "Algebra")

	rec, err := f.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, record{ID: 7, Title: "Algebra"}, rec)
	assert.Equal(t, forms.Idle, f.State())

	require.Len(t, op.payloads, 1)
	assert.Equal(t, map[string]interface{}{"title": "Algebra"}, op.payloads[0].Fields,
		"optional empty fields stay out of the payload")

	// success wipes the slate for the next entry
	assert.Empty(t, f.Field("title").Value())
	assert.Empty(t, f.Field("title").Errors())
}

func TestForm_Submit_localValidationBlocksTransmission(t *testing.T) {
	op := &capture{}
	f := newForm(t, op, forms.NewField("title", "required,max=120"))

	_, err := f.Submit(context.Background())
	vErr, ok := errors.Cause(err).(*core.ValidationError)
	require.True(t, ok, "want *core.ValidationError, got %T", err)
	assert.Equal(t, forms.ErrInvalid, vErr.Err)

	assert.Empty(t, op.payloads, "nothing may go out when local validation fails")
	require.NotEmpty(t, f.Field("title").Errors())
	assert.Contains(t, f.Field("title").Errors()[0], "required")
	assert.Equal(t, forms.Idle, f.State())
}

func TestForm_Submit_remoteFieldErrorsLandOnFields(t *testing.T) {
	op := &capture{err: core.NewValidationError(errors.New("rejected"),
		core.FieldError{Field: "code", Errors: []string{"has already been taken"}},
	)}
	f := newForm(t, op,
		forms.NewField("title", "required"),
		forms.NewField("code", "required"),
	)
	f.Set("title", "Algebra")
	f.Set("code", "alg-101")

	_, err := f.Submit(context.Background())
	require.Error(t, err)

	assert.Equal(t, []string{"has already been taken"}, f.Field("code").Errors())
	assert.Empty(t, f.Field("title").Errors(), "untouched fields carry no messages")
	assert.Equal(t, "Algebra", f.Field("title").Value(), "a failed submission keeps the user's input")
	assert.Equal(t, "alg-101", f.Field("code").Value())
	assert.Empty(t, f.Error())
}

func TestForm_Submit_unknownFieldErrorBecomesTopLevel(t *testing.T) {
	op := &capture{err: core.NewValidationError(errors.New("rejected"),
		core.FieldError{Field: "division_id", Errors: []string{"does not exist"}},
	)}
	f := newForm(t, op, forms.NewField("title", "required"))
	f.Set("title", "Algebra")

	_, err := f.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, "division_id: does not exist", f.Error())
}

func TestForm_Submit_apiErrorBecomesTopLevel(t *testing.T) {
	op := &capture{err: core.NewAPIError(http.StatusInternalServerError, "course limit reached")}
	f := newForm(t, op, forms.NewField("title", "required"))
	f.Set("title", "Algebra")

	_, err := f.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, "course limit reached", f.Error(), "the real message survives, not a generic one")
	assert.Empty(t, f.Field("title").Errors())

	// the next submission starts clean
	op.err = nil
	_, err = f.Submit(context.Background())
	require.NoError(t, err)
	assert.Empty(t, f.Error())
}

func TestForm_Submit_reentrancyRejected(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{})
	slow := func(ctx context.Context, p core.Payload) (record, error) {
		close(entered)
		<-release
		return record{ID: 1}, nil
	}
	validate, translator := core.NewValidator()
	f := forms.New[record](slow, validate, translator, forms.NewField("title", "required"))
	f.Set("title", "Algebra")

	done := make(chan error, 1)
	go func() {
		_, err := f.Submit(context.Background())
		done <- err
	}()

	<-entered
	assert.Equal(t, forms.Submitting, f.State())
	_, err := f.Submit(context.Background())
	assert.Equal(t, forms.ErrSubmitInFlight, err)

	close(release)
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("first submission never settled")
	}
	assert.Equal(t, forms.Idle, f.State())
}

func TestForm_payloadCoercions(t *testing.T) {
	op := &capture{}
	f := newForm(t, op,
		forms.NewField("title", "required"),
		forms.NewIDField("division_id", "omitempty,id_ref").Opt(),
		forms.NewFlagField("is_published"),
	)
	f.Set("title", "Algebra")
	f.Set("division_id", "3")
	f.Set("is_published", "on")

	_, err := f.Submit(context.Background())
	require.NoError(t, err)

	require.Len(t, op.payloads, 1)
	assert.Equal(t, map[string]interface{}{
		"title":        "Algebra",
		"division_id":  3,
		"is_published": true,
	}, op.payloads[0].Fields)
}

func TestForm_fileFieldGoesAsAttachment(t *testing.T) {
	op := &capture{}
	f := newForm(t, op,
		forms.NewField("title", "required"),
		forms.NewFileField("image"),
	)
	f.Set("title", "Algebra")
	f.Field("image").SetFile(&core.Attachment{Filename: "cover.png", ContentType: "image/png"})

	_, err := f.Submit(context.Background())
	require.NoError(t, err)

	require.Len(t, op.payloads, 1)
	p := op.payloads[0]
	require.True(t, p.HasAttachments())
	assert.Equal(t, "image", p.Attachments[0].Field)
	assert.Equal(t, "cover.png", p.Attachments[0].Filename)
}
