// Package forms binds editable field sets to the LMS resource operations.
// A form collects string values (and at most a handful of attachments) from
// whatever surface is driving it, validates locally, submits, and folds the
// API's per-field messages back onto the fields for display.
package forms

import (
	"context"
	"sync"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/shulehq/shule-admin/core"
)

// State of a form between submissions.
type State int

const (
	Idle State = iota
	Submitting
)

var (
	// ErrSubmitInFlight rejects a re-entrant submission; the previous one
	// must settle first. Resubmission is always a fresh transition from Idle.
	ErrSubmitInFlight = errors.New("a submission is already in progress")

	// ErrInvalid is the Err carried by the local validation pass.
	ErrInvalid = errors.New("form is invalid")
)

// SubmitFunc is a resource create/update operation partially applied to its
// target, eg. `func(ctx, p) { return courses.CreatePayload(ctx, p) }`.
type SubmitFunc[T any] func(ctx context.Context, p core.Payload) (T, error)

// Form drives one create-or-update screen.
type Form[T any] struct {
	mu     sync.Mutex
	state  State
	fields []*Field
	byName map[string]*Field
	topErr string

	submit     SubmitFunc[T]
	validate   *validator.Validate
	translator ut.Translator
}

func New[T any](submit SubmitFunc[T], validate *validator.Validate, translator ut.Translator, fields ...*Field) *Form[T] {
	f := &Form[T]{
		submit:     submit,
		validate:   validate,
		translator: translator,
		fields:     fields,
		byName:     make(map[string]*Field, len(fields)),
	}
	for _, fld := range fields {
		f.byName[fld.Name] = fld
	}
	return f
}

func (f *Form[T]) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Field returns the named field, or nil.
func (f *Form[T]) Field(name string) *Field { return f.byName[name] }

// Fields returns the form's fields in declaration order.
func (f *Form[T]) Fields() []*Field { return f.fields }

// Error returns the top-level (non-field) error message shown after a failed
// submission, if any.
func (f *Form[T]) Error() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.topErr
}

// Set assigns a field value; unknown names are ignored.
func (f *Form[T]) Set(name, value string) {
	if fld := f.byName[name]; fld != nil {
		fld.Set(value)
	}
}

// Submit runs one submission cycle: local validation, then the bound
// operation. Whatever the outcome, the form is back in Idle when it returns:
//   - success: fields are reset to their defaults, the record is returned;
//   - validation failure (local or remote): messages sit on the fields,
//     untouched fields stay as the user left them;
//   - any other failure: one top-level message, fields untouched.
//
// No retry happens here; a new Submit is a new user decision.
func (f *Form[T]) Submit(ctx context.Context) (T, error) {
	var zero T

	f.mu.Lock()
	if f.state == Submitting {
		f.mu.Unlock()
		return zero, ErrSubmitInFlight
	}
	f.state = Submitting
	f.topErr = ""
	for _, fld := range f.fields {
		fld.clearErrors()
	}
	f.mu.Unlock()

	settle := func() {
		f.mu.Lock()
		f.state = Idle
		f.mu.Unlock()
	}

	if err := f.validateLocal(); err != nil {
		settle()
		return zero, err
	}

	rec, err := f.submit(ctx, f.payload())
	if err != nil {
		f.applyError(err)
		settle()
		return zero, err
	}

	f.mu.Lock()
	for _, fld := range f.fields {
		fld.reset()
	}
	f.state = Idle
	f.mu.Unlock()
	return rec, nil
}

// validateLocal runs each field's rules through the shared validator before
// anything goes over the wire.
func (f *Form[T]) validateLocal() error {
	var fieldErrs []core.FieldError
	for _, fld := range f.fields {
		if fld.Rules == "" {
			continue
		}
		if err := f.validate.Var(fld.Value(), fld.Rules); err != nil {
			var msgs []string
			var vErrs validator.ValidationErrors
			if errors.As(err, &vErrs) {
				for _, vErr := range vErrs {
					msgs = append(msgs, vErr.Translate(f.translator))
				}
			} else {
				msgs = append(msgs, err.Error())
			}
			fld.setErrors(msgs)
			fieldErrs = append(fieldErrs, core.FieldError{Field: fld.Name, Errors: msgs})
		}
	}
	if len(fieldErrs) > 0 {
		return core.NewValidationError(ErrInvalid, fieldErrs...)
	}
	return nil
}

// payload serializes the current field values, coercing numeric-ID fields and
// skipping optional fields the user left empty.
func (f *Form[T]) payload() core.Payload {
	p := core.NewPayload()
	for _, fld := range f.fields {
		fld.addTo(&p)
	}
	return p
}

// applyError folds a failed submission into display state: field messages for
// a validation error, one top-level message for everything else. Messages are
// kept verbatim; nothing is collapsed into a generic string.
func (f *Form[T]) applyError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch cause := errors.Cause(err).(type) {
	case *core.ValidationError:
		for _, fErr := range cause.Fields {
			if fld := f.byName[fErr.Field]; fld != nil {
				fld.setErrors(fErr.Errors)
			} else if f.topErr == "" && len(fErr.Errors) > 0 {
				// error for a field this form does not show
				f.topErr = fErr.Field + ": " + fErr.Errors[0]
			}
		}
	case *core.APIError:
		f.topErr = cause.Message
	default:
		f.topErr = err.Error()
	}
}
