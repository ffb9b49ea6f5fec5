package forms

import (
	"strconv"

	"github.com/shulehq/shule-admin/core"
)

// Kind picks how a field's string value is serialized into the payload.
type Kind int

const (
	// Text sends the value as-is.
	Text Kind = iota
	// ID coerces the form-layer string into an integer before transmission.
	ID
	// Flag sends a boolean ("true"/"1"/"on" are true).
	Flag
	// File carries an attachment instead of a string value.
	File
)

// Field is one editable slot on a form.
type Field struct {
	Name    string
	Kind    Kind
	Rules   string // validator tags, eg. "required,max=120"
	Default string

	// Optional fields with an empty value are omitted from the payload
	// entirely; required ones always go out.
	Optional bool

	value  string
	file   *core.Attachment
	errors []string
}

func NewField(name, rules string) *Field {
	return &Field{Name: name, Rules: rules}
}

func NewIDField(name, rules string) *Field {
	return &Field{Name: name, Kind: ID, Rules: rules}
}

func NewFlagField(name string) *Field {
	return &Field{Name: name, Kind: Flag, Optional: true}
}

func NewFileField(name string) *Field {
	return &Field{Name: name, Kind: File, Optional: true}
}

// Opt marks the field optional and returns it, for chaining at declaration.
func (f *Field) Opt() *Field {
	f.Optional = true
	return f
}

func (f *Field) Set(value string)             { f.value = value }
func (f *Field) SetFile(att *core.Attachment) { f.file = att }
func (f *Field) Value() string                { return f.value }
func (f *Field) Errors() []string             { return f.errors }

func (f *Field) setErrors(msgs []string) { f.errors = msgs }
func (f *Field) clearErrors()            { f.errors = nil }

func (f *Field) reset() {
	f.value = f.Default
	f.file = nil
	f.errors = nil
}

// addTo writes the field into a payload, applying its kind's coercion.
func (f *Field) addTo(p *core.Payload) {
	switch f.Kind {
	case File:
		if f.file != nil {
			att := *f.file
			att.Field = f.Name
			p.Attach(att)
		}
	case ID:
		if f.Optional && f.value == "" {
			return
		}
		if id, err := strconv.Atoi(core.CleanString(f.value)); err == nil {
			p.Set(f.Name, id)
		} else {
			p.Set(f.Name, f.value) // let the API report it
		}
	case Flag:
		if f.Optional && f.value == "" {
			return
		}
		switch core.CleanString(f.value, true) {
		case "true", "1", "on", "yes":
			p.Set(f.Name, true)
		default:
			p.Set(f.Name, false)
		}
	default:
		if f.Optional && f.value == "" {
			return
		}
		p.Set(f.Name, f.value)
	}
}
