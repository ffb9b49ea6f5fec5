package core

import (
	"bytes"
	"fmt"
	"sort"
)

type (
	// Attachment is a binary upload destined for one multipart form field.
	Attachment struct {
		Field       string
		Filename    string
		ContentType string
		Content     *bytes.Buffer
	}

	// Payload is the wire-agnostic shape of a create/update submission.
	// With no attachments it is sent as a JSON object; with attachments it is
	// encoded as a multipart form, every field value rendered as a string.
	Payload struct {
		Fields      map[string]interface{}
		Attachments []Attachment
	}
)

func NewPayload() Payload {
	return Payload{Fields: make(map[string]interface{})}
}

func (p *Payload) Set(field string, value interface{}) {
	if p.Fields == nil {
		p.Fields = make(map[string]interface{})
	}
	p.Fields[field] = value
}

func (p *Payload) Attach(att Attachment) {
	p.Attachments = append(p.Attachments, att)
}

func (p Payload) HasAttachments() bool { return len(p.Attachments) > 0 }

// FieldNames returns the payload's field names in a stable order.
func (p Payload) FieldNames() []string {
	names := make([]string, 0, len(p.Fields))
	for name := range p.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FormValue renders a field for multipart transmission.
func (p Payload) FormValue(field string) string {
	return fmt.Sprint(p.Fields[field])
}
