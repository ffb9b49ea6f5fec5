package course

import (
	"net/url"
	"strconv"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/shulehq/shule-admin/core"
)

// Course levels
const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

// Course is a record owned by the remote API; IDs are never assigned here.
type Course struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Code        string    `json:"code"`
	Description string    `json:"description"`
	Level       string    `json:"level"`
	DivisionID  int       `json:"division_id"`
	ImageURL    string    `json:"image_url"`
	IsPublished bool      `json:"is_published"`
	CreatedAt   time.Time `json:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at"` // UTC
}

// NewCourse is the create submission. Identifier references arrive as the
// form layer's strings and are coerced before transmission.
type NewCourse struct {
	Title       string      `json:"title" validate:"required,max=120"`
	Code        string      `json:"code" validate:"required,course_code"`
	Description null.String `json:"description" validate:"-"`
	Level       null.String `json:"level" validate:"omitempty,oneof=beginner intermediate advanced"`
	DivisionID  string      `json:"division_id" validate:"omitempty,id_ref"`
	Image       *core.Attachment `json:"-"`
}

func (nc NewCourse) Payload() core.Payload {
	p := core.NewPayload()
	p.Set("title", nc.Title)
	p.Set("code", nc.Code)
	if nc.Description.Valid {
		p.Set("description", nc.Description.String)
	}
	if nc.Level.Valid {
		p.Set("level", nc.Level.String)
	}
	if id, err := strconv.Atoi(nc.DivisionID); err == nil {
		p.Set("division_id", id)
	}
	if nc.Image != nil {
		att := *nc.Image
		att.Field = "image"
		p.Attach(att)
	}
	return p
}

// UpdateCourse carries only the fields being changed; absent fields are
// omitted from the payload entirely so the API leaves them untouched.
type UpdateCourse struct {
	Title       null.String `json:"title" validate:"omitempty,max=120"`
	Code        null.String `json:"code" validate:"omitempty,course_code"`
	Description null.String `json:"description" validate:"-"`
	Level       null.String `json:"level" validate:"omitempty,oneof=beginner intermediate advanced"`
	DivisionID  string      `json:"division_id" validate:"omitempty,id_ref"`
	IsPublished null.Bool   `json:"is_published" validate:"-"`
	Image       *core.Attachment `json:"-"`
}

func (uc UpdateCourse) Payload() core.Payload {
	p := core.NewPayload()
	if uc.Title.Valid {
		p.Set("title", uc.Title.String)
	}
	if uc.Code.Valid {
		p.Set("code", uc.Code.String)
	}
	if uc.Description.Valid {
		p.Set("description", uc.Description.String)
	}
	if uc.Level.Valid {
		p.Set("level", uc.Level.String)
	}
	if id, err := strconv.Atoi(uc.DivisionID); err == nil {
		p.Set("division_id", id)
	}
	if uc.IsPublished.Valid {
		p.Set("is_published", uc.IsPublished.Bool)
	}
	if uc.Image != nil {
		att := *uc.Image
		att.Field = "image"
		p.Attach(att)
	}
	return p
}

// QueryFilter narrows a course listing. Empty values are never sent: "no
// filter" and "filter by empty string" are different things and the API only
// ever sees the former.
type QueryFilter struct {
	Search      string
	Level       string
	DivisionID  string
	IsPublished null.Bool
}

func (f QueryFilter) Values() url.Values {
	v := make(url.Values)
	if s := core.CleanString(f.Search); s != "" {
		v.Set("search", s)
	}
	if f.Level != "" {
		v.Set("level", f.Level)
	}
	if f.DivisionID != "" {
		if id, err := strconv.Atoi(f.DivisionID); err == nil {
			v.Set("division_id", strconv.Itoa(id))
		}
	}
	if f.IsPublished.Valid {
		v.Set("is_published", strconv.FormatBool(f.IsPublished.Bool))
	}
	return v
}
