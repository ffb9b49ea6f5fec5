package group

import (
	"net/url"
	"strconv"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/shulehq/shule-admin/core"
)

// Group is a cohort of students attached to a course.
type Group struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	CourseID  int       `json:"course_id"`
	Capacity  int       `json:"capacity"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

type NewGroup struct {
	Name     string `json:"name" validate:"required,max=80"`
	CourseID string `json:"course_id" validate:"required,id_ref"`
	Capacity int    `json:"capacity" validate:"omitempty,gte=1,lte=500"`
}

func (ng NewGroup) Payload() core.Payload {
	p := core.NewPayload()
	p.Set("name", ng.Name)
	if id, err := strconv.Atoi(ng.CourseID); err == nil {
		p.Set("course_id", id)
	}
	if ng.Capacity > 0 {
		p.Set("capacity", ng.Capacity)
	}
	return p
}

type UpdateGroup struct {
	Name     null.String `json:"name" validate:"omitempty,max=80"`
	CourseID string      `json:"course_id" validate:"omitempty,id_ref"`
	Capacity null.Int    `json:"capacity" validate:"-"`
	IsActive null.Bool   `json:"is_active" validate:"-"`
}

func (ug UpdateGroup) Payload() core.Payload {
	p := core.NewPayload()
	if ug.Name.Valid {
		p.Set("name", ug.Name.String)
	}
	if id, err := strconv.Atoi(ug.CourseID); err == nil {
		p.Set("course_id", id)
	}
	if ug.Capacity.Valid {
		p.Set("capacity", ug.Capacity.Int)
	}
	if ug.IsActive.Valid {
		p.Set("is_active", ug.IsActive.Bool)
	}
	return p
}

// QueryFilter narrows a group listing; empty values are omitted.
type QueryFilter struct {
	Search   string
	CourseID string
	IsActive null.Bool
}

func (f QueryFilter) Values() url.Values {
	v := make(url.Values)
	if s := core.CleanString(f.Search); s != "" {
		v.Set("search", s)
	}
	if f.CourseID != "" {
		if id, err := strconv.Atoi(f.CourseID); err == nil {
			v.Set("course_id", strconv.Itoa(id))
		}
	}
	if f.IsActive.Valid {
		v.Set("is_active", strconv.FormatBool(f.IsActive.Bool))
	}
	return v
}
