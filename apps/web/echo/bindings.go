package echoadmin

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/shulehq/shule-admin/core"
	"github.com/shulehq/shule-admin/core/course"
	"github.com/shulehq/shule-admin/core/group"
	"github.com/shulehq/shule-admin/forms"
)

var pageParam = "page"

// bindPage reads the `page` query parameter; anything unusable means page 1.
func bindPage(ctx echo.Context) int {
	if raw := ctx.QueryParam(pageParam); raw != "" {
		if page, err := strconv.Atoi(raw); err == nil && page > 0 {
			return page
		}
	}
	return 1
}

func bindBoolParam(ctx echo.Context, name string) null.Bool {
	if raw := ctx.QueryParam(name); raw != "" {
		if b, err := strconv.ParseBool(raw); err == nil {
			return null.BoolFrom(b)
		}
	}
	return null.Bool{}
}

func bindCourseFilter(ctx echo.Context) course.QueryFilter {
	return course.QueryFilter{
		Search:      ctx.QueryParam("search"),
		Level:       ctx.QueryParam("level"),
		DivisionID:  ctx.QueryParam("division_id"),
		IsPublished: bindBoolParam(ctx, "is_published"),
	}
}

func bindGroupFilter(ctx echo.Context) group.QueryFilter {
	return group.QueryFilter{
		Search:   ctx.QueryParam("search"),
		CourseID: ctx.QueryParam("course_id"),
		IsActive: bindBoolParam(ctx, "is_active"),
	}
}

// bindID reads the `:id` path parameter as a record identifier.
func bindID(ctx echo.Context) (int, error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil || id < 1 {
		return 0, errHttpNotFound
	}
	return id, nil
}

// fillForm populates a form from the request: JSON bodies set fields by key;
// form-encoded and multipart bodies set fields by name and read file uploads
// into attachments.
func fillForm[T any](ctx echo.Context, f *forms.Form[T]) error {
	contentType := ctx.Request().Header.Get(echo.HeaderContentType)

	if strings.HasPrefix(contentType, echo.MIMEApplicationJSON) {
		var data map[string]interface{}
		if err := json.NewDecoder(ctx.Request().Body).Decode(&data); err != nil && err != io.EOF {
			return errors.Wrap(err, "decoding form body")
		}
		for name, val := range data {
			if val == nil {
				continue
			}
			switch v := val.(type) {
			case string:
				f.Set(name, v)
			case float64:
				f.Set(name, strconv.FormatFloat(v, 'f', -1, 64))
			case bool:
				f.Set(name, strconv.FormatBool(v))
			default:
				f.Set(name, fmt.Sprint(v))
			}
		}
		return nil
	}

	for _, fld := range f.Fields() {
		if fld.Kind == forms.File {
			fh, err := ctx.FormFile(fld.Name)
			if err != nil {
				continue // no upload for this field
			}
			src, err := fh.Open()
			if err != nil {
				return errors.Wrapf(err, "opening upload %q", fld.Name)
			}
			var buf bytes.Buffer
			if _, err := io.Copy(&buf, src); err != nil {
				src.Close()
				return errors.Wrapf(err, "reading upload %q", fld.Name)
			}
			src.Close()
			fld.SetFile(&core.Attachment{
				Filename:    fh.Filename,
				ContentType: fh.Header.Get(echo.HeaderContentType),
				Content:     &buf,
			})
			continue
		}
		if val := ctx.FormValue(fld.Name); val != "" {
			fld.Set(val)
		}
	}
	return nil
}
