package echoadmin

import (
	"context"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/shulehq/shule-admin/core"
	"github.com/shulehq/shule-admin/core/course"
	"github.com/shulehq/shule-admin/forms"
	"github.com/shulehq/shule-admin/services/lms"
)

type courseApi struct {
	svc        *lms.CourseService
	validate   *validator.Validate
	translator ut.Translator
}

func registerCourseAPI(g *echo.Group, svc *lms.CourseService, validate *validator.Validate, translator ut.Translator) {
	api := courseApi{
		svc:        svc,
		validate:   validate,
		translator: translator,
	}

	cg := g.Group("/courses")
	cg.GET("", api.query)
	cg.POST("", api.create)

	dg := cg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.POST("", api.update) // multipart update with method override
	dg.PATCH("", api.update)
	dg.DELETE("", api.destroy)
}

// Handlers

func (api *courseApi) query(ctx echo.Context) error {
	res, err := api.svc.List(ctx.Request().Context(), bindPage(ctx), bindCourseFilter(ctx))
	if err != nil {
		return errors.Wrap(err, "listing courses")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"courses": res.Records, "pagination": res.Pagination})
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	id, err := bindID(ctx)
	if err != nil {
		return err
	}
	crs, err := api.svc.Get(ctx.Request().Context(), id)
	if err != nil {
		if apiErr, ok := errors.Cause(err).(*core.APIError); ok && apiErr.Code == http.StatusNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting course")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) create(ctx echo.Context) error {
	form := api.newCourseForm()
	if err := fillForm(ctx, form); err != nil {
		return err
	}
	crs, err := form.Submit(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, crs)
}

func (api *courseApi) update(ctx echo.Context) error {
	id, err := bindID(ctx)
	if err != nil {
		return err
	}
	form := api.editCourseForm(id)
	if err := fillForm(ctx, form); err != nil {
		return err
	}
	crs, err := form.Submit(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) destroy(ctx echo.Context) error {
	id, err := bindID(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Forms

func (api *courseApi) newCourseForm() *forms.Form[course.Course] {
	return forms.New(api.svc.CreatePayload, api.validate, api.translator, courseFields(false)...)
}

func (api *courseApi) editCourseForm(id int) *forms.Form[course.Course] {
	submit := func(ctx context.Context, p core.Payload) (course.Course, error) {
		return api.svc.UpdatePayload(ctx, id, p)
	}
	return forms.New(submit, api.validate, api.translator, courseFields(true)...)
}

// courseFields declares the editable course fields; on the edit form every
// field is optional so untouched ones are omitted from the payload.
func courseFields(edit bool) []*forms.Field {
	titleRules, codeRules := "required,max=120", "required,course_code"
	if edit {
		titleRules, codeRules = "omitempty,max=120", "omitempty,course_code"
	}
	flds := []*forms.Field{
		forms.NewField("title", titleRules),
		forms.NewField("code", codeRules),
		forms.NewField("description", "").Opt(),
		forms.NewField("level", "omitempty,oneof=beginner intermediate advanced").Opt(),
		forms.NewIDField("division_id", "omitempty,id_ref").Opt(),
		forms.NewFileField("image"),
	}
	if edit {
		for _, fld := range flds {
			fld.Opt()
		}
		flds = append(flds, forms.NewFlagField("is_published"))
	}
	return flds
}
