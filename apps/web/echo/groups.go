package echoadmin

import (
	"context"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/shulehq/shule-admin/core"
	"github.com/shulehq/shule-admin/core/group"
	"github.com/shulehq/shule-admin/forms"
	"github.com/shulehq/shule-admin/services/lms"
)

type groupApi struct {
	svc        *lms.GroupService
	validate   *validator.Validate
	translator ut.Translator
}

func registerGroupAPI(g *echo.Group, svc *lms.GroupService, validate *validator.Validate, translator ut.Translator) {
	api := groupApi{
		svc:        svc,
		validate:   validate,
		translator: translator,
	}

	gg := g.Group("/groups")
	gg.GET("", api.query)
	gg.POST("", api.create)

	dg := gg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PATCH("", api.update)
	dg.DELETE("", api.destroy)
}

// Handlers

func (api *groupApi) query(ctx echo.Context) error {
	res, err := api.svc.List(ctx.Request().Context(), bindPage(ctx), bindGroupFilter(ctx))
	if err != nil {
		return errors.Wrap(err, "listing groups")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"groups": res.Records, "pagination": res.Pagination})
}

func (api *groupApi) retrieve(ctx echo.Context) error {
	id, err := bindID(ctx)
	if err != nil {
		return err
	}
	grp, err := api.svc.Get(ctx.Request().Context(), id)
	if err != nil {
		if apiErr, ok := errors.Cause(err).(*core.APIError); ok && apiErr.Code == http.StatusNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting group")
	}
	return ctx.JSON(http.StatusOK, grp)
}

func (api *groupApi) create(ctx echo.Context) error {
	form := api.newGroupForm()
	if err := fillForm(ctx, form); err != nil {
		return err
	}
	grp, err := form.Submit(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, grp)
}

func (api *groupApi) update(ctx echo.Context) error {
	id, err := bindID(ctx)
	if err != nil {
		return err
	}
	form := api.editGroupForm(id)
	if err := fillForm(ctx, form); err != nil {
		return err
	}
	grp, err := form.Submit(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, grp)
}

func (api *groupApi) destroy(ctx echo.Context) error {
	id, err := bindID(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), id); err != nil {
		return errors.Wrap(err, "deleting group")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Forms

func (api *groupApi) newGroupForm() *forms.Form[group.Group] {
	return forms.New(api.svc.CreatePayload, api.validate, api.translator, groupFields(false)...)
}

func (api *groupApi) editGroupForm(id int) *forms.Form[group.Group] {
	submit := func(ctx context.Context, p core.Payload) (group.Group, error) {
		return api.svc.UpdatePayload(ctx, id, p)
	}
	return forms.New(submit, api.validate, api.translator, groupFields(true)...)
}

func groupFields(edit bool) []*forms.Field {
	nameRules, courseRules := "required,max=80", "required,id_ref"
	if edit {
		nameRules, courseRules = "omitempty,max=80", "omitempty,id_ref"
	}
	flds := []*forms.Field{
		forms.NewField("name", nameRules),
		forms.NewIDField("course_id", courseRules),
		forms.NewIDField("capacity", "omitempty,numeric").Opt(),
	}
	if edit {
		for _, fld := range flds {
			fld.Opt()
		}
		flds = append(flds, forms.NewFlagField("is_active"))
	}
	return flds
}
