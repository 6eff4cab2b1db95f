package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/GausMx/Scoolynk-app-sub000/core/template"
)

type templateApi struct {
	svc template.ServiceInterface
}

func registerTemplateAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc template.ServiceInterface) {
	api := templateApi{svc: svc}

	tg := g.Group("/templates", jwt, staffMiddleware)
	tg.GET("", api.query)
	tg.POST("", api.create)
	tg.GET("/active", api.active)

	dg := tg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
	dg.POST("/duplicate", api.duplicate)
}

func (api *templateApi) create(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	var data template.NewTemplate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTemplate")
	}

	tmpl, err := api.svc.Create(ctx.Request().Context(), p, data)
	if err != nil {
		return errors.Wrap(err, "creating template")
	}
	return ctx.JSON(http.StatusCreated, tmpl)
}

func (api *templateApi) query(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	var filter template.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return ctx.JSON(http.StatusOK, []template.Template{})
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	tmpls, err := api.svc.Query(ctx.Request().Context(), p, filter, ordering.cleaned(templateOrderings)...)
	if err != nil {
		return errors.Wrap(err, "querying templates")
	}
	if tmpls == nil {
		tmpls = []template.Template{}
	}
	return ctx.JSON(http.StatusOK, tmpls)
}

func (api *templateApi) active(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	tmpl, err := api.svc.GetActive(ctx.Request().Context(), p, ctx.QueryParam("term"), ctx.QueryParam("session"))
	if err != nil {
		return errors.Wrap(err, "getting active template")
	}
	return ctx.JSON(http.StatusOK, tmpl)
}

func (api *templateApi) retrieve(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	tmpl, err := api.svc.Get(ctx.Request().Context(), p, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting template")
	}
	return ctx.JSON(http.StatusOK, tmpl)
}

func (api *templateApi) update(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	var data template.UpdateTemplate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTemplate")
	}

	tmpl, err := api.svc.Update(ctx.Request().Context(), p, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating template")
	}
	return ctx.JSON(http.StatusOK, tmpl)
}

func (api *templateApi) duplicate(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	var data template.DuplicateTemplate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to DuplicateTemplate")
	}

	tmpl, err := api.svc.Duplicate(ctx.Request().Context(), p, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "duplicating template")
	}
	return ctx.JSON(http.StatusCreated, tmpl)
}

// destroy deactivates an active template and deletes an inactive one.
func (api *templateApi) destroy(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	res, err := api.svc.Deactivate(ctx.Request().Context(), p, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "deactivating template")
	}
	if res.Deleted {
		return ctx.NoContent(http.StatusNoContent)
	}
	return ctx.JSON(http.StatusOK, res)
}
