package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/GausMx/Scoolynk-app-sub000/core"
	"github.com/GausMx/Scoolynk-app-sub000/core/result"
)

type resultApi struct {
	svc result.ServiceInterface
}

func registerResultAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc result.ServiceInterface) {
	api := resultApi{svc: svc}

	rg := g.Group("/results", jwt, staffMiddleware)
	rg.GET("", api.query)
	rg.POST("", api.create)
	rg.POST("/send", api.sendBatch, adminMiddleware())
	rg.POST("/rank", api.rank, adminMiddleware())

	dg := rg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
	dg.POST("/submit", api.transition(svc.Submit))
	dg.POST("/resubmit", api.transition(svc.Resubmit))
	dg.POST("/revise", api.transition(svc.Revise))
	dg.POST("/review", api.review, adminMiddleware())
	dg.POST("/send", api.transition(svc.Send), adminMiddleware())
}

func (api *resultApi) create(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	var data result.NewResult
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewResult")
	}

	saved, err := api.svc.Create(ctx.Request().Context(), p, data)
	if err != nil {
		return errors.Wrap(err, "creating result")
	}
	return ctx.JSON(http.StatusCreated, saved)
}

func (api *resultApi) query(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	var filter result.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return ctx.JSON(http.StatusOK, []result.Result{})
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	results, err := api.svc.Query(ctx.Request().Context(), p, filter, ordering.cleaned(resultOrderings)...)
	if err != nil {
		return errors.Wrap(err, "querying results")
	}
	if results == nil {
		results = []result.Result{}
	}
	return ctx.JSON(http.StatusOK, results)
}

func (api *resultApi) retrieve(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	r, err := api.svc.Get(ctx.Request().Context(), p, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting result")
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *resultApi) update(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	var data result.UpdateResult
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateResult")
	}

	saved, err := api.svc.Update(ctx.Request().Context(), p, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating result")
	}
	return ctx.JSON(http.StatusOK, saved)
}

func (api *resultApi) destroy(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(ctx.Request().Context(), p, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting result")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// transition serves the status changes that take no payload.
func (api *resultApi) transition(
	fn func(ctx context.Context, p core.Principal, id string) (result.Result, error),
) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		p, err := getContextPrincipal(ctx)
		if err != nil {
			return err
		}
		r, err := fn(ctx.Request().Context(), p, ctx.Param("id"))
		if err != nil {
			return errors.Wrap(err, "changing result status")
		}
		return ctx.JSON(http.StatusOK, r)
	}
}

func (api *resultApi) review(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	var data result.Review
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Review")
	}

	saved, err := api.svc.ReviewOne(ctx.Request().Context(), p, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "reviewing result")
	}
	return ctx.JSON(http.StatusOK, saved)
}

func (api *resultApi) sendBatch(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	var data SendBatchRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SendBatchRequest")
	}

	report, err := api.svc.SendBatch(ctx.Request().Context(), p, data.IDs)
	if err != nil {
		return errors.Wrap(err, "sending results")
	}
	return ctx.JSON(http.StatusOK, report)
}

func (api *resultApi) rank(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	var data result.RankRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RankRequest")
	}

	results, err := api.svc.RankClass(ctx.Request().Context(), p, data)
	if err != nil {
		return errors.Wrap(err, "ranking results")
	}
	if results == nil {
		results = []result.Result{}
	}
	return ctx.JSON(http.StatusOK, results)
}

type SendBatchRequest struct {
	IDs []string `json:"ids"`
}
