package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type schoolApi struct {
	svc SchoolService
}

func registerSchoolAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc SchoolService) {
	api := schoolApi{svc: svc}

	sg := g.Group("/schools", jwt, staffMiddleware)
	sg.GET("/me", api.me)
}

func (api *schoolApi) me(ctx echo.Context) error {
	p, err := getContextPrincipal(ctx)
	if err != nil {
		return err
	}
	sch, err := api.svc.Get(ctx.Request().Context(), p.SchoolID)
	if err != nil {
		return errors.Wrap(err, "getting school")
	}
	return ctx.JSON(http.StatusOK, sch)
}
