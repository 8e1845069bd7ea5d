package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/am-3/campus/core/event"
	"github.com/am-3/campus/core/user"
)

type eventApi struct {
	svc    event.ServiceInterface
	usrSvc user.ServiceInterface
}

func registerEventAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc event.ServiceInterface, usrSvc user.ServiceInterface) {
	api := eventApi{svc: svc, usrSvc: usrSvc}

	eg := g.Group("/events/:id", jwt)
	eg.POST("/register", api.register)
	eg.DELETE("/register", api.unregister)
}

// Handlers

func (api *eventApi) register(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	reg, err := api.svc.Register(ctx.Request().Context(), usr, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "registering for event")
	}
	return ctx.JSON(http.StatusCreated, reg)
}

func (api *eventApi) unregister(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	if err := api.svc.Unregister(ctx.Request().Context(), usr, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "cancelling event registration")
	}
	return ctx.NoContent(http.StatusNoContent)
}
