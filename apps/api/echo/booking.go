package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/am-3/campus/core/booking"
	"github.com/am-3/campus/core/user"
)

type bookingApi struct {
	svc      *booking.Service
	usrSvc   user.ServiceInterface
	validate *validator.Validate
}

func registerBookingAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *booking.Service, usrSvc user.ServiceInterface, validate *validator.Validate) {
	api := bookingApi{svc: svc, usrSvc: usrSvc, validate: validate}

	rg := g.Group("/resources/:id", jwt)
	rg.GET("/availability", api.availability)
	rg.POST("/bookings", api.create)

	bg := g.Group("/bookings/:id", jwt, roleMiddleware(user.RoleFaculty, user.RoleAdmin))
	bg.POST("/approve", api.approve)
	bg.POST("/reject", api.reject)
}

// Handlers

func (api *bookingApi) availability(ctx echo.Context) error {
	report, err := api.svc.Availability(ctx.Request().Context(), ctx.Param("id"), ctx.QueryParam("date"))
	if err != nil {
		return errors.Wrap(err, "computing resource availability")
	}
	return ctx.JSON(http.StatusOK, report)
}

func (api *bookingApi) create(ctx echo.Context) error {
	var nb booking.NewBooking
	if err := ctx.Bind(&nb); err != nil {
		return errors.Wrap(err, "binding to NewBooking")
	}
	if err := nb.Validate(api.validate); err != nil {
		return err
	}

	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	bkg, err := api.svc.Create(ctx.Request().Context(), usr, ctx.Param("id"), nb)
	if err != nil {
		return errors.Wrap(err, "creating booking")
	}
	return ctx.JSON(http.StatusCreated, bkg)
}

func (api *bookingApi) approve(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	bkg, err := api.svc.Approve(ctx.Request().Context(), usr, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "approving booking")
	}
	return ctx.JSON(http.StatusOK, bkg)
}

func (api *bookingApi) reject(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	bkg, err := api.svc.Reject(ctx.Request().Context(), usr, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "rejecting booking")
	}
	return ctx.JSON(http.StatusOK, bkg)
}
