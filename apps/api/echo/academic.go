package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/am-3/campus/core/academic"
	"github.com/am-3/campus/core/user"
)

type academicApi struct {
	svc    academic.ServiceInterface
	usrSvc user.ServiceInterface
}

func registerAcademicAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc academic.ServiceInterface, usrSvc user.ServiceInterface) {
	api := academicApi{svc: svc, usrSvc: usrSvc}

	sg := g.Group("/student", jwt)
	sg.GET("/performance", api.performance)
}

// Handlers

func (api *academicApi) performance(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	report, err := api.svc.StudentPerformance(ctx.Request().Context(), usr)
	if err != nil {
		return errors.Wrap(err, "building performance report")
	}
	return ctx.JSON(http.StatusOK, report)
}
