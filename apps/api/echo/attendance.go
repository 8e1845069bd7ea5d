package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/am-3/campus/core/attendance"
	"github.com/am-3/campus/core/user"
)

type (
	faceCheckInRequest struct {
		ImageURL string `json:"image_url" validate:"required,url"`
	}

	manualAttendanceRequest struct {
		StudentID string `json:"student_id" validate:"required"`
		CourseID  string `json:"course_id" validate:"required"`
		Date      string `json:"date" validate:"required"`
		Status    string `json:"status" validate:"required"`
	}

	faceEnrollRequest struct {
		ImageURL string `json:"image_url" validate:"required,url"`
	}
)

type attendanceApi struct {
	svc      *attendance.Service
	usrSvc   user.ServiceInterface
	validate *validator.Validate
}

func registerAttendanceAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *attendance.Service, usrSvc user.ServiceInterface, validate *validator.Validate) {
	api := attendanceApi{svc: svc, usrSvc: usrSvc, validate: validate}

	g.POST("/attendance-sessions/:id/face-check-in", api.faceCheckIn, jwt)
	g.POST("/attendance/manual", api.markManual, jwt, roleMiddleware(user.RoleFaculty, user.RoleAdmin))
	g.POST("/face/enroll", api.enrollFace, jwt)
}

// Handlers

func (api *attendanceApi) faceCheckIn(ctx echo.Context) error {
	var req faceCheckInRequest
	if err := ctx.Bind(&req); err != nil {
		return errors.Wrap(err, "binding to faceCheckInRequest")
	}
	if err := api.validate.Struct(&req); err != nil {
		return err
	}

	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	rec, err := api.svc.CheckInWithFace(ctx.Request().Context(), usr, ctx.Param("id"), req.ImageURL)
	if err != nil {
		return errors.Wrap(err, "checking in with face")
	}
	return ctx.JSON(http.StatusCreated, rec)
}

func (api *attendanceApi) markManual(ctx echo.Context) error {
	var req manualAttendanceRequest
	if err := ctx.Bind(&req); err != nil {
		return errors.Wrap(err, "binding to manualAttendanceRequest")
	}
	if err := api.validate.Struct(&req); err != nil {
		return err
	}

	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	rec, err := api.svc.MarkManual(ctx.Request().Context(), usr, req.StudentID, req.CourseID, req.Date, req.Status)
	if err != nil {
		return errors.Wrap(err, "marking attendance manually")
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *attendanceApi) enrollFace(ctx echo.Context) error {
	var req faceEnrollRequest
	if err := ctx.Bind(&req); err != nil {
		return errors.Wrap(err, "binding to faceEnrollRequest")
	}
	if err := api.validate.Struct(&req); err != nil {
		return err
	}

	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	profile, err := api.svc.EnrollFace(ctx.Request().Context(), usr, req.ImageURL)
	if err != nil {
		return errors.Wrap(err, "enrolling face profile")
	}
	return ctx.JSON(http.StatusCreated, profile)
}
