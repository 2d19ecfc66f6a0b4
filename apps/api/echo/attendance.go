package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/aulacheck/aulacheck/core"
	"github.com/aulacheck/aulacheck/core/attendance"
)

type attendanceApi struct {
	svc *attendance.Service
}

func registerAttendanceAPI(detail *echo.Group, svc *attendance.Service) {
	api := attendanceApi{svc: svc}

	detail.GET("/attendance", api.history)
	detail.POST("/attendance", api.record)
	detail.DELETE("/attendance", api.destroy)
	detail.GET("/attendance-records", api.matrix)
}

func (api *attendanceApi) history(ctx echo.Context) error {
	recs, err := api.svc.History(ctx.Request().Context(), ctx.Param("id"), ctx.QueryParam("from"), ctx.QueryParam("to"))
	if err != nil {
		return errors.Wrap(err, "querying attendance")
	}
	return ctx.JSON(http.StatusOK, recs)
}

func (api *attendanceApi) record(ctx echo.Context) error {
	var data attendance.BulkWrite
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to BulkWrite")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	avg, err := api.svc.Record(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "recording attendance")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "avg_attendance": avg})
}

func (api *attendanceApi) destroy(ctx echo.Context) error {
	studentID := ctx.QueryParam("studentID")
	date := ctx.QueryParam("date")
	if studentID == "" || date == "" {
		return core.NewValidationError(errors.New("studentID and date are required"))
	}

	avg, err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id"), studentID, date)
	if err != nil {
		if errors.Cause(err) == attendance.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting attendance record")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": true, "avg_attendance": avg})
}

func (api *attendanceApi) matrix(ctx echo.Context) error {
	mtx, err := api.svc.Matrix(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying attendance matrix")
	}
	return ctx.JSON(http.StatusOK, mtx)
}
