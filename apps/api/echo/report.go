package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/aulacheck/aulacheck/core/report"
)

type reportApi struct {
	gen *report.Generator
}

func registerReportAPI(detail *echo.Group, gen *report.Generator) {
	api := reportApi{gen: gen}

	detail.GET("/report", api.export)
}

func (api *reportApi) export(ctx echo.Context) error {
	opts := report.Options{
		DNI:               ctx.QueryParam("dni") == "true",
		Email:             ctx.QueryParam("email") == "true",
		Phone:             ctx.QueryParam("phone") == "true",
		Grades:            ctx.QueryParam("grades") == "true",
		AttendanceStats:   ctx.QueryParam("attendanceStats") == "true",
		AttendanceDetails: ctx.QueryParam("attendanceDetails") == "true",
	}

	rep, err := api.gen.Generate(ctx.Request().Context(), ctx.Param("id"), opts)
	if err != nil {
		return errors.Wrap(err, "generating report")
	}

	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+rep.Filename+`"`)
	return ctx.Blob(http.StatusOK, "text/csv; charset=utf-8", rep.Content)
}
