package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/aulacheck/aulacheck/core/grade"
)

type gradeApi struct {
	svc *grade.Service
}

func registerGradeAPI(detail *echo.Group, svc *grade.Service) {
	api := gradeApi{svc: svc}

	detail.GET("/grades", api.query)
	detail.POST("/grades", api.create)
}

func (api *gradeApi) query(ctx echo.Context) error {
	studentID := ctx.QueryParam("studentID")

	grades, avg, err := api.svc.Query(ctx.Request().Context(), ctx.Param("id"), studentID)
	if err != nil {
		return errors.Wrap(err, "querying grades")
	}

	resp := echo.Map{"grades": grades}
	if studentID != "" {
		resp["average"] = avg
	}
	return ctx.JSON(http.StatusOK, resp)
}

func (api *gradeApi) create(ctx echo.Context) error {
	var data grade.NewGrade
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGrade")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	grd, avg, err := api.svc.Create(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "creating grade")
	}
	return ctx.JSON(http.StatusCreated, echo.Map{"grade": grd, "average": avg})
}
