package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/aulacheck/aulacheck/core/student"
)

type studentApi struct {
	svc *student.Service
}

func registerStudentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *student.Service) {
	api := studentApi{svc: svc}

	sg := g.Group("/students", jwt)
	dg := sg.Group("/:id", studentAccessMiddleware(svc))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	std, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting student")
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *studentApi) update(ctx echo.Context) error {
	var data student.UpdateStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	std, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, std)
}
