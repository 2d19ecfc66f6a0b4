package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/aulacheck/aulacheck/core/course"
)

type courseApi struct {
	svc *course.Service
}

func registerCourseAPI(g, detail *echo.Group, svc *course.Service) {
	api := courseApi{svc: svc}

	g.GET("", api.query)
	g.POST("", api.create)

	detail.GET("", api.retrieve)
	detail.PUT("", api.update)
	detail.DELETE("", api.destroy)
	detail.POST("/join-code", api.generateJoinCode)
	detail.DELETE("/join-code", api.disableJoinRequests)
}

func (api *courseApi) query(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	courses, err := api.svc.QueryOwned(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) create(ctx echo.Context) error {
	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	crs, err := api.svc.Create(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "creating course")
	}
	return ctx.JSON(http.StatusCreated, crs)
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	crs, err := api.svc.Get(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "getting course")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) update(ctx echo.Context) error {
	var data course.UpdateCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCourse")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	crs, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating course")
	}
	return ctx.JSON(http.StatusOK, crs)
}

func (api *courseApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) generateJoinCode(ctx echo.Context) error {
	code, err := api.svc.GenerateJoinCode(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "generating join code")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"join_code": code})
}

func (api *courseApi) disableJoinRequests(ctx echo.Context) error {
	if err := api.svc.DisableJoinRequests(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "disabling join requests")
	}
	return ctx.NoContent(http.StatusNoContent)
}
