package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/aulacheck/aulacheck/core/course"
	"github.com/aulacheck/aulacheck/core/enroll"
)

// joinApi serves the public join-code redemption pair. No auth: applicants
// are anonymous students.
type joinApi struct {
	enrollSvc *enroll.Service
	courseSvc *course.Service
}

func registerJoinAPI(g *echo.Group, enrollSvc *enroll.Service, courseSvc *course.Service) {
	api := joinApi{enrollSvc: enrollSvc, courseSvc: courseSvc}

	jg := g.Group("/join")
	jg.GET("/:code", api.preview)
	jg.POST("/:code", api.submit)
}

var errJoinCodeInvalid = echo.NewHTTPError(http.StatusNotFound, "Código de invitación inválido o expirado")

// preview returns the course's public info only.
func (api *joinApi) preview(ctx echo.Context) error {
	crs, err := api.courseSvc.FindByJoinCode(ctx.Request().Context(), ctx.Param("code"))
	if err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return errJoinCodeInvalid
		}
		return errors.Wrap(err, "finding course by join code")
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"course_id":        crs.ID,
		"course_name":      crs.Name,
		"institution_name": crs.InstitutionName,
		"description":      crs.Description,
	})
}

func (api *joinApi) submit(ctx echo.Context) error {
	var data enroll.JoinApplicant
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to JoinApplicant")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	if _, err := api.enrollSvc.SubmitJoinRequest(ctx.Request().Context(), ctx.Param("code"), data); err != nil {
		if errors.Cause(err) == course.ErrNotFound {
			return errJoinCodeInvalid
		}
		return errors.Wrap(err, "submitting join request")
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "Solicitud enviada correctamente. El docente la revisará pronto.",
	})
}
