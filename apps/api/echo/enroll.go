package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/aulacheck/aulacheck/core"
	"github.com/aulacheck/aulacheck/core/enroll"
	"github.com/aulacheck/aulacheck/core/student"
)

type enrollApi struct {
	svc *enroll.Service
}

func registerEnrollAPI(detail *echo.Group, svc *enroll.Service) {
	api := enrollApi{svc: svc}

	detail.GET("/students", api.roster)
	detail.POST("/students", api.enroll)
	detail.DELETE("/students/:studentID", api.withdraw)
	detail.GET("/join-requests", api.queryJoinRequests)
	detail.POST("/join-requests", api.processJoinRequest)
}

func (api *enrollApi) roster(ctx echo.Context) error {
	entries, err := api.svc.RosterDetail(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying roster")
	}
	return ctx.JSON(http.StatusOK, entries)
}

func (api *enrollApi) enroll(ctx echo.Context) error {
	var data enroll.EnrollStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EnrollStudent")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	std, err := api.svc.Enroll(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		switch errors.Cause(err) {
		case student.ErrNotFound:
			return errHttpNotFound
		case enroll.ErrAlreadyEnrolled:
			return core.NewValidationError(enroll.ErrAlreadyEnrolled)
		}
		return errors.Wrap(err, "enrolling student")
	}
	return ctx.JSON(http.StatusCreated, std)
}

func (api *enrollApi) withdraw(ctx echo.Context) error {
	var data enroll.Withdrawal
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Withdrawal")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	enr, err := api.svc.Withdraw(ctx.Request().Context(), ctx.Param("id"), ctx.Param("studentID"), data)
	if err != nil {
		if errors.Cause(err) == enroll.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "withdrawing student")
	}
	return ctx.JSON(http.StatusOK, enr)
}

func (api *enrollApi) queryJoinRequests(ctx echo.Context) error {
	reqs, err := api.svc.PendingRequests(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying join requests")
	}
	return ctx.JSON(http.StatusOK, reqs)
}

type processJoinRequest struct {
	RequestID string `json:"request_id" validate:"required"`
	Action    string `json:"action" validate:"required,oneof=approve reject"`
}

func (pjr *processJoinRequest) Validate() error {
	pjr.RequestID = core.CleanString(pjr.RequestID)
	pjr.Action = core.CleanString(pjr.Action, true /* lower */)
	return core.Validate.Struct(pjr)
}

func (api *enrollApi) processJoinRequest(ctx echo.Context) error {
	var data processJoinRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to processJoinRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	reqCtx := ctx.Request().Context()
	courseID := ctx.Param("id")

	if data.Action == "approve" {
		std, warning, err := api.svc.Approve(reqCtx, courseID, data.RequestID, claims.Subject)
		if err != nil {
			switch errors.Cause(err) {
			case enroll.ErrRequestNotFound:
				return errHttpNotFound
			case enroll.ErrRequestDone:
				return core.NewValidationError(enroll.ErrRequestDone)
			}
			return errors.Wrap(err, "approving join request")
		}
		resp := echo.Map{"student": std}
		if warning != "" {
			resp["warning"] = warning
		}
		return ctx.JSON(http.StatusCreated, resp)
	}

	req, err := api.svc.Reject(reqCtx, courseID, data.RequestID, claims.Subject)
	if err != nil {
		switch errors.Cause(err) {
		case enroll.ErrRequestNotFound:
			return errHttpNotFound
		case enroll.ErrRequestDone:
			return core.NewValidationError(enroll.ErrRequestDone)
		}
		return errors.Wrap(err, "rejecting join request")
	}
	return ctx.JSON(http.StatusOK, req)
}
