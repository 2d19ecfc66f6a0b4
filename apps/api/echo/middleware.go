package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/aulacheck/aulacheck/core/course"
	"github.com/aulacheck/aulacheck/core/student"
)

// courseOwnerMiddleware rejects requests whose principal does not own the
// course in the :id param. A nonexistent course yields the same 403.
func courseOwnerMiddleware(svc *course.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			owns, err := svc.VerifyOwnership(ctx.Request().Context(), ctx.Param("id"), claims.Subject)
			if err != nil {
				return errors.Wrap(err, "verifying course ownership")
			}
			if !owns {
				return errHttpForbidden
			}
			return next(ctx)
		}
	}
}

// studentAccessMiddleware rejects requests whose principal owns no course the
// student in the :id param is actively enrolled in.
func studentAccessMiddleware(svc *student.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			ok, err := svc.VerifyAccess(ctx.Request().Context(), ctx.Param("id"), claims.Subject)
			if err != nil {
				return errors.Wrap(err, "verifying student access")
			}
			if !ok {
				return errHttpForbidden
			}
			return next(ctx)
		}
	}
}
