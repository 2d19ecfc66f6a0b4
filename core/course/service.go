package course

import (
	"context"
	"errors"
	"time"

	wraperrors "github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/aulacheck/aulacheck/core/stats"
)

var (
	// errors
	ErrNotFound = errors.New("course not found")

	// joinCodeMaxAttempts bounds the regeneration loop; collisions on an
	// 8-char/32-symbol code are vanishingly rare so this never triggers in
	// practice.
	joinCodeMaxAttempts = 100

	errJoinCodeExhausted = errors.New("could not generate a unique join code")
)

type (
	Repository interface {
		CreateCourse(ctx context.Context, crs Course) (Course, error)
		GetCourse(ctx context.Context, id string) (Course, error)
		// QueryCoursesByOwner returns the owner's courses, newest first.
		QueryCoursesByOwner(ctx context.Context, ownerID string) ([]Course, error)
		// GetCourseByJoinCode only matches courses that currently allow join
		// requests.
		GetCourseByJoinCode(ctx context.Context, code string) (Course, error)
		// JoinCodeInUse reports whether any course currently holds the code,
		// enabled or not.
		JoinCodeInUse(ctx context.Context, code string) (bool, error)
		UpdateCourse(ctx context.Context, crs Course) (Course, error)
		// SetJoinCode stores the code and re-enables join requests in the
		// same update.
		SetJoinCode(ctx context.Context, id, code string) error
		SetAllowJoinRequests(ctx context.Context, id string, allow bool) error
		UpdateMeta(ctx context.Context, id string, meta Meta) error
		// DeleteCourse removes the course and cascades to its enrollments,
		// attendance, grades and join requests.
		DeleteCourse(ctx context.Context, id string) error
	}

	Service struct {
		repo Repository
		calc *stats.Calculator
	}
)

func NewService(repo Repository, calc *stats.Calculator) *Service {
	return &Service{repo: repo, calc: calc}
}

func (svc *Service) Create(ctx context.Context, ownerID string, nc NewCourse) (Course, error) {
	crs := Course{
		OwnerID:           ownerID,
		Name:              nc.Name,
		InstitutionName:   nc.InstitutionName,
		StartDate:         nc.StartDate,
		Description:       null.NewString(nc.Description, nc.Description != ""),
		AllowJoinRequests: false, // disabled until a join code is generated
		CreatedAt:         time.Now().UTC(),
	}
	return svc.repo.CreateCourse(ctx, crs)
}

func (svc *Service) QueryOwned(ctx context.Context, ownerID string) ([]Course, error) {
	return svc.repo.QueryCoursesByOwner(ctx, ownerID)
}

// Get returns the course with its cached metrics refreshed and persisted.
// Reads recompute eagerly so the cached block never drifts far from the
// source records.
func (svc *Service) Get(ctx context.Context, id string) (Course, error) {
	crs, err := svc.repo.GetCourse(ctx, id)
	if err != nil {
		return Course{}, err
	}

	avgAttendance, err := svc.calc.CourseAttendance(ctx, id)
	if err != nil {
		return Course{}, wraperrors.Wrap(err, "computing course attendance")
	}
	avgGrade, err := svc.calc.CourseAverage(ctx, id)
	if err != nil {
		return Course{}, wraperrors.Wrap(err, "computing course average")
	}

	crs.Meta.AvgAttendance = avgAttendance
	crs.Meta.AvgGrade = avgGrade
	if err := svc.repo.UpdateMeta(ctx, id, crs.Meta); err != nil {
		return Course{}, wraperrors.Wrap(err, "caching course metrics")
	}
	return crs, nil
}

func (svc *Service) Update(ctx context.Context, id string, uc UpdateCourse) (Course, error) {
	crs, err := svc.repo.GetCourse(ctx, id)
	if err != nil {
		return Course{}, err
	}
	return svc.repo.UpdateCourse(ctx, uc.apply(crs))
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteCourse(ctx, id)
}

// VerifyOwnership reports whether the course exists and is owned by the
// principal. A missing course yields false rather than an error so callers
// cannot distinguish "not found" from "not yours" (no existence leakage).
func (svc *Service) VerifyOwnership(ctx context.Context, courseID, principalID string) (bool, error) {
	crs, err := svc.repo.GetCourse(ctx, courseID)
	if err != nil {
		if wraperrors.Cause(err) == ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return crs.OwnerID == principalID, nil
}

// GenerateJoinCode assigns the course a fresh join code, retrying until the
// code is unused by any course, and re-enables join requests.
func (svc *Service) GenerateJoinCode(ctx context.Context, courseID string) (string, error) {
	for i := 0; i < joinCodeMaxAttempts; i++ {
		code, err := makeJoinCode()
		if err != nil {
			return "", err
		}
		inUse, err := svc.repo.JoinCodeInUse(ctx, code)
		if err != nil {
			return "", wraperrors.Wrap(err, "checking join code uniqueness")
		}
		if inUse {
			continue
		}
		if err := svc.repo.SetJoinCode(ctx, courseID, code); err != nil {
			return "", wraperrors.Wrap(err, "storing join code")
		}
		return code, nil
	}
	return "", errJoinCodeExhausted
}

// DisableJoinRequests turns self-registration off but keeps the stored code
// so it can be re-enabled (and audited) later.
func (svc *Service) DisableJoinRequests(ctx context.Context, courseID string) error {
	return svc.repo.SetAllowJoinRequests(ctx, courseID, false)
}

// FindByJoinCode resolves a redeemable join code; codes on courses with join
// requests disabled behave as if they did not exist.
func (svc *Service) FindByJoinCode(ctx context.Context, code string) (Course, error) {
	return svc.repo.GetCourseByJoinCode(ctx, code)
}
