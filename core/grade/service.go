package grade

import (
	"context"
	"errors"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/aulacheck/aulacheck/core/stats"
)

var ErrNotFound = errors.New("grade not found")

type (
	Repository interface {
		CreateGrade(ctx context.Context, grd Grade) (Grade, error)
		// QueryGrades returns the course's grades newest first; a non-empty
		// studentID narrows to that student.
		QueryGrades(ctx context.Context, courseID, studentID string) ([]Grade, error)
	}

	Service struct {
		repo Repository
		calc *stats.Calculator
	}
)

func NewService(repo Repository, calc *stats.Calculator) *Service {
	return &Service{repo: repo, calc: calc}
}

// Create inserts the grade and returns it along with the student's refreshed
// weighted average for the course.
func (svc *Service) Create(ctx context.Context, courseID string, ng NewGrade) (Grade, null.Float64, error) {
	grd := Grade{
		CourseID:   courseID,
		StudentID:  ng.StudentID,
		Assessment: ng.Assessment,
		Date:       ng.Date,
		Score:      ng.Score,
		Weight:     ng.Weight,
		CreatedAt:  time.Now().UTC(),
	}
	grd, err := svc.repo.CreateGrade(ctx, grd)
	if err != nil {
		return Grade{}, null.Float64{}, err
	}

	avg, err := svc.calc.StudentAverage(ctx, courseID, grd.StudentID)
	if err != nil {
		return Grade{}, null.Float64{}, err
	}
	return grd, avg, nil
}

// Query lists grades for the course, narrowed to one student when studentID is
// non-empty; in that case the student's weighted average is returned too.
func (svc *Service) Query(ctx context.Context, courseID, studentID string) ([]Grade, null.Float64, error) {
	grds, err := svc.repo.QueryGrades(ctx, courseID, studentID)
	if err != nil {
		return nil, null.Float64{}, err
	}

	var avg null.Float64
	if studentID != "" {
		if avg, err = svc.calc.StudentAverage(ctx, courseID, studentID); err != nil {
			return nil, null.Float64{}, err
		}
	}
	return grds, avg, nil
}
