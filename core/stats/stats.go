// Package stats derives the course and student aggregates (attendance
// percentages, weighted grade averages) from the source records. Results are
// recomputed in full on every call; callers cache them on the Course meta
// block, never the other way around.
package stats

import (
	"context"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
)

type (
	// WeightedGrade is the slice of a Grade needed for average computation.
	WeightedGrade struct {
		StudentID string
		Score     float64
		Weight    float64
	}

	// Repository exposes the source-record queries the calculator needs.
	// Implemented by the sqlx and inmem storage layers.
	Repository interface {
		// DistinctDates returns all distinct recorded dates for a course,
		// suspension-marker dates included.
		DistinctDates(ctx context.Context, courseID string) ([]string, error)
		// CountPresent counts attendance records with status present or late.
		// An empty studentID counts across all students.
		CountPresent(ctx context.Context, courseID, studentID string) (int, error)
		ActiveStudentIDs(ctx context.Context, courseID string) ([]string, error)
		// StudentGrades returns a student's grades in a course; an empty
		// studentID returns the whole course's grades.
		StudentGrades(ctx context.Context, courseID, studentID string) ([]WeightedGrade, error)
	}

	Calculator struct {
		repo Repository
	}
)

func NewCalculator(repo Repository) *Calculator {
	return &Calculator{repo: repo}
}

// CourseAttendance computes the pooled course attendance ratio:
// (all present/late records) / (active students x distinct dates).
// Note this is not the mean of per-student percentages.
func (c *Calculator) CourseAttendance(ctx context.Context, courseID string) (float64, error) {
	studentIDs, err := c.repo.ActiveStudentIDs(ctx, courseID)
	if err != nil {
		return 0, errors.Wrap(err, "querying active students")
	}
	if len(studentIDs) == 0 {
		return 0, nil
	}

	dates, err := c.repo.DistinctDates(ctx, courseID)
	if err != nil {
		return 0, errors.Wrap(err, "querying distinct dates")
	}
	if len(dates) == 0 {
		return 0, nil
	}

	present, err := c.repo.CountPresent(ctx, courseID, "")
	if err != nil {
		return 0, errors.Wrap(err, "counting present records")
	}
	return float64(present) / float64(len(studentIDs)*len(dates)), nil
}

// StudentAttendance computes a student's attendance ratio over all distinct
// recorded dates of the course (0 when the course has no recorded dates).
func (c *Calculator) StudentAttendance(ctx context.Context, courseID, studentID string) (float64, error) {
	dates, err := c.repo.DistinctDates(ctx, courseID)
	if err != nil {
		return 0, errors.Wrap(err, "querying distinct dates")
	}
	if len(dates) == 0 {
		return 0, nil
	}

	present, err := c.repo.CountPresent(ctx, courseID, studentID)
	if err != nil {
		return 0, errors.Wrap(err, "counting present records")
	}
	return float64(present) / float64(len(dates)), nil
}

// AllStudentsAttendance returns studentID -> attendance ratio for every active
// student. The map is empty when the course has no recorded dates.
func (c *Calculator) AllStudentsAttendance(ctx context.Context, courseID string) (map[string]float64, error) {
	studentIDs, err := c.repo.ActiveStudentIDs(ctx, courseID)
	if err != nil {
		return nil, errors.Wrap(err, "querying active students")
	}

	dates, err := c.repo.DistinctDates(ctx, courseID)
	if err != nil {
		return nil, errors.Wrap(err, "querying distinct dates")
	}

	result := make(map[string]float64, len(studentIDs))
	if len(dates) == 0 {
		return result, nil
	}

	for _, sid := range studentIDs {
		present, err := c.repo.CountPresent(ctx, courseID, sid)
		if err != nil {
			return nil, errors.Wrap(err, "counting present records")
		}
		result[sid] = float64(present) / float64(len(dates))
	}
	return result, nil
}

// StudentAverage computes the weighted mean of a student's grades:
// sum(score x weight) / sum(weight). Invalid (null) when the student has no
// grades or the total weight is zero - never 0 or NaN.
func (c *Calculator) StudentAverage(ctx context.Context, courseID, studentID string) (null.Float64, error) {
	grades, err := c.repo.StudentGrades(ctx, courseID, studentID)
	if err != nil {
		return null.Float64{}, errors.Wrap(err, "querying grades")
	}
	return weightedMean(grades), nil
}

// CourseAverage computes the arithmetic mean of the non-null per-student
// averages among active enrollments; null when no student has any grade.
func (c *Calculator) CourseAverage(ctx context.Context, courseID string) (null.Float64, error) {
	averages, err := c.AllStudentsAverages(ctx, courseID)
	if err != nil {
		return null.Float64{}, err
	}

	var sum float64
	var n int
	for _, avg := range averages {
		if avg.Valid {
			sum += avg.Float64
			n++
		}
	}
	if n == 0 {
		return null.Float64{}, nil
	}
	return null.Float64From(sum / float64(n)), nil
}

// AllStudentsAverages returns studentID -> weighted average (null for
// students without grades) for every active student.
func (c *Calculator) AllStudentsAverages(ctx context.Context, courseID string) (map[string]null.Float64, error) {
	studentIDs, err := c.repo.ActiveStudentIDs(ctx, courseID)
	if err != nil {
		return nil, errors.Wrap(err, "querying active students")
	}

	grades, err := c.repo.StudentGrades(ctx, courseID, "")
	if err != nil {
		return nil, errors.Wrap(err, "querying grades")
	}
	byStudent := make(map[string][]WeightedGrade, len(studentIDs))
	for _, g := range grades {
		byStudent[g.StudentID] = append(byStudent[g.StudentID], g)
	}

	result := make(map[string]null.Float64, len(studentIDs))
	for _, sid := range studentIDs {
		result[sid] = weightedMean(byStudent[sid])
	}
	return result, nil
}

func weightedMean(grades []WeightedGrade) null.Float64 {
	if len(grades) == 0 {
		return null.Float64{}
	}
	var totalScore, totalWeight float64
	for _, g := range grades {
		totalScore += g.Score * g.Weight
		totalWeight += g.Weight
	}
	if totalWeight == 0 {
		return null.Float64{}
	}
	return null.Float64From(totalScore / totalWeight)
}
