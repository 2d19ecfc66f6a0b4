package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/aulacheck/aulacheck/core/attendance"
	"github.com/aulacheck/aulacheck/core/enroll"
	"github.com/aulacheck/aulacheck/core/stats"
)

type statsRepository struct {
	db *sqlx.DB
}

var _ stats.Repository = (*statsRepository)(nil) // interface compliance check

func NewStatsRepository(db *sqlx.DB) *statsRepository {
	return &statsRepository{db: db}
}

func (repo *statsRepository) DistinctDates(ctx context.Context, courseID string) ([]string, error) {
	var dates []time.Time
	const q = `SELECT DISTINCT date FROM attendance WHERE course_id = $1 ORDER BY date`
	if err := repo.db.SelectContext(ctx, &dates, q, courseID); err != nil {
		return nil, errors.Wrap(err, "querying distinct dates")
	}
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = fmtDate(d)
	}
	return out, nil
}

func (repo *statsRepository) CountPresent(ctx context.Context, courseID, studentID string) (int, error) {
	q := `SELECT COUNT(*) FROM attendance WHERE course_id = $1 AND status IN ($2, $3)`
	args := []interface{}{courseID, attendance.StatusPresent, attendance.StatusLate}
	if studentID != "" {
		q += ` AND student_id = $4`
		args = append(args, studentID)
	}

	var count int
	if err := repo.db.GetContext(ctx, &count, q, args...); err != nil {
		return 0, errors.Wrap(err, "counting present records")
	}
	return count, nil
}

func (repo *statsRepository) ActiveStudentIDs(ctx context.Context, courseID string) ([]string, error) {
	var ids []string
	const q = `SELECT student_id FROM enrollments WHERE course_id = $1 AND status = $2`
	if err := repo.db.SelectContext(ctx, &ids, q, courseID, enroll.StatusActive); err != nil {
		return nil, errors.Wrap(err, "querying active students")
	}
	return ids, nil
}

func (repo *statsRepository) StudentGrades(ctx context.Context, courseID, studentID string) ([]stats.WeightedGrade, error) {
	q := `SELECT student_id, score, weight FROM grades WHERE course_id = $1`
	args := []interface{}{courseID}
	if studentID != "" {
		q += ` AND student_id = $2`
		args = append(args, studentID)
	}

	var rows []struct {
		StudentID string  `db:"student_id"`
		Score     float64 `db:"score"`
		Weight    float64 `db:"weight"`
	}
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying grades")
	}
	grades := make([]stats.WeightedGrade, len(rows))
	for i, row := range rows {
		grades[i] = stats.WeightedGrade{StudentID: row.StudentID, Score: row.Score, Weight: row.Weight}
	}
	return grades, nil
}
