package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/aulacheck/aulacheck/core/grade"
)

type gradeRepository struct {
	db *sqlx.DB
}

var _ grade.Repository = (*gradeRepository)(nil) // interface compliance check

func NewGradeRepository(db *sqlx.DB) *gradeRepository {
	return &gradeRepository{db: db}
}

type gradeRow struct {
	ID         string    `db:"id"`
	CourseID   string    `db:"course_id"`
	StudentID  string    `db:"student_id"`
	Assessment string    `db:"assessment"`
	Date       time.Time `db:"date"`
	Score      float64   `db:"score"`
	Weight     float64   `db:"weight"`
	CreatedAt  time.Time `db:"created_at"`
}

func (r gradeRow) toGrade() grade.Grade {
	return grade.Grade{
		ID:         r.ID,
		CourseID:   r.CourseID,
		StudentID:  r.StudentID,
		Assessment: r.Assessment,
		Date:       fmtDate(r.Date),
		Score:      r.Score,
		Weight:     r.Weight,
		CreatedAt:  r.CreatedAt,
	}
}

const gradeColumns = `id, course_id, student_id, assessment, date, score, weight, created_at`

func (repo *gradeRepository) CreateGrade(ctx context.Context, grd grade.Grade) (grade.Grade, error) {
	grd.ID = newID()
	const q = `
INSERT INTO grades (id, course_id, student_id, assessment, date, score, weight, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := repo.db.ExecContext(ctx, q,
		grd.ID, grd.CourseID, grd.StudentID, grd.Assessment, grd.Date, grd.Score, grd.Weight, grd.CreatedAt,
	)
	if err != nil {
		return grade.Grade{}, errors.Wrap(err, "inserting grade")
	}
	return grd, nil
}

func (repo *gradeRepository) QueryGrades(ctx context.Context, courseID, studentID string) ([]grade.Grade, error) {
	q := `SELECT ` + gradeColumns + ` FROM grades WHERE course_id = $1`
	args := []interface{}{courseID}
	if studentID != "" {
		q += ` AND student_id = $2`
		args = append(args, studentID)
	}
	q += ` ORDER BY date DESC, created_at DESC`

	var rows []gradeRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying grades")
	}
	grds := make([]grade.Grade, len(rows))
	for i, row := range rows {
		grds[i] = row.toGrade()
	}
	return grds, nil
}
