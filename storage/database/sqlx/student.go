package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/aulacheck/aulacheck/core/enroll"
	"github.com/aulacheck/aulacheck/core/student"
)

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *sqlx.DB) *studentRepository {
	return &studentRepository{db: db}
}

type studentRow struct {
	ID         string      `db:"id"`
	FirstName  string      `db:"first_name"`
	LastName   string      `db:"last_name"`
	Email      null.String `db:"email"`
	Phone      null.String `db:"phone"`
	ExternalID null.String `db:"external_id"`
	CreatedAt  time.Time   `db:"created_at"`
}

func (r studentRow) toStudent() student.Student {
	return student.Student{
		ID:         r.ID,
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		Email:      r.Email,
		Phone:      r.Phone,
		ExternalID: r.ExternalID,
		CreatedAt:  r.CreatedAt,
	}
}

const studentColumns = `id, first_name, last_name, email, phone, external_id, created_at`

func (repo *studentRepository) CreateStudent(ctx context.Context, stu student.Student) (student.Student, error) {
	stu.ID = newID()
	const q = `
INSERT INTO students (id, first_name, last_name, email, phone, external_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := repo.db.ExecContext(ctx, q,
		stu.ID, stu.FirstName, stu.LastName, stu.Email, stu.Phone, stu.ExternalID, stu.CreatedAt,
	)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	return stu, nil
}

func (repo *studentRepository) GetStudent(ctx context.Context, id string) (student.Student, error) {
	var row studentRow
	if err := repo.db.GetContext(ctx, &row, `SELECT `+studentColumns+` FROM students WHERE id = $1`, id); err != nil {
		return student.Student{}, trapNoRowsErr(err, student.ErrNotFound)
	}
	return row.toStudent(), nil
}

func (repo *studentRepository) GetStudents(ctx context.Context, ids []string) ([]student.Student, error) {
	if len(ids) == 0 {
		return []student.Student{}, nil
	}

	q, args, err := sqlx.In(`SELECT `+studentColumns+` FROM students WHERE id IN (?)`, ids)
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}
	var rows []studentRow
	if err = repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	students := make([]student.Student, len(rows))
	for i, row := range rows {
		students[i] = row.toStudent()
	}
	return students, nil
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, stu student.Student) (student.Student, error) {
	const q = `
UPDATE students
SET first_name = $2, last_name = $3, email = $4, phone = $5, external_id = $6
WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, q,
		stu.ID, stu.FirstName, stu.LastName, stu.Email, stu.Phone, stu.ExternalID,
	)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return repo.GetStudent(ctx, stu.ID)
}

func (repo *studentRepository) OwnsActiveEnrollment(ctx context.Context, studentID, principalID string) (bool, error) {
	var owns bool
	const q = `
SELECT EXISTS (
    SELECT 1
    FROM enrollments e
    JOIN courses c ON c.id = e.course_id
    WHERE e.student_id = $1 AND e.status = $2 AND c.owner_id = $3
)`
	if err := repo.db.GetContext(ctx, &owns, q, studentID, enroll.StatusActive, principalID); err != nil {
		return false, errors.Wrap(err, "checking student access")
	}
	return owns, nil
}
