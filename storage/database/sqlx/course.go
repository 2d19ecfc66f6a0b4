package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/aulacheck/aulacheck/core/course"
)

type courseRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *sqlx.DB) *courseRepository {
	return &courseRepository{db: db}
}

type courseRow struct {
	ID                string       `db:"id"`
	OwnerID           string       `db:"owner_id"`
	Name              string       `db:"name"`
	InstitutionName   string       `db:"institution_name"`
	StartDate         time.Time    `db:"start_date"`
	Description       null.String  `db:"description"`
	JoinCode          null.String  `db:"join_code"`
	AllowJoinRequests bool         `db:"allow_join_requests"`
	AnnualClassCount  null.Int     `db:"annual_class_count"`
	StudentCount      int          `db:"student_count"`
	AvgAttendance     float64      `db:"avg_attendance"`
	AvgGrade          null.Float64 `db:"avg_grade"`
	CreatedAt         time.Time    `db:"created_at"`
}

func (r courseRow) toCourse() course.Course {
	return course.Course{
		ID:                r.ID,
		OwnerID:           r.OwnerID,
		Name:              r.Name,
		InstitutionName:   r.InstitutionName,
		StartDate:         fmtDate(r.StartDate),
		Description:       r.Description,
		JoinCode:          r.JoinCode,
		AllowJoinRequests: r.AllowJoinRequests,
		AnnualClassCount:  r.AnnualClassCount,
		CreatedAt:         r.CreatedAt,
		Meta: course.Meta{
			StudentCount:  r.StudentCount,
			AvgAttendance: r.AvgAttendance,
			AvgGrade:      r.AvgGrade,
		},
	}
}

const courseColumns = `id, owner_id, name, institution_name, start_date, description, join_code,
allow_join_requests, annual_class_count, student_count, avg_attendance, avg_grade, created_at`

func (repo *courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	crs.ID = newID()
	const q = `
INSERT INTO courses (id, owner_id, name, institution_name, start_date, description, join_code,
                     allow_join_requests, annual_class_count, student_count, avg_attendance, avg_grade, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := repo.db.ExecContext(ctx, q,
		crs.ID, crs.OwnerID, crs.Name, crs.InstitutionName, crs.StartDate, crs.Description, crs.JoinCode,
		crs.AllowJoinRequests, crs.AnnualClassCount, crs.Meta.StudentCount, crs.Meta.AvgAttendance,
		crs.Meta.AvgGrade, crs.CreatedAt,
	)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "inserting course")
	}
	return crs, nil
}

func (repo *courseRepository) GetCourse(ctx context.Context, id string) (course.Course, error) {
	var row courseRow
	if err := repo.db.GetContext(ctx, &row, `SELECT `+courseColumns+` FROM courses WHERE id = $1`, id); err != nil {
		return course.Course{}, trapNoRowsErr(err, course.ErrNotFound)
	}
	return row.toCourse(), nil
}

func (repo *courseRepository) QueryCoursesByOwner(ctx context.Context, ownerID string) ([]course.Course, error) {
	var rows []courseRow
	const q = `SELECT ` + courseColumns + ` FROM courses WHERE owner_id = $1 ORDER BY created_at DESC`
	if err := repo.db.SelectContext(ctx, &rows, q, ownerID); err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	courses := make([]course.Course, len(rows))
	for i, row := range rows {
		courses[i] = row.toCourse()
	}
	return courses, nil
}

func (repo *courseRepository) GetCourseByJoinCode(ctx context.Context, code string) (course.Course, error) {
	var row courseRow
	const q = `SELECT ` + courseColumns + ` FROM courses WHERE join_code = $1 AND allow_join_requests`
	if err := repo.db.GetContext(ctx, &row, q, code); err != nil {
		return course.Course{}, trapNoRowsErr(err, course.ErrNotFound)
	}
	return row.toCourse(), nil
}

func (repo *courseRepository) JoinCodeInUse(ctx context.Context, code string) (bool, error) {
	var inUse bool
	const q = `SELECT EXISTS (SELECT 1 FROM courses WHERE join_code = $1)`
	if err := repo.db.GetContext(ctx, &inUse, q, code); err != nil {
		return false, errors.Wrap(err, "checking join code")
	}
	return inUse, nil
}

func (repo *courseRepository) UpdateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	const q = `
UPDATE courses
SET name = $2, institution_name = $3, start_date = $4, description = $5, annual_class_count = $6
WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, q,
		crs.ID, crs.Name, crs.InstitutionName, crs.StartDate, crs.Description, crs.AnnualClassCount,
	)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "updating course")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return course.Course{}, course.ErrNotFound
	}
	return repo.GetCourse(ctx, crs.ID)
}

func (repo *courseRepository) SetJoinCode(ctx context.Context, id, code string) error {
	const q = `UPDATE courses SET join_code = $2, allow_join_requests = TRUE WHERE id = $1`
	if _, err := repo.db.ExecContext(ctx, q, id, code); err != nil {
		return errors.Wrap(err, "setting join code")
	}
	return nil
}

func (repo *courseRepository) SetAllowJoinRequests(ctx context.Context, id string, allow bool) error {
	const q = `UPDATE courses SET allow_join_requests = $2 WHERE id = $1`
	if _, err := repo.db.ExecContext(ctx, q, id, allow); err != nil {
		return errors.Wrap(err, "setting allow_join_requests")
	}
	return nil
}

func (repo *courseRepository) UpdateMeta(ctx context.Context, id string, meta course.Meta) error {
	const q = `UPDATE courses SET student_count = $2, avg_attendance = $3, avg_grade = $4 WHERE id = $1`
	if _, err := repo.db.ExecContext(ctx, q, id, meta.StudentCount, meta.AvgAttendance, meta.AvgGrade); err != nil {
		return errors.Wrap(err, "updating course meta")
	}
	return nil
}

func (repo *courseRepository) SetAvgAttendance(ctx context.Context, id string, avg float64) error {
	const q = `UPDATE courses SET avg_attendance = $2 WHERE id = $1`
	if _, err := repo.db.ExecContext(ctx, q, id, avg); err != nil {
		return errors.Wrap(err, "updating avg_attendance")
	}
	return nil
}

// AdjustStudentCount shifts the cached counter, clamped at zero.
func (repo *courseRepository) AdjustStudentCount(ctx context.Context, id string, delta int) error {
	const q = `UPDATE courses SET student_count = GREATEST(student_count + $2, 0) WHERE id = $1`
	if _, err := repo.db.ExecContext(ctx, q, id, delta); err != nil {
		return errors.Wrap(err, "adjusting student_count")
	}
	return nil
}

func (repo *courseRepository) DeleteCourse(ctx context.Context, id string) error {
	// child rows cascade
	if _, err := repo.db.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id); err != nil {
		return errors.Wrap(err, "deleting course")
	}
	return nil
}
