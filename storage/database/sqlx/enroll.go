package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/aulacheck/aulacheck/core/enroll"
)

type enrollRepository struct {
	db *sqlx.DB
}

var _ enroll.Repository = (*enrollRepository)(nil) // interface compliance check

func NewEnrollRepository(db *sqlx.DB) *enrollRepository {
	return &enrollRepository{db: db}
}

type enrollmentRow struct {
	ID               string      `db:"id"`
	CourseID         string      `db:"course_id"`
	StudentID        string      `db:"student_id"`
	EnrollDate       time.Time   `db:"enroll_date"`
	Status           string      `db:"status"`
	WithdrawalDate   null.Time   `db:"withdrawal_date"`
	WithdrawalReason null.String `db:"withdrawal_reason"`
	WithdrawalNote   null.String `db:"withdrawal_note"`
}

func (r enrollmentRow) toEnrollment() enroll.Enrollment {
	return enroll.Enrollment{
		ID:               r.ID,
		CourseID:         r.CourseID,
		StudentID:        r.StudentID,
		EnrollDate:       r.EnrollDate,
		Status:           r.Status,
		WithdrawalDate:   r.WithdrawalDate,
		WithdrawalReason: r.WithdrawalReason,
		WithdrawalNote:   r.WithdrawalNote,
	}
}

type joinRequestRow struct {
	ID          string      `db:"id"`
	CourseID    string      `db:"course_id"`
	FirstName   string      `db:"first_name"`
	LastName    string      `db:"last_name"`
	Email       null.String `db:"email"`
	Phone       null.String `db:"phone"`
	ExternalID  null.String `db:"external_id"`
	Status      string      `db:"status"`
	CreatedAt   time.Time   `db:"created_at"`
	ProcessedAt null.Time   `db:"processed_at"`
	ProcessedBy null.String `db:"processed_by"`
}

func (r joinRequestRow) toJoinRequest() enroll.JoinRequest {
	return enroll.JoinRequest{
		ID:          r.ID,
		CourseID:    r.CourseID,
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		Email:       r.Email,
		Phone:       r.Phone,
		ExternalID:  r.ExternalID,
		Status:      r.Status,
		CreatedAt:   r.CreatedAt,
		ProcessedAt: r.ProcessedAt,
		ProcessedBy: r.ProcessedBy,
	}
}

const (
	enrollmentColumns = `id, course_id, student_id, enroll_date, status, withdrawal_date, withdrawal_reason, withdrawal_note`

	joinRequestColumns = `id, course_id, first_name, last_name, email, phone, external_id, status, created_at, processed_at, processed_by`
)

func (repo *enrollRepository) CreateEnrollment(ctx context.Context, enr enroll.Enrollment) (enroll.Enrollment, error) {
	enr.ID = newID()
	const q = `
INSERT INTO enrollments (id, course_id, student_id, enroll_date, status, withdrawal_date, withdrawal_reason, withdrawal_note)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := repo.db.ExecContext(ctx, q,
		enr.ID, enr.CourseID, enr.StudentID, enr.EnrollDate, enr.Status,
		enr.WithdrawalDate, enr.WithdrawalReason, enr.WithdrawalNote,
	)
	if err != nil {
		return enroll.Enrollment{}, errors.Wrap(err, "inserting enrollment")
	}
	return enr, nil
}

func (repo *enrollRepository) GetEnrollment(ctx context.Context, courseID, studentID string) (enroll.Enrollment, error) {
	var row enrollmentRow
	const q = `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE course_id = $1 AND student_id = $2`
	if err := repo.db.GetContext(ctx, &row, q, courseID, studentID); err != nil {
		return enroll.Enrollment{}, trapNoRowsErr(err, enroll.ErrNotFound)
	}
	return row.toEnrollment(), nil
}

func (repo *enrollRepository) QueryEnrollments(ctx context.Context, courseID, status string) ([]enroll.Enrollment, error) {
	q := `SELECT ` + enrollmentColumns + ` FROM enrollments WHERE course_id = $1`
	args := []interface{}{courseID}
	if status != "" {
		q += ` AND status = $2`
		args = append(args, status)
	}
	q += ` ORDER BY enroll_date DESC`

	var rows []enrollmentRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying enrollments")
	}
	enrs := make([]enroll.Enrollment, len(rows))
	for i, row := range rows {
		enrs[i] = row.toEnrollment()
	}
	return enrs, nil
}

func (repo *enrollRepository) UpdateEnrollment(ctx context.Context, enr enroll.Enrollment) (enroll.Enrollment, error) {
	const q = `
UPDATE enrollments
SET enroll_date = $2, status = $3, withdrawal_date = $4, withdrawal_reason = $5, withdrawal_note = $6
WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, q,
		enr.ID, enr.EnrollDate, enr.Status, enr.WithdrawalDate, enr.WithdrawalReason, enr.WithdrawalNote,
	)
	if err != nil {
		return enroll.Enrollment{}, errors.Wrap(err, "updating enrollment")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return enroll.Enrollment{}, enroll.ErrNotFound
	}
	return enr, nil
}

func (repo *enrollRepository) CreateJoinRequest(ctx context.Context, req enroll.JoinRequest) (enroll.JoinRequest, error) {
	req.ID = newID()
	const q = `
INSERT INTO join_requests (id, course_id, first_name, last_name, email, phone, external_id, status, created_at, processed_at, processed_by)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := repo.db.ExecContext(ctx, q,
		req.ID, req.CourseID, req.FirstName, req.LastName, req.Email, req.Phone, req.ExternalID,
		req.Status, req.CreatedAt, req.ProcessedAt, req.ProcessedBy,
	)
	if err != nil {
		return enroll.JoinRequest{}, errors.Wrap(err, "inserting join request")
	}
	return req, nil
}

func (repo *enrollRepository) GetJoinRequest(ctx context.Context, courseID, reqID string) (enroll.JoinRequest, error) {
	var row joinRequestRow
	const q = `SELECT ` + joinRequestColumns + ` FROM join_requests WHERE course_id = $1 AND id = $2`
	if err := repo.db.GetContext(ctx, &row, q, courseID, reqID); err != nil {
		return enroll.JoinRequest{}, trapNoRowsErr(err, enroll.ErrRequestNotFound)
	}
	return row.toJoinRequest(), nil
}

func (repo *enrollRepository) QueryJoinRequests(ctx context.Context, courseID, status string) ([]enroll.JoinRequest, error) {
	q := `SELECT ` + joinRequestColumns + ` FROM join_requests WHERE course_id = $1`
	args := []interface{}{courseID}
	if status != "" {
		q += ` AND status = $2`
		args = append(args, status)
	}
	q += ` ORDER BY created_at DESC`

	var rows []joinRequestRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying join requests")
	}
	reqs := make([]enroll.JoinRequest, len(rows))
	for i, row := range rows {
		reqs[i] = row.toJoinRequest()
	}
	return reqs, nil
}

func (repo *enrollRepository) UpdateJoinRequest(ctx context.Context, req enroll.JoinRequest) (enroll.JoinRequest, error) {
	const q = `
UPDATE join_requests
SET status = $2, processed_at = $3, processed_by = $4
WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, q, req.ID, req.Status, req.ProcessedAt, req.ProcessedBy)
	if err != nil {
		return enroll.JoinRequest{}, errors.Wrap(err, "updating join request")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return enroll.JoinRequest{}, enroll.ErrRequestNotFound
	}
	return req, nil
}
