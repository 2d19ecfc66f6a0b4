package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/aulacheck/aulacheck/core/attendance"
)

type attendanceRepository struct {
	db *sqlx.DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *sqlx.DB) *attendanceRepository {
	return &attendanceRepository{db: db}
}

type attendanceRow struct {
	ID               string      `db:"id"`
	CourseID         string      `db:"course_id"`
	StudentID        null.String `db:"student_id"`
	Date             time.Time   `db:"date"`
	Status           null.String `db:"status"`
	SuspensionReason null.String `db:"suspension_reason"`
	Note             null.String `db:"note"`
	CreatedAt        time.Time   `db:"created_at"`
}

func (r attendanceRow) toRecord() attendance.Record {
	return attendance.Record{
		ID:               r.ID,
		CourseID:         r.CourseID,
		StudentID:        r.StudentID,
		Date:             fmtDate(r.Date),
		Status:           r.Status,
		SuspensionReason: r.SuspensionReason,
		Note:             r.Note,
		CreatedAt:        r.CreatedAt,
	}
}

const attendanceColumns = `id, course_id, student_id, date, status, suspension_reason, note, created_at`

func (repo *attendanceRepository) UpsertRecords(ctx context.Context, recs []attendance.Record) error {
	const q = `
INSERT INTO attendance (id, course_id, student_id, date, status, suspension_reason, note, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (course_id, student_id, date)
DO UPDATE SET status = EXCLUDED.status, suspension_reason = EXCLUDED.suspension_reason,
              note = EXCLUDED.note, created_at = EXCLUDED.created_at`
	for _, rec := range recs {
		_, err := repo.db.ExecContext(ctx, q,
			newID(), rec.CourseID, rec.StudentID, rec.Date, rec.Status,
			rec.SuspensionReason, rec.Note, rec.CreatedAt,
		)
		if err != nil {
			return errors.Wrap(err, "upserting attendance record")
		}
	}
	return nil
}

func (repo *attendanceRepository) InsertMarker(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	rec.ID = newID()
	const q = `
INSERT INTO attendance (id, course_id, student_id, date, status, suspension_reason, note, created_at)
VALUES ($1, $2, NULL, $3, NULL, $4, $5, $6)`
	_, err := repo.db.ExecContext(ctx, q,
		rec.ID, rec.CourseID, rec.Date, rec.SuspensionReason, rec.Note, rec.CreatedAt,
	)
	if err != nil {
		return attendance.Record{}, errors.Wrap(err, "inserting suspension marker")
	}
	return rec, nil
}

func (repo *attendanceRepository) DeleteMarker(ctx context.Context, courseID, date string) error {
	const q = `DELETE FROM attendance WHERE course_id = $1 AND date = $2 AND student_id IS NULL`
	if _, err := repo.db.ExecContext(ctx, q, courseID, date); err != nil {
		return errors.Wrap(err, "deleting suspension marker")
	}
	return nil
}

func (repo *attendanceRepository) DeleteRecord(ctx context.Context, courseID, studentID, date string) error {
	const q = `DELETE FROM attendance WHERE course_id = $1 AND student_id = $2 AND date = $3`
	res, err := repo.db.ExecContext(ctx, q, courseID, studentID, date)
	if err != nil {
		return errors.Wrap(err, "deleting attendance record")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return attendance.ErrNotFound
	}
	return nil
}

func (repo *attendanceRepository) QueryRecords(ctx context.Context, courseID, from, to string) ([]attendance.Record, error) {
	q := `SELECT ` + attendanceColumns + ` FROM attendance WHERE course_id = $1`
	args := []interface{}{courseID}
	if from != "" {
		args = append(args, from)
		q += ` AND date >= $` + itoa(len(args))
	}
	if to != "" {
		args = append(args, to)
		q += ` AND date <= $` + itoa(len(args))
	}
	q += ` ORDER BY date DESC, student_id ASC`

	var rows []attendanceRow
	if err := repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying attendance")
	}
	recs := make([]attendance.Record, len(rows))
	for i, row := range rows {
		recs[i] = row.toRecord()
	}
	return recs, nil
}
