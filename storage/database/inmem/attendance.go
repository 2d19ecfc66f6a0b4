package inmemdb

import (
	"context"
	"sort"

	"github.com/aulacheck/aulacheck/core/attendance"
)

type attendanceRepository struct {
	db *DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *DB) *attendanceRepository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) UpsertRecords(_ context.Context, recs []attendance.Record) error {
	repo.db.attendance.Lock()
	defer repo.db.attendance.Unlock()

	for _, rec := range recs {
		rec := rec
		if orig := repo.find(rec.CourseID, rec.StudentID.String, rec.Date); orig != nil {
			orig.Status = rec.Status
			orig.SuspensionReason = rec.SuspensionReason
			orig.Note = rec.Note
			orig.CreatedAt = rec.CreatedAt
			continue
		}
		rec.ID = newID()
		repo.db.attendance.table[rec.ID] = &rec
	}
	return nil
}

func (repo *attendanceRepository) InsertMarker(_ context.Context, rec attendance.Record) (attendance.Record, error) {
	repo.db.attendance.Lock()
	defer repo.db.attendance.Unlock()

	rec.ID = newID()
	repo.db.attendance.table[rec.ID] = &rec
	return rec, nil
}

func (repo *attendanceRepository) DeleteMarker(_ context.Context, courseID, date string) error {
	repo.db.attendance.Lock()
	defer repo.db.attendance.Unlock()

	for id, rec := range repo.db.attendance.table {
		if rec.CourseID == courseID && rec.Date == date && rec.IsMarker() {
			delete(repo.db.attendance.table, id)
		}
	}
	return nil
}

func (repo *attendanceRepository) DeleteRecord(_ context.Context, courseID, studentID, date string) error {
	repo.db.attendance.Lock()
	defer repo.db.attendance.Unlock()

	if rec := repo.find(courseID, studentID, date); rec != nil {
		delete(repo.db.attendance.table, rec.ID)
		return nil
	}
	return attendance.ErrNotFound
}

func (repo *attendanceRepository) QueryRecords(_ context.Context, courseID, from, to string) ([]attendance.Record, error) {
	repo.db.attendance.RLock()
	defer repo.db.attendance.RUnlock()

	recs := make([]attendance.Record, 0)
	for _, rec := range repo.db.attendance.table {
		if rec.CourseID != courseID {
			continue
		}
		if from != "" && rec.Date < from {
			continue
		}
		if to != "" && rec.Date > to {
			continue
		}
		recs = append(recs, *rec)
	}
	sort.Slice(recs, func(i, j int) bool {
		if recs[i].Date != recs[j].Date {
			return recs[i].Date > recs[j].Date
		}
		// markers sort after student rows, as with SQL NULLS LAST
		if recs[i].IsMarker() != recs[j].IsMarker() {
			return !recs[i].IsMarker()
		}
		return recs[i].StudentID.String < recs[j].StudentID.String
	})
	return recs, nil
}

// find assumes the caller holds the table lock. An empty studentID matches the
// suspension marker.
func (repo *attendanceRepository) find(courseID, studentID, date string) *attendance.Record {
	for _, rec := range repo.db.attendance.table {
		if rec.CourseID == courseID && rec.Date == date && rec.StudentID.String == studentID {
			return rec
		}
	}
	return nil
}
