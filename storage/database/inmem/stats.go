package inmemdb

import (
	"context"
	"sort"

	"github.com/aulacheck/aulacheck/core/attendance"
	"github.com/aulacheck/aulacheck/core/enroll"
	"github.com/aulacheck/aulacheck/core/stats"
)

type statsRepository struct {
	db *DB
}

var _ stats.Repository = (*statsRepository)(nil) // interface compliance check

func NewStatsRepository(db *DB) *statsRepository {
	return &statsRepository{db: db}
}

func (repo *statsRepository) DistinctDates(_ context.Context, courseID string) ([]string, error) {
	repo.db.attendance.RLock()
	defer repo.db.attendance.RUnlock()

	seen := make(map[string]bool)
	dates := make([]string, 0)
	for _, rec := range repo.db.attendance.table {
		if rec.CourseID == courseID && !seen[rec.Date] {
			seen[rec.Date] = true
			dates = append(dates, rec.Date)
		}
	}
	sort.Strings(dates)
	return dates, nil
}

func (repo *statsRepository) CountPresent(_ context.Context, courseID, studentID string) (int, error) {
	repo.db.attendance.RLock()
	defer repo.db.attendance.RUnlock()

	var count int
	for _, rec := range repo.db.attendance.table {
		if rec.CourseID != courseID || !rec.Status.Valid {
			continue
		}
		if studentID != "" && rec.StudentID.String != studentID {
			continue
		}
		if rec.Status.String == attendance.StatusPresent || rec.Status.String == attendance.StatusLate {
			count++
		}
	}
	return count, nil
}

func (repo *statsRepository) ActiveStudentIDs(_ context.Context, courseID string) ([]string, error) {
	repo.db.enrollment.RLock()
	defer repo.db.enrollment.RUnlock()

	ids := make([]string, 0)
	for _, enr := range repo.db.enrollment.table {
		if enr.CourseID == courseID && enr.Status == enroll.StatusActive {
			ids = append(ids, enr.StudentID)
		}
	}
	return ids, nil
}

func (repo *statsRepository) StudentGrades(_ context.Context, courseID, studentID string) ([]stats.WeightedGrade, error) {
	repo.db.grade.RLock()
	defer repo.db.grade.RUnlock()

	grades := make([]stats.WeightedGrade, 0)
	for _, grd := range repo.db.grade.table {
		if grd.CourseID != courseID {
			continue
		}
		if studentID != "" && grd.StudentID != studentID {
			continue
		}
		grades = append(grades, stats.WeightedGrade{StudentID: grd.StudentID, Score: grd.Score, Weight: grd.Weight})
	}
	return grades, nil
}
