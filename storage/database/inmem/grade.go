package inmemdb

import (
	"context"
	"sort"

	"github.com/aulacheck/aulacheck/core/grade"
)

type gradeRepository struct {
	db *DB
}

var _ grade.Repository = (*gradeRepository)(nil) // interface compliance check

func NewGradeRepository(db *DB) *gradeRepository {
	return &gradeRepository{db: db}
}

func (repo *gradeRepository) CreateGrade(_ context.Context, grd grade.Grade) (grade.Grade, error) {
	repo.db.grade.Lock()
	defer repo.db.grade.Unlock()

	grd.ID = newID()
	repo.db.grade.table[grd.ID] = &grd
	return grd, nil
}

func (repo *gradeRepository) QueryGrades(_ context.Context, courseID, studentID string) ([]grade.Grade, error) {
	repo.db.grade.RLock()
	defer repo.db.grade.RUnlock()

	grds := make([]grade.Grade, 0)
	for _, grd := range repo.db.grade.table {
		if grd.CourseID != courseID {
			continue
		}
		if studentID != "" && grd.StudentID != studentID {
			continue
		}
		grds = append(grds, *grd)
	}
	sort.Slice(grds, func(i, j int) bool {
		if grds[i].Date != grds[j].Date {
			return grds[i].Date > grds[j].Date
		}
		return grds[i].CreatedAt.After(grds[j].CreatedAt)
	})
	return grds, nil
}
