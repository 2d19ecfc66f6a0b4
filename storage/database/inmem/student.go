package inmemdb

import (
	"context"

	"github.com/aulacheck/aulacheck/core/enroll"
	"github.com/aulacheck/aulacheck/core/student"
)

type studentRepository struct {
	db *DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) *studentRepository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CreateStudent(_ context.Context, stu student.Student) (student.Student, error) {
	repo.db.student.Lock()
	defer repo.db.student.Unlock()

	stu.ID = newID()
	repo.db.student.table[stu.ID] = &stu
	return stu, nil
}

func (repo *studentRepository) GetStudent(_ context.Context, id string) (student.Student, error) {
	repo.db.student.RLock()
	defer repo.db.student.RUnlock()

	if stu, ok := repo.db.student.table[id]; ok {
		return *stu, nil
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) GetStudents(_ context.Context, ids []string) ([]student.Student, error) {
	repo.db.student.RLock()
	defer repo.db.student.RUnlock()

	students := make([]student.Student, 0, len(ids))
	for _, id := range ids {
		if stu, ok := repo.db.student.table[id]; ok {
			students = append(students, *stu)
		}
	}
	return students, nil
}

func (repo *studentRepository) UpdateStudent(_ context.Context, stu student.Student) (student.Student, error) {
	repo.db.student.Lock()
	defer repo.db.student.Unlock()

	orig, ok := repo.db.student.table[stu.ID]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	orig.FirstName = stu.FirstName
	orig.LastName = stu.LastName
	orig.Email = stu.Email
	orig.Phone = stu.Phone
	orig.ExternalID = stu.ExternalID
	return *orig, nil
}

func (repo *studentRepository) OwnsActiveEnrollment(_ context.Context, studentID, principalID string) (bool, error) {
	repo.db.enrollment.RLock()
	defer repo.db.enrollment.RUnlock()
	repo.db.course.RLock()
	defer repo.db.course.RUnlock()

	for _, enr := range repo.db.enrollment.table {
		if enr.StudentID != studentID || enr.Status != enroll.StatusActive {
			continue
		}
		if crs, ok := repo.db.course.table[enr.CourseID]; ok && crs.OwnerID == principalID {
			return true, nil
		}
	}
	return false, nil
}
