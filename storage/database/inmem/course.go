package inmemdb

import (
	"context"
	"sort"

	"github.com/aulacheck/aulacheck/core/course"
)

type courseRepository struct {
	db *DB
}

var _ course.Repository = (*courseRepository)(nil) // interface compliance check

func NewCourseRepository(db *DB) *courseRepository {
	return &courseRepository{db: db}
}

func (repo *courseRepository) CreateCourse(_ context.Context, crs course.Course) (course.Course, error) {
	repo.db.course.Lock()
	defer repo.db.course.Unlock()

	crs.ID = newID()
	repo.db.course.table[crs.ID] = &crs
	return crs, nil
}

func (repo *courseRepository) GetCourse(_ context.Context, id string) (course.Course, error) {
	repo.db.course.RLock()
	defer repo.db.course.RUnlock()

	if crs, ok := repo.db.course.table[id]; ok {
		return *crs, nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) QueryCoursesByOwner(_ context.Context, ownerID string) ([]course.Course, error) {
	repo.db.course.RLock()
	defer repo.db.course.RUnlock()

	courses := make([]course.Course, 0)
	for _, crs := range repo.db.course.table {
		if crs.OwnerID == ownerID {
			courses = append(courses, *crs)
		}
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].CreatedAt.After(courses[j].CreatedAt) })
	return courses, nil
}

func (repo *courseRepository) GetCourseByJoinCode(_ context.Context, code string) (course.Course, error) {
	repo.db.course.RLock()
	defer repo.db.course.RUnlock()

	for _, crs := range repo.db.course.table {
		if crs.AllowJoinRequests && crs.JoinCode.Valid && crs.JoinCode.String == code {
			return *crs, nil
		}
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) JoinCodeInUse(_ context.Context, code string) (bool, error) {
	repo.db.course.RLock()
	defer repo.db.course.RUnlock()

	for _, crs := range repo.db.course.table {
		if crs.JoinCode.Valid && crs.JoinCode.String == code {
			return true, nil
		}
	}
	return false, nil
}

func (repo *courseRepository) UpdateCourse(_ context.Context, crs course.Course) (course.Course, error) {
	repo.db.course.Lock()
	defer repo.db.course.Unlock()

	orig, ok := repo.db.course.table[crs.ID]
	if !ok {
		return course.Course{}, course.ErrNotFound
	}
	orig.Name = crs.Name
	orig.InstitutionName = crs.InstitutionName
	orig.StartDate = crs.StartDate
	orig.Description = crs.Description
	orig.AnnualClassCount = crs.AnnualClassCount
	return *orig, nil
}

func (repo *courseRepository) SetJoinCode(_ context.Context, id, code string) error {
	repo.db.course.Lock()
	defer repo.db.course.Unlock()

	crs, ok := repo.db.course.table[id]
	if !ok {
		return course.ErrNotFound
	}
	crs.JoinCode.SetValid(code)
	crs.AllowJoinRequests = true
	return nil
}

func (repo *courseRepository) SetAllowJoinRequests(_ context.Context, id string, allow bool) error {
	repo.db.course.Lock()
	defer repo.db.course.Unlock()

	crs, ok := repo.db.course.table[id]
	if !ok {
		return course.ErrNotFound
	}
	crs.AllowJoinRequests = allow
	return nil
}

func (repo *courseRepository) UpdateMeta(_ context.Context, id string, meta course.Meta) error {
	repo.db.course.Lock()
	defer repo.db.course.Unlock()

	crs, ok := repo.db.course.table[id]
	if !ok {
		return course.ErrNotFound
	}
	crs.Meta = meta
	return nil
}

func (repo *courseRepository) SetAvgAttendance(_ context.Context, id string, avg float64) error {
	repo.db.course.Lock()
	defer repo.db.course.Unlock()

	crs, ok := repo.db.course.table[id]
	if !ok {
		return course.ErrNotFound
	}
	crs.Meta.AvgAttendance = avg
	return nil
}

func (repo *courseRepository) AdjustStudentCount(_ context.Context, id string, delta int) error {
	repo.db.course.Lock()
	defer repo.db.course.Unlock()

	crs, ok := repo.db.course.table[id]
	if !ok {
		return course.ErrNotFound
	}
	if crs.Meta.StudentCount += delta; crs.Meta.StudentCount < 0 {
		crs.Meta.StudentCount = 0
	}
	return nil
}

func (repo *courseRepository) DeleteCourse(_ context.Context, id string) error {
	repo.db.course.Lock()
	delete(repo.db.course.table, id)
	repo.db.course.Unlock()

	// cascade, mirroring the FK constraints
	repo.db.enrollment.Lock()
	for k, enr := range repo.db.enrollment.table {
		if enr.CourseID == id {
			delete(repo.db.enrollment.table, k)
		}
	}
	repo.db.enrollment.Unlock()

	repo.db.joinRequest.Lock()
	for k, req := range repo.db.joinRequest.table {
		if req.CourseID == id {
			delete(repo.db.joinRequest.table, k)
		}
	}
	repo.db.joinRequest.Unlock()

	repo.db.attendance.Lock()
	for k, rec := range repo.db.attendance.table {
		if rec.CourseID == id {
			delete(repo.db.attendance.table, k)
		}
	}
	repo.db.attendance.Unlock()

	repo.db.grade.Lock()
	for k, grd := range repo.db.grade.table {
		if grd.CourseID == id {
			delete(repo.db.grade.table, k)
		}
	}
	repo.db.grade.Unlock()
	return nil
}
