// Package inmemdb provides mutex-guarded in-memory repositories implementing
// the same interfaces as the sqlx layer. Used by tests and local tinkering;
// never in deployed builds.
package inmemdb

import (
	"sync"

	"github.com/google/uuid"

	"github.com/aulacheck/aulacheck/core/attendance"
	"github.com/aulacheck/aulacheck/core/course"
	"github.com/aulacheck/aulacheck/core/enroll"
	"github.com/aulacheck/aulacheck/core/grade"
	"github.com/aulacheck/aulacheck/core/student"
)

type (
	DB struct {
		course      *courseTable
		student     *studentTable
		enrollment  *enrollmentTable
		joinRequest *joinRequestTable
		attendance  *attendanceTable
		grade       *gradeTable
	}

	courseTable struct {
		sync.RWMutex
		table map[string]*course.Course
	}

	studentTable struct {
		sync.RWMutex
		table map[string]*student.Student
	}

	enrollmentTable struct {
		sync.RWMutex
		table map[string]*enroll.Enrollment
	}

	joinRequestTable struct {
		sync.RWMutex
		table map[string]*enroll.JoinRequest
	}

	attendanceTable struct {
		sync.RWMutex
		table map[string]*attendance.Record
	}

	gradeTable struct {
		sync.RWMutex
		table map[string]*grade.Grade
	}
)

func Open() (*DB, error) {
	db := &DB{
		course:      &courseTable{table: make(map[string]*course.Course)},
		student:     &studentTable{table: make(map[string]*student.Student)},
		enrollment:  &enrollmentTable{table: make(map[string]*enroll.Enrollment)},
		joinRequest: &joinRequestTable{table: make(map[string]*enroll.JoinRequest)},
		attendance:  &attendanceTable{table: make(map[string]*attendance.Record)},
		grade:       &gradeTable{table: make(map[string]*grade.Grade)},
	}
	return db, nil
}

func newID() string { return uuid.New().String() }
