package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/aulacheck/aulacheck/core/attendance"
	"github.com/aulacheck/aulacheck/core/course"
	"github.com/aulacheck/aulacheck/core/enroll"
	"github.com/aulacheck/aulacheck/core/grade"
	"github.com/aulacheck/aulacheck/core/student"
)

func CreateCourse(t *testing.T, repo course.Repository, ownerID, name string) course.Course {
	crs, err := repo.CreateCourse(context.Background(), course.Course{
		OwnerID:         ownerID,
		Name:            name,
		InstitutionName: "Escuela 11",
		StartDate:       "2026-03-01",
		CreatedAt:       time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return crs
}

func CreateStudent(t *testing.T, repo student.Repository, first, last string) student.Student {
	std, err := repo.CreateStudent(context.Background(), student.Student{
		FirstName: first,
		LastName:  last,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return std
}

func CreateEnrollment(t *testing.T, repo enroll.Repository, courseID, studentID, status string) enroll.Enrollment {
	enr, err := repo.CreateEnrollment(context.Background(), enroll.Enrollment{
		CourseID:   courseID,
		StudentID:  studentID,
		EnrollDate: time.Now().UTC(),
		Status:     status,
	})
	if err != nil {
		t.Fatalf("CreateEnrollment() failed: %v", err)
	}
	return enr
}

func CreateAttendance(t *testing.T, repo attendance.Repository, courseID, studentID, date, status string) {
	err := repo.UpsertRecords(context.Background(), []attendance.Record{{
		CourseID:  courseID,
		StudentID: null.StringFrom(studentID),
		Date:      date,
		Status:    null.StringFrom(status),
		CreatedAt: time.Now().UTC(),
	}})
	if err != nil {
		t.Fatalf("CreateAttendance() failed: %v", err)
	}
}

func CreateGrade(t *testing.T, repo grade.Repository, courseID, studentID, assessment string, score, weight float64) grade.Grade {
	grd, err := repo.CreateGrade(context.Background(), grade.Grade{
		CourseID:   courseID,
		StudentID:  studentID,
		Assessment: assessment,
		Date:       "2026-04-10",
		Score:      score,
		Weight:     weight,
		CreatedAt:  time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateGrade() failed: %v", err)
	}
	return grd
}
