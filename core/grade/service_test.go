package grade_test

import (
	"context"
	"testing"

	"github.com/aulacheck/aulacheck/core/enroll"
	"github.com/aulacheck/aulacheck/core/grade"
	"github.com/aulacheck/aulacheck/core/stats"
	inmemdb "github.com/aulacheck/aulacheck/storage/database/inmem"
	testutil "github.com/aulacheck/aulacheck/tests"
)

const delta = 0.0001

func setup(t *testing.T) (*grade.Service, *inmemdb.DB) {
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open() failed: %v", err)
	}
	calc := stats.NewCalculator(inmemdb.NewStatsRepository(db))
	return grade.NewService(inmemdb.NewGradeRepository(db), calc), db
}

func TestService_Create(t *testing.T) {
	svc, db := setup(t)
	ctx := context.Background()

	crs := testutil.CreateCourse(t, inmemdb.NewCourseRepository(db), "teacher1", "Matemática 3A")
	ana := testutil.CreateStudent(t, inmemdb.NewStudentRepository(db), "Ana", "García")
	testutil.CreateEnrollment(t, inmemdb.NewEnrollRepository(db), crs.ID, ana.ID, enroll.StatusActive)

	grd, avg, err := svc.Create(ctx, crs.ID, grade.NewGrade{
		StudentID:  ana.ID,
		Assessment: "Parcial 1",
		Date:       "2026-04-10",
		Score:      8,
		Weight:     2,
	})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if grd.ID == "" || grd.CourseID != crs.ID {
		t.Errorf("Create() grade = %+v", grd)
	}
	if !avg.Valid || avg.Float64 != 8 {
		t.Errorf("Create() avg = %v, want 8", avg)
	}

	// the returned average reflects all grades so far
	_, avg, err = svc.Create(ctx, crs.ID, grade.NewGrade{
		StudentID:  ana.ID,
		Assessment: "TP 1",
		Date:       "2026-04-20",
		Score:      6,
		Weight:     1,
	})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	want := 22.0 / 3.0
	if !avg.Valid || avg.Float64 < want-delta || avg.Float64 > want+delta {
		t.Errorf("Create() avg = %v, want %v", avg, want)
	}
}

func TestService_Query(t *testing.T) {
	svc, db := setup(t)
	ctx := context.Background()

	crs := testutil.CreateCourse(t, inmemdb.NewCourseRepository(db), "teacher1", "Historia 2B")
	studentRepo := inmemdb.NewStudentRepository(db)
	enrollRepo := inmemdb.NewEnrollRepository(db)
	ana := testutil.CreateStudent(t, studentRepo, "Ana", "García")
	ben := testutil.CreateStudent(t, studentRepo, "Benito", "Juárez")
	testutil.CreateEnrollment(t, enrollRepo, crs.ID, ana.ID, enroll.StatusActive)
	testutil.CreateEnrollment(t, enrollRepo, crs.ID, ben.ID, enroll.StatusActive)

	gradeRepo := inmemdb.NewGradeRepository(db)
	testutil.CreateGrade(t, gradeRepo, crs.ID, ana.ID, "Parcial 1", 9, 1)
	testutil.CreateGrade(t, gradeRepo, crs.ID, ben.ID, "Parcial 1", 5, 1)

	// course-wide: all grades, no average
	grds, avg, err := svc.Query(ctx, crs.ID, "")
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	if len(grds) != 2 {
		t.Errorf("Query() = %d grades, want 2", len(grds))
	}
	if avg.Valid {
		t.Errorf("Query() course-wide avg = %v, want null", avg)
	}

	// narrowed to one student: their grades plus their average
	grds, avg, err = svc.Query(ctx, crs.ID, ana.ID)
	if err != nil {
		t.Fatalf("Query() failed: %v", err)
	}
	if len(grds) != 1 || grds[0].StudentID != ana.ID {
		t.Errorf("Query() = %+v, want ana's grade only", grds)
	}
	if !avg.Valid || avg.Float64 != 9 {
		t.Errorf("Query() avg = %v, want 9", avg)
	}
}
