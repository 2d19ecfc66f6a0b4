package report

import (
	"context"
	"testing"
	"time"

	"github.com/aulacheck/aulacheck/core/attendance"
	"github.com/aulacheck/aulacheck/core/enroll"
	"github.com/aulacheck/aulacheck/core/stats"
	inmemdb "github.com/aulacheck/aulacheck/storage/database/inmem"
	testutil "github.com/aulacheck/aulacheck/tests"
)

func setup(t *testing.T) (*Generator, *inmemdb.DB) {
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open() failed: %v", err)
	}
	calc := stats.NewCalculator(inmemdb.NewStatsRepository(db))
	attendanceSvc := attendance.NewService(inmemdb.NewAttendanceRepository(db), inmemdb.NewCourseRepository(db), calc)
	gen := NewGenerator(
		inmemdb.NewCourseRepository(db),
		inmemdb.NewEnrollRepository(db),
		inmemdb.NewStudentRepository(db),
		attendanceSvc,
		calc,
	)
	gen.now = func() time.Time { return time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC) }
	return gen, db
}

func TestGenerator_Generate(t *testing.T) {
	gen, db := setup(t)
	ctx := context.Background()

	courseRepo := inmemdb.NewCourseRepository(db)
	studentRepo := inmemdb.NewStudentRepository(db)
	enrollRepo := inmemdb.NewEnrollRepository(db)
	attendanceRepo := inmemdb.NewAttendanceRepository(db)
	gradeRepo := inmemdb.NewGradeRepository(db)

	crs := testutil.CreateCourse(t, courseRepo, "teacher1", "Matemática 3A")

	// created out of name order to exercise the sort
	zoe := testutil.CreateStudent(t, studentRepo, "Zoe", "Pérez")
	ana := testutil.CreateStudent(t, studentRepo, "Ana", "García")
	ben := testutil.CreateStudent(t, studentRepo, "Benito", "Juárez") // withdrawn, excluded
	testutil.CreateEnrollment(t, enrollRepo, crs.ID, zoe.ID, enroll.StatusActive)
	testutil.CreateEnrollment(t, enrollRepo, crs.ID, ana.ID, enroll.StatusActive)
	testutil.CreateEnrollment(t, enrollRepo, crs.ID, ben.ID, enroll.StatusInactive)

	testutil.CreateAttendance(t, attendanceRepo, crs.ID, ana.ID, "2026-04-01", attendance.StatusPresent)
	testutil.CreateAttendance(t, attendanceRepo, crs.ID, zoe.ID, "2026-04-01", attendance.StatusAbsent)
	testutil.CreateAttendance(t, attendanceRepo, crs.ID, ana.ID, "2026-04-02", attendance.StatusLate)
	testutil.CreateAttendance(t, attendanceRepo, crs.ID, zoe.ID, "2026-04-02", attendance.StatusPresent)
	testutil.CreateGrade(t, gradeRepo, crs.ID, ana.ID, "Parcial 1", 8, 1)

	rep, err := gen.Generate(ctx, crs.ID, Options{
		AttendanceStats:   true,
		Grades:            true,
		AttendanceDetails: true,
	})
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}

	want := "Institución: AulaCheck,Curso: Matemática 3A,Fecha: 15/06/2026\n" +
		"\n" +
		"Apellido,Nombre,Asistencia (%),Inasistencia (%),Promedio,01/04,02/04\n" +
		"\"García\",\"Ana\",100.00,0.00,8.00,P,T\n" +
		"\"Pérez\",\"Zoe\",50.00,50.00,N/A,A,P\n"
	if got := string(rep.Content); got != want {
		t.Errorf("Generate() content =\n%s\nwant:\n%s", got, want)
	}
	if rep.Filename != "Matem_tica_3A_reporte.csv" {
		t.Errorf("Filename = %q", rep.Filename)
	}
}

func TestGenerator_Generate_defaults(t *testing.T) {
	gen, db := setup(t)
	ctx := context.Background()

	crs := testutil.CreateCourse(t, inmemdb.NewCourseRepository(db), "teacher1", "Historia 2B")
	ana := testutil.CreateStudent(t, inmemdb.NewStudentRepository(db), "Ana", "García")
	testutil.CreateEnrollment(t, inmemdb.NewEnrollRepository(db), crs.ID, ana.ID, enroll.StatusActive)

	// no option selected: everything except the per-date detail
	rep, err := gen.Generate(ctx, crs.ID, Options{})
	if err != nil {
		t.Fatalf("Generate() failed: %v", err)
	}

	want := "Institución: AulaCheck,Curso: Historia 2B,Fecha: 15/06/2026\n" +
		"\n" +
		"Apellido,Nombre,Legajo/DNI,Email,Teléfono,Asistencia (%),Inasistencia (%),Promedio\n" +
		"\"García\",\"Ana\",\"\",\"\",\"\",0.00,100.00,N/A\n"
	if got := string(rep.Content); got != want {
		t.Errorf("Generate() content =\n%s\nwant:\n%s", got, want)
	}
}

func TestFilename(t *testing.T) {
	tests := []struct {
		name   string
		course string
		want   string
	}{
		{name: "plain", course: "Algebra1", want: "Algebra1_reporte.csv"},
		{name: "spaces and accents", course: "Matemática 3A", want: "Matem_tica_3A_reporte.csv"},
		{name: "punctuation", course: "5to \"B\" / Turno tarde", want: "5to__B____Turno_tarde_reporte.csv"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Filename(tt.course); got != tt.want {
				t.Errorf("Filename(%q) = %q, want %q", tt.course, got, tt.want)
			}
		})
	}
}

func TestHeaderDate(t *testing.T) {
	if got := headerDate("2026-04-01"); got != "01/04" {
		t.Errorf("headerDate() = %q, want 01/04", got)
	}
	if got := headerDate("garbage"); got != "garbage" {
		t.Errorf("headerDate() = %q, want passthrough", got)
	}
}

func TestStatusSymbol(t *testing.T) {
	tests := []struct {
		status string
		want   string
	}{
		{status: attendance.StatusPresent, want: "P"},
		{status: attendance.StatusAbsent, want: "A"},
		{status: attendance.StatusLate, want: "T"},
		{status: "", want: "-"},
	}
	for _, tt := range tests {
		if got := statusSymbol(tt.status); got != tt.want {
			t.Errorf("statusSymbol(%q) = %q, want %q", tt.status, got, tt.want)
		}
	}
}
