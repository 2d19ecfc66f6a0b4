package report

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/aulacheck/aulacheck/core/attendance"
	"github.com/aulacheck/aulacheck/core/course"
	"github.com/aulacheck/aulacheck/core/enroll"
	"github.com/aulacheck/aulacheck/core/stats"
	"github.com/aulacheck/aulacheck/core/student"
)

// Options selects the report columns. An empty selection falls back to every
// column except the per-date attendance detail.
type Options struct {
	DNI               bool `json:"dni"`
	Email             bool `json:"email"`
	Phone             bool `json:"phone"`
	Grades            bool `json:"grades"`
	AttendanceStats   bool `json:"attendance_stats"`
	AttendanceDetails bool `json:"attendance_details"`
}

func (o Options) IsEmpty() bool {
	return !o.DNI && !o.Email && !o.Phone && !o.Grades && !o.AttendanceStats && !o.AttendanceDetails
}

func (o Options) withDefaults() Options {
	if o.IsEmpty() {
		return Options{DNI: true, Email: true, Phone: true, Grades: true, AttendanceStats: true}
	}
	return o
}

// Report is a rendered CSV export.
type Report struct {
	Filename string
	Content  []byte
}

type (
	CourseGetter interface {
		GetCourse(ctx context.Context, id string) (course.Course, error)
	}

	Roster interface {
		QueryEnrollments(ctx context.Context, courseID, status string) ([]enroll.Enrollment, error)
	}

	StudentStore interface {
		GetStudents(ctx context.Context, ids []string) ([]student.Student, error)
	}

	AttendanceGrid interface {
		Matrix(ctx context.Context, courseID string) (attendance.Matrix, error)
	}

	Generator struct {
		courses  CourseGetter
		roster   Roster
		students StudentStore
		grid     AttendanceGrid
		calc     *stats.Calculator

		now func() time.Time
	}
)

func NewGenerator(courses CourseGetter, roster Roster, students StudentStore, grid AttendanceGrid, calc *stats.Calculator) *Generator {
	return &Generator{
		courses:  courses,
		roster:   roster,
		students: students,
		grid:     grid,
		calc:     calc,
		now:      time.Now,
	}
}

// Generate renders the course report for the active roster, one row per
// student sorted by last then first name.
func (g *Generator) Generate(ctx context.Context, courseID string, opts Options) (Report, error) {
	opts = opts.withDefaults()

	crs, err := g.courses.GetCourse(ctx, courseID)
	if err != nil {
		return Report{}, err
	}

	enrs, err := g.roster.QueryEnrollments(ctx, courseID, enroll.StatusActive)
	if err != nil {
		return Report{}, err
	}
	ids := make([]string, len(enrs))
	for i, enr := range enrs {
		ids[i] = enr.StudentID
	}
	stds, err := g.students.GetStudents(ctx, ids)
	if err != nil {
		return Report{}, err
	}
	sort.Slice(stds, func(i, j int) bool {
		li, lj := strings.ToLower(stds[i].LastName), strings.ToLower(stds[j].LastName)
		if li != lj {
			return li < lj
		}
		return strings.ToLower(stds[i].FirstName) < strings.ToLower(stds[j].FirstName)
	})

	var attendanceMap map[string]float64
	if opts.AttendanceStats {
		if attendanceMap, err = g.calc.AllStudentsAttendance(ctx, courseID); err != nil {
			return Report{}, err
		}
	}

	var averages map[string]null.Float64
	if opts.Grades {
		if averages, err = g.calc.AllStudentsAverages(ctx, courseID); err != nil {
			return Report{}, err
		}
	}

	var mtx attendance.Matrix
	if opts.AttendanceDetails {
		if mtx, err = g.grid.Matrix(ctx, courseID); err != nil {
			return Report{}, err
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Institución: AulaCheck,Curso: %s,Fecha: %s\n\n", crs.Name, g.now().Format("02/01/2006"))

	headers := []string{"Apellido", "Nombre"}
	if opts.DNI {
		headers = append(headers, "Legajo/DNI")
	}
	if opts.Email {
		headers = append(headers, "Email")
	}
	if opts.Phone {
		headers = append(headers, "Teléfono")
	}
	if opts.AttendanceStats {
		headers = append(headers, "Asistencia (%)", "Inasistencia (%)")
	}
	if opts.Grades {
		headers = append(headers, "Promedio")
	}
	if opts.AttendanceDetails {
		for _, date := range mtx.Dates {
			headers = append(headers, headerDate(date))
		}
	}
	b.WriteString(strings.Join(headers, ",") + "\n")

	for _, std := range stds {
		row := []string{quote(std.LastName), quote(std.FirstName)}
		if opts.DNI {
			row = append(row, quote(std.ExternalID.String))
		}
		if opts.Email {
			row = append(row, quote(std.Email.String))
		}
		if opts.Phone {
			row = append(row, quote(std.Phone.String))
		}
		if opts.AttendanceStats {
			pct := attendanceMap[std.ID] * 100
			row = append(row, fmt.Sprintf("%.2f", pct), fmt.Sprintf("%.2f", 100-pct))
		}
		if opts.Grades {
			if avg := averages[std.ID]; avg.Valid {
				row = append(row, fmt.Sprintf("%.2f", avg.Float64))
			} else {
				row = append(row, "N/A")
			}
		}
		if opts.AttendanceDetails {
			cells := mtx.Records[std.ID]
			for _, date := range mtx.Dates {
				row = append(row, statusSymbol(cells[date]))
			}
		}
		b.WriteString(strings.Join(row, ",") + "\n")
	}

	return Report{Filename: Filename(crs.Name), Content: []byte(b.String())}, nil
}

// Filename sanitizes the course name into a safe attachment filename.
func Filename(courseName string) string {
	var b strings.Builder
	for _, r := range courseName {
		if ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String() + "_reporte.csv"
}

func quote(s string) string { return `"` + s + `"` }

// headerDate turns YYYY-MM-DD into DD/MM.
func headerDate(date string) string {
	parts := strings.SplitN(date, "-", 3)
	if len(parts) != 3 {
		return date
	}
	return parts[2] + "/" + parts[1]
}

func statusSymbol(status string) string {
	switch status {
	case attendance.StatusPresent:
		return "P"
	case attendance.StatusAbsent:
		return "A"
	case attendance.StatusLate:
		return "T"
	default:
		return "-"
	}
}
