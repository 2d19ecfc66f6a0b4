package attendance

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/aulacheck/aulacheck/core"
)

// Attendance statuses
const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusLate    = "late"
)

// Suspension reasons
const (
	SuspensionClass        = "class_suspension"
	SuspensionTeacherLeave = "teacher_leave"
	SuspensionOther        = "other"
)

type (
	// Record is one attendance row. A row with a null StudentID is a
	// suspension marker: it records that the class date was cancelled, not
	// that attendance went unrecorded. At most one marker exists per
	// (course, date), and at most one record per (course, student, date).
	Record struct {
		ID               string      `json:"id"`
		CourseID         string      `json:"course_id"`
		StudentID        null.String `json:"student_id,omitempty"`
		Date             string      `json:"date"` // YYYY-MM-DD
		Status           null.String `json:"status,omitempty"`
		SuspensionReason null.String `json:"suspension_reason,omitempty"`
		Note             null.String `json:"note,omitempty"`
		CreatedAt        time.Time   `json:"created_at"` // UTC
	}

	StudentStatus struct {
		StudentID string `json:"student_id" validate:"required"`
		Status    string `json:"status" validate:"required,oneof=present absent late"`
	}

	// BulkWrite is one submission of a class date: either per-student
	// statuses, or a suspension reason marking the whole date cancelled.
	BulkWrite struct {
		Date             string          `json:"date" validate:"required,dateonly"`
		Records          []StudentStatus `json:"records" validate:"required_without=SuspensionReason,dive"`
		SuspensionReason string          `json:"suspension_reason" validate:"omitempty,oneof=class_suspension teacher_leave other"`
		Note             string          `json:"note" validate:"required_if=SuspensionReason other"`
	}

	// Matrix is the read model for the attendance grid: the course's distinct
	// dates ascending and, per student, the status recorded on each date.
	// Marker rows contribute their date but no cell.
	Matrix struct {
		Dates   []string                     `json:"dates"`
		Records map[string]map[string]string `json:"records"` // studentID -> date -> status
	}
)

func (r Record) IsMarker() bool { return !r.StudentID.Valid }

func (bw *BulkWrite) Validate() error {
	bw.Date = core.CleanString(bw.Date)
	bw.SuspensionReason = core.CleanString(bw.SuspensionReason, true /* lower */)
	bw.Note = core.CleanString(bw.Note)
	for i := range bw.Records {
		bw.Records[i].StudentID = core.CleanString(bw.Records[i].StudentID)
		bw.Records[i].Status = core.CleanString(bw.Records[i].Status, true /* lower */)
	}
	return core.Validate.Struct(bw)
}
