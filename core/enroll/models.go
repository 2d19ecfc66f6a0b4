package enroll

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/aulacheck/aulacheck/core"
	"github.com/aulacheck/aulacheck/core/student"
)

// Enrollment statuses
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Withdrawal reasons
const (
	ReasonCourseChange = "course_change"
	ReasonSchoolChange = "school_change"
	ReasonOther        = "other"
)

// Join request statuses
const (
	RequestPending  = "pending"
	RequestApproved = "approved"
	RequestRejected = "rejected"
)

type (
	// Enrollment links a Student to a Course. Deactivation is a logical
	// delete: the row and the student's attendance/grade history survive a
	// withdrawal.
	Enrollment struct {
		ID               string      `json:"id"`
		CourseID         string      `json:"course_id"`
		StudentID        string      `json:"student_id"`
		EnrollDate       time.Time   `json:"enroll_date"` // UTC
		Status           string      `json:"status"`
		WithdrawalDate   null.Time   `json:"withdrawal_date,omitempty"`
		WithdrawalReason null.String `json:"withdrawal_reason,omitempty"`
		WithdrawalNote   null.String `json:"withdrawal_note,omitempty"`
	}

	// JoinRequest is a self-service application to join a course. No Student
	// or Enrollment row exists until it is approved.
	JoinRequest struct {
		ID          string      `json:"id"`
		CourseID    string      `json:"course_id"`
		FirstName   string      `json:"first_name"`
		LastName    string      `json:"last_name"`
		Email       null.String `json:"email,omitempty"`
		Phone       null.String `json:"phone,omitempty"` // stored format
		ExternalID  null.String `json:"external_id,omitempty"`
		Status      string      `json:"status"`
		CreatedAt   time.Time   `json:"created_at"` // UTC
		ProcessedAt null.Time   `json:"processed_at,omitempty"`
		ProcessedBy null.String `json:"processed_by,omitempty"`
	}
)

// EnrollStudent contains information needed to enroll a student directly
// (teacher-initiated): either an existing student id, or names to create a
// new Student.
type EnrollStudent struct {
	StudentID  string `json:"student_id"`
	FirstName  string `json:"first_name" validate:"required_without=StudentID"`
	LastName   string `json:"last_name" validate:"required_without=StudentID"`
	Email      string `json:"email"`
	PhoneArea  string `json:"phone_area"`
	PhoneLocal string `json:"phone_number"`
	ExternalID string `json:"external_id"`
}

func (es *EnrollStudent) Validate() error {
	es.StudentID = core.CleanString(es.StudentID)
	es.FirstName = core.CleanString(es.FirstName)
	es.LastName = core.CleanString(es.LastName)
	es.Email = core.CleanString(es.Email, true /* lower */)
	es.PhoneArea = core.CleanString(es.PhoneArea)
	es.PhoneLocal = core.CleanString(es.PhoneLocal)
	es.ExternalID = core.CleanString(es.ExternalID)

	if err := core.Validate.Struct(es); err != nil {
		return err
	}
	return validateContact(es.Email, es.PhoneArea, es.PhoneLocal)
}

// JoinApplicant is the anonymous payload submitted when redeeming a join code.
type JoinApplicant struct {
	FirstName  string `json:"first_name" validate:"required"`
	LastName   string `json:"last_name" validate:"required"`
	Email      string `json:"email"`
	PhoneArea  string `json:"phone_area"`
	PhoneLocal string `json:"phone_number"`
	ExternalID string `json:"external_id"`
}

func (ja *JoinApplicant) Validate() error {
	ja.FirstName = core.CleanString(ja.FirstName)
	ja.LastName = core.CleanString(ja.LastName)
	ja.Email = core.CleanString(ja.Email, true /* lower */)
	ja.PhoneArea = core.CleanString(ja.PhoneArea)
	ja.PhoneLocal = core.CleanString(ja.PhoneLocal)
	ja.ExternalID = core.CleanString(ja.ExternalID)

	if err := core.Validate.Struct(ja); err != nil {
		return err
	}
	return validateContact(ja.Email, ja.PhoneArea, ja.PhoneLocal)
}

// Withdrawal carries the optional reason/note recorded when a student is
// withdrawn from a course.
type Withdrawal struct {
	Reason string `json:"reason" validate:"omitempty,oneof=course_change school_change other"`
	Note   string `json:"note"`
}

func (w *Withdrawal) Validate() error {
	w.Reason = core.CleanString(w.Reason, true /* lower */)
	w.Note = core.CleanString(w.Note)
	return core.Validate.Struct(w)
}

func validateContact(email, phoneArea, phoneLocal string) error {
	if !student.IsValidEmail(email) {
		return core.NewValidationError(nil, core.FieldError{Field: "email", Error: "invalid email address"})
	}
	if !student.IsValidPhone(phoneArea, phoneLocal) {
		return core.NewValidationError(nil, core.FieldError{Field: "phone_number", Error: "invalid phone number"})
	}
	return nil
}
