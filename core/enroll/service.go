package enroll

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/volatiletech/null/v8"

	"github.com/aulacheck/aulacheck/core"
	"github.com/aulacheck/aulacheck/core/course"
	"github.com/aulacheck/aulacheck/core/stats"
	"github.com/aulacheck/aulacheck/core/student"
)

var (
	ErrNotFound        = errors.New("enrollment not found")
	ErrRequestNotFound = errors.New("join request not found")
	ErrAlreadyEnrolled = errors.New("student already enrolled in this course")
	ErrRequestDone     = errors.New("join request already processed")
)

// similar full names on approval trigger a duplicate warning
const duplicateNameRatio = 0.85

type (
	Repository interface {
		CreateEnrollment(ctx context.Context, enr Enrollment) (Enrollment, error)
		// GetEnrollment returns the enrollment of any status for the pair,
		// or ErrNotFound.
		GetEnrollment(ctx context.Context, courseID, studentID string) (Enrollment, error)
		QueryEnrollments(ctx context.Context, courseID string, status string) ([]Enrollment, error) // status "" matches all
		UpdateEnrollment(ctx context.Context, enr Enrollment) (Enrollment, error)

		CreateJoinRequest(ctx context.Context, req JoinRequest) (JoinRequest, error)
		GetJoinRequest(ctx context.Context, courseID, reqID string) (JoinRequest, error) // ErrRequestNotFound
		QueryJoinRequests(ctx context.Context, courseID, status string) ([]JoinRequest, error)
		UpdateJoinRequest(ctx context.Context, req JoinRequest) (JoinRequest, error)
	}

	// CourseStore is the slice of the course storage this service needs.
	CourseStore interface {
		GetCourseByJoinCode(ctx context.Context, code string) (course.Course, error)
		// AdjustStudentCount shifts the cached student counter by delta.
		AdjustStudentCount(ctx context.Context, courseID string, delta int) error
	}

	Service struct {
		repo     Repository
		students student.Repository
		courses  CourseStore
		calc     *stats.Calculator
		mailSvc  core.EmailService
	}
)

func NewService(repo Repository, students student.Repository, courses CourseStore, calc *stats.Calculator, mailSvc core.EmailService) *Service {
	return &Service{repo: repo, students: students, courses: courses, calc: calc, mailSvc: mailSvc}
}

// Enroll adds a student to a course. When es.StudentID is empty a new Student
// is created from the remaining fields; otherwise the existing student is
// reused. An inactive enrollment is reactivated with a fresh enroll date and
// cleared withdrawal fields; an active one is rejected with
// ErrAlreadyEnrolled.
func (svc *Service) Enroll(ctx context.Context, courseID string, es EnrollStudent) (student.Student, error) {
	var std student.Student
	var err error
	if es.StudentID != "" {
		if std, err = svc.students.GetStudent(ctx, es.StudentID); err != nil {
			return student.Student{}, err
		}
	} else {
		if std, err = svc.createStudent(ctx, es.FirstName, es.LastName, es.Email, es.PhoneArea, es.PhoneLocal, es.ExternalID); err != nil {
			return student.Student{}, err
		}
	}

	now := time.Now().UTC()
	enr, err := svc.repo.GetEnrollment(ctx, courseID, std.ID)
	switch {
	case err == nil:
		if enr.Status == StatusActive {
			return student.Student{}, ErrAlreadyEnrolled
		}
		enr.Status = StatusActive
		enr.EnrollDate = now
		enr.WithdrawalDate = null.Time{}
		enr.WithdrawalReason = null.String{}
		enr.WithdrawalNote = null.String{}
		if _, err = svc.repo.UpdateEnrollment(ctx, enr); err != nil {
			return student.Student{}, err
		}
	case errors.Is(err, ErrNotFound):
		enr = Enrollment{CourseID: courseID, StudentID: std.ID, EnrollDate: now, Status: StatusActive}
		if _, err = svc.repo.CreateEnrollment(ctx, enr); err != nil {
			return student.Student{}, err
		}
	default:
		return student.Student{}, err
	}

	if err = svc.courses.AdjustStudentCount(ctx, courseID, 1); err != nil {
		return student.Student{}, err
	}
	return std, nil
}

// Roster returns the course's enrollments, optionally filtered by status.
func (svc *Service) Roster(ctx context.Context, courseID, status string) ([]Enrollment, error) {
	return svc.repo.QueryEnrollments(ctx, courseID, status)
}

// RosterEntry is a roster row: the student enriched with their enrollment
// state and per-student metrics. Withdrawn students carry zero attendance and
// a null average since the metrics only cover active enrollments.
type RosterEntry struct {
	student.Student
	AttendancePercentage float64      `json:"attendance_percentage"`
	GradeAverage         null.Float64 `json:"grade_average"`
	EnrollmentStatus     string       `json:"enrollment_status"`
	EnrollDate           time.Time    `json:"enroll_date"`
}

// RosterDetail returns every enrollment of the course, active and withdrawn,
// combined with student data and metrics.
func (svc *Service) RosterDetail(ctx context.Context, courseID string) ([]RosterEntry, error) {
	enrs, err := svc.repo.QueryEnrollments(ctx, courseID, "")
	if err != nil {
		return nil, err
	}
	if len(enrs) == 0 {
		return []RosterEntry{}, nil
	}

	ids := make([]string, len(enrs))
	byStudent := make(map[string]Enrollment, len(enrs))
	for i, enr := range enrs {
		ids[i] = enr.StudentID
		byStudent[enr.StudentID] = enr
	}
	stds, err := svc.students.GetStudents(ctx, ids)
	if err != nil {
		return nil, err
	}

	attendanceMap, err := svc.calc.AllStudentsAttendance(ctx, courseID)
	if err != nil {
		return nil, err
	}
	averages, err := svc.calc.AllStudentsAverages(ctx, courseID)
	if err != nil {
		return nil, err
	}

	entries := make([]RosterEntry, len(stds))
	for i, std := range stds {
		enr := byStudent[std.ID]
		entries[i] = RosterEntry{
			Student:              std,
			AttendancePercentage: attendanceMap[std.ID],
			GradeAverage:         averages[std.ID],
			EnrollmentStatus:     enr.Status,
			EnrollDate:           enr.EnrollDate,
		}
	}
	return entries, nil
}

// Withdraw deactivates a student's active enrollment, recording the withdrawal
// date and the optional reason/note. History rows are kept.
func (svc *Service) Withdraw(ctx context.Context, courseID, studentID string, wd Withdrawal) (Enrollment, error) {
	enr, err := svc.repo.GetEnrollment(ctx, courseID, studentID)
	if err != nil {
		return Enrollment{}, err
	}
	if enr.Status != StatusActive {
		return Enrollment{}, ErrNotFound
	}

	enr.Status = StatusInactive
	enr.WithdrawalDate = null.TimeFrom(time.Now().UTC())
	enr.WithdrawalReason = null.NewString(wd.Reason, wd.Reason != "")
	enr.WithdrawalNote = null.NewString(wd.Note, wd.Note != "")
	if enr, err = svc.repo.UpdateEnrollment(ctx, enr); err != nil {
		return Enrollment{}, err
	}

	if err = svc.courses.AdjustStudentCount(ctx, courseID, -1); err != nil {
		return Enrollment{}, err
	}
	return enr, nil
}

// SubmitJoinRequest redeems a join code and files a pending request. It
// returns course.ErrNotFound when the code does not match a course currently
// accepting requests.
func (svc *Service) SubmitJoinRequest(ctx context.Context, code string, ja JoinApplicant) (JoinRequest, error) {
	crs, err := svc.courses.GetCourseByJoinCode(ctx, code)
	if err != nil {
		return JoinRequest{}, err
	}

	req := JoinRequest{
		CourseID:   crs.ID,
		FirstName:  ja.FirstName,
		LastName:   ja.LastName,
		Email:      null.NewString(ja.Email, ja.Email != ""),
		ExternalID: null.NewString(ja.ExternalID, ja.ExternalID != ""),
		Status:     RequestPending,
		CreatedAt:  time.Now().UTC(),
	}
	if ja.PhoneArea != "" {
		req.Phone = null.StringFrom(student.FormatPhoneForStorage(student.DefaultCountryCode, ja.PhoneArea, ja.PhoneLocal))
	}
	return svc.repo.CreateJoinRequest(ctx, req)
}

// PendingRequests lists the course's unprocessed join requests.
func (svc *Service) PendingRequests(ctx context.Context, courseID string) ([]JoinRequest, error) {
	return svc.repo.QueryJoinRequests(ctx, courseID, RequestPending)
}

// Approve materializes a pending join request: it creates the Student and an
// active Enrollment, marks the request approved and notifies the applicant by
// email when one is present. The returned warning is non-empty when a student
// with a very similar name is already enrolled.
func (svc *Service) Approve(ctx context.Context, courseID, reqID, principalID string) (student.Student, string, error) {
	req, err := svc.repo.GetJoinRequest(ctx, courseID, reqID)
	if err != nil {
		return student.Student{}, "", err
	}
	if req.Status != RequestPending {
		return student.Student{}, "", ErrRequestDone
	}

	warning, err := svc.duplicateWarning(ctx, courseID, req.FirstName, req.LastName)
	if err != nil {
		return student.Student{}, "", err
	}

	std := student.Student{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Phone:      req.Phone,
		ExternalID: req.ExternalID,
		CreatedAt:  time.Now().UTC(),
	}
	if std, err = svc.students.CreateStudent(ctx, std); err != nil {
		return student.Student{}, "", err
	}

	enr := Enrollment{
		CourseID:   courseID,
		StudentID:  std.ID,
		EnrollDate: time.Now().UTC(),
		Status:     StatusActive,
	}
	if _, err = svc.repo.CreateEnrollment(ctx, enr); err != nil {
		return student.Student{}, "", err
	}

	req.Status = RequestApproved
	req.ProcessedAt = null.TimeFrom(time.Now().UTC())
	req.ProcessedBy = null.StringFrom(principalID)
	if _, err = svc.repo.UpdateJoinRequest(ctx, req); err != nil {
		return student.Student{}, "", err
	}

	if err = svc.courses.AdjustStudentCount(ctx, courseID, 1); err != nil {
		return student.Student{}, "", err
	}

	if req.Email.Valid {
		svc.mailSvc.SendMessages(&core.EmailMessage{
			To:      []mail.Address{{Name: std.FullName(), Address: req.Email.String}},
			Subject: "Tu solicitud fue aprobada",
			Body:    fmt.Sprintf("Hola %s, tu solicitud para unirte al curso fue aprobada. ¡Bienvenido/a!", req.FirstName),
		})
	}
	return std, warning, nil
}

// Reject marks a pending join request rejected. Nothing else is created.
func (svc *Service) Reject(ctx context.Context, courseID, reqID, principalID string) (JoinRequest, error) {
	req, err := svc.repo.GetJoinRequest(ctx, courseID, reqID)
	if err != nil {
		return JoinRequest{}, err
	}
	if req.Status != RequestPending {
		return JoinRequest{}, ErrRequestDone
	}
	req.Status = RequestRejected
	req.ProcessedAt = null.TimeFrom(time.Now().UTC())
	req.ProcessedBy = null.StringFrom(principalID)
	return svc.repo.UpdateJoinRequest(ctx, req)
}

func (svc *Service) createStudent(ctx context.Context, first, last, email, phoneArea, phoneLocal, externalID string) (student.Student, error) {
	std := student.Student{
		FirstName:  first,
		LastName:   last,
		Email:      null.NewString(email, email != ""),
		ExternalID: null.NewString(externalID, externalID != ""),
		CreatedAt:  time.Now().UTC(),
	}
	if phoneArea != "" {
		std.Phone = null.StringFrom(student.FormatPhoneForStorage(student.DefaultCountryCode, phoneArea, phoneLocal))
	}
	return svc.students.CreateStudent(ctx, std)
}

// duplicateWarning compares the applicant's full name against the names of the
// students already actively enrolled.
func (svc *Service) duplicateWarning(ctx context.Context, courseID, first, last string) (string, error) {
	enrs, err := svc.repo.QueryEnrollments(ctx, courseID, StatusActive)
	if err != nil {
		return "", err
	}
	if len(enrs) == 0 {
		return "", nil
	}

	ids := make([]string, len(enrs))
	for i, enr := range enrs {
		ids[i] = enr.StudentID
	}
	stds, err := svc.students.GetStudents(ctx, ids)
	if err != nil {
		return "", err
	}

	name := strings.ToLower(last + ", " + first)
	for _, std := range stds {
		other := strings.ToLower(std.FullName())
		matcher := difflib.NewMatcher(strings.Split(name, ""), strings.Split(other, ""))
		if matcher.QuickRatio() >= duplicateNameRatio {
			return fmt.Sprintf("a student named %q is already enrolled in this course", std.FullName()), nil
		}
	}
	return "", nil
}
