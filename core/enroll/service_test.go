package enroll_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"

	"github.com/aulacheck/aulacheck/core/course"
	"github.com/aulacheck/aulacheck/core/enroll"
	"github.com/aulacheck/aulacheck/core/stats"
	emailsvc "github.com/aulacheck/aulacheck/services/email"
	inmemdb "github.com/aulacheck/aulacheck/storage/database/inmem"
	testutil "github.com/aulacheck/aulacheck/tests"
)

type fixture struct {
	svc       *enroll.Service
	courseSvc *course.Service
	db        *inmemdb.DB
}

func setup(t *testing.T) fixture {
	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open() failed: %v", err)
	}
	courseRepo := inmemdb.NewCourseRepository(db)
	calc := stats.NewCalculator(inmemdb.NewStatsRepository(db))
	svc := enroll.NewService(
		inmemdb.NewEnrollRepository(db),
		inmemdb.NewStudentRepository(db),
		courseRepo,
		calc,
		emailsvc.NewConsoleServiceMock(),
	)
	return fixture{svc: svc, courseSvc: course.NewService(courseRepo, calc), db: db}
}

func TestService_Enroll(t *testing.T) {
	fix := setup(t)
	ctx := context.Background()
	courseRepo := inmemdb.NewCourseRepository(fix.db)
	crs := testutil.CreateCourse(t, courseRepo, "teacher1", "Matemática 3A")

	// enrolling by names creates the student
	std, err := fix.svc.Enroll(ctx, crs.ID, enroll.EnrollStudent{FirstName: "Ana", LastName: "García"})
	if err != nil {
		t.Fatalf("Enroll() failed: %v", err)
	}
	if std.ID == "" {
		t.Fatal("Enroll() returned a student without id")
	}

	enrs, err := fix.svc.Roster(ctx, crs.ID, enroll.StatusActive)
	if err != nil {
		t.Fatalf("Roster() failed: %v", err)
	}
	if len(enrs) != 1 || enrs[0].StudentID != std.ID {
		t.Errorf("Roster() = %v, want one active enrollment for %s", enrs, std.ID)
	}

	got, err := courseRepo.GetCourse(ctx, crs.ID)
	if err != nil {
		t.Fatalf("GetCourse() failed: %v", err)
	}
	if got.Meta.StudentCount != 1 {
		t.Errorf("StudentCount = %d, want 1", got.Meta.StudentCount)
	}

	// enrolling the same student again is rejected
	if _, err = fix.svc.Enroll(ctx, crs.ID, enroll.EnrollStudent{StudentID: std.ID}); !errors.Is(err, enroll.ErrAlreadyEnrolled) {
		t.Errorf("Enroll() again error = %v, want ErrAlreadyEnrolled", err)
	}
}

func TestService_WithdrawAndReenroll(t *testing.T) {
	fix := setup(t)
	ctx := context.Background()
	courseRepo := inmemdb.NewCourseRepository(fix.db)
	crs := testutil.CreateCourse(t, courseRepo, "teacher1", "Historia 2B")

	std, err := fix.svc.Enroll(ctx, crs.ID, enroll.EnrollStudent{FirstName: "Benito", LastName: "Juárez"})
	if err != nil {
		t.Fatalf("Enroll() failed: %v", err)
	}

	enr, err := fix.svc.Withdraw(ctx, crs.ID, std.ID, enroll.Withdrawal{Reason: enroll.ReasonSchoolChange, Note: "se muda"})
	if err != nil {
		t.Fatalf("Withdraw() failed: %v", err)
	}
	if enr.Status != enroll.StatusInactive {
		t.Errorf("Status = %q, want inactive", enr.Status)
	}
	if !enr.WithdrawalDate.Valid || enr.WithdrawalReason.String != enroll.ReasonSchoolChange || enr.WithdrawalNote.String != "se muda" {
		t.Errorf("withdrawal fields not recorded: %+v", enr)
	}

	got, err := courseRepo.GetCourse(ctx, crs.ID)
	if err != nil {
		t.Fatalf("GetCourse() failed: %v", err)
	}
	if got.Meta.StudentCount != 0 {
		t.Errorf("StudentCount = %d, want 0 after withdrawal", got.Meta.StudentCount)
	}

	// the row survives as history
	all, err := fix.svc.Roster(ctx, crs.ID, "")
	if err != nil {
		t.Fatalf("Roster() failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("Roster() kept %d rows, want 1", len(all))
	}

	// withdrawing twice is a not-found
	if _, err = fix.svc.Withdraw(ctx, crs.ID, std.ID, enroll.Withdrawal{}); !errors.Is(err, enroll.ErrNotFound) {
		t.Errorf("Withdraw() again error = %v, want ErrNotFound", err)
	}

	// re-enrolling reactivates the same row and clears the withdrawal fields
	if _, err = fix.svc.Enroll(ctx, crs.ID, enroll.EnrollStudent{StudentID: std.ID}); err != nil {
		t.Fatalf("Enroll() after withdrawal failed: %v", err)
	}
	all, err = fix.svc.Roster(ctx, crs.ID, "")
	if err != nil {
		t.Fatalf("Roster() failed: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("Roster() = %d rows after re-enroll, want 1 (reactivated, not duplicated)", len(all))
	}
	if all[0].Status != enroll.StatusActive || all[0].WithdrawalDate.Valid || all[0].WithdrawalReason.Valid {
		t.Errorf("re-enrolled row = %+v, want active with cleared withdrawal fields", all[0])
	}
}

func TestService_joinRequestFlow(t *testing.T) {
	fix := setup(t)
	ctx := context.Background()
	courseRepo := inmemdb.NewCourseRepository(fix.db)
	crs := testutil.CreateCourse(t, courseRepo, "teacher1", "Física 4A")

	code, err := fix.courseSvc.GenerateJoinCode(ctx, crs.ID)
	if err != nil {
		t.Fatalf("GenerateJoinCode() failed: %v", err)
	}

	// bad code
	if _, err = fix.svc.SubmitJoinRequest(ctx, "WRONGCOD", enroll.JoinApplicant{FirstName: "Zoe", LastName: "Pérez"}); !errors.Is(err, course.ErrNotFound) {
		t.Errorf("SubmitJoinRequest() bad code error = %v, want course.ErrNotFound", err)
	}

	req, err := fix.svc.SubmitJoinRequest(ctx, code, enroll.JoinApplicant{
		FirstName: "Zoe",
		LastName:  "Pérez",
		Email:     "zoe@test.ar",
	})
	if err != nil {
		t.Fatalf("SubmitJoinRequest() failed: %v", err)
	}
	if req.Status != enroll.RequestPending || req.CourseID != crs.ID {
		t.Errorf("SubmitJoinRequest() = %+v, want pending request for the course", req)
	}

	pending, err := fix.svc.PendingRequests(ctx, crs.ID)
	if err != nil {
		t.Fatalf("PendingRequests() failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("PendingRequests() = %d, want 1", len(pending))
	}

	sentBefore := len(emailsvc.SentMessages)
	std, warning, err := fix.svc.Approve(ctx, crs.ID, req.ID, "teacher1")
	if err != nil {
		t.Fatalf("Approve() failed: %v", err)
	}
	if warning != "" {
		t.Errorf("Approve() warning = %q, want none", warning)
	}
	if std.FirstName != "Zoe" || !std.Email.Valid {
		t.Errorf("Approve() student = %+v", std)
	}

	// the approval created an active enrollment and bumped the counter
	enrs, err := fix.svc.Roster(ctx, crs.ID, enroll.StatusActive)
	if err != nil {
		t.Fatalf("Roster() failed: %v", err)
	}
	if len(enrs) != 1 || enrs[0].StudentID != std.ID {
		t.Errorf("Roster() after approval = %v", enrs)
	}
	got, err := courseRepo.GetCourse(ctx, crs.ID)
	if err != nil {
		t.Fatalf("GetCourse() failed: %v", err)
	}
	if got.Meta.StudentCount != 1 {
		t.Errorf("StudentCount = %d, want 1", got.Meta.StudentCount)
	}

	// the request is stamped
	processed, err := inmemdb.NewEnrollRepository(fix.db).GetJoinRequest(ctx, crs.ID, req.ID)
	if err != nil {
		t.Fatalf("GetJoinRequest() failed: %v", err)
	}
	if processed.Status != enroll.RequestApproved || !processed.ProcessedAt.Valid || processed.ProcessedBy.String != "teacher1" {
		t.Errorf("request after approval = %+v", processed)
	}

	// the applicant was notified
	if len(emailsvc.SentMessages) != sentBefore+1 {
		t.Errorf("sent %d emails, want 1", len(emailsvc.SentMessages)-sentBefore)
	} else if msg := emailsvc.SentMessages[len(emailsvc.SentMessages)-1]; msg.Subject != "Tu solicitud fue aprobada" {
		t.Errorf("email subject = %q", msg.Subject)
	}

	// processing twice is rejected
	if _, _, err = fix.svc.Approve(ctx, crs.ID, req.ID, "teacher1"); !errors.Is(err, enroll.ErrRequestDone) {
		t.Errorf("Approve() again error = %v, want ErrRequestDone", err)
	}
}

func TestService_Approve_duplicateWarning(t *testing.T) {
	fix := setup(t)
	ctx := context.Background()
	courseRepo := inmemdb.NewCourseRepository(fix.db)
	crs := testutil.CreateCourse(t, courseRepo, "teacher1", "Lengua 5B")

	if _, err := fix.svc.Enroll(ctx, crs.ID, enroll.EnrollStudent{FirstName: "Ana María", LastName: "García"}); err != nil {
		t.Fatalf("Enroll() failed: %v", err)
	}
	code, err := fix.courseSvc.GenerateJoinCode(ctx, crs.ID)
	if err != nil {
		t.Fatalf("GenerateJoinCode() failed: %v", err)
	}
	req, err := fix.svc.SubmitJoinRequest(ctx, code, enroll.JoinApplicant{FirstName: "Ana Maria", LastName: "Garcia"})
	if err != nil {
		t.Fatalf("SubmitJoinRequest() failed: %v", err)
	}

	_, warning, err := fix.svc.Approve(ctx, crs.ID, req.ID, "teacher1")
	if err != nil {
		t.Fatalf("Approve() failed: %v", err)
	}
	if warning == "" {
		t.Error("Approve() returned no duplicate-name warning")
	}
}

func TestService_Reject(t *testing.T) {
	fix := setup(t)
	ctx := context.Background()
	courseRepo := inmemdb.NewCourseRepository(fix.db)
	crs := testutil.CreateCourse(t, courseRepo, "teacher1", "Química 1A")

	code, err := fix.courseSvc.GenerateJoinCode(ctx, crs.ID)
	if err != nil {
		t.Fatalf("GenerateJoinCode() failed: %v", err)
	}
	req, err := fix.svc.SubmitJoinRequest(ctx, code, enroll.JoinApplicant{FirstName: "Zoe", LastName: "Pérez"})
	if err != nil {
		t.Fatalf("SubmitJoinRequest() failed: %v", err)
	}

	rejected, err := fix.svc.Reject(ctx, crs.ID, req.ID, "teacher1")
	if err != nil {
		t.Fatalf("Reject() failed: %v", err)
	}
	if rejected.Status != enroll.RequestRejected {
		t.Errorf("Status = %q, want rejected", rejected.Status)
	}

	// nothing was enrolled
	enrs, err := fix.svc.Roster(ctx, crs.ID, "")
	if err != nil {
		t.Fatalf("Roster() failed: %v", err)
	}
	if len(enrs) != 0 {
		t.Errorf("Roster() = %v, want empty after rejection", enrs)
	}

	// unknown request
	if _, err = fix.svc.Reject(ctx, crs.ID, "nope", "teacher1"); !errors.Is(err, enroll.ErrRequestNotFound) {
		t.Errorf("Reject() unknown error = %v, want ErrRequestNotFound", err)
	}
}

func TestService_RosterDetail(t *testing.T) {
	fix := setup(t)
	ctx := context.Background()
	courseRepo := inmemdb.NewCourseRepository(fix.db)
	gradeRepo := inmemdb.NewGradeRepository(fix.db)
	attendanceRepo := inmemdb.NewAttendanceRepository(fix.db)
	crs := testutil.CreateCourse(t, courseRepo, "teacher1", "Geografía 3C")

	ana, err := fix.svc.Enroll(ctx, crs.ID, enroll.EnrollStudent{FirstName: "Ana", LastName: "García"})
	if err != nil {
		t.Fatalf("Enroll() failed: %v", err)
	}
	ben, err := fix.svc.Enroll(ctx, crs.ID, enroll.EnrollStudent{FirstName: "Benito", LastName: "Juárez"})
	if err != nil {
		t.Fatalf("Enroll() failed: %v", err)
	}
	if _, err = fix.svc.Withdraw(ctx, crs.ID, ben.ID, enroll.Withdrawal{}); err != nil {
		t.Fatalf("Withdraw() failed: %v", err)
	}

	testutil.CreateAttendance(t, attendanceRepo, crs.ID, ana.ID, "2026-04-01", "present")
	testutil.CreateAttendance(t, attendanceRepo, crs.ID, ana.ID, "2026-04-02", "absent")
	testutil.CreateGrade(t, gradeRepo, crs.ID, ana.ID, "Parcial 1", 8, 1)

	entries, err := fix.svc.RosterDetail(ctx, crs.ID)
	if err != nil {
		t.Fatalf("RosterDetail() failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("RosterDetail() = %d rows, want 2 (withdrawn included)", len(entries))
	}

	byID := make(map[string]enroll.RosterEntry, len(entries))
	for _, e := range entries {
		byID[e.ID] = e
	}
	anaEntry := byID[ana.ID]
	if anaEntry.EnrollmentStatus != enroll.StatusActive || anaEntry.AttendancePercentage != 0.5 || !anaEntry.GradeAverage.Valid {
		t.Errorf("ana entry = %+v", anaEntry)
	}
	benEntry := byID[ben.ID]
	if benEntry.EnrollmentStatus != enroll.StatusInactive || benEntry.AttendancePercentage != 0 || benEntry.GradeAverage.Valid {
		t.Errorf("ben entry = %+v", benEntry)
	}
}
