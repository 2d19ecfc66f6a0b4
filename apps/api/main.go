package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	echoapi "github.com/aulacheck/aulacheck/apps/api/echo"
	"github.com/aulacheck/aulacheck/core"
	"github.com/aulacheck/aulacheck/core/attendance"
	"github.com/aulacheck/aulacheck/core/course"
	"github.com/aulacheck/aulacheck/core/enroll"
	"github.com/aulacheck/aulacheck/core/grade"
	"github.com/aulacheck/aulacheck/core/report"
	"github.com/aulacheck/aulacheck/core/stats"
	"github.com/aulacheck/aulacheck/core/student"
	emailsvc "github.com/aulacheck/aulacheck/services/email"
	logsvc "github.com/aulacheck/aulacheck/services/logger"
	"github.com/aulacheck/aulacheck/storage/database"
	sqlxrepos "github.com/aulacheck/aulacheck/storage/database/sqlx"
)

const shutdownTimeout = 5 * time.Second

func main() {
	// =========================================================================
	// Set up Dependencies

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		core.Conf,
	)
	logger.Enable(!core.Conf.Debug)

	// set up DB
	db, err := database.Open(core.Conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("opening database: %v", err), err)
	}
	defer func() { _ = db.Close() }()

	if err = database.Migrate(db.DB); err != nil {
		logger.Fatal(fmt.Sprintf("migrating database: %v", err), err)
	}

	// set up repos
	courseRepo := sqlxrepos.NewCourseRepository(db)
	studentRepo := sqlxrepos.NewStudentRepository(db)
	enrollRepo := sqlxrepos.NewEnrollRepository(db)
	attendanceRepo := sqlxrepos.NewAttendanceRepository(db)
	gradeRepo := sqlxrepos.NewGradeRepository(db)
	calc := stats.NewCalculator(sqlxrepos.NewStatsRepository(db))

	// set up services
	var mailSvc core.EmailService
	if core.Conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}
	courseSvc := course.NewService(courseRepo, calc)
	studentSvc := student.NewService(studentRepo)
	enrollSvc := enroll.NewService(enrollRepo, studentRepo, courseRepo, calc, mailSvc)
	attendanceSvc := attendance.NewService(attendanceRepo, courseRepo, calc)
	gradeSvc := grade.NewService(gradeRepo, calc)
	reportGen := report.NewGenerator(courseRepo, enrollRepo, studentRepo, attendanceSvc, calc)

	// =========================================================================
	// Start API Service

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	app := echoapi.NewServer(
		&echoapi.Options{
			Address:       core.Conf.Server.Address(),
			Logger:        logger,
			CourseSvc:     courseSvc,
			StudentSvc:    studentSvc,
			EnrollSvc:     enrollSvc,
			AttendanceSvc: attendanceSvc,
			GradeSvc:      gradeSvc,
			ReportGen:     reportGen,
			SignalShutdown: func() {
				shutdown <- syscall.SIGTERM
			},
		},
	)

	go app.Start()

	// =========================================================================
	// Shutdown

	sig := <-shutdown
	logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

	// give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err = app.Stop(ctx); err != nil {
		logger.Fatal(fmt.Sprintf("could not stop server gracefully: %v", err), err)
	}
	logger.Info("Application stopped")
}
