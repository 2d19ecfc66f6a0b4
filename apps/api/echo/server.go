package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/aulacheck/aulacheck/core"
	"github.com/aulacheck/aulacheck/core/attendance"
	"github.com/aulacheck/aulacheck/core/course"
	"github.com/aulacheck/aulacheck/core/enroll"
	"github.com/aulacheck/aulacheck/core/grade"
	"github.com/aulacheck/aulacheck/core/report"
	"github.com/aulacheck/aulacheck/core/student"
)

type (
	Options struct {
		Address        string
		DisableReqLogs bool
		Logger         core.Logger

		CourseSvc     *course.Service
		StudentSvc    *student.Service
		EnrollSvc     *enroll.Service
		AttendanceSvc *attendance.Service
		GradeSvc      *grade.Service
		ReportGen     *report.Generator

		// SignalShutdown is called when a shutdown error bubbles up.
		SignalShutdown func()
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	if opts.SignalShutdown == nil {
		opts.SignalShutdown = func() {}
	}
	s := &server{
		opts: opts,
		app:  echo.New(),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(core.Conf.Debug || core.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.SignalShutdown)
	s.app.Debug = core.Conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(appJWTConfig)

	courses := v1.Group("/courses", jwt)
	detail := courses.Group("/:id", courseOwnerMiddleware(s.opts.CourseSvc))
	registerCourseAPI(courses, detail, s.opts.CourseSvc)
	registerEnrollAPI(detail, s.opts.EnrollSvc)
	registerAttendanceAPI(detail, s.opts.AttendanceSvc)
	registerGradeAPI(detail, s.opts.GradeSvc)
	registerReportAPI(detail, s.opts.ReportGen)

	registerStudentAPI(v1, jwt, s.opts.StudentSvc)
	registerJoinAPI(v1, s.opts.EnrollSvc, s.opts.CourseSvc)
}

func (s *server) Start() {
	s.app.Logger.Fatal(s.app.Start(s.opts.Address))
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to AulaCheck API!")
}
