package tests

import (
	"bytes"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/aulacheck/aulacheck/apps/api/echo"
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
	inmemdb "github.com/aulacheck/aulacheck/storage/database/inmem"
)

var (
	db  *inmemdb.DB
	app Server

	courseRepo     course.Repository
	studentRepo    student.Repository
	enrollRepo     enroll.Repository
	attendanceRepo attendance.Repository
	gradeRepo      grade.Repository

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
	errNotFound     = httpErr{Error: "not found"}
)

func TestMain(m *testing.M) {
	// errors must render production-shaped bodies
	core.Conf.Debug = false
	core.Conf.TestMode = true

	var err error
	if db, err = inmemdb.Open(); err != nil {
		log.Fatalf("inmemdb.Open(): %v", err)
	}

	cRepo := inmemdb.NewCourseRepository(db)
	courseRepo = cRepo
	studentRepo = inmemdb.NewStudentRepository(db)
	enrollRepo = inmemdb.NewEnrollRepository(db)
	aRepo := inmemdb.NewAttendanceRepository(db)
	attendanceRepo = aRepo
	gradeRepo = inmemdb.NewGradeRepository(db)
	calc := stats.NewCalculator(inmemdb.NewStatsRepository(db))

	mailSvc := emailsvc.NewConsoleServiceMock()
	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags), core.Conf)
	logger.Enable(false)

	courseSvc := course.NewService(cRepo, calc)
	studentSvc := student.NewService(studentRepo)
	enrollSvc := enroll.NewService(enrollRepo, studentRepo, cRepo, calc, mailSvc)
	attendanceSvc := attendance.NewService(aRepo, cRepo, calc)
	gradeSvc := grade.NewService(gradeRepo, calc)
	reportGen := report.NewGenerator(cRepo, enrollRepo, studentRepo, attendanceSvc, calc)

	app = NewServer(
		&Options{
			DisableReqLogs: true,
			Logger:         logger,
			CourseSvc:      courseSvc,
			StudentSvc:     studentSvc,
			EnrollSvc:      enrollSvc,
			AttendanceSvc:  attendanceSvc,
			GradeSvc:       gradeSvc,
			ReportGen:      reportGen,
		},
	)

	os.Exit(m.Run())
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, prin core.Principal) string {
	claims := GetPrincipalClaims(prin)
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj(): %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
