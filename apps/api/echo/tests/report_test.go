package tests

import (
	"net/http"
	"strings"
	"testing"

	"github.com/aulacheck/aulacheck/core/enroll"
	testutil "github.com/aulacheck/aulacheck/tests"
)

func Test_reportApi(t *testing.T) {
	crs := testutil.CreateCourse(t, courseRepo, teacher.ID, "Biología 5A")
	ana := testutil.CreateStudent(t, studentRepo, "Ana", "García")
	testutil.CreateEnrollment(t, enrollRepo, crs.ID, ana.ID, enroll.StatusActive)
	testutil.CreateAttendance(t, attendanceRepo, crs.ID, ana.ID, "2026-04-01", "present")
	token := getToken(t, teacher)

	req, rec := newAuthRequest(http.MethodGet, "/v1/courses/"+crs.ID+"/report", token)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v, want 200; body %s", rec.Code, rec.Body.String())
	}

	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Errorf("Content-Type = %q, want text/csv", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); cd != `attachment; filename="Biolog_a_5A_reporte.csv"` {
		t.Errorf("Content-Disposition = %q", cd)
	}

	body := rec.Body.String()
	if !strings.HasPrefix(body, "Institución: AulaCheck,Curso: Biología 5A,Fecha: ") {
		t.Errorf("unexpected header line: %q", strings.SplitN(body, "\n", 2)[0])
	}
	// defaults include stats and grades but not the per-date detail
	columns := strings.Split(body, "\n")[2]
	if !strings.Contains(columns, "Asistencia (%)") || !strings.Contains(columns, "Promedio") {
		t.Errorf("missing default columns: %q", columns)
	}
	if strings.Contains(columns, "01/04") {
		t.Errorf("per-date detail included by default: %q", columns)
	}

	// explicitly selecting the detail adds the date columns
	req, rec = newAuthRequest(http.MethodGet, "/v1/courses/"+crs.ID+"/report?attendanceDetails=true", token)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
	}
	columns = strings.Split(rec.Body.String(), "\n")[2]
	if !strings.Contains(columns, "01/04") {
		t.Errorf("date column missing: %q", columns)
	}
	// a narrowed selection drops everything else
	if strings.Contains(columns, "Promedio") {
		t.Errorf("unselected column included: %q", columns)
	}

	// other teachers cannot export
	req, rec = newAuthRequest(http.MethodGet, "/v1/courses/"+crs.ID+"/report", getToken(t, otherTeacher))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("code = %v, want 403", rec.Code)
	}
}

func Test_studentApi(t *testing.T) {
	crs := testutil.CreateCourse(t, courseRepo, teacher.ID, "Teatro 1A")
	ana := testutil.CreateStudent(t, studentRepo, "Ana", "García")
	testutil.CreateEnrollment(t, enrollRepo, crs.ID, ana.ID, enroll.StatusActive)
	token := getToken(t, teacher)

	req, rec := newAuthRequest(http.MethodGet, "/v1/students/"+ana.ID, token)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
	}

	// only teachers with an active enrollment in one of their courses may act
	req, rec = newAuthRequest(http.MethodGet, "/v1/students/"+ana.ID, getToken(t, otherTeacher))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("code = %v, want 403 for unrelated teacher", rec.Code)
	}

	// unknown students are indistinguishable from inaccessible ones
	req, rec = newAuthRequest(http.MethodGet, "/v1/students/nope", token)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("code = %v, want 403 for unknown student", rec.Code)
	}

	// update contact data
	req, rec = newAuthRequest(http.MethodPut, "/v1/students/"+ana.ID, token, marchallObj(t, map[string]string{
		"email":        "ana@test.ar",
		"phone_area":   "11",
		"phone_number": "4444-5555",
	}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "+5491144445555") {
		t.Errorf("updated student = %s", rec.Body.String())
	}

	// invalid email is rejected
	req, rec = newAuthRequest(http.MethodPut, "/v1/students/"+ana.ID, token, marchallObj(t, map[string]string{
		"email": "nope",
	}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("code = %v, want 400 for bad email", rec.Code)
	}
}
