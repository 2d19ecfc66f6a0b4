package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/aulacheck/aulacheck/core/attendance"
	"github.com/aulacheck/aulacheck/core/enroll"
	testutil "github.com/aulacheck/aulacheck/tests"
)

func Test_attendanceApi(t *testing.T) {
	crs := testutil.CreateCourse(t, courseRepo, teacher.ID, "Música 2B")
	ana := testutil.CreateStudent(t, studentRepo, "Ana", "García")
	ben := testutil.CreateStudent(t, studentRepo, "Benito", "Juárez")
	testutil.CreateEnrollment(t, enrollRepo, crs.ID, ana.ID, enroll.StatusActive)
	testutil.CreateEnrollment(t, enrollRepo, crs.ID, ben.ID, enroll.StatusActive)
	token := getToken(t, teacher)
	base := "/v1/courses/" + crs.ID

	// record a date
	req, rec := newAuthRequest(http.MethodPost, base+"/attendance", token, marchallObj(t, map[string]interface{}{
		"date": "2026-04-01",
		"records": []map[string]string{
			{"student_id": ana.ID, "status": "present"},
			{"student_id": ben.ID, "status": "absent"},
		},
	}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v, want 200; body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Success       bool    `json:"success"`
		AvgAttendance float64 `json:"avg_attendance"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	if !resp.Success || resp.AvgAttendance != 0.5 {
		t.Errorf("record response = %+v, want avg 0.5", resp)
	}

	// a bad status is rejected
	req, rec = newAuthRequest(http.MethodPost, base+"/attendance", token, marchallObj(t, map[string]interface{}{
		"date": "2026-04-01",
		"records": []map[string]string{
			{"student_id": ana.ID, "status": "sleeping"},
		},
	}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("code = %v, want 400 for unknown status", rec.Code)
	}

	// a suspension with reason "other" needs a note
	req, rec = newAuthRequest(http.MethodPost, base+"/attendance", token, marchallObj(t, map[string]string{
		"date":              "2026-04-02",
		"suspension_reason": "other",
	}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("code = %v, want 400 for other without note", rec.Code)
	}

	req, rec = newAuthRequest(http.MethodPost, base+"/attendance", token, marchallObj(t, map[string]string{
		"date":              "2026-04-02",
		"suspension_reason": "class_suspension",
	}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
	}

	// history, bounded
	req, rec = newAuthRequest(http.MethodGet, base+"/attendance?from=2026-04-02&to=2026-04-02", token)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
	}
	var recs []attendance.Record
	if err := json.Unmarshal(rec.Body.Bytes(), &recs); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	if len(recs) != 1 || !recs[0].IsMarker() {
		t.Errorf("history = %+v, want the marker row only", recs)
	}

	// matrix includes both dates, cells only for real statuses
	req, rec = newAuthRequest(http.MethodGet, base+"/attendance-records", token)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
	}
	var mtx attendance.Matrix
	if err := json.Unmarshal(rec.Body.Bytes(), &mtx); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	if len(mtx.Dates) != 2 {
		t.Errorf("matrix dates = %v, want 2", mtx.Dates)
	}
	if mtx.Records[ana.ID]["2026-04-01"] != "present" {
		t.Errorf("matrix cell = %q", mtx.Records[ana.ID]["2026-04-01"])
	}

	// delete one student's mark
	req, rec = newAuthRequest(http.MethodDelete, base+"/attendance?studentID="+ben.ID+"&date=2026-04-01", token)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
	}

	// missing query params
	req, rec = newAuthRequest(http.MethodDelete, base+"/attendance", token)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("code = %v, want 400 without studentID and date", rec.Code)
	}

	// deleting a nonexistent mark
	req, rec = newAuthRequest(http.MethodDelete, base+"/attendance?studentID="+ben.ID+"&date=2026-04-01", token)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("code = %v, want 404 for missing record", rec.Code)
	}
}

func Test_gradeApi(t *testing.T) {
	crs := testutil.CreateCourse(t, courseRepo, teacher.ID, "Inglés 3A")
	ana := testutil.CreateStudent(t, studentRepo, "Ana", "García")
	testutil.CreateEnrollment(t, enrollRepo, crs.ID, ana.ID, enroll.StatusActive)
	token := getToken(t, teacher)
	base := "/v1/courses/" + crs.ID

	req, rec := newAuthRequest(http.MethodPost, base+"/grades", token, marchallObj(t, map[string]interface{}{
		"student_id": ana.ID,
		"assessment": "Parcial 1",
		"date":       "2026-04-10",
		"score":      8,
		"weight":     2,
	}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("code = %v, want 201; body %s", rec.Code, rec.Body.String())
	}
	var createResp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &createResp); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	if createResp["average"] != 8.0 {
		t.Errorf("average = %v, want 8", createResp["average"])
	}

	// out-of-range score
	req, rec = newAuthRequest(http.MethodPost, base+"/grades", token, marchallObj(t, map[string]interface{}{
		"student_id": ana.ID,
		"assessment": "Parcial 2",
		"date":       "2026-05-10",
		"score":      11,
		"weight":     1,
	}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("code = %v, want 400 for score > 10", rec.Code)
	}

	// zero weight
	req, rec = newAuthRequest(http.MethodPost, base+"/grades", token, marchallObj(t, map[string]interface{}{
		"student_id": ana.ID,
		"assessment": "Parcial 2",
		"date":       "2026-05-10",
		"score":      7,
		"weight":     0,
	}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("code = %v, want 400 for zero weight", rec.Code)
	}

	// course-wide listing has no average key
	req, rec = newAuthRequest(http.MethodGet, base+"/grades", token)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
	}
	var listResp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &listResp); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	if _, ok := listResp["average"]; ok {
		t.Error("course-wide listing carries an average")
	}

	// narrowed to the student it does
	req, rec = newAuthRequest(http.MethodGet, base+"/grades?studentID="+ana.ID, token)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %v; body %s", rec.Code, rec.Body.String())
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listResp); err != nil {
		t.Fatalf("unmarshalling response: %v", err)
	}
	if listResp["average"] != 8.0 {
		t.Errorf("average = %v, want 8", listResp["average"])
	}
}
