package echoapi

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/am-3/campus/core/academic"
	"github.com/am-3/campus/core/attendance"
	"github.com/am-3/campus/core/user"
)

func Test_academicApi_performance(t *testing.T) {
	srv := setup(t)

	student := createUser(t, "Asha", "Verma", "asha@test.cd", user.RoleStudent, true)
	faculty := createUser(t, "Ben", "Okoro", "ben@test.cd", user.RoleFaculty, true)

	algo := academic.Course{ID: "crs-1", Code: "CS201", Name: "Algorithms", Credits: 4}
	dbms := academic.Course{ID: "crs-2", Code: "CS202", Name: "Databases", Credits: 3}
	testDB.AddEnrollment(academic.Enrollment{
		ID: "enr-1", StudentID: student.ID, Course: algo, Semester: "fall", Year: 2026, Status: academic.EnrollmentActive,
	})
	testDB.AddEnrollment(academic.Enrollment{
		ID: "enr-2", StudentID: student.ID, Course: dbms, Semester: "fall", Year: 2026, Status: academic.EnrollmentActive,
	})
	// CS201 graded, CS202 still ungraded
	testDB.AddGradeRecord(academic.GradeRecord{
		ID: "grd-1", StudentID: student.ID, CourseID: algo.ID, Semester: "fall", Year: 2026, Grade: "A",
	})
	testDB.AddAssessmentResult(student.ID, academic.AssessmentResult{
		CourseID: algo.ID, Title: "Midterm", MarksObtained: 42, MaxMarks: 50,
	})
	day := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	for i, status := range []string{attendance.StatusPresent, attendance.StatusPresent, attendance.StatusAbsent} {
		testDB.AddRecord(attendance.Record{
			ID: "rec-" + string(rune('a'+i)), StudentID: student.ID, CourseID: algo.ID,
			Date: day.AddDate(0, 0, i), Status: status,
		})
	}

	t.Run("Auth required", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/v1/student/performance")
		srv.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}, rec)
	})

	t.Run("Students only", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/student/performance", getToken(t, faculty))
		srv.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "only students can access performance reports"}),
		}, rec)
	})

	t.Run("Report", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/student/performance", getToken(t, student))
		srv.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}

		var report academic.PerformanceReport
		if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		if report.Student.ID != student.ID {
			t.Errorf("student id = %v; want %v", report.Student.ID, student.ID)
		}
		// only the graded course counts towards the CGPA
		if report.CGPA != 9 {
			t.Errorf("cgpa = %v; want 9", report.CGPA)
		}
		if report.TotalCredits != 4 {
			t.Errorf("total credits = %v; want 4", report.TotalCredits)
		}
		if len(report.Courses) != 2 {
			t.Fatalf("len(courses) = %v; want 2", len(report.Courses))
		}

		byCode := make(map[string]academic.CourseReport, len(report.Courses))
		for _, crs := range report.Courses {
			byCode[crs.CourseCode] = crs
		}
		if crs := byCode["CS201"]; crs.Grade != "A" || crs.GradePoint != 9 {
			t.Errorf("CS201 grade = %v (%v); want A (9)", crs.Grade, crs.GradePoint)
		}
		if crs := byCode["CS201"]; crs.AttendancePercentage != 66.67 {
			t.Errorf("CS201 attendance = %v; want 66.67", crs.AttendancePercentage)
		}
		if crs := byCode["CS201"]; len(crs.Assessments) != 1 || crs.Assessments[0].Percentage != 84 {
			t.Errorf("CS201 assessments = %+v; want one at 84%%", crs.Assessments)
		}
		if crs := byCode["CS202"]; crs.Grade != academic.GradeNotAvailable {
			t.Errorf("CS202 grade = %v; want %v", crs.Grade, academic.GradeNotAvailable)
		}
	})

	t.Run("No enrollments", func(t *testing.T) {
		fresher := createUser(t, "Noor", "Khan", "noor@test.cd", user.RoleStudent, true)
		req, rec := newAuthRequest(http.MethodGet, "/v1/student/performance", getToken(t, fresher))
		srv.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		var report academic.PerformanceReport
		if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		if report.CGPA != 0 || len(report.Courses) != 0 {
			t.Errorf("want empty report; got %+v", report)
		}
	})
}
