package academic

import (
	"context"
	"testing"

	"github.com/pkg/errors"

	"github.com/am-3/campus/core/attendance"
	"github.com/am-3/campus/core/user"
)

type fakeRepo struct {
	enrollments []Enrollment
	grades      map[string]GradeRecord
	results     map[string][]AssessmentResult
	attRecords  map[string][]attendance.Record
}

func (r *fakeRepo) GetCourseByID(ctx context.Context, id string) (Course, error) {
	for _, enr := range r.enrollments {
		if enr.Course.ID == id {
			return enr.Course, nil
		}
	}
	return Course{}, ErrCourseNotFound
}

func (r *fakeRepo) ActiveEnrollments(ctx context.Context, studentID string) ([]Enrollment, error) {
	return r.enrollments, nil
}

func (r *fakeRepo) GradeRecords(ctx context.Context, studentID string, courseIDs []string) (map[string]GradeRecord, error) {
	return r.grades, nil
}

func (r *fakeRepo) AssessmentResults(ctx context.Context, studentID string, courseIDs []string) (map[string][]AssessmentResult, error) {
	return r.results, nil
}

func (r *fakeRepo) AttendanceRecords(ctx context.Context, studentID string, courseIDs []string) (map[string][]attendance.Record, error) {
	return r.attRecords, nil
}

func TestStudentPerformance(t *testing.T) {
	ctx := context.Background()

	t.Run("faculty forbidden", func(t *testing.T) {
		svc := NewService(&fakeRepo{})
		_, err := svc.StudentPerformance(ctx, user.User{ID: "f1", Role: user.RoleFaculty})
		if errors.Cause(err) != ErrNotStudent {
			t.Errorf("StudentPerformance() error = %v, want %v", err, ErrNotStudent)
		}
	})

	t.Run("no enrollments", func(t *testing.T) {
		svc := NewService(&fakeRepo{})
		report, err := svc.StudentPerformance(ctx, user.User{ID: "s1", Role: user.RoleStudent})
		if err != nil {
			t.Fatalf("StudentPerformance() error = %v", err)
		}
		if report.CGPA != 0 || len(report.Courses) != 0 {
			t.Errorf("report = %+v, want empty", report)
		}
	})

	t.Run("full report", func(t *testing.T) {
		repo := &fakeRepo{
			enrollments: []Enrollment{
				{Course: Course{ID: "c1", Code: "CS101", Credits: 4}, Status: EnrollmentActive},
			},
			grades: map[string]GradeRecord{"c1": {CourseID: "c1", Grade: "A+"}},
			attRecords: map[string][]attendance.Record{
				"c1": {{Status: attendance.StatusPresent}},
			},
		}
		svc := NewService(repo)
		report, err := svc.StudentPerformance(ctx, user.User{ID: "s1", FirstName: "Ada", Role: user.RoleStudent})
		if err != nil {
			t.Fatalf("StudentPerformance() error = %v", err)
		}
		if report.CGPA != 10 || report.TotalCredits != 4 {
			t.Errorf("CGPA, credits = %v, %d, want 10, 4", report.CGPA, report.TotalCredits)
		}
		if report.Courses[0].AttendancePercentage != 100 {
			t.Errorf("attendance = %v, want 100", report.Courses[0].AttendancePercentage)
		}
	})
}
