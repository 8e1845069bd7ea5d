package academic

import (
	"context"

	"github.com/am-3/campus/core"
	"github.com/am-3/campus/core/attendance"
	"github.com/am-3/campus/core/user"
)

var (
	ErrCourseNotFound = core.NewNotFoundError("course not found")
	ErrNotStudent     = core.NewPermissionError("only students can access performance reports")
)

type Repository interface {
	GetCourseByID(ctx context.Context, id string) (Course, error)
	// ActiveEnrollments returns the student's enrollments with the course
	// embedded, ordered by course code.
	ActiveEnrollments(ctx context.Context, studentID string) ([]Enrollment, error)
	// GradeRecords returns the latest grade per course, keyed by course ID.
	GradeRecords(ctx context.Context, studentID string, courseIDs []string) (map[string]GradeRecord, error)
	AssessmentResults(ctx context.Context, studentID string, courseIDs []string) (map[string][]AssessmentResult, error)
	AttendanceRecords(ctx context.Context, studentID string, courseIDs []string) (map[string][]attendance.Record, error)
}

type ServiceInterface interface {
	StudentPerformance(ctx context.Context, caller user.User) (*PerformanceReport, error)
}

type Service struct {
	repo Repository
}

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// StudentPerformance builds the caller's performance report across their
// active enrollments.
func (svc *Service) StudentPerformance(ctx context.Context, caller user.User) (*PerformanceReport, error) {
	if !caller.IsStudent() {
		return nil, ErrNotStudent
	}

	enrollments, err := svc.repo.ActiveEnrollments(ctx, caller.ID)
	if err != nil {
		return nil, err
	}

	courseIDs := make([]string, 0, len(enrollments))
	for _, enr := range enrollments {
		courseIDs = append(courseIDs, enr.Course.ID)
	}

	student := StudentSummary{ID: caller.ID, Name: caller.FullName(), Email: caller.Email}
	if len(courseIDs) == 0 {
		return &PerformanceReport{Student: student, Courses: []CourseReport{}}, nil
	}

	grades, err := svc.repo.GradeRecords(ctx, caller.ID, courseIDs)
	if err != nil {
		return nil, err
	}
	results, err := svc.repo.AssessmentResults(ctx, caller.ID, courseIDs)
	if err != nil {
		return nil, err
	}
	attRecords, err := svc.repo.AttendanceRecords(ctx, caller.ID, courseIDs)
	if err != nil {
		return nil, err
	}

	return ComputePerformance(student, enrollments, grades, results, attRecords)
}
