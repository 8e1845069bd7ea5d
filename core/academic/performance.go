package academic

import (
	"math"

	"github.com/pkg/errors"

	"github.com/am-3/campus/core"
	"github.com/am-3/campus/core/attendance"
)

// ComputePerformance assembles a full performance report from already loaded
// data. Grades and results are keyed by course ID; attendance holds all of the
// student's records grouped per course. Ungraded courses report "N/A" and are
// excluded from the CGPA entirely, credits included.
func ComputePerformance(
	student StudentSummary,
	enrollments []Enrollment,
	grades map[string]GradeRecord,
	results map[string][]AssessmentResult,
	attRecords map[string][]attendance.Record,
) (*PerformanceReport, error) {
	report := &PerformanceReport{
		Student: student,
		Courses: make([]CourseReport, 0, len(enrollments)),
	}

	var totalPoints float64
	for _, enr := range enrollments {
		crs := enr.Course

		cr := CourseReport{
			CourseCode:           crs.Code,
			CourseName:           crs.Name,
			Credits:              crs.Credits,
			Grade:                GradeNotAvailable,
			AttendancePercentage: AttendancePercentage(attRecords[crs.ID]),
			Assessments:          make([]AssessmentReport, 0, len(results[crs.ID])),
		}

		if gr, ok := grades[crs.ID]; ok {
			point, known := GradePoints[gr.Grade]
			if !known {
				return nil, core.NewValidationError(errors.Errorf("unknown grade %q for course %s", gr.Grade, crs.Code))
			}
			cr.Grade = gr.Grade
			cr.GradePoint = point
			totalPoints += point * float64(crs.Credits)
			report.TotalCredits += crs.Credits
		}

		for _, res := range results[crs.ID] {
			pct, err := AssessmentPercentage(res)
			if err != nil {
				return nil, err
			}
			cr.Assessments = append(cr.Assessments, AssessmentReport{
				Title:         res.Title,
				MarksObtained: res.MarksObtained,
				MaxMarks:      res.MaxMarks,
				Percentage:    pct,
			})
		}

		report.Courses = append(report.Courses, cr)
	}

	if report.TotalCredits > 0 {
		report.CGPA = round2(totalPoints / float64(report.TotalCredits))
	}
	return report, nil
}

// AttendancePercentage returns present-over-total for one course's records.
// No records means 0, not an error.
func AttendancePercentage(records []attendance.Record) float64 {
	if len(records) == 0 {
		return 0
	}
	var present int
	for _, rec := range records {
		if rec.Status == attendance.StatusPresent {
			present++
		}
	}
	return round2(float64(present) / float64(len(records)) * 100)
}

// AssessmentPercentage derives the percentage for a single result.
func AssessmentPercentage(res AssessmentResult) (float64, error) {
	if res.MaxMarks == 0 {
		return 0, core.NewValidationError(errors.Errorf("assessment %q has max marks of zero", res.Title))
	}
	return round2(res.MarksObtained / res.MaxMarks * 100), nil
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
