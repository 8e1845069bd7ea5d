package academic

import "time"

// Enrollment statuses
const (
	EnrollmentActive    = "active"
	EnrollmentCompleted = "completed"
	EnrollmentDropped   = "dropped"
)

// GradeNotAvailable is reported for active courses without a grade record.
// Such courses contribute neither credits nor grade points to the CGPA.
const GradeNotAvailable = "N/A"

// GradePoints maps letter grades to the fixed 10-point scale.
var GradePoints = map[string]float64{
	"A+": 10, "A": 9, "A-": 8.5,
	"B+": 8, "B": 7, "B-": 6.5,
	"C+": 6, "C": 5, "C-": 4.5,
	"D": 4, "F": 0,
}

type Course struct {
	ID          string    `json:"id" db:"id"`
	Code        string    `json:"code" db:"code"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description,omitempty" db:"description"`
	Credits     int       `json:"credits" db:"credits"`
	Semester    string    `json:"semester" db:"semester"`
	Department  string    `json:"department" db:"department"`
	FacultyID   string    `json:"faculty_id,omitempty" db:"faculty_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"` // UTC
}

// Enrollment associates a student with a course for a given term.
type Enrollment struct {
	ID        string `json:"id" db:"id"`
	StudentID string `json:"student_id" db:"student_id"`
	Course    Course `json:"course" db:"course"`
	Semester  string `json:"semester" db:"semester"`
	Year      int    `json:"year" db:"year"`
	Status    string `json:"status" db:"status"`
}

// GradeRecord carries the letter grade of a (student, course, term).
type GradeRecord struct {
	ID        string `json:"id" db:"id"`
	StudentID string `json:"student_id" db:"student_id"`
	CourseID  string `json:"course_id" db:"course_id"`
	Semester  string `json:"semester" db:"semester"`
	Year      int    `json:"year" db:"year"`
	Grade     string `json:"grade" db:"grade"`
	Remarks   string `json:"remarks,omitempty" db:"remarks"`
}

// AssessmentResult is a student's marks for one assessment; the percentage is
// always derived, never stored.
type AssessmentResult struct {
	CourseID      string  `json:"course_id" db:"course_id"`
	Title         string  `json:"title" db:"title"`
	MarksObtained float64 `json:"marks_obtained" db:"marks_obtained"`
	MaxMarks      float64 `json:"max_marks" db:"max_marks"`
}

type (
	StudentSummary struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}

	AssessmentReport struct {
		Title         string  `json:"title"`
		MarksObtained float64 `json:"marks_obtained"`
		MaxMarks      float64 `json:"max_marks"`
		Percentage    float64 `json:"percentage"`
	}

	CourseReport struct {
		CourseCode           string             `json:"course_code"`
		CourseName           string             `json:"course_name"`
		Credits              int                `json:"credits"`
		Grade                string             `json:"grade"`
		GradePoint           float64            `json:"grade_point"`
		AttendancePercentage float64            `json:"attendance_percentage"`
		Assessments          []AssessmentReport `json:"assessments"`
	}

	PerformanceReport struct {
		Student      StudentSummary `json:"student"`
		CGPA         float64        `json:"cgpa"`
		TotalCredits int            `json:"total_credits"`
		Courses      []CourseReport `json:"courses"`
	}
)
