package database

import (
	"context"

	"github.com/pkg/errors"

	"github.com/am-3/campus/core"
	"github.com/am-3/campus/core/academic"
	"github.com/am-3/campus/core/attendance"
)

type academicRepository struct {
	db core.DB
}

var _ academic.Repository = (*academicRepository)(nil) // interface compliance check

func NewAcademicRepository(db core.DB) *academicRepository {
	return &academicRepository{db: db}
}

func (repo academicRepository) GetCourseByID(ctx context.Context, id string) (academic.Course, error) {
	var row courseRow
	query := `SELECT * FROM course WHERE id = $1`
	if err := repo.db.GetContext(ctx, &row, query, id); err != nil {
		return academic.Course{}, trapNoRowsErr(err, academic.ErrCourseNotFound, "getting course")
	}
	return row.toCourse(), nil
}

func (repo academicRepository) ActiveEnrollments(ctx context.Context, studentID string) ([]academic.Enrollment, error) {
	var rows []enrollmentRow
	query := `
SELECT e.id, e.student_id, e.semester, e.year, e.status,
       c.id          AS "course.id",
       c.code        AS "course.code",
       c.name        AS "course.name",
       c.description AS "course.description",
       c.credits     AS "course.credits",
       c.semester    AS "course.semester",
       c.department  AS "course.department",
       c.created_at  AS "course.created_at",
       c.updated_at  AS "course.updated_at"
FROM enrollment e
         JOIN course c ON c.id = e.course_id
WHERE e.student_id = $1 AND e.status = $2
ORDER BY c.code`
	if err := repo.db.SelectContext(ctx, &rows, query, studentID, academic.EnrollmentActive); err != nil {
		return nil, errors.Wrap(err, "querying enrollments")
	}
	enrollments := make([]academic.Enrollment, 0, len(rows))
	for _, row := range rows {
		enrollments = append(enrollments, row.Enrollment)
	}
	return enrollments, nil
}

// GradeRecords selects the most recent grade per course, ordered by
// (year, semester).
func (repo academicRepository) GradeRecords(ctx context.Context, studentID string, courseIDs []string) (map[string]academic.GradeRecord, error) {
	var records []academic.GradeRecord
	query := `
SELECT DISTINCT ON (course_id) *
FROM grade_record
WHERE student_id = $1 AND course_id = ANY ($2)
ORDER BY course_id, year DESC, semester DESC`
	if err := repo.db.SelectContext(ctx, &records, query, studentID, pqArray(courseIDs)); err != nil {
		return nil, errors.Wrap(err, "querying grade records")
	}
	out := make(map[string]academic.GradeRecord, len(records))
	for _, rec := range records {
		out[rec.CourseID] = rec
	}
	return out, nil
}

func (repo academicRepository) AssessmentResults(ctx context.Context, studentID string, courseIDs []string) (map[string][]academic.AssessmentResult, error) {
	var results []academic.AssessmentResult
	query := `
SELECT course_id, title, marks_obtained, max_marks
FROM assessment_result
WHERE student_id = $1 AND course_id = ANY ($2)
ORDER BY title`
	if err := repo.db.SelectContext(ctx, &results, query, studentID, pqArray(courseIDs)); err != nil {
		return nil, errors.Wrap(err, "querying assessment results")
	}
	out := make(map[string][]academic.AssessmentResult)
	for _, res := range results {
		out[res.CourseID] = append(out[res.CourseID], res)
	}
	return out, nil
}

func (repo academicRepository) AttendanceRecords(ctx context.Context, studentID string, courseIDs []string) (map[string][]attendance.Record, error) {
	var rows []recordRow
	query := `
SELECT *
FROM attendance_record
WHERE student_id = $1 AND course_id = ANY ($2)
ORDER BY date`
	if err := repo.db.SelectContext(ctx, &rows, query, studentID, pqArray(courseIDs)); err != nil {
		return nil, errors.Wrap(err, "querying attendance records")
	}
	out := make(map[string][]attendance.Record)
	for _, row := range rows {
		rec := row.toRecord()
		out[rec.CourseID] = append(out[rec.CourseID], rec)
	}
	return out, nil
}

// enrollmentRow flattens the enrollment join; faculty_id is not needed for
// performance reports.
type enrollmentRow struct {
	academic.Enrollment
}

// courseRow mirrors the course table with a nullable faculty_id column.
type courseRow struct {
	academic.Course
	FacultyID *string `db:"faculty_id"`
}

func (row courseRow) toCourse() academic.Course {
	crs := row.Course
	if row.FacultyID != nil {
		crs.FacultyID = *row.FacultyID
	}
	return crs
}
