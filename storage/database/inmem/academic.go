package inmemdb

import (
	"context"
	"sort"

	"github.com/am-3/campus/core/academic"
	"github.com/am-3/campus/core/attendance"
)

type academicRepository struct {
	db *DB
}

var _ academic.Repository = (*academicRepository)(nil) // interface compliance check

func NewAcademicRepository(db *DB) *academicRepository {
	return &academicRepository{db: db}
}

func (repo *academicRepository) GetCourseByID(ctx context.Context, id string) (academic.Course, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if crs, ok := repo.db.courses[id]; ok {
		return *crs, nil
	}
	return academic.Course{}, academic.ErrCourseNotFound
}

func (repo *academicRepository) ActiveEnrollments(ctx context.Context, studentID string) ([]academic.Enrollment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	out := make([]academic.Enrollment, 0)
	for _, enr := range repo.db.enrollments {
		if enr.StudentID == studentID && enr.Status == academic.EnrollmentActive {
			e := *enr
			if crs, ok := repo.db.courses[e.Course.ID]; ok {
				e.Course = *crs
			}
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Course.Code < out[j].Course.Code })
	return out, nil
}

func (repo *academicRepository) GradeRecords(ctx context.Context, studentID string, courseIDs []string) (map[string]academic.GradeRecord, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	wanted := toSet(courseIDs)
	out := make(map[string]academic.GradeRecord)
	for _, rec := range repo.db.grades {
		if rec.StudentID != studentID || !wanted[rec.CourseID] {
			continue
		}
		// keep the latest grade per course
		if prev, ok := out[rec.CourseID]; ok {
			if rec.Year < prev.Year || (rec.Year == prev.Year && rec.Semester < prev.Semester) {
				continue
			}
		}
		out[rec.CourseID] = *rec
	}
	return out, nil
}

func (repo *academicRepository) AssessmentResults(ctx context.Context, studentID string, courseIDs []string) (map[string][]academic.AssessmentResult, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	wanted := toSet(courseIDs)
	out := make(map[string][]academic.AssessmentResult)
	for _, res := range repo.db.results[studentID] {
		if wanted[res.CourseID] {
			out[res.CourseID] = append(out[res.CourseID], res)
		}
	}
	return out, nil
}

func (repo *academicRepository) AttendanceRecords(ctx context.Context, studentID string, courseIDs []string) (map[string][]attendance.Record, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	wanted := toSet(courseIDs)
	out := make(map[string][]attendance.Record)
	for _, rec := range repo.db.records {
		if rec.StudentID == studentID && wanted[rec.CourseID] {
			out[rec.CourseID] = append(out[rec.CourseID], *rec)
		}
	}
	for _, records := range out {
		sort.Slice(records, func(i, j int) bool { return records[i].Date.Before(records[j].Date) })
	}
	return out, nil
}

func toSet(vals []string) map[string]bool {
	set := make(map[string]bool, len(vals))
	for _, v := range vals {
		set[v] = true
	}
	return set
}
