package inmemdb

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/am-3/campus/core/academic"
	"github.com/am-3/campus/core/attendance"
)

type attendanceRepository struct {
	db *DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *DB) *attendanceRepository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) GetSessionByID(ctx context.Context, id string) (attendance.Session, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if s, ok := repo.db.sessions[id]; ok {
		return *s, nil
	}
	return attendance.Session{}, attendance.ErrSessionNotFound
}

func (repo *attendanceRepository) GetRecordOnDate(ctx context.Context, studentID, courseID string, date time.Time) (attendance.Record, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if rec := repo.findRecord(studentID, courseID, date); rec != nil {
		return *rec, nil
	}
	return attendance.Record{}, attendance.ErrRecordNotFound
}

func (repo *attendanceRepository) CreateRecord(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if repo.findRecord(rec.StudentID, rec.CourseID, rec.Date) != nil {
		return attendance.Record{}, attendance.ErrAlreadyMarked
	}
	rec.ID = uuid.New().String()
	repo.db.records[rec.ID] = &rec
	return rec, nil
}

func (repo *attendanceRepository) UpsertRecord(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if existing := repo.findRecord(rec.StudentID, rec.CourseID, rec.Date); existing != nil {
		rec.ID = existing.ID
		rec.CreatedAt = existing.CreatedAt
		repo.db.records[rec.ID] = &rec
		return rec, nil
	}
	rec.ID = uuid.New().String()
	repo.db.records[rec.ID] = &rec
	return rec, nil
}

func (repo *attendanceRepository) GetFaceProfile(ctx context.Context, userID string) (attendance.FaceProfile, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if fp, ok := repo.db.faceProfiles[userID]; ok {
		return *fp, nil
	}
	return attendance.FaceProfile{}, attendance.ErrFaceNotEnrolled
}

func (repo *attendanceRepository) UpsertFaceProfile(ctx context.Context, fp attendance.FaceProfile) (attendance.FaceProfile, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if existing, ok := repo.db.faceProfiles[fp.UserID]; ok {
		fp.ID = existing.ID
		fp.CreatedAt = existing.CreatedAt
	} else {
		fp.ID = uuid.New().String()
	}
	repo.db.faceProfiles[fp.UserID] = &fp
	return fp, nil
}

func (repo *attendanceRepository) IsActivelyEnrolled(ctx context.Context, studentID, courseID string) (bool, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	for _, enr := range repo.db.enrollments {
		if enr.StudentID == studentID && enr.Course.ID == courseID && enr.Status == academic.EnrollmentActive {
			return true, nil
		}
	}
	return false, nil
}

func (repo *attendanceRepository) CreateLogEntry(ctx context.Context, entry attendance.LogEntry) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	entry.ID = uuid.New().String()
	repo.db.logEntries = append(repo.db.logEntries, entry)
	return nil
}

// findRecord must be called with the lock held.
func (repo *attendanceRepository) findRecord(studentID, courseID string, date time.Time) *attendance.Record {
	for _, rec := range repo.db.records {
		if rec.StudentID == studentID && rec.CourseID == courseID &&
			rec.Date.Format(attendance.DateFormat) == date.Format(attendance.DateFormat) {
			return rec
		}
	}
	return nil
}
