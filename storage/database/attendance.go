package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/am-3/campus/core"
	"github.com/am-3/campus/core/academic"
	"github.com/am-3/campus/core/attendance"
)

// uniqueViolation is raised by the (student, course, date) unique constraint.
const uniqueViolation = "23505"

type attendanceRepository struct {
	db core.DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db core.DB) *attendanceRepository {
	return &attendanceRepository{db: db}
}

func (repo attendanceRepository) GetSessionByID(ctx context.Context, id string) (attendance.Session, error) {
	var row sessionRow
	query := `SELECT * FROM attendance_session WHERE id = $1`
	if err := repo.db.GetContext(ctx, &row, query, id); err != nil {
		return attendance.Session{}, trapNoRowsErr(err, attendance.ErrSessionNotFound, "getting session")
	}
	return row.toSession(), nil
}

func (repo attendanceRepository) GetRecordOnDate(ctx context.Context, studentID, courseID string, date time.Time) (attendance.Record, error) {
	var row recordRow
	query := `
SELECT * FROM attendance_record
WHERE student_id = $1 AND course_id = $2 AND date = $3::date`
	if err := repo.db.GetContext(ctx, &row, query, studentID, courseID, date); err != nil {
		return attendance.Record{}, trapNoRowsErr(err, attendance.ErrRecordNotFound, "getting attendance record")
	}
	return row.toRecord(), nil
}

func (repo attendanceRepository) CreateRecord(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	rec.ID = uuid.New().String()
	query := `
INSERT INTO attendance_record (id, student_id, course_id, date, status, verification_method, verification_data, verified_by, created_at, updated_at)
VALUES (:id, :student_id, :course_id, :date, :status, :verification_method, :verification_data, NULLIF(:verified_by, ''), :created_at, :updated_at)`
	query, args, err := sqlxNamed(query, rec)
	if err != nil {
		return attendance.Record{}, errors.Wrap(err, "binding attendance record")
	}
	if _, err = repo.db.ExecContext(ctx, query, args...); err != nil {
		if pqErr, ok := errors.Cause(err).(*pq.Error); ok && string(pqErr.Code) == uniqueViolation {
			return attendance.Record{}, attendance.ErrAlreadyMarked
		}
		return attendance.Record{}, errors.Wrap(err, "inserting attendance record")
	}
	return rec, nil
}

func (repo attendanceRepository) UpsertRecord(ctx context.Context, rec attendance.Record) (attendance.Record, error) {
	rec.ID = uuid.New().String()
	query := `
INSERT INTO attendance_record (id, student_id, course_id, date, status, verification_method, verification_data, verified_by, created_at, updated_at)
VALUES (:id, :student_id, :course_id, :date, :status, :verification_method, :verification_data, NULLIF(:verified_by, ''), :created_at, :updated_at)
ON CONFLICT (student_id, course_id, date) DO UPDATE
    SET status = EXCLUDED.status, verification_method = EXCLUDED.verification_method,
        verification_data = EXCLUDED.verification_data, verified_by = EXCLUDED.verified_by,
        updated_at = EXCLUDED.updated_at`
	query, args, err := sqlxNamed(query, rec)
	if err != nil {
		return attendance.Record{}, errors.Wrap(err, "binding attendance record")
	}
	if _, err = repo.db.ExecContext(ctx, query, args...); err != nil {
		return attendance.Record{}, errors.Wrap(err, "upserting attendance record")
	}
	return repo.GetRecordOnDate(ctx, rec.StudentID, rec.CourseID, rec.Date)
}

func (repo attendanceRepository) GetFaceProfile(ctx context.Context, userID string) (attendance.FaceProfile, error) {
	var fp attendance.FaceProfile
	query := `SELECT * FROM face_profile WHERE user_id = $1`
	if err := repo.db.GetContext(ctx, &fp, query, userID); err != nil {
		return attendance.FaceProfile{}, trapNoRowsErr(err, attendance.ErrFaceNotEnrolled, "getting face profile")
	}
	return fp, nil
}

func (repo attendanceRepository) UpsertFaceProfile(ctx context.Context, fp attendance.FaceProfile) (attendance.FaceProfile, error) {
	fp.ID = uuid.New().String()
	query := `
INSERT INTO face_profile (id, user_id, image_url, status, last_updated, created_at)
VALUES (:id, :user_id, :image_url, :status, :last_updated, :created_at)
ON CONFLICT (user_id) DO UPDATE
    SET image_url = EXCLUDED.image_url, status = EXCLUDED.status, last_updated = EXCLUDED.last_updated`
	query, args, err := sqlxNamed(query, fp)
	if err != nil {
		return attendance.FaceProfile{}, errors.Wrap(err, "binding face profile")
	}
	if _, err = repo.db.ExecContext(ctx, query, args...); err != nil {
		return attendance.FaceProfile{}, errors.Wrap(err, "upserting face profile")
	}
	return repo.GetFaceProfile(ctx, fp.UserID)
}

func (repo attendanceRepository) IsActivelyEnrolled(ctx context.Context, studentID, courseID string) (bool, error) {
	var enrolled bool
	query := `
SELECT EXISTS (
    SELECT 1 FROM enrollment WHERE student_id = $1 AND course_id = $2 AND status = $3
)`
	err := repo.db.GetContext(ctx, &enrolled, query, studentID, courseID, academic.EnrollmentActive)
	if err != nil {
		return false, errors.Wrap(err, "checking enrollment")
	}
	return enrolled, nil
}

func (repo attendanceRepository) CreateLogEntry(ctx context.Context, entry attendance.LogEntry) error {
	entry.ID = uuid.New().String()
	query := `
INSERT INTO attendance_log (id, student_id, course_id, session_id, timestamp, status, method, notes)
VALUES (:id, :student_id, :course_id, NULLIF(:session_id, ''), :timestamp, :status, :method, :notes)`
	query, args, err := sqlxNamed(query, entry)
	if err != nil {
		return errors.Wrap(err, "binding log entry")
	}
	if _, err = repo.db.ExecContext(ctx, query, args...); err != nil {
		return errors.Wrap(err, "inserting log entry")
	}
	return nil
}

// recordRow mirrors attendance_record with a nullable verified_by column.
type recordRow struct {
	attendance.Record
	VerifiedByID *string `db:"verified_by"`
}

func (row recordRow) toRecord() attendance.Record {
	rec := row.Record
	if row.VerifiedByID != nil {
		rec.VerifiedByID = *row.VerifiedByID
	}
	return rec
}

// sessionRow mirrors attendance_session with a nullable faculty_id column.
type sessionRow struct {
	attendance.Session
	FacultyID *string `db:"faculty_id"`
}

func (row sessionRow) toSession() attendance.Session {
	s := row.Session
	if row.FacultyID != nil {
		s.FacultyID = *row.FacultyID
	}
	return s
}
