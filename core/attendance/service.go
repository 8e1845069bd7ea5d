package attendance

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/am-3/campus/core"
	"github.com/am-3/campus/core/user"
)

var (
	ErrSessionNotFound = core.NewNotFoundError("attendance session not found")
	ErrRecordNotFound  = core.NewNotFoundError("attendance record not found")
	ErrAlreadyMarked   = core.NewConflictError("attendance already marked for today")
	ErrFaceNotEnrolled = core.NewValidationError(errors.New("face data not enrolled, register your face first"))
	ErrFaceMismatch    = core.NewValidationError(errors.New("face verification failed, please try again"))
	ErrSessionClosed   = core.NewValidationError(errors.New("session is not open for check-in"))
	ErrNotFacial       = core.NewValidationError(errors.New("this session does not use facial recognition"))
)

type (
	// FaceVerifier abstracts the face recognition microservice.
	FaceVerifier interface {
		// Verify compares a probe image against the enrolled reference and
		// reports whether they belong to the same person.
		Verify(ctx context.Context, referenceURL, imageURL string) (match bool, similarity float64, err error)
		// Detect fails when no usable face is present in the image.
		Detect(ctx context.Context, imageURL string) error
	}

	Repository interface {
		GetSessionByID(ctx context.Context, id string) (Session, error)
		// GetRecordOnDate returns the record for (student, course, date) or
		// ErrRecordNotFound.
		GetRecordOnDate(ctx context.Context, studentID, courseID string, date time.Time) (Record, error)
		CreateRecord(ctx context.Context, rec Record) (Record, error)
		// UpsertRecord creates or replaces the (student, course, date) record.
		UpsertRecord(ctx context.Context, rec Record) (Record, error)
		GetFaceProfile(ctx context.Context, userID string) (FaceProfile, error)
		UpsertFaceProfile(ctx context.Context, fp FaceProfile) (FaceProfile, error)
		// IsActivelyEnrolled reports whether the student has an active
		// enrollment in the course.
		IsActivelyEnrolled(ctx context.Context, studentID, courseID string) (bool, error)
		CreateLogEntry(ctx context.Context, entry LogEntry) error
	}

	Service struct {
		repo     Repository
		verifier FaceVerifier
	}
)

func NewService(repo Repository, verifier FaceVerifier) *Service {
	return &Service{repo: repo, verifier: verifier}
}

// CheckInWithFace marks the calling student present for an ongoing
// facial-recognition session after a 1:1 face verification.
func (svc *Service) CheckInWithFace(ctx context.Context, caller user.User, sessionID, imageURL string) (Record, error) {
	if !caller.IsStudent() {
		return Record{}, core.NewPermissionError("only students can mark attendance")
	}

	session, err := svc.repo.GetSessionByID(ctx, sessionID)
	if err != nil {
		return Record{}, err
	}
	if session.Status != SessionOngoing {
		return Record{}, ErrSessionClosed
	}
	if session.VerificationMethod != MethodFacialRecognition {
		return Record{}, ErrNotFacial
	}

	enrolled, err := svc.repo.IsActivelyEnrolled(ctx, caller.ID, session.CourseID)
	if err != nil {
		return Record{}, errors.Wrap(err, "checking enrollment")
	}
	if !enrolled {
		return Record{}, core.NewPermissionError("you are not enrolled in this course")
	}

	today := truncateToDay(time.Now().UTC())
	if _, err := svc.repo.GetRecordOnDate(ctx, caller.ID, session.CourseID, today); err == nil {
		return Record{}, ErrAlreadyMarked
	} else if err != ErrRecordNotFound {
		return Record{}, errors.Wrap(err, "checking existing record")
	}

	profile, err := svc.repo.GetFaceProfile(ctx, caller.ID)
	if err != nil || profile.Status != FaceProfileActive {
		return Record{}, ErrFaceNotEnrolled
	}
	if imageURL == "" {
		return Record{}, core.NewValidationError(errors.New("face image is required"))
	}

	match, similarity, err := svc.verifier.Verify(ctx, profile.ImageURL, imageURL)
	if err != nil {
		return Record{}, errors.Wrap(err, "verifying face")
	}
	if !match {
		svc.log(ctx, caller.ID, session, StatusAbsent, "face verification failed")
		return Record{}, ErrFaceMismatch
	}

	now := time.Now().UTC()
	rec := Record{
		StudentID:          caller.ID,
		CourseID:           session.CourseID,
		Date:               today,
		Status:             StatusPresent,
		VerificationMethod: MethodFacialRecognition,
		VerificationData:   []byte(fmt.Sprintf(`{"matched":true,"similarity":%.4f,"session_id":%q}`, similarity, session.ID)),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	rec, err = svc.repo.CreateRecord(ctx, rec)
	if err != nil {
		return Record{}, errors.Wrap(err, "creating attendance record")
	}

	svc.log(ctx, caller.ID, session, StatusPresent, "face verification succeeded")
	return rec, nil
}

// MarkManual records attendance on behalf of a student. Faculty/admin only.
func (svc *Service) MarkManual(ctx context.Context, caller user.User, studentID, courseID, dateStr, status string) (Record, error) {
	if !(caller.IsFaculty() || caller.IsAdmin()) {
		return Record{}, core.NewPermissionError("only faculty or admins can record attendance")
	}
	if !IsValidStatus(status) {
		return Record{}, core.NewValidationError(errors.New("invalid attendance status"),
			core.FieldError{Field: "status", Error: "must be one of present, absent, late, excused"})
	}
	date, err := time.Parse(DateFormat, dateStr)
	if err != nil {
		return Record{}, core.NewValidationError(errors.New("invalid date format, use YYYY-MM-DD"))
	}

	enrolled, err := svc.repo.IsActivelyEnrolled(ctx, studentID, courseID)
	if err != nil {
		return Record{}, errors.Wrap(err, "checking enrollment")
	}
	if !enrolled {
		return Record{}, core.NewValidationError(errors.New("student is not enrolled in this course"))
	}

	now := time.Now().UTC()
	rec := Record{
		StudentID:          studentID,
		CourseID:           courseID,
		Date:               truncateToDay(date),
		Status:             status,
		VerificationMethod: MethodManual,
		VerifiedByID:       caller.ID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	return svc.repo.UpsertRecord(ctx, rec)
}

// EnrollFace stores the calling student's face reference for later check-ins.
func (svc *Service) EnrollFace(ctx context.Context, caller user.User, imageURL string) (FaceProfile, error) {
	if !caller.IsStudent() {
		return FaceProfile{}, core.NewPermissionError("only students can enroll face data")
	}
	if imageURL == "" {
		return FaceProfile{}, core.NewValidationError(errors.New("face image is required"))
	}
	if err := svc.verifier.Detect(ctx, imageURL); err != nil {
		return FaceProfile{}, core.NewValidationError(errors.Wrap(err, "no usable face found in image"))
	}

	now := time.Now().UTC()
	return svc.repo.UpsertFaceProfile(ctx, FaceProfile{
		UserID:      caller.ID,
		ImageURL:    imageURL,
		Status:      FaceProfileActive,
		LastUpdated: now,
		CreatedAt:   now,
	})
}

func (svc *Service) log(ctx context.Context, studentID string, session Session, status, notes string) {
	_ = svc.repo.CreateLogEntry(ctx, LogEntry{
		StudentID: studentID,
		CourseID:  session.CourseID,
		SessionID: session.ID,
		Timestamp: time.Now().UTC(),
		Status:    status,
		Method:    MethodFacialRecognition,
		Notes:     notes,
	})
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
