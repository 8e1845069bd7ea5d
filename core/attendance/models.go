package attendance

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Record statuses
const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusLate    = "late"
	StatusExcused = "excused"
)

var AllStatuses = []string{StatusPresent, StatusAbsent, StatusLate, StatusExcused}

func IsValidStatus(status string) bool {
	for _, s := range AllStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Verification methods
const (
	MethodManual            = "manual"
	MethodFacialRecognition = "facial_recognition"
	MethodQRCode            = "qr_code"
)

// Session statuses
const (
	SessionScheduled = "scheduled"
	SessionOngoing   = "ongoing"
	SessionCompleted = "completed"
	SessionCancelled = "cancelled"
)

// Face profile statuses
const (
	FaceProfileActive   = "active"
	FaceProfileInactive = "inactive"
	FaceProfilePending  = "pending"
)

const DateFormat = "2006-01-02"

// Record is one attendance mark per (student, course, date).
type Record struct {
	ID                 string         `json:"id" db:"id"`
	StudentID          string         `json:"student_id" db:"student_id"`
	CourseID           string         `json:"course_id" db:"course_id"`
	Date               time.Time      `json:"date" db:"date"`
	Status             string         `json:"status" db:"status"`
	VerificationMethod string         `json:"verification_method,omitempty" db:"verification_method"`
	VerificationData   types.JSONText `json:"verification_data,omitempty" db:"verification_data"`
	VerifiedByID       string         `json:"verified_by,omitempty" db:"verified_by"`
	CreatedAt          time.Time      `json:"created_at" db:"created_at"` // UTC
	UpdatedAt          time.Time      `json:"updated_at" db:"updated_at"` // UTC
}

// Session is a class meeting during which attendance may be taken.
type Session struct {
	ID                 string    `json:"id" db:"id"`
	CourseID           string    `json:"course_id" db:"course_id"`
	FacultyID          string    `json:"faculty_id" db:"faculty_id"`
	StartTime          time.Time `json:"start_time" db:"start_time"`
	EndTime            time.Time `json:"end_time" db:"end_time"`
	Location           string    `json:"location,omitempty" db:"location"`
	VerificationMethod string    `json:"verification_method,omitempty" db:"verification_method"`
	Status             string    `json:"status" db:"status"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"` // UTC
}

// FaceProfile holds a user's enrolled face reference used for 1:1 verification.
type FaceProfile struct {
	ID          string    `json:"id" db:"id"`
	UserID      string    `json:"user_id" db:"user_id"`
	ImageURL    string    `json:"image_url" db:"image_url"`
	Status      string    `json:"status" db:"status"`
	LastUpdated time.Time `json:"last_updated" db:"last_updated"` // UTC
	CreatedAt   time.Time `json:"created_at" db:"created_at"`     // UTC
}

// LogEntry is an audit trail line for an attendance-taking attempt.
type LogEntry struct {
	ID        string    `json:"id" db:"id"`
	StudentID string    `json:"student_id" db:"student_id"`
	CourseID  string    `json:"course_id" db:"course_id"`
	SessionID string    `json:"session_id,omitempty" db:"session_id"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"` // UTC
	Status    string    `json:"status" db:"status"`
	Method    string    `json:"method" db:"method"`
	Notes     string    `json:"notes,omitempty" db:"notes"`
}
