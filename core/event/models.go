package event

import "time"

// Event statuses
const (
	StatusUpcoming  = "upcoming"
	StatusOngoing   = "ongoing"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

type Event struct {
	ID                   string     `json:"id" db:"id"`
	Title                string     `json:"title" db:"title"`
	Description          string     `json:"description,omitempty" db:"description"`
	Venue                string     `json:"venue" db:"venue"`
	StartTime            time.Time  `json:"start_time" db:"start_time"`
	EndTime              time.Time  `json:"end_time" db:"end_time"`
	MaxParticipants      *int       `json:"max_participants,omitempty" db:"max_participants"`
	RegistrationDeadline *time.Time `json:"registration_deadline,omitempty" db:"registration_deadline"`
	Status               string     `json:"status" db:"status"`
	OrganizerID          string     `json:"organizer_id,omitempty" db:"organizer_id"`
	CreatedAt            time.Time  `json:"created_at" db:"created_at"` // UTC
	UpdatedAt            time.Time  `json:"updated_at" db:"updated_at"` // UTC
}

// RegistrationOpen reports whether the deadline (if any) has not passed.
func (evt Event) RegistrationOpen(now time.Time) bool {
	return evt.RegistrationDeadline == nil || now.Before(*evt.RegistrationDeadline)
}

type Registration struct {
	ID           string    `json:"id" db:"id"`
	EventID      string    `json:"event_id" db:"event_id"`
	UserID       string    `json:"user_id" db:"user_id"`
	RegisteredAt time.Time `json:"registered_at" db:"registered_at"` // UTC
}
