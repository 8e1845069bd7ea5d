package booking

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/am-3/campus/core"
)

// Resource statuses
const (
	ResourceAvailable   = "available"
	ResourceBooked      = "booked"
	ResourceMaintenance = "maintenance"
)

// Booking statuses
const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCompleted = "completed"
)

// Expected wire formats for dates and times.
const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04"
)

// Business hours; slots are one hour wide, the last one ends at closing time.
const (
	BusinessOpenHour  = 9
	BusinessCloseHour = 18
)

type Resource struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Type        string    `json:"type" db:"type"`
	Location    string    `json:"location,omitempty" db:"location"`
	Capacity    int       `json:"capacity,omitempty" db:"capacity"`
	Description string    `json:"description,omitempty" db:"description"`
	Amenities   string    `json:"amenities,omitempty" db:"amenities"`
	Image       string    `json:"image,omitempty" db:"image"`
	Status      string    `json:"status" db:"status"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"` // UTC
}

// Booking holds a half-open reservation interval [StartTime, EndTime) on a
// Resource. Only approved bookings block availability and conflict checks.
type Booking struct {
	ID           string    `json:"id" db:"id"`
	ResourceID   string    `json:"resource_id" db:"resource_id"`
	UserID       string    `json:"user_id" db:"user_id"`
	StartTime    time.Time `json:"start_time" db:"start_time"`
	EndTime      time.Time `json:"end_time" db:"end_time"`
	Purpose      string    `json:"purpose,omitempty" db:"purpose"`
	NumAttendees int       `json:"num_attendees" db:"num_attendees"`
	Status       string    `json:"status" db:"status"`
	ApprovedByID string    `json:"approved_by,omitempty" db:"approved_by"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"` // UTC
}

// OverlapsInterval reports whether the booking intersects [start, end).
func (b Booking) OverlapsInterval(start, end time.Time) bool {
	return Overlaps(start, end, b.StartTime, b.EndTime)
}

// TimeSlot is a one-hour business-day slot offered for display.
type TimeSlot struct {
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	IsAvailable bool   `json:"is_available"`
}

// NewBooking contains information needed to request a new Booking.
type NewBooking struct {
	StartTime    string `json:"start_time" validate:"required"`
	EndTime      string `json:"end_time" validate:"required"`
	Purpose      string `json:"purpose"`
	NumAttendees int    `json:"num_attendees" validate:"omitempty,min=1"`
}

func (nb *NewBooking) Validate(validate *validator.Validate) error {
	nb.StartTime = core.CleanString(nb.StartTime)
	nb.EndTime = core.CleanString(nb.EndTime)
	nb.Purpose = core.CleanString(nb.Purpose)
	return validate.Struct(nb)
}

// AvailabilityReport is the per-date slot breakdown for a resource.
type AvailabilityReport struct {
	Resource  Resource   `json:"resource"`
	Date      string     `json:"date"`
	TimeSlots []TimeSlot `json:"time_slots"`
}
