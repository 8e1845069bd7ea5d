package inmemdb

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/am-3/campus/core/booking"
)

type bookingRepository struct {
	db *DB
}

var _ booking.Repository = (*bookingRepository)(nil) // interface compliance check

func NewBookingRepository(db *DB) *bookingRepository {
	return &bookingRepository{db: db}
}

func (repo *bookingRepository) GetResourceByID(ctx context.Context, id string) (booking.Resource, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if res, ok := repo.db.resources[id]; ok {
		return *res, nil
	}
	return booking.Resource{}, booking.ErrResourceNotFound
}

func (repo *bookingRepository) ApprovedBookingsOnDate(ctx context.Context, resourceID string, date time.Time) ([]booking.Booking, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()
	return repo.approvedOnDate(resourceID, date), nil
}

func (repo *bookingRepository) approvedOnDate(resourceID string, date time.Time) []booking.Booking {
	out := make([]booking.Booking, 0)
	for _, b := range repo.db.bookings {
		if b.ResourceID == resourceID && b.Status == booking.StatusApproved &&
			b.StartTime.Year() == date.Year() && b.StartTime.YearDay() == date.YearDay() {
			out = append(out, *b)
		}
	}
	return out
}

func (repo *bookingRepository) GetBookingByID(ctx context.Context, id string) (booking.Booking, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if b, ok := repo.db.bookings[id]; ok {
		return *b, nil
	}
	return booking.Booking{}, booking.ErrBookingNotFound
}

func (repo *bookingRepository) CreateBookingPending(ctx context.Context, b booking.Booking) (booking.Booking, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if repo.hasApprovedOverlap(b.ResourceID, b.StartTime, b.EndTime, "") {
		return booking.Booking{}, booking.ErrTimeConflict
	}

	b.ID = uuid.New().String()
	b.Status = booking.StatusPending
	repo.db.bookings[b.ID] = &b
	return b, nil
}

func (repo *bookingRepository) ApproveBooking(ctx context.Context, id, approverID string) (booking.Booking, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	b, ok := repo.db.bookings[id]
	if !ok {
		return booking.Booking{}, booking.ErrBookingNotFound
	}
	if repo.hasApprovedOverlap(b.ResourceID, b.StartTime, b.EndTime, b.ID) {
		return booking.Booking{}, booking.ErrTimeConflict
	}

	b.Status = booking.StatusApproved
	b.ApprovedByID = approverID
	b.UpdatedAt = time.Now().UTC()
	return *b, nil
}

func (repo *bookingRepository) RejectBooking(ctx context.Context, id, approverID string) (booking.Booking, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	b, ok := repo.db.bookings[id]
	if !ok {
		return booking.Booking{}, booking.ErrBookingNotFound
	}
	b.Status = booking.StatusRejected
	b.ApprovedByID = approverID
	b.UpdatedAt = time.Now().UTC()
	return *b, nil
}

// hasApprovedOverlap must be called with the write lock held.
func (repo *bookingRepository) hasApprovedOverlap(resourceID string, start, end time.Time, excludeID string) bool {
	for _, other := range repo.db.bookings {
		if other.ID != excludeID && other.ResourceID == resourceID &&
			other.Status == booking.StatusApproved && other.OverlapsInterval(start, end) {
			return true
		}
	}
	return false
}
