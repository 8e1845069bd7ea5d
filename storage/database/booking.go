package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/am-3/campus/core"
	"github.com/am-3/campus/core/booking"
)

// exclusionViolation is raised by the approved-booking overlap constraint.
const exclusionViolation = "23P01"

type bookingRepository struct {
	db core.DB
}

var _ booking.Repository = (*bookingRepository)(nil) // interface compliance check

func NewBookingRepository(db core.DB) *bookingRepository {
	return &bookingRepository{db: db}
}

func (repo bookingRepository) GetResourceByID(ctx context.Context, id string) (booking.Resource, error) {
	var res booking.Resource
	query := `SELECT * FROM resource WHERE id = $1`
	if err := repo.db.GetContext(ctx, &res, query, id); err != nil {
		return booking.Resource{}, trapNoRowsErr(err, booking.ErrResourceNotFound, "getting resource")
	}
	return res, nil
}

func (repo bookingRepository) ApprovedBookingsOnDate(ctx context.Context, resourceID string, date time.Time) ([]booking.Booking, error) {
	return repo.approvedOnDate(ctx, repo.db, resourceID, date)
}

func (repo bookingRepository) approvedOnDate(ctx context.Context, exec core.DBExecutor, resourceID string, date time.Time) ([]booking.Booking, error) {
	var rows []bookingRow
	query := `
SELECT * FROM booking
WHERE resource_id = $1 AND status = $2 AND start_time::date = $3::date
ORDER BY start_time`
	if err := exec.SelectContext(ctx, &rows, query, resourceID, booking.StatusApproved, date); err != nil {
		return nil, errors.Wrap(err, "querying approved bookings")
	}
	return toBookings(rows), nil
}

func (repo bookingRepository) GetBookingByID(ctx context.Context, id string) (booking.Booking, error) {
	var row bookingRow
	query := `SELECT * FROM booking WHERE id = $1`
	if err := repo.db.GetContext(ctx, &row, query, id); err != nil {
		return booking.Booking{}, trapNoRowsErr(err, booking.ErrBookingNotFound, "getting booking")
	}
	return row.toBooking(), nil
}

// CreateBookingPending inserts a pending booking after checking the proposed
// interval against approved bookings. Both steps run inside one transaction
// holding the resource row lock, so concurrent requests serialize on it.
func (repo bookingRepository) CreateBookingPending(ctx context.Context, b booking.Booking) (booking.Booking, error) {
	err := repo.inTx(ctx, func(tx core.DBExecutor) error {
		if err := lockResource(ctx, tx, b.ResourceID); err != nil {
			return err
		}
		conflict, err := hasApprovedOverlap(ctx, tx, b.ResourceID, b.StartTime, b.EndTime, uuid.Nil.String())
		if err != nil {
			return err
		}
		if conflict {
			return booking.ErrTimeConflict
		}

		b.ID = uuid.New().String()
		b.Status = booking.StatusPending
		query := `
INSERT INTO booking (id, resource_id, user_id, start_time, end_time, purpose, num_attendees, status, approved_by, created_at, updated_at)
VALUES (:id, :resource_id, :user_id, :start_time, :end_time, :purpose, :num_attendees, :status, NULLIF(:approved_by, ''), :created_at, :updated_at)`
		query, args, err := sqlxNamed(query, b)
		if err != nil {
			return errors.Wrap(err, "binding booking")
		}
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			return errors.Wrap(err, "inserting booking")
		}
		return nil
	})
	if err != nil {
		return booking.Booking{}, err
	}
	return b, nil
}

func (repo bookingRepository) ApproveBooking(ctx context.Context, id, approverID string) (booking.Booking, error) {
	var approved booking.Booking
	err := repo.inTx(ctx, func(tx core.DBExecutor) error {
		var row bookingRow
		if err := tx.GetContext(ctx, &row, `SELECT * FROM booking WHERE id = $1`, id); err != nil {
			return trapNoRowsErr(err, booking.ErrBookingNotFound, "getting booking")
		}
		b := row.toBooking()

		if err := lockResource(ctx, tx, b.ResourceID); err != nil {
			return err
		}
		conflict, err := hasApprovedOverlap(ctx, tx, b.ResourceID, b.StartTime, b.EndTime, b.ID)
		if err != nil {
			return err
		}
		if conflict {
			return booking.ErrTimeConflict
		}

		query := `
UPDATE booking SET status = $1, approved_by = $2, updated_at = $3 WHERE id = $4`
		if _, err = tx.ExecContext(ctx, query, booking.StatusApproved, approverID, time.Now().UTC(), id); err != nil {
			if pqErr, ok := errors.Cause(err).(*pq.Error); ok && string(pqErr.Code) == exclusionViolation {
				return booking.ErrTimeConflict
			}
			return errors.Wrap(err, "approving booking")
		}

		b.Status = booking.StatusApproved
		b.ApprovedByID = approverID
		approved = b
		return nil
	})
	if err != nil {
		return booking.Booking{}, err
	}
	return approved, nil
}

func (repo bookingRepository) RejectBooking(ctx context.Context, id, approverID string) (booking.Booking, error) {
	query := `
UPDATE booking SET status = $1, approved_by = $2, updated_at = $3 WHERE id = $4`
	if _, err := repo.db.ExecContext(ctx, query, booking.StatusRejected, approverID, time.Now().UTC(), id); err != nil {
		return booking.Booking{}, errors.Wrap(err, "rejecting booking")
	}
	return repo.GetBookingByID(ctx, id)
}

func (repo bookingRepository) inTx(ctx context.Context, fn func(tx core.DBExecutor) error) error {
	tx, err := repo.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	if err = fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}

func lockResource(ctx context.Context, exec core.DBExecutor, resourceID string) error {
	var id string
	query := `SELECT id FROM resource WHERE id = $1 FOR UPDATE`
	if err := exec.GetContext(ctx, &id, query, resourceID); err != nil {
		return trapNoRowsErr(err, booking.ErrResourceNotFound, "locking resource")
	}
	return nil
}

func hasApprovedOverlap(ctx context.Context, exec core.DBExecutor, resourceID string, start, end time.Time, excludeID string) (bool, error) {
	var conflict bool
	query := `
SELECT EXISTS (
    SELECT 1 FROM booking
    WHERE resource_id = $1 AND status = $2
      AND start_time < $3 AND end_time > $4
      AND id != $5
)`
	err := exec.GetContext(ctx, &conflict, query, resourceID, booking.StatusApproved, end, start, excludeID)
	if err != nil {
		return false, errors.Wrap(err, "checking booking conflicts")
	}
	return conflict, nil
}

// bookingRow mirrors the booking table with a nullable approved_by column.
type bookingRow struct {
	booking.Booking
	ApprovedByID *string `db:"approved_by"`
}

func (row bookingRow) toBooking() booking.Booking {
	b := row.Booking
	if row.ApprovedByID != nil {
		b.ApprovedByID = *row.ApprovedByID
	}
	return b
}

func toBookings(rows []bookingRow) []booking.Booking {
	out := make([]booking.Booking, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toBooking())
	}
	return out
}
