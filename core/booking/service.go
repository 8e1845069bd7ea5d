package booking

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/am-3/campus/core"
	"github.com/am-3/campus/core/user"
)

var (
	ErrResourceNotFound = core.NewNotFoundError("resource not found")
	ErrBookingNotFound  = core.NewNotFoundError("booking not found")
	ErrTimeConflict     = core.NewConflictError("resource is already booked for this time period")
	ErrNotPending       = core.NewValidationError(errors.New("only pending bookings can be reviewed"))
)

type (
	Repository interface {
		GetResourceByID(ctx context.Context, id string) (Resource, error)
		// ApprovedBookingsOnDate returns the approved bookings of a resource
		// whose start instant falls on the given calendar date.
		ApprovedBookingsOnDate(ctx context.Context, resourceID string, date time.Time) ([]Booking, error)
		GetBookingByID(ctx context.Context, id string) (Booking, error)
		// CreateBookingPending atomically checks the proposed interval against
		// the resource's approved bookings and inserts a pending booking.
		// The check and the write run in a single transaction so two
		// concurrent requests cannot both pass the conflict check.
		CreateBookingPending(ctx context.Context, b Booking) (Booking, error)
		// ApproveBooking re-runs the conflict check against other approved
		// bookings and flips the status, all inside one transaction.
		ApproveBooking(ctx context.Context, id, approverID string) (Booking, error)
		RejectBooking(ctx context.Context, id, approverID string) (Booking, error)
	}

	Service struct {
		repo    Repository
		usrRepo user.Repository
		mailSvc core.EmailService
		conf    *core.Config
	}
)

func NewService(repo Repository, usrRepo user.Repository, mailSvc core.EmailService, conf *core.Config) *Service {
	return &Service{
		repo:    repo,
		usrRepo: usrRepo,
		mailSvc: mailSvc,
		conf:    conf,
	}
}

// Availability computes the 9-slot business-day breakdown of a resource for
// the given date (expected format "YYYY-MM-DD").
func (svc *Service) Availability(ctx context.Context, resourceID, dateStr string) (AvailabilityReport, error) {
	if dateStr == "" {
		return AvailabilityReport{}, core.NewValidationError(errors.New("date parameter is required"))
	}
	date, err := time.Parse(DateFormat, dateStr)
	if err != nil {
		return AvailabilityReport{}, core.NewValidationError(errors.New("invalid date format, use YYYY-MM-DD"))
	}

	res, err := svc.repo.GetResourceByID(ctx, resourceID)
	if err != nil {
		return AvailabilityReport{}, err
	}
	approved, err := svc.repo.ApprovedBookingsOnDate(ctx, res.ID, date)
	if err != nil {
		return AvailabilityReport{}, errors.Wrap(err, "querying approved bookings")
	}

	return AvailabilityReport{
		Resource:  res,
		Date:      dateStr,
		TimeSlots: ComputeAvailability(res, date, approved),
	}, nil
}

// Create validates a booking request and persists it with status pending.
// Either exactly one booking is created or none; the conflict check against
// approved bookings happens inside the repository transaction.
func (svc *Service) Create(ctx context.Context, requester user.User, resourceID string, nb NewBooking) (Booking, error) {
	res, err := svc.repo.GetResourceByID(ctx, resourceID)
	if err != nil {
		return Booking{}, err
	}

	start, err := time.Parse(TimeFormat, nb.StartTime)
	if err != nil {
		return Booking{}, core.NewValidationError(errors.New("invalid time format, use YYYY-MM-DD HH:MM"))
	}
	end, err := time.Parse(TimeFormat, nb.EndTime)
	if err != nil {
		return Booking{}, core.NewValidationError(errors.New("invalid time format, use YYYY-MM-DD HH:MM"))
	}
	if !start.Before(end) {
		return Booking{}, core.NewValidationError(errors.New("end time must be after start time"))
	}

	attendees := nb.NumAttendees
	if attendees <= 0 {
		attendees = 1
	}

	now := time.Now().UTC()
	b := Booking{
		ResourceID:   res.ID,
		UserID:       requester.ID,
		StartTime:    start,
		EndTime:      end,
		Purpose:      nb.Purpose,
		NumAttendees: attendees,
		Status:       StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	b, err = svc.repo.CreateBookingPending(ctx, b)
	if err != nil {
		return Booking{}, err
	}

	svc.notify(requester,
		"Booking request received",
		fmt.Sprintf("Your booking request for %s (%s - %s) has been submitted and is awaiting approval.",
			res.Name, b.StartTime.Format(TimeFormat), b.EndTime.Format(TimeFormat)),
	)
	return b, nil
}

// Approve flips a pending booking to approved after re-checking conflicts.
func (svc *Service) Approve(ctx context.Context, approver user.User, id string) (Booking, error) {
	if !(approver.IsAdmin() || approver.IsFaculty()) {
		return Booking{}, core.NewPermissionError("only admins or faculty can review bookings")
	}

	b, err := svc.repo.GetBookingByID(ctx, id)
	if err != nil {
		return Booking{}, err
	}
	if b.Status != StatusPending {
		return Booking{}, ErrNotPending
	}

	b, err = svc.repo.ApproveBooking(ctx, b.ID, approver.ID)
	if err != nil {
		return Booking{}, err
	}

	svc.notifyRequester(ctx, b, "Booking approved",
		fmt.Sprintf("Your booking %s - %s has been approved.",
			b.StartTime.Format(TimeFormat), b.EndTime.Format(TimeFormat)))
	return b, nil
}

// Reject flips a pending booking to rejected.
func (svc *Service) Reject(ctx context.Context, approver user.User, id string) (Booking, error) {
	if !(approver.IsAdmin() || approver.IsFaculty()) {
		return Booking{}, core.NewPermissionError("only admins or faculty can review bookings")
	}

	b, err := svc.repo.GetBookingByID(ctx, id)
	if err != nil {
		return Booking{}, err
	}
	if b.Status != StatusPending {
		return Booking{}, ErrNotPending
	}

	b, err = svc.repo.RejectBooking(ctx, b.ID, approver.ID)
	if err != nil {
		return Booking{}, err
	}

	svc.notifyRequester(ctx, b, "Booking rejected",
		fmt.Sprintf("Your booking %s - %s has been rejected.",
			b.StartTime.Format(TimeFormat), b.EndTime.Format(TimeFormat)))
	return b, nil
}

func (svc *Service) notifyRequester(ctx context.Context, b Booking, subject, body string) {
	if svc.usrRepo == nil {
		return
	}
	requester, err := svc.usrRepo.GetUserByID(ctx, b.UserID)
	if err != nil {
		return
	}
	svc.notify(requester, subject, body)
}

func (svc *Service) notify(usr user.User, subject, body string) {
	if svc.mailSvc == nil || usr.Email == "" {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: usr.FullName(), Address: usr.Email}},
		Subject: subject,
		Body:    body,
	})
}
