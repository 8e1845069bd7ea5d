package event

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/am-3/campus/core"
	"github.com/am-3/campus/core/user"
)

var (
	ErrEventNotFound        = core.NewNotFoundError("event not found")
	ErrRegistrationClosed   = core.NewValidationError(errors.New("registration deadline has passed"))
	ErrEventFull            = core.NewValidationError(errors.New("event has reached maximum participants"))
	ErrAlreadyRegistered    = core.NewConflictError("you are already registered for this event")
	ErrRegistrationNotFound = core.NewNotFoundError("registration not found")
)

type Repository interface {
	GetEventByID(ctx context.Context, id string) (Event, error)
	// RegisterUser atomically checks capacity and duplicates before inserting.
	// It returns ErrEventFull or ErrAlreadyRegistered accordingly.
	RegisterUser(ctx context.Context, evt Event, userID string) (Registration, error)
	CancelRegistration(ctx context.Context, eventID, userID string) error
}

type ServiceInterface interface {
	Register(ctx context.Context, caller user.User, eventID string) (*Registration, error)
	Unregister(ctx context.Context, caller user.User, eventID string) error
}

type Service struct {
	repo Repository
}

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register signs the caller up for an upcoming event. Capacity and duplicate
// checks happen inside the repository in one transaction.
func (svc *Service) Register(ctx context.Context, caller user.User, eventID string) (*Registration, error) {
	evt, err := svc.repo.GetEventByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if evt.Status == StatusCancelled || evt.Status == StatusCompleted {
		return nil, core.NewValidationError(errors.New("event is not open for registration"))
	}
	if !evt.RegistrationOpen(time.Now().UTC()) {
		return nil, ErrRegistrationClosed
	}

	reg, err := svc.repo.RegisterUser(ctx, evt, caller.ID)
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

func (svc *Service) Unregister(ctx context.Context, caller user.User, eventID string) error {
	if _, err := svc.repo.GetEventByID(ctx, eventID); err != nil {
		return err
	}
	return svc.repo.CancelRegistration(ctx, eventID, caller.ID)
}
