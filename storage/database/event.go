package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/am-3/campus/core"
	"github.com/am-3/campus/core/event"
)

type eventRepository struct {
	db core.DB
}

var _ event.Repository = (*eventRepository)(nil) // interface compliance check

func NewEventRepository(db core.DB) *eventRepository {
	return &eventRepository{db: db}
}

func (repo eventRepository) GetEventByID(ctx context.Context, id string) (event.Event, error) {
	var row eventRow
	query := `SELECT * FROM event WHERE id = $1`
	if err := repo.db.GetContext(ctx, &row, query, id); err != nil {
		return event.Event{}, trapNoRowsErr(err, event.ErrEventNotFound, "getting event")
	}
	return row.toEvent(), nil
}

// RegisterUser locks the event row so the capacity count and the insert are
// atomic under concurrent registrations.
func (repo eventRepository) RegisterUser(ctx context.Context, evt event.Event, userID string) (event.Registration, error) {
	tx, err := repo.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return event.Registration{}, errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	var id string
	if err = tx.GetContext(ctx, &id, `SELECT id FROM event WHERE id = $1 FOR UPDATE`, evt.ID); err != nil {
		return event.Registration{}, trapNoRowsErr(err, event.ErrEventNotFound, "locking event")
	}

	var already bool
	query := `SELECT EXISTS (SELECT 1 FROM event_registration WHERE event_id = $1 AND user_id = $2)`
	if err = tx.GetContext(ctx, &already, query, evt.ID, userID); err != nil {
		return event.Registration{}, errors.Wrap(err, "checking existing registration")
	}
	if already {
		return event.Registration{}, event.ErrAlreadyRegistered
	}

	if evt.MaxParticipants != nil {
		var count int
		query = `SELECT COUNT(*) FROM event_registration WHERE event_id = $1`
		if err = tx.GetContext(ctx, &count, query, evt.ID); err != nil {
			return event.Registration{}, errors.Wrap(err, "counting registrations")
		}
		if count >= *evt.MaxParticipants {
			return event.Registration{}, event.ErrEventFull
		}
	}

	reg := event.Registration{
		ID:           uuid.New().String(),
		EventID:      evt.ID,
		UserID:       userID,
		RegisteredAt: time.Now().UTC(),
	}
	query = `
INSERT INTO event_registration (id, event_id, user_id, registered_at)
VALUES ($1, $2, $3, $4)`
	if _, err = tx.ExecContext(ctx, query, reg.ID, reg.EventID, reg.UserID, reg.RegisteredAt); err != nil {
		return event.Registration{}, errors.Wrap(err, "inserting registration")
	}

	if err = tx.Commit(); err != nil {
		return event.Registration{}, errors.Wrap(err, "committing transaction")
	}
	return reg, nil
}

func (repo eventRepository) CancelRegistration(ctx context.Context, eventID, userID string) error {
	query := `DELETE FROM event_registration WHERE event_id = $1 AND user_id = $2`
	res, err := repo.db.ExecContext(ctx, query, eventID, userID)
	if err != nil {
		return errors.Wrap(err, "deleting registration")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return event.ErrRegistrationNotFound
	}
	return nil
}

// eventRow mirrors the event table with a nullable organizer_id column.
type eventRow struct {
	event.Event
	OrganizerID *string `db:"organizer_id"`
}

func (row eventRow) toEvent() event.Event {
	evt := row.Event
	if row.OrganizerID != nil {
		evt.OrganizerID = *row.OrganizerID
	}
	return evt
}
