package inmemdb

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/am-3/campus/core/event"
)

type eventRepository struct {
	db *DB
}

var _ event.Repository = (*eventRepository)(nil) // interface compliance check

func NewEventRepository(db *DB) *eventRepository {
	return &eventRepository{db: db}
}

func (repo *eventRepository) GetEventByID(ctx context.Context, id string) (event.Event, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if evt, ok := repo.db.events[id]; ok {
		return *evt, nil
	}
	return event.Event{}, event.ErrEventNotFound
}

func (repo *eventRepository) RegisterUser(ctx context.Context, evt event.Event, userID string) (event.Registration, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	regs := repo.db.registrations[evt.ID]
	for _, reg := range regs {
		if reg.UserID == userID {
			return event.Registration{}, event.ErrAlreadyRegistered
		}
	}
	if evt.MaxParticipants != nil && len(regs) >= *evt.MaxParticipants {
		return event.Registration{}, event.ErrEventFull
	}

	reg := event.Registration{
		ID:           uuid.New().String(),
		EventID:      evt.ID,
		UserID:       userID,
		RegisteredAt: time.Now().UTC(),
	}
	repo.db.registrations[evt.ID] = append(regs, reg)
	return reg, nil
}

func (repo *eventRepository) CancelRegistration(ctx context.Context, eventID, userID string) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	regs := repo.db.registrations[eventID]
	for i, reg := range regs {
		if reg.UserID == userID {
			repo.db.registrations[eventID] = append(regs[:i], regs[i+1:]...)
			return nil
		}
	}
	return event.ErrRegistrationNotFound
}
