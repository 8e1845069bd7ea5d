package booking

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/am-3/campus/core"
	"github.com/am-3/campus/core/user"
)

type fakeRepo struct {
	resources map[string]Resource
	bookings  map[string]Booking
	nextID    int
}

func newFakeRepo(resources ...Resource) *fakeRepo {
	repo := &fakeRepo{
		resources: make(map[string]Resource),
		bookings:  make(map[string]Booking),
	}
	for _, res := range resources {
		repo.resources[res.ID] = res
	}
	return repo
}

func (r *fakeRepo) GetResourceByID(ctx context.Context, id string) (Resource, error) {
	res, ok := r.resources[id]
	if !ok {
		return Resource{}, ErrResourceNotFound
	}
	return res, nil
}

func (r *fakeRepo) ApprovedBookingsOnDate(ctx context.Context, resourceID string, date time.Time) ([]Booking, error) {
	var out []Booking
	for _, b := range r.bookings {
		if b.ResourceID == resourceID && b.Status == StatusApproved &&
			b.StartTime.Year() == date.Year() && b.StartTime.YearDay() == date.YearDay() {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeRepo) GetBookingByID(ctx context.Context, id string) (Booking, error) {
	b, ok := r.bookings[id]
	if !ok {
		return Booking{}, ErrBookingNotFound
	}
	return b, nil
}

func (r *fakeRepo) CreateBookingPending(ctx context.Context, b Booking) (Booking, error) {
	for _, other := range r.bookings {
		if other.ResourceID == b.ResourceID && other.Status == StatusApproved &&
			other.OverlapsInterval(b.StartTime, b.EndTime) {
			return Booking{}, ErrTimeConflict
		}
	}
	r.nextID++
	b.ID = string(rune('a' + r.nextID))
	b.Status = StatusPending
	r.bookings[b.ID] = b
	return b, nil
}

func (r *fakeRepo) ApproveBooking(ctx context.Context, id, approverID string) (Booking, error) {
	b := r.bookings[id]
	for _, other := range r.bookings {
		if other.ID != b.ID && other.ResourceID == b.ResourceID &&
			other.Status == StatusApproved && other.OverlapsInterval(b.StartTime, b.EndTime) {
			return Booking{}, ErrTimeConflict
		}
	}
	b.Status = StatusApproved
	b.ApprovedByID = approverID
	r.bookings[id] = b
	return b, nil
}

func (r *fakeRepo) RejectBooking(ctx context.Context, id, approverID string) (Booking, error) {
	b := r.bookings[id]
	b.Status = StatusRejected
	b.ApprovedByID = approverID
	r.bookings[id] = b
	return b, nil
}

func TestServiceAvailability(t *testing.T) {
	ctx := context.Background()
	res := Resource{ID: "res1", Name: "Seminar Hall", Status: ResourceAvailable}
	repo := newFakeRepo(res)
	svc := NewService(repo, nil, nil, nil)

	booked := Booking{
		ID:         "b1",
		ResourceID: res.ID,
		StartTime:  mkTime(t, "2024-03-15 14:00"),
		EndTime:    mkTime(t, "2024-03-15 15:00"),
		Status:     StatusApproved,
	}
	repo.bookings[booked.ID] = booked

	tests := []struct {
		name    string
		resID   string
		date    string
		wantErr error
	}{
		{name: "missing date", resID: res.ID, date: "", wantErr: &core.ValidationError{}},
		{name: "bad date", resID: res.ID, date: "15-03-2024", wantErr: &core.ValidationError{}},
		{name: "unknown resource", resID: "nope", date: "2024-03-15", wantErr: &core.NotFoundError{}},
		{name: "ok", resID: res.ID, date: "2024-03-15"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := svc.Availability(ctx, tt.resID, tt.date)
			if tt.wantErr != nil {
				if !sameErrType(err, tt.wantErr) {
					t.Fatalf("Availability() error = %v (%T), want %T", err, errors.Cause(err), tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Availability() error = %v", err)
			}
			if len(report.TimeSlots) != 9 {
				t.Fatalf("got %d slots, want 9", len(report.TimeSlots))
			}
			for _, slot := range report.TimeSlots {
				want := slot.StartTime != "14:00"
				if slot.IsAvailable != want {
					t.Errorf("slot %s available = %v, want %v", slot.StartTime, slot.IsAvailable, want)
				}
			}
		})
	}
}

func TestServiceCreate(t *testing.T) {
	ctx := context.Background()
	res := Resource{ID: "res1", Name: "Lab 2", Status: ResourceAvailable}
	student := user.User{ID: "stu1", Role: user.RoleStudent}

	newRepoWithApproved := func(start, end string) *fakeRepo {
		repo := newFakeRepo(res)
		repo.bookings["b0"] = Booking{
			ID:         "b0",
			ResourceID: res.ID,
			StartTime:  mkTime(t, start),
			EndTime:    mkTime(t, end),
			Status:     StatusApproved,
		}
		return repo
	}

	tests := []struct {
		name    string
		repo    *fakeRepo
		nb      NewBooking
		wantErr error
	}{
		{
			name:    "malformed start",
			repo:    newFakeRepo(res),
			nb:      NewBooking{StartTime: "2024-03-15T10:00", EndTime: "2024-03-15 11:00"},
			wantErr: &core.ValidationError{},
		},
		{
			name:    "end before start",
			repo:    newFakeRepo(res),
			nb:      NewBooking{StartTime: "2024-03-15 11:00", EndTime: "2024-03-15 10:00"},
			wantErr: &core.ValidationError{},
		},
		{
			name:    "zero duration",
			repo:    newFakeRepo(res),
			nb:      NewBooking{StartTime: "2024-03-15 10:00", EndTime: "2024-03-15 10:00"},
			wantErr: &core.ValidationError{},
		},
		{
			name:    "overlap with approved",
			repo:    newRepoWithApproved("2024-03-15 10:00", "2024-03-15 11:30"),
			nb:      NewBooking{StartTime: "2024-03-15 11:00", EndTime: "2024-03-15 12:00"},
			wantErr: &core.ConflictError{},
		},
		{
			name: "back to back is legal",
			repo: newRepoWithApproved("2024-03-15 10:00", "2024-03-15 12:00"),
			nb:   NewBooking{StartTime: "2024-03-15 12:00", EndTime: "2024-03-15 14:00"},
		},
		{
			name: "ok",
			repo: newFakeRepo(res),
			nb:   NewBooking{StartTime: "2024-03-15 10:00", EndTime: "2024-03-15 11:00", Purpose: "study group"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(tt.repo, nil, nil, nil)
			b, err := svc.Create(ctx, student, res.ID, tt.nb)
			if tt.wantErr != nil {
				if !sameErrType(err, tt.wantErr) {
					t.Fatalf("Create() error = %v (%T), want %T", err, errors.Cause(err), tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			if b.Status != StatusPending {
				t.Errorf("status = %q, want %q", b.Status, StatusPending)
			}
			if b.NumAttendees != 1 {
				t.Errorf("num attendees = %d, want default 1", b.NumAttendees)
			}
		})
	}
}

func TestServiceApproveReject(t *testing.T) {
	ctx := context.Background()
	res := Resource{ID: "res1", Name: "Auditorium", Status: ResourceAvailable}
	student := user.User{ID: "stu1", Role: user.RoleStudent}
	faculty := user.User{ID: "fac1", Role: user.RoleFaculty}

	seed := func(status string) (*fakeRepo, Booking) {
		repo := newFakeRepo(res)
		b := Booking{
			ID:         "b1",
			ResourceID: res.ID,
			UserID:     student.ID,
			StartTime:  mkTime(t, "2024-03-15 10:00"),
			EndTime:    mkTime(t, "2024-03-15 11:00"),
			Status:     status,
		}
		repo.bookings[b.ID] = b
		return repo, b
	}

	t.Run("student cannot review", func(t *testing.T) {
		repo, b := seed(StatusPending)
		svc := NewService(repo, nil, nil, nil)
		if _, err := svc.Approve(ctx, student, b.ID); !sameErrType(err, &core.PermissionError{}) {
			t.Errorf("Approve() error = %v, want permission error", err)
		}
	})

	t.Run("approve pending", func(t *testing.T) {
		repo, b := seed(StatusPending)
		svc := NewService(repo, nil, nil, nil)
		got, err := svc.Approve(ctx, faculty, b.ID)
		if err != nil {
			t.Fatalf("Approve() error = %v", err)
		}
		if got.Status != StatusApproved {
			t.Errorf("status = %q, want %q", got.Status, StatusApproved)
		}
		if got.ApprovedByID != faculty.ID {
			t.Errorf("approved by = %q, want %q", got.ApprovedByID, faculty.ID)
		}
	})

	t.Run("approve non-pending", func(t *testing.T) {
		repo, b := seed(StatusRejected)
		svc := NewService(repo, nil, nil, nil)
		if _, err := svc.Approve(ctx, faculty, b.ID); errors.Cause(err) != ErrNotPending {
			t.Errorf("Approve() error = %v, want %v", err, ErrNotPending)
		}
	})

	t.Run("reject pending", func(t *testing.T) {
		repo, b := seed(StatusPending)
		svc := NewService(repo, nil, nil, nil)
		got, err := svc.Reject(ctx, faculty, b.ID)
		if err != nil {
			t.Fatalf("Reject() error = %v", err)
		}
		if got.Status != StatusRejected {
			t.Errorf("status = %q, want %q", got.Status, StatusRejected)
		}
	})

	t.Run("approve after a conflicting approval", func(t *testing.T) {
		repo, b := seed(StatusPending)
		repo.bookings["b2"] = Booking{
			ID:         "b2",
			ResourceID: res.ID,
			StartTime:  mkTime(t, "2024-03-15 10:30"),
			EndTime:    mkTime(t, "2024-03-15 11:30"),
			Status:     StatusApproved,
		}
		svc := NewService(repo, nil, nil, nil)
		if _, err := svc.Approve(ctx, faculty, b.ID); errors.Cause(err) != ErrTimeConflict {
			t.Errorf("Approve() error = %v, want %v", err, ErrTimeConflict)
		}
	})
}

func sameErrType(err, want error) bool {
	if err == nil {
		return false
	}
	cause := errors.Cause(err)
	switch want.(type) {
	case *core.ValidationError:
		_, ok := cause.(*core.ValidationError)
		return ok
	case *core.NotFoundError:
		_, ok := cause.(*core.NotFoundError)
		return ok
	case *core.PermissionError:
		_, ok := cause.(*core.PermissionError)
		return ok
	case *core.ConflictError:
		_, ok := cause.(*core.ConflictError)
		return ok
	}
	return false
}
