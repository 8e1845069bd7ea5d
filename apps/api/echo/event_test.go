package echoapi

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/am-3/campus/core/event"
	"github.com/am-3/campus/core/user"
)

func Test_eventApi_register(t *testing.T) {
	srv := setup(t)

	student := createUser(t, "Asha", "Verma", "asha@test.cd", user.RoleStudent, true)
	other := createUser(t, "Ben", "Okoro", "ben@test.cd", user.RoleStudent, true)

	now := time.Now().UTC()
	deadline := now.Add(24 * time.Hour)
	passed := now.Add(-time.Hour)
	one := 1

	testDB.AddEvent(event.Event{
		ID: "evt-1", Title: "Tech Fest", Venue: "Auditorium",
		StartTime: now.Add(48 * time.Hour), EndTime: now.Add(54 * time.Hour),
		RegistrationDeadline: &deadline, Status: event.StatusUpcoming,
	})
	testDB.AddEvent(event.Event{
		ID: "evt-2", Title: "Hackathon", Venue: "Lab 4",
		RegistrationDeadline: &passed, Status: event.StatusUpcoming,
	})
	testDB.AddEvent(event.Event{
		ID: "evt-3", Title: "Alumni Meet", Venue: "Lawn",
		Status: event.StatusCancelled,
	})
	testDB.AddEvent(event.Event{
		ID: "evt-4", Title: "Workshop", Venue: "Lab 2",
		MaxParticipants: &one, Status: event.StatusUpcoming,
	})

	token := getToken(t, student)

	t.Run("Auth required", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/v1/events/evt-1/register")
		srv.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)}, rec)
	})

	t.Run("Register", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/events/evt-1/register", token)
		srv.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
		}
		var reg event.Registration
		if err := json.Unmarshal(rec.Body.Bytes(), &reg); err != nil {
			t.Fatalf("unmarshal failed: %v", err)
		}
		if reg.EventID != "evt-1" || reg.UserID != student.ID {
			t.Errorf("registration = %+v", reg)
		}
	})

	t.Run("Register twice", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/events/evt-1/register", token)
		srv.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "you are already registered for this event"}),
		}, rec)
	})

	t.Run("Deadline passed", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/events/evt-2/register", token)
		srv.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "registration deadline has passed"}),
		}, rec)
	})

	t.Run("Cancelled event", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/events/evt-3/register", token)
		srv.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "event is not open for registration"}),
		}, rec)
	})

	t.Run("Event full", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/events/evt-4/register", token)
		srv.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
		}

		req, rec = newAuthRequest(http.MethodPost, "/v1/events/evt-4/register", getToken(t, other))
		srv.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "event has reached maximum participants"}),
		}, rec)
	})

	t.Run("Unknown event", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/events/nope/register", token)
		srv.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "event not found"}),
		}, rec)
	})
}

func Test_eventApi_unregister(t *testing.T) {
	srv := setup(t)

	student := createUser(t, "Asha", "Verma", "asha@test.cd", user.RoleStudent, true)
	testDB.AddEvent(event.Event{ID: "evt-1", Title: "Tech Fest", Venue: "Auditorium", Status: event.StatusUpcoming})

	token := getToken(t, student)

	t.Run("Not registered", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/events/evt-1/register", token)
		srv.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "registration not found"}),
		}, rec)
	})

	t.Run("Unregister", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/events/evt-1/register", token)
		srv.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("code = %v; want %v; body %s", rec.Code, http.StatusCreated, rec.Body.String())
		}

		req, rec = newAuthRequest(http.MethodDelete, "/v1/events/evt-1/register", token)
		srv.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Errorf("code = %v; want %v; body %s", rec.Code, http.StatusNoContent, rec.Body.String())
		}
	})
}
