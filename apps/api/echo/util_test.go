package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/am-3/campus/core"
	"github.com/am-3/campus/core/academic"
	"github.com/am-3/campus/core/attendance"
	"github.com/am-3/campus/core/booking"
	"github.com/am-3/campus/core/event"
	"github.com/am-3/campus/core/user"
	emailsvc "github.com/am-3/campus/services/email"
	facesvc "github.com/am-3/campus/services/face"
	logsvc "github.com/am-3/campus/services/logger"
	inmemdb "github.com/am-3/campus/storage/database/inmem"
)

var (
	testDB  *inmemdb.DB
	usrRepo user.Repository

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
)

func setup(t *testing.T) Server {
	t.Helper()

	conf := &core.Config{
		TestMode:         true,
		AppName:          "Campus",
		SecretKey:        "secret",
		DefaultFromEmail: "noreply@localhost",
		Server:           core.ServerConfig{JWTExpirationDelta: 10 * time.Minute},
		FaceService:      core.FaceServiceConfig{Skip: true},
	}
	validate, translator := core.NewValidator()

	// set up DB & repos
	testDB = inmemdb.Open()
	usrRepo = inmemdb.NewUserRepository(testDB)
	bookingRepo := inmemdb.NewBookingRepository(testDB)
	academicRepo := inmemdb.NewAcademicRepository(testDB)
	attendanceRepo := inmemdb.NewAttendanceRepository(testDB)
	eventRepo := inmemdb.NewEventRepository(testDB)

	// set up services
	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
	logger.Enable(false)
	mailSvc := emailsvc.NewConsoleServiceMock(conf)

	return NewServer(
		&Options{
			Conf:           conf,
			Logger:         logger,
			DisableReqLogs: true,
			UserSvc:        user.NewService(usrRepo),
			BookingSvc:     booking.NewService(bookingRepo, usrRepo, mailSvc, conf),
			AcademicSvc:    academic.NewService(academicRepo),
			AttendanceSvc:  attendance.NewService(attendanceRepo, facesvc.NewClient(conf)),
			EventSvc:       event.NewService(eventRepo),
			Validate:       validate,
			Translator:     translator,
		},
	)
}

func createUser(t *testing.T, firstName, lastName, email, role string, isActive bool, createdAt ...time.Time) user.User {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Second)
	if len(createdAt) > 0 {
		now = createdAt[0]
	}
	usr := user.User{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Role:      role,
		IsActive:  isActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	usr, err := usrRepo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("createUser() failed: %v", err)
	}
	return usr
}

func unmarshalUser(t *testing.T, data []byte) user.User {
	t.Helper()
	var usr user.User
	if err := json.Unmarshal(data, &usr); err != nil {
		t.Fatalf("unmarshalUser() failed: %v", err)
	}
	return usr
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	claims := GetUserClaims(usr)
	token, err := GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

// nolint
func marchallList(t *testing.T, objs ...interface{}) []byte {
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
