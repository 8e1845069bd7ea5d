// Package inmemdb provides a mutex-guarded in-memory storage backend used in
// tests and local development.
package inmemdb

import (
	"sync"

	"github.com/am-3/campus/core/academic"
	"github.com/am-3/campus/core/attendance"
	"github.com/am-3/campus/core/booking"
	"github.com/am-3/campus/core/event"
	"github.com/am-3/campus/core/user"
)

type DB struct {
	mutex sync.RWMutex

	users         map[string]*user.User
	resources     map[string]*booking.Resource
	bookings      map[string]*booking.Booking
	courses       map[string]*academic.Course
	enrollments   map[string]*academic.Enrollment
	grades        map[string]*academic.GradeRecord
	results       map[string][]academic.AssessmentResult // studentID
	sessions      map[string]*attendance.Session
	records       map[string]*attendance.Record
	faceProfiles  map[string]*attendance.FaceProfile // userID
	logEntries    []attendance.LogEntry
	events        map[string]*event.Event
	registrations map[string][]event.Registration // eventID
}

func Open() *DB {
	return &DB{
		users:         make(map[string]*user.User),
		resources:     make(map[string]*booking.Resource),
		bookings:      make(map[string]*booking.Booking),
		courses:       make(map[string]*academic.Course),
		enrollments:   make(map[string]*academic.Enrollment),
		grades:        make(map[string]*academic.GradeRecord),
		results:       make(map[string][]academic.AssessmentResult),
		sessions:      make(map[string]*attendance.Session),
		records:       make(map[string]*attendance.Record),
		faceProfiles:  make(map[string]*attendance.FaceProfile),
		events:        make(map[string]*event.Event),
		registrations: make(map[string][]event.Registration),
	}
}

// AddResource seeds a resource. Test helper.
func (db *DB) AddResource(res booking.Resource) {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.resources[res.ID] = &res
}

// AddBooking seeds a booking. Test helper.
func (db *DB) AddBooking(b booking.Booking) {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.bookings[b.ID] = &b
}

// AddCourse seeds a course. Test helper.
func (db *DB) AddCourse(crs academic.Course) {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.courses[crs.ID] = &crs
}

// AddEnrollment seeds an enrollment. Test helper.
func (db *DB) AddEnrollment(enr academic.Enrollment) {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.enrollments[enr.ID] = &enr
	if enr.Course.ID != "" {
		crs := enr.Course
		db.courses[crs.ID] = &crs
	}
}

// AddGradeRecord seeds a grade record. Test helper.
func (db *DB) AddGradeRecord(rec academic.GradeRecord) {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.grades[rec.ID] = &rec
}

// AddAssessmentResult seeds an assessment result. Test helper.
func (db *DB) AddAssessmentResult(studentID string, res academic.AssessmentResult) {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.results[studentID] = append(db.results[studentID], res)
}

// AddSession seeds an attendance session. Test helper.
func (db *DB) AddSession(s attendance.Session) {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.sessions[s.ID] = &s
}

// AddRecord seeds an attendance record. Test helper.
func (db *DB) AddRecord(rec attendance.Record) {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.records[rec.ID] = &rec
}

// AddFaceProfile seeds a face profile. Test helper.
func (db *DB) AddFaceProfile(fp attendance.FaceProfile) {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.faceProfiles[fp.UserID] = &fp
}

// AddEvent seeds an event. Test helper.
func (db *DB) AddEvent(evt event.Event) {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	db.events[evt.ID] = &evt
}
