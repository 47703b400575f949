package dummydb

import (
	"sync"

	"github.com/trezcool/kelasi/core/announcement"
	"github.com/trezcool/kelasi/core/attendance"
	"github.com/trezcool/kelasi/core/course"
	"github.com/trezcool/kelasi/core/user"
)

// DB is an in-memory store used in tests and local development.
// A single lock guards all tables; enrollment lookups span several of them.
type DB struct {
	mu sync.RWMutex

	users         map[string]*user.User
	courses       map[string]*course.Course
	enrollments   map[string]map[string]bool // courseID -> studentIDs
	sessions      map[string]*course.Session
	announcements map[string]*announcement.Announcement
	attendances   map[string]*attendance.Attendance
}

func Open() (*DB, error) {
	db := &DB{
		users:         make(map[string]*user.User),
		courses:       make(map[string]*course.Course),
		enrollments:   make(map[string]map[string]bool),
		sessions:      make(map[string]*course.Session),
		announcements: make(map[string]*announcement.Announcement),
		attendances:   make(map[string]*attendance.Attendance),
	}
	return db, nil
}

// studentIDs returns the sorted-free list of students enrolled in a course.
// Callers must hold the lock.
func (db *DB) studentIDs(courseID string) []string {
	set := db.enrollments[courseID]
	if len(set) == 0 {
		return nil
	}
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	return ids
}
