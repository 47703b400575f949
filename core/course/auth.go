package course

import "errors"

var (
	ErrNotCourseOwner  = errors.New("you are not the professor of this course")
	ErrNotCourseMember = errors.New("you are not allowed to access this course")
)

// RequireOwner passes only for the course's owning professor. It is the single
// authorization gate for every mutating operation on a Course and anything
// hanging off it (sessions, attendances, announcements): callers resolve the
// entity's course through the ownership chain and call this, never an ad hoc
// check of their own.
func RequireOwner(userID string, crs Course) error {
	if !crs.IsOwnedBy(userID) {
		return ErrNotCourseOwner
	}
	return nil
}

// RequireParticipant additionally accepts enrolled students; it gates read
// access. crs must have been loaded with its students.
func RequireParticipant(userID string, crs Course) error {
	if crs.IsOwnedBy(userID) || crs.HasStudent(userID) {
		return nil
	}
	return ErrNotCourseMember
}
