package attendance

import (
	"context"
	"crypto/subtle"

	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core/course"
	"github.com/trezcool/kelasi/core/user"
)

var (
	ErrNotFound    = errors.New("attendance record not found")
	ErrInvalidCode = errors.New("invalid or expired attendance code")
	ErrNotStudent  = errors.New("only students can check in")
	ErrNotEnrolled = errors.New("you are not enrolled in this course")
)

type (
	// CodeSource exposes the current presence code of a live session.
	CodeSource interface {
		Current(sessionID string) (string, bool)
	}

	Repository interface {
		CreateAttendance(ctx context.Context, att Attendance) (Attendance, error)
		GetAttendanceByID(ctx context.Context, id string) (Attendance, error)
		GetAttendanceBySessionAndStudent(ctx context.Context, sessionID, studentID string) (Attendance, error)
		QueryAttendancesBySession(ctx context.Context, sessionID string) ([]Attendance, error)
		UpdateAttendance(ctx context.Context, att Attendance) error
		DeleteAttendancesByID(ctx context.Context, ids ...string) error
	}

	Service interface {
		// Mark checks a student in to a live session using the session's
		// current presence code. Marking twice returns the same record.
		Mark(ctx context.Context, sessionID, studentID, code string) (Attendance, error)
		GetByID(ctx context.Context, id, curUserID string) (Attendance, error)
		QueryBySession(ctx context.Context, sessionID, curUserID string) ([]Attendance, error)
		UpdateStatus(ctx context.Context, id string, ua UpdateAttendance, curUserID string) (Attendance, error)
		Delete(ctx context.Context, curUserID string, ids ...string) error
	}

	service struct {
		repo     Repository
		crsRepo  course.Repository
		sessRepo course.SessionRepository
		usrRepo  user.Repository
		codes    CodeSource
	}
)

var _ Service = (*service)(nil)

func NewService(
	repo Repository,
	crsRepo course.Repository,
	sessRepo course.SessionRepository,
	usrRepo user.Repository,
	codes CodeSource,
) Service {
	return &service{
		repo:     repo,
		crsRepo:  crsRepo,
		sessRepo: sessRepo,
		usrRepo:  usrRepo,
		codes:    codes,
	}
}

// Mark validates a check-in claim and records the attendance. The checks run
// in a fixed order so the caller can tell exactly which one failed:
// the session must exist, the code must match the session's current code,
// the claimant must exist, be a student, and be enrolled in (or own) the
// session's course. A student already marked present keeps the same record.
func (svc *service) Mark(ctx context.Context, sessionID, studentID, code string) (Attendance, error) {
	sess, err := svc.sessRepo.GetSessionByID(ctx, sessionID)
	if err != nil {
		return Attendance{}, err
	}

	current, live := svc.codes.Current(sess.ID)
	if !live || subtle.ConstantTimeCompare([]byte(current), []byte(code)) != 1 {
		return Attendance{}, ErrInvalidCode
	}

	usr, err := svc.usrRepo.GetUserWithEnrollments(ctx, studentID)
	if err != nil {
		return Attendance{}, err
	}
	if !usr.IsStudent() {
		return Attendance{}, ErrNotStudent
	}

	crs, err := svc.crsRepo.GetCourseByID(ctx, sess.CourseID)
	if err != nil {
		return Attendance{}, err
	}
	if !usr.IsEnrolledIn(crs.ID) && !crs.IsOwnedBy(usr.ID) {
		return Attendance{}, ErrNotEnrolled
	}

	// idempotent: an existing record for this (session, student) pair is
	// re-affirmed as present, never duplicated. A professor override loses to
	// a later valid claim.
	if att, err := svc.repo.GetAttendanceBySessionAndStudent(ctx, sess.ID, usr.ID); err == nil {
		if att.Status != StatusPresent {
			att.Status = StatusPresent
			if err = svc.repo.UpdateAttendance(ctx, att); err != nil {
				return Attendance{}, err
			}
		}
		return att, nil
	} else if errors.Cause(err) != ErrNotFound {
		return Attendance{}, err
	}

	att := Attendance{
		SessionID: sess.ID,
		StudentID: usr.ID,
		Status:    StatusPresent,
	}
	return svc.repo.CreateAttendance(ctx, att)
}

func (svc *service) GetByID(ctx context.Context, id, curUserID string) (Attendance, error) {
	att, err := svc.repo.GetAttendanceByID(ctx, id)
	if err != nil {
		return Attendance{}, err
	}
	if err = svc.requireOwner(ctx, att, curUserID); err != nil {
		return Attendance{}, err
	}
	return att, nil
}

func (svc *service) QueryBySession(ctx context.Context, sessionID, curUserID string) ([]Attendance, error) {
	sess, err := svc.sessRepo.GetSessionByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	crs, err := svc.crsRepo.GetCourseByID(ctx, sess.CourseID)
	if err != nil {
		return nil, err
	}
	if err = course.RequireOwner(curUserID, crs); err != nil {
		return nil, err
	}
	return svc.repo.QueryAttendancesBySession(ctx, sessionID)
}

func (svc *service) UpdateStatus(ctx context.Context, id string, ua UpdateAttendance, curUserID string) (Attendance, error) {
	if err := ua.Validate(ctx); err != nil {
		return Attendance{}, err
	}

	att, err := svc.repo.GetAttendanceByID(ctx, id)
	if err != nil {
		return Attendance{}, err
	}
	if err = svc.requireOwner(ctx, att, curUserID); err != nil {
		return Attendance{}, err
	}

	att.Status = ua.Status
	att.ExcuseReason = ua.ExcuseReason
	if err = svc.repo.UpdateAttendance(ctx, att); err != nil {
		return Attendance{}, err
	}
	return att, nil
}

func (svc *service) Delete(ctx context.Context, curUserID string, ids ...string) error {
	for _, id := range ids {
		att, err := svc.repo.GetAttendanceByID(ctx, id)
		if err != nil {
			return err
		}
		if err = svc.requireOwner(ctx, att, curUserID); err != nil {
			return err
		}
	}
	return svc.repo.DeleteAttendancesByID(ctx, ids...)
}

// requireOwner walks attendance -> session -> course -> professor.
func (svc *service) requireOwner(ctx context.Context, att Attendance, curUserID string) error {
	sess, err := svc.sessRepo.GetSessionByID(ctx, att.SessionID)
	if err != nil {
		return err
	}
	crs, err := svc.crsRepo.GetCourseByID(ctx, sess.CourseID)
	if err != nil {
		return err
	}
	return course.RequireOwner(curUserID, crs)
}
