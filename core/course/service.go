package course

import (
	"context"
	"crypto/rand"
	"errors"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/trezcool/kelasi/core/user"
)

var (
	// errors
	ErrNotFound        = errors.New("course not found")
	ErrNotProfessor    = errors.New("only professors can create courses")
	ErrAlreadyEnrolled = errors.New("you are already enrolled in this course")
	ErrNotEnrolled     = errors.New("you must be enrolled in a course in order to leave it")
)

const (
	joinCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	joinCodeLen      = 6
)

type (
	Repository interface {
		CreateCourse(ctx context.Context, crs Course) (Course, error)
		GetCourseByID(ctx context.Context, id string) (Course, error)
		// GetCourseByIDWithStudents returns the Course with StudentIDs populated.
		GetCourseByIDWithStudents(ctx context.Context, id string) (Course, error)
		// GetCourseByJoinCode returns the Course with StudentIDs populated.
		GetCourseByJoinCode(ctx context.Context, joinCode string) (Course, error)
		// QueryCoursesByUser returns all courses taught or attended by the given user.
		QueryCoursesByUser(ctx context.Context, userID string) ([]Course, error)
		UpdateCourse(ctx context.Context, crs Course) (Course, error)
		AddStudent(ctx context.Context, courseID, studentID string) error
		RemoveStudent(ctx context.Context, courseID, studentID string) error
		DeleteCoursesByID(ctx context.Context, ids ...string) error
	}

	Service interface {
		Create(ctx context.Context, nc NewCourse, curUsr user.User) (Course, error)
		GetByID(ctx context.Context, id, curUserID string) (Course, error)
		QueryByUser(ctx context.Context, userID string) ([]Course, error)
		Update(ctx context.Context, id string, uc UpdateCourse, curUserID string) (Course, error)
		Delete(ctx context.Context, id, curUserID string) error
		JoinByCode(ctx context.Context, joinCode, curUserID string) (Course, error)
		Leave(ctx context.Context, courseID, curUserID string) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Create(ctx context.Context, nc NewCourse, curUsr user.User) (Course, error) {
	if !curUsr.IsProfessor() {
		return Course{}, ErrNotProfessor
	}

	joinCode, err := svc.generateJoinCode(ctx)
	if err != nil {
		return Course{}, err
	}

	now := time.Now().UTC()
	crs := Course{
		Name:        nc.Name,
		MaxMissed:   nc.MaxMissed,
		JoinCode:    joinCode,
		ProfessorID: curUsr.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	return svc.repo.CreateCourse(ctx, crs)
}

// generateJoinCode draws random codes until one is free.
func (svc *service) generateJoinCode(ctx context.Context) (string, error) {
	for {
		code, err := randomJoinCode()
		if err != nil {
			return "", err
		}
		if _, err = svc.repo.GetCourseByJoinCode(ctx, code); err != nil {
			if err == ErrNotFound {
				return code, nil
			}
			return "", err
		}
	}
}

func randomJoinCode() (string, error) {
	buf := make([]byte, joinCodeLen)
	if _, err := rand.Read(buf); err != nil {
		return "", pkgerrors.Wrap(err, "generating join code")
	}
	for i, b := range buf {
		buf[i] = joinCodeAlphabet[int(b)%len(joinCodeAlphabet)]
	}
	return string(buf), nil
}

func (svc *service) GetByID(ctx context.Context, id, curUserID string) (Course, error) {
	crs, err := svc.repo.GetCourseByIDWithStudents(ctx, id)
	if err != nil {
		return Course{}, err
	}
	if err = RequireParticipant(curUserID, crs); err != nil {
		return Course{}, err
	}
	return crs, nil
}

func (svc *service) QueryByUser(ctx context.Context, userID string) ([]Course, error) {
	return svc.repo.QueryCoursesByUser(ctx, userID)
}

func (svc *service) Update(ctx context.Context, id string, uc UpdateCourse, curUserID string) (Course, error) {
	crs, err := svc.repo.GetCourseByID(ctx, id)
	if err != nil {
		return Course{}, err
	}
	if err = RequireOwner(curUserID, crs); err != nil {
		return Course{}, err
	}

	crs.Name = uc.Name
	crs.MaxMissed = uc.MaxMissed
	crs.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateCourse(ctx, crs)
}

func (svc *service) Delete(ctx context.Context, id, curUserID string) error {
	crs, err := svc.repo.GetCourseByID(ctx, id)
	if err != nil {
		return err
	}
	if err = RequireOwner(curUserID, crs); err != nil {
		return err
	}
	return svc.repo.DeleteCoursesByID(ctx, id)
}

func (svc *service) JoinByCode(ctx context.Context, joinCode, curUserID string) (Course, error) {
	crs, err := svc.repo.GetCourseByJoinCode(ctx, joinCode)
	if err != nil {
		return Course{}, err
	}
	if crs.HasStudent(curUserID) {
		return Course{}, ErrAlreadyEnrolled
	}
	if err = svc.repo.AddStudent(ctx, crs.ID, curUserID); err != nil {
		return Course{}, err
	}
	return svc.repo.GetCourseByIDWithStudents(ctx, crs.ID)
}

func (svc *service) Leave(ctx context.Context, courseID, curUserID string) error {
	crs, err := svc.repo.GetCourseByIDWithStudents(ctx, courseID)
	if err != nil {
		return err
	}
	if !crs.HasStudent(curUserID) {
		return ErrNotEnrolled
	}
	return svc.repo.RemoveStudent(ctx, crs.ID, curUserID)
}
