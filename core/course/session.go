package course

import (
	"context"
	"errors"
	"time"
)

var ErrSessionNotFound = errors.New("session not found")

type (
	SessionRepository interface {
		CreateSession(ctx context.Context, sess Session) (Session, error)
		GetSessionByID(ctx context.Context, id string) (Session, error)
		QuerySessionsByCourse(ctx context.Context, courseID string) ([]Session, error)
		UpdateSession(ctx context.Context, sess Session) (Session, error)
		DeleteSessionsByID(ctx context.Context, ids ...string) error
	}

	SessionService interface {
		Create(ctx context.Context, courseID string, ns NewSession, curUserID string) (Session, error)
		GetByID(ctx context.Context, id, curUserID string) (Session, error)
		QueryByCourse(ctx context.Context, courseID, curUserID string) ([]Session, error)
		Update(ctx context.Context, id string, us UpdateSession, curUserID string) (Session, error)
		Delete(ctx context.Context, id, curUserID string) error
	}

	sessionService struct {
		repo    SessionRepository
		crsRepo Repository
	}
)

var _ SessionService = (*sessionService)(nil)

func NewSessionService(repo SessionRepository, crsRepo Repository) SessionService {
	return &sessionService{repo: repo, crsRepo: crsRepo}
}

func (svc *sessionService) Create(ctx context.Context, courseID string, ns NewSession, curUserID string) (Session, error) {
	crs, err := svc.crsRepo.GetCourseByID(ctx, courseID)
	if err != nil {
		return Session{}, err
	}
	if err = RequireOwner(curUserID, crs); err != nil {
		return Session{}, err
	}

	now := time.Now().UTC()
	date := ns.Date
	if date.IsZero() {
		date = now
	}
	sess := Session{
		CourseID:  crs.ID,
		Label:     ns.Label,
		Date:      date,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateSession(ctx, sess)
}

func (svc *sessionService) GetByID(ctx context.Context, id, curUserID string) (Session, error) {
	sess, err := svc.repo.GetSessionByID(ctx, id)
	if err != nil {
		return Session{}, err
	}
	crs, err := svc.crsRepo.GetCourseByID(ctx, sess.CourseID)
	if err != nil {
		return Session{}, err
	}
	if err = RequireOwner(curUserID, crs); err != nil {
		return Session{}, err
	}
	return sess, nil
}

func (svc *sessionService) QueryByCourse(ctx context.Context, courseID, curUserID string) ([]Session, error) {
	crs, err := svc.crsRepo.GetCourseByIDWithStudents(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if err = RequireParticipant(curUserID, crs); err != nil {
		return nil, err
	}
	return svc.repo.QuerySessionsByCourse(ctx, crs.ID)
}

func (svc *sessionService) Update(ctx context.Context, id string, us UpdateSession, curUserID string) (Session, error) {
	sess, err := svc.repo.GetSessionByID(ctx, id)
	if err != nil {
		return Session{}, err
	}
	crs, err := svc.crsRepo.GetCourseByID(ctx, sess.CourseID)
	if err != nil {
		return Session{}, err
	}
	if err = RequireOwner(curUserID, crs); err != nil {
		return Session{}, err
	}

	sess.Label = us.Label
	sess.Date = us.Date
	if us.IsCancelled != nil {
		sess.IsCancelled = *us.IsCancelled
	}
	sess.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateSession(ctx, sess)
}

func (svc *sessionService) Delete(ctx context.Context, id, curUserID string) error {
	sess, err := svc.repo.GetSessionByID(ctx, id)
	if err != nil {
		return err
	}
	crs, err := svc.crsRepo.GetCourseByID(ctx, sess.CourseID)
	if err != nil {
		return err
	}
	if err = RequireOwner(curUserID, crs); err != nil {
		return err
	}
	return svc.repo.DeleteSessionsByID(ctx, sess.ID)
}
