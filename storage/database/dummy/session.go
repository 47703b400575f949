package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/kelasi/core/course"
)

type sessionRepository struct {
	db *DB
}

var _ course.SessionRepository = (*sessionRepository)(nil)

func NewSessionRepository(db *DB) course.SessionRepository {
	return &sessionRepository{db: db}
}

func (repo *sessionRepository) CreateSession(_ context.Context, sess course.Session) (course.Session, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	sess.ID = uuid.New().String()
	repo.db.sessions[sess.ID] = &sess
	return sess, nil
}

func (repo *sessionRepository) GetSessionByID(_ context.Context, id string) (course.Session, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if sess, ok := repo.db.sessions[id]; ok {
		return *sess, nil
	}
	return course.Session{}, course.ErrSessionNotFound
}

func (repo *sessionRepository) QuerySessionsByCourse(_ context.Context, courseID string) ([]course.Session, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var sessions []course.Session
	for _, sess := range repo.db.sessions {
		if sess.CourseID == courseID {
			sessions = append(sessions, *sess)
		}
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].Date.Before(sessions[j].Date) })
	return sessions, nil
}

func (repo *sessionRepository) UpdateSession(_ context.Context, sess course.Session) (course.Session, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	orig, ok := repo.db.sessions[sess.ID]
	if !ok {
		return course.Session{}, course.ErrSessionNotFound
	}
	orig.Label = sess.Label
	orig.Date = sess.Date
	orig.IsCancelled = sess.IsCancelled
	orig.UpdatedAt = sess.UpdatedAt
	return *orig, nil
}

func (repo *sessionRepository) DeleteSessionsByID(_ context.Context, ids ...string) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, id := range ids {
		delete(repo.db.sessions, id)
		for attID, att := range repo.db.attendances {
			if att.SessionID == id {
				delete(repo.db.attendances, attID)
			}
		}
	}
	return nil
}
