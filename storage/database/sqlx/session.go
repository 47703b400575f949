package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core/course"
)

type sessionRow struct {
	ID          string    `db:"id"`
	CourseID    string    `db:"course_id"`
	Label       string    `db:"label"`
	Date        time.Time `db:"date"`
	IsCancelled bool      `db:"is_cancelled"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r sessionRow) toCore() course.Session {
	return course.Session{
		ID:          r.ID,
		CourseID:    r.CourseID,
		Label:       r.Label,
		Date:        r.Date,
		IsCancelled: r.IsCancelled,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

type sessionRepository struct {
	db *sqlx.DB
}

var _ course.SessionRepository = (*sessionRepository)(nil)

func NewSessionRepository(db *sqlx.DB) course.SessionRepository {
	return &sessionRepository{db: db}
}

func trapSessionNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return course.ErrSessionNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo *sessionRepository) CreateSession(ctx context.Context, sess course.Session) (course.Session, error) {
	sess.ID = uuid.New().String()
	q := `INSERT INTO course_session (id, course_id, label, date, is_cancelled, created_at, updated_at)
		  VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := repo.db.ExecContext(ctx, q,
		sess.ID, sess.CourseID, sess.Label, sess.Date, sess.IsCancelled, sess.CreatedAt, sess.UpdatedAt)
	if err != nil {
		return course.Session{}, errors.Wrap(err, "inserting session")
	}
	return sess, nil
}

func (repo *sessionRepository) GetSessionByID(ctx context.Context, id string) (course.Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return course.Session{}, course.ErrSessionNotFound
	}
	var row sessionRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM course_session WHERE id = $1`, id); err != nil {
		return course.Session{}, trapSessionNoRowsErr(err, "finding session by ID")
	}
	return row.toCore(), nil
}

func (repo *sessionRepository) QuerySessionsByCourse(ctx context.Context, courseID string) ([]course.Session, error) {
	var rows []sessionRow
	q := `SELECT * FROM course_session WHERE course_id = $1 ORDER BY date`
	if err := repo.db.SelectContext(ctx, &rows, q, courseID); err != nil {
		return nil, errors.Wrap(err, "querying sessions")
	}
	sessions := make([]course.Session, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, row.toCore())
	}
	return sessions, nil
}

func (repo *sessionRepository) UpdateSession(ctx context.Context, sess course.Session) (course.Session, error) {
	q := `UPDATE course_session SET label = $2, date = $3, is_cancelled = $4, updated_at = $5 WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, q, sess.ID, sess.Label, sess.Date, sess.IsCancelled, sess.UpdatedAt)
	if err != nil {
		return course.Session{}, errors.Wrap(err, "updating session")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return course.Session{}, course.ErrSessionNotFound
	}
	return repo.GetSessionByID(ctx, sess.ID)
}

func (repo *sessionRepository) DeleteSessionsByID(ctx context.Context, ids ...string) error {
	q := `DELETE FROM course_session WHERE id = ANY($1)`
	if _, err := repo.db.ExecContext(ctx, q, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "deleting sessions")
	}
	return nil
}
