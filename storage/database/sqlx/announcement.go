package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/kelasi/core/announcement"
)

type announcementRow struct {
	ID         string    `db:"id"`
	CourseID   string    `db:"course_id"`
	Title      string    `db:"title"`
	Content    string    `db:"content"`
	PostedByID string    `db:"posted_by_id"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (r announcementRow) toCore() announcement.Announcement {
	return announcement.Announcement{
		ID:         r.ID,
		CourseID:   r.CourseID,
		Title:      r.Title,
		Content:    r.Content,
		PostedByID: r.PostedByID,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

type announcementRepository struct {
	db *sqlx.DB
}

var _ announcement.Repository = (*announcementRepository)(nil)

func NewAnnouncementRepository(db *sqlx.DB) announcement.Repository {
	return &announcementRepository{db: db}
}

func trapAnnouncementNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return announcement.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo *announcementRepository) CreateAnnouncement(ctx context.Context, ann announcement.Announcement) (announcement.Announcement, error) {
	ann.ID = uuid.New().String()
	q := `INSERT INTO announcement (id, course_id, title, content, posted_by_id, created_at, updated_at)
		  VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := repo.db.ExecContext(ctx, q,
		ann.ID, ann.CourseID, ann.Title, ann.Content, ann.PostedByID, ann.CreatedAt, ann.UpdatedAt)
	if err != nil {
		return announcement.Announcement{}, errors.Wrap(err, "inserting announcement")
	}
	return ann, nil
}

func (repo *announcementRepository) GetAnnouncementByID(ctx context.Context, id string) (announcement.Announcement, error) {
	if _, err := uuid.Parse(id); err != nil {
		return announcement.Announcement{}, announcement.ErrNotFound
	}
	var row announcementRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM announcement WHERE id = $1`, id); err != nil {
		return announcement.Announcement{}, trapAnnouncementNoRowsErr(err, "finding announcement by ID")
	}
	return row.toCore(), nil
}

func (repo *announcementRepository) QueryAnnouncementsByCourse(ctx context.Context, courseID string) ([]announcement.Announcement, error) {
	var rows []announcementRow
	q := `SELECT * FROM announcement WHERE course_id = $1 ORDER BY created_at DESC`
	if err := repo.db.SelectContext(ctx, &rows, q, courseID); err != nil {
		return nil, errors.Wrap(err, "querying announcements")
	}
	anns := make([]announcement.Announcement, 0, len(rows))
	for _, row := range rows {
		anns = append(anns, row.toCore())
	}
	return anns, nil
}

func (repo *announcementRepository) UpdateAnnouncement(ctx context.Context, ann announcement.Announcement) (announcement.Announcement, error) {
	q := `UPDATE announcement SET title = $2, content = $3, updated_at = $4 WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, q, ann.ID, ann.Title, ann.Content, ann.UpdatedAt)
	if err != nil {
		return announcement.Announcement{}, errors.Wrap(err, "updating announcement")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return announcement.Announcement{}, announcement.ErrNotFound
	}
	return repo.GetAnnouncementByID(ctx, ann.ID)
}

func (repo *announcementRepository) DeleteAnnouncementsByID(ctx context.Context, ids ...string) error {
	q := `DELETE FROM announcement WHERE id = ANY($1)`
	if _, err := repo.db.ExecContext(ctx, q, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "deleting announcements")
	}
	return nil
}
