package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kelasi/core/attendance"
)

type attendanceRow struct {
	ID           string      `db:"id"`
	SessionID    string      `db:"session_id"`
	StudentID    string      `db:"student_id"`
	Status       string      `db:"status"`
	ExcuseReason null.String `db:"excuse_reason"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
}

func (r attendanceRow) toCore() attendance.Attendance {
	return attendance.Attendance{
		ID:           r.ID,
		SessionID:    r.SessionID,
		StudentID:    r.StudentID,
		Status:       r.Status,
		ExcuseReason: r.ExcuseReason,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

type attendanceRepository struct {
	db *sqlx.DB
}

var _ attendance.Repository = (*attendanceRepository)(nil)

func NewAttendanceRepository(db *sqlx.DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

func trapAttendanceNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return attendance.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo *attendanceRepository) CreateAttendance(ctx context.Context, att attendance.Attendance) (attendance.Attendance, error) {
	att.ID = uuid.New().String()
	now := time.Now().UTC()
	att.CreatedAt = now
	att.UpdatedAt = now

	// the unique (session_id, student_id) index makes concurrent claims collapse
	// into a single record; losers fall through to the existing row
	q := `INSERT INTO attendance (id, session_id, student_id, status, excuse_reason, created_at, updated_at)
		  VALUES ($1, $2, $3, $4, $5, $6, $7)
		  ON CONFLICT (session_id, student_id) DO NOTHING`
	res, err := repo.db.ExecContext(ctx, q,
		att.ID, att.SessionID, att.StudentID, att.Status, att.ExcuseReason, att.CreatedAt, att.UpdatedAt)
	if err != nil {
		return attendance.Attendance{}, errors.Wrap(err, "inserting attendance")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repo.GetAttendanceBySessionAndStudent(ctx, att.SessionID, att.StudentID)
	}
	return att, nil
}

func (repo *attendanceRepository) GetAttendanceByID(ctx context.Context, id string) (attendance.Attendance, error) {
	if _, err := uuid.Parse(id); err != nil {
		return attendance.Attendance{}, attendance.ErrNotFound
	}
	var row attendanceRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM attendance WHERE id = $1`, id); err != nil {
		return attendance.Attendance{}, trapAttendanceNoRowsErr(err, "finding attendance by ID")
	}
	return row.toCore(), nil
}

func (repo *attendanceRepository) GetAttendanceBySessionAndStudent(ctx context.Context, sessionID, studentID string) (attendance.Attendance, error) {
	var row attendanceRow
	q := `SELECT * FROM attendance WHERE session_id = $1 AND student_id = $2`
	if err := repo.db.GetContext(ctx, &row, q, sessionID, studentID); err != nil {
		return attendance.Attendance{}, trapAttendanceNoRowsErr(err, "finding attendance")
	}
	return row.toCore(), nil
}

func (repo *attendanceRepository) QueryAttendancesBySession(ctx context.Context, sessionID string) ([]attendance.Attendance, error) {
	var rows []attendanceRow
	q := `SELECT * FROM attendance WHERE session_id = $1 ORDER BY created_at`
	if err := repo.db.SelectContext(ctx, &rows, q, sessionID); err != nil {
		return nil, errors.Wrap(err, "querying attendances")
	}
	atts := make([]attendance.Attendance, 0, len(rows))
	for _, row := range rows {
		atts = append(atts, row.toCore())
	}
	return atts, nil
}

func (repo *attendanceRepository) UpdateAttendance(ctx context.Context, att attendance.Attendance) error {
	q := `UPDATE attendance SET status = $2, excuse_reason = $3, updated_at = $4 WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, q, att.ID, att.Status, att.ExcuseReason, time.Now().UTC())
	if err != nil {
		return errors.Wrap(err, "updating attendance")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return attendance.ErrNotFound
	}
	return nil
}

func (repo *attendanceRepository) DeleteAttendancesByID(ctx context.Context, ids ...string) error {
	q := `DELETE FROM attendance WHERE id = ANY($1)`
	if _, err := repo.db.ExecContext(ctx, q, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "deleting attendances")
	}
	return nil
}
