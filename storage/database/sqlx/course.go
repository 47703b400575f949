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

	"github.com/trezcool/kelasi/core/course"
)

type courseRow struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	MaxMissed   null.Int  `db:"max_missed"`
	JoinCode    string    `db:"join_code"`
	ProfessorID string    `db:"professor_id"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r courseRow) toCore() course.Course {
	return course.Course{
		ID:          r.ID,
		Name:        r.Name,
		MaxMissed:   r.MaxMissed,
		JoinCode:    r.JoinCode,
		ProfessorID: r.ProfessorID,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

type courseRepository struct {
	db *sqlx.DB
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(db *sqlx.DB) course.Repository {
	return &courseRepository{db: db}
}

func trapCourseNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return course.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo *courseRepository) CreateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	crs.ID = uuid.New().String()
	q := `INSERT INTO course (id, name, max_missed, join_code, professor_id, created_at, updated_at)
		  VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := repo.db.ExecContext(ctx, q,
		crs.ID, crs.Name, crs.MaxMissed, crs.JoinCode, crs.ProfessorID, crs.CreatedAt, crs.UpdatedAt)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "inserting course")
	}
	return crs, nil
}

func (repo *courseRepository) GetCourseByID(ctx context.Context, id string) (course.Course, error) {
	if _, err := uuid.Parse(id); err != nil {
		return course.Course{}, course.ErrNotFound
	}
	var row courseRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM course WHERE id = $1`, id); err != nil {
		return course.Course{}, trapCourseNoRowsErr(err, "finding course by ID")
	}
	return row.toCore(), nil
}

func (repo *courseRepository) GetCourseByIDWithStudents(ctx context.Context, id string) (course.Course, error) {
	crs, err := repo.GetCourseByID(ctx, id)
	if err != nil {
		return course.Course{}, err
	}
	if crs.StudentIDs, err = repo.studentIDs(ctx, crs.ID); err != nil {
		return course.Course{}, err
	}
	return crs, nil
}

func (repo *courseRepository) GetCourseByJoinCode(ctx context.Context, joinCode string) (course.Course, error) {
	var row courseRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM course WHERE join_code = $1`, joinCode); err != nil {
		return course.Course{}, trapCourseNoRowsErr(err, "finding course by join code")
	}
	crs := row.toCore()
	var err error
	if crs.StudentIDs, err = repo.studentIDs(ctx, crs.ID); err != nil {
		return course.Course{}, err
	}
	return crs, nil
}

func (repo *courseRepository) studentIDs(ctx context.Context, courseID string) ([]string, error) {
	var ids []string
	q := `SELECT student_id FROM enrollment WHERE course_id = $1`
	if err := repo.db.SelectContext(ctx, &ids, q, courseID); err != nil {
		return nil, errors.Wrap(err, "loading course students")
	}
	return ids, nil
}

func (repo *courseRepository) QueryCoursesByUser(ctx context.Context, userID string) ([]course.Course, error) {
	q := `SELECT c.* FROM course c
		  LEFT JOIN enrollment e ON e.course_id = c.id AND e.student_id = $1
		  WHERE c.professor_id = $1 OR e.student_id IS NOT NULL
		  ORDER BY c.created_at`
	var rows []courseRow
	if err := repo.db.SelectContext(ctx, &rows, q, userID); err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}

	courses := make([]course.Course, 0, len(rows))
	for _, row := range rows {
		crs := row.toCore()
		var err error
		if crs.StudentIDs, err = repo.studentIDs(ctx, crs.ID); err != nil {
			return nil, err
		}
		courses = append(courses, crs)
	}
	return courses, nil
}

func (repo *courseRepository) UpdateCourse(ctx context.Context, crs course.Course) (course.Course, error) {
	q := `UPDATE course SET name = $2, max_missed = $3, updated_at = $4 WHERE id = $1`
	res, err := repo.db.ExecContext(ctx, q, crs.ID, crs.Name, crs.MaxMissed, crs.UpdatedAt)
	if err != nil {
		return course.Course{}, errors.Wrap(err, "updating course")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return course.Course{}, course.ErrNotFound
	}
	return repo.GetCourseByID(ctx, crs.ID)
}

func (repo *courseRepository) AddStudent(ctx context.Context, courseID, studentID string) error {
	q := `INSERT INTO enrollment (course_id, student_id, created_at) VALUES ($1, $2, $3)
		  ON CONFLICT (course_id, student_id) DO NOTHING`
	if _, err := repo.db.ExecContext(ctx, q, courseID, studentID, time.Now().UTC()); err != nil {
		return errors.Wrap(err, "enrolling student")
	}
	return nil
}

func (repo *courseRepository) RemoveStudent(ctx context.Context, courseID, studentID string) error {
	q := `DELETE FROM enrollment WHERE course_id = $1 AND student_id = $2`
	if _, err := repo.db.ExecContext(ctx, q, courseID, studentID); err != nil {
		return errors.Wrap(err, "unenrolling student")
	}
	return nil
}

func (repo *courseRepository) DeleteCoursesByID(ctx context.Context, ids ...string) error {
	q := `DELETE FROM course WHERE id = ANY($1)`
	if _, err := repo.db.ExecContext(ctx, q, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "deleting courses")
	}
	return nil
}
