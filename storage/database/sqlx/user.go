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

	"github.com/trezcool/kelasi/core/user"
)

type userRow struct {
	ID           string      `db:"id"`
	FirstName    string      `db:"first_name"`
	LastName     string      `db:"last_name"`
	Email        string      `db:"email"`
	Role         string      `db:"role"`
	IsActive     null.Bool   `db:"is_active"`
	PasswordHash null.Bytes  `db:"password_hash"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
	LastLogin    null.Time   `db:"last_login"`
}

func (r userRow) toCore() user.User {
	return user.User{
		ID:           r.ID,
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		Email:        r.Email,
		Role:         r.Role,
		IsActive:     r.IsActive.Ptr(),
		PasswordHash: r.PasswordHash.Bytes,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		LastLogin:    r.LastLogin.Time,
	}
}

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) user.Repository {
	return &userRepository{db: db}
}

// trapNoRowsErr maps psql "no rows" err to user.ErrNotFound
func trapUserNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo *userRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...user.User) error {
	q := `SELECT EXISTS (SELECT 1 FROM "user" WHERE email = $1 AND id <> ALL($2))`
	ids := make([]string, 0, len(excludedUsers))
	for _, u := range excludedUsers {
		ids = append(ids, u.ID)
	}

	var exists bool
	if err := repo.db.GetContext(ctx, &exists, q, email, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if exists {
		return user.ErrEmailExists
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = uuid.New().String()
	q := `INSERT INTO "user" (id, first_name, last_name, email, role, is_active, password_hash, created_at, updated_at)
		  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	isActive := usr.IsActive != nil && *usr.IsActive
	_, err := repo.db.ExecContext(ctx, q,
		usr.ID, usr.FirstName, usr.LastName, usr.Email, usr.Role, isActive, usr.PasswordHash, usr.CreatedAt, usr.UpdatedAt)
	if err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id string) (user.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return user.User{}, user.ErrNotFound
	}
	var row userRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM "user" WHERE id = $1`, id); err != nil {
		return user.User{}, trapUserNoRowsErr(err, "finding user by ID")
	}
	return row.toCore(), nil
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	var row userRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM "user" WHERE email = $1`, email); err != nil {
		return user.User{}, trapUserNoRowsErr(err, "finding user by email")
	}
	return row.toCore(), nil
}

func (repo *userRepository) GetUserWithEnrollments(ctx context.Context, id string) (user.User, error) {
	usr, err := repo.GetUserByID(ctx, id)
	if err != nil {
		return user.User{}, err
	}

	q := `SELECT course_id FROM enrollment WHERE student_id = $1`
	if err = repo.db.SelectContext(ctx, &usr.EnrolledCourseIDs, q, usr.ID); err != nil {
		return user.User{}, errors.Wrap(err, "loading enrollments")
	}
	return usr, nil
}

func (repo *userRepository) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	var rows []userRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM "user" ORDER BY created_at`); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.toCore())
	}
	return users, nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User, isActive *bool) (user.User, error) {
	// only save set fields
	q := `UPDATE "user" SET
			first_name    = COALESCE(NULLIF($2, ''), first_name),
			last_name     = COALESCE(NULLIF($3, ''), last_name),
			email         = COALESCE(NULLIF($4, ''), email),
			password_hash = COALESCE($5, password_hash),
			is_active     = COALESCE($6, is_active),
			last_login    = COALESCE($7, last_login),
			updated_at    = COALESCE($8, updated_at)
		  WHERE id = $1`
	var lastLogin, updatedAt null.Time
	if !usr.LastLogin.IsZero() {
		lastLogin = null.TimeFrom(usr.LastLogin)
	}
	if !usr.UpdatedAt.IsZero() {
		updatedAt = null.TimeFrom(usr.UpdatedAt)
	}
	res, err := repo.db.ExecContext(ctx, q,
		usr.ID, usr.FirstName, usr.LastName, usr.Email, usr.PasswordHash, null.BoolFromPtr(isActive), lastLogin, updatedAt)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return repo.GetUserByID(ctx, usr.ID)
}

func (repo *userRepository) UpdateOrCreateUser(ctx context.Context, usr user.User) (user.User, error) {
	if usr.ID == "" {
		return repo.CreateUser(ctx, usr)
	}
	return repo.UpdateUser(ctx, usr, usr.IsActive)
}

func (repo *userRepository) DeleteUsersByID(ctx context.Context, ids ...string) error {
	q := `DELETE FROM "user" WHERE id = ANY($1)`
	if _, err := repo.db.ExecContext(ctx, q, pq.Array(ids)); err != nil {
		return errors.Wrap(err, "deleting users")
	}
	return nil
}
