package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vyrodovalexey/userapi/internal/user"
	"github.com/vyrodovalexey/userapi/internal/util"
)

const (
	queryScanAll     = `SELECT id, firstname, lastname, email FROM users ORDER BY id`
	queryGetByID     = `SELECT id, firstname, lastname, email FROM users WHERE id = $1`
	queryByEmail     = `SELECT id, firstname, lastname, email, password FROM users WHERE email = $1`
	queryInsert      = `INSERT INTO users (firstname, lastname, email, password) VALUES ($1, $2, $3, $4) RETURNING id`
	queryDeleteByID  = `DELETE FROM users WHERE id = $1`
	uniqueViolation  = "23505"
	emailTakenReason = "Already registered"
)

// columns maps updatable fields to their column names.
var columns = map[string]string{
	user.FieldFirstname: "firstname",
	user.FieldLastname:  "lastname",
	user.FieldEmail:     "email",
}

// UserStore stores users in the users table.
type UserStore struct {
	db      *sql.DB
	timeout time.Duration
}

// NewUserStore creates a UserStore. A positive timeout bounds every
// statement.
func NewUserStore(db *sql.DB, timeout time.Duration) *UserStore {
	return &UserStore{db: db, timeout: timeout}
}

func (s *UserStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

// ScanAll returns every user ordered by id.
func (s *UserStore) ScanAll(ctx context.Context) ([]user.User, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, queryScanAll)
	if err != nil {
		return nil, util.NewStoreError("users.scan", err)
	}
	defer rows.Close()

	users := make([]user.User, 0)
	for rows.Next() {
		var u user.User
		if err := rows.Scan(&u.ID, &u.Firstname, &u.Lastname, &u.Email); err != nil {
			return nil, util.NewStoreError("users.scan", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, util.NewStoreError("users.scan", err)
	}
	return users, nil
}

// GetByID returns the user with id, or nil when there is none.
func (s *UserStore) GetByID(ctx context.Context, id int64) (*user.User, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var u user.User
	err := s.db.QueryRowContext(ctx, queryGetByID, id).Scan(&u.ID, &u.Firstname, &u.Lastname, &u.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, util.NewStoreError("users.get", err)
	}
	return &u, nil
}

// CredentialsByEmail returns the user owning email including its
// password hash, or user.ErrNotFound.
func (s *UserStore) CredentialsByEmail(ctx context.Context, email string) (*user.User, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var u user.User
	err := s.db.QueryRowContext(ctx, queryByEmail, email).
		Scan(&u.ID, &u.Firstname, &u.Lastname, &u.Email, &u.Password)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, user.ErrNotFound
	}
	if err != nil {
		return nil, util.NewStoreError("users.credentials", err)
	}
	return &u, nil
}

// Insert stores u and returns the assigned id. A duplicate email is
// reported as a *user.ValidationError.
func (s *UserStore) Insert(ctx context.Context, u *user.User) (int64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var id int64
	err := s.db.QueryRowContext(ctx, queryInsert, u.Firstname, u.Lastname, u.Email, u.Password).Scan(&id)
	if err != nil {
		return 0, translate("users.insert", err)
	}
	return id, nil
}

// UpdateFields writes changes to the row with id and returns the number
// of rows affected. No changes means no statement and zero rows.
func (s *UserStore) UpdateFields(ctx context.Context, id int64, changes []user.Change) (int64, error) {
	if len(changes) == 0 {
		return 0, nil
	}

	assignments := make([]string, 0, len(changes))
	args := make([]any, 0, len(changes)+1)
	for _, change := range changes {
		column, ok := columns[change.Field]
		if !ok {
			return 0, fmt.Errorf("%w: field %q is not updatable", util.ErrInvalidInput, change.Field)
		}
		args = append(args, change.Value)
		assignments = append(assignments, column+" = $"+strconv.Itoa(len(args)))
	}
	args = append(args, id)
	query := "UPDATE users SET " + strings.Join(assignments, ", ") + " WHERE id = $" + strconv.Itoa(len(args))

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, translate("users.update", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, translate("users.update", err)
	}
	return affected, nil
}

// DeleteByID removes the row with id and reports whether it existed.
func (s *UserStore) DeleteByID(ctx context.Context, id int64) (bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	result, err := s.db.ExecContext(ctx, queryDeleteByID, id)
	if err != nil {
		return false, util.NewStoreError("users.delete", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, util.NewStoreError("users.delete", err)
	}
	return affected > 0, nil
}

// Ping checks the connection.
func (s *UserStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// translate maps a unique violation on email to a validation error and
// wraps everything else as a store error.
func translate(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return &user.ValidationError{Fields: map[string]string{user.FieldEmail: emailTakenReason}}
	}
	return util.NewStoreError(op, err)
}
