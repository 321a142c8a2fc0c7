package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sakif/taskboard/internal/apperror"
	"github.com/sakif/taskboard/internal/model"
	"github.com/sakif/taskboard/internal/repository"
)

// compile-time check that *UserStore implements repository.UserRepository
var _ repository.UserRepository = (*UserStore)(nil)

// UserStore is the credential store: the users table.
type UserStore struct {
	db *DB
}

// Create inserts a new account and fills in user.ID and user.CreatedAt.
//
// The UNIQUE constraints on username and email are the final word on
// duplicates: if two registrations race past the service's existence check,
// the loser gets apperror.ErrConflict here.
func (s *UserStore) Create(ctx context.Context, user *model.User) error {
	user.CreatedAt = now()

	err := s.db.conn.QueryRowContext(ctx, s.db.q(
		`INSERT INTO users (username, email, password, created_at)
		 VALUES (?, ?, ?, ?)
		 RETURNING id`),
		user.Username,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
	).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("User already exists")
		}
		return fmt.Errorf("sqlstore: inserting user %q: %w", user.Username, err)
	}

	return nil
}

// GetByEmail looks up an account by its email address.
// Returns apperror.ErrNotFound if no account uses that email.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User

	err := s.db.conn.QueryRowContext(ctx, s.db.q(
		`SELECT id, username, email, password, created_at
		 FROM users WHERE email = ?`),
		email,
	).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("User")
		}
		return nil, fmt.Errorf("sqlstore: getting user by email: %w", err)
	}

	return &u, nil
}

// ExistsByEmailOrUsername reports whether any account already uses the
// email OR the username.
func (s *UserStore) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	var exists bool

	err := s.db.conn.QueryRowContext(ctx, s.db.q(
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = ? OR username = ?)`),
		email,
		username,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("sqlstore: checking existing user: %w", err)
	}

	return exists, nil
}

// now is the store's clock. Postgres keeps microseconds, so the value is
// truncated to what every dialect can round-trip.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
