// Package service: authentication business logic.
//
// AuthService sits between the HTTP handlers and the repository/auth
// utilities:
//
//	AuthHandler (HTTP) → AuthService (business rules) → UserRepository (DB)
//	                   ↘ PasswordService (bcrypt), TokenService (JWT)
//
// KEY RESPONSIBILITIES:
//   - Validate registration input in a fixed order (first failure wins)
//   - Hash passwords before they reach the store
//   - Verify credentials and issue a bearer token on login
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/sakif/taskboard/internal/apperror"
	"github.com/sakif/taskboard/internal/auth"
	"github.com/sakif/taskboard/internal/model"
	"github.com/sakif/taskboard/internal/repository"
)

// MinPasswordLength is counted in characters (runes), not bytes.
const MinPasswordLength = 6

// Messages returned to clients. They are part of the API contract.
const (
	MsgMissingFields      = "Please provide all required fields"
	MsgPasswordMismatch   = "Passwords do not match"
	MsgPasswordTooShort   = "Password must be at least 6 characters"
	MsgPasswordTooLong    = "Password must be 72 bytes or fewer"
	MsgUserExists         = "User already exists"
	MsgMissingCredentials = "Please provide email and password"
	MsgInvalidCredentials = "Invalid email or password"
)

// AuthService handles the authentication business logic.
//
// DEPENDENCIES (injected via NewAuthService):
//   - users      repository.UserRepository  → read/write user records
//   - tokens     *auth.TokenService         → issue JWTs
//   - passwords  *auth.PasswordService      → bcrypt hashing
//   - logger     *slog.Logger               → structured logging
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
// Call this when wiring the dependency graph in server.New.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// RegisterInput is what a client submits to create an account.
type RegisterInput struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
}

// AuthResult is returned by Login.
// It bundles the user record and the issued JWT so the handler can respond
// in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// Register validates in and creates the account.
//
// VALIDATION ORDER:
// The checks run in a fixed order and the first failure is returned, so a
// client that gets "Passwords do not match" knows every required field was
// present.
//
// DUPLICATES:
// The existence check gives the friendly error in the common case. Two
// registrations racing past it are still caught: the store's UNIQUE
// constraints reject the loser with apperror.ErrConflict, carrying the
// same message.
//
// Registration does not log the user in; no token is issued.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)

	if username == "" || email == "" || in.Password == "" {
		return nil, apperror.ValidationFailed("", MsgMissingFields)
	}
	if in.Password != in.ConfirmPassword {
		return nil, apperror.ValidationFailed("confirmPassword", MsgPasswordMismatch)
	}
	if utf8.RuneCountInString(in.Password) < MinPasswordLength {
		return nil, apperror.ValidationFailed("password", MsgPasswordTooShort)
	}
	if len(in.Password) > auth.MaxPasswordBytes {
		return nil, apperror.ValidationFailed("password", MsgPasswordTooLong)
	}

	exists, err := s.users.ExistsByEmailOrUsername(ctx, email, username)
	if err != nil {
		s.logger.Error("failed to check existing user",
			slog.String("username", username),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	if exists {
		return nil, apperror.Conflict(MsgUserExists)
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if !errors.Is(err, apperror.ErrConflict) {
			s.logger.Error("failed to create user",
				slog.String("username", username),
				slog.String("error", err.Error()),
			)
		}
		return nil, err
	}

	s.logger.Info("user registered",
		slog.Int64("userID", user.ID),
		slog.String("username", user.Username),
	)

	return user, nil
}

// Login verifies the credentials and issues a bearer token.
//
// SAME ERROR FOR BOTH FAILURES:
// An unknown email and a wrong password both return MsgInvalidCredentials,
// so the response doesn't reveal which emails have accounts.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, apperror.ValidationFailed("", MsgMissingCredentials)
	}

	// Registration never stores a longer password, so it cannot match.
	if len(password) > auth.MaxPasswordBytes {
		return nil, apperror.Unauthorized(MsgInvalidCredentials)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.Unauthorized(MsgInvalidCredentials)
		}
		s.logger.Error("failed to look up user", slog.String("error", err.Error()))
		return nil, err
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			s.logger.Info("login rejected", slog.Int64("userID", user.ID))
			return nil, apperror.Unauthorized(MsgInvalidCredentials)
		}
		return nil, err
	}

	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("issuing token for user %d: %w", user.ID, err)
	}

	s.logger.Info("user logged in",
		slog.Int64("userID", user.ID),
		slog.String("username", user.Username),
	)

	return &AuthResult{User: user, Token: token}, nil
}
