// Package auth provides password hashing, bearer-token issuance and
// verification, and the HTTP middleware that binds a verified identity to
// each protected request.
//
// AUTHENTICATION FLOW OVERVIEW:
// 1. POST /api/auth/register stores a bcrypt hash of the password
// 2. POST /api/auth/login verifies the password and issues a signed JWT
// 3. The client sends "Authorization: Bearer <jwt>" on every task request
// 4. RequireAuth verifies the JWT and stores the caller's Identity in the
//    request context
//
// JWT STRUCTURE (three base64-encoded parts separated by dots):
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Header: algorithm + token type → {"alg":"HS256","typ":"JWT"}
//	- Payload: claims → {"userId":7,"username":"alice","exp":...}
//	- Signature: HMAC-SHA256(header+"."+payload, secretKey)
//
// Verification needs only the secret: there is no session table and no
// server-side revocation. A token is valid until its signature fails or its
// expiry passes.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/xid"

	"github.com/sakif/taskboard/internal/model"
)

const (
	// DefaultTokenTTL is how long an issued token stays valid.
	DefaultTokenTTL = 7 * 24 * time.Hour

	// MinSecretLength is the shortest signing secret NewTokenService accepts.
	MinSecretLength = 16

	issuer = "taskboard"
)

var (
	// ErrInvalidToken covers bad signatures, malformed payloads, wrong
	// algorithms and tokens that don't name a user.
	ErrInvalidToken = errors.New("auth: invalid token")

	// ErrTokenExpired is returned for a correctly signed token past its expiry.
	ErrTokenExpired = errors.New("auth: token expired")
)

// TokenService handles JWT creation and validation.
//
// It holds the HMAC secret key used to sign and verify tokens.
// The same secret must be used for both operations.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService with the given secret and lifetime.
//
// There is deliberately no default secret: an empty or short secret is an
// error, and the server refuses to start.
// Example: JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string, ttl time.Duration) (*TokenService, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("auth: JWT secret must be at least %d characters", MinSecretLength)
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl}, nil
}

// claims is the JWT payload.
//
// We embed jwt.RegisteredClaims for the standard fields (sub, iss, exp, iat,
// jti) and add the two values handlers need without a database round trip.
type claims struct {
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Issue creates and signs a token for the given user that expires after the
// service's TTL (7 days unless configured otherwise).
func (s *TokenService) Issue(userID int64, username string) (string, error) {
	return s.issueWithTTL(userID, username, s.ttl)
}

func (s *TokenService) issueWithTTL(userID int64, username string, ttl time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        xid.New().String(),
			Subject:   strconv.FormatInt(userID, 10),
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	// jwt.NewWithClaims creates an unsigned token with the given algorithm.
	// SignedString(key) signs it and returns the complete JWT string.
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Verify parses and checks a token string and returns the identity it carries.
//
// VALIDATION CHECKS (performed by the jwt library):
//   - Signature is valid (wasn't tampered with)
//   - Token is not expired, and has an expiry at all
//   - Issuer matches "taskboard"
//   - Algorithm is HS256 (prevents algorithm confusion attacks, e.g. "none")
//
// Every failure wraps either ErrTokenExpired or ErrInvalidToken.
func (s *TokenService) Verify(tokenStr string) (model.Identity, error) {
	c := &claims{}
	token, err := jwt.ParseWithClaims(
		tokenStr,
		c,
		func(token *jwt.Token) (any, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return model.Identity{}, ErrTokenExpired
		}
		return model.Identity{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return model.Identity{}, ErrInvalidToken
	}

	if c.UserID <= 0 || c.Subject != strconv.FormatInt(c.UserID, 10) {
		return model.Identity{}, fmt.Errorf("%w: token does not name a user", ErrInvalidToken)
	}

	return model.Identity{UserID: c.UserID, Username: c.Username}, nil
}
