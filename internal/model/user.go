// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data: similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

import "time"

// User represents a registered account.
//
// The ID is assigned by the store on insert (an auto-increment key), so a
// freshly built User has ID == 0 until the repository fills it in.
//
// PASSWORD HASH AND JSON:
// The `json:"-"` tag means encoding/json skips the field entirely. Even if a
// handler accidentally serialises a whole User, the hash never leaves the
// server. Handlers still respond with PublicUser rather than User.
type User struct {
	ID           int64     `json:"id"        db:"id"`
	Username     string    `json:"username"  db:"username"` // unique
	Email        string    `json:"email"     db:"email"`    // unique
	PasswordHash string    `json:"-"         db:"password"` // bcrypt output, never plaintext
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// PublicUser is the projection of a User that may be sent to clients.
type PublicUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Public returns the client-safe projection of u.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
	}
}

// Identity is who a verified bearer token says the caller is.
// It is resolved once per request by the auth middleware.
type Identity struct {
	UserID   int64
	Username string
}
