// Package users holds the user identities recorded as created_by on
// journal entries. Request authentication is out of scope; identities
// exist so postings stay attributable.
package users

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// User is an identity that can author journal entries.
type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RegisterInput is the request to create a user.
type RegisterInput struct {
	Email    string
	Name     string
	Password string
}

var (
	// ErrNotFound indicates a missing user.
	ErrNotFound = errors.New("users: not found")
	// ErrDuplicateEmail indicates an email already in use.
	ErrDuplicateEmail = errors.New("users: email already registered")
	// ErrInvalidInput indicates a rejected users request.
	ErrInvalidInput = errors.New("users: invalid input")
	// ErrBadCredentials indicates a failed password check.
	ErrBadCredentials = errors.New("users: bad credentials")
)

func (in RegisterInput) validate() error {
	if !strings.Contains(in.Email, "@") {
		return fmt.Errorf("%w: valid email required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name required", ErrInvalidInput)
	}
	if len(in.Password) < 8 {
		return fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidInput)
	}
	return nil
}
