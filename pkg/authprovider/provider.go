// Package authprovider abstracts the external identity service that is
// authoritative for member logins. The credential lifecycle always updates the
// provider before touching local records.
package authprovider

import (
	"context"
	"errors"
)

var (
	ErrInvalidCredentials = errors.New("invalid phone or password")
	ErrProfileNotFound    = errors.New("profile not registered with auth provider")
	ErrTimeout            = errors.New("auth provider timed out")
	ErrUnavailable        = errors.New("auth provider unavailable")
)

type Provider interface {
	// UpdatePassword sets the profile's password at the provider. Must succeed
	// before any local PreRegistrationAttempt row is written.
	UpdatePassword(ctx context.Context, profileID uint, plaintext string) error
	// SignIn verifies credentials. The phone is the digits-only canonical form.
	SignIn(ctx context.Context, phone, plaintext string) (profileID uint, err error)
}
