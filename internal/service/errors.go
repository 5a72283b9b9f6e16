package service

import "errors"

// Validation and conflict errors are detected before any mutation and map to
// 4xx statuses in the handlers. Upstream errors wrap the provider failure and
// are surfaced to callers as a generic message.
var (
	ErrGroupNotFound   = errors.New("group not found")
	ErrMemberNotFound  = errors.New("member not found")
	ErrAttemptNotFound = errors.New("pre-registration attempt not found")

	ErrNoDrawnNumbers    = errors.New("drawn numbers must contain at least one number")
	ErrBadWinnerPosition = errors.New("winner position must be at least 1")
	ErrQuotaUnknown      = errors.New("winning number does not identify a quota in this group")
	ErrQuotaContemplated = errors.New("quota already contemplated")
	ErrNoEligibleQuotas  = errors.New("group has no active quotas left to draw")
	ErrNoCurrentDraw     = errors.New("group has no active draw to reset")

	ErrAlreadyAccessed = errors.New("already completed first login, use regenerate instead")
	ErrAttemptExpired  = errors.New("expired, create a new pre-registration")
	ErrAlreadyLocked   = errors.New("attempt is currently locked")

	ErrAuthProvider = errors.New("auth provider update failed")
)
