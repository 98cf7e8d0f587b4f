package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMemberNotFound     = errors.New("member not found")

	// Refresh-token taxonomy, checked in this order on refresh.
	ErrTokenInvalid         = errors.New("token invalid")
	ErrTokenExpired         = errors.New("token expired")
	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	ErrTokenBlacklisted     = errors.New("token blacklisted")

	// ErrTokenConflict: token string collided with an existing ledger row.
	// Retryable; the caller just logs in or refreshes again.
	ErrTokenConflict = errors.New("token conflict, retry")
)
