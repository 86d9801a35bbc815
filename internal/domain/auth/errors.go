package auth

import "errors"

var (
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTokenExpired       = errors.New("token has expired")
	ErrPositionNotAllowed = errors.New("position is not allowed to view the dashboard")
)
