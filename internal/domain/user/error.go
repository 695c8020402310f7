package user

import "errors"

var (
	ErrInvalidAuth      = errors.New("invalid credentials")
	ErrNotAuthenticated = errors.New("not authenticated")
)
