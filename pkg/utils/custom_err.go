package utils

import "errors"

var (
	ErrAccountNotFound    = errors.New("account not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrPreconditionFailed covers purpose-specific state that disallows
	// starting an operation, e.g. activating an already active account.
	ErrPreconditionFailed = errors.New("precondition failed")

	// ErrInvalidOrExpiredToken is deliberately uniform: callers cannot tell
	// a wrong token from an expired one, an already consumed one, or an
	// unknown account.
	ErrInvalidOrExpiredToken = errors.New("invalid or expired token")

	ErrDeliveryFailed = errors.New("could not send email")
	ErrDatabaseError  = errors.New("database error")

	ErrInvalidPage      = errors.New("invalid page parameter")
	ErrInvalidPageSize  = errors.New("invalid page size parameter")
	ErrInvalidListParam = errors.New("invalid list parameter")
	ErrTourNotFound     = errors.New("tour not found")
)
