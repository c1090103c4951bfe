package common

import "errors"

// Business logic errors
var (
	// General errors
	ErrNotFound  = errors.New("resource not found")
	ErrForbidden = errors.New("forbidden")

	// Circle errors
	ErrCircleNotFound = errors.New("circle not found")

	// Event errors
	ErrEventNotFound = errors.New("event not found")

	// Auth errors
	ErrUnauthorized = errors.New("unauthorized")

	// Validation errors
	ErrInvalidInput = errors.New("invalid input")

	// Session errors
	ErrNoActiveCircle = errors.New("no active circle")
)
