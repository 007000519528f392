package models

import "errors"

var (
	// ErrNotFound is returned when a user or an owned watchlist entry does not exist
	ErrNotFound = errors.New("not found")

	// ErrDuplicateUsername is returned when registering a username that is taken
	ErrDuplicateUsername = errors.New("username already taken")

	// ErrDuplicateEmail is returned when an email is already registered
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrUnauthenticated covers both unknown usernames and wrong passwords
	ErrUnauthenticated = errors.New("invalid credentials")

	// ErrInvalidInput is returned when a required field is missing
	ErrInvalidInput = errors.New("invalid input")
)
