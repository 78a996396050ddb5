package repository

import "errors"

var (
	// ErrNotFound is returned when no record matches the query.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateUsername is returned when creating a user whose username is taken.
	ErrDuplicateUsername = errors.New("username already exists")
)
