package library

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	// ErrInUse is returned when association records still reference the entity.
	ErrInUse = errors.New("in use")
)
