package services

import "errors"

var (
	// ErrNotFound covers both a genuinely missing record and an owner
	// mismatch, so the existence of other users' aliases is not leaked.
	ErrNotFound = errors.New("not found")

	// ErrAliasTaken is returned when a custom alias already exists.
	ErrAliasTaken = errors.New("alias already in use")

	// ErrInvalidTopic rejects topics outside the fixed enum.
	ErrInvalidTopic = errors.New("invalid topic")
)
