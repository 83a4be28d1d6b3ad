package project

import "errors"

var (
	// ErrInvalidStatus indicates a status outside the known enumeration.
	ErrInvalidStatus = errors.New("invalid project status")
	// ErrNegativePrice indicates a monthly price below zero.
	ErrNegativePrice = errors.New("monthly price must not be negative")
	// ErrInvalidDate indicates a date field that is not a calendar date.
	ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")
	// ErrEmptyName indicates a create with a blank project name.
	ErrEmptyName = errors.New("project name is required")
)
