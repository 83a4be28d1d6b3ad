package expense

import "errors"

var (
	// ErrInvalidCategory indicates a category outside the known enumeration.
	ErrInvalidCategory = errors.New("invalid expense category")
	// ErrInvalidRecurrence indicates an unknown recurrence type.
	ErrInvalidRecurrence = errors.New("invalid recurrence type")
	// ErrEmptyName indicates a create without an expense name.
	ErrEmptyName = errors.New("expense name is required")
)
