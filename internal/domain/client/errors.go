package client

import "errors"

var (
	// ErrEmptyName indicates a create or rename with a blank client name.
	ErrEmptyName = errors.New("client name is required")
)
