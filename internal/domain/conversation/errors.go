package conversation

import "errors"

var (
	// ErrMissingColumns indicates a transcript CSV without the expected
	// phone, message and date columns.
	ErrMissingColumns = errors.New("transcript csv is missing phone, message or date columns")
)
