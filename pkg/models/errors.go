package models

import "errors"

// Precondition errors. These are raised before any network call or state
// change happens.
var (
	ErrNotFound           = errors.New("component not found")
	ErrMissingMessageName = errors.New(`message must contain a "name"`)
	ErrInvalidOrder       = errors.New("invalid order")
	ErrNoDaemon           = errors.New("no daemon connected")
)
