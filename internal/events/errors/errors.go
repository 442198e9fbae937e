package errors

import "errors"

var (
	ErrNotFound = errors.New("calendar event not found")
)
