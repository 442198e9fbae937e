package errors

import "errors"

var (
	ErrNotFound = errors.New("waiting list entry not found")
)
