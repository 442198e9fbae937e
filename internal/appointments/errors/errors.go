package errors

import "errors"

var (
	ErrNotFound = errors.New("appointment not found")
)
