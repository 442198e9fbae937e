package errors

import "errors"

var (
	ErrNotFound = errors.New("legal service not found")
)
