package dto

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrNotAuthorized    = errors.New("not authorized")
	ErrCapacityExceeded = errors.New("capacity exceeded")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrInternalFailure  = errors.New("internal failure")
	ErrExternalFailure  = errors.New("external failure")
)
