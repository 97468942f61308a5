package domain

import "errors"

var (
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidRange     = errors.New("range must be daily, weekly or monthly")
)
