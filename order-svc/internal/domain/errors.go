package domain

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrPermissionDenied = errors.New("permission denied")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")

	ErrAlreadyConfirmed = fmt.Errorf("%w: order already processed", ErrConflict)
	ErrCartConflict     = fmt.Errorf("%w: cart belongs to another restaurant", ErrConflict)
	ErrLoginTaken       = fmt.Errorf("%w: login handle already in use", ErrConflict)
	ErrCategoryExists   = fmt.Errorf("%w: category already exists", ErrConflict)

	// ErrOrderNotFound covers both unknown orders and orders outside the caller's
	// scope, so an id never reveals whether it exists.
	ErrOrderNotFound = fmt.Errorf("%w: invalid or expired order", ErrNotFound)
)

func InvalidArgument(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, msg)
}
