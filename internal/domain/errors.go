package domain

import "errors"

// Error taxonomy shared by repositories, services and the HTTP boundary.
// Wrap with fmt.Errorf("...: %w", ErrX) and classify with errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrPrincipalNotFound = errors.New("principal not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrUnavailable       = errors.New("unavailable")
)
