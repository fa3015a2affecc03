package arena

import "errors"

var (
	// ErrMalformedRecord marks an input record that was skipped.
	ErrMalformedRecord = errors.New("malformed record")
	// ErrSourceNotFound marks an input file that does not exist.
	ErrSourceNotFound = errors.New("source not found")
	// ErrUnknownTribute is returned when an ID is not on the roster.
	ErrUnknownTribute = errors.New("unknown tribute")
	// ErrDuplicateTribute is returned when enrolling an ID twice.
	ErrDuplicateTribute = errors.New("duplicate tribute")
)
