package patient

import "errors"

var (
	// ErrNotFound means no patient exists with the given id.
	ErrNotFound = errors.New("patient not found")
	// ErrEditWindowExpired means a secretary tried to edit a
	// secretary-created record more than an hour after registration.
	ErrEditWindowExpired = errors.New("edit window has expired")
	// ErrVersionConflict means the record changed since it was read.
	ErrVersionConflict = errors.New("patient was modified concurrently")
)
