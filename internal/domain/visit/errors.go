package visit

import "errors"

var (
	// ErrNotFound means no visit exists with the given id.
	ErrNotFound = errors.New("visit not found")
	// ErrDiagnosisNotFound means neither the current diagnosis nor any
	// history entry matches the given id.
	ErrDiagnosisNotFound = errors.New("diagnosis not found")
	// ErrInvalidStatusTransition covers every illegal lifecycle move:
	// un-cancelling, rescheduling a cancelled visit, attaching a diagnosis
	// to a cancelled visit, or storing a derived-only status.
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	// ErrVersionConflict means the record changed since it was read.
	ErrVersionConflict = errors.New("visit was modified concurrently")
)

// ErrInvalidPatientReference means the referenced patient does not exist.
var ErrInvalidPatientReference = errors.New("invalid patient reference")
