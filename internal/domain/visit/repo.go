package visit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence boundary for visits. Update asserts the
// visit's version and returns ErrVersionConflict on a stale write.
type Repository interface {
	Create(ctx context.Context, v *Visit) error
	GetByID(ctx context.Context, id uuid.UUID) (*Visit, error)
	Update(ctx context.Context, v *Visit) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Visit, int, error)
	ListByDate(ctx context.Context, day time.Time, limit, offset int) ([]*Visit, int, error)
	// AllByPatient returns every visit for the patient, oldest first. Used
	// by classification and queue admission, which need the full picture.
	AllByPatient(ctx context.Context, patientID uuid.UUID) ([]*Visit, error)
	// ByPatientOnDay returns the patient's visits scheduled for the given
	// calendar date.
	ByPatientOnDay(ctx context.Context, patientID uuid.UUID, day time.Time) ([]*Visit, error)
}
