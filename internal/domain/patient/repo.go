package patient

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the persistence boundary for patients. Update asserts the
// patient's version and returns ErrVersionConflict on a stale write.
type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	List(ctx context.Context, nameSearch string, limit, offset int) ([]*Patient, int, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}
