package patient

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	repo  Repository
	nowFn func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, nowFn: time.Now}
}

func (s *Service) now() time.Time {
	return s.nowFn()
}

// CreatePatient registers a patient record. The acting role is stamped as
// CreatedBy, which decides whether the secretary edit window applies later.
func (s *Service) CreatePatient(ctx context.Context, p *Patient, actingRole string) error {
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if actingRole == "" {
		return fmt.Errorf("acting role is required")
	}
	p.CreatedBy = actingRole
	p.Allergies = dedupe(p.Allergies)
	return s.repo.Create(ctx, p)
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListPatients(ctx context.Context, nameSearch string, limit, offset int) ([]*Patient, int, error) {
	return s.repo.List(ctx, nameSearch, limit, offset)
}

// Exists lets other domains validate patient references.
func (s *Service) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.repo.Exists(ctx, id)
}

// guardedLoad fetches the patient and checks the edit window for actingRole.
func (s *Service) guardedLoad(ctx context.Context, id uuid.UUID, actingRole string) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanEdit(p, actingRole, s.now()) {
		return nil, ErrEditWindowExpired
	}
	return p, nil
}

// UpdatePatient modifies the demographic fields of a record. Clinical
// sub-records move through their own operations.
func (s *Service) UpdatePatient(ctx context.Context, id uuid.UUID, in *Patient, actingRole string) (*Patient, error) {
	p, err := s.guardedLoad(ctx, id, actingRole)
	if err != nil {
		return nil, err
	}

	if in.Name != "" {
		p.Name = in.Name
	}
	if in.Gender != "" {
		p.Gender = in.Gender
	}
	if !in.BirthDate.IsZero() {
		p.BirthDate = in.BirthDate
	}
	if in.Phone != "" {
		p.Phone = in.Phone
	}
	if in.Email != "" {
		p.Email = in.Email
	}
	if in.Address != "" {
		p.Address = in.Address
	}
	if in.NextOfKin != nil {
		p.NextOfKin = in.NextOfKin
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// EditWindowStatus is the UI-facing view of the guard.
type EditWindowStatus struct {
	Allowed          bool `json:"allowed"`
	MinutesRemaining int  `json:"minutes_remaining"`
}

func (s *Service) EditWindow(ctx context.Context, id uuid.UUID, actingRole string) (EditWindowStatus, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return EditWindowStatus{}, err
	}
	now := s.now()
	return EditWindowStatus{
		Allowed:          CanEdit(p, actingRole, now),
		MinutesRemaining: MinutesRemaining(p, now),
	}, nil
}

// SetAllergies replaces the allergy set. Duplicates collapse.
func (s *Service) SetAllergies(ctx context.Context, id uuid.UUID, allergies []string, actingRole string) (*Patient, error) {
	p, err := s.guardedLoad(ctx, id, actingRole)
	if err != nil {
		return nil, err
	}
	p.Allergies = dedupe(allergies)
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) AddMedication(ctx context.Context, id uuid.UUID, m Medication, actingRole string) (*Patient, error) {
	if m.Name == "" {
		return nil, fmt.Errorf("medication name is required")
	}
	p, err := s.guardedLoad(ctx, id, actingRole)
	if err != nil {
		return nil, err
	}
	p.Medications = append(p.Medications, m)
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) AddMedicalHistory(ctx context.Context, id uuid.UUID, e MedicalHistoryEntry, actingRole string) (*Patient, error) {
	if e.Condition == "" {
		return nil, fmt.Errorf("condition is required")
	}
	p, err := s.guardedLoad(ctx, id, actingRole)
	if err != nil {
		return nil, err
	}
	p.MedicalHistory = append(p.MedicalHistory, e)
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func dedupe(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(in))
	var out []string
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
