package visit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PatientDirectory is the slice of the patient domain the visit service
// needs: existence checks for referenced patients.
type PatientDirectory interface {
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

type Service struct {
	repo     Repository
	patients PatientDirectory
	nowFn    func() time.Time
}

func NewService(repo Repository, patients PatientDirectory) *Service {
	return &Service{repo: repo, patients: patients, nowFn: time.Now}
}

func (s *Service) now() time.Time {
	return s.nowFn()
}

// CreateVisit books a visit on behalf of actingRole. The acting role is
// recorded as the visit's creator.
func (s *Service) CreateVisit(ctx context.Context, v *Visit, actingRole string) error {
	if v.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required: %w", ErrInvalidPatientReference)
	}
	ok, err := s.patients.Exists(ctx, v.PatientID)
	if err != nil {
		return fmt.Errorf("checking patient: %w", err)
	}
	if !ok {
		return ErrInvalidPatientReference
	}

	if v.Date.IsZero() {
		v.Date = DateOnly(s.now())
	}
	if v.Type == "" {
		v.Type = "Consultation"
	}
	if v.Status == "" {
		v.Status = StatusScheduled
	}
	if !v.Status.Storable() {
		return ErrInvalidStatusTransition
	}
	v.CreatedBy = actingRole
	v.Diagnosis = nil
	v.History = nil

	return s.repo.Create(ctx, v)
}

func (s *Service) GetVisit(ctx context.Context, id uuid.UUID) (WithStatus, error) {
	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return WithStatus{}, err
	}
	return v.Resolve(s.now()), nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]WithStatus, int, error) {
	visits, total, err := s.repo.ListByPatient(ctx, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return s.resolveAll(visits), total, nil
}

func (s *Service) ListByDate(ctx context.Context, day time.Time, limit, offset int) ([]WithStatus, int, error) {
	visits, total, err := s.repo.ListByDate(ctx, day, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return s.resolveAll(visits), total, nil
}

func (s *Service) resolveAll(visits []*Visit) []WithStatus {
	now := s.now()
	out := make([]WithStatus, len(visits))
	for i, v := range visits {
		out[i] = v.Resolve(now)
	}
	return out
}

// UpdateVisit changes the schedulable fields of a visit: date, type, reason
// and stored status. Diagnoses move only through CompleteWithDiagnosis and
// RemoveDiagnosis; a cancelled visit cannot be revived here.
func (s *Service) UpdateVisit(ctx context.Context, id uuid.UUID, in *Visit) (*Visit, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Status != "" && !in.Status.Storable() {
		return nil, ErrInvalidStatusTransition
	}
	if existing.Status == StatusCancelled && in.Status != "" && in.Status != StatusCancelled {
		return nil, ErrInvalidStatusTransition
	}

	if !in.Date.IsZero() {
		existing.Date = DateOnly(in.Date)
	}
	if in.Type != "" {
		existing.Type = in.Type
	}
	if in.Reason != "" {
		existing.Reason = in.Reason
	}
	if in.Status != "" {
		existing.Status = in.Status
	}

	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

// CancelVisit marks the visit cancelled. Cancelling twice is a no-op.
func (s *Service) CancelVisit(ctx context.Context, id uuid.UUID) (*Visit, error) {
	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v.Status == StatusCancelled {
		return v, nil
	}
	v.Status = StatusCancelled
	if err := s.repo.Update(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// RescheduleVisit moves the visit to a new date. Cancelled visits stay
// cancelled; book a new visit instead.
func (s *Service) RescheduleVisit(ctx context.Context, id uuid.UUID, newDate time.Time) (*Visit, error) {
	if newDate.IsZero() {
		return nil, fmt.Errorf("date is required")
	}
	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v.Status == StatusCancelled {
		return nil, ErrInvalidStatusTransition
	}
	v.Date = DateOnly(newDate)
	v.Status = StatusRescheduled
	if err := s.repo.Update(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// CompleteWithDiagnosis attaches clinical notes to the visit and marks it
// Completed in one move.
func (s *Service) CompleteWithDiagnosis(ctx context.Context, id uuid.UUID, d Diagnosis) (*Visit, error) {
	if d.IsZero() {
		return nil, fmt.Errorf("diagnosis must not be empty")
	}
	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := AttachDiagnosis(v, d, s.now()); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// RemoveDiagnosis deletes a diagnosis entry from the visit's current slot or
// its history.
func (s *Service) RemoveDiagnosis(ctx context.Context, id, diagnosisID uuid.UUID) (*Visit, error) {
	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := RemoveDiagnosis(v, diagnosisID); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// DiagnosisRecord is the full diagnosis state of a visit.
type DiagnosisRecord struct {
	Current *Diagnosis  `json:"current"`
	History []Diagnosis `json:"history"`
}

func (s *Service) Diagnoses(ctx context.Context, id uuid.UUID) (DiagnosisRecord, error) {
	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return DiagnosisRecord{}, err
	}
	return DiagnosisRecord{Current: v.Diagnosis, History: v.History}, nil
}

// ClassifiedVisits buckets all of a patient's visits for the front-desk view.
func (s *Service) ClassifiedVisits(ctx context.Context, patientID uuid.UUID) (Classified, error) {
	visits, err := s.repo.AllByPatient(ctx, patientID)
	if err != nil {
		return Classified{}, err
	}
	return Classify(visits, s.now()), nil
}
