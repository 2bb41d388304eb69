package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinicdesk/internal/domain/patient"
	"github.com/clinicdesk/clinicdesk/internal/domain/visit"
)

// PatientSource is the slice of the patient domain the queue needs.
type PatientSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
}

// VisitStore is the slice of the visit repository the queue needs: the
// patient's visits for today, and a way to persist a synthesized visit.
type VisitStore interface {
	ByPatientOnDay(ctx context.Context, patientID uuid.UUID, day time.Time) ([]*visit.Visit, error)
	Create(ctx context.Context, v *visit.Visit) error
}

type Service struct {
	patients PatientSource
	visits   VisitStore
	board    Board
	nowFn    func() time.Time
}

func NewService(patients PatientSource, visits VisitStore, board Board) *Service {
	return &Service{patients: patients, visits: visits, board: board, nowFn: time.Now}
}

func (s *Service) now() time.Time {
	return s.nowFn()
}

// CheckInRequest is a front-desk check-in.
type CheckInRequest struct {
	PatientID uuid.UUID `json:"patient_id"`
	IsWalkIn  bool      `json:"is_walk_in"`
	Reason    string    `json:"reason"`
	Notes     string    `json:"notes"`
}

// CheckIn admits the patient to today's queue. A synthesized visit is
// persisted before the entry goes on the board, so the board never points at
// a visit that does not exist.
func (s *Service) CheckIn(ctx context.Context, req CheckInRequest, actingRole string) (Admission, error) {
	if req.PatientID == uuid.Nil {
		return Admission{}, visit.ErrInvalidPatientReference
	}
	p, err := s.patients.GetByID(ctx, req.PatientID)
	if err != nil {
		if errors.Is(err, patient.ErrNotFound) {
			return Admission{}, visit.ErrInvalidPatientReference
		}
		return Admission{}, fmt.Errorf("loading patient: %w", err)
	}

	now := s.now()
	todays, err := s.visits.ByPatientOnDay(ctx, p.ID, now)
	if err != nil {
		return Admission{}, fmt.Errorf("loading today's visits: %w", err)
	}

	adm, err := Admit(p, todays, req.IsWalkIn, req.Reason, req.Notes, actingRole, now)
	if err != nil {
		return Admission{}, err
	}

	if adm.CreatedVisit {
		if err := s.visits.Create(ctx, adm.Visit); err != nil {
			return Admission{}, fmt.Errorf("persisting visit: %w", err)
		}
	}
	if err := s.board.Add(ctx, now, adm.Entry); err != nil {
		return Admission{}, err
	}
	return adm, nil
}

// TodayBoard lists the current day's queue in check-in order.
func (s *Service) TodayBoard(ctx context.Context) ([]Entry, error) {
	return s.board.List(ctx, s.now())
}

// RemoveEntry takes an entry off today's board, for no-shows and mistakes.
func (s *Service) RemoveEntry(ctx context.Context, entryID uuid.UUID) error {
	return s.board.Remove(ctx, s.now(), entryID)
}
