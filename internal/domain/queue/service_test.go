package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinicdesk/internal/domain/patient"
	"github.com/clinicdesk/clinicdesk/internal/domain/visit"
)

type mockPatients struct {
	patients map[uuid.UUID]*patient.Patient
}

func (m *mockPatients) GetByID(_ context.Context, id uuid.UUID) (*patient.Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, patient.ErrNotFound
	}
	return p, nil
}

type mockVisits struct {
	visits  map[uuid.UUID]*visit.Visit
	created int
}

func (m *mockVisits) ByPatientOnDay(_ context.Context, patientID uuid.UUID, day time.Time) ([]*visit.Visit, error) {
	var out []*visit.Visit
	for _, v := range m.visits {
		if v.PatientID == patientID && visit.SameDay(v.Date, day) {
			out = append(out, v)
		}
	}
	return out, nil
}

func (m *mockVisits) Create(_ context.Context, v *visit.Visit) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	m.visits[v.ID] = v
	m.created++
	return nil
}

func newCheckInService(t *testing.T) (*Service, *mockPatients, *mockVisits) {
	t.Helper()
	patients := &mockPatients{patients: make(map[uuid.UUID]*patient.Patient)}
	visits := &mockVisits{visits: make(map[uuid.UUID]*visit.Visit)}
	svc := NewService(patients, visits, NewMemoryBoard())
	svc.nowFn = func() time.Time { return today }
	return svc, patients, visits
}

func TestCheckIn_UnknownPatient(t *testing.T) {
	svc, _, _ := newCheckInService(t)

	_, err := svc.CheckIn(context.Background(), CheckInRequest{PatientID: uuid.New()}, "secretary")
	if !errors.Is(err, visit.ErrInvalidPatientReference) {
		t.Fatalf("expected ErrInvalidPatientReference, got %v", err)
	}

	// A failed check-in must leave the board empty.
	entries, _ := svc.TodayBoard(context.Background())
	if len(entries) != 0 {
		t.Errorf("expected empty board, got %d entries", len(entries))
	}
}

func TestCheckIn_ZeroPatientID(t *testing.T) {
	svc, _, _ := newCheckInService(t)
	_, err := svc.CheckIn(context.Background(), CheckInRequest{}, "secretary")
	if !errors.Is(err, visit.ErrInvalidPatientReference) {
		t.Fatalf("expected ErrInvalidPatientReference, got %v", err)
	}
}

func TestCheckIn_AppointmentReusesVisit(t *testing.T) {
	svc, patients, visits := newCheckInService(t)

	p := testPatient()
	patients.patients[p.ID] = p
	v := openVisit(p.ID)
	visits.visits[v.ID] = v

	adm, err := svc.CheckIn(context.Background(), CheckInRequest{PatientID: p.ID}, "secretary")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if adm.CreatedVisit || visits.created != 0 {
		t.Error("appointment check-in must not persist a new visit")
	}
	if adm.Visit.ID != v.ID {
		t.Error("expected the existing visit linked")
	}

	entries, _ := svc.TodayBoard(context.Background())
	if len(entries) != 1 {
		t.Fatalf("expected 1 board entry, got %d", len(entries))
	}
	if *entries[0].LinkedVisitID != v.ID {
		t.Error("board entry must link the existing visit")
	}
}

func TestCheckIn_WalkInPersistsVisit(t *testing.T) {
	svc, patients, visits := newCheckInService(t)

	p := testPatient()
	patients.patients[p.ID] = p

	adm, err := svc.CheckIn(context.Background(),
		CheckInRequest{PatientID: p.ID, IsWalkIn: true, Reason: "Back pain"}, "secretary")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !adm.CreatedVisit {
		t.Fatal("expected a created visit")
	}
	if visits.created != 1 {
		t.Fatalf("expected exactly one persisted visit, got %d", visits.created)
	}
	stored, ok := visits.visits[adm.Visit.ID]
	if !ok {
		t.Fatal("synthesized visit must be persisted")
	}
	if stored.Reason != "Back pain" || stored.CreatedBy != "secretary" {
		t.Errorf("unexpected stored visit: %+v", stored)
	}
}

func TestRemoveEntry(t *testing.T) {
	svc, patients, _ := newCheckInService(t)

	p := testPatient()
	patients.patients[p.ID] = p
	adm, err := svc.CheckIn(context.Background(), CheckInRequest{PatientID: p.ID, IsWalkIn: true}, "doctor")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.RemoveEntry(context.Background(), adm.Entry.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	entries, _ := svc.TodayBoard(context.Background())
	if len(entries) != 0 {
		t.Errorf("expected empty board after removal, got %d", len(entries))
	}

	if err := svc.RemoveEntry(context.Background(), uuid.New()); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("expected ErrEntryNotFound, got %v", err)
	}
}
