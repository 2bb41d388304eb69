package patient

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
)

// mockRepo is an in-memory Repository for service tests.
type mockRepo struct {
	patients map[uuid.UUID]*Patient
}

func newMockRepo() *mockRepo {
	return &mockRepo{patients: make(map[uuid.UUID]*Patient)}
}

func (m *mockRepo) Create(_ context.Context, p *Patient) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.Version = 1
	cp := *p
	m.patients[p.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockRepo) Update(_ context.Context, p *Patient) error {
	stored, ok := m.patients[p.ID]
	if !ok {
		return ErrNotFound
	}
	if stored.Version != p.Version {
		return ErrVersionConflict
	}
	p.Version++
	cp := *p
	m.patients[p.ID] = &cp
	return nil
}

func (m *mockRepo) List(_ context.Context, nameSearch string, limit, offset int) ([]*Patient, int, error) {
	var out []*Patient
	for _, p := range m.patients {
		if nameSearch == "" || strings.Contains(strings.ToLower(p.Name), strings.ToLower(nameSearch)) {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, len(out), nil
}

func (m *mockRepo) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := m.patients[id]
	return ok, nil
}

func newTestService() (*Service, *mockRepo) {
	repo := newMockRepo()
	svc := NewService(repo)
	svc.nowFn = func() time.Time { return createdAt }
	return svc, repo
}

func registerPatient(t *testing.T, svc *Service, repo *mockRepo, role string) *Patient {
	t.Helper()
	p := &Patient{Name: "Jane Doe", Gender: "female"}
	if err := svc.CreatePatient(context.Background(), p, role); err != nil {
		t.Fatalf("create patient: %v", err)
	}
	// The mock does not stamp timestamps; fix the registration time.
	repo.patients[p.ID].CreatedAt = createdAt
	return p
}

func TestCreatePatient_StampsCreatedBy(t *testing.T) {
	svc, repo := newTestService()
	p := registerPatient(t, svc, repo, auth.RoleSecretary)

	if repo.patients[p.ID].CreatedBy != auth.RoleSecretary {
		t.Errorf("expected created_by secretary, got %q", repo.patients[p.ID].CreatedBy)
	}
}

func TestCreatePatient_Validation(t *testing.T) {
	svc, _ := newTestService()

	if err := svc.CreatePatient(context.Background(), &Patient{}, auth.RoleDoctor); err == nil {
		t.Error("expected error for missing name")
	}
	if err := svc.CreatePatient(context.Background(), &Patient{Name: "X"}, ""); err == nil {
		t.Error("expected error for missing acting role")
	}
}

func TestCreatePatient_DedupesAllergies(t *testing.T) {
	svc, repo := newTestService()
	p := &Patient{Name: "Jane", Allergies: []string{"penicillin", "penicillin", "", "latex"}}
	if err := svc.CreatePatient(context.Background(), p, auth.RoleDoctor); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := repo.patients[p.ID].Allergies
	if len(got) != 2 {
		t.Errorf("expected 2 allergies, got %v", got)
	}
}

func TestUpdatePatient_SecretaryInsideWindow(t *testing.T) {
	svc, repo := newTestService()
	p := registerPatient(t, svc, repo, auth.RoleSecretary)

	svc.nowFn = func() time.Time { return createdAt.Add(30 * time.Minute) }
	got, err := svc.UpdatePatient(context.Background(), p.ID, &Patient{Phone: "555-0101"}, auth.RoleSecretary)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Phone != "555-0101" {
		t.Errorf("expected phone updated, got %q", got.Phone)
	}
	if got.Name != "Jane Doe" {
		t.Errorf("untouched fields must survive, got name %q", got.Name)
	}
}

func TestUpdatePatient_SecretaryOutsideWindow(t *testing.T) {
	svc, repo := newTestService()
	p := registerPatient(t, svc, repo, auth.RoleSecretary)

	svc.nowFn = func() time.Time { return createdAt.Add(2 * time.Hour) }
	_, err := svc.UpdatePatient(context.Background(), p.ID, &Patient{Phone: "555-0101"}, auth.RoleSecretary)
	if !errors.Is(err, ErrEditWindowExpired) {
		t.Fatalf("expected ErrEditWindowExpired, got %v", err)
	}

	// A doctor can still make the same edit.
	if _, err := svc.UpdatePatient(context.Background(), p.ID, &Patient{Phone: "555-0101"}, auth.RoleDoctor); err != nil {
		t.Fatalf("doctor edit should bypass the window: %v", err)
	}
}

func TestEditWindow_Status(t *testing.T) {
	svc, repo := newTestService()
	p := registerPatient(t, svc, repo, auth.RoleSecretary)

	svc.nowFn = func() time.Time { return createdAt.Add(45 * time.Minute) }
	st, err := svc.EditWindow(context.Background(), p.ID, auth.RoleSecretary)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !st.Allowed {
		t.Error("expected allowed inside the window")
	}
	if st.MinutesRemaining != 15 {
		t.Errorf("expected 15 minutes remaining, got %d", st.MinutesRemaining)
	}

	svc.nowFn = func() time.Time { return createdAt.Add(3 * time.Hour) }
	st, err = svc.EditWindow(context.Background(), p.ID, auth.RoleSecretary)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Allowed || st.MinutesRemaining != 0 {
		t.Errorf("expected denied with 0 minutes, got %+v", st)
	}
}

func TestSubRecords_GuardApplies(t *testing.T) {
	svc, repo := newTestService()
	p := registerPatient(t, svc, repo, auth.RoleSecretary)

	svc.nowFn = func() time.Time { return createdAt.Add(2 * time.Hour) }

	if _, err := svc.SetAllergies(context.Background(), p.ID, []string{"latex"}, auth.RoleSecretary); !errors.Is(err, ErrEditWindowExpired) {
		t.Errorf("SetAllergies: expected ErrEditWindowExpired, got %v", err)
	}
	if _, err := svc.AddMedication(context.Background(), p.ID, Medication{Name: "ibuprofen"}, auth.RoleSecretary); !errors.Is(err, ErrEditWindowExpired) {
		t.Errorf("AddMedication: expected ErrEditWindowExpired, got %v", err)
	}
	if _, err := svc.AddMedicalHistory(context.Background(), p.ID, MedicalHistoryEntry{Condition: "asthma"}, auth.RoleSecretary); !errors.Is(err, ErrEditWindowExpired) {
		t.Errorf("AddMedicalHistory: expected ErrEditWindowExpired, got %v", err)
	}
}

func TestSubRecords_DoctorWrites(t *testing.T) {
	svc, repo := newTestService()
	p := registerPatient(t, svc, repo, auth.RoleSecretary)

	if _, err := svc.SetAllergies(context.Background(), p.ID, []string{"latex", "latex"}, auth.RoleDoctor); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := svc.AddMedication(context.Background(), p.ID, Medication{Name: "ibuprofen", Dosage: "200mg"}, auth.RoleDoctor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Allergies) != 1 || got.Allergies[0] != "latex" {
		t.Errorf("expected deduped allergies [latex], got %v", got.Allergies)
	}
	if len(got.Medications) != 1 || got.Medications[0].Name != "ibuprofen" {
		t.Errorf("expected medication recorded, got %v", got.Medications)
	}

	got, err = svc.AddMedicalHistory(context.Background(), p.ID, MedicalHistoryEntry{Condition: "asthma"}, auth.RoleDoctor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.MedicalHistory) != 1 {
		t.Errorf("expected history entry recorded, got %v", got.MedicalHistory)
	}
}

func TestAddMedication_RequiresName(t *testing.T) {
	svc, repo := newTestService()
	p := registerPatient(t, svc, repo, auth.RoleDoctor)

	if _, err := svc.AddMedication(context.Background(), p.ID, Medication{}, auth.RoleDoctor); err == nil {
		t.Error("expected error for unnamed medication")
	}
}

func TestExists(t *testing.T) {
	svc, repo := newTestService()
	p := registerPatient(t, svc, repo, auth.RoleDoctor)

	ok, err := svc.Exists(context.Background(), p.ID)
	if err != nil || !ok {
		t.Errorf("expected registered patient to exist, ok=%v err=%v", ok, err)
	}
	ok, err = svc.Exists(context.Background(), uuid.New())
	if err != nil || ok {
		t.Errorf("expected unknown id to not exist, ok=%v err=%v", ok, err)
	}
}
