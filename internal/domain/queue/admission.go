package queue

import (
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinicdesk/internal/domain/patient"
	"github.com/clinicdesk/clinicdesk/internal/domain/visit"
)

// DefaultWalkInReason is recorded on visits synthesized at check-in when the
// front desk gives no reason.
const DefaultWalkInReason = "Walk-in visit"

// Entry is one line on the day's check-in board. Entries are ephemeral; the
// board resets at midnight.
type Entry struct {
	ID            uuid.UUID  `json:"id"`
	PatientID     uuid.UUID  `json:"patient_id"`
	PatientName   string     `json:"patient_name"`
	IsWalkIn      bool       `json:"is_walk_in"`
	LinkedVisitID *uuid.UUID `json:"linked_visit_id,omitempty"`
	Reason        string     `json:"reason"`
	Notes         string     `json:"notes,omitempty"`
	CheckedInAt   time.Time  `json:"checked_in_at"`
}

// Admission is the outcome of admitting a patient to the queue. CreatedVisit
// tells the caller whether Visit is a new record that still needs persisting.
type Admission struct {
	Visit        *visit.Visit `json:"visit"`
	Entry        Entry        `json:"entry"`
	CreatedVisit bool         `json:"created_visit"`
}

// Admit decides how a patient joins the day's queue. An appointment check-in
// (isWalkIn false) reuses the patient's first open visit of the day; a
// walk-in, or a check-in with nothing open, synthesizes a new consultation
// for today. Persistence of the returned records belongs to the caller.
func Admit(p *patient.Patient, todaysVisits []*visit.Visit, isWalkIn bool, reason, notes, actingRole string, now time.Time) (Admission, error) {
	if p == nil || p.ID == uuid.Nil {
		return Admission{}, visit.ErrInvalidPatientReference
	}

	var candidate *visit.Visit
	if !isWalkIn {
		for _, v := range todaysVisits {
			if v.PatientID != p.ID {
				continue
			}
			eff := visit.EffectiveStatus(v.Status, v.Date, v.HasDiagnosis(), now)
			if eff == visit.StatusCompleted || eff == visit.StatusCancelled {
				continue
			}
			candidate = v
			break
		}
	}

	entry := Entry{
		ID:          uuid.New(),
		PatientID:   p.ID,
		PatientName: p.Name,
		IsWalkIn:    isWalkIn,
		Reason:      reason,
		Notes:       notes,
		CheckedInAt: now,
	}

	if candidate != nil {
		id := candidate.ID
		entry.LinkedVisitID = &id
		if entry.Reason == "" {
			entry.Reason = candidate.Reason
		}
		return Admission{Visit: candidate, Entry: entry}, nil
	}

	if entry.Reason == "" {
		entry.Reason = DefaultWalkInReason
	}
	v := &visit.Visit{
		ID:        uuid.New(),
		PatientID: p.ID,
		Date:      visit.DateOnly(now),
		Type:      "Consultation",
		Reason:    entry.Reason,
		Status:    visit.StatusScheduled,
		CreatedBy: actingRole,
	}
	id := v.ID
	entry.LinkedVisitID = &id
	return Admission{Visit: v, Entry: entry, CreatedVisit: true}, nil
}
