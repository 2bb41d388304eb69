package visit

import (
	"time"

	"github.com/google/uuid"
)

// Status is a stored visit status. StatusNeedsDiagnosis is derived-only and
// never written to the database.
type Status string

const (
	StatusScheduled      Status = "Scheduled"
	StatusCompleted      Status = "Completed"
	StatusCancelled      Status = "Cancelled"
	StatusRescheduled    Status = "Rescheduled"
	StatusPending        Status = "Pending"
	StatusNeedsDiagnosis Status = "Needs Diagnosis"
)

// storableStatuses are the values accepted at the write boundary.
var storableStatuses = map[Status]bool{
	StatusScheduled:   true,
	StatusCompleted:   true,
	StatusCancelled:   true,
	StatusRescheduled: true,
	StatusPending:     true,
}

func (s Status) Storable() bool {
	return storableStatuses[s]
}

// FileAttachment is metadata about a document attached to a diagnosis. The
// clinic stores no file bodies, only references.
type FileAttachment struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Size int64  `json:"size"`
	URL  string `json:"url"`
}

// Diagnosis is a clinical note set attached to a visit.
type Diagnosis struct {
	ID        uuid.UUID        `json:"id"`
	Notes     string           `json:"notes"`
	Diagnosis string           `json:"diagnosis"`
	Treatment string           `json:"treatment"`
	FollowUp  string           `json:"follow_up"`
	Files     []FileAttachment `json:"files,omitempty"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// IsZero reports whether the diagnosis carries no clinical content. Zero
// diagnoses are never pushed onto the history.
func (d Diagnosis) IsZero() bool {
	return d.Notes == "" && d.Diagnosis == "" && d.Treatment == "" &&
		d.FollowUp == "" && len(d.Files) == 0
}

// Visit is a single patient appointment. Date carries calendar-date
// granularity only; any time-of-day component is ignored by the status and
// classification logic.
type Visit struct {
	ID        uuid.UUID   `json:"id"`
	PatientID uuid.UUID   `json:"patient_id"`
	Date      time.Time   `json:"date"`
	Type      string      `json:"type"`
	Reason    string      `json:"reason"`
	Status    Status      `json:"status"`
	CreatedBy string      `json:"created_by"`
	Diagnosis *Diagnosis  `json:"diagnosis,omitempty"`
	History   []Diagnosis `json:"history,omitempty"`
	Version   int         `json:"version"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// HasDiagnosis reports whether a non-empty diagnosis is attached.
func (v *Visit) HasDiagnosis() bool {
	return v.Diagnosis != nil && !v.Diagnosis.IsZero()
}

// WithStatus is a visit decorated with its derived status for API responses.
type WithStatus struct {
	*Visit
	EffectiveStatus Status `json:"effective_status"`
}

// Resolve derives the effective status of the visit as of now.
func (v *Visit) Resolve(now time.Time) WithStatus {
	return WithStatus{
		Visit:           v,
		EffectiveStatus: EffectiveStatus(v.Status, v.Date, v.HasDiagnosis(), now),
	}
}
