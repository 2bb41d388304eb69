package patient

import (
	"time"

	"github.com/google/uuid"
)

// NextOfKin is the patient's emergency contact.
type NextOfKin struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
	Phone        string `json:"phone"`
}

// Medication is one entry of the patient's current medication list.
type Medication struct {
	Name      string    `json:"name"`
	Dosage    string    `json:"dosage"`
	Frequency string    `json:"frequency"`
	StartDate time.Time `json:"start_date"`
}

// MedicalHistoryEntry records a past or chronic condition.
type MedicalHistoryEntry struct {
	Condition     string    `json:"condition"`
	DiagnosedDate time.Time `json:"diagnosed_date"`
	Notes         string    `json:"notes"`
}

// Patient is a clinic patient record. CreatedBy holds the role that
// registered the record ("doctor", "secretary", "visitor", "admin") and
// drives the secretary edit window.
type Patient struct {
	ID             uuid.UUID             `json:"id"`
	Name           string                `json:"name"`
	Gender         string                `json:"gender"`
	BirthDate      time.Time             `json:"birth_date"`
	Phone          string                `json:"phone"`
	Email          string                `json:"email"`
	Address        string                `json:"address"`
	NextOfKin      *NextOfKin            `json:"next_of_kin,omitempty"`
	Allergies      []string              `json:"allergies,omitempty"`
	Medications    []Medication          `json:"medications,omitempty"`
	MedicalHistory []MedicalHistoryEntry `json:"medical_history,omitempty"`
	CreatedBy      string                `json:"created_by"`
	Version        int                   `json:"version"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

// HasAllergy reports whether the named allergy is already recorded.
// Allergies behave as a set; duplicates are dropped at the write boundary.
func (p *Patient) HasAllergy(name string) bool {
	for _, a := range p.Allergies {
		if a == name {
			return true
		}
	}
	return false
}
