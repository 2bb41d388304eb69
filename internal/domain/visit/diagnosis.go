package visit

import (
	"time"

	"github.com/google/uuid"
)

// AttachDiagnosis installs d as the current diagnosis of v. A previous
// non-empty diagnosis is pushed onto the front of the history, so the most
// recently superseded entry is always history[0]. Attaching marks the visit
// Completed; a cancelled visit cannot be diagnosed.
func AttachDiagnosis(v *Visit, d Diagnosis, now time.Time) error {
	if v.Status == StatusCancelled {
		return ErrInvalidStatusTransition
	}
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	d.UpdatedAt = now

	if v.Diagnosis != nil && !v.Diagnosis.IsZero() {
		v.History = append([]Diagnosis{*v.Diagnosis}, v.History...)
	}
	v.Diagnosis = &d
	v.Status = StatusCompleted
	return nil
}

// RemoveDiagnosis deletes the diagnosis with the given id from the visit. If
// the current diagnosis is removed, the head of the history (when present) is
// promoted in its place. History order is otherwise preserved.
func RemoveDiagnosis(v *Visit, diagnosisID uuid.UUID) error {
	if v.Diagnosis != nil && v.Diagnosis.ID == diagnosisID {
		if len(v.History) > 0 {
			promoted := v.History[0]
			v.History = append([]Diagnosis{}, v.History[1:]...)
			if len(v.History) == 0 {
				v.History = nil
			}
			v.Diagnosis = &promoted
		} else {
			v.Diagnosis = nil
		}
		return nil
	}

	for i, d := range v.History {
		if d.ID == diagnosisID {
			v.History = append(v.History[:i:i], v.History[i+1:]...)
			if len(v.History) == 0 {
				v.History = nil
			}
			return nil
		}
	}
	return ErrDiagnosisNotFound
}
