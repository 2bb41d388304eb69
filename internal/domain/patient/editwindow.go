package patient

import (
	"time"

	"github.com/clinicdesk/clinicdesk/internal/platform/auth"
)

// EditWindow is how long a secretary may keep editing a record they
// registered themselves. Doctors and admins are never restricted.
const EditWindow = time.Hour

// CanEdit reports whether actingRole may modify the record as of now.
// Only secretary-created records are windowed, and only for secretaries;
// the boundary is inclusive, so an edit exactly one hour after creation
// still passes.
func CanEdit(p *Patient, actingRole string, now time.Time) bool {
	if p.CreatedBy != auth.RoleSecretary {
		return true
	}
	if actingRole != auth.RoleSecretary {
		return true
	}
	return now.Sub(p.CreatedAt) <= EditWindow
}

// MinutesRemaining returns the whole minutes left in the record's edit
// window, clamped at zero. For records that are not windowed at all it
// reports the full window.
func MinutesRemaining(p *Patient, now time.Time) int {
	if p.CreatedBy != auth.RoleSecretary {
		return int(EditWindow / time.Minute)
	}
	left := EditWindow - now.Sub(p.CreatedAt)
	if left < 0 {
		return 0
	}
	return int(left / time.Minute)
}
