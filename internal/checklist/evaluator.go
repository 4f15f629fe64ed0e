package checklist

import (
	"time"

	"github.com/DeLTa-X-Tunisia/Logi-Track-sub000/internal/models"
)

// ExpiringSoonWindow is the remaining-validity threshold under which a VALID
// type is flagged expiring_soon. UI urgency only, not a distinct state.
const ExpiringSoonWindow = 2 * time.Hour

// ValidityState is the computed compliance state of a checklist type.
type ValidityState string

const (
	// ValidityNeverDone: no validated session exists. Treated as expired for
	// gating purposes (production may not start).
	ValidityNeverDone ValidityState = "never_done"
	ValidityExpired   ValidityState = "expired"
	ValidityValid     ValidityState = "valid"
)

// Validity is the result of Evaluate.
type Validity struct {
	State        ValidityState
	ExpiringSoon bool
	// ExpiresIn is the remaining validity; zero when not VALID.
	ExpiresIn time.Duration
}

// IsValid reports whether the certification is current.
func (v Validity) IsValid() bool { return v.State == ValidityValid }

// ExpiresInHours rounds the remaining validity to whole hours for the API.
func (v Validity) ExpiresInHours() int {
	if v.State != ValidityValid {
		return 0
	}
	return int(v.ExpiresIn.Round(time.Hour) / time.Hour)
}

// Evaluate computes the current compliance state of a type from its most
// recent validated session. Pure and deterministic given its inputs and now;
// it performs no writes. last must be the latest session with status
// validated, or nil if none exists; an unfinished in_progress session past
// its own deadline is as useless as an absent one and therefore contributes
// nothing here.
func Evaluate(typ *models.ChecklistType, last *models.Session, now time.Time) Validity {
	if last == nil || last.ExpiresAt == nil {
		return Validity{State: ValidityNeverDone}
	}
	remaining := last.ExpiresAt.Sub(now)
	if remaining <= 0 {
		return Validity{State: ValidityExpired}
	}
	return Validity{
		State:        ValidityValid,
		ExpiringSoon: remaining < ExpiringSoonWindow,
		ExpiresIn:    remaining,
	}
}

// Deadline returns the instant past which an in_progress session can no
// longer be completed: started_at + the type's validity window.
func Deadline(s *models.Session, validityHours int) time.Time {
	return s.StartedAt.Add(time.Duration(validityHours) * time.Hour)
}

// PastDeadline reports whether an in_progress session is read-only expired,
// regardless of what the stored status column says.
func PastDeadline(s *models.Session, validityHours int, now time.Time) bool {
	return now.After(Deadline(s, validityHours))
}
