package checklist

// SessionStatus is the stored lifecycle state of a session. A session past
// its deadline is reported expired at read time even while the stored column
// still says in_progress; nothing background-flips the column.
type SessionStatus string

const (
	SessionInProgress SessionStatus = "in_progress"
	SessionValidated  SessionStatus = "validated"
	SessionExpired    SessionStatus = "expired"
)

// IsValid reports whether s is one of the known session statuses.
func (s SessionStatus) IsValid() bool {
	switch s {
	case SessionInProgress, SessionValidated, SessionExpired:
		return true
	}
	return false
}

// ValidationStatus is the resolution state of one item within one session.
// Values keep the wire codes of the shop-floor vocabulary.
type ValidationStatus string

const (
	StatusUnverified  ValidationStatus = "non_verifie"
	StatusConforme    ValidationStatus = "conforme"
	StatusNonConforme ValidationStatus = "non_conforme"
	StatusCorrected   ValidationStatus = "corrige"
)

// IsValid reports whether v is one of the known validation statuses.
func (v ValidationStatus) IsValid() bool {
	switch v {
	case StatusUnverified, StatusConforme, StatusNonConforme, StatusCorrected:
		return true
	}
	return false
}

// Resolved reports whether v satisfies the finalization gate for a critical
// item: only conforme and corrige count, a merely touched item does not.
func (v ValidationStatus) Resolved() bool {
	switch v {
	case StatusConforme, StatusCorrected:
		return true
	case StatusUnverified, StatusNonConforme:
		return false
	}
	return false
}

// Frequency is the recurrence label of a checklist type. It is descriptive
// only; the engine gates on validity_duration_hours, never on the label.
type Frequency string

const (
	FreqShiftStart Frequency = "shift-start"
	FreqWeekly     Frequency = "weekly"
	FreqMonthly    Frequency = "monthly"
)

// IsValid reports whether f is one of the known frequencies.
func (f Frequency) IsValid() bool {
	switch f {
	case FreqShiftStart, FreqWeekly, FreqMonthly:
		return true
	}
	return false
}
