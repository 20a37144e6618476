// Package validity derives certification validity windows and statuses.
// Everything here is pure: callers pass the evaluation date explicitly so
// the ladder can be tested without touching the clock.
package validity

import "time"

type Status string

const (
	// StatusPending: the record exists but the certificate number or proof
	// file is still missing.
	StatusPending Status = "PENDING"
	// StatusNotYetCertified: no usable certification date yet.
	StatusNotYetCertified Status = "NOT_YET_CERTIFIED"
	StatusActive          Status = "ACTIVE"
	StatusDue             Status = "DUE"
	StatusExpired         Status = "EXPIRED"
	// StatusInvalid is a terminal override applied externally (for example
	// when the employee resigns). Recomputation never produces nor clears it.
	StatusInvalid Status = "INVALID"
)

// Window holds the derived validity dates for a certification.
type Window struct {
	ValidFrom    *time.Time
	ValidUntil   *time.Time
	ReminderDate *time.Time
}

// Compute derives the validity window from the certification date and the
// rule's month counts. A nil validityMonths means the certification never
// expires; the reminder date only exists when both the expiry and a reminder
// window exist.
func Compute(certDate *time.Time, validityMonths, reminderMonths *int) Window {
	if certDate == nil {
		return Window{}
	}

	w := Window{ValidFrom: certDate}

	if validityMonths != nil {
		until := certDate.AddDate(0, *validityMonths, 0)
		w.ValidUntil = &until

		if reminderMonths != nil {
			reminder := until.AddDate(0, -*reminderMonths, 0)
			w.ReminderDate = &reminder
		}
	}

	return w
}

// Input carries everything DeriveStatus needs about one certification record.
type Input struct {
	CertNumber   *string
	FileAttached bool
	CertDate     *time.Time
	ValidUntil   *time.Time
	ReminderDate *time.Time
}

// DeriveStatus walks the status ladder for a certification record. It never
// returns StatusInvalid; that override is applied and cleared outside
// recomputation.
func DeriveStatus(today time.Time, in Input) Status {
	if in.CertNumber == nil || *in.CertNumber == "" || !in.FileAttached {
		return StatusPending
	}
	if in.CertDate == nil {
		return StatusNotYetCertified
	}
	return expiryLadder(today, in.ValidUntil, in.ReminderDate)
}

// DeriveEligibilityStatus is the ladder used at the eligibility layer. It has
// no PENDING rung: eligibility cares about certified-or-not, not document
// completeness.
func DeriveEligibilityStatus(today time.Time, certDate, validUntil, reminderDate *time.Time) Status {
	if certDate == nil {
		return StatusNotYetCertified
	}
	return expiryLadder(today, validUntil, reminderDate)
}

func expiryLadder(today time.Time, validUntil, reminderDate *time.Time) Status {
	if validUntil == nil {
		// lifetime certification
		return StatusActive
	}
	if today.After(*validUntil) {
		return StatusExpired
	}
	if reminderDate != nil && !today.Before(*reminderDate) {
		return StatusDue
	}
	return StatusActive
}
