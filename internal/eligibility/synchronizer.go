package eligibility

import (
	"time"

	certdm "github.com/frahmantamala/certification-management/internal/core/datamodel/certification"
	eligdm "github.com/frahmantamala/certification-management/internal/core/datamodel/eligibility"
	"github.com/frahmantamala/certification-management/internal/validity"
)

// CertKey addresses the current certification record for one requirement.
type CertKey struct {
	EmployeeID int64
	RuleID     int64
}

// LatestByPair groups certification records by (employee, rule) and picks
// the current one: the latest non-null cert date wins; records with a null
// date only stand in when the pair has nothing dated. Ties break on
// creation time, then highest ID. Soft-deleted and INVALID records are
// ignored entirely, so an invalidated certification reads as "none".
func LatestByPair(certs []certdm.EmployeeCertification) map[CertKey]certdm.EmployeeCertification {
	latest := make(map[CertKey]certdm.EmployeeCertification)

	for _, cert := range certs {
		if cert.DeletedAt != nil || cert.Status == string(validity.StatusInvalid) {
			continue
		}
		key := CertKey{EmployeeID: cert.EmployeeID, RuleID: cert.RuleID}
		current, exists := latest[key]
		if !exists || newerCert(cert, current) {
			latest[key] = cert
		}
	}

	return latest
}

func newerCert(a, b certdm.EmployeeCertification) bool {
	switch {
	case a.CertDate != nil && b.CertDate == nil:
		return true
	case a.CertDate == nil && b.CertDate != nil:
		return false
	case a.CertDate != nil && b.CertDate != nil && !a.CertDate.Equal(*b.CertDate):
		return a.CertDate.After(*b.CertDate)
	case !a.CreatedAt.Equal(b.CreatedAt):
		return a.CreatedAt.After(b.CreatedAt)
	default:
		return a.ID > b.ID
	}
}

// PlanSync recomputes status and due date for every live eligibility record
// from the current certification facts and returns modified copies of only
// the rows whose derived state differs from what is stored. Retired rows
// pass through untouched.
func PlanSync(today time.Time, records []eligdm.EmployeeEligibility, latest map[CertKey]certdm.EmployeeCertification) []eligdm.EmployeeEligibility {
	var changed []eligdm.EmployeeEligibility

	for _, rec := range records {
		if rec.State() != eligdm.StateLive {
			continue
		}

		next := rec
		cert, found := latest[CertKey{EmployeeID: rec.EmployeeID, RuleID: rec.RuleID}]
		if found {
			next.CertNumber = cert.CertNumber
			next.CertDate = cert.CertDate
			next.DueDate = cert.ValidUntil
			next.Status = string(validity.DeriveEligibilityStatus(today, cert.CertDate, cert.ValidUntil, cert.ReminderDate))
		} else {
			next.CertNumber = nil
			next.CertDate = nil
			next.DueDate = nil
			next.Status = StatusNotYetCertified
		}

		if syncChanged(rec, next) {
			changed = append(changed, next)
		}
	}

	return changed
}

func syncChanged(a, b eligdm.EmployeeEligibility) bool {
	return a.Status != b.Status ||
		!equalStringPtr(a.CertNumber, b.CertNumber) ||
		!equalTimePtr(a.CertDate, b.CertDate) ||
		!equalTimePtr(a.DueDate, b.DueDate)
}

func equalStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalTimePtr(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
