package eligibility

import (
	"time"

	eligdm "github.com/frahmantamala/certification-management/internal/core/datamodel/eligibility"
	employeedm "github.com/frahmantamala/certification-management/internal/core/datamodel/employee"
	ruledm "github.com/frahmantamala/certification-management/internal/core/datamodel/rule"
)

// ReconcilePlan lists the row mutations a reconcile pass decided on. Records
// carried here are modified copies; unaffected rows never appear, so an
// empty plan means zero writes.
type ReconcilePlan struct {
	Create     []eligdm.EmployeeEligibility
	Reactivate []eligdm.EmployeeEligibility
	Retire     []eligdm.EmployeeEligibility
	Refresh    []eligdm.EmployeeEligibility
}

func (p ReconcilePlan) Empty() bool {
	return len(p.Create) == 0 && len(p.Reactivate) == 0 && len(p.Retire) == 0 && len(p.Refresh) == 0
}

// Writes is the number of rows the plan will touch.
func (p ReconcilePlan) Writes() int {
	return len(p.Create) + len(p.Reactivate) + len(p.Retire) + len(p.Refresh)
}

// PlanReconcile diffs the required rule set against the employee's existing
// eligibility rows and decides creates, reactivations, retirements, and
// snapshot refreshes. It is a set diff, not delete-and-recreate: records
// with certification history survive requirement removal, and rows that
// need no change generate no writes.
//
// Status and due date are never touched here; they belong to the status
// synchronizer.
func PlanReconcile(emp *employeedm.Employee, existing []eligdm.EmployeeEligibility, required []RequiredRule, rules map[int64]ruledm.CertificationRule, now time.Time) ReconcilePlan {
	var plan ReconcilePlan

	// Offboarded employee: every live record is retired, regardless of
	// certification history.
	if emp == nil || emp.IsOffboarded() {
		for _, rec := range existing {
			if rec.State() != eligdm.StateLive {
				continue
			}
			rec.Retire(now)
			plan.Retire = append(plan.Retire, rec)
		}
		return plan
	}

	requiredSource := make(map[int64]string, len(required))
	for _, req := range required {
		requiredSource[req.RuleID] = req.Source
	}

	byRule := make(map[int64]eligdm.EmployeeEligibility, len(existing))
	for _, rec := range existing {
		byRule[rec.RuleID] = rec
	}

	// Pass 1: existing rows vs the required set.
	for _, rec := range existing {
		source, stillRequired := requiredSource[rec.RuleID]

		switch rec.State() {
		case eligdm.StateLive:
			if !stillRequired {
				// Only untouched requirements are dropped; anything with
				// certification history is frozen in place.
				if rec.Status == StatusNotYetCertified {
					rec.Retire(now)
					plan.Retire = append(plan.Retire, rec)
				}
				continue
			}
			if refreshed, changed := refreshSnapshot(rec, source, emp, rules); changed {
				plan.Refresh = append(plan.Refresh, refreshed)
			}
		case eligdm.StateRetired:
			if !stillRequired {
				continue
			}
			rec.Reactivate()
			rec.Source = source
			rec, _ = refreshSnapshotInPlace(rec, source, emp, rules)
			plan.Reactivate = append(plan.Reactivate, rec)
		}
	}

	// Pass 2: required rules with no row at all.
	for _, req := range required {
		if _, exists := byRule[req.RuleID]; exists {
			continue
		}
		plan.Create = append(plan.Create, newRecord(emp, req, rules))
	}

	return plan
}

// newRecord materializes a fresh requirement with the rule's windows
// snapshotted onto the row.
func newRecord(emp *employeedm.Employee, req RequiredRule, rules map[int64]ruledm.CertificationRule) eligdm.EmployeeEligibility {
	rec := eligdm.EmployeeEligibility{
		EmployeeID:    emp.ID,
		RuleID:        req.RuleID,
		Source:        req.Source,
		Status:        StatusNotYetCertified,
		JobPositionID: emp.JobPositionID,
		IsActive:      true,
	}
	if rule, ok := rules[req.RuleID]; ok {
		rec.ValidityMonths = rule.ValidityMonths
		rec.ReminderMonths = rule.ReminderMonths
		rec.GraceMonths = rule.GraceMonths
	}
	return rec
}

func refreshSnapshot(rec eligdm.EmployeeEligibility, source string, emp *employeedm.Employee, rules map[int64]ruledm.CertificationRule) (eligdm.EmployeeEligibility, bool) {
	return refreshSnapshotInPlace(rec, source, emp, rules)
}

func refreshSnapshotInPlace(rec eligdm.EmployeeEligibility, source string, emp *employeedm.Employee, rules map[int64]ruledm.CertificationRule) (eligdm.EmployeeEligibility, bool) {
	changed := false

	if rec.Source != source {
		rec.Source = source
		changed = true
	}
	if !equalInt64Ptr(rec.JobPositionID, emp.JobPositionID) {
		rec.JobPositionID = emp.JobPositionID
		changed = true
	}
	if rule, ok := rules[rec.RuleID]; ok {
		if !equalIntPtr(rec.ValidityMonths, rule.ValidityMonths) {
			rec.ValidityMonths = rule.ValidityMonths
			changed = true
		}
		if !equalIntPtr(rec.ReminderMonths, rule.ReminderMonths) {
			rec.ReminderMonths = rule.ReminderMonths
			changed = true
		}
		if !equalIntPtr(rec.GraceMonths, rule.GraceMonths) {
			rec.GraceMonths = rule.GraceMonths
			changed = true
		}
	}

	return rec, changed
}

func equalIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalInt64Ptr(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
