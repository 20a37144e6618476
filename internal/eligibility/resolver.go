package eligibility

import (
	"sort"

	employeedm "github.com/frahmantamala/certification-management/internal/core/datamodel/employee"
	ruledm "github.com/frahmantamala/certification-management/internal/core/datamodel/rule"
)

// ResolveRequirements computes the set of rules an employee must currently
// satisfy: the union of the job position's active mappings and the
// employee's active exceptions. When a rule arrives through both channels
// the job mapping wins the source label. Offboarded employees resolve to
// the empty set unconditionally.
//
// The function is pure; callers pass the pre-filtered active sets.
func ResolveRequirements(emp *employeedm.Employee, mappings []ruledm.JobCertificationMapping, exceptions []ruledm.EligibilityException) []RequiredRule {
	if emp == nil || emp.IsOffboarded() {
		return nil
	}

	bySource := make(map[int64]string)

	if emp.JobPositionID != nil {
		for _, m := range mappings {
			if m.DeletedAt != nil || !m.IsActive {
				continue
			}
			if m.JobPositionID != *emp.JobPositionID {
				continue
			}
			bySource[m.RuleID] = SourceByJob
		}
	}

	for _, exc := range exceptions {
		if exc.DeletedAt != nil || !exc.IsActive {
			continue
		}
		if exc.EmployeeID != emp.ID {
			continue
		}
		if _, exists := bySource[exc.RuleID]; exists {
			// job mapping already requires it; keep BY_JOB
			continue
		}
		bySource[exc.RuleID] = SourceByName
	}

	required := make([]RequiredRule, 0, len(bySource))
	for ruleID, source := range bySource {
		required = append(required, RequiredRule{RuleID: ruleID, Source: source})
	}
	sort.Slice(required, func(i, j int) bool {
		return required[i].RuleID < required[j].RuleID
	})

	return required
}
