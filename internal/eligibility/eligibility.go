package eligibility

import (
	"time"

	certdm "github.com/frahmantamala/certification-management/internal/core/datamodel/certification"
	eligdm "github.com/frahmantamala/certification-management/internal/core/datamodel/eligibility"
	employeedm "github.com/frahmantamala/certification-management/internal/core/datamodel/employee"
	ruledm "github.com/frahmantamala/certification-management/internal/core/datamodel/rule"
	"github.com/frahmantamala/certification-management/internal/validity"
)

// Source says why a rule is required for an employee.
const (
	SourceByJob  = "BY_JOB"
	SourceByName = "BY_NAME"
)

// Eligibility statuses reuse the validity ladder minus PENDING and INVALID.
const (
	StatusNotYetCertified = string(validity.StatusNotYetCertified)
	StatusActive          = string(validity.StatusActive)
	StatusDue             = string(validity.StatusDue)
	StatusExpired         = string(validity.StatusExpired)
)

// RequiredRule is one entry of a resolved requirement set.
type RequiredRule struct {
	RuleID int64
	Source string
}

// Repository is the engine's write side over materialized eligibility rows.
type Repository interface {
	// GetByEmployee returns every record for the employee, live and retired.
	// The unique (employee_id, rule_id) constraint guarantees at most one
	// row per pair.
	GetByEmployee(employeeID int64) ([]eligdm.EmployeeEligibility, error)
	// GetLiveByEmployees returns live records for a batch of employees.
	GetLiveByEmployees(employeeIDs []int64) ([]eligdm.EmployeeEligibility, error)
	// GetByEmployeeAndRule returns the single row for the pair, live or
	// retired, or internal.ErrEligibilityNotFound.
	GetByEmployeeAndRule(employeeID, ruleID int64) (*eligdm.EmployeeEligibility, error)
	// Create inserts a new row; a unique violation surfaces as
	// internal.ErrDuplicateEligibility so the reconciler can merge.
	Create(rec *eligdm.EmployeeEligibility) error
	Save(rec *eligdm.EmployeeEligibility) error
	ListByStatus(status string, limit, offset int) ([]eligdm.EmployeeEligibility, error)
}

// EmployeeReader is the engine's read side over employees.
type EmployeeReader interface {
	GetByID(id int64) (*employeedm.Employee, error)
	// ListActiveIDs pages through non-deleted, non-resigned employee IDs in
	// ascending order for the chunked full refresh.
	ListActiveIDs(limit, offset int) ([]int64, error)
	ListIDsByJobPosition(jobPositionID int64) ([]int64, error)
}

// RequirementReader supplies the active mapping and exception sets.
type RequirementReader interface {
	ActiveMappingsForJob(jobPositionID int64) ([]ruledm.JobCertificationMapping, error)
	ActiveExceptionsForEmployee(employeeID int64) ([]ruledm.EligibilityException, error)
	RulesByIDs(ids []int64) ([]ruledm.CertificationRule, error)
}

// CertificationReader supplies live certification records for a batch of
// employees; the synchronizer picks the current one per (employee, rule).
type CertificationReader interface {
	LiveByEmployees(employeeIDs []int64) ([]certdm.EmployeeCertification, error)
}

// Clock lets tests pin the evaluation date.
type Clock func() time.Time
