package rule

import (
	employeedm "github.com/frahmantamala/certification-management/internal/core/datamodel/employee"
	ruledm "github.com/frahmantamala/certification-management/internal/core/datamodel/rule"
)

// Repository covers rules, job mappings, and per-employee exceptions. These
// three sets travel together: they are the inputs of requirement resolution.
type Repository interface {
	CreateRule(rule *ruledm.CertificationRule) error
	GetRule(id int64) (*ruledm.CertificationRule, error)
	ListRules(limit, offset int) ([]ruledm.CertificationRule, error)
	UpdateRule(rule *ruledm.CertificationRule) error
	// FindRulesByAttributes returns every live active rule matching the
	// certification name plus optional level and sub-field.
	FindRulesByAttributes(certificationName string, level, subField *string) ([]ruledm.CertificationRule, error)

	CreateMapping(m *ruledm.JobCertificationMapping) error
	GetMapping(id int64) (*ruledm.JobCertificationMapping, error)
	GetMappingByPair(jobPositionID, ruleID int64) (*ruledm.JobCertificationMapping, error)
	ListMappingsForJob(jobPositionID int64) ([]ruledm.JobCertificationMapping, error)
	ListMappingsForRule(ruleID int64) ([]ruledm.JobCertificationMapping, error)
	UpdateMapping(m *ruledm.JobCertificationMapping) error

	CreateException(exc *ruledm.EligibilityException) error
	GetException(id int64) (*ruledm.EligibilityException, error)
	GetExceptionByPair(employeeID, ruleID int64) (*ruledm.EligibilityException, error)
	UpdateException(exc *ruledm.EligibilityException) error
}

// EmployeeReader is the slim view of employees the rule service needs to
// validate exception targets.
type EmployeeReader interface {
	GetByID(id int64) (*employeedm.Employee, error)
}
