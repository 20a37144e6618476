package certification

import (
	certdm "github.com/frahmantamala/certification-management/internal/core/datamodel/certification"
	employeedm "github.com/frahmantamala/certification-management/internal/core/datamodel/employee"
	ruledm "github.com/frahmantamala/certification-management/internal/core/datamodel/rule"
)

type Repository interface {
	Create(cert *certdm.EmployeeCertification) error
	GetByID(id int64) (*certdm.EmployeeCertification, error)
	ListByEmployee(employeeID int64) ([]certdm.EmployeeCertification, error)
	Update(cert *certdm.EmployeeCertification) error
	// InvalidateByEmployee stamps INVALID on every live record of the
	// employee. The override survives recomputation until explicitly
	// cleared.
	InvalidateByEmployee(employeeID int64) (int64, error)
}

// RuleMatcher resolves certification attributes to exactly one rule;
// ambiguous matches are a conflict. Satisfied by the rule service.
type RuleMatcher interface {
	MatchRule(certificationName string, level, subField *string) (*ruledm.CertificationRule, error)
	GetRule(id int64) (*ruledm.CertificationRule, error)
}

type EmployeeReader interface {
	GetByID(id int64) (*employeedm.Employee, error)
}
