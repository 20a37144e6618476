package employee

import (
	employeedm "github.com/frahmantamala/certification-management/internal/core/datamodel/employee"
)

// Repository is the data access surface for employees. GetByID must return
// soft-deleted employees as well: the eligibility engine reconciles them
// through the deactivation branch.
type Repository interface {
	Create(emp *employeedm.Employee) error
	GetByID(id int64) (*employeedm.Employee, error)
	GetByNumber(employeeNumber string) (*employeedm.Employee, error)
	List(limit, offset int) ([]employeedm.Employee, error)
	Update(emp *employeedm.Employee) error
	GetJobPosition(id int64) (*employeedm.JobPosition, error)
}
