package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/frahmantamala/certification-management/internal"
	employeedm "github.com/frahmantamala/certification-management/internal/core/datamodel/employee"
)

// EmployeeRepository implements employee.Repository and the eligibility
// engine's EmployeeReader on the same gorm handle.
type EmployeeRepository struct {
	db *gorm.DB
}

func NewEmployeeRepository(db *gorm.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

func (r *EmployeeRepository) Create(emp *employeedm.Employee) error {
	return r.db.Create(emp).Error
}

// GetByID returns the employee regardless of lifecycle state; the engine
// reconciles resigned and deleted employees too.
func (r *EmployeeRepository) GetByID(id int64) (*employeedm.Employee, error) {
	var emp employeedm.Employee
	err := r.db.Where("id = ?", id).First(&emp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrEmployeeNotFound
		}
		return nil, err
	}
	return &emp, nil
}

func (r *EmployeeRepository) GetByNumber(employeeNumber string) (*employeedm.Employee, error) {
	var emp employeedm.Employee
	err := r.db.Where("employee_number = ?", employeeNumber).First(&emp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrEmployeeNotFound
		}
		return nil, err
	}
	return &emp, nil
}

func (r *EmployeeRepository) List(limit, offset int) ([]employeedm.Employee, error) {
	var employees []employeedm.Employee
	err := r.db.Where("deleted_at IS NULL").
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Find(&employees).Error
	return employees, err
}

func (r *EmployeeRepository) Update(emp *employeedm.Employee) error {
	emp.UpdatedAt = time.Now()
	return r.db.Save(emp).Error
}

func (r *EmployeeRepository) GetJobPosition(id int64) (*employeedm.JobPosition, error) {
	var job employeedm.JobPosition
	err := r.db.Where("id = ? AND deleted_at IS NULL", id).First(&job).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrJobPositionNotFound
		}
		return nil, err
	}
	return &job, nil
}

// ListActiveIDs pages non-deleted ACTIVE employees for the chunked refresh.
func (r *EmployeeRepository) ListActiveIDs(limit, offset int) ([]int64, error) {
	var ids []int64
	err := r.db.Model(&employeedm.Employee{}).
		Where("deleted_at IS NULL AND status = ?", employeedm.StatusActive).
		Order("id ASC").
		Limit(limit).
		Offset(offset).
		Pluck("id", &ids).Error
	return ids, err
}

func (r *EmployeeRepository) ListIDsByJobPosition(jobPositionID int64) ([]int64, error) {
	var ids []int64
	err := r.db.Model(&employeedm.Employee{}).
		Where("deleted_at IS NULL AND status = ? AND job_position_id = ?", employeedm.StatusActive, jobPositionID).
		Order("id ASC").
		Pluck("id", &ids).Error
	return ids, err
}
