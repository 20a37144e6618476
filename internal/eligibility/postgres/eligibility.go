package postgres

import (
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/frahmantamala/certification-management/internal"
	eligdm "github.com/frahmantamala/certification-management/internal/core/datamodel/eligibility"
	"github.com/frahmantamala/certification-management/internal/eligibility"
)

// EligibilityRepository implements eligibility.Repository using GORM.
type EligibilityRepository struct {
	db *gorm.DB
}

func NewEligibilityRepository(db *gorm.DB) eligibility.Repository {
	return &EligibilityRepository{db: db}
}

func (r *EligibilityRepository) GetByEmployee(employeeID int64) ([]eligdm.EmployeeEligibility, error) {
	var records []eligdm.EmployeeEligibility
	err := r.db.Where("employee_id = ?", employeeID).
		Order("rule_id ASC").
		Find(&records).Error
	return records, err
}

func (r *EligibilityRepository) GetLiveByEmployees(employeeIDs []int64) ([]eligdm.EmployeeEligibility, error) {
	if len(employeeIDs) == 0 {
		return nil, nil
	}
	var records []eligdm.EmployeeEligibility
	err := r.db.Where("employee_id IN ? AND deleted_at IS NULL", employeeIDs).
		Order("employee_id ASC, rule_id ASC").
		Find(&records).Error
	return records, err
}

func (r *EligibilityRepository) GetByEmployeeAndRule(employeeID, ruleID int64) (*eligdm.EmployeeEligibility, error) {
	var rec eligdm.EmployeeEligibility
	err := r.db.Where("employee_id = ? AND rule_id = ?", employeeID, ruleID).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrEligibilityNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (r *EligibilityRepository) Create(rec *eligdm.EmployeeEligibility) error {
	err := r.db.Create(rec).Error
	if err != nil && isUniqueViolation(err) {
		return internal.ErrDuplicateEligibility
	}
	return err
}

func (r *EligibilityRepository) Save(rec *eligdm.EmployeeEligibility) error {
	rec.UpdatedAt = time.Now()
	return r.db.Save(rec).Error
}

func (r *EligibilityRepository) ListByStatus(status string, limit, offset int) ([]eligdm.EmployeeEligibility, error) {
	var records []eligdm.EmployeeEligibility
	err := r.db.Where("status = ? AND deleted_at IS NULL", status).
		Order("due_date ASC").
		Limit(limit).
		Offset(offset).
		Find(&records).Error
	return records, err
}

// isUniqueViolation covers postgres (sqlstate 23505) and the sqlite driver
// used by the test suite.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
