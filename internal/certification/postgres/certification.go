package postgres

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/frahmantamala/certification-management/internal"
	certdm "github.com/frahmantamala/certification-management/internal/core/datamodel/certification"
	"github.com/frahmantamala/certification-management/internal/validity"
)

// CertificationRepository implements certification.Repository and the
// eligibility engine's CertificationReader on the same gorm handle.
type CertificationRepository struct {
	db *gorm.DB
}

func NewCertificationRepository(db *gorm.DB) *CertificationRepository {
	return &CertificationRepository{db: db}
}

func (r *CertificationRepository) Create(cert *certdm.EmployeeCertification) error {
	return r.db.Create(cert).Error
}

func (r *CertificationRepository) GetByID(id int64) (*certdm.EmployeeCertification, error) {
	var cert certdm.EmployeeCertification
	err := r.db.Where("id = ? AND deleted_at IS NULL", id).First(&cert).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrCertNotFound
		}
		return nil, err
	}
	return &cert, nil
}

func (r *CertificationRepository) ListByEmployee(employeeID int64) ([]certdm.EmployeeCertification, error) {
	var certs []certdm.EmployeeCertification
	err := r.db.Where("employee_id = ? AND deleted_at IS NULL", employeeID).
		Order("cert_date DESC NULLS LAST, id DESC").
		Find(&certs).Error
	return certs, err
}

func (r *CertificationRepository) Update(cert *certdm.EmployeeCertification) error {
	cert.UpdatedAt = time.Now()
	return r.db.Save(cert).Error
}

func (r *CertificationRepository) InvalidateByEmployee(employeeID int64) (int64, error) {
	result := r.db.Model(&certdm.EmployeeCertification{}).
		Where("employee_id = ? AND deleted_at IS NULL AND status <> ?", employeeID, string(validity.StatusInvalid)).
		Updates(map[string]interface{}{
			"status":     string(validity.StatusInvalid),
			"updated_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}

// LiveByEmployees feeds the status synchronizer; it keeps INVALID rows out
// at the query level already.
func (r *CertificationRepository) LiveByEmployees(employeeIDs []int64) ([]certdm.EmployeeCertification, error) {
	if len(employeeIDs) == 0 {
		return nil, nil
	}
	var certs []certdm.EmployeeCertification
	err := r.db.Where("employee_id IN ? AND deleted_at IS NULL AND status <> ?", employeeIDs, string(validity.StatusInvalid)).
		Find(&certs).Error
	return certs, err
}
