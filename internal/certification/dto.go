package certification

import (
	"time"

	"github.com/frahmantamala/certification-management/internal"
)

// RecordCertificationDTO accepts either an explicit rule ID or the rule's
// attributes for matching. Attribute matching that hits more than one rule
// is rejected as a conflict.
type RecordCertificationDTO struct {
	EmployeeID int64 `json:"employee_id"`
	RuleID     *int64 `json:"rule_id"`

	CertificationName *string `json:"certification_name"`
	Level             *string `json:"level"`
	SubField          *string `json:"sub_field"`

	InstitutionName string     `json:"institution_name"`
	CertNumber      *string    `json:"cert_number"`
	CertDate        *time.Time `json:"cert_date"`
	FileURL         *string    `json:"file_url"`
}

func (d *RecordCertificationDTO) Validate() error {
	if d.EmployeeID == 0 {
		return internal.NewValidationFieldError("employee_id", "employee_id is required", internal.ErrCodeValidationFailed)
	}
	if d.RuleID == nil && d.CertificationName == nil {
		return internal.NewValidationFieldError("rule_id", "rule_id or certification_name is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

type UpdateCertificationDTO struct {
	InstitutionName *string    `json:"institution_name"`
	CertNumber      *string    `json:"cert_number"`
	CertDate        *time.Time `json:"cert_date"`
	FileURL         *string    `json:"file_url"`
}
