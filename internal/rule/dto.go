package rule

import "github.com/frahmantamala/certification-management/internal"

type CreateRuleDTO struct {
	CertificationName string  `json:"certification_name"`
	Level             *string `json:"level"`
	SubField          *string `json:"sub_field"`
	ValidityMonths    *int    `json:"validity_months"`
	ReminderMonths    *int    `json:"reminder_months"`
	GraceMonths       *int    `json:"grace_months"`
}

func (d *CreateRuleDTO) Validate() error {
	if d.CertificationName == "" {
		return internal.NewValidationFieldError("certification_name", "certification_name is required", internal.ErrCodeValidationFailed)
	}
	if d.ValidityMonths != nil && *d.ValidityMonths <= 0 {
		return internal.NewValidationError("validity_months must be positive", internal.ErrCodeInvalidWindow)
	}
	if d.ReminderMonths != nil {
		if *d.ReminderMonths <= 0 {
			return internal.NewValidationError("reminder_months must be positive", internal.ErrCodeInvalidWindow)
		}
		if d.ValidityMonths != nil && *d.ReminderMonths >= *d.ValidityMonths {
			return internal.NewValidationError("reminder_months must be smaller than validity_months", internal.ErrCodeInvalidWindow)
		}
	}
	return nil
}

type UpdateRuleDTO struct {
	CertificationName *string `json:"certification_name"`
	Level             *string `json:"level"`
	SubField          *string `json:"sub_field"`
	ValidityMonths    *int    `json:"validity_months"`
	ReminderMonths    *int    `json:"reminder_months"`
	GraceMonths       *int    `json:"grace_months"`
	IsActive          *bool   `json:"is_active"`
}

type CreateMappingDTO struct {
	JobPositionID int64 `json:"job_position_id"`
	RuleID        int64 `json:"rule_id"`
}

func (d *CreateMappingDTO) Validate() error {
	if d.JobPositionID == 0 {
		return internal.NewValidationFieldError("job_position_id", "job_position_id is required", internal.ErrCodeValidationFailed)
	}
	if d.RuleID == 0 {
		return internal.NewValidationFieldError("rule_id", "rule_id is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

type CreateExceptionDTO struct {
	EmployeeID int64  `json:"employee_id"`
	RuleID     int64  `json:"rule_id"`
	Note       string `json:"note"`
}

func (d *CreateExceptionDTO) Validate() error {
	if d.EmployeeID == 0 {
		return internal.NewValidationFieldError("employee_id", "employee_id is required", internal.ErrCodeValidationFailed)
	}
	if d.RuleID == 0 {
		return internal.NewValidationFieldError("rule_id", "rule_id is required", internal.ErrCodeValidationFailed)
	}
	return nil
}
