package employee

import (
	"time"

	"github.com/frahmantamala/certification-management/internal"
)

type CreateEmployeeDTO struct {
	EmployeeNumber string     `json:"employee_number"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	JobPositionID  *int64     `json:"job_position_id"`
	OrgUnitID      *int64     `json:"org_unit_id"`
	JoinDate       *time.Time `json:"join_date"`
}

func (d *CreateEmployeeDTO) Validate() error {
	if d.EmployeeNumber == "" {
		return internal.NewValidationFieldError("employee_number", "employee_number is required", internal.ErrCodeValidationFailed)
	}
	if d.Name == "" {
		return internal.NewValidationFieldError("name", "name is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

type UpdateEmployeeDTO struct {
	Name          *string `json:"name"`
	Email         *string `json:"email"`
	JobPositionID *int64  `json:"job_position_id"`
	OrgUnitID     *int64  `json:"org_unit_id"`
	Status        *string `json:"status"`
}

type ResignEmployeeDTO struct {
	ResignDate *time.Time `json:"resign_date"`
	Terminated bool       `json:"terminated"`
}
