package certification

import "time"

// EmployeeCertification is the authoritative completion fact for one
// (employee, rule) pair. Validity fields are always recomputed from the
// rule's windows, never set directly.
type EmployeeCertification struct {
	ID              int64      `gorm:"primaryKey" json:"id"`
	EmployeeID      int64      `gorm:"column:employee_id;index;not null" json:"employee_id"`
	RuleID          int64      `gorm:"column:rule_id;index;not null" json:"rule_id"`
	InstitutionName string     `gorm:"column:institution_name" json:"institution_name"`
	CertNumber      *string    `gorm:"column:cert_number" json:"cert_number,omitempty"`
	CertDate        *time.Time `gorm:"column:cert_date;type:date" json:"cert_date,omitempty"`
	FileURL         *string    `gorm:"column:file_url" json:"file_url,omitempty"`
	ValidFrom       *time.Time `gorm:"column:valid_from;type:date" json:"valid_from,omitempty"`
	ValidUntil      *time.Time `gorm:"column:valid_until;type:date" json:"valid_until,omitempty"`
	ReminderDate    *time.Time `gorm:"column:reminder_date;type:date" json:"reminder_date,omitempty"`
	Status          string     `gorm:"column:status;default:PENDING" json:"status"`
	CreatedAt       time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	DeletedAt       *time.Time `gorm:"column:deleted_at" json:"deleted_at,omitempty"`
}

func (EmployeeCertification) TableName() string {
	return "employee_certifications"
}
