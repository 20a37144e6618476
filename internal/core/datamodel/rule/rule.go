package rule

import "time"

// CertificationRule is the unit of "a certification to hold": certification
// name plus optional level and sub-field, with validity and reminder windows.
// A nil ValidityMonths means the certification never expires.
type CertificationRule struct {
	ID                int64      `gorm:"primaryKey" json:"id"`
	CertificationName string     `gorm:"column:certification_name;not null" json:"certification_name"`
	Level             *string    `gorm:"column:level" json:"level,omitempty"`
	SubField          *string    `gorm:"column:sub_field" json:"sub_field,omitempty"`
	ValidityMonths    *int       `gorm:"column:validity_months" json:"validity_months,omitempty"`
	ReminderMonths    *int       `gorm:"column:reminder_months" json:"reminder_months,omitempty"`
	GraceMonths       *int       `gorm:"column:grace_months" json:"grace_months,omitempty"`
	IsActive          bool       `gorm:"column:is_active;default:true" json:"is_active"`
	CreatedAt         time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	DeletedAt         *time.Time `gorm:"column:deleted_at" json:"deleted_at,omitempty"`
}

func (CertificationRule) TableName() string {
	return "certification_rules"
}

func (r *CertificationRule) IsLive() bool {
	return r.DeletedAt == nil && r.IsActive
}

// JobCertificationMapping marks "everyone in this job position must hold
// this rule".
type JobCertificationMapping struct {
	ID            int64      `gorm:"primaryKey" json:"id"`
	JobPositionID int64      `gorm:"column:job_position_id;uniqueIndex:idx_job_rule;not null" json:"job_position_id"`
	RuleID        int64      `gorm:"column:rule_id;uniqueIndex:idx_job_rule;not null" json:"rule_id"`
	IsActive      bool       `gorm:"column:is_active;default:true" json:"is_active"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	DeletedAt     *time.Time `gorm:"column:deleted_at" json:"deleted_at,omitempty"`
}

func (JobCertificationMapping) TableName() string {
	return "job_certification_mappings"
}

// EligibilityException grants a rule requirement to one employee outside the
// job mapping channel. Must reference a non-resigned employee at creation.
type EligibilityException struct {
	ID         int64      `gorm:"primaryKey" json:"id"`
	EmployeeID int64      `gorm:"column:employee_id;uniqueIndex:idx_emp_rule_exc;not null" json:"employee_id"`
	RuleID     int64      `gorm:"column:rule_id;uniqueIndex:idx_emp_rule_exc;not null" json:"rule_id"`
	Note       string     `gorm:"column:note" json:"note"`
	IsActive   bool       `gorm:"column:is_active;default:true" json:"is_active"`
	CreatedAt  time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	DeletedAt  *time.Time `gorm:"column:deleted_at" json:"deleted_at,omitempty"`
}

func (EligibilityException) TableName() string {
	return "eligibility_exceptions"
}
