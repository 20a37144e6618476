package eligibility

import "time"

// RecordState is the explicit lifecycle of an eligibility record, derived
// from the soft-delete marker so the reconciler can switch exhaustively
// instead of testing a nullable timestamp everywhere.
type RecordState int

const (
	StateLive RecordState = iota
	StateRetired
)

// EmployeeEligibility is the materialized fact "employee X must currently
// hold rule Y". At most one live record may exist per (employee, rule).
// Status fields are mutated only by the status synchronizer; membership
// fields only by the reconciler.
type EmployeeEligibility struct {
	ID         int64  `gorm:"primaryKey" json:"id"`
	EmployeeID int64  `gorm:"column:employee_id;uniqueIndex:idx_emp_rule;not null" json:"employee_id"`
	RuleID     int64  `gorm:"column:rule_id;uniqueIndex:idx_emp_rule;not null" json:"rule_id"`
	Source     string `gorm:"column:source;not null" json:"source"`
	Status     string `gorm:"column:status;default:NOT_YET_CERTIFIED" json:"status"`

	DueDate    *time.Time `gorm:"column:due_date;type:date" json:"due_date,omitempty"`
	CertNumber *string    `gorm:"column:cert_number" json:"cert_number,omitempty"`
	CertDate   *time.Time `gorm:"column:cert_date;type:date" json:"cert_date,omitempty"`

	// Snapshot of the rule's windows at reconcile time.
	ValidityMonths *int   `gorm:"column:validity_months" json:"validity_months,omitempty"`
	ReminderMonths *int   `gorm:"column:reminder_months" json:"reminder_months,omitempty"`
	GraceMonths    *int   `gorm:"column:grace_months" json:"grace_months,omitempty"`
	JobPositionID  *int64 `gorm:"column:job_position_id" json:"job_position_id,omitempty"`

	IsActive  bool       `gorm:"column:is_active;default:true" json:"is_active"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	DeletedAt *time.Time `gorm:"column:deleted_at" json:"deleted_at,omitempty"`
}

func (EmployeeEligibility) TableName() string {
	return "employee_eligibilities"
}

func (e *EmployeeEligibility) State() RecordState {
	if e.DeletedAt != nil {
		return StateRetired
	}
	return StateLive
}

// Retire marks the record soft-deleted and inactive.
func (e *EmployeeEligibility) Retire(at time.Time) {
	e.IsActive = false
	e.DeletedAt = &at
}

// Reactivate clears the delete marker. Status and due date are preserved;
// the synchronizer recomputes them on the next pass.
func (e *EmployeeEligibility) Reactivate() {
	e.IsActive = true
	e.DeletedAt = nil
}
