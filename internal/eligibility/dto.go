package eligibility

import (
	"time"

	eligdm "github.com/frahmantamala/certification-management/internal/core/datamodel/eligibility"
)

type EligibilityView struct {
	ID         int64      `json:"id"`
	EmployeeID int64      `json:"employee_id"`
	RuleID     int64      `json:"rule_id"`
	Source     string     `json:"source"`
	Status     string     `json:"status"`
	DueDate    *time.Time `json:"due_date,omitempty"`
	CertNumber *string    `json:"cert_number,omitempty"`
	CertDate   *time.Time `json:"cert_date,omitempty"`
	IsActive   bool       `json:"is_active"`
}

func ToView(rec eligdm.EmployeeEligibility) EligibilityView {
	return EligibilityView{
		ID:         rec.ID,
		EmployeeID: rec.EmployeeID,
		RuleID:     rec.RuleID,
		Source:     rec.Source,
		Status:     rec.Status,
		DueDate:    rec.DueDate,
		CertNumber: rec.CertNumber,
		CertDate:   rec.CertDate,
		IsActive:   rec.IsActive,
	}
}

func ToViews(recs []eligdm.EmployeeEligibility) []EligibilityView {
	views := make([]EligibilityView, len(recs))
	for i, rec := range recs {
		views[i] = ToView(rec)
	}
	return views
}

type RequirementView struct {
	RuleID int64  `json:"rule_id"`
	Source string `json:"source"`
}

type RefreshResult struct {
	RowsTouched int `json:"rows_touched"`
}
