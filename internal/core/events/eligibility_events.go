package events

import (
	"time"

	"github.com/google/uuid"
)

// Event types consumed by the eligibility engine. This list is the single
// source of truth for what causes eligibility recomputation.
const (
	EventTypeEmployeeUpdated      = "employee.updated"
	EventTypeEmployeeResigned     = "employee.resigned"
	EventTypeJobMappingChanged    = "jobmapping.changed"
	EventTypeExceptionChanged     = "exception.changed"
	EventTypeCertificationChanged = "certification.changed"
	EventTypeRefreshRequested     = "eligibility.refresh_requested"
)

func newBaseEvent(eventType string) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now(),
	}
}

// EmployeeUpdatedEvent fires when an employee is created or when their job
// position, organization, or lifecycle status changes.
type EmployeeUpdatedEvent struct {
	BaseEvent
	EmployeeID int64 `json:"employee_id"`
}

func NewEmployeeUpdatedEvent(employeeID int64) *EmployeeUpdatedEvent {
	return &EmployeeUpdatedEvent{
		BaseEvent:  newBaseEvent(EventTypeEmployeeUpdated),
		EmployeeID: employeeID,
	}
}

// EmployeeResignedEvent fires on resignation, termination, or soft delete.
type EmployeeResignedEvent struct {
	BaseEvent
	EmployeeID int64 `json:"employee_id"`
}

func NewEmployeeResignedEvent(employeeID int64) *EmployeeResignedEvent {
	return &EmployeeResignedEvent{
		BaseEvent:  newBaseEvent(EventTypeEmployeeResigned),
		EmployeeID: employeeID,
	}
}

// JobMappingChangedEvent fires when a job-to-rule mapping is created,
// toggled, or deleted. Every employee in the job position is re-reconciled.
type JobMappingChangedEvent struct {
	BaseEvent
	JobPositionID int64 `json:"job_position_id"`
	RuleID        int64 `json:"rule_id"`
}

func NewJobMappingChangedEvent(jobPositionID, ruleID int64) *JobMappingChangedEvent {
	return &JobMappingChangedEvent{
		BaseEvent:     newBaseEvent(EventTypeJobMappingChanged),
		JobPositionID: jobPositionID,
		RuleID:        ruleID,
	}
}

// ExceptionChangedEvent fires when a per-employee eligibility exception is
// created, toggled, or deleted.
type ExceptionChangedEvent struct {
	BaseEvent
	EmployeeID int64 `json:"employee_id"`
	RuleID     int64 `json:"rule_id"`
}

func NewExceptionChangedEvent(employeeID, ruleID int64) *ExceptionChangedEvent {
	return &ExceptionChangedEvent{
		BaseEvent:  newBaseEvent(EventTypeExceptionChanged),
		EmployeeID: employeeID,
		RuleID:     ruleID,
	}
}

// CertificationChangedEvent fires when a certification record is created,
// updated, deleted, or its proof file changes. Requirement membership is
// unaffected, so only status synchronization runs.
type CertificationChangedEvent struct {
	BaseEvent
	EmployeeID      int64 `json:"employee_id"`
	CertificationID int64 `json:"certification_id"`
}

func NewCertificationChangedEvent(employeeID, certificationID int64) *CertificationChangedEvent {
	return &CertificationChangedEvent{
		BaseEvent:       newBaseEvent(EventTypeCertificationChanged),
		EmployeeID:      employeeID,
		CertificationID: certificationID,
	}
}

// RefreshRequestedEvent fires when an operator asks for a full-population
// refresh.
type RefreshRequestedEvent struct {
	BaseEvent
	RequestedBy string `json:"requested_by"`
}

func NewRefreshRequestedEvent(requestedBy string) *RefreshRequestedEvent {
	return &RefreshRequestedEvent{
		BaseEvent:   newBaseEvent(EventTypeRefreshRequested),
		RequestedBy: requestedBy,
	}
}
