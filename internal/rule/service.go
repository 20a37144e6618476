package rule

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/certification-management/internal"
	ruledm "github.com/frahmantamala/certification-management/internal/core/datamodel/rule"
	"github.com/frahmantamala/certification-management/internal/core/events"
)

// Service manages certification rules, job mappings, and per-employee
// exceptions. Mapping and exception mutations publish trigger events; rule
// window edits do not retrigger reconciliation on their own because existing
// eligibility rows carry a snapshot of the windows.
type Service struct {
	repo      Repository
	employees EmployeeReader
	eventBus  *events.EventBus
	logger    *slog.Logger
}

func NewService(repo Repository, employees EmployeeReader, eventBus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		employees: employees,
		eventBus:  eventBus,
		logger:    logger,
	}
}

// ----------------- RULES -----------------

func (s *Service) CreateRule(dto CreateRuleDTO) (*ruledm.CertificationRule, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	rule := &ruledm.CertificationRule{
		CertificationName: dto.CertificationName,
		Level:             dto.Level,
		SubField:          dto.SubField,
		ValidityMonths:    dto.ValidityMonths,
		ReminderMonths:    dto.ReminderMonths,
		GraceMonths:       dto.GraceMonths,
		IsActive:          true,
	}

	if err := s.repo.CreateRule(rule); err != nil {
		s.logger.Error("failed to create rule", "error", err, "certification_name", dto.CertificationName)
		return nil, internal.NewInternalError("failed to create rule", err)
	}

	s.logger.Info("certification rule created", "rule_id", rule.ID, "certification_name", rule.CertificationName)
	return rule, nil
}

func (s *Service) UpdateRule(id int64, dto UpdateRuleDTO) (*ruledm.CertificationRule, error) {
	rule, err := s.repo.GetRule(id)
	if err != nil {
		return nil, internal.ErrRuleNotFound
	}

	if dto.CertificationName != nil {
		rule.CertificationName = *dto.CertificationName
	}
	if dto.Level != nil {
		rule.Level = dto.Level
	}
	if dto.SubField != nil {
		rule.SubField = dto.SubField
	}
	if dto.ValidityMonths != nil {
		rule.ValidityMonths = dto.ValidityMonths
	}
	if dto.ReminderMonths != nil {
		rule.ReminderMonths = dto.ReminderMonths
	}
	if dto.GraceMonths != nil {
		rule.GraceMonths = dto.GraceMonths
	}

	toggled := dto.IsActive != nil && *dto.IsActive != rule.IsActive
	if toggled {
		rule.IsActive = *dto.IsActive
	}

	if err := s.repo.UpdateRule(rule); err != nil {
		s.logger.Error("failed to update rule", "error", err, "rule_id", id)
		return nil, internal.NewInternalError("failed to update rule", err)
	}

	s.logger.Info("certification rule updated", "rule_id", id, "toggled", toggled)

	if toggled {
		// Activation state feeds requirement resolution through the
		// mappings; refresh every job position mapped to this rule.
		s.publishForMappedJobs(rule.ID)
	}

	return rule, nil
}

func (s *Service) DeleteRule(id int64) error {
	rule, err := s.repo.GetRule(id)
	if err != nil {
		return internal.ErrRuleNotFound
	}

	now := time.Now()
	rule.DeletedAt = &now
	rule.IsActive = false

	if err := s.repo.UpdateRule(rule); err != nil {
		s.logger.Error("failed to delete rule", "error", err, "rule_id", id)
		return internal.NewInternalError("failed to delete rule", err)
	}

	s.logger.Info("certification rule deleted", "rule_id", id)
	s.publishForMappedJobs(id)
	return nil
}

func (s *Service) GetRule(id int64) (*ruledm.CertificationRule, error) {
	rule, err := s.repo.GetRule(id)
	if err != nil {
		return nil, internal.ErrRuleNotFound
	}
	return rule, nil
}

func (s *Service) ListRules(limit, offset int) ([]ruledm.CertificationRule, error) {
	rules, err := s.repo.ListRules(limit, offset)
	if err != nil {
		return nil, internal.NewInternalError("failed to list rules", err)
	}
	return rules, nil
}

// MatchRule resolves rule attributes to exactly one active rule. More than
// one match is a conflict, never a silent first-match pick.
func (s *Service) MatchRule(certificationName string, level, subField *string) (*ruledm.CertificationRule, error) {
	matches, err := s.repo.FindRulesByAttributes(certificationName, level, subField)
	if err != nil {
		return nil, internal.NewInternalError("failed to match rule", err)
	}

	switch len(matches) {
	case 0:
		return nil, internal.ErrRuleNotFound
	case 1:
		return &matches[0], nil
	default:
		s.logger.Warn("ambiguous rule match",
			"certification_name", certificationName,
			"matches", len(matches))
		return nil, internal.ErrAmbiguousRuleMatch
	}
}

// ----------------- JOB MAPPINGS -----------------

func (s *Service) CreateMapping(dto CreateMappingDTO) (*ruledm.JobCertificationMapping, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetRule(dto.RuleID); err != nil {
		return nil, internal.ErrRuleNotFound
	}

	if existing, err := s.repo.GetMappingByPair(dto.JobPositionID, dto.RuleID); err == nil {
		if existing.DeletedAt == nil {
			return nil, internal.ErrDuplicateMapping
		}
		// revive the soft-deleted pair instead of inserting a duplicate
		existing.DeletedAt = nil
		existing.IsActive = true
		if err := s.repo.UpdateMapping(existing); err != nil {
			return nil, internal.NewInternalError("failed to restore mapping", err)
		}
		s.publishMappingChanged(existing)
		return existing, nil
	}

	m := &ruledm.JobCertificationMapping{
		JobPositionID: dto.JobPositionID,
		RuleID:        dto.RuleID,
		IsActive:      true,
	}

	if err := s.repo.CreateMapping(m); err != nil {
		s.logger.Error("failed to create mapping", "error", err,
			"job_position_id", dto.JobPositionID, "rule_id", dto.RuleID)
		return nil, internal.NewInternalError("failed to create mapping", err)
	}

	s.logger.Info("job certification mapping created",
		"mapping_id", m.ID,
		"job_position_id", m.JobPositionID,
		"rule_id", m.RuleID)

	s.publishMappingChanged(m)
	return m, nil
}

func (s *Service) ToggleMapping(id int64, active bool) (*ruledm.JobCertificationMapping, error) {
	m, err := s.repo.GetMapping(id)
	if err != nil {
		return nil, internal.ErrMappingNotFound
	}

	if m.IsActive == active {
		return m, nil
	}

	m.IsActive = active
	if err := s.repo.UpdateMapping(m); err != nil {
		return nil, internal.NewInternalError("failed to toggle mapping", err)
	}

	s.logger.Info("job certification mapping toggled", "mapping_id", id, "active", active)
	s.publishMappingChanged(m)
	return m, nil
}

func (s *Service) DeleteMapping(id int64) error {
	m, err := s.repo.GetMapping(id)
	if err != nil {
		return internal.ErrMappingNotFound
	}

	now := time.Now()
	m.DeletedAt = &now
	m.IsActive = false

	if err := s.repo.UpdateMapping(m); err != nil {
		return internal.NewInternalError("failed to delete mapping", err)
	}

	s.logger.Info("job certification mapping deleted", "mapping_id", id)
	s.publishMappingChanged(m)
	return nil
}

// ----------------- EXCEPTIONS -----------------

func (s *Service) CreateException(dto CreateExceptionDTO) (*ruledm.EligibilityException, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	emp, err := s.employees.GetByID(dto.EmployeeID)
	if err != nil {
		return nil, internal.ErrEmployeeNotFound
	}
	if emp.IsOffboarded() {
		return nil, internal.ErrEmployeeResigned
	}

	if _, err := s.repo.GetRule(dto.RuleID); err != nil {
		return nil, internal.ErrRuleNotFound
	}

	if existing, err := s.repo.GetExceptionByPair(dto.EmployeeID, dto.RuleID); err == nil {
		if existing.DeletedAt == nil {
			return nil, internal.ErrDuplicateException
		}
		existing.DeletedAt = nil
		existing.IsActive = true
		existing.Note = dto.Note
		if err := s.repo.UpdateException(existing); err != nil {
			return nil, internal.NewInternalError("failed to restore exception", err)
		}
		s.publishExceptionChanged(existing)
		return existing, nil
	}

	exc := &ruledm.EligibilityException{
		EmployeeID: dto.EmployeeID,
		RuleID:     dto.RuleID,
		Note:       dto.Note,
		IsActive:   true,
	}

	if err := s.repo.CreateException(exc); err != nil {
		s.logger.Error("failed to create exception", "error", err,
			"employee_id", dto.EmployeeID, "rule_id", dto.RuleID)
		return nil, internal.NewInternalError("failed to create exception", err)
	}

	s.logger.Info("eligibility exception created",
		"exception_id", exc.ID,
		"employee_id", exc.EmployeeID,
		"rule_id", exc.RuleID)

	s.publishExceptionChanged(exc)
	return exc, nil
}

func (s *Service) ToggleException(id int64, active bool) (*ruledm.EligibilityException, error) {
	exc, err := s.repo.GetException(id)
	if err != nil {
		return nil, internal.ErrExceptionNotFound
	}

	if exc.IsActive == active {
		return exc, nil
	}

	exc.IsActive = active
	if err := s.repo.UpdateException(exc); err != nil {
		return nil, internal.NewInternalError("failed to toggle exception", err)
	}

	s.logger.Info("eligibility exception toggled", "exception_id", id, "active", active)
	s.publishExceptionChanged(exc)
	return exc, nil
}

func (s *Service) DeleteException(id int64) error {
	exc, err := s.repo.GetException(id)
	if err != nil {
		return internal.ErrExceptionNotFound
	}

	now := time.Now()
	exc.DeletedAt = &now
	exc.IsActive = false

	if err := s.repo.UpdateException(exc); err != nil {
		return internal.NewInternalError("failed to delete exception", err)
	}

	s.logger.Info("eligibility exception deleted", "exception_id", id)
	s.publishExceptionChanged(exc)
	return nil
}

// ----------------- EVENTS -----------------

func (s *Service) publishMappingChanged(m *ruledm.JobCertificationMapping) {
	s.publish(events.NewJobMappingChangedEvent(m.JobPositionID, m.RuleID))
}

func (s *Service) publishExceptionChanged(exc *ruledm.EligibilityException) {
	s.publish(events.NewExceptionChangedEvent(exc.EmployeeID, exc.RuleID))
}

// publishForMappedJobs re-reconciles every job position mapped to the rule.
// Used when the rule's activation state changes, which feeds requirement
// resolution through the mappings.
func (s *Service) publishForMappedJobs(ruleID int64) {
	mappings, err := s.repo.ListMappingsForRule(ruleID)
	if err != nil {
		s.logger.Error("failed to list mappings for rule", "rule_id", ruleID, "error", err)
		return
	}
	for _, m := range mappings {
		s.publish(events.NewJobMappingChangedEvent(m.JobPositionID, m.RuleID))
	}
}

func (s *Service) publish(event events.Event) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.Publish(context.Background(), event); err != nil {
		s.logger.Error("failed to publish event", "event_type", event.EventType(), "error", err)
	}
}
