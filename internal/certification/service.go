package certification

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/certification-management/internal"
	certdm "github.com/frahmantamala/certification-management/internal/core/datamodel/certification"
	ruledm "github.com/frahmantamala/certification-management/internal/core/datamodel/rule"
	"github.com/frahmantamala/certification-management/internal/core/events"
	"github.com/frahmantamala/certification-management/internal/validity"
)

// Service owns the authoritative completion facts. Validity fields are
// always derived from the rule's windows through the calculator, never
// accepted from the caller.
type Service struct {
	repo      Repository
	rules     RuleMatcher
	employees EmployeeReader
	eventBus  *events.EventBus
	logger    *slog.Logger
	clock     func() time.Time
}

func NewService(repo Repository, rules RuleMatcher, employees EmployeeReader, eventBus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		rules:     rules,
		employees: employees,
		eventBus:  eventBus,
		logger:    logger,
		clock:     time.Now,
	}
}

// WithClock pins the evaluation date, for tests.
func (s *Service) WithClock(clock func() time.Time) *Service {
	s.clock = clock
	return s
}

// RecordCertification registers a completion fact from an exam result or
// manual entry.
func (s *Service) RecordCertification(dto RecordCertificationDTO) (*certdm.EmployeeCertification, error) {
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

	rule, err := s.resolveRule(dto)
	if err != nil {
		return nil, err
	}

	cert := &certdm.EmployeeCertification{
		EmployeeID:      dto.EmployeeID,
		RuleID:          rule.ID,
		InstitutionName: dto.InstitutionName,
		CertNumber:      dto.CertNumber,
		CertDate:        dto.CertDate,
		FileURL:         dto.FileURL,
	}
	s.recompute(cert, rule)

	if err := s.repo.Create(cert); err != nil {
		s.logger.Error("failed to create certification record", "error", err,
			"employee_id", dto.EmployeeID, "rule_id", rule.ID)
		return nil, internal.NewInternalError("failed to create certification record", err)
	}

	s.logger.Info("certification recorded",
		"certification_id", cert.ID,
		"employee_id", cert.EmployeeID,
		"rule_id", cert.RuleID,
		"status", cert.Status)

	s.publishChanged(cert)
	return cert, nil
}

func (s *Service) UpdateCertification(id int64, dto UpdateCertificationDTO) (*certdm.EmployeeCertification, error) {
	cert, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrCertNotFound
	}

	if dto.InstitutionName != nil {
		cert.InstitutionName = *dto.InstitutionName
	}
	if dto.CertNumber != nil {
		cert.CertNumber = dto.CertNumber
	}
	if dto.CertDate != nil {
		cert.CertDate = dto.CertDate
	}
	if dto.FileURL != nil {
		cert.FileURL = dto.FileURL
	}

	rule, err := s.rules.GetRule(cert.RuleID)
	if err != nil {
		return nil, internal.ErrRuleNotFound
	}
	s.recompute(cert, rule)

	if err := s.repo.Update(cert); err != nil {
		s.logger.Error("failed to update certification record", "error", err, "certification_id", id)
		return nil, internal.NewInternalError("failed to update certification record", err)
	}

	s.logger.Info("certification updated",
		"certification_id", id,
		"status", cert.Status)

	s.publishChanged(cert)
	return cert, nil
}

// AttachFile records the proof document, which can lift the record out of
// PENDING.
func (s *Service) AttachFile(id int64, fileURL string) (*certdm.EmployeeCertification, error) {
	url := fileURL
	return s.UpdateCertification(id, UpdateCertificationDTO{FileURL: &url})
}

func (s *Service) DeleteCertification(id int64) error {
	cert, err := s.repo.GetByID(id)
	if err != nil {
		return internal.ErrCertNotFound
	}

	now := s.clock()
	cert.DeletedAt = &now

	if err := s.repo.Update(cert); err != nil {
		s.logger.Error("failed to delete certification record", "error", err, "certification_id", id)
		return internal.NewInternalError("failed to delete certification record", err)
	}

	s.logger.Info("certification deleted", "certification_id", id, "employee_id", cert.EmployeeID)

	s.publishChanged(cert)
	return nil
}

func (s *Service) GetCertification(id int64) (*certdm.EmployeeCertification, error) {
	cert, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrCertNotFound
	}
	return cert, nil
}

func (s *Service) ListForEmployee(employeeID int64) ([]certdm.EmployeeCertification, error) {
	if _, err := s.employees.GetByID(employeeID); err != nil {
		return nil, internal.ErrEmployeeNotFound
	}
	certs, err := s.repo.ListByEmployee(employeeID)
	if err != nil {
		return nil, internal.NewInternalError("failed to list certification records", err)
	}
	return certs, nil
}

// InvalidateForEmployee applies the terminal INVALID override to every live
// record of an offboarded employee. No change event is published: the
// employee's eligibility rows are deactivated by the resignation trigger,
// and the synchronizer already reads INVALID records as absent.
func (s *Service) InvalidateForEmployee(employeeID int64) error {
	n, err := s.repo.InvalidateByEmployee(employeeID)
	if err != nil {
		s.logger.Error("failed to invalidate certifications", "error", err, "employee_id", employeeID)
		return internal.NewInternalError("failed to invalidate certifications", err)
	}

	if n > 0 {
		s.logger.Info("certifications invalidated", "employee_id", employeeID, "records", n)
	}
	return nil
}

func (s *Service) resolveRule(dto RecordCertificationDTO) (*ruledm.CertificationRule, error) {
	if dto.RuleID != nil {
		rule, err := s.rules.GetRule(*dto.RuleID)
		if err != nil {
			return nil, internal.ErrRuleNotFound
		}
		return rule, nil
	}
	return s.rules.MatchRule(*dto.CertificationName, dto.Level, dto.SubField)
}

// recompute derives validity window and status. INVALID is terminal and is
// left alone.
func (s *Service) recompute(cert *certdm.EmployeeCertification, rule *ruledm.CertificationRule) {
	window := validity.Compute(cert.CertDate, rule.ValidityMonths, rule.ReminderMonths)
	cert.ValidFrom = window.ValidFrom
	cert.ValidUntil = window.ValidUntil
	cert.ReminderDate = window.ReminderDate

	if cert.Status == string(validity.StatusInvalid) {
		return
	}

	cert.Status = string(validity.DeriveStatus(s.clock(), validity.Input{
		CertNumber:   cert.CertNumber,
		FileAttached: cert.FileURL != nil && *cert.FileURL != "",
		CertDate:     cert.CertDate,
		ValidUntil:   cert.ValidUntil,
		ReminderDate: cert.ReminderDate,
	}))
}

func (s *Service) publishChanged(cert *certdm.EmployeeCertification) {
	if s.eventBus == nil {
		return
	}
	event := events.NewCertificationChangedEvent(cert.EmployeeID, cert.ID)
	if err := s.eventBus.Publish(context.Background(), event); err != nil {
		s.logger.Error("failed to publish event", "event_type", event.EventType(), "error", err)
	}
}
