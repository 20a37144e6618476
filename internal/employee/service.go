package employee

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/certification-management/internal"
	employeedm "github.com/frahmantamala/certification-management/internal/core/datamodel/employee"
	"github.com/frahmantamala/certification-management/internal/core/events"
)

// Service owns employee lifecycle. Every requirement-affecting mutation
// publishes an event so the eligibility engine can react; the engine is
// never called directly from here.
type Service struct {
	repo     Repository
	eventBus *events.EventBus
	logger   *slog.Logger
}

func NewService(repo Repository, eventBus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		eventBus: eventBus,
		logger:   logger,
	}
}

func (s *Service) CreateEmployee(dto CreateEmployeeDTO) (*employeedm.Employee, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("employee validation failed", "error", err)
		return nil, err
	}

	if dto.JobPositionID != nil {
		if _, err := s.repo.GetJobPosition(*dto.JobPositionID); err != nil {
			return nil, internal.ErrJobPositionNotFound
		}
	}

	emp := &employeedm.Employee{
		EmployeeNumber: dto.EmployeeNumber,
		Name:           dto.Name,
		Email:          dto.Email,
		JobPositionID:  dto.JobPositionID,
		OrgUnitID:      dto.OrgUnitID,
		Status:         employeedm.StatusActive,
		JoinDate:       dto.JoinDate,
	}

	if err := s.repo.Create(emp); err != nil {
		s.logger.Error("failed to create employee", "error", err, "employee_number", dto.EmployeeNumber)
		return nil, internal.NewInternalError("failed to create employee", err)
	}

	s.logger.Info("employee created",
		"employee_id", emp.ID,
		"employee_number", emp.EmployeeNumber)

	s.publish(events.NewEmployeeUpdatedEvent(emp.ID))
	return emp, nil
}

func (s *Service) UpdateEmployee(id int64, dto UpdateEmployeeDTO) (*employeedm.Employee, error) {
	emp, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrEmployeeNotFound
	}

	requirementAffecting := false

	if dto.Name != nil {
		emp.Name = *dto.Name
	}
	if dto.Email != nil {
		emp.Email = *dto.Email
	}
	if dto.JobPositionID != nil {
		if _, err := s.repo.GetJobPosition(*dto.JobPositionID); err != nil {
			return nil, internal.ErrJobPositionNotFound
		}
		if emp.JobPositionID == nil || *emp.JobPositionID != *dto.JobPositionID {
			emp.JobPositionID = dto.JobPositionID
			requirementAffecting = true
		}
	}
	if dto.OrgUnitID != nil {
		emp.OrgUnitID = dto.OrgUnitID
		requirementAffecting = true
	}
	if dto.Status != nil && *dto.Status != emp.Status {
		emp.Status = *dto.Status
		requirementAffecting = true
	}

	if err := s.repo.Update(emp); err != nil {
		s.logger.Error("failed to update employee", "error", err, "employee_id", id)
		return nil, internal.NewInternalError("failed to update employee", err)
	}

	s.logger.Info("employee updated", "employee_id", id, "requirement_affecting", requirementAffecting)

	if emp.IsOffboarded() {
		s.publish(events.NewEmployeeResignedEvent(emp.ID))
	} else if requirementAffecting {
		s.publish(events.NewEmployeeUpdatedEvent(emp.ID))
	}

	return emp, nil
}

// ResignEmployee closes out an employee. All their requirements are
// deactivated and their certification records invalidated downstream.
func (s *Service) ResignEmployee(id int64, dto ResignEmployeeDTO) (*employeedm.Employee, error) {
	emp, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrEmployeeNotFound
	}

	now := time.Now()
	resignDate := dto.ResignDate
	if resignDate == nil {
		resignDate = &now
	}

	emp.Status = employeedm.StatusResigned
	if dto.Terminated {
		emp.Status = employeedm.StatusTerminated
	}
	emp.ResignDate = resignDate

	if err := s.repo.Update(emp); err != nil {
		s.logger.Error("failed to resign employee", "error", err, "employee_id", id)
		return nil, internal.NewInternalError("failed to resign employee", err)
	}

	s.logger.Info("employee resigned",
		"employee_id", id,
		"status", emp.Status,
		"resign_date", resignDate)

	s.publish(events.NewEmployeeResignedEvent(emp.ID))
	return emp, nil
}

// DeleteEmployee soft-deletes; eligibility-wise this equals resignation.
func (s *Service) DeleteEmployee(id int64) error {
	emp, err := s.repo.GetByID(id)
	if err != nil {
		return internal.ErrEmployeeNotFound
	}

	now := time.Now()
	emp.DeletedAt = &now

	if err := s.repo.Update(emp); err != nil {
		s.logger.Error("failed to delete employee", "error", err, "employee_id", id)
		return internal.NewInternalError("failed to delete employee", err)
	}

	s.logger.Info("employee deleted", "employee_id", id)

	s.publish(events.NewEmployeeResignedEvent(emp.ID))
	return nil
}

func (s *Service) GetEmployee(id int64) (*employeedm.Employee, error) {
	emp, err := s.repo.GetByID(id)
	if err != nil {
		return nil, internal.ErrEmployeeNotFound
	}
	return emp, nil
}

func (s *Service) ListEmployees(limit, offset int) ([]employeedm.Employee, error) {
	employees, err := s.repo.List(limit, offset)
	if err != nil {
		s.logger.Error("failed to list employees", "error", err)
		return nil, internal.NewInternalError("failed to list employees", err)
	}
	return employees, nil
}

func (s *Service) publish(event events.Event) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.Publish(context.Background(), event); err != nil {
		s.logger.Error("failed to publish event", "event_type", event.EventType(), "error", err)
	}
}
