package eligibility

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/certification-management/internal/core/events"
)

// EventHandler wires the engine to the change-trigger events. The
// subscription list below is the complete set of things that cause
// eligibility recomputation.
type EventHandler struct {
	service *Service
	logger  *slog.Logger
}

func NewEventHandler(service *Service, logger *slog.Logger) *EventHandler {
	return &EventHandler{
		service: service,
		logger:  logger,
	}
}

func (h *EventHandler) RegisterEventHandlers(eventBus *events.EventBus) {
	eventBus.Subscribe(events.EventTypeEmployeeUpdated, h.HandleEmployeeUpdated)
	eventBus.Subscribe(events.EventTypeEmployeeResigned, h.HandleEmployeeResigned)
	eventBus.Subscribe(events.EventTypeJobMappingChanged, h.HandleJobMappingChanged)
	eventBus.Subscribe(events.EventTypeExceptionChanged, h.HandleExceptionChanged)
	eventBus.Subscribe(events.EventTypeCertificationChanged, h.HandleCertificationChanged)
	eventBus.Subscribe(events.EventTypeRefreshRequested, h.HandleRefreshRequested)

	h.logger.Info("eligibility event handlers registered",
		"handlers", []string{
			events.EventTypeEmployeeUpdated,
			events.EventTypeEmployeeResigned,
			events.EventTypeJobMappingChanged,
			events.EventTypeExceptionChanged,
			events.EventTypeCertificationChanged,
			events.EventTypeRefreshRequested,
		})
}

func (h *EventHandler) HandleEmployeeUpdated(_ context.Context, event events.Event) error {
	e, ok := event.(*events.EmployeeUpdatedEvent)
	if !ok {
		return fmt.Errorf("expected EmployeeUpdatedEvent, got %T", event)
	}
	return h.service.RefreshOne(e.EmployeeID)
}

func (h *EventHandler) HandleEmployeeResigned(_ context.Context, event events.Event) error {
	e, ok := event.(*events.EmployeeResignedEvent)
	if !ok {
		return fmt.Errorf("expected EmployeeResignedEvent, got %T", event)
	}
	// Deactivation branch only; there is nothing left to synchronize.
	_, err := h.service.Reconcile(e.EmployeeID)
	return err
}

func (h *EventHandler) HandleJobMappingChanged(_ context.Context, event events.Event) error {
	e, ok := event.(*events.JobMappingChangedEvent)
	if !ok {
		return fmt.Errorf("expected JobMappingChangedEvent, got %T", event)
	}
	return h.service.RefreshForJobPosition(e.JobPositionID)
}

func (h *EventHandler) HandleExceptionChanged(_ context.Context, event events.Event) error {
	e, ok := event.(*events.ExceptionChangedEvent)
	if !ok {
		return fmt.Errorf("expected ExceptionChangedEvent, got %T", event)
	}
	return h.service.RefreshOne(e.EmployeeID)
}

func (h *EventHandler) HandleCertificationChanged(_ context.Context, event events.Event) error {
	e, ok := event.(*events.CertificationChangedEvent)
	if !ok {
		return fmt.Errorf("expected CertificationChangedEvent, got %T", event)
	}
	// Requirement membership is unaffected by certification edits.
	_, err := h.service.SynchronizeStatus([]int64{e.EmployeeID})
	return err
}

func (h *EventHandler) HandleRefreshRequested(_ context.Context, event events.Event) error {
	e, ok := event.(*events.RefreshRequestedEvent)
	if !ok {
		return fmt.Errorf("expected RefreshRequestedEvent, got %T", event)
	}
	h.logger.Info("full eligibility refresh requested", "requested_by", e.RequestedBy)
	_, err := h.service.RefreshAll()
	return err
}
