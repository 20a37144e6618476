package certification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frahmantamala/certification-management/internal/core/events"
)

// EventHandler applies the INVALID override when an employee offboards.
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
	eventBus.Subscribe(events.EventTypeEmployeeResigned, h.HandleEmployeeResigned)

	h.logger.Info("certification event handlers registered",
		"handlers", []string{events.EventTypeEmployeeResigned})
}

func (h *EventHandler) HandleEmployeeResigned(_ context.Context, event events.Event) error {
	e, ok := event.(*events.EmployeeResignedEvent)
	if !ok {
		return fmt.Errorf("expected EmployeeResignedEvent, got %T", event)
	}
	return h.service.InvalidateForEmployee(e.EmployeeID)
}
