package eligibility

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/frahmantamala/certification-management/internal"
	eligdm "github.com/frahmantamala/certification-management/internal/core/datamodel/eligibility"
	"github.com/frahmantamala/certification-management/internal/transport"
	"github.com/frahmantamala/certification-management/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	ResolveRequirements(employeeID int64) ([]RequiredRule, error)
	RefreshOne(employeeID int64) error
	RefreshForJobPosition(jobPositionID int64) error
	RefreshAll() (int, error)
	ListForEmployee(employeeID int64) ([]eligdm.EmployeeEligibility, error)
	ListDue(limit, offset int) ([]eligdm.EmployeeEligibility, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(service ServiceAPI) *Handler {
	lg := logger.LoggerWrapper()
	if lg == nil {
		lg = slog.Default()
	}
	return &Handler{
		BaseHandler: transport.NewBaseHandler(lg),
		Service:     service,
	}
}

func (h *Handler) GetEmployeeEligibility(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	records, err := h.Service.ListForEmployee(employeeID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ToViews(records))
}

func (h *Handler) GetEmployeeRequirements(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	required, err := h.Service.ResolveRequirements(employeeID)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	views := make([]RequirementView, len(required))
	for i, req := range required {
		views[i] = RequirementView{RuleID: req.RuleID, Source: req.Source}
	}

	h.WriteJSON(w, http.StatusOK, views)
}

func (h *Handler) RefreshEmployee(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.Service.RefreshOne(employeeID); err != nil {
		h.Logger.Error("RefreshEmployee: refresh failed", "error", err, "employee_id", employeeID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusAccepted, map[string]string{"status": "refreshed"})
}

func (h *Handler) RefreshJobPosition(w http.ResponseWriter, r *http.Request) {
	jobPositionID, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.Service.RefreshForJobPosition(jobPositionID); err != nil {
		h.Logger.Error("RefreshJobPosition: refresh failed", "error", err, "job_position_id", jobPositionID)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusAccepted, map[string]string{"status": "refreshed"})
}

func (h *Handler) RefreshAll(w http.ResponseWriter, r *http.Request) {
	h.Logger.Info("full eligibility refresh requested", "actor_id", internal.ActorFromContext(r.Context()))

	rows, err := h.Service.RefreshAll()
	if err != nil {
		h.Logger.Error("RefreshAll: refresh failed", "error", err)
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, RefreshResult{RowsTouched: rows})
}

func (h *Handler) GetDue(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	records, err := h.Service.ListDue(limit, offset)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ToViews(records))
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		h.Logger.Error("invalid path parameter", "param", name, "value", raw)
		h.WriteError(w, http.StatusBadRequest, "invalid "+name)
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, name string, defaultVal int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val < 0 {
		return defaultVal
	}
	return val
}
