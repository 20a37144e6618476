package certification

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	certdm "github.com/frahmantamala/certification-management/internal/core/datamodel/certification"
	"github.com/frahmantamala/certification-management/internal/transport"
	"github.com/frahmantamala/certification-management/pkg/logger"
	"github.com/go-chi/chi"
)

type ServiceAPI interface {
	RecordCertification(dto RecordCertificationDTO) (*certdm.EmployeeCertification, error)
	UpdateCertification(id int64, dto UpdateCertificationDTO) (*certdm.EmployeeCertification, error)
	AttachFile(id int64, fileURL string) (*certdm.EmployeeCertification, error)
	DeleteCertification(id int64) error
	GetCertification(id int64) (*certdm.EmployeeCertification, error)
	ListForEmployee(employeeID int64) ([]certdm.EmployeeCertification, error)
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

func (h *Handler) Record(w http.ResponseWriter, r *http.Request) {
	var dto RecordCertificationDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cert, err := h.Service.RecordCertification(dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, cert)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var dto UpdateCertificationDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cert, err := h.Service.UpdateCertification(id, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, cert)
}

type attachFileDTO struct {
	FileURL string `json:"file_url"`
}

func (h *Handler) AttachFile(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var dto attachFileDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil || dto.FileURL == "" {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	cert, err := h.Service.AttachFile(id, dto.FileURL)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, cert)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.Service.DeleteCertification(id); err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusNoContent, nil)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	cert, err := h.Service.GetCertification(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, cert)
}

func (h *Handler) ListForEmployee(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	certs, err := h.Service.ListForEmployee(id)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, certs)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		h.Logger.Error("invalid ID", "id", raw)
		h.WriteError(w, http.StatusBadRequest, "invalid ID")
		return 0, false
	}
	return id, true
}
