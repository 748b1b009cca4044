package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lorrc/queue-backend/internal/adapters/primary/validation"
	"github.com/lorrc/queue-backend/internal/core/domain"
	"github.com/lorrc/queue-backend/internal/core/ports"
)

// ServiceHandler exposes the service catalog.
type ServiceHandler struct {
	catalog ports.CatalogService
	logger  *slog.Logger
}

func NewServiceHandler(catalog ports.CatalogService, logger *slog.Logger) *ServiceHandler {
	return &ServiceHandler{catalog: catalog, logger: logger}
}

// CreateServiceRequest is the body for registering a service.
type CreateServiceRequest struct {
	Name                 string `json:"name"`
	Description          string `json:"description"`
	EstimatedServiceTime int    `json:"estimatedServiceTime"`
}

// UpdateServiceRequest is a partial update; absent fields stay unchanged.
type UpdateServiceRequest struct {
	Name                 *string `json:"name"`
	Description          *string `json:"description"`
	EstimatedServiceTime *int    `json:"estimatedServiceTime"`
}

// ServiceResponse is the JSON view of a service. The QR code is only
// included on single-service fetches to keep list payloads small.
type ServiceResponse struct {
	ID                   uuid.UUID  `json:"id"`
	Name                 string     `json:"name"`
	Description          string     `json:"description,omitempty"`
	IsActive             bool       `json:"isActive"`
	EstimatedServiceTime int        `json:"estimatedServiceTime"`
	QRCode               string     `json:"qrCode,omitempty"`
	QRCodeURL            string     `json:"qrCodeUrl,omitempty"`
	TotalServed          int        `json:"totalServed"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            *time.Time `json:"updatedAt,omitempty"`
}

func toServiceResponse(service *domain.Service, includeQR bool) ServiceResponse {
	resp := ServiceResponse{
		ID:                   service.ID,
		Name:                 service.Name,
		Description:          service.Description,
		IsActive:             service.IsActive,
		EstimatedServiceTime: service.EstimatedServiceTime,
		TotalServed:          service.TotalServed,
		CreatedAt:            service.CreatedAt,
		UpdatedAt:            service.UpdatedAt,
	}
	if includeQR {
		resp.QRCode = service.QRCode
		resp.QRCodeURL = service.QRCodeURL
	}
	return resp
}

// ListServices handles GET /api/v1/services
func (h *ServiceHandler) ListServices(w http.ResponseWriter, r *http.Request) {
	services, err := h.catalog.ListServices(r.Context())
	if err != nil {
		HandleError(w, r, h.logger, err)
		return
	}

	responses := make([]ServiceResponse, len(services))
	for i, service := range services {
		responses[i] = toServiceResponse(service, false)
	}
	WriteList(w, responses)
}

// GetService handles GET /api/v1/services/{serviceID}
func (h *ServiceHandler) GetService(w http.ResponseWriter, r *http.Request) {
	serviceID, err := parseUUIDParam(r, "serviceID")
	if err != nil {
		HandleError(w, r, h.logger, err)
		return
	}

	service, err := h.catalog.GetService(r.Context(), serviceID)
	if err != nil {
		HandleError(w, r, h.logger, err)
		return
	}

	WriteSuccess(w, toServiceResponse(service, true))
}

// CreateService handles POST /api/v1/admin/services
func (h *ServiceHandler) CreateService(w http.ResponseWriter, r *http.Request) {
	req, err := validation.DecodeAndValidate[CreateServiceRequest](r)
	if err != nil {
		HandleError(w, r, h.logger, err)
		return
	}

	service, err := h.catalog.CreateService(r.Context(), domain.ServiceParams{
		Name:                 strings.TrimSpace(req.Name),
		Description:          strings.TrimSpace(req.Description),
		EstimatedServiceTime: req.EstimatedServiceTime,
	})
	if err != nil {
		HandleError(w, r, h.logger, err)
		return
	}

	WriteCreated(w, toServiceResponse(service, true))
}

// UpdateService handles PATCH /api/v1/admin/services/{serviceID}
func (h *ServiceHandler) UpdateService(w http.ResponseWriter, r *http.Request) {
	serviceID, err := parseUUIDParam(r, "serviceID")
	if err != nil {
		HandleError(w, r, h.logger, err)
		return
	}

	req, err := validation.DecodeAndValidate[UpdateServiceRequest](r)
	if err != nil {
		HandleError(w, r, h.logger, err)
		return
	}

	service, err := h.catalog.UpdateService(r.Context(), ports.UpdateServiceParams{
		ServiceID:            serviceID,
		Name:                 req.Name,
		Description:          req.Description,
		EstimatedServiceTime: req.EstimatedServiceTime,
	})
	if err != nil {
		HandleError(w, r, h.logger, err)
		return
	}

	WriteSuccess(w, toServiceResponse(service, true))
}

// DeactivateService handles DELETE /api/v1/admin/services/{serviceID}
func (h *ServiceHandler) DeactivateService(w http.ResponseWriter, r *http.Request) {
	serviceID, err := parseUUIDParam(r, "serviceID")
	if err != nil {
		HandleError(w, r, h.logger, err)
		return
	}

	if err := h.catalog.DeactivateService(r.Context(), serviceID); err != nil {
		HandleError(w, r, h.logger, err)
		return
	}

	WriteNoContent(w)
}

// StatsResponse is the admin dashboard aggregate for one service.
type StatsResponse struct {
	ServiceName        string         `json:"serviceName"`
	StatusCounts       map[string]int `json:"statusCounts"`
	AverageWaitMinutes float64        `json:"averageWaitMinutes"`
	TotalServed        int            `json:"totalServed"`
}

// GetStats handles GET /api/v1/admin/services/{serviceID}/stats
func (h *ServiceHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	serviceID, err := parseUUIDParam(r, "serviceID")
	if err != nil {
		HandleError(w, r, h.logger, err)
		return
	}

	stats, err := h.catalog.GetServiceStats(r.Context(), serviceID)
	if err != nil {
		HandleError(w, r, h.logger, err)
		return
	}

	counts := make(map[string]int, len(stats.StatusCounts))
	for status, count := range stats.StatusCounts {
		counts[string(status)] = count
	}
	WriteSuccess(w, StatsResponse{
		ServiceName:        stats.ServiceName,
		StatusCounts:       counts,
		AverageWaitMinutes: stats.AverageWaitMinutes,
		TotalServed:        stats.TotalServed,
	})
}
