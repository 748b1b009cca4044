package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lorrc/queue-backend/internal/core/domain"
	apperrors "github.com/lorrc/queue-backend/internal/core/errors"
	"github.com/lorrc/queue-backend/internal/core/ports"
)

// qrCodeSize is the pixel width of generated QR code images.
const qrCodeSize = 256

// CatalogServiceImpl implements ports.CatalogService.
type CatalogServiceImpl struct {
	services ports.ServiceRepository
	tickets  ports.TicketRepository
	qr       ports.QRGenerator
	logger   *slog.Logger

	// frontendBaseURL is the customer-facing origin the QR codes point at,
	// e.g. https://queue.example.com.
	frontendBaseURL string
}

var _ ports.CatalogService = (*CatalogServiceImpl)(nil)

// NewCatalogService creates the service registry manager.
func NewCatalogService(
	services ports.ServiceRepository,
	tickets ports.TicketRepository,
	qr ports.QRGenerator,
	logger *slog.Logger,
	frontendBaseURL string,
) *CatalogServiceImpl {
	return &CatalogServiceImpl{
		services:        services,
		tickets:         tickets,
		qr:              qr,
		logger:          logger,
		frontendBaseURL: frontendBaseURL,
	}
}

// joinURL is the page a customer lands on after scanning the service's code.
func (s *CatalogServiceImpl) joinURL(serviceID uuid.UUID) string {
	return fmt.Sprintf("%s/queue/%s", s.frontendBaseURL, serviceID)
}

// CreateService registers a new service and renders its QR code.
func (s *CatalogServiceImpl) CreateService(ctx context.Context, params domain.ServiceParams) (*domain.Service, error) {
	service, err := domain.NewService(params)
	if err != nil {
		return nil, err
	}

	service.QRCodeURL = s.joinURL(service.ID)
	png, err := s.qr.GeneratePNG(service.QRCodeURL, qrCodeSize)
	if err != nil {
		return nil, fmt.Errorf("generating qr code: %w", err)
	}
	service.QRCode = png

	created, err := s.services.Create(ctx, service)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "service created", "service_id", created.ID, "name", created.Name)
	return created, nil
}

// GetService returns one service by ID.
func (s *CatalogServiceImpl) GetService(ctx context.Context, id uuid.UUID) (*domain.Service, error) {
	return s.services.GetByID(ctx, id)
}

// ListServices returns all active services.
func (s *CatalogServiceImpl) ListServices(ctx context.Context) ([]*domain.Service, error) {
	return s.services.ListActive(ctx)
}

// UpdateService applies a partial update. The QR code is left untouched since
// the join URL only depends on the service ID.
func (s *CatalogServiceImpl) UpdateService(ctx context.Context, params ports.UpdateServiceParams) (*domain.Service, error) {
	service, err := s.services.GetByID(ctx, params.ServiceID)
	if err != nil {
		return nil, err
	}

	v := apperrors.NewValidationErrors()
	if params.Name != nil {
		if *params.Name == "" {
			v.Add("name", "Service name is required")
		}
		if len(*params.Name) > domain.MaxServiceNameLength {
			v.Add("name", "Service name cannot exceed 100 characters")
		}
		service.Name = *params.Name
	}
	if params.Description != nil {
		if len(*params.Description) > domain.MaxServiceDescriptionLength {
			v.Add("description", "Description cannot exceed 500 characters")
		}
		service.Description = *params.Description
	}
	if params.EstimatedServiceTime != nil {
		if *params.EstimatedServiceTime < 1 {
			v.Add("estimatedServiceTime", "Service time must be at least 1 minute")
		}
		service.EstimatedServiceTime = *params.EstimatedServiceTime
	}
	if v.HasErrors() {
		return nil, v
	}

	now := time.Now().UTC()
	service.UpdatedAt = &now

	return s.services.Update(ctx, service)
}

// DeactivateService soft-deletes a service once its queue has drained.
func (s *CatalogServiceImpl) DeactivateService(ctx context.Context, id uuid.UUID) error {
	service, err := s.services.GetByID(ctx, id)
	if err != nil {
		return err
	}

	active, err := s.tickets.CountActive(ctx, id)
	if err != nil {
		return err
	}
	if active > 0 {
		return apperrors.ErrServiceHasTickets
	}

	service.Deactivate()
	if _, err := s.services.Update(ctx, service); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "service deactivated", "service_id", id)
	return nil
}

// GetServiceStats aggregates queue history for the admin dashboard.
func (s *CatalogServiceImpl) GetServiceStats(ctx context.Context, id uuid.UUID) (*domain.ServiceStats, error) {
	service, err := s.services.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	stats, err := s.tickets.StatsByService(ctx, id)
	if err != nil {
		return nil, err
	}
	stats.ServiceName = service.Name
	stats.TotalServed = service.TotalServed
	return stats, nil
}
