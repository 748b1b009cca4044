package domain

import (
	"time"

	"github.com/google/uuid"

	apperrors "github.com/lorrc/queue-backend/internal/core/errors"
)

// Validation limits for service fields.
const (
	MaxServiceNameLength        = 100
	MaxServiceDescriptionLength = 500

	// DefaultServiceTimeMinutes is used when no estimate is supplied.
	DefaultServiceTimeMinutes = 5
)

// Service is a queueable service: a counter, desk, or clinic room that
// customers line up for by scanning its QR code.
type Service struct {
	ID          uuid.UUID
	Name        string
	Description string
	IsActive    bool

	// EstimatedServiceTime is the average minutes spent per customer,
	// the multiplier for wait-time estimates. Always >= 1.
	EstimatedServiceTime int

	// QRCode is the base64-encoded PNG of the join URL; QRCodeURL is the
	// URL it encodes.
	QRCode    string
	QRCodeURL string

	TotalServed int
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}

// ServiceParams holds the input for creating a new service.
type ServiceParams struct {
	Name                 string
	Description          string
	EstimatedServiceTime int
}

// NewService creates a valid, active service.
func NewService(params ServiceParams) (*Service, error) {
	serviceTime := params.EstimatedServiceTime
	if serviceTime == 0 {
		serviceTime = DefaultServiceTimeMinutes
	}

	v := apperrors.NewValidationErrors()

	if params.Name == "" {
		v.Add("name", "Service name is required")
	}
	if len(params.Name) > MaxServiceNameLength {
		v.Add("name", "Service name cannot exceed 100 characters")
	}
	if len(params.Description) > MaxServiceDescriptionLength {
		v.Add("description", "Description cannot exceed 500 characters")
	}
	if serviceTime < 1 {
		v.Add("estimatedServiceTime", "Service time must be at least 1 minute")
	}

	if v.HasErrors() {
		return nil, v
	}

	return &Service{
		ID:                   uuid.New(),
		Name:                 params.Name,
		Description:          params.Description,
		IsActive:             true,
		EstimatedServiceTime: serviceTime,
		CreatedAt:            time.Now().UTC(),
	}, nil
}

// Deactivate soft-deletes the service. Services are never hard-deleted so
// ticket history stays queryable; the caller must first verify no active
// tickets remain.
func (s *Service) Deactivate() {
	s.IsActive = false
	now := time.Now().UTC()
	s.UpdatedAt = &now
}

// EstimateWait returns the approximate wait in minutes for the given 1-based
// queue position. It assumes a single active server and ignores tickets
// already called or being served, so it is an estimate, not a promise.
func (s *Service) EstimateWait(position int) int {
	if position < 1 {
		return 0
	}
	return (position - 1) * s.EstimatedServiceTime
}
