package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lorrc/queue-backend/internal/core/domain"
	apperrors "github.com/lorrc/queue-backend/internal/core/errors"
	"github.com/lorrc/queue-backend/internal/core/ports"
	"github.com/lorrc/queue-backend/internal/core/utils"
)

// ServiceRepository implements ports.ServiceRepository on pgx.
type ServiceRepository struct {
	pool *pgxpool.Pool
}

var _ ports.ServiceRepository = (*ServiceRepository)(nil)

func NewServiceRepository(pool *pgxpool.Pool) *ServiceRepository {
	return &ServiceRepository{pool: pool}
}

const serviceColumns = `id, name, description, is_active, estimated_service_time,
	qr_code, qr_code_url, total_served, created_at, updated_at`

func (r *ServiceRepository) Create(ctx context.Context, service *domain.Service) (*domain.Service, error) {
	const query = `
		INSERT INTO services (id, name, description, is_active,
			estimated_service_time, qr_code, qr_code_url, total_served, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, query,
		service.ID, service.Name, utils.ToText(service.Description),
		service.IsActive, service.EstimatedServiceTime,
		utils.ToText(service.QRCode), utils.ToText(service.QRCodeURL),
		service.TotalServed, service.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting service: %w", err)
	}
	return service, nil
}

func (r *ServiceRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE id = $1`

	service, err := scanService(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrServiceNotFound
		}
		return nil, fmt.Errorf("fetching service: %w", err)
	}
	return service, nil
}

func (r *ServiceRepository) ListActive(ctx context.Context) ([]*domain.Service, error) {
	query := `SELECT ` + serviceColumns + ` FROM services WHERE is_active ORDER BY created_at ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing services: %w", err)
	}
	defer rows.Close()

	var services []*domain.Service
	for rows.Next() {
		service, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning service: %w", err)
		}
		services = append(services, service)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating services: %w", err)
	}
	return services, nil
}

func (r *ServiceRepository) Update(ctx context.Context, service *domain.Service) (*domain.Service, error) {
	const query = `
		UPDATE services
		SET name = $2, description = $3, is_active = $4,
			estimated_service_time = $5, updated_at = $6
		WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query,
		service.ID, service.Name, utils.ToText(service.Description),
		service.IsActive, service.EstimatedServiceTime,
		utils.ToTimestamptz(service.UpdatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("updating service: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, apperrors.ErrServiceNotFound
	}
	return service, nil
}

func (r *ServiceRepository) IncrementTotalServed(ctx context.Context, id uuid.UUID) error {
	const query = `UPDATE services SET total_served = total_served + 1 WHERE id = $1`

	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("incrementing total served: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrServiceNotFound
	}
	return nil
}

func scanService(row pgx.Row) (*domain.Service, error) {
	var (
		service             domain.Service
		description         pgtype.Text
		qrCode, qrCodeURL   pgtype.Text
		updatedAt           pgtype.Timestamptz
	)

	err := row.Scan(
		&service.ID, &service.Name, &description, &service.IsActive,
		&service.EstimatedServiceTime, &qrCode, &qrCodeURL,
		&service.TotalServed, &service.CreatedAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	service.Description = utils.FromText(description)
	service.QRCode = utils.FromText(qrCode)
	service.QRCodeURL = utils.FromText(qrCodeURL)
	service.UpdatedAt = utils.FromTimestamptz(updatedAt)

	return &service, nil
}
