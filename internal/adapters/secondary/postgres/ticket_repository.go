package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lorrc/queue-backend/internal/core/domain"
	apperrors "github.com/lorrc/queue-backend/internal/core/errors"
	"github.com/lorrc/queue-backend/internal/core/ports"
	"github.com/lorrc/queue-backend/internal/core/utils"
)

// uniqueViolation is the Postgres error code for unique constraint breaches.
const uniqueViolation = "23505"

// TicketRepository implements ports.TicketRepository on pgx.
type TicketRepository struct {
	pool *pgxpool.Pool
}

var _ ports.TicketRepository = (*TicketRepository)(nil)

func NewTicketRepository(pool *pgxpool.Pool) *TicketRepository {
	return &TicketRepository{pool: pool}
}

const ticketColumns = `id, service_id, day_bucket, ticket_number, customer_name,
	customer_phone, priority, status, joined_at, called_at, served_at,
	completed_at, notes`

// NextTicketNumber bumps the per-scope counter in a single upsert. The row
// lock taken by the statement serializes concurrent allocations for the same
// scope, so two callers never see the same number.
func (r *TicketRepository) NextTicketNumber(ctx context.Context, scope domain.ScopeKey) (int, error) {
	const query = `
		INSERT INTO ticket_sequences (service_id, day_bucket, next_number)
		VALUES ($1, $2, 1)
		ON CONFLICT (service_id, day_bucket)
		DO UPDATE SET next_number = ticket_sequences.next_number + 1
		RETURNING next_number`

	var number int
	err := r.pool.QueryRow(ctx, query, scope.ServiceID, scope.DayBucket).Scan(&number)
	if err != nil {
		return 0, fmt.Errorf("allocating ticket number: %w", err)
	}
	return number, nil
}

func (r *TicketRepository) Insert(ctx context.Context, ticket *domain.Ticket) (*domain.Ticket, error) {
	const query = `
		INSERT INTO tickets (id, service_id, day_bucket, ticket_number,
			customer_name, customer_phone, priority, status, joined_at, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.pool.Exec(ctx, query,
		ticket.ID, ticket.ServiceID, ticket.DayBucket, ticket.TicketNumber,
		utils.ToText(ticket.CustomerName), utils.ToText(ticket.CustomerPhone),
		string(ticket.Priority), string(ticket.Status), ticket.JoinedAt,
		utils.ToText(ticket.Notes),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, apperrors.ErrAllocationConflict
		}
		return nil, fmt.Errorf("inserting ticket: %w", err)
	}
	return ticket, nil
}

func (r *TicketRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = $1`

	ticket, err := scanTicket(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTicketNotFound
		}
		return nil, fmt.Errorf("fetching ticket: %w", err)
	}
	return ticket, nil
}

func (r *TicketRepository) FindWaiting(ctx context.Context, scope domain.ScopeKey) ([]*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + `
		FROM tickets
		WHERE service_id = $1 AND day_bucket = $2 AND status = 'waiting'
		ORDER BY joined_at ASC, ticket_number ASC`

	rows, err := r.pool.Query(ctx, query, scope.ServiceID, scope.DayBucket)
	if err != nil {
		return nil, fmt.Errorf("listing waiting tickets: %w", err)
	}
	defer rows.Close()

	return scanTickets(rows)
}

func (r *TicketRepository) FindByStatus(ctx context.Context, scope domain.ScopeKey, statuses []domain.TicketStatus) ([]*domain.Ticket, error) {
	filter := make([]string, len(statuses))
	for i, status := range statuses {
		filter[i] = string(status)
	}

	query := `SELECT ` + ticketColumns + `
		FROM tickets
		WHERE service_id = $1 AND day_bucket = $2 AND status = ANY($3)
		ORDER BY
			CASE priority WHEN 'urgent' THEN 2 WHEN 'priority' THEN 1 ELSE 0 END DESC,
			joined_at ASC,
			ticket_number ASC`

	rows, err := r.pool.Query(ctx, query, scope.ServiceID, scope.DayBucket, filter)
	if err != nil {
		return nil, fmt.Errorf("listing tickets by status: %w", err)
	}
	defer rows.Close()

	return scanTickets(rows)
}

// Update writes the ticket only while its stored status still matches from.
// The status predicate makes the read-modify-write safe against a concurrent
// admin request that committed first.
func (r *TicketRepository) Update(ctx context.Context, ticket *domain.Ticket, from domain.TicketStatus) (*domain.Ticket, error) {
	const query = `
		UPDATE tickets
		SET status = $2, called_at = $3, served_at = $4, completed_at = $5, notes = $6
		WHERE id = $1 AND status = $7`

	tag, err := r.pool.Exec(ctx, query,
		ticket.ID, string(ticket.Status),
		utils.ToTimestamptz(ticket.CalledAt),
		utils.ToTimestamptz(ticket.ServedAt),
		utils.ToTimestamptz(ticket.CompletedAt),
		utils.ToText(ticket.Notes),
		string(from),
	)
	if err != nil {
		return nil, fmt.Errorf("updating ticket: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Zero rows means the ticket is gone or another writer changed
		// its status after we read it.
		if _, err := r.GetByID(ctx, ticket.ID); err != nil {
			return nil, err
		}
		return nil, apperrors.ErrInvalidStatusTransition
	}
	return ticket, nil
}

func (r *TicketRepository) CountActive(ctx context.Context, serviceID uuid.UUID) (int, error) {
	const query = `
		SELECT COUNT(*) FROM tickets
		WHERE service_id = $1 AND status IN ('waiting', 'called', 'serving')`

	var count int
	if err := r.pool.QueryRow(ctx, query, serviceID).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting active tickets: %w", err)
	}
	return count, nil
}

func (r *TicketRepository) StatsByService(ctx context.Context, serviceID uuid.UUID) (*domain.ServiceStats, error) {
	const countsQuery = `
		SELECT status, COUNT(*) FROM tickets
		WHERE service_id = $1
		GROUP BY status`

	rows, err := r.pool.Query(ctx, countsQuery, serviceID)
	if err != nil {
		return nil, fmt.Errorf("aggregating ticket counts: %w", err)
	}
	defer rows.Close()

	stats := &domain.ServiceStats{StatusCounts: make(map[domain.TicketStatus]int)}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scanning ticket counts: %w", err)
		}
		stats.StatusCounts[domain.TicketStatus(status)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("aggregating ticket counts: %w", err)
	}

	const waitQuery = `
		SELECT COALESCE(AVG(EXTRACT(EPOCH FROM (served_at - joined_at)) / 60), 0)
		FROM tickets
		WHERE service_id = $1 AND status = 'completed' AND served_at IS NOT NULL`

	if err := r.pool.QueryRow(ctx, waitQuery, serviceID).Scan(&stats.AverageWaitMinutes); err != nil {
		return nil, fmt.Errorf("aggregating wait times: %w", err)
	}

	return stats, nil
}

// scanTicket reads one ticket row in ticketColumns order.
func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var (
		ticket                          domain.Ticket
		customerName, customerPhone     pgtype.Text
		priority, status                string
		calledAt, servedAt, completedAt pgtype.Timestamptz
		notes                           pgtype.Text
	)

	err := row.Scan(
		&ticket.ID, &ticket.ServiceID, &ticket.DayBucket, &ticket.TicketNumber,
		&customerName, &customerPhone, &priority, &status, &ticket.JoinedAt,
		&calledAt, &servedAt, &completedAt, &notes,
	)
	if err != nil {
		return nil, err
	}

	ticket.CustomerName = utils.FromText(customerName)
	ticket.CustomerPhone = utils.FromText(customerPhone)
	ticket.Priority = domain.TicketPriority(priority)
	ticket.Status = domain.TicketStatus(status)
	ticket.CalledAt = utils.FromTimestamptz(calledAt)
	ticket.ServedAt = utils.FromTimestamptz(servedAt)
	ticket.CompletedAt = utils.FromTimestamptz(completedAt)
	ticket.Notes = utils.FromText(notes)

	return &ticket, nil
}

func scanTickets(rows pgx.Rows) ([]*domain.Ticket, error) {
	var tickets []*domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning ticket: %w", err)
		}
		tickets = append(tickets, ticket)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tickets: %w", err)
	}
	return tickets, nil
}
