// Package sms notifies customers over text message when their ticket is
// called.
package sms

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lorrc/queue-backend/internal/core/domain"
	"github.com/lorrc/queue-backend/internal/core/ports"
)

// LogNotifier is the development implementation of ports.CustomerNotifier: it
// writes the message to the log instead of an SMS gateway. Swap in a real
// gateway client behind the same port for production.
type LogNotifier struct {
	logger *slog.Logger
}

var _ ports.CustomerNotifier = (*LogNotifier)(nil)

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) NotifyCalled(ctx context.Context, ticket *domain.Ticket, serviceName string) error {
	message := fmt.Sprintf("Ticket #%d: it is your turn at %s. Please proceed to the counter.",
		ticket.TicketNumber, serviceName)

	n.logger.InfoContext(ctx, "sms notification",
		"to", ticket.CustomerPhone,
		"ticket_id", ticket.ID,
		"message", message,
	)
	return nil
}
