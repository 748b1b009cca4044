package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ticketAt(number int, priority TicketPriority, joinedAt time.Time) *Ticket {
	return &Ticket{
		ID:           uuid.New(),
		ServiceID:    uuid.New(),
		TicketNumber: number,
		Priority:     priority,
		Status:       StatusWaiting,
		JoinedAt:     joinedAt,
	}
}

func TestPositionAndWaitEstimate(t *testing.T) {
	base := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)

	a := ticketAt(1, PriorityNormal, base)
	b := ticketAt(2, PriorityNormal, base.Add(time.Minute))
	c := ticketAt(3, PriorityNormal, base.Add(2*time.Minute))
	waiting := []*Ticket{a, b, c}

	service := &Service{EstimatedServiceTime: 5}

	t.Run("fifo positions", func(t *testing.T) {
		assert.Equal(t, 1, Position(a, waiting))
		assert.Equal(t, 2, Position(b, waiting))
		assert.Equal(t, 3, Position(c, waiting))
	})

	t.Run("wait is position minus one times service time", func(t *testing.T) {
		assert.Equal(t, 0, service.EstimateWait(Position(a, waiting)))
		assert.Equal(t, 5, service.EstimateWait(Position(b, waiting)))
		assert.Equal(t, 10, service.EstimateWait(Position(c, waiting)))
	})

	t.Run("urgent arrival jumps to the front", func(t *testing.T) {
		d := ticketAt(4, PriorityUrgent, base.Add(3*time.Minute))
		withUrgent := append([]*Ticket{}, waiting...)
		withUrgent = append(withUrgent, d)

		assert.Equal(t, 1, Position(d, withUrgent))
		assert.Equal(t, 2, Position(a, withUrgent))
		assert.Equal(t, 3, Position(b, withUrgent))
		assert.Equal(t, 4, Position(c, withUrgent))
	})

	t.Run("priority tier beats arrival order", func(t *testing.T) {
		p := ticketAt(5, PriorityPriority, base.Add(4*time.Minute))
		u := ticketAt(6, PriorityUrgent, base.Add(5*time.Minute))
		set := []*Ticket{a, p, u}

		assert.Equal(t, 1, Position(u, set))
		assert.Equal(t, 2, Position(p, set))
		assert.Equal(t, 3, Position(a, set))
	})
}

func TestOutranks(t *testing.T) {
	base := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)

	t.Run("ticket number breaks identical timestamps", func(t *testing.T) {
		x := ticketAt(7, PriorityNormal, base)
		y := ticketAt(8, PriorityNormal, base)

		assert.True(t, Outranks(x, y))
		assert.False(t, Outranks(y, x))
	})

	t.Run("total order is deterministic", func(t *testing.T) {
		x := ticketAt(1, PriorityNormal, base)
		y := ticketAt(2, PriorityUrgent, base.Add(time.Hour))

		assert.True(t, Outranks(y, x))
		assert.False(t, Outranks(x, y))
	})
}

func TestSortByOrderIdempotent(t *testing.T) {
	base := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	tickets := []*Ticket{
		ticketAt(3, PriorityNormal, base.Add(2*time.Minute)),
		ticketAt(1, PriorityUrgent, base.Add(10*time.Minute)),
		ticketAt(2, PriorityNormal, base),
		ticketAt(4, PriorityPriority, base.Add(5*time.Minute)),
	}

	SortByOrder(tickets)
	first := make([]int, len(tickets))
	for i, ticket := range tickets {
		first[i] = ticket.TicketNumber
	}

	SortByOrder(tickets)
	for i, ticket := range tickets {
		assert.Equal(t, first[i], ticket.TicketNumber, "second sort changed the order")
	}

	assert.Equal(t, []int{1, 4, 2, 3}, first)
}

func TestNextInQueue(t *testing.T) {
	base := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)

	t.Run("empty set", func(t *testing.T) {
		assert.Nil(t, NextInQueue(nil))
		assert.Nil(t, NextInQueue([]*Ticket{}))
	})

	t.Run("skips non-waiting tickets", func(t *testing.T) {
		called := ticketAt(1, PriorityUrgent, base)
		called.Status = StatusCalled
		waiting := ticketAt(2, PriorityNormal, base.Add(time.Minute))

		next := NextInQueue([]*Ticket{called, waiting})
		require.NotNil(t, next)
		assert.Equal(t, waiting.ID, next.ID)
	})

	t.Run("picks lowest ordering key", func(t *testing.T) {
		a := ticketAt(1, PriorityNormal, base)
		b := ticketAt(2, PriorityUrgent, base.Add(time.Minute))

		next := NextInQueue([]*Ticket{a, b})
		require.NotNil(t, next)
		assert.Equal(t, b.ID, next.ID)
	})
}
