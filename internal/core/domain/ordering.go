package domain

import "sort"

// Outranks reports whether ticket a sorts strictly before ticket b under the
// queue ordering key: priority tier rank descending, then arrival time
// ascending (FIFO within a tier), then ticket number ascending as a
// deterministic tie-break for identical timestamps.
func Outranks(a, b *Ticket) bool {
	if a.Priority.Rank() != b.Priority.Rank() {
		return a.Priority.Rank() > b.Priority.Rank()
	}
	if !a.JoinedAt.Equal(b.JoinedAt) {
		return a.JoinedAt.Before(b.JoinedAt)
	}
	return a.TicketNumber < b.TicketNumber
}

// Position returns the 1-based rank of the ticket among the given waiting
// set: 1 + the count of other waiting tickets that outrank it. The waiting
// set is the current snapshot for the ticket's service scope; positions are
// recomputed on demand rather than maintained incrementally, which costs
// O(n) per query but is always consistent with the latest state. Queues are
// expected to hold tens of tickets, not millions.
func Position(ticket *Ticket, waiting []*Ticket) int {
	position := 1
	for _, other := range waiting {
		if other.ID == ticket.ID {
			continue
		}
		if Outranks(other, ticket) {
			position++
		}
	}
	return position
}

// SortByOrder sorts tickets in place by the queue ordering key, front of the
// queue first.
func SortByOrder(tickets []*Ticket) {
	sort.SliceStable(tickets, func(i, j int) bool {
		return Outranks(tickets[i], tickets[j])
	})
}

// NextInQueue returns the waiting ticket with the lowest ordering key, or nil
// when the waiting set is empty. Used by call-next selection.
func NextInQueue(waiting []*Ticket) *Ticket {
	var next *Ticket
	for _, ticket := range waiting {
		if ticket.Status != StatusWaiting {
			continue
		}
		if next == nil || Outranks(ticket, next) {
			next = ticket
		}
	}
	return next
}
