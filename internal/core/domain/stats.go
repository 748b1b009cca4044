package domain

// ServiceStats aggregates queue history for one service.
type ServiceStats struct {
	ServiceName string

	// StatusCounts maps each status to the number of tickets ever in it.
	StatusCounts map[TicketStatus]int

	// AverageWaitMinutes is the mean joined-to-served time of completed
	// tickets. Zero when nothing has been completed yet.
	AverageWaitMinutes float64

	TotalServed int
}
