package domain

// Query criteria accepted by the repository contracts.

type ActionFilters struct {
	Status   ActionStatus
	ReportID string
}

type ReportFilters struct {
	Status ReportStatus
}

type ImageJobFilters struct {
	Status ImageJobStatus
	Mode   ImageMode
}

type TicketFilters struct {
	Status TicketStatus
}
