package domain

// ActionStatus is the lifecycle state of a remediation action.
type ActionStatus string

const (
	ActionPlanned   ActionStatus = "planned"
	ActionDone      ActionStatus = "done"
	ActionDiscarded ActionStatus = "discarded"
)

// ReportStatus is the lifecycle state of a weekly report.
type ReportStatus string

const (
	ReportGenerating ReportStatus = "generating"
	ReportGenerated  ReportStatus = "generated"
	ReportSending    ReportStatus = "sending"
	ReportSent       ReportStatus = "sent"
	ReportFailed     ReportStatus = "failed"
)

// ImageJobStatus is the lifecycle state of a catalog image job.
type ImageJobStatus string

const (
	ImageGenerating       ImageJobStatus = "generating"
	ImageReadyForApproval ImageJobStatus = "ready_for_approval"
	ImageApproved         ImageJobStatus = "approved"
	ImageRejected         ImageJobStatus = "rejected"
	ImageAppliedToCatalog ImageJobStatus = "applied_to_catalog"
	ImageFailed           ImageJobStatus = "failed"
	ImageArchived         ImageJobStatus = "archived"
)

// ImageMode selects how a candidate image is produced. improve_existing and
// from_description complete out-of-band; from_image and direct_upload complete
// within the creating call.
type ImageMode string

const (
	ModeImproveExisting ImageMode = "improve_existing"
	ModeFromDescription ImageMode = "from_description"
	ModeFromImage       ImageMode = "from_image"
	ModeDirectUpload    ImageMode = "direct_upload"
)

// TicketStatus is the lifecycle state of a support ticket.
type TicketStatus string

const (
	TicketOpen       TicketStatus = "open"
	TicketInProgress TicketStatus = "in_progress"
	TicketResolved   TicketStatus = "resolved"
	TicketClosed     TicketStatus = "closed"
)

// ReplyMode selects how auto-replies are composed.
type ReplyMode string

const (
	ReplyModeTemplate ReplyMode = "template"
	ReplyModeAI       ReplyMode = "ai"
)
