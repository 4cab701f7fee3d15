package domain

type Restaurant struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Timezone  string            `json:"timezone,omitempty"`
	AutoReply AutoReplySettings `json:"auto_reply"`
	CreatedAt string            `json:"created_at" format:"date-time"`
	UpdatedAt string            `json:"updated_at" format:"date-time"`
}

// AutoReplySettings is a sub-resource of Restaurant, mutated only through the
// settings use-cases.
type AutoReplySettings struct {
	ReviewsEnabled bool      `json:"reviews_enabled"`
	TicketsEnabled bool      `json:"tickets_enabled"`
	Mode           ReplyMode `json:"mode" enum:"template,ai"`
	TemplateText   string    `json:"template_text,omitempty"`
}

type Action struct {
	ID            string       `json:"id"`
	RestaurantID  string       `json:"restaurant_id"`
	ReportID      *string      `json:"report_id,omitempty"`
	WeekStart     *string      `json:"week_start,omitempty" format:"date"`
	Title         string       `json:"title"`
	Type          string       `json:"type"`
	Target        string       `json:"target,omitempty"`
	Status        ActionStatus `json:"status" enum:"planned,done,discarded"`
	Evidence      *string      `json:"evidence,omitempty"`
	DiscardReason *string      `json:"discard_reason,omitempty"`
	DoneBy        *string      `json:"done_by,omitempty"`
	DoneAt        *string      `json:"done_at,omitempty" format:"date-time"`
	DiscardedBy   *string      `json:"discarded_by,omitempty"`
	DiscardedAt   *string      `json:"discarded_at,omitempty" format:"date-time"`
	CreatedAt     string       `json:"created_at" format:"date-time"`
	UpdatedAt     string       `json:"updated_at" format:"date-time"`
}

type Report struct {
	ID            string       `json:"id"`
	RestaurantID  string       `json:"restaurant_id"`
	WeekStart     string       `json:"week_start" format:"date"`
	Status        ReportStatus `json:"status" enum:"generating,generated,sending,sent,failed"`
	ArtifactURL   *string      `json:"artifact_url,omitempty"`
	ContentHash   *string      `json:"content_hash,omitempty"`
	Channel       *string      `json:"channel,omitempty"`
	FailureReason *string      `json:"failure_reason,omitempty"`
	SentAt        *string      `json:"sent_at,omitempty" format:"date-time"`
	CreatedAt     string       `json:"created_at" format:"date-time"`
	UpdatedAt     string       `json:"updated_at" format:"date-time"`
}

type ImageJob struct {
	ID            string         `json:"id"`
	RestaurantID  string         `json:"restaurant_id"`
	CatalogItemID string         `json:"catalog_item_id"`
	Mode          ImageMode      `json:"mode" enum:"improve_existing,from_description,from_image,direct_upload"`
	Prompt        string         `json:"prompt,omitempty"`
	SourceURL     *string        `json:"source_url,omitempty"`
	CandidateURL  *string        `json:"candidate_url,omitempty"`
	Status        ImageJobStatus `json:"status" enum:"generating,ready_for_approval,approved,rejected,applied_to_catalog,failed,archived"`
	Attempts      int            `json:"attempts"`
	RejectionNote *string        `json:"rejection_note,omitempty"`
	FailureReason *string        `json:"failure_reason,omitempty"`
	ApprovedBy    *string        `json:"approved_by,omitempty"`
	ApprovedAt    *string        `json:"approved_at,omitempty" format:"date-time"`
	AppliedAt     *string        `json:"applied_at,omitempty" format:"date-time"`
	CreatedAt     string         `json:"created_at" format:"date-time"`
	UpdatedAt     string         `json:"updated_at" format:"date-time"`
}

type CatalogItem struct {
	ID           string  `json:"id"`
	RestaurantID string  `json:"restaurant_id"`
	Name         string  `json:"name"`
	ImageURL     *string `json:"image_url,omitempty"`
	UpdatedAt    string  `json:"updated_at" format:"date-time"`
}

type Ticket struct {
	ID           string       `json:"id"`
	RestaurantID string       `json:"restaurant_id"`
	CustomerName string       `json:"customer_name,omitempty"`
	Subject      string       `json:"subject"`
	Status       TicketStatus `json:"status" enum:"open,in_progress,resolved,closed"`
	ResolvedAt   *string      `json:"resolved_at,omitempty" format:"date-time"`
	ClosedAt     *string      `json:"closed_at,omitempty" format:"date-time"`
	CreatedAt    string       `json:"created_at" format:"date-time"`
	UpdatedAt    string       `json:"updated_at" format:"date-time"`
}

type TicketMessage struct {
	ID         string `json:"id"`
	TicketID   string `json:"ticket_id"`
	AuthorKind string `json:"author_kind" enum:"operator,customer,auto"`
	Body       string `json:"body"`
	CreatedAt  string `json:"created_at" format:"date-time"`
}

type Review struct {
	ID           string  `json:"id"`
	RestaurantID string  `json:"restaurant_id"`
	Author       string  `json:"author,omitempty"`
	Rating       int     `json:"rating" minimum:"1" maximum:"5"`
	Text         string  `json:"text,omitempty"`
	ReplyText    *string `json:"reply_text,omitempty"`
	RepliedBy    *string `json:"replied_by,omitempty"`
	RepliedAt    *string `json:"replied_at,omitempty" format:"date-time"`
	CreatedAt    string  `json:"created_at" format:"date-time"`
}

// Snapshot is one week of funnel metrics for a restaurant.
type Snapshot struct {
	ID           string `json:"id"`
	RestaurantID string `json:"restaurant_id"`
	WeekStart    string `json:"week_start" format:"date"`
	Impressions  int64  `json:"impressions"`
	MenuViews    int64  `json:"menu_views"`
	Orders       int64  `json:"orders"`
	RevenueCents int64  `json:"revenue_cents"`
	CreatedAt    string `json:"created_at" format:"date-time"`
}

// StepDelta compares one funnel step between two snapshots.
type StepDelta struct {
	Step       string  `json:"step"`
	Current    int64   `json:"current"`
	Previous   int64   `json:"previous"`
	Absolute   int64   `json:"absolute"`
	Percentage float64 `json:"percentage"`
}

type PerformanceAlert struct {
	Code    string `json:"code"`
	Step    string `json:"step,omitempty"`
	Message string `json:"message"`
}

// PerformanceData is derived, never persisted.
type PerformanceData struct {
	RestaurantID string             `json:"restaurant_id"`
	Latest       Snapshot           `json:"latest"`
	Previous     *Snapshot          `json:"previous,omitempty"`
	Steps        []StepDelta        `json:"steps"`
	Alerts       []PerformanceAlert `json:"alerts,omitempty"`
}

// Export is a formatted financial export blob produced by the repository.
type Export struct {
	RestaurantID string `json:"restaurant_id"`
	StartDate    string `json:"start_date" format:"date"`
	EndDate      string `json:"end_date" format:"date"`
	Format       string `json:"format" enum:"csv,json"`
	Data         []byte `json:"data"`
}

type Event struct {
	ID           int64  `json:"id"`
	TS           string `json:"ts" format:"date-time"`
	Type         string `json:"type"`
	RestaurantID string `json:"restaurant_id,omitempty"`
	EntityKind   string `json:"entity_kind"`
	EntityID     string `json:"entity_id,omitempty"`
	ActorID      string `json:"actor_id"`
	Payload      string `json:"payload_json"`
}

type APIKey struct {
	ID        string `json:"id"`
	ActorID   string `json:"actor_id"`
	Name      string `json:"name,omitempty"`
	KeyHash   string `json:"key_hash"`
	CreatedAt string `json:"created_at" format:"date-time"`
}
