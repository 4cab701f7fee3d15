package server

import "bistroboard/internal/domain"

// Request payloads. Responses reuse the domain structs, which already carry
// json and schema tags.

type GenerateImageRequest struct {
	CatalogItemID string `json:"catalog_item_id"`
	Mode          string `json:"mode" enum:"improve_existing,from_description,from_image,direct_upload"`
	Prompt        string `json:"prompt,omitempty"`
	SourceURL     string `json:"source_url,omitempty"`
}

type CompleteImageRequest struct {
	CandidateURL string `json:"candidate_url"`
}

type FailureRequest struct {
	Reason string `json:"reason,omitempty"`
}

type RejectImageRequest struct {
	Note string `json:"note,omitempty"`
}

type GenerateReportRequest struct {
	WeekStart string `json:"week_start" format:"date"`
}

type CompleteReportRequest struct {
	ArtifactURL string `json:"artifact_url"`
	ContentHash string `json:"content_hash,omitempty"`
}

type SendReportRequest struct {
	Channel string `json:"channel,omitempty" enum:"email,whatsapp,webhook"`
}

type CreateActionRequest struct {
	ReportID  string `json:"report_id,omitempty"`
	WeekStart string `json:"week_start,omitempty" format:"date"`
	Title     string `json:"title" maxLength:"255"`
	Type      string `json:"type"`
	Target    string `json:"target,omitempty"`
}

type MarkActionDoneRequest struct {
	Evidence string `json:"evidence"`
}

type DiscardActionRequest struct {
	Reason string `json:"reason" maxLength:"500"`
}

type ReplyRequest struct {
	Body string `json:"body"`
}

type ReviewReplyRequest struct {
	Text string `json:"text"`
}

type ToggleAutoReplyRequest struct {
	Scope   string `json:"scope" enum:"reviews,tickets"`
	Enabled bool   `json:"enabled"`
}

type UpdateAutoReplyRequest struct {
	ReviewsEnabled bool   `json:"reviews_enabled"`
	TicketsEnabled bool   `json:"tickets_enabled"`
	Mode           string `json:"mode" enum:"template,ai"`
	TemplateText   string `json:"template_text,omitempty"`
}

func (r UpdateAutoReplyRequest) settings() domain.AutoReplySettings {
	return domain.AutoReplySettings{
		ReviewsEnabled: r.ReviewsEnabled,
		TicketsEnabled: r.TicketsEnabled,
		Mode:           domain.ReplyMode(r.Mode),
		TemplateText:   r.TemplateText,
	}
}
