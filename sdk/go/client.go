package bistroboardsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is a minimal Bistroboard HTTP API client.
type Client struct {
	BaseURL      string
	RestaurantID string
	APIKey       string
	BearerToken  string
	HTTPClient   *http.Client
	Timeout      time.Duration
}

// New creates a client with sane defaults.
func New(baseURL, restaurantID string) *Client {
	return &Client{
		BaseURL:      baseURL,
		RestaurantID: restaurantID,
		Timeout:      10 * time.Second,
	}
}

// ImageJob represents the API image job model (partial).
type ImageJob struct {
	ID            string  `json:"id"`
	RestaurantID  string  `json:"restaurant_id"`
	CatalogItemID string  `json:"catalog_item_id"`
	Mode          string  `json:"mode"`
	Status        string  `json:"status"`
	Attempts      int     `json:"attempts"`
	CandidateURL  *string `json:"candidate_url,omitempty"`
	FailureReason *string `json:"failure_reason,omitempty"`
}

// Report represents the API report model (partial).
type Report struct {
	ID          string  `json:"id"`
	WeekStart   string  `json:"week_start"`
	Status      string  `json:"status"`
	ArtifactURL *string `json:"artifact_url,omitempty"`
	Channel     *string `json:"channel,omitempty"`
	SentAt      *string `json:"sent_at,omitempty"`
}

// Action represents a recommended operator action (partial).
type Action struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Type      string  `json:"type"`
	Status    string  `json:"status"`
	WeekStart *string `json:"week_start,omitempty"`
}

// Ticket represents a support ticket (partial).
type Ticket struct {
	ID           string `json:"id"`
	CustomerName string `json:"customer_name"`
	Subject      string `json:"subject"`
	Status       string `json:"status"`
}

// Review represents a customer review (partial).
type Review struct {
	ID        string  `json:"id"`
	Author    string  `json:"author"`
	Rating    int     `json:"rating"`
	Text      string  `json:"text"`
	ReplyText *string `json:"reply_text,omitempty"`
	RepliedBy *string `json:"replied_by,omitempty"`
}

// StepDelta compares one funnel step between two weeks.
type StepDelta struct {
	Step       string  `json:"step"`
	Current    int64   `json:"current"`
	Previous   int64   `json:"previous"`
	Absolute   int64   `json:"absolute"`
	Percentage float64 `json:"percentage"`
}

// Performance is the weekly comparison payload.
type Performance struct {
	RestaurantID string      `json:"restaurant_id"`
	Steps        []StepDelta `json:"steps"`
	Alerts       []struct {
		Code    string `json:"code"`
		Step    string `json:"step,omitempty"`
		Message string `json:"message"`
	} `json:"alerts,omitempty"`
}

// Event represents a log entry.
type Event struct {
	ID         int64  `json:"id"`
	TS         string `json:"ts"`
	Type       string `json:"type"`
	EntityKind string `json:"entity_kind"`
	EntityID   string `json:"entity_id"`
	ActorID    string `json:"actor_id"`
}

// APIError carries the error envelope from non-2xx responses.
type APIError struct {
	StatusCode int
	Kind       string `json:"kind"`
	Code       string `json:"code,omitempty"`
	Field      string `json:"field,omitempty"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error: status=%d %s (%s)", e.StatusCode, e.Message, e.Code)
	}
	return fmt.Sprintf("api error: status=%d %s", e.StatusCode, e.Message)
}

// GenerateImage starts an image job for a catalog item.
func (c *Client) GenerateImage(ctx context.Context, catalogItemID, mode, prompt, sourceURL string) (ImageJob, error) {
	body := map[string]any{
		"catalog_item_id": catalogItemID,
		"mode":            mode,
		"prompt":          prompt,
		"source_url":      sourceURL,
	}
	var resp ImageJob
	err := c.do(ctx, http.MethodPost, c.restaurantPath("images"), body, &resp)
	return resp, err
}

// GetImageJob fetches an image job by id.
func (c *Client) GetImageJob(ctx context.Context, id string) (ImageJob, error) {
	var resp ImageJob
	err := c.do(ctx, http.MethodGet, "v0/images/"+url.PathEscape(id), nil, &resp)
	return resp, err
}

// ApproveImage approves the candidate image.
func (c *Client) ApproveImage(ctx context.Context, id string) (ImageJob, error) {
	return c.imageAction(ctx, id, "approve", nil)
}

// RejectImage rejects the candidate with an optional note.
func (c *Client) RejectImage(ctx context.Context, id, note string) (ImageJob, error) {
	return c.imageAction(ctx, id, "reject", map[string]any{"note": note})
}

// ApplyImage applies the approved candidate to the catalog.
func (c *Client) ApplyImage(ctx context.Context, id string) (ImageJob, error) {
	return c.imageAction(ctx, id, "apply", nil)
}

// RetryImage retries a failed generation.
func (c *Client) RetryImage(ctx context.Context, id string) (ImageJob, error) {
	return c.imageAction(ctx, id, "retry", nil)
}

// ArchiveImage archives a finished job.
func (c *Client) ArchiveImage(ctx context.Context, id string) (ImageJob, error) {
	return c.imageAction(ctx, id, "archive", nil)
}

func (c *Client) imageAction(ctx context.Context, id, action string, body any) (ImageJob, error) {
	var resp ImageJob
	endpoint := fmt.Sprintf("v0/images/%s/%s", url.PathEscape(id), action)
	err := c.do(ctx, http.MethodPost, endpoint, body, &resp)
	return resp, err
}

// GenerateReport opens the weekly report for the given week start date.
func (c *Client) GenerateReport(ctx context.Context, weekStart string) (Report, error) {
	var resp Report
	err := c.do(ctx, http.MethodPost, c.restaurantPath("reports"), map[string]any{"week_start": weekStart}, &resp)
	return resp, err
}

// SendReport queues a generated report for delivery.
func (c *Client) SendReport(ctx context.Context, id, channel string) (Report, error) {
	var resp Report
	endpoint := fmt.Sprintf("v0/reports/%s/send", url.PathEscape(id))
	err := c.do(ctx, http.MethodPost, endpoint, map[string]any{"channel": channel}, &resp)
	return resp, err
}

// ListReports lists reports, optionally filtered by status.
func (c *Client) ListReports(ctx context.Context, status string) ([]Report, error) {
	endpoint := c.restaurantPath("reports")
	if status != "" {
		endpoint += "?status=" + url.QueryEscape(status)
	}
	var resp []Report
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp, err
}

// CreateAction records a recommended action.
func (c *Client) CreateAction(ctx context.Context, title, actionType string) (Action, error) {
	var resp Action
	err := c.do(ctx, http.MethodPost, c.restaurantPath("actions"), map[string]any{
		"title": title,
		"type":  actionType,
	}, &resp)
	return resp, err
}

// MarkActionDone completes an action. Evidence is required.
func (c *Client) MarkActionDone(ctx context.Context, id, evidence string) (Action, error) {
	var resp Action
	endpoint := fmt.Sprintf("v0/actions/%s/done", url.PathEscape(id))
	err := c.do(ctx, http.MethodPost, endpoint, map[string]any{"evidence": evidence}, &resp)
	return resp, err
}

// DiscardAction discards an action; a reason is required.
func (c *Client) DiscardAction(ctx context.Context, id, reason string) (Action, error) {
	var resp Action
	endpoint := fmt.Sprintf("v0/actions/%s/discard", url.PathEscape(id))
	err := c.do(ctx, http.MethodPost, endpoint, map[string]any{"reason": reason}, &resp)
	return resp, err
}

// ListTickets lists tickets, optionally filtered by status.
func (c *Client) ListTickets(ctx context.Context, status string) ([]Ticket, error) {
	endpoint := c.restaurantPath("tickets")
	if status != "" {
		endpoint += "?status=" + url.QueryEscape(status)
	}
	var resp []Ticket
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp, err
}

// ReplyToTicket sends an operator reply.
func (c *Client) ReplyToTicket(ctx context.Context, id, body string) (Ticket, error) {
	var resp Ticket
	endpoint := fmt.Sprintf("v0/tickets/%s/reply", url.PathEscape(id))
	err := c.do(ctx, http.MethodPost, endpoint, map[string]any{"body": body}, &resp)
	return resp, err
}

// ResolveTicket resolves a ticket.
func (c *Client) ResolveTicket(ctx context.Context, id string) (Ticket, error) {
	var resp Ticket
	endpoint := fmt.Sprintf("v0/tickets/%s/resolve", url.PathEscape(id))
	err := c.do(ctx, http.MethodPost, endpoint, nil, &resp)
	return resp, err
}

// CloseTicket closes a resolved ticket.
func (c *Client) CloseTicket(ctx context.Context, id string) (Ticket, error) {
	var resp Ticket
	endpoint := fmt.Sprintf("v0/tickets/%s/close", url.PathEscape(id))
	err := c.do(ctx, http.MethodPost, endpoint, nil, &resp)
	return resp, err
}

// ListReviews lists reviews; unansweredOnly limits to those without a reply.
func (c *Client) ListReviews(ctx context.Context, unansweredOnly bool) ([]Review, error) {
	endpoint := c.restaurantPath("reviews")
	if unansweredOnly {
		endpoint += "?unanswered=true"
	}
	var resp []Review
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp, err
}

// ReplyToReview replies to a review.
func (c *Client) ReplyToReview(ctx context.Context, id, text string) (Review, error) {
	var resp Review
	endpoint := fmt.Sprintf("v0/reviews/%s/reply", url.PathEscape(id))
	err := c.do(ctx, http.MethodPost, endpoint, map[string]any{"text": text}, &resp)
	return resp, err
}

// AutoReplyToReview sends the configured template reply.
func (c *Client) AutoReplyToReview(ctx context.Context, id string) (Review, error) {
	var resp Review
	endpoint := fmt.Sprintf("v0/reviews/%s/auto-reply", url.PathEscape(id))
	err := c.do(ctx, http.MethodPost, endpoint, nil, &resp)
	return resp, err
}

// Performance returns the latest-vs-previous week comparison.
func (c *Client) Performance(ctx context.Context) (Performance, error) {
	var resp Performance
	err := c.do(ctx, http.MethodGet, c.restaurantPath("performance"), nil, &resp)
	return resp, err
}

// ExportFinancials downloads the financial export for a date window.
func (c *Client) ExportFinancials(ctx context.Context, startDate, endDate, format string) ([]byte, error) {
	endpoint := fmt.Sprintf("%s?start_date=%s&end_date=%s&format=%s",
		c.restaurantPath("export"), url.QueryEscape(startDate), url.QueryEscape(endDate), url.QueryEscape(format))
	return c.doRaw(ctx, http.MethodGet, endpoint)
}

// Events returns recent events, newest first.
func (c *Client) Events(ctx context.Context, limit int) ([]Event, error) {
	endpoint := c.restaurantPath("events")
	if limit > 0 {
		endpoint = fmt.Sprintf("%s?limit=%d", endpoint, limit)
	}
	var resp []Event
	err := c.do(ctx, http.MethodGet, endpoint, nil, &resp)
	return resp, err
}

// ToggleAutoReply flips auto-reply for "reviews" or "tickets".
func (c *Client) ToggleAutoReply(ctx context.Context, scope string, enabled bool) error {
	return c.do(ctx, http.MethodPost, c.restaurantPath("auto-reply/toggle"), map[string]any{
		"scope":   scope,
		"enabled": enabled,
	}, nil)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	data, err := c.send(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	if out != nil && len(data) > 0 {
		return json.Unmarshal(data, out)
	}
	return nil
}

func (c *Client) doRaw(ctx context.Context, method, endpoint string) ([]byte, error) {
	return c.send(ctx, method, endpoint, nil)
}

func (c *Client) send(ctx context.Context, method, endpoint string, body any) ([]byte, error) {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: c.Timeout}
	}
	target := c.base() + "/" + strings.TrimLeft(endpoint, "/")
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, target, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	switch {
	case c.BearerToken != "":
		req.Header.Set("Authorization", "Bearer "+c.BearerToken)
	case c.APIKey != "":
		req.Header.Set("X-Api-Key", c.APIKey)
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(data))}
		var envelope struct {
			Error APIError `json:"error"`
		}
		if json.Unmarshal(data, &envelope) == nil && envelope.Error.Message != "" {
			envelope.Error.StatusCode = resp.StatusCode
			apiErr = &envelope.Error
		}
		return nil, apiErr
	}
	return data, nil
}

func (c *Client) restaurantPath(p string) string {
	restaurant := url.PathEscape(c.RestaurantID)
	return fmt.Sprintf("v0/restaurants/%s/%s", restaurant, strings.TrimLeft(p, "/"))
}

func (c *Client) base() string {
	return strings.TrimRight(c.BaseURL, "/")
}
