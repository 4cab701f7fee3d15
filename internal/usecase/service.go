// Package usecase holds the orchestrators behind every dashboard operation.
// Each follows the same protocol: validate input, fetch the entity, consult
// the rule engine, mutate through the repository, and wrap the outcome in a
// Result. No error escapes the orchestrator boundary.
package usecase

import (
	"context"
	"fmt"
	"time"

	"bistroboard/internal/config"
	"bistroboard/internal/domain"
	"bistroboard/internal/events"
	"bistroboard/internal/outcome"
)

// Repository contracts. The sqlite adapter in internal/repo satisfies all of
// them; tests may substitute any subset.

type RestaurantRepo interface {
	GetRestaurant(ctx context.Context, id string) (domain.Restaurant, error)
	UpdateSettings(ctx context.Context, restaurantID string, s domain.AutoReplySettings) (domain.Restaurant, error)
}

type ActionRepo interface {
	GetAction(ctx context.Context, id string) (domain.Action, error)
	ListActions(ctx context.Context, restaurantID string, f domain.ActionFilters) ([]domain.Action, error)
	InsertAction(ctx context.Context, a domain.Action) error
	TransitionAction(ctx context.Context, a domain.Action, from domain.ActionStatus) (domain.Action, error)
}

type ReportRepo interface {
	GetReport(ctx context.Context, id string) (domain.Report, error)
	GetReportByWeek(ctx context.Context, restaurantID, weekStart string) (domain.Report, error)
	ListReports(ctx context.Context, restaurantID string, f domain.ReportFilters) ([]domain.Report, error)
	InsertReport(ctx context.Context, rep domain.Report) error
	TransitionReport(ctx context.Context, rep domain.Report, from domain.ReportStatus) (domain.Report, error)
}

type ImageJobRepo interface {
	GetImageJob(ctx context.Context, id string) (domain.ImageJob, error)
	ListImageJobs(ctx context.Context, restaurantID string, f domain.ImageJobFilters) ([]domain.ImageJob, error)
	InsertImageJob(ctx context.Context, j domain.ImageJob) error
	TransitionImageJob(ctx context.Context, j domain.ImageJob, from domain.ImageJobStatus) (domain.ImageJob, error)
	GetCatalogItem(ctx context.Context, id string) (domain.CatalogItem, error)
	SetCatalogImage(ctx context.Context, itemID, imageURL, updatedAt string) (domain.CatalogItem, error)
}

type TicketRepo interface {
	GetTicket(ctx context.Context, id string) (domain.Ticket, error)
	ListTickets(ctx context.Context, restaurantID string, f domain.TicketFilters) ([]domain.Ticket, error)
	TransitionTicket(ctx context.Context, t domain.Ticket, from domain.TicketStatus) (domain.Ticket, error)
	InsertTicketMessage(ctx context.Context, m domain.TicketMessage) error
	ListTicketMessages(ctx context.Context, ticketID string) ([]domain.TicketMessage, error)
}

type ReviewRepo interface {
	GetReview(ctx context.Context, id string) (domain.Review, error)
	ListReviews(ctx context.Context, restaurantID string, unansweredOnly bool) ([]domain.Review, error)
	SetReviewReply(ctx context.Context, id, replyText, repliedBy, repliedAt string) (domain.Review, error)
}

type PerformanceRepo interface {
	GetSnapshots(ctx context.Context, restaurantID string) ([]domain.Snapshot, error)
	ExportData(ctx context.Context, restaurantID, start, end, format string) ([]byte, error)
}

// Recorder appends audit events after successful mutations.
type Recorder interface {
	Record(ctx context.Context, e events.Entry) error
}

// Store aggregates every repository contract; the sqlite adapter implements it.
type Store interface {
	RestaurantRepo
	ActionRepo
	ReportRepo
	ImageJobRepo
	TicketRepo
	ReviewRepo
	PerformanceRepo
}

type Service struct {
	Restaurants RestaurantRepo
	Actions     ActionRepo
	Reports     ReportRepo
	Images      ImageJobRepo
	Tickets     TicketRepo
	Reviews     ReviewRepo
	Performance PerformanceRepo
	Events      Recorder
	Config      *config.Config
	Now         func() time.Time
}

func New(store Store, rec Recorder, cfg *config.Config) Service {
	return Service{
		Restaurants: store,
		Actions:     store,
		Reports:     store,
		Images:      store,
		Tickets:     store,
		Reviews:     store,
		Performance: store,
		Events:      rec,
		Config:      cfg,
		Now:         time.Now,
	}
}

func (s Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s Service) nowStr() string {
	return s.now().UTC().Format(time.RFC3339)
}

func (s Service) record(ctx context.Context, e events.Entry) {
	if s.Events == nil {
		return
	}
	// Audit failures never fail the operation that already committed.
	_ = s.Events.Record(ctx, e)
}

// Failure constructors keep orchestrator bodies flat.

func failValidation[T any](field, message string) outcome.Result[T] {
	return outcome.Fail[T](&outcome.ValidationError{Field: field, Message: message})
}

func failRule[T any](code, format string, args ...any) outcome.Result[T] {
	return outcome.Fail[T](&outcome.BusinessRuleError{Code: code, Message: fmt.Sprintf(format, args...)})
}

func failNotFound[T any](entity, id string) outcome.Result[T] {
	return outcome.Fail[T](&outcome.NotFoundError{Entity: entity, ID: id})
}

// wrapRepoErr converts adapter errors to taxonomy kinds: missing rows become
// NotFoundError, CAS conflicts become BusinessRuleError, anything else is
// wrapped unknown.
func wrapRepoErr[T any](err error, entity, id string) outcome.Result[T] {
	switch {
	case isNotFound(err):
		return failNotFound[T](entity, id)
	case isConflict(err):
		return failRule[T]("CONCURRENT_UPDATE", "%s %s was modified concurrently; reload and retry", entity, id)
	default:
		return outcome.Fail[T](fmt.Errorf("%s %s: %w", entity, id, err))
	}
}
