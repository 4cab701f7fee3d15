package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"bistroboard/internal/domain"
	"bistroboard/internal/events"
	"bistroboard/internal/outcome"
	"bistroboard/internal/rules"
)

type GenerateReportInput struct {
	RestaurantID string
	WeekStart    string
	ActorID      string
}

// GenerateReport opens a weekly report in generating. One report per
// restaurant and week; asking again returns the existing one unchanged.
func (s Service) GenerateReport(ctx context.Context, in GenerateReportInput) outcome.Result[domain.Report] {
	if _, err := time.Parse("2006-01-02", in.WeekStart); err != nil {
		return failValidation[domain.Report]("week_start", fmt.Sprintf("week_start %q is not a valid date (YYYY-MM-DD)", in.WeekStart))
	}
	if existing, err := s.Reports.GetReportByWeek(ctx, in.RestaurantID, in.WeekStart); err == nil {
		return outcome.OK(existing)
	} else if !isNotFound(err) {
		return outcome.Fail[domain.Report](fmt.Errorf("lookup report for week %s: %w", in.WeekStart, err))
	}

	ts := s.nowStr()
	rep := domain.Report{
		ID:           uuid.NewString(),
		RestaurantID: in.RestaurantID,
		WeekStart:    in.WeekStart,
		Status:       domain.ReportGenerating,
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}
	if err := s.Reports.InsertReport(ctx, rep); err != nil {
		return outcome.Fail[domain.Report](fmt.Errorf("insert report: %w", err))
	}
	s.record(ctx, events.Entry{
		Type: "report.generation_started", RestaurantID: in.RestaurantID,
		EntityKind: "report", EntityID: rep.ID, ActorID: in.ActorID,
		Payload: events.Payload{"week_start": in.WeekStart},
	})
	return outcome.OK(rep)
}

// CompleteReportGeneration attaches the rendered artifact and moves the
// report to generated.
func (s Service) CompleteReportGeneration(ctx context.Context, reportID, artifactURL, contentHash string) outcome.Result[domain.Report] {
	if artifactURL == "" {
		return failValidation[domain.Report]("artifact_url", "artifact_url must not be empty")
	}
	rep, err := s.Reports.GetReport(ctx, reportID)
	if err != nil {
		return wrapRepoErr[domain.Report](err, "report", reportID)
	}
	if !rules.CanCompleteReportGeneration(rep) {
		return failRule[domain.Report]("REPORT_NOT_GENERATING", "report %s is %s, not generating", rep.ID, rep.Status)
	}
	rep.ArtifactURL = &artifactURL
	if contentHash != "" {
		rep.ContentHash = &contentHash
	}
	rep.FailureReason = nil
	rep.Status = domain.ReportGenerated
	rep.UpdatedAt = s.nowStr()
	updated, err := s.Reports.TransitionReport(ctx, rep, domain.ReportGenerating)
	if err != nil {
		return wrapRepoErr[domain.Report](err, "report", rep.ID)
	}
	s.record(ctx, events.Entry{
		Type: "report.generated", RestaurantID: rep.RestaurantID,
		EntityKind: "report", EntityID: rep.ID, ActorID: "system",
	})
	return outcome.OK(updated)
}

func (s Service) FailReportGeneration(ctx context.Context, reportID, reason string) outcome.Result[domain.Report] {
	rep, err := s.Reports.GetReport(ctx, reportID)
	if err != nil {
		return wrapRepoErr[domain.Report](err, "report", reportID)
	}
	if !rules.CanFailReport(rep) {
		return failRule[domain.Report]("REPORT_CANNOT_FAIL", "report %s is %s and cannot be marked failed", rep.ID, rep.Status)
	}
	if reason == "" {
		reason = "generation failed"
	}
	from := rep.Status
	rep.FailureReason = &reason
	rep.Status = domain.ReportFailed
	rep.UpdatedAt = s.nowStr()
	updated, err := s.Reports.TransitionReport(ctx, rep, from)
	if err != nil {
		return wrapRepoErr[domain.Report](err, "report", rep.ID)
	}
	s.record(ctx, events.Entry{
		Type: "report.failed", RestaurantID: rep.RestaurantID,
		EntityKind: "report", EntityID: rep.ID, ActorID: "system",
		Payload: events.Payload{"reason": reason},
	})
	return outcome.OK(updated)
}

// SendReport queues delivery on the configured channel. Failed deliveries may
// be re-sent; generating and already-sent reports may not.
func (s Service) SendReport(ctx context.Context, reportID, channel, actorID string) outcome.Result[domain.Report] {
	if channel == "" && s.Config != nil {
		channel = s.Config.Reports.Channel
	}
	switch channel {
	case "email", "whatsapp", "webhook":
	default:
		return failValidation[domain.Report]("channel", fmt.Sprintf("channel %q is not one of email, whatsapp, webhook", channel))
	}
	rep, err := s.Reports.GetReport(ctx, reportID)
	if err != nil {
		return wrapRepoErr[domain.Report](err, "report", reportID)
	}
	if !rules.CanSend(rep) {
		return failRule[domain.Report]("REPORT_CANNOT_SEND", "report %s is %s and cannot be sent", rep.ID, rep.Status)
	}
	from := rep.Status
	rep.Channel = &channel
	rep.FailureReason = nil
	rep.Status = domain.ReportSending
	rep.UpdatedAt = s.nowStr()
	updated, err := s.Reports.TransitionReport(ctx, rep, from)
	if err != nil {
		return wrapRepoErr[domain.Report](err, "report", rep.ID)
	}
	s.record(ctx, events.Entry{
		Type: "report.send_requested", RestaurantID: rep.RestaurantID,
		EntityKind: "report", EntityID: rep.ID, ActorID: actorID,
		Payload: events.Payload{"channel": channel},
	})
	return outcome.OK(updated)
}

// MarkReportSent records a confirmed delivery.
func (s Service) MarkReportSent(ctx context.Context, reportID string) outcome.Result[domain.Report] {
	rep, err := s.Reports.GetReport(ctx, reportID)
	if err != nil {
		return wrapRepoErr[domain.Report](err, "report", reportID)
	}
	if !rules.CanMarkReportSent(rep) {
		return failRule[domain.Report]("REPORT_NOT_SENDING", "report %s is %s, not sending", rep.ID, rep.Status)
	}
	sentAt := s.nowStr()
	rep.SentAt = &sentAt
	rep.Status = domain.ReportSent
	rep.UpdatedAt = sentAt
	updated, err := s.Reports.TransitionReport(ctx, rep, domain.ReportSending)
	if err != nil {
		return wrapRepoErr[domain.Report](err, "report", rep.ID)
	}
	s.record(ctx, events.Entry{
		Type: "report.sent", RestaurantID: rep.RestaurantID,
		EntityKind: "report", EntityID: rep.ID, ActorID: "system",
	})
	return outcome.OK(updated)
}

func (s Service) FailReportDelivery(ctx context.Context, reportID, reason string) outcome.Result[domain.Report] {
	rep, err := s.Reports.GetReport(ctx, reportID)
	if err != nil {
		return wrapRepoErr[domain.Report](err, "report", reportID)
	}
	if rep.Status != domain.ReportSending {
		return failRule[domain.Report]("REPORT_NOT_SENDING", "report %s is %s, not sending", rep.ID, rep.Status)
	}
	if reason == "" {
		reason = "delivery failed"
	}
	rep.FailureReason = &reason
	rep.Status = domain.ReportFailed
	rep.UpdatedAt = s.nowStr()
	updated, err := s.Reports.TransitionReport(ctx, rep, domain.ReportSending)
	if err != nil {
		return wrapRepoErr[domain.Report](err, "report", rep.ID)
	}
	s.record(ctx, events.Entry{
		Type: "report.delivery_failed", RestaurantID: rep.RestaurantID,
		EntityKind: "report", EntityID: rep.ID, ActorID: "system",
		Payload: events.Payload{"reason": reason},
	})
	return outcome.OK(updated)
}

func (s Service) GetReport(ctx context.Context, reportID string) outcome.Result[domain.Report] {
	rep, err := s.Reports.GetReport(ctx, reportID)
	if err != nil {
		return wrapRepoErr[domain.Report](err, "report", reportID)
	}
	return outcome.OK(rep)
}

func (s Service) ListReports(ctx context.Context, restaurantID string, f domain.ReportFilters) outcome.Result[[]domain.Report] {
	reps, err := s.Reports.ListReports(ctx, restaurantID, f)
	if err != nil {
		return outcome.Fail[[]domain.Report](fmt.Errorf("list reports: %w", err))
	}
	return outcome.OK(reps)
}
