package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"bistroboard/internal/domain"
	"bistroboard/internal/events"
	"bistroboard/internal/outcome"
	"bistroboard/internal/rules"
)

const (
	maxTitleLen         = 255
	maxDiscardReasonLen = 500
)

type CreateActionInput struct {
	RestaurantID string
	ReportID     string
	WeekStart    string
	Title        string
	Type         string
	Target       string
	ActorID      string
}

// CreateAction records a recommended operator action, optionally tied to the
// weekly report that suggested it.
func (s Service) CreateAction(ctx context.Context, in CreateActionInput) outcome.Result[domain.Action] {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return failValidation[domain.Action]("title", "title must not be empty")
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return failValidation[domain.Action]("title", fmt.Sprintf("title must be at most %d characters", maxTitleLen))
	}
	if in.Type == "" {
		return failValidation[domain.Action]("type", "type must not be empty")
	}
	if in.WeekStart != "" {
		if _, err := time.Parse("2006-01-02", in.WeekStart); err != nil {
			return failValidation[domain.Action]("week_start", fmt.Sprintf("week_start %q is not a valid date (YYYY-MM-DD)", in.WeekStart))
		}
	}
	if in.ReportID != "" {
		if _, err := s.Reports.GetReport(ctx, in.ReportID); err != nil {
			return wrapRepoErr[domain.Action](err, "report", in.ReportID)
		}
	}

	ts := s.nowStr()
	a := domain.Action{
		ID:           uuid.NewString(),
		RestaurantID: in.RestaurantID,
		Title:        title,
		Type:         in.Type,
		Target:       in.Target,
		Status:       domain.ActionPlanned,
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}
	if in.ReportID != "" {
		a.ReportID = &in.ReportID
	}
	if in.WeekStart != "" {
		a.WeekStart = &in.WeekStart
	}
	if err := s.Actions.InsertAction(ctx, a); err != nil {
		return outcome.Fail[domain.Action](fmt.Errorf("insert action: %w", err))
	}
	s.record(ctx, events.Entry{
		Type: "action.created", RestaurantID: in.RestaurantID,
		EntityKind: "action", EntityID: a.ID, ActorID: in.ActorID,
		Payload: events.Payload{"type": in.Type, "title": a.Title},
	})
	return outcome.OK(a)
}

// MarkActionDone completes a planned action. Evidence of the completed work
// is required; the weekly report quotes it back to the operator.
func (s Service) MarkActionDone(ctx context.Context, actionID, actorID, evidence string) outcome.Result[domain.Action] {
	if actorID == "" {
		return failValidation[domain.Action]("actor_id", "actor_id is required")
	}
	if strings.TrimSpace(evidence) == "" {
		return failValidation[domain.Action]("evidence", "evidence is required to mark an action done")
	}
	a, err := s.Actions.GetAction(ctx, actionID)
	if err != nil {
		return wrapRepoErr[domain.Action](err, "action", actionID)
	}
	if !rules.CanMarkDone(a) {
		return failRule[domain.Action]("ACTION_CANNOT_MARK_DONE", "action %s is %s; only planned actions can be marked done", a.ID, a.Status)
	}
	doneAt := s.nowStr()
	a.DoneBy = &actorID
	a.DoneAt = &doneAt
	a.Evidence = &evidence
	a.Status = domain.ActionDone
	a.UpdatedAt = doneAt
	updated, err := s.Actions.TransitionAction(ctx, a, domain.ActionPlanned)
	if err != nil {
		return wrapRepoErr[domain.Action](err, "action", a.ID)
	}
	s.record(ctx, events.Entry{
		Type: "action.done", RestaurantID: a.RestaurantID,
		EntityKind: "action", EntityID: a.ID, ActorID: actorID,
	})
	return outcome.OK(updated)
}

// DiscardAction abandons a planned action. A reason is required so the weekly
// report can explain the gap.
func (s Service) DiscardAction(ctx context.Context, actionID, actorID, reason string) outcome.Result[domain.Action] {
	if actorID == "" {
		return failValidation[domain.Action]("actor_id", "actor_id is required")
	}
	if strings.TrimSpace(reason) == "" {
		return failValidation[domain.Action]("reason", "a discard reason is required")
	}
	if utf8.RuneCountInString(reason) > maxDiscardReasonLen {
		return failValidation[domain.Action]("reason", fmt.Sprintf("reason must be at most %d characters", maxDiscardReasonLen))
	}
	a, err := s.Actions.GetAction(ctx, actionID)
	if err != nil {
		return wrapRepoErr[domain.Action](err, "action", actionID)
	}
	if !rules.CanDiscard(a) {
		return failRule[domain.Action]("ACTION_CANNOT_DISCARD", "action %s is %s; only planned actions can be discarded", a.ID, a.Status)
	}
	discardedAt := s.nowStr()
	a.DiscardedBy = &actorID
	a.DiscardedAt = &discardedAt
	a.DiscardReason = &reason
	a.Status = domain.ActionDiscarded
	a.UpdatedAt = discardedAt
	updated, err := s.Actions.TransitionAction(ctx, a, domain.ActionPlanned)
	if err != nil {
		return wrapRepoErr[domain.Action](err, "action", a.ID)
	}
	s.record(ctx, events.Entry{
		Type: "action.discarded", RestaurantID: a.RestaurantID,
		EntityKind: "action", EntityID: a.ID, ActorID: actorID,
		Payload: events.Payload{"reason": reason},
	})
	return outcome.OK(updated)
}

func (s Service) GetAction(ctx context.Context, actionID string) outcome.Result[domain.Action] {
	a, err := s.Actions.GetAction(ctx, actionID)
	if err != nil {
		return wrapRepoErr[domain.Action](err, "action", actionID)
	}
	return outcome.OK(a)
}

func (s Service) ListActions(ctx context.Context, restaurantID string, f domain.ActionFilters) outcome.Result[[]domain.Action] {
	as, err := s.Actions.ListActions(ctx, restaurantID, f)
	if err != nil {
		return outcome.Fail[[]domain.Action](fmt.Errorf("list actions: %w", err))
	}
	return outcome.OK(as)
}
