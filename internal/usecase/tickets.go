package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"bistroboard/internal/domain"
	"bistroboard/internal/events"
	"bistroboard/internal/outcome"
	"bistroboard/internal/rules"
)

// ReplyToTicket posts an operator message. Replying to an open ticket claims
// it, moving it to in_progress.
func (s Service) ReplyToTicket(ctx context.Context, ticketID, actorID, body string) outcome.Result[domain.Ticket] {
	if actorID == "" {
		return failValidation[domain.Ticket]("actor_id", "actor_id is required")
	}
	if strings.TrimSpace(body) == "" {
		return failValidation[domain.Ticket]("body", "reply body must not be empty")
	}
	t, err := s.Tickets.GetTicket(ctx, ticketID)
	if err != nil {
		return wrapRepoErr[domain.Ticket](err, "ticket", ticketID)
	}
	if !rules.CanReply(t) {
		return failRule[domain.Ticket]("TICKET_CANNOT_REPLY", "ticket %s is %s and no longer accepts replies", t.ID, t.Status)
	}

	msg := domain.TicketMessage{
		ID:         uuid.NewString(),
		TicketID:   t.ID,
		AuthorKind: "operator",
		Body:       body,
		CreatedAt:  s.nowStr(),
	}
	if err := s.Tickets.InsertTicketMessage(ctx, msg); err != nil {
		return outcome.Fail[domain.Ticket](fmt.Errorf("insert ticket message: %w", err))
	}
	if t.Status == domain.TicketOpen {
		t.Status = domain.TicketInProgress
		t.UpdatedAt = s.nowStr()
		updated, err := s.Tickets.TransitionTicket(ctx, t, domain.TicketOpen)
		if err != nil {
			return wrapRepoErr[domain.Ticket](err, "ticket", t.ID)
		}
		t = updated
	}
	s.record(ctx, events.Entry{
		Type: "ticket.replied", RestaurantID: t.RestaurantID,
		EntityKind: "ticket", EntityID: t.ID, ActorID: actorID,
	})
	return outcome.OK(t)
}

func (s Service) ResolveTicket(ctx context.Context, ticketID, actorID string) outcome.Result[domain.Ticket] {
	t, err := s.Tickets.GetTicket(ctx, ticketID)
	if err != nil {
		return wrapRepoErr[domain.Ticket](err, "ticket", ticketID)
	}
	if !rules.CanResolve(t) {
		return failRule[domain.Ticket]("TICKET_CANNOT_RESOLVE", "ticket %s is %s and cannot be resolved", t.ID, t.Status)
	}
	from := t.Status
	resolvedAt := s.nowStr()
	t.ResolvedAt = &resolvedAt
	t.Status = domain.TicketResolved
	t.UpdatedAt = resolvedAt
	updated, err := s.Tickets.TransitionTicket(ctx, t, from)
	if err != nil {
		return wrapRepoErr[domain.Ticket](err, "ticket", t.ID)
	}
	s.record(ctx, events.Entry{
		Type: "ticket.resolved", RestaurantID: t.RestaurantID,
		EntityKind: "ticket", EntityID: t.ID, ActorID: actorID,
	})
	return outcome.OK(updated)
}

func (s Service) CloseTicket(ctx context.Context, ticketID, actorID string) outcome.Result[domain.Ticket] {
	t, err := s.Tickets.GetTicket(ctx, ticketID)
	if err != nil {
		return wrapRepoErr[domain.Ticket](err, "ticket", ticketID)
	}
	if !rules.CanClose(t) {
		return failRule[domain.Ticket]("TICKET_CANNOT_CLOSE", "ticket %s is already %s", t.ID, t.Status)
	}
	from := t.Status
	closedAt := s.nowStr()
	t.ClosedAt = &closedAt
	t.Status = domain.TicketClosed
	t.UpdatedAt = closedAt
	updated, err := s.Tickets.TransitionTicket(ctx, t, from)
	if err != nil {
		return wrapRepoErr[domain.Ticket](err, "ticket", t.ID)
	}
	s.record(ctx, events.Entry{
		Type: "ticket.closed", RestaurantID: t.RestaurantID,
		EntityKind: "ticket", EntityID: t.ID, ActorID: actorID,
	})
	return outcome.OK(updated)
}

func (s Service) GetTicket(ctx context.Context, ticketID string) outcome.Result[domain.Ticket] {
	t, err := s.Tickets.GetTicket(ctx, ticketID)
	if err != nil {
		return wrapRepoErr[domain.Ticket](err, "ticket", ticketID)
	}
	return outcome.OK(t)
}

func (s Service) ListTickets(ctx context.Context, restaurantID string, f domain.TicketFilters) outcome.Result[[]domain.Ticket] {
	ts, err := s.Tickets.ListTickets(ctx, restaurantID, f)
	if err != nil {
		return outcome.Fail[[]domain.Ticket](fmt.Errorf("list tickets: %w", err))
	}
	return outcome.OK(ts)
}

func (s Service) ListTicketMessages(ctx context.Context, ticketID string) outcome.Result[[]domain.TicketMessage] {
	if _, err := s.Tickets.GetTicket(ctx, ticketID); err != nil {
		return wrapRepoErr[[]domain.TicketMessage](err, "ticket", ticketID)
	}
	msgs, err := s.Tickets.ListTicketMessages(ctx, ticketID)
	if err != nil {
		return outcome.Fail[[]domain.TicketMessage](fmt.Errorf("list ticket messages: %w", err))
	}
	return outcome.OK(msgs)
}

// AutoReplyToTicket posts a templated reply on behalf of the restaurant when
// ticket auto-reply is enabled. Used by the inbound-message hook.
func (s Service) AutoReplyToTicket(ctx context.Context, ticketID string) outcome.Result[domain.Ticket] {
	t, err := s.Tickets.GetTicket(ctx, ticketID)
	if err != nil {
		return wrapRepoErr[domain.Ticket](err, "ticket", ticketID)
	}
	rt, err := s.Restaurants.GetRestaurant(ctx, t.RestaurantID)
	if err != nil {
		return wrapRepoErr[domain.Ticket](err, "restaurant", t.RestaurantID)
	}
	if !rt.AutoReply.TicketsEnabled {
		return failRule[domain.Ticket]("AUTO_REPLY_DISABLED", "ticket auto-reply is disabled for restaurant %s", rt.ID)
	}
	if !rules.CanReply(t) {
		return failRule[domain.Ticket]("TICKET_CANNOT_REPLY", "ticket %s is %s and no longer accepts replies", t.ID, t.Status)
	}
	body := rt.AutoReply.TemplateText
	if body == "" {
		body = fmt.Sprintf("Thanks for reaching out to %s. We have received your message and will get back to you shortly.", rt.Name)
	}
	msg := domain.TicketMessage{
		ID:         uuid.NewString(),
		TicketID:   t.ID,
		AuthorKind: "auto",
		Body:       body,
		CreatedAt:  s.nowStr(),
	}
	if err := s.Tickets.InsertTicketMessage(ctx, msg); err != nil {
		return outcome.Fail[domain.Ticket](fmt.Errorf("insert ticket message: %w", err))
	}
	s.record(ctx, events.Entry{
		Type: "ticket.auto_replied", RestaurantID: t.RestaurantID,
		EntityKind: "ticket", EntityID: t.ID, ActorID: "auto",
	})
	return outcome.OK(t)
}
