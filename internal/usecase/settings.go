package usecase

import (
	"context"
	"strings"

	"bistroboard/internal/domain"
	"bistroboard/internal/events"
	"bistroboard/internal/outcome"
)

// ToggleAutoReply flips one auto-reply switch. Scope is "reviews" or
// "tickets".
func (s Service) ToggleAutoReply(ctx context.Context, restaurantID, scope string, enabled bool, actorID string) outcome.Result[domain.Restaurant] {
	if scope != "reviews" && scope != "tickets" {
		return failValidation[domain.Restaurant]("scope", "scope must be reviews or tickets")
	}
	rt, err := s.Restaurants.GetRestaurant(ctx, restaurantID)
	if err != nil {
		return wrapRepoErr[domain.Restaurant](err, "restaurant", restaurantID)
	}
	settings := rt.AutoReply
	if scope == "reviews" {
		settings.ReviewsEnabled = enabled
	} else {
		settings.TicketsEnabled = enabled
	}
	updated, err := s.Restaurants.UpdateSettings(ctx, rt.ID, settings)
	if err != nil {
		return wrapRepoErr[domain.Restaurant](err, "restaurant", rt.ID)
	}
	s.record(ctx, events.Entry{
		Type: "settings.auto_reply_toggled", RestaurantID: rt.ID,
		EntityKind: "restaurant", EntityID: rt.ID, ActorID: actorID,
		Payload: events.Payload{"scope": scope, "enabled": enabled},
	})
	return outcome.OK(updated)
}

// UpdateAutoReplySettings replaces the whole auto-reply block. Template mode
// requires template text; AI mode ignores it.
func (s Service) UpdateAutoReplySettings(ctx context.Context, restaurantID string, settings domain.AutoReplySettings, actorID string) outcome.Result[domain.Restaurant] {
	switch settings.Mode {
	case domain.ReplyModeTemplate, domain.ReplyModeAI:
	default:
		return failValidation[domain.Restaurant]("mode", "mode must be template or ai")
	}
	if settings.Mode == domain.ReplyModeTemplate && strings.TrimSpace(settings.TemplateText) == "" {
		return failValidation[domain.Restaurant]("template_text", "template_text is required in template mode")
	}
	rt, err := s.Restaurants.GetRestaurant(ctx, restaurantID)
	if err != nil {
		return wrapRepoErr[domain.Restaurant](err, "restaurant", restaurantID)
	}
	updated, err := s.Restaurants.UpdateSettings(ctx, rt.ID, settings)
	if err != nil {
		return wrapRepoErr[domain.Restaurant](err, "restaurant", rt.ID)
	}
	s.record(ctx, events.Entry{
		Type: "settings.auto_reply_updated", RestaurantID: rt.ID,
		EntityKind: "restaurant", EntityID: rt.ID, ActorID: actorID,
		Payload: events.Payload{"mode": string(settings.Mode)},
	})
	return outcome.OK(updated)
}

func (s Service) GetRestaurant(ctx context.Context, restaurantID string) outcome.Result[domain.Restaurant] {
	rt, err := s.Restaurants.GetRestaurant(ctx, restaurantID)
	if err != nil {
		return wrapRepoErr[domain.Restaurant](err, "restaurant", restaurantID)
	}
	return outcome.OK(rt)
}
