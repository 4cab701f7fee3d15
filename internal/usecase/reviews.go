package usecase

import (
	"context"
	"fmt"
	"strings"

	"bistroboard/internal/domain"
	"bistroboard/internal/events"
	"bistroboard/internal/outcome"
	"bistroboard/internal/rules"
)

// ReplyToReview posts the single public reply a review gets. Answered reviews
// stay answered.
func (s Service) ReplyToReview(ctx context.Context, reviewID, actorID, text string) outcome.Result[domain.Review] {
	if actorID == "" {
		return failValidation[domain.Review]("actor_id", "actor_id is required")
	}
	if strings.TrimSpace(text) == "" {
		return failValidation[domain.Review]("text", "reply text must not be empty")
	}
	rv, err := s.Reviews.GetReview(ctx, reviewID)
	if err != nil {
		return wrapRepoErr[domain.Review](err, "review", reviewID)
	}
	if !rules.CanReplyToReview(rv) {
		return failRule[domain.Review]("REVIEW_ALREADY_ANSWERED", "review %s already has a reply", rv.ID)
	}
	updated, err := s.Reviews.SetReviewReply(ctx, rv.ID, text, actorID, s.nowStr())
	if err != nil {
		return wrapRepoErr[domain.Review](err, "review", rv.ID)
	}
	s.record(ctx, events.Entry{
		Type: "review.replied", RestaurantID: rv.RestaurantID,
		EntityKind: "review", EntityID: rv.ID, ActorID: actorID,
	})
	return outcome.OK(updated)
}

// AutoReplyToReview answers an unanswered review from the configured
// templates, choosing by rating polarity. Middling ratings (3) are left for a
// human.
func (s Service) AutoReplyToReview(ctx context.Context, reviewID string) outcome.Result[domain.Review] {
	rv, err := s.Reviews.GetReview(ctx, reviewID)
	if err != nil {
		return wrapRepoErr[domain.Review](err, "review", reviewID)
	}
	rt, err := s.Restaurants.GetRestaurant(ctx, rv.RestaurantID)
	if err != nil {
		return wrapRepoErr[domain.Review](err, "restaurant", rv.RestaurantID)
	}
	if !rt.AutoReply.ReviewsEnabled {
		return failRule[domain.Review]("AUTO_REPLY_DISABLED", "review auto-reply is disabled for restaurant %s", rt.ID)
	}
	if !rules.CanReplyToReview(rv) {
		return failRule[domain.Review]("REVIEW_ALREADY_ANSWERED", "review %s already has a reply", rv.ID)
	}

	var text string
	switch {
	case rules.PositiveReview(rv):
		if s.Config != nil {
			text = s.Config.AutoReply.PositiveTemplate
		}
		if text == "" {
			text = fmt.Sprintf("Thank you for the kind words! We hope to see you again at %s soon.", rt.Name)
		}
	case rules.NegativeReview(rv):
		if s.Config != nil {
			text = s.Config.AutoReply.NegativeTemplate
		}
		if text == "" {
			text = fmt.Sprintf("We are sorry to hear this. Please contact %s so we can make it right.", rt.Name)
		}
	default:
		return failRule[domain.Review]("REVIEW_NEEDS_HUMAN", "review %s has a neutral rating; auto-reply only covers clear polarity", rv.ID)
	}

	updated, err := s.Reviews.SetReviewReply(ctx, rv.ID, text, "auto", s.nowStr())
	if err != nil {
		return wrapRepoErr[domain.Review](err, "review", rv.ID)
	}
	s.record(ctx, events.Entry{
		Type: "review.auto_replied", RestaurantID: rv.RestaurantID,
		EntityKind: "review", EntityID: rv.ID, ActorID: "auto",
	})
	return outcome.OK(updated)
}

func (s Service) GetReview(ctx context.Context, reviewID string) outcome.Result[domain.Review] {
	rv, err := s.Reviews.GetReview(ctx, reviewID)
	if err != nil {
		return wrapRepoErr[domain.Review](err, "review", reviewID)
	}
	return outcome.OK(rv)
}

func (s Service) ListReviews(ctx context.Context, restaurantID string, unansweredOnly bool) outcome.Result[[]domain.Review] {
	rvs, err := s.Reviews.ListReviews(ctx, restaurantID, unansweredOnly)
	if err != nil {
		return outcome.Fail[[]domain.Review](fmt.Errorf("list reviews: %w", err))
	}
	return outcome.OK(rvs)
}
