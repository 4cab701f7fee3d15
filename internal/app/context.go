package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bistroboard/internal/config"
	"bistroboard/internal/domain"
	"bistroboard/internal/repo"
)

// ResolveRestaurantAndConfig picks the active restaurant and ensures both the
// restaurant row and its config exist, seeding defaults if missing. An
// explicit override wins; otherwise a single-restaurant DB selects itself.
func ResolveRestaurantAndConfig(ctx context.Context, restaurantOverride, name string, r repo.Repo) (string, *config.Config, error) {
	restaurantID := restaurantOverride
	if restaurantID == "" {
		if rt, err := r.SingleRestaurant(ctx); err == nil {
			restaurantID = rt.ID
		} else {
			return "", nil, fmt.Errorf("restaurant not specified; use --restaurant")
		}
	}
	seedCfg := config.Default(restaurantID)

	if _, err := r.GetRestaurant(ctx, restaurantID); err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			return "", nil, err
		}
		if err := createRestaurant(ctx, r, restaurantID, name, seedCfg); err != nil {
			return "", nil, err
		}
	}
	cfg, err := r.GetRestaurantConfig(ctx, restaurantID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			if err := r.UpsertRestaurantConfig(ctx, restaurantID, seedCfg); err != nil {
				return "", nil, fmt.Errorf("seed restaurant config: %w", err)
			}
			cfg = seedCfg
		} else {
			return "", nil, err
		}
	}
	cfg.Restaurant.ID = restaurantID
	return restaurantID, cfg, nil
}

func createRestaurant(ctx context.Context, r repo.Repo, restaurantID, name string, seedCfg *config.Config) error {
	if seedCfg == nil {
		seedCfg = config.Default(restaurantID)
	}
	if name == "" {
		name = seedCfg.Restaurant.Name
	}
	if name == "" {
		name = restaurantID
	}
	now := time.Now().UTC().Format(time.RFC3339)
	rt := domain.Restaurant{
		ID:   restaurantID,
		Name: name,
		AutoReply: domain.AutoReplySettings{
			Mode: domain.ReplyModeTemplate,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.InsertRestaurant(ctx, rt); err != nil {
		return fmt.Errorf("insert restaurant: %w", err)
	}
	if err := r.UpsertRestaurantConfig(ctx, restaurantID, seedCfg); err != nil {
		return fmt.Errorf("insert restaurant config: %w", err)
	}
	return nil
}
