// Package repo is the SQLite adapter behind the use-case repository contracts.
// Guarded transitions are compare-and-swap on the current status so two racing
// orchestrator invocations cannot both win.
package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bistroboard/internal/config"
	"bistroboard/internal/domain"
)

type Repo struct {
	DB *sql.DB
}

var (
	ErrNotFound = errors.New("not found")
	// ErrConflict means the row's status changed between guard and mutate.
	ErrConflict = errors.New("entity changed concurrently")
)

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// checkTransition resolves a zero-rows-affected guarded UPDATE into either
// ErrNotFound or ErrConflict.
func (r Repo) checkTransition(ctx context.Context, table, id string) error {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT 1 FROM `+table+` WHERE id=?`, id).Scan(&n)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return ErrConflict
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func nullablePtr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func strPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// --- restaurants ---

const restaurantCols = `id,name,COALESCE(timezone,''),auto_reply_reviews,auto_reply_tickets,auto_reply_mode,COALESCE(auto_reply_template,''),created_at,updated_at`

func scanRestaurant(row interface{ Scan(...any) error }) (domain.Restaurant, error) {
	var rt domain.Restaurant
	var reviews, tickets int
	var mode string
	err := row.Scan(&rt.ID, &rt.Name, &rt.Timezone, &reviews, &tickets, &mode, &rt.AutoReply.TemplateText, &rt.CreatedAt, &rt.UpdatedAt)
	if err == sql.ErrNoRows {
		return rt, ErrNotFound
	}
	if err != nil {
		return rt, err
	}
	rt.AutoReply.ReviewsEnabled = reviews != 0
	rt.AutoReply.TicketsEnabled = tickets != 0
	rt.AutoReply.Mode = domain.ReplyMode(mode)
	return rt, nil
}

func (r Repo) InsertRestaurant(ctx context.Context, rt domain.Restaurant) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO restaurants(id,name,timezone,auto_reply_reviews,auto_reply_tickets,auto_reply_mode,auto_reply_template,created_at,updated_at)
VALUES (?,?,?,?,?,?,?,?,?)`,
		rt.ID, rt.Name, nullable(rt.Timezone), boolInt(rt.AutoReply.ReviewsEnabled), boolInt(rt.AutoReply.TicketsEnabled),
		string(rt.AutoReply.Mode), nullable(rt.AutoReply.TemplateText), rt.CreatedAt, rt.UpdatedAt)
	return err
}

func (r Repo) GetRestaurant(ctx context.Context, id string) (domain.Restaurant, error) {
	return scanRestaurant(r.DB.QueryRowContext(ctx, `SELECT `+restaurantCols+` FROM restaurants WHERE id=?`, id))
}

func (r Repo) ListRestaurants(ctx context.Context) ([]domain.Restaurant, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+restaurantCols+` FROM restaurants ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Restaurant
	for rows.Next() {
		rt, err := scanRestaurant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}

// SingleRestaurant returns the only restaurant in the workspace, erroring when
// zero or several exist.
func (r Repo) SingleRestaurant(ctx context.Context) (domain.Restaurant, error) {
	items, err := r.ListRestaurants(ctx)
	if err != nil {
		return domain.Restaurant{}, err
	}
	if len(items) == 0 {
		return domain.Restaurant{}, ErrNotFound
	}
	if len(items) > 1 {
		return domain.Restaurant{}, fmt.Errorf("multiple restaurants exist; specify --restaurant")
	}
	return items[0], nil
}

// UpdateSettings applies the full auto-reply settings block.
func (r Repo) UpdateSettings(ctx context.Context, restaurantID string, s domain.AutoReplySettings) (domain.Restaurant, error) {
	res, err := r.DB.ExecContext(ctx, `UPDATE restaurants SET auto_reply_reviews=?, auto_reply_tickets=?, auto_reply_mode=?, auto_reply_template=?, updated_at=? WHERE id=?`,
		boolInt(s.ReviewsEnabled), boolInt(s.TicketsEnabled), string(s.Mode), nullable(s.TemplateText), now(), restaurantID)
	if err != nil {
		return domain.Restaurant{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.Restaurant{}, ErrNotFound
	}
	return r.GetRestaurant(ctx, restaurantID)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// --- per-restaurant config ---

func (r Repo) GetRestaurantConfig(ctx context.Context, restaurantID string) (*config.Config, error) {
	var raw string
	err := r.DB.QueryRowContext(ctx, `SELECT yaml FROM restaurant_configs WHERE restaurant_id=?`, restaurantID).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return config.FromYAML([]byte(raw))
}

func (r Repo) UpsertRestaurantConfig(ctx context.Context, restaurantID string, cfg *config.Config) error {
	if cfg == nil {
		return fmt.Errorf("config nil")
	}
	cfg.Restaurant.ID = restaurantID
	if err := cfg.Validate(); err != nil {
		return err
	}
	data, err := cfg.ToYAML()
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, `INSERT INTO restaurant_configs(restaurant_id,yaml,updated_at) VALUES (?,?,?)
ON CONFLICT(restaurant_id) DO UPDATE SET yaml=excluded.yaml, updated_at=excluded.updated_at`,
		restaurantID, string(data), now())
	return err
}

// --- events ---

func (r Repo) ListEvents(ctx context.Context, restaurantID string, limit int) ([]domain.Event, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id,ts,type,COALESCE(restaurant_id,''),entity_kind,COALESCE(entity_id,''),actor_id,payload_json FROM events`
	var args []any
	if restaurantID != "" {
		query += ` WHERE restaurant_id=?`
		args = append(args, restaurantID)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)
	return r.queryEvents(ctx, query, args...)
}

// EventsAfter returns up to limit events with id greater than cursor, oldest
// first. Used by the report delivery worker's cursor loop.
func (r Repo) EventsAfter(ctx context.Context, limit int, cursor int64, restaurantID string) ([]domain.Event, error) {
	query := `SELECT id,ts,type,COALESCE(restaurant_id,''),entity_kind,COALESCE(entity_id,''),actor_id,payload_json FROM events WHERE id>?`
	args := []any{cursor}
	if restaurantID != "" {
		query += ` AND restaurant_id=?`
		args = append(args, restaurantID)
	}
	query += ` ORDER BY id ASC LIMIT ?`
	args = append(args, limit)
	return r.queryEvents(ctx, query, args...)
}

func (r Repo) queryEvents(ctx context.Context, query string, args ...any) ([]domain.Event, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Event
	for rows.Next() {
		var e domain.Event
		if err := rows.Scan(&e.ID, &e.TS, &e.Type, &e.RestaurantID, &e.EntityKind, &e.EntityID, &e.ActorID, &e.Payload); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
