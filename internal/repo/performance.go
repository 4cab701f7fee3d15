package repo

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"

	"bistroboard/internal/domain"
)

const snapshotCols = `id,restaurant_id,week_start,impressions,menu_views,orders,revenue_cents,created_at`

func (r Repo) InsertSnapshot(ctx context.Context, s domain.Snapshot) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO snapshots(id,restaurant_id,week_start,impressions,menu_views,orders,revenue_cents,created_at)
VALUES (?,?,?,?,?,?,?,?)`,
		s.ID, s.RestaurantID, s.WeekStart, s.Impressions, s.MenuViews, s.Orders, s.RevenueCents, s.CreatedAt)
	return err
}

// GetSnapshots returns snapshots newest first by week start.
func (r Repo) GetSnapshots(ctx context.Context, restaurantID string) ([]domain.Snapshot, error) {
	return r.querySnapshots(ctx, `SELECT `+snapshotCols+` FROM snapshots WHERE restaurant_id=? ORDER BY week_start DESC`, restaurantID)
}

func (r Repo) querySnapshots(ctx context.Context, query string, args ...any) ([]domain.Snapshot, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Snapshot
	for rows.Next() {
		var s domain.Snapshot
		if err := rows.Scan(&s.ID, &s.RestaurantID, &s.WeekStart, &s.Impressions, &s.MenuViews, &s.Orders, &s.RevenueCents, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ExportData renders weekly financial rows within [start,end] as a blob in the
// requested format. Byte-level layout is owned by this adapter, not the core.
func (r Repo) ExportData(ctx context.Context, restaurantID, start, end, format string) ([]byte, error) {
	snaps, err := r.querySnapshots(ctx,
		`SELECT `+snapshotCols+` FROM snapshots WHERE restaurant_id=? AND week_start>=? AND week_start<=? ORDER BY week_start ASC`,
		restaurantID, start, end)
	if err != nil {
		return nil, err
	}
	switch format {
	case "json":
		return json.MarshalIndent(snaps, "", "  ")
	case "csv":
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		_ = w.Write([]string{"week_start", "impressions", "menu_views", "orders", "revenue_cents"})
		for _, s := range snaps {
			_ = w.Write([]string{
				s.WeekStart,
				strconv.FormatInt(s.Impressions, 10),
				strconv.FormatInt(s.MenuViews, 10),
				strconv.FormatInt(s.Orders, 10),
				strconv.FormatInt(s.RevenueCents, 10),
			})
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported export format %s", format)
	}
}
