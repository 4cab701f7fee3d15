package repo

import (
	"context"
	"database/sql"

	"bistroboard/internal/domain"
)

const actionCols = `id,restaurant_id,report_id,week_start,title,type,COALESCE(target,''),status,evidence,discard_reason,done_by,done_at,discarded_by,discarded_at,created_at,updated_at`

func scanAction(row interface{ Scan(...any) error }) (domain.Action, error) {
	var a domain.Action
	var reportID, weekStart, evidence, discardReason, doneBy, doneAt, discardedBy, discardedAt sql.NullString
	var status string
	err := row.Scan(&a.ID, &a.RestaurantID, &reportID, &weekStart, &a.Title, &a.Type, &a.Target, &status,
		&evidence, &discardReason, &doneBy, &doneAt, &discardedBy, &discardedAt, &a.CreatedAt, &a.UpdatedAt)
	if err == sql.ErrNoRows {
		return a, ErrNotFound
	}
	if err != nil {
		return a, err
	}
	a.Status = domain.ActionStatus(status)
	a.ReportID = strPtr(reportID)
	a.WeekStart = strPtr(weekStart)
	a.Evidence = strPtr(evidence)
	a.DiscardReason = strPtr(discardReason)
	a.DoneBy = strPtr(doneBy)
	a.DoneAt = strPtr(doneAt)
	a.DiscardedBy = strPtr(discardedBy)
	a.DiscardedAt = strPtr(discardedAt)
	return a, nil
}

func (r Repo) InsertAction(ctx context.Context, a domain.Action) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO actions(id,restaurant_id,report_id,week_start,title,type,target,status,created_at,updated_at)
VALUES (?,?,?,?,?,?,?,?,?,?)`,
		a.ID, a.RestaurantID, nullablePtr(a.ReportID), nullablePtr(a.WeekStart), a.Title, a.Type, nullable(a.Target),
		string(a.Status), a.CreatedAt, a.UpdatedAt)
	return err
}

func (r Repo) GetAction(ctx context.Context, id string) (domain.Action, error) {
	return scanAction(r.DB.QueryRowContext(ctx, `SELECT `+actionCols+` FROM actions WHERE id=?`, id))
}

func (r Repo) ListActions(ctx context.Context, restaurantID string, f domain.ActionFilters) ([]domain.Action, error) {
	query := `SELECT ` + actionCols + ` FROM actions WHERE restaurant_id=?`
	args := []any{restaurantID}
	if f.Status != "" {
		query += ` AND status=?`
		args = append(args, string(f.Status))
	}
	if f.ReportID != "" {
		query += ` AND report_id=?`
		args = append(args, f.ReportID)
	}
	query += ` ORDER BY created_at DESC, id DESC`
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Action
	for rows.Next() {
		a, err := scanAction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// TransitionAction persists a guarded status change. from is the status the
// caller saw when the guard passed.
func (r Repo) TransitionAction(ctx context.Context, a domain.Action, from domain.ActionStatus) (domain.Action, error) {
	res, err := r.DB.ExecContext(ctx, `UPDATE actions SET status=?, evidence=?, discard_reason=?, done_by=?, done_at=?, discarded_by=?, discarded_at=?, updated_at=?
WHERE id=? AND status=?`,
		string(a.Status), nullablePtr(a.Evidence), nullablePtr(a.DiscardReason), nullablePtr(a.DoneBy), nullablePtr(a.DoneAt),
		nullablePtr(a.DiscardedBy), nullablePtr(a.DiscardedAt), a.UpdatedAt, a.ID, string(from))
	if err != nil {
		return domain.Action{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.Action{}, r.checkTransition(ctx, "actions", a.ID)
	}
	return r.GetAction(ctx, a.ID)
}
