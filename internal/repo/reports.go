package repo

import (
	"context"
	"database/sql"

	"bistroboard/internal/domain"
)

const reportCols = `id,restaurant_id,week_start,status,artifact_url,content_hash,channel,failure_reason,sent_at,created_at,updated_at`

func scanReport(row interface{ Scan(...any) error }) (domain.Report, error) {
	var rep domain.Report
	var artifactURL, contentHash, channel, failureReason, sentAt sql.NullString
	var status string
	err := row.Scan(&rep.ID, &rep.RestaurantID, &rep.WeekStart, &status, &artifactURL, &contentHash,
		&channel, &failureReason, &sentAt, &rep.CreatedAt, &rep.UpdatedAt)
	if err == sql.ErrNoRows {
		return rep, ErrNotFound
	}
	if err != nil {
		return rep, err
	}
	rep.Status = domain.ReportStatus(status)
	rep.ArtifactURL = strPtr(artifactURL)
	rep.ContentHash = strPtr(contentHash)
	rep.Channel = strPtr(channel)
	rep.FailureReason = strPtr(failureReason)
	rep.SentAt = strPtr(sentAt)
	return rep, nil
}

func (r Repo) InsertReport(ctx context.Context, rep domain.Report) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO reports(id,restaurant_id,week_start,status,created_at,updated_at) VALUES (?,?,?,?,?,?)`,
		rep.ID, rep.RestaurantID, rep.WeekStart, string(rep.Status), rep.CreatedAt, rep.UpdatedAt)
	return err
}

func (r Repo) GetReport(ctx context.Context, id string) (domain.Report, error) {
	return scanReport(r.DB.QueryRowContext(ctx, `SELECT `+reportCols+` FROM reports WHERE id=?`, id))
}

func (r Repo) GetReportByWeek(ctx context.Context, restaurantID, weekStart string) (domain.Report, error) {
	return scanReport(r.DB.QueryRowContext(ctx, `SELECT `+reportCols+` FROM reports WHERE restaurant_id=? AND week_start=?`, restaurantID, weekStart))
}

func (r Repo) ListReports(ctx context.Context, restaurantID string, f domain.ReportFilters) ([]domain.Report, error) {
	query := `SELECT ` + reportCols + ` FROM reports WHERE restaurant_id=?`
	args := []any{restaurantID}
	if f.Status != "" {
		query += ` AND status=?`
		args = append(args, string(f.Status))
	}
	query += ` ORDER BY week_start DESC`
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Report
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}

// TransitionReport persists a guarded status change.
func (r Repo) TransitionReport(ctx context.Context, rep domain.Report, from domain.ReportStatus) (domain.Report, error) {
	res, err := r.DB.ExecContext(ctx, `UPDATE reports SET status=?, artifact_url=?, content_hash=?, channel=?, failure_reason=?, sent_at=?, updated_at=?
WHERE id=? AND status=?`,
		string(rep.Status), nullablePtr(rep.ArtifactURL), nullablePtr(rep.ContentHash), nullablePtr(rep.Channel),
		nullablePtr(rep.FailureReason), nullablePtr(rep.SentAt), rep.UpdatedAt, rep.ID, string(from))
	if err != nil {
		return domain.Report{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.Report{}, r.checkTransition(ctx, "reports", rep.ID)
	}
	return r.GetReport(ctx, rep.ID)
}
