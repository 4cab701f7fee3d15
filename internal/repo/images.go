package repo

import (
	"context"
	"database/sql"

	"bistroboard/internal/domain"
)

const imageJobCols = `id,restaurant_id,catalog_item_id,mode,COALESCE(prompt,''),source_url,candidate_url,status,attempts,rejection_note,failure_reason,approved_by,approved_at,applied_at,created_at,updated_at`

func scanImageJob(row interface{ Scan(...any) error }) (domain.ImageJob, error) {
	var j domain.ImageJob
	var sourceURL, candidateURL, rejectionNote, failureReason, approvedBy, approvedAt, appliedAt sql.NullString
	var mode, status string
	err := row.Scan(&j.ID, &j.RestaurantID, &j.CatalogItemID, &mode, &j.Prompt, &sourceURL, &candidateURL,
		&status, &j.Attempts, &rejectionNote, &failureReason, &approvedBy, &approvedAt, &appliedAt,
		&j.CreatedAt, &j.UpdatedAt)
	if err == sql.ErrNoRows {
		return j, ErrNotFound
	}
	if err != nil {
		return j, err
	}
	j.Mode = domain.ImageMode(mode)
	j.Status = domain.ImageJobStatus(status)
	j.SourceURL = strPtr(sourceURL)
	j.CandidateURL = strPtr(candidateURL)
	j.RejectionNote = strPtr(rejectionNote)
	j.FailureReason = strPtr(failureReason)
	j.ApprovedBy = strPtr(approvedBy)
	j.ApprovedAt = strPtr(approvedAt)
	j.AppliedAt = strPtr(appliedAt)
	return j, nil
}

func (r Repo) InsertImageJob(ctx context.Context, j domain.ImageJob) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO image_jobs(id,restaurant_id,catalog_item_id,mode,prompt,source_url,candidate_url,status,attempts,created_at,updated_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		j.ID, j.RestaurantID, j.CatalogItemID, string(j.Mode), nullable(j.Prompt), nullablePtr(j.SourceURL),
		nullablePtr(j.CandidateURL), string(j.Status), j.Attempts, j.CreatedAt, j.UpdatedAt)
	return err
}

func (r Repo) GetImageJob(ctx context.Context, id string) (domain.ImageJob, error) {
	return scanImageJob(r.DB.QueryRowContext(ctx, `SELECT `+imageJobCols+` FROM image_jobs WHERE id=?`, id))
}

func (r Repo) ListImageJobs(ctx context.Context, restaurantID string, f domain.ImageJobFilters) ([]domain.ImageJob, error) {
	query := `SELECT ` + imageJobCols + ` FROM image_jobs WHERE restaurant_id=?`
	args := []any{restaurantID}
	if f.Status != "" {
		query += ` AND status=?`
		args = append(args, string(f.Status))
	}
	if f.Mode != "" {
		query += ` AND mode=?`
		args = append(args, string(f.Mode))
	}
	query += ` ORDER BY created_at DESC, id DESC`
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.ImageJob
	for rows.Next() {
		j, err := scanImageJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

// TransitionImageJob persists a guarded status change.
func (r Repo) TransitionImageJob(ctx context.Context, j domain.ImageJob, from domain.ImageJobStatus) (domain.ImageJob, error) {
	res, err := r.DB.ExecContext(ctx, `UPDATE image_jobs SET status=?, attempts=?, candidate_url=?, rejection_note=?, failure_reason=?, approved_by=?, approved_at=?, applied_at=?, updated_at=?
WHERE id=? AND status=?`,
		string(j.Status), j.Attempts, nullablePtr(j.CandidateURL), nullablePtr(j.RejectionNote), nullablePtr(j.FailureReason),
		nullablePtr(j.ApprovedBy), nullablePtr(j.ApprovedAt), nullablePtr(j.AppliedAt), j.UpdatedAt, j.ID, string(from))
	if err != nil {
		return domain.ImageJob{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ImageJob{}, r.checkTransition(ctx, "image_jobs", j.ID)
	}
	return r.GetImageJob(ctx, j.ID)
}

// --- catalog items ---

func (r Repo) UpsertCatalogItem(ctx context.Context, item domain.CatalogItem) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO catalog_items(id,restaurant_id,name,image_url,updated_at) VALUES (?,?,?,?,?)
ON CONFLICT(id) DO UPDATE SET name=excluded.name, image_url=excluded.image_url, updated_at=excluded.updated_at`,
		item.ID, item.RestaurantID, item.Name, nullablePtr(item.ImageURL), item.UpdatedAt)
	return err
}

func (r Repo) GetCatalogItem(ctx context.Context, id string) (domain.CatalogItem, error) {
	var item domain.CatalogItem
	var imageURL sql.NullString
	err := r.DB.QueryRowContext(ctx, `SELECT id,restaurant_id,name,image_url,updated_at FROM catalog_items WHERE id=?`, id).
		Scan(&item.ID, &item.RestaurantID, &item.Name, &imageURL, &item.UpdatedAt)
	if err == sql.ErrNoRows {
		return item, ErrNotFound
	}
	if err != nil {
		return item, err
	}
	item.ImageURL = strPtr(imageURL)
	return item, nil
}

// SetCatalogImage publishes an approved candidate onto the live catalog item.
func (r Repo) SetCatalogImage(ctx context.Context, itemID, imageURL, updatedAt string) (domain.CatalogItem, error) {
	res, err := r.DB.ExecContext(ctx, `UPDATE catalog_items SET image_url=?, updated_at=? WHERE id=?`, imageURL, updatedAt, itemID)
	if err != nil {
		return domain.CatalogItem{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.CatalogItem{}, ErrNotFound
	}
	return r.GetCatalogItem(ctx, itemID)
}

func (r Repo) ListCatalogItems(ctx context.Context, restaurantID string) ([]domain.CatalogItem, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id,restaurant_id,name,image_url,updated_at FROM catalog_items WHERE restaurant_id=? ORDER BY name ASC`, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.CatalogItem
	for rows.Next() {
		var item domain.CatalogItem
		var imageURL sql.NullString
		if err := rows.Scan(&item.ID, &item.RestaurantID, &item.Name, &imageURL, &item.UpdatedAt); err != nil {
			return nil, err
		}
		item.ImageURL = strPtr(imageURL)
		out = append(out, item)
	}
	return out, rows.Err()
}
