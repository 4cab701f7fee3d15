package repo

import (
	"context"
	"database/sql"

	"bistroboard/internal/domain"
)

const reviewCols = `id,restaurant_id,COALESCE(author,''),rating,COALESCE(text,''),reply_text,replied_by,replied_at,created_at`

func scanReview(row interface{ Scan(...any) error }) (domain.Review, error) {
	var rv domain.Review
	var replyText, repliedBy, repliedAt sql.NullString
	err := row.Scan(&rv.ID, &rv.RestaurantID, &rv.Author, &rv.Rating, &rv.Text, &replyText, &repliedBy, &repliedAt, &rv.CreatedAt)
	if err == sql.ErrNoRows {
		return rv, ErrNotFound
	}
	if err != nil {
		return rv, err
	}
	rv.ReplyText = strPtr(replyText)
	rv.RepliedBy = strPtr(repliedBy)
	rv.RepliedAt = strPtr(repliedAt)
	return rv, nil
}

func (r Repo) InsertReview(ctx context.Context, rv domain.Review) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO reviews(id,restaurant_id,author,rating,text,created_at) VALUES (?,?,?,?,?,?)`,
		rv.ID, rv.RestaurantID, nullable(rv.Author), rv.Rating, nullable(rv.Text), rv.CreatedAt)
	return err
}

func (r Repo) GetReview(ctx context.Context, id string) (domain.Review, error) {
	return scanReview(r.DB.QueryRowContext(ctx, `SELECT `+reviewCols+` FROM reviews WHERE id=?`, id))
}

func (r Repo) ListReviews(ctx context.Context, restaurantID string, unansweredOnly bool) ([]domain.Review, error) {
	query := `SELECT ` + reviewCols + ` FROM reviews WHERE restaurant_id=?`
	if unansweredOnly {
		query += ` AND reply_text IS NULL`
	}
	query += ` ORDER BY created_at DESC, id DESC`
	rows, err := r.DB.QueryContext(ctx, query, restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Review
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

// SetReviewReply records a reply only if none exists yet.
func (r Repo) SetReviewReply(ctx context.Context, id, replyText, repliedBy, repliedAt string) (domain.Review, error) {
	res, err := r.DB.ExecContext(ctx, `UPDATE reviews SET reply_text=?, replied_by=?, replied_at=? WHERE id=? AND reply_text IS NULL`,
		replyText, repliedBy, repliedAt, id)
	if err != nil {
		return domain.Review{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.Review{}, r.checkTransition(ctx, "reviews", id)
	}
	return r.GetReview(ctx, id)
}
