package repo

import (
	"context"
	"database/sql"

	"bistroboard/internal/domain"
)

const ticketCols = `id,restaurant_id,COALESCE(customer_name,''),subject,status,resolved_at,closed_at,created_at,updated_at`

func scanTicket(row interface{ Scan(...any) error }) (domain.Ticket, error) {
	var t domain.Ticket
	var resolvedAt, closedAt sql.NullString
	var status string
	err := row.Scan(&t.ID, &t.RestaurantID, &t.CustomerName, &t.Subject, &status, &resolvedAt, &closedAt, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return t, ErrNotFound
	}
	if err != nil {
		return t, err
	}
	t.Status = domain.TicketStatus(status)
	t.ResolvedAt = strPtr(resolvedAt)
	t.ClosedAt = strPtr(closedAt)
	return t, nil
}

func (r Repo) InsertTicket(ctx context.Context, t domain.Ticket) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO tickets(id,restaurant_id,customer_name,subject,status,created_at,updated_at) VALUES (?,?,?,?,?,?,?)`,
		t.ID, t.RestaurantID, nullable(t.CustomerName), t.Subject, string(t.Status), t.CreatedAt, t.UpdatedAt)
	return err
}

func (r Repo) GetTicket(ctx context.Context, id string) (domain.Ticket, error) {
	return scanTicket(r.DB.QueryRowContext(ctx, `SELECT `+ticketCols+` FROM tickets WHERE id=?`, id))
}

func (r Repo) ListTickets(ctx context.Context, restaurantID string, f domain.TicketFilters) ([]domain.Ticket, error) {
	query := `SELECT ` + ticketCols + ` FROM tickets WHERE restaurant_id=?`
	args := []any{restaurantID}
	if f.Status != "" {
		query += ` AND status=?`
		args = append(args, string(f.Status))
	}
	query += ` ORDER BY created_at DESC, id DESC`
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// TransitionTicket persists a guarded status change.
func (r Repo) TransitionTicket(ctx context.Context, t domain.Ticket, from domain.TicketStatus) (domain.Ticket, error) {
	res, err := r.DB.ExecContext(ctx, `UPDATE tickets SET status=?, resolved_at=?, closed_at=?, updated_at=? WHERE id=? AND status=?`,
		string(t.Status), nullablePtr(t.ResolvedAt), nullablePtr(t.ClosedAt), t.UpdatedAt, t.ID, string(from))
	if err != nil {
		return domain.Ticket{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.Ticket{}, r.checkTransition(ctx, "tickets", t.ID)
	}
	return r.GetTicket(ctx, t.ID)
}

func (r Repo) InsertTicketMessage(ctx context.Context, m domain.TicketMessage) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO ticket_messages(id,ticket_id,author_kind,body,created_at) VALUES (?,?,?,?,?)`,
		m.ID, m.TicketID, m.AuthorKind, m.Body, m.CreatedAt)
	return err
}

func (r Repo) ListTicketMessages(ctx context.Context, ticketID string) ([]domain.TicketMessage, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id,ticket_id,author_kind,body,created_at FROM ticket_messages WHERE ticket_id=? ORDER BY created_at ASC, id ASC`, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.TicketMessage
	for rows.Next() {
		var m domain.TicketMessage
		if err := rows.Scan(&m.ID, &m.TicketID, &m.AuthorKind, &m.Body, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
