package events

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

type Payload map[string]any

// Entry is one audit record.
type Entry struct {
	Type         string
	RestaurantID string
	EntityKind   string
	EntityID     string
	ActorID      string
	Payload      Payload
}

// Writer appends audit events to the events table.
type Writer struct {
	DB  *sql.DB
	Now func() time.Time
}

func (w Writer) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now()
}

// Record appends an entry in its own statement.
func (w Writer) Record(ctx context.Context, e Entry) error {
	return w.insert(ctx, w.DB.ExecContext, e)
}

// AppendTx appends an entry inside an open transaction.
func (w Writer) AppendTx(ctx context.Context, tx *sql.Tx, e Entry) error {
	return w.insert(ctx, tx.ExecContext, e)
}

type execFunc func(ctx context.Context, query string, args ...any) (sql.Result, error)

func (w Writer) insert(ctx context.Context, exec execFunc, e Entry) error {
	ts := w.now().UTC().Format(time.RFC3339)
	if e.Payload == nil {
		e.Payload = Payload{}
	}
	data, err := json.Marshal(e.Payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}
	_, err = exec(ctx, `INSERT INTO events(ts,type,restaurant_id,entity_kind,entity_id,actor_id,payload_json) VALUES (?,?,?,?,?,?,?)`,
		ts, e.Type, nullable(e.RestaurantID), e.EntityKind, nullable(e.EntityID), e.ActorID, string(data))
	return err
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}
