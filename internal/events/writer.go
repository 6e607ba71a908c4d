package events

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

const (
	IdeaCreated = "idea.created"
	IdeaUpdated = "idea.updated"
	IdeaDeleted = "idea.deleted"
)

type Writer struct {
	Now func() time.Time
}

type Payload map[string]any

// Append records an idea event inside tx.
func (w Writer) Append(ctx context.Context, tx *sql.Tx, evtType, ideaID, actorID string, payload Payload) error {
	now := w.Now
	if now == nil {
		now = time.Now
	}
	ts := now().UTC().Format(time.RFC3339)
	if payload == nil {
		payload = Payload{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO events(ts,type,idea_id,actor_id,payload_json) VALUES (?,?,?,?,?)`,
		ts, evtType, ideaID, actorID, string(data))
	return err
}
