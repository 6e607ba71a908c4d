package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"ideavault/internal/domain"
)

type Repo struct {
	DB *sql.DB
}

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("already exists")
)

const ideaColumns = `id,title,description,tags_json,priority,status,category,created_at,updated_at,created_by`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIdea(row rowScanner) (domain.Idea, error) {
	var (
		idea     domain.Idea
		tagsJSON string
		status   string
	)
	err := row.Scan(&idea.ID, &idea.Title, &idea.Description, &tagsJSON, &idea.Priority, &status,
		&idea.Category, &idea.CreatedAt, &idea.UpdatedAt, &idea.CreatedBy)
	if errors.Is(err, sql.ErrNoRows) {
		return idea, ErrNotFound
	}
	if err != nil {
		return idea, err
	}
	idea.Status = domain.Status(status)
	if err := json.Unmarshal([]byte(tagsJSON), &idea.Tags); err != nil {
		return idea, fmt.Errorf("decode tags of %s: %w", idea.ID, err)
	}
	return idea, nil
}

func marshalTags(tags domain.Tags) (string, error) {
	b, err := json.Marshal(domain.NormalizeTags(tags))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// InsertIdea stores a new idea after every existing one.
func (r Repo) InsertIdea(ctx context.Context, tx *sql.Tx, idea domain.Idea) error {
	tags, err := marshalTags(idea.Tags)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `INSERT INTO ideas(`+ideaColumns+`,seq)
SELECT ?,?,?,?,?,?,?,?,?,?,COALESCE(MAX(seq),0)+1 FROM ideas`,
		idea.ID, idea.Title, idea.Description, tags, idea.Priority, string(idea.Status),
		idea.Category, idea.CreatedAt, idea.UpdatedAt, idea.CreatedBy)
	if err != nil && isUniqueViolation(err) {
		return fmt.Errorf("idea %s: %w", idea.ID, ErrConflict)
	}
	return err
}

func (r Repo) GetIdea(ctx context.Context, id string) (domain.Idea, error) {
	return scanIdea(r.DB.QueryRowContext(ctx, `SELECT `+ideaColumns+` FROM ideas WHERE id=?`, id))
}

func (r Repo) GetIdeaTx(ctx context.Context, tx *sql.Tx, id string) (domain.Idea, error) {
	return scanIdea(tx.QueryRowContext(ctx, `SELECT `+ideaColumns+` FROM ideas WHERE id=?`, id))
}

// ListIdeas returns every idea in insertion order.
func (r Repo) ListIdeas(ctx context.Context) ([]domain.Idea, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+ideaColumns+` FROM ideas ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []domain.Idea{}
	for rows.Next() {
		idea, err := scanIdea(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, idea)
	}
	return res, rows.Err()
}

// UpdateIdea rewrites the mutable columns of an existing idea.
func (r Repo) UpdateIdea(ctx context.Context, tx *sql.Tx, idea domain.Idea) error {
	tags, err := marshalTags(idea.Tags)
	if err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `UPDATE ideas SET title=?,description=?,tags_json=?,priority=?,status=?,category=?,updated_at=? WHERE id=?`,
		idea.Title, idea.Description, tags, idea.Priority, string(idea.Status), idea.Category, idea.UpdatedAt, idea.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r Repo) DeleteIdea(ctx context.Context, tx *sql.Tx, id string) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM ideas WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// IdeaEvents returns the activity of an idea, oldest first.
func (r Repo) IdeaEvents(ctx context.Context, ideaID string, limit int) ([]domain.Event, error) {
	query := `SELECT id,ts,type,idea_id,actor_id,payload_json FROM events WHERE idea_id=? ORDER BY id`
	args := []any{ideaID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []domain.Event{}
	for rows.Next() {
		var e domain.Event
		if err := rows.Scan(&e.ID, &e.TS, &e.Type, &e.IdeaID, &e.ActorID, &e.Payload); err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, rows.Err()
}

// GetValue reads a key of the local key-value table.
func (r Repo) GetValue(ctx context.Context, key string) (string, error) {
	var v string
	err := r.DB.QueryRowContext(ctx, `SELECT value FROM kv WHERE key=?`, key).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	return v, err
}

func (r Repo) PutValue(ctx context.Context, key, value string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := r.DB.ExecContext(ctx, `INSERT INTO kv(key,value,updated_at) VALUES (?,?,?)
ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at`, key, value, now)
	return err
}

func (r Repo) DeleteValue(ctx context.Context, key string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM kv WHERE key=?`, key)
	return err
}

func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "constraint failed: ideas.id")
}
