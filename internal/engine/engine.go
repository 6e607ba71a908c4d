package engine

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"ideavault/internal/domain"
	"ideavault/internal/events"
	"ideavault/internal/repo"
)

// ValidationError reports a request the engine refuses to store.
type ValidationError struct {
	Msg string
}

func (e ValidationError) Error() string { return e.Msg }

type Engine struct {
	DB     *sql.DB
	Repo   repo.Repo
	Events events.Writer
	Now    func() time.Time
}

func New(db *sql.DB) Engine {
	return Engine{
		DB:     db,
		Repo:   repo.Repo{DB: db},
		Events: events.Writer{},
		Now:    time.Now,
	}
}

func (e Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e Engine) writer() events.Writer {
	w := e.Events
	if w.Now == nil {
		w.Now = e.now
	}
	return w
}

// normalize trims the text fields, canonicalizes tags and status, and
// rejects records missing a title or description.
func normalize(idea domain.Idea) (domain.Idea, error) {
	idea.Title = strings.TrimSpace(idea.Title)
	idea.Description = strings.TrimSpace(idea.Description)
	idea.Category = strings.TrimSpace(idea.Category)
	idea.Priority = strings.TrimSpace(idea.Priority)
	if idea.Priority == "" {
		idea.Priority = domain.DefaultPriority
	}
	if missing := idea.MissingFields(); len(missing) > 0 {
		return idea, ValidationError{Msg: strings.Join(missing, " and ") + " required"}
	}
	status, err := domain.ParseStatus(string(idea.Status))
	if err != nil {
		return idea, ValidationError{Msg: err.Error()}
	}
	idea.Status = status
	idea.Tags = domain.NormalizeTags(idea.Tags)
	return idea, nil
}

// CreateIdea stores a new idea. A client-supplied id is kept; otherwise one
// is assigned. Missing timestamps and author are filled in.
func (e Engine) CreateIdea(ctx context.Context, idea domain.Idea, actorID string) (domain.Idea, error) {
	idea, err := normalize(idea)
	if err != nil {
		return domain.Idea{}, err
	}
	idea.ID = strings.TrimSpace(idea.ID)
	if idea.ID == "" {
		idea.ID = uuid.New().String()
	}
	now := e.now().UTC().Format(time.RFC3339)
	if idea.CreatedAt == "" {
		idea.CreatedAt = now
	}
	if idea.UpdatedAt == "" {
		idea.UpdatedAt = idea.CreatedAt
	}
	if idea.CreatedBy == "" {
		idea.CreatedBy = actorID
	}
	if idea.CreatedBy == "" {
		idea.CreatedBy = domain.AnonymousUser
	}
	if actorID == "" {
		actorID = idea.CreatedBy
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Idea{}, err
	}
	defer tx.Rollback()
	if err := e.Repo.InsertIdea(ctx, tx, idea); err != nil {
		return domain.Idea{}, err
	}
	if err := e.writer().Append(ctx, tx, events.IdeaCreated, idea.ID, actorID, events.Payload{
		"title":  idea.Title,
		"status": idea.Status,
	}); err != nil {
		return domain.Idea{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Idea{}, err
	}
	return idea, nil
}

func (e Engine) ListIdeas(ctx context.Context) ([]domain.Idea, error) {
	return e.Repo.ListIdeas(ctx)
}

func (e Engine) GetIdea(ctx context.Context, id string) (domain.Idea, error) {
	return e.Repo.GetIdea(ctx, id)
}

// UpdateIdea replaces the editable fields of an idea and bumps UpdatedAt.
// The id, creation time, and author never change.
func (e Engine) UpdateIdea(ctx context.Context, id string, patch domain.Idea, actorID string) (domain.Idea, error) {
	patch, err := normalize(patch)
	if err != nil {
		return domain.Idea{}, err
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Idea{}, err
	}
	defer tx.Rollback()
	existing, err := e.Repo.GetIdeaTx(ctx, tx, id)
	if err != nil {
		return domain.Idea{}, err
	}
	changed := diffFields(existing, patch)
	existing.Title = patch.Title
	existing.Description = patch.Description
	existing.Tags = patch.Tags
	existing.Status = patch.Status
	existing.Category = patch.Category
	existing.Priority = patch.Priority
	existing.UpdatedAt = e.now().UTC().Format(time.RFC3339)
	if err := e.Repo.UpdateIdea(ctx, tx, existing); err != nil {
		return domain.Idea{}, err
	}
	if err := e.writer().Append(ctx, tx, events.IdeaUpdated, id, actorOr(actorID), events.Payload{"changed": changed}); err != nil {
		return domain.Idea{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Idea{}, err
	}
	return existing, nil
}

// DeleteIdea removes an idea; its activity log is kept.
func (e Engine) DeleteIdea(ctx context.Context, id, actorID string) error {
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	existing, err := e.Repo.GetIdeaTx(ctx, tx, id)
	if err != nil {
		return err
	}
	if err := e.Repo.DeleteIdea(ctx, tx, id); err != nil {
		return err
	}
	if err := e.writer().Append(ctx, tx, events.IdeaDeleted, id, actorOr(actorID), events.Payload{"title": existing.Title}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("delete idea %s: %w", id, err)
	}
	return nil
}

// Activity returns the event log of an idea, including deleted ones.
func (e Engine) Activity(ctx context.Context, id string, limit int) ([]domain.Event, error) {
	return e.Repo.IdeaEvents(ctx, id, limit)
}

func diffFields(old, updated domain.Idea) []string {
	changed := []string{}
	if old.Title != updated.Title {
		changed = append(changed, "title")
	}
	if old.Description != updated.Description {
		changed = append(changed, "description")
	}
	if old.Tags.String() != updated.Tags.String() {
		changed = append(changed, "tags")
	}
	if old.Status != updated.Status {
		changed = append(changed, "status")
	}
	if old.Category != updated.Category {
		changed = append(changed, "category")
	}
	if old.Priority != updated.Priority {
		changed = append(changed, "priority")
	}
	return changed
}

func actorOr(actorID string) string {
	if actorID == "" {
		return domain.AnonymousUser
	}
	return actorID
}
