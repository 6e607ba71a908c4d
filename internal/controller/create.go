package controller

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"ideavault/internal/domain"
	ideavaultsdk "ideavault/sdk/go"
)

// Draft is the editable state of the idea form. Tags is the raw
// comma-delimited text as typed.
type Draft struct {
	Title       string
	Description string
	Tags        string
	Category    string
	Priority    string
	Status      domain.Status
}

// NewDraft returns an empty form with default priority and status.
func NewDraft() Draft {
	return Draft{Priority: domain.DefaultPriority, Status: domain.StatusDraft}
}

// Preview is the read-only projection of a draft shown next to the form.
type Preview struct {
	Title       string
	Description string
	Tags        domain.Tags
	Priority    string
}

// Create owns the idea form and submits it.
type Create struct {
	Draft Draft

	store    IdeaCreator
	notifier Notifier
	log      zerolog.Logger

	// User names the idea author; it defaults to domain.AnonymousUser.
	User  func() string
	Now   func() time.Time
	NewID func() string
}

func NewCreate(store IdeaCreator, notifier Notifier, log zerolog.Logger) *Create {
	return &Create{
		Draft:    NewDraft(),
		store:    store,
		notifier: notifier,
		log:      log,
		User:     func() string { return domain.AnonymousUser },
		Now:      time.Now,
		NewID:    func() string { return uuid.New().String() },
	}
}

// Preview projects the current draft.
func (c *Create) Preview() Preview {
	return Preview{
		Title:       c.Draft.Title,
		Description: c.Draft.Description,
		Tags:        domain.ParseTags(c.Draft.Tags),
		Priority:    c.Draft.Priority,
	}
}

// Reset restores an empty draft.
func (c *Create) Reset() { c.Draft = NewDraft() }

// Submit validates the draft and creates the idea through the store. Blank
// title or description is reported without touching the store. On any
// failure the draft is kept so the user can retry.
func (c *Create) Submit(ctx context.Context) (domain.Idea, error) {
	created, err := c.Send(ctx, c.Draft)
	if err != nil {
		return domain.Idea{}, err
	}
	c.Reset()
	return created, nil
}

// Send validates draft and creates it through the store. It leaves c.Draft
// alone; callers reset the form once the idea is created.
func (c *Create) Send(ctx context.Context, draft Draft) (domain.Idea, error) {
	idea := c.assemble(draft)
	if missing := idea.MissingFields(); len(missing) > 0 {
		err := &ideavaultsdk.ValidationError{Fields: missing}
		c.log.Warn().Strs("fields", missing).Msg("idea form incomplete")
		notify(c.notifier, LevelError, "Validation Error", "Title and Description are required fields.")
		return domain.Idea{}, err
	}
	created, err := c.store.Create(ctx, idea)
	if err != nil {
		c.log.Error().Err(err).Str("idea_id", idea.ID).Msg("error creating idea")
		var ve *ideavaultsdk.ValidationError
		if errors.As(err, &ve) {
			notify(c.notifier, LevelError, "Validation Error", ve.Error())
		} else {
			notify(c.notifier, LevelError, "Error", "Failed to create idea. Please try again.")
		}
		return domain.Idea{}, err
	}
	c.log.Info().Str("idea_id", created.ID).Msg("idea created")
	notify(c.notifier, LevelSuccess, "Success!", "Your idea has been created on the server.")
	return created, nil
}

func (c *Create) assemble(draft Draft) domain.Idea {
	now := c.Now().UTC().Format(time.RFC3339)
	status := draft.Status
	if status == "" {
		status = domain.StatusDraft
	}
	priority := strings.TrimSpace(draft.Priority)
	if priority == "" {
		priority = domain.DefaultPriority
	}
	user := ""
	if c.User != nil {
		user = c.User()
	}
	if user == "" {
		user = domain.AnonymousUser
	}
	return domain.Idea{
		ID:          c.NewID(),
		Title:       strings.TrimSpace(draft.Title),
		Description: strings.TrimSpace(draft.Description),
		Tags:        domain.ParseTags(draft.Tags),
		Priority:    priority,
		Status:      status,
		Category:    strings.TrimSpace(draft.Category),
		CreatedAt:   now,
		UpdatedAt:   now,
		CreatedBy:   user,
	}
}
