package controller

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"ideavault/internal/domain"
	ideavaultsdk "ideavault/sdk/go"
)

const (
	DefaultKeyFocusAreas  = "Cost-efficiency and high engagement"
	DefaultTargetAudience = "Young adults aged 18-30"
)

var (
	ErrNoSelection       = errors.New("no idea selected")
	ErrAssistUnavailable = errors.New("assistance is not available")
)

// AssistParams are the auxiliary parameters of an assistance request. Blank
// fields fall back to the controller defaults.
type AssistParams struct {
	KeyFocusAreas  string
	TargetAudience string
}

// Detail owns the currently selected idea.
type Detail struct {
	deleter  IdeaDeleter
	planner  Planner
	notifier Notifier
	log      zerolog.Logger

	// Defaults fills blank AssistParams fields.
	Defaults AssistParams

	selected *domain.Idea
}

// NewDetail builds a detail controller. planner may be nil when no
// assistance endpoint is reachable.
func NewDetail(deleter IdeaDeleter, planner Planner, notifier Notifier, log zerolog.Logger) *Detail {
	return &Detail{
		deleter:  deleter,
		planner:  planner,
		notifier: notifier,
		log:      log,
		Defaults: AssistParams{KeyFocusAreas: DefaultKeyFocusAreas, TargetAudience: DefaultTargetAudience},
	}
}

func (d *Detail) Select(idea domain.Idea) {
	d.selected = &idea
}

func (d *Detail) Selected() (domain.Idea, bool) {
	if d.selected == nil {
		return domain.Idea{}, false
	}
	return *d.selected, true
}

func (d *Detail) Close() {
	d.selected = nil
}

// Tags returns the tags of the selection, or none.
func (d *Detail) Tags() domain.Tags {
	if d.selected == nil {
		return nil
	}
	return append(domain.Tags(nil), d.selected.Tags...)
}

// Delete removes the selected idea. The selection is cleared only when the
// store confirms the delete.
func (d *Detail) Delete(ctx context.Context) error {
	if d.selected == nil {
		d.log.Warn().Msg("delete requested without a selected idea")
		return ErrNoSelection
	}
	if err := d.Remove(ctx, *d.selected); err != nil {
		return err
	}
	d.Close()
	return nil
}

// Remove deletes idea through the store and reports the outcome. The
// selection is not touched.
func (d *Detail) Remove(ctx context.Context, idea domain.Idea) error {
	if err := d.deleter.Delete(ctx, idea.ID); err != nil {
		d.log.Error().Err(err).Str("idea_id", idea.ID).Msg("error deleting idea")
		notify(d.notifier, LevelError, "Error", "Error deleting idea")
		return err
	}
	d.log.Info().Str("idea_id", idea.ID).Msg("idea deleted")
	notify(d.notifier, LevelSuccess, "Deleted", "Idea deleted successfully")
	return nil
}

// RequestAssist asks the planner for an implementation plan of the selected
// idea and returns the plain-text answer.
func (d *Detail) RequestAssist(ctx context.Context, params AssistParams) (string, error) {
	if d.selected == nil {
		d.log.Warn().Msg("assist requested without a selected idea")
		return "", ErrNoSelection
	}
	return d.Assist(ctx, *d.selected, params)
}

// Assist requests a plan for idea. An empty category is sent as is.
func (d *Detail) Assist(ctx context.Context, idea domain.Idea, params AssistParams) (string, error) {
	if d.planner == nil {
		d.log.Error().Err(ErrAssistUnavailable).Str("idea_id", idea.ID).Msg("error generating AI help")
		notify(d.notifier, LevelError, "Error", "Error generating AI help")
		return "", ErrAssistUnavailable
	}
	if params.KeyFocusAreas == "" {
		params.KeyFocusAreas = d.Defaults.KeyFocusAreas
	}
	if params.TargetAudience == "" {
		params.TargetAudience = d.Defaults.TargetAudience
	}
	text, err := d.planner.Plan(ctx, ideavaultsdk.PlanRequest{
		Domain:               idea.Category,
		BriefIdeaDescription: idea.Description,
		KeyFocusAreas:        params.KeyFocusAreas,
		TargetAudienceUsers:  params.TargetAudience,
	})
	if err != nil {
		d.log.Error().Err(err).Str("idea_id", idea.ID).Msg("error generating AI help")
		notify(d.notifier, LevelError, "Error", "Error generating AI help")
		return "", err
	}
	return text, nil
}
