package controller

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"ideavault/internal/domain"
)

// Category narrows the visible list by status.
type Category string

// CategoryAll disables status filtering.
const CategoryAll Category = "All Ideas"

// Categories returns the selectable categories in display order.
func Categories() []Category {
	return []Category{
		CategoryAll,
		Category(domain.StatusInProgress),
		Category(domain.StatusCompleted),
		Category(domain.StatusArchived),
		Category(domain.StatusDraft),
	}
}

// ParseCategory matches raw against Categories ignoring case; "all" and ""
// select CategoryAll.
func ParseCategory(raw string) (Category, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.EqualFold(raw, "all") {
		return CategoryAll, nil
	}
	for _, c := range Categories() {
		if strings.EqualFold(raw, string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", raw)
}

// List owns the fetched idea collection and the active filters.
type List struct {
	store    IdeaLister
	log      zerolog.Logger
	ideas    []domain.Idea
	filter   string
	category Category
}

func NewList(store IdeaLister, log zerolog.Logger) *List {
	return &List{store: store, log: log, category: CategoryAll}
}

// Load replaces the collection with a fresh fetch. On failure the collection
// is left empty and the error is logged and returned.
func (l *List) Load(ctx context.Context) error {
	ideas, err := l.Fetch(ctx)
	l.Replace(ideas)
	return err
}

// Fetch reads the collection from the store without touching the list state,
// so it may run off the goroutine that owns the List.
func (l *List) Fetch(ctx context.Context) ([]domain.Idea, error) {
	ideas, err := l.store.List(ctx)
	if err != nil {
		l.log.Error().Err(err).Msg("failed to fetch ideas")
		return nil, fmt.Errorf("fetch ideas: %w", err)
	}
	l.log.Debug().Int("count", len(ideas)).Msg("fetched ideas")
	return ideas, nil
}

// Replace swaps in a fetched collection.
func (l *List) Replace(ideas []domain.Idea) { l.ideas = ideas }

func (l *List) SetFilter(filter string) { l.filter = filter }

func (l *List) Filter() string { return l.filter }

func (l *List) SetCategory(c Category) error {
	for _, known := range Categories() {
		if c == known {
			l.category = c
			return nil
		}
	}
	return fmt.Errorf("unknown category %q", c)
}

func (l *List) Category() Category { return l.category }

// Ideas returns the whole fetched collection.
func (l *List) Ideas() []domain.Idea {
	return append([]domain.Idea(nil), l.ideas...)
}

// Visible returns the ideas matching the active category and whose title
// contains the filter text, case-insensitively, in fetch order.
func (l *List) Visible() []domain.Idea {
	needle := strings.ToLower(l.filter)
	out := []domain.Idea{}
	for _, idea := range l.ideas {
		if l.category != CategoryAll && string(idea.Status) != string(l.category) {
			continue
		}
		if !strings.Contains(strings.ToLower(idea.Title), needle) {
			continue
		}
		out = append(out, idea)
	}
	return out
}
