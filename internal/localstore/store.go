// Package localstore keeps ideas in the workspace database when the API is
// not used. The collection lives under a single key as a JSON array and is
// never synchronized with a server.
package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"ideavault/internal/domain"
	"ideavault/internal/repo"
)

// IdeasKey is the kv key holding the idea collection.
const IdeasKey = "ideas"

// ErrNotFound is returned when deleting an id that is not stored.
var ErrNotFound = errors.New("idea not found in local store")

type Store struct {
	Repo repo.Repo
}

func New(r repo.Repo) *Store {
	return &Store{Repo: r}
}

// List returns the stored ideas in insertion order. A missing key is an
// empty collection.
func (s *Store) List(ctx context.Context) ([]domain.Idea, error) {
	raw, err := s.Repo.GetValue(ctx, IdeasKey)
	if errors.Is(err, repo.ErrNotFound) {
		return []domain.Idea{}, nil
	}
	if err != nil {
		return nil, err
	}
	var ideas []domain.Idea
	if err := json.Unmarshal([]byte(raw), &ideas); err != nil {
		return nil, fmt.Errorf("decode local ideas: %w", err)
	}
	if ideas == nil {
		ideas = []domain.Idea{}
	}
	return ideas, nil
}

// Create appends idea to the collection. Ids are assigned by the caller.
func (s *Store) Create(ctx context.Context, idea domain.Idea) (domain.Idea, error) {
	if missing := idea.MissingFields(); len(missing) > 0 {
		return domain.Idea{}, fmt.Errorf("local store: missing %v", missing)
	}
	ideas, err := s.List(ctx)
	if err != nil {
		return domain.Idea{}, err
	}
	for _, existing := range ideas {
		if existing.ID == idea.ID {
			return domain.Idea{}, fmt.Errorf("idea %s: %w", idea.ID, repo.ErrConflict)
		}
	}
	idea.Tags = domain.NormalizeTags(idea.Tags)
	if err := s.save(ctx, append(ideas, idea)); err != nil {
		return domain.Idea{}, err
	}
	return idea, nil
}

// Delete removes the idea with id.
func (s *Store) Delete(ctx context.Context, id string) error {
	ideas, err := s.List(ctx)
	if err != nil {
		return err
	}
	kept := ideas[:0]
	found := false
	for _, idea := range ideas {
		if idea.ID == id {
			found = true
			continue
		}
		kept = append(kept, idea)
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.save(ctx, kept)
}

func (s *Store) save(ctx context.Context, ideas []domain.Idea) error {
	data, err := json.Marshal(ideas)
	if err != nil {
		return err
	}
	return s.Repo.PutValue(ctx, IdeasKey, string(data))
}
