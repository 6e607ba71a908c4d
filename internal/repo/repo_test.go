package repo_test

import (
	"context"
	"errors"
	"testing"

	"ideavault/internal/db"
	"ideavault/internal/domain"
	"ideavault/internal/migrate"
	"ideavault/internal/repo"
)

func newRepo(t *testing.T) repo.Repo {
	t.Helper()
	conn, err := db.Open(db.Config{Workspace: t.TempDir()})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if _, err := migrate.Migrate(context.Background(), conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return repo.Repo{DB: conn}
}

func TestKeyValueRoundTrip(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	if _, err := r.GetValue(ctx, "ideas"); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := r.PutValue(ctx, "ideas", "[]"); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := r.PutValue(ctx, "ideas", `[{"id":"1"}]`); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, err := r.GetValue(ctx, "ideas")
	if err != nil || got != `[{"id":"1"}]` {
		t.Fatalf("unexpected value %q err=%v", got, err)
	}
	if err := r.DeleteValue(ctx, "ideas"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := r.GetValue(ctx, "ideas"); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestInsertKeepsTagsAndOrder(t *testing.T) {
	r := newRepo(t)
	ctx := context.Background()
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, id := range []string{"z", "y"} {
		idea := domain.Idea{ID: id, Title: "T", Description: "D", Status: domain.StatusDraft, Tags: domain.Tags{"a", " ", "b"}}
		if err := r.InsertIdea(ctx, tx, idea); err != nil {
			t.Fatalf("insert %s: %v", id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		t.Fatal(err)
	}
	ideas, err := r.ListIdeas(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ideas) != 2 || ideas[0].ID != "z" || ideas[1].ID != "y" {
		t.Fatalf("unexpected order %+v", ideas)
	}
	if len(ideas[0].Tags) != 2 || ideas[0].Tags[1] != "b" {
		t.Fatalf("unexpected tags %#v", ideas[0].Tags)
	}
	if _, err := r.GetIdea(ctx, "missing"); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
