package controller

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"ideavault/internal/domain"
	ideavaultsdk "ideavault/sdk/go"
)

type fakeStore struct {
	ideas     []domain.Idea
	listErr   error
	createErr error
	deleteErr error
	created   []domain.Idea
	deleted   []string
	listCalls int
}

func (f *fakeStore) List(ctx context.Context) ([]domain.Idea, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]domain.Idea(nil), f.ideas...), nil
}

func (f *fakeStore) Create(ctx context.Context, idea domain.Idea) (domain.Idea, error) {
	if f.createErr != nil {
		return domain.Idea{}, f.createErr
	}
	f.created = append(f.created, idea)
	f.ideas = append(f.ideas, idea)
	return idea, nil
}

func (f *fakeStore) Delete(ctx context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	for i, idea := range f.ideas {
		if idea.ID == id {
			f.ideas = append(f.ideas[:i], f.ideas[i+1:]...)
			break
		}
	}
	return nil
}

type fakePlanner struct {
	req  ideavaultsdk.PlanRequest
	text string
	err  error
}

func (f *fakePlanner) Plan(ctx context.Context, req ideavaultsdk.PlanRequest) (string, error) {
	f.req = req
	return f.text, f.err
}

func sampleIdeas() []domain.Idea {
	return []domain.Idea{
		{ID: "1", Title: "Mobile App", Status: domain.StatusCompleted},
		{ID: "2", Title: "Web portal", Status: domain.StatusInProgress},
		{ID: "3", Title: "Happy path", Status: domain.StatusCompleted},
		{ID: "4", Title: "Shelved apple idea", Status: domain.StatusArchived},
		{ID: "5", Title: "Rough draft", Status: domain.StatusDraft},
	}
}

func ids(ideas []domain.Idea) []string {
	out := []string{}
	for _, i := range ideas {
		out = append(out, i.ID)
	}
	return out
}

func TestVisibleAllIdeasKeepsOrder(t *testing.T) {
	store := &fakeStore{ideas: sampleIdeas()}
	l := NewList(store, zerolog.Nop())
	if err := l.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	got := ids(l.Visible())
	want := []string{"1", "2", "3", "4", "5"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestVisibleCategoryAndFilter(t *testing.T) {
	l := NewList(&fakeStore{ideas: sampleIdeas()}, zerolog.Nop())
	_ = l.Load(context.Background())
	if err := l.SetCategory(Category(domain.StatusCompleted)); err != nil {
		t.Fatalf("set category: %v", err)
	}
	l.SetFilter("app")
	got := ids(l.Visible())
	if !reflect.DeepEqual(got, []string{"1", "3"}) {
		t.Fatalf("got %v", got)
	}
	if err := l.SetCategory(Category(domain.StatusArchived)); err != nil {
		t.Fatalf("set category: %v", err)
	}
	if got := ids(l.Visible()); !reflect.DeepEqual(got, []string{"4"}) {
		t.Fatalf("archived: got %v", got)
	}
}

func TestCategorySwitchScenario(t *testing.T) {
	l := NewList(&fakeStore{ideas: []domain.Idea{{ID: "1", Title: "Foo", Status: domain.StatusDraft}}}, zerolog.Nop())
	_ = l.Load(context.Background())
	_ = l.SetCategory("Completed")
	if got := l.Visible(); len(got) != 0 {
		t.Fatalf("expected empty list, got %v", got)
	}
	_ = l.SetCategory(CategoryAll)
	if got := ids(l.Visible()); !reflect.DeepEqual(got, []string{"1"}) {
		t.Fatalf("got %v", got)
	}
}

func TestSetCategoryRejectsUnknown(t *testing.T) {
	l := NewList(&fakeStore{}, zerolog.Nop())
	if err := l.SetCategory("Team A"); err == nil {
		t.Fatalf("expected error")
	}
	if l.Category() != CategoryAll {
		t.Fatalf("category changed to %q", l.Category())
	}
	c, err := ParseCategory("in progress")
	if err != nil || c != Category(domain.StatusInProgress) {
		t.Fatalf("parse: %q %v", c, err)
	}
}

func TestLoadFailureLeavesListEmpty(t *testing.T) {
	store := &fakeStore{ideas: sampleIdeas()}
	l := NewList(store, zerolog.Nop())
	_ = l.Load(context.Background())
	store.listErr = errors.New("offline")
	if err := l.Load(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	if len(l.Ideas()) != 0 || len(l.Visible()) != 0 {
		t.Fatalf("expected empty collection after failed load")
	}
	if store.listCalls != 2 {
		t.Fatalf("expected no retry, got %d calls", store.listCalls)
	}
}

func newTestCreate(store IdeaCreator, rec *Recorder) *Create {
	c := NewCreate(store, rec, zerolog.Nop())
	c.Now = func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }
	c.NewID = func() string { return "idea-1" }
	c.User = func() string { return "test@example.com" }
	return c
}

func TestSubmitWithoutDescriptionSkipsStore(t *testing.T) {
	store := &fakeStore{}
	rec := &Recorder{}
	c := newTestCreate(store, rec)
	c.Draft.Title = "Idea"
	c.Draft.Description = "   "
	_, err := c.Submit(context.Background())
	var ve *ideavaultsdk.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(store.created) != 0 {
		t.Fatalf("store must not be called")
	}
	n, ok := rec.Last()
	if !ok || n.Level != LevelError || n.Title != "Validation Error" {
		t.Fatalf("unexpected notification %+v", n)
	}
	if c.Draft.Title != "Idea" {
		t.Fatalf("draft must be kept")
	}
}

func TestSubmitBuildsFullRecord(t *testing.T) {
	store := &fakeStore{}
	rec := &Recorder{}
	c := newTestCreate(store, rec)
	c.Draft.Title = " Ship it "
	c.Draft.Description = "Deliver the thing"
	c.Draft.Tags = "a,,b ,"
	c.Draft.Category = "Web"
	c.Draft.Priority = "High"
	idea, err := c.Submit(context.Background())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(store.created) != 1 {
		t.Fatalf("expected exactly one create, got %d", len(store.created))
	}
	want := domain.Idea{
		ID:          "idea-1",
		Title:       "Ship it",
		Description: "Deliver the thing",
		Tags:        domain.Tags{"a", "b"},
		Priority:    "High",
		Status:      domain.StatusDraft,
		Category:    "Web",
		CreatedAt:   "2024-01-01T00:00:00Z",
		UpdatedAt:   "2024-01-01T00:00:00Z",
		CreatedBy:   "test@example.com",
	}
	if !reflect.DeepEqual(store.created[0], want) {
		t.Fatalf("got %+v\nwant %+v", store.created[0], want)
	}
	if idea.ID != "idea-1" {
		t.Fatalf("unexpected result %+v", idea)
	}
	if n, _ := rec.Last(); n.Level != LevelSuccess {
		t.Fatalf("expected success notification, got %+v", n)
	}
	if c.Draft != NewDraft() {
		t.Fatalf("draft should reset after success, got %+v", c.Draft)
	}
}

func TestSubmitFailureKeepsDraft(t *testing.T) {
	store := &fakeStore{createErr: &ideavaultsdk.ServerError{StatusCode: 500}}
	rec := &Recorder{}
	c := newTestCreate(store, rec)
	c.Draft.Title = "T"
	c.Draft.Description = "D"
	if _, err := c.Submit(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	if c.Draft.Title != "T" || c.Draft.Description != "D" {
		t.Fatalf("draft lost: %+v", c.Draft)
	}
	if n, _ := rec.Last(); n.Level != LevelError || n.Message != "Failed to create idea. Please try again." {
		t.Fatalf("unexpected notification %+v", n)
	}
}

func TestPreviewNormalizesTags(t *testing.T) {
	c := newTestCreate(&fakeStore{}, &Recorder{})
	c.Draft.Title = "T"
	c.Draft.Tags = " Design, ,Development"
	p := c.Preview()
	if !reflect.DeepEqual(p.Tags, domain.Tags{"Design", "Development"}) || p.Priority != "Medium" {
		t.Fatalf("unexpected preview %+v", p)
	}
}

func TestDeleteSuccessClearsSelection(t *testing.T) {
	store := &fakeStore{ideas: sampleIdeas()}
	rec := &Recorder{}
	d := NewDetail(store, nil, rec, zerolog.Nop())
	d.Select(sampleIdeas()[0])
	if err := d.Delete(context.Background()); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok := d.Selected(); ok {
		t.Fatalf("selection should be cleared")
	}
	if !reflect.DeepEqual(store.deleted, []string{"1"}) {
		t.Fatalf("unexpected deletes %v", store.deleted)
	}
	if n, _ := rec.Last(); n.Level != LevelSuccess {
		t.Fatalf("unexpected notification %+v", n)
	}
}

func TestDeleteFailureKeepsSelection(t *testing.T) {
	store := &fakeStore{deleteErr: &ideavaultsdk.ServerError{StatusCode: 500, Body: "nope"}}
	rec := &Recorder{}
	d := NewDetail(store, nil, rec, zerolog.Nop())
	d.Select(domain.Idea{ID: "9", Title: "Keep"})
	if err := d.Delete(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	sel, ok := d.Selected()
	if !ok || sel.ID != "9" {
		t.Fatalf("selection changed: %+v %v", sel, ok)
	}
	if n, _ := rec.Last(); n.Level != LevelError || n.Message != "Error deleting idea" {
		t.Fatalf("unexpected notification %+v", n)
	}
}

func TestDeleteWithoutSelection(t *testing.T) {
	d := NewDetail(&fakeStore{}, nil, nil, zerolog.Nop())
	if err := d.Delete(context.Background()); !errors.Is(err, ErrNoSelection) {
		t.Fatalf("got %v", err)
	}
	if d.Tags() != nil {
		t.Fatalf("expected no tags without selection")
	}
}

func TestRequestAssistUsesIdeaAndDefaults(t *testing.T) {
	planner := &fakePlanner{text: "Step 1"}
	d := NewDetail(&fakeStore{}, planner, nil, zerolog.Nop())
	d.Select(domain.Idea{ID: "1", Category: "Web", Description: "Portal", Tags: domain.Tags{"x"}})
	text, err := d.RequestAssist(context.Background(), AssistParams{TargetAudience: "Teachers"})
	if err != nil || text != "Step 1" {
		t.Fatalf("assist: %q %v", text, err)
	}
	want := ideavaultsdk.PlanRequest{
		Domain:               "Web",
		BriefIdeaDescription: "Portal",
		KeyFocusAreas:        DefaultKeyFocusAreas,
		TargetAudienceUsers:  "Teachers",
	}
	if planner.req != want {
		t.Fatalf("got %+v want %+v", planner.req, want)
	}
	if !reflect.DeepEqual(d.Tags(), domain.Tags{"x"}) {
		t.Fatalf("unexpected tags %v", d.Tags())
	}
}

func TestRequestAssistFailureNotifies(t *testing.T) {
	rec := &Recorder{}
	d := NewDetail(&fakeStore{}, &fakePlanner{err: errors.New("down")}, rec, zerolog.Nop())
	d.Select(domain.Idea{ID: "1"})
	if _, err := d.RequestAssist(context.Background(), AssistParams{}); err == nil {
		t.Fatalf("expected error")
	}
	if n, _ := rec.Last(); n.Message != "Error generating AI help" {
		t.Fatalf("unexpected notification %+v", n)
	}
	d = NewDetail(&fakeStore{}, nil, rec, zerolog.Nop())
	d.Select(domain.Idea{ID: "1"})
	if _, err := d.RequestAssist(context.Background(), AssistParams{}); !errors.Is(err, ErrAssistUnavailable) {
		t.Fatalf("got %v", err)
	}
}

func TestDashboardRefetchesAfterMutations(t *testing.T) {
	store := &fakeStore{ideas: []domain.Idea{{ID: "1", Title: "Foo", Status: domain.StatusDraft}}}
	dash := NewDashboard(store, nil, &Recorder{}, zerolog.Nop())
	dash.Create.NewID = func() string { return "2" }
	_ = dash.List.Load(context.Background())

	dash.Create.Draft.Title = "Bar"
	dash.Create.Draft.Description = "Baz"
	if _, err := dash.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if got := ids(dash.List.Visible()); !reflect.DeepEqual(got, []string{"1", "2"}) {
		t.Fatalf("after create: %v", got)
	}

	dash.Detail.Select(dash.List.Visible()[0])
	if err := dash.Delete(context.Background()); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := ids(dash.List.Visible()); !reflect.DeepEqual(got, []string{"2"}) {
		t.Fatalf("after delete: %v", got)
	}
	if store.listCalls != 3 {
		t.Fatalf("expected 3 fetches, got %d", store.listCalls)
	}
}

func TestFetchLeavesListUntouched(t *testing.T) {
	store := &fakeStore{ideas: sampleIdeas()}
	l := NewList(store, zerolog.Nop())
	ideas, err := l.Fetch(context.Background())
	if err != nil || len(ideas) != len(store.ideas) {
		t.Fatalf("fetch: %d ideas, err=%v", len(ideas), err)
	}
	if len(l.Ideas()) != 0 {
		t.Fatalf("fetch should not populate the list")
	}
	l.Replace(ideas)
	if got := ids(l.Visible()); !reflect.DeepEqual(got, ids(sampleIdeas())) {
		t.Fatalf("unexpected visible ideas %v", got)
	}
}

func TestSendKeepsDraft(t *testing.T) {
	store := &fakeStore{}
	c := newTestCreate(store, &Recorder{})
	draft := Draft{Title: "Bike share", Description: "Campus bikes", Tags: "a,,b ,"}
	c.Draft = draft
	idea, err := c.Send(context.Background(), draft)
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if c.Draft.Title != "Bike share" {
		t.Fatalf("send must not reset the draft")
	}
	if !reflect.DeepEqual(idea.Tags, domain.Tags{"a", "b"}) || len(store.created) != 1 {
		t.Fatalf("unexpected created idea %+v", idea)
	}
}

func TestAssistSendsEmptyCategory(t *testing.T) {
	planner := &fakePlanner{text: "ok"}
	d := NewDetail(&fakeStore{}, planner, nil, zerolog.Nop())
	text, err := d.Assist(context.Background(), domain.Idea{ID: "1", Description: "Portal"}, AssistParams{})
	if err != nil || text != "ok" {
		t.Fatalf("assist: %q %v", text, err)
	}
	if planner.req.Domain != "" || planner.req.BriefIdeaDescription != "Portal" {
		t.Fatalf("unexpected request %+v", planner.req)
	}
	if _, ok := d.Selected(); ok {
		t.Fatalf("assist must not change the selection")
	}
}

func TestDetailLogsCaughtErrors(t *testing.T) {
	var buf bytes.Buffer
	d := NewDetail(&fakeStore{}, nil, &Recorder{}, zerolog.New(&buf))
	if err := d.Delete(context.Background()); !errors.Is(err, ErrNoSelection) {
		t.Fatalf("got %v", err)
	}
	if _, err := d.RequestAssist(context.Background(), AssistParams{}); !errors.Is(err, ErrNoSelection) {
		t.Fatalf("got %v", err)
	}
	d.Select(domain.Idea{ID: "7"})
	if _, err := d.RequestAssist(context.Background(), AssistParams{}); !errors.Is(err, ErrAssistUnavailable) {
		t.Fatalf("got %v", err)
	}
	out := buf.String()
	for _, want := range []string{"delete requested without a selected idea", "assist requested without a selected idea", `"idea_id":"7"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("log missing %q:\n%s", want, out)
		}
	}
}
