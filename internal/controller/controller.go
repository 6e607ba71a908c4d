// Package controller holds the client-side state of the idea views: the
// filtered list, the creation draft, and the selected idea. Controllers are
// not safe for concurrent use; each one is driven from a single goroutine.
package controller

import (
	"context"
	"sync"

	"ideavault/internal/domain"
	ideavaultsdk "ideavault/sdk/go"
)

// IdeaLister fetches the full idea collection.
type IdeaLister interface {
	List(ctx context.Context) ([]domain.Idea, error)
}

// IdeaCreator stores a new idea.
type IdeaCreator interface {
	Create(ctx context.Context, idea domain.Idea) (domain.Idea, error)
}

// IdeaDeleter removes an idea by id.
type IdeaDeleter interface {
	Delete(ctx context.Context, id string) error
}

// Planner answers assistance queries for an idea.
type Planner interface {
	Plan(ctx context.Context, req ideavaultsdk.PlanRequest) (string, error)
}

// Store is everything the dashboard needs from a backing store.
type Store interface {
	IdeaLister
	IdeaCreator
	IdeaDeleter
}

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification is a user-visible message.
type Notification struct {
	Level   Level
	Title   string
	Message string
}

// Notifier delivers notifications to the user.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// Recorder keeps every notification it receives.
type Recorder struct {
	mu    sync.Mutex
	items []Notification
}

func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

// All returns a copy of the recorded notifications.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.items...)
}

// Last returns the most recent notification.
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		return Notification{}, false
	}
	return r.items[len(r.items)-1], true
}

func notify(n Notifier, level Level, title, msg string) {
	if n == nil {
		return
	}
	n.Notify(Notification{Level: level, Title: title, Message: msg})
}
