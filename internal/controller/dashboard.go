package controller

import (
	"context"

	"github.com/rs/zerolog"

	"ideavault/internal/domain"
)

// Dashboard wires the three controllers together. After every successful
// create or delete it re-fetches the full collection so the list never shows
// stale records.
type Dashboard struct {
	List   *List
	Create *Create
	Detail *Detail
}

func NewDashboard(store Store, planner Planner, notifier Notifier, log zerolog.Logger) *Dashboard {
	return &Dashboard{
		List:   NewList(store, log),
		Create: NewCreate(store, notifier, log),
		Detail: NewDetail(store, planner, notifier, log),
	}
}

// Submit creates the drafted idea and refreshes the list.
func (d *Dashboard) Submit(ctx context.Context) (domain.Idea, error) {
	idea, err := d.Create.Submit(ctx)
	if err != nil {
		return domain.Idea{}, err
	}
	_ = d.List.Load(ctx)
	return idea, nil
}

// Delete removes the selected idea and refreshes the list.
func (d *Dashboard) Delete(ctx context.Context) error {
	if err := d.Detail.Delete(ctx); err != nil {
		return err
	}
	_ = d.List.Load(ctx)
	return nil
}
