// Package events fans accepted game messages out to subscribers once they
// have been committed.
package events

import (
	"context"
	"errors"

	"github.com/mcoot/dicegame/internal/model"
)

// Publisher delivers a committed event
type Publisher interface {
	Publish(ctx context.Context, event model.Event) error
}

// Multi publishes to every publisher in turn and joins their errors
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, event model.Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop discards events
type Nop struct{}

func (Nop) Publish(context.Context, model.Event) error { return nil }
