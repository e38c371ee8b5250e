// Package events distributes committed ledger events to downstream sinks.
package events

import (
	"context"
	"errors"

	"github.com/primefinance/backend/internal/models"
)

// Sink receives ledger events.
type Sink interface {
	Publish(ctx context.Context, event models.LedgerEvent) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, event models.LedgerEvent) error

func (f SinkFunc) Publish(ctx context.Context, event models.LedgerEvent) error {
	return f(ctx, event)
}

// Fanout publishes each event to every sink. A failing sink does not stop the
// others; all errors are returned joined.
type Fanout struct {
	sinks []Sink
}

func NewFanout(sinks ...Sink) *Fanout {
	f := &Fanout{}
	for _, s := range sinks {
		if s != nil {
			f.sinks = append(f.sinks, s)
		}
	}
	return f
}

func (f *Fanout) Publish(ctx context.Context, event models.LedgerEvent) error {
	var errs []error
	for _, s := range f.sinks {
		if err := s.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
