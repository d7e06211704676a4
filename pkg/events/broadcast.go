package events

import (
	"context"
	"errors"
	"fmt"
)

// Broadcaster dispatches events to all configured sinks.
type Broadcaster struct {
	sinks []Sink
}

// NewBroadcaster builds a dispatcher that fans the event out across sinks.
func NewBroadcaster(sinks []Sink) *Broadcaster {
	cp := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s == nil {
			continue
		}
		cp = append(cp, s)
	}
	return &Broadcaster{sinks: cp}
}

// Broadcast forwards the event to every registered sink.
// It returns the number of sinks that successfully handled the event.
func (b *Broadcaster) Broadcast(ctx context.Context, evt Event) (int, error) {
	if b == nil || len(b.sinks) == 0 {
		return 0, nil
	}

	var errs []error
	successful := 0
	for _, s := range b.sinks {
		if err := s.Deliver(ctx, evt); err != nil {
			errs = append(errs, fmt.Errorf("%s sink[%s]: %w", s.Type(), s.ID(), err))
		} else {
			successful++
		}
	}
	return successful, errors.Join(errs...)
}

// Size returns the number of active sinks.
func (b *Broadcaster) Size() int {
	if b == nil {
		return 0
	}
	return len(b.sinks)
}
