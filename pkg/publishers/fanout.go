package publishers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
)

type subscription struct {
	pub    Publisher
	events []string
}

func (s subscription) wants(eventType string) bool {
	return len(s.events) == 0 || slices.Contains(s.events, eventType)
}

// Fanout delivers each user event to the publishers subscribed to its type.
// Subscribe is not safe to call concurrently with Publish.
type Fanout struct {
	subs []subscription
}

// NewFanout returns a fanout without publishers. Publishing to it is a no-op.
func NewFanout() *Fanout {
	return &Fanout{}
}

// Subscribe routes events of the given types to pub. No types means every event.
func (f *Fanout) Subscribe(pub Publisher, events ...string) {
	if pub == nil {
		return
	}
	f.subs = append(f.subs, subscription{pub: pub, events: slices.Clone(events)})
}

// Publish sends evt to every subscribed publisher and reports how many accepted it.
// Delivery failures are joined; one failing sink does not stop the others.
func (f *Fanout) Publish(ctx context.Context, evt Event) (int, error) {
	if f == nil {
		return 0, nil
	}
	var (
		delivered int
		errs      []error
	)
	for _, s := range f.subs {
		if !s.wants(evt.Type) {
			continue
		}
		if err := s.pub.Publish(ctx, evt); err != nil {
			errs = append(errs, fmt.Errorf("%s publisher %q: %w", s.pub.Type(), s.pub.ID(), err))
			continue
		}
		delivered++
	}
	return delivered, errors.Join(errs...)
}

// Close releases sinks holding connections.
func (f *Fanout) Close() error {
	if f == nil {
		return nil
	}
	var errs []error
	for _, s := range f.subs {
		if c, ok := s.pub.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %s publisher %q: %w", s.pub.Type(), s.pub.ID(), err))
			}
		}
	}
	return errors.Join(errs...)
}

// Size returns the number of publishers behind the fanout.
func (f *Fanout) Size() int {
	if f == nil {
		return 0
	}
	return len(f.subs)
}
