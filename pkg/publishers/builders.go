package publishers

import (
	"context"
	"fmt"
)

// Builder constructs the sink described by cfg.
type Builder func(ctx context.Context, cfg PublisherConfig, log Logger) (Publisher, error)

// Builders maps a sink type to its constructor.
type Builders map[string]Builder

// DefaultBuilders returns constructors for the http, sqs, sns and pubsub sinks.
func DefaultBuilders() Builders {
	return Builders{
		TypeHTTP:   newHTTPPublisher,
		TypeSQS:    newSQSPublisher,
		TypeSNS:    newSNSPublisher,
		TypePubSub: newPubSubPublisher,
	}
}

// Build constructs every enabled publisher in cfg and routes them through a Fanout
// honouring their event subscriptions. Sinks built before a failure are closed.
func (b Builders) Build(ctx context.Context, cfg Config, log Logger) (*Fanout, error) {
	fanout := NewFanout()
	for _, pc := range cfg.Enabled() {
		build, ok := b[pc.Type]
		if !ok {
			_ = fanout.Close()
			return nil, fmt.Errorf("publisher %q: no builder for type %q", pc.ID, pc.Type)
		}
		pub, err := build(ctx, pc, log)
		if err != nil {
			_ = fanout.Close()
			return nil, fmt.Errorf("publisher %q: %w", pc.ID, err)
		}
		fanout.Subscribe(pub, pc.Events...)
	}
	return fanout, nil
}
