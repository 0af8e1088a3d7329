package publishers

import (
	"context"
	"errors"
	"testing"
)

type stubPublisher struct {
	id     string
	typ    string
	err    error
	events []string
}

func (s *stubPublisher) ID() string   { return s.id }
func (s *stubPublisher) Type() string { return s.typ }
func (s *stubPublisher) Publish(_ context.Context, evt Event) error {
	s.events = append(s.events, evt.Type)
	return s.err
}

func TestFanoutPublishAggregatesErrors(t *testing.T) {
	fanout := NewFanout()
	fanout.Subscribe(&stubPublisher{id: "ok", typ: TypeHTTP})
	fanout.Subscribe(&stubPublisher{id: "bad", typ: TypeHTTP, err: errors.New("failed")})

	count, err := fanout.Publish(context.Background(), NewResetEvent())
	if count != 1 {
		t.Fatalf("expected 1 delivery, got %d", count)
	}
	if err == nil {
		t.Fatalf("expected aggregated error")
	}
}

func TestFanoutRoutesBySubscription(t *testing.T) {
	all := &stubPublisher{id: "all", typ: TypeHTTP}
	deletions := &stubPublisher{id: "deletions", typ: TypeSQS}
	fanout := NewFanout()
	fanout.Subscribe(all)
	fanout.Subscribe(deletions, EventUserDeleted)
	fanout.Subscribe(nil, EventUserCreated)

	ctx := context.Background()
	if n, err := fanout.Publish(ctx, createdEvent()); n != 1 || err != nil {
		t.Fatalf("created: delivered=%d err=%v", n, err)
	}
	if n, err := fanout.Publish(ctx, NewDeletedEvent(3)); n != 2 || err != nil {
		t.Fatalf("deleted: delivered=%d err=%v", n, err)
	}
	if len(all.events) != 2 || len(deletions.events) != 1 || deletions.events[0] != EventUserDeleted {
		t.Fatalf("all=%v deletions=%v", all.events, deletions.events)
	}
	if fanout.Size() != 2 {
		t.Fatalf("nil publishers must be skipped, size=%d", fanout.Size())
	}
}

func TestNilFanoutIsNoop(t *testing.T) {
	var fanout *Fanout
	if n, err := fanout.Publish(context.Background(), NewResetEvent()); n != 0 || err != nil {
		t.Fatalf("delivered=%d err=%v", n, err)
	}
	if err := fanout.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

type closingPublisher struct {
	stubPublisher
	closed bool
}

func (c *closingPublisher) Close() error {
	c.closed = true
	return nil
}

func TestFanoutCloseReleasesClosers(t *testing.T) {
	closer := &closingPublisher{stubPublisher: stubPublisher{id: "gcp", typ: TypePubSub}}
	fanout := NewFanout()
	fanout.Subscribe(&stubPublisher{id: "ok", typ: TypeHTTP})
	fanout.Subscribe(closer)

	if err := fanout.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !closer.closed {
		t.Fatalf("expected closer to be closed")
	}
}

func TestBuildersBuildSubscribesEnabledPublishers(t *testing.T) {
	built := map[string]*stubPublisher{}
	builders := Builders{TypeHTTP: func(_ context.Context, cfg PublisherConfig, _ Logger) (Publisher, error) {
		p := &stubPublisher{id: cfg.ID, typ: cfg.Type}
		built[cfg.ID] = p
		return p, nil
	}}
	off := false
	cfg := Config{Publishers: []PublisherConfig{
		{ID: "resets", Type: TypeHTTP, Events: []string{EventUsersReset}},
		{ID: "everything", Type: TypeHTTP},
		{ID: "disabled", Type: TypeHTTP, Enabled: &off},
	}}

	fanout, err := builders.Build(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if fanout.Size() != 2 || built["disabled"] != nil {
		t.Fatalf("disabled publishers must not be built, size=%d", fanout.Size())
	}
	if n, _ := fanout.Publish(context.Background(), createdEvent()); n != 1 {
		t.Fatalf("created should reach only the catch-all publisher, got %d", n)
	}
	if n, _ := fanout.Publish(context.Background(), NewResetEvent()); n != 2 {
		t.Fatalf("reset should reach both publishers, got %d", n)
	}
}

func TestBuildersBuildClosesOnFailure(t *testing.T) {
	closer := &closingPublisher{stubPublisher: stubPublisher{id: "first", typ: TypePubSub}}
	builders := Builders{
		TypePubSub: func(context.Context, PublisherConfig, Logger) (Publisher, error) { return closer, nil },
	}
	cfg := Config{Publishers: []PublisherConfig{
		{ID: "first", Type: TypePubSub},
		{ID: "hook", Type: TypeHTTP},
	}}

	if _, err := builders.Build(context.Background(), cfg, nil); err == nil {
		t.Fatalf("expected error for type without builder")
	}
	if !closer.closed {
		t.Fatalf("publishers built before the failure must be closed")
	}
}

func TestDefaultBuildersBuildWebhook(t *testing.T) {
	cfg, err := ParseConfig([]byte(`{"publishers":[{"id":"hook","type":"http","http":{"url":"https://example.com"}}]}`), ".json")
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	fanout, err := DefaultBuilders().Build(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if fanout.Size() != 1 {
		t.Fatalf("expected 1 publisher, got %d", fanout.Size())
	}
}
