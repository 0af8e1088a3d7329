package publishers

import (
	"context"
	"fmt"
	"maps"
	"strings"
	"time"

	"github.com/samvad-hq/users-api-keywords/pkg/httpclient"
)

const webhookErrorSnippet = 512

// webhookPublisher posts events as JSON to an HTTP endpoint.
type webhookPublisher struct {
	id     string
	target HTTPPublisherConfig
	client httpclient.Client
	log    Logger
}

func newHTTPPublisher(_ context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	if cfg.HTTP == nil {
		return nil, fmt.Errorf("publisher %q missing http configuration", cfg.ID)
	}
	timeout := time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second
	return &webhookPublisher{
		id:     cfg.ID,
		target: *cfg.HTTP,
		client: httpclient.NewRestyClient(timeout),
		log:    orNop(log),
	}, nil
}

func (w *webhookPublisher) ID() string   { return w.id }
func (w *webhookPublisher) Type() string { return TypeHTTP }

// Publish delivers evt. Any non-2xx answer is an error carrying the start of the response body.
func (w *webhookPublisher) Publish(ctx context.Context, evt Event) error {
	headers := maps.Clone(w.target.Headers)
	if headers == nil {
		headers = make(map[string]string, 2)
	}
	headers["X-Event-Type"] = evt.Type
	headers["X-Publisher-ID"] = w.id

	resp, err := w.client.Do(ctx, httpclient.Request{
		Method:  w.target.Method,
		URL:     w.target.URL,
		Headers: headers,
		Body:    evt,
	})
	if err != nil {
		return fmt.Errorf("deliver %s: %w", evt.Type, err)
	}
	if code := resp.StatusCode(); code < 200 || code > 299 {
		body := resp.Body()
		if len(body) > webhookErrorSnippet {
			body = body[:webhookErrorSnippet]
		}
		return fmt.Errorf("webhook answered %d: %s", code, strings.TrimSpace(string(body)))
	}

	w.log.DebugObj("webhook delivered event", "publisher_http_delivery", map[string]any{
		"publisher_id": w.id,
		"event_type":   evt.Type,
		"status":       resp.StatusCode(),
	})
	return nil
}
