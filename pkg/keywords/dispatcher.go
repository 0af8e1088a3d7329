package keywords

import (
	"context"
	"strings"

	"github.com/samvad-hq/users-api-keywords/pkg/httpclient"
)

// RequestOption customizes a single dispatched request.
type RequestOption func(*httpclient.Request)

// WithJSON sends payload as the JSON request body.
func WithJSON(payload any) RequestOption {
	return func(r *httpclient.Request) {
		r.Body = payload
	}
}

// WithHeader adds a header to a single request. The fixed Authorization header cannot be replaced.
func WithHeader(key, value string) RequestOption {
	return func(r *httpclient.Request) {
		if r.Headers == nil {
			r.Headers = make(map[string]string)
		}
		r.Headers[key] = value
	}
}

// Dispatcher sends requests to a fixed base address with a fixed Authorization header.
type Dispatcher struct {
	baseURL       string
	authorization string
	client        httpclient.Client
	log           Logger
}

// NewDispatcher builds a dispatcher. The base address and credential are never changed afterwards.
func NewDispatcher(baseURL, authorization string, client httpclient.Client, log Logger) *Dispatcher {
	if client == nil {
		client = httpclient.NewRestyClient(0)
	}
	return &Dispatcher{
		baseURL:       baseURL,
		authorization: authorization,
		client:        client,
		log:           ensureLogger(log),
	}
}

// BaseURL returns the configured base address.
func (d *Dispatcher) BaseURL() string { return d.baseURL }

// Dispatch performs one request against baseURL+path. The path is appended verbatim,
// so it must already start with "/". Transport errors are returned unmodified.
func (d *Dispatcher) Dispatch(ctx context.Context, method, path string, opts ...RequestOption) (httpclient.Response, error) {
	req := httpclient.Request{
		Method: method,
		URL:    d.baseURL + path,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&req)
		}
	}
	req.Headers = d.withAuthorization(req.Headers)

	d.log.DebugObj("dispatching request", "request", map[string]any{
		"method": req.Method,
		"url":    req.URL,
	})
	resp, err := d.client.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	d.log.DebugObj("response received", "response", map[string]any{
		"method": req.Method,
		"url":    req.URL,
		"status": resp.StatusCode(),
	})
	return resp, nil
}

// withAuthorization drops any caller-supplied Authorization header, whatever its
// casing, and sets the configured credential.
func (d *Dispatcher) withAuthorization(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers)+1)
	for k, v := range headers {
		if strings.EqualFold(k, "Authorization") {
			continue
		}
		out[k] = v
	}
	out["Authorization"] = d.authorization
	return out
}
