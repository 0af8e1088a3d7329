// Package keywords drives the users REST API under test. Every keyword issues
// exactly one request, asserts the documented status code and returns the
// decoded body.
package keywords

import (
	"context"
	"net/http"
	"time"

	"github.com/samvad-hq/users-api-keywords/pkg/httpclient"
)

const (
	DefaultBaseURL       = "http://localhost:3000"
	DefaultAuthorization = "Bearer 12345"
)

// Config holds the two static values a Keywords instance is bound to.
type Config struct {
	BaseURL       string
	Authorization string
	// Timeout applies to the default resty transport; zero keeps its default.
	Timeout time.Duration
}

// Option customizes a Keywords instance.
type Option func(*options)

type options struct {
	client httpclient.Client
	log    Logger
}

// WithClient replaces the default resty transport.
func WithClient(c httpclient.Client) Option {
	return func(o *options) { o.client = c }
}

// WithLogger enables debug tracing of dispatched requests.
func WithLogger(l Logger) Option {
	return func(o *options) { o.log = l }
}

// Keywords exposes the users API operations.
type Keywords struct {
	dispatcher *Dispatcher
}

// New builds a Keywords bound to cfg. Empty fields fall back to the defaults.
func New(cfg Config, opts ...Option) *Keywords {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Authorization == "" {
		cfg.Authorization = DefaultAuthorization
	}

	o := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.client == nil {
		o.client = httpclient.NewRestyClient(cfg.Timeout)
	}

	return &Keywords{dispatcher: NewDispatcher(cfg.BaseURL, cfg.Authorization, o.client, o.log)}
}

// Dispatcher returns the underlying dispatcher for ad-hoc requests.
func (k *Keywords) Dispatcher() *Dispatcher { return k.dispatcher }

// GetUsers lists active users.
func (k *Keywords) GetUsers(ctx context.Context) (any, error) {
	return k.fetch(ctx, http.MethodGet, "/users", http.StatusOK)
}

// GetUserByID fetches one user. When expectedName is not empty the body's name must match it.
func (k *Keywords) GetUserByID(ctx context.Context, id, expectedName string) (any, error) {
	resp, err := k.dispatcher.Dispatch(ctx, http.MethodGet, "/users/"+id)
	if err != nil {
		return nil, err
	}
	if err := AssertStatus(resp, http.StatusOK); err != nil {
		return nil, err
	}
	if expectedName != "" {
		if err := AssertContainsValue(resp, "name", expectedName); err != nil {
			return nil, err
		}
	}
	return Decode(resp)
}

// CreateUser creates a user and checks the echoed name.
func (k *Keywords) CreateUser(ctx context.Context, name string, age int, city string) (any, error) {
	payload := map[string]any{"name": name, "age": age, "city": city}
	resp, err := k.dispatcher.Dispatch(ctx, http.MethodPost, "/users", WithJSON(payload))
	if err != nil {
		return nil, err
	}
	if err := AssertStatus(resp, http.StatusCreated); err != nil {
		return nil, err
	}
	if err := AssertContainsValue(resp, "name", name); err != nil {
		return nil, err
	}
	return Decode(resp)
}

// UpdateUser replaces fields of a user with PUT.
func (k *Keywords) UpdateUser(ctx context.Context, id string, fields map[string]any) (any, error) {
	return k.fetch(ctx, http.MethodPut, "/users/"+id, http.StatusOK, WithJSON(jsonObject(fields)))
}

// PatchUser partially updates a user with PATCH.
func (k *Keywords) PatchUser(ctx context.Context, id string, fields map[string]any) (any, error) {
	return k.fetch(ctx, http.MethodPatch, "/users/"+id, http.StatusOK, WithJSON(jsonObject(fields)))
}

// SoftDeleteUser hides a user from the default listing.
func (k *Keywords) SoftDeleteUser(ctx context.Context, id string) error {
	return k.expect(ctx, http.MethodDelete, "/users/"+id, http.StatusNoContent)
}

// GetAllUsersIncludingDeleted lists every user, soft-deleted ones included.
func (k *Keywords) GetAllUsersIncludingDeleted(ctx context.Context) (any, error) {
	return k.fetch(ctx, http.MethodGet, "/users/all", http.StatusOK)
}

// ResetRESTAPI restores the server fixtures.
func (k *Keywords) ResetRESTAPI(ctx context.Context) error {
	return k.expect(ctx, http.MethodPost, "/reset", http.StatusOK)
}

func (k *Keywords) fetch(ctx context.Context, method, path string, status int, opts ...RequestOption) (any, error) {
	resp, err := k.dispatcher.Dispatch(ctx, method, path, opts...)
	if err != nil {
		return nil, err
	}
	if err := AssertStatus(resp, status); err != nil {
		return nil, err
	}
	return Decode(resp)
}

func (k *Keywords) expect(ctx context.Context, method, path string, status int) error {
	resp, err := k.dispatcher.Dispatch(ctx, method, path)
	if err != nil {
		return err
	}
	return AssertStatus(resp, status)
}

// jsonObject keeps an empty update encoded as {} rather than null.
func jsonObject(fields map[string]any) map[string]any {
	if fields == nil {
		return map[string]any{}
	}
	return fields
}
