package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/samvad-hq/users-api-keywords/internal/config"
	"github.com/samvad-hq/users-api-keywords/internal/logger"
	"github.com/samvad-hq/users-api-keywords/internal/server"
	"github.com/samvad-hq/users-api-keywords/internal/storage"
	"github.com/samvad-hq/users-api-keywords/pkg/publishers"
)

// UsersAPI represents the reference users API runtime. It owns the store,
// the event fanout and the HTTP server.
type UsersAPI struct {
	cfg    *config.Config
	store  storage.Store
	fanout *publishers.Fanout
	srv    *http.Server
	log    logger.Logger
}

// NewUsersAPI builds the runtime from config files.
func NewUsersAPI(ctx context.Context, cfg *config.Config, log logger.Logger) (*UsersAPI, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	seed, err := storage.LoadSeed(cfg.SeedFile)
	if err != nil {
		return nil, fmt.Errorf("load seed: %w", err)
	}

	fanout, err := buildFanout(ctx, cfg.PublishersFile, log)
	if err != nil {
		return nil, err
	}

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{Seed: seed})
	if err != nil {
		fanout.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":       cfg.StorageType,
		"path":       cfg.BBoltPath,
		"seed_users": len(seed),
	})

	handler := server.NewHandler(store, server.Options{
		AuthToken: cfg.AuthToken,
		Events:    fanout,
		Log:       log,
	})

	return &UsersAPI{
		cfg:    cfg,
		store:  store,
		fanout: fanout,
		log:    log,
		srv: &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           handler,
			ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		},
	}, nil
}

// buildFanout loads the optional publishers file. No file means no events are published.
func buildFanout(ctx context.Context, path string, log logger.Logger) (*publishers.Fanout, error) {
	if strings.TrimSpace(path) == "" {
		return publishers.NewFanout(), nil
	}

	pubCfg, err := publishers.LoadConfig(path)
	if err != nil {
		return nil, fmt.Errorf("load publishers: %w", err)
	}
	fanout, err := publishers.DefaultBuilders().Build(ctx, pubCfg, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	enabled := pubCfg.Enabled()
	summaries := make([]map[string]any, 0, len(enabled))
	for _, p := range enabled {
		events := p.Events
		if len(events) == 0 {
			events = publishers.EventTypes
		}
		summaries = append(summaries, map[string]any{
			"id":     p.ID,
			"type":   p.Type,
			"events": events,
		})
	}
	log.InfoObj("publishers loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})
	return fanout, nil
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (a *UsersAPI) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.cfg.ListenAddr)
	if err != nil {
		a.close()
		return fmt.Errorf("listen on %s: %w", a.cfg.ListenAddr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve accepts connections on ln until the context is cancelled.
func (a *UsersAPI) Serve(ctx context.Context, ln net.Listener) error {
	if a == nil || a.srv == nil {
		return fmt.Errorf("users api is not initialized")
	}
	defer a.close()

	a.log.InfoObj("users api listening", "server_state", map[string]any{
		"addr":       ln.Addr().String(),
		"auth":       a.cfg.AuthToken != "",
		"publishers": a.fanout.Size(),
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
		a.log.InfoObj("users api shutting down", "reason", ctx.Err())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// close releases the store and publishers, logging any errors encountered.
func (a *UsersAPI) close() {
	if err := a.store.Close(); err != nil {
		a.log.ErrorObj("storage close failed", "error", err)
	}
	if err := a.fanout.Close(); err != nil {
		a.log.ErrorObj("publishers close failed", "error", err)
	}
}
