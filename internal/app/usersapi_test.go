package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/samvad-hq/users-api-keywords/internal/config"
	"github.com/samvad-hq/users-api-keywords/pkg/keywords"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	seed := filepath.Join(dir, "users.yaml")
	raw := `
users:
  - id: 1
    name: Ola Nowicka
    age: 22
    city: Sopot
`
	if err := os.WriteFile(seed, []byte(raw), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	return &config.Config{
		ListenAddr:        "127.0.0.1:0",
		AuthToken:         "Bearer 12345",
		SeedFile:          seed,
		StorageType:       "bbolt",
		BBoltPath:         filepath.Join(dir, "data", "users.db"),
		ReadHeaderTimeout: time.Second,
		ShutdownTimeout:   time.Second,
	}
}

func TestUsersAPIServesUntilCancelled(t *testing.T) {
	cfg := testConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	api, err := NewUsersAPI(ctx, cfg, nil)
	if err != nil {
		t.Fatalf("NewUsersAPI: %v", err)
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	done := make(chan error, 1)
	go func() { done <- api.Serve(ctx, ln) }()

	kw := keywords.New(keywords.Config{BaseURL: "http://" + ln.Addr().String(), Timeout: 2 * time.Second})
	if _, err := kw.GetUserByID(ctx, "1", "Ola Nowicka"); err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}
	if _, err := kw.CreateUser(ctx, "Alice", 30, "Berlin"); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve returned %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("server did not shut down")
	}
}

func TestUsersAPIDeliversSubscribedEvents(t *testing.T) {
	var (
		mu       sync.Mutex
		received []string
	)
	hook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var evt struct {
			Type string `json:"type"`
		}
		_ = json.NewDecoder(r.Body).Decode(&evt)
		mu.Lock()
		received = append(received, evt.Type)
		mu.Unlock()
		w.WriteHeader(http.StatusAccepted)
	}))
	defer hook.Close()

	cfg := testConfig(t)
	cfg.PublishersFile = filepath.Join(t.TempDir(), "publishers.yaml")
	raw := fmt.Sprintf(`
publishers:
  - id: creations
    type: http
    events: [user.created]
    http:
      url: %q
`, hook.URL)
	if err := os.WriteFile(cfg.PublishersFile, []byte(raw), 0o644); err != nil {
		t.Fatalf("write publishers: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	api, err := NewUsersAPI(ctx, cfg, nil)
	if err != nil {
		t.Fatalf("NewUsersAPI: %v", err)
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	done := make(chan error, 1)
	go func() { done <- api.Serve(ctx, ln) }()

	kw := keywords.New(keywords.Config{BaseURL: "http://" + ln.Addr().String(), Timeout: 2 * time.Second})
	if _, err := kw.CreateUser(ctx, "Alice", 30, "Berlin"); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if err := kw.SoftDeleteUser(ctx, "1"); err != nil {
		t.Fatalf("SoftDeleteUser: %v", err)
	}

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Serve returned %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(received) != 1 || received[0] != "user.created" {
		t.Fatalf("webhook received %v, want only user.created", received)
	}
}

func TestNewUsersAPIRejectsBadPublishersFile(t *testing.T) {
	cfg := testConfig(t)
	cfg.PublishersFile = filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := NewUsersAPI(context.Background(), cfg, nil); err == nil {
		t.Fatalf("expected error for missing publishers file")
	}
}

func TestNewUsersAPIRequiresConfig(t *testing.T) {
	if _, err := NewUsersAPI(context.Background(), nil, nil); err == nil {
		t.Fatalf("expected error for nil config")
	}
}
