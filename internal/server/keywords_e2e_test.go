package server

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/samvad-hq/users-api-keywords/internal/storage"
	"github.com/samvad-hq/users-api-keywords/pkg/keywords"
)

// The keyword library and the reference API must agree on every status code.
func TestKeywordsAgainstReferenceAPI(t *testing.T) {
	store, err := storage.NewStore(storage.TypeBBolt, filepath.Join(t.TempDir(), "users.db"), storage.Options{})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer store.Close()

	srv := httptest.NewServer(NewHandler(store, Options{AuthToken: keywords.DefaultAuthorization}))
	defer srv.Close()

	ctx := context.Background()
	kw := keywords.New(keywords.Config{BaseURL: srv.URL})

	if err := kw.ResetRESTAPI(ctx); err != nil {
		t.Fatalf("ResetRESTAPI: %v", err)
	}
	users, err := kw.GetUsers(ctx)
	if err != nil {
		t.Fatalf("GetUsers: %v", err)
	}
	if list, ok := users.([]any); !ok || len(list) != 4 {
		t.Fatalf("expected 4 users, got %#v", users)
	}

	if _, err := kw.GetUserByID(ctx, "1", "Jan Kowalski"); err != nil {
		t.Fatalf("GetUserByID: %v", err)
	}

	created, err := kw.CreateUser(ctx, "Alice", 30, "Berlin")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if id := created.(map[string]any)["id"]; id != float64(5) {
		t.Fatalf("created id = %v", id)
	}

	if _, err := kw.UpdateUser(ctx, "5", map[string]any{"city": "Gdańsk"}); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}
	patched, err := kw.PatchUser(ctx, "5", map[string]any{"age": 31})
	if err != nil {
		t.Fatalf("PatchUser: %v", err)
	}
	if m := patched.(map[string]any); m["city"] != "Gdańsk" || m["age"] != float64(31) {
		t.Fatalf("unexpected patched user %#v", m)
	}

	if err := kw.SoftDeleteUser(ctx, "5"); err != nil {
		t.Fatalf("SoftDeleteUser: %v", err)
	}
	if _, err := kw.GetUserByID(ctx, "5", ""); !keywords.IsAssertion(err) {
		t.Fatalf("deleted user lookup should fail the status assertion, got %v", err)
	}
	if err := kw.SoftDeleteUser(ctx, "5"); !keywords.IsAssertion(err) {
		t.Fatalf("second delete should fail the status assertion, got %v", err)
	}

	all, err := kw.GetAllUsersIncludingDeleted(ctx)
	if err != nil {
		t.Fatalf("GetAllUsersIncludingDeleted: %v", err)
	}
	list := all.([]any)
	if len(list) != 5 || list[4].(map[string]any)["deleted"] != true {
		t.Fatalf("expected deleted user in full listing, got %#v", list)
	}

	lib := keywords.NewLibrary(kw)
	if _, err := lib.Run(ctx, "Reset Rest Api"); err != nil {
		t.Fatalf("Run reset: %v", err)
	}
	all, err = lib.Run(ctx, "Get All Users Including Deleted")
	if err != nil {
		t.Fatalf("Run listing: %v", err)
	}
	if len(all.([]any)) != 4 {
		t.Fatalf("reset should restore the fixtures, got %#v", all)
	}

	wrongAuth := keywords.New(keywords.Config{BaseURL: srv.URL, Authorization: "Bearer nope"})
	if _, err := wrongAuth.GetUsers(ctx); !keywords.IsAssertion(err) {
		t.Fatalf("wrong credential should surface as a status assertion, got %v", err)
	}
}
