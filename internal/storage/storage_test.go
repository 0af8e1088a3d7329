package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/samvad-hq/users-api-keywords/internal/domain"
)

func stores(t *testing.T, seed []domain.User) map[string]Store {
	t.Helper()
	mem, err := NewStore(TypeMemory, "", Options{Seed: seed})
	if err != nil {
		t.Fatalf("NewStore memory: %v", err)
	}
	bolt, err := NewStore(TypeBBolt, filepath.Join(t.TempDir(), "data", "users.db"), Options{Seed: seed})
	if err != nil {
		t.Fatalf("NewStore bbolt: %v", err)
	}
	t.Cleanup(func() {
		mem.Close()
		bolt.Close()
	})
	return map[string]Store{TypeMemory: mem, TypeBBolt: bolt}
}

func TestStoreLifecycle(t *testing.T) {
	for name, store := range stores(t, nil) {
		t.Run(name, func(t *testing.T) {
			users, err := store.List(false)
			if err != nil || len(users) != 4 {
				t.Fatalf("expected 4 seeded users, got %d err=%v", len(users), err)
			}

			created, err := store.Create(domain.UserInput{Name: "Alice", Age: 30, City: "Berlin"})
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			if created.ID != 5 || created.Deleted {
				t.Fatalf("unexpected created user %+v", created)
			}

			age := 31
			updated, found, err := store.Update(5, domain.UserPatch{Age: &age})
			if err != nil || !found {
				t.Fatalf("Update: found=%v err=%v", found, err)
			}
			if updated.Age != 31 || updated.Name != "Alice" {
				t.Fatalf("unexpected updated user %+v", updated)
			}

			ok, err := store.SoftDelete(1)
			if err != nil || !ok {
				t.Fatalf("SoftDelete: ok=%v err=%v", ok, err)
			}
			if ok, _ := store.SoftDelete(1); ok {
				t.Fatalf("second soft delete should not find the user")
			}
			if _, found, _ := store.Get(1); found {
				t.Fatalf("deleted user must not be returned by Get")
			}
			if _, found, _ := store.Update(1, domain.UserPatch{Age: &age}); found {
				t.Fatalf("deleted user must not be updatable")
			}

			active, _ := store.List(false)
			all, _ := store.List(true)
			if len(active) != 4 || len(all) != 5 {
				t.Fatalf("active=%d all=%d", len(active), len(all))
			}
			if all[0].ID != 1 || !all[0].Deleted {
				t.Fatalf("expected user 1 flagged deleted, got %+v", all[0])
			}

			if err := store.Reset(); err != nil {
				t.Fatalf("Reset: %v", err)
			}
			all, _ = store.List(true)
			if len(all) != 4 || all[0].Deleted {
				t.Fatalf("reset did not restore fixtures: %+v", all)
			}
		})
	}
}

func TestStoreIDsSkipSeedGaps(t *testing.T) {
	seed := []domain.User{{ID: 1, Name: "a"}, {ID: 7, Name: "b"}}
	for name, store := range stores(t, seed) {
		t.Run(name, func(t *testing.T) {
			u, err := store.Create(domain.UserInput{Name: "c"})
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
			if u.ID != 8 {
				t.Fatalf("expected id 8, got %d", u.ID)
			}
		})
	}
}

func TestBoltStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.db")
	store, err := NewStore(TypeBBolt, path, Options{})
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	if _, err := store.Create(domain.UserInput{Name: "Zofia"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	store.Close()

	store, err = NewStore(TypeBBolt, path, Options{})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer store.Close()
	u, found, err := store.Get(5)
	if err != nil || !found || u.Name != "Zofia" {
		t.Fatalf("expected persisted user, got %+v found=%v err=%v", u, found, err)
	}
}

func TestNewStoreRejectsUnknownType(t *testing.T) {
	if _, err := NewStore("redis", "", Options{}); err == nil {
		t.Fatalf("expected error for unsupported type")
	}
	if _, err := NewStore(TypeBBolt, " ", Options{}); err == nil {
		t.Fatalf("expected error for bbolt without path")
	}
}

func TestLoadSeed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "users.yaml")
	raw := `
users:
  - id: 1
    name: " Ola "
    age: 22
    city: Sopot
  - id: 2
    name: Kuba
    deleted: true
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	users, err := LoadSeed(path)
	if err != nil {
		t.Fatalf("LoadSeed: %v", err)
	}
	if len(users) != 2 || users[0].Name != "Ola" || !users[1].Deleted {
		t.Fatalf("unexpected seed %+v", users)
	}
}

func TestLoadSeedRejectsDuplicateIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	if err := os.WriteFile(path, []byte(`{"users":[{"id":1},{"id":1}]}`), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := LoadSeed(path); err == nil {
		t.Fatalf("expected duplicate id error")
	}
}

func TestLoadSeedDefaultsWithoutPath(t *testing.T) {
	users, err := LoadSeed("")
	if err != nil || len(users) != 4 {
		t.Fatalf("expected built-in fixtures, got %d err=%v", len(users), err)
	}
}

func TestLoadSeedRejectsMalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	if err := os.WriteFile(path, []byte(`{"users":[{"id":1,}]}`), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := LoadSeed(path); err == nil || !strings.Contains(err.Error(), "decode seed file") {
		t.Fatalf("expected decode error, got %v", err)
	}
}
