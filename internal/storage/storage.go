package storage

import (
	"fmt"
	"strings"

	"github.com/samvad-hq/users-api-keywords/internal/domain"
)

// Package storage keeps the users served by the reference API.

// Store holds users. Get, Update and SoftDelete only see users that are not deleted.
type Store interface {
	Close() error
	List(includeDeleted bool) ([]domain.User, error)
	Get(id int) (domain.User, bool, error)
	Create(in domain.UserInput) (domain.User, error)
	Update(id int, patch domain.UserPatch) (domain.User, bool, error)
	SoftDelete(id int) (bool, error)
	Reset() error
}

// Options controls the initial content of concrete store implementations.
type Options struct {
	Seed []domain.User
}

const (
	TypeMemory = "memory"
	TypeBBolt  = "bbolt"
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", TypeMemory:
		return newMemoryStore(opts), nil
	case TypeBBolt:
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.Seed == nil {
		opts.Seed = domain.DefaultSeed()
	}
	seed := make([]domain.User, len(opts.Seed))
	copy(seed, opts.Seed)
	opts.Seed = seed
	return opts
}

// nextID numbers users by how many are stored, skipping past ids a custom seed already took.
func nextID(count, maxID int) int {
	if id := count + 1; id > maxID {
		return id
	}
	return maxID + 1
}
