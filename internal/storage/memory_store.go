package storage

import (
	"sync"

	"github.com/samvad-hq/users-api-keywords/internal/domain"
)

type memoryStore struct {
	mu    sync.RWMutex
	seed  []domain.User
	users []domain.User
}

func newMemoryStore(opts Options) *memoryStore {
	s := &memoryStore{seed: opts.Seed}
	s.users = cloneUsers(s.seed)
	return s
}

func (m *memoryStore) Close() error { return nil }

func (m *memoryStore) List(includeDeleted bool) ([]domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.User, 0, len(m.users))
	for _, u := range m.users {
		if includeDeleted || !u.Deleted {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *memoryStore) Get(id int) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if i := m.activeIndex(id); i >= 0 {
		return m.users[i], true, nil
	}
	return domain.User{}, false, nil
}

func (m *memoryStore) Create(in domain.UserInput) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u := domain.User{
		ID:   nextID(len(m.users), m.maxID()),
		Name: in.Name,
		Age:  in.Age,
		City: in.City,
	}
	m.users = append(m.users, u)
	return u, nil
}

func (m *memoryStore) Update(id int, patch domain.UserPatch) (domain.User, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.activeIndex(id)
	if i < 0 {
		return domain.User{}, false, nil
	}
	m.users[i] = patch.Apply(m.users[i])
	return m.users[i], true, nil
}

func (m *memoryStore) SoftDelete(id int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.activeIndex(id)
	if i < 0 {
		return false, nil
	}
	m.users[i].Deleted = true
	return true, nil
}

func (m *memoryStore) Reset() error {
	m.mu.Lock()
	m.users = cloneUsers(m.seed)
	m.mu.Unlock()
	return nil
}

// activeIndex returns the position of the non-deleted user with id, or -1.
func (m *memoryStore) activeIndex(id int) int {
	for i, u := range m.users {
		if u.ID == id && !u.Deleted {
			return i
		}
	}
	return -1
}

func (m *memoryStore) maxID() int {
	highest := 0
	for _, u := range m.users {
		if u.ID > highest {
			highest = u.ID
		}
	}
	return highest
}

func cloneUsers(in []domain.User) []domain.User {
	out := make([]domain.User, len(in))
	copy(out, in)
	return out
}
