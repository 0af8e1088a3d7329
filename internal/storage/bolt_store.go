package storage

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/samvad-hq/users-api-keywords/internal/domain"
	bolt "go.etcd.io/bbolt"
)

const (
	userBucket = "users"
	idKeyBytes = 8
)

// boltStore implements a Store backed by BoltDB. Users are JSON values keyed by big-endian id.
type boltStore struct {
	db   *bolt.DB
	seed []domain.User
}

// openBolt initializes a BoltDB-backed Store, seeding it when the bucket is empty.
func openBolt(path string, opts Options) (Store, error) {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create storage directory: %w", err)
		}
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bbolt db: %w", err)
	}

	store := &boltStore{db: db, seed: opts.Seed}
	if err := db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(userBucket))
		if err != nil {
			return err
		}
		if k, _ := bucket.Cursor().First(); k != nil {
			return nil
		}
		return putUsers(bucket, store.seed)
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("init bucket: %w", err)
	}

	return store, nil
}

// Close closes the BoltDB store.
func (b *boltStore) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// List returns users in id order.
func (b *boltStore) List(includeDeleted bool) ([]domain.User, error) {
	var out []domain.User
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket, err := usersBucket(tx)
		if err != nil {
			return err
		}
		return bucket.ForEach(func(_, v []byte) error {
			var u domain.User
			if err := json.Unmarshal(v, &u); err != nil {
				return fmt.Errorf("decode user: %w", err)
			}
			if includeDeleted || !u.Deleted {
				out = append(out, u)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.User{}
	}
	return out, nil
}

// Get returns the active user with id.
func (b *boltStore) Get(id int) (domain.User, bool, error) {
	var (
		user  domain.User
		found bool
	)
	err := b.db.View(func(tx *bolt.Tx) error {
		bucket, err := usersBucket(tx)
		if err != nil {
			return err
		}
		user, found, err = activeUser(bucket, id)
		return err
	})
	return user, found, err
}

// Create stores a new user under the next id.
func (b *boltStore) Create(in domain.UserInput) (domain.User, error) {
	var user domain.User
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket, err := usersBucket(tx)
		if err != nil {
			return err
		}
		count, maxID := 0, 0
		cursor := bucket.Cursor()
		for k, _ := cursor.First(); k != nil; k, _ = cursor.Next() {
			count++
			if id := decodeID(k); id > maxID {
				maxID = id
			}
		}
		user = domain.User{
			ID:   nextID(count, maxID),
			Name: in.Name,
			Age:  in.Age,
			City: in.City,
		}
		return putUser(bucket, user)
	})
	return user, err
}

// Update merges patch into the active user with id.
func (b *boltStore) Update(id int, patch domain.UserPatch) (domain.User, bool, error) {
	var (
		user  domain.User
		found bool
	)
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket, err := usersBucket(tx)
		if err != nil {
			return err
		}
		user, found, err = activeUser(bucket, id)
		if err != nil || !found {
			return err
		}
		user = patch.Apply(user)
		return putUser(bucket, user)
	})
	return user, found, err
}

// SoftDelete flags the active user with id as deleted.
func (b *boltStore) SoftDelete(id int) (bool, error) {
	var found bool
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket, err := usersBucket(tx)
		if err != nil {
			return err
		}
		var user domain.User
		user, found, err = activeUser(bucket, id)
		if err != nil || !found {
			return err
		}
		user.Deleted = true
		return putUser(bucket, user)
	})
	return found, err
}

// Reset drops every stored user and writes the seed back.
func (b *boltStore) Reset() error {
	return b.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket([]byte(userBucket)); err != nil && err != bolt.ErrBucketNotFound {
			return err
		}
		bucket, err := tx.CreateBucket([]byte(userBucket))
		if err != nil {
			return err
		}
		return putUsers(bucket, b.seed)
	})
}

func usersBucket(tx *bolt.Tx) (*bolt.Bucket, error) {
	bucket := tx.Bucket([]byte(userBucket))
	if bucket == nil {
		return nil, fmt.Errorf("user bucket missing")
	}
	return bucket, nil
}

func activeUser(bucket *bolt.Bucket, id int) (domain.User, bool, error) {
	if id <= 0 {
		return domain.User{}, false, nil
	}
	raw := bucket.Get(encodeID(id))
	if raw == nil {
		return domain.User{}, false, nil
	}
	var u domain.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return domain.User{}, false, fmt.Errorf("decode user %d: %w", id, err)
	}
	if u.Deleted {
		return domain.User{}, false, nil
	}
	return u, true, nil
}

func putUsers(bucket *bolt.Bucket, users []domain.User) error {
	for _, u := range users {
		if err := putUser(bucket, u); err != nil {
			return err
		}
	}
	return nil
}

func putUser(bucket *bolt.Bucket, u domain.User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode user %d: %w", u.ID, err)
	}
	return bucket.Put(encodeID(u.ID), raw)
}

func encodeID(id int) []byte {
	buf := make([]byte, idKeyBytes)
	binary.BigEndian.PutUint64(buf, uint64(id))
	return buf
}

func decodeID(key []byte) int {
	if len(key) != idKeyBytes {
		return 0
	}
	return int(binary.BigEndian.Uint64(key))
}
