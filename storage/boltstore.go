package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/boltdb/bolt"

	"github.com/cppla/mdblog/models"
	"github.com/cppla/mdblog/utils"
)

var (
	postsBucket = []byte("posts")

	// Keys that never name a post. "index" held the materialized post list in
	// older data files.
	reservedKeys = map[string]struct{}{
		"index": {},
	}
)

// IsReserved reports whether id is a reserved, non-post key.
func IsReserved(id string) bool {
	_, ok := reservedKeys[id]
	return ok
}

// BoltStore keeps posts in a single bolt bucket keyed by post id, with the
// post JSON as value. Bolt serializes writers and gives every read
// transaction a consistent snapshot, so no extra locking is needed here.
type BoltStore struct {
	db *bolt.DB
}

// Open opens (creating if needed) the bolt file at path.
func Open(path string) (*BoltStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("could not ensure directory %q exists: %w", dir, err)
		}
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("could not open database %q: %w", path, err)
	}
	s, err := NewBoltStore(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewBoltStore wraps an open bolt database, ensuring the posts bucket exists.
func NewBoltStore(db *bolt.DB) (*BoltStore, error) {
	err := db.Update(func(tx *bolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(postsBucket); err != nil {
			return fmt.Errorf("could not ensure bucket %q exists: %w", postsBucket, err)
		}
		return nil
	})
	return &BoltStore{db: db}, err
}

// Close releases the database file.
func (s *BoltStore) Close() error {
	return s.db.Close()
}

// Get returns the post stored under id. It returns ErrNotFound for missing
// and reserved keys.
func (s *BoltStore) Get(id string) (post models.Post, err error) {
	if IsReserved(id) {
		return post, fmt.Errorf("%.40q: %w", id, ErrNotFound)
	}
	err = s.db.View(func(tx *bolt.Tx) error {
		value := tx.Bucket(postsBucket).Get([]byte(id))
		if value == nil {
			return fmt.Errorf("%.40q: %w", id, ErrNotFound)
		}
		return decode(id, value, &post)
	})
	return post, err
}

// Insert stores a new post. It fails with ErrExists if the id is taken.
func (s *BoltStore) Insert(post models.Post) error {
	return s.write(post, false)
}

// Put stores the post, overwriting any previous value under the same id.
func (s *BoltStore) Put(post models.Post) error {
	return s.write(post, true)
}

func (s *BoltStore) write(post models.Post, overwrite bool) error {
	if IsReserved(post.ID) {
		return fmt.Errorf("%.40q: %w", post.ID, ErrReservedKey)
	}
	value, err := json.Marshal(post)
	if err != nil {
		return fmt.Errorf("could not encode post %.40q: %w", post.ID, err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(postsBucket)
		key := []byte(post.ID)
		if !overwrite && b.Get(key) != nil {
			return fmt.Errorf("%.40q: %w", post.ID, ErrExists)
		}
		if err := b.Put(key, value); err != nil {
			return fmt.Errorf("could not put %.40q: %w", post.ID, err)
		}
		return nil
	})
}

// Delete removes the post under id. Deleting a missing key is not an error.
func (s *BoltStore) Delete(id string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(postsBucket).Delete([]byte(id)); err != nil {
			return fmt.Errorf("could not delete %.40q: %w", id, err)
		}
		return nil
	})
}

// ForEach calls fn for every post, newest first. Ids are fixed-width
// millisecond timestamps, so key order is creation order. The scan runs in
// one read transaction and sees a snapshot; concurrent inserts are not
// visible to it. Records that fail to decode are logged and skipped.
// Iteration stops at the first error from fn or ctx.
func (s *BoltStore) ForEach(ctx context.Context, fn func(models.Post) error) error {
	return s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(postsBucket).Cursor()
		for k, v := c.Last(); k != nil; k, v = c.Prev() {
			if err := ctx.Err(); err != nil {
				return err
			}
			id := string(k)
			if IsReserved(id) {
				continue
			}
			var post models.Post
			if err := decode(id, v, &post); err != nil {
				utils.Sugar.Warnw("skipping undecodable post", "id", id, "err", err)
				continue
			}
			if err := fn(post); err != nil {
				return err
			}
		}
		return nil
	})
}

// List collects every post, newest first.
func (s *BoltStore) List(ctx context.Context) ([]models.Post, error) {
	posts := make([]models.Post, 0)
	err := s.ForEach(ctx, func(p models.Post) error {
		posts = append(posts, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// Reset deletes every key in the store and returns how many were removed.
func (s *BoltStore) Reset() (deleted int, err error) {
	err = s.db.Update(func(tx *bolt.Tx) error {
		c := tx.Bucket(postsBucket).Cursor()
		// Re-seek after each delete; Next after Delete may skip a key.
		for k, _ := c.First(); k != nil; k, _ = c.First() {
			if err := c.Delete(); err != nil {
				return fmt.Errorf("could not delete %.40q: %w", k, err)
			}
			deleted++
		}
		return nil
	})
	if err != nil {
		deleted = 0
	}
	return deleted, err
}

// LastID returns the largest numeric post id, or 0 for an empty store.
func (s *BoltStore) LastID() (last int64, err error) {
	err = s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(postsBucket).Cursor()
		for k, _ := c.Last(); k != nil; k, _ = c.Prev() {
			if n, err := strconv.ParseInt(string(k), 10, 64); err == nil {
				last = n
				return nil
			}
		}
		return nil
	})
	return last, err
}

func decode(id string, value []byte, post *models.Post) error {
	if err := json.Unmarshal(value, post); err != nil {
		return fmt.Errorf("could not decode %.40q: %w", id, err)
	}
	post.ID = id
	return nil
}
