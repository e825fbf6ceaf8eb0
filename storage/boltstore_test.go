package storage_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/boltdb/bolt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/mdblog/models"
	"github.com/cppla/mdblog/storage"
)

func openStore(t *testing.T) *storage.BoltStore {
	t.Helper()
	s, err := storage.Open(filepath.Join(t.TempDir(), "nested", "posts.db"))
	require.Nil(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestGetMissingKey(t *testing.T) {
	s := openStore(t)
	_, err := s.Get("1700000000000")
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestInsertThenGet(t *testing.T) {
	s := openStore(t)
	in := models.Post{ID: "1700000000000", Title: "Hello", Short: "world"}
	require.Nil(t, s.Insert(in))

	out, err := s.Get(in.ID)
	require.Nil(t, err)
	assert.Equal(t, in, out)
}

func TestInsertRefusesExistingKey(t *testing.T) {
	s := openStore(t)
	p := models.Post{ID: "1700000000000", Short: "first"}
	require.Nil(t, s.Insert(p))

	p.Short = "second"
	err := s.Insert(p)
	assert.True(t, errors.Is(err, storage.ErrExists))

	out, err := s.Get(p.ID)
	require.Nil(t, err)
	assert.Equal(t, "first", out.Short)
}

func TestPutOverwrites(t *testing.T) {
	s := openStore(t)
	require.Nil(t, s.Put(models.Post{ID: "1", Short: "a"}))
	require.Nil(t, s.Put(models.Post{ID: "1", Short: "b"}))
	out, err := s.Get("1")
	require.Nil(t, err)
	assert.Equal(t, "b", out.Short)
}

func TestDelete(t *testing.T) {
	s := openStore(t)
	require.Nil(t, s.Insert(models.Post{ID: "1", Short: "a"}))
	require.Nil(t, s.Delete("1"))
	_, err := s.Get("1")
	assert.True(t, errors.Is(err, storage.ErrNotFound))
	assert.Nil(t, s.Delete("1"))
}

func TestReservedKeyIsNeverAPost(t *testing.T) {
	s := openStore(t)
	err := s.Insert(models.Post{ID: "index", Short: "nope"})
	assert.True(t, errors.Is(err, storage.ErrReservedKey))

	_, err = s.Get("index")
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestForEachSkipsLegacyIndexRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "posts.db")
	db, err := bolt.Open(path, 0o600, nil)
	require.Nil(t, err)
	s, err := storage.NewBoltStore(db)
	require.Nil(t, err)
	defer s.Close()

	require.Nil(t, s.Insert(models.Post{ID: "1700000000000", Short: "a"}))
	// A data file written by the materialized-index layout.
	require.Nil(t, db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte("posts")).Put([]byte("index"), []byte(`[]`))
	}))

	posts, err := s.List(context.Background())
	require.Nil(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "1700000000000", posts[0].ID)

	_, err = s.Get("index")
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestListSkipsUndecodableRecord(t *testing.T) {
	path := filepath.Join(t.TempDir(), "posts.db")
	db, err := bolt.Open(path, 0o600, nil)
	require.Nil(t, err)
	s, err := storage.NewBoltStore(db)
	require.Nil(t, err)
	defer s.Close()

	require.Nil(t, s.Insert(models.Post{ID: "1700000000000", Short: "older"}))
	require.Nil(t, s.Insert(models.Post{ID: "1700000000002", Short: "newer"}))
	require.Nil(t, db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte("posts")).Put([]byte("1700000000001"), []byte(`{"short":`))
	}))

	posts, err := s.List(context.Background())
	require.Nil(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "1700000000002", posts[0].ID)
	assert.Equal(t, "1700000000000", posts[1].ID)

	_, err = s.Get("1700000000001")
	assert.NotNil(t, err)
	assert.False(t, errors.Is(err, storage.ErrNotFound))
}

func TestListNewestFirst(t *testing.T) {
	s := openStore(t)
	for _, id := range []string{"1700000000002", "1700000000000", "1700000000001"} {
		require.Nil(t, s.Insert(models.Post{ID: id, Short: id}))
	}
	posts, err := s.List(context.Background())
	require.Nil(t, err)
	var ids []string
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []string{"1700000000002", "1700000000001", "1700000000000"}, ids)
}

func TestListEmptyStore(t *testing.T) {
	s := openStore(t)
	posts, err := s.List(context.Background())
	require.Nil(t, err)
	assert.NotNil(t, posts)
	assert.Empty(t, posts)
}

func TestForEachStopsOnCallbackError(t *testing.T) {
	s := openStore(t)
	require.Nil(t, s.Insert(models.Post{ID: "1", Short: "a"}))
	require.Nil(t, s.Insert(models.Post{ID: "2", Short: "b"}))

	stop := errors.New("stop")
	calls := 0
	err := s.ForEach(context.Background(), func(models.Post) error {
		calls++
		return stop
	})
	assert.True(t, errors.Is(err, stop))
	assert.Equal(t, 1, calls)
}

func TestForEachHonoursCancelledContext(t *testing.T) {
	s := openStore(t)
	require.Nil(t, s.Insert(models.Post{ID: "1", Short: "a"}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := s.ForEach(ctx, func(models.Post) error { return nil })
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestReset(t *testing.T) {
	s := openStore(t)
	for _, id := range []string{"1", "2", "3"} {
		require.Nil(t, s.Insert(models.Post{ID: id, Short: id}))
	}
	n, err := s.Reset()
	require.Nil(t, err)
	assert.Equal(t, 3, n)

	posts, err := s.List(context.Background())
	require.Nil(t, err)
	assert.Empty(t, posts)

	// The bucket survives a reset.
	require.Nil(t, s.Insert(models.Post{ID: "4", Short: "d"}))
}

func TestLastID(t *testing.T) {
	s := openStore(t)
	last, err := s.LastID()
	require.Nil(t, err)
	assert.Equal(t, int64(0), last)

	require.Nil(t, s.Insert(models.Post{ID: "1700000000005", Short: "a"}))
	require.Nil(t, s.Insert(models.Post{ID: "1700000000009", Short: "b"}))
	last, err = s.LastID()
	require.Nil(t, err)
	assert.Equal(t, int64(1700000000009), last)
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "posts.db")
	s, err := storage.Open(path)
	require.Nil(t, err)
	require.Nil(t, s.Insert(models.Post{ID: "1", Short: "kept"}))
	require.Nil(t, s.Close())

	s, err = storage.Open(path)
	require.Nil(t, err)
	defer s.Close()
	p, err := s.Get("1")
	require.Nil(t, err)
	assert.Equal(t, "kept", p.Short)
}
