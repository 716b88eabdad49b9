package session

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	st := NewMemoryStore(time.Hour)
	id := uuid.New()

	_, err := st.Load(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)

	s := New()
	s.Answers = map[int]string{0: "Paris"}
	require.NoError(t, st.Save(ctx, id, s))

	s.Answers[0] = "London"
	got, err := st.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Paris", got.Answers[0], "store keeps its own copy")

	require.NoError(t, st.Delete(ctx, id))
	_, err = st.Load(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	st := NewMemoryStore(time.Minute)
	st.now = func() time.Time { return now }

	a, b := uuid.New(), uuid.New()
	require.NoError(t, st.Save(ctx, a, New()))
	now = now.Add(30 * time.Second)
	require.NoError(t, st.Save(ctx, b, New()))

	now = now.Add(45 * time.Second)
	assert.Equal(t, 1, st.Sweep())

	_, err := st.Load(ctx, a)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = st.Load(ctx, b)
	assert.NoError(t, err)
}

func TestLoadOrNew(t *testing.T) {
	st := NewMemoryStore(time.Hour)
	s, err := LoadOrNew(context.Background(), st, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, New(), s)
}

// Runs against a real server only when TEST_REDIS_ADDR is set.
func TestRedisStore(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })
	require.NoError(t, rdb.Ping(ctx).Err())

	store := NewRedisStore(rdb, time.Minute)
	id := uuid.New()

	_, err := store.Load(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)

	s, err := Reduce(New(), Uploaded{FileName: "notes.pdf", TotalPages: 1, NumPages: 1, Text: "Text."})
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, id, s))

	got, err := store.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "notes.pdf", got.FileName)

	ttl, err := rdb.TTL(ctx, store.key(id)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, store.Delete(ctx, id))
	_, err = store.Load(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}
