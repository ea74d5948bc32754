package remote

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ProductManager/internal/cli/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func recv(t *testing.T, s *Stream) ([]model.Product, bool) {
	t.Helper()
	select {
	case p, ok := <-s.C:
		return p, ok
	case <-time.After(5 * time.Second):
		t.Fatal("stream did not deliver")
		return nil, false
	}
}

func TestStream_DeliversProductsWithDocumentIDs(t *testing.T) {
	store := newFakeStore()
	s := NewProductRepository(store, zap.NewNop().Sugar()).Watch(context.Background(), "u1")
	defer s.Close()

	assert.Equal(t, "products", store.query.Collection)
	assert.Equal(t, "userId", store.query.Field)
	assert.Equal(t, "u1", store.query.Value)

	store.emit()
	got, ok := recv(t, s)
	require.True(t, ok)
	assert.Empty(t, got, "empty set is a valid snapshot")

	store.emit(doc("a", `{"userId":"u1","nombre":"Pen","precio":1.5,"stock":3,"categoria":"Hogar"}`))
	got, ok = recv(t, s)
	require.True(t, ok)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "u1", got[0].UserID)
	assert.Equal(t, "Pen", got[0].Name)
	assert.Equal(t, 3, got[0].Stock)
}

func TestStream_MalformedDocumentIsDropped(t *testing.T) {
	store := newFakeStore()
	s := NewProductRepository(store, zap.NewNop().Sugar()).Watch(context.Background(), "u1")
	defer s.Close()

	store.emit(
		doc("a", `{"userId":"u1","nombre":"Pen","precio":1,"stock":1,"categoria":"Hogar"}`),
		doc("bad", `{"userId":"u1","stock":"lots"}`),
		doc("c", `{"userId":"u1","nombre":"Cup","precio":"2","stock":0,"categoria":"Hogar"}`),
	)
	got, ok := recv(t, s)
	require.True(t, ok)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "c", got[1].ID)
}

func TestStream_ConflatesToLatest(t *testing.T) {
	store := newFakeStore()
	s := NewProductRepository(store, zap.NewNop().Sugar()).Watch(context.Background(), "u1")
	defer s.Close()

	p := `{"userId":"u1","nombre":"x","precio":1,"stock":1,"categoria":"c"}`
	store.emit(doc("1", p))
	store.emit(doc("1", p), doc("2", p))
	store.emit(doc("1", p), doc("2", p), doc("3", p))

	// lists only grow here, so a stale list after a newer one shows up as a shrink
	last := 0
	for last < 3 {
		got, ok := recv(t, s)
		require.True(t, ok)
		require.GreaterOrEqual(t, len(got), last)
		last = len(got)
	}
	select {
	case extra := <-s.C:
		t.Fatalf("unexpected extra delivery: %v", extra)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestStream_ErrorClosesWithCause(t *testing.T) {
	store := newFakeStore()
	s := NewProductRepository(store, zap.NewNop().Sugar()).Watch(context.Background(), "u1")

	cause := errors.New("permission denied")
	store.emit(doc("a", `{"userId":"u1","nombre":"Pen","precio":1,"stock":1,"categoria":"Hogar"}`))
	store.fail(cause)

	var lists [][]model.Product
	for p := range s.C {
		lists = append(lists, p)
	}
	require.NotEmpty(t, lists, "snapshot sent before the failure is delivered")
	assert.Len(t, lists[len(lists)-1], 1)
	assert.Equal(t, cause, s.Err())
	assert.Equal(t, int32(1), store.reg.removes.Load())

	s.Close()
	assert.Equal(t, int32(1), store.reg.removes.Load())
}

func TestStream_CloseAndCancelEndWithoutError(t *testing.T) {
	t.Run("close", func(t *testing.T) {
		store := newFakeStore()
		s := NewProductRepository(store, zap.NewNop().Sugar()).Watch(context.Background(), "u1")
		s.Close()
		s.Close()
		_, ok := <-s.C
		assert.False(t, ok)
		assert.NoError(t, s.Err())
		assert.Equal(t, int32(1), store.reg.removes.Load())
	})
	t.Run("cancel", func(t *testing.T) {
		store := newFakeStore()
		ctx, cancel := context.WithCancel(context.Background())
		s := NewProductRepository(store, zap.NewNop().Sugar()).Watch(ctx, "u1")
		cancel()
		_, ok := recv(t, s)
		assert.False(t, ok)
		assert.NoError(t, s.Err())
		s.Close()
		assert.Equal(t, int32(1), store.reg.removes.Load())
	})
}

func TestStream_ReleaseExactlyOnceUnderRace(t *testing.T) {
	for i := 0; i < 200; i++ {
		store := newFakeStore()
		ctx, cancel := context.WithCancel(context.Background())
		s := NewProductRepository(store, zap.NewNop().Sugar()).Watch(ctx, "u1")

		var wg sync.WaitGroup
		start := make(chan struct{})
		wg.Add(3)
		go func() { defer wg.Done(); <-start; store.fail(errors.New("boom")) }()
		go func() { defer wg.Done(); <-start; cancel() }()
		go func() { defer wg.Done(); <-start; s.Close() }()
		close(start)
		wg.Wait()
		s.Close()

		for range s.C {
		}
		require.Equal(t, int32(1), store.reg.removes.Load(), "iteration %d", i)
	}
}

func TestStream_FeedsCache(t *testing.T) {
	store := newFakeStore()
	cache := &fakeCache{}
	s := NewProductRepository(store, zap.NewNop().Sugar()).WithCache(cache).Watch(context.Background(), "u1")
	defer s.Close()

	store.emit(doc("a", `{"userId":"u1","nombre":"Pen","precio":1,"stock":1,"categoria":"Hogar"}`))
	_, ok := recv(t, s)
	require.True(t, ok)
	saved, ok := cache.get("u1")
	require.True(t, ok)
	require.Len(t, saved, 1)
	assert.Equal(t, "a", saved[0].ID)
}
