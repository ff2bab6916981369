package recency

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/flavorgraph/internal/core/model"
)

type MockStore struct {
	mu        sync.Mutex
	Entries   map[string]model.LatestPairing
	SaveErr   error
	DeleteErr error
	ListErr   error

	// FailDelete makes Delete fail for this UUID only.
	FailDelete string
}

func NewMockStore() *MockStore {
	return &MockStore{Entries: make(map[string]model.LatestPairing)}
}

func (m *MockStore) List(ctx context.Context) ([]model.LatestPairing, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	var out []model.LatestPairing
	for _, p := range m.Entries {
		out = append(out, p)
	}
	return out, nil
}

func (m *MockStore) Save(ctx context.Context, p model.LatestPairing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Entries[p.UUID] = p
	return nil
}

func (m *MockStore) Delete(ctx context.Context, p model.LatestPairing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	if m.FailDelete != "" && m.FailDelete == p.UUID {
		return errors.New("delete rejected")
	}
	delete(m.Entries, p.UUID)
	return nil
}

func newTestWindow(store Store) *Window {
	w := NewWindow(store)
	n := 0
	w.UUIDGenerator = func() string {
		n++
		return fmt.Sprintf("lp-%d", n)
	}
	return w
}

var base = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func at(sec int) time.Time { return base.Add(time.Duration(sec) * time.Second) }

func names(ps []model.LatestPairing) []string {
	var out []string
	for _, p := range ps {
		out = append(out, p.Ingredient1)
	}
	return out
}

func TestRecord_EvictsOldest(t *testing.T) {
	ctx := context.Background()
	w := newTestWindow(nil)

	for i := 1; i <= 6; i++ {
		_, ok, err := w.Record(ctx, fmt.Sprintf("i%d", i), "x", at(i))
		require.NoError(t, err)
		assert.True(t, ok)
		assert.LessOrEqual(t, w.Len(), Capacity)
	}

	assert.Equal(t, []string{"i6", "i5", "i4", "i3", "i2"}, names(w.ListDescending()))
}

func TestRecord_DropsEventOlderThanFullWindow(t *testing.T) {
	ctx := context.Background()
	w := newTestWindow(nil)
	for i := 10; i < 15; i++ {
		_, _, err := w.Record(ctx, fmt.Sprintf("i%d", i), "x", at(i))
		require.NoError(t, err)
	}

	_, ok, err := w.Record(ctx, "stale", "x", at(1))
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NotContains(t, names(w.ListDescending()), "stale")
	assert.Equal(t, Capacity, w.Len())
}

func TestListDescending_AnyInsertionOrder(t *testing.T) {
	ctx := context.Background()
	rng := rand.New(rand.NewSource(7))

	for round := 0; round < 20; round++ {
		w := newTestWindow(nil)
		secs := rng.Perm(12)
		for _, s := range secs {
			_, _, err := w.Record(ctx, fmt.Sprintf("i%d", s), "x", at(s))
			require.NoError(t, err)
		}

		got := w.ListDescending()
		require.Len(t, got, Capacity)
		for i := 1; i < len(got); i++ {
			assert.True(t, got[i-1].DateAdded.After(got[i].DateAdded), "round %d", round)
		}
		assert.Equal(t, []string{"i11", "i10", "i9", "i8", "i7"}, names(got))
	}
}

func TestListDescending_DoesNotMutate(t *testing.T) {
	ctx := context.Background()
	w := newTestWindow(nil)
	for i := 0; i < 3; i++ {
		_, _, err := w.Record(ctx, fmt.Sprintf("i%d", i), "x", at(i))
		require.NoError(t, err)
	}

	first := w.ListDescending()
	first[0].Ingredient1 = "changed"
	assert.Equal(t, "i2", w.ListDescending()[0].Ingredient1)
	assert.Equal(t, 3, w.Len())
}

func TestListDescending_TiesFollowInsertionOrder(t *testing.T) {
	ctx := context.Background()
	w := newTestWindow(nil)
	for _, n := range []string{"a", "b", "c"} {
		_, _, err := w.Record(ctx, n, "x", at(0))
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"c", "b", "a"}, names(w.ListDescending()))

	for _, n := range []string{"d", "e", "f"} {
		_, _, err := w.Record(ctx, n, "x", at(0))
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"f", "e", "d", "c", "b"}, names(w.ListDescending()))
}

func TestRecord_KeepsStoreInSync(t *testing.T) {
	ctx := context.Background()
	store := NewMockStore()
	w := newTestWindow(store)

	for i := 0; i < 9; i++ {
		_, _, err := w.Record(ctx, fmt.Sprintf("i%d", i), "x", at(i))
		require.NoError(t, err)
	}

	require.Len(t, store.Entries, Capacity)
	for _, p := range w.ListDescending() {
		assert.Contains(t, store.Entries, p.UUID)
	}
}

func fullWindow(t *testing.T, store *MockStore) *Window {
	t.Helper()
	w := newTestWindow(store)
	for i := 0; i < Capacity; i++ {
		_, _, err := w.Record(context.Background(), fmt.Sprintf("i%d", i), "x", at(i))
		require.NoError(t, err)
	}
	return w
}

func TestRecord_SaveFailureKeepsOldest(t *testing.T) {
	store := NewMockStore()
	w := fullWindow(t, store)

	store.SaveErr = errors.New("db down")
	_, ok, err := w.Record(context.Background(), "new", "x", at(100))
	require.ErrorIs(t, err, store.SaveErr)
	assert.False(t, ok)

	assert.Equal(t, Capacity, w.Len())
	assert.Equal(t, []string{"i4", "i3", "i2", "i1", "i0"}, names(w.ListDescending()))
	assert.Len(t, store.Entries, Capacity)
	assert.Contains(t, store.Entries, "lp-1")
}

func TestRecord_EvictFailureRollsBackSave(t *testing.T) {
	store := NewMockStore()
	w := fullWindow(t, store)

	store.FailDelete = "lp-1"
	_, ok, err := w.Record(context.Background(), "new", "x", at(100))
	require.Error(t, err)
	assert.False(t, ok)

	assert.Equal(t, []string{"i4", "i3", "i2", "i1", "i0"}, names(w.ListDescending()))
	require.Len(t, store.Entries, Capacity)
	for _, p := range w.ListDescending() {
		assert.Contains(t, store.Entries, p.UUID)
	}
}

func TestRecord_FailedRollbackIsTrimmedOnLoad(t *testing.T) {
	ctx := context.Background()
	store := NewMockStore()
	w := fullWindow(t, store)

	store.DeleteErr = errors.New("db down")
	_, _, err := w.Record(ctx, "new", "x", at(100))
	require.ErrorIs(t, err, store.DeleteErr)
	assert.Equal(t, Capacity, w.Len())
	assert.NotContains(t, names(w.ListDescending()), "new")
	assert.Len(t, store.Entries, Capacity+1)

	store.DeleteErr = nil
	reloaded := newTestWindow(store)
	require.NoError(t, reloaded.Load(ctx))
	assert.Equal(t, Capacity, reloaded.Len())
	assert.Len(t, store.Entries, Capacity)
}

func TestLoad_KeepsNewestAndTrimsStore(t *testing.T) {
	ctx := context.Background()
	store := NewMockStore()
	for i := 0; i < 8; i++ {
		p := model.LatestPairing{UUID: fmt.Sprintf("p%d", i), Ingredient1: fmt.Sprintf("i%d", i), Ingredient2: "x", DateAdded: at(i)}
		store.Entries[p.UUID] = p
	}

	w := newTestWindow(store)
	require.NoError(t, w.Load(ctx))

	assert.Equal(t, []string{"i7", "i6", "i5", "i4", "i3"}, names(w.ListDescending()))
	assert.Len(t, store.Entries, Capacity)
	assert.NotContains(t, store.Entries, "p0")

	_, _, err := w.Record(ctx, "i8", "x", at(8))
	require.NoError(t, err)
	assert.Equal(t, "i8", w.ListDescending()[0].Ingredient1)
	assert.NotContains(t, store.Entries, "p3")
}

func TestLoad_Error(t *testing.T) {
	store := NewMockStore()
	store.ListErr = errors.New("db down")
	w := newTestWindow(store)

	err := w.Load(context.Background())
	assert.ErrorIs(t, err, store.ListErr)
}

func TestRecord_Concurrent(t *testing.T) {
	ctx := context.Background()
	store := NewMockStore()
	w := NewWindow(store)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, err := w.Record(ctx, fmt.Sprintf("i%d", i), "x", at(i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, Capacity, w.Len())
	assert.Len(t, store.Entries, Capacity)
	assert.Equal(t, []string{"i49", "i48", "i47", "i46", "i45"}, names(w.ListDescending()))
}
