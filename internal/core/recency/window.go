// Package recency keeps the most recent pairing creations.
package recency

import (
	"container/heap"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/agenthands/flavorgraph/internal/core/model"
	"github.com/agenthands/flavorgraph/internal/logging"
	"github.com/agenthands/flavorgraph/internal/metrics"
)

// Capacity is the number of entries the window holds at rest.
const Capacity = 5

// Store persists window entries. Implementations need not order List.
type Store interface {
	List(ctx context.Context) ([]model.LatestPairing, error)
	Save(ctx context.Context, p model.LatestPairing) error
	Delete(ctx context.Context, p model.LatestPairing) error
}

type entry struct {
	model.LatestPairing
	seq uint64
}

// older orders by timestamp, then by insertion sequence.
func older(a, b entry) bool {
	if !a.DateAdded.Equal(b.DateAdded) {
		return a.DateAdded.Before(b.DateAdded)
	}
	return a.seq < b.seq
}

// entryHeap is a min-heap: the oldest entry sits at index 0.
type entryHeap []entry

func (h entryHeap) Len() int           { return len(h) }
func (h entryHeap) Less(i, j int) bool { return older(h[i], h[j]) }
func (h entryHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *entryHeap) Push(x any)        { *h = append(*h, x.(entry)) }
func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// Window is a bounded set of the newest pairings. Record and eviction happen
// under one lock, store writes included.
type Window struct {
	mu       sync.Mutex
	capacity int
	entries  entryHeap
	seq      uint64
	store    Store

	UUIDGenerator func() string
}

// NewWindow returns an empty window backed by store. A nil store keeps the
// window in memory only.
func NewWindow(store Store) *Window {
	return &Window{
		capacity:      Capacity,
		store:         store,
		UUIDGenerator: func() string { return uuid.New().String() },
	}
}

// Load replaces the window contents with the newest persisted entries and
// deletes any overflow from the store.
func (w *Window) Load(ctx context.Context) error {
	if w.store == nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	persisted, err := w.store.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to load latest pairings: %w", err)
	}

	slices.SortFunc(persisted, func(a, b model.LatestPairing) int {
		if c := a.DateAdded.Compare(b.DateAdded); c != 0 {
			return c
		}
		return strings.Compare(a.UUID, b.UUID)
	})

	for len(persisted) > w.capacity {
		if err := w.store.Delete(ctx, persisted[0]); err != nil {
			return fmt.Errorf("failed to evict latest pairing %s: %w", persisted[0].UUID, err)
		}
		persisted = persisted[1:]
	}

	w.entries = w.entries[:0]
	for _, p := range persisted {
		w.seq++
		w.entries = append(w.entries, entry{LatestPairing: p, seq: w.seq})
	}
	heap.Init(&w.entries)
	return nil
}

// Record adds a pairing event. When the window is full the oldest entry is
// evicted; an event older than everything in a full window is dropped.
func (w *Window) Record(ctx context.Context, name1, name2 string, at time.Time) (model.LatestPairing, bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.seq++
	e := entry{
		LatestPairing: model.LatestPairing{
			UUID:        w.UUIDGenerator(),
			Ingredient1: name1,
			Ingredient2: name2,
			DateAdded:   at.UTC(),
		},
		seq: w.seq,
	}

	full := len(w.entries) >= w.capacity
	if full && older(e, w.entries[0]) {
		return e.LatestPairing, false, nil
	}

	if w.store != nil {
		if err := w.persist(ctx, e, full); err != nil {
			return model.LatestPairing{}, false, err
		}
	}

	if full {
		heap.Pop(&w.entries)
		metrics.RecencyEvictions.Inc()
	}
	heap.Push(&w.entries, e)
	return e.LatestPairing, true, nil
}

// persist saves e and, when the window is full, deletes the oldest entry. A
// failed delete removes e again so the store never loses an entry the window
// keeps. If that also fails the store holds one extra entry, which Load trims.
func (w *Window) persist(ctx context.Context, e entry, full bool) error {
	if err := w.store.Save(ctx, e.LatestPairing); err != nil {
		return fmt.Errorf("failed to save latest pairing: %w", err)
	}
	if !full {
		return nil
	}

	oldest := w.entries[0]
	if err := w.store.Delete(ctx, oldest.LatestPairing); err != nil {
		if rbErr := w.store.Delete(ctx, e.LatestPairing); rbErr != nil {
			logging.Warn().Err(rbErr).Str("uuid", e.UUID).Msg("failed to roll back latest pairing")
		}
		return fmt.Errorf("failed to evict latest pairing %s: %w", oldest.UUID, err)
	}
	return nil
}

// ListDescending returns the entries newest first without touching the window.
func (w *Window) ListDescending() []model.LatestPairing {
	w.mu.Lock()
	snapshot := slices.Clone(w.entries)
	w.mu.Unlock()

	slices.SortFunc(snapshot, func(a, b entry) int {
		switch {
		case older(b, a):
			return -1
		case older(a, b):
			return 1
		}
		return 0
	})

	out := make([]model.LatestPairing, len(snapshot))
	for i, e := range snapshot {
		out[i] = e.LatestPairing
	}
	return out
}

func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.entries)
}
