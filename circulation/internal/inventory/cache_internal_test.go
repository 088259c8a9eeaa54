package inventory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-circulation/circulation/internal/model"
	"github.com/Astemirdum/library-circulation/circulation/internal/repository"
)

// memCache stores entries the way redisCache does and applies the same version check.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string][]byte)}
}

func (c *memCache) Get(_ context.Context, itemID string) (model.ItemStatus, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.data[itemID]
	if !ok {
		return model.ItemStatus{}, false
	}
	var e cacheEntry
	if err := json.Unmarshal(raw, &e); err != nil {
		return model.ItemStatus{}, false
	}
	return e.Status, true
}

func (c *memCache) Set(_ context.Context, st model.ItemStatus, version int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cur, ok := c.data[st.ItemID]; ok && !supersedes(cur, version) {
		return
	}
	raw, err := json.Marshal(cacheEntry{Version: version, Status: st})
	if err != nil {
		return
	}
	c.data[st.ItemID] = raw
}

func (c *memCache) Invalidate(_ context.Context, itemIDs ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range itemIDs {
		delete(c.data, id)
	}
}

// commitBetween runs commit after the item is read and before the caller sees it.
type commitBetween struct {
	repository.Reader
	commit func()
}

func (r commitBetween) GetItem(ctx context.Context, id string) (model.Item, error) {
	item, err := r.Reader.GetItem(ctx, id)
	r.commit()
	return item, err
}

func TestSupersedes(t *testing.T) {
	raw, err := json.Marshal(cacheEntry{Version: 3, Status: model.ItemStatus{ItemID: "i1"}})
	require.NoError(t, err)

	require.True(t, supersedes(raw, 4))
	require.False(t, supersedes(raw, 3))
	require.False(t, supersedes(raw, 2))
	require.True(t, supersedes([]byte("garbage"), 0))
}

func TestTracker_StaleReadDoesNotOverwriteNewerStatus(t *testing.T) {
	ctx := context.Background()
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	repo := repository.NewMemory(zap.NewNop())
	require.NoError(t, repo.InTx(ctx, func(tx repository.Tx) error {
		return tx.CreateItem(ctx, model.Item{ID: "i1", CatalogRef: "c1", Condition: model.ConditionGood, Availability: model.AvailabilityAvailable})
	}))

	cache := newMemCache()
	tr := NewTracker(cache, zap.NewNop())

	checkout := func() {
		require.NoError(t, repo.InTx(ctx, func(tx repository.Tx) error {
			_, err := tr.Transition(ctx, tx, "i1", model.AvailabilityAvailable, model.AvailabilityOnLoan, at)
			return err
		}))
		tr.Refresh(ctx, repo, "i1")
	}

	// the read saw the copy available, the checkout committed before the read was cached
	st, err := tr.Status(ctx, commitBetween{Reader: repo, commit: checkout}, "i1")
	require.NoError(t, err)
	require.Equal(t, model.AvailabilityAvailable, st.Availability)

	cached, ok := cache.Get(ctx, "i1")
	require.True(t, ok)
	require.Equal(t, model.AvailabilityOnLoan, cached.Availability)

	st, err = tr.Status(ctx, repo, "i1")
	require.NoError(t, err)
	require.Equal(t, model.AvailabilityOnLoan, st.Availability)
}

func TestTracker_RefreshInvalidatesUnreadableItems(t *testing.T) {
	ctx := context.Background()
	cache := newMemCache()
	cache.Set(ctx, model.ItemStatus{ItemID: "gone", Availability: model.AvailabilityAvailable}, 1)

	tr := NewTracker(cache, zap.NewNop())
	tr.Refresh(ctx, repository.NewMemory(zap.NewNop()), "gone")

	_, ok := cache.Get(ctx, "gone")
	require.False(t, ok)
}
