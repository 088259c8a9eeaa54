package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-circulation/circulation/internal/errs"
	"github.com/Astemirdum/library-circulation/circulation/internal/inventory"
	"github.com/Astemirdum/library-circulation/circulation/internal/model"
	"github.com/Astemirdum/library-circulation/circulation/internal/repository"
)

var now = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to model.Availability
		want     bool
	}{
		{model.AvailabilityAvailable, model.AvailabilityOnLoan, true},
		{model.AvailabilityOnLoan, model.AvailabilityAvailable, true},
		{model.AvailabilityAvailable, model.AvailabilityOnHold, true},
		{model.AvailabilityOnHold, model.AvailabilityOnLoan, true},
		{model.AvailabilityOnHold, model.AvailabilityAvailable, true},
		{model.AvailabilityOnHold, model.AvailabilityInRepair, true},
		{model.AvailabilityInRepair, model.AvailabilityAvailable, true},
		{model.AvailabilityOnLoan, model.AvailabilityMissing, true},
		{model.AvailabilityMissing, model.AvailabilityAvailable, true},

		{model.AvailabilityOnLoan, model.AvailabilityOnHold, false},
		{model.AvailabilityOnLoan, model.AvailabilityInRepair, false},
		{model.AvailabilityInRepair, model.AvailabilityOnLoan, false},
		{model.AvailabilityMissing, model.AvailabilityOnLoan, false},
		{model.AvailabilityMissing, model.AvailabilityInRepair, false},
		{model.AvailabilityAvailable, model.AvailabilityAvailable, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, inventory.CanTransition(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestTargetAvailability(t *testing.T) {
	assert.Equal(t, model.AvailabilityMissing, inventory.TargetAvailability(model.ConditionLost, model.AvailabilityOnHold))
	assert.Equal(t, model.AvailabilityInRepair, inventory.TargetAvailability(model.ConditionDamaged, model.AvailabilityAvailable))
	assert.Equal(t, model.AvailabilityAvailable, inventory.TargetAvailability(model.ConditionGood, model.AvailabilityInRepair))
	assert.Equal(t, model.AvailabilityAvailable, inventory.TargetAvailability(model.ConditionFair, model.AvailabilityMissing))
	assert.Equal(t, model.AvailabilityOnHold, inventory.TargetAvailability(model.ConditionExcellent, model.AvailabilityOnHold))
}

func newRepo(t *testing.T, availability model.Availability) repository.Repository {
	t.Helper()
	repo := repository.NewMemory(zap.NewNop())
	err := repo.InTx(context.Background(), func(tx repository.Tx) error {
		return tx.CreateItem(context.Background(), model.Item{
			ID: "i1", CatalogRef: "c1", Condition: model.ConditionGood, Availability: availability,
		})
	})
	require.NoError(t, err)
	return repo
}

func assess(t *testing.T, repo repository.Repository, tr *inventory.Tracker, cond model.Condition) (inventory.AssessOutcome, error) {
	t.Helper()
	var out inventory.AssessOutcome
	err := repo.InTx(context.Background(), func(tx repository.Tx) error {
		var err error
		out, err = tr.Assess(context.Background(), tx, model.ConditionAssessment{
			ID: "a1", ItemID: "i1", Condition: cond, AssessedBy: "staff-1", AssessedAt: now,
		}, now)
		return err
	})
	return out, err
}

func TestTracker_Transition(t *testing.T) {
	repo := newRepo(t, model.AvailabilityAvailable)
	tr := inventory.NewTracker(nil, zap.NewNop())
	ctx := context.Background()

	err := repo.InTx(ctx, func(tx repository.Tx) error {
		_, err := tr.Transition(ctx, tx, "i1", model.AvailabilityAvailable, model.AvailabilityOnLoan, now)
		require.NoError(t, err)

		_, err = tr.Transition(ctx, tx, "i1", model.AvailabilityAvailable, model.AvailabilityOnHold, now)
		require.ErrorIs(t, err, errs.ErrStaleItemState)

		_, err = tr.Transition(ctx, tx, "i1", model.AvailabilityOnLoan, model.AvailabilityInRepair, now)
		require.ErrorIs(t, err, errs.ErrInvalidStateTransition)
		return nil
	})
	require.NoError(t, err)
}

func TestTracker_Assess(t *testing.T) {
	t.Run("damaged goes to repair", func(t *testing.T) {
		repo := newRepo(t, model.AvailabilityAvailable)
		out, err := assess(t, repo, inventory.NewTracker(nil, zap.NewNop()), model.ConditionDamaged)
		require.NoError(t, err)
		require.Equal(t, model.AvailabilityInRepair, out.Item.Availability)
		require.Equal(t, model.ConditionDamaged, out.Item.Condition)
		require.False(t, out.Released())
	})
	t.Run("repaired item is released", func(t *testing.T) {
		repo := newRepo(t, model.AvailabilityInRepair)
		out, err := assess(t, repo, inventory.NewTracker(nil, zap.NewNop()), model.ConditionGood)
		require.NoError(t, err)
		require.True(t, out.Released())
	})
	t.Run("lost hold item is displaced", func(t *testing.T) {
		repo := newRepo(t, model.AvailabilityOnHold)
		out, err := assess(t, repo, inventory.NewTracker(nil, zap.NewNop()), model.ConditionLost)
		require.NoError(t, err)
		require.Equal(t, model.AvailabilityMissing, out.Item.Availability)
		require.True(t, out.Displaced())
	})
	t.Run("missing item found damaged", func(t *testing.T) {
		repo := newRepo(t, model.AvailabilityMissing)
		out, err := assess(t, repo, inventory.NewTracker(nil, zap.NewNop()), model.ConditionDamaged)
		require.NoError(t, err)
		require.Equal(t, model.AvailabilityInRepair, out.Item.Availability)
		require.False(t, out.Released())
	})
	t.Run("loaned item rejected", func(t *testing.T) {
		repo := newRepo(t, model.AvailabilityOnLoan)
		_, err := assess(t, repo, inventory.NewTracker(nil, zap.NewNop()), model.ConditionDamaged)
		require.ErrorIs(t, err, errs.ErrItemOnLoan)

		item, err := repo.GetItem(context.Background(), "i1")
		require.NoError(t, err)
		require.Equal(t, model.ConditionGood, item.Condition)
	})
}

func TestTracker_StatusFallsBackWhenRedisIsDown(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	repo := newRepo(t, model.AvailabilityAvailable)
	tr := inventory.NewTracker(inventory.NewRedisCache(client, time.Minute, zap.NewNop()), zap.NewNop())

	st, err := tr.Status(context.Background(), repo, "i1")
	require.NoError(t, err)
	require.Equal(t, model.AvailabilityAvailable, st.Availability)
	tr.Invalidate(context.Background(), "i1")

	_, err = tr.Status(context.Background(), repo, "nope")
	require.ErrorIs(t, err, errs.ErrItemNotFound)
}
