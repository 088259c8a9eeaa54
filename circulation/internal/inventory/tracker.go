package inventory

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-circulation/circulation/internal/errs"
	"github.com/Astemirdum/library-circulation/circulation/internal/model"
	"github.com/Astemirdum/library-circulation/circulation/internal/repository"
)

// Tracker is the only writer of item availability and condition.
type Tracker struct {
	cache StatusCache
	log   *zap.Logger
}

func NewTracker(cache StatusCache, log *zap.Logger) *Tracker {
	if cache == nil {
		cache = noCache{}
	}
	return &Tracker{
		cache: cache,
		log:   log.Named("inventory"),
	}
}

// Transition moves itemID from the expected availability to another one. It fails with
// errs.ErrInvalidStateTransition for an illegal edge and errs.ErrStaleItemState when the
// item is no longer in from.
func (t *Tracker) Transition(ctx context.Context, tx repository.Tx, itemID string, from, to model.Availability, now time.Time) (model.Item, error) {
	if !CanTransition(from, to) {
		return model.Item{}, errors.Wrapf(errs.ErrInvalidStateTransition, "%s -> %s", from, to)
	}
	return tx.CompareAndSetAvailability(ctx, itemID, from, to, now)
}

type AssessOutcome struct {
	Item model.Item
	From model.Availability
}

// Released reports that the item became available and its queue must be promoted.
func (o AssessOutcome) Released() bool {
	return o.From != model.AvailabilityAvailable && o.Item.Availability == model.AvailabilityAvailable
}

// Displaced reports that a ready hold lost its item and must go back to waiting.
func (o AssessOutcome) Displaced() bool {
	return o.From == model.AvailabilityOnHold && o.Item.Availability != model.AvailabilityOnHold
}

// Assess records a condition assessment and applies the availability it implies at now.
// a.AssessedAt may lie in the past; it is stored as is. The assessor has the physical
// copy in hand, so loaned items are rejected.
func (t *Tracker) Assess(ctx context.Context, tx repository.Tx, a model.ConditionAssessment, now time.Time) (AssessOutcome, error) {
	item, err := tx.LockItem(ctx, a.ItemID)
	if err != nil {
		return AssessOutcome{}, err
	}
	if item.Availability == model.AvailabilityOnLoan {
		return AssessOutcome{}, errs.ErrItemOnLoan
	}
	if item.Retired {
		return AssessOutcome{}, errors.Wrap(errs.ErrInvalidStateTransition, "item retired")
	}

	if err := tx.InsertAssessment(ctx, a); err != nil {
		return AssessOutcome{}, err
	}
	if err := tx.UpdateItemCondition(ctx, item.ID, a.Condition, now); err != nil {
		return AssessOutcome{}, err
	}
	item.Condition = a.Condition

	out := AssessOutcome{Item: item, From: item.Availability}
	target := TargetAvailability(a.Condition, item.Availability)
	from := item.Availability
	for _, step := range route(from, target) {
		moved, err := t.Transition(ctx, tx, item.ID, from, step, now)
		if err != nil {
			return AssessOutcome{}, err
		}
		out.Item = moved
		from = step
	}
	t.log.Debug("assessed",
		zap.String("item_id", item.ID),
		zap.String("condition", string(a.Condition)),
		zap.String("from", string(out.From)),
		zap.String("to", string(out.Item.Availability)))
	return out, nil
}

// Status serves the availability projection, read through the cache.
func (t *Tracker) Status(ctx context.Context, r repository.Reader, itemID string) (model.ItemStatus, error) {
	if st, ok := t.cache.Get(ctx, itemID); ok {
		return st, nil
	}
	item, err := r.GetItem(ctx, itemID)
	if err != nil {
		return model.ItemStatus{}, err
	}
	st := StatusOf(item)
	t.cache.Set(ctx, st, item.Version)
	return st, nil
}

// Refresh writes the committed status of itemIDs through to the cache. Items that
// cannot be read are invalidated instead.
func (t *Tracker) Refresh(ctx context.Context, r repository.Reader, itemIDs ...string) {
	if _, ok := t.cache.(noCache); ok {
		return
	}
	for _, id := range itemIDs {
		item, err := r.GetItem(ctx, id)
		if err != nil {
			t.cache.Invalidate(ctx, id)
			continue
		}
		t.cache.Set(ctx, StatusOf(item), item.Version)
	}
}

func (t *Tracker) Invalidate(ctx context.Context, itemIDs ...string) {
	t.cache.Invalidate(ctx, itemIDs...)
}

func StatusOf(item model.Item) model.ItemStatus {
	return model.ItemStatus{
		ItemID:       item.ID,
		Availability: item.Availability,
		Condition:    item.Condition,
		Retired:      item.Retired,
	}
}
