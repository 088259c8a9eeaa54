package queue

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-circulation/circulation/internal/errs"
	"github.com/Astemirdum/library-circulation/circulation/internal/inventory"
	"github.com/Astemirdum/library-circulation/circulation/internal/model"
	"github.com/Astemirdum/library-circulation/circulation/internal/notify"
	"github.com/Astemirdum/library-circulation/circulation/internal/policy"
	"github.com/Astemirdum/library-circulation/circulation/internal/repository"
)

// Manager owns reservations. Every method runs inside the caller's transaction while
// the caller holds the item's exclusion scope.
type Manager struct {
	inventory *inventory.Tracker
	policies  policy.Provider
	log       *zap.Logger
}

func NewManager(inv *inventory.Tracker, policies policy.Provider, log *zap.Logger) *Manager {
	return &Manager{
		inventory: inv,
		policies:  policies,
		log:       log.Named("queue"),
	}
}

// Place queues member for item. When the item is available with an empty queue the new
// reservation is promoted right away, so an available item never has waiting reservations.
func (m *Manager) Place(ctx context.Context, tx repository.Tx, member model.Member, item model.Item, now time.Time, b *notify.Batch) (model.Reservation, error) {
	if member.Standing != model.StandingGood {
		return model.Reservation{}, errs.ErrMemberSuspended
	}
	if item.Retired {
		return model.Reservation{}, errors.Wrap(errs.ErrItemUnavailable, "item retired")
	}
	pol, err := m.policies.PolicyFor(ctx, member.MembershipClass)
	if err != nil {
		return model.Reservation{}, err
	}

	if _, err := tx.OpenReservation(ctx, item.ID, member.ID); err == nil {
		return model.Reservation{}, errs.ErrDuplicateHold
	} else if !errors.Is(err, errs.ErrReservationNotFound) {
		return model.Reservation{}, err
	}
	if loan, err := tx.ActiveLoanByItem(ctx, item.ID); err == nil && loan.MemberID == member.ID {
		return model.Reservation{}, errors.Wrap(errs.ErrDuplicateHold, "item already on loan to member")
	} else if err != nil && !errors.Is(err, errs.ErrLoanNotFound) {
		return model.Reservation{}, err
	}

	open, err := tx.CountOpenReservations(ctx, member.ID)
	if err != nil {
		return model.Reservation{}, err
	}
	if open >= pol.MaxReservations {
		return model.Reservation{}, errs.ErrReservationLimitExceeded
	}

	res := model.Reservation{
		ID:       uuid.NewString(),
		ItemID:   item.ID,
		MemberID: member.ID,
		PlacedAt: now,
		Status:   model.ReservationWaiting,
	}
	if err := tx.CreateReservation(ctx, &res); err != nil {
		return model.Reservation{}, err
	}

	if item.Availability == model.AvailabilityAvailable {
		promoted, err := m.PromoteNext(ctx, tx, item.ID, now, b)
		if err != nil {
			return model.Reservation{}, err
		}
		if promoted != nil && promoted.ID == res.ID {
			res = *promoted
		}
	}
	return res, nil
}

// PromoteNext turns the head of the waiting queue into a ready hold and puts the item on
// hold. It expects the item to be available and leaves it so when nobody is waiting.
func (m *Manager) PromoteNext(ctx context.Context, tx repository.Tx, itemID string, now time.Time, b *notify.Batch) (*model.Reservation, error) {
	waiting, err := tx.ListReservations(ctx, itemID, model.ReservationWaiting)
	if err != nil {
		return nil, err
	}
	if len(waiting) == 0 {
		return nil, nil
	}
	head := waiting[0]

	member, err := tx.GetMember(ctx, head.MemberID)
	if err != nil {
		return nil, err
	}
	pol, err := m.policies.PolicyFor(ctx, member.MembershipClass)
	if err != nil {
		return nil, err
	}

	if _, err := m.inventory.Transition(ctx, tx, itemID, model.AvailabilityAvailable, model.AvailabilityOnHold, now); err != nil {
		return nil, err
	}
	readyAt, expiresAt := now, now.Add(pol.HoldDuration)
	head.Status = model.ReservationReady
	head.ReadyAt = &readyAt
	head.HoldExpiresAt = &expiresAt
	if err := tx.UpdateReservation(ctx, head); err != nil {
		return nil, err
	}

	b.Add(notify.EventHoldReady, notify.Payload{
		ItemID:        itemID,
		MemberID:      head.MemberID,
		ReservationID: head.ID,
		HoldExpiresAt: &expiresAt,
		OccurredAt:    now,
	})
	m.log.Debug("hold ready", zap.String("item_id", itemID), zap.String("reservation_id", head.ID))
	return &head, nil
}

// Cancel is idempotent for cancelled reservations. Cancelling a ready hold frees the item
// for the next member in line.
func (m *Manager) Cancel(ctx context.Context, tx repository.Tx, res model.Reservation, now time.Time, b *notify.Batch) (model.Reservation, error) {
	switch res.Status {
	case model.ReservationCancelled:
		return res, nil
	case model.ReservationFulfilled, model.ReservationExpired:
		return model.Reservation{}, errors.Wrapf(errs.ErrInvalidStateTransition, "reservation %s", res.Status)
	}

	wasReady := res.Status == model.ReservationReady
	closedAt := now
	res.Status = model.ReservationCancelled
	res.ClosedAt = &closedAt
	if err := tx.UpdateReservation(ctx, res); err != nil {
		return model.Reservation{}, err
	}
	b.Add(notify.EventHoldCancelled, notify.Payload{
		ItemID:        res.ItemID,
		MemberID:      res.MemberID,
		ReservationID: res.ID,
		OccurredAt:    now,
	})

	if wasReady {
		if err := m.release(ctx, tx, res.ItemID, now, b); err != nil {
			return model.Reservation{}, err
		}
	}
	return res, nil
}

// Expire closes a ready hold whose pickup window has passed. It reports false without
// changes when the reservation no longer qualifies.
func (m *Manager) Expire(ctx context.Context, tx repository.Tx, res model.Reservation, now time.Time, b *notify.Batch) (bool, error) {
	if res.Status != model.ReservationReady || res.HoldExpiresAt == nil || !res.HoldExpiresAt.Before(now) {
		return false, nil
	}
	closedAt := now
	res.Status = model.ReservationExpired
	res.ClosedAt = &closedAt
	if err := tx.UpdateReservation(ctx, res); err != nil {
		return false, err
	}
	b.Add(notify.EventHoldExpired, notify.Payload{
		ItemID:        res.ItemID,
		MemberID:      res.MemberID,
		ReservationID: res.ID,
		HoldExpiresAt: res.HoldExpiresAt,
		OccurredAt:    now,
	})
	if err := m.release(ctx, tx, res.ItemID, now, b); err != nil {
		return false, err
	}
	return true, nil
}

func (m *Manager) release(ctx context.Context, tx repository.Tx, itemID string, now time.Time, b *notify.Batch) error {
	if _, err := m.inventory.Transition(ctx, tx, itemID, model.AvailabilityOnHold, model.AvailabilityAvailable, now); err != nil {
		return err
	}
	_, err := m.PromoteNext(ctx, tx, itemID, now, b)
	return err
}

// Fulfill closes the ready hold picked up by its member.
func (m *Manager) Fulfill(ctx context.Context, tx repository.Tx, res model.Reservation, now time.Time) error {
	if res.Status != model.ReservationReady {
		return errors.Wrapf(errs.ErrInvalidStateTransition, "fulfill %s reservation", res.Status)
	}
	closedAt := now
	res.Status = model.ReservationFulfilled
	res.ClosedAt = &closedAt
	return tx.UpdateReservation(ctx, res)
}

// Displace returns the item's ready hold to the head of the waiting queue, used when the
// copy is pulled for repair or reported missing before pickup.
func (m *Manager) Displace(ctx context.Context, tx repository.Tx, itemID string) error {
	ready, err := tx.ListReservations(ctx, itemID, model.ReservationReady)
	if err != nil {
		return err
	}
	for _, res := range ready {
		res.Status = model.ReservationWaiting
		res.ReadyAt = nil
		res.HoldExpiresAt = nil
		if err := tx.UpdateReservation(ctx, res); err != nil {
			return err
		}
	}
	return nil
}

// CancelWaiting closes every waiting reservation of a retired item.
func (m *Manager) CancelWaiting(ctx context.Context, tx repository.Tx, itemID string, now time.Time, b *notify.Batch) (int, error) {
	waiting, err := tx.ListReservations(ctx, itemID, model.ReservationWaiting)
	if err != nil {
		return 0, err
	}
	for _, res := range waiting {
		if _, err := m.Cancel(ctx, tx, res, now, b); err != nil {
			return 0, err
		}
	}
	return len(waiting), nil
}

// Position is 1-based among waiting reservations, 0 for the ready hold and -1 once closed.
func Position(ctx context.Context, r repository.Reader, res model.Reservation) (int, error) {
	switch res.Status {
	case model.ReservationReady:
		return 0, nil
	case model.ReservationWaiting:
	default:
		return -1, nil
	}
	waiting, err := r.ListReservations(ctx, res.ItemID, model.ReservationWaiting)
	if err != nil {
		return 0, err
	}
	for i, w := range waiting {
		if w.ID == res.ID {
			return i + 1, nil
		}
	}
	return -1, nil
}
