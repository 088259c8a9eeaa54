package ledger

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
	"github.com/Astemirdum/library-circulation/circulation/internal/queue"
	"github.com/Astemirdum/library-circulation/circulation/internal/repository"
)

// Ledger owns loans. Like the queue manager it works inside the caller's transaction
// with the member and item scopes already held.
type Ledger struct {
	inventory *inventory.Tracker
	queue     *queue.Manager
	policies  policy.Provider
	loc       *time.Location
	log       *zap.Logger
}

func New(inv *inventory.Tracker, q *queue.Manager, policies policy.Provider, loc *time.Location, log *zap.Logger) *Ledger {
	if loc == nil {
		loc = time.UTC
	}
	return &Ledger{
		inventory: inv,
		queue:     q,
		policies:  policies,
		loc:       loc,
		log:       log.Named("ledger"),
	}
}

func (l *Ledger) Checkout(ctx context.Context, tx repository.Tx, member model.Member, item model.Item, now time.Time) (model.Loan, error) {
	if member.Standing != model.StandingGood {
		return model.Loan{}, errs.ErrMemberSuspended
	}
	if item.Retired {
		return model.Loan{}, errors.Wrap(errs.ErrItemUnavailable, "item retired")
	}

	var hold *model.Reservation
	switch item.Availability {
	case model.AvailabilityAvailable:
	case model.AvailabilityOnHold:
		res, err := tx.OpenReservation(ctx, item.ID, member.ID)
		if errors.Is(err, errs.ErrReservationNotFound) || (err == nil && res.Status != model.ReservationReady) {
			return model.Loan{}, errors.Wrap(errs.ErrItemUnavailable, "item held for another member")
		}
		if err != nil {
			return model.Loan{}, err
		}
		hold = &res
	default:
		return model.Loan{}, errors.Wrapf(errs.ErrItemUnavailable, "item %s", item.Availability)
	}

	pol, err := l.policies.PolicyFor(ctx, member.MembershipClass)
	if err != nil {
		return model.Loan{}, err
	}
	active, err := tx.CountActiveLoans(ctx, member.ID)
	if err != nil {
		return model.Loan{}, err
	}
	if active >= pol.MaxLoans {
		return model.Loan{}, errs.ErrMemberLimitExceeded
	}

	loan := model.Loan{
		ID:         uuid.NewString(),
		ItemID:     item.ID,
		MemberID:   member.ID,
		CheckoutAt: now,
		DueAt:      now.Add(pol.LoanPeriod),
	}
	if _, err := l.inventory.Transition(ctx, tx, item.ID, item.Availability, model.AvailabilityOnLoan, now); err != nil {
		return model.Loan{}, err
	}
	if err := tx.CreateLoan(ctx, loan); err != nil {
		return model.Loan{}, err
	}
	if hold != nil {
		if err := l.queue.Fulfill(ctx, tx, *hold, now); err != nil {
			return model.Loan{}, err
		}
	}
	return loan, nil
}

func (l *Ledger) Renew(ctx context.Context, tx repository.Tx, loan model.Loan, member model.Member, now time.Time) (model.Loan, error) {
	if !loan.Active() {
		return model.Loan{}, errs.ErrLoanNotActive
	}
	pol, err := l.policies.PolicyFor(ctx, member.MembershipClass)
	if err != nil {
		return model.Loan{}, err
	}
	if loan.RenewalCount >= pol.MaxRenewals {
		return model.Loan{}, errs.ErrRenewalLimitExceeded
	}

	waiting, err := tx.ListReservations(ctx, loan.ItemID, model.ReservationWaiting)
	if err != nil {
		return model.Loan{}, err
	}
	if len(waiting) > 0 {
		return model.Loan{}, errs.ErrRenewalBlockedByHold
	}

	fine := settleFine(loan.FineAccrued, Fine(OverdueDays(loan.DueAt, now, l.loc), pol), pol)
	unpaid, err := tx.UnpaidFines(ctx, member.ID)
	if err != nil {
		return model.Loan{}, err
	}
	if unpaid-loan.FineAccrued+fine > pol.MaxUnpaidFine {
		return model.Loan{}, errs.ErrFineLimitExceeded
	}

	base := loan.DueAt
	if now.After(base) {
		base = now
	}
	loan.FineAccrued = fine
	loan.DueAt = base.Add(pol.LoanPeriod)
	loan.RenewalCount++
	if err := tx.UpdateLoan(ctx, loan); err != nil {
		return model.Loan{}, err
	}
	return loan, nil
}

// Return closes the loan and promotes the item's queue in the same transaction, so a
// returned copy is never open to walk-up checkout while somebody is waiting for it.
func (l *Ledger) Return(ctx context.Context, tx repository.Tx, loan model.Loan, member model.Member, now time.Time, b *notify.Batch) (model.Loan, error) {
	if !loan.Active() {
		return model.Loan{}, errs.ErrLoanNotActive
	}
	pol, err := l.policies.PolicyFor(ctx, member.MembershipClass)
	if err != nil {
		return model.Loan{}, err
	}

	returnedAt := now
	loan.ReturnedAt = &returnedAt
	loan.FineAccrued = settleFine(loan.FineAccrued, Fine(OverdueDays(loan.DueAt, now, l.loc), pol), pol)
	if err := tx.UpdateLoan(ctx, loan); err != nil {
		return model.Loan{}, err
	}

	if _, err := l.inventory.Transition(ctx, tx, loan.ItemID, model.AvailabilityOnLoan, model.AvailabilityAvailable, now); err != nil {
		return model.Loan{}, err
	}
	if _, err := l.queue.PromoteNext(ctx, tx, loan.ItemID, now, b); err != nil {
		return model.Loan{}, err
	}
	return loan, nil
}

// ReportMissing closes a loan whose copy the member reports lost. The fine is settled up
// to now and the copy goes missing; its waiting reservations stay queued until it is found.
func (l *Ledger) ReportMissing(ctx context.Context, tx repository.Tx, loan model.Loan, member model.Member, now time.Time) (model.Loan, error) {
	if !loan.Active() {
		return model.Loan{}, errs.ErrLoanNotActive
	}
	pol, err := l.policies.PolicyFor(ctx, member.MembershipClass)
	if err != nil {
		return model.Loan{}, err
	}

	closedAt := now
	loan.ReturnedAt = &closedAt
	loan.ReportedMissingAt = &closedAt
	loan.FineAccrued = settleFine(loan.FineAccrued, Fine(OverdueDays(loan.DueAt, now, l.loc), pol), pol)
	if err := tx.UpdateLoan(ctx, loan); err != nil {
		return model.Loan{}, err
	}
	if _, err := l.inventory.Transition(ctx, tx, loan.ItemID, model.AvailabilityOnLoan, model.AvailabilityMissing, now); err != nil {
		return model.Loan{}, err
	}
	l.log.Info("loan closed as missing", zap.String("loan_id", loan.ID), zap.String("item_id", loan.ItemID))
	return loan, nil
}

// AssessLoan refreshes the accrued fine of an active loan and emits the latest crossed
// notice threshold once. LastNotifiedAt is the watermark that keeps repeated sweeps quiet.
func (l *Ledger) AssessLoan(ctx context.Context, tx repository.Tx, loan model.Loan, member model.Member, now time.Time, b *notify.Batch) (bool, error) {
	if !loan.Active() {
		return false, nil
	}
	pol, err := l.policies.PolicyFor(ctx, member.MembershipClass)
	if err != nil {
		return false, err
	}

	changed := false
	days := OverdueDays(loan.DueAt, now, l.loc)
	if fine := settleFine(loan.FineAccrued, Fine(days, pol), pol); fine != loan.FineAccrued {
		loan.FineAccrued = fine
		changed = true
	}

	if th, ok := latestThreshold(loan.DueAt, now, pol, l.loc); ok &&
		(loan.LastNotifiedAt == nil || th.at.After(*loan.LastNotifiedAt)) {
		notifiedAt := th.at
		loan.LastNotifiedAt = &notifiedAt
		changed = true
		dueAt := loan.DueAt
		b.Add(th.eventType, notify.Payload{
			ItemID:      loan.ItemID,
			MemberID:    loan.MemberID,
			LoanID:      loan.ID,
			DueAt:       &dueAt,
			FineAccrued: loan.FineAccrued,
			OverdueDays: days,
			OccurredAt:  now,
		})
	}

	if !changed {
		return false, nil
	}
	if err := tx.UpdateLoan(ctx, loan); err != nil {
		return false, err
	}
	return true, nil
}

// PayFine settles the fine of a returned loan. Paying twice is a no-op.
func (l *Ledger) PayFine(ctx context.Context, tx repository.Tx, loan model.Loan) (model.Loan, error) {
	if loan.Active() {
		return model.Loan{}, errors.Wrap(errs.ErrInvalidStateTransition, "fine is final only after return")
	}
	if loan.FinePaid {
		return loan, nil
	}
	loan.FinePaid = true
	if err := tx.UpdateLoan(ctx, loan); err != nil {
		return model.Loan{}, err
	}
	return loan, nil
}
