package service

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-circulation/circulation/internal/errs"
	"github.com/Astemirdum/library-circulation/circulation/internal/locker"
	"github.com/Astemirdum/library-circulation/circulation/internal/model"
	"github.com/Astemirdum/library-circulation/circulation/internal/notify"
	"github.com/Astemirdum/library-circulation/circulation/internal/policy"
	"github.com/Astemirdum/library-circulation/circulation/internal/repository"
)

const (
	SweepAssessOverdue = "assess_overdue"
	SweepExpireHolds   = "expire_holds"
)

// AssessOverdue refreshes fines and sends due-soon and overdue notices for active loans.
// Each loan is committed on its own; a rule rejection skips the loan, an infrastructure or
// policy failure ends the cycle and is left for the next tick.
func (s *Service) AssessOverdue(ctx context.Context, now time.Time) (model.SweepResult, error) {
	horizon, err := policy.NoticeHorizon(ctx, s.policies)
	if err != nil {
		return model.SweepResult{}, errors.Wrap(err, SweepAssessOverdue)
	}
	before := now.Add(horizon)
	return s.sweep(ctx, SweepAssessOverdue,
		func(after string) ([]string, error) {
			loans, err := s.repo.ListActiveLoansDueBefore(ctx, before, after, s.opts.SweepBatch)
			ids := make([]string, 0, len(loans))
			for _, l := range loans {
				ids = append(ids, l.ID)
			}
			return ids, err
		},
		func(loanID string) (bool, error) {
			var changed bool
			err := s.withLoan(ctx, SweepAssessOverdue, loanID, func(tx repository.Tx, loan model.Loan, member model.Member, b *notify.Batch) error {
				var err error
				changed, err = s.ledger.AssessLoan(ctx, tx, loan, member, now, b)
				return err
			})
			return changed, err
		})
}

// ExpireHolds closes ready holds past their pickup window and promotes the next member.
func (s *Service) ExpireHolds(ctx context.Context, now time.Time) (model.SweepResult, error) {
	return s.sweep(ctx, SweepExpireHolds,
		func(after string) ([]string, error) {
			holds, err := s.repo.ListExpiredHolds(ctx, now, after, s.opts.SweepBatch)
			ids := make([]string, 0, len(holds))
			for _, h := range holds {
				ids = append(ids, h.ID)
			}
			return ids, err
		},
		func(reservationID string) (bool, error) {
			return s.expireHold(ctx, reservationID, now)
		})
}

func (s *Service) expireHold(ctx context.Context, reservationID string, now time.Time) (bool, error) {
	res, err := s.repo.GetReservation(ctx, reservationID)
	if err != nil {
		return false, err
	}
	var expired bool
	err = s.execute(ctx, SweepExpireHolds, []locker.Key{locker.Member(res.MemberID), locker.Item(res.ItemID)},
		func(tx repository.Tx, b *notify.Batch) error {
			if _, err := tx.LockMember(ctx, res.MemberID); err != nil {
				return err
			}
			if _, err := tx.LockItem(ctx, res.ItemID); err != nil {
				return err
			}
			locked, err := tx.LockReservation(ctx, reservationID)
			if err != nil {
				return err
			}
			expired, err = s.queue.Expire(ctx, tx, locked, now, b)
			return err
		})
	return expired, err
}

func (s *Service) sweep(ctx context.Context, name string, page func(after string) ([]string, error), unit func(id string) (bool, error)) (model.SweepResult, error) {
	var (
		res   model.SweepResult
		after string
	)
	for {
		ids, err := page(after)
		if err != nil {
			return res, errors.Wrap(err, name)
		}
		for _, id := range ids {
			if err := ctx.Err(); err != nil {
				return res, err
			}
			after = id
			res.Processed++

			changed, err := unit(id)
			switch {
			case err == nil && changed:
				res.Changed++
				s.metrics.SweepUnit(name, "changed")
			case err == nil:
				s.metrics.SweepUnit(name, "unchanged")
			case errs.IsBusiness(err):
				res.Failed++
				s.metrics.SweepUnit(name, "skipped")
				s.log.Debug("sweep unit skipped", zap.String("sweep", name), zap.String("id", id), zap.Error(err))
			default:
				res.Failed++
				s.metrics.SweepUnit(name, "failed")
				return res, errors.Wrapf(err, "%s %s", name, id)
			}
		}
		if s.opts.SweepBatch <= 0 || len(ids) < s.opts.SweepBatch {
			return res, nil
		}
	}
}
