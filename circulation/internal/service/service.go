package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-circulation/circulation/internal/errs"
	"github.com/Astemirdum/library-circulation/circulation/internal/inventory"
	"github.com/Astemirdum/library-circulation/circulation/internal/ledger"
	"github.com/Astemirdum/library-circulation/circulation/internal/locker"
	"github.com/Astemirdum/library-circulation/circulation/internal/metrics"
	"github.com/Astemirdum/library-circulation/circulation/internal/model"
	"github.com/Astemirdum/library-circulation/circulation/internal/notify"
	"github.com/Astemirdum/library-circulation/circulation/internal/policy"
	"github.com/Astemirdum/library-circulation/circulation/internal/queue"
	"github.com/Astemirdum/library-circulation/circulation/internal/repository"
	"github.com/Astemirdum/library-circulation/pkg/retry"
)

type Options struct {
	MaxAttempts int           `envconfig:"RETRY_MAX_ATTEMPTS" default:"5"`
	BaseDelay   time.Duration `envconfig:"RETRY_BASE_DELAY" default:"5ms"`
	SweepBatch  int           `envconfig:"SWEEP_BATCH_SIZE" default:"100"`
}

type Service struct {
	repo      repository.Repository
	locks     *locker.Locker
	inventory *inventory.Tracker
	queue     *queue.Manager
	ledger    *ledger.Ledger
	policies  policy.Provider
	notifier  notify.Dispatcher
	metrics   *metrics.Metrics
	opts      Options
	log       *zap.Logger
}

type Deps struct {
	Repo       repository.Repository
	Policies   policy.Provider
	Dispatcher notify.Dispatcher
	Cache      inventory.StatusCache
	Location   *time.Location
	Metrics    *metrics.Metrics
}

func NewService(deps Deps, opts Options, log *zap.Logger) *Service {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 5
	}
	if deps.Dispatcher == nil {
		deps.Dispatcher = notify.NewLogDispatcher(log)
	}
	inv := inventory.NewTracker(deps.Cache, log)
	q := queue.NewManager(inv, deps.Policies, log)
	return &Service{
		repo:      deps.Repo,
		locks:     locker.New(),
		inventory: inv,
		queue:     q,
		ledger:    ledger.New(inv, q, deps.Policies, deps.Location, log),
		policies:  deps.Policies,
		notifier:  deps.Dispatcher,
		metrics:   deps.Metrics,
		opts:      opts,
		log:       log.Named("service"),
	}
}

// execute runs fn under the given exclusion scopes in a transaction, retrying stale item
// state. Events collected by fn are emitted only after a successful commit and before the
// scopes are released, so one item's notifications follow commit order. The status cache
// is refreshed under the same scopes.
func (s *Service) execute(ctx context.Context, op string, keys []locker.Key, fn func(tx repository.Tx, b *notify.Batch) error) (err error) {
	started := time.Now()
	defer func() {
		kind := "ok"
		if err != nil {
			kind = errs.KindOf(err)
		}
		s.metrics.ObserveOperation(op, kind, started)
		switch {
		case err == nil:
		case errs.IsBusiness(err):
			s.log.Debug(op+" rejected", zap.String("kind", kind), zap.Error(err))
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			s.log.Warn(op+" cancelled", zap.Error(err))
		default:
			s.log.Error(op, zap.Error(err))
		}
	}()

	unlock, err := s.locks.Lock(ctx, keys...)
	if err != nil {
		return err
	}
	defer unlock()

	var b notify.Batch
	err = retry.Do(ctx, func(ctx context.Context) error {
		b.Reset()
		return s.repo.InTx(ctx, func(tx repository.Tx) error {
			return fn(tx, &b)
		})
	},
		retry.WithMaxAttempts(s.opts.MaxAttempts),
		retry.WithBaseDelay(s.opts.BaseDelay),
		retry.WithRetryIf(func(err error) bool { return errors.Is(err, errs.ErrStaleItemState) }),
		retry.OnRetry(func(attempt int, err error) {
			s.metrics.Retry(op)
			s.log.Debug("retry", zap.String("op", op), zap.Int("attempt", attempt), zap.Error(err))
		}),
	)
	if errors.Is(err, errs.ErrStaleItemState) {
		return errors.Wrap(errs.ErrConflict, op)
	}
	if err != nil {
		return err
	}

	notify.Flush(ctx, s.notifier, &b)
	s.inventory.Refresh(ctx, s.repo, itemIDs(keys)...)
	return nil
}

func itemIDs(keys []locker.Key) []string {
	var ids []string
	for _, k := range keys {
		if k.Scope == locker.ScopeItem {
			ids = append(ids, k.ID)
		}
	}
	return ids
}

func loanKeys(l model.Loan) []locker.Key {
	return []locker.Key{locker.Member(l.MemberID), locker.Item(l.ItemID)}
}

func (s *Service) Checkout(ctx context.Context, req model.CheckoutRequest, now time.Time) (model.Loan, error) {
	var loan model.Loan
	err := s.execute(ctx, "checkout", []locker.Key{locker.Member(req.MemberID), locker.Item(req.ItemID)},
		func(tx repository.Tx, _ *notify.Batch) error {
			member, err := tx.LockMember(ctx, req.MemberID)
			if err != nil {
				return err
			}
			item, err := tx.LockItem(ctx, req.ItemID)
			if err != nil {
				return err
			}
			loan, err = s.ledger.Checkout(ctx, tx, member, item, now)
			return err
		})
	return loan, err
}

// withLoan locks the loan's member and item, then the loan row itself.
func (s *Service) withLoan(ctx context.Context, op, loanID string, fn func(tx repository.Tx, loan model.Loan, member model.Member, b *notify.Batch) error) error {
	loan, err := s.repo.GetLoan(ctx, loanID)
	if err != nil {
		return err
	}
	return s.execute(ctx, op, loanKeys(loan), func(tx repository.Tx, b *notify.Batch) error {
		member, err := tx.LockMember(ctx, loan.MemberID)
		if err != nil {
			return err
		}
		if _, err := tx.LockItem(ctx, loan.ItemID); err != nil {
			return err
		}
		locked, err := tx.LockLoan(ctx, loanID)
		if err != nil {
			return err
		}
		return fn(tx, locked, member, b)
	})
}

func (s *Service) Renew(ctx context.Context, loanID string, now time.Time) (model.Loan, error) {
	var out model.Loan
	err := s.withLoan(ctx, "renew", loanID, func(tx repository.Tx, loan model.Loan, member model.Member, _ *notify.Batch) error {
		var err error
		out, err = s.ledger.Renew(ctx, tx, loan, member, now)
		return err
	})
	return out, err
}

func (s *Service) Return(ctx context.Context, loanID string, now time.Time) (model.Loan, error) {
	var out model.Loan
	err := s.withLoan(ctx, "return", loanID, func(tx repository.Tx, loan model.Loan, member model.Member, b *notify.Batch) error {
		var err error
		out, err = s.ledger.Return(ctx, tx, loan, member, now, b)
		return err
	})
	return out, err
}

func (s *Service) ReportMissing(ctx context.Context, loanID string, now time.Time) (model.Loan, error) {
	var out model.Loan
	err := s.withLoan(ctx, "report_missing", loanID, func(tx repository.Tx, loan model.Loan, member model.Member, _ *notify.Batch) error {
		var err error
		out, err = s.ledger.ReportMissing(ctx, tx, loan, member, now)
		return err
	})
	return out, err
}

func (s *Service) PayFine(ctx context.Context, loanID string, _ time.Time) (model.Loan, error) {
	var out model.Loan
	err := s.withLoan(ctx, "pay_fine", loanID, func(tx repository.Tx, loan model.Loan, _ model.Member, _ *notify.Batch) error {
		var err error
		out, err = s.ledger.PayFine(ctx, tx, loan)
		return err
	})
	return out, err
}

func (s *Service) PlaceReservation(ctx context.Context, req model.PlaceReservationRequest, now time.Time) (model.ReservationView, error) {
	var view model.ReservationView
	err := s.execute(ctx, "place_reservation", []locker.Key{locker.Member(req.MemberID), locker.Item(req.ItemID)},
		func(tx repository.Tx, b *notify.Batch) error {
			member, err := tx.LockMember(ctx, req.MemberID)
			if err != nil {
				return err
			}
			item, err := tx.LockItem(ctx, req.ItemID)
			if err != nil {
				return err
			}
			res, err := s.queue.Place(ctx, tx, member, item, now, b)
			if err != nil {
				return err
			}
			view, err = reservationView(ctx, tx, res)
			return err
		})
	return view, err
}

func (s *Service) CancelReservation(ctx context.Context, reservationID string, now time.Time) (model.Reservation, error) {
	res, err := s.repo.GetReservation(ctx, reservationID)
	if err != nil {
		return model.Reservation{}, err
	}
	var out model.Reservation
	err = s.execute(ctx, "cancel_reservation", []locker.Key{locker.Member(res.MemberID), locker.Item(res.ItemID)},
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
			out, err = s.queue.Cancel(ctx, tx, locked, now, b)
			return err
		})
	return out, err
}

func (s *Service) GetReservation(ctx context.Context, reservationID string) (model.ReservationView, error) {
	res, err := s.repo.GetReservation(ctx, reservationID)
	if err != nil {
		return model.ReservationView{}, err
	}
	return reservationView(ctx, s.repo, res)
}

func reservationView(ctx context.Context, r repository.Reader, res model.Reservation) (model.ReservationView, error) {
	view := model.ReservationView{
		ReservationID: res.ID,
		ItemID:        res.ItemID,
		MemberID:      res.MemberID,
		Status:        res.Status,
		PlacedAt:      res.PlacedAt,
		ReadyAt:       res.ReadyAt,
		HoldExpiresAt: res.HoldExpiresAt,
	}
	pos, err := queue.Position(ctx, r, res)
	if err != nil {
		return model.ReservationView{}, err
	}
	if pos >= 0 {
		view.QueuePosition = &pos
	}
	return view, nil
}

func (s *Service) GetItem(ctx context.Context, itemID string) (model.ItemStatus, error) {
	return s.inventory.Status(ctx, s.repo, itemID)
}

func (s *Service) AccessionItem(ctx context.Context, req model.AccessionItemRequest, now time.Time) (model.Item, error) {
	cond := req.Condition
	if cond == "" {
		cond = model.ConditionGood
	}
	item := model.Item{
		ID:           req.ItemID,
		CatalogRef:   req.CatalogRef,
		Location:     req.Location,
		Condition:    cond,
		Availability: inventory.TargetAvailability(cond, model.AvailabilityAvailable),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err := s.execute(ctx, "accession_item", []locker.Key{locker.Item(req.ItemID)}, func(tx repository.Tx, _ *notify.Batch) error {
		return tx.CreateItem(ctx, item)
	})
	if err != nil {
		return model.Item{}, err
	}
	return item, nil
}

// RetireItem soft-deletes a copy that is neither lent nor held. Waiting reservations are cancelled.
func (s *Service) RetireItem(ctx context.Context, itemID string, now time.Time) (model.Item, error) {
	var out model.Item
	err := s.execute(ctx, "retire_item", []locker.Key{locker.Item(itemID)}, func(tx repository.Tx, b *notify.Batch) error {
		item, err := tx.LockItem(ctx, itemID)
		if err != nil {
			return err
		}
		switch {
		case item.Retired:
			out = item
			return nil
		case item.Availability == model.AvailabilityOnLoan:
			return errs.ErrItemOnLoan
		case item.Availability == model.AvailabilityOnHold:
			return errors.Wrap(errs.ErrInvalidStateTransition, "item is held for pickup")
		}
		if _, err := s.queue.CancelWaiting(ctx, tx, itemID, now, b); err != nil {
			return err
		}
		if err := tx.RetireItem(ctx, itemID, now); err != nil {
			return err
		}
		out, err = tx.GetItem(ctx, itemID)
		return err
	})
	return out, err
}

// RecordConditionAssessment applies an assessment at now. A delayed assessment keeps its
// own AssessedAt in the record, while promotions and hold windows start at now.
func (s *Service) RecordConditionAssessment(ctx context.Context, req model.AssessmentRequest, now time.Time) (model.ItemStatus, error) {
	assessedAt := now
	if req.AssessedAt != nil && req.AssessedAt.Before(now) {
		assessedAt = *req.AssessedAt
	}
	var out model.ItemStatus
	err := s.execute(ctx, "record_assessment", []locker.Key{locker.Item(req.ItemID)}, func(tx repository.Tx, b *notify.Batch) error {
		res, err := s.inventory.Assess(ctx, tx, model.ConditionAssessment{
			ID:         uuid.NewString(),
			ItemID:     req.ItemID,
			Condition:  req.Condition,
			Notes:      req.Notes,
			AssessedBy: req.AssessedBy,
			AssessedAt: assessedAt,
		}, now)
		if err != nil {
			return err
		}
		item := res.Item
		switch {
		case res.Displaced():
			if err := s.queue.Displace(ctx, tx, item.ID); err != nil {
				return err
			}
		case res.Released():
			if _, err := s.queue.PromoteNext(ctx, tx, item.ID, now, b); err != nil {
				return err
			}
			if item, err = tx.GetItem(ctx, item.ID); err != nil {
				return err
			}
		}
		out = inventory.StatusOf(item)
		return nil
	})
	return out, err
}

func (s *Service) UpsertMember(ctx context.Context, req model.UpsertMemberRequest, now time.Time) (model.Member, error) {
	m := model.Member{
		ID:              req.MemberID,
		MembershipClass: req.MembershipClass,
		Standing:        req.Standing,
		UpdatedAt:       now,
	}
	err := s.execute(ctx, "upsert_member", []locker.Key{locker.Member(req.MemberID)}, func(tx repository.Tx, _ *notify.Batch) error {
		return tx.UpsertMember(ctx, m)
	})
	if err != nil {
		return model.Member{}, err
	}
	return m, nil
}

func (s *Service) ListMemberLoans(ctx context.Context, memberID string) (model.MemberLoans, error) {
	if _, err := s.repo.GetMember(ctx, memberID); err != nil {
		return model.MemberLoans{}, err
	}
	loans, err := s.repo.ListMemberLoans(ctx, memberID)
	if err != nil {
		return model.MemberLoans{}, err
	}
	out := model.MemberLoans{MemberID: memberID, Items: loans}
	if out.Items == nil {
		out.Items = []model.Loan{}
	}
	for _, l := range loans {
		if !l.FinePaid {
			out.UnpaidFines += l.FineAccrued
		}
	}
	return out, nil
}
