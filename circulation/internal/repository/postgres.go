package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Astemirdum/library-circulation/circulation/internal/errs"
	"github.com/Astemirdum/library-circulation/circulation/internal/model"
)

const (
	membersTableName      = `members`
	itemsTableName        = `items`
	loansTableName        = `loans`
	reservationsTableName = `reservations`
	assessmentsTableName  = `condition_assessments`
)

var (
	memberColumns      = []string{"id", "membership_class", "standing", "updated_at"}
	itemColumns        = []string{"id", "catalog_ref", "location", "condition", "availability", "retired", "version", "created_at", "updated_at"}
	loanColumns        = []string{"id", "item_id", "member_id", "checkout_at", "due_at", "returned_at", "renewal_count", "fine_accrued", "fine_paid", "last_notified_at", "reported_missing_at"}
	reservationColumns = []string{"id", "item_id", "member_id", "seq", "placed_at", "status", "ready_at", "hold_expires_at", "closed_at"}
)

var qb = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

type repository struct {
	queries
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB, log *zap.Logger) (*repository, error) {
	log = log.Named("repo")
	return &repository{
		queries: queries{db: db, log: log},
		db:      db,
	}, nil
}

var _ Repository = (*repository)(nil)

// InTx runs fn in a read committed transaction. Concurrent writers are ordered by
// the row locks taken through Lock*.
func (r *repository) InTx(ctx context.Context, fn func(tx Tx) error) (err error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return errors.Wrap(err, "begin tx")
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				r.log.Error("rollback", zap.Error(rbErr))
			}
		}
	}()

	if err = fn(&pgTx{queries{db: tx, log: r.log}}); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return mapError(err, "commit")
	}
	return nil
}

func (r *repository) ListActiveLoansDueBefore(ctx context.Context, before time.Time, afterID string, limit int) ([]model.Loan, error) {
	q := qb.Select(loanColumns...).
		From(loansTableName).
		Where(sq.Eq{"returned_at": nil}).
		Where(sq.Lt{"due_at": before}).
		Where(sq.Gt{"id": afterID}).
		OrderBy("id")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	var loans []model.Loan
	if err := sqlx.SelectContext(ctx, r.db, &loans, query, args...); err != nil {
		return nil, errors.Wrap(err, "ListActiveLoansDueBefore")
	}
	return loans, nil
}

func (r *repository) ListExpiredHolds(ctx context.Context, now time.Time, afterID string, limit int) ([]model.Reservation, error) {
	q := qb.Select(reservationColumns...).
		From(reservationsTableName).
		Where(sq.Eq{"status": model.ReservationReady}).
		Where(sq.Lt{"hold_expires_at": now}).
		Where(sq.Gt{"id": afterID}).
		OrderBy("id")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}
	var res []model.Reservation
	if err := sqlx.SelectContext(ctx, r.db, &res, query, args...); err != nil {
		return nil, errors.Wrap(err, "ListExpiredHolds")
	}
	return res, nil
}

func (r *repository) Close() error {
	return r.db.Close()
}

// queries is shared by the pool and by transactions.
type queries struct {
	db  sqlx.ExtContext
	log *zap.Logger
}

func (q queries) get(ctx context.Context, dest any, b sq.Sqlizer, notFound error) error {
	query, args, err := b.ToSql()
	if err != nil {
		return err
	}
	if err := sqlx.GetContext(ctx, q.db, dest, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return notFound
		}
		q.log.Error("get", zap.String("q", query), zap.Any("args", args), zap.Error(err))
		return mapError(err, "get")
	}
	return nil
}

func (q queries) exec(ctx context.Context, b sq.Sqlizer, op string) (int64, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return 0, err
	}
	res, err := q.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, mapError(err, op)
	}
	return res.RowsAffected()
}

func (q queries) GetItem(ctx context.Context, id string) (model.Item, error) {
	var item model.Item
	err := q.get(ctx, &item, qb.Select(itemColumns...).From(itemsTableName).Where(sq.Eq{"id": id}), errs.ErrItemNotFound)
	return item, err
}

func (q queries) GetMember(ctx context.Context, id string) (model.Member, error) {
	var m model.Member
	err := q.get(ctx, &m, qb.Select(memberColumns...).From(membersTableName).Where(sq.Eq{"id": id}), errs.ErrMemberNotFound)
	return m, err
}

func (q queries) GetLoan(ctx context.Context, id string) (model.Loan, error) {
	var l model.Loan
	err := q.get(ctx, &l, qb.Select(loanColumns...).From(loansTableName).Where(sq.Eq{"id": id}), errs.ErrLoanNotFound)
	return l, err
}

func (q queries) GetReservation(ctx context.Context, id string) (model.Reservation, error) {
	var res model.Reservation
	err := q.get(ctx, &res, qb.Select(reservationColumns...).From(reservationsTableName).Where(sq.Eq{"id": id}), errs.ErrReservationNotFound)
	return res, err
}

func (q queries) ListReservations(ctx context.Context, itemID string, statuses ...model.ReservationStatus) ([]model.Reservation, error) {
	b := qb.Select(reservationColumns...).
		From(reservationsTableName).
		Where(sq.Eq{"item_id": itemID}).
		OrderBy("placed_at", "seq")
	if len(statuses) > 0 {
		b = b.Where(sq.Eq{"status": statuses})
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	var res []model.Reservation
	if err := sqlx.SelectContext(ctx, q.db, &res, query, args...); err != nil {
		return nil, mapError(err, "ListReservations")
	}
	return res, nil
}

func (q queries) ListMemberLoans(ctx context.Context, memberID string) ([]model.Loan, error) {
	query, args, err := qb.Select(loanColumns...).
		From(loansTableName).
		Where(sq.Eq{"member_id": memberID}).
		OrderBy("checkout_at desc", "id").
		ToSql()
	if err != nil {
		return nil, err
	}
	var loans []model.Loan
	if err := sqlx.SelectContext(ctx, q.db, &loans, query, args...); err != nil {
		return nil, mapError(err, "ListMemberLoans")
	}
	return loans, nil
}

type pgTx struct {
	queries
}

func (t *pgTx) LockMember(ctx context.Context, id string) (model.Member, error) {
	var m model.Member
	err := t.get(ctx, &m, qb.Select(memberColumns...).From(membersTableName).Where(sq.Eq{"id": id}).Suffix("for update"), errs.ErrMemberNotFound)
	return m, err
}

func (t *pgTx) LockItem(ctx context.Context, id string) (model.Item, error) {
	var item model.Item
	err := t.get(ctx, &item, qb.Select(itemColumns...).From(itemsTableName).Where(sq.Eq{"id": id}).Suffix("for update"), errs.ErrItemNotFound)
	return item, err
}

func (t *pgTx) LockLoan(ctx context.Context, id string) (model.Loan, error) {
	var l model.Loan
	err := t.get(ctx, &l, qb.Select(loanColumns...).From(loansTableName).Where(sq.Eq{"id": id}).Suffix("for update"), errs.ErrLoanNotFound)
	return l, err
}

func (t *pgTx) LockReservation(ctx context.Context, id string) (model.Reservation, error) {
	var res model.Reservation
	err := t.get(ctx, &res, qb.Select(reservationColumns...).From(reservationsTableName).Where(sq.Eq{"id": id}).Suffix("for update"), errs.ErrReservationNotFound)
	return res, err
}

func (t *pgTx) UpsertMember(ctx context.Context, m model.Member) error {
	_, err := t.exec(ctx, qb.Insert(membersTableName).
		Columns(memberColumns...).
		Values(m.ID, m.MembershipClass, m.Standing, m.UpdatedAt).
		Suffix("on conflict (id) do update set membership_class = excluded.membership_class, standing = excluded.standing, updated_at = excluded.updated_at"),
		"UpsertMember")
	return err
}

func (t *pgTx) CreateItem(ctx context.Context, item model.Item) error {
	_, err := t.exec(ctx, qb.Insert(itemsTableName).
		Columns(itemColumns...).
		Values(item.ID, item.CatalogRef, item.Location, item.Condition, item.Availability, item.Retired, item.Version, item.CreatedAt, item.UpdatedAt),
		"CreateItem")
	return err
}

func (t *pgTx) CompareAndSetAvailability(ctx context.Context, itemID string, from, to model.Availability, now time.Time) (model.Item, error) {
	var item model.Item
	err := t.get(ctx, &item, qb.Update(itemsTableName).
		Set("availability", to).
		Set("version", sq.Expr("version + 1")).
		Set("updated_at", now).
		Where(sq.Eq{"id": itemID, "availability": from}).
		Suffix("returning "+strings.Join(itemColumns, ", ")), errs.ErrStaleItemState)
	if errors.Is(err, errs.ErrStaleItemState) {
		if _, getErr := t.GetItem(ctx, itemID); getErr != nil {
			return model.Item{}, getErr
		}
	}
	return item, err
}

func (t *pgTx) UpdateItemCondition(ctx context.Context, itemID string, condition model.Condition, now time.Time) error {
	n, err := t.exec(ctx, qb.Update(itemsTableName).
		Set("condition", condition).
		Set("version", sq.Expr("version + 1")).
		Set("updated_at", now).
		Where(sq.Eq{"id": itemID}), "UpdateItemCondition")
	if err != nil {
		return err
	}
	if n == 0 {
		return errs.ErrItemNotFound
	}
	return nil
}

func (t *pgTx) RetireItem(ctx context.Context, itemID string, now time.Time) error {
	n, err := t.exec(ctx, qb.Update(itemsTableName).
		Set("retired", true).
		Set("version", sq.Expr("version + 1")).
		Set("updated_at", now).
		Where(sq.Eq{"id": itemID}), "RetireItem")
	if err != nil {
		return err
	}
	if n == 0 {
		return errs.ErrItemNotFound
	}
	return nil
}

func (t *pgTx) InsertAssessment(ctx context.Context, a model.ConditionAssessment) error {
	_, err := t.exec(ctx, qb.Insert(assessmentsTableName).
		Columns("id", "item_id", "condition", "notes", "assessed_by", "assessed_at").
		Values(a.ID, a.ItemID, a.Condition, a.Notes, a.AssessedBy, a.AssessedAt),
		"InsertAssessment")
	return err
}

func (t *pgTx) CreateLoan(ctx context.Context, l model.Loan) error {
	_, err := t.exec(ctx, qb.Insert(loansTableName).
		Columns(loanColumns...).
		Values(l.ID, l.ItemID, l.MemberID, l.CheckoutAt, l.DueAt, l.ReturnedAt, l.RenewalCount, l.FineAccrued, l.FinePaid, l.LastNotifiedAt, l.ReportedMissingAt),
		"CreateLoan")
	return err
}

func (t *pgTx) UpdateLoan(ctx context.Context, l model.Loan) error {
	n, err := t.exec(ctx, qb.Update(loansTableName).
		Set("due_at", l.DueAt).
		Set("returned_at", l.ReturnedAt).
		Set("renewal_count", l.RenewalCount).
		Set("fine_accrued", l.FineAccrued).
		Set("fine_paid", l.FinePaid).
		Set("last_notified_at", l.LastNotifiedAt).
		Set("reported_missing_at", l.ReportedMissingAt).
		Where(sq.Eq{"id": l.ID}), "UpdateLoan")
	if err != nil {
		return err
	}
	if n == 0 {
		return errs.ErrLoanNotFound
	}
	return nil
}

func (t *pgTx) ActiveLoanByItem(ctx context.Context, itemID string) (model.Loan, error) {
	var l model.Loan
	err := t.get(ctx, &l, qb.Select(loanColumns...).
		From(loansTableName).
		Where(sq.Eq{"item_id": itemID, "returned_at": nil}), errs.ErrLoanNotFound)
	return l, err
}

func (t *pgTx) CountActiveLoans(ctx context.Context, memberID string) (int, error) {
	var n int
	err := t.get(ctx, &n, qb.Select("count(*)").
		From(loansTableName).
		Where(sq.Eq{"member_id": memberID, "returned_at": nil}), errs.ErrMemberNotFound)
	return n, err
}

func (t *pgTx) UnpaidFines(ctx context.Context, memberID string) (int64, error) {
	var sum int64
	err := t.get(ctx, &sum, qb.Select("coalesce(sum(fine_accrued), 0)").
		From(loansTableName).
		Where(sq.Eq{"member_id": memberID, "fine_paid": false}), errs.ErrMemberNotFound)
	return sum, err
}

func (t *pgTx) CreateReservation(ctx context.Context, r *model.Reservation) error {
	return t.get(ctx, &r.Seq, qb.Insert(reservationsTableName).
		Columns("id", "item_id", "member_id", "placed_at", "status", "ready_at", "hold_expires_at", "closed_at").
		Values(r.ID, r.ItemID, r.MemberID, r.PlacedAt, r.Status, r.ReadyAt, r.HoldExpiresAt, r.ClosedAt).
		Suffix("returning seq"), errs.ErrReservationNotFound)
}

func (t *pgTx) UpdateReservation(ctx context.Context, r model.Reservation) error {
	n, err := t.exec(ctx, qb.Update(reservationsTableName).
		Set("status", r.Status).
		Set("ready_at", r.ReadyAt).
		Set("hold_expires_at", r.HoldExpiresAt).
		Set("closed_at", r.ClosedAt).
		Where(sq.Eq{"id": r.ID}), "UpdateReservation")
	if err != nil {
		return err
	}
	if n == 0 {
		return errs.ErrReservationNotFound
	}
	return nil
}

func (t *pgTx) CountOpenReservations(ctx context.Context, memberID string) (int, error) {
	var n int
	err := t.get(ctx, &n, qb.Select("count(*)").
		From(reservationsTableName).
		Where(sq.Eq{"member_id": memberID, "status": []model.ReservationStatus{model.ReservationWaiting, model.ReservationReady}}),
		errs.ErrMemberNotFound)
	return n, err
}

func (t *pgTx) OpenReservation(ctx context.Context, itemID, memberID string) (model.Reservation, error) {
	var res model.Reservation
	err := t.get(ctx, &res, qb.Select(reservationColumns...).
		From(reservationsTableName).
		Where(sq.Eq{
			"item_id":   itemID,
			"member_id": memberID,
			"status":    []model.ReservationStatus{model.ReservationWaiting, model.ReservationReady},
		}), errs.ErrReservationNotFound)
	return res, err
}

// uniqueViolations maps partial unique indexes to the rule they enforce.
var uniqueViolations = map[string]error{
	"items_pkey":                    errs.ErrItemExists,
	"loans_active_item_uidx":        errs.ErrItemUnavailable,
	"reservations_open_member_uidx": errs.ErrDuplicateHold,
	"reservations_ready_item_uidx":  errs.ErrStaleItemState,
}

func mapError(err error, op string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			if mapped, ok := uniqueViolations[pgErr.ConstraintName]; ok {
				return mapped
			}
		case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected, pgerrcode.LockNotAvailable:
			return errs.ErrStaleItemState
		case pgerrcode.ForeignKeyViolation:
			if strings.Contains(pgErr.ConstraintName, "member") {
				return errs.ErrMemberNotFound
			}
			return errs.ErrItemNotFound
		}
	}
	return errors.Wrap(err, op)
}
