package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Astemirdum/library-circulation/circulation/internal/errs"
	"github.com/Astemirdum/library-circulation/circulation/internal/model"
)

// memData is never mutated once published; transactions work on a clone.
type memData struct {
	members      map[string]model.Member
	items        map[string]model.Item
	loans        map[string]model.Loan
	reservations map[string]model.Reservation
	assessments  []model.ConditionAssessment
	seq          int64
}

func newMemData() *memData {
	return &memData{
		members:      make(map[string]model.Member),
		items:        make(map[string]model.Item),
		loans:        make(map[string]model.Loan),
		reservations: make(map[string]model.Reservation),
	}
}

func (d *memData) clone() *memData {
	c := &memData{
		members:      make(map[string]model.Member, len(d.members)),
		items:        make(map[string]model.Item, len(d.items)),
		loans:        make(map[string]model.Loan, len(d.loans)),
		reservations: make(map[string]model.Reservation, len(d.reservations)),
		assessments:  make([]model.ConditionAssessment, len(d.assessments)),
		seq:          d.seq,
	}
	for k, v := range d.members {
		c.members[k] = v
	}
	for k, v := range d.items {
		c.items[k] = v
	}
	for k, v := range d.loans {
		c.loans[k] = v
	}
	for k, v := range d.reservations {
		c.reservations[k] = v
	}
	copy(c.assessments, d.assessments)
	return c
}

type memory struct {
	mu   sync.RWMutex
	txMu sync.Mutex
	data *memData
	log  *zap.Logger
}

// NewMemory returns a process-local store. Transactions are serialized and
// copy-on-write, so readers always see the last committed state.
func NewMemory(log *zap.Logger) *memory {
	return &memory{
		data: newMemData(),
		log:  log.Named("repo"),
	}
}

var _ Repository = (*memory)(nil)

func (m *memory) snapshot() memReader {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return memReader{d: m.data}
}

func (m *memory) InTx(ctx context.Context, fn func(tx Tx) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}

	work := m.snapshot().d.clone()
	if err := fn(&memTx{memReader{d: work}}); err != nil {
		return err
	}

	m.mu.Lock()
	m.data = work
	m.mu.Unlock()
	return nil
}

func (m *memory) GetItem(ctx context.Context, id string) (model.Item, error) {
	return m.snapshot().GetItem(ctx, id)
}

func (m *memory) GetMember(ctx context.Context, id string) (model.Member, error) {
	return m.snapshot().GetMember(ctx, id)
}

func (m *memory) GetLoan(ctx context.Context, id string) (model.Loan, error) {
	return m.snapshot().GetLoan(ctx, id)
}

func (m *memory) GetReservation(ctx context.Context, id string) (model.Reservation, error) {
	return m.snapshot().GetReservation(ctx, id)
}

func (m *memory) ListReservations(ctx context.Context, itemID string, statuses ...model.ReservationStatus) ([]model.Reservation, error) {
	return m.snapshot().ListReservations(ctx, itemID, statuses...)
}

func (m *memory) ListMemberLoans(ctx context.Context, memberID string) ([]model.Loan, error) {
	return m.snapshot().ListMemberLoans(ctx, memberID)
}

func (m *memory) ListActiveLoansDueBefore(_ context.Context, before time.Time, afterID string, limit int) ([]model.Loan, error) {
	d := m.snapshot().d
	var loans []model.Loan
	for _, l := range d.loans {
		if l.Active() && l.DueAt.Before(before) && l.ID > afterID {
			loans = append(loans, l)
		}
	}
	sort.Slice(loans, func(i, j int) bool { return loans[i].ID < loans[j].ID })
	if limit > 0 && len(loans) > limit {
		loans = loans[:limit]
	}
	return loans, nil
}

func (m *memory) ListExpiredHolds(_ context.Context, now time.Time, afterID string, limit int) ([]model.Reservation, error) {
	d := m.snapshot().d
	var res []model.Reservation
	for _, r := range d.reservations {
		if r.Status == model.ReservationReady && r.HoldExpiresAt != nil && r.HoldExpiresAt.Before(now) && r.ID > afterID {
			res = append(res, r)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	if limit > 0 && len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}

func (m *memory) Close() error {
	return nil
}

type memReader struct {
	d *memData
}

func (r memReader) GetItem(_ context.Context, id string) (model.Item, error) {
	item, ok := r.d.items[id]
	if !ok {
		return model.Item{}, errs.ErrItemNotFound
	}
	return item, nil
}

func (r memReader) GetMember(_ context.Context, id string) (model.Member, error) {
	m, ok := r.d.members[id]
	if !ok {
		return model.Member{}, errs.ErrMemberNotFound
	}
	return m, nil
}

func (r memReader) GetLoan(_ context.Context, id string) (model.Loan, error) {
	l, ok := r.d.loans[id]
	if !ok {
		return model.Loan{}, errs.ErrLoanNotFound
	}
	return l, nil
}

func (r memReader) GetReservation(_ context.Context, id string) (model.Reservation, error) {
	res, ok := r.d.reservations[id]
	if !ok {
		return model.Reservation{}, errs.ErrReservationNotFound
	}
	return res, nil
}

func (r memReader) ListReservations(_ context.Context, itemID string, statuses ...model.ReservationStatus) ([]model.Reservation, error) {
	var res []model.Reservation
	for _, v := range r.d.reservations {
		if v.ItemID != itemID || !statusIn(v.Status, statuses) {
			continue
		}
		res = append(res, v)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Before(res[j]) })
	return res, nil
}

func (r memReader) ListMemberLoans(_ context.Context, memberID string) ([]model.Loan, error) {
	var loans []model.Loan
	for _, l := range r.d.loans {
		if l.MemberID == memberID {
			loans = append(loans, l)
		}
	}
	sort.Slice(loans, func(i, j int) bool {
		if !loans[i].CheckoutAt.Equal(loans[j].CheckoutAt) {
			return loans[i].CheckoutAt.After(loans[j].CheckoutAt)
		}
		return loans[i].ID < loans[j].ID
	})
	return loans, nil
}

func statusIn(s model.ReservationStatus, statuses []model.ReservationStatus) bool {
	if len(statuses) == 0 {
		return true
	}
	for _, v := range statuses {
		if v == s {
			return true
		}
	}
	return false
}

// memTx needs no row locks: memory transactions never overlap.
type memTx struct {
	memReader
}

func (t *memTx) LockMember(ctx context.Context, id string) (model.Member, error) {
	return t.GetMember(ctx, id)
}

func (t *memTx) LockItem(ctx context.Context, id string) (model.Item, error) {
	return t.GetItem(ctx, id)
}

func (t *memTx) LockLoan(ctx context.Context, id string) (model.Loan, error) {
	return t.GetLoan(ctx, id)
}

func (t *memTx) LockReservation(ctx context.Context, id string) (model.Reservation, error) {
	return t.GetReservation(ctx, id)
}

func (t *memTx) UpsertMember(_ context.Context, m model.Member) error {
	t.d.members[m.ID] = m
	return nil
}

func (t *memTx) CreateItem(_ context.Context, item model.Item) error {
	if _, ok := t.d.items[item.ID]; ok {
		return errs.ErrItemExists
	}
	t.d.items[item.ID] = item
	return nil
}

func (t *memTx) CompareAndSetAvailability(_ context.Context, itemID string, from, to model.Availability, now time.Time) (model.Item, error) {
	item, ok := t.d.items[itemID]
	if !ok {
		return model.Item{}, errs.ErrItemNotFound
	}
	if item.Availability != from {
		return model.Item{}, errs.ErrStaleItemState
	}
	item.Availability = to
	item.Version++
	item.UpdatedAt = now
	t.d.items[itemID] = item
	return item, nil
}

func (t *memTx) UpdateItemCondition(_ context.Context, itemID string, condition model.Condition, now time.Time) error {
	item, ok := t.d.items[itemID]
	if !ok {
		return errs.ErrItemNotFound
	}
	item.Condition = condition
	item.Version++
	item.UpdatedAt = now
	t.d.items[itemID] = item
	return nil
}

func (t *memTx) RetireItem(_ context.Context, itemID string, now time.Time) error {
	item, ok := t.d.items[itemID]
	if !ok {
		return errs.ErrItemNotFound
	}
	item.Retired = true
	item.Version++
	item.UpdatedAt = now
	t.d.items[itemID] = item
	return nil
}

func (t *memTx) InsertAssessment(_ context.Context, a model.ConditionAssessment) error {
	t.d.assessments = append(t.d.assessments, a)
	return nil
}

func (t *memTx) CreateLoan(_ context.Context, loan model.Loan) error {
	for _, l := range t.d.loans {
		if l.ItemID == loan.ItemID && l.Active() {
			return errs.ErrItemUnavailable
		}
	}
	t.d.loans[loan.ID] = loan
	return nil
}

func (t *memTx) UpdateLoan(_ context.Context, loan model.Loan) error {
	if _, ok := t.d.loans[loan.ID]; !ok {
		return errs.ErrLoanNotFound
	}
	t.d.loans[loan.ID] = loan
	return nil
}

func (t *memTx) ActiveLoanByItem(_ context.Context, itemID string) (model.Loan, error) {
	for _, l := range t.d.loans {
		if l.ItemID == itemID && l.Active() {
			return l, nil
		}
	}
	return model.Loan{}, errs.ErrLoanNotFound
}

func (t *memTx) CountActiveLoans(_ context.Context, memberID string) (int, error) {
	n := 0
	for _, l := range t.d.loans {
		if l.MemberID == memberID && l.Active() {
			n++
		}
	}
	return n, nil
}

func (t *memTx) UnpaidFines(_ context.Context, memberID string) (int64, error) {
	var sum int64
	for _, l := range t.d.loans {
		if l.MemberID == memberID && !l.FinePaid {
			sum += l.FineAccrued
		}
	}
	return sum, nil
}

func (t *memTx) CreateReservation(_ context.Context, r *model.Reservation) error {
	for _, v := range t.d.reservations {
		if v.ItemID == r.ItemID && v.MemberID == r.MemberID && v.Status.Open() {
			return errs.ErrDuplicateHold
		}
	}
	t.d.seq++
	r.Seq = t.d.seq
	t.d.reservations[r.ID] = *r
	return nil
}

func (t *memTx) UpdateReservation(_ context.Context, r model.Reservation) error {
	if _, ok := t.d.reservations[r.ID]; !ok {
		return errs.ErrReservationNotFound
	}
	if r.Status == model.ReservationReady {
		for _, v := range t.d.reservations {
			if v.ID != r.ID && v.ItemID == r.ItemID && v.Status == model.ReservationReady {
				return errs.ErrStaleItemState
			}
		}
	}
	t.d.reservations[r.ID] = r
	return nil
}

func (t *memTx) CountOpenReservations(_ context.Context, memberID string) (int, error) {
	n := 0
	for _, v := range t.d.reservations {
		if v.MemberID == memberID && v.Status.Open() {
			n++
		}
	}
	return n, nil
}

func (t *memTx) OpenReservation(_ context.Context, itemID, memberID string) (model.Reservation, error) {
	for _, v := range t.d.reservations {
		if v.ItemID == itemID && v.MemberID == memberID && v.Status.Open() {
			return v, nil
		}
	}
	return model.Reservation{}, errs.ErrReservationNotFound
}
