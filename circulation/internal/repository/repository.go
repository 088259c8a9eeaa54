package repository

import (
	"context"
	"time"

	"github.com/Astemirdum/library-circulation/circulation/internal/model"
)

type Reader interface {
	GetItem(ctx context.Context, id string) (model.Item, error)
	GetMember(ctx context.Context, id string) (model.Member, error)
	GetLoan(ctx context.Context, id string) (model.Loan, error)
	GetReservation(ctx context.Context, id string) (model.Reservation, error)
	// ListReservations returns the item's reservations in queue order, filtered by status when given.
	ListReservations(ctx context.Context, itemID string, statuses ...model.ReservationStatus) ([]model.Reservation, error)
	ListMemberLoans(ctx context.Context, memberID string) ([]model.Loan, error)
}

// Tx is one unit of work. Lock* methods take row locks that are held until commit.
type Tx interface {
	Reader

	LockMember(ctx context.Context, id string) (model.Member, error)
	LockItem(ctx context.Context, id string) (model.Item, error)
	LockLoan(ctx context.Context, id string) (model.Loan, error)
	LockReservation(ctx context.Context, id string) (model.Reservation, error)

	UpsertMember(ctx context.Context, m model.Member) error

	CreateItem(ctx context.Context, item model.Item) error
	// CompareAndSetAvailability fails with errs.ErrStaleItemState when the stored availability is not from.
	CompareAndSetAvailability(ctx context.Context, itemID string, from, to model.Availability, now time.Time) (model.Item, error)
	UpdateItemCondition(ctx context.Context, itemID string, condition model.Condition, now time.Time) error
	RetireItem(ctx context.Context, itemID string, now time.Time) error
	InsertAssessment(ctx context.Context, a model.ConditionAssessment) error

	CreateLoan(ctx context.Context, loan model.Loan) error
	UpdateLoan(ctx context.Context, loan model.Loan) error
	ActiveLoanByItem(ctx context.Context, itemID string) (model.Loan, error)
	CountActiveLoans(ctx context.Context, memberID string) (int, error)
	UnpaidFines(ctx context.Context, memberID string) (int64, error)

	// CreateReservation assigns the queue sequence number to r.
	CreateReservation(ctx context.Context, r *model.Reservation) error
	UpdateReservation(ctx context.Context, r model.Reservation) error
	CountOpenReservations(ctx context.Context, memberID string) (int, error)
	// OpenReservation returns the member's waiting or ready reservation for the item.
	OpenReservation(ctx context.Context, itemID, memberID string) (model.Reservation, error)
}

type Repository interface {
	Reader
	// InTx commits when fn returns nil and rolls back otherwise.
	InTx(ctx context.Context, fn func(tx Tx) error) error

	// ListActiveLoansDueBefore pages active loans with dueAt before the bound, ordered by id.
	ListActiveLoansDueBefore(ctx context.Context, before time.Time, afterID string, limit int) ([]model.Loan, error)
	// ListExpiredHolds pages ready reservations whose hold expired before now, ordered by id.
	ListExpiredHolds(ctx context.Context, now time.Time, afterID string, limit int) ([]model.Reservation, error)

	Close() error
}
