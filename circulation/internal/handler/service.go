package handler

import (
	"context"
	"time"

	"github.com/Astemirdum/library-circulation/circulation/internal/model"
	"github.com/Astemirdum/library-circulation/circulation/internal/service"
)

//go:generate go run github.com/golang/mock/mockgen -source=service.go -destination=mocks/mock.go

type CirculationService interface {
	Checkout(ctx context.Context, req model.CheckoutRequest, now time.Time) (model.Loan, error)
	Renew(ctx context.Context, loanID string, now time.Time) (model.Loan, error)
	Return(ctx context.Context, loanID string, now time.Time) (model.Loan, error)
	PayFine(ctx context.Context, loanID string, now time.Time) (model.Loan, error)
	ReportMissing(ctx context.Context, loanID string, now time.Time) (model.Loan, error)
	ListMemberLoans(ctx context.Context, memberID string) (model.MemberLoans, error)

	PlaceReservation(ctx context.Context, req model.PlaceReservationRequest, now time.Time) (model.ReservationView, error)
	CancelReservation(ctx context.Context, reservationID string, now time.Time) (model.Reservation, error)
	GetReservation(ctx context.Context, reservationID string) (model.ReservationView, error)

	GetItem(ctx context.Context, itemID string) (model.ItemStatus, error)
	AccessionItem(ctx context.Context, req model.AccessionItemRequest, now time.Time) (model.Item, error)
	RetireItem(ctx context.Context, itemID string, now time.Time) (model.Item, error)
	RecordConditionAssessment(ctx context.Context, req model.AssessmentRequest, now time.Time) (model.ItemStatus, error)

	UpsertMember(ctx context.Context, req model.UpsertMemberRequest, now time.Time) (model.Member, error)
}

var _ CirculationService = (*service.Service)(nil)
