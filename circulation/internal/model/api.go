package model

import (
	"time"
)

type CheckoutRequest struct {
	ItemID   string `json:"itemId" validate:"required"`
	MemberID string `json:"memberId" validate:"required"`
}

type CheckoutResponse struct {
	LoanID string    `json:"loanId"`
	DueAt  time.Time `json:"dueAt"`
}

type RenewRequest struct {
	LoanID string `json:"loanId" validate:"required"`
}

type RenewResponse struct {
	DueAt        time.Time `json:"dueAt"`
	RenewalCount int       `json:"renewalCount"`
}

type ReturnRequest struct {
	LoanID string `json:"loanId" validate:"required"`
}

type ReturnResponse struct {
	FineAccrued int64 `json:"fineAccrued"`
}

type PlaceReservationRequest struct {
	ItemID   string `json:"itemId" validate:"required"`
	MemberID string `json:"memberId" validate:"required"`
}

// QueuePosition is 1-based among waiting reservations, 0 for a ready hold
// and nil once the reservation is closed.
type ReservationView struct {
	ReservationID string            `json:"reservationId"`
	ItemID        string            `json:"itemId"`
	MemberID      string            `json:"memberId"`
	Status        ReservationStatus `json:"status"`
	QueuePosition *int              `json:"queuePosition,omitempty"`
	PlacedAt      time.Time         `json:"placedAt"`
	ReadyAt       *time.Time        `json:"readyAt,omitempty"`
	HoldExpiresAt *time.Time        `json:"holdExpiresAt,omitempty"`
}

type CancelReservationResponse struct {
	Status ReservationStatus `json:"status"`
}

type ItemStatus struct {
	ItemID       string       `json:"itemId"`
	Availability Availability `json:"availability"`
	Condition    Condition    `json:"condition"`
	Retired      bool         `json:"retired,omitempty"`
}

type AccessionItemRequest struct {
	ItemID     string    `json:"itemId" validate:"required"`
	CatalogRef string    `json:"catalogRef" validate:"required"`
	Location   string    `json:"location"`
	Condition  Condition `json:"condition" validate:"omitempty,oneof=excellent good fair damaged lost"`
}

// AssessmentRequest is accepted over HTTP and from the assessments topic. AssessedAt is
// when the assessor looked at the copy; it is only recorded, state changes use the
// time the request is applied.
type AssessmentRequest struct {
	ItemID     string     `json:"itemId" validate:"required"`
	Condition  Condition  `json:"condition" validate:"required,oneof=excellent good fair damaged lost"`
	Notes      string     `json:"notes"`
	AssessedBy string     `json:"assessedBy" validate:"required"`
	AssessedAt *time.Time `json:"assessedAt,omitempty"`
}

type UpsertMemberRequest struct {
	MemberID        string          `json:"memberId" validate:"required"`
	MembershipClass MembershipClass `json:"membershipClass" validate:"required,oneof=student teacher staff guest"`
	Standing        Standing        `json:"standing" validate:"required,oneof=good suspended expired"`
}

type MemberLoans struct {
	MemberID    string `json:"memberId"`
	UnpaidFines int64  `json:"unpaidFines"`
	Items       []Loan `json:"items"`
}

type PayFineResponse struct {
	LoanID      string `json:"loanId"`
	FineAccrued int64  `json:"fineAccrued"`
	FinePaid    bool   `json:"finePaid"`
}

type SweepResult struct {
	Processed int `json:"processed"`
	Changed   int `json:"changed"`
	Failed    int `json:"failed"`
}
