package errs

import (
	"errors"
)

var (
	ErrItemNotFound        = errors.New("item not found")
	ErrMemberNotFound      = errors.New("member not found")
	ErrLoanNotFound        = errors.New("loan not found")
	ErrReservationNotFound = errors.New("reservation not found")

	ErrItemUnavailable          = errors.New("item is not available for checkout")
	ErrMemberSuspended          = errors.New("member is not in good standing")
	ErrMemberLimitExceeded      = errors.New("member active loan limit reached")
	ErrReservationLimitExceeded = errors.New("member reservation limit reached")
	ErrDuplicateHold            = errors.New("member already holds or reserves this item")
	ErrRenewalBlockedByHold     = errors.New("item has waiting reservations")
	ErrRenewalLimitExceeded     = errors.New("renewal limit reached")
	ErrFineLimitExceeded        = errors.New("unpaid fines above limit")
	ErrItemOnLoan               = errors.New("item is on loan")
	ErrItemExists               = errors.New("item already accessioned")
	ErrInvalidStateTransition   = errors.New("invalid state transition")
	ErrLoanNotActive            = errors.New("loan is not active")
	ErrStaleItemState           = errors.New("stale item state")
	ErrConflict                 = errors.New("concurrent modification, try again")

	ErrValidation = errors.New("validation failed")
)

const (
	KindInternal = "Internal"
)

var kinds = []struct {
	err  error
	kind string
}{
	{ErrItemNotFound, "ItemNotFound"},
	{ErrMemberNotFound, "MemberNotFound"},
	{ErrLoanNotFound, "LoanNotFound"},
	{ErrReservationNotFound, "ReservationNotFound"},
	{ErrItemUnavailable, "ItemUnavailable"},
	{ErrMemberSuspended, "MemberSuspended"},
	{ErrMemberLimitExceeded, "MemberLimitExceeded"},
	{ErrReservationLimitExceeded, "ReservationLimitExceeded"},
	{ErrDuplicateHold, "DuplicateHold"},
	{ErrRenewalBlockedByHold, "RenewalBlockedByHold"},
	{ErrRenewalLimitExceeded, "RenewalLimitExceeded"},
	{ErrFineLimitExceeded, "FineLimitExceeded"},
	{ErrItemOnLoan, "ItemOnLoan"},
	{ErrItemExists, "ItemExists"},
	{ErrInvalidStateTransition, "InvalidStateTransition"},
	{ErrLoanNotActive, "LoanNotActive"},
	{ErrStaleItemState, "StaleItemState"},
	{ErrConflict, "Conflict"},
	{ErrValidation, "ValidationError"},
}

// KindOf returns the taxonomy name of err, KindInternal for anything unknown.
func KindOf(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return KindInternal
}

// IsBusiness reports whether err is a rule rejection rather than an infrastructure failure.
func IsBusiness(err error) bool {
	return err != nil && KindOf(err) != KindInternal
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrItemNotFound) ||
		errors.Is(err, ErrMemberNotFound) ||
		errors.Is(err, ErrLoanNotFound) ||
		errors.Is(err, ErrReservationNotFound)
}

type ErrorResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}
