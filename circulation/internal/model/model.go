package model

import (
	"time"
)

type Condition string

const (
	ConditionExcellent Condition = "excellent"
	ConditionGood      Condition = "good"
	ConditionFair      Condition = "fair"
	ConditionDamaged   Condition = "damaged"
	ConditionLost      Condition = "lost"
)

func (c Condition) Valid() bool {
	switch c {
	case ConditionExcellent, ConditionGood, ConditionFair, ConditionDamaged, ConditionLost:
		return true
	}
	return false
}

// Usable reports whether an item in this condition can circulate.
func (c Condition) Usable() bool {
	return c == ConditionExcellent || c == ConditionGood || c == ConditionFair
}

type Availability string

const (
	AvailabilityAvailable Availability = "available"
	AvailabilityOnLoan    Availability = "on_loan"
	AvailabilityOnHold    Availability = "on_hold"
	AvailabilityInRepair  Availability = "in_repair"
	AvailabilityMissing   Availability = "missing"
)

type MembershipClass string

const (
	ClassStudent MembershipClass = "student"
	ClassTeacher MembershipClass = "teacher"
	ClassStaff   MembershipClass = "staff"
	ClassGuest   MembershipClass = "guest"
)

var MembershipClasses = []MembershipClass{ClassStudent, ClassTeacher, ClassStaff, ClassGuest}

type Standing string

const (
	StandingGood      Standing = "good"
	StandingSuspended Standing = "suspended"
	StandingExpired   Standing = "expired"
)

type ReservationStatus string

const (
	ReservationWaiting   ReservationStatus = "waiting"
	ReservationReady     ReservationStatus = "ready"
	ReservationFulfilled ReservationStatus = "fulfilled"
	ReservationExpired   ReservationStatus = "expired"
	ReservationCancelled ReservationStatus = "cancelled"
)

func (s ReservationStatus) Open() bool {
	return s == ReservationWaiting || s == ReservationReady
}

type Item struct {
	ID           string       `json:"itemId" db:"id"`
	CatalogRef   string       `json:"catalogRef" db:"catalog_ref"`
	Location     string       `json:"location" db:"location"`
	Condition    Condition    `json:"condition" db:"condition"`
	Availability Availability `json:"availability" db:"availability"`
	Retired      bool         `json:"retired" db:"retired"`
	Version      int64        `json:"-" db:"version"`
	CreatedAt    time.Time    `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time    `json:"updatedAt" db:"updated_at"`
}

type Member struct {
	ID              string          `json:"memberId" db:"id"`
	MembershipClass MembershipClass `json:"membershipClass" db:"membership_class"`
	Standing        Standing        `json:"standing" db:"standing"`
	UpdatedAt       time.Time       `json:"updatedAt" db:"updated_at"`
}

// Loan amounts are in minor currency units.
type Loan struct {
	ID             string     `json:"loanId" db:"id"`
	ItemID         string     `json:"itemId" db:"item_id"`
	MemberID       string     `json:"memberId" db:"member_id"`
	CheckoutAt     time.Time  `json:"checkoutAt" db:"checkout_at"`
	DueAt          time.Time  `json:"dueAt" db:"due_at"`
	ReturnedAt     *time.Time `json:"returnedAt,omitempty" db:"returned_at"`
	RenewalCount   int        `json:"renewalCount" db:"renewal_count"`
	FineAccrued    int64      `json:"fineAccrued" db:"fine_accrued"`
	FinePaid       bool       `json:"finePaid" db:"fine_paid"`
	LastNotifiedAt *time.Time `json:"-" db:"last_notified_at"`
	// ReportedMissingAt is set when the loan was closed by a loss report instead of a return.
	ReportedMissingAt *time.Time `json:"reportedMissingAt,omitempty" db:"reported_missing_at"`
}

func (l Loan) Active() bool {
	return l.ReturnedAt == nil
}

// Reservation queue order is (PlacedAt, Seq). Seq is assigned by the store and only grows.
type Reservation struct {
	ID            string            `json:"reservationId" db:"id"`
	ItemID        string            `json:"itemId" db:"item_id"`
	MemberID      string            `json:"memberId" db:"member_id"`
	Seq           int64             `json:"-" db:"seq"`
	PlacedAt      time.Time         `json:"placedAt" db:"placed_at"`
	Status        ReservationStatus `json:"status" db:"status"`
	ReadyAt       *time.Time        `json:"readyAt,omitempty" db:"ready_at"`
	HoldExpiresAt *time.Time        `json:"holdExpiresAt,omitempty" db:"hold_expires_at"`
	ClosedAt      *time.Time        `json:"closedAt,omitempty" db:"closed_at"`
}

// Before reports whether r is ahead of other in the FIFO queue.
func (r Reservation) Before(other Reservation) bool {
	if !r.PlacedAt.Equal(other.PlacedAt) {
		return r.PlacedAt.Before(other.PlacedAt)
	}
	return r.Seq < other.Seq
}

type ConditionAssessment struct {
	ID         string    `json:"assessmentId" db:"id"`
	ItemID     string    `json:"itemId" db:"item_id"`
	Condition  Condition `json:"condition" db:"condition"`
	Notes      string    `json:"notes" db:"notes"`
	AssessedBy string    `json:"assessedBy" db:"assessed_by"`
	AssessedAt time.Time `json:"assessedAt" db:"assessed_at"`
}

// Policy holds per membership class circulation limits. Money values are minor units.
type Policy struct {
	LoanPeriod            time.Duration `json:"loanPeriod" envconfig:"LOAN_PERIOD"`
	MaxLoans              int           `json:"maxLoans" envconfig:"MAX_LOANS"`
	MaxRenewals           int           `json:"maxRenewals" envconfig:"MAX_RENEWALS"`
	FinePerDay            int64         `json:"finePerDay" envconfig:"FINE_PER_DAY"`
	MaxFine               int64         `json:"maxFine" envconfig:"MAX_FINE"`
	MaxUnpaidFine         int64         `json:"maxUnpaidFine" envconfig:"MAX_UNPAID_FINE"`
	HoldDuration          time.Duration `json:"holdDuration" envconfig:"HOLD_DURATION"`
	MaxReservations       int           `json:"maxReservations" envconfig:"MAX_RESERVATIONS"`
	DueSoonLead           time.Duration `json:"dueSoonLead" envconfig:"DUE_SOON_LEAD"`
	OverdueNoticeInterval time.Duration `json:"overdueNoticeInterval" envconfig:"OVERDUE_NOTICE_INTERVAL"`
}
