package notify

import (
	"time"
)

type EventType string

const (
	EventHoldReady     EventType = "hold_ready"
	EventHoldExpired   EventType = "hold_expired"
	EventHoldCancelled EventType = "hold_cancelled"
	EventDueSoon       EventType = "due_soon"
	EventOverdue       EventType = "overdue"
)

type Payload struct {
	ItemID        string     `json:"itemId"`
	MemberID      string     `json:"memberId"`
	LoanID        string     `json:"loanId,omitempty"`
	ReservationID string     `json:"reservationId,omitempty"`
	DueAt         *time.Time `json:"dueAt,omitempty"`
	HoldExpiresAt *time.Time `json:"holdExpiresAt,omitempty"`
	FineAccrued   int64      `json:"fineAccrued,omitempty"`
	OverdueDays   int        `json:"overdueDays,omitempty"`
	OccurredAt    time.Time  `json:"occurredAt"`
}

// Event is the envelope written to the notifications topic.
type Event struct {
	ID      string    `json:"eventId"`
	Type    EventType `json:"type"`
	Payload Payload   `json:"payload"`
}

type pending struct {
	eventType EventType
	payload   Payload
}

// Batch collects events inside a transaction; they are emitted only after commit.
type Batch struct {
	events []pending
}

func (b *Batch) Add(eventType EventType, payload Payload) {
	b.events = append(b.events, pending{eventType: eventType, payload: payload})
}

func (b *Batch) Len() int {
	if b == nil {
		return 0
	}
	return len(b.events)
}

func (b *Batch) Reset() {
	b.events = b.events[:0]
}

func (b *Batch) Types() []EventType {
	types := make([]EventType, 0, b.Len())
	for _, e := range b.events {
		types = append(types, e.eventType)
	}
	return types
}
