package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Astemirdum/library-circulation/circulation/internal/model"
	"github.com/Astemirdum/library-circulation/circulation/internal/notify"
)

func TestOverdueDays(t *testing.T) {
	due := time.Date(2024, 3, 10, 16, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		now  time.Time
		want int
	}{
		{name: "before due", now: due.Add(-time.Hour), want: 0},
		{name: "exactly due", now: due, want: 0},
		{name: "same day a minute late", now: due.Add(time.Minute), want: 0},
		{name: "next day just after midnight", now: time.Date(2024, 3, 11, 0, 1, 0, 0, time.UTC), want: 1},
		{name: "next day late evening", now: time.Date(2024, 3, 11, 23, 59, 0, 0, time.UTC), want: 1},
		{name: "ten days", now: due.Add(10 * 24 * time.Hour), want: 10},
		{name: "across month end", now: time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC), want: 22},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OverdueDays(due, tt.now, time.UTC))
		})
	}
}

func TestOverdueDays_LibraryTimezone(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	// 01:00 local on March 2nd
	due := time.Date(2024, 3, 1, 22, 0, 0, 0, time.UTC)
	// 23:00 local, still March 2nd
	now := time.Date(2024, 3, 2, 20, 0, 0, 0, time.UTC)

	assert.Equal(t, 0, OverdueDays(due, now, loc))
	assert.Equal(t, 1, OverdueDays(due, now, time.UTC))
}

func TestFine(t *testing.T) {
	pol := model.Policy{FinePerDay: 1000, MaxFine: 50000}
	assert.Equal(t, int64(0), Fine(0, pol))
	assert.Equal(t, int64(10000), Fine(10, pol))
	assert.Equal(t, int64(50000), Fine(50, pol))
	assert.Equal(t, int64(50000), Fine(60, pol))

	assert.Equal(t, int64(3000), settleFine(3000, 0, pol))
	assert.Equal(t, int64(5000), settleFine(3000, 5000, pol))
	assert.Equal(t, int64(50000), settleFine(45000, 70000, pol))
}

func TestLatestThreshold(t *testing.T) {
	pol := model.Policy{DueSoonLead: 48 * time.Hour, OverdueNoticeInterval: 7 * 24 * time.Hour}
	due := time.Date(2024, 3, 10, 16, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		now    time.Time
		wantOK bool
		at     time.Time
		typ    notify.EventType
	}{
		{name: "nothing yet", now: time.Date(2024, 3, 8, 15, 0, 0, 0, time.UTC)},
		{name: "due soon lead", now: time.Date(2024, 3, 8, 17, 0, 0, 0, time.UTC), wantOK: true,
			at: time.Date(2024, 3, 8, 16, 0, 0, 0, time.UTC), typ: notify.EventDueSoon},
		{name: "due day", now: time.Date(2024, 3, 10, 1, 0, 0, 0, time.UTC), wantOK: true,
			at: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), typ: notify.EventDueSoon},
		{name: "after due time, same day", now: time.Date(2024, 3, 10, 20, 0, 0, 0, time.UTC), wantOK: true,
			at: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), typ: notify.EventDueSoon},
		{name: "first overdue day", now: time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), wantOK: true,
			at: time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), typ: notify.EventOverdue},
		{name: "within first week", now: time.Date(2024, 3, 17, 23, 0, 0, 0, time.UTC), wantOK: true,
			at: time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), typ: notify.EventOverdue},
		{name: "second overdue notice", now: time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC), wantOK: true,
			at: time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC), typ: notify.EventOverdue},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			th, ok := latestThreshold(due, tt.now, pol, time.UTC)
			require.Equal(t, tt.wantOK, ok)
			if !ok {
				return
			}
			assert.Equal(t, tt.at, th.at)
			assert.Equal(t, tt.typ, th.eventType)
		})
	}
}
