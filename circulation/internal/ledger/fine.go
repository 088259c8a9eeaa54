package ledger

import (
	"time"

	"github.com/Astemirdum/library-circulation/circulation/internal/model"
	"github.com/Astemirdum/library-circulation/circulation/internal/notify"
)

func startOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// calendarDays counts date boundaries between from and to in loc.
func calendarDays(from, to time.Time, loc *time.Location) int {
	fy, fm, fd := from.In(loc).Date()
	ty, tm, td := to.In(loc).Date()
	a := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// OverdueDays counts calendar days past the due date. Returning later on the due day
// itself costs nothing, any time on the following day counts as one day.
func OverdueDays(dueAt, now time.Time, loc *time.Location) int {
	if !now.After(dueAt) {
		return 0
	}
	return calendarDays(dueAt, now, loc)
}

func Fine(days int, pol model.Policy) int64 {
	if days <= 0 {
		return 0
	}
	fine := int64(days) * pol.FinePerDay
	if pol.MaxFine > 0 && fine > pol.MaxFine {
		fine = pol.MaxFine
	}
	return fine
}

// settleFine keeps whatever was accrued before a renewal moved the due date.
func settleFine(retained, computed int64, pol model.Policy) int64 {
	fine := retained
	if computed > fine {
		fine = computed
	}
	if pol.MaxFine > 0 && fine > pol.MaxFine {
		fine = pol.MaxFine
	}
	return fine
}

type threshold struct {
	at        time.Time
	eventType notify.EventType
}

// latestThreshold returns the most recent notice threshold at or before now:
// dueAt-DueSoonLead and the start of the due day announce due_soon, the start of the first
// overdue day and every OverdueNoticeInterval after it announce overdue.
func latestThreshold(dueAt, now time.Time, pol model.Policy, loc *time.Location) (threshold, bool) {
	dueDay := startOfDay(dueAt, loc)
	y, m, d := dueDay.Date()
	firstOverdue := time.Date(y, m, d+1, 0, 0, 0, 0, loc)

	if !now.Before(firstOverdue) {
		at := firstOverdue
		if pol.OverdueNoticeInterval > 0 {
			k := now.Sub(firstOverdue) / pol.OverdueNoticeInterval
			at = firstOverdue.Add(k * pol.OverdueNoticeInterval)
		}
		return threshold{at: at, eventType: notify.EventOverdue}, true
	}

	var (
		best  threshold
		found bool
	)
	candidates := []time.Time{dueDay}
	if pol.DueSoonLead > 0 {
		candidates = append(candidates, dueAt.Add(-pol.DueSoonLead))
	}
	for _, at := range candidates {
		if at.After(now) {
			continue
		}
		if !found || at.After(best.at) {
			best = threshold{at: at, eventType: notify.EventDueSoon}
			found = true
		}
	}
	return best, found
}
