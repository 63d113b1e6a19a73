package ledger

import (
	"time"
)

// View is the state a presentation layer renders after every action: the
// oven summary, the in-oven detail and how many records are in the export.
type View struct {
	Now      time.Time    `json:"now"`
	Summary  []OvenCount  `json:"summary"`
	InOven   []InOvenItem `json:"in_oven"`
	Unloaded int          `json:"unloaded"`
}

// Now returns the ledger clock's current time.
func (l *Ledger) Now() time.Time {
	return l.clock.Now()
}

// View computes the current board. It is recomputed on every call since
// elapsed time depends on now. Every part comes from one snapshot and one
// clock reading.
func (l *Ledger) View() View {
	l.mu.Lock()
	records := l.snapshot()
	now := l.clock.Now()
	l.mu.Unlock()

	v := View{
		Now:     stamp(now),
		Summary: summarize(records),
		InOven:  []InOvenItem{},
	}
	for _, r := range records {
		if r.InOven() {
			v.InOven = append(v.InOven, detailItem(r, now))
		} else {
			v.Unloaded++
		}
	}
	return v
}

// Overdue returns how many in-oven items of v are overdue.
func (v View) Overdue() int {
	n := 0
	for _, item := range v.InOven {
		if item.Overdue {
			n++
		}
	}
	return n
}
