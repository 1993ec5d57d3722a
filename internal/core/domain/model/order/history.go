package order

import (
	"time"

	"fooddelivery/internal/core/domain/model/kernel"
)

// HistoryEntry records one accepted status change. Seq starts at 1 and is
// contiguous; entries are only ever appended.
type HistoryEntry struct {
	seq    int
	status Status
	actor  kernel.Actor
	at     time.Time
}

// RestoreHistoryEntry rebuilds a persisted entry.
func RestoreHistoryEntry(seq int, status Status, actor kernel.Actor, at time.Time) HistoryEntry {
	return HistoryEntry{seq: seq, status: status, actor: actor, at: at}
}

func (h HistoryEntry) Seq() int {
	return h.seq
}

func (h HistoryEntry) Status() Status {
	return h.status
}

func (h HistoryEntry) Actor() kernel.Actor {
	return h.actor
}

func (h HistoryEntry) At() time.Time {
	return h.at
}
