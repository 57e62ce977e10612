// Package ledger keeps the duplicate accounting table for the tracked vessel:
// how many stored results exist per subject id. The table drives the
// diminishing value of repeated runs against the same subject.
package ledger

import "github.com/kilianp07/autosampler/core/model"

// Table maps a subject id to the number of results currently held for it.
// It is owned by the decision loop and is not safe for concurrent use.
type Table struct {
	counts map[string]int
}

// New returns an empty table.
func New() *Table {
	return &Table{counts: make(map[string]int)}
}

// Add records one more result for subjectID.
func (t *Table) Add(subjectID string) {
	t.counts[subjectID]++
}

// Count returns the number of results recorded for subjectID.
func (t *Table) Count(subjectID string) int {
	if t == nil {
		return 0
	}
	return t.counts[subjectID]
}

// Len returns the number of distinct subjects.
func (t *Table) Len() int { return len(t.counts) }

// Reset clears every count.
func (t *Table) Reset() {
	clear(t.counts)
}

// Rebuild clears the table and counts every result stored in holders.
func (t *Table) Rebuild(holders []model.Holder) {
	t.Reset()
	for _, h := range holders {
		if h == nil {
			continue
		}
		for _, d := range h.Data() {
			t.Add(d.SubjectID)
		}
	}
}

// Snapshot returns a copy of the counts.
func (t *Table) Snapshot() map[string]int {
	out := make(map[string]int, len(t.counts))
	for k, v := range t.counts {
		out[k] = v
	}
	return out
}
