package traversal

import (
	"sort"

	"github.com/robmazan/CodeAnalyzer/internal/git"
)

// MergeGroup partitions a commit sequence by calendar day, keeping the last
// record seen for each day.
type MergeGroup struct {
	byDay map[Day]git.CommitRecord
	keys  []Day
}

// GroupByDay walks seq in order and keeps, for every day key, the record that
// appears latest in seq. With an oldest-first sequence that is the last merge of the day.
func GroupByDay(seq git.CommitSequence) MergeGroup {
	g := MergeGroup{byDay: make(map[Day]git.CommitRecord)}
	for _, rec := range seq {
		key := DayKey(rec.Date)
		if _, seen := g.byDay[key]; !seen {
			g.keys = append(g.keys, key)
		}
		g.byDay[key] = rec
	}

	// Keys arrive ascending for an oldest-first walk; records with mixed
	// offsets can still produce an out-of-order key.
	if !sort.SliceIsSorted(g.keys, func(i, j int) bool { return g.keys[i].Before(g.keys[j]) }) {
		sort.SliceStable(g.keys, func(i, j int) bool { return g.keys[i].Before(g.keys[j]) })
	}
	return g
}

// Len returns the number of distinct days.
func (g MergeGroup) Len() int {
	return len(g.keys)
}

// Keys returns the day keys in ascending order.
func (g MergeGroup) Keys() []Day {
	keys := make([]Day, len(g.keys))
	copy(keys, g.keys)
	return keys
}

// Get returns the record kept for day.
func (g MergeGroup) Get(day Day) (git.CommitRecord, bool) {
	rec, ok := g.byDay[day]
	return rec, ok
}

// Values returns the kept records in ascending key order.
func (g MergeGroup) Values() git.CommitSequence {
	values := make(git.CommitSequence, len(g.keys))
	for i, key := range g.keys {
		values[i] = g.byDay[key]
	}
	return values
}
