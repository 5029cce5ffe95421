package traversal

import (
	"fmt"
	"testing"
	"time"

	"github.com/robmazan/CodeAnalyzer/internal/git"
	"pgregory.net/rapid"
)

// --- Generators ---

// genMergeSequence draws an oldest-first sequence with several merges per day.
func genMergeSequence() *rapid.Generator[git.CommitSequence] {
	return rapid.Custom(func(t *rapid.T) git.CommitSequence {
		count := rapid.IntRange(0, 60).Draw(t, "count")
		when := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
		seq := make(git.CommitSequence, count)
		for i := 0; i < count; i++ {
			gap := rapid.IntRange(0, 30).Draw(t, fmt.Sprintf("gap%d", i))
			when = when.Add(time.Duration(gap) * time.Hour)
			seq[i] = git.CommitRecord{Hash: fmt.Sprintf("h%03d", i), Date: when}
		}
		return seq
	})
}

// --- Property Tests ---

func TestRapidGroupByDay_LastInInputOrderWins(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		seq := genMergeSequence().Draw(t, "seq")
		g := GroupByDay(seq)

		lastIndex := make(map[Day]int)
		for i, r := range seq {
			lastIndex[DayKey(r.Date)] = i
		}

		if g.Len() != len(lastIndex) {
			t.Fatalf("Len() = %d, expected %d distinct days", g.Len(), len(lastIndex))
		}
		for day, idx := range lastIndex {
			got, ok := g.Get(day)
			if !ok || got.Hash != seq[idx].Hash {
				t.Fatalf("day %s kept %s, expected %s", day, got.Hash, seq[idx].Hash)
			}
		}
	})
}

func TestRapidGroupByDay_ValuesStrictlyDayMonotonic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		seq := genMergeSequence().Draw(t, "seq")
		values := GroupByDay(seq).Values()

		for i := 1; i < len(values); i++ {
			prev, cur := DayKey(values[i-1].Date), DayKey(values[i].Date)
			if !prev.Before(cur) {
				t.Fatalf("values[%d] day %s not after values[%d] day %s", i, cur, i-1, prev)
			}
			if IndexOf(seq, values[i-1].Hash) >= IndexOf(seq, values[i].Hash) {
				t.Fatalf("values are not a subsequence of the input")
			}
		}
	})
}

func TestRapidAdvance_IdempotentOnceExhausted(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 50).Draw(t, "n")
		step := rapid.IntRange(1, 10).Draw(t, "step")
		seq := linearSequence(n)

		current := seq[0].Hash
		for {
			target, more, err := Advance(seq, current, step)
			if err != nil {
				t.Fatalf("Advance: %v", err)
			}
			current = target.Hash
			if !more {
				break
			}
		}

		for i := 0; i < 3; i++ {
			target, more, err := Advance(seq, current, step)
			if err != nil {
				t.Fatalf("Advance: %v", err)
			}
			if more || target.Hash != seq[n-1].Hash {
				t.Fatalf("exhausted advance returned (%s, %v), expected (%s, false)", target.Hash, more, seq[n-1].Hash)
			}
		}
	})
}

func TestRapidSteppedSelection_VisitCount(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 200).Draw(t, "n")
		step := rapid.IntRange(1, 20).Draw(t, "step")

		got, err := SteppedSelection(n, 0, step)
		if err != nil {
			t.Fatalf("SteppedSelection: %v", err)
		}

		// Every multiple of step below n, plus the last index when it is not one.
		expected := (n-1)/step + 1
		if (n-1)%step != 0 {
			expected++
		}
		if len(got) != expected {
			t.Fatalf("visited %d commits for n=%d step=%d, expected %d", len(got), n, step, expected)
		}
		if got[len(got)-1] != n-1 {
			t.Fatalf("last visited index %d, expected %d", got[len(got)-1], n-1)
		}
		for i := 1; i < len(got); i++ {
			if got[i] <= got[i-1] {
				t.Fatalf("indices not strictly increasing: %v", got)
			}
		}
	})
}

func TestRapidSteppedSelection_StepOneVisitsAll(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 200).Draw(t, "n")
		got, err := SteppedSelection(n, 0, 1)
		if err != nil {
			t.Fatalf("SteppedSelection: %v", err)
		}
		for i, idx := range got {
			if idx != i {
				t.Fatalf("got[%d] = %d", i, idx)
			}
		}
		if len(got) != n {
			t.Fatalf("visited %d, expected %d", len(got), n)
		}
	})
}
