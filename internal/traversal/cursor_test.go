package traversal

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/robmazan/CodeAnalyzer/internal/git"
)

func linearSequence(n int) git.CommitSequence {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	seq := make(git.CommitSequence, n)
	for i := range seq {
		seq[i] = rec(fmt.Sprintf("c%d", i), base.Add(time.Duration(i)*time.Hour))
	}
	return seq
}

func TestAdvance_FiveCommitsStepTwo(t *testing.T) {
	seq := linearSequence(5)

	type result struct {
		hash    string
		hasMore bool
	}
	expected := []result{{"c2", true}, {"c4", true}, {"c4", false}, {"c4", false}}

	current := "c0"
	for i, want := range expected {
		target, more, err := Advance(seq, current, 2)
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if target.Hash != want.hash || more != want.hasMore {
			t.Errorf("call %d = (%s, %v), expected (%s, %v)", i, target.Hash, more, want.hash, want.hasMore)
		}
		current = target.Hash
	}
}

func TestAdvance_Errors(t *testing.T) {
	seq := linearSequence(3)

	tests := []struct {
		name    string
		current string
		step    int
		want    error
	}{
		{name: "zero step", current: "c0", step: 0, want: ErrInvalidStep},
		{name: "negative step", current: "c0", step: -2, want: ErrInvalidStep},
		{name: "unknown hash", current: "zzz", step: 1, want: ErrCursorOutOfRange},
		{name: "empty sequence", current: "c0", step: 1, want: ErrCursorOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := seq
			if tt.name == "empty sequence" {
				s = nil
			}
			_, _, err := Advance(s, tt.current, tt.step)
			if !errors.Is(err, tt.want) {
				t.Errorf("Advance() error = %v, expected %v", err, tt.want)
			}
		})
	}
}

func TestAdvance_LastIndexIsNotAnError(t *testing.T) {
	seq := linearSequence(4)
	target, more, err := Advance(seq, "c3", 1)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if target.Hash != "c3" || more {
		t.Errorf("Advance() = (%s, %v), expected (c3, false)", target.Hash, more)
	}
}

func TestAdvance_ReachingLastExactlyHasMore(t *testing.T) {
	seq := linearSequence(3)
	target, more, err := Advance(seq, "c0", 2)
	if err != nil {
		t.Fatalf("Advance: %v", err)
	}
	if target.Hash != "c2" || !more {
		t.Errorf("Advance() = (%s, %v), expected (c2, true)", target.Hash, more)
	}
}

func TestSteppedSelection(t *testing.T) {
	tests := []struct {
		name   string
		length int
		start  int
		step   int
		want   []int
	}{
		{name: "step one", length: 4, start: 0, step: 1, want: []int{0, 1, 2, 3}},
		{name: "five by two", length: 5, start: 0, step: 2, want: []int{0, 2, 4}},
		{name: "clamp onto last", length: 6, start: 0, step: 2, want: []int{0, 2, 4, 5}},
		{name: "step beyond length", length: 3, start: 0, step: 10, want: []int{0, 2}},
		{name: "single commit", length: 1, start: 0, step: 3, want: []int{0}},
		{name: "resume mid way", length: 7, start: 3, step: 2, want: []int{3, 5, 6}},
		{name: "empty", length: 0, start: 0, step: 1, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SteppedSelection(tt.length, tt.start, tt.step)
			if err != nil {
				t.Fatalf("SteppedSelection: %v", err)
			}
			if fmt.Sprint(got) != fmt.Sprint(tt.want) {
				t.Errorf("SteppedSelection(%d, %d, %d) = %v, expected %v", tt.length, tt.start, tt.step, got, tt.want)
			}
		})
	}
}

func TestSteppedSelection_Errors(t *testing.T) {
	if _, err := SteppedSelection(5, 0, 0); !errors.Is(err, ErrInvalidStep) {
		t.Errorf("expected ErrInvalidStep, got %v", err)
	}
	if _, err := SteppedSelection(5, 5, 1); !errors.Is(err, ErrCursorOutOfRange) {
		t.Errorf("expected ErrCursorOutOfRange, got %v", err)
	}
}

func TestIndexOf(t *testing.T) {
	seq := linearSequence(3)
	if IndexOf(seq, "c1") != 1 {
		t.Error("expected c1 at index 1")
	}
	if IndexOf(seq, "missing") != -1 {
		t.Error("expected -1 for missing hash")
	}
}
