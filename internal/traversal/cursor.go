package traversal

import (
	"errors"
	"fmt"

	"github.com/robmazan/CodeAnalyzer/internal/git"
)

var (
	// ErrCursorOutOfRange is returned when the current commit is not part of the sequence.
	ErrCursorOutOfRange = errors.New("current commit is not in the commit sequence")

	// ErrInvalidStep is returned for a step below 1.
	ErrInvalidStep = errors.New("step must be a positive integer")
)

// DefaultStep advances one commit at a time.
const DefaultStep = 1

// Cursor is the position of the checked-out commit within a sequence.
// It is derived from HEAD on every advance and never stored.
type Cursor struct {
	Index int
	Step  int
}

// ValidateStep rejects non-positive steps.
func ValidateStep(step int) error {
	if step < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidStep, step)
	}
	return nil
}

// IndexOf returns the position of hash in seq, or -1.
func IndexOf(seq git.CommitSequence, hash string) int {
	for i, rec := range seq {
		if rec.Hash == hash {
			return i
		}
	}
	return -1
}

// Locate builds the cursor for currentHash.
func Locate(seq git.CommitSequence, currentHash string, step int) (Cursor, error) {
	if err := ValidateStep(step); err != nil {
		return Cursor{}, err
	}
	idx := IndexOf(seq, currentHash)
	if idx < 0 {
		return Cursor{}, fmt.Errorf("%w: %s", ErrCursorOutOfRange, currentHash)
	}
	return Cursor{Index: idx, Step: step}, nil
}

// Next returns the index step positions ahead, clamped to the last index.
// hasMore is false once the clamp applies.
func (c Cursor) Next(length int) (int, bool) {
	next := c.Index + c.Step
	if next >= length {
		return length - 1, false
	}
	return next, true
}

// Advance returns the commit step positions after currentHash.
// Past the end of history it returns the last commit with hasMore=false;
// repeated calls from there keep returning the same commit.
func Advance(seq git.CommitSequence, currentHash string, step int) (git.CommitRecord, bool, error) {
	cur, err := Locate(seq, currentHash, step)
	if err != nil {
		return git.CommitRecord{}, false, err
	}
	next, hasMore := cur.Next(len(seq))
	return seq[next], hasMore, nil
}

// SteppedSelection lists the indices a stepped run starting at start visits:
// start, start+step, ... and the last index when the walk clamps onto it.
func SteppedSelection(length, start, step int) ([]int, error) {
	if err := ValidateStep(step); err != nil {
		return nil, err
	}
	if length == 0 {
		return nil, nil
	}
	if start < 0 || start >= length {
		return nil, fmt.Errorf("%w: start index %d of %d", ErrCursorOutOfRange, start, length)
	}

	indices := []int{start}
	cur := Cursor{Index: start, Step: step}
	for {
		next, more := cur.Next(length)
		if !more && next == cur.Index {
			return indices, nil
		}
		indices = append(indices, next)
		cur.Index = next
	}
}
