package dispatch

import (
	"fmt"

	"github.com/robmazan/CodeAnalyzer/internal/git"
)

// Progress is emitted after every report.
type Progress struct {
	Current int
	Total   int
	Percent int
	Commit  git.CommitRecord
}

func newProgress(i, total int, commit git.CommitRecord) Progress {
	return Progress{
		Current: i + 1,
		Total:   total,
		Percent: (i + 1) * 100 / total,
		Commit:  commit,
	}
}

// Failure is a report that failed for one commit.
type Failure struct {
	Commit git.CommitRecord
	Err    error
}

// Summary describes the outcome of one run.
type Summary struct {
	// Total is the number of commits selected for the run.
	Total int
	// Reported is the number of commits whose report succeeded.
	Reported int
	Failures []Failure
}

// Visited returns the number of commits checked out and reported so far.
func (s Summary) Visited() int {
	return s.Reported + len(s.Failures)
}

// String renders the final state line.
func (s Summary) String() string {
	return fmt.Sprintf("completed %d/%d commits reported, %d failures", s.Reported, s.Total, len(s.Failures))
}
