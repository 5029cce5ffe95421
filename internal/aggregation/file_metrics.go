package aggregation

import (
	"sort"
	"time"

	"github.com/robmazan/CodeAnalyzer/internal/git"
)

// FileMetrics holds aggregated change statistics for a single file.
type FileMetrics struct {
	Path            string
	CommitCount     int
	AddedLines      int
	DeletedLines    int
	Binary          bool
	FirstModifiedAt time.Time
	LastModifiedAt  time.Time
	// CommitsByContributor counts commits per contributor key (lowercased email).
	CommitsByContributor map[string]int
}

// NewFileMetrics creates a new FileMetrics instance.
func NewFileMetrics(path string) *FileMetrics {
	return &FileMetrics{Path: path, CommitsByContributor: make(map[string]int)}
}

// ChurnTotal returns total lines changed (added + deleted).
func (f *FileMetrics) ChurnTotal() int {
	return f.AddedLines + f.DeletedLines
}

// ContributorCount returns number of unique contributors.
func (f *FileMetrics) ContributorCount() int {
	return len(f.CommitsByContributor)
}

// OwnershipRatio returns the share of commits made by the top contributor.
// A file nobody touched counts as fully owned.
func (f *FileMetrics) OwnershipRatio() float64 {
	top := f.TopContributor()
	if f.CommitCount == 0 || top == "" {
		return 1.0
	}
	return float64(f.CommitsByContributor[top]) / float64(f.CommitCount)
}

// TopContributor returns the contributor with the most commits.
// Ties go to the lexically smallest key so the result is stable.
func (f *FileMetrics) TopContributor() string {
	top, best := "", 0
	for key, count := range f.CommitsByContributor {
		if count > best || (count == best && key < top) {
			top, best = key, count
		}
	}
	return top
}

// AddCommit adds a commit's contribution to this file's metrics.
func (f *FileMetrics) AddCommit(commit git.CommitInfo, change git.FileChange) {
	f.CommitCount++
	f.AddedLines += change.LinesAdded
	f.DeletedLines += change.LinesDeleted
	f.Binary = f.Binary || change.Binary

	if f.LastModifiedAt.IsZero() || commit.When.After(f.LastModifiedAt) {
		f.LastModifiedAt = commit.When
	}
	if f.FirstModifiedAt.IsZero() || commit.When.Before(f.FirstModifiedAt) {
		f.FirstModifiedAt = commit.When
	}

	f.CommitsByContributor[commit.Author.ContributorKey()]++
}

// FileMetricsAggregator aggregates file changes from commits.
type FileMetricsAggregator struct {
	metrics map[string]*FileMetrics
	filter  *PathFilter
}

// NewFileMetricsAggregator creates a new aggregator. A nil filter keeps every path.
func NewFileMetricsAggregator(filter *PathFilter) *FileMetricsAggregator {
	return &FileMetricsAggregator{
		metrics: make(map[string]*FileMetrics),
		filter:  filter,
	}
}

// Process adds every filtered file change and returns the metrics by path.
func (a *FileMetricsAggregator) Process(changeSets []git.CommitChangeSet) map[string]*FileMetrics {
	for _, cs := range changeSets {
		for _, change := range cs.Changes {
			if !a.filter.Match(change.Path) {
				continue
			}
			fm, ok := a.metrics[change.Path]
			if !ok {
				fm = NewFileMetrics(change.Path)
				a.metrics[change.Path] = fm
			}
			fm.AddCommit(cs.Commit, change)
		}
	}
	return a.metrics
}

// GetMetrics returns the aggregated metrics.
func (a *FileMetricsAggregator) GetMetrics() map[string]*FileMetrics {
	return a.metrics
}

// Ranked returns the metrics ordered by churn, then commit count, then path.
func (a *FileMetricsAggregator) Ranked() []*FileMetrics {
	ranked := make([]*FileMetrics, 0, len(a.metrics))
	for _, fm := range a.metrics {
		ranked = append(ranked, fm)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].ChurnTotal() != ranked[j].ChurnTotal() {
			return ranked[i].ChurnTotal() > ranked[j].ChurnTotal()
		}
		if ranked[i].CommitCount != ranked[j].CommitCount {
			return ranked[i].CommitCount > ranked[j].CommitCount
		}
		return ranked[i].Path < ranked[j].Path
	})
	return ranked
}
