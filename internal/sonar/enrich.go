package sonar

import (
	"context"
	"fmt"
	"time"

	"github.com/robmazan/CodeAnalyzer/internal/git"
	"github.com/sourcegraph/conc/pool"
)

// MeasuresQuerier returns the metric values recorded for a component on one day.
type MeasuresQuerier interface {
	MeasuresAt(ctx context.Context, component string, day time.Time, metrics []string) (map[string]string, error)
}

// EnrichedRecord is a commit annotated with the measures of its day.
type EnrichedRecord struct {
	Commit   git.CommitRecord
	Day      string
	Measures map[string]string
}

// Enrich looks up the measures recorded on rec's day.
func Enrich(ctx context.Context, rec git.CommitRecord, querier MeasuresQuerier, component string, metrics []string) (EnrichedRecord, error) {
	day := time.Date(rec.Date.Year(), rec.Date.Month(), rec.Date.Day(), 0, 0, 0, 0, time.UTC)
	measures, err := querier.MeasuresAt(ctx, component, day, metrics)
	if err != nil {
		return EnrichedRecord{}, fmt.Errorf("failed to fetch measures for %s: %w", rec.ShortHash(), err)
	}
	return EnrichedRecord{Commit: rec, Day: day.Format("2006-01-02"), Measures: measures}, nil
}

// EnrichAll enriches seq with at most parallelism concurrent queries.
// Results keep the order of seq; the first error cancels the rest.
func EnrichAll(ctx context.Context, seq git.CommitSequence, querier MeasuresQuerier, component string, metrics []string, parallelism int) ([]EnrichedRecord, error) {
	if parallelism < 1 {
		parallelism = 1
	}

	results := make([]EnrichedRecord, len(seq))
	p := pool.New().WithContext(ctx).WithMaxGoroutines(parallelism).WithCancelOnError()
	for i, rec := range seq {
		i, rec := i, rec
		p.Go(func(ctx context.Context) error {
			enriched, err := Enrich(ctx, rec, querier, component, metrics)
			if err != nil {
				return err
			}
			results[i] = enriched
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
