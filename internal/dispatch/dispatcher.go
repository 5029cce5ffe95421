package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/robmazan/CodeAnalyzer/internal/git"
	"github.com/robmazan/CodeAnalyzer/internal/sink"
	"github.com/robmazan/CodeAnalyzer/internal/traversal"
)

var (
	// ErrReportSinkFailure wraps a failed report. It never aborts a run.
	ErrReportSinkFailure = errors.New("report failed")

	// ErrCheckoutFailure wraps a failed checkout. It aborts the run.
	ErrCheckoutFailure = errors.New("checkout failed")
)

// Options configures a Dispatcher.
type Options struct {
	ProjectKey string
	// Step is the stepped-mode stride. Zero means traversal.DefaultStep.
	Step int

	// OnProgress is called after every report.
	OnProgress func(Progress)
	// OnReportFailure is called for every failed report; the run continues.
	OnReportFailure func(Failure)
}

// Dispatcher checks out selected commits one at a time and reports each one.
type Dispatcher struct {
	gateway git.Gateway
	sink    sink.ReportSink
	opts    Options
}

// New creates a Dispatcher.
func New(gateway git.Gateway, reportSink sink.ReportSink, opts Options) *Dispatcher {
	if opts.Step == 0 {
		opts.Step = traversal.DefaultStep
	}
	return &Dispatcher{gateway: gateway, sink: reportSink, opts: opts}
}

// Request selects what a Run traverses.
type Request struct {
	Branch     string
	MergesOnly bool
	// Resume starts a stepped run at the currently checked-out commit
	// instead of the oldest one.
	Resume bool
}

// Run reads the branch history oldest first and dispatches it in the requested mode.
func (d *Dispatcher) Run(ctx context.Context, req Request) (Summary, error) {
	if err := traversal.ValidateStep(d.opts.Step); err != nil {
		return Summary{}, err
	}

	seq, err := git.NewLogReader(d.gateway).Read(ctx, req.Branch, true, req.MergesOnly)
	if err != nil {
		return Summary{}, err
	}

	if req.MergesOnly {
		return d.RunMerges(ctx, seq)
	}

	start := 0
	if req.Resume && len(seq) > 0 {
		head, err := d.gateway.CurrentHead(ctx)
		if err != nil {
			return Summary{}, fmt.Errorf("failed to read HEAD: %w", err)
		}
		start = traversal.IndexOf(seq, head)
		if start < 0 {
			return Summary{}, fmt.Errorf("%w: %s", traversal.ErrCursorOutOfRange, head)
		}
	}
	return d.RunStepped(ctx, seq, start)
}

// Selection returns the commits a run over seq visits: the last merge of every
// day in merges-only mode, otherwise every step-th commit from the oldest one
// plus the newest.
func Selection(seq git.CommitSequence, mergesOnly bool, step int) (git.CommitSequence, error) {
	if mergesOnly {
		return traversal.GroupByDay(seq).Values(), nil
	}
	indices, err := traversal.SteppedSelection(len(seq), 0, step)
	if err != nil {
		return nil, err
	}
	selected := make(git.CommitSequence, len(indices))
	for i, idx := range indices {
		selected[i] = seq[idx]
	}
	return selected, nil
}

// RunStepped reports seq[start] and then every commit Advance lands on, until
// an advance no longer moves forward.
func (d *Dispatcher) RunStepped(ctx context.Context, seq git.CommitSequence, start int) (Summary, error) {
	selection, err := traversal.SteppedSelection(len(seq), start, d.opts.Step)
	if err != nil {
		return Summary{}, err
	}
	summary := Summary{Total: len(selection)}
	if len(seq) == 0 {
		return summary, nil
	}

	current := seq[start]
	if err := d.visit(ctx, current, 0, &summary); err != nil {
		return summary, err
	}

	for i := 1; ; i++ {
		target, more, err := traversal.Advance(seq, current.Hash, d.opts.Step)
		if err != nil {
			return summary, err
		}
		if !more && target.Hash == current.Hash {
			return summary, nil
		}
		if err := d.visit(ctx, target, i, &summary); err != nil {
			return summary, err
		}
		current = target
	}
}

// RunMerges reports the last merge of every day, in ascending day order.
func (d *Dispatcher) RunMerges(ctx context.Context, seq git.CommitSequence) (Summary, error) {
	selection := traversal.GroupByDay(seq).Values()
	summary := Summary{Total: len(selection)}

	for i, rec := range selection {
		if err := d.visit(ctx, rec, i, &summary); err != nil {
			return summary, err
		}
	}
	return summary, nil
}

// visit checks out rec, reports it and emits progress. Only checkout and
// cancellation errors are returned.
func (d *Dispatcher) visit(ctx context.Context, rec git.CommitRecord, i int, summary *Summary) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := d.gateway.Checkout(ctx, rec.Hash); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrCheckoutFailure, rec.Hash, err)
	}

	if err := d.sink.Send(ctx, d.opts.ProjectKey, sink.MetadataFor(rec)); err != nil {
		failure := Failure{Commit: rec, Err: fmt.Errorf("%w: %s (%s): %w", ErrReportSinkFailure, rec.ShortHash(), rec.Timestamp(), err)}
		summary.Failures = append(summary.Failures, failure)
		if d.opts.OnReportFailure != nil {
			d.opts.OnReportFailure(failure)
		}
	} else {
		summary.Reported++
	}

	if d.opts.OnProgress != nil {
		d.opts.OnProgress(newProgress(i, summary.Total, rec))
	}
	return nil
}
