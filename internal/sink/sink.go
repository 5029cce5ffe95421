package sink

import (
	"context"

	"github.com/robmazan/CodeAnalyzer/internal/git"
)

// CommitMetadata is what a report needs to know about the checked-out commit.
type CommitMetadata struct {
	Hash string
	// Date is the commit's calendar day (YYYY-MM-DD), used as the analysis date.
	Date string
	// Version is the full commit timestamp, used as the version label.
	Version string
	Author  string
}

// MetadataFor builds the report metadata of rec. The day keeps rec's own offset.
func MetadataFor(rec git.CommitRecord) CommitMetadata {
	return CommitMetadata{
		Hash:    rec.Hash,
		Date:    rec.Date.Format("2006-01-02"),
		Version: rec.Timestamp(),
		Author:  rec.Author,
	}
}

// ReportSink triggers an analysis report for the working tree as it is now.
// Send must block until the report has finished reading the working tree.
type ReportSink interface {
	Send(ctx context.Context, projectKey string, meta CommitMetadata) error
}

// Func adapts a plain function to ReportSink.
type Func func(ctx context.Context, projectKey string, meta CommitMetadata) error

// Send calls f.
func (f Func) Send(ctx context.Context, projectKey string, meta CommitMetadata) error {
	return f(ctx, projectKey, meta)
}
