package sink

import (
	"context"
	"encoding/json"
	"io"
	"sync"

	"github.com/robmazan/CodeAnalyzer/internal/linecount"
)

// LocalRecord is one line of Local output.
type LocalRecord struct {
	ProjectKey string `json:"projectKey"`
	Hash       string `json:"hash"`
	Date       string `json:"date"`
	Version    string `json:"version"`
	Author     string `json:"author"`
	Files      int    `json:"files"`
	Lines      int    `json:"lines"`
}

// Local counts lines in the reported commit's tree and writes one JSON object
// per report to Out. It needs no analysis server.
type Local struct {
	RepoPath string
	Match    linecount.Match
	Out      io.Writer

	mu sync.Mutex
}

// Send implements ReportSink.
func (l *Local) Send(ctx context.Context, projectKey string, meta CommitMetadata) error {
	snap, err := linecount.Tree(ctx, l.RepoPath, meta.Hash, l.Match)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	return json.NewEncoder(l.Out).Encode(LocalRecord{
		ProjectKey: projectKey,
		Hash:       meta.Hash,
		Date:       meta.Date,
		Version:    meta.Version,
		Author:     meta.Author,
		Files:      snap.Files,
		Lines:      snap.Lines,
	})
}
