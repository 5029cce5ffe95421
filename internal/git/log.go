package git

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrMalformedLogEntry is returned when a log line cannot be parsed into a CommitRecord.
var ErrMalformedLogEntry = errors.New("malformed log entry")

// LogReader turns a gateway's raw log listing into a CommitSequence.
type LogReader struct {
	gateway Gateway
}

// NewLogReader creates a reader on top of gateway.
func NewLogReader(gateway Gateway) *LogReader {
	return &LogReader{gateway: gateway}
}

// Read lists the commits of branch and parses them in listing order.
// An empty history yields an empty sequence. Any unparsable line fails the whole read.
func (r *LogReader) Read(ctx context.Context, branch string, reverse, mergesOnly bool) (CommitSequence, error) {
	lines, err := r.gateway.ListCommits(ctx, branch, reverse, mergesOnly)
	if err != nil {
		return nil, fmt.Errorf("failed to list commits: %w", err)
	}
	return ParseLog(lines)
}

// ParseLog parses every line; it never skips a line.
func ParseLog(lines []string) (CommitSequence, error) {
	seq := make(CommitSequence, 0, len(lines))
	for i, line := range lines {
		rec, err := ParseLogLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		seq = append(seq, rec)
	}
	return seq, nil
}

// ParseLogLine parses one line of LogFormat output.
func ParseLogLine(line string) (CommitRecord, error) {
	fields := strings.Split(strings.TrimRight(line, "\r"), FieldSeparator)
	if len(fields) != 4 {
		return CommitRecord{}, fmt.Errorf("%w: expected 4 fields, got %d: %q", ErrMalformedLogEntry, len(fields), line)
	}

	hash := strings.TrimSpace(fields[0])
	if hash == "" {
		return CommitRecord{}, fmt.Errorf("%w: empty hash: %q", ErrMalformedLogEntry, line)
	}

	date, err := time.Parse(DateLayout, fields[1])
	if err != nil {
		return CommitRecord{}, fmt.Errorf("%w: bad date %q: %v", ErrMalformedLogEntry, fields[1], err)
	}

	return CommitRecord{
		Hash:    hash,
		Date:    date,
		Author:  fields[2],
		Subject: fields[3],
	}, nil
}

// splitLines splits command output into non-empty lines.
func splitLines(out []byte) []string {
	raw := strings.Split(string(out), "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		l = strings.TrimRight(l, "\r")
		if l == "" {
			continue
		}
		lines = append(lines, l)
	}
	return lines
}
