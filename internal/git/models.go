package git

import (
	"strings"
	"time"
)

// FieldSeparator separates the fields of a single log line (ASCII unit separator).
const FieldSeparator = "\x1f"

// DateLayout is the layout of git's %ai placeholder.
const DateLayout = "2006-01-02 15:04:05 -0700"

// LogFormat is the pretty format used to list commits: hash, author date, author name, subject.
const LogFormat = "%H%x1f%ai%x1f%an%x1f%s"

// CommitRecord is a single commit as listed by the repository log.
// Identity is Hash; records are ordered only by their position in a CommitSequence.
type CommitRecord struct {
	Hash    string
	Date    time.Time
	Author  string
	Subject string
}

// ShortHash returns the abbreviated commit hash.
func (c CommitRecord) ShortHash() string {
	return shortHash(c.Hash)
}

// Timestamp returns the commit date in the log layout, keeping its original offset.
func (c CommitRecord) Timestamp() string {
	return c.Date.Format(DateLayout)
}

// CommitSequence is an ordered snapshot of commit records.
type CommitSequence []CommitRecord

// Hashes returns the hashes of the sequence in order.
func (s CommitSequence) Hashes() []string {
	hashes := make([]string, len(s))
	for i, c := range s {
		hashes[i] = c.Hash
	}
	return hashes
}

// FormatLogLine renders a record the way LogFormat lists it.
func FormatLogLine(c CommitRecord) string {
	return strings.Join([]string{c.Hash, c.Timestamp(), c.Author, c.Subject}, FieldSeparator)
}

// CommitInfo represents minimal information about a Git commit.
type CommitInfo struct {
	SHA     string
	When    time.Time
	Author  AuthorInfo
	Message string
}

// AuthorInfo represents commit author information.
type AuthorInfo struct {
	Name  string
	Email string
}

// ContributorKey returns a normalized identifier for grouping contributors.
func (a AuthorInfo) ContributorKey() string {
	return strings.ToLower(a.Email)
}

// FileChange represents a file change within a commit.
type FileChange struct {
	Path         string
	LinesAdded   int
	LinesDeleted int
	Binary       bool
}

// Churn returns total lines changed (added + deleted).
func (f FileChange) Churn() int {
	return f.LinesAdded + f.LinesDeleted
}

// CommitChangeSet bundles a commit with its file changes.
type CommitChangeSet struct {
	Commit  CommitInfo
	Changes []FileChange
}

// ChangeOptions configures ReadChanges.
type ChangeOptions struct {
	Branch string
	Since  *time.Time
	Until  *time.Time
}

func shortHash(hash string) string {
	if len(hash) > 7 {
		return hash[:7]
	}
	return hash
}
