package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// changeFormat prefixes each commit header with 0x1e (record separator) so the
// --numstat lines that follow can be split into per-commit records.
const changeFormat = "%x1e%H%x1f%ai%x1f%an%x1f%ae%x1f%s"

// ErrInvalidRef is returned for a ref that git would parse as an option.
var ErrInvalidRef = errors.New("invalid ref")

func checkRef(ref string) error {
	if strings.HasPrefix(ref, "-") {
		return fmt.Errorf("%w: %q", ErrInvalidRef, ref)
	}
	return nil
}

// CLIGateway drives the git command-line client.
type CLIGateway struct {
	repoPath string
}

// NewCLIGateway creates a gateway for the repository at repoPath.
func NewCLIGateway(repoPath string) *CLIGateway {
	return &CLIGateway{repoPath: repoPath}
}

// RepoPath returns the repository path the gateway operates on.
func (g *CLIGateway) RepoPath() string {
	return g.repoPath
}

func (g *CLIGateway) run(ctx context.Context, args ...string) ([]byte, error) {
	full := append([]string{"-C", g.repoPath}, args...)
	cmd := exec.CommandContext(ctx, "git", full...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git %s failed: %w: %s", args[0], err, strings.TrimSpace(stderr.String()))
	}
	return out, nil
}

// ListCommits lists commits of branch in LogFormat.
func (g *CLIGateway) ListCommits(ctx context.Context, branch string, reverse, mergesOnly bool) ([]string, error) {
	args := []string{
		"log",
		"--no-color",
		"--pretty=format:" + LogFormat,
	}
	if reverse {
		args = append(args, "--reverse")
	}
	if mergesOnly {
		args = append(args, "--merges", "--first-parent")
	}
	if rev := strings.TrimSpace(branch); rev != "" {
		if err := checkRef(rev); err != nil {
			return nil, err
		}
		args = append(args, rev)
	}
	args = append(args, "--")

	out, err := g.run(ctx, args...)
	if err != nil {
		return nil, err
	}
	return splitLines(out), nil
}

// Checkout checks out ref (a hash detaches HEAD, a branch name switches to it)
// and returns the checked-out commit's message body.
func (g *CLIGateway) Checkout(ctx context.Context, ref string) (string, error) {
	if err := checkRef(ref); err != nil {
		return "", err
	}
	if _, err := g.run(ctx, "checkout", "--quiet", ref); err != nil {
		return "", err
	}
	body, err := g.run(ctx, "log", "-1", "--no-color", "--format=%B", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(body)), nil
}

// CurrentHead returns the hash of HEAD.
func (g *CLIGateway) CurrentHead(ctx context.Context) (string, error) {
	out, err := g.run(ctx, "rev-parse", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// ReadChanges reads per-commit line stats with git log --numstat.
// Merge commits are excluded; renames are reported as delete plus add.
func (g *CLIGateway) ReadChanges(ctx context.Context, opts ChangeOptions) ([]CommitChangeSet, error) {
	args := []string{
		"log",
		"--no-color",
		"--no-merges",
		"--no-renames",
		"--numstat",
		"--pretty=format:" + changeFormat,
	}
	if opts.Since != nil {
		args = append(args, fmt.Sprintf("--since=@%d", opts.Since.Unix()))
	}
	if opts.Until != nil {
		args = append(args, fmt.Sprintf("--until=@%d", opts.Until.Unix()))
	}
	if rev := strings.TrimSpace(opts.Branch); rev != "" && !strings.EqualFold(rev, "HEAD") {
		if err := checkRef(rev); err != nil {
			return nil, err
		}
		args = append(args, rev)
	}
	args = append(args, "--")

	out, err := g.run(ctx, args...)
	if err != nil {
		return nil, err
	}
	return parseNumstatLog(out)
}

func parseNumstatLog(out []byte) ([]CommitChangeSet, error) {
	records := bytes.Split(out, []byte{0x1e})
	results := make([]CommitChangeSet, 0, len(records))

	for _, rec := range records {
		if len(bytes.TrimSpace(rec)) == 0 {
			continue
		}

		header, body := splitHeaderBody(rec)
		fields := strings.Split(string(header), FieldSeparator)
		if len(fields) != 5 {
			return nil, fmt.Errorf("%w: unexpected numstat header %q", ErrMalformedLogEntry, string(header))
		}

		when, err := time.Parse(DateLayout, fields[1])
		if err != nil {
			return nil, fmt.Errorf("parse author date: %w", err)
		}

		changes, err := parseNumstatLines(body)
		if err != nil {
			return nil, err
		}

		results = append(results, CommitChangeSet{
			Commit: CommitInfo{
				SHA:     fields[0],
				When:    when,
				Author:  AuthorInfo{Name: fields[2], Email: fields[3]},
				Message: fields[4],
			},
			Changes: changes,
		})
	}

	return results, nil
}

func splitHeaderBody(rec []byte) (header []byte, body []byte) {
	// The pretty line is followed by '\n', then the numstat lines.
	if idx := bytes.IndexByte(rec, '\n'); idx != -1 {
		return bytes.TrimRight(rec[:idx], "\r"), rec[idx+1:]
	}
	return rec, nil
}

func parseNumstatLines(body []byte) ([]FileChange, error) {
	var changes []FileChange
	for _, line := range splitLines(body) {
		parts := strings.SplitN(line, "\t", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("unexpected git --numstat line %q", line)
		}

		added, binA, err := parseNumstatInt(parts[0])
		if err != nil {
			return nil, err
		}
		deleted, binD, err := parseNumstatInt(parts[1])
		if err != nil {
			return nil, err
		}

		changes = append(changes, FileChange{
			Path:         parts[2],
			LinesAdded:   added,
			LinesDeleted: deleted,
			Binary:       binA || binD,
		})
	}
	return changes, nil
}

// parseNumstatInt parses a numstat count; "-" marks a binary file.
func parseNumstatInt(field string) (int, bool, error) {
	if field == "-" {
		return 0, true, nil
	}
	n, err := strconv.Atoi(field)
	if err != nil {
		return 0, false, fmt.Errorf("parse numstat int %q: %w", field, err)
	}
	return n, false, nil
}
