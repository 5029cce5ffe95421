// Package linecount counts lines in the tree of a commit without checking it out.
package linecount

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
)

// Match reports whether a path is counted. A nil Match counts every path.
type Match func(path string) bool

// Snapshot is the line count of one tree.
type Snapshot struct {
	Files  int
	Lines  int
	ByPath map[string]int
}

type treeEntry struct {
	blob string
	path string
}

// Tree counts the lines of every text blob at ref whose path passes match.
// Binary blobs (containing NUL bytes) are skipped.
func Tree(ctx context.Context, repoPath, ref string, match Match) (Snapshot, error) {
	if ref == "" {
		ref = "HEAD"
	}

	out, err := exec.CommandContext(ctx, "git", "-C", repoPath, "ls-tree", "-r", "-z", ref).Output()
	if err != nil {
		return Snapshot{}, fmt.Errorf("git ls-tree %s: %w", ref, err)
	}
	entries := parseTree(out, match)
	if len(entries) == 0 {
		return Snapshot{ByPath: map[string]int{}}, nil
	}

	byPath, err := readBlobs(ctx, repoPath, entries)
	if err != nil {
		return Snapshot{}, err
	}
	return newSnapshot(byPath), nil
}

func newSnapshot(byPath map[string]int) Snapshot {
	s := Snapshot{Files: len(byPath), ByPath: byPath}
	for _, n := range byPath {
		s.Lines += n
	}
	return s
}

// parseTree reads `git ls-tree -r -z` output: NUL-terminated
// "<mode> <type> <hash>\t<path>" records with unquoted paths.
func parseTree(out []byte, match Match) []treeEntry {
	var entries []treeEntry
	for _, record := range bytes.Split(out, []byte{0}) {
		meta, path, ok := strings.Cut(string(record), "\t")
		if !ok {
			continue
		}
		fields := strings.Fields(meta)
		if len(fields) < 3 || fields[1] != "blob" {
			continue
		}
		if match != nil && !match(path) {
			continue
		}
		entries = append(entries, treeEntry{blob: fields[2], path: path})
	}
	return entries
}

// readBlobs streams the blobs through one `git cat-file --batch` process.
func readBlobs(ctx context.Context, repoPath string, entries []treeEntry) (map[string]int, error) {
	var input bytes.Buffer
	for _, e := range entries {
		input.WriteString(e.blob)
		input.WriteByte('\n')
	}

	cmd := exec.CommandContext(ctx, "git", "-C", repoPath, "cat-file", "--batch")
	cmd.Stdin = &input
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("git cat-file: %w", err)
	}
	return parseBatch(bytes.NewReader(out), entries)
}

// parseBatch reads `git cat-file --batch` output, one "<hash> <type> <size>"
// header followed by size bytes and a newline per requested entry.
func parseBatch(r io.Reader, entries []treeEntry) (map[string]int, error) {
	result := make(map[string]int, len(entries))
	reader := bufio.NewReader(r)
	for _, entry := range entries {
		header, err := reader.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("cat-file header for %s: %w", entry.path, err)
		}
		parts := strings.Fields(header)
		if len(parts) >= 2 && parts[1] == "missing" {
			continue
		}
		if len(parts) < 3 {
			return nil, fmt.Errorf("malformed cat-file header %q", strings.TrimSpace(header))
		}
		size, err := strconv.ParseInt(parts[2], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("malformed cat-file size %q: %w", parts[2], err)
		}

		content := make([]byte, size)
		if _, err := io.ReadFull(reader, content); err != nil {
			return nil, fmt.Errorf("cat-file content for %s: %w", entry.path, err)
		}
		_, _ = reader.ReadByte()

		if bytes.IndexByte(content, 0) >= 0 {
			continue
		}
		result[entry.path] = countLines(content)
	}
	return result, nil
}

// countLines counts lines; a missing trailing newline still ends a line.
func countLines(content []byte) int {
	if len(content) == 0 {
		return 0
	}
	count := bytes.Count(content, []byte{'\n'})
	if content[len(content)-1] != '\n' {
		count++
	}
	return count
}
