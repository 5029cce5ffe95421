package sink

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
)

// DefaultScannerCommand is the scanner executable looked up on PATH.
const DefaultScannerCommand = "sonar-scanner"

// ScannerOptions configures the scanner subprocess.
type ScannerOptions struct {
	// Command is the scanner executable. Defaults to DefaultScannerCommand.
	Command string
	// Dir is the working directory, normally the repository root.
	Dir string
	// HostURL and Token are passed as SONAR_HOST_URL and SONAR_TOKEN so the
	// token never shows up in the process list.
	HostURL string
	Token   string
	// Properties are extra -D analysis properties.
	Properties map[string]string
	// Output receives the scanner's combined output as it runs. Optional.
	Output io.Writer
}

// Scanner runs sonar-scanner once per report.
type Scanner struct {
	opts ScannerOptions
}

// NewScanner creates a scanner sink.
func NewScanner(opts ScannerOptions) *Scanner {
	if opts.Command == "" {
		opts.Command = DefaultScannerCommand
	}
	return &Scanner{opts: opts}
}

// Args returns the scanner arguments for one report.
// Extra properties are sorted by key; they cannot override the per-commit ones.
func (s *Scanner) Args(projectKey string, meta CommitMetadata) []string {
	args := []string{
		"-Dsonar.projectKey=" + projectKey,
		"-Dsonar.projectDate=" + meta.Date,
		"-Dsonar.projectVersion=" + meta.Version,
		"-Dsonar.scm.revision=" + meta.Hash,
	}

	keys := make([]string, 0, len(s.opts.Properties))
	for k := range s.opts.Properties {
		switch k {
		case "sonar.projectKey", "sonar.projectDate", "sonar.projectVersion", "sonar.scm.revision":
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, fmt.Sprintf("-D%s=%s", k, s.opts.Properties[k]))
	}
	return args
}

// Env returns the environment for the scanner process.
func (s *Scanner) Env() []string {
	env := os.Environ()
	if s.opts.HostURL != "" {
		env = append(env, "SONAR_HOST_URL="+s.opts.HostURL)
	}
	if s.opts.Token != "" {
		env = append(env, "SONAR_TOKEN="+s.opts.Token)
	}
	return env
}

// Send runs the scanner and waits for it to exit.
func (s *Scanner) Send(ctx context.Context, projectKey string, meta CommitMetadata) error {
	cmd := exec.CommandContext(ctx, s.opts.Command, s.Args(projectKey, meta)...)
	cmd.Dir = s.opts.Dir
	cmd.Env = s.Env()

	var out bytes.Buffer
	if s.opts.Output != nil {
		cmd.Stdout = io.MultiWriter(&out, s.opts.Output)
	} else {
		cmd.Stdout = &out
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s failed for %s: %w: %s", s.opts.Command, shortHash(meta.Hash), err, lastLines(out.String(), 20))
	}
	return nil
}

// DryRun prints the scanner invocation instead of running it.
type DryRun struct {
	Scanner *Scanner
	Out     io.Writer
}

// Send writes the command line that Scanner would run.
func (d DryRun) Send(_ context.Context, projectKey string, meta CommitMetadata) error {
	_, err := fmt.Fprintf(d.Out, "%s %s %s\n", shortHash(meta.Hash), d.Scanner.opts.Command, strings.Join(d.Scanner.Args(projectKey, meta), " "))
	return err
}

func shortHash(hash string) string {
	if len(hash) > 7 {
		return hash[:7]
	}
	return hash
}

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}

// Compile-time interface conformance checks.
var (
	_ ReportSink = (*Scanner)(nil)
	_ ReportSink = DryRun{}
	_ ReportSink = Func(nil)
)
