package git

import "context"

// MockGateway is a test double for Gateway and ChangeReader.
// It serves predefined log lines and records every checkout, so cursor and
// dispatch logic can be tested without a real repository.
type MockGateway struct {
	Lines        []string
	ListErr      error
	Head         string
	HeadErr      error
	Bodies       map[string]string
	CheckoutErrs map[string]error
	ChangeSets   []CommitChangeSet

	// Recorded calls.
	Checkouts []string
	Listed    []ListCall
}

// ListCall records the arguments of one ListCommits call.
type ListCall struct {
	Branch     string
	Reverse    bool
	MergesOnly bool
}

// NewMockGateway creates a MockGateway that lists the given records.
func NewMockGateway(records ...CommitRecord) *MockGateway {
	lines := make([]string, len(records))
	for i, r := range records {
		lines[i] = FormatLogLine(r)
	}
	return &MockGateway{
		Lines:        lines,
		Bodies:       make(map[string]string),
		CheckoutErrs: make(map[string]error),
	}
}

// ListCommits returns the predefined lines or error.
func (m *MockGateway) ListCommits(_ context.Context, branch string, reverse, mergesOnly bool) ([]string, error) {
	m.Listed = append(m.Listed, ListCall{Branch: branch, Reverse: reverse, MergesOnly: mergesOnly})
	return m.Lines, m.ListErr
}

// Checkout records ref and moves Head to it unless an error is configured for ref.
func (m *MockGateway) Checkout(_ context.Context, ref string) (string, error) {
	m.Checkouts = append(m.Checkouts, ref)
	if err := m.CheckoutErrs[ref]; err != nil {
		return "", err
	}
	m.Head = ref
	return m.Bodies[ref], nil
}

// CurrentHead returns Head or HeadErr.
func (m *MockGateway) CurrentHead(_ context.Context) (string, error) {
	return m.Head, m.HeadErr
}

// ReadChanges returns the predefined change sets.
func (m *MockGateway) ReadChanges(_ context.Context, _ ChangeOptions) ([]CommitChangeSet, error) {
	return m.ChangeSets, m.ListErr
}

// Compile-time interface conformance check.
var (
	_ Gateway      = (*MockGateway)(nil)
	_ ChangeReader = (*MockGateway)(nil)
)
