package git

import (
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git executable not available")
	}
}

func TestCLIGateway_ListCommits(t *testing.T) {
	requireGit(t)
	f := newFixtureRepo(t)
	gw := NewCLIGateway(f.dir)
	ctx := context.Background()

	t.Run("reverse", func(t *testing.T) {
		seq, err := NewLogReader(gw).Read(ctx, "master", true, false)
		require.NoError(t, err)
		require.Len(t, seq, 5)
		assert.Equal(t, f.hash("c1"), seq[0].Hash)
		assert.Equal(t, f.hash("c3"), seq[4].Hash)
		assert.Equal(t, "2024-03-01 09:00:00 +0100", seq[0].Timestamp())
	})

	t.Run("newest first", func(t *testing.T) {
		seq, err := NewLogReader(gw).Read(ctx, "master", false, false)
		require.NoError(t, err)
		require.Len(t, seq, 5)
		assert.Equal(t, f.hash("c3"), seq[0].Hash)
		assert.Equal(t, "final", seq[0].Subject)
	})

	t.Run("merges only follows first parent", func(t *testing.T) {
		seq, err := NewLogReader(gw).Read(ctx, "master", true, true)
		require.NoError(t, err)
		assert.Equal(t, []string{f.hash("m1")}, seq.Hashes())
		assert.Equal(t, "Merge branch 'feature'", seq[0].Subject)
	})

	t.Run("unknown branch", func(t *testing.T) {
		_, err := gw.ListCommits(ctx, "does-not-exist", false, false)
		assert.Error(t, err)
	})
}

func TestCLIGateway_RejectsOptionLikeRefs(t *testing.T) {
	// Rejected before git runs, so no repository is needed.
	gw := NewCLIGateway(t.TempDir())
	ctx := context.Background()

	for _, ref := range []string{"--all", "--output=log.txt", "-p"} {
		t.Run(ref, func(t *testing.T) {
			_, err := gw.ListCommits(ctx, ref, true, false)
			assert.ErrorIs(t, err, ErrInvalidRef)

			_, err = gw.Checkout(ctx, ref)
			assert.ErrorIs(t, err, ErrInvalidRef)

			_, err = gw.ReadChanges(ctx, ChangeOptions{Branch: ref})
			assert.ErrorIs(t, err, ErrInvalidRef)
		})
	}
}

func TestCLIGateway_CheckoutAndCurrentHead(t *testing.T) {
	requireGit(t)
	f := newFixtureRepo(t)
	gw := NewCLIGateway(f.dir)
	ctx := context.Background()

	body, err := gw.Checkout(ctx, f.hash("c2"))
	require.NoError(t, err)
	assert.Equal(t, "extend app", body)

	head, err := gw.CurrentHead(ctx)
	require.NoError(t, err)
	assert.Equal(t, f.hash("c2"), head)

	_, err = gw.Checkout(ctx, "master")
	require.NoError(t, err)
	head, err = gw.CurrentHead(ctx)
	require.NoError(t, err)
	assert.Equal(t, f.hash("c3"), head)
}

func TestCLIGateway_ReadChanges(t *testing.T) {
	requireGit(t)
	f := newFixtureRepo(t)
	gw := NewCLIGateway(f.dir)

	sets, err := gw.ReadChanges(context.Background(), ChangeOptions{Branch: "master"})
	require.NoError(t, err)
	// The merge commit is excluded.
	require.Len(t, sets, 4)
	assert.Equal(t, f.hash("c3"), sets[0].Commit.SHA)
	assert.Equal(t, "test@example.com", sets[0].Commit.Author.Email)
	require.Len(t, sets[0].Changes, 1)
	assert.Equal(t, FileChange{Path: "src/app.txt", LinesAdded: 1}, sets[0].Changes[0])
}

func TestParseNumstatLog(t *testing.T) {
	out := []byte("\x1eabc\x1f2024-01-01 10:00:00 +0000\x1fAlice\x1falice@example.com\x1ffix bug\n" +
		"5\t3\tsrc/main.go\n" +
		"-\t-\tassets/logo.png\n" +
		"\n" +
		"\x1edef\x1f2024-01-02 11:00:00 +0200\x1fBob\x1fbob@example.com\x1fempty commit\n")

	sets, err := parseNumstatLog(out)
	require.NoError(t, err)
	require.Len(t, sets, 2)

	assert.Equal(t, "abc", sets[0].Commit.SHA)
	assert.Equal(t, "fix bug", sets[0].Commit.Message)
	assert.Equal(t, []FileChange{
		{Path: "src/main.go", LinesAdded: 5, LinesDeleted: 3},
		{Path: "assets/logo.png", Binary: true},
	}, sets[0].Changes)

	assert.Equal(t, "def", sets[1].Commit.SHA)
	assert.Empty(t, sets[1].Changes)
	_, offset := sets[1].Commit.When.Zone()
	assert.Equal(t, 2*3600, offset)
}

func TestParseNumstatLog_Malformed(t *testing.T) {
	tests := []struct {
		name string
		out  string
	}{
		{name: "short header", out: "\x1eabc\x1f2024-01-01 10:00:00 +0000\x1fAlice\n"},
		{name: "bad date", out: "\x1eabc\x1fyesterday\x1fAlice\x1fa@b\x1fsubj\n"},
		{name: "bad numstat", out: "\x1eabc\x1f2024-01-01 10:00:00 +0000\x1fAlice\x1fa@b\x1fsubj\nx\t1\tfile\n"},
		{name: "missing path", out: "\x1eabc\x1f2024-01-01 10:00:00 +0000\x1fAlice\x1fa@b\x1fsubj\n1\t1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseNumstatLog([]byte(tt.out))
			assert.Error(t, err)
		})
	}
}

func TestParseNumstatInt(t *testing.T) {
	n, binary, err := parseNumstatInt("12")
	require.NoError(t, err)
	assert.Equal(t, 12, n)
	assert.False(t, binary)

	n, binary, err = parseNumstatInt("-")
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.True(t, binary)

	_, _, err = parseNumstatInt("abc")
	assert.Error(t, err)
}
