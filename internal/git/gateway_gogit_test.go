package git

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoGitGateway_ListCommits(t *testing.T) {
	f := newFixtureRepo(t)
	gw, err := OpenGoGitGateway(f.dir)
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("newest first", func(t *testing.T) {
		seq, err := NewLogReader(gw).Read(ctx, "master", false, false)
		require.NoError(t, err)
		assert.Equal(t, []string{f.hash("c3"), f.hash("m1"), f.hash("c2"), f.hash("f1"), f.hash("c1")}, seq.Hashes())
	})

	t.Run("reverse", func(t *testing.T) {
		seq, err := NewLogReader(gw).Read(ctx, "master", true, false)
		require.NoError(t, err)
		assert.Equal(t, []string{f.hash("c1"), f.hash("f1"), f.hash("c2"), f.hash("m1"), f.hash("c3")}, seq.Hashes())
		assert.Equal(t, "initial", seq[0].Subject)
		assert.Equal(t, "Test", seq[0].Author)
		_, offset := seq[0].Date.Zone()
		assert.Equal(t, 3600, offset)
	})

	t.Run("merges only", func(t *testing.T) {
		seq, err := NewLogReader(gw).Read(ctx, "master", true, true)
		require.NoError(t, err)
		assert.Equal(t, []string{f.hash("m1")}, seq.Hashes())
	})

	t.Run("feature branch", func(t *testing.T) {
		seq, err := NewLogReader(gw).Read(ctx, "feature", false, false)
		require.NoError(t, err)
		assert.Equal(t, []string{f.hash("f1"), f.hash("c1")}, seq.Hashes())
	})

	t.Run("unknown branch", func(t *testing.T) {
		_, err := gw.ListCommits(ctx, "does-not-exist", false, false)
		assert.Error(t, err)
	})
}

func TestGoGitGateway_CheckoutAndRestore(t *testing.T) {
	f := newFixtureRepo(t)
	gw, err := OpenGoGitGateway(f.dir)
	require.NoError(t, err)
	ctx := context.Background()

	body, err := gw.Checkout(ctx, f.hash("c1"))
	require.NoError(t, err)
	assert.Equal(t, "initial", body)

	head, err := gw.CurrentHead(ctx)
	require.NoError(t, err)
	assert.Equal(t, f.hash("c1"), head)

	content, err := os.ReadFile(filepath.Join(f.dir, "src", "app.txt"))
	require.NoError(t, err)
	assert.Equal(t, "one\n", string(content))

	_, err = gw.Checkout(ctx, "master")
	require.NoError(t, err)
	head, err = gw.CurrentHead(ctx)
	require.NoError(t, err)
	assert.Equal(t, f.hash("c3"), head)

	ref, err := CurrentRef(f.dir)
	require.NoError(t, err)
	assert.Equal(t, "master", ref)
}

func TestGoGitGateway_CheckoutUnknownRef(t *testing.T) {
	f := newFixtureRepo(t)
	gw, err := OpenGoGitGateway(f.dir)
	require.NoError(t, err)

	_, err = gw.Checkout(context.Background(), "0000000000000000000000000000000000000bad")
	assert.Error(t, err)
}

func TestOpenGoGitGateway_NotARepository(t *testing.T) {
	_, err := OpenGoGitGateway(t.TempDir())
	assert.Error(t, err)
}
