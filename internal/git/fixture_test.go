package git

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// fixtureRepo is a small repository with one merge on master:
//
//	c1 -- c2 -- m1 -- c3   (master)
//	  \         /
//	   f1 -----            (feature)
type fixtureRepo struct {
	dir    string
	repo   *gogit.Repository
	hashes map[string]string
}

func newFixtureRepo(t *testing.T) *fixtureRepo {
	t.Helper()

	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("PlainInit: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("Worktree: %v", err)
	}

	f := &fixtureRepo{dir: dir, repo: repo, hashes: make(map[string]string)}
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.FixedZone("", 3600))

	write := func(rel, content string) {
		t.Helper()
		full := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("MkdirAll: %v", err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
		if _, err := wt.Add(rel); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	commit := func(name, msg string, offset time.Duration, parents ...plumbing.Hash) plumbing.Hash {
		t.Helper()
		sig := &object.Signature{Name: "Test", Email: "test@example.com", When: base.Add(offset)}
		h, err := wt.Commit(msg, &gogit.CommitOptions{Author: sig, Committer: sig, Parents: parents})
		if err != nil {
			t.Fatalf("Commit(%s): %v", name, err)
		}
		f.hashes[name] = h.String()
		return h
	}

	write("src/app.txt", "one\n")
	commit("c1", "initial", 0)

	if err := wt.Checkout(&gogit.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName("feature"),
		Create: true,
	}); err != nil {
		t.Fatalf("Checkout(feature): %v", err)
	}
	write("docs/feature.txt", "feature\n")
	f1 := commit("f1", "add feature", time.Hour)

	if err := wt.Checkout(&gogit.CheckoutOptions{Branch: plumbing.Master}); err != nil {
		t.Fatalf("Checkout(master): %v", err)
	}
	write("src/app.txt", "one\ntwo\n")
	c2 := commit("c2", "extend app", 2*time.Hour)

	write("docs/feature.txt", "feature\n")
	commit("m1", "Merge branch 'feature'", 3*time.Hour, c2, f1)

	write("src/app.txt", "one\ntwo\nthree\n")
	commit("c3", "final", 4*time.Hour)

	return f
}

func (f *fixtureRepo) hash(name string) string {
	return f.hashes[name]
}
