package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// commitFiles writes files into the repository work tree and commits them.
func commitFiles(t *testing.T, repo *gogit.Repository, dir string, files map[string]string, message string) plumbing.Hash {
	t.Helper()

	worktree, err := repo.Worktree()
	if err != nil {
		t.Fatalf("failed to get worktree: %v", err)
	}
	for name, content := range files {
		writeFile(t, dir, name, content)
		if _, err := worktree.Add(name); err != nil {
			t.Fatalf("failed to add %s: %v", name, err)
		}
	}

	hash, err := worktree.Commit(message, &gogit.CommitOptions{
		Author: &object.Signature{
			Name:  "Test User",
			Email: "test@example.com",
			When:  time.Now(),
		},
	})
	if err != nil {
		t.Fatalf("failed to commit: %v", err)
	}
	return hash
}

func createRuleRepo(t *testing.T) (string, *gogit.Repository, plumbing.Hash) {
	t.Helper()
	dir := t.TempDir()
	repo, err := gogit.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("failed to init repo: %v", err)
	}
	hash := commitFiles(t, repo, dir, map[string]string{
		"rules/10-liability.yaml": liabilityPack,
		"rules/20-data.yaml":      dataPack,
		"docs/notes.md":           "not a pack",
	}, "add rule packs")
	return dir, repo, hash
}

func TestNewGitSource(t *testing.T) {
	if _, err := NewGitSource(GitConfig{}, nil, nil); err == nil {
		t.Error("NewGitSource(empty repository) error = nil")
	}
	src, err := NewGitSource(GitConfig{Repository: "."}, nil, nil)
	if err != nil {
		t.Fatalf("NewGitSource() error = %v", err)
	}
	if src.config.Ref != "HEAD" {
		t.Errorf("Ref = %q, want HEAD", src.config.Ref)
	}
}

func TestGitSource_LoadDirectory(t *testing.T) {
	dir, _, hash := createRuleRepo(t)

	src, err := NewGitSource(GitConfig{Repository: dir, Path: "rules"}, nil, nil)
	if err != nil {
		t.Fatalf("NewGitSource() error = %v", err)
	}
	pack, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := ruleIDs(pack.Rules); len(got) != 3 || got[0] != "rule-1" || got[2] != "rule-10" {
		t.Errorf("rules = %v", got)
	}
	if pack.Version != hash.String()[:12] {
		t.Errorf("Version = %q, want %q", pack.Version, hash.String()[:12])
	}
}

func TestGitSource_IgnoresWorkingTree(t *testing.T) {
	dir, _, _ := createRuleRepo(t)

	// Uncommitted edit: must not be visible.
	writeFile(t, dir, "rules/10-liability.yaml", "name: [broken")

	src, _ := NewGitSource(GitConfig{Repository: dir, Path: "rules/10-liability.yaml"}, nil, nil)
	pack, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(pack.Rules) != 1 || pack.Rules[0].ID != "rule-1" {
		t.Errorf("rules = %v", ruleIDs(pack.Rules))
	}
}

func TestGitSource_Ref(t *testing.T) {
	dir, repo, first := createRuleRepo(t)
	commitFiles(t, repo, dir, map[string]string{"rules/20-data.yaml": "name: uk-data\nrules: []\n"}, "drop data rules")

	head, _ := NewGitSource(GitConfig{Repository: dir, Path: "rules"}, nil, nil)
	pack, err := head.Load(context.Background())
	if err != nil {
		t.Fatalf("Load(HEAD) error = %v", err)
	}
	if len(pack.Rules) != 1 {
		t.Errorf("HEAD rules = %v, want only rule-1", ruleIDs(pack.Rules))
	}

	pinned, _ := NewGitSource(GitConfig{Repository: dir, Path: "rules", Ref: first.String()}, nil, nil)
	pack, err = pinned.Load(context.Background())
	if err != nil {
		t.Fatalf("Load(first) error = %v", err)
	}
	if len(pack.Rules) != 3 {
		t.Errorf("pinned rules = %v, want 3 rules", ruleIDs(pack.Rules))
	}
}

func TestGitSource_Errors(t *testing.T) {
	dir, _, _ := createRuleRepo(t)
	notRepo := t.TempDir()
	if err := os.WriteFile(filepath.Join(notRepo, "x.yaml"), []byte(liabilityPack), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		cfg  GitConfig
	}{
		{"not a repository", GitConfig{Repository: notRepo}},
		{"unknown ref", GitConfig{Repository: dir, Ref: "no-such-branch"}},
		{"missing path", GitConfig{Repository: dir, Path: "policies"}},
		{"no packs", GitConfig{Repository: dir, Path: "docs"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := NewGitSource(tt.cfg, nil, nil)
			if err != nil {
				t.Fatalf("NewGitSource() error = %v", err)
			}
			_, err = src.Load(context.Background())
			var loadErr *LoadError
			if !errors.As(err, &loadErr) {
				t.Errorf("Load() error = %v, want *LoadError", err)
			}
		})
	}
}
