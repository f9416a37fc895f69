// Package testutil provides git repository fixtures for tests.
package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// TempGitRepo creates a temporary git repository for testing
type TempGitRepo struct {
	Path string
	T    *testing.T
}

// NewTempGitRepo creates a new temporary git repository with one commit
func NewTempGitRepo(t *testing.T) *TempGitRepo {
	repo := NewEmptyGitRepo(t)

	repo.CreateFile("README.md", "# Test Repository\n")
	repo.Git("add", ".")
	repo.Git("commit", "-m", "Initial commit")

	return repo
}

// NewEmptyGitRepo creates a configured repository without any commits,
// for exercising unborn-HEAD behavior
func NewEmptyGitRepo(t *testing.T) *TempGitRepo {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "aictx-test-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}

	repo := &TempGitRepo{Path: tmpDir, T: t}

	repo.Git("init")
	repo.Git("config", "user.name", "Test User")
	repo.Git("config", "user.email", "test@example.com")

	return repo
}

// Cleanup removes the temporary git repository
func (r *TempGitRepo) Cleanup() {
	r.T.Helper()
	if err := os.RemoveAll(r.Path); err != nil {
		r.T.Errorf("failed to cleanup temp repo: %v", err)
	}
}

// Git runs a git command inside the repository and returns its stdout
func (r *TempGitRepo) Git(args ...string) string {
	r.T.Helper()

	cmd := exec.Command("git", args...)
	cmd.Dir = r.Path
	out, err := cmd.Output()
	if err != nil {
		r.T.Fatalf("git %v failed: %v", args, err)
	}
	return string(out)
}

// CreateFile creates a file in the repository
func (r *TempGitRepo) CreateFile(name, content string) {
	r.T.Helper()
	path := filepath.Join(r.Path, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		r.T.Fatalf("failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		r.T.Fatalf("failed to create file: %v", err)
	}
}

// Stage stages the given paths
func (r *TempGitRepo) Stage(paths ...string) {
	r.T.Helper()
	r.Git(append([]string{"add"}, paths...)...)
}

// Commit stages and commits all changes
func (r *TempGitRepo) Commit(message string) {
	r.T.Helper()
	r.Git("add", ".")
	r.Git("commit", "-m", message)
}

// Chdir changes into the repository for the duration of the test
func (r *TempGitRepo) Chdir() {
	r.T.Helper()
	oldWd, err := os.Getwd()
	if err != nil {
		r.T.Fatalf("failed to get working directory: %v", err)
	}
	if err := os.Chdir(r.Path); err != nil {
		r.T.Fatalf("failed to chdir: %v", err)
	}
	r.T.Cleanup(func() {
		if err := os.Chdir(oldWd); err != nil {
			r.T.Errorf("failed to restore working directory: %v", err)
		}
	})
}
