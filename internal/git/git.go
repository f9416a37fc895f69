// Package git provides git operations via exec for the aictx CLI.
package git

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"strconv"
	"strings"
)

// Runner executes a version-control command in a directory and captures
// its stdout. Implementations must not retry; a single failure surfaces
// as an error.
type Runner interface {
	Run(dir string, args ...string) (string, error)
}

// execRunner shells out to the git executable.
type execRunner struct{}

func (execRunner) Run(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		// Check if git is not found
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return "", errors.New("git not found: ensure git is installed and in PATH")
		}

		errMsg := strings.TrimSpace(stderr.String())
		if errMsg == "" {
			errMsg = err.Error()
		}
		return "", fmt.Errorf("git %s failed: %s", args[0], errMsg)
	}

	return stdout.String(), nil
}

// Client runs git commands against a fixed working-tree directory.
// The directory is passed to every invocation; the process working
// directory is never changed.
type Client struct {
	runner Runner
	dir    string
}

// NewClient returns a Client bound to dir using the exec-based runner.
func NewClient(dir string) *Client {
	return &Client{runner: execRunner{}, dir: dir}
}

// NewClientWithRunner returns a Client bound to dir using a custom runner.
// Used by tests to substitute command execution.
func NewClientWithRunner(dir string, r Runner) *Client {
	return &Client{runner: r, dir: dir}
}

// Dir returns the directory the client is bound to.
func (c *Client) Dir() string {
	return c.dir
}

// Output runs a git command and returns its trimmed stdout.
func (c *Client) Output(args ...string) (string, error) {
	out, err := c.runner.Run(c.dir, args...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// OutputOr runs a git command and returns its trimmed stdout, or def
// when the command fails. Used for the failure-tolerant report sections.
func (c *Client) OutputOr(def string, args ...string) string {
	out, err := c.Output(args...)
	if err != nil || out == "" {
		return def
	}
	return out
}

// Toplevel returns the root of the working tree enclosing dir.
// Returns an error if dir is not inside a git working tree.
func Toplevel(dir string) (string, error) {
	out, err := execRunner{}.Run(dir, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("not a git repository: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// IsRepo checks if the client's directory is inside a git working tree.
func (c *Client) IsRepo() bool {
	_, err := c.Output("rev-parse", "--is-inside-work-tree")
	return err == nil
}

// Branch returns the current branch name, or def if it cannot be read.
// Detached HEAD resolves to the literal "HEAD"; an unborn repository
// still reports its initial branch.
func (c *Client) Branch(def string) string {
	return c.OutputOr(def, "rev-parse", "--abbrev-ref", "HEAD")
}

// ShortHead returns the abbreviated HEAD commit id, or def when the
// repository has no commits.
func (c *Client) ShortHead(def string) string {
	return c.OutputOr(def, "rev-parse", "--short", "HEAD")
}

// RemoteURL returns the URL of the named remote, or def when the remote
// is not configured. A missing remote is not an error.
func (c *Client) RemoteURL(remote, def string) string {
	return c.OutputOr(def, "remote", "get-url", remote)
}

// StatusShort returns the short-form status including branch tracking info.
func (c *Client) StatusShort() string {
	return c.OutputOr("", "status", "--short", "--branch")
}

// RecentCommits returns the n most recent commits, one decorated line each.
// Empty on repositories without commits.
func (c *Client) RecentCommits(n int) string {
	return c.OutputOr("", "log", "--oneline", "--decorate", "-n", strconv.Itoa(n))
}

// ChangedFiles returns the deduplicated, sorted union of files differing
// from the index, files staged in the index, and untracked files not
// excluded by ignore rules.
func (c *Client) ChangedFiles() []string {
	seen := make(map[string]struct{})
	lists := [][]string{
		{"diff", "--name-only"},
		{"diff", "--cached", "--name-only"},
		{"ls-files", "--others", "--exclude-standard"},
	}
	for _, args := range lists {
		out := c.OutputOr("", args...)
		for _, line := range strings.Split(out, "\n") {
			line = strings.TrimSpace(line)
			if line != "" {
				seen[line] = struct{}{}
			}
		}
	}

	files := make([]string, 0, len(seen))
	for f := range seen {
		files = append(files, f)
	}
	sort.Strings(files)
	return files
}

// UnstagedDiff returns the working-tree diff against the index, uncolored.
func (c *Client) UnstagedDiff() string {
	return c.OutputOr("", "diff", "--no-color")
}

// StagedDiff returns the index diff against HEAD, uncolored.
func (c *Client) StagedDiff() string {
	return c.OutputOr("", "diff", "--cached", "--no-color")
}
