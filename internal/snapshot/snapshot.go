// Package snapshot gathers the current repository state and writes the
// markdown context report.
package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aictx/aictx/internal/docs"
	"github.com/aictx/aictx/internal/git"
)

const (
	recentCommits          = 8
	contractsRecentCommits = 3

	notAvailable = "N/A"
)

// Options is the immutable per-run configuration, built once at startup
// and threaded through the whole run.
type Options struct {
	// OutPath is the report destination; relative paths resolve against
	// the repository root.
	OutPath string
	// ContractsDir is the optional external documentation directory.
	ContractsDir string
	// Documents is the ordered list of logical document names to resolve.
	Documents []string
	// MaxDiffLines caps each diff section.
	MaxDiffLines int
	// PreviewLines caps each document preview.
	PreviewLines int
}

// Context is the repository state captured once per run, immutable
// afterward.
type Context struct {
	Root           string
	RepoName       string
	Branch         string
	Head           string
	RemoteURL      string
	GeneratedUTC   string
	GeneratedLocal string
}

// Summary reports the outcome of a successful run.
type Summary struct {
	OutPath      string `json:"out_path"`
	Repo         string `json:"repo"`
	Branch       string `json:"branch"`
	Head         string `json:"head"`
	DocsResolved int    `json:"documents_resolved"`
	DocsMissing  int    `json:"documents_missing"`
}

// Assemble produces the context report for the repository enclosing dir
// and writes it to the configured output path, fully replacing any prior
// content. Repository location and contracts-dir validation failures are
// fatal; everything else degrades to a placeholder in the report.
func Assemble(dir string, opts Options) (*Summary, error) {
	root, err := git.Toplevel(dir)
	if err != nil {
		return nil, fmt.Errorf("not inside a git repository: run from within your project")
	}

	contractsDir := ""
	if opts.ContractsDir != "" {
		contractsDir, err = resolveContractsDir(opts.ContractsDir)
		if err != nil {
			return nil, err
		}
	}

	outPath := opts.OutPath
	if !filepath.IsAbs(outPath) {
		outPath = filepath.Join(root, outPath)
	}

	// Environment checks passed; only now touch the filesystem.
	if err := os.MkdirAll(filepath.Dir(outPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	repo := git.NewClient(root)
	ctx := gatherContext(repo, root)

	var documents []docs.Document
	for _, name := range opts.Documents {
		documents = append(documents, docs.Load(name, contractsDir, root, opts.PreviewLines))
	}

	report := renderReport(repo, ctx, contractsDir, documents, opts)
	if err := os.WriteFile(outPath, []byte(report), 0644); err != nil {
		return nil, fmt.Errorf("failed to write report: %w", err)
	}

	summary := &Summary{
		OutPath: outPath,
		Repo:    ctx.RepoName,
		Branch:  ctx.Branch,
		Head:    ctx.Head,
	}
	for _, doc := range documents {
		if doc.Path != "" {
			summary.DocsResolved++
		} else {
			summary.DocsMissing++
		}
	}
	return summary, nil
}

// gatherContext captures repository identity once. Missing pieces
// (unborn HEAD, no remote) become placeholders, never errors.
func gatherContext(repo *git.Client, root string) Context {
	now := time.Now()
	return Context{
		Root:           root,
		RepoName:       filepath.Base(root),
		Branch:         repo.Branch(notAvailable),
		Head:           repo.ShortHead(notAvailable),
		RemoteURL:      repo.RemoteURL("origin", notAvailable),
		GeneratedUTC:   now.UTC().Format("2006-01-02T15:04:05Z"),
		GeneratedLocal: now.Format("2006-01-02 15:04:05 -0700"),
	}
}

// resolveContractsDir expands a leading ~ and verifies the directory
// exists. A configured but missing directory is fatal.
func resolveContractsDir(dir string) (string, error) {
	if dir == "~" || strings.HasPrefix(dir, "~"+string(filepath.Separator)) {
		home, err := os.UserHomeDir()
		if err == nil {
			dir = filepath.Join(home, dir[1:])
		}
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("contracts directory does not exist: %s", dir)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("contracts directory does not exist: %s", dir)
	}
	return abs, nil
}
