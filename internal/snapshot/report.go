package snapshot

import (
	"fmt"
	"strings"

	"github.com/aictx/aictx/internal/docs"
	"github.com/aictx/aictx/internal/git"
)

// renderReport builds the full markdown report. Section order is fixed;
// every section is emitted on every run.
func renderReport(repo *git.Client, ctx Context, contractsDir string, documents []docs.Document, opts Options) string {
	var b strings.Builder

	contractsDisplay := contractsDir
	if contractsDisplay == "" {
		contractsDisplay = "(not set: repository root only)"
	}

	fmt.Fprintf(&b, "# AI Code Context\n\n")
	fmt.Fprintf(&b, "- Generated (UTC): %s\n", ctx.GeneratedUTC)
	fmt.Fprintf(&b, "- Local time: %s\n", ctx.GeneratedLocal)
	fmt.Fprintf(&b, "- Repository: %s\n", ctx.RepoName)
	fmt.Fprintf(&b, "- Branch: %s\n", ctx.Branch)
	fmt.Fprintf(&b, "- HEAD: %s\n", ctx.Head)
	fmt.Fprintf(&b, "- Remote: %s\n", ctx.RemoteURL)
	fmt.Fprintf(&b, "- Contracts dir: %s\n\n", contractsDisplay)

	addBlock(&b, "Workspace Status", "text", repo.StatusShort())
	addBlock(&b, fmt.Sprintf("Recent Commits (last %d)", recentCommits), "text", repo.RecentCommits(recentCommits))
	addBlock(&b, "Changed Files (deduplicated)", "text", changedFilesBlock(repo))

	writeDiffSection(&b, "Unstaged Diff", repo.UnstagedDiff(), "(no unstaged changes)", opts.MaxDiffLines)
	writeDiffSection(&b, "Staged Diff", repo.StagedDiff(), "(no staged changes)", opts.MaxDiffLines)

	writeDocuments(&b, documents, opts.PreviewLines)
	writeContractsStatus(&b, contractsDir)

	b.WriteString("## Task Notes (fill in manually)\n")
	b.WriteString("- Goal:\n")
	b.WriteString("- Files to add or modify:\n")
	b.WriteString("- Files that must not change:\n")
	b.WriteString("- Acceptance criteria:\n")

	return b.String()
}

// addBlock appends a titled fenced code block. Empty content renders an
// explicit placeholder so the section never disappears.
func addBlock(b *strings.Builder, title, lang, content string) {
	fmt.Fprintf(b, "## %s\n", title)
	fmt.Fprintf(b, "```%s\n", lang)
	content = strings.TrimRight(content, "\n")
	if strings.TrimSpace(content) == "" {
		content = "(empty)"
	}
	b.WriteString(content)
	b.WriteString("\n```\n\n")
}

// writeDiffSection emits one diff block, clipped to maxLines. The title
// carries the limit only when a diff is present.
func writeDiffSection(b *strings.Builder, title, diff, placeholder string, maxLines int) {
	if strings.TrimSpace(diff) == "" {
		addBlock(b, title, "diff", placeholder)
		return
	}
	addBlock(b, fmt.Sprintf("%s (max %d lines)", title, maxLines), "diff", ClipLines(diff, maxLines))
}

// writeDocuments emits one block per key document, resolved or not.
// A single missing or unreadable document never aborts the run.
func writeDocuments(b *strings.Builder, documents []docs.Document, previewLines int) {
	b.WriteString("## Key Document Snapshots\n")
	for _, doc := range documents {
		fmt.Fprintf(b, "\n### %s\n", doc.Name)
		if doc.Path == "" {
			b.WriteString("- (not found: searched contracts directory and repository root)\n")
			continue
		}
		fmt.Fprintf(b, "- Source: %s\n", doc.Path)
		if doc.Err != nil {
			fmt.Fprintf(b, "- (unreadable: %v)\n", doc.Err)
			continue
		}
		fmt.Fprintf(b, "- sha256: %s\n", doc.Hash)
		fmt.Fprintf(b, "- Lines: %d\n", doc.Lines)
		fmt.Fprintf(b, "- Preview (first %d lines):\n", previewLines)
		b.WriteString("```text\n")
		if strings.TrimSpace(doc.Preview) == "" {
			b.WriteString("(file is empty)")
		} else {
			b.WriteString(doc.Preview)
		}
		b.WriteString("\n```\n")
	}
	b.WriteString("\n")
}

// writeContractsStatus appends the contracts repository's own status when
// the contracts directory is itself a git working tree.
func writeContractsStatus(b *strings.Builder, contractsDir string) {
	if contractsDir == "" {
		return
	}
	contracts := git.NewClient(contractsDir)
	if !contracts.IsRepo() {
		return
	}

	status := contracts.StatusShort()
	if status == "" {
		status = "(status is empty)"
	}
	log := contracts.RecentCommits(contractsRecentCommits)
	if log == "" {
		log = "(log is empty)"
	}

	b.WriteString("## Contracts Repository Status\n")
	b.WriteString("```text\n")
	fmt.Fprintf(b, "repo: %s\n", contractsDir)
	b.WriteString(status)
	b.WriteString("\n")
	b.WriteString(log)
	b.WriteString("\n```\n\n")
}

// changedFilesBlock formats the changed-file union as a flat list.
func changedFilesBlock(repo *git.Client) string {
	files := repo.ChangedFiles()
	if len(files) == 0 {
		return "(none)"
	}
	return strings.Join(files, "\n")
}

// ClipLines truncates text to at most max lines of content, appending a
// marker with the number of omitted lines. Diff sections use this so the
// report never grows unbounded.
func ClipLines(text string, max int) string {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return ""
	}
	lines := strings.Split(text, "\n")
	if len(lines) <= max {
		return strings.Join(lines, "\n")
	}
	remain := len(lines) - max
	clipped := append(lines[:max:max], fmt.Sprintf("... (truncated, %d more lines)", remain))
	return strings.Join(clipped, "\n")
}
