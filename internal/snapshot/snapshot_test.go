package snapshot

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aictx/aictx/internal/config"
	"github.com/aictx/aictx/internal/testutil"
)

func defaultOptions() Options {
	return Options{
		OutPath:      ".ai/ai_context.md",
		Documents:    config.DefaultDocuments,
		MaxDiffLines: 300,
		PreviewLines: 25,
	}
}

func readReport(t *testing.T, summary *Summary) string {
	t.Helper()
	data, err := os.ReadFile(summary.OutPath)
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}
	return string(data)
}

func TestAssembleWritesReport(t *testing.T) {
	repo := testutil.NewTempGitRepo(t)
	defer repo.Cleanup()

	summary, err := Assemble(repo.Path, defaultOptions())
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	info, err := os.Stat(summary.OutPath)
	if err != nil {
		t.Fatalf("expected report file: %v", err)
	}
	if info.Size() == 0 {
		t.Error("expected a non-empty report")
	}

	report := readReport(t, summary)
	for _, section := range []string{
		"# AI Code Context",
		"## Workspace Status",
		"## Recent Commits (last 8)",
		"## Changed Files (deduplicated)",
		"## Unstaged Diff",
		"## Staged Diff",
		"## Key Document Snapshots",
		"## Task Notes (fill in manually)",
	} {
		if !strings.Contains(report, section) {
			t.Errorf("report missing section %q", section)
		}
	}

	// No remote configured: placeholder, not an error.
	if !strings.Contains(report, "- Remote: N/A") {
		t.Error("expected remote placeholder")
	}
	// All eight documents missing in a bare test repo.
	if summary.DocsMissing != len(config.DefaultDocuments) || summary.DocsResolved != 0 {
		t.Errorf("expected all documents missing, got resolved=%d missing=%d",
			summary.DocsResolved, summary.DocsMissing)
	}
	if !strings.Contains(report, "- (not found: searched contracts directory and repository root)") {
		t.Error("expected not-found markers for missing documents")
	}
}

func TestAssembleResolvesDocuments(t *testing.T) {
	repo := testutil.NewTempGitRepo(t)
	defer repo.Cleanup()

	contracts := t.TempDir()
	if err := os.WriteFile(filepath.Join(contracts, "4. API Contracts.md"), []byte("# api\nsecond\nthird\n"), 0644); err != nil {
		t.Fatalf("failed to write contract: %v", err)
	}
	repo.CreateFile("7. Development Log.md", "# log\n")
	repo.Commit("add dev log")

	opts := defaultOptions()
	opts.ContractsDir = contracts
	opts.PreviewLines = 2

	summary, err := Assemble(repo.Path, opts)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	if summary.DocsResolved != 2 {
		t.Errorf("expected 2 resolved documents, got %d", summary.DocsResolved)
	}

	report := readReport(t, summary)
	if !strings.Contains(report, "### 4. API Contracts.md") {
		t.Error("expected API contracts section")
	}
	if !strings.Contains(report, "- sha256: ") {
		t.Error("expected a sha256 line")
	}
	if !strings.Contains(report, "- Lines: 3") {
		t.Error("expected line count for the contracts document")
	}
	if !strings.Contains(report, "- Preview (first 2 lines):") {
		t.Error("expected preview header with configured line count")
	}
	if !strings.Contains(report, "# api\nsecond\n```") {
		t.Error("expected preview clipped to two lines")
	}
}

func TestAssembleOutsideRepoFails(t *testing.T) {
	dir := t.TempDir()

	if _, err := Assemble(dir, defaultOptions()); err == nil {
		t.Fatal("expected error outside a git repository")
	}
	// No partial output on a failed run.
	if _, err := os.Stat(filepath.Join(dir, ".ai")); !os.IsNotExist(err) {
		t.Error("expected no output directory after failed run")
	}
}

func TestAssembleMissingContractsDirFails(t *testing.T) {
	repo := testutil.NewTempGitRepo(t)
	defer repo.Cleanup()

	opts := defaultOptions()
	opts.ContractsDir = filepath.Join(repo.Path, "does-not-exist")

	if _, err := Assemble(repo.Path, opts); err == nil {
		t.Fatal("expected error for missing contracts directory")
	}
	// Validation happens before any filesystem mutation.
	if _, err := os.Stat(filepath.Join(repo.Path, ".ai")); !os.IsNotExist(err) {
		t.Error("expected no output directory after failed run")
	}
}

func TestAssembleEmptyRepo(t *testing.T) {
	repo := testutil.NewEmptyGitRepo(t)
	defer repo.Cleanup()

	summary, err := Assemble(repo.Path, defaultOptions())
	if err != nil {
		t.Fatalf("Assemble failed on empty repository: %v", err)
	}
	if summary.Head != "N/A" {
		t.Errorf("expected placeholder head, got %q", summary.Head)
	}

	report := readReport(t, summary)
	if !strings.Contains(report, "## Recent Commits (last 8)\n```text\n(empty)\n```") {
		t.Error("expected empty placeholder in recent commits section")
	}
}

func TestAssembleClipsDiff(t *testing.T) {
	repo := testutil.NewTempGitRepo(t)
	defer repo.Cleanup()

	var lines []string
	for i := 0; i < 120; i++ {
		lines = append(lines, fmt.Sprintf("line %d", i))
	}
	repo.CreateFile("app.txt", strings.Join(lines, "\n")+"\n")
	repo.Commit("add app.txt")
	for i := range lines {
		lines[i] += " changed"
	}
	repo.CreateFile("app.txt", strings.Join(lines, "\n")+"\n")

	opts := defaultOptions()
	opts.MaxDiffLines = 20

	summary, err := Assemble(repo.Path, opts)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	report := readReport(t, summary)
	if !strings.Contains(report, "## Unstaged Diff (max 20 lines)") {
		t.Error("expected clipped diff title")
	}
	if !strings.Contains(report, "... (truncated, ") {
		t.Error("expected truncation marker")
	}

	// Exactly 20 content lines plus the marker inside the diff block.
	start := strings.Index(report, "## Unstaged Diff (max 20 lines)")
	block := report[start:]
	block = block[strings.Index(block, "```diff\n")+len("```diff\n"):]
	block = block[:strings.Index(block, "\n```")]
	blockLines := strings.Split(block, "\n")
	if len(blockLines) != 21 {
		t.Errorf("expected 20 diff lines plus marker, got %d", len(blockLines))
	}
}

func TestAssembleEmptyDiffPlaceholders(t *testing.T) {
	repo := testutil.NewTempGitRepo(t)
	defer repo.Cleanup()

	summary, err := Assemble(repo.Path, defaultOptions())
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	report := readReport(t, summary)
	if !strings.Contains(report, "(no unstaged changes)") {
		t.Error("expected unstaged diff placeholder")
	}
	if !strings.Contains(report, "(no staged changes)") {
		t.Error("expected staged diff placeholder")
	}
}

func TestAssembleContractsRepoStatus(t *testing.T) {
	repo := testutil.NewTempGitRepo(t)
	defer repo.Cleanup()
	contracts := testutil.NewTempGitRepo(t)
	defer contracts.Cleanup()

	opts := defaultOptions()
	opts.ContractsDir = contracts.Path

	summary, err := Assemble(repo.Path, opts)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	report := readReport(t, summary)
	if !strings.Contains(report, "## Contracts Repository Status") {
		t.Error("expected contracts repository status section")
	}
	if !strings.Contains(report, "repo: ") {
		t.Error("expected contracts repo path line")
	}
}

func TestAssembleSkipsContractsStatusForPlainDir(t *testing.T) {
	repo := testutil.NewTempGitRepo(t)
	defer repo.Cleanup()

	opts := defaultOptions()
	opts.ContractsDir = t.TempDir()

	summary, err := Assemble(repo.Path, opts)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	if strings.Contains(readReport(t, summary), "## Contracts Repository Status") {
		t.Error("did not expect contracts status for a non-repo directory")
	}
}

// stripTimestamps drops the two generated-time header lines.
func stripTimestamps(report string) string {
	var kept []string
	for _, line := range strings.Split(report, "\n") {
		if strings.HasPrefix(line, "- Generated (UTC): ") || strings.HasPrefix(line, "- Local time: ") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

func TestAssembleIsIdempotent(t *testing.T) {
	repo := testutil.NewTempGitRepo(t)
	defer repo.Cleanup()
	repo.CreateFile("README.md", "# modified\n")

	first, err := Assemble(repo.Path, defaultOptions())
	if err != nil {
		t.Fatalf("first Assemble failed: %v", err)
	}
	firstReport := readReport(t, first)

	second, err := Assemble(repo.Path, defaultOptions())
	if err != nil {
		t.Fatalf("second Assemble failed: %v", err)
	}
	secondReport := readReport(t, second)

	if stripTimestamps(firstReport) != stripTimestamps(secondReport) {
		t.Error("expected identical reports for unchanged repository state")
	}
}

func TestAssembleOverwritesPriorReport(t *testing.T) {
	repo := testutil.NewTempGitRepo(t)
	defer repo.Cleanup()

	outFile := filepath.Join(repo.Path, ".ai", "ai_context.md")
	if err := os.MkdirAll(filepath.Dir(outFile), 0755); err != nil {
		t.Fatalf("failed to create .ai dir: %v", err)
	}
	if err := os.WriteFile(outFile, []byte("stale content marker\n"), 0644); err != nil {
		t.Fatalf("failed to seed stale report: %v", err)
	}

	summary, err := Assemble(repo.Path, defaultOptions())
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	if strings.Contains(readReport(t, summary), "stale content marker") {
		t.Error("expected prior report content to be fully replaced")
	}
}

func TestAssembleAbsoluteOutPath(t *testing.T) {
	repo := testutil.NewTempGitRepo(t)
	defer repo.Cleanup()

	out := filepath.Join(t.TempDir(), "nested", "ctx.md")
	opts := defaultOptions()
	opts.OutPath = out

	summary, err := Assemble(repo.Path, opts)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	if summary.OutPath != out {
		t.Errorf("expected out path %q, got %q", out, summary.OutPath)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("expected report at absolute path: %v", err)
	}
}

func TestClipLines(t *testing.T) {
	cases := []struct {
		name string
		text string
		max  int
		want string
	}{
		{"empty", "", 10, ""},
		{"under limit", "a\nb", 10, "a\nb"},
		{"at limit", "a\nb\nc", 3, "a\nb\nc"},
		{"one over", "a\nb\nc\nd", 3, "a\nb\nc\n... (truncated, 1 more lines)"},
		{"trailing newline", "a\nb\n", 10, "a\nb"},
	}
	for _, tc := range cases {
		if got := ClipLines(tc.text, tc.max); got != tc.want {
			t.Errorf("%s: ClipLines = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestClipLinesExactBudget(t *testing.T) {
	// A diff of max+1 lines must yield exactly max content lines.
	var lines []string
	for i := 0; i < 21; i++ {
		lines = append(lines, fmt.Sprintf("l%d", i))
	}
	clipped := ClipLines(strings.Join(lines, "\n"), 20)
	got := strings.Split(clipped, "\n")
	if len(got) != 21 {
		t.Fatalf("expected 20 content lines plus marker, got %d", len(got))
	}
	if got[20] != "... (truncated, 1 more lines)" {
		t.Errorf("unexpected marker line: %q", got[20])
	}
	if got[19] != "l19" {
		t.Errorf("expected last kept line l19, got %q", got[19])
	}
}
