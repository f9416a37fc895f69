// Package cmd implements the aictx command line interface.
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/alpkeskin/gotoon"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aictx/aictx/internal/config"
	"github.com/aictx/aictx/internal/output"
	"github.com/aictx/aictx/internal/snapshot"
)

var (
	cfgFile      string
	outPath      string
	contractsDir string
	summaryJSON  bool
	summaryToon  bool
)

var rootCmd = &cobra.Command{
	Use:   "aictx",
	Short: "Snapshot the current repository state into a markdown report for AI assistants",
	Long: `aictx captures the current state of a git repository into one markdown
report meant to be pasted into an AI assistant conversation:

  - workspace status and recent commits
  - changed files and clipped unstaged/staged diffs
  - the key project documents (resolved from the contracts directory,
    then the repository root), each with hash, line count, and preview
  - a fill-in task template

The report is fully regenerated on every run.`,
	SilenceErrors: true,
	RunE:          runGenerate,
}

// Execute runs the root command. Any error has already been printed by
// cobra together with usage where appropriate.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/aictx/config.toml)")

	rootCmd.Flags().StringVarP(&outPath, "out", "o", ".ai/ai_context.md", "output file path, relative paths resolve against the repository root")
	rootCmd.Flags().StringVarP(&contractsDir, "contracts-dir", "d", "", "contracts directory (default: $OBSIDIAN_CONTRACTS_DIR)")
	rootCmd.Flags().BoolVar(&summaryJSON, "json", false, "print the run summary as JSON")
	rootCmd.Flags().BoolVar(&summaryToon, "toon", false, "print the run summary in LLM-friendly toon format")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".config", "aictx"))
		viper.SetConfigType("toml")
		viper.SetConfigName("config")
	}

	// Set defaults
	viper.SetDefault("max_diff_lines", 300)
	viper.SetDefault("preview_lines", 25)
	viper.SetDefault("documents", config.DefaultDocuments)

	viper.BindEnv("max_diff_lines", "MAX_DIFF_LINES")
	viper.BindEnv("preview_lines", "PREVIEW_LINES")
	viper.BindEnv("contracts_dir", "OBSIDIAN_CONTRACTS_DIR")

	_ = viper.ReadInConfig()
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	// Flag errors keep the usage dump; runtime errors do not.
	if cmd != nil {
		cmd.SilenceUsage = true
	}

	dir := contractsDir
	if dir == "" {
		dir = config.ContractsDir()
	}

	opts := snapshot.Options{
		OutPath:      outPath,
		ContractsDir: dir,
		Documents:    config.Documents(),
		MaxDiffLines: config.MaxDiffLines(),
		PreviewLines: config.PreviewLines(),
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to determine working directory: %w", err)
	}

	summary, err := snapshot.Assemble(cwd, opts)
	if err != nil {
		return err
	}

	out := io.Writer(os.Stdout)
	if cmd != nil {
		out = cmd.OutOrStdout()
	}
	return printSummary(out, summary)
}

// printSummary renders the run summary human-styled, or as JSON/TOON for
// scripting and LLM consumption.
func printSummary(w io.Writer, summary *snapshot.Summary) error {
	if summaryJSON {
		data, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal summary: %w", err)
		}
		fmt.Fprintln(w, string(data))
		return nil
	}

	if summaryToon {
		encoded, err := gotoon.Encode(summary)
		if err != nil {
			return fmt.Errorf("failed to encode summary: %w", err)
		}
		fmt.Fprintln(w, encoded)
		return nil
	}

	printer := output.NewPrinter(w)
	printer.Successf("✓ Context written: %s", summary.OutPath)
	printer.Boldf("  %s @ %s, documents: %d resolved, %d missing",
		summary.Branch, summary.Head, summary.DocsResolved, summary.DocsMissing)
	printer.Dimf("  Next: paste the file into your AI conversation along with your task.")
	return nil
}
