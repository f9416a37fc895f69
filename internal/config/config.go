// Package config exposes typed accessors over the viper configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// DefaultDocuments is the fixed, ordered list of key document names the
// snapshot looks for. Overridable through the "documents" config key.
var DefaultDocuments = []string{
	"0. Project Overview.md",
	"1. Requirements Notes.md",
	"2. Product Spec.md",
	"3. Development Conventions.md",
	"4. API Contracts.md",
	"5. Event Contracts.md",
	"6. Architecture Contracts.md",
	"7. Development Log.md",
}

// MaxDiffLines returns the maximum number of diff lines per section.
func MaxDiffLines() int {
	return positiveInt("max_diff_lines", 300)
}

// PreviewLines returns the number of preview lines per document.
func PreviewLines() int {
	return positiveInt("preview_lines", 25)
}

// ContractsDir returns the configured external documentation directory,
// empty when unset.
func ContractsDir() string {
	return strings.TrimSpace(viper.GetString("contracts_dir"))
}

// Documents returns the ordered list of key document names.
func Documents() []string {
	docs := viper.GetStringSlice("documents")
	if len(docs) == 0 {
		return DefaultDocuments
	}
	return docs
}

// positiveInt reads a positive integer setting, warning on stderr and
// falling back to def when the value is not a positive integer.
func positiveInt(key string, def int) int {
	raw := strings.TrimSpace(viper.GetString(key))
	if raw == "" {
		return def
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		fmt.Fprintf(os.Stderr, "warning: %s=%q is not a positive integer, using default %d\n",
			strings.ToUpper(key), raw, def)
		return def
	}
	return value
}
