// Package output provides styled terminal output for the aictx CLI.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Styles holds lipgloss styles for human-readable output.
type Styles struct {
	Success lipgloss.Style
	Warning lipgloss.Style
	Bold    lipgloss.Style
	Dim     lipgloss.Style
}

// Printer writes human-readable run output. Styles collapse to plain
// text when the writer is not a terminal.
type Printer struct {
	w      io.Writer
	styles Styles
}

// NewPrinter creates a Printer for w, enabling colors only on a TTY.
func NewPrinter(w io.Writer) *Printer {
	styles := Styles{
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Bold:    lipgloss.NewStyle().Bold(true),
		Dim:     lipgloss.NewStyle().Faint(true),
	}
	if !IsTTY(w) {
		styles = Styles{}
	}
	return &Printer{w: w, styles: styles}
}

// Successf prints a success line.
func (p *Printer) Successf(format string, args ...any) {
	fmt.Fprintln(p.w, p.styles.Success.Render(fmt.Sprintf(format, args...)))
}

// Boldf prints an emphasized line.
func (p *Printer) Boldf(format string, args ...any) {
	fmt.Fprintln(p.w, p.styles.Bold.Render(fmt.Sprintf(format, args...)))
}

// Dimf prints a de-emphasized line.
func (p *Printer) Dimf(format string, args ...any) {
	fmt.Fprintln(p.w, p.styles.Dim.Render(fmt.Sprintf(format, args...)))
}

// IsTTY checks if a writer is a terminal.
func IsTTY(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	stat, err := file.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}
