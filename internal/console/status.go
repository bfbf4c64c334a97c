// Package console prints sync progress lines with a coloured status column.
package console

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// StatusWidth is the width of the status column.
const StatusWidth = 10

var (
	cyan  = lipgloss.Color("6")
	green = lipgloss.Color("2")
	red   = lipgloss.Color("1")
	blue  = lipgloss.Color("4")
	gray  = lipgloss.Color("8")
	amber = lipgloss.Color("3")

	statusStyles = map[string]lipgloss.Style{
		"updated":    lipgloss.NewStyle().Foreground(cyan),
		"skipped":    lipgloss.NewStyle().Foreground(gray).Faint(true),
		"created":    lipgloss.NewStyle().Foreground(green),
		"error":      lipgloss.NewStyle().Foreground(red).Bold(true),
		"deleted":    lipgloss.NewStyle().Foreground(red),
		"archived":   lipgloss.NewStyle().Foreground(blue),
		"unarchived": lipgloss.NewStyle().Foreground(blue),
		"reordered":  lipgloss.NewStyle().Foreground(amber),
	}
)

// PrintStatus writes "<status> <message>" with the status padded to a fixed
// column. The status is coloured only when w is a terminal.
func PrintStatus(w io.Writer, status, message string) error {
	label := fmt.Sprintf("%-*s", StatusWidth, strings.ToLower(status))
	if IsTerminal(w) {
		if style, ok := statusStyles[strings.ToLower(status)]; ok {
			label = style.Render(label)
		}
	}
	_, err := fmt.Fprintf(w, "%s %s\n", label, message)
	return err
}

// IsTerminal reports whether w writes to a TTY.
func IsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
