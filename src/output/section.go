package output

import (
	"fmt"
	"io"
	"strings"
	"time"
)

const (
	frameWidth  = 64
	frameIndent = "  "

	ansiReset  = "\033[0m"
	ansiHeader = "\033[1;34m"
	ansiGreen  = "\033[32m"
	ansiRed    = "\033[31m"
	ansiYellow = "\033[33m"
	ansiGray   = "\033[90m"
)

// Section groups related output lines under a framed heading.
type Section struct {
	w     io.Writer
	color bool
}

// NewSection opens a section. A non-zero elapsed shows next to the name.
func NewSection(w io.Writer, name string, elapsed time.Duration, color bool) *Section {
	s := &Section{w: w, color: color}

	title := name
	if elapsed > 0 {
		title = fmt.Sprintf("%s (%s)", name, formatElapsed(elapsed))
	}
	head := fmt.Sprintf("┌─ %s ", title)
	if pad := frameWidth - len([]rune(head)); pad > 0 {
		head += strings.Repeat("─", pad)
	}

	if color {
		fmt.Fprintf(w, "\n%s%s%s%s\n", frameIndent, ansiHeader, head, ansiReset)
	} else {
		fmt.Fprintf(w, "\n%s%s\n", frameIndent, head)
	}
	return s
}

// Row writes one line inside the frame.
func (s *Section) Row(format string, args ...any) {
	fmt.Fprintf(s.w, "%s│ %s\n", frameIndent, fmt.Sprintf(format, args...))
}

// Separator divides groups of rows.
func (s *Section) Separator() {
	fmt.Fprintf(s.w, "%s├%s\n", frameIndent, strings.Repeat("─", frameWidth-1))
}

// Close ends the frame.
func (s *Section) Close() {
	fmt.Fprintf(s.w, "%s└%s\n", frameIndent, strings.Repeat("─", frameWidth-1))
}

// StatusIcon maps a status keyword to its glyph: ✓ success, ✗ failed,
// ⊘ anything else (skipped, best-effort).
func StatusIcon(status string, color bool) string {
	var icon, tint string
	switch status {
	case "success":
		icon, tint = "✓", ansiGreen
	case "failed":
		icon, tint = "✗", ansiRed
	default:
		icon, tint = "⊘", ansiYellow
	}
	if !color {
		return icon
	}
	return tint + icon + ansiReset
}

// Dimmed renders de-emphasized text when color is on.
func Dimmed(text string, color bool) string {
	if !color {
		return text
	}
	return ansiGray + text + ansiReset
}

func formatElapsed(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return "<1ms"
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	m := int(d.Minutes())
	return fmt.Sprintf("%dm%04.1fs", m, d.Seconds()-float64(m*60))
}
