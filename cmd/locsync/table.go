package main

import (
	"os"
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

func getTerminalWidth() int {
	// Try to get terminal width from stdout
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	return 80
}

// textColumnWidth splits what is left of the terminal after borders and the
// narrow columns between the free-text columns.
func textColumnWidth(termWidth, columns, textColumns int) int {
	narrow := (columns - textColumns) * 12
	width := (termWidth - columns*3 - narrow) / textColumns
	if width < 16 {
		return 16
	}
	return width
}

// wrapString wraps a string to fit within maxWidth, accounting for multi-byte characters
func wrapString(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return s
	}

	s = strings.TrimSpace(s)
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}

	var result strings.Builder
	var line strings.Builder
	width := 0

	for _, r := range s {
		if r == '\n' {
			result.WriteString(line.String())
			result.WriteByte('\n')
			line.Reset()
			width = 0
			continue
		}
		w := runewidth.RuneWidth(r)
		if width+w > maxWidth && width > 0 {
			result.WriteString(line.String())
			result.WriteByte('\n')
			line.Reset()
			width = 0
		}
		line.WriteRune(r)
		width += w
	}
	result.WriteString(line.String())

	return result.String()
}
