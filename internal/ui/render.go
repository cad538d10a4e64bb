package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderStory styles Markdown headings and **bold** runs and wraps paragraphs to width.
// Anything else is shown as written.
func RenderStory(text string, width int) string {
	var b strings.Builder
	wrap := lipgloss.NewStyle()
	if width > 0 {
		wrap = wrap.Width(width)
	}

	for i, line := range strings.Split(strings.TrimSpace(text), "\n") {
		if i > 0 {
			b.WriteByte('\n')
		}
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") {
			heading := strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
			b.WriteString(styles.heading.Render(heading))
			continue
		}
		b.WriteString(wrap.Render(emphasize(line)))
	}
	return b.String()
}

// emphasize renders text between pairs of "**" in bold. An unpaired marker is kept as is.
func emphasize(line string) string {
	parts := strings.Split(line, "**")
	if len(parts) < 3 {
		return line
	}

	var b strings.Builder
	for i, part := range parts {
		switch {
		case i%2 == 0:
			b.WriteString(part)
		case i == len(parts)-1:
			b.WriteString("**" + part)
		default:
			b.WriteString(styles.bold.Render(part))
		}
	}
	return b.String()
}
