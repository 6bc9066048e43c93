package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme colors (Flexoki Dark)
var (
	ColorBorder    = lipgloss.Color("#282726")
	ColorTextDim   = lipgloss.Color("#575653")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorGreen     = lipgloss.Color("#879A39")
	ColorOrange    = lipgloss.Color("#DA702C")
	ColorRed       = lipgloss.Color("#D14D41")
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	valueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	goodStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	warnStyle = lipgloss.NewStyle().
			Foreground(ColorOrange)

	alertStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorRed)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)
)

// Table represents a bordered text table for CLI output.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Widths  []int // optional column widths, auto-calculated if nil
	Left    []int // columns aligned left; column 0 is always left
}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	width := 55
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(width).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

// RenderTable renders a bordered table with headers and rows. A row holding
// the single cell "---" renders as a separator.
func RenderTable(t Table) string {
	if len(t.Rows) == 0 && len(t.Headers) == 0 {
		return ""
	}

	numCols := len(t.Headers)
	if numCols == 0 && len(t.Rows) > 0 {
		numCols = len(t.Rows[0])
	}

	widths := make([]int, numCols)
	if t.Widths != nil {
		copy(widths, t.Widths)
	} else {
		for i, h := range t.Headers {
			widths[i] = max(widths[i], lipgloss.Width(h))
		}
		for _, row := range t.Rows {
			for i, cell := range row {
				if i < numCols {
					widths[i] = max(widths[i], lipgloss.Width(cell))
				}
			}
		}
	}

	left := make(map[int]bool, len(t.Left)+1)
	left[0] = true
	for _, c := range t.Left {
		left[c] = true
	}

	var b strings.Builder

	if t.Title != "" {
		b.WriteString("  ")
		b.WriteString(headerStyle.Render(t.Title))
		b.WriteString("\n")
	}

	writeRule(&b, widths, "╭", "┬", "╮")

	if len(t.Headers) > 0 {
		b.WriteString(dimStyle.Render("│"))
		for i, h := range t.Headers {
			b.WriteString(headerStyle.Render(" " + pad(h, widths[i], true) + " "))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")
		writeRule(&b, widths, "├", "┼", "┤")
	}

	for _, row := range t.Rows {
		if len(row) == 1 && row[0] == "---" {
			writeRule(&b, widths, "├", "┼", "┤")
			continue
		}

		b.WriteString(dimStyle.Render("│"))
		for i := 0; i < numCols; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			b.WriteString(valueStyle.Render(" " + pad(cell, widths[i], left[i]) + " "))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")
	}

	writeRule(&b, widths, "╰", "┴", "╯")
	return b.String()
}

func writeRule(b *strings.Builder, widths []int, l, mid, r string) {
	b.WriteString(dimStyle.Render(l))
	for i, w := range widths {
		b.WriteString(dimStyle.Render(strings.Repeat("─", w+2)))
		if i < len(widths)-1 {
			b.WriteString(dimStyle.Render(mid))
		}
	}
	b.WriteString(dimStyle.Render(r))
	b.WriteString("\n")
}

func pad(s string, w int, leftAlign bool) string {
	gap := w - lipgloss.Width(s)
	if gap <= 0 {
		return s
	}
	if leftAlign {
		return s + strings.Repeat(" ", gap)
	}
	return strings.Repeat(" ", gap) + s
}

// RenderKV renders label/value pairs, one per line, labels aligned.
func RenderKV(pairs [][2]string) string {
	w := 0
	for _, p := range pairs {
		w = max(w, lipgloss.Width(p[0]))
	}
	var b strings.Builder
	for _, p := range pairs {
		fmt.Fprintf(&b, "  %s  %s\n", mutedStyle.Render(pad(p[0], w, true)), valueStyle.Render(p[1]))
	}
	return b.String()
}

// Good, Warn and Alert color a message by urgency.
func Good(s string) string  { return goodStyle.Render(s) }
func Warn(s string) string  { return warnStyle.Render(s) }
func Alert(s string) string { return alertStyle.Render(s) }
func Muted(s string) string { return mutedStyle.Render(s) }

// RenderSparkline generates a unicode block sparkline scaled between the
// smallest and largest value, so negative balances render too.
func RenderSparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}

	var b strings.Builder
	for _, v := range values {
		idx := int((v - lo) / span * float64(len(blocks)-1))
		idx = max(0, min(idx, len(blocks)-1))
		b.WriteRune(blocks[idx])
	}

	return b.String()
}
