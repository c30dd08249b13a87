package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/gosuri/uitable"

	"github.com/julianstephens/daytrack/internal/stats"
)

var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	MutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	highStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	mediumStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	lowStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// Heatmap glyphs
const (
	GlyphFuture  = " "
	GlyphNone    = "□"
	GlyphPartial = "▣"
	GlyphFull    = "■"
)

// NewTable returns a table with the column spacing used by every listing.
func NewTable() *uitable.Table {
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 60
	tbl.Wrap = true
	return tbl
}

// Checkbox renders a completion flag.
func Checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

// BandStyle colors text by completion band.
func BandStyle(band string) lipgloss.Style {
	switch band {
	case stats.BandHigh:
		return highStyle
	case stats.BandMedium:
		return mediumStyle
	default:
		return lowStyle
	}
}

// Percent formats a ratio in [0, 1].
func Percent(ratio float64) string {
	return fmt.Sprintf("%.0f%%", ratio*100)
}

// ProgressBar draws ratio as a bar of width cells.
func ProgressBar(ratio float64, width int) string {
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	filled := int(ratio*float64(width) + 0.5)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// Glyph picks the heatmap symbol for a cell.
func Glyph(c *stats.Cell) string {
	switch {
	case c == nil || c.Future:
		return GlyphFuture
	case c.Score <= 0:
		return GlyphNone
	case c.Score >= 1:
		return GlyphFull
	default:
		return GlyphPartial
	}
}

// RenderHeatmap lays the heatmap out as seven weekday rows, one column per
// week.
func RenderHeatmap(h stats.Heatmap) string {
	weeks := h.Weeks()
	labels := []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

	var b strings.Builder
	for wd, label := range labels {
		b.WriteString(MutedStyle.Render(label))
		b.WriteString(" ")
		for _, week := range weeks {
			b.WriteString(Glyph(week[wd]))
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "%s %s none  %s partial  %s all\n",
		MutedStyle.Render("   "), GlyphNone, GlyphPartial, GlyphFull)
	return b.String()
}
