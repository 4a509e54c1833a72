package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/geoprofile/pkg/pipeline"
	"github.com/matzehuels/geoprofile/pkg/section"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - water
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)
	styleWater    = lipgloss.NewStyle().Foreground(colorBlue)
	styleHeader   = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func printError(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconError.Render(iconError)+" "+fmt.Sprintf(format, args...))
}

func printWarning(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconWarning.Render(iconWarning)+" "+StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconInfo.Render(iconInfo)+" "+fmt.Sprintf(format, args...))
}

// printDetail prints an indented detail line.
func printDetail(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a file output line.
func printFile(w io.Writer, path string) {
	fmt.Fprintln(w, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

// printStats prints run statistics on a single line.
func printStats(w io.Writer, res *pipeline.Result) {
	parts := []string{
		fmt.Sprintf("%d columns", res.Stats.Selected),
		fmt.Sprintf("length %.2f", res.Section.Length),
		string(res.Section.Policy),
	}
	if dropped := res.Stats.Columns - res.Stats.Selected; dropped > 0 {
		parts = append(parts, fmt.Sprintf("%d outside buffer", dropped))
	}

	status, statusStyle := iconFresh, styleComputed
	if res.CacheInfo.SectionHit {
		status, statusStyle = iconCached, styleCached
	}

	rendered := make([]string, len(parts))
	for i, p := range parts {
		rendered[i] = StyleDim.Render(p)
	}
	fmt.Fprintln(w, "  "+strings.Join(rendered, StyleDim.Render(" · "))+StyleDim.Render(" · ")+statusStyle.Render(status))
}

// =============================================================================
// Section Table
// =============================================================================

// sectionRows formats the entries of s from offset, at most limit rows.
func sectionRows(s section.OrderedSection, extents []section.Extent, offset, limit int) [][]string {
	end := min(offset+limit, len(s.Entries))
	rows := make([][]string, 0, max(end-offset, 0))
	for i := offset; i < end; i++ {
		e := s.Entries[i]
		seg := "-"
		if e.Placement.SegmentIndex != section.NoSegment {
			seg = fmt.Sprintf("%d", e.Placement.SegmentIndex)
		}
		width := "-"
		if i < len(extents) {
			width = fmt.Sprintf("%.2f", extents[i].Width())
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			e.Column.Name,
			fmt.Sprintf("%.2f", e.Placement.ArcLength),
			fmt.Sprintf("%.2f, %.2f", e.Placement.Position.X, e.Placement.Position.Y),
			seg,
			fmt.Sprintf("%.2f", e.Column.Z),
			width,
		})
	}
	return rows
}

var sectionHeaders = []string{"#", "Column", "Arc", "Position", "Seg", "Z", "Width"}

// sectionTable renders the whole section as a static table.
func sectionTable(res *pipeline.Result) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(sectionHeaders...).
		Rows(sectionRows(res.Section, res.Extents, 0, len(res.Section.Entries))...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if col == 1 {
				return lipgloss.NewStyle().Foreground(colorWhite)
			}
			return lipgloss.NewStyle().Foreground(colorGray)
		}).
		Render()
}
