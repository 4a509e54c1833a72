package cli

import (
	"fmt"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/geoprofile/pkg/geom"
	"github.com/matzehuels/geoprofile/pkg/pipeline"
	"github.com/matzehuels/geoprofile/pkg/section"
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	detailKeyStyle    = lipgloss.NewStyle().Foreground(colorGray).Width(12)
)

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var noCache bool
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "inspect [input.json]",
		Short: "Browse an assembled section interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			setCLIDefaults(cmd, &opts, c.Config)
			opts.Formats = []string{pipeline.FormatJSON}
			res, err := c.execute(cmd, args[0], opts, noCache)
			if err != nil {
				return err
			}
			p := tea.NewProgram(newSectionModel(res),
				tea.WithContext(cmd.Context()),
				tea.WithOutput(c.Out),
				tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
	}

	addSectionFlags(cmd, &opts)
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// SectionModel is the bubbletea model for browsing a section.
type SectionModel struct {
	Result *pipeline.Result
	Cursor int
	Offset int
	Height int
	// Detail shows the selected column's full record below the table.
	Detail bool
}

func newSectionModel(res *pipeline.Result) SectionModel {
	return SectionModel{Result: res, Height: 15, Detail: true}
}

func (m SectionModel) Init() tea.Cmd {
	return nil
}

func (m SectionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	n := len(m.Result.Section.Entries)
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
			}
		case "down", "j":
			if m.Cursor < n-1 {
				m.Cursor++
			}
		case "home", "g":
			m.Cursor = 0
		case "end", "G":
			m.Cursor = max(n-1, 0)
		case "enter", " ":
			m.Detail = !m.Detail
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-14, 5)
	}

	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
	return m, nil
}

func (m SectionModel) View() string {
	var b strings.Builder
	s := m.Result.Section

	title := fmt.Sprintf("Section · %s · length %.2f", s.Policy, s.Length)
	if s.Reproject {
		title += " · reprojected"
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ details  q quit"))
	b.WriteString("\n\n")

	rows := sectionRows(s, m.Result.Extents, m.Offset, m.Height)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(sectionHeaders...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader
			}
			if m.Offset+row == m.Cursor {
				return listSelectedStyle
			}
			return lipgloss.NewStyle().Foreground(colorGray)
		})
	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", min(m.Cursor+1, len(s.Entries)), len(s.Entries))))

	if m.Detail && m.Cursor < len(s.Entries) {
		b.WriteString("\n\n")
		b.WriteString(m.detail(s.Entries[m.Cursor]))
	}
	return b.String()
}

func (m SectionModel) detail(e section.Entry) string {
	var b strings.Builder
	line := func(key, value string) {
		b.WriteString(detailKeyStyle.Render(key) + " " + StyleValue.Render(value) + "\n")
	}

	c, p := e.Column, e.Placement
	line("column", c.Name)
	line("location", fmt.Sprintf("%.3f, %.3f", c.X, c.Y))
	if p.SegmentIndex != section.NoSegment {
		line("placed", fmt.Sprintf("%.3f, %.3f on segment %d (moved %.3f)",
			p.Position.X, p.Position.Y, p.SegmentIndex, geom.Dist(c.Point(), p.Position)))
	}
	line("arc length", fmt.Sprintf("%.3f", p.ArcLength))
	line("surface", fmt.Sprintf("%.2f", c.Z))
	if c.GroundwaterLevel != nil {
		b.WriteString(detailKeyStyle.Render("groundwater") + " " + styleWater.Render(fmt.Sprintf("%.2f", *c.GroundwaterLevel)) + "\n")
	}

	keys := make([]string, 0, len(c.Payload))
	for k := range c.Payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		line(k, fmt.Sprint(c.Payload[k]))
	}
	return strings.TrimSuffix(b.String(), "\n")
}
