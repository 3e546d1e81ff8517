package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/lodestone/pkg/integrations/mojang"
)

var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// =============================================================================
// VersionPickerModel - Interactive Minecraft version selection
// =============================================================================

// VersionPickerModel is the bubbletea model behind `resolve --pick`.
// Snapshots are hidden until toggled with "s".
type VersionPickerModel struct {
	All       []mojang.ManifestEntry
	Snapshots bool
	Cursor    int
	Offset    int
	Height    int
	Selected  *mojang.ManifestEntry
}

// NewVersionPickerModel creates a picker over the manifest's versions,
// newest first as published.
func NewVersionPickerModel(versions []mojang.ManifestEntry) VersionPickerModel {
	return VersionPickerModel{All: versions, Height: 15}
}

// visible returns the entries the current filter shows.
func (m VersionPickerModel) visible() []mojang.ManifestEntry {
	if m.Snapshots {
		return m.All
	}
	out := make([]mojang.ManifestEntry, 0, len(m.All))
	for _, v := range m.All {
		if v.Type == "release" {
			out = append(out, v)
		}
	}
	return out
}

func (m VersionPickerModel) Init() tea.Cmd {
	return nil
}

func (m VersionPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	list := m.visible()
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(list)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "s":
			m.Snapshots = !m.Snapshots
			m.Cursor, m.Offset = 0, 0
		case "enter":
			if len(list) == 0 {
				return m, nil
			}
			v := list[m.Cursor]
			m.Selected = &v
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-7, 5)
	}
	return m, nil
}

func (m VersionPickerModel) View() string {
	list := m.visible()
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Minecraft Version"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  s snapshots  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(list))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		v := list[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows = append(rows, []string{cursor, v.ID, v.Type, formatReleaseTime(v.ReleaseTime)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Version", "Type", "Released").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			idx := m.Offset + row
			switch {
			case idx == m.Cursor:
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			case idx < len(list) && list[idx].Type != "release":
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", min(m.Cursor+1, len(list)), len(list))))
	return b.String()
}

// pickVersion runs the picker and returns the chosen version id, or "" if
// the user quit.
func pickVersion(versions []mojang.ManifestEntry) (string, error) {
	final, err := tea.NewProgram(NewVersionPickerModel(versions)).Run()
	if err != nil {
		return "", err
	}
	if m, ok := final.(VersionPickerModel); ok && m.Selected != nil {
		return m.Selected.ID, nil
	}
	return "", nil
}

func formatReleaseTime(s string) string {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return s
	}
	return t.Format("Jan 2, 2006")
}
