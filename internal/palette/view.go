package palette

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	activeTabStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62"))
	inactiveTabStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	selectedStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	normalStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	typeStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("110"))
	subtitleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	dimStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// chromeRows is the fixed vertical space around the list: query line, tab
// bar, and footer.
const chromeRows = 3

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.input.View())
	b.WriteRune('\n')
	b.WriteString(m.viewTabBar())
	b.WriteRune('\n')
	b.WriteString(m.vp.View())
	b.WriteRune('\n')
	b.WriteString(m.viewFooter())

	return b.String()
}

func (m Model) viewTabBar() string {
	parts := make([]string, 0, len(categories))
	for i, c := range categories {
		label := " " + c.Label + " "
		if i == m.activeCategory {
			parts = append(parts, activeTabStyle.Render(label))
		} else {
			parts = append(parts, inactiveTabStyle.Render(label))
		}
	}
	return strings.Join(parts, " ")
}

// listHeight is the number of rows available to the scrolling list.
func (m Model) listHeight() int {
	h := m.height - chromeRows
	if h < 1 {
		h = 20 // sensible default before the first WindowSizeMsg
	}
	return h
}

// refreshViewport re-renders the list content into the viewport.
func (m *Model) refreshViewport() {
	m.vp.Height = m.listHeight()
	m.vp.Width = m.width
	m.vp.SetContent(m.renderList())
}

// ensureSelectionVisible scrolls the viewport so the selected row shows.
func (m *Model) ensureSelectionVisible() {
	m.refreshViewport()
	if m.selection < m.vp.YOffset {
		m.vp.SetYOffset(m.selection)
	} else if m.selection >= m.vp.YOffset+m.vp.Height {
		m.vp.SetYOffset(m.selection - m.vp.Height + 1)
	}
}

// renderList renders the combined item list, or a status line when there is
// nothing to list.
func (m Model) renderList() string {
	items := m.items()

	if len(items) == 0 {
		switch m.state {
		case stateHint:
			return dimStyle.Render("Keep typing to search…")
		case stateSearching:
			return dimStyle.Render(m.spin.View() + " Searching…")
		case stateEmpty:
			return m.renderEmpty()
		case stateDefault:
			return dimStyle.Render("No recent searches")
		default:
			return ""
		}
	}

	var b strings.Builder
	for i, it := range items {
		b.WriteString(m.renderItem(it, i == m.selection))
		if i < len(items)-1 {
			b.WriteRune('\n')
		}
	}
	return b.String()
}

func (m Model) renderItem(it listItem, selected bool) string {
	width := m.width
	if width <= 0 {
		width = 80
	}

	var tag string
	switch it.kind {
	case itemRecent:
		tag = "recent"
	case itemSuggestion:
		tag = "suggest"
	default:
		tag = string(it.hitType)
	}

	title := Truncate(StripANSI(ValidateUTF8(it.title)), width-14)
	// Pad before styling so the escape codes don't skew the column.
	line := typeStyle.Render(fmt.Sprintf("%-9s", tag)) + " " + title
	if it.subtitle != "" {
		line += " " + subtitleStyle.Render(Truncate(StripANSI(it.subtitle), 40))
	}

	if selected {
		return selectedStyle.Render("> ") + line
	}
	return normalStyle.Render("  ") + line
}

// renderEmpty is the no-results state, with the broaden affordance when a
// category filter may have caused the emptiness.
func (m Model) renderEmpty() string {
	msg := "No results"
	if m.activeCategory != 0 {
		msg += " in " + categories[m.activeCategory].Label + " — ctrl+a to search all categories"
	}
	if m.searchErr != nil {
		msg += dimStyle.Render("  (backend unreachable, showing offline matches)")
	}
	return dimStyle.Render(msg)
}

// viewFooter renders counts, latency, and the search-mode indicator.
func (m Model) viewFooter() string {
	var parts []string

	if m.loading || (m.typing && m.state == stateSearching) {
		parts = append(parts, m.spin.View()+" searching")
	}

	switch m.state {
	case stateLoaded:
		count := fmt.Sprintf("%d results", len(m.results))
		if m.totalKnown {
			count = fmt.Sprintf("%d of %d results", len(m.results), m.total)
		}
		parts = append(parts, count)
		if m.fromCache {
			parts = append(parts, "cached")
		} else if m.tookMs > 0 {
			parts = append(parts, fmt.Sprintf("%dms", m.tookMs))
		}
		if m.paginator.Loading() {
			parts = append(parts, "loading more…")
		}
	case stateDefault:
		parts = append(parts, "recent searches and pages")
	}

	if m.fts5 != nil {
		if *m.fts5 {
			parts = append(parts, "advanced search")
		} else {
			parts = append(parts, "basic search")
		}
	}

	if m.searchErr != nil && m.state == stateLoaded {
		parts = append(parts, errorStyle.Render("offline"))
	}

	parts = append(parts, "↑↓ navigate · enter open · tab category · esc close")
	return dimStyle.Render(strings.Join(parts, " · "))
}
