package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/rifters/RiftedReader-sub002/internal/core/styles"
)

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "loading..."
	}

	if m.toc.IsOpen() {
		return overlayPlace(m.width, m.height, m.toc.View())
	}
	if m.jump.IsOpen() {
		return overlayPlace(m.width, m.height, m.jump.View())
	}

	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n")
	b.WriteString(styles.DividerStyle.Render(strings.Repeat("─", m.width)))
	b.WriteString("\n")
	b.WriteString(m.bodyView())
	b.WriteString("\n")
	b.WriteString(styles.DividerStyle.Render(strings.Repeat("─", m.width)))
	b.WriteString("\n")
	b.WriteString(m.footerView())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))

	view := b.String()
	if m.toasts.HasToasts() {
		view += "\n" + m.toasts.View()
	}
	return view
}

func (m *Model) headerView() string {
	// Each side gets at most half the row so neither can push the other off.
	half := m.width / 2
	title := styles.HeaderTitleStyle.Render(runewidth.Truncate(m.doc.Title, half, "…"))
	chapter := ""
	if m.hydrated && m.state.ChapterTitle != "" {
		chapter = styles.HeaderChapterStyle.Render(runewidth.Truncate(m.state.ChapterTitle, half, "…"))
	}

	gap := m.width - lipgloss.Width(title) - lipgloss.Width(chapter)
	if gap < 1 {
		gap = 1
	}
	return title + strings.Repeat(" ", gap) + chapter
}

func (m *Model) bodyView() string {
	layout := m.pageLayout()

	if !m.hydrated || m.state.Content == "" {
		waiting := m.spinner.View() + " preparing pages"
		return lipgloss.Place(m.width, layout.Rows, lipgloss.Center, lipgloss.Center, waiting)
	}

	body := m.state.Content
	lines := strings.Count(body, "\n") + 1
	if pad := layout.Rows - lines; pad > 0 {
		body += strings.Repeat("\n", pad)
	}
	return lipgloss.NewStyle().PaddingLeft(2).Render(body)
}

const progressWidth = 20

func (m *Model) footerView() string {
	if !m.hydrated {
		return styles.FooterStyle.Render("")
	}

	page := styles.FooterPageStyle.Render(
		fmt.Sprintf("page %d/%d", m.state.Page+1, max(m.state.TotalPages, 1)),
	)
	window := styles.FooterStyle.Render(
		fmt.Sprintf("window %d/%d", m.state.ActiveWindow+1, m.state.WindowCount),
	)
	chapter := styles.FooterStyle.Render(
		fmt.Sprintf("ch %d %d/%d", m.state.ChapterIndex+1, m.state.ChapterPage+1, max(m.state.ChapterPages, 1)),
	)
	bar := m.progress.ViewAs(m.state.Percent)
	percent := styles.FooterPercentStyle.Render(
		fmt.Sprintf("%.0f%%", m.state.Percent*100),
	)
	phase := styles.PhaseStyle.Render(m.state.Phase.String())

	left := page + "  " + window + "  " + chapter
	right := bar + " " + percent + "  " + phase

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}
