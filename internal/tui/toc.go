package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/rifters/RiftedReader-sub002/internal/core/book"
	"github.com/rifters/RiftedReader-sub002/internal/core/styles"
)

const tocMaxVisible = 12

// tocOverlay is the table-of-contents picker: a fuzzy-filterable chapter
// list layered over the reading view.
type tocOverlay struct {
	entries  []book.TOCEntry
	filtered []book.TOCEntry
	input    textinput.Model
	cursor   int
	open     bool
}

func newTOCOverlay(entries []book.TOCEntry) *tocOverlay {
	input := textinput.New()
	input.Placeholder = "filter chapters"
	input.Prompt = "/ "
	input.CharLimit = 64

	return &tocOverlay{
		entries:  entries,
		filtered: entries,
		input:    input,
	}
}

func (o *tocOverlay) Open(currentChapter int) {
	o.open = true
	o.input.SetValue("")
	o.input.Focus()
	o.filtered = o.entries
	o.cursor = 0
	for i, e := range o.entries {
		if e.ChapterIndex == currentChapter {
			o.cursor = i
			break
		}
	}
}

func (o *tocOverlay) Close() {
	o.open = false
	o.input.Blur()
}

func (o *tocOverlay) IsOpen() bool { return o.open }

// Update handles one key while the overlay is open. It returns the chosen
// chapter index and true when a selection was made.
func (o *tocOverlay) Update(msg tea.KeyMsg) (int, bool) {
	switch msg.String() {
	case "esc":
		o.Close()
		return 0, false
	case "enter":
		if len(o.filtered) == 0 {
			return 0, false
		}
		chosen := o.filtered[o.cursor].ChapterIndex
		o.Close()
		return chosen, true
	case "up", "ctrl+p":
		if o.cursor > 0 {
			o.cursor--
		}
		return 0, false
	case "down", "ctrl+n":
		if o.cursor < len(o.filtered)-1 {
			o.cursor++
		}
		return 0, false
	}

	var cmd tea.Cmd
	o.input, cmd = o.input.Update(msg)
	_ = cmd
	o.refilter()
	return 0, false
}

// refilter narrows the entry list to fuzzy matches of the query.
func (o *tocOverlay) refilter() {
	query := strings.TrimSpace(o.input.Value())
	if query == "" {
		o.filtered = o.entries
	} else {
		matched := make([]book.TOCEntry, 0, len(o.entries))
		for _, e := range o.entries {
			if fuzzy.MatchFold(query, e.Title) {
				matched = append(matched, e)
			}
		}
		o.filtered = matched
	}

	if o.cursor > len(o.filtered)-1 {
		o.cursor = 0
	}
}

// View renders the overlay box.
func (o *tocOverlay) View() string {
	var b strings.Builder

	b.WriteString(styles.OverlayTitleStyle.Render("Contents"))
	b.WriteString("\n")
	b.WriteString(o.input.View())
	b.WriteString("\n\n")

	if len(o.filtered) == 0 {
		b.WriteString(styles.OverlayNormalStyle.Render("no matching chapters"))
	} else {
		start, end := o.window()
		for i := start; i < end; i++ {
			e := o.filtered[i]
			line := strings.Repeat("  ", e.Level-1) + e.Title
			if i == o.cursor {
				b.WriteString(styles.OverlaySelectedStyle.Render("> " + line))
			} else {
				b.WriteString(styles.OverlayNormalStyle.Render("  " + line))
			}
			if i < end-1 {
				b.WriteString("\n")
			}
		}
	}

	b.WriteString("\n")
	b.WriteString(styles.OverlayHelpStyle.Render("enter jump · esc close"))

	return styles.OverlayStyle.Render(b.String())
}

// window returns the visible slice bounds, keeping the cursor in view.
func (o *tocOverlay) window() (int, int) {
	if len(o.filtered) <= tocMaxVisible {
		return 0, len(o.filtered)
	}
	start := o.cursor - tocMaxVisible/2
	if start < 0 {
		start = 0
	}
	if start+tocMaxVisible > len(o.filtered) {
		start = len(o.filtered) - tocMaxVisible
	}
	return start, start + tocMaxVisible
}

// overlayPlace centers content within the given area.
func overlayPlace(width, height int, content string) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
