package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rifters/RiftedReader-sub002/internal/core/styles"
)

// BookItem is one library entry offered by the picker.
type BookItem struct {
	Title    string
	Path     string
	Progress string
}

// bookListItem adapts BookItem to the list delegate interface.
type bookListItem struct{ BookItem }

func (b bookListItem) FilterValue() string { return b.BookItem.Title }
func (b bookListItem) Title() string       { return b.BookItem.Title }

func (b bookListItem) Description() string {
	if b.Progress != "" {
		return b.Progress + " · " + b.Path
	}
	return b.Path
}

// pickerModel wraps a bubbles list for choosing a book to open.
type pickerModel struct {
	list   list.Model
	chosen *BookItem
}

func newPickerModel(items []BookItem) pickerModel {
	entries := make([]list.Item, len(items))
	for i, item := range items {
		entries[i] = bookListItem{item}
	}

	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(styles.CurrentPalette.Primary).
		BorderForeground(styles.CurrentPalette.Primary)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(styles.CurrentPalette.Muted).
		BorderForeground(styles.CurrentPalette.Primary)

	l := list.New(entries, delegate, 0, 0)
	l.Title = "Library"
	l.SetShowStatusBar(false)
	l.Styles.Title = styles.HeaderTitleStyle

	return pickerModel{list: l}
}

func (m pickerModel) Init() tea.Cmd { return nil }

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "enter":
			if item, ok := m.list.SelectedItem().(bookListItem); ok {
				m.chosen = &item.BookItem
			}
			return m, tea.Quit
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m pickerModel) View() string { return m.list.View() }

// PickBook shows the library picker and returns the chosen item. ok is false
// when the user dismissed the picker without choosing.
func PickBook(items []BookItem) (BookItem, bool, error) {
	if len(items) == 0 {
		return BookItem{}, false, fmt.Errorf("library is empty")
	}

	final, err := tea.NewProgram(newPickerModel(items), tea.WithAltScreen()).Run()
	if err != nil {
		return BookItem{}, false, err
	}

	m, ok := final.(pickerModel)
	if !ok || m.chosen == nil {
		return BookItem{}, false, nil
	}
	return *m.chosen, true, nil
}
