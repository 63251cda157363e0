// Package tui implements the terminal reading view: a Bubble Tea program
// presenting one reading session, with gesture and key navigation, a
// table-of-contents overlay, and transient toast notices.
package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rifters/RiftedReader-sub002/internal/core/book"
	"github.com/rifters/RiftedReader-sub002/internal/core/notify"
	"github.com/rifters/RiftedReader-sub002/internal/core/styles"
	"github.com/rifters/RiftedReader-sub002/internal/core/surface"
	"github.com/rifters/RiftedReader-sub002/internal/reader"
)

// chrome rows around the page body: header, divider, divider, footer, help.
const chromeRows = 5

// Options configures the reading view.
type Options struct {
	Session *reader.Session
	Doc     *book.Document
	Notices <-chan notify.Notice

	SwipeMinDistance int
	SwipeMinVelocity float64
}

type (
	updateMsg        reader.Update
	noticeMsg        notify.Notice
	sessionClosedMsg struct{}
)

// Model is the Bubble Tea model for the reading view.
type Model struct {
	session *reader.Session
	doc     *book.Document
	notices <-chan notify.Notice

	keys     keyMap
	help     help.Model
	spinner  spinner.Model
	progress progress.Model
	toasts   *toastController
	toc      *tocOverlay
	jump     *gotoPrompt
	gestures *gestureRecognizer

	state    reader.Update
	hydrated bool

	width  int
	height int

	quitting bool
}

// New creates the reading view model for a started session.
func New(opts Options) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	bar := progress.New(
		progress.WithSolidFill(string(styles.CurrentPalette.Primary)),
		progress.WithoutPercentage(),
	)

	return &Model{
		session:  opts.Session,
		doc:      opts.Doc,
		notices:  opts.Notices,
		keys:     defaultKeyMap(),
		help:     help.New(),
		spinner:  sp,
		progress: bar,
		toasts:   newToastController(),
		toc:      newTOCOverlay(opts.Doc.TOC),
		jump:     newGotoPrompt(),
		gestures: newGestureRecognizer(opts.SwipeMinDistance, opts.SwipeMinVelocity),
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.listenUpdates(),
		m.listenNotices(),
		m.spinner.Tick,
	)
}

func (m *Model) listenUpdates() tea.Cmd {
	return func() tea.Msg {
		u, ok := <-m.session.Updates()
		if !ok {
			return sessionClosedMsg{}
		}
		return updateMsg(u)
	}
}

func (m *Model) listenNotices() tea.Cmd {
	if m.notices == nil {
		return nil
	}
	return func() tea.Msg {
		n, ok := <-m.notices
		if !ok {
			return nil
		}
		return noticeMsg(n)
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.progress.Width = progressWidth
		m.session.Resize(m.pageLayout())
		return m, nil

	case updateMsg:
		m.state = reader.Update(msg)
		m.hydrated = true
		return m, m.listenUpdates()

	case sessionClosedMsg:
		m.quitting = true
		return m, tea.Quit

	case noticeMsg:
		m.toasts.Push(notify.Notice(msg))
		var cmd tea.Cmd
		if !m.toasts.Ticking() {
			m.toasts.SetTicking(true)
			cmd = scheduleToastTick()
		}
		return m, tea.Batch(m.listenNotices(), cmd)

	case toastTickMsg:
		m.toasts.Tick(toastTickInterval)
		if m.toasts.HasToasts() {
			return m, scheduleToastTick()
		}
		m.toasts.SetTicking(false)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.toc.IsOpen() {
		if chapter, ok := m.toc.Update(msg); ok {
			m.session.GoToChapter(chapter)
		}
		return m, nil
	}
	if m.jump.IsOpen() {
		if window, ok := m.jump.Update(msg); ok {
			m.session.GoToWindow(window)
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.session.Stop()
		// Quit once the session confirms teardown via the closed channel.
		return m, nil

	case key.Matches(msg, m.keys.NextPage):
		m.session.NextPage()
	case key.Matches(msg, m.keys.PrevPage):
		m.session.PrevPage()
	case key.Matches(msg, m.keys.NextWindow):
		m.session.GoToWindow(m.state.ActiveWindow + 1)
	case key.Matches(msg, m.keys.PrevWindow):
		m.session.GoToWindow(m.state.ActiveWindow - 1)
	case key.Matches(msg, m.keys.FirstWindow):
		m.session.GoToWindow(0)
	case key.Matches(msg, m.keys.LastWindow):
		m.session.GoToWindow(m.state.WindowCount - 1)
	case key.Matches(msg, m.keys.Goto):
		m.jump.Open(m.state.WindowCount)
	case key.Matches(msg, m.keys.TOC):
		m.toc.Open(m.state.ChapterIndex)
	case key.Matches(msg, m.keys.Dismiss):
		m.toasts.Dismiss()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}

	return m, nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	switch msg.Button {
	case tea.MouseButtonWheelDown:
		m.session.NextPage()
		return m, nil
	case tea.MouseButtonWheelUp:
		m.session.PrevPage()
		return m, nil
	}

	switch msg.Action {
	case tea.MouseActionPress:
		m.gestures.press(msg.X, msg.Y)
	case tea.MouseActionRelease:
		switch m.gestures.release(msg.X, msg.Y) {
		case swipeLeft:
			m.session.NextPage()
		case swipeRight:
			m.session.PrevPage()
		}
	}

	return m, nil
}

// pageLayout derives the page text area from the terminal size.
func (m *Model) pageLayout() surface.Layout {
	cols := m.width - 4
	rows := m.height - chromeRows
	if cols < 20 {
		cols = 20
	}
	if rows < 4 {
		rows = 4
	}
	return surface.Layout{Cols: cols, Rows: rows}
}
