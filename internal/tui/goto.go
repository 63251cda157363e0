package tui

import (
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rifters/RiftedReader-sub002/internal/core/styles"
)

// gotoPrompt is the jump overlay: accepts a window number ("12") or a
// document percentage ("45%").
type gotoPrompt struct {
	input       textinput.Model
	windowCount int
	open        bool
	invalid     bool
}

func newGotoPrompt() *gotoPrompt {
	input := textinput.New()
	input.Placeholder = "window or %"
	input.Prompt = "> "
	input.CharLimit = 8

	return &gotoPrompt{input: input}
}

func (g *gotoPrompt) Open(windowCount int) {
	g.open = true
	g.invalid = false
	g.windowCount = windowCount
	g.input.SetValue("")
	g.input.Focus()
}

func (g *gotoPrompt) Close() {
	g.open = false
	g.input.Blur()
}

func (g *gotoPrompt) IsOpen() bool { return g.open }

// Update handles one key while the prompt is open. It returns the target
// window and true when a valid jump was entered.
func (g *gotoPrompt) Update(msg tea.KeyMsg) (int, bool) {
	switch msg.String() {
	case "esc":
		g.Close()
		return 0, false
	case "enter":
		window, ok := g.parse()
		if !ok {
			g.invalid = true
			return 0, false
		}
		g.Close()
		return window, true
	}

	g.invalid = false
	var cmd tea.Cmd
	g.input, cmd = g.input.Update(msg)
	_ = cmd
	return 0, false
}

// parse resolves the entered text to a zero-based window index.
func (g *gotoPrompt) parse() (int, bool) {
	raw := strings.TrimSpace(g.input.Value())
	if raw == "" {
		return 0, false
	}

	if pct, ok := strings.CutSuffix(raw, "%"); ok {
		p, err := strconv.ParseFloat(strings.TrimSpace(pct), 64)
		if err != nil || p < 0 || p > 100 {
			return 0, false
		}
		return int(math.Round(p / 100 * float64(g.windowCount-1))), true
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > g.windowCount {
		return 0, false
	}
	return n - 1, true
}

// View renders the prompt box.
func (g *gotoPrompt) View() string {
	var b strings.Builder

	b.WriteString(styles.OverlayTitleStyle.Render("Go to"))
	b.WriteString("\n")
	b.WriteString(g.input.View())
	b.WriteString("\n")
	if g.invalid {
		b.WriteString(styles.ToastErrorStyle.Render("enter a window (1-" + strconv.Itoa(g.windowCount) + ") or a percentage"))
	} else {
		b.WriteString(styles.OverlayHelpStyle.Render("enter jump · esc close"))
	}

	return styles.OverlayStyle.Render(b.String())
}
