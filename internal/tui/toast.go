package tui

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rifters/RiftedReader-sub002/internal/core/notify"
	"github.com/rifters/RiftedReader-sub002/internal/core/styles"
)

const (
	defaultToastTTL   = 5 * time.Second
	defaultMaxToasts  = 5
	toastTickInterval = 100 * time.Millisecond
	toastWidth        = 50
)

type toastTickMsg time.Time

func scheduleToastTick() tea.Cmd {
	return tea.Tick(toastTickInterval, func(t time.Time) tea.Msg {
		return toastTickMsg(t)
	})
}

type toast struct {
	notice    notify.Notice
	remaining time.Duration
}

// toastController manages the lifecycle of active toast notices.
// It handles push, eviction, TTL countdown, and dismissal.
type toastController struct {
	toasts  []toast
	ticking bool
}

func newToastController() *toastController {
	return &toastController{}
}

// Push adds a notice to the toast stack. If the stack exceeds
// defaultMaxToasts, the oldest toast is evicted.
func (c *toastController) Push(n notify.Notice) {
	c.toasts = append(c.toasts, toast{
		notice:    n,
		remaining: defaultToastTTL,
	})
	if len(c.toasts) > defaultMaxToasts {
		c.toasts = c.toasts[len(c.toasts)-defaultMaxToasts:]
	}
}

// Tick decrements the remaining TTL on all toasts by d and removes
// any that have expired.
func (c *toastController) Tick(d time.Duration) {
	alive := c.toasts[:0]
	for _, t := range c.toasts {
		t.remaining -= d
		if t.remaining > 0 {
			alive = append(alive, t)
		}
	}
	c.toasts = alive
}

// Dismiss removes the newest (bottom-most) toast.
func (c *toastController) Dismiss() {
	if len(c.toasts) > 0 {
		c.toasts = c.toasts[:len(c.toasts)-1]
	}
}

// DismissAll removes all active toasts.
func (c *toastController) DismissAll() {
	c.toasts = c.toasts[:0]
}

// HasToasts returns true if there are any active toasts.
func (c *toastController) HasToasts() bool {
	return len(c.toasts) > 0
}

// Ticking returns whether the tick timer is currently running.
func (c *toastController) Ticking() bool {
	return c.ticking
}

// SetTicking sets the tick timer state.
func (c *toastController) SetTicking(v bool) {
	c.ticking = v
}

// View renders the toast stack, oldest at top, newest at bottom.
func (c *toastController) View() string {
	if len(c.toasts) == 0 {
		return ""
	}

	rendered := make([]string, 0, len(c.toasts))
	for _, t := range c.toasts {
		rendered = append(rendered, renderToast(t))
	}
	return strings.Join(rendered, "\n")
}

func renderToast(t toast) string {
	var style lipgloss.Style
	switch t.notice.Level {
	case notify.LevelError:
		style = styles.ToastErrorStyle
	case notify.LevelWarning:
		style = styles.ToastWarningStyle
	default:
		style = styles.ToastInfoStyle
	}
	return style.Width(toastWidth).Render(t.notice.Message)
}
