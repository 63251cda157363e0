// Package styles provides shared lipgloss styles for CLI and TUI components.
package styles

import (
	"sort"

	glamouransi "github.com/charmbracelet/glamour/ansi"
	glamourstyles "github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
)

// Palette defines a minimal semantic theme palette.
type Palette struct {
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Background lipgloss.Color
	Surface    lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
}

// DefaultTheme is the name of the default theme.
const DefaultTheme = "tokyo-night"

// themes holds the built-in named palettes.
var themes = map[string]Palette{
	"tokyo-night": {
		Primary:    lipgloss.Color("#7aa2f7"),
		Secondary:  lipgloss.Color("#7dcfff"),
		Foreground: lipgloss.Color("#c0caf5"),
		Muted:      lipgloss.Color("#565f89"),
		Background: lipgloss.Color("#1a1b26"),
		Surface:    lipgloss.Color("#3b4261"),
		Success:    lipgloss.Color("#9ece6a"),
		Warning:    lipgloss.Color("#e0af68"),
		Error:      lipgloss.Color("#f7768e"),
	},
	"gruvbox": {
		Primary:    lipgloss.Color("#83a598"),
		Secondary:  lipgloss.Color("#8ec07c"),
		Foreground: lipgloss.Color("#ebdbb2"),
		Muted:      lipgloss.Color("#665c54"),
		Background: lipgloss.Color("#282828"),
		Surface:    lipgloss.Color("#3c3836"),
		Success:    lipgloss.Color("#b8bb26"),
		Warning:    lipgloss.Color("#fabd2f"),
		Error:      lipgloss.Color("#fb4934"),
	},
}

// ThemeNames returns sorted names of all built-in themes.
func ThemeNames() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetPalette returns the palette for the given theme name.
func GetPalette(name string) (Palette, bool) {
	p, ok := themes[name]
	return p, ok
}

// CurrentPalette holds the active theme palette.
var CurrentPalette Palette

// Style exports.
var (
	// CLI styles.
	CommandHeaderStyle lipgloss.Style
	DividerStyle       lipgloss.Style

	// Reading view chrome.
	HeaderTitleStyle   lipgloss.Style
	HeaderChapterStyle lipgloss.Style
	FooterStyle        lipgloss.Style
	FooterPageStyle    lipgloss.Style
	FooterPercentStyle lipgloss.Style
	PhaseStyle         lipgloss.Style

	// Overlays.
	OverlayStyle         lipgloss.Style
	OverlayTitleStyle    lipgloss.Style
	OverlaySelectedStyle lipgloss.Style
	OverlayNormalStyle   lipgloss.Style
	OverlayHelpStyle     lipgloss.Style

	// Toast notices.
	ToastInfoStyle    lipgloss.Style
	ToastWarningStyle lipgloss.Style
	ToastErrorStyle   lipgloss.Style
)

// SetTheme sets the active palette and rebuilds all global styles.
func SetTheme(p Palette) {
	CurrentPalette = p

	CommandHeaderStyle = lipgloss.NewStyle().
		Foreground(p.Primary).
		Bold(true)
	DividerStyle = lipgloss.NewStyle().
		Foreground(p.Muted)

	HeaderTitleStyle = lipgloss.NewStyle().
		Foreground(p.Primary).
		Bold(true)
	HeaderChapterStyle = lipgloss.NewStyle().
		Foreground(p.Muted)
	FooterStyle = lipgloss.NewStyle().
		Foreground(p.Muted)
	FooterPageStyle = lipgloss.NewStyle().
		Foreground(p.Foreground)
	FooterPercentStyle = lipgloss.NewStyle().
		Foreground(p.Secondary)
	PhaseStyle = lipgloss.NewStyle().
		Foreground(p.Warning)

	OverlayStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Primary).
		Padding(1, 2)
	OverlayTitleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(p.Foreground)
	OverlaySelectedStyle = lipgloss.NewStyle().
		Foreground(p.Primary).
		Bold(true)
	OverlayNormalStyle = lipgloss.NewStyle().
		Foreground(p.Muted)
	OverlayHelpStyle = lipgloss.NewStyle().
		Foreground(p.Muted).
		MarginTop(1)

	ToastInfoStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Primary).
		Padding(0, 1)
	ToastWarningStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Warning).
		Padding(0, 1)
	ToastErrorStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.Error).
		Padding(0, 1)
}

// nolint:gochecknoinits // bootstrap default theme before any style is accessed.
func init() {
	SetTheme(themes[DefaultTheme])
}

func hexPtr(c lipgloss.Color) *string {
	s := string(c)
	if s == "" {
		return nil
	}
	return &s
}

// GlamourStyle returns a glamour style config derived from the active theme.
// Used when the configured reading style is "theme".
func GlamourStyle() glamouransi.StyleConfig {
	cfg := glamourstyles.DarkStyleConfig

	fg := hexPtr(CurrentPalette.Foreground)
	primary := hexPtr(CurrentPalette.Primary)
	secondary := hexPtr(CurrentPalette.Secondary)
	muted := hexPtr(CurrentPalette.Muted)
	surface := hexPtr(CurrentPalette.Surface)

	cfg.Document.Color = fg
	cfg.Paragraph.Color = fg

	cfg.Heading.Color = primary
	cfg.H1.Color = fg
	cfg.H1.BackgroundColor = surface
	cfg.H2.Color = primary
	cfg.H3.Color = primary
	cfg.H4.Color = primary
	cfg.H5.Color = primary
	cfg.H6.Color = primary

	cfg.BlockQuote.Color = muted
	cfg.HorizontalRule.Color = muted

	cfg.Link.Color = secondary
	cfg.LinkText.Color = secondary

	cfg.Code.Color = secondary
	cfg.CodeBlock.Chroma = nil
	cfg.CodeBlock.Color = muted

	cfg.Table.Color = fg

	return cfg
}
