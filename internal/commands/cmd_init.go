package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/rifters/RiftedReader-sub002/internal/core/config"
	"github.com/rifters/RiftedReader-sub002/internal/core/styles"
)

type InitCmd struct {
	flags *Flags

	force bool
}

// NewInitCmd creates a new init command
func NewInitCmd(flags *Flags) *InitCmd {
	return &InitCmd{flags: flags}
}

// Register adds the init command to the application
func (cmd *InitCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "init",
		Usage:     "Create a config file interactively",
		UsageText: "rifted init [--force]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "force",
				Usage:       "overwrite an existing config file",
				Destination: &cmd.force,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *InitCmd) run(ctx context.Context, c *cli.Command) error {
	configPath := cmd.flags.ConfigPath

	if _, err := os.Stat(configPath); err == nil && !cmd.force {
		return fmt.Errorf("config already exists at %s (use --force to overwrite)", configPath)
	}

	cfg := config.DefaultConfig()

	libraryPath := cfg.Library.Paths[0]
	theme := cfg.TUI.Theme
	style := cfg.TUI.Style

	themeOptions := make([]huh.Option[string], 0, len(styles.ThemeNames()))
	for _, name := range styles.ThemeNames() {
		themeOptions = append(themeOptions, huh.NewOption(name, name))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Library path").
				Description("Directory scanned for Markdown books").
				Value(&libraryPath),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOptions...).
				Value(&theme),
			huh.NewSelect[string]().
				Title("Markdown style").
				Description("\"theme\" derives the page style from the color theme").
				Options(
					huh.NewOption("dark", "dark"),
					huh.NewOption("light", "light"),
					huh.NewOption("dracula", "dracula"),
					huh.NewOption("plain text", "notty"),
					huh.NewOption("theme", "theme"),
				).
				Value(&style),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	cfg.Library.Paths = []string{libraryPath}
	cfg.TUI.Theme = theme
	cfg.TUI.Style = style

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	fmt.Fprintf(c.Root().Writer, "Wrote %s\n", configPath)
	return nil
}
