package main

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/rifters/RiftedReader-sub002/internal/commands"
	"github.com/rifters/RiftedReader-sub002/internal/core/config"
	"github.com/rifters/RiftedReader-sub002/internal/core/styles"
	"github.com/rifters/RiftedReader-sub002/pkg/logutils"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	// When installed via `go install module@version`, init() populates
	// these from runtime/debug.BuildInfo instead.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	v, c, d := version, commit, date

	// When installed via `go install module@version`, ldflags aren't set
	// so version remains "dev". Fall back to runtime/debug.BuildInfo which
	// Go populates automatically with the module version and VCS metadata.
	if v == "dev" {
		if info, ok := debug.ReadBuildInfo(); ok {
			if mv := info.Main.Version; mv != "" && mv != "(devel)" {
				v = mv
			}
			for _, s := range info.Settings {
				switch s.Key {
				case "vcs.revision":
					c = s.Value
				case "vcs.time":
					d = s.Value
				}
			}
		}
	}

	short := c
	if len(c) > 7 {
		short = c[:7]
	}

	return fmt.Sprintf("%s (%s) %s", v, short, d)
}

func main() {
	ctx := context.Background()

	var logCloser func()

	flags := &commands.Flags{}

	app := &cli.Command{
		Name:      "rifted",
		Usage:     "Read Markdown books in the terminal",
		UsageText: "rifted [global options] command [command options]",
		Description: `Rifted is a terminal e-book reader for Markdown books. It paginates
chapters into fixed windows, keeps a sliding buffer of rendered windows
around the reading position, and remembers where you left off.

Run 'rifted <book path>' or 'rifted read <book path>' to start reading.
Run 'rifted' with no arguments to resume the last book.`,
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("RIFTED_LOG_LEVEL"),
				Value:       "",
				Destination: &flags.LogLevel,
			},
			&cli.StringFlag{
				Name:        "log-file",
				Usage:       "path to log file (defaults to <data-dir>/rifted.log)",
				Sources:     cli.EnvVars("RIFTED_LOG_FILE"),
				Destination: &flags.LogFile,
			},
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to config file",
				Sources:     cli.EnvVars("RIFTED_CONFIG"),
				Value:       commands.DefaultConfigPath(),
				Destination: &flags.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "data-dir",
				Usage:       "path to data directory",
				Sources:     cli.EnvVars("RIFTED_DATA_DIR"),
				Value:       commands.DefaultDataDir(),
				Destination: &flags.DataDir,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			if err := os.MkdirAll(flags.DataDir, 0o755); err != nil {
				return ctx, fmt.Errorf("create data dir: %w", err)
			}

			cfg, err := config.Load(flags.ConfigPath, flags.DataDir)
			if err != nil {
				return ctx, fmt.Errorf("load config: %w", err)
			}
			flags.Config = cfg

			// The flag overrides the configured level; the TUI owns the
			// terminal, so logs always go to a file.
			level := cfg.Logging.Level
			if flags.LogLevel != "" {
				level = flags.LogLevel
			}
			logFile := flags.LogFile
			if logFile == "" {
				logFile = cfg.LogFile()
			}

			logger, closer, err := logutils.New(level, logFile)
			if err != nil {
				return ctx, fmt.Errorf("setup logger: %w", err)
			}
			log.Logger = logger
			logCloser = closer

			palette, ok := styles.GetPalette(cfg.TUI.Theme)
			if !ok {
				return ctx, fmt.Errorf("unknown theme %q (valid: %s)", cfg.TUI.Theme, strings.Join(styles.ThemeNames(), ", "))
			}
			styles.SetTheme(palette)

			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if logCloser != nil {
				logCloser()
			}
			return nil
		},
	}

	readCmd := commands.NewReadCmd(flags)

	app = readCmd.Register(app)
	app = commands.NewLsCmd(flags).Register(app)
	app = commands.NewTocCmd(flags).Register(app)
	app = commands.NewInitCmd(flags).Register(app)

	// Register read flags on the root command too: read is the default
	// action, so 'rifted book.md' and 'rifted read book.md' both work.
	app.Flags = append(app.Flags, readCmd.Flags()...)
	app.Action = readCmd.Run

	exitCode := 0
	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Println()
		fmt.Println(err.Error())
		exitCode = 1
	}

	os.Exit(exitCode)
}
