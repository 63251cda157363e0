package commands

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/rifters/RiftedReader-sub002/internal/core/eventbus"
	"github.com/rifters/RiftedReader-sub002/internal/core/notify"
	"github.com/rifters/RiftedReader-sub002/internal/core/surface"
	"github.com/rifters/RiftedReader-sub002/internal/data/db"
	"github.com/rifters/RiftedReader-sub002/internal/data/stores"
	"github.com/rifters/RiftedReader-sub002/internal/parse"
	"github.com/rifters/RiftedReader-sub002/internal/reader"
	"github.com/rifters/RiftedReader-sub002/internal/render"
	"github.com/rifters/RiftedReader-sub002/internal/tui"
)

type ReadCmd struct {
	flags *Flags

	restart bool
}

// NewReadCmd creates a new read command
func NewReadCmd(flags *Flags) *ReadCmd {
	return &ReadCmd{flags: flags}
}

// Register adds the read command to the application
func (cmd *ReadCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "read",
		Usage:     "Open a book in the reading view",
		UsageText: "rifted read [book path]",
		Description: `Opens the given Markdown book (a file or a chapter directory) and resumes
from the last saved position. With no argument the most recently read book
from the library is reopened.`,
		Flags:  cmd.Flags(),
		Action: cmd.Run,
	})
	return app
}

// Flags returns the read command flags, also registered on the root command
// since read is the default action.
func (cmd *ReadCmd) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:        "restart",
			Usage:       "ignore the saved position and start from the beginning",
			Destination: &cmd.restart,
		},
	}
}

func (cmd *ReadCmd) Run(ctx context.Context, c *cli.Command) error {
	cfg := cmd.flags.Config

	database, err := db.Open(cfg.DataDir)
	if stores.IsCorruptionError(err) {
		log.Warn().Err(err).Msg("database corrupt, recovering with a fresh file")
		if recErr := stores.RecoverFromCorruption(cfg.DataDir); recErr != nil {
			return fmt.Errorf("recover database: %w", recErr)
		}
		database, err = db.Open(cfg.DataDir)
	}
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if err := database.Close(); err != nil {
			log.Error().Err(err).Msg("close database")
		}
	}()

	positions := stores.NewPositionStore(database)
	readingLog := stores.NewReadingLogStore(database)

	path := c.Args().First()
	if path == "" {
		path, err = cmd.resolveBook(ctx, readingLog)
		if err != nil {
			return err
		}
		if path == "" {
			return nil // picker dismissed
		}
	}

	doc, err := parse.Open(path)
	if err != nil {
		return err
	}

	busCtx, stopBus := context.WithCancel(ctx)
	defer stopBus()

	bus := eventbus.New(64)
	if log.Logger.GetLevel() <= zerolog.DebugLevel {
		eventbus.RegisterDebugLogger(bus, log.With().Str("component", "eventbus").Logger())
	}
	go bus.Start(busCtx)

	eventbus.NewNotificationRouter(bus).Register()

	notices := make(chan notify.Notice, 16)
	bus.SubscribeNotificationPublished(func(p eventbus.NotificationPublishedPayload) {
		select {
		case notices <- notify.New(p.Level, p.Message):
		default:
		}
	})

	startWindow, startPage := 0, 0
	if !cmd.restart {
		pos, err := positions.Get(ctx, doc.ID)
		switch {
		case err == nil && !pos.Completed:
			startWindow, startPage = pos.WindowID, pos.Page
		case err != nil && !errors.Is(err, stores.ErrNotFound):
			return fmt.Errorf("restore position: %w", err)
		}
	}

	factory := render.NewFactory(render.Options{
		Style:  cfg.TUI.Style,
		Logger: log.With().Str("component", "render").Logger(),
	})

	lowWM, highWM := cfg.Reader.Watermarks()
	session, err := reader.New(reader.Config{
		Doc:     doc,
		Factory: factory,
		Bus:     bus,
		Saver:   positions,
		Layout:  surface.Layout{Cols: 80, Rows: 24},

		ChaptersPerWindow: cfg.Reader.ChaptersPerWindow,
		BufferCapacity:    cfg.Reader.BufferCapacity,
		LowWatermark:      lowWM,
		HighWatermark:     highWM,
		NavQueueTimeout:   cfg.Reader.NavQueueTimeout.Std(),
		NavPollInterval:   cfg.Reader.NavPollInterval.Std(),
		Prewarm:           cfg.Reader.PrewarmEnabled(),
		AutosaveInterval:  cfg.Reader.AutosaveInterval.Std(),

		StartWindow: startWindow,
		StartPage:   startPage,

		Logger: log.With().Str("component", "reader").Logger(),
	})
	if err != nil {
		return err
	}
	if err := session.Start(); err != nil {
		return err
	}

	logID, err := readingLog.Open(ctx, doc.ID, doc.Title)
	if err != nil {
		log.Warn().Err(err).Msg("record reading log entry")
	}

	model := tui.New(tui.Options{
		Session:          session,
		Doc:              doc,
		Notices:          notices,
		SwipeMinDistance: cfg.TUI.SwipeMinDistance,
		SwipeMinVelocity: float64(cfg.TUI.SwipeMinVelocity),
	})

	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, runErr := program.Run()

	session.Stop()
	<-session.Done()

	if logID != "" {
		last, posErr := positions.Get(ctx, doc.ID)
		if posErr != nil {
			last = stores.Position{WindowID: startWindow, Page: startPage}
		}
		if err := readingLog.Close(ctx, logID, last.WindowID, last.Page); err != nil {
			log.Warn().Err(err).Msg("close reading log entry")
		}
	}

	return runErr
}

// resolveBook picks a book when none was given: resume the most recently
// read library book, else offer the library picker. Returns "" when the
// picker was dismissed.
func (cmd *ReadCmd) resolveBook(ctx context.Context, readingLog *stores.ReadingLogStore) (string, error) {
	refs, err := parse.Scan(cmd.flags.Config.Library.Paths)
	if err != nil {
		return "", err
	}

	if entries, err := readingLog.Recent(ctx, 1); err == nil && len(entries) > 0 {
		for _, ref := range refs {
			if ref.ID == entries[0].BookID {
				return ref.Path, nil
			}
		}
	}

	items := make([]tui.BookItem, len(refs))
	for i, ref := range refs {
		items[i] = tui.BookItem{Title: ref.Title, Path: ref.Path}
	}
	chosen, ok, err := tui.PickBook(items)
	if err != nil || !ok {
		return "", err
	}
	return chosen.Path, nil
}
