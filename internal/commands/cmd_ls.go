package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/rifters/RiftedReader-sub002/internal/data/db"
	"github.com/rifters/RiftedReader-sub002/internal/data/stores"
	"github.com/rifters/RiftedReader-sub002/internal/parse"
	"github.com/rifters/RiftedReader-sub002/pkg/iojson"
)

type LsCmd struct {
	flags *Flags

	// flags
	jsonOutput bool
}

// NewLsCmd creates a new ls command
func NewLsCmd(flags *Flags) *LsCmd {
	return &LsCmd{flags: flags}
}

// Register adds the ls command to the application
func (cmd *LsCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "ls",
		Usage:     "List books in the library",
		UsageText: "rifted ls [--json]",
		Description: `Displays a table of the Markdown books found under the configured library
paths, with reading progress where a saved position exists.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &cmd.jsonOutput,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *LsCmd) run(ctx context.Context, c *cli.Command) error {
	refs, err := parse.Scan(cmd.flags.Config.Library.Paths)
	if err != nil {
		return fmt.Errorf("scan library: %w", err)
	}
	if len(refs) == 0 {
		if !cmd.jsonOutput {
			fmt.Fprintf(os.Stderr, "No books found under %v\n", cmd.flags.Config.Library.Paths)
		}
		return nil
	}

	database, err := db.Open(cmd.flags.Config.DataDir)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() { _ = database.Close() }()

	positions := stores.NewPositionStore(database)
	readingLog := stores.NewReadingLogStore(database)

	out := c.Root().Writer

	if cmd.jsonOutput {
		for _, ref := range refs {
			if err := iojson.WriteLine(out, cmd.buildBookInfo(ctx, ref, positions, readingLog)); err != nil {
				return fmt.Errorf("encode book: %w", err)
			}
		}
		return nil
	}

	titleWidth := titleColumnWidth()

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "TITLE\tPROGRESS\tLAST READ\tPATH")
	for _, ref := range refs {
		info := cmd.buildBookInfo(ctx, ref, positions, readingLog)
		title := runewidth.Truncate(info.Title, titleWidth, "…")
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", title, progressLabel(info), lastReadLabel(info), info.Path)
	}
	return w.Flush()
}

// titleColumnWidth caps the title column so the table fits a narrow terminal.
func titleColumnWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 40
	}
	if w := width / 3; w >= 10 {
		return w
	}
	return 10
}

// bookInfo is the JSON output format for rifted ls --json.
type bookInfo struct {
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	Path      string     `json:"path"`
	Window    int        `json:"window"`
	Page      int        `json:"page"`
	Started   bool       `json:"started"`
	Completed bool       `json:"completed"`
	LastRead  *time.Time `json:"last_read,omitempty"`
}

func (cmd *LsCmd) buildBookInfo(ctx context.Context, ref parse.BookRef, positions *stores.PositionStore, readingLog *stores.ReadingLogStore) bookInfo {
	info := bookInfo{
		ID:    ref.ID,
		Title: ref.Title,
		Path:  ref.Path,
	}

	pos, err := positions.Get(ctx, ref.ID)
	if err == nil {
		info.Started = true
		info.Window = pos.WindowID
		info.Page = pos.Page
		info.Completed = pos.Completed
	} else if !errors.Is(err, stores.ErrNotFound) {
		return info
	}

	if opened, err := readingLog.LastOpened(ctx, ref.ID); err == nil {
		info.LastRead = &opened
	}
	return info
}

func progressLabel(info bookInfo) string {
	switch {
	case info.Completed:
		return "finished"
	case info.Started:
		return fmt.Sprintf("window %d, page %d", info.Window+1, info.Page+1)
	default:
		return "-"
	}
}

func lastReadLabel(info bookInfo) string {
	if info.LastRead == nil {
		return "-"
	}
	return info.LastRead.Format("2006-01-02 15:04")
}
