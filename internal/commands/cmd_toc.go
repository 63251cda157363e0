package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/rifters/RiftedReader-sub002/internal/parse"
)

type TocCmd struct {
	flags *Flags
}

// NewTocCmd creates a new toc command
func NewTocCmd(flags *Flags) *TocCmd {
	return &TocCmd{flags: flags}
}

// Register adds the toc command to the application
func (cmd *TocCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "toc",
		Usage:     "Print a book's table of contents",
		UsageText: "rifted toc <book path>",
		Action:    cmd.run,
	})
	return app
}

func (cmd *TocCmd) run(ctx context.Context, c *cli.Command) error {
	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("usage: rifted toc <book path>")
	}

	doc, err := parse.Open(path)
	if err != nil {
		return err
	}

	out := c.Root().Writer
	_, _ = fmt.Fprintln(out, doc.Title)
	for _, entry := range doc.TOC {
		indent := strings.Repeat("  ", entry.Level)
		_, _ = fmt.Fprintf(out, "%s%s\n", indent, entry.Title)
	}
	return nil
}
