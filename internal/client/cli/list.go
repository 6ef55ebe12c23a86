package cli

import (
	"context"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

const maxTextColumn = 40

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored notes, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withApp(cmd, func(ctx context.Context, a *App) error {
				return a.list(ctx, cmd)
			})
		},
	}
}

func (a *App) list(ctx context.Context, cmd *cobra.Command) error {
	items, err := a.notes.List(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(items) == 0 {
		fmt.Fprintln(out, "No notes")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCREATED\tSTATUS\tIMAGE\tTEXT")
	for _, n := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d B\t%s\n",
			n.ID,
			time.UnixMilli(n.CreatedAt).Local().Format(time.DateTime),
			n.Status,
			len(n.Image),
			shorten(n.Text),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	pending, synced, err := a.notes.Counts(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%d pending, %d synced\n", pending, synced)
	return nil
}

func shorten(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= maxTextColumn {
		return s
	}
	return string(r[:maxTextColumn-3]) + "..."
}
