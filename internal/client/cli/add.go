package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// AddOptions holds flags for the add command.
type AddOptions struct {
	*RootOptions
	Text   string
	Image  string
	NoSync bool
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AddOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Capture a note",
		Long: `Store a photo note in the local queue as pending and try to deliver it.

If --text is not given and stdin is a terminal, the text is prompted for.
Delivery failures are not errors: the note stays pending for a later sync.

Example:
  snapnote add --image ./receipt.jpg --text "lunch"
  snapnote add --image ./whiteboard.jpg --no-sync`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd, func(ctx context.Context, a *App) error {
				return a.addNote(ctx, cmd, opts)
			})
		},
	}

	cmd.Flags().StringVarP(&opts.Text, "text", "t", "", "note text")
	cmd.Flags().StringVarP(&opts.Image, "image", "i", "", "path to the photo (required)")
	cmd.Flags().BoolVar(&opts.NoSync, "no-sync", false, "only queue the note, do not try to deliver it")
	_ = cmd.MarkFlagRequired("image")

	return cmd
}

func (a *App) addNote(ctx context.Context, cmd *cobra.Command, opts *AddOptions) error {
	image, err := os.ReadFile(opts.Image)
	if err != nil {
		return fmt.Errorf("error reading image: %w", err)
	}

	out := cmd.OutOrStdout()

	text := opts.Text
	if !cmd.Flags().Changed("text") && stdinIsTerminal(cmd.InOrStdin()) {
		text, err = GetMultiline(bufio.NewReader(cmd.InOrStdin()), "Note text", out)
		if err != nil {
			return err
		}
	}

	n, err := a.notes.Add(ctx, text, image)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Saved note %s (pending)\n", n.ID)

	if opts.NoSync {
		return nil
	}

	res, ran, err := a.agent.Drain(ctx)
	if err != nil {
		return err
	}
	if ran {
		fmt.Fprintf(out, "Synced %d of %d attempted\n", res.Synced, res.Attempted)
	}
	return nil
}
