package cli

import (
	"fmt"

	"prysma/internal/docs"
	"prysma/internal/render"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newDocsCmd(app *App) *cobra.Command {
	var raw bool
	var renderTerm bool

	cmd := &cobra.Command{
		Use:   "docs [topic]",
		Short: "Show on-demand documentation",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return writeOut(cmd, app, map[string]any{"data": map[string]any{"topics": docs.Topics()}})
			}

			topic := args[0]
			body, ok := docs.Get(topic)
			if !ok {
				return writeErr(cmd, errors.Errorf("unknown docs topic: %q (run `prysma docs` to list topics)", topic))
			}

			switch {
			case renderTerm:
				_, err := fmt.Fprint(cmd.OutOrStdout(), render.Terminal(body, 100))
				return err
			case raw:
				_, err := fmt.Fprint(cmd.OutOrStdout(), body)
				return err
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"topic": topic, "markdown": body}})
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print raw markdown (no envelope)")
	cmd.Flags().BoolVar(&renderTerm, "render", false, "Render markdown for the terminal")
	return cmd
}
