package cli

import (
	"fmt"

	"prysma/internal/publish"
	"prysma/internal/render"

	"github.com/atotto/clipboard"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var writeClipboard = clipboard.WriteAll

func newCardCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "card",
		Short: "Render the current user's card",
	}
	cmd.AddCommand(newCardShowCmd(app))
	cmd.AddCommand(newCardExportCmd(app))
	return cmd
}

func newCardExportCmd(app *App) *cobra.Command {
	var to string
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write card.md, card.html and sections.json under --to/<user-id>/",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openLayout(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			title := s.user
			if p, err := s.store.GetProfile(cmd.Context(), s.user); err == nil && p.DisplayName != "" {
				title = p.DisplayName
			}
			st := s.ctrl.State()
			if err := s.close(); err != nil {
				return writeErr(cmd, err)
			}

			res, err := publish.WriteCard(st, to, publish.WriteOptions{Overwrite: overwrite, Title: title})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": res})
		},
	}

	cmd.Flags().StringVar(&to, "to", "", "Output directory")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace existing files")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newCardShowCmd(app *App) *cobra.Command {
	var renderTerm bool
	var asHTML bool
	var width int
	var copyOut bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the card as markdown (or rendered for the terminal / as HTML)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if renderTerm && asHTML {
				return writeErr(cmd, errors.New("use only one of --render or --html"))
			}
			s, err := openLayout(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			st := s.ctrl.State()
			if err := s.close(); err != nil {
				return writeErr(cmd, err)
			}

			md := render.Markdown(st)
			if copyOut {
				if err := writeClipboard(md); err != nil {
					return writeErr(cmd, errors.Wrap(err, "copy to clipboard"))
				}
			}
			switch {
			case renderTerm:
				_, err = fmt.Fprint(cmd.OutOrStdout(), render.Terminal(md, width))
			case asHTML:
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(render.HTML(md)))
			default:
				return writeOut(cmd, app, map[string]any{
					"data": map[string]any{"userId": s.user, "markdown": md, "copied": copyOut},
				})
			}
			if err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&renderTerm, "render", false, "Render markdown for the terminal")
	cmd.Flags().BoolVar(&asHTML, "html", false, "Print HTML instead of markdown")
	cmd.Flags().IntVar(&width, "width", 80, "Wrap width for --render")
	cmd.Flags().BoolVar(&copyOut, "copy", false, "Also copy the markdown to the clipboard")
	return cmd
}
