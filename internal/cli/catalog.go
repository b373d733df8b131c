package cli

import (
	"strings"

	"prysma/internal/catalog"
	"prysma/internal/layout"

	"github.com/spf13/cobra"
)

func newCatalogCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Browse the section catalog",
	}
	cmd.AddCommand(newCatalogListCmd(app))
	cmd.AddCommand(newCatalogShowCmd(app))
	return cmd
}

func newCatalogListCmd(app *App) *cobra.Command {
	var available bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List section types grouped by category",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !available {
				return writeOut(cmd, app, map[string]any{"data": catalog.ListByCategory()})
			}
			s, err := openLayout(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			present := s.ctrl.PresentTypes()
			if err := s.close(); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": catalog.Available(present),
				"meta": map[string]any{"userId": s.user, "present": present},
			})
		},
	}

	cmd.Flags().BoolVar(&available, "available", false, "Hide types the current user's card already has")
	return cmd
}

func newCatalogShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <type>",
		Short: "Show one catalog entry and its defaults",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			typ := strings.TrimSpace(args[0])
			e, ok := catalog.Lookup(typ)
			if !ok {
				return writeErr(cmd, errNotFound("section type", typ))
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"entry":        e,
					"defaults":     defaultsOut(catalog.DefaultsFor(typ)),
					"validTargets": layout.ValidTargets(typ),
				},
			})
		},
	}
}

func defaultsOut(d catalog.Defaults) map[string]any {
	return map[string]any{
		"title":           d.Title,
		"value":           d.Value,
		"editorComponent": d.EditorComponent,
	}
}
