package cli

import (
	"encoding/json"
	"os"
	"strings"

	"prysma/internal/layout"
	"prysma/internal/model"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newSectionsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sections",
		Aliases: []string{"section"},
		Short:   "Edit the current user's card sections",
	}

	cmd.AddCommand(newSectionsListCmd(app))
	cmd.AddCommand(newSectionsAddCmd(app))
	cmd.AddCommand(newSectionsRemoveCmd(app))
	cmd.AddCommand(newSectionsReorderCmd(app))
	cmd.AddCommand(newSectionsMoveCmd(app))
	cmd.AddCommand(newSectionsEditCmd(app))
	cmd.AddCommand(newSectionsDropCmd(app))

	return cmd
}

func newSectionsListCmd(app *App) *cobra.Command {
	var area string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sections (card first, then social bar)",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openLayout(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			st := s.ctrl.State()
			if err := s.close(); err != nil {
				return writeErr(cmd, err)
			}

			var out []model.Section
			switch model.Area(strings.TrimSpace(area)) {
			case "":
				out = st.Sections()
			case model.AreaMain:
				out = st.Card
			case model.AreaSocialBar:
				out = st.SocialBar
			default:
				return writeErr(cmd, errors.Errorf("invalid --area %q (expected main|social_bar)", area))
			}
			hints := []string{}
			if len(out) == 0 {
				hints = append(hints, "prysma catalog list --available", "prysma sections add <type>")
			}
			return writeOut(cmd, app, map[string]any{
				"data":   out,
				"meta":   map[string]any{"userId": s.user, "count": len(out)},
				"_hints": hints,
			})
		},
	}

	cmd.Flags().StringVar(&area, "area", "", "Only list one area (main|social_bar)")
	return cmd
}

func newSectionsAddCmd(app *App) *cobra.Command {
	var title string

	cmd := &cobra.Command{
		Use:   "add <type>",
		Short: "Add a section of a catalog type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openLayout(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			sec, _, err := s.ctrl.Add(args[0])
			if err == nil && cmd.Flags().Changed("title") {
				_, err = s.ctrl.Update(sec.ID, layout.Patch{Title: &title})
				sec.Title = title
			}
			if err != nil {
				_ = s.close()
				return writeErr(cmd, err)
			}
			st, err := s.commit()
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data":   map[string]any{"section": sec, "state": st},
				"_hints": []string{"prysma sections edit " + sec.ID + " --value '<json>'"},
			})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Section title (default: catalog name)")
	return cmd
}

func newSectionsRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <section-id>",
		Aliases: []string{"rm"},
		Short:   "Remove a section (unknown ids are a no-op)",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openLayout(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			s.ctrl.Remove(args[0])
			st, err := s.commit()
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": st})
		},
	}
}

func newSectionsReorderCmd(app *App) *cobra.Command {
	var from int
	var to int

	cmd := &cobra.Command{
		Use:   "reorder",
		Short: "Move the section at --from to --to in the combined list",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openLayout(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if _, err := s.ctrl.Reorder(from, to); err != nil {
				_ = s.close()
				return writeErr(cmd, err)
			}
			st, err := s.commit()
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": st})
		},
	}

	cmd.Flags().IntVar(&from, "from", 0, "Current index")
	cmd.Flags().IntVar(&to, "to", 0, "Target index")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newSectionsMoveCmd(app *App) *cobra.Command {
	var area string
	var index int

	cmd := &cobra.Command{
		Use:   "move <section-id>",
		Short: "Place a section at --index within --area",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openLayout(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if _, err := s.ctrl.Move(args[0], model.Area(strings.TrimSpace(area)), index); err != nil {
				_ = s.close()
				return writeErr(cmd, err)
			}
			st, err := s.commit()
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": st})
		},
	}

	cmd.Flags().StringVar(&area, "area", string(model.AreaMain), "Target area (main|social_bar)")
	cmd.Flags().IntVar(&index, "index", -1, "Position within the area (-1 appends)")
	return cmd
}

func newSectionsEditCmd(app *App) *cobra.Command {
	var title string
	var value string
	var valueFile string

	cmd := &cobra.Command{
		Use:   "edit <section-id>",
		Short: "Change a section's title and/or value",
		Example: strings.TrimSpace(`
prysma sections edit <id> --title "About me"
prysma sections edit <id> --value '"Hello there"'
prysma sections edit <id> --value-file projects.json
`),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if value != "" && valueFile != "" {
				return writeErr(cmd, errors.New("use only one of --value or --value-file"))
			}
			raw := []byte(value)
			if valueFile != "" {
				b, err := os.ReadFile(valueFile)
				if err != nil {
					return writeErr(cmd, err)
				}
				raw = b
			}
			if !cmd.Flags().Changed("title") && len(raw) == 0 {
				return writeErr(cmd, errors.New("nothing to edit (pass --title, --value or --value-file)"))
			}

			s, err := openLayout(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := editSection(s.ctrl, args[0], cmd.Flags().Changed("title"), title, raw); err != nil {
				_ = s.close()
				return writeErr(cmd, err)
			}
			st, err := s.commit()
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": st})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&value, "value", "", "New value as JSON (shape depends on the section type)")
	cmd.Flags().StringVar(&valueFile, "value-file", "", "Read the new value (JSON) from a file")
	return cmd
}

func editSection(c *layout.Controller, id string, setTitle bool, title string, raw []byte) error {
	var sec *model.Section
	for _, x := range c.Sections() {
		if x.ID == strings.TrimSpace(id) {
			sec = &x
			break
		}
	}
	if sec == nil {
		return errNotFound("section", id)
	}

	var p layout.Patch
	if setTitle {
		p.Title = &title
	}
	if len(raw) > 0 {
		v, err := model.DecodeValue(model.KindForType(sec.Type), json.RawMessage(raw))
		if err != nil {
			return errors.Wrap(err, "decode --value")
		}
		p.Value = v
	}
	_, err := c.Update(sec.ID, p)
	return err
}

func newSectionsDropCmd(app *App) *cobra.Command {
	var id string
	var typ string
	var target string
	var index int

	cmd := &cobra.Command{
		Use:   "drop",
		Short: "Apply a drag-and-drop: drop a section (--id) or catalog type (--type) on an area",
		Long: strings.TrimSpace(`
Apply the same drop rules as the editor and web UI:
- a non-social type dropped on the social bar is ignored
- a social type dropped on the main card goes to the end of the social bar
- otherwise a catalog type is added at --index and a section is moved there
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			ev := layout.DragEvent{
				SectionID:   id,
				CatalogType: typ,
				Target:      model.Area(strings.TrimSpace(target)),
			}
			if cmd.Flags().Changed("index") {
				ev.Index = &index
			}

			s, err := openLayout(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			res, _, err := s.ctrl.DragEnd(ev)
			if err != nil {
				_ = s.close()
				return writeErr(cmd, err)
			}
			st, err := s.commit()
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"result": res, "state": st}})
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Existing section id")
	cmd.Flags().StringVar(&typ, "type", "", "Catalog type")
	cmd.Flags().StringVar(&target, "target", string(model.AreaMain), "Drop target (main|social_bar)")
	cmd.Flags().IntVar(&index, "index", 0, "Position within the target (default: append)")
	cmd.MarkFlagsMutuallyExclusive("id", "type")
	cmd.MarkFlagsOneRequired("id", "type")
	return cmd
}
