package cli

import (
	"strings"

	"prysma/internal/model"
	"prysma/internal/store"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newUsersCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "users",
		Aliases: []string{"user"},
		Short:   "Manage user profiles",
	}

	cmd.AddCommand(newUsersCreateCmd(app))
	cmd.AddCommand(newUsersListCmd(app))
	cmd.AddCommand(newUsersUseCmd(app))
	cmd.AddCommand(newUsersShowCmd(app))

	return cmd
}

func newUsersCreateCmd(app *App) *cobra.Command {
	var id string
	var name string
	var email string
	var use bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a profile (or update its name/email)",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, cfg, err := openStore(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()

			id = strings.TrimSpace(id)
			if id == "" {
				id = uuid.NewString()
			}
			p, err := st.EnsureProfile(cmd.Context(), model.Profile{ID: id, DisplayName: name, Email: email})
			if err != nil {
				return writeErr(cmd, err)
			}
			if use {
				cfg.CurrentUserID = p.ID
				if err := store.SaveConfig(cfg); err != nil {
					return writeErr(cmd, err)
				}
			}
			hints := []string{"prysma --user " + p.ID + " sections add bio"}
			if !use {
				hints = append(hints, "prysma users use "+p.ID)
			}
			return writeOut(cmd, app, map[string]any{"data": p, "_hints": hints})
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "User id (default: random uuid)")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Email")
	cmd.Flags().BoolVar(&use, "use", false, "Set as current user")
	return cmd
}

func newUsersListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, cfg, err := openStore(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()

			ps, err := st.ListProfiles(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": ps,
				"meta": map[string]any{"currentUserId": cfg.CurrentUserID, "count": len(ps)},
			})
		},
	}
}

func newUsersUseCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "use <user-id>",
		Short: "Set the current user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, cfg, err := openStore(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()

			id := strings.TrimSpace(args[0])
			p, err := st.GetProfile(cmd.Context(), id)
			if errors.Is(err, store.ErrNotFound) {
				return writeErr(cmd, errNotFound("user", id))
			}
			if err != nil {
				return writeErr(cmd, err)
			}
			cfg.CurrentUserID = p.ID
			if err := store.SaveConfig(cfg); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"currentUserId": p.ID}})
		},
	}
}

func newUsersShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "show [user-id]",
		Aliases: []string{"whoami"},
		Short:   "Show a profile (default: current user)",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, cfg, err := openStore(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()

			id := ""
			if len(args) == 1 {
				id = strings.TrimSpace(args[0])
			} else if id, err = currentUserID(app, cfg); err != nil {
				return writeErr(cmd, err)
			}
			p, err := st.GetProfile(cmd.Context(), id)
			if errors.Is(err, store.ErrNotFound) {
				return writeErr(cmd, errNotFound("user", id))
			}
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": p})
		},
	}
}
