package cli

import (
	"strings"
	"time"

	"prysma/internal/store"
	"prysma/internal/web"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newTokenCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue and inspect web session tokens",
	}
	cmd.AddCommand(newTokenIssueCmd(app))
	cmd.AddCommand(newTokenVerifyCmd(app))
	return cmd
}

func newTokenIssueCmd(app *App) *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue a session token for the current user",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, cfg, err := openStore(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()

			userID, err := currentUserID(app, cfg)
			if err != nil {
				return writeErr(cmd, err)
			}
			if _, err := st.GetProfile(cmd.Context(), userID); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return writeErr(cmd, errNotFound("user", userID))
				}
				return writeErr(cmd, err)
			}
			secret, err := sessionSecret(app, cfg)
			if err != nil {
				return writeErr(cmd, err)
			}
			if ttl <= 0 {
				ttl = app.Config.SessionTTL
			}
			tok, claims, err := web.IssueToken(secret, userID, ttl)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"token":     tok,
					"userId":    claims.UserID,
					"expiresAt": claims.ExpiresAt.UTC().Format(time.RFC3339),
				},
				"_hints": []string{"curl -H 'Authorization: Bearer " + tok + "' http://" + app.Config.Addr + "/users/" + userID + "/layout"},
			})
		},
	}

	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime (default PRYSMA_SESSION_TTL)")
	return cmd
}

func newTokenVerifyCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <token>",
		Short: "Verify a session token and print its claims",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := store.LoadConfig()
			if err != nil {
				return writeErr(cmd, err)
			}
			secret, err := sessionSecret(app, cfg)
			if err != nil {
				return writeErr(cmd, err)
			}
			claims, err := web.VerifyToken(secret, strings.TrimSpace(args[0]))
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"userId":    claims.UserID,
					"expiresAt": claims.ExpiresAt.UTC().Format(time.RFC3339),
				},
			})
		},
	}
}

// sessionSecret prefers PRYSMA_SESSION_SECRET, then config.json, and otherwise generates and
// stores a new one.
func sessionSecret(app *App, cfg *store.LocalConfig) ([]byte, error) {
	if s := strings.TrimSpace(app.Config.SessionSecret); s != "" {
		return []byte(s), nil
	}
	if s := strings.TrimSpace(cfg.SessionSecret); s != "" {
		return []byte(s), nil
	}
	s, err := web.NewSecret()
	if err != nil {
		return nil, err
	}
	cfg.SessionSecret = s
	if err := store.SaveConfig(cfg); err != nil {
		return nil, errors.Wrap(err, "save session secret")
	}
	return []byte(s), nil
}
