package cli

import (
	"fmt"
	"os"
	"strings"

	"prysma/internal/config"
	"prysma/internal/format"
	"prysma/internal/logging"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type App struct {
	DBPath     string
	UserID     string
	PrettyJSON bool
	Format     string
	Verbose    bool

	Config config.Config
	Log    *zap.Logger
}

func NewRootCmd() *cobra.Command {
	app := &App{Log: zap.NewNop()}

	cmd := &cobra.Command{
		Use:          "prysma",
		Short:        "Prysma card layout editor (CLI + TUI + web)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Create a profile and make it current
  prysma users create --id alice --name "Alice" --use

  # Start the interactive editor
  prysma

  # Scriptable edits
  prysma sections add bio
  prysma sections drop --type twitter --target main
  prysma card show --render
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive editor.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return writeErr(cmd, err)
		}
		app.Config = cfg
		log, err := logging.New(app.Verbose, cfg.LogEncoding)
		if err != nil {
			return writeErr(cmd, err)
		}
		app.Log = log
		return nil
	}
	cmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		logging.Sync(app.Log)
	}

	cmd.PersistentFlags().StringVar(&app.DBPath, "db", envOr("PRYSMA_DB_PATH", ""), "Path to the SQLite database (default ~/.prysma/prysma.sqlite)")
	cmd.PersistentFlags().StringVar(&app.UserID, "user", envOr("PRYSMA_USER", ""), "User id (overrides currentUserId in ~/.prysma/config.json)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("PRYSMA_FORMAT", format.JSON), "Output format ("+strings.Join(format.Formats(), "|")+")")
	cmd.PersistentFlags().BoolVarP(&app.Verbose, "verbose", "v", false, "Debug logging on stderr")

	cmd.AddCommand(newUsersCmd(app))
	cmd.AddCommand(newCatalogCmd(app))
	cmd.AddCommand(newSectionsCmd(app))
	cmd.AddCommand(newCardCmd(app))
	cmd.AddCommand(newTokenCmd(app))
	cmd.AddCommand(newWebCmd(app))
	cmd.AddCommand(newTUICmd(app))
	cmd.AddCommand(newDocsCmd(app))

	return cmd
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
