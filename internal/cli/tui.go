package cli

import (
	"prysma/internal/store"
	"prysma/internal/tui"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newTUICmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive card editor",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, app)
		},
	}
}

func runTUI(cmd *cobra.Command, app *App) error {
	s, err := openLayout(cmd.Context(), app)
	if err != nil {
		return writeErr(cmd, err)
	}

	// Editor state is best effort: a broken tui_state.json never blocks the editor.
	uiState, err := store.LoadTUIState()
	if err != nil {
		app.Log.Warn("load tui state", zap.Error(err))
		uiState = &store.TUIState{Version: 1}
	}
	es := uiState.Editor(s.user)

	prefs, runErr := tui.Run(cmd.Context(), s.ctrl, tui.Prefs{
		Pane:       es.Pane,
		Preview:    es.ShowPreview,
		SelectedID: es.SelectedSectionID,
	})
	uiState.SetEditor(s.user, store.EditorState{
		Pane:              prefs.Pane,
		ShowPreview:       prefs.Preview,
		SelectedSectionID: prefs.SelectedID,
	})
	if err := store.SaveTUIState(uiState); err != nil {
		app.Log.Warn("save tui state", zap.Error(err))
	}

	if err := s.close(); err != nil && runErr == nil {
		runErr = err
	}
	if runErr != nil {
		return writeErr(cmd, runErr)
	}
	return nil
}
