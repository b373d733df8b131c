package cli

import (
	"context"
	"strings"
	"time"

	"prysma/internal/layout"
	"prysma/internal/store"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const closeTimeout = 10 * time.Second

// openStore resolves the database path (--db, then PRYSMA_DB_PATH, then config.json, then
// ~/.prysma/prysma.sqlite) and opens it.
func openStore(ctx context.Context, app *App) (*store.Store, *store.LocalConfig, error) {
	cfg, err := store.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	path := strings.TrimSpace(app.DBPath)
	if path == "" {
		path = strings.TrimSpace(app.Config.DBPath)
	}
	if path == "" {
		path, err = store.DefaultDBPath(cfg)
		if err != nil {
			return nil, nil, err
		}
	}
	st, err := store.Open(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	return st, cfg, nil
}

func currentUserID(app *App, cfg *store.LocalConfig) (string, error) {
	if id := strings.TrimSpace(app.UserID); id != "" {
		return id, nil
	}
	if cfg != nil && strings.TrimSpace(cfg.CurrentUserID) != "" {
		return strings.TrimSpace(cfg.CurrentUserID), nil
	}
	return "", errNoCurrentUser
}

// layoutSession is a store plus a controller loaded for the current user.
type layoutSession struct {
	store *store.Store
	ctrl  *layout.Controller
	user  string
}

func openLayout(ctx context.Context, app *App) (*layoutSession, error) {
	st, cfg, err := openStore(ctx, app)
	if err != nil {
		return nil, err
	}
	userID, err := currentUserID(app, cfg)
	if err != nil {
		_ = st.Close()
		return nil, err
	}
	if _, err := st.GetProfile(ctx, userID); err != nil {
		_ = st.Close()
		if errors.Is(err, store.ErrNotFound) {
			return nil, errNotFound("user", userID)
		}
		return nil, err
	}

	ctrl := layout.New(st,
		layout.WithLogger(app.Log.With(zap.String("user", userID))),
		layout.WithDebounce(app.Config.WriteDebounce),
		layout.WithWriteTimeout(app.Config.WriteTimeout),
	)
	if s := ctrl.Load(ctx, userID); s.Err != nil {
		_ = st.Close()
		return nil, s.Err
	}
	return &layoutSession{store: st, ctrl: ctrl, user: userID}, nil
}

// close flushes queued writes and reports the last save failure, if any.
func (s *layoutSession) close() error {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	err := s.ctrl.Close(ctx)
	if err == nil {
		err = s.ctrl.Err()
	}
	if cerr := s.store.Close(); err == nil {
		err = cerr
	}
	return err
}

// commit flushes after a mutation; the returned state reflects the write result.
func (s *layoutSession) commit() (layout.State, error) {
	if err := s.close(); err != nil {
		return s.ctrl.State(), errors.Wrap(err, "save layout")
	}
	return s.ctrl.State(), nil
}
