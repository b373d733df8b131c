package cli

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"prysma/internal/config"
	"prysma/internal/web"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

func newWebCmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "web",
		Short: "Serve the layout API, live SSE stream and card preview",
		Long: strings.TrimSpace(`
Serve the card layout over HTTP:
- JSON endpoints for adding, editing, removing, reordering and dropping sections
- a server-sent-events stream (datastar signals) per user
- a rendered HTML preview at /users/{userId}/card

With PRYSMA_AUTH_MODE=token every /users/{userId}/... request needs a session token for that
user (see ` + "`prysma token issue`" + `).
`),
		Example: strings.TrimSpace(`
# Serve on localhost
prysma web --addr 127.0.0.1:8787

# Require session tokens
PRYSMA_AUTH_MODE=token prysma web
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			listenAddr := strings.TrimSpace(addr)
			if listenAddr == "" {
				listenAddr = app.Config.Addr
			}
			if listenAddr == "" {
				return writeErr(cmd, errors.New("web: missing --addr"))
			}

			st, cfg, err := openStore(cmd.Context(), app)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer st.Close()

			var secret []byte
			if app.Config.AuthMode == config.AuthToken {
				if secret, err = sessionSecret(app, cfg); err != nil {
					return writeErr(cmd, err)
				}
			}

			srv, err := web.NewServer(web.ServerConfig{
				Addr:          listenAddr,
				AuthMode:      app.Config.AuthMode,
				SessionSecret: secret,
				WriteDebounce: app.Config.WriteDebounce,
				WriteTimeout:  app.Config.WriteTimeout,
				Logger:        app.Log,
			}, st)
			if err != nil {
				return writeErr(cmd, err)
			}

			ln, err := net.Listen("tcp", listenAddr)
			if err != nil {
				return writeErr(cmd, err)
			}
			actualAddr := ln.Addr().String()
			url := "http://" + actualAddr + "/"

			_ = writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"addr":      actualAddr,
					"url":       url,
					"authMode":  app.Config.AuthMode,
					"db":        st.Path(),
					"startedAt": time.Now().UTC().Format(time.RFC3339Nano),
				},
				"_hints": []string{"curl " + url + "catalog"},
			})
			fmt.Fprintf(cmd.ErrOrStderr(), "Prysma web running at %s (auth=%s)\n", url, app.Config.AuthMode)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if err := serve(ctx, app.Log, ln, srv); err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Bind address (host:port or :port; default PRYSMA_ADDR)")
	return cmd
}

// serve runs the HTTP server until ctx is done, then drains requests and flushes layout writes.
func serve(ctx context.Context, log *zap.Logger, ln net.Listener, srv *web.Server) error {
	baseCtx, cancelBase := context.WithCancel(context.Background())
	defer cancelBase()
	hs := &http.Server{
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
	}
	// SSE streams only end when their request context does.
	hs.RegisterOnShutdown(cancelBase)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := hs.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := hs.Shutdown(sctx); err != nil {
			_ = hs.Close()
		}
		return srv.Close(sctx)
	})
	return g.Wait()
}
