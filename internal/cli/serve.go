package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/kintreehq/kintree/internal/server"
	"github.com/kintreehq/kintree/pkg/config"
	"github.com/kintreehq/kintree/pkg/family"
	"github.com/kintreehq/kintree/pkg/layout"
	"github.com/kintreehq/kintree/pkg/photos"
)

const shutdownTimeout = 10 * time.Second

// newServeCmd creates the serve command, which runs the REST API. The
// listener address, store, cache, and photo storage are taken from the
// config file and KINTREE_* environment variables.
func newServeCmd(configPath *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the family tree REST API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "listen address (overrides config)")

	return cmd
}

func runServe(ctx context.Context, cfg config.Config) error {
	logger := loggerFromContext(ctx)

	st, err := openStore(ctx, cfg.Store, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			logger.Warn("store close failed", "err", err)
		}
	}()

	c := openCache(ctx, cfg.Cache, logger)
	defer c.Close() //nolint:errcheck

	blobs := openBlobs(ctx, cfg.Photos, logger)
	defer blobs.Close() //nolint:errcheck

	fam := family.NewService(st, logger)
	gallery := photos.NewService(st, blobs, logger)
	engine := layout.NewEngine(cfg.Layout, logger)
	ttl := time.Duration(cfg.Cache.TTLSecs) * time.Second

	srv := server.New(fam, gallery, engine, c, ttl, logger)
	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Server.Addr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}
