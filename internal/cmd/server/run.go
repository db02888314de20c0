package serverrun

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	cfgpkg "github.com/rzbill/segstream/internal/config"
	"github.com/rzbill/segstream/internal/gateway"
	"github.com/rzbill/segstream/internal/runtime"
	pebblestore "github.com/rzbill/segstream/internal/storage/pebble"
	logpkg "github.com/rzbill/segstream/pkg/log"
)

type Options struct {
	Config cfgpkg.Config
	Logger logpkg.Logger
	// Listener overrides Config.Server.ListenAddr when set.
	Listener net.Listener
}

// storeDir is where the gateway keeps its Pebble store under the data dir.
func storeDir(dataDir string) string {
	if dataDir == "" {
		dataDir = cfgpkg.DefaultDataDir()
	}
	return filepath.Join(dataDir, "store")
}

// Run opens the store and serves the gateway until ctx is cancelled or the
// process receives SIGINT/SIGTERM.
func Run(ctx context.Context, opts Options) error {
	sctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	mode, err := pebblestore.ParseFsyncMode(cfg.Server.Fsync)
	if err != nil {
		return err
	}
	logger := opts.Logger
	if logger == nil {
		logger = cfg.Logger()
	}
	// Pebble and grpc-go both write through the standard library logger.
	logpkg.RedirectStdLog(logger)

	dir := storeDir(cfg.Server.DataDir)
	rt, err := runtime.Open(runtime.Options{
		DataDir:       dir,
		Fsync:         mode,
		FsyncInterval: time.Duration(cfg.Server.FsyncIntervalMs) * time.Millisecond,
		Config:        cfg,
		Logger:        logger,
	})
	if err != nil {
		return err
	}
	defer rt.Close()

	logger.Info("starting segstream gateway",
		logpkg.Str("data_dir", dir),
		logpkg.Str("fsync", cfg.Server.Fsync),
		logpkg.Int("max_event_size", cfg.MaxEventSize),
		logpkg.Str("level", cfg.Log.Level),
		logpkg.Str("format", cfg.Log.Format),
	)

	srv, err := gateway.New(rt, logger)
	if err != nil {
		return err
	}
	if opts.Listener != nil {
		err = srv.ServeContext(sctx, opts.Listener)
	} else {
		err = srv.ListenAndServe(sctx, cfg.Server.ListenAddr)
	}
	// Stop the server before the deferred runtime close.
	srv.Close()
	if err != nil && sctx.Err() == nil {
		return fmt.Errorf("gateway: %w", err)
	}
	logger.Info("segstream gateway stopped")
	return nil
}
