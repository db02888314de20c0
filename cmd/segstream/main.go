package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	clientcmd "github.com/rzbill/segstream/internal/cmd/client"
	serverrun "github.com/rzbill/segstream/internal/cmd/server"
	cfgpkg "github.com/rzbill/segstream/internal/config"
	logpkg "github.com/rzbill/segstream/pkg/log"
)

func main() {
	// CLI logger; SEGSTREAM_LOG_LEVEL and SEGSTREAM_LOG_FORMAT apply here too
	cfg := cfgpkg.Default()
	cfgpkg.FromEnv(&cfg)
	logpkg.RedirectStdLog(cfg.Logger())

	rootCmd := &cobra.Command{
		Use:          "segstream",
		Short:        "segstream CLI",
		Long:         "segstream talks to a segmented event-stream gateway and can run a single-node reference gateway.",
		SilenceUsage: true,
	}

	serverCmd := &cobra.Command{Use: "server", Short: "Server commands"}
	serverCmd.AddCommand(newServerStartCommand())
	rootCmd.AddCommand(serverCmd)
	clientcmd.AddCommands(rootCmd)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		cancel()
		os.Exit(1)
	}
}

func newServerStartCommand() *cobra.Command {
	startCmd := &cobra.Command{
		Use:     "start",
		Short:   "Start the reference gateway (gRPC)",
		Aliases: []string{"run"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := cfgpkg.Load(os.Getenv("SEGSTREAM_CONFIG"))
			if err != nil {
				return err
			}
			cfgpkg.FromEnv(&cfg)

			flags := cmd.Flags()
			if flags.Changed("data-dir") {
				cfg.Server.DataDir, _ = flags.GetString("data-dir")
			}
			if flags.Changed("listen") {
				cfg.Server.ListenAddr, _ = flags.GetString("listen")
			}
			if flags.Changed("fsync") {
				cfg.Server.Fsync, _ = flags.GetString("fsync")
			}
			if flags.Changed("fsync-interval-ms") {
				cfg.Server.FsyncIntervalMs, _ = flags.GetInt("fsync-interval-ms")
			}
			if flags.Changed("log-level") {
				cfg.Log.Level, _ = flags.GetString("log-level")
			}
			if flags.Changed("log-format") {
				cfg.Log.Format, _ = flags.GetString("log-format")
			}
			if flags.Changed("max-event-size") {
				cfg.MaxEventSize, _ = flags.GetInt("max-event-size")
			}

			if err := serverrun.Run(cmd.Context(), serverrun.Options{Config: cfg}); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		},
	}
	startCmd.Flags().String("data-dir", "", "Data directory (if not specified, uses OS-specific application data directory)")
	startCmd.Flags().String("listen", ":9090", "gRPC listen address")
	startCmd.Flags().String("fsync", "interval", "Fsync mode: always|interval|never")
	startCmd.Flags().Int("fsync-interval-ms", 5, "When --fsync=interval, group-commit window in ms")
	startCmd.Flags().String("log-level", "info", "Log level: debug|info|warn|error")
	startCmd.Flags().String("log-format", "text", "Log format: text|json")
	startCmd.Flags().Int("max-event-size", 1<<20, "Largest accepted event payload in bytes")
	return startCmd
}
