// Package serverrun exposes the Run entrypoint used by the CLI to start the
// reference gateway: a Pebble store under the data dir served over gRPC,
// with shutdown on context cancellation or SIGINT/SIGTERM.
//
// Example:
//
//	cfg := config.Default()
//	cfg.Server.DataDir = "./data"
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	_ = serverrun.Run(ctx, serverrun.Options{Config: cfg})
package serverrun
