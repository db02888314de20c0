// Package log provides segstream's structured logging facade.
//
// # Overview
//
// The package exposes a small Logger interface with leveled methods and a
// Field type for structured context. It is backed by the standard library
// slog text and JSON handlers, so output stays consistent between the CLI,
// the reference gateway and the client engine.
//
// Quick start
//
//	l := log.NewLogger(
//	    log.WithLevel(log.InfoLevel),
//	    log.WithFormat(log.FormatText),
//	)
//	l = l.With(log.Component("writer"), log.Str("scope", "myscope"))
//	l.Info("writer opened", log.Int("events", 20))
//
// Library code defaults to NewNopLogger so embedding applications decide
// where logs go.
//
// # Interop
//
// BaseLogger satisfies Pebble's Logger contract (Infof/Fatalf), so the same
// instance can be passed to the storage layer. RedirectStdLog routes the
// standard library log package through a Logger.
package log
