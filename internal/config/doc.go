// Package config loads segstream configuration: built-in defaults, an
// optional JSON file, then SEGSTREAM_* environment overrides.
//
//	cfg, err := config.Load(path)
//	if err != nil { ... }
//	config.FromEnv(&cfg)
//	if err := cfg.Validate(); err != nil { ... }
//	logger := cfg.Logger()
package config
