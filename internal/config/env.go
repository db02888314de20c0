package config

import (
	"os"
	"strconv"
)

// FromEnv overlays SEGSTREAM_* environment variables onto cfg. Values that
// fail to parse are ignored.
func FromEnv(cfg *Config) {
	str := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	str("SEGSTREAM_ENDPOINT", &cfg.Endpoint)
	str("SEGSTREAM_SCOPE", &cfg.Scope)
	str("SEGSTREAM_STREAM", &cfg.Stream)
	num("SEGSTREAM_MAX_EVENT_SIZE", &cfg.MaxEventSize)
	str("SEGSTREAM_NAME_REGEX", &cfg.NameRegex)
	str("SEGSTREAM_LOG_LEVEL", &cfg.Log.Level)
	str("SEGSTREAM_LOG_FORMAT", &cfg.Log.Format)
	str("SEGSTREAM_DATA_DIR", &cfg.Server.DataDir)
	str("SEGSTREAM_FSYNC", &cfg.Server.Fsync)
	num("SEGSTREAM_FSYNC_INTERVAL_MS", &cfg.Server.FsyncIntervalMs)
	str("SEGSTREAM_LISTEN_ADDR", &cfg.Server.ListenAddr)
}
