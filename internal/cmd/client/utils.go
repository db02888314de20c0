package client

import (
	"encoding/base64"
	"encoding/json"
	"os"
	"regexp"
	"unicode/utf8"

	"github.com/spf13/cobra"

	cfgpkg "github.com/rzbill/segstream/internal/config"
	"github.com/rzbill/segstream/pkg/segstream"
)

// loadConfig reads SEGSTREAM_CONFIG (if set) and overlays SEGSTREAM_*
// variables and the --endpoint flag.
func loadConfig(cmd *cobra.Command) (cfgpkg.Config, error) {
	cfg, err := cfgpkg.Load(os.Getenv("SEGSTREAM_CONFIG"))
	if err != nil {
		return cfgpkg.Config{}, err
	}
	cfgpkg.FromEnv(&cfg)
	if f := cmd.Flags().Lookup("endpoint"); f != nil && f.Changed {
		cfg.Endpoint = f.Value.String()
	}
	return cfg, cfg.Validate()
}

// withClient dials the gateway named by the config and closes the client
// when fn returns.
func withClient(cmd *cobra.Command, fn func(cfgpkg.Config, *segstream.Client) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	c, err := segstream.Dial(cfg.Endpoint,
		segstream.WithLogger(cfg.Logger()),
		segstream.WithMaxEventSize(cfg.MaxEventSize),
		segstream.WithNamePattern(regexp.MustCompile(cfg.NameRegex)),
	)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()
	return fn(cfg, c)
}

// scopeStream returns --scope and --stream, falling back to the config.
func scopeStream(cmd *cobra.Command, cfg cfgpkg.Config) (string, string) {
	scope, _ := cmd.Flags().GetString("scope")
	stream, _ := cmd.Flags().GetString("stream")
	if scope == "" {
		scope = cfg.Scope
	}
	if stream == "" {
		stream = cfg.Stream
	}
	return scope, stream
}

func addStreamFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("scope", "s", "", "Scope (default from config)")
	cmd.Flags().String("stream", "", "Stream (default from config)")
}

// decodedEvent returns a map with the event position and one of
// payload_json, payload_text, or payload_b64.
func decodedEvent(ev segstream.Event) map[string]any {
	out := map[string]any{
		"segment": ev.Segment.String(),
		"offset":  ev.Offset,
		"size":    len(ev.Payload),
		"pointer": ev.Pointer.String(),
		"cut":     ev.Cut.String(),
	}
	payload := ev.Payload
	// Try JSON first if it looks like JSON
	if len(payload) > 0 && (payload[0] == '{' || payload[0] == '[') {
		var v any
		if json.Unmarshal(payload, &v) == nil {
			out["payload_json"] = v
			return out
		}
	}
	if utf8.Valid(payload) {
		out["payload_text"] = string(payload)
		return out
	}
	out["payload_b64"] = base64.StdEncoding.EncodeToString(payload)
	return out
}
