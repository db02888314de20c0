package serverrun

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	cfgpkg "github.com/rzbill/segstream/internal/config"
	logpkg "github.com/rzbill/segstream/pkg/log"
	"github.com/rzbill/segstream/pkg/segstream"
)

func TestStoreDirFallback(t *testing.T) {
	tests := []struct {
		name    string
		dataDir string
		want    string
	}{
		{name: "provided data dir", dataDir: "/custom/data", want: "/custom/data/store"},
		{name: "empty uses default", dataDir: "", want: filepath.Join(cfgpkg.DefaultDataDir(), "store")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := storeDir(tt.dataDir); got != tt.want {
				t.Fatalf("storeDir(%q) = %q, want %q", tt.dataDir, got, tt.want)
			}
		})
	}
}

func TestRunRejectsBadConfig(t *testing.T) {
	cfg := cfgpkg.Default()
	cfg.Server.DataDir = t.TempDir()
	cfg.Server.Fsync = "sometimes"
	if err := Run(context.Background(), Options{Config: cfg, Logger: logpkg.NewNopLogger()}); err == nil {
		t.Fatal("expected error for bad fsync mode")
	}
	cfg = cfgpkg.Default()
	cfg.MaxEventSize = 0
	if err := Run(context.Background(), Options{Config: cfg, Logger: logpkg.NewNopLogger()}); err == nil {
		t.Fatal("expected error for bad max event size")
	}
}

func TestRunServesUntilCancelled(t *testing.T) {
	cfg := cfgpkg.Default()
	cfg.Server.DataDir = t.TempDir()
	cfg.Server.Fsync = "never"
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, Options{Config: cfg, Logger: logpkg.NewNopLogger(), Listener: l}) }()

	c, err := segstream.Dial(l.Addr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer c.Close()
	callCtx, callCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer callCancel()
	created, err := c.CreateScope(callCtx, "myscope")
	if err != nil || !created {
		t.Fatalf("create scope = %v, %v", created, err)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if _, err := os.Stat(filepath.Join(cfg.Server.DataDir, "store")); err != nil {
		t.Fatalf("store dir: %v", err)
	}
}
