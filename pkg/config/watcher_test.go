package config

import (
	"context"
	"os"
	"testing"
	"time"
)

func TestWatcherReloadsScalarTunables(t *testing.T) {
	resetSingleton()
	defer resetSingleton()

	path := writeConfigFile(t, `
listen:
  address: "127.0.0.1:3128"
dnsbl:
  enabled: false
  threshold: 1
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	SetConfig(cfg)

	w, err := NewWatcher(path, 20*time.Millisecond, nil)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Watch(ctx)
	defer w.Stop()

	// Give the watcher a moment to register the file before mutating it.
	time.Sleep(50 * time.Millisecond)

	if err := os.WriteFile(path, []byte(`
listen:
  address: "127.0.0.1:3128"
dnsbl:
  enabled: true
  threshold: 3
`), 0o600); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if GetConfig().DNSBL.Enabled && GetConfig().DNSBL.Threshold == 3 {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("expected DNSBL config to hot-reload")
}

func TestWatcherNeverChangesListenAddress(t *testing.T) {
	resetSingleton()
	defer resetSingleton()

	path := writeConfigFile(t, `
listen:
  address: "127.0.0.1:3128"
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	SetConfig(cfg)

	w, err := NewWatcher(path, 20*time.Millisecond, nil)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Watch(ctx)
	defer w.Stop()

	time.Sleep(50 * time.Millisecond)

	if err := os.WriteFile(path, []byte(`
listen:
  address: "0.0.0.0:9999"
`), 0o600); err != nil {
		t.Fatal(err)
	}

	time.Sleep(300 * time.Millisecond)
	if GetConfig().Listen.Address != "127.0.0.1:3128" {
		t.Errorf("expected listen address to stay pinned across reload, got %q", GetConfig().Listen.Address)
	}
}
