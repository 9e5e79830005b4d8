package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" || cfg.Server.Port != 8323 {
		t.Errorf("server = %s:%d, want 0.0.0.0:8323", cfg.Server.Host, cfg.Server.Port)
	}
	if cfg.Database.Path != "./data/bridgearr.db" {
		t.Errorf("database path = %q, want ./data/bridgearr.db", cfg.Database.Path)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "console" {
		t.Errorf("logging = %s/%s, want info/console", cfg.Logging.Level, cfg.Logging.Format)
	}
	if cfg.Notification.WebhookMethod != "POST" {
		t.Errorf("webhook method = %q, want POST", cfg.Notification.WebhookMethod)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9000
logging:
  level: debug
notification:
  webhook_url: http://hooks.local/bridgearr
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("port = %d, want 9000", cfg.Server.Port)
	}
	// Unset keys keep their defaults.
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("host = %q, want default 0.0.0.0", cfg.Server.Host)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("log level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Notification.WebhookURL != "http://hooks.local/bridgearr" {
		t.Errorf("webhook url = %q, want configured value", cfg.Notification.WebhookURL)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("BRIDGEARR_SERVER_PORT", "7777")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 7777 {
		t.Errorf("port = %d, want env override 7777", cfg.Server.Port)
	}
}

func TestAddress(t *testing.T) {
	c := ServerConfig{Host: "127.0.0.1", Port: 8323}
	if got := c.Address(); got != "127.0.0.1:8323" {
		t.Errorf("Address() = %q, want 127.0.0.1:8323", got)
	}
}
