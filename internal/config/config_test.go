package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "olink.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFillsDefaults(t *testing.T) {
	path := writeConfig(t, "app_name: demo\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AppName != "demo" {
		t.Errorf("AppName = %q, want demo", cfg.AppName)
	}
	if cfg.Server.Listen != ":8282" {
		t.Errorf("Server.Listen = %q, want :8282", cfg.Server.Listen)
	}
	if cfg.Server.Codec != "json" {
		t.Errorf("Server.Codec = %q, want json", cfg.Server.Codec)
	}
	if cfg.Client.Address != "localhost:8282" {
		t.Errorf("Client.Address = %q, want localhost:8282", cfg.Client.Address)
	}
	if cfg.LogDir != "logs" {
		t.Errorf("LogDir = %q, want logs", cfg.LogDir)
	}
}

func TestLoadExplicitValues(t *testing.T) {
	path := writeConfig(t, `
app_name: calc
debug: true
server:
  listen: ":9999"
  codec: msgpack
client:
  address: "calc.example:9999"
  codec: msgpack
log_dir: /tmp/olink-logs
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Debug {
		t.Error("Debug = false, want true")
	}
	if cfg.Server.Listen != ":9999" {
		t.Errorf("Server.Listen = %q, want :9999", cfg.Server.Listen)
	}
	if cfg.Server.Codec != "msgpack" {
		t.Errorf("Server.Codec = %q, want msgpack", cfg.Server.Codec)
	}
	if cfg.Client.Address != "calc.example:9999" {
		t.Errorf("Client.Address = %q", cfg.Client.Address)
	}
}

func TestLoadRejectsUnknownCodec(t *testing.T) {
	path := writeConfig(t, "server:\n  codec: xml\n")
	if _, err := Load(path); err == nil {
		t.Fatal("Load accepted unknown codec xml")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("Load succeeded on missing file")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Server.Listen == "" || cfg.Client.Address == "" || cfg.Server.Codec == "" {
		t.Fatalf("Default left fields empty: %+v", cfg)
	}
}
