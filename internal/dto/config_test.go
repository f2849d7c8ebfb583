package dto

import (
	"os"
	"path/filepath"
	"testing"
)

func validConfig() Config {
	return Config{
		SlackBotToken: "xoxb-1",
		SlackAppToken: "xapp-1",
		DatabaseType:  DatabaseTypeSQLite,
		DatabaseURL:   "pollbot.db",
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("SLACK_BOT_TOKEN", "xoxb-env")
	t.Setenv("SLACK_DEBUG", "true")
	t.Setenv("DATABASE_TYPE", "")
	t.Setenv("MARKER_EMOJI", "")

	cfg := LoadConfig()
	if cfg.SlackBotToken != "xoxb-env" || !cfg.SlackDebug {
		t.Fatalf("environment not applied: %+v", cfg)
	}
	if cfg.DatabaseType != DatabaseTypeSQLite || cfg.MarkerEmoji != DefaultMarkerEmoji {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestReadConfigFileOverlays(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pollbot.yaml")
	data := []byte("slack_app_token: xapp-file\ndatabase_type: postgres\ndatabase_url: postgres://db\n")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg := validConfig()
	if err := cfg.ReadConfigFile(path); err != nil {
		t.Fatalf("read config: %v", err)
	}
	if cfg.SlackAppToken != "xapp-file" || cfg.DatabaseType != DatabaseTypePostgres || cfg.DatabaseURL != "postgres://db" {
		t.Fatalf("file not applied: %+v", cfg)
	}
	if cfg.SlackBotToken != "xoxb-1" {
		t.Fatalf("empty file values must not override: %+v", cfg)
	}

	if err := cfg.ReadConfigFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"missing bot token", func(c *Config) { c.SlackBotToken = "" }, true},
		{"missing app token", func(c *Config) { c.SlackAppToken = "" }, true},
		{"bot token as app token", func(c *Config) { c.SlackAppToken = "xoxb-2" }, true},
		{"unknown database", func(c *Config) { c.DatabaseType = "mysql" }, true},
		{"missing database url", func(c *Config) { c.DatabaseURL = "" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecodeFirebaseKey(t *testing.T) {
	cfg := Config{}
	if key, err := cfg.DecodeFirebaseKey(); key != nil || err != nil {
		t.Fatalf("expected no key, got %q (%v)", key, err)
	}

	cfg.FirebaseKey = "e30="
	if key, err := cfg.DecodeFirebaseKey(); err != nil || string(key) != "{}" {
		t.Fatalf("unexpected key %q (%v)", key, err)
	}

	cfg.FirebaseKey = "%%%"
	if _, err := cfg.DecodeFirebaseKey(); err == nil {
		t.Fatal("expected decode error")
	}
}
