package config

import (
	"testing"
	"time"
)

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.App.Port != ":5000" {
		t.Errorf("app.port = %q", cfg.App.Port)
	}
	if cfg.WS.TickInterval != 2*time.Second {
		t.Errorf("ws.tick_interval = %v", cfg.WS.TickInterval)
	}
	if cfg.WS.RefreshInterval != 2*time.Hour {
		t.Errorf("ws.refresh_interval = %v", cfg.WS.RefreshInterval)
	}
	if cfg.WS.JitterBound != 0.0005 {
		t.Errorf("ws.jitter_bound = %v", cfg.WS.JitterBound)
	}
	if cfg.Quotes.Suffix != ".NS" {
		t.Errorf("quotes.suffix = %q", cfg.Quotes.Suffix)
	}
	if len(cfg.Sync.Symbols) == 0 {
		t.Errorf("sync.symbols empty")
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("APP_PORT", ":9999")
	t.Setenv("WS_TICK_INTERVAL", "500ms")
	t.Setenv("REDIS_ADDR", "redis:6379")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.App.Port != ":9999" {
		t.Errorf("app.port = %q, want :9999", cfg.App.Port)
	}
	if cfg.WS.TickInterval != 500*time.Millisecond {
		t.Errorf("ws.tick_interval = %v, want 500ms", cfg.WS.TickInterval)
	}
	if cfg.Redis.Addr != "redis:6379" {
		t.Errorf("redis.addr = %q", cfg.Redis.Addr)
	}
}

func TestLoadConfig_RejectsBadJitter(t *testing.T) {
	t.Setenv("WS_JITTER_BOUND", "1.5")

	if _, err := LoadConfig(); err == nil {
		t.Errorf("expected validation error for jitter bound >= 1")
	}
}
