package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RequestTimeout != 8*time.Second {
		t.Fatalf("request timeout = %v", cfg.RequestTimeout)
	}
	if cfg.ScrapeTimeout != 6*time.Second || cfg.SynthTimeout != 2*time.Second {
		t.Fatalf("unexpected step timeouts scrape=%v synth=%v", cfg.ScrapeTimeout, cfg.SynthTimeout)
	}
	if cfg.FetchHTTPTimeout != 5*time.Second {
		t.Fatalf("fetch timeout = %v", cfg.FetchHTTPTimeout)
	}
	if cfg.StorageType != "bbolt" || cfg.HTTPAddr != ":8000" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.UserAgent != DefaultUserAgent {
		t.Fatalf("user agent = %q", cfg.UserAgent)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("STORAGE_TYPE", " SQLite ")
	t.Setenv("SYNTH_TIMEOUT_MS", "250")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.StorageType != "sqlite" {
		t.Fatalf("storage type = %q", cfg.StorageType)
	}
	if cfg.SynthTimeout != 250*time.Millisecond {
		t.Fatalf("synth timeout = %v", cfg.SynthTimeout)
	}
}

func TestLoadRejectsScrapeDeadlineOutsideRequest(t *testing.T) {
	t.Setenv("SCRAPE_TIMEOUT_MS", "9000")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error when scrape deadline exceeds request deadline")
	}
}

func TestLoadRejectsNonPositiveTimeout(t *testing.T) {
	t.Setenv("FETCH_HTTP_TIMEOUT_MS", "0")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for zero fetch timeout")
	}
}

func TestAllowedOrigins(t *testing.T) {
	cfg := &Config{CORSAllowedOrigins: " https://a.example, ,https://b.example "}
	got := cfg.AllowedOrigins()
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Fatalf("AllowedOrigins = %#v", got)
	}
}
