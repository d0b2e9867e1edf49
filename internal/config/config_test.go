package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "{}\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("log level = %q, want info", cfg.Log.Level)
	}
	if cfg.Cache.Backend != "memory" {
		t.Errorf("cache backend = %q, want memory", cfg.Cache.Backend)
	}
	if cfg.Store.Driver != "sqlite" || cfg.Store.DSN != "seedwatch.db" {
		t.Errorf("store = %+v", cfg.Store)
	}
	if cfg.Fetch.TimeoutSeconds != 30 {
		t.Errorf("fetch timeout = %d, want 30", cfg.Fetch.TimeoutSeconds)
	}
	if len(cfg.Sites) != 0 {
		t.Errorf("sites = %v, want none", cfg.Sites)
	}
}

func TestLoadFullFile(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
cache:
  backend: redis
  address: 10.0.0.5:6379
  db: 2
store:
  driver: postgres
  dsn: postgres://seedwatch@db/seedwatch
metrics:
  enabled: true
  port: 9200
fetch:
  timeout_seconds: 10
  fingerprint: firefox
  proxies:
    - http://127.0.0.1:8080
sites:
  - name: CHDBits
    cookie: pass=abc
  - name: HaresClub
    cookie: pass=def
    schedule: "30 */2 * * *"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.Address != "10.0.0.5:6379" || cfg.Cache.DB != 2 {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Store.Driver != "postgres" {
		t.Errorf("store driver = %q", cfg.Store.Driver)
	}
	if !cfg.Metrics.Enabled || cfg.Metrics.Port != 9200 {
		t.Errorf("metrics = %+v", cfg.Metrics)
	}
	if cfg.Fetch.Fingerprint != "firefox" || len(cfg.Fetch.Proxies) != 1 {
		t.Errorf("fetch = %+v", cfg.Fetch)
	}
	if len(cfg.Sites) != 2 {
		t.Fatalf("sites = %+v", cfg.Sites)
	}
	if cfg.Sites[1].Schedule != "30 */2 * * *" {
		t.Errorf("schedule = %q", cfg.Sites[1].Schedule)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("Load should fail for an explicitly named missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"bad cache backend", "cache:\n  backend: memcached\n", "cache backend"},
		{"bad store driver", "store:\n  driver: oracle\n", "store driver"},
		{"site without cookie", "sites:\n  - name: CHDBits\n", "cookie is required"},
		{"site without name", "sites:\n  - cookie: pass=abc\n", "name is required"},
		{"duplicate site", "sites:\n  - name: CHDBits\n    cookie: a\n  - name: CHDBits\n    cookie: b\n", "configured twice"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("Load should fail")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want substring %q", err, tt.want)
			}
		})
	}
}
