package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sample = `
server:
  port: "9090"
  cors_origins: ["https://ecolearn.app"]
log:
  level: debug
auth:
  jwt_secret: from-file
redis:
  addr: localhost:6379
  db: 2
questions:
  ttl: 5m
rewards:
  challenge_win: 40
seed:
  users: [alice, bob]
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("CHALLENGE_REWARD", "")
	cfg, err := Load(writeConfig(t, sample))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Redis.DB != 2 || cfg.Rewards.ChallengeWin != 40 {
		t.Fatalf("unexpected config %+v", cfg)
	}
	if cfg.Auth.JWTSecret != "from-file" {
		t.Fatalf("expected secret from file, got %q", cfg.Auth.JWTSecret)
	}
	if len(cfg.Seed.Users) != 2 || cfg.Server.CORSOrigins[0] != "https://ecolearn.app" {
		t.Fatalf("unexpected lists %+v", cfg)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("CHALLENGE_REWARD", "15")
	cfg, err := Load(writeConfig(t, sample))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Auth.JWTSecret != "from-env" || cfg.Rewards.ChallengeWin != 15 {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}

	t.Setenv("CHALLENGE_REWARD", "lots")
	if _, err := Load(writeConfig(t, sample)); err == nil {
		t.Fatalf("expected invalid reward override to fail")
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "server: [")); err == nil {
		t.Fatalf("expected parse error")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected missing file error")
	}
}

func TestTTLDuration(t *testing.T) {
	if got := TTLDuration("", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback, got %s", got)
	}
	if got := TTLDuration("30s", time.Minute); got != 30*time.Second {
		t.Fatalf("expected 30s, got %s", got)
	}
	if got := TTLDuration("soon", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback on bad input, got %s", got)
	}
}
