package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("NOMAD_JWT_SECRET", "test-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("port = %q, want %q", cfg.Port, "8080")
	}
	if cfg.PassSessions != 8 {
		t.Errorf("pass_sessions = %d, want 8", cfg.PassSessions)
	}
	if cfg.CompletionPolicy != CompletionRetain {
		t.Errorf("completion_policy = %q, want %q", cfg.CompletionPolicy, CompletionRetain)
	}
	if cfg.TokenTTL != 24*time.Hour {
		t.Errorf("token_ttl = %v, want 24h", cfg.TokenTTL)
	}
}

func TestLoadInvalidCompletionPolicy(t *testing.T) {
	t.Setenv("NOMAD_JWT_SECRET", "test-secret")
	t.Setenv("NOMAD_COMPLETION_POLICY", "archive")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid completion policy")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("NOMAD_JWT_SECRET", "test-secret")
	t.Setenv("NOMAD_PASS_SESSIONS", "10")
	t.Setenv("NOMAD_COMPLETION_POLICY", "purge")
	t.Setenv("NOMAD_EXPORT_S3_BUCKET", "backups")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.PassSessions != 10 {
		t.Errorf("pass_sessions = %d, want 10", cfg.PassSessions)
	}
	if cfg.CompletionPolicy != CompletionPurge {
		t.Errorf("completion_policy = %q, want %q", cfg.CompletionPolicy, CompletionPurge)
	}
	if cfg.ExportS3.Bucket != "backups" {
		t.Errorf("export bucket = %q, want %q", cfg.ExportS3.Bucket, "backups")
	}
}
