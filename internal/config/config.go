package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// CompletionPolicy controls what happens to a pass when its last session is
// used. Retain keeps the row with is_active = false so attendance history
// survives; Purge deletes the pass and all its attendance records.
type CompletionPolicy string

const (
	CompletionRetain CompletionPolicy = "retain"
	CompletionPurge  CompletionPolicy = "purge"
)

// S3 holds credentials for an S3-compatible bucket. Leaving Bucket or the
// keys empty disables the feature that consumes it.
type S3 struct {
	Endpoint  string `envconfig:"ENDPOINT"`
	Bucket    string `envconfig:"BUCKET"`
	Region    string `envconfig:"REGION" default:"auto"`
	AccessKey string `envconfig:"ACCESS_KEY"`
	SecretKey string `envconfig:"SECRET_KEY"`
}

// Config is populated from NOMAD_* environment variables.
type Config struct {
	Port     string `envconfig:"PORT" default:"8080"`
	DBPath   string `envconfig:"DB_PATH" default:"nomadspirit.db"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	JWTSecret string        `envconfig:"JWT_SECRET" required:"true"`
	TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"24h"`

	// AdminEmail promotes the member registered with this address to admin.
	AdminEmail string `envconfig:"ADMIN_EMAIL"`

	PassSessions     int              `envconfig:"PASS_SESSIONS" default:"8"`
	CompletionPolicy CompletionPolicy `envconfig:"COMPLETION_POLICY" default:"retain"`

	// ExportS3 receives backup documents; AvatarS3 stores profile pictures.
	ExportS3 S3 `envconfig:"EXPORT_S3"`
	AvatarS3 S3 `envconfig:"AVATAR_S3"`

	// AvatarBaseURL is the public URL prefix under which avatar objects are
	// reachable, e.g. a CDN or the bucket's public endpoint.
	AvatarBaseURL string `envconfig:"AVATAR_BASE_URL"`
}

// Load reads configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := envconfig.Process("nomad", &cfg); err != nil {
		return Config{}, fmt.Errorf("process env: %w", err)
	}
	switch cfg.CompletionPolicy {
	case CompletionRetain, CompletionPurge:
	default:
		return Config{}, fmt.Errorf("invalid completion policy %q (want retain or purge)", cfg.CompletionPolicy)
	}
	if cfg.PassSessions < 1 {
		return Config{}, fmt.Errorf("pass sessions must be at least 1, got %d", cfg.PassSessions)
	}
	return cfg, nil
}
