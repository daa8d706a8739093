package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultPort      = ":8081"
	defaultStorePath = "tmp/workspaces.json"
)

type Config struct {
	Port        string
	Env         string
	DatabaseURL string
	// StorePath is the JSON snapshot file used when no database or bucket is
	// configured. Empty keeps snapshots in memory only.
	StorePath   string
	Snapshot    SnapshotS3Config
	Assistant   AssistantConfig
	Cache       CacheConfig
	CORSOrigins []string
	LogLevel    string
}

type SnapshotS3Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// CanUseS3 reports whether every field the minio client needs is present.
func (c SnapshotS3Config) CanUseS3() bool {
	return strings.TrimSpace(c.Endpoint) != "" &&
		strings.TrimSpace(c.AccessKey) != "" &&
		strings.TrimSpace(c.SecretKey) != "" &&
		strings.TrimSpace(c.Bucket) != ""
}

type AssistantConfig struct {
	APIKey string
	Model  string
}

func (c AssistantConfig) Enabled() bool { return strings.TrimSpace(c.APIKey) != "" }

type CacheConfig struct {
	TTL        time.Duration
	MaxEntries int
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	env := firstNonEmpty(strings.TrimSpace(os.Getenv("APP_ENV")), "local")
	storePath, hasStorePath := os.LookupEnv("STORE_PATH")
	if !hasStorePath {
		storePath = defaultStorePath
	}

	return &Config{
		Port:        NormalizePort(firstNonEmpty(strings.TrimSpace(os.Getenv("PORT")), defaultPort)),
		Env:         env,
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		StorePath:   strings.TrimSpace(storePath),
		Snapshot:    loadSnapshotConfig(),
		Assistant: AssistantConfig{
			APIKey: firstNonEmpty(strings.TrimSpace(os.Getenv("GEMINI_API_KEY")), strings.TrimSpace(os.Getenv("GOOGLE_API_KEY"))),
			Model:  strings.TrimSpace(os.Getenv("ASSISTANT_MODEL")),
		},
		Cache: CacheConfig{
			TTL:        parseDuration(os.Getenv("CACHE_TTL")),
			MaxEntries: parseInt(os.Getenv("CACHE_MAX_ENTRIES")),
		},
		CORSOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		LogLevel:    strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL"))),
	}, nil
}

func loadSnapshotConfig() SnapshotS3Config {
	return SnapshotS3Config{
		Endpoint:  strings.TrimSpace(os.Getenv("SNAPSHOT_S3_ENDPOINT")),
		Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("SNAPSHOT_S3_REGION")), "us-east-1"),
		AccessKey: strings.TrimSpace(os.Getenv("SNAPSHOT_S3_ACCESS_KEY")),
		SecretKey: strings.TrimSpace(os.Getenv("SNAPSHOT_S3_SECRET_KEY")),
		Bucket:    firstNonEmpty(strings.TrimSpace(os.Getenv("SNAPSHOT_S3_BUCKET")), "spacedesk-snapshots"),
		UseSSL:    parseBoolDefault(os.Getenv("SNAPSHOT_S3_USE_SSL"), true),
	}
}

// NormalizePort turns "8080" into ":8080" and keeps host:port values.
func NormalizePort(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return defaultPort
	}
	if strings.Contains(v, ":") {
		return v
	}
	return ":" + v
}

func parseBoolDefault(raw string, def bool) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def
	}
	return v
}

func parseDuration(raw string) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return d
}

func parseInt(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return n
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
