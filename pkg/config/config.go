package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the server configuration.
// Environment variables are read with the MEMORIES_ prefix, e.g. MEMORIES_PORT.
type Config struct {
	Port     string `envconfig:"PORT" default:"8080"`
	Env      string `envconfig:"ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	FirebaseCredentialsPath string `envconfig:"FIREBASE_CREDENTIALS_PATH" default:"./firebase_credentials.json"`
	StorageBucket           string `envconfig:"STORAGE_BUCKET"`

	// DocStore selects where post records live: firestore or mongo
	DocStore      string `envconfig:"DOC_STORE" default:"firestore"`
	MongoURI      string `envconfig:"MONGO_URI"`
	MongoDatabase string `envconfig:"MONGO_DATABASE" default:"memories"`

	PostgresDSN string `envconfig:"POSTGRES_DSN"`

	// ObjectStore selects where media lives: firebase or minio
	ObjectStore        string `envconfig:"OBJECT_STORE" default:"firebase"`
	MinioEndpoint      string `envconfig:"MINIO_ENDPOINT" default:"localhost:9000"`
	MinioAccessKey     string `envconfig:"MINIO_ACCESS_KEY"`
	MinioSecretKey     string `envconfig:"MINIO_SECRET_KEY"`
	MinioBucket        string `envconfig:"MINIO_BUCKET" default:"memories"`
	MinioRegion        string `envconfig:"MINIO_REGION"`
	MinioUseSSL        bool   `envconfig:"MINIO_USE_SSL" default:"false"`
	MinioPublicBaseURL string `envconfig:"MINIO_PUBLIC_BASE_URL"`

	// Optional. Without Redis the timeline cache is disabled and the
	// sign-in limiter is kept in process memory.
	RedisAddr string `envconfig:"REDIS_ADDR"`
	// Optional. Without NATS post events are not published.
	NatsURL string `envconfig:"NATS_URL"`

	// TrustProxy honours X-Forwarded-For from private-network proxies when
	// identifying clients for the sign-in limit.
	TrustProxy bool `envconfig:"TRUST_PROXY" default:"false"`

	TimelineCacheTTL time.Duration `envconfig:"TIMELINE_CACHE_TTL" default:"5m"`
	SignInAttempts   int           `envconfig:"SIGN_IN_ATTEMPTS" default:"5"`
	SignInWindow     time.Duration `envconfig:"SIGN_IN_WINDOW" default:"15m"`
	MaxUploadSize    string        `envconfig:"MAX_UPLOAD_SIZE" default:"100M"`
}

// Load reads .env when present, then the environment
func Load() (*Config, error) {
	// A missing .env is fine; variables may come from the environment.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("MEMORIES", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks driver selections and the settings each one needs
func (c *Config) Validate() error {
	if c.PostgresDSN == "" {
		return fmt.Errorf("MEMORIES_POSTGRES_DSN is required")
	}

	switch c.DocStore {
	case "firestore":
	case "mongo":
		if c.MongoURI == "" {
			return fmt.Errorf("MEMORIES_MONGO_URI is required when MEMORIES_DOC_STORE is mongo")
		}
	default:
		return fmt.Errorf("unsupported MEMORIES_DOC_STORE: %s", c.DocStore)
	}

	switch c.ObjectStore {
	case "firebase":
		if c.StorageBucket == "" {
			return fmt.Errorf("MEMORIES_STORAGE_BUCKET is required when MEMORIES_OBJECT_STORE is firebase")
		}
	case "minio":
		if c.MinioAccessKey == "" || c.MinioSecretKey == "" {
			return fmt.Errorf("MEMORIES_MINIO_ACCESS_KEY and MEMORIES_MINIO_SECRET_KEY are required when MEMORIES_OBJECT_STORE is minio")
		}
		if c.MinioPublicBaseURL != "" {
			u, err := url.Parse(c.MinioPublicBaseURL)
			if err != nil || u.Scheme == "" || u.Host == "" {
				return fmt.Errorf("MEMORIES_MINIO_PUBLIC_BASE_URL must be an absolute url")
			}
		}
	default:
		return fmt.Errorf("unsupported MEMORIES_OBJECT_STORE: %s", c.ObjectStore)
	}

	if c.SignInAttempts < 1 {
		return fmt.Errorf("MEMORIES_SIGN_IN_ATTEMPTS must be at least 1")
	}
	if c.SignInWindow <= 0 {
		return fmt.Errorf("MEMORIES_SIGN_IN_WINDOW must be positive")
	}
	return nil
}
