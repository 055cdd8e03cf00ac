// Package config provides configuration management and environment variable handling for the application
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage backend selectors
const (
	BackendFile  = "file"
	BackendMongo = "mongo"
)

// Config holds all configuration for the love page service
type Config struct {
	Server     ServerConfig     `json:"server"`
	Storage    StorageConfig    `json:"storage"`
	Mongo      MongoConfig      `json:"mongo"`
	JWT        JWTConfig        `json:"jwt"`
	Admin      AdminConfig      `json:"admin"`
	Security   SecurityConfig   `json:"security"`
	Logging    LoggingConfig    `json:"logging"`
	Metrics    MetricsConfig    `json:"metrics"`
	Deployment DeploymentConfig `json:"deployment"`
	Scheduler  SchedulerConfig  `json:"scheduler"`
}

type ServerConfig struct {
	Host            string        `json:"host"`
	Port            int           `json:"port"`
	ReadTimeout     time.Duration `json:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"`
	IdleTimeout     time.Duration `json:"idle_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
	BodyLimit       int           `json:"body_limit"`
}

type StorageConfig struct {
	// Backend selects the storage implementation: "file" or "mongo".
	// The declared backend also fixes the delete semantics reported by
	// tests and operators; both implementations soft-delete.
	Backend   string `json:"backend"`
	DataDir   string `json:"data_dir"`
	PagesFile string `json:"pages_file"`
	QRDir     string `json:"qr_dir"`
}

type MongoConfig struct {
	URI      string `json:"uri"`
	Database string `json:"database"`
	// User and Password, when both set, override any credentials in the
	// URI. The password is percent-encoded before splicing so special
	// characters cannot corrupt the connection string.
	User     string        `json:"user"`
	Password string        `json:"password"`
	Timeout  time.Duration `json:"timeout"`
}

type JWTConfig struct {
	SecretKey      string        `json:"secret_key"`
	PrivateKey     string        `json:"private_key"`  // RSA private key in PEM format
	PublicKey      string        `json:"public_key"`   // RSA public key in PEM format
	UseRSAKeys     bool          `json:"use_rsa_keys"` // Whether to use RSA keys instead of secret key
	AccessTokenTTL time.Duration `json:"access_token_ttl"`
	Issuer         string        `json:"issuer"`
	Audience       string        `json:"audience"`
}

type AdminConfig struct {
	Username     string `json:"username"`
	PasswordHash string `json:"password_hash"` // bcrypt hash, never the plaintext
}

type SecurityConfig struct {
	AllowedOrigins  []string      `json:"allowed_origins"`
	GlobalRateLimit int           `json:"global_rate_limit"` // requests per window
	AuthRateLimit   int           `json:"auth_rate_limit"`
	RateLimitWindow time.Duration `json:"rate_limit_window"`
}

type LoggingConfig struct {
	Output     string `json:"output"` // stdout, file, both
	FilePath   string `json:"file_path"`
	MaxSize    int    `json:"max_size"` // MB
	MaxBackups int    `json:"max_backups"`
	MaxAge     int    `json:"max_age"` // days
	Compress   bool   `json:"compress"`
}

type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

type DeploymentConfig struct {
	// Domain is the externally-visible base URL used to build page links
	Domain      string `json:"domain"`
	Environment string `json:"environment"`
}

type SchedulerConfig struct {
	ArtifactBackfillEnabled  bool          `json:"artifact_backfill_enabled"`
	ArtifactBackfillInterval time.Duration `json:"artifact_backfill_interval"`
}

// LoadConfig reads configuration from the environment, optionally
// seeded from a .env file in the working directory
func LoadConfig() (*Config, error) {
	// Missing .env is fine; real environments set variables directly
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnvString("SERVER_HOST", "0.0.0.0"),
			Port:            getEnvInt("SERVER_PORT", 3001),
			ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			IdleTimeout:     getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			BodyLimit:       getEnvInt("SERVER_BODY_LIMIT", 4*1024*1024), // 4MB
		},
		Storage: StorageConfig{
			Backend:   getEnvString("STORAGE_BACKEND", BackendFile),
			DataDir:   getEnvString("STORAGE_DATA_DIR", "./data"),
			PagesFile: getEnvString("STORAGE_PAGES_FILE", ""),
			QRDir:     getEnvString("STORAGE_QR_DIR", ""),
		},
		Mongo: MongoConfig{
			URI:      getEnvString("MONGODB_URI", "mongodb://localhost:27017/novacoeur"),
			Database: getEnvString("MONGODB_DATABASE", "novacoeur"),
			User:     getEnvString("DB_USER", ""),
			Password: getEnvString("DB_PASS", ""),
			Timeout:  getEnvDuration("MONGODB_TIMEOUT", 10*time.Second),
		},
		JWT: JWTConfig{
			SecretKey:      getEnvString("JWT_SECRET_KEY", ""),
			PrivateKey:     getEnvString("JWT_PRIVATE_KEY", ""),
			PublicKey:      getEnvString("JWT_PUBLIC_KEY", ""),
			UseRSAKeys:     getEnvBool("JWT_USE_RSA_KEYS", false),
			AccessTokenTTL: getEnvDuration("JWT_ACCESS_TOKEN_TTL", 24*time.Hour),
			Issuer:         getEnvString("JWT_ISSUER", "novacoeur-api"),
			Audience:       getEnvString("JWT_AUDIENCE", "novacoeur-admin"),
		},
		Admin: AdminConfig{
			Username:     getEnvString("ADMIN_USERNAME", "admin"),
			PasswordHash: getEnvString("ADMIN_PASSWORD_HASH", ""),
		},
		Security: SecurityConfig{
			AllowedOrigins:  getEnvStringSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
			GlobalRateLimit: getEnvInt("GLOBAL_RATE_LIMIT", 2000),
			AuthRateLimit:   getEnvInt("AUTH_RATE_LIMIT", 20),
			RateLimitWindow: getEnvDuration("RATE_LIMIT_WINDOW", 1*time.Minute),
		},
		Logging: LoggingConfig{
			Output:     getEnvString("LOG_OUTPUT", "stdout"),
			FilePath:   getEnvString("LOG_FILE_PATH", "./logs/novacoeur.log"),
			MaxSize:    getEnvInt("LOG_MAX_SIZE", 100),
			MaxBackups: getEnvInt("LOG_MAX_BACKUPS", 5),
			MaxAge:     getEnvInt("LOG_MAX_AGE", 30),
			Compress:   getEnvBool("LOG_COMPRESS", true),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
			Path:    getEnvString("METRICS_PATH", "/metrics"),
		},
		Deployment: DeploymentConfig{
			Domain:      getEnvString("DOMAIN", "http://localhost:3001"),
			Environment: getEnvString("APP_ENV", "development"),
		},
		Scheduler: SchedulerConfig{
			ArtifactBackfillEnabled:  getEnvBool("ARTIFACT_BACKFILL_ENABLED", true),
			ArtifactBackfillInterval: getEnvDuration("ARTIFACT_BACKFILL_INTERVAL", 5*time.Minute),
		},
	}

	// Derive file locations from the data dir unless overridden
	if cfg.Storage.PagesFile == "" {
		cfg.Storage.PagesFile = cfg.Storage.DataDir + "/pages.json"
	}
	if cfg.Storage.QRDir == "" {
		cfg.Storage.QRDir = cfg.Storage.DataDir + "/qrcodes"
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// EffectiveMongoURI returns the connection string with DB_USER/DB_PASS
// spliced in when both are provided, percent-encoding the password
func (m MongoConfig) EffectiveMongoURI() string {
	if m.User == "" || m.Password == "" {
		return m.URI
	}

	uri := m.URI
	encodedPass := url.QueryEscape(m.Password)
	credentials := m.User + ":" + encodedPass + "@"

	idx := strings.Index(uri, "//")
	if idx == -1 {
		return "mongodb://" + credentials + "localhost:27017/" + m.Database
	}

	prefix := uri[:idx+2]
	rest := uri[idx+2:]
	// Drop any credentials already embedded in the URI
	if at := strings.LastIndex(rest, "@"); at != -1 {
		rest = rest[at+1:]
	}
	return prefix + credentials + rest
}

func validateConfig(cfg *Config) error {
	var errs []string

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid server port: %d", cfg.Server.Port))
	}
	if cfg.Storage.Backend != BackendFile && cfg.Storage.Backend != BackendMongo {
		errs = append(errs, fmt.Sprintf("unknown storage backend: %q", cfg.Storage.Backend))
	}
	if cfg.JWT.UseRSAKeys {
		if cfg.JWT.PrivateKey == "" || cfg.JWT.PublicKey == "" {
			errs = append(errs, "JWT RSA keys enabled but private/public key missing")
		}
	} else if cfg.JWT.SecretKey == "" {
		errs = append(errs, "JWT secret key is required")
	}
	if cfg.Admin.Username == "" {
		errs = append(errs, "admin username is required")
	}
	if cfg.Admin.PasswordHash == "" {
		errs = append(errs, "admin password hash is required")
	}
	if cfg.Deployment.Domain == "" {
		errs = append(errs, "deployment domain is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvStringSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		var result []string
		for _, item := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return defaultValue
}
