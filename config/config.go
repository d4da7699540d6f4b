package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// defaultProtectedUsername is the superuser account the CSV import must
// never touch.
const defaultProtectedUsername = "Alex"

// Config holds every runtime setting of the application.
type Config struct {
	DatabaseURL  string
	JWTSecretKey string
	ServerPort   int

	// CSV import
	ImportDir          string
	ImportPollInterval time.Duration
	ImportSkipBadRows  bool
	ProtectedUsername  string

	// Cloudflare R2 (team logos); optional, uploads disabled when unset
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string
}

// R2Enabled reports whether the logo object store is configured.
func (c *Config) R2Enabled() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" &&
		c.R2BucketName != "" && c.R2PublicBaseURL != ""
}

// Load reads configuration from environment variables, optionally
// seeded from a .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	portStr := os.Getenv("SERVER_PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	importDir := os.Getenv("IMPORT_DIR")
	if importDir == "" {
		importDir = "import"
	}

	pollInterval := time.Second
	if intervalStr := os.Getenv("IMPORT_POLL_INTERVAL"); intervalStr != "" {
		pollInterval, err = time.ParseDuration(intervalStr)
		if err != nil || pollInterval <= 0 {
			return nil, fmt.Errorf("invalid IMPORT_POLL_INTERVAL environment variable: %q", intervalStr)
		}
	}

	skipBadRows := false
	if skipStr := os.Getenv("IMPORT_SKIP_BAD_ROWS"); skipStr != "" {
		skipBadRows, err = strconv.ParseBool(skipStr)
		if err != nil {
			return nil, fmt.Errorf("invalid IMPORT_SKIP_BAD_ROWS environment variable: %w", err)
		}
	}

	protectedUsername := os.Getenv("ADMIN_USERNAME")
	if protectedUsername == "" {
		protectedUsername = defaultProtectedUsername
	}

	cfg := &Config{
		DatabaseURL:        dbURL,
		JWTSecretKey:       jwtKey,
		ServerPort:         port,
		ImportDir:          importDir,
		ImportPollInterval: pollInterval,
		ImportSkipBadRows:  skipBadRows,
		ProtectedUsername:  protectedUsername,
		R2AccountID:        os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:      os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey:  os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:       os.Getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:    os.Getenv("R2_PUBLIC_BASE_URL"),
	}

	return cfg, nil
}
