package config // package config loads application configuration from environment variables

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for costs.
type Config struct {
	Env        string // application environment (e.g. "dev", "prod")
	Port       string // HTTP port to listen on
	DBUser     string // database username
	DBPass     string // database password (optional)
	DBHost     string // database host address
	DBPort     string // database port number
	DBName     string // database name
	JWTSecret  string // secret used to sign session JWTs; must never be defaulted
	BcryptCost int    // bcrypt cost for password hashing
	UploadDir  string // directory for uploaded request photos
}

// Load reads configuration values from environment variables and returns a
// Config. Validation is a discrete fallible step: missing required
// variables produce an error rather than ambient fatal state, so callers
// decide whether to exit.
func Load() (Config, error) {
	cfg := Config{
		Env:       os.Getenv("APP_ENV"),
		Port:      os.Getenv("APP_PORT"),
		DBUser:    os.Getenv("DB_USER"),
		DBPass:    os.Getenv("DB_PASS"), // empty allowed
		DBHost:    os.Getenv("DB_HOST"),
		DBPort:    os.Getenv("DB_PORT"),
		DBName:    os.Getenv("DB_NAME"),
		JWTSecret: os.Getenv("JWT_SECRET"),
		UploadDir: os.Getenv("UPLOAD_DIR"),
	}
	if cfg.Env == "" {
		cfg.Env = "dev"
	}
	if cfg.Port == "" {
		cfg.Port = "8080"
	}
	if cfg.UploadDir == "" {
		cfg.UploadDir = "uploads"
	}

	for _, req := range []struct{ key, val string }{
		{"DB_USER", cfg.DBUser},
		{"DB_HOST", cfg.DBHost},
		{"DB_PORT", cfg.DBPort},
		{"DB_NAME", cfg.DBName},
		{"JWT_SECRET", cfg.JWTSecret},
	} {
		if req.val == "" {
			return Config{}, fmt.Errorf("missing required env var: %s", req.key)
		}
	}

	cfg.BcryptCost = 10
	if s := os.Getenv("BCRYPT_COST"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 4 || n > 31 {
			return Config{}, fmt.Errorf("invalid int for BCRYPT_COST: %q", s)
		}
		cfg.BcryptCost = n
	}
	return cfg, nil
}
