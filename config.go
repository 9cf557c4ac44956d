package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the server.
type Config struct {
	Addr      string
	DataDir   string
	StaticDir string
	Env       string

	// ExposeErrors echoes internal error detail in comment submission failures.
	ExposeErrors bool
	MaxBodyBytes int
}

// LoadConfig builds the configuration for the serve command. Flags override
// environment variables, which override the built-in defaults. A .env file
// in the working directory is loaded if present.
func LoadConfig(args []string) (*Config, error) {
	_ = godotenv.Load()

	env := getEnv("BOARD_ENV", "development")
	maxBody, err := strconv.Atoi(getEnv("BOARD_MAX_BODY_BYTES", "65536"))
	if err != nil {
		return nil, fmt.Errorf("BOARD_MAX_BODY_BYTES: %w", err)
	}

	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", getEnv("BOARD_ADDR", "0.0.0.0:5077"), "listen address")
	dataDir := fs.String("data", getEnv("BOARD_DATA_DIR", "."), "directory holding messages.json, comments.json and users.json")
	staticDir := fs.String("static", getEnv("BOARD_STATIC_DIR", "wwwroot"), "static files root")
	fs.StringVar(&env, "env", env, "environment: development or production")
	fs.IntVar(&maxBody, "max-body", maxBody, "maximum request body size in bytes")
	exposeErrors := fs.String("expose-errors", os.Getenv("BOARD_EXPOSE_ERRORS"), "echo internal error detail to clients (default: true in development)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := &Config{
		Addr:         *addr,
		DataDir:      *dataDir,
		StaticDir:    *staticDir,
		Env:          env,
		ExposeErrors: env == "development",
		MaxBodyBytes: maxBody,
	}
	if *exposeErrors != "" {
		v, err := strconv.ParseBool(*exposeErrors)
		if err != nil {
			return nil, fmt.Errorf("expose-errors: %w", err)
		}
		cfg.ExposeErrors = v
	}
	if cfg.Env != "development" && cfg.Env != "production" {
		return nil, fmt.Errorf("unknown environment %q", cfg.Env)
	}
	if cfg.MaxBodyBytes <= 0 {
		return nil, fmt.Errorf("max body size must be positive, got %d", cfg.MaxBodyBytes)
	}
	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
