package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds the process-wide settings selected once at startup.
type Config struct {
	EnvName       string
	HTTPPort      int
	HTTPSPort     int
	HashingSecret string
	DataDir       string
}

// environments is the static table of deployable environments.
var environments = map[string]Config{
	"staging": {
		EnvName:       "staging",
		HTTPPort:      3000,
		HTTPSPort:     3001,
		HashingSecret: "thisIsASecret",
		DataDir:       ".data",
	},
	"production": {
		EnvName:       "production",
		HTTPPort:      5000,
		HTTPSPort:     5001,
		HashingSecret: "thisIsAlsoASecret",
		DataDir:       ".data",
	},
}

// Load selects the environment named by APP_ENV, falling back to staging,
// and applies any environment variable overrides. The result is immutable
// for the lifetime of the process.
func Load() Config {
	name := strings.ToLower(os.Getenv("APP_ENV"))
	cfg, ok := environments[name]
	if !ok {
		cfg = environments["staging"]
	}
	if v := os.Getenv("HASHING_SECRET"); v != "" {
		cfg.HashingSecret = v
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("HTTP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.HTTPPort = p
		}
	}
	if v := os.Getenv("HTTPS_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.HTTPSPort = p
		}
	}
	return cfg
}
