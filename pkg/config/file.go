package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the environment variable consulted by ResolvePath.
const EnvConfigPath = "LINKFORTY_CONFIG"

// DefaultFileName is looked up in the working directory when no path is given.
const DefaultFileName = "linkforty.yaml"

// LoadFile reads a YAML document and runs it through Load.
func LoadFile(path string, opts ...LoadOption) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return Load(cfg, opts...)
}

// ResolvePath picks the configuration file to read.
// Priority: explicit flag value, LINKFORTY_CONFIG, ./linkforty.yaml.
// It returns "" when none of them exists.
func ResolvePath(flagValue string) string {
	if flagValue != "" && fileExists(flagValue) {
		return flagValue
	}
	if envPath := os.Getenv(EnvConfigPath); envPath != "" && fileExists(envPath) {
		return envPath
	}
	if cwd, err := os.Getwd(); err == nil {
		candidate := filepath.Join(cwd, DefaultFileName)
		if fileExists(candidate) {
			return candidate
		}
	}
	return ""
}

// ApplyEnv overlays LINKFORTY_BASE_URL, LINKFORTY_API_KEY, LINKFORTY_DEBUG and
// LINKFORTY_KAFKA_BROKERS onto cfg. Unset variables leave the existing value
// untouched.
func ApplyEnv(cfg Config) Config {
	cfg.BaseURL = getEnv("LINKFORTY_BASE_URL", cfg.BaseURL)
	cfg.APIKey = getEnv("LINKFORTY_API_KEY", cfg.APIKey)
	if v, ok := os.LookupEnv("LINKFORTY_DEBUG"); ok {
		if debug, err := strconv.ParseBool(v); err == nil {
			cfg.Debug = debug
		}
	}
	if v := getEnv("LINKFORTY_KAFKA_BROKERS", ""); v != "" {
		cfg.Sink.KafkaBrokers = splitList(v)
	}
	return cfg
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
