package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables that override file values.
const (
	EnvAPIKey = "PIXABAY_API_KEY"
	EnvTheme  = "PIXMARK_THEME"
	EnvAddr   = "PIXMARK_ADDR"
)

// Loader handles loading the configuration.
type Loader struct {
	Version      string // build version, "dev" enables ./.pixmarkrc
	OverridePath string
	EnvFiles     []string // dotenv files, default ".env"
}

// NewLoader creates a new Loader.
func NewLoader(version string, overridePath string) *Loader {
	return &Loader{
		Version:      version,
		OverridePath: overridePath,
	}
}

// Load reads the config file, if any, and applies environment overrides.
func (l *Loader) Load() (*Config, error) {
	cfg := New()
	if path := l.GetConfigPath(); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		parsed, err := Parse(f)
		if cerr := f.Close(); cerr != nil {
			log.Printf("config: close %s: %v", path, cerr)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		cfg = parsed
	}
	l.loadDotenv()
	ApplyEnv(cfg)
	return cfg, nil
}

func (l *Loader) loadDotenv() {
	files := l.EnvFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return
	}
	// godotenv.Load never overrides variables already set in the process
	if err := godotenv.Load(present...); err != nil {
		log.Printf("config: dotenv: %v", err)
	}
}

// ApplyEnv copies recognised environment variables onto cfg.
func ApplyEnv(cfg *Config) {
	cfg.Search.APIKey = getEnv(EnvAPIKey, cfg.Search.APIKey)
	cfg.Theme = getEnv(EnvTheme, cfg.Theme)
	cfg.Serve.Addr = getEnv(EnvAddr, cfg.Serve.Addr)
	cfg.Search.PerPage = getInt("PIXMARK_PER_PAGE", cfg.Search.PerPage)
	cfg.Search.SafeSearch = getBool("PIXMARK_SAFESEARCH", cfg.Search.SafeSearch)
	cfg.Search.Timeout = getDuration("PIXMARK_TIMEOUT", cfg.Search.Timeout)
	cfg.Search.DefaultQuery = getEnv("PIXMARK_DEFAULT_QUERY", cfg.Search.DefaultQuery)
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("config: ignoring %s=%q: not an integer", key, v)
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		log.Printf("config: ignoring %s=%q: not a boolean", key, v)
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("config: ignoring %s=%q: not a duration", key, v)
	}
	return fallback
}

// GetConfigPath returns the path to the configuration file, or empty string if not found.
func (l *Loader) GetConfigPath() string {
	if l.OverridePath != "" {
		if _, err := os.Stat(l.OverridePath); err == nil {
			return l.OverridePath
		}
	}

	if l.Version == "dev" {
		wd, _ := os.Getwd()
		localPath := filepath.Join(wd, ".pixmarkrc")
		if _, err := os.Stat(localPath); err == nil {
			return localPath
		}
	}

	if p := DefaultPath(); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// DefaultPath is where `pixmark config save` writes.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "pixmark", "config.rc")
}

// Save writes cfg to path, creating parent directories.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(cfg.String()), 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
