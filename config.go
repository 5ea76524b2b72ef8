package blogfront

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/eringen/blogfront/api"
	"github.com/eringen/blogfront/views"
)

const defaultAbout = `Hi, I'm a developer building tools with Rust, React, and Linux.

This site is my personal space to share blog posts and projects.`

// SiteConfig holds all configuration for a blogfront site.
type SiteConfig struct {
	Name        string `yaml:"name"`        // Site name shown in the navbar (default "Blog")
	URL         string `yaml:"url"`         // Canonical URL (default "http://localhost:3000")
	Description string `yaml:"description"` // Site description for RSS and meta tags
	Author      string `yaml:"author"`      // Author name for JSON-LD
	About       string `yaml:"about"`       // Markdown body of the about page

	Addr string `yaml:"addr"` // Listen address (default ":3000")

	API    APIConfig   `yaml:"api"`
	Limits LimitConfig `yaml:"limits"`

	PhotoMaxWidth   int           `yaml:"photo_max_width"`  // Photos wider than this are downscaled (default 800)
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"` // Graceful shutdown budget (default 30s)

	LogLevel  string `yaml:"log_level"`  // debug, info, warn, error (default info)
	LogFormat string `yaml:"log_format"` // text or json (default text)
}

// APIConfig locates the remote blog backend.
type APIConfig struct {
	BaseURL string        `yaml:"base_url"` // default "http://localhost:8080"
	Timeout time.Duration `yaml:"timeout"`  // default 10s
}

// LimitConfig bounds how fast one client can make the front-end call the backend.
type LimitConfig struct {
	RequestsPerSecond float64       `yaml:"requests_per_second"` // default 2
	Burst             int           `yaml:"burst"`               // default 20
	IdleTimeout       time.Duration `yaml:"idle_timeout"`        // default 10m
}

// LoadConfig reads the .env next to the config file and the .env in the
// working directory (either may be missing), then the YAML file at path
// with ${VAR} references expanded, then the SITE_* / API_BASE_URL / ADDR
// environment overrides. An empty path skips the file. Variables already
// set in the environment are never replaced by .env values.
func LoadConfig(path string) (SiteConfig, error) {
	if err := loadDotEnv(path); err != nil {
		return SiteConfig{}, err
	}

	var cfg SiteConfig
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return SiteConfig{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
			return SiteConfig{}, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.setDefaults()
	return cfg, nil
}

func loadDotEnv(configPath string) error {
	files := []string{".env"}
	if configPath != "" {
		files = append([]string{filepath.Join(filepath.Dir(configPath), ".env")}, files...)
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

func (c *SiteConfig) applyEnv() {
	c.Name = EnvOr("SITE_NAME", c.Name)
	c.URL = EnvOr("SITE_URL", c.URL)
	c.Description = EnvOr("SITE_DESCRIPTION", c.Description)
	c.Author = EnvOr("SITE_AUTHOR", c.Author)
	c.Addr = EnvOr("ADDR", c.Addr)
	c.API.BaseURL = EnvOr("API_BASE_URL", c.API.BaseURL)
	c.LogLevel = EnvOr("LOG_LEVEL", c.LogLevel)
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Blog"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	c.URL = strings.TrimSuffix(c.URL, "/")
	if c.About == "" {
		c.About = defaultAbout
	}
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.API.BaseURL == "" {
		c.API.BaseURL = "http://localhost:8080"
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = 10 * time.Second
	}
	if c.Limits.RequestsPerSecond == 0 {
		c.Limits.RequestsPerSecond = 2
	}
	if c.Limits.Burst == 0 {
		c.Limits.Burst = 20
	}
	if c.Limits.IdleTimeout == 0 {
		c.Limits.IdleTimeout = 10 * time.Minute
	}
	if c.PhotoMaxWidth == 0 {
		c.PhotoMaxWidth = 800
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = 30 * time.Second
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "text"
	}
}

// Site returns the subset of the config that templates read.
func (c SiteConfig) Site() views.Site {
	return views.Site{
		Name:        c.Name,
		URL:         c.URL,
		Description: c.Description,
		Author:      c.Author,
		About:       c.About,
	}
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback runs after the built-in routes are registered.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithLogger sets the structured logger used by the app and its API client.
func WithLogger(logger *slog.Logger) Option {
	return func(a *App) {
		a.Logger = logger
	}
}

// WithClient replaces the API client built from Config.API.
func WithClient(c *api.Client) Option {
	return func(a *App) {
		a.Client = c
	}
}

// WithVersion sets the version reported by /healthz.
func WithVersion(v string) Option {
	return func(a *App) {
		a.version = v
	}
}

// EnvOr returns the value of the environment variable key, or fallback if empty.
func EnvOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// NewLogger builds the slog logger described by level and format.
func NewLogger(level, format string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
