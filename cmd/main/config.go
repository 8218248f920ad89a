package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/CTAG07/hxql/pkg/hydrate"
	"github.com/natefinch/atomic"
)

// ServerConfig holds the configuration for the site and API servers.
type ServerConfig struct {
	ServerAddr        string `json:"server_addr"`
	ApiAddr           string `json:"api_addr"`
	LogLevel          string `json:"log_level"`
	SrcDir            string `json:"src_dir"`
	PublicDir         string `json:"public_dir"`
	GraphQLURL        string `json:"graphql_url"`
	EnableHydrate     bool   `json:"enable_hydrate"`
	TemplateExt       string `json:"template_ext"`
	StrictParams      bool   `json:"strict_params"`
	GraphQLTimeoutMs  int    `json:"graphql_timeout_ms"`
	EnableCompression bool   `json:"enable_compression"`
	EnableStats       bool   `json:"enable_stats"`
	StatsDatabasePath string `json:"stats_database_path"`
}

// Config is the top-level configuration struct.
type Config struct {
	Server *ServerConfig `json:"server_config"`
}

// DefaultServerConfig creates a server configuration with default values.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		ServerAddr:        "127.0.0.1:5000",
		ApiAddr:           "127.0.0.1:5001",
		LogLevel:          "info",
		SrcDir:            "./src",
		PublicDir:         "public",
		GraphQLURL:        "",
		EnableHydrate:     true,
		TemplateExt:       hydrate.DefaultTemplateExt,
		StrictParams:      false,
		GraphQLTimeoutMs:  0,
		EnableCompression: true,
		EnableStats:       true,
		StatsDatabasePath: "./data/hxql_stats.db?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)",
	}
}

// LoadConfig reads the configuration from a JSON file at the given path.
// If the file doesn't exist, it creates one with default values.
func LoadConfig(path string) (*Config, error) {
	config := &Config{
		Server: DefaultServerConfig(),
	}

	file, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			var data []byte
			data, err = json.MarshalIndent(config, "", "  ")
			if err != nil {
				return nil, fmt.Errorf("failed to marshal default config: %w", err)
			}
			if err = atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
				// The server can still run with defaults.
				fmt.Printf("warning: failed to write default config file: %v\n", err)
			}
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err = json.Unmarshal(file, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if config.Server == nil {
		config.Server = DefaultServerConfig()
	}

	return config, nil
}

// Validate checks the fields that would otherwise only fail at request time.
func (c *ServerConfig) Validate() error {
	if c.ServerAddr == "" {
		return errors.New("server_addr must not be empty")
	}
	if c.SrcDir == "" {
		return errors.New("src_dir must not be empty")
	}
	if c.GraphQLURL != "" {
		u, err := url.Parse(c.GraphQLURL)
		if err != nil {
			return fmt.Errorf("invalid graphql_url: %w", err)
		}
		if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid graphql_url %q: must be an absolute http(s) URL", c.GraphQLURL)
		}
	}
	if c.GraphQLTimeoutMs < 0 {
		return errors.New("graphql_timeout_ms must not be negative")
	}
	if c.PublicDir != "" && strings.ContainsAny(c.PublicDir, `/\`) {
		return fmt.Errorf("public_dir %q must be a single directory name", c.PublicDir)
	}
	return nil
}

// SetPort replaces the port of ServerAddr, keeping its host.
func (c *ServerConfig) SetPort(port int) error {
	if port <= 0 || port > 65535 {
		return fmt.Errorf("invalid port %d", port)
	}
	host, _, err := net.SplitHostPort(c.ServerAddr)
	if err != nil {
		host = ""
	}
	c.ServerAddr = net.JoinHostPort(host, strconv.Itoa(port))
	return nil
}

// HydrateConfig returns the per-request pipeline configuration.
func (c *ServerConfig) HydrateConfig() hydrate.Config {
	return hydrate.Config{
		GraphQLEndpoint: c.GraphQLURL,
		SourceDir:       c.SrcDir,
		EnableHydrate:   c.EnableHydrate,
		TemplateExt:     c.TemplateExt,
		StrictParams:    c.StrictParams,
	}
}

// GraphQLTimeout returns the outbound request timeout; zero means none.
func (c *ServerConfig) GraphQLTimeout() time.Duration {
	return time.Duration(c.GraphQLTimeoutMs) * time.Millisecond
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
