package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gnana997/uitokens/pkg/document"
	"github.com/gnana997/uitokens/pkg/document/browser"
	"github.com/gnana997/uitokens/pkg/service"
	"github.com/gnana997/uitokens/pkg/util"
)

// defaultConfigPath is looked up relative to the working directory.
const defaultConfigPath = ".uitokens/config.yaml"

// ProjectConfig holds the contents of .uitokens/config.yaml.
type ProjectConfig struct {
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`

	// MCPLog is the JSONL file receiving one entry per MCP tool call.
	MCPLog string `yaml:"mcp_log,omitempty"`

	Browser struct {
		RemoteURL         string        `yaml:"remote_url,omitempty"`
		Stealth           bool          `yaml:"stealth"`
		NavigationTimeout time.Duration `yaml:"navigation_timeout"`
	} `yaml:"browser"`

	// Stylesheets are doublestar patterns applied to every local page.
	Stylesheets []string `yaml:"stylesheets,omitempty"`

	Cache struct {
		Size int           `yaml:"size"`
		TTL  time.Duration `yaml:"ttl"`
	} `yaml:"cache"`

	HTTPAddr string `yaml:"http_addr"`
	Workers  int    `yaml:"workers,omitempty"`
}

// defaultProjectConfig returns the configuration used when no file exists.
func defaultProjectConfig() *ProjectConfig {
	cfg := &ProjectConfig{HTTPAddr: "127.0.0.1:8737"}
	cfg.Log.Level = string(util.LevelInfo)
	cfg.Log.Format = string(util.FormatText)
	cfg.Browser.NavigationTimeout = 30 * time.Second
	def := service.DefaultConfig()
	cfg.Cache.Size = def.CacheSize
	cfg.Cache.TTL = def.CacheTTL
	return cfg
}

// loadProjectConfig reads the config file at path, layered over the
// defaults. A missing file is not an error.
func loadProjectConfig(path string) (*ProjectConfig, error) {
	cfg := defaultProjectConfig()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// writeProjectConfig writes cfg to path, creating the directory. An
// existing file is left alone.
func writeProjectConfig(path string, cfg *ProjectConfig) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists: %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// loggerConfig maps the log section onto util.LoggerConfig. Logs go to
// stderr; stdout carries MCP frames and exported reports.
func (c *ProjectConfig) loggerConfig() util.LoggerConfig {
	lc := util.DefaultLoggerConfig()
	if c.Log.Level != "" {
		lc.Level = util.LogLevel(c.Log.Level)
	}
	if c.Log.Format != "" {
		lc.Format = util.LogFormat(c.Log.Format)
	}
	lc.Output = os.Stderr
	return lc
}

func (c *ProjectConfig) loaderConfig() document.Config {
	return document.Config{
		Browser: browser.Config{
			RemoteURL:         c.Browser.RemoteURL,
			Stealth:           c.Browser.Stealth,
			NavigationTimeout: c.Browser.NavigationTimeout,
		},
		Stylesheets: c.Stylesheets,
	}
}

func (c *ProjectConfig) serviceConfig() service.Config {
	return service.Config{
		CacheSize: c.Cache.Size,
		CacheTTL:  c.Cache.TTL,
	}
}
