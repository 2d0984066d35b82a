package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/uitokens/pkg/util"
)

func TestLoadProjectConfig_Missing(t *testing.T) {
	cfg, err := loadProjectConfig(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, defaultProjectConfig(), cfg)
	assert.Equal(t, 30*time.Second, cfg.Browser.NavigationTimeout)
	assert.Equal(t, 64, cfg.Cache.Size)
}

func TestLoadProjectConfig_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log:
  level: debug
  format: json
mcp_log: calls.jsonl
browser:
  remote_url: ws://127.0.0.1:9222/devtools/browser/abc
  stealth: true
  navigation_timeout: 45s
stylesheets:
  - "assets/**/*.css"
cache:
  ttl: 1m
`), 0644))

	cfg, err := loadProjectConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "calls.jsonl", cfg.MCPLog)
	assert.True(t, cfg.Browser.Stealth)
	assert.Equal(t, 45*time.Second, cfg.Browser.NavigationTimeout)
	assert.Equal(t, []string{"assets/**/*.css"}, cfg.Stylesheets)
	assert.Equal(t, time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 64, cfg.Cache.Size, "unset keys keep their defaults")
	assert.Equal(t, "127.0.0.1:8737", cfg.HTTPAddr)

	lc := cfg.loaderConfig()
	assert.Equal(t, "ws://127.0.0.1:9222/devtools/browser/abc", lc.Browser.RemoteURL)
	assert.Equal(t, []string{"assets/**/*.css"}, lc.Stylesheets)

	logCfg := cfg.loggerConfig()
	assert.Equal(t, util.LevelDebug, logCfg.Level)
	assert.Equal(t, util.FormatJSON, logCfg.Format)
}

func TestLoadProjectConfig_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cache: [not, a, map]"), 0644))

	_, err := loadProjectConfig(path)
	assert.ErrorContains(t, err, "parse")
}

func TestWriteProjectConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".uitokens", "config.yaml")
	require.NoError(t, writeProjectConfig(path, defaultProjectConfig()))

	cfg, err := loadProjectConfig(path)
	require.NoError(t, err)
	assert.Equal(t, defaultProjectConfig(), cfg)

	assert.ErrorContains(t, writeProjectConfig(path, defaultProjectConfig()), "already exists")
}

func TestConfigCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	var stdout, stderr bytes.Buffer

	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs([]string{"--config", path, "config", "init"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, stdout.String(), "Generated default config file")

	stdout.Reset()
	cmd = newRootCmd(&stdout, &stderr)
	cmd.SetArgs([]string{"--config", path, "config", "show"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, stdout.String(), "navigation_timeout: 30s")
	assert.Contains(t, stdout.String(), "http_addr: 127.0.0.1:8737")
}
