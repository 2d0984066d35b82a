package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- JSON merge tests ---

func TestMergeServerEntry_EmptyFile(t *testing.T) {
	out, err := mergeServerEntry(nil, "mcpServers", nil)
	require.NoError(t, err)
	require.NotNil(t, out)

	var config map[string]any
	require.NoError(t, json.Unmarshal(out, &config))

	servers := config["mcpServers"].(map[string]any)
	entry := servers["uitokens"].(map[string]any)
	assert.Equal(t, "uitokens", entry["command"])
	assert.Equal(t, []any{"serve"}, entry["args"])
}

func TestMergeServerEntry_ExistingServers(t *testing.T) {
	existing := []byte(`{
  "mcpServers": {
    "other-server": {
      "command": "other",
      "args": ["start"]
    }
  }
}`)
	out, err := mergeServerEntry(existing, "mcpServers", nil)
	require.NoError(t, err)

	var config map[string]any
	require.NoError(t, json.Unmarshal(out, &config))

	servers := config["mcpServers"].(map[string]any)
	assert.Contains(t, servers, "other-server")
	assert.Contains(t, servers, "uitokens")
}

func TestMergeServerEntry_AlreadyConfigured(t *testing.T) {
	existing := []byte(`{"mcpServers": {"uitokens": {"command": "uitokens", "args": ["serve"]}}}`)
	out, err := mergeServerEntry(existing, "mcpServers", nil)
	assert.NoError(t, err)
	assert.Nil(t, out, "should return nil when already configured")
}

func TestMergeServerEntry_VSCodeFormat(t *testing.T) {
	out, err := mergeServerEntry(nil, "servers", map[string]string{"type": "stdio"})
	require.NoError(t, err)

	var config map[string]any
	require.NoError(t, json.Unmarshal(out, &config))

	entry := config["servers"].(map[string]any)["uitokens"].(map[string]any)
	assert.Equal(t, "stdio", entry["type"])
}

func TestMergeServerEntry_InvalidJSON(t *testing.T) {
	_, err := mergeServerEntry([]byte("not json"), "mcpServers", nil)
	assert.ErrorContains(t, err, "invalid JSON")
}

func TestMergeServerEntry_TrailingNewline(t *testing.T) {
	out, err := mergeServerEntry(nil, "mcpServers", nil)
	require.NoError(t, err)
	assert.Equal(t, byte('\n'), out[len(out)-1])
}

// --- command tests ---

func TestSetupCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".vscode", "mcp.json")

	out, _, err := run(t, "setup", "--agent", "vscode", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "+ uitokens configured")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var config map[string]any
	require.NoError(t, json.Unmarshal(data, &config))
	assert.Contains(t, config["servers"], "uitokens")

	out, _, err = run(t, "setup", "--agent", "vscode", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "already configured")
}

func TestSetupCommand_Errors(t *testing.T) {
	_, _, err := run(t, "setup")
	assert.Error(t, err)

	_, _, err = run(t, "setup", "--agent", "emacs")
	assert.ErrorContains(t, err, "unknown agent")
}
