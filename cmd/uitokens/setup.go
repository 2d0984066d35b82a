package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// serverName is the key of the uitokens entry in agent MCP configs.
const serverName = "uitokens"

// agentPresets maps well-known agents to their MCP config file and the
// JSON key holding server entries.
var agentPresets = map[string]struct {
	path  string
	key   string
	extra map[string]string
}{
	"cursor": {path: filepath.Join(".cursor", "mcp.json"), key: "mcpServers"},
	"vscode": {path: filepath.Join(".vscode", "mcp.json"), key: "servers", extra: map[string]string{"type": "stdio"}},
	"claude": {path: ".mcp.json", key: "mcpServers"},
}

func newSetupCmd(a *app) *cobra.Command {
	var (
		agent string
		file  string
		key   string
	)
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Register the uitokens MCP server in an agent config file",
		Long: `Add a "uitokens" server entry (command uitokens, args ["serve"]) to an
agent's MCP config file. Existing entries are preserved; an existing
uitokens entry is left untouched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var extra map[string]string
			if agent != "" {
				p, ok := agentPresets[agent]
				if !ok {
					return a.fail(fmt.Errorf("unknown agent %q (want cursor, vscode or claude)", agent))
				}
				if !cmd.Flags().Changed("file") {
					file = p.path
				}
				if !cmd.Flags().Changed("key") {
					key = p.key
				}
				extra = p.extra
			}
			if file == "" {
				return a.fail(fmt.Errorf("--agent or --file is required"))
			}

			changed, err := configureFile(file, key, extra)
			if err != nil {
				return a.fail(err)
			}
			if !changed {
				fmt.Fprintf(a.stdout, "%s already configured in %s\n", serverName, file)
				return nil
			}
			fmt.Fprintf(a.stdout, "+ %s configured (%s)\n", serverName, file)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&agent, "agent", "", "preset: cursor, vscode or claude")
	f.StringVar(&file, "file", "", "MCP config file to update")
	f.StringVar(&key, "key", "mcpServers", "JSON key holding server entries")
	return cmd
}

// serverEntry returns the MCP server config object for uitokens.
func serverEntry(extra map[string]string) map[string]any {
	entry := map[string]any{
		"command": serverName,
		"args":    []any{"serve"},
	}
	for k, v := range extra {
		entry[k] = v
	}
	return entry
}

// mergeServerEntry adds the uitokens entry under serversKey of existing
// (which may be empty) and returns the merged JSON. Returns nil, nil when
// an entry already exists.
func mergeServerEntry(existing []byte, serversKey string, extra map[string]string) ([]byte, error) {
	config := make(map[string]any)
	if len(existing) > 0 {
		if err := json.Unmarshal(existing, &config); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
	}

	servers, ok := config[serversKey].(map[string]any)
	if !ok {
		servers = make(map[string]any)
	}
	if _, exists := servers[serverName]; exists {
		return nil, nil
	}

	servers[serverName] = serverEntry(extra)
	config[serversKey] = servers

	out, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

// configureFile reads, merges and writes configPath. It reports whether
// the file changed.
func configureFile(configPath, serversKey string, extra map[string]string) (bool, error) {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return false, fmt.Errorf("create directory: %w", err)
	}

	existing, err := os.ReadFile(configPath)
	if err != nil && !os.IsNotExist(err) {
		return false, fmt.Errorf("read %s: %w", configPath, err)
	}

	merged, err := mergeServerEntry(existing, serversKey, extra)
	if err != nil {
		return false, err
	}
	if merged == nil {
		return false, nil
	}
	return true, os.WriteFile(configPath, merged, 0644)
}
