package mcpserver

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// Manifest is the conventional "mcpServers" configuration document that MCP
// clients read to discover stdio servers.
type Manifest struct {
	MCPServers map[string]ManifestEntry `json:"mcpServers" yaml:"mcpServers"`
}

// ManifestEntry is one server in a Manifest. Timeout is in seconds.
type ManifestEntry struct {
	StdioParams `yaml:",inline"`
	Timeout     int `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// NewManifest collects servers by name. A later server replaces an earlier
// one with the same name.
func NewManifest(servers ...StdioServer) Manifest {
	m := Manifest{MCPServers: make(map[string]ManifestEntry, len(servers))}
	for _, s := range servers {
		m.MCPServers[s.Name] = ManifestEntry{
			StdioParams: s.Params,
			Timeout:     s.ClientSessionTimeoutSeconds,
		}
	}
	return m
}

// JSON renders the manifest as indented JSON.
func (m Manifest) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal manifest: %w", err)
	}
	return append(data, '\n'), nil
}

// YAML renders the manifest as YAML.
func (m Manifest) YAML() ([]byte, error) {
	data, err := yaml.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal manifest: %w", err)
	}
	return data, nil
}
