package main

import (
	"fmt"
	"io"

	"github.com/hairizuanbinnoorazman/agent-backend/mcpserver"
	"github.com/spf13/cobra"
)

var (
	mcpFormat  string
	mcpTimeout int
)

var mcpCmd = &cobra.Command{
	Use:   "mcp-config",
	Short: "Print the Playwright MCP server configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		timeout := cfg.MCP.TimeoutSeconds
		if cmd.Flags().Changed("timeout") {
			timeout = mcpTimeout
		}
		return writeManifest(cmd.OutOrStdout(), mcpFormat, timeout)
	},
}

func init() {
	mcpCmd.Flags().StringVarP(&mcpFormat, "format", "f", "json", "output format (json or yaml)")
	mcpCmd.Flags().IntVar(&mcpTimeout, "timeout", mcpserver.DefaultTimeoutSeconds, "client session timeout in seconds")
	rootCmd.AddCommand(mcpCmd)
}

func writeManifest(w io.Writer, format string, timeoutSeconds int) error {
	server := mcpserver.NewPlaywrightServer(mcpserver.WithTimeout(timeoutSeconds))
	manifest := mcpserver.NewManifest(server)

	var (
		data []byte
		err  error
	)
	switch format {
	case "json":
		data, err = manifest.JSON()
	case "yaml":
		data, err = manifest.YAML()
	default:
		return fmt.Errorf("unsupported format: %q", format)
	}
	if err != nil {
		return fmt.Errorf("failed to render manifest: %w", err)
	}

	_, err = w.Write(data)
	return err
}
