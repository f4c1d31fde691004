package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/swagindex/mcp-server/internal/config"
	"github.com/swagindex/mcp-server/tools"
)

const (
	version     = "0.3.0"
	serverName  = "swagindex-mcp-server"
	description = "MCP server for API endpoint lookup over indexed swagger documents"
)

func main() {
	var (
		configPath string
		watch      bool
	)
	cmd := &cobra.Command{
		Use:          serverName,
		Short:        description,
		Version:      version,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), configPath, watch)
		},
	}
	cmd.SetVersionTemplate(fmt.Sprintf("%s version %s\n", serverName, version))
	cmd.Flags().StringVar(&configPath, "config", "", "pipeline config file (defaults to the embedded Blockscout config)")
	cmd.Flags().BoolVar(&watch, "watch", false, "rebuild the search index when line indexes change")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := cmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, watch bool) error {
	// Set up logging to stderr (MCP uses stdout for protocol)
	log.SetOutput(os.Stderr)
	log.Printf("%s v%s starting...", serverName, version)

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	server := createMCPServer()
	endpoints := tools.NewServer(cfg)
	if err := endpoints.Init(); err != nil {
		log.Printf("Warning: Endpoint search initialization failed: %v", err)
		log.Printf("Endpoint search will attempt to initialize on first use")
	}
	defer func() {
		if err := endpoints.Close(); err != nil {
			log.Printf("Error closing endpoint search: %v", err)
		}
	}()

	toolCount := endpoints.Register(server)
	log.Printf("✓ All tools registered: %d tools", toolCount)

	if watch {
		w, err := endpoints.Watch(tools.DefaultWatchDebounce)
		if err != nil {
			log.Printf("Warning: Failed to watch %s: %v", cfg.WorkDir, err)
		} else {
			defer w.Close()
		}
	}

	log.Printf("✓ Server ready and waiting for connections")
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// createMCPServer initializes the MCP server
func createMCPServer() *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    serverName,
			Version: version,
		},
		&mcp.ServerOptions{Instructions: description},
	)

	log.Printf("Server initialized: %s v%s", serverName, version)
	return server
}
