package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/swagindex/mcp-server/internal/config"
	"github.com/swagindex/mcp-server/internal/diag"
	"github.com/swagindex/mcp-server/internal/indexing"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "indexer",
	Short: "Offline swagger indexing pipeline",
	Long: `Builds line indexes for swagger documents, fetches the published documents,
generates grouped reference files and builds the endpoint search index.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.Version = fmt.Sprintf("v%d", indexing.IndexSchemaVersion)
	rootCmd.SetVersionTemplate("swagindex indexer (line index format {{.Version}})\n")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "pipeline config file (defaults to the embedded Blockscout config)")
}

// loadConfig reads the config named by --config.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// reportDiags prints the collected warnings the way the rest of the CLI logs.
func reportDiags(diags *diag.List) {
	if diags.Len() == 0 {
		return
	}
	diags.Log(log.Default())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if diag.IsFatal(err) {
			log.Printf("Fatal (%s): %v", diag.KindOf(err), err)
		} else {
			log.Printf("Error: %v", err)
		}
		os.Exit(1)
	}
}
