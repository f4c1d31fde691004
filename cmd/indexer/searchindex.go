package main

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/swagindex/mcp-server/internal/config"
	"github.com/swagindex/mcp-server/internal/search"
)

var (
	searchWorkDir string
	searchDir     string
)

var searchIndexCmd = &cobra.Command{
	Use:   "search-index",
	Short: "Build the endpoint search index from the line indexes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if searchWorkDir != "" {
			cfg.WorkDir = searchWorkDir
		}
		if searchDir != "" {
			cfg.SearchDir = searchDir
		}

		count, err := buildSearchIndex(cfg)
		if err != nil {
			return err
		}
		printResult(cmd.OutOrStdout(), fmt.Sprintf("Indexed %d endpoints into %s", count, search.IndexPath(cfg.SearchDir)), 0)
		return nil
	},
}

func init() {
	searchIndexCmd.Flags().StringVar(&searchWorkDir, "work-dir", "", "override the work directory")
	searchIndexCmd.Flags().StringVar(&searchDir, "search-dir", "", "override the search index directory")
	rootCmd.AddCommand(searchIndexCmd)
}

// buildSearchIndex collects every line index under the work dir and rebuilds
// the search index while holding the index lock.
func buildSearchIndex(cfg *config.Config) (int, error) {
	startTime := time.Now()
	lock := search.NewLock(cfg.SearchDir)
	if err := lock.Acquire(); err != nil {
		return 0, err
	}
	defer lock.Release()

	docs, err := search.Collect(cfg.WorkDir, search.ConfigAnnotator(cfg), func(path string, err error) {
		log.Printf("Warning: Skipping unreadable index %s: %v", path, err)
	})
	if err != nil {
		return 0, err
	}
	if len(docs) == 0 {
		log.Printf("Warning: No line indexes found under %s", cfg.WorkDir)
	}

	idx, err := search.Build(cfg.SearchDir, docs)
	if err != nil {
		return 0, err
	}
	if err := idx.Close(); err != nil {
		return 0, fmt.Errorf("failed to close index: %w", err)
	}
	log.Printf("✓ Search index ready in %v", time.Since(startTime).Round(time.Millisecond))
	return len(docs), nil
}
