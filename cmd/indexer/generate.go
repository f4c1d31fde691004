package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/swagindex/mcp-server/internal/config"
	"github.com/swagindex/mcp-server/internal/diag"
	"github.com/swagindex/mcp-server/internal/endpoint"
	"github.com/swagindex/mcp-server/internal/enrich"
	"github.com/swagindex/mcp-server/internal/render"
	"github.com/swagindex/mcp-server/internal/routing"
	"github.com/swagindex/mcp-server/internal/specdoc"
)

var generateOut string

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Render grouped reference files from the endpoint maps",
	Long: `Loads the endpoint map of every configured source, routes each record to its
destination file, enriches it from the source document and writes the
destination files, the master index and the destinations manifest.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if generateOut != "" {
			cfg.OutputDir = generateOut
		}

		diags := &diag.List{}
		res, err := generate(cfg, diags, time.Now())
		reportDiags(diags)
		if err != nil {
			return err
		}
		printGenerateResult(cmd, res, diags.Len())
		return nil
	},
}

func init() {
	generateCmd.Flags().StringVar(&generateOut, "out", "", "override the output directory")
	rootCmd.AddCommand(generateCmd)
}

type generateResult struct {
	Groups  []*routing.Group
	Stats   routing.Stats
	Misses  int
	Written *render.Written
}

// generate runs load, route, enrich and render for every configured source.
// A missing or malformed endpoint map aborts before anything is written.
func generate(cfg *config.Config, diags *diag.List, now time.Time) (*generateResult, error) {
	classifier := routing.NewClassifier(cfg.ClassifierOptions())
	router := routing.NewRouter(classifier, cfg.RoutingDestinations(), diags)

	dirs := make(map[string]string, len(cfg.Sources))
	for _, src := range cfg.Sources {
		dirs[src.Name] = cfg.SourceDir(src)
		records, err := endpoint.LoadMap(filepath.Join(dirs[src.Name], endpoint.MapFileName))
		if err != nil {
			return nil, fmt.Errorf("source %s: %w", src.Name, err)
		}
		router.Route(src.RoutingSource(), records)
	}

	groups := router.Groups()
	cache := specdoc.NewCache(diags)
	enricher := enrich.New(cache, func(rec *endpoint.Record) string {
		return filepath.Join(dirs[rec.Source], filepath.FromSlash(rec.SwaggerFile))
	})
	misses := enricher.EnrichGroups(groups)
	if misses > 0 {
		diags.Add(diag.KindSoftLookupMiss, "", "%d records rendered without parameters", misses)
	}

	written, err := render.Write(groups, render.Layout{
		OutputDir: cfg.OutputDir,
		APIDir:    cfg.APIDir,
		IndexFile: cfg.IndexFile,
		Index: render.IndexOptions{
			Title:  cfg.IndexTitle,
			Intro:  cfg.IndexIntro,
			APIDir: filepath.ToSlash(cfg.APIDir),
		},
	}, now)
	if err != nil {
		return nil, err
	}
	return &generateResult{Groups: groups, Stats: router.Stats(), Misses: misses, Written: written}, nil
}

func printGenerateResult(cmd *cobra.Command, res *generateResult, warnings int) {
	rows := make([][]string, 0, len(res.Groups))
	for _, g := range res.Groups {
		rows = append(rows, []string{g.ID, g.Title, itoa(len(g.Sections)), itoa(g.Len())})
	}
	w := cmd.OutOrStdout()
	printTable(w, []string{"Destination", "Title", "Sections", "Endpoints"}, rows)
	printResult(w, fmt.Sprintf("Routed %d endpoints (%d filtered, %d unclassified) into %d files, index at %s",
		res.Stats.Routed, res.Stats.Filtered, res.Stats.Unclassified, len(res.Written.Destinations), res.Written.Index), warnings)
}
