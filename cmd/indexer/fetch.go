package main

import (
	"fmt"
	"log"
	"net/http"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/swagindex/mcp-server/internal/config"
	"github.com/swagindex/mcp-server/internal/diag"
	"github.com/swagindex/mcp-server/internal/fetch"
)

var fetchWorkDir string

var fetchCmd = &cobra.Command{
	Use:       "fetch main|stats",
	Short:     "Download the latest published swagger documents and index them",
	Long:      `Discovers the latest stable release, downloads its swagger documents into the work directory, writes a line index next to each and rewrites the endpoint map.`,
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"main", "stats"},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if fetchWorkDir != "" {
			cfg.WorkDir = fetchWorkDir
		}

		client := fetch.NewClient(http.DefaultClient, cfg.Fetch.Timeout(), cfg.Fetch.Token, cfg.Fetch.APIBase)
		diags := &diag.List{}
		p, err := newPipeline(cfg, args[0], client, diags)
		if err != nil {
			return err
		}

		printBanner(cmd.OutOrStdout(), "Fetching "+args[0],
			[2]string{"Repo", p.Release.Repo},
			[2]string{"Dir", p.Dir},
		)

		var res *fetch.Result
		if args[0] == "main" {
			res, err = p.RunVariants(cmd.Context())
		} else {
			res, err = p.RunSingle(cmd.Context())
		}
		reportDiags(diags)
		if err != nil {
			return err
		}
		printFetchResult(cmd, res, diags.Len())
		return nil
	},
}

func init() {
	fetchCmd.Flags().StringVar(&fetchWorkDir, "work-dir", "", "override the work directory")
	rootCmd.AddCommand(fetchCmd)
}

// newPipeline binds a release config to its source directory.
func newPipeline(cfg *config.Config, which string, client *fetch.Client, diags *diag.List) (*fetch.Pipeline, error) {
	release := cfg.Fetch.Main
	if which == "stats" {
		release = cfg.Fetch.Stats
	}
	src, ok := cfg.Source(release.Source)
	if !ok {
		return nil, diag.Missing("fetch."+which+".source", fmt.Errorf("no config source %q", release.Source))
	}
	return &fetch.Pipeline{
		Client:         client,
		Release:        release,
		Dir:            cfg.SourceDir(src),
		Service:        src.Name,
		DefaultVariant: cfg.DefaultVariant,
		Diags:          diags,
		Progress:       log.Printf,
	}, nil
}

func printFetchResult(cmd *cobra.Command, res *fetch.Result, warnings int) {
	w := cmd.OutOrStdout()
	if len(res.Variants) > 1 || (len(res.Variants) == 1 && res.Variants[0].Variant != "") {
		rows := make([][]string, 0, len(res.Variants))
		for _, v := range res.Variants {
			status := successStyle.Render("ok")
			if v.Skipped {
				status = warnStyle.Render("skipped")
			}
			rows = append(rows, []string{v.Variant, itoa(v.Added), itoa(v.Total), status})
		}
		printTable(w, []string{"Variant", "New", "Total", "Status"}, rows)
	}
	msg := fmt.Sprintf("Version %s: %d endpoints written to %s", res.Version, res.Records, filepath.ToSlash(res.MapPath))
	if res.Duplicates > 0 {
		msg += fmt.Sprintf(", %d duplicates discarded", res.Duplicates)
	}
	printResult(w, msg, warnings)
}
