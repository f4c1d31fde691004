package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/swagindex/mcp-server/internal/indexing"
	"github.com/swagindex/mcp-server/internal/specdoc"
)

var (
	indexOutput  string
	indexService string
	indexBatch   string
)

var indexCmd = &cobra.Command{
	Use:   "index [file]",
	Short: "Write the line index of a swagger document",
	Long: `Scans one swagger document and writes its line index, to --output or stdout.
With --batch, every swagger.yaml below the directory gets a swagger.index next to it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if indexBatch != "" {
			if len(args) > 0 {
				return fmt.Errorf("--batch takes no file argument")
			}
			return runIndexBatch(cmd.OutOrStdout(), indexBatch)
		}
		if len(args) != 1 {
			return fmt.Errorf("a swagger file or --batch <dir> is required")
		}
		return runIndexFile(cmd.OutOrStdout(), args[0], indexOutput, indexService)
	},
}

func init() {
	indexCmd.Flags().StringVarP(&indexOutput, "output", "o", "", "write the index to this file instead of stdout")
	indexCmd.Flags().StringVar(&indexService, "service", "", "service name for the header (defaults to the parent directory)")
	indexCmd.Flags().StringVar(&indexBatch, "batch", "", "index every swagger.yaml below this directory")
	rootCmd.AddCommand(indexCmd)
}

func serviceFor(file string) string {
	abs, err := filepath.Abs(file)
	if err != nil {
		abs = file
	}
	return filepath.Base(filepath.Dir(abs))
}

func runIndexFile(w io.Writer, file, output, service string) error {
	if service == "" {
		service = serviceFor(file)
	}
	h, entries, err := specdoc.IndexFile(file, service)
	if err != nil {
		return err
	}
	if output == "" {
		return indexing.WriteIndex(w, h, entries)
	}
	if err := indexing.WriteIndexFile(output, h, entries); err != nil {
		return err
	}
	log.Printf("✓ Wrote %d endpoints to %s", len(entries), output)
	return nil
}

// batchDocuments finds every swagger.yaml below dir in lexical order.
func batchDocuments(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && d.Name() == "swagger.yaml" {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// runIndexBatch indexes every document below dir. A document that fails is
// reported and skipped; the run fails only when nothing was indexed.
func runIndexBatch(w io.Writer, dir string) error {
	files, err := batchDocuments(dir)
	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", dir, err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no swagger.yaml files found below %s: %w", dir, os.ErrNotExist)
	}

	var rows [][]string
	var failed []error
	for _, file := range files {
		rel, _ := filepath.Rel(dir, file)
		service := serviceFor(file)
		src, err := specdoc.Open(file)
		if err != nil {
			log.Printf("Warning: Failed to index %s: %v", rel, err)
			failed = append(failed, err)
			rows = append(rows, []string{filepath.ToSlash(rel), service, "-", warnStyle.Render("failed")})
			continue
		}
		entries := src.Entries()
		out := filepath.Join(filepath.Dir(file), indexing.IndexFileName)
		if err := indexing.WriteIndexFile(out, src.Header(service, filepath.ToSlash(rel), len(entries)), entries); err != nil {
			return err
		}
		rows = append(rows, []string{filepath.ToSlash(rel), service, itoa(len(entries)), successStyle.Render("ok")})
	}

	printTable(w, []string{"Document", "Service", "Endpoints", "Status"}, rows)
	if len(failed) == len(files) {
		return errors.Join(failed...)
	}
	printResult(w, fmt.Sprintf("Indexed %d of %d documents", len(files)-len(failed), len(files)), len(failed))
	return nil
}
