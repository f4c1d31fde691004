package search

import (
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/swagindex/mcp-server/internal/config"
	"github.com/swagindex/mcp-server/internal/indexing"
	"github.com/swagindex/mcp-server/internal/routing"
)

// DefaultDocumentName is assumed when an index header names no source file.
const DefaultDocumentName = "swagger.yaml"

// Doc is one endpoint in the search index. Field names double as bleve
// field names.
type Doc struct {
	ID          string `json:"id"`
	Source      string `json:"source"` // index directory relative to the work dir
	Document    string `json:"document"`
	Service     string `json:"service"`
	Variant     string `json:"variant"`
	Method      string `json:"method"`
	Path        string `json:"path"`
	DisplayPath string `json:"display_path"`
	Summary     string `json:"summary"`
	Destination string `json:"destination"`
	Start       int    `json:"start"`
	End         int    `json:"end"`
}

// DocID is the stable identifier of an endpoint in a source.
func DocID(source, method, path string) string {
	return fmt.Sprintf("%s#%s %s", source, strings.ToUpper(method), path)
}

// Annotator fills in routing-dependent fields of a doc.
type Annotator func(d *Doc)

// DocsFromIndex converts one line index into docs.
func DocsFromIndex(source string, h indexing.Header, entries []indexing.Entry) []Doc {
	source = filepath.ToSlash(source)
	service, variant, _ := strings.Cut(source, "/")
	document := DefaultDocumentName
	if h.Source != "" {
		document = path.Base(filepath.ToSlash(h.Source))
	}
	if h.Service != "" {
		service = h.Service
	}

	docs := make([]Doc, 0, len(entries))
	for _, e := range entries {
		docs = append(docs, Doc{
			ID:          DocID(source, e.Method, e.Path),
			Source:      source,
			Document:    document,
			Service:     service,
			Variant:     variant,
			Method:      e.Method,
			Path:        e.Path,
			DisplayPath: e.Path,
			Summary:     e.Summary,
			Start:       e.Start,
			End:         e.End,
		})
	}
	return docs
}

// Collect reads every line index below workDir. Unreadable indexes are
// reported through warn and skipped.
func Collect(workDir string, annotate Annotator, warn func(path string, err error)) ([]Doc, error) {
	var docs []Doc
	err := filepath.WalkDir(workDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() != indexing.IndexFileName {
			return nil
		}
		h, entries, err := indexing.ReadIndexFile(p)
		if err != nil {
			if warn != nil {
				warn(p, err)
			}
			return nil
		}
		rel, err := filepath.Rel(workDir, filepath.Dir(p))
		if err != nil {
			return err
		}
		for _, doc := range DocsFromIndex(rel, h, entries) {
			if annotate != nil {
				annotate(&doc)
			}
			docs = append(docs, doc)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", workDir, err)
	}
	sort.SliceStable(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs, nil
}

// ConfigAnnotator derives display paths and destinations from the config
// sources whose directory matches the doc's first path segment.
func ConfigAnnotator(cfg *config.Config) Annotator {
	classifier := routing.NewClassifier(cfg.ClassifierOptions())
	byDir := map[string]config.SourceConfig{}
	for _, s := range cfg.Sources {
		byDir[s.Dir] = s
	}

	return func(d *Doc) {
		dir, _, _ := strings.Cut(d.Source, "/")
		src, ok := byDir[dir]
		if !ok {
			return
		}
		d.Service = src.Name
		d.DisplayPath = src.PathPrefix + d.Path
		if !src.Classify {
			d.Destination = src.Destination
			return
		}
		variant := d.Variant
		if variant == "" {
			variant = classifier.DefaultVariant()
		}
		if t, ok := classifier.Classify(d.Path, variant); ok {
			d.Destination = t.Destination
		}
	}
}
