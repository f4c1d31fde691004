package render

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/swagindex/mcp-server/internal/diag"
	"github.com/swagindex/mcp-server/internal/routing"
)

// ManifestFileName is written next to the master index.
const ManifestFileName = "destinations.json"

type ManifestSection struct {
	Heading string `json:"heading"`
	Records int    `json:"records"`
}

type ManifestEntry struct {
	ID       string            `json:"id"`
	Title    string            `json:"title"`
	File     string            `json:"file"`
	Topic    bool              `json:"topic"`
	Records  int               `json:"records"`
	Sections []ManifestSection `json:"sections"`
}

// Manifest lists generated destinations for consumers that cannot parse the
// markdown.
type Manifest struct {
	Generated    time.Time       `json:"generated"`
	Index        string          `json:"index"`
	Total        int             `json:"total"`
	Destinations []ManifestEntry `json:"destinations"`
}

// BuildManifest summarizes groups in output order.
func BuildManifest(groups []*routing.Group, apiDir, index string, now time.Time) Manifest {
	m := Manifest{Generated: now.UTC(), Index: index, Destinations: []ManifestEntry{}}
	for _, g := range groups {
		e := ManifestEntry{
			ID:       g.ID,
			Title:    g.Title,
			File:     linkTarget(apiDir, g.ID),
			Topic:    g.Topic,
			Records:  g.Len(),
			Sections: []ManifestSection{},
		}
		for _, s := range g.Sections {
			e.Sections = append(e.Sections, ManifestSection{Heading: s.Heading, Records: len(s.Records)})
		}
		m.Total += e.Records
		m.Destinations = append(m.Destinations, e)
	}
	return m
}

// LoadManifest reads a manifest written by Write.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, diag.Missing(path, err)
	}
	return ParseManifest(path, data)
}

// ParseManifest decodes manifest bytes. subject names the source in errors.
func ParseManifest(subject string, data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, diag.Malformed(subject, err)
	}
	return &m, nil
}

// Layout places generated files.
type Layout struct {
	OutputDir string // holds the master index and manifest
	APIDir    string // destination files, relative to OutputDir
	IndexFile string
	Index     IndexOptions
}

// Written lists what Write produced.
type Written struct {
	Destinations []string
	Index        string
	Manifest     string
}

// Write renders every group, the master index and the manifest.
func Write(groups []*routing.Group, layout Layout, now time.Time) (*Written, error) {
	apiPath := filepath.Join(layout.OutputDir, layout.APIDir)
	if err := os.MkdirAll(apiPath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	out := &Written{}
	for _, g := range groups {
		p := filepath.Join(apiPath, g.ID)
		if err := os.WriteFile(p, []byte(Destination(g)), 0644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", g.ID, err)
		}
		out.Destinations = append(out.Destinations, p)
	}

	opts := layout.Index
	if opts.APIDir == "" {
		opts.APIDir = filepath.ToSlash(layout.APIDir)
	}
	out.Index = filepath.Join(layout.OutputDir, layout.IndexFile)
	if err := os.WriteFile(out.Index, []byte(Index(groups, opts)), 0644); err != nil {
		return nil, fmt.Errorf("failed to write index: %w", err)
	}

	manifest := BuildManifest(groups, opts.APIDir, layout.IndexFile, now)
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal manifest: %w", err)
	}
	out.Manifest = filepath.Join(layout.OutputDir, ManifestFileName)
	if err := os.WriteFile(out.Manifest, append(data, '\n'), 0644); err != nil {
		return nil, fmt.Errorf("failed to write manifest: %w", err)
	}
	return out, nil
}
