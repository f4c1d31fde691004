package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"path"
	"path/filepath"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/swagindex/mcp-server/internal/diag"
	"github.com/swagindex/mcp-server/internal/indexing"
	"github.com/swagindex/mcp-server/internal/render"
	"github.com/swagindex/mcp-server/internal/search"
)

var (
	ErrUnknownEndpoint = errors.New("endpoint not found in line index")
	ErrNoRange         = errors.New("endpoint has no resolved line range")
)

// SearchEndpointsInput defines input for search_endpoints tool
type SearchEndpointsInput struct {
	Query      string `json:"query" jsonschema:"Search terms matched against method, path, summary and destination"`
	MaxResults int    `json:"max_results,omitempty" jsonschema:"Maximum number of results (optional, defaults to 10, at most 20)"`
}

// SearchEndpointsOutput defines output for search_endpoints tool
type SearchEndpointsOutput struct {
	Query     string       `json:"query"`
	TotalHits int          `json:"total_hits"`
	Results   []search.Hit `json:"results"`
}

// SearchEndpoints runs a full-text query against the live index, building
// it first when the server started without one.
func (s *Server) SearchEndpoints(ctx context.Context, req *mcp.CallToolRequest, input SearchEndpointsInput) (*mcp.CallToolResult, SearchEndpointsOutput, error) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, SearchEndpointsOutput{}, fmt.Errorf("query is required")
	}

	idx, release, err := s.holder.Acquire()
	if errors.Is(err, search.ErrNoIndex) {
		release()
		log.Printf("Search index not initialized, initializing now...")
		if err := s.Init(); err != nil {
			return nil, SearchEndpointsOutput{}, fmt.Errorf("failed to initialize search index: %w", err)
		}
		idx, release, err = s.holder.Acquire()
	}
	defer release()
	if err != nil {
		return nil, SearchEndpointsOutput{}, err
	}

	hits, total, err := search.Query(idx, input.Query, input.MaxResults)
	if err != nil {
		return nil, SearchEndpointsOutput{}, err
	}
	return nil, SearchEndpointsOutput{Query: input.Query, TotalHits: int(total), Results: hits}, nil
}

// GetEndpointInput defines input for get_endpoint tool
type GetEndpointInput struct {
	Source string `json:"source" jsonschema:"Index directory of the endpoint as returned by search_endpoints (e.g. main-indexer/default)"`
	Method string `json:"method" jsonschema:"HTTP method (e.g. GET)"`
	Path   string `json:"path" jsonschema:"Path exactly as declared in the swagger document (e.g. /v2/blocks/{block_number_or_hash})"`
}

// GetEndpointOutput defines output for get_endpoint tool
type GetEndpointOutput struct {
	Source    string `json:"source"`
	Document  string `json:"document"`
	Method    string `json:"method"`
	Path      string `json:"path"`
	Summary   string `json:"summary"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
	Content   string `json:"content"`
}

// GetEndpoint returns the raw document lines of one endpoint
func (s *Server) GetEndpoint(ctx context.Context, req *mcp.CallToolRequest, input GetEndpointInput) (*mcp.CallToolResult, GetEndpointOutput, error) {
	out, err := s.lookupEndpoint(input.Source, input.Method, input.Path)
	if err != nil {
		return nil, GetEndpointOutput{}, err
	}
	return nil, out, nil
}

func (s *Server) lookupEndpoint(source, method, endpointPath string) (GetEndpointOutput, error) {
	source = strings.Trim(strings.TrimSpace(source), "/")
	method = strings.ToUpper(strings.TrimSpace(method))
	if source == "" || method == "" || endpointPath == "" {
		return GetEndpointOutput{}, fmt.Errorf("source, method and path are required")
	}

	indexName := path.Join(source, indexing.IndexFileName)
	data, err := s.specs.ReadFile(indexName)
	if err != nil {
		return GetEndpointOutput{}, diag.Missing(indexName, err)
	}
	h, entries, err := indexing.ReadIndex(bytes.NewReader(data))
	if err != nil {
		return GetEndpointOutput{}, diag.Malformed(indexName, err)
	}

	var entry indexing.Entry
	found := false
	for _, e := range entries {
		if e.Method == method && e.Path == endpointPath {
			entry, found = e, true
			break
		}
	}
	if !found {
		return GetEndpointOutput{}, fmt.Errorf("%s %s in %s: %w", method, endpointPath, source, ErrUnknownEndpoint)
	}
	if !entry.HasRange() {
		return GetEndpointOutput{}, fmt.Errorf("%s %s in %s: %w", method, endpointPath, source, ErrNoRange)
	}

	document := search.DefaultDocumentName
	if h.Source != "" {
		document = path.Base(filepath.ToSlash(h.Source))
	}
	docName := path.Join(source, document)
	raw, err := s.specs.ReadFile(docName)
	if err != nil {
		return GetEndpointOutput{}, diag.Missing(docName, err)
	}
	lines := indexing.SplitLines(string(raw))
	if entry.End > len(lines) {
		return GetEndpointOutput{}, diag.Malformed(docName, fmt.Errorf("range %d-%d exceeds %d lines, index is out of date", entry.Start, entry.End, len(lines)))
	}

	return GetEndpointOutput{
		Source:    source,
		Document:  document,
		Method:    entry.Method,
		Path:      entry.Path,
		Summary:   entry.Summary,
		StartLine: entry.Start,
		EndLine:   entry.End,
		Content:   strings.Join(lines[entry.Start-1:entry.End], "\n"),
	}, nil
}

// ListDestinationsInput defines input for list_destinations tool
type ListDestinationsInput struct{}

// ListDestinationsOutput defines output for list_destinations tool
type ListDestinationsOutput struct {
	*render.Manifest
}

// ListDestinations returns the manifest written by the generator
func (s *Server) ListDestinations(ctx context.Context, req *mcp.CallToolRequest, input ListDestinationsInput) (*mcp.CallToolResult, ListDestinationsOutput, error) {
	data, err := s.output.ReadFile(render.ManifestFileName)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ListDestinationsOutput{}, fmt.Errorf("no %s in %s, run the generate command first: %w", render.ManifestFileName, s.cfg.OutputDir, diag.Missing(render.ManifestFileName, err))
		}
		return nil, ListDestinationsOutput{}, diag.Missing(render.ManifestFileName, err)
	}
	m, err := render.ParseManifest(render.ManifestFileName, data)
	if err != nil {
		return nil, ListDestinationsOutput{}, err
	}
	return nil, ListDestinationsOutput{Manifest: m}, nil
}
