package specdoc

import (
	"errors"
	"os"
	"strings"

	"github.com/swagindex/mcp-server/internal/diag"
	"github.com/swagindex/mcp-server/internal/indexing"
)

// Source is a document read once from disk: its raw lines, the structural
// view and the resolved line range of every method block.
type Source struct {
	Path     string
	Lines    []string
	Doc      *Document
	Ranges   map[indexing.Key]indexing.Range
	Metadata indexing.Metadata
}

// Open reads path and prepares it for indexing. A document without a paths
// section is reported as malformed input.
func Open(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, diag.Missing(path, err)
	}
	return NewSource(path, data)
}

// NewSource builds a Source from already loaded bytes.
func NewSource(path string, data []byte) (*Source, error) {
	doc, err := Parse(data)
	if err != nil {
		return nil, diag.Malformed(path, err)
	}
	if !doc.HasPaths() {
		return nil, diag.Malformed(path, ErrNoPaths)
	}

	lines := indexing.SplitLines(string(data))
	meta := indexing.DetectMetadata(lines)
	if meta.OpenAPI == "" {
		meta.OpenAPI = doc.SpecVersion()
	}
	if meta.Version == "" {
		meta.Version = doc.Info.Version
	}

	return &Source{
		Path:     path,
		Lines:    lines,
		Doc:      doc,
		Ranges:   indexing.FindLineRanges(lines),
		Metadata: meta,
	}, nil
}

// Endpoint is one operation of a source with its line range.
type Endpoint struct {
	Path      string
	Method    string // lowercase
	Operation *Operation
	Range     indexing.Range // zero when the scanner did not see the block
}

// Endpoints lists operations in declaration order of paths and canonical
// method order within a path.
func (s *Source) Endpoints() []Endpoint {
	var out []Endpoint
	for _, path := range s.Doc.Paths.Order {
		item := s.Doc.Paths.Items[path]
		if item == nil {
			continue
		}
		for _, method := range indexing.Methods {
			op, ok := item.Operations[method]
			if !ok {
				continue
			}
			out = append(out, Endpoint{
				Path:      path,
				Method:    method,
				Operation: op,
				Range:     s.Ranges[indexing.Key{Path: path, Method: method}],
			})
		}
	}
	return out
}

// Entries converts the source into sorted line index entries.
func (s *Source) Entries() []indexing.Entry {
	endpoints := s.Endpoints()
	entries := make([]indexing.Entry, 0, len(endpoints))
	for _, ep := range endpoints {
		entries = append(entries, indexing.Entry{
			Method:  strings.ToUpper(ep.Method),
			Path:    ep.Path,
			Summary: indexing.Summarize(ep.Operation.Summary, ep.Operation.OperationID, ep.Operation.Description),
			Start:   ep.Range.Start,
			End:     ep.Range.End,
		})
	}
	indexing.SortEntries(entries)
	return entries
}

// Header describes the source for its line index. sourceID defaults to the
// file path.
func (s *Source) Header(service, sourceID string, count int) indexing.Header {
	if sourceID == "" {
		sourceID = s.Path
	}
	return indexing.Header{
		Service:  service,
		Metadata: s.Metadata,
		Source:   sourceID,
		Count:    count,
	}
}

// IndexFile opens path and returns the header and entries of its line index.
func IndexFile(path, service string) (indexing.Header, []indexing.Entry, error) {
	src, err := Open(path)
	if err != nil {
		return indexing.Header{}, nil, err
	}
	entries := src.Entries()
	return src.Header(service, "", len(entries)), entries, nil
}

// IsNoPaths reports whether err is the missing-paths-section condition.
func IsNoPaths(err error) bool {
	return errors.Is(err, ErrNoPaths)
}
