package enrich

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/swagindex/mcp-server/internal/endpoint"
	"github.com/swagindex/mcp-server/internal/routing"
	"github.com/swagindex/mcp-server/internal/specdoc"
)

var (
	// ErrDocumentUnavailable means the source document could not be loaded.
	ErrDocumentUnavailable = errors.New("source document unavailable")

	// ErrEndpointNotFound means the path or method is absent from the document.
	ErrEndpointNotFound = errors.New("endpoint not found in source document")
)

// DefaultParamType is used when a parameter declares no type.
const DefaultParamType = "string"

// Documents resolves the structured document for a record.
type Documents interface {
	Get(path string) (*specdoc.Document, error)
}

// Resolver maps a record to the file path of its source document.
type Resolver func(rec *endpoint.Record) string

// Enricher fills in descriptions and parameters from source documents.
type Enricher struct {
	docs    Documents
	resolve Resolver
}

func New(docs Documents, resolve Resolver) *Enricher {
	return &Enricher{docs: docs, resolve: resolve}
}

// Description returns the record's own description, else the operation
// summary, else "". It never fails.
func (e *Enricher) Description(rec *endpoint.Record) string {
	if rec.Description != "" {
		return rec.Description
	}
	doc, err := e.docs.Get(e.resolve(rec))
	if err != nil {
		return ""
	}
	_, op, ok := doc.Operation(rec.Endpoint, rec.Method)
	if !ok {
		return ""
	}
	return op.Summary
}

// Parameters extracts the path and query parameters of rec. It returns an
// empty slice when the operation has none.
func (e *Enricher) Parameters(rec *endpoint.Record) ([]endpoint.Param, error) {
	source := e.resolve(rec)
	doc, err := e.docs.Get(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDocumentUnavailable, source, err)
	}
	item, op, ok := doc.Operation(rec.Endpoint, rec.Method)
	if !ok {
		return nil, fmt.Errorf("%w: %s %s in %s", ErrEndpointNotFound, rec.Method, rec.Endpoint, source)
	}

	params := []endpoint.Param{}
	for _, p := range doc.EffectiveParameters(item, op) {
		in := strings.ToLower(p.In)
		if in != "path" && in != "query" {
			continue
		}
		params = append(params, endpoint.Param{
			Name:        p.Name,
			In:          in,
			Required:    in == "path" || p.Required,
			Type:        ParamType(p),
			Description: p.Description,
		})
	}
	return params, nil
}

// ParamType prefers the schema type, then the flat legacy type.
func ParamType(p specdoc.Parameter) string {
	if p.Schema != nil && p.Schema.Type != "" {
		return string(p.Schema.Type)
	}
	if p.Type != "" {
		return p.Type
	}
	return DefaultParamType
}

// Enrich mutates rec in place. Parameter lookups that fail leave
// ParamsResolved false.
func (e *Enricher) Enrich(rec *endpoint.Record) {
	rec.ResolvedDescription = e.Description(rec)
	params, err := e.Parameters(rec)
	if err != nil {
		rec.Params = nil
		rec.ParamsResolved = false
		return
	}
	rec.Params = params
	rec.ParamsResolved = true
}

// EnrichAll enriches every record and returns how many lookups missed.
func (e *Enricher) EnrichAll(records []*endpoint.Record) int {
	misses := 0
	for _, rec := range records {
		e.Enrich(rec)
		if !rec.ParamsResolved {
			misses++
		}
	}
	return misses
}

// EnrichGroups enriches and sorts every section of groups once.
func (e *Enricher) EnrichGroups(groups []*routing.Group) int {
	misses := 0
	for _, g := range groups {
		for _, s := range g.Sections {
			misses += e.EnrichAll(s.Records)
			SortRecords(s.Records)
		}
	}
	return misses
}

// SortRecords orders records by lowercase display path, then method.
func SortRecords(records []*endpoint.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		pi, pj := strings.ToLower(displayPath(records[i])), strings.ToLower(displayPath(records[j]))
		if pi != pj {
			return pi < pj
		}
		return records[i].Method < records[j].Method
	})
}

func displayPath(r *endpoint.Record) string {
	if r.DisplayPath != "" {
		return r.DisplayPath
	}
	return r.Endpoint
}
