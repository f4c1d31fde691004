package enrich_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/swagindex/mcp-server/internal/endpoint"
	"github.com/swagindex/mcp-server/internal/enrich"
	"github.com/swagindex/mcp-server/internal/routing"
	"github.com/swagindex/mcp-server/internal/specdoc"
)

const addressDoc = `swagger: "2.0"
paths:
  /v2/addresses/{address_hash}:
    get:
      summary: Get address info
      parameters:
        - name: address_hash
          in: path
          required: false
          type: string
        - name: type
          in: query
          required: true
          schema:
            type: array
        - name: page
          in: query
        - name: body
          in: body
        - name: X-Key
          in: header
  /v2/empty:
    get:
      description: No params here.
`

type fakeDocs struct {
	docs  map[string]*specdoc.Document
	calls map[string]int
}

func (f *fakeDocs) Get(path string) (*specdoc.Document, error) {
	f.calls[path]++
	if d, ok := f.docs[path]; ok {
		return d, nil
	}
	return nil, errors.New("not loaded")
}

func newEnricher(t *testing.T) (*enrich.Enricher, *fakeDocs) {
	t.Helper()
	doc, err := specdoc.Parse([]byte(addressDoc))
	require.NoError(t, err)
	docs := &fakeDocs{
		docs:  map[string]*specdoc.Document{"main/default/swagger.yaml": doc},
		calls: map[string]int{},
	}
	resolve := func(rec *endpoint.Record) string { return "main/" + rec.SwaggerFile }
	return enrich.New(docs, resolve), docs
}

func TestDescriptionFallback(t *testing.T) {
	e, _ := newEnricher(t)

	tests := []struct {
		name     string
		rec      endpoint.Record
		expected string
	}{
		{
			name:     "own description",
			rec:      endpoint.Record{SwaggerFile: "default/swagger.yaml", Endpoint: "/v2/addresses/{address_hash}", Method: "GET", Description: "Own"},
			expected: "Own",
		},
		{
			name:     "summary from document",
			rec:      endpoint.Record{SwaggerFile: "default/swagger.yaml", Endpoint: "/v2/addresses/{address_hash}", Method: "GET"},
			expected: "Get address info",
		},
		{
			name:     "missing method",
			rec:      endpoint.Record{SwaggerFile: "default/swagger.yaml", Endpoint: "/v2/addresses/{address_hash}", Method: "POST"},
			expected: "",
		},
		{
			name:     "missing document",
			rec:      endpoint.Record{SwaggerFile: "gone/swagger.yaml", Endpoint: "/x", Method: "GET"},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := tt.rec
			assert.Equal(t, tt.expected, e.Description(&rec))
		})
	}
}

func TestParameters(t *testing.T) {
	e, _ := newEnricher(t)

	params, err := e.Parameters(&endpoint.Record{SwaggerFile: "default/swagger.yaml", Endpoint: "/v2/addresses/{address_hash}", Method: "GET"})
	require.NoError(t, err)
	assert.Equal(t, []endpoint.Param{
		{Name: "address_hash", In: "path", Required: true, Type: "string"},
		{Name: "type", In: "query", Required: true, Type: "array"},
		{Name: "page", In: "query", Required: false, Type: "string"},
	}, params)

	params, err = e.Parameters(&endpoint.Record{SwaggerFile: "default/swagger.yaml", Endpoint: "/v2/empty", Method: "GET"})
	require.NoError(t, err)
	assert.NotNil(t, params)
	assert.Empty(t, params)

	_, err = e.Parameters(&endpoint.Record{SwaggerFile: "default/swagger.yaml", Endpoint: "/nope", Method: "GET"})
	assert.ErrorIs(t, err, enrich.ErrEndpointNotFound)

	_, err = e.Parameters(&endpoint.Record{SwaggerFile: "gone/swagger.yaml", Endpoint: "/nope", Method: "GET"})
	assert.ErrorIs(t, err, enrich.ErrDocumentUnavailable)
}

func TestEnrichGroupsSortsOnce(t *testing.T) {
	e, docs := newEnricher(t)

	recs := []*endpoint.Record{
		{SwaggerFile: "default/swagger.yaml", Endpoint: "/v2/empty", Method: "GET", DisplayPath: "/api/v2/empty"},
		{SwaggerFile: "default/swagger.yaml", Endpoint: "/v2/addresses/{address_hash}", Method: "GET", DisplayPath: "/api/v2/addresses/{address_hash}"},
		{SwaggerFile: "gone/swagger.yaml", Endpoint: "/v2/Zeta", Method: "GET", DisplayPath: "/api/v2/Zeta"},
		{SwaggerFile: "gone/swagger.yaml", Endpoint: "/v2/alpha", Method: "GET", DisplayPath: "/api/v2/alpha"},
	}
	groups := []*routing.Group{{ID: "addresses.md", Sections: []*routing.Section{{Heading: "Addresses", Records: recs}}}}

	misses := e.EnrichGroups(groups)
	assert.Equal(t, 2, misses)

	sorted := groups[0].Sections[0].Records
	var paths []string
	for _, r := range sorted {
		paths = append(paths, r.DisplayPath)
	}
	assert.Equal(t, []string{"/api/v2/addresses/{address_hash}", "/api/v2/alpha", "/api/v2/empty", "/api/v2/Zeta"}, paths)

	assert.Equal(t, "Get address info", sorted[0].ResolvedDescription)
	assert.True(t, sorted[0].ParamsResolved)
	assert.False(t, sorted[1].ParamsResolved)
	// description-only operations have no summary to fall back to
	assert.Equal(t, "", sorted[2].ResolvedDescription)
	assert.Positive(t, docs.calls["main/gone/swagger.yaml"])
}

func TestParamType(t *testing.T) {
	assert.Equal(t, "integer", enrich.ParamType(specdoc.Parameter{Type: "string", Schema: &specdoc.Schema{Type: "integer"}}))
	assert.Equal(t, "boolean", enrich.ParamType(specdoc.Parameter{Type: "boolean"}))
	assert.Equal(t, "string", enrich.ParamType(specdoc.Parameter{Schema: &specdoc.Schema{Ref: "#/x"}}))
}
