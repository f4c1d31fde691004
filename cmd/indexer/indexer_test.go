package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/swagindex/mcp-server/internal/config"
	"github.com/swagindex/mcp-server/internal/diag"
	"github.com/swagindex/mcp-server/internal/endpoint"
	"github.com/swagindex/mcp-server/internal/indexing"
	"github.com/swagindex/mcp-server/internal/render"
	"github.com/swagindex/mcp-server/internal/search"
)

const mainDoc = `openapi: 3.0.0
info:
  version: 6.9.0
paths:
  /v2/blocks/{block_number_or_hash}:
    get:
      summary: Get block
      parameters:
        - name: block_number_or_hash
          in: path
          required: true
          schema:
            type: string
  /v2/withdrawals:
    get:
      summary: List withdrawals
      parameters:
        - name: filter
          in: query
          schema:
            type: object
`

const countersDoc = `openapi: 3.0.0
paths:
  /api/v1/counters:
    get:
      summary: Chain counters
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Default()
	if err != nil {
		t.Fatalf("config.Default() error: %v", err)
	}
	root := t.TempDir()
	cfg.WorkDir = filepath.Join(root, "swaggers")
	cfg.OutputDir = filepath.Join(root, "references")
	cfg.SearchDir = filepath.Join(root, "search")
	return cfg
}

// seedWorkDir writes documents and endpoint maps the way fetch leaves them.
func seedWorkDir(t *testing.T, cfg *config.Config) {
	t.Helper()
	mainDir := filepath.Join(cfg.WorkDir, "main-indexer")
	statsDir := filepath.Join(cfg.WorkDir, "stats-service")
	writeFile(t, filepath.Join(mainDir, "default", "swagger.yaml"), mainDoc)
	writeFile(t, filepath.Join(statsDir, "swagger.yaml"), countersDoc)

	mainRecords := []*endpoint.Record{
		{SwaggerFile: "default/swagger.yaml", Endpoint: "/v2/blocks/{block_number_or_hash}", Method: "GET", StartLine: 6, EndLine: 13, Variant: "default"},
		{SwaggerFile: "default/swagger.yaml", Endpoint: "/v2/withdrawals", Method: "GET", StartLine: 15, EndLine: 21, Variant: "default"},
		{SwaggerFile: "default/swagger.yaml", Endpoint: "/v2/transactions/csv", Method: "GET", Variant: "default"},
		{SwaggerFile: "default/swagger.yaml", Endpoint: "/v2/blocks/{block_number_or_hash}", Method: "POST", Variant: "default"},
		{SwaggerFile: "default/swagger.yaml", Endpoint: "/v2/mystery", Method: "GET", Variant: "default"},
	}
	statsRecords := []*endpoint.Record{
		{SwaggerFile: "swagger.yaml", Endpoint: "/api/v1/counters", Method: "GET", StartLine: 4, EndLine: 5},
		{SwaggerFile: "swagger.yaml", Endpoint: "/health", Method: "GET"},
	}
	if err := endpoint.SaveMap(filepath.Join(mainDir, endpoint.MapFileName), mainRecords); err != nil {
		t.Fatal(err)
	}
	if err := endpoint.SaveMap(filepath.Join(statsDir, endpoint.MapFileName), statsRecords); err != nil {
		t.Fatal(err)
	}
}

func readOutput(t *testing.T, cfg *config.Config, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(cfg.APIPath(), name))
	if err != nil {
		t.Fatalf("missing output %s: %v", name, err)
	}
	return string(data)
}

func TestGenerate(t *testing.T) {
	cfg := testConfig(t)
	seedWorkDir(t, cfg)

	diags := &diag.List{}
	res, err := generate(cfg, diags, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	if err != nil {
		t.Fatalf("generate() error: %v", err)
	}

	if res.Stats.Routed != 3 || res.Stats.Filtered != 3 || res.Stats.Unclassified != 1 {
		t.Errorf("Stats = %+v, want routed 3, filtered 3, unclassified 1", res.Stats)
	}
	if diags.Count(diag.KindUnclassified) != 1 {
		t.Errorf("expected one unclassified warning, got:\n%s", diags)
	}

	blocks := readOutput(t, cfg, "blocks.md")
	for _, want := range []string{
		"#### GET /api/v2/blocks/{block_number_or_hash}",
		"Get block",
		"  | `block_number_or_hash` | `string` | Yes |  |",
	} {
		if !strings.Contains(blocks, want) {
			t.Errorf("blocks.md missing %q:\n%s", want, blocks)
		}
	}

	eth := readOutput(t, cfg, "ethereum.md")
	for _, want := range []string{"proof-of-stake", "### Ethereum PoS Chains", "#### GET /api/v2/withdrawals", `curl "{base_url}/api/v2/withdrawals"`} {
		if !strings.Contains(eth, want) {
			t.Errorf("ethereum.md missing %q:\n%s", want, eth)
		}
	}

	stats := readOutput(t, cfg, "stats.md")
	if !strings.Contains(stats, "### Stats Service\n\n#### GET /stats-service/api/v1/counters") {
		t.Errorf("stats.md missing stats service section:\n%s", stats)
	}
	if strings.Contains(stats, "/health") {
		t.Error("excluded path rendered")
	}

	// Empty topics are still written
	if tokens := readOutput(t, cfg, "tokens.md"); !strings.Contains(tokens, "### Tokens") {
		t.Errorf("empty topic heading missing:\n%s", tokens)
	}

	index, err := os.ReadFile(cfg.IndexPath())
	if err != nil {
		t.Fatalf("master index not written: %v", err)
	}
	if !strings.Contains(string(index), "## [Ethereum PoS Chains](blockscout-api/ethereum.md)") {
		t.Errorf("master index missing ethereum link:\n%s", index)
	}

	m, err := render.LoadManifest(res.Written.Manifest)
	if err != nil {
		t.Fatalf("LoadManifest() error: %v", err)
	}
	if m.Total != 3 {
		t.Errorf("manifest Total = %d, want 3", m.Total)
	}
}

func TestGenerateMissingMapIsFatal(t *testing.T) {
	cfg := testConfig(t)
	seedWorkDir(t, cfg)
	os.Remove(filepath.Join(cfg.WorkDir, "stats-service", endpoint.MapFileName))

	_, err := generate(cfg, &diag.List{}, time.Now())
	if !errors.Is(err, diag.ErrMissingResource) || !diag.IsFatal(err) {
		t.Fatalf("generate() error = %v, want fatal missing resource", err)
	}
	if _, statErr := os.Stat(cfg.IndexPath()); !os.IsNotExist(statErr) {
		t.Error("nothing should be written when a map is missing")
	}
}

func TestGenerateMissingDocumentIsSoft(t *testing.T) {
	cfg := testConfig(t)
	seedWorkDir(t, cfg)
	os.Remove(filepath.Join(cfg.WorkDir, "stats-service", "swagger.yaml"))

	diags := &diag.List{}
	res, err := generate(cfg, diags, time.Now())
	if err != nil {
		t.Fatalf("generate() error: %v", err)
	}
	if res.Misses != 1 {
		t.Errorf("Misses = %d, want 1", res.Misses)
	}
	if diags.Count(diag.KindSoftLookupMiss) != 1 {
		t.Errorf("expected a soft lookup warning, got:\n%s", diags)
	}
	if stats := readOutput(t, cfg, "stats.md"); !strings.Contains(stats, "#### GET /stats-service/api/v1/counters\n\n- **Parameters**\n\n  *None*") {
		t.Errorf("unresolved record should render without parameters:\n%s", stats)
	}
}

func TestRunIndexFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "stats-service", "swagger.yaml")
	writeFile(t, file, countersDoc)

	var buf bytes.Buffer
	if err := runIndexFile(&buf, file, "", ""); err != nil {
		t.Fatalf("runIndexFile() error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "# Service: stats-service") {
		t.Errorf("service should default to the parent directory:\n%s", out)
	}
	if !strings.Contains(out, "GET /api/v1/counters | Chain counters | 4-5") {
		t.Errorf("missing entry line:\n%s", out)
	}

	output := filepath.Join(dir, "out", "stats.index")
	if err := runIndexFile(&buf, file, output, "stats"); err != nil {
		t.Fatalf("runIndexFile() with output error: %v", err)
	}
	h, entries, err := indexing.ReadIndexFile(output)
	if err != nil {
		t.Fatalf("ReadIndexFile() error: %v", err)
	}
	if h.Service != "stats" || len(entries) != 1 {
		t.Errorf("header=%+v entries=%d", h, len(entries))
	}

	if err := runIndexFile(&buf, filepath.Join(dir, "missing.yaml"), "", ""); !diag.IsFatal(err) {
		t.Errorf("missing file error = %v, want fatal", err)
	}
}

func TestRunIndexBatch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "main-indexer", "default", "swagger.yaml"), mainDoc)
	writeFile(t, filepath.Join(dir, "stats-service", "swagger.yaml"), countersDoc)
	writeFile(t, filepath.Join(dir, "broken", "swagger.yaml"), "info:\n  title: no paths\n")

	var buf bytes.Buffer
	if err := runIndexBatch(&buf, dir); err != nil {
		t.Fatalf("runIndexBatch() error: %v", err)
	}

	_, entries, err := indexing.ReadIndexFile(filepath.Join(dir, "main-indexer", "default", indexing.IndexFileName))
	if err != nil || len(entries) != 2 {
		t.Errorf("main index: %d entries, %v", len(entries), err)
	}
	h, _, err := indexing.ReadIndexFile(filepath.Join(dir, "stats-service", indexing.IndexFileName))
	if err != nil || h.Source != "stats-service/swagger.yaml" {
		t.Errorf("stats header = %+v, %v", h, err)
	}
	if _, err := os.Stat(filepath.Join(dir, "broken", indexing.IndexFileName)); !os.IsNotExist(err) {
		t.Error("a failed document should not get an index")
	}
	if !strings.Contains(buf.String(), "Indexed 2 of 3 documents") {
		t.Errorf("summary missing:\n%s", buf.String())
	}

	if err := runIndexBatch(&buf, t.TempDir()); !diag.IsFatal(err) {
		t.Errorf("empty batch error = %v, want fatal", err)
	}
}

func TestBuildSearchIndex(t *testing.T) {
	cfg := testConfig(t)
	writeFile(t, filepath.Join(cfg.WorkDir, "stats-service", "swagger.yaml"), countersDoc)
	var buf bytes.Buffer
	if err := runIndexBatch(&buf, cfg.WorkDir); err != nil {
		t.Fatalf("runIndexBatch() error: %v", err)
	}

	count, err := buildSearchIndex(cfg)
	if err != nil {
		t.Fatalf("buildSearchIndex() error: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}

	idx, err := search.Open(cfg.SearchDir)
	if err != nil {
		t.Fatalf("search.Open() error: %v", err)
	}
	defer idx.Close()
	hits, _, err := search.Query(idx, "counters", 5)
	if err != nil || len(hits) != 1 || hits[0].Doc.Destination != "stats.md" {
		t.Errorf("Query() = %+v, %v", hits, err)
	}
}

func TestNewPipeline(t *testing.T) {
	cfg := testConfig(t)
	p, err := newPipeline(cfg, "stats", nil, nil)
	if err != nil {
		t.Fatalf("newPipeline() error: %v", err)
	}
	if p.Service != "stats-service" || p.Dir != filepath.Join(cfg.WorkDir, "stats-service") || p.Release.TagPrefix != "stats/" {
		t.Errorf("unexpected pipeline: %+v", p)
	}

	cfg.Fetch.Main.Source = "ghost"
	if _, err := newPipeline(cfg, "main", nil, nil); !errors.Is(err, diag.ErrMissingResource) {
		t.Errorf("unknown source error = %v", err)
	}
}
