package indexing_test

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/swagindex/mcp-server/internal/indexing"
)

const blocksDoc = `openapi: 3.0.0
info:
  title: Test
  version: "1.2.3"
paths:
  /v2/blocks:
    get:
      summary: List blocks
      parameters:
        - name: type
          in: query
    post:
      summary: Create
  /v2/blocks/{id}:
    get:
      description: One block. More text.
      responses:
        "200":
          description: ok
components:
  schemas: {}
`

func TestFindLineRanges(t *testing.T) {
	lines := indexing.SplitLines(blocksDoc)
	if len(lines) != 21 {
		t.Fatalf("SplitLines() returned %d lines, want 21", len(lines))
	}

	ranges := indexing.FindLineRanges(lines)

	tests := []struct {
		name     string
		key      indexing.Key
		expected indexing.Range
	}{
		{
			name:     "first method ends before sibling method",
			key:      indexing.Key{Path: "/v2/blocks", Method: "get"},
			expected: indexing.Range{Start: 7, End: 11},
		},
		{
			name:     "second method ends before next path",
			key:      indexing.Key{Path: "/v2/blocks", Method: "post"},
			expected: indexing.Range{Start: 12, End: 13},
		},
		{
			name:     "last method ends before top-level key",
			key:      indexing.Key{Path: "/v2/blocks/{id}", Method: "get"},
			expected: indexing.Range{Start: 15, End: 19},
		},
	}

	if len(ranges) != len(tests) {
		t.Fatalf("FindLineRanges() returned %d ranges, want %d: %v", len(ranges), len(tests), ranges)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ranges[tt.key]
			if !ok {
				t.Fatalf("missing range for %v", tt.key)
			}
			if got != tt.expected {
				t.Errorf("range for %v = %+v, want %+v", tt.key, got, tt.expected)
			}
		})
	}
}

func TestScanLinesLocksIndentation(t *testing.T) {
	scan := indexing.ScanLines(indexing.SplitLines(blocksDoc))

	if !scan.Found {
		t.Fatal("expected section to be found")
	}
	if scan.HeaderLine != 5 {
		t.Errorf("HeaderLine = %d, want 5", scan.HeaderLine)
	}
	if scan.PathIndent != 2 {
		t.Errorf("PathIndent = %d, want 2", scan.PathIndent)
	}
	if scan.MethodIndent != 4 {
		t.Errorf("MethodIndent = %d, want 4", scan.MethodIndent)
	}
	if scan.SectionEnd != 20 {
		t.Errorf("SectionEnd = %d, want 20", scan.SectionEnd)
	}
	if len(scan.Paths) != 2 || scan.Paths[1].Line != 14 {
		t.Errorf("Paths = %+v, want two paths with the second on line 14", scan.Paths)
	}
}

func TestScanLinesIgnoresPayload(t *testing.T) {
	doc := `paths:
  /a:
    get:
      parameters:
        get:
          description: nested key that looks like a method
      x-example:
        /not-a-path:
          value: 1
      delete:
    put:
      summary: real
`
	lines := indexing.SplitLines(doc)
	ranges := indexing.FindLineRanges(lines)

	if len(ranges) != 2 {
		t.Fatalf("FindLineRanges() returned %d ranges, want 2: %v", len(ranges), ranges)
	}
	if got := ranges[indexing.Key{Path: "/a", Method: "get"}]; got != (indexing.Range{Start: 3, End: 10}) {
		t.Errorf("get range = %+v, want 3-10", got)
	}
	if got := ranges[indexing.Key{Path: "/a", Method: "put"}]; got != (indexing.Range{Start: 11, End: 12}) {
		t.Errorf("put range = %+v, want 11-12 (runs to end of document)", got)
	}
}

func TestScanLinesEmptyResults(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "no section header",
			doc:  "openapi: 3.0.0\ninfo:\n  title: x\n",
		},
		{
			name: "indented header is not the section",
			doc:  "root:\n  paths:\n    /a:\n      get:\n",
		},
		{
			name: "top-level key before any path",
			doc:  "paths:\n  x-meta: 1\ncomponents:\n  /a:\n    get:\n",
		},
		{
			name: "header without paths",
			doc:  "paths:\n",
		},
		{
			name: "empty document",
			doc:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scan := indexing.ScanLines(indexing.SplitLines(tt.doc))
			if scan.Found {
				t.Errorf("Found = true, want false")
			}
			if len(scan.Starts) != 0 {
				t.Errorf("Starts = %v, want empty", scan.Starts)
			}
			if ranges := indexing.ResolveRanges(scan); len(ranges) != 0 {
				t.Errorf("ResolveRanges() = %v, want empty", ranges)
			}
		})
	}
}

func TestScanLinesEdgeShapes(t *testing.T) {
	doc := "swagger: \"2.0\"\r\n" +
		"paths:\r\n" +
		"# comment at column zero does not close the section\r\n" +
		"  \"/quoted/{id}\":\r\n" +
		"    GET:\r\n" +
		"      operationId: getQuoted\r\n" +
		"\r\n" +
		"    Options:\r\n" +
		"      summary: opts\r\n" +
		"    x-custom:\r\n" +
		"definitions:\r\n"

	lines := indexing.SplitLines(doc)
	ranges := indexing.FindLineRanges(lines)

	get, ok := ranges[indexing.Key{Path: "/quoted/{id}", Method: "get"}]
	if !ok {
		t.Fatalf("missing quoted path range: %v", ranges)
	}
	if get != (indexing.Range{Start: 5, End: 7}) {
		t.Errorf("get range = %+v, want 5-7", get)
	}
	opts := ranges[indexing.Key{Path: "/quoted/{id}", Method: "options"}]
	if opts != (indexing.Range{Start: 8, End: 10}) {
		t.Errorf("options range = %+v, want 8-10", opts)
	}
}

// Every method block is reported, ranges are disjoint and each start line
// carries its method token.
func TestRangesAreDisjointAndAnchored(t *testing.T) {
	var b strings.Builder
	b.WriteString("openapi: 3.0.0\npaths:\n")
	want := 0
	for i := 0; i < 25; i++ {
		fmt.Fprintf(&b, "  /r/%d:\n", i)
		for _, m := range indexing.Methods[:1+i%len(indexing.Methods)] {
			fmt.Fprintf(&b, "    %s:\n      summary: s%d\n      responses:\n        \"200\":\n          description: ok\n", m, i)
			want++
		}
	}
	b.WriteString("components: {}\n")

	lines := indexing.SplitLines(b.String())
	scan := indexing.ScanLines(lines)
	ranges := indexing.ResolveRanges(scan)

	if len(ranges) != want {
		t.Fatalf("got %d ranges, want %d", len(ranges), want)
	}

	keys := indexing.SortedKeys(scan.Starts)
	prevEnd := 0
	for _, k := range keys {
		r := ranges[k]
		if r.Start <= prevEnd {
			t.Errorf("range %v %+v overlaps previous end %d", k, r, prevEnd)
		}
		if r.End < r.Start {
			t.Errorf("range %v %+v is inverted", k, r)
		}
		if got := strings.TrimSpace(lines[r.Start-1]); got != k.Method+":" {
			t.Errorf("start line of %v = %q, want %q", k, got, k.Method+":")
		}
		for n := r.Start + 1; n <= r.End; n++ {
			line := lines[n-1]
			if strings.HasPrefix(line, "  /") || (strings.HasPrefix(line, "    ") && !strings.HasPrefix(line, "     ")) {
				t.Errorf("line %d %q inside %v is a sibling declaration", n, line, k)
			}
		}
		prevEnd = r.End
	}
	if prevEnd != scan.SectionEnd-1 {
		t.Errorf("last range ends at %d, want %d", prevEnd, scan.SectionEnd-1)
	}
}

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
	}{
		{name: "empty", input: "", expected: 0},
		{name: "no trailing newline", input: "a\nb", expected: 2},
		{name: "trailing newline", input: "a\nb\n", expected: 2},
		{name: "blank last line kept", input: "a\n\n", expected: 2},
		{name: "crlf", input: "a\r\nb\r\n", expected: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := indexing.SplitLines(tt.input)
			if len(lines) != tt.expected {
				t.Errorf("SplitLines() = %d lines, want %d", len(lines), tt.expected)
			}
			for _, l := range lines {
				if strings.HasSuffix(l, "\r") {
					t.Errorf("line %q still carries a carriage return", l)
				}
			}
		})
	}
}

func TestDetectMetadata(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		expected indexing.Metadata
	}{
		{
			name:     "openapi 3",
			doc:      blocksDoc,
			expected: indexing.Metadata{OpenAPI: "3.0.0", Version: "1.2.3"},
		},
		{
			name:     "swagger 2",
			doc:      "swagger: '2.0'\ninfo:\n  title: x\n  version: v1\n",
			expected: indexing.Metadata{OpenAPI: "swagger 2.0", Version: "v1"},
		},
		{
			name:     "version outside info is ignored",
			doc:      "openapi: 3.1.0\ninfo:\n  title: x\nservers:\n  - url: y\nversion: 9\n",
			expected: indexing.Metadata{OpenAPI: "3.1.0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := indexing.DetectMetadata(indexing.SplitLines(tt.doc))
			if got != tt.expected {
				t.Errorf("DetectMetadata() = %+v, want %+v", got, tt.expected)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name        string
		summary     string
		operationID string
		description string
		expected    string
	}{
		{name: "summary wins", summary: "Get block", operationID: "get_block", expected: "Get block"},
		{name: "operation id fallback", operationID: "get_block", description: "Long.", expected: "get_block"},
		{name: "first sentence", description: "Returns a block. Extra details.", expected: "Returns a block"},
		{name: "pipes replaced", summary: "a | b", expected: "a / b"},
		{name: "truncated", summary: strings.Repeat("x", 100), expected: strings.Repeat("x", 77) + "..."},
		{name: "nothing", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := indexing.Summarize(tt.summary, tt.operationID, tt.description)
			if got != tt.expected {
				t.Errorf("Summarize() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestWriteAndReadIndex(t *testing.T) {
	entries := []indexing.Entry{
		{Method: "POST", Path: "/v2/blocks", Summary: "Create", Start: 12, End: 13},
		{Method: "GET", Path: "/v2/blocks", Summary: "List blocks", Start: 7, End: 11},
		{Method: "GET", Path: "/v2/orphan", Summary: ""},
	}
	indexing.SortEntries(entries)
	if entries[0].Method != "GET" || entries[1].Method != "POST" {
		t.Fatalf("SortEntries() did not apply method order: %+v", entries)
	}

	header := indexing.Header{
		Service:   "default",
		Metadata:  indexing.Metadata{OpenAPI: "3.0.0", Version: "1.2.3"},
		Source:    "cache/swagger/default/swagger.yaml",
		Generated: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	var buf bytes.Buffer
	if err := indexing.WriteIndex(&buf, header, entries); err != nil {
		t.Fatalf("WriteIndex() error: %v", err)
	}

	text := buf.String()
	for _, want := range []string{
		"# Service: default | Version: 1.2.3 | OpenAPI: 3.0.0\n",
		"# Generated: 2026-01-02T03:04:05Z | Endpoints: 3\n",
		indexing.FormatLine + "\n",
		"GET /v2/blocks | List blocks | 7-11\n",
		"GET /v2/orphan |  | ?-?\n",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("index output missing %q\n%s", want, text)
		}
	}

	path := filepath.Join(t.TempDir(), "default", indexing.IndexFileName)
	if err := indexing.WriteIndexFile(path, header, entries); err != nil {
		t.Fatalf("WriteIndexFile() error: %v", err)
	}

	gotHeader, gotEntries, err := indexing.ReadIndexFile(path)
	if err != nil {
		t.Fatalf("ReadIndex() error: %v", err)
	}
	if gotHeader.Service != "default" || gotHeader.Count != 3 || !gotHeader.Generated.Equal(header.Generated) {
		t.Errorf("ReadIndex() header = %+v", gotHeader)
	}
	if len(gotEntries) != 3 {
		t.Fatalf("ReadIndex() returned %d entries, want 3", len(gotEntries))
	}
	if gotEntries[0] != entries[0] || gotEntries[2].HasRange() {
		t.Errorf("ReadIndex() entries = %+v", gotEntries)
	}
}

func TestParseEntryErrors(t *testing.T) {
	for _, line := range []string{
		"GET /a",
		"GET | x | 1-2",
		"GET /a | x | one-2",
		"GET /a | x | 12",
	} {
		if _, err := indexing.ParseEntry(line); err == nil {
			t.Errorf("ParseEntry(%q) expected error", line)
		}
	}
}
