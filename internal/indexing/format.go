package indexing

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// FormatLine documents the column layout of an index line
const FormatLine = "# FORMAT: METHOD /path | summary_or_operationId | line_start-line_end"

// SortEntries orders entries by path, then by canonical method order
func SortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Path != entries[j].Path {
			return entries[i].Path < entries[j].Path
		}
		return MethodRank(entries[i].Method) < MethodRank(entries[j].Method)
	})
}

// FormatEntry renders a single index line
func FormatEntry(e Entry) string {
	span := UnknownRange
	if e.HasRange() {
		span = fmt.Sprintf("%d-%d", e.Start, e.End)
	}
	return fmt.Sprintf("%s %s | %s | %s", strings.ToUpper(e.Method), e.Path, e.Summary, span)
}

// WriteIndex writes the header block followed by one line per entry
func WriteIndex(w io.Writer, h Header, entries []Entry) error {
	var parts []string
	if h.Service != "" {
		parts = append(parts, "Service: "+h.Service)
	}
	if h.Metadata.Version != "" {
		parts = append(parts, "Version: "+h.Metadata.Version)
	}
	if h.Metadata.OpenAPI != "" {
		parts = append(parts, "OpenAPI: "+h.Metadata.OpenAPI)
	}

	generated := h.Generated
	if generated.IsZero() {
		generated = time.Now()
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# %s\n", strings.Join(parts, " | "))
	fmt.Fprintf(bw, "# Source: %s\n", h.Source)
	fmt.Fprintf(bw, "# Generated: %s | Endpoints: %d\n", generated.UTC().Format(time.RFC3339), len(entries))
	fmt.Fprintln(bw, "#")
	fmt.Fprintln(bw, FormatLine)
	for _, e := range entries {
		fmt.Fprintln(bw, FormatEntry(e))
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write index: %w", err)
	}
	return nil
}

// WriteIndexFile writes the index to path, creating parent directories
func WriteIndexFile(path string, h Header, entries []Entry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create index file: %w", err)
	}
	if err := WriteIndex(f, h, entries); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadIndexFile opens and parses the index at path
func ReadIndexFile(path string) (Header, []Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return Header{}, nil, err
	}
	defer f.Close()
	return ReadIndex(f)
}

// ReadIndex parses a line index. Header fields that cannot be read are left
// empty; a malformed entry line is an error.
func ReadIndex(r io.Reader) (Header, []Entry, error) {
	var h Header
	var entries []Entry

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			parseHeaderLine(&h, strings.TrimSpace(strings.TrimPrefix(line, "#")))
			continue
		}
		e, err := ParseEntry(line)
		if err != nil {
			return h, nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		return h, nil, fmt.Errorf("failed to read index: %w", err)
	}
	return h, entries, nil
}

// ParseEntry parses "METHOD /path | summary | start-end"
func ParseEntry(line string) (Entry, error) {
	first := strings.Index(line, " | ")
	last := strings.LastIndex(line, " | ")
	if first < 0 || first == last {
		return Entry{}, fmt.Errorf("malformed index line %q", line)
	}

	method, path, ok := strings.Cut(line[:first], " ")
	if !ok || method == "" || path == "" {
		return Entry{}, fmt.Errorf("malformed method/path in %q", line)
	}

	e := Entry{
		Method:  strings.ToUpper(method),
		Path:    strings.TrimSpace(path),
		Summary: line[first+3 : last],
	}

	span := strings.TrimSpace(line[last+3:])
	if span == UnknownRange {
		return e, nil
	}
	startStr, endStr, ok := strings.Cut(span, "-")
	if !ok {
		return Entry{}, fmt.Errorf("malformed line range %q", span)
	}
	start, err := strconv.Atoi(startStr)
	if err != nil {
		return Entry{}, fmt.Errorf("malformed start line %q: %w", startStr, err)
	}
	end, err := strconv.Atoi(endStr)
	if err != nil {
		return Entry{}, fmt.Errorf("malformed end line %q: %w", endStr, err)
	}
	e.Start, e.End = start, end
	return e, nil
}

func parseHeaderLine(h *Header, text string) {
	switch {
	case strings.HasPrefix(text, "Source:"):
		h.Source = strings.TrimSpace(strings.TrimPrefix(text, "Source:"))
	case strings.HasPrefix(text, "Generated:"):
		for _, part := range strings.Split(strings.TrimPrefix(text, "Generated:"), "|") {
			part = strings.TrimSpace(part)
			if n, ok := strings.CutPrefix(part, "Endpoints:"); ok {
				h.Count, _ = strconv.Atoi(strings.TrimSpace(n))
			} else if ts, err := time.Parse(time.RFC3339, part); err == nil {
				h.Generated = ts
			}
		}
	case strings.HasPrefix(text, "FORMAT:"):
	default:
		for _, part := range strings.Split(text, "|") {
			k, v, ok := strings.Cut(strings.TrimSpace(part), ":")
			if !ok {
				continue
			}
			v = strings.TrimSpace(v)
			switch k {
			case "Service":
				h.Service = v
			case "Version":
				h.Metadata.Version = v
			case "OpenAPI":
				h.Metadata.OpenAPI = v
			}
		}
	}
}
