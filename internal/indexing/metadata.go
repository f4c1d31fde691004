package indexing

import (
	"strings"
)

// StripQuotes removes one pair of matching surrounding quotes
// Example: `"3.0.0"` -> `3.0.0`
func StripQuotes(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// DetectMetadata reads the OpenAPI (or Swagger) version and info.version
// from the first MetadataScanLines lines without parsing the document
func DetectMetadata(lines []string) Metadata {
	var meta Metadata
	inInfo := false

	limit := len(lines)
	if limit > MetadataScanLines {
		limit = MetadataScanLines
	}

	for _, line := range lines[:limit] {
		stripped := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(stripped, "openapi:"):
			meta.OpenAPI = StripQuotes(valueAfterColon(stripped))
		case strings.HasPrefix(stripped, "swagger:"):
			meta.OpenAPI = "swagger " + StripQuotes(valueAfterColon(stripped))
		case strings.HasPrefix(stripped, "info:"):
			inInfo = true
		case inInfo:
			if strings.HasPrefix(stripped, "version:") {
				meta.Version = StripQuotes(valueAfterColon(stripped))
				inInfo = false
			} else if !startsWithIndent(line) && strings.Contains(stripped, ":") {
				// next top-level key
				inInfo = false
			}
		}
	}
	return meta
}

func valueAfterColon(s string) string {
	_, v, _ := strings.Cut(s, ":")
	return strings.TrimSpace(v)
}

func startsWithIndent(line string) bool {
	return line != "" && (line[0] == ' ' || line[0] == '\t' || line[0] == '-')
}

// Truncate collapses newlines and shortens text to max characters, adding "..."
func Truncate(text string, max int) string {
	text = strings.TrimSpace(strings.ReplaceAll(text, "\n", " "))
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

// FirstSentence returns description up to its first period or newline
func FirstSentence(description string) string {
	s := description
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[:i]
	}
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// Summarize picks the index label for an operation: summary, then
// operationId, then the first sentence of the description. Pipes are
// replaced so the column separator stays unambiguous.
func Summarize(summary, operationID, description string) string {
	label := strings.TrimSpace(summary)
	if label == "" {
		label = strings.TrimSpace(operationID)
	}
	if label == "" {
		label = FirstSentence(description)
	}
	label = strings.ReplaceAll(label, "|", "/")
	return Truncate(label, MaxSummaryLength)
}
