package indexing

import "strings"

// Line index constants
const (
	// SectionHeader is the top-level key that opens the endpoint declarations
	SectionHeader = "paths"

	// MaxSummaryLength bounds the summary column of an index line
	MaxSummaryLength = 80

	// MetadataScanLines is how many leading lines are inspected for version info
	MetadataScanLines = 30

	// UnknownRange is written when an endpoint has no resolved line range
	UnknownRange = "?-?"

	// IndexFileName is the per-source line index written next to the document
	IndexFileName = "swagger.index"

	// IndexSchemaVersion increments when the search document layout changes
	// v1: endpoint documents with line ranges
	IndexSchemaVersion = 1
)

// Methods lists the recognised HTTP verbs in canonical output order.
var Methods = []string{"get", "post", "put", "delete", "patch", "head", "options"}

var methodOrder = func() map[string]int {
	m := make(map[string]int, len(Methods))
	for i, method := range Methods {
		m[method] = i
	}
	return m
}()

// IsMethod reports whether token (lowercase) is a recognised HTTP verb.
func IsMethod(token string) bool {
	_, ok := methodOrder[token]
	return ok
}

// MethodRank returns the position of method in the canonical order.
// Unknown methods sort last.
func MethodRank(method string) int {
	if r, ok := methodOrder[strings.ToLower(method)]; ok {
		return r
	}
	return len(Methods)
}
