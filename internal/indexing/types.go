package indexing

import "time"

// Key identifies one method block inside the paths section
type Key struct {
	Path   string
	Method string // lowercase
}

// PathBlock is a path declaration and the 1-based line it sits on
type PathBlock struct {
	Path string
	Line int
}

// Range is an inclusive 1-based line span
type Range struct {
	Start int `json:"start_line"`
	End   int `json:"end_line"`
}

// Scan is the raw output of the indentation scanner
type Scan struct {
	Found        bool        // header located and path indent locked
	HeaderLine   int         // line of the section header, 0 if absent
	PathIndent   int         // -1 when never locked
	MethodIndent int         // -1 when never locked
	Starts       map[Key]int // first line of each method block
	Paths        []PathBlock // every path declaration in document order
	SectionEnd   int         // top-level line that closed the section, 0 at EOF
	LineCount    int
}

// Metadata is the version information found at the top of a document
type Metadata struct {
	OpenAPI string // "3.0.0" or "swagger 2.0"
	Version string // info.version
}

// Header describes the comment block at the top of a line index
type Header struct {
	Service   string
	Metadata  Metadata
	Source    string
	Generated time.Time
	Count     int
}

// Entry is one line of a line index
type Entry struct {
	Method  string `json:"method"` // uppercase
	Path    string `json:"path"`
	Summary string `json:"summary"`
	Start   int    `json:"start_line"` // 0 when unknown
	End     int    `json:"end_line"`
}

// HasRange reports whether the entry points at a resolved block
func (e Entry) HasRange() bool {
	return e.Start > 0 && e.End >= e.Start
}
