package indexing

import (
	"strings"
)

// State is a position of the paths-section scanner
type State int

const (
	StateSeekingSection State = iota
	StateInSection
	StateInPathBlock
	StateInMethodBlock
	StateDone
)

func (s State) String() string {
	switch s {
	case StateSeekingSection:
		return "SeekingSection"
	case StateInSection:
		return "InSection"
	case StateInPathBlock:
		return "InPathBlock"
	case StateInMethodBlock:
		return "InMethodBlock"
	case StateDone:
		return "Done"
	}
	return "Unknown"
}

// LineClass is what the scanner decided a single line is
type LineClass int

const (
	LineSkip      LineClass = iota // blank, comment or irrelevant
	LineHeader                     // the section header
	LineTopLevel                   // zero-indent key closing the section
	LinePathKey                    // path declaration at the locked path indent
	LineMethodKey                  // HTTP verb at the locked method indent
	LinePayload                    // anything nested deeper
)

type action int

const (
	actNone action = iota
	actEnterSection
	actOpenPath
	actOpenMethod
	actClose
)

type transition struct {
	next State
	act  action
}

// transitions is the complete state machine. A (state, class) pair missing
// from the table leaves the state unchanged.
var transitions = map[State]map[LineClass]transition{
	StateSeekingSection: {
		LineHeader: {StateInSection, actEnterSection},
	},
	StateInSection: {
		LineTopLevel: {StateDone, actClose},
		LinePathKey:  {StateInPathBlock, actOpenPath},
	},
	StateInPathBlock: {
		LineTopLevel:  {StateDone, actClose},
		LinePathKey:   {StateInPathBlock, actOpenPath},
		LineMethodKey: {StateInMethodBlock, actOpenMethod},
	},
	StateInMethodBlock: {
		LineTopLevel:  {StateDone, actClose},
		LinePathKey:   {StateInPathBlock, actOpenPath},
		LineMethodKey: {StateInMethodBlock, actOpenMethod},
	},
}

type scanner struct {
	header string
	state  State

	pathIndent   int
	methodIndent int

	currentPath string
	openMethod  string
	openStart   int

	result Scan
}

// ScanLines runs the scanner over lines using the default "paths" header.
func ScanLines(lines []string) Scan {
	return ScanSection(lines, SectionHeader)
}

// ScanSection locates the top-level section named header and records the
// start line of every path and method block inside it.
func ScanSection(lines []string, header string) Scan {
	s := &scanner{
		header:       header,
		pathIndent:   -1,
		methodIndent: -1,
		result: Scan{
			PathIndent:   -1,
			MethodIndent: -1,
			Starts:       make(map[Key]int),
			LineCount:    len(lines),
		},
	}

	for i, line := range lines {
		lineNo := i + 1
		class, indent, token := s.classify(line)
		tr, ok := transitions[s.state][class]
		if !ok {
			continue
		}
		s.apply(tr.act, lineNo, indent, token)
		s.state = tr.next
		if s.state == StateDone {
			break
		}
	}
	s.closeMethod()

	s.result.PathIndent = s.pathIndent
	s.result.MethodIndent = s.methodIndent
	s.result.Found = s.result.HeaderLine > 0 && s.pathIndent >= 0
	if !s.result.Found {
		// no usable section
		s.result.Starts = map[Key]int{}
		s.result.Paths = nil
	}
	return s.result
}

// classify inspects one line in the context of the current state.
func (s *scanner) classify(line string) (LineClass, int, string) {
	trimmed := strings.TrimRight(line, " \t\r")
	content := strings.TrimLeft(trimmed, " \t")
	if content == "" || strings.HasPrefix(content, "#") {
		return LineSkip, 0, ""
	}
	indent := len(trimmed) - len(content)

	if s.state == StateSeekingSection {
		if indent == 0 && content == s.header+":" {
			return LineHeader, 0, ""
		}
		return LineSkip, 0, ""
	}

	if indent == 0 {
		return LineTopLevel, 0, ""
	}

	if path, ok := pathKey(content); ok {
		if s.pathIndent < 0 || indent == s.pathIndent {
			return LinePathKey, indent, path
		}
	}

	if s.currentPath != "" && indent > s.pathIndent {
		if word, ok := wordKey(content); ok {
			method := strings.ToLower(word)
			if IsMethod(method) && (s.methodIndent < 0 || indent == s.methodIndent) {
				return LineMethodKey, indent, method
			}
		}
	}

	return LinePayload, indent, ""
}

func (s *scanner) apply(act action, lineNo, indent int, token string) {
	switch act {
	case actEnterSection:
		s.result.HeaderLine = lineNo
	case actOpenPath:
		s.closeMethod()
		if s.pathIndent < 0 {
			s.pathIndent = indent
		}
		s.currentPath = token
		s.result.Paths = append(s.result.Paths, PathBlock{Path: token, Line: lineNo})
	case actOpenMethod:
		s.closeMethod()
		if s.methodIndent < 0 {
			s.methodIndent = indent
		}
		s.openMethod = token
		s.openStart = lineNo
	case actClose:
		s.closeMethod()
		s.result.SectionEnd = lineNo
	}
}

func (s *scanner) closeMethod() {
	if s.currentPath != "" && s.openMethod != "" {
		s.result.Starts[Key{Path: s.currentPath, Method: s.openMethod}] = s.openStart
	}
	s.openMethod = ""
	s.openStart = 0
}

// pathKey matches a mapping key that begins with "/" and has nothing after
// its colon. Surrounding quotes are removed.
func pathKey(content string) (string, bool) {
	if !strings.HasSuffix(content, ":") {
		return "", false
	}
	key := StripQuotes(strings.TrimSuffix(content, ":"))
	if !strings.HasPrefix(key, "/") {
		return "", false
	}
	return key, true
}

// wordKey matches a bare `word:` key made of letters, digits and underscores.
func wordKey(content string) (string, bool) {
	if !strings.HasSuffix(content, ":") {
		return "", false
	}
	word := strings.TrimRight(strings.TrimSuffix(content, ":"), " \t")
	if word == "" {
		return "", false
	}
	for _, r := range word {
		if !(r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			return "", false
		}
	}
	return word, true
}
