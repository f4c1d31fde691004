package indexing

import (
	"sort"
	"strings"
)

// SplitLines splits raw document text into lines. A trailing newline does
// not produce an extra empty line and carriage returns are dropped.
func SplitLines(content string) []string {
	if content == "" {
		return nil
	}
	lines := strings.Split(content, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// ResolveRanges turns scanner start lines into inclusive line ranges.
//
// A block ends on the line before the next boundary, where boundaries are
// later method starts, path declarations and the line that closed the
// section. A block with no later boundary runs to the last line.
func ResolveRanges(scan Scan) map[Key]Range {
	ranges := make(map[Key]Range, len(scan.Starts))
	if len(scan.Starts) == 0 {
		return ranges
	}

	boundaries := make([]int, 0, len(scan.Starts)+len(scan.Paths)+1)
	for _, start := range scan.Starts {
		boundaries = append(boundaries, start)
	}
	for _, p := range scan.Paths {
		boundaries = append(boundaries, p.Line)
	}
	if scan.SectionEnd > 0 {
		boundaries = append(boundaries, scan.SectionEnd)
	}
	sort.Ints(boundaries)

	for _, key := range SortedKeys(scan.Starts) {
		start := scan.Starts[key]
		end := scan.LineCount
		// first boundary strictly after start
		if i := sort.SearchInts(boundaries, start+1); i < len(boundaries) {
			end = boundaries[i] - 1
		}
		ranges[key] = Range{Start: start, End: end}
	}
	return ranges
}

// FindLineRanges scans lines and resolves the range of every method block.
func FindLineRanges(lines []string) map[Key]Range {
	return ResolveRanges(ScanLines(lines))
}

// SortedKeys returns the keys of starts ordered by ascending start line.
func SortedKeys(starts map[Key]int) []Key {
	keys := make([]Key, 0, len(starts))
	for k := range starts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if starts[keys[i]] != starts[keys[j]] {
			return starts[keys[i]] < starts[keys[j]]
		}
		if keys[i].Path != keys[j].Path {
			return keys[i].Path < keys[j].Path
		}
		return MethodRank(keys[i].Method) < MethodRank(keys[j].Method)
	})
	return keys
}
