package render

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/swagindex/mcp-server/internal/endpoint"
	"github.com/swagindex/mcp-server/internal/routing"
)

// PathParamDefault replaces a path placeholder no keyword matched.
const PathParamDefault = "value"

// pathParamSubstitutions are tried in order; the first keyword contained in
// the lowercase parameter name wins.
var pathParamSubstitutions = []struct {
	keywords []string
	value    string
}{
	{[]string{"address", "hash"}, "0xabc..."},
	{[]string{"block", "number"}, "1000000"},
	{[]string{"token_id"}, "1"},
	{[]string{"batch"}, "12345"},
}

var placeholder = regexp.MustCompile(`\{([^}]+)\}`)

// SubstitutePathParam returns a realistic sample value for a path parameter.
func SubstitutePathParam(name string) string {
	lower := strings.ToLower(name)
	for _, s := range pathParamSubstitutions {
		for _, kw := range s.keywords {
			if strings.Contains(lower, kw) {
				return s.value
			}
		}
	}
	return PathParamDefault
}

// NeedsExample reports whether any parameter is structured.
func NeedsExample(params []endpoint.Param) bool {
	for _, p := range params {
		if p.Type == "object" || p.Type == "array" {
			return true
		}
	}
	return false
}

// CurlExample builds a request line with a {base_url} placeholder.
func CurlExample(displayPath string) string {
	path := placeholder.ReplaceAllStringFunc(displayPath, func(m string) string {
		return SubstitutePathParam(m[1 : len(m)-1])
	})
	return fmt.Sprintf(`curl "{base_url}%s"`, path)
}

// ParamTable renders the two-space indented parameter table, or *None*.
func ParamTable(params []endpoint.Param) string {
	if len(params) == 0 {
		return "  *None*"
	}
	lines := []string{
		"  | Name | Type | Required | Description |",
		"  | ---- | ---- | -------- | ----------- |",
	}
	for _, p := range params {
		req := "No"
		if p.Required {
			req = "Yes"
		}
		lines = append(lines, fmt.Sprintf("  | `%s` | `%s` | %s | %s |", p.Name, p.Type, req, p.Description))
	}
	return strings.Join(lines, "\n")
}

// Endpoint renders one H4 endpoint block ending in a newline.
func Endpoint(rec *endpoint.Record) string {
	path := displayPath(rec)
	lines := []string{fmt.Sprintf("#### %s %s", rec.Method, path), ""}
	if rec.ResolvedDescription != "" {
		lines = append(lines, rec.ResolvedDescription, "")
	}
	lines = append(lines, "- **Parameters**", "", ParamTable(rec.Params))

	if NeedsExample(rec.Params) {
		lines = append(lines,
			"",
			"- **Example Request**",
			"",
			"  ```bash",
			"  "+CurlExample(path),
			"  ```",
		)
	}
	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

// Destination renders the full content of one destination file.
func Destination(g *routing.Group) string {
	var b strings.Builder
	b.WriteString("## API Endpoints\n")
	if g.Preamble != "" {
		fmt.Fprintf(&b, "\n%s\n", g.Preamble)
	}

	sections := g.Sections
	if len(sections) == 0 && g.Topic {
		sections = []*routing.Section{{Heading: g.Title}}
	}
	for _, s := range sections {
		fmt.Fprintf(&b, "\n### %s\n", s.Heading)
		for _, rec := range s.Records {
			b.WriteString("\n")
			b.WriteString(Endpoint(rec))
		}
	}
	return b.String()
}

// IndexOptions configures the master index.
type IndexOptions struct {
	Title  string
	Intro  string
	APIDir string // directory the group links point into
}

// Index renders the master index listing every group in order.
func Index(groups []*routing.Group, opts IndexOptions) string {
	lines := []string{"# " + opts.Title}
	if opts.Intro != "" {
		lines = append(lines, "", opts.Intro)
	}
	for _, g := range groups {
		lines = append(lines, "", fmt.Sprintf("## [%s](%s)", g.Title, linkTarget(opts.APIDir, g.ID)), "")
		if g.Preamble != "" {
			lines = append(lines, g.Preamble, "")
		}
		for _, rec := range g.Records() {
			lines = append(lines, fmt.Sprintf("- `%s`: %s", displayPath(rec), rec.ResolvedDescription))
		}
	}
	lines = append(lines, "")
	return strings.Join(lines, "\n")
}

func linkTarget(dir, id string) string {
	if dir == "" {
		return id
	}
	return strings.TrimRight(dir, "/") + "/" + id
}

func displayPath(rec *endpoint.Record) string {
	if rec.DisplayPath != "" {
		return rec.DisplayPath
	}
	return rec.Endpoint
}
