package specdoc

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/swagindex/mcp-server/internal/diag"
	"github.com/swagindex/mcp-server/internal/indexing"
)

// ErrNoPaths is returned when a document has no paths mapping.
var ErrNoPaths = errors.New("document has no 'paths' key")

// Document is the minimal structural view of an OpenAPI or Swagger file.
// Only the parts needed for indexing and enrichment are decoded.
type Document struct {
	OpenAPI    string               `yaml:"openapi"`
	Swagger    string               `yaml:"swagger"`
	Info       Info                 `yaml:"info"`
	Paths      Paths                `yaml:"paths"`
	Components Components           `yaml:"components"`
	Parameters map[string]Parameter `yaml:"parameters"` // swagger 2.0 shared parameters

	hasPaths bool
}

type Info struct {
	Title   string `yaml:"title"`
	Version string `yaml:"version"`
}

type Components struct {
	Parameters map[string]Parameter `yaml:"parameters"`
}

// Paths keeps path items together with their declaration order.
type Paths struct {
	Order []string
	Items map[string]*PathItem
}

func (p *Paths) UnmarshalYAML(value *yaml.Node) error {
	p.Items = map[string]*PathItem{}
	p.Order = nil
	if value.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(value.Content); i += 2 {
		key := value.Content[i].Value
		item := &PathItem{}
		if err := value.Content[i+1].Decode(item); err != nil {
			return fmt.Errorf("path %s: %w", key, err)
		}
		if _, dup := p.Items[key]; !dup {
			p.Order = append(p.Order, key)
		}
		p.Items[key] = item
	}
	return nil
}

// PathItem holds the operations declared under one path.
type PathItem struct {
	Operations map[string]*Operation // keyed by lowercase method
	Parameters []Parameter
}

func (pi *PathItem) UnmarshalYAML(value *yaml.Node) error {
	pi.Operations = map[string]*Operation{}
	if value.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(value.Content); i += 2 {
		key := strings.ToLower(strings.TrimSpace(value.Content[i].Value))
		node := value.Content[i+1]
		switch {
		case key == "parameters":
			if node.Kind == yaml.SequenceNode {
				if err := node.Decode(&pi.Parameters); err != nil {
					return fmt.Errorf("parameters: %w", err)
				}
			}
		case indexing.IsMethod(key):
			op := &Operation{}
			if node.Kind == yaml.MappingNode {
				if err := node.Decode(op); err != nil {
					return fmt.Errorf("%s: %w", key, err)
				}
			}
			pi.Operations[key] = op
		}
	}
	return nil
}

// Operation is a single method entry.
type Operation struct {
	Summary     string      `yaml:"summary"`
	Description string      `yaml:"description"`
	OperationID string      `yaml:"operationId"`
	Tags        []string    `yaml:"tags"`
	Parameters  []Parameter `yaml:"parameters"`
}

// Parameter is an operation or path-level parameter, or a local reference to one.
type Parameter struct {
	Ref         string  `yaml:"$ref"`
	Name        string  `yaml:"name"`
	In          string  `yaml:"in"`
	Required    bool    `yaml:"required"`
	Description string  `yaml:"description"`
	Type        string  `yaml:"type"` // swagger 2.0
	Schema      *Schema `yaml:"schema"`
}

type Schema struct {
	Ref  string     `yaml:"$ref"`
	Type SchemaType `yaml:"type"`
}

// SchemaType accepts both `type: string` and the 3.1 list form
// `type: [string, "null"]`, keeping the first non-null entry.
type SchemaType string

func (t *SchemaType) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*t = SchemaType(value.Value)
	case yaml.SequenceNode:
		for _, n := range value.Content {
			if n.Kind == yaml.ScalarNode && n.Value != "null" {
				*t = SchemaType(n.Value)
				return nil
			}
		}
	}
	return nil
}

// Parse decodes raw document bytes.
func Parse(data []byte) (*Document, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, err
	}
	if len(root.Content) == 0 || root.Content[0].Kind != yaml.MappingNode {
		return nil, errors.New("document is empty or not a mapping")
	}
	doc := &Document{}
	if err := root.Content[0].Decode(doc); err != nil {
		return nil, err
	}
	top := root.Content[0]
	for i := 0; i+1 < len(top.Content); i += 2 {
		if top.Content[i].Value == "paths" {
			doc.hasPaths = true
		}
	}
	if doc.Paths.Items == nil {
		doc.Paths.Items = map[string]*PathItem{}
	}
	return doc, nil
}

// Load reads and parses the document at path. A missing file is a missing
// resource; a syntax error or non-mapping root is malformed input.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, diag.Missing(path, err)
		}
		return nil, diag.Missing(path, fmt.Errorf("failed to read: %w", err))
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, diag.Malformed(path, err)
	}
	return doc, nil
}

// HasPaths reports whether the document declared a top-level paths key.
func (d *Document) HasPaths() bool { return d.hasPaths }

// SpecVersion returns the OpenAPI version, or "swagger <v>" for 2.0 files.
func (d *Document) SpecVersion() string {
	if d.OpenAPI != "" {
		return d.OpenAPI
	}
	if d.Swagger != "" {
		return "swagger " + d.Swagger
	}
	return ""
}

// Operation looks up a path and method. The method is matched case-insensitively.
func (d *Document) Operation(path, method string) (*PathItem, *Operation, bool) {
	item, ok := d.Paths.Items[path]
	if !ok || item == nil {
		return nil, nil, false
	}
	op, ok := item.Operations[strings.ToLower(method)]
	if !ok {
		return item, nil, false
	}
	return item, op, true
}

// ResolveParameter follows a local $ref to a shared parameter definition.
// Non-local or dangling references resolve to false.
func (d *Document) ResolveParameter(p Parameter) (Parameter, bool) {
	if p.Ref == "" {
		return p, true
	}
	var table map[string]Parameter
	var name string
	switch {
	case strings.HasPrefix(p.Ref, "#/components/parameters/"):
		table, name = d.Components.Parameters, strings.TrimPrefix(p.Ref, "#/components/parameters/")
	case strings.HasPrefix(p.Ref, "#/parameters/"):
		table, name = d.Parameters, strings.TrimPrefix(p.Ref, "#/parameters/")
	default:
		return Parameter{}, false
	}
	name = strings.NewReplacer("~1", "/", "~0", "~").Replace(name)
	resolved, ok := table[name]
	if !ok || resolved.Ref != "" {
		return Parameter{}, false
	}
	return resolved, true
}

// EffectiveParameters merges path-level parameters into the operation's own
// list. Operation parameters override path-level ones with the same name and
// location. References are resolved; unresolvable ones are dropped.
func (d *Document) EffectiveParameters(item *PathItem, op *Operation) []Parameter {
	var out []Parameter
	seen := map[string]bool{}
	add := func(params []Parameter) {
		for _, raw := range params {
			p, ok := d.ResolveParameter(raw)
			if !ok {
				continue
			}
			id := p.In + "\x00" + p.Name
			if seen[id] {
				continue
			}
			seen[id] = true
			out = append(out, p)
		}
	}
	if op != nil {
		add(op.Parameters)
	}
	if item != nil {
		add(item.Parameters)
	}
	return out
}
