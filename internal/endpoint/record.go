package endpoint

import (
	"strings"

	"github.com/swagindex/mcp-server/internal/specdoc"
)

// Record is one discovered endpoint. The serialized fields form the endpoint
// map; the rest are filled in by routing and enrichment.
type Record struct {
	SwaggerFile string `json:"swagger_file"`
	Endpoint    string `json:"endpoint"`
	Method      string `json:"method"` // uppercase
	Description string `json:"description"`
	StartLine   int    `json:"start_line"`
	EndLine     int    `json:"end_line"`
	Variant     string `json:"variant,omitempty"`

	Source              string  `json:"-"` // config source that produced the record
	DisplayPath         string  `json:"-"`
	Section             string  `json:"-"`
	ResolvedDescription string  `json:"-"`
	Params              []Param `json:"-"`
	ParamsResolved      bool    `json:"-"`
}

// Param is a path or query parameter attached during enrichment.
type Param struct {
	Name        string `json:"name"`
	In          string `json:"in"`
	Required    bool   `json:"required"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

// Key is the identity used for de-duplication.
type Key struct {
	Endpoint string
	Method   string
}

func (r *Record) Key() Key {
	return Key{Endpoint: r.Endpoint, Method: strings.ToUpper(r.Method)}
}

// FromSource converts every operation of src into a record. swaggerFile is the
// path recorded in the map, relative to the cache root.
func FromSource(src *specdoc.Source, swaggerFile, variant string) []*Record {
	endpoints := src.Endpoints()
	records := make([]*Record, 0, len(endpoints))
	for _, ep := range endpoints {
		records = append(records, &Record{
			SwaggerFile: swaggerFile,
			Endpoint:    ep.Path,
			Method:      strings.ToUpper(ep.Method),
			Description: ep.Operation.Description,
			StartLine:   ep.Range.Start,
			EndLine:     ep.Range.End,
			Variant:     variant,
		})
	}
	return records
}
