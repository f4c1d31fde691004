package routing

import (
	"fmt"
	"sort"
	"strings"

	"github.com/swagindex/mcp-server/internal/diag"
	"github.com/swagindex/mcp-server/internal/endpoint"
)

// Source describes one endpoint map fed to the router.
type Source struct {
	Name            string
	Classify        bool   // route through the classifier
	Destination     string // fixed destination when Classify is false
	Section         string // section heading when Classify is false
	PathPrefix      string // prepended to form the display path
	Methods         []string
	ExcludeSuffixes []string
	ExcludePaths    []string
}

func (s Source) keeps(r *endpoint.Record) bool {
	if len(s.Methods) > 0 {
		found := false
		for _, m := range s.Methods {
			if strings.EqualFold(m, r.Method) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	for _, suffix := range s.ExcludeSuffixes {
		if strings.HasSuffix(r.Endpoint, suffix) {
			return false
		}
	}
	for _, p := range s.ExcludePaths {
		if r.Endpoint == p {
			return false
		}
	}
	return true
}

// Section is a headed run of records inside a group.
type Section struct {
	Heading string
	Records []*endpoint.Record
}

// Group is one output destination.
type Group struct {
	ID       string
	Title    string
	Preamble string
	Topic    bool
	Sections []*Section

	declared int // leading sections fixed by configuration
}

func (g *Group) section(heading string) *Section {
	for _, s := range g.Sections {
		if s.Heading == heading {
			return s
		}
	}
	s := &Section{Heading: heading}
	g.Sections = append(g.Sections, s)
	return s
}

// Len returns the number of records across all sections.
func (g *Group) Len() int {
	n := 0
	for _, s := range g.Sections {
		n += len(s.Records)
	}
	return n
}

// Records returns every record in section order.
func (g *Group) Records() []*endpoint.Record {
	out := make([]*endpoint.Record, 0, g.Len())
	for _, s := range g.Sections {
		out = append(out, s.Records...)
	}
	return out
}

// Stats counts what happened to routed records.
type Stats struct {
	Routed       int
	Filtered     int
	Unclassified int
}

// Router collects records into groups.
type Router struct {
	classifier *Classifier
	diags      *diag.List
	groups     map[string]*Group
	topics     []string
	stats      Stats
}

// NewRouter pre-registers every topic destination so they appear even when empty.
func NewRouter(c *Classifier, topics []Destination, diags *diag.List) *Router {
	r := &Router{
		classifier: c,
		diags:      diags,
		groups:     map[string]*Group{},
	}
	for _, d := range topics {
		if !d.Topic {
			continue
		}
		r.topics = append(r.topics, d.ID)
		r.register(c.DestinationTarget(d.ID), true)
	}
	return r
}

// register creates a group the first time a destination is used.
func (r *Router) register(t Target, topic bool) *Group {
	if g, ok := r.groups[t.Destination]; ok {
		return g
	}
	g := &Group{ID: t.Destination, Title: t.Title, Preamble: t.Preamble, Topic: topic}
	if d, ok := r.classifier.Destination(t.Destination); ok {
		for _, h := range d.Sections {
			g.section(h)
		}
		g.declared = len(d.Sections)
	}
	r.groups[t.Destination] = g
	return g
}

// VariantOf returns the record's variant, falling back to the first segment
// of its swagger file path.
func VariantOf(rec *endpoint.Record) string {
	if rec.Variant != "" {
		return rec.Variant
	}
	first, _, _ := strings.Cut(rec.SwaggerFile, "/")
	return first
}

// Route filters, classifies and groups the records of one source.
func (r *Router) Route(src Source, records []*endpoint.Record) {
	for _, rec := range records {
		if !src.keeps(rec) {
			r.stats.Filtered++
			continue
		}

		var target Target
		if src.Classify {
			t, ok := r.classifier.Classify(rec.Endpoint, VariantOf(rec))
			if !ok {
				r.stats.Unclassified++
				r.diags.Add(diag.KindUnclassified, fmt.Sprintf("%s %s", rec.Method, rec.Endpoint),
					"matches no classification rule, skipping")
				continue
			}
			target = t
		} else {
			target = r.classifier.DestinationTarget(src.Destination)
			if src.Section != "" {
				target.Heading = src.Section
			}
		}

		rec.Source = src.Name
		rec.DisplayPath = src.PathPrefix + rec.Endpoint
		rec.Section = target.Heading

		g := r.register(target, false)
		s := g.section(target.Heading)
		s.Records = append(s.Records, rec)
		r.stats.Routed++
	}
}

// Stats returns routing counters.
func (r *Router) Stats() Stats { return r.stats }

// Groups returns topic groups in configured order followed by the other
// non-empty groups sorted by identifier. Undeclared sections are ordered by
// heading, and sections left empty are dropped from non-topic groups.
func (r *Router) Groups() []*Group {
	var out []*Group
	isTopic := map[string]bool{}
	for _, id := range r.topics {
		isTopic[id] = true
		out = append(out, r.groups[id])
	}

	var others []string
	for id, g := range r.groups {
		if !isTopic[id] && g.Len() > 0 {
			others = append(others, id)
		}
	}
	sort.Strings(others)
	for _, id := range others {
		out = append(out, r.groups[id])
	}

	for _, g := range out {
		extra := g.Sections[g.declared:]
		sort.SliceStable(extra, func(i, j int) bool { return extra[i].Heading < extra[j].Heading })
		if g.Topic {
			continue
		}
		kept := make([]*Section, 0, len(g.Sections))
		declared := 0
		for i, s := range g.Sections {
			if len(s.Records) == 0 {
				continue
			}
			kept = append(kept, s)
			if i < g.declared {
				declared++
			}
		}
		g.Sections, g.declared = kept, declared
	}
	return out
}
