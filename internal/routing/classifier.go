package routing

import (
	"strings"
)

// DefaultVariant is the variant name routed through the rule table when no
// other name is configured.
const DefaultVariant = "default"

// DefaultSuffix is appended to auto-derived destination identifiers.
const DefaultSuffix = ".md"

// Destination is configured metadata for a rule-table destination.
type Destination struct {
	ID       string
	Title    string
	Preamble string
	Topic    bool     // listed first, in declaration order, even when empty
	Section  string   // heading for records routed by prefix; Title when empty
	Sections []string // headings listed in this order before any others
}

// Options configures a Classifier.
type Options struct {
	DefaultVariant string
	Suffix         string
	Rules          []Rule
	Policies       []Policy
	Destinations   []Destination
}

// Classifier assigns a (path, variant) pair to exactly one destination.
// All tables are built in NewClassifier and never change afterwards.
type Classifier struct {
	defaultVariant string
	suffix         string
	rules          *RuleSet
	policies       map[string]Policy
	destinations   map[string]Destination
	fixedByDest    map[string]Target
}

func NewClassifier(opts Options) *Classifier {
	c := &Classifier{
		defaultVariant: opts.DefaultVariant,
		suffix:         opts.Suffix,
		rules:          NewRuleSet(opts.Rules),
		policies:       make(map[string]Policy, len(opts.Policies)),
		destinations:   make(map[string]Destination, len(opts.Destinations)),
		fixedByDest:    map[string]Target{},
	}
	if c.defaultVariant == "" {
		c.defaultVariant = DefaultVariant
	}
	if c.suffix == "" {
		c.suffix = DefaultSuffix
	}
	for _, d := range opts.Destinations {
		c.destinations[d.ID] = d
	}
	for _, p := range opts.Policies {
		p.Target = p.Target.withDefaults()
		p.Alternate = p.Alternate.withDefaults()
		c.policies[p.Variant] = p
		if p.Kind == PolicyFixed {
			if _, ok := c.fixedByDest[p.Target.Destination]; !ok {
				c.fixedByDest[p.Target.Destination] = p.Target
			}
		}
	}
	return c
}

// DefaultVariant returns the variant routed by prefix.
func (c *Classifier) DefaultVariant() string { return c.defaultVariant }

// Rules exposes the sorted rule table.
func (c *Classifier) Rules() *RuleSet { return c.rules }

// Destination returns configured metadata for id.
func (c *Classifier) Destination(id string) (Destination, bool) {
	d, ok := c.destinations[id]
	return d, ok
}

// PolicyFor returns the policy applied to variant. Variants without an
// explicit entry get an auto-derived policy.
func (c *Classifier) PolicyFor(variant string) Policy {
	if p, ok := c.policies[variant]; ok {
		return p
	}
	if variant == c.defaultVariant {
		return Policy{Variant: variant, Kind: PolicyPrefix}
	}
	return Policy{Variant: variant, Kind: PolicyAuto}
}

// Classify returns the target for path under variant, or false when a
// prefix-routed path matches no rule.
func (c *Classifier) Classify(path, variant string) (Target, bool) {
	p := c.PolicyFor(variant)
	switch p.Kind {
	case PolicyPrefix:
		rule, ok := c.rules.Match(path)
		if !ok {
			return Target{}, false
		}
		return c.DestinationTarget(rule.Destination), true
	case PolicyFixed:
		return p.Target, true
	case PolicySplitting:
		if p.Marker != "" && strings.Contains(path, p.Marker) {
			return p.Target, true
		}
		return p.Alternate, true
	default:
		return autoTarget(p.Variant, c.suffix), true
	}
}

// DestinationTarget resolves display metadata for a destination reached by
// prefix or named directly by a source. Undeclared destinations reuse a
// fixed variant policy that points at them, or fall back to a heading
// derived from the identifier.
func (c *Classifier) DestinationTarget(id string) Target {
	if d, ok := c.destinations[id]; ok {
		heading := d.Section
		if heading == "" {
			heading = d.Title
		}
		return Target{Destination: id, Title: d.Title, Heading: heading, Preamble: d.Preamble}
	}
	if t, ok := c.fixedByDest[id]; ok {
		return t
	}
	heading := AutoHeading(strings.TrimSuffix(id, c.suffix))
	return Target{Destination: id, Title: heading, Heading: heading}
}
