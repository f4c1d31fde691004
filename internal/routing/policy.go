package routing

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// PolicyKind tags how a variant picks its destination.
type PolicyKind string

const (
	// PolicyPrefix routes through the rule table. Used by the default variant.
	PolicyPrefix PolicyKind = "prefix"
	// PolicyFixed sends every record to one destination.
	PolicyFixed PolicyKind = "fixed"
	// PolicySplitting chooses between two destinations by a path marker.
	PolicySplitting PolicyKind = "split"
	// PolicyAuto derives destination and heading from the variant name.
	PolicyAuto PolicyKind = "auto"
)

// ParsePolicyKind accepts the config spelling of a kind.
func ParsePolicyKind(s string) (PolicyKind, error) {
	switch k := PolicyKind(strings.ToLower(strings.TrimSpace(s))); k {
	case PolicyPrefix, PolicyFixed, PolicySplitting, PolicyAuto:
		return k, nil
	case "":
		return PolicyFixed, nil
	}
	return "", fmt.Errorf("unknown variant policy %q", s)
}

// Target is the outcome of classifying one record.
type Target struct {
	Destination string
	Title       string // display name of the destination
	Heading     string // section heading the record is listed under
	Preamble    string
}

// Policy is the data record describing one variant's routing.
type Policy struct {
	Variant string
	Kind    PolicyKind

	// Fixed destination, or the split destination chosen when Marker is present.
	Target Target

	// Splitting only.
	Marker    string
	Alternate Target
}

// AutoDestination turns a variant name into a destination identifier.
// Example: "polygon_zkevm" -> "polygon-zkevm.md"
func AutoDestination(variant, suffix string) string {
	return strings.ReplaceAll(variant, "_", "-") + suffix
}

// AutoHeading turns a variant or file stem into a display heading.
// Example: "arbitrum_nova" -> "Arbitrum Nova"
func AutoHeading(name string) string {
	words := strings.Fields(strings.NewReplacer("_", " ", "-", " ").Replace(name))
	return cases.Title(language.Und).String(strings.Join(words, " "))
}

func autoTarget(variant, suffix string) Target {
	heading := AutoHeading(variant)
	return Target{
		Destination: AutoDestination(variant, suffix),
		Title:       heading,
		Heading:     heading,
	}
}

func (t Target) withDefaults() Target {
	if t.Title == "" {
		t.Title = t.Heading
	}
	if t.Heading == "" {
		t.Heading = t.Title
	}
	return t
}
