package routing

import (
	"sort"
	"strings"
)

// Rule maps a path prefix to a destination.
type Rule struct {
	Prefix      string `yaml:"prefix" json:"prefix"`
	Destination string `yaml:"destination" json:"destination"`
}

func (r Rule) base() string {
	return strings.TrimRight(r.Prefix, "/")
}

// Matches reports whether path equals the prefix without its trailing slash
// or continues it with a further segment.
func (r Rule) Matches(path string) bool {
	base := r.base()
	return path == base || strings.HasPrefix(path, base+"/")
}

// RuleSet is an immutable rule table ordered by descending specificity.
// Rules of equal specificity keep their declaration order.
type RuleSet struct {
	rules []Rule
}

// NewRuleSet copies and sorts rules once.
func NewRuleSet(rules []Rule) *RuleSet {
	sorted := make([]Rule, len(rules))
	copy(sorted, rules)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].base()) > len(sorted[j].base())
	})
	return &RuleSet{rules: sorted}
}

// Match returns the most specific rule matching path.
func (rs *RuleSet) Match(path string) (Rule, bool) {
	for _, r := range rs.rules {
		if r.Matches(path) {
			return r, true
		}
	}
	return Rule{}, false
}

// Rules returns the rules in match order.
func (rs *RuleSet) Rules() []Rule {
	out := make([]Rule, len(rs.rules))
	copy(out, rs.rules)
	return out
}
