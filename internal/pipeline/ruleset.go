package pipeline

import (
	"sort"

	"github.com/ppiankov/rulemerge/internal/model"
)

// RuleSet is the deduplicated union of every source in a category.
// Entries are compared as literal strings, without normalization.
type RuleSet struct {
	rules map[model.RuleType]map[string]struct{}
}

// NewRuleSet creates an empty rule set
func NewRuleSet() *RuleSet {
	return &RuleSet{rules: make(map[model.RuleType]map[string]struct{})}
}

// Add records a rule line under t
func (s *RuleSet) Add(t model.RuleType, line string) {
	set, ok := s.rules[t]
	if !ok {
		set = make(map[string]struct{})
		s.rules[t] = set
	}
	set[line] = struct{}{}
}

// Merge unions every line of a classified source into the set
func (s *RuleSet) Merge(c Classified) {
	for t, lines := range c.Rules {
		for _, line := range lines {
			s.Add(t, line)
		}
	}
}

// Count returns the number of unique entries of type t
func (s *RuleSet) Count(t model.RuleType) int {
	return len(s.rules[t])
}

// Total returns the number of unique entries across all types
func (s *RuleSet) Total() int {
	total := 0
	for _, set := range s.rules {
		total += len(set)
	}
	return total
}

// Sorted returns the entries of type t in lexicographic order
func (s *RuleSet) Sorted(t model.RuleType) []string {
	set := s.rules[t]
	out := make([]string, 0, len(set))
	for line := range set {
		out = append(out, line)
	}
	sort.Strings(out)
	return out
}
