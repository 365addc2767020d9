// Package pathmap implements the Path Mapper (C1): translating remote-style
// mount paths to locally visible paths (spec §4.1).
package pathmap

import "strings"

// Rule is one {remote_prefix, local_prefix} pair from the path-mapping
// configuration.
type Rule struct {
	Remote string `yaml:"remote" validate:"required"`
	Local  string `yaml:"local" validate:"required"`
}

// Mapper holds an ordered list of rules and applies the first literal-prefix
// match, matching bytes exactly. No rule is tried after the first match;
// unmatched paths pass through unchanged (spec §4.1).
type Mapper struct {
	rules []Rule
}

// New constructs a Mapper from an ordered rule list. The slice is copied so
// later mutation of the caller's slice does not affect the Mapper.
func New(rules []Rule) *Mapper {
	copied := make([]Rule, len(rules))
	copy(copied, rules)
	return &Mapper{rules: copied}
}

// Map translates path using the first matching rule, or returns it
// unchanged.
func (m *Mapper) Map(path string) string {
	if m == nil {
		return path
	}
	for _, rule := range m.rules {
		if strings.HasPrefix(path, rule.Remote) {
			return rule.Local + strings.TrimPrefix(path, rule.Remote)
		}
	}
	return path
}
