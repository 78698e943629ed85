// Package rewrite implements an ordered URL rewrite table. The first rule
// whose pattern matches performs the substitution; later rules are ignored.
package rewrite

import (
	"fmt"
	"regexp"
)

// Rule pairs a regular expression with its replacement string. The
// replacement may reference capture groups ($1, ${name}).
type Rule struct {
	Pattern     string
	Replacement string
}

// Table is an ordered list of compiled rewrite rules.
type Table struct {
	rules    []Rule
	patterns []*regexp.Regexp
}

// New compiles every rule pattern in declaration order.
func New(rules []Rule) (*Table, error) {
	t := &Table{
		rules:    make([]Rule, 0, len(rules)),
		patterns: make([]*regexp.Regexp, 0, len(rules)),
	}
	for i, r := range rules {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rewrite rule %d %q: %w", i, r.Pattern, err)
		}
		t.rules = append(t.rules, r)
		t.patterns = append(t.patterns, re)
	}
	return t, nil
}

// Rewrite returns the index of the first matching rule and the rewritten
// URL. ok is false when no rule matches.
func (t *Table) Rewrite(url string) (index int, rewritten string, ok bool) {
	for i, re := range t.patterns {
		if re.MatchString(url) {
			return i, re.ReplaceAllString(url, t.rules[i].Replacement), true
		}
	}
	return 0, "", false
}

// Len returns the number of rules.
func (t *Table) Len() int {
	return len(t.rules)
}
