// Package acl implements ordered first-match-wins access control lists
// keyed on regular expressions. Rules are compiled once at construction
// and the list is read-only afterwards, so it is safe for concurrent use.
package acl

import (
	"fmt"
	"regexp"
)

// ACL is an ordered list of compiled rules. Earlier rules take precedence.
type ACL struct {
	rules    []string
	patterns []*regexp.Regexp
}

// New compiles every rule in declaration order. A rule that fails to
// compile aborts construction with an error naming the offending rule.
func New(rules []string) (*ACL, error) {
	a := &ACL{
		rules:    make([]string, 0, len(rules)),
		patterns: make([]*regexp.Regexp, 0, len(rules)),
	}
	for i, r := range rules {
		re, err := regexp.Compile(r)
		if err != nil {
			return nil, fmt.Errorf("acl rule %d %q: %w", i, r, err)
		}
		a.rules = append(a.rules, r)
		a.patterns = append(a.patterns, re)
	}
	return a, nil
}

// Match scans the rules in declaration order and returns the index and
// original text of the first rule matching identity. ok is false when no
// rule matches or the list is empty.
func (a *ACL) Match(identity string) (index int, rule string, ok bool) {
	for i, re := range a.patterns {
		if re.MatchString(identity) {
			return i, a.rules[i], true
		}
	}
	return 0, "", false
}

// Rules returns the original rule texts in declaration order.
func (a *ACL) Rules() []string {
	return a.rules
}

// Len returns the number of rules.
func (a *ACL) Len() int {
	return len(a.rules)
}
