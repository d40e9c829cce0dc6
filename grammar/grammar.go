// Package grammar defines the rule table consumed by the recognition
// engines: an ordered list of named rules with ast.Matcher bodies.
// Construction validates rule references, rewrites direct left recursion
// into an equivalent right-recursive form, and caches rule nullability.
package grammar

import (
	"github.com/ava12/dpeg/ast"
)

// Rule is a named entry point of a grammar. The body is set once at
// construction time and never modified afterwards.
type Rule struct {
	Name string
	Body ast.Matcher

	nullable  bool
	synthetic bool
}

// Nullable reports whether the rule matches the empty string
// unconditionally (lookahead predicates are not considered nullable).
func (r *Rule) Nullable() bool {
	return r.nullable
}

// Synthetic reports whether the rule was added by the left recursion
// rewrite rather than defined by the caller.
func (r *Rule) Synthetic() bool {
	return r.synthetic
}

// Grammar is an ordered set of rules.
type Grammar struct {
	rules []*Rule
	index map[string]*Rule
}

// New creates a grammar from the given rules.
// Rules must have unique non-empty names and non-nil bodies; every rule
// reference must name a defined rule. Returns nil and a dpeg.Error with a
// grammar error code otherwise.
func New(rules []*Rule) (*Grammar, error) {
	if len(rules) == 0 {
		return nil, noRulesError()
	}

	index := make(map[string]*Rule, len(rules))
	for _, r := range rules {
		if r.Name == "" || r.Body == nil {
			return nil, incompleteRuleError(r.Name)
		}
		if index[r.Name] != nil {
			return nil, duplicateRuleError(r.Name)
		}
		index[r.Name] = r
	}

	for _, r := range rules {
		e := checkRefs(r.Body, index)
		if e != nil {
			return nil, e
		}
	}

	rules = rewriteLeftRecursion(rules, index)
	g := &Grammar{rules, index}
	g.computeNullable()
	return g, nil
}

// Rule returns the named rule or nil.
func (g *Grammar) Rule(name string) *Rule {
	return g.index[name]
}

// Rules returns the rules in definition order. The result must not be
// modified.
func (g *Grammar) Rules() []*Rule {
	return g.rules
}

// Names returns rule names in definition order.
func (g *Grammar) Names() []string {
	result := make([]string, len(g.rules))
	for i, r := range g.rules {
		result[i] = r.Name
	}
	return result
}

// Unused returns names of rules not reachable from the given start rule.
func (g *Grammar) Unused(start string) []string {
	seen := make(map[string]bool, len(g.rules))
	var walk func(name string)
	walk = func(name string) {
		if seen[name] {
			return
		}
		seen[name] = true
		r := g.index[name]
		if r != nil {
			eachRef(r.Body, walk)
		}
	}
	walk(start)

	result := []string{}
	for _, r := range g.rules {
		if !seen[r.Name] && !r.synthetic {
			result = append(result, r.Name)
		}
	}
	return result
}

func checkRefs(m ast.Matcher, index map[string]*Rule) error {
	var e error
	eachRef(m, func(name string) {
		if e == nil && index[name] == nil {
			e = undefinedRuleError(name)
		}
	})
	return e
}

func eachRef(m ast.Matcher, f func(name string)) {
	switch mm := m.(type) {
	case *ast.RefMatcher:
		f(mm.Name)
	case *ast.OptMatcher:
		eachRef(mm.M, f)
	case *ast.ManyMatcher:
		eachRef(mm.M, f)
	case *ast.SomeMatcher:
		eachRef(mm.M, f)
	case *ast.LookMatcher:
		eachRef(mm.M, f)
	case *ast.NotMatcher:
		eachRef(mm.M, f)
	case *ast.CaptMatcher:
		eachRef(mm.M, f)
	case *ast.NamedMatcher:
		eachRef(mm.M, f)
	case *ast.SeqMatcher:
		for _, sub := range mm.Ms {
			eachRef(sub, f)
		}
	case *ast.AltMatcher:
		for _, sub := range mm.Ms {
			eachRef(sub, f)
		}
	}
}

// computeNullable runs a fixed point over all rules. A rule is nullable
// when its body matches the empty string unconditionally; lookahead
// predicates are conservatively treated as non-nullable.
func (g *Grammar) computeNullable() {
	changed := true
	for changed {
		changed = false
		for _, r := range g.rules {
			if !r.nullable && g.nullable(r.Body) {
				r.nullable = true
				changed = true
			}
		}
	}
}

func (g *Grammar) nullable(m ast.Matcher) bool {
	switch mm := m.(type) {
	case *ast.EmptyMatcher, *ast.OptMatcher, *ast.ManyMatcher, *ast.ActionMatcher:
		return true
	case *ast.StrMatcher:
		return len(mm.S) == 0
	case *ast.SomeMatcher:
		return g.nullable(mm.M)
	case *ast.CaptMatcher:
		return g.nullable(mm.M)
	case *ast.NamedMatcher:
		return g.nullable(mm.M)
	case *ast.RefMatcher:
		r := g.index[mm.Name]
		return r != nil && r.nullable
	case *ast.SeqMatcher:
		for _, sub := range mm.Ms {
			if !g.nullable(sub) {
				return false
			}
		}
		return true
	case *ast.AltMatcher:
		for _, sub := range mm.Ms {
			if g.nullable(sub) {
				return true
			}
		}
		return false
	}
	return false
}
