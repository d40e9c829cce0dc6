package derivs

import (
	"strconv"

	"github.com/ava12/dpeg/ast"
	"github.com/ava12/dpeg/grammar"
)

// Recognizer holds the expressions loaded from a grammar and the shared
// memoization table. A recognizer is single-threaded; use separate
// recognizers to match concurrently.
type Recognizer struct {
	g     *grammar.Grammar
	tbl   *Table
	rules map[string]*ruleExpr
	anon  int
}

// New loads a grammar into a recognizer.
func New(g *grammar.Grammar) *Recognizer {
	t := NewTable()
	t.loading = true
	r := &Recognizer{g: g, tbl: t, rules: make(map[string]*ruleExpr, len(g.Rules()))}
	for _, rule := range g.Rules() {
		r.rules[rule.Name] = newRuleExpr(t, rule.Name, rule.Nullable())
	}
	for _, rule := range g.Rules() {
		r.rules[rule.Name].body = r.lower(rule.Body)
	}
	t.loading = false
	return r
}

// lower translates a matcher tree into the expression algebra. Captures,
// named messages, and semantic actions are lowered to plain matching.
func (r *Recognizer) lower(m ast.Matcher) Expr {
	switch mm := m.(type) {
	case *ast.CharMatcher:
		return Char(mm.C)
	case *ast.StrMatcher:
		return Str(mm.S)
	case *ast.RangeMatcher:
		return r.ranges(mm.Rs)
	case *ast.RefMatcher:
		return r.rules[mm.Name]
	case *ast.AnyMatcher:
		return AnyChar()
	case *ast.EmptyMatcher:
		return Eps()
	case *ast.OptMatcher:
		return Alt(r.tbl, r.lower(mm.M), Eps())
	case *ast.ManyMatcher:
		return r.many(mm.M)
	case *ast.SomeMatcher:
		return Seq(r.tbl, r.lower(mm.M), r.many(mm.M))
	case *ast.SeqMatcher:
		result := Eps()
		for i := len(mm.Ms) - 1; i >= 0; i-- {
			result = Seq(r.tbl, r.lower(mm.Ms[i]), result)
		}
		return result
	case *ast.AltMatcher:
		result := Fail()
		for i := len(mm.Ms) - 1; i >= 0; i-- {
			result = Alt(r.tbl, r.lower(mm.Ms[i]), result)
		}
		return result
	case *ast.LookMatcher:
		return Not(r.tbl, Not(r.tbl, r.lower(mm.M)))
	case *ast.NotMatcher:
		return Not(r.tbl, r.lower(mm.M))
	case *ast.CaptMatcher:
		return r.lower(mm.M)
	case *ast.NamedMatcher:
		return r.lower(mm.M)
	case *ast.FailMatcher:
		return Fail()
	case *ast.ActionMatcher:
		return Eps()
	}
	panic("derivs: unknown matcher type")
}

func (r *Recognizer) ranges(rs []ast.CharRange) Expr {
	if len(rs) == 0 {
		return Fail()
	}
	result := Range(rs[len(rs)-1].Lo, rs[len(rs)-1].Hi)
	for i := len(rs) - 2; i >= 0; i-- {
		result = Alt(r.tbl, Range(rs[i].Lo, rs[i].Hi), result)
	}
	return result
}

// many builds a greedy repetition as an anonymous rule R = m R / "".
func (r *Recognizer) many(m ast.Matcher) Expr {
	r.anon++
	anon := newRuleExpr(r.tbl, "*"+strconv.Itoa(r.anon), true)
	anon.body = Alt(r.tbl, Seq(r.tbl, r.lower(m), anon), Eps())
	return anon
}
