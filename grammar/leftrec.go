package grammar

import (
	"github.com/ava12/dpeg/ast"
)

// rewriteLeftRecursion replaces direct left recursion with right recursion:
//
//	R = R a1 / .. / R ak / b1 / .. / bm
//
// becomes
//
//	R = (b1 / .. / bm) R'
//	R' = a1 R' / .. / ak R' / ""
//
// which recognizes the same language with the same ordered-choice
// commitment. A bare self-reference alternative (R = R / b) is dropped: it
// can never consume anything its own expansion would not. Rules whose every
// alternative is left-recursive cannot make progress and are replaced with
// failure. Indirect left recursion is left to the engines' dynamic guard,
// which reports it as non-termination.
func rewriteLeftRecursion(rules []*Rule, index map[string]*Rule) []*Rule {
	result := make([]*Rule, 0, len(rules))
	for _, r := range rules {
		tail := rewriteRule(r, index)
		result = append(result, r)
		if tail != nil {
			result = append(result, tail)
		}
	}
	return result
}

func rewriteRule(r *Rule, index map[string]*Rule) *Rule {
	alts := flattenAlts(r.Body, nil)
	recs := make([][]ast.Matcher, 0) // the a-parts of left-recursive alternatives
	bases := make([]ast.Matcher, 0)
	recursive := false

	for _, alt := range alts {
		head, rest := splitHead(alt)
		ref, isRef := head.(*ast.RefMatcher)
		if !isRef || ref.Name != r.Name {
			bases = append(bases, alt)
			continue
		}
		recursive = true
		if len(rest) > 0 {
			recs = append(recs, rest)
		}
	}

	if !recursive {
		return nil
	}
	if len(bases) == 0 {
		r.Body = ast.Fail("unproductive left recursion in " + r.Name)
		return nil
	}
	if len(recs) == 0 {
		r.Body = altOf(bases)
		return nil
	}

	name := freshName(r.Name, index)
	tailAlts := make([]ast.Matcher, 0, len(recs)+1)
	for _, rest := range recs {
		tailAlts = append(tailAlts, ast.Seq(append(rest, ast.Ref(name))...))
	}
	tailAlts = append(tailAlts, ast.Empty())
	tail := &Rule{Name: name, Body: altOf(tailAlts), synthetic: true}
	index[name] = tail

	r.Body = ast.Seq(altOf(bases), ast.Ref(name))
	return tail
}

// flattenAlts collects the alternatives of a (possibly nested) ordered
// choice in order.
func flattenAlts(m ast.Matcher, acc []ast.Matcher) []ast.Matcher {
	if alt, ok := m.(*ast.AltMatcher); ok {
		for _, sub := range alt.Ms {
			acc = flattenAlts(sub, acc)
		}
		return acc
	}
	return append(acc, m)
}

// splitHead returns the first consuming element of an alternative and the
// remaining elements. Capture and name wrappers and leading empty matchers
// are looked through, nested sequences are flattened.
func splitHead(m ast.Matcher) (ast.Matcher, []ast.Matcher) {
	items := flattenSeq(m, nil)
	for i, item := range items {
		switch item.(type) {
		case *ast.EmptyMatcher, *ast.ActionMatcher:
			continue
		default:
			return item, items[i+1:]
		}
	}
	return ast.Empty(), nil
}

func flattenSeq(m ast.Matcher, acc []ast.Matcher) []ast.Matcher {
	switch mm := m.(type) {
	case *ast.SeqMatcher:
		for _, sub := range mm.Ms {
			acc = flattenSeq(sub, acc)
		}
		return acc
	case *ast.CaptMatcher:
		return flattenSeq(mm.M, acc)
	case *ast.NamedMatcher:
		return flattenSeq(mm.M, acc)
	}
	return append(acc, m)
}

func altOf(ms []ast.Matcher) ast.Matcher {
	if len(ms) == 1 {
		return ms[0]
	}
	return ast.Alt(ms...)
}

func freshName(base string, index map[string]*Rule) string {
	name := base + "#tail"
	for index[name] != nil {
		name += "'"
	}
	return name
}
