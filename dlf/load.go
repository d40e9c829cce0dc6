package dlf

import (
	"strconv"

	"github.com/ava12/dpeg/ast"
	"github.com/ava12/dpeg/grammar"
	"github.com/ava12/dpeg/util/intset"
)

// Recognizer holds the node graph loaded from a grammar. Loading happens
// once; every match run clones rule bodies on demand against its own state
// manager.
type Recognizer struct {
	g   *grammar.Grammar
	nts map[string]*Nonterminal
}

// loader builds rule substitutions back to front: next is the node the
// currently built matcher continues into, nextCuts the cuts to place on
// arcs entering it. Restriction indices are rule-local, starting at zero
// for every rule; clones shift them into a reserved range.
type loader struct {
	mgr      *Mgr // template manager, never consulted after loading
	nts      map[string]*Nonterminal
	next     Node
	nextCuts *intset.Set
	ri       int
	anon     int
}

// New loads a grammar into a recognizer.
func New(g *grammar.Grammar) *Recognizer {
	l := &loader{mgr: NewMgr(), nts: make(map[string]*Nonterminal)}
	for _, rule := range g.Rules() {
		l.ri = 0
		l.setNext(theEnd)
		l.build(rule.Body)
		nt := l.nonterminal(rule.Name)
		nt.Reset(l.next, l.ri)
		nt.nullable = rule.Nullable()
	}
	return &Recognizer{g, l.nts}
}

// Nonterminal returns the named nonterminal or nil.
func (r *Recognizer) Nonterminal(name string) *Nonterminal {
	return r.nts[name]
}

func (l *loader) nonterminal(name string) *Nonterminal {
	nt := l.nts[name]
	if nt == nil {
		nt = NewNonterminal(name)
		l.nts[name] = nt
	}
	return nt
}

// out produces an arc to the next node carrying the pending cuts.
func (l *loader) out(blocking *intset.Set) *Arc {
	return newArc(l.next, l.mgr, blocking, l.nextCuts.Copy())
}

func (l *loader) setNext(n Node) {
	l.next = n
	l.nextCuts = intset.New()
}

func (l *loader) setNextCuts(n Node, cuts *intset.Set) {
	l.next = n
	l.nextCuts = cuts
}

// build lowers a matcher in front of the current next node. Captures,
// named messages, and semantic actions are lowered to plain matching.
func (l *loader) build(m ast.Matcher) {
	switch mm := m.(type) {
	case *ast.CharMatcher:
		l.setNext(newCharNode(l.out(intset.New()), mm.C))
	case *ast.StrMatcher:
		if len(mm.S) > 0 {
			l.setNext(newStrNode(l.out(intset.New()), mm.S))
		}
	case *ast.RangeMatcher:
		arcs := make([]*Arc, len(mm.Rs))
		for i, r := range mm.Rs {
			n := newRangeNode(l.out(intset.New()), r.Lo, r.Hi)
			arcs[i] = newArc(n, l.mgr, intset.New(), intset.New())
		}
		l.setNext(makeAlt(arcs))
	case *ast.RefMatcher:
		l.setNext(newRuleNode(l.out(intset.New()), l.nonterminal(mm.Name), l.mgr))
	case *ast.AnyMatcher:
		l.setNext(newAnyNode(l.out(intset.New())))
	case *ast.EmptyMatcher:
		// do nothing; next remains next
	case *ast.ActionMatcher:
		// actions are not realized
	case *ast.SeqMatcher:
		for i := len(mm.Ms) - 1; i >= 0; i-- {
			l.build(mm.Ms[i])
		}
	case *ast.AltMatcher:
		l.buildAlt(mm.Ms)
	case *ast.OptMatcher:
		// m [^i] next | [i] next
		i := l.ri
		l.ri++
		skip := l.out(intset.New(i))
		l.nextCuts.Add(i)
		l.build(mm.M)
		l.setNext(makeAlt([]*Arc{l.out(intset.New()), skip}))
	case *ast.ManyMatcher:
		l.buildMany(mm.M)
	case *ast.SomeMatcher:
		l.buildMany(mm.M)
		l.build(mm.M) // sequence one copy of the rule before
	case *ast.LookMatcher:
		l.buildLook(mm.M)
	case *ast.NotMatcher:
		l.buildNot(mm.M)
	case *ast.CaptMatcher:
		l.build(mm.M)
	case *ast.NamedMatcher:
		l.build(mm.M)
	case *ast.FailMatcher:
		l.setNext(theFail)
	default:
		panic("dlf: unknown matcher type")
	}
}

// buildAlt lowers an ordered choice:
//
//	m0 [^0] next | [0] m1 [^1] next | ... | [0..n-1] mn [^n] next
//
// every branch fires its cut on completion, later branches are blocked by
// the cuts of all earlier ones.
func (l *loader) buildAlt(ms []ast.Matcher) {
	if len(ms) == 0 {
		l.setNext(theFail)
		return
	}

	altNext := l.next
	altCuts := l.nextCuts.Copy()
	blocking := intset.New()

	arcs := make([]*Arc, 0, len(ms))
	for _, mi := range ms {
		i := l.ri
		l.ri++
		l.nextCuts.Add(i)
		l.build(mi)
		arcs = append(arcs, l.out(blocking.Copy()))
		l.setNextCuts(altNext, altCuts.Copy())
		blocking.Add(i)
	}
	l.setNext(makeAlt(arcs))
}

// buildMany lowers a greedy repetition as an anonymous nonterminal
//
//	R = m [^0] R end | [0] end
//
// referenced in place of the repetition.
func (l *loader) buildMany(m ast.Matcher) {
	l.anon++
	R := l.nonterminal("*" + strconv.Itoa(l.anon))
	R.nullable = true
	nt := newRuleNode(l.out(intset.New()), R, l.mgr)

	riBak := l.ri
	l.ri = 1 // index 0 is the repetition cut
	l.setNext(theEnd)
	skip := l.out(intset.New(0))
	l.setNextCuts(newRuleNode(l.outTo(theEnd), R, l.mgr), intset.New(0))
	l.build(m)
	R.Reset(makeAlt([]*Arc{l.out(intset.New()), skip}), l.ri)
	l.ri = riBak

	l.setNext(nt)
}

// outTo produces a cut-free arc to the given node.
func (l *loader) outTo(n Node) *Arc {
	return newArc(n, l.mgr, intset.New(), intset.New())
}

// buildLook lowers a positive lookahead:
//
//	m [^j] fail | [j ^i] fail | [i] next
//
// matching m cuts out the middle branch, freeing next to proceed.
func (l *loader) buildLook(m ast.Matcher) {
	j := l.ri
	i := l.ri + 1
	l.ri += 2

	cont := l.out(intset.New(i))
	l.setNextCuts(theFail, intset.New(i))
	cut := l.out(intset.New(j))
	l.setNextCuts(theFail, intset.New(j))
	l.build(m)
	l.setNext(makeAlt([]*Arc{cont, cut, l.out(intset.New())}))
}

// buildNot lowers a negative lookahead: both paths are matched, the
// continuation dies if the forbidden one completes.
//
//	m [^i] fail | [i] next
func (l *loader) buildNot(m ast.Matcher) {
	i := l.ri
	l.ri++

	cont := l.out(intset.New(i))
	l.setNextCuts(theFail, intset.New(i))
	l.build(m)
	l.setNext(makeAlt([]*Arc{cont, l.out(intset.New())}))
}
