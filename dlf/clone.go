package dlf

import (
	"github.com/ava12/dpeg/util/intset"
)

// Nonterminal is a named rule of the loaded graph: the first node of its
// substitution, the count of rule-local restriction indices, and cached
// nullability. The substitution is set once during loading.
type Nonterminal struct {
	Name string

	sub       Node
	nRestrict int
	nullable  bool
}

// NewNonterminal creates a nonterminal with a failing substitution.
func NewNonterminal(name string) *Nonterminal {
	return &Nonterminal{Name: name, sub: theFail}
}

// Get returns the first node of the substitution.
func (nt *Nonterminal) Get() Node { return nt.sub }

// NumRestrictions returns the count of restriction indices the
// substitution uses.
func (nt *Nonterminal) NumRestrictions() int { return nt.nRestrict }

// Nullable reports whether the substitution matches the empty string
// unconditionally.
func (nt *Nonterminal) Nullable() bool { return nt.nullable }

// Reset replaces the substitution.
func (nt *Nonterminal) Reset(sub Node, nRestrict int) {
	nt.sub = sub
	nt.nRestrict = nRestrict
}

// cloner copies a nonterminal substitution into a caller's context:
// restriction indices are shifted to a freshly reserved range and end
// nodes are replaced by the caller's continuation arc. Rule references are
// re-emitted without descending into their bodies, which keeps the walk
// bounded for recursive rules. Visited nodes are memoized so shared
// subgraphs stay shared in the clone.
type cloner struct {
	out     *Arc
	mgr     *Mgr
	shift   int
	visited map[Node]Node
}

// cloneBody clones the substitution of nt, ending in the continuation out.
func cloneBody(nt *Nonterminal, out *Arc, mgr *Mgr) Node {
	c := &cloner{
		out:     out,
		mgr:     mgr,
		shift:   mgr.Reserve(nt.nRestrict),
		visited: make(map[Node]Node),
	}
	return c.node(nt.sub)
}

func (c *cloner) shifted(s *intset.Set) *intset.Set {
	result := intset.New()
	s.Each(func(i int) {
		result.Add(i + c.shift)
	})
	return result
}

func (c *cloner) arc(a *Arc) *Arc {
	blocking := c.shifted(a.Blocking.Set())
	cuts := c.shifted(a.Cuts)
	if a.Succ.Kind() == EndKind {
		// splice the caller's continuation
		blocking.AddSet(c.out.Blocking.Set())
		cuts.AddSet(c.out.Cuts)
		return newArc(c.out.Succ, c.mgr, blocking, cuts)
	}
	return newArc(c.node(a.Succ), c.mgr, blocking, cuts)
}

func (c *cloner) node(n Node) Node {
	if cloned, seen := c.visited[n]; seen {
		return cloned
	}

	var result Node
	switch nn := n.(type) {
	case *matchNode, *failNode, *infNode:
		result = n
	case *endNode:
		result = c.out.Succ
	case *charNode:
		result = &charNode{c.arc(nn.out), nn.c}
	case *rangeNode:
		result = &rangeNode{c.arc(nn.out), nn.lo, nn.hi}
	case *anyNode:
		result = &anyNode{c.arc(nn.out)}
	case *strNode:
		result = &strNode{c.arc(nn.out), nn.s, nn.i}
	case *ruleNode:
		result = &ruleNode{c.arc(nn.out), nn.r, c.mgr}
	case *altNode:
		arcs := make([]*Arc, len(nn.out))
		for i, a := range nn.out {
			arcs[i] = c.arc(a)
		}
		result = &altNode{arcs}
	default:
		panic("dlf: unknown node type")
	}

	c.visited[n] = result
	return result
}

// Matchable builds the head arc for matching a rule: the cloned
// substitution continuing into a match node.
func Matchable(nt *Nonterminal, mgr *Mgr) *Arc {
	mgr.MatchReachable = true
	tail := newArc(theMatch, mgr, intset.New(), intset.New())
	return newArc(cloneBody(nt, tail, mgr), mgr, intset.New(), intset.New())
}
