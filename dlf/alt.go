package dlf

import (
	"github.com/ava12/dpeg/util/intset"
)

// altNode holds a number of subexpressions parsed concurrently. Outgoing
// arcs are kept in equivalence classes of structurally equal successors.
type altNode struct {
	out []*Arc
}

func (n *altNode) Kind() Kind { return AltKind }

func (n *altNode) D(x byte, in *Arc) bool {
	derived := make([]*Arc, 0, len(n.out))
	for _, a := range n.out {
		b := a.clone() // the node's own arcs stay untouched
		if b.d(x) {
			joined := in.Blocking.clone()
			joined.Join(b.Blocking)
			if joined.Check() == Allowed {
				in.Blocking = joined
				in.Succ = b.Succ
				return true
			}
		}
		if !dead(b.Succ) {
			derived = append(derived, b)
		}
	}

	node := makeAlt(derived)
	if node.Kind() == FailKind {
		return in.fail()
	}
	in.Succ = node
	return false
}

// Alternations are never merged with each other; inserting flattens them
// instead.
func (n *altNode) Hash() uint64    { return hashNode(AltKind) }
func (n *altNode) Equiv(Node) bool { return false }

// makeAlt builds an alternation, flattening nested alternations, dropping
// dead arcs that carry no cuts, and merging arcs with structurally
// equivalent successors. A dead arc with cuts is kept so that deriving the
// alternation fires them. An arc that is an unrestricted match
// short-circuits the whole alternation; a single remaining arc without
// restrictions or cuts is replaced by its successor.
func makeAlt(arcs []*Arc) Node {
	b := &altBuilder{}
	for _, a := range arcs {
		if n := b.insert(a); n != nil {
			return n
		}
	}
	if len(b.out) == 0 {
		return theFail
	}
	if len(b.out) == 1 && b.out[0].Blocking.Set().Empty() && b.out[0].Cuts.Empty() {
		return b.out[0].Succ
	}
	return &altNode{b.out}
}

type altBuilder struct {
	out []*Arc
}

// insert merges one arc; a non-nil result is an unrestricted match
// short-circuiting the alternation.
func (b *altBuilder) insert(a *Arc) Node {
	if a.Blocking.Check() == Forbidden {
		return nil
	}
	if dead(a.Succ) {
		if !a.Cuts.Empty() {
			b.out = append(b.out, a)
		}
		return nil
	}

	if alt, isAlt := a.Succ.(*altNode); isAlt {
		// flatten, pushing the arc's blockers and cuts onto the sub-arcs
		for _, sub := range alt.out {
			s := sub.clone()
			s.Blocking.Join(a.Blocking)
			s.Cuts = intset.Union(s.Cuts, a.Cuts)
			if n := b.insert(s); n != nil {
				return n
			}
		}
		return nil
	}

	if a.Succ.Kind() == MatchKind && a.Blocking.Check() == Allowed {
		a.fireCuts()
		return a.Succ
	}

	for _, e := range b.out {
		if e.Succ.Equiv(a.Succ) {
			mergeArcs(e, a)
			return nil
		}
	}
	b.out = append(b.out, a)
	return nil
}

// mergeArcs merges add into the existing arc ex, whose successors are
// structurally equivalent: the alternation is pushed past the shared
// prefix. Each arc's blockers move onto its copy of the successor's
// outgoing arc, the merged arc keeps their intersection, cuts accumulate.
func mergeArcs(ex, add *Arc) {
	exOut, single := outArc(ex.Succ)
	if !single {
		// terminal successors carry no outgoing arc: the merged arc is
		// passable whenever either original was
		ex.Blocking.Refine(add.Blocking)
		ex.Cuts = intset.Union(ex.Cuts, add.Cuts)
		return
	}
	addOut, _ := outArc(add.Succ)

	exOut = exOut.clone()
	addOut = addOut.clone()
	exOut.Blocking.Join(ex.Blocking)
	addOut.Blocking.Join(add.Blocking)
	ex.Blocking.Refine(add.Blocking)
	ex.Cuts = intset.Union(ex.Cuts, add.Cuts)

	merged := makeAlt([]*Arc{exOut, addOut})
	out := newArc(merged, exOut.mgr, intset.New(), intset.New())
	ex.Succ = withOut(ex.Succ, out)
}

// outArc returns the single outgoing arc of a node, false for terminals
// and alternations.
func outArc(n Node) (*Arc, bool) {
	switch nn := n.(type) {
	case *charNode:
		return nn.out, true
	case *rangeNode:
		return nn.out, true
	case *anyNode:
		return nn.out, true
	case *strNode:
		return nn.out, true
	case *ruleNode:
		return nn.out, true
	}
	return nil, false
}

// withOut rebuilds a single-successor node around another outgoing arc.
func withOut(n Node, out *Arc) Node {
	switch nn := n.(type) {
	case *charNode:
		return &charNode{out, nn.c}
	case *rangeNode:
		return &rangeNode{out, nn.lo, nn.hi}
	case *anyNode:
		return &anyNode{out}
	case *strNode:
		return &strNode{out, nn.s, nn.i}
	case *ruleNode:
		return &ruleNode{out, nn.r, nn.mgr}
	}
	panic("dlf: node has no successor arc")
}
