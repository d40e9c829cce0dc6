package dlf

import (
	"github.com/cespare/xxhash/v2"
)

func hashNode(k Kind, payload ...byte) uint64 {
	buf := make([]byte, 0, len(payload)+1)
	buf = append(buf, byte(k))
	buf = append(buf, payload...)
	return xxhash.Sum64(buf)
}

// matchNode terminates a successfully recognized start rule.
type matchNode struct{}

// failNode rejects every suffix.
type failNode struct{}

// infNode marks left-recursive non-termination.
type infNode struct{}

// endNode terminates a rule body; replaced by the caller's continuation
// when the body is cloned.
type endNode struct{}

var (
	theMatch = &matchNode{}
	theFail  = &failNode{}
	theInf   = &infNode{}
	theEnd   = &endNode{}
)

// MatchNode returns the match node.
func MatchNode() Node { return theMatch }

// FailNode returns the failure node.
func FailNode() Node { return theFail }

// InfNode returns the infinite-loop node.
func InfNode() Node { return theInf }

// EndNode returns the end-of-rule placeholder.
func EndNode() Node { return theEnd }

func (n *matchNode) Kind() Kind { return MatchKind }

// A match consumes nothing: any further input byte kills this path; the
// end-of-input sentinel completes the parse if no restriction blocks it.
func (n *matchNode) D(x byte, in *Arc) bool {
	if x != 0 {
		return in.fail()
	}
	return in.Blocking.Check() == Allowed
}

func (n *matchNode) Hash() uint64      { return hashNode(MatchKind) }
func (n *matchNode) Equiv(o Node) bool { return o.Kind() == MatchKind }

func (n *failNode) Kind() Kind        { return FailKind }
func (n *failNode) D(byte, *Arc) bool { return false }
func (n *failNode) Hash() uint64      { return hashNode(FailKind) }
func (n *failNode) Equiv(o Node) bool { return o.Kind() == FailKind }

func (n *infNode) Kind() Kind        { return InfKind }
func (n *infNode) D(byte, *Arc) bool { return false }
func (n *infNode) Hash() uint64      { return hashNode(InfKind) }
func (n *infNode) Equiv(o Node) bool { return o.Kind() == InfKind }

func (n *endNode) Kind() Kind { return EndKind }

// End nodes exist only in rule templates and are spliced out on clone.
func (n *endNode) D(byte, *Arc) bool {
	panic("dlf: derivative of an end node")
}

func (n *endNode) Hash() uint64      { return hashNode(EndKind) }
func (n *endNode) Equiv(o Node) bool { return o.Kind() == EndKind }

// charNode matches one specific byte.
type charNode struct {
	out *Arc
	c   byte
}

func newCharNode(out *Arc, c byte) Node { return &charNode{out, c} }

func (n *charNode) Kind() Kind { return CharKind }

func (n *charNode) D(x byte, in *Arc) bool {
	if x == n.c {
		return in.join(n.out)
	}
	return in.fail()
}

func (n *charNode) Hash() uint64 { return hashNode(CharKind, n.c) }

func (n *charNode) Equiv(o Node) bool {
	oc, ok := o.(*charNode)
	return ok && oc.c == n.c
}

// rangeNode matches one byte in [lo, hi].
type rangeNode struct {
	out    *Arc
	lo, hi byte
}

func newRangeNode(out *Arc, lo, hi byte) Node { return &rangeNode{out, lo, hi} }

func (n *rangeNode) Kind() Kind { return RangeKind }

func (n *rangeNode) D(x byte, in *Arc) bool {
	if x >= n.lo && x <= n.hi {
		return in.join(n.out)
	}
	return in.fail()
}

func (n *rangeNode) Hash() uint64 { return hashNode(RangeKind, n.lo, n.hi) }

func (n *rangeNode) Equiv(o Node) bool {
	or, ok := o.(*rangeNode)
	return ok && or.lo == n.lo && or.hi == n.hi
}

// anyNode matches any single byte but not end of input.
type anyNode struct {
	out *Arc
}

func newAnyNode(out *Arc) Node { return &anyNode{out} }

func (n *anyNode) Kind() Kind { return AnyKind }

func (n *anyNode) D(x byte, in *Arc) bool {
	if x == 0 {
		return in.fail()
	}
	return in.join(n.out)
}

func (n *anyNode) Hash() uint64      { return hashNode(AnyKind) }
func (n *anyNode) Equiv(o Node) bool { return o.Kind() == AnyKind }

// strNode matches a literal string. The backing string is shared between
// derivatives, only the index advances.
type strNode struct {
	out *Arc
	s   string
	i   int
}

// newStrNode builds a matcher for s: a char node for a single byte, the
// out successor for an empty string.
func newStrNode(out *Arc, s string) Node {
	switch len(s) {
	case 0:
		return out.Succ
	case 1:
		return newCharNode(out, s[0])
	}
	return &strNode{out, s, 0}
}

func (n *strNode) Kind() Kind { return StrKind }

func (n *strNode) D(x byte, in *Arc) bool {
	if n.s[n.i] != x {
		return in.fail()
	}
	if len(n.s)-n.i == 2 {
		in.Succ = newCharNode(n.out, n.s[n.i+1])
	} else {
		in.Succ = &strNode{n.out, n.s, n.i + 1}
	}
	return false
}

func (n *strNode) str() string { return n.s[n.i:] }

func (n *strNode) Hash() uint64 { return hashNode(StrKind, []byte(n.str())...) }

func (n *strNode) Equiv(o Node) bool {
	os, ok := o.(*strNode)
	return ok && os.str() == n.str()
}

// ruleNode references a nonterminal; the body is cloned into the caller's
// context when the parse head reaches the reference.
type ruleNode struct {
	out *Arc
	r   *Nonterminal
	mgr *Mgr
}

func newRuleNode(out *Arc, r *Nonterminal, mgr *Mgr) Node {
	return &ruleNode{out, r, mgr}
}

func (n *ruleNode) Kind() Kind { return RuleKind }

func (n *ruleNode) D(x byte, in *Arc) bool {
	if n.mgr.IsDirty(n.r.Name) {
		// re-entered while deriving the same rule: left recursion
		in.Succ = theInf
		return false
	}
	n.mgr.SetDirty(n.r.Name)
	in.Succ = cloneBody(n.r, n.out, n.mgr)
	ok := in.Succ.D(x, in)
	n.mgr.UnsetDirty(n.r.Name)
	return ok
}

func (n *ruleNode) Hash() uint64 { return hashNode(RuleKind, []byte(n.r.Name)...) }

func (n *ruleNode) Equiv(o Node) bool {
	or, ok := o.(*ruleNode)
	return ok && or.r == n.r
}
