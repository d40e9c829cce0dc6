// Package dlf implements derivative parsing for parsing expression
// grammars by dynamic left-factoring.
//
// A grammar is loaded once into a shared directed graph of nodes joined by
// arcs; ordered choice and lookahead are encoded as cut restrictions on
// those arcs instead of backtrack generations: an arc may carry cuts that
// fire when it is traversed and may be blocked by cuts of earlier
// alternatives. The live state of a parse is a single head arc, advanced by
// one derivative per input byte; rule bodies are cloned lazily into the
// caller's context when the head reaches them, with restriction indices
// shifted to a fresh range.
//
// Alternation nodes keep their outgoing arcs in equivalence classes of
// structurally equal successors: inserting an arc whose successor matches
// an existing one merges the two, pushing the alternation past the shared
// prefix.
package dlf

import (
	"github.com/ava12/dpeg/util/intset"
)

// Kind is the node type.
type Kind int

const (
	MatchKind Kind = iota
	FailKind
	InfKind
	EndKind
	CharKind
	RangeKind
	AnyKind
	StrKind
	RuleKind
	AltKind
)

var kindNames = [...]string{
	"match", "fail", "inf", "end", "char", "range", "any", "str", "rule", "alt",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Node is an expression node of the parse graph. Nodes are shared between
// arcs and never mutated by derivatives; all mutation happens on the
// incoming arc.
type Node interface {
	Kind() Kind

	// D computes the derivative with respect to x of the expression headed
	// by this node and repoints the incoming arc to the result.
	// Returns true when the incoming arc ends at an unrestricted match:
	// a consuming node whose continuation is the match node, or a match
	// node deriving the end-of-input sentinel x = 0.
	D(x byte, in *Arc) bool

	// Hash is a structural hash of the node ignoring its successors.
	Hash() uint64

	// Equiv is structural equality ignoring successors.
	Equiv(o Node) bool
}

// Arc is a directed edge of the parse graph: a successor node, a set of
// blocking restrictions, and a set of cuts fired on traversal.
type Arc struct {
	Succ     Node
	Blocking *Restrict
	Cuts     *intset.Set

	mgr *Mgr
}

func newArc(succ Node, mgr *Mgr, blocking, cuts *intset.Set) *Arc {
	return &Arc{Succ: succ, Blocking: newRestrict(mgr, blocking), Cuts: cuts, mgr: mgr}
}

func (a *Arc) clone() *Arc {
	return &Arc{Succ: a.Succ, Blocking: a.Blocking.clone(), Cuts: a.Cuts.Copy(), mgr: a.mgr}
}

// tryFollow fires the arc's cuts and reports whether the arc is passable.
// A blocked arc is repointed to failure.
func (a *Arc) tryFollow() bool {
	if a.Blocking.Check() == Forbidden {
		a.Succ = FailNode()
		return false
	}
	a.fireCuts()
	return true
}

func (a *Arc) fireCuts() {
	if a.Cuts.Empty() {
		return
	}
	blocking := a.Blocking.Set()
	a.Cuts.Each(func(i int) {
		a.mgr.EnforceUnless(i, blocking)
	})
}

// join traverses the outgoing arc out: the arc adopts out's successor and
// blockers and fires out's cuts. Returns true when the arc now is an
// unrestricted match.
func (a *Arc) join(out *Arc) bool {
	a.Blocking.Join(out.Blocking)
	a.Succ = out.Succ
	blocking := a.Blocking.Set()
	out.Cuts.Each(func(i int) {
		a.mgr.EnforceUnless(i, blocking)
	})
	return a.Succ.Kind() == MatchKind && a.Blocking.Check() == Allowed
}

// fail repoints the arc to failure.
func (a *Arc) fail() bool {
	a.Succ = FailNode()
	return false
}

// d follows the arc and derives its successor.
func (a *Arc) d(x byte) bool {
	if !a.tryFollow() {
		return false
	}
	return a.Succ.D(x, a)
}

func dead(n Node) bool {
	k := n.Kind()
	return k == FailKind || k == InfKind
}
