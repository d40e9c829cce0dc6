// Package derivs implements derivative parsing for parsing expression
// grammars using backtrack generations.
//
// The recognizer keeps a single parsing expression and replaces it with its
// derivative for every input byte: an expression matching exactly the
// suffixes of the strings the previous expression matched with that byte
// prepended. Ordered choice and lookahead are reconciled through backtrack
// generations: small integers naming points the expression may still return
// to, renamed across node boundaries by generation maps.
//
// Expressions are immutable; derivatives build new nodes. Composite nodes
// memoize their derivative in a shared table valid for one input byte, which
// keeps shared subexpressions from being derived twice and breaks left
// recursion: a rule seeds its memo slot with an infinite-loop marker before
// descending into its own body.
package derivs

import (
	"github.com/ava12/dpeg/util/intset"
)

// Kind is the expression node type.
type Kind int

const (
	FailKind Kind = iota
	InfKind
	EpsKind
	LookKind
	CharKind
	RangeKind
	AnyKind
	StrKind
	RuleKind
	NotKind
	MapKind
	AltKind
	SeqKind
)

var kindNames = [...]string{
	"fail", "inf", "eps", "look", "char", "range", "any", "str",
	"rule", "not", "map", "alt", "seq",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Expr is a parsing expression. Expressions are immutable; the sets
// returned by Match and Back must not be modified by callers.
type Expr interface {
	// Kind returns the node type, used by pattern-based simplification.
	Kind() Kind

	// Deriv returns the derivative of the expression with respect to x.
	// x = 0 is the end-of-input sentinel.
	Deriv(x byte) Expr

	// Match returns the set of backtrack generations at which the
	// expression currently matches the empty string. An empty set means
	// no match; generation 0 means an unconditional match.
	Match() *intset.Set

	// Back returns the set of backtrack generations the expression may
	// return to. Never empty.
	Back() *intset.Set
}

// Shared constant sets. Treated as immutable.
var (
	setEmpty = intset.New()
	setZero  = intset.New(0)
	setOne   = intset.New(1)
)

// Table memoizes derivatives of composite expressions. Entries are valid
// for a single input byte; the driver resets the table before every byte.
type Table struct {
	memo    map[Expr]Expr
	loading bool
}

// NewTable creates an empty memoization table.
func NewTable() *Table {
	return &Table{memo: make(map[Expr]Expr)}
}

// nextByte drops the derivatives memoized for the previous input byte.
func (t *Table) nextByte() {
	clear(t.memo)
}

func (t *Table) memoized(self Expr, x byte, deriv func(byte) Expr) Expr {
	dx, found := t.memo[self]
	if found {
		return dx
	}
	dx = deriv(x)
	t.memo[self] = dx
	return dx
}

func gmInc(gm int, didInc bool) int {
	if didInc {
		return gm + 1
	}
	return gm
}
