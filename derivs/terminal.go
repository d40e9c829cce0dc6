package derivs

import (
	"github.com/ava12/dpeg/util/intset"
)

type failExpr struct{}
type infExpr struct{}
type epsExpr struct{}
type anyExpr struct{}

var (
	theFail = &failExpr{}
	theInf  = &infExpr{}
	theEps  = &epsExpr{}
	theAny  = &anyExpr{}
)

// Fail returns the expression matching no string.
func Fail() Expr { return theFail }

// Inf returns the expression marking left-recursive non-termination.
func Inf() Expr { return theInf }

// Eps returns the expression matching only the empty string.
func Eps() Expr { return theEps }

// AnyChar returns the expression matching any single byte.
func AnyChar() Expr { return theAny }

// A failure expression cannot un-fail.
func (e *failExpr) Kind() Kind         { return FailKind }
func (e *failExpr) Deriv(byte) Expr    { return theFail }
func (e *failExpr) Match() *intset.Set { return setEmpty }
func (e *failExpr) Back() *intset.Set  { return setZero }

// An infinite loop never breaks.
func (e *infExpr) Kind() Kind         { return InfKind }
func (e *infExpr) Deriv(byte) Expr    { return theInf }
func (e *infExpr) Match() *intset.Set { return setEmpty }
func (e *infExpr) Back() *intset.Set  { return setZero }

func (e *epsExpr) Kind() Kind { return EpsKind }

func (e *epsExpr) Deriv(x byte) Expr {
	if x == 0 {
		return theEps
	}
	return theFail
}

func (e *epsExpr) Match() *intset.Set { return setZero }
func (e *epsExpr) Back() *intset.Set  { return setZero }

func (e *anyExpr) Kind() Kind { return AnyKind }

func (e *anyExpr) Deriv(x byte) Expr {
	if x == 0 {
		return theFail
	}
	return theEps
}

func (e *anyExpr) Match() *intset.Set { return setEmpty }
func (e *anyExpr) Back() *intset.Set  { return setZero }

// lookExpr is an empty match tagged with a backtrack generation.
type lookExpr struct {
	g    int
	gens *intset.Set
}

// Look returns the empty match at backtrack generation g.
// Generation 0 is the unconditional empty match.
func Look(g int) Expr {
	if g == 0 {
		return theEps
	}
	return &lookExpr{g, intset.New(g)}
}

func (e *lookExpr) Kind() Kind { return LookKind }

func (e *lookExpr) Deriv(x byte) Expr {
	if x == 0 {
		return e
	}
	return theFail
}

func (e *lookExpr) Match() *intset.Set { return e.gens }
func (e *lookExpr) Back() *intset.Set  { return e.gens }

type charExpr struct {
	c byte
}

// Char returns the expression matching one specific byte.
func Char(c byte) Expr { return &charExpr{c} }

func (e *charExpr) Kind() Kind { return CharKind }

func (e *charExpr) Deriv(x byte) Expr {
	if x == e.c {
		return theEps
	}
	return theFail
}

func (e *charExpr) Match() *intset.Set { return setEmpty }
func (e *charExpr) Back() *intset.Set  { return setZero }

type rangeExpr struct {
	lo, hi byte
}

// Range returns the expression matching one byte in [lo, hi].
func Range(lo, hi byte) Expr { return &rangeExpr{lo, hi} }

func (e *rangeExpr) Kind() Kind { return RangeKind }

func (e *rangeExpr) Deriv(x byte) Expr {
	if x >= e.lo && x <= e.hi {
		return theEps
	}
	return theFail
}

func (e *rangeExpr) Match() *intset.Set { return setEmpty }
func (e *rangeExpr) Back() *intset.Set  { return setZero }

// strExpr matches a literal string. The backing string is shared between
// derivatives, only the start index advances.
type strExpr struct {
	s string
	i int
}

// Str returns the expression matching the literal string s.
func Str(s string) Expr {
	switch len(s) {
	case 0:
		return theEps
	case 1:
		return Char(s[0])
	}
	return &strExpr{s, 0}
}

func (e *strExpr) Kind() Kind { return StrKind }

func (e *strExpr) Deriv(x byte) Expr {
	if e.s[e.i] != x {
		return theFail
	}
	if len(e.s)-e.i == 2 {
		return Char(e.s[e.i+1])
	}
	return &strExpr{e.s, e.i + 1}
}

func (e *strExpr) Match() *intset.Set { return setEmpty }
func (e *strExpr) Back() *intset.Set  { return setZero }

func (e *strExpr) str() string { return e.s[e.i:] }
