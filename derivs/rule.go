package derivs

import (
	"github.com/ava12/dpeg/util/intset"
)

// ruleExpr is a reference to a named rule. All references to a rule share
// one node; the body is patched once after every rule has been created,
// permitting forward and cyclic references.
type ruleExpr struct {
	tbl      *Table
	name     string
	body     Expr
	nullable bool // static nullability, used while the body is unset

	match, back     *intset.Set
	matchOK, backOK bool
}

func newRuleExpr(t *Table, name string, nullable bool) *ruleExpr {
	return &ruleExpr{tbl: t, name: name, nullable: nullable}
}

func (r *ruleExpr) Kind() Kind { return RuleKind }

func (r *ruleExpr) Deriv(x byte) Expr {
	if dx, found := r.tbl.memo[r]; found {
		return dx
	}
	// signal an infinite loop if this derivative is re-entered, then
	// overwrite the memo with the real result
	r.tbl.memo[r] = theInf
	dx := r.body.Deriv(x)
	r.tbl.memo[r] = dx
	return dx
}

func (r *ruleExpr) Match() *intset.Set {
	if r.matchOK {
		return r.match
	}
	if r.body == nil || r.tbl.loading {
		// static approximation for rules still being loaded
		if r.nullable {
			return setZero
		}
		return setEmpty
	}
	// stop the computation from recursing infinitely
	r.matchOK = true
	r.match = setEmpty
	r.match = r.body.Match()
	return r.match
}

func (r *ruleExpr) Back() *intset.Set {
	if r.backOK {
		return r.back
	}
	if r.body == nil || r.tbl.loading {
		return setZero
	}
	r.backOK = true
	r.back = setZero
	r.back = r.body.Back()
	return r.back
}
