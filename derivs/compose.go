package derivs

import (
	"github.com/ava12/dpeg/util/intset"
)

// notExpr is a negative lookahead.
type notExpr struct {
	tbl *Table
	e   Expr
}

// Not returns the negative lookahead over e. Simplifies eagerly:
// NOT(FAIL) = LOOK(1), NOT(INF) = INF, NOT(matching) = FAIL.
func Not(t *Table, e Expr) Expr {
	switch e.Kind() {
	case FailKind:
		return Look(1) // match on subexpression failure
	case InfKind:
		return e
	}
	if !e.Match().Empty() {
		return theFail // failure on subexpression success
	}
	return &notExpr{t, e}
}

func (n *notExpr) Kind() Kind         { return NotKind }
func (n *notExpr) Match() *intset.Set { return setEmpty }
func (n *notExpr) Back() *intset.Set  { return setOne }

func (n *notExpr) Deriv(x byte) Expr {
	return n.tbl.memoized(n, x, func(x byte) Expr {
		return Not(n.tbl, n.e.Deriv(x))
	})
}

// mapExpr renames the generations of a collapsed subexpression into the
// namespace of the expression it collapsed from.
type mapExpr struct {
	tbl *Table
	e   Expr
	gm  int
	eg  GenMap

	match, back     *intset.Set
	matchOK, backOK bool
}

// Map wraps e with the generation map eg under maximum generation gm.
// Simplifies eagerly: empty matches collapse to their mapped generation,
// failures propagate, identity maps unwrap.
func Map(t *Table, e Expr, gm int, eg GenMap) Expr {
	switch e.Kind() {
	case EpsKind:
		return Look(eg.At(0))
	case LookKind:
		return Look(eg.At(e.Match().Max()))
	case FailKind, InfKind:
		return e
	}
	if gm == eg.MaxKey() {
		return e
	}
	return &mapExpr{tbl: t, e: e, gm: gm, eg: eg}
}

func (m *mapExpr) Kind() Kind { return MapKind }

func (m *mapExpr) Match() *intset.Set {
	if !m.matchOK {
		m.match = m.eg.Image(m.e.Match())
		m.matchOK = true
	}
	return m.match
}

func (m *mapExpr) Back() *intset.Set {
	if !m.backOK {
		m.back = m.eg.Image(m.e.Back())
		m.backOK = true
	}
	return m.back
}

func (m *mapExpr) Deriv(x byte) Expr {
	return m.tbl.memoized(m, x, m.deriv)
}

func (m *mapExpr) deriv(x byte) Expr {
	de := m.e.Deriv(x)

	switch de.Kind() {
	case EpsKind:
		return Look(m.eg.At(0))
	case LookKind:
		return Look(m.eg.At(de.Match().Max()))
	case FailKind, InfKind:
		return de
	}

	// a lookahead generation absent before the derivative is mapped into
	// the enclosing namespace
	didInc := false
	deg := updateBackMap(m.eg, m.e, de, m.gm, &didInc)
	return &mapExpr{tbl: m.tbl, e: de, gm: gmInc(m.gm, didInc), eg: deg}
}

// altExpr is an ordered choice of two expressions.
type altExpr struct {
	tbl    *Table
	a, b   Expr
	ag, bg GenMap
	gm     int

	match, back     *intset.Set
	matchOK, backOK bool
}

// Alt returns the ordered choice of a and b with default generation maps.
func Alt(t *Table, a, b Expr) Expr {
	switch a.Kind() {
	case FailKind:
		return b // first alternative fails, use second
	case InfKind:
		return a
	}
	// first alternative matches or second fails, use first
	if b.Kind() == FailKind || !a.Match().Empty() {
		return a
	}
	didInc := false
	ag := defaultBackMap(a, &didInc)
	bg := defaultBackMap(b, &didInc)
	return &altExpr{tbl: t, a: a, b: b, ag: ag, bg: bg, gm: gmInc(0, didInc)}
}

// altWith returns the ordered choice of a and b under existing generation
// maps, simplifying like Alt but keeping the maps through Map wrappers.
func altWith(t *Table, a, b Expr, ag, bg GenMap, gm int) Expr {
	switch a.Kind() {
	case FailKind:
		return Map(t, b, gm, bg)
	case InfKind:
		return a
	}
	if b.Kind() == FailKind || !a.Match().Empty() {
		return Map(t, a, gm, ag)
	}
	return &altExpr{tbl: t, a: a, b: b, ag: ag, bg: bg, gm: gm}
}

func (e *altExpr) Kind() Kind { return AltKind }

func (e *altExpr) Match() *intset.Set {
	if !e.matchOK {
		e.match = e.ag.Image(e.a.Match()).AddSet(e.bg.Image(e.b.Match()))
		e.matchOK = true
	}
	return e.match
}

func (e *altExpr) Back() *intset.Set {
	if !e.backOK {
		e.back = e.ag.Image(e.a.Back()).AddSet(e.bg.Image(e.b.Back()))
		e.backOK = true
	}
	return e.back
}

func (e *altExpr) Deriv(x byte) Expr {
	return e.tbl.memoized(e, x, e.deriv)
}

func (e *altExpr) deriv(x byte) Expr {
	gm := e.gm
	didInc := false

	da := e.a.Deriv(x)

	switch da.Kind() {
	case FailKind:
		db := e.b.Deriv(x)
		dbg := updateBackMap(e.bg, e.b, db, gm, &didInc)
		return Map(e.tbl, db, gmInc(gm, didInc), dbg)
	case InfKind:
		return da
	}

	dag := updateBackMap(e.ag, e.a, da, gm, &didInc)

	// first branch committed
	if !da.Match().Empty() {
		return Map(e.tbl, da, gmInc(gm, didInc), dag)
	}

	db := e.b.Deriv(x)
	if db.Kind() == FailKind {
		return Map(e.tbl, da, gmInc(gm, didInc), dag)
	}
	dbg := updateBackMap(e.bg, e.b, db, gm, &didInc)

	return altWith(e.tbl, da, db, dag, dbg, gmInc(gm, didInc))
}
