package derivs

import (
	"github.com/ava12/dpeg/util/intset"
)

// lookNode is the follower of a sequence for one backtrack generation
// exposed by the predecessor.
type lookNode struct {
	g  int    // backtrack generation this follower corresponds to
	e  Expr   // follower expression
	eg GenMap // generations of the follower in the sequence's namespace
	gl int    // generation of the follower's last match, 0 for none
}

// seqExpr is the concatenation of a predecessor with its followers: the
// gen-zero follower b, one follower per lookahead generation exposed by a,
// and the match-fail follower c continuing the parse after an invalidated
// predecessor match.
type seqExpr struct {
	tbl *Table
	a   Expr
	b   Expr
	bs  []lookNode
	c   Expr
	cg  GenMap
	gm  int // maximum backtrack generation

	match, back     *intset.Set
	matchOK, backOK bool
}

// Seq returns the concatenation of a and b.
func Seq(t *Table, a, b Expr) Expr {
	switch b.Kind() {
	case EpsKind:
		return a // empty second element just leaves first
	case FailKind:
		return b
	}

	switch a.Kind() {
	case EpsKind:
		return b // empty first element just leaves follower
	case LookKind:
		// lookahead success leaves the follower if first-generation,
		// otherwise there is no successor for it
		if a.(*lookExpr).g == 1 {
			return b
		}
		return theFail
	case FailKind, InfKind:
		return a
	}

	gm := 0
	ab := a.Back()

	// follower for ordinary progress of a
	var bn Expr = theFail
	if ab.Contains(0) {
		bn = b
		if b.Back().Max() > 0 {
			gm = 1
		}
	}

	// follower for the lookahead generation exposed by a
	var bs []lookNode
	if ab.Max() > 0 {
		gl := 0
		if !b.Match().Empty() {
			gl = 1
			gm = 1
		}
		didInc := false
		bs = []lookNode{{1, b, defaultBackMap(b, &didInc), gl}}
	}

	// a nullable predecessor already matched the empty string here, so the
	// follower doubles as the match-fail fallback from the start
	var c Expr = theFail
	cg := newGenMap(0)
	am := a.Match()
	if !am.Empty() && am.Min() == 0 {
		c = b
		didInc := false
		cg = newBackMap(b, gm, &didInc)
		gm = gmInc(gm, didInc)
	}

	return &seqExpr{tbl: t, a: a, b: bn, bs: bs, c: c, cg: cg, gm: gm}
}

// bMap is the generation map for the gen-zero follower.
func (s *seqExpr) bMap() GenMap {
	if s.b.Kind() != FailKind && s.b.Back().Max() > 0 {
		return newGenMap(0, s.gm)
	}
	return newGenMap(0)
}

func (s *seqExpr) Kind() Kind { return SeqKind }

func (s *seqExpr) Match() *intset.Set {
	if !s.matchOK {
		s.match = s.matchSet()
		s.matchOK = true
	}
	return s.match
}

// matchSet includes matches of the match-fail follower, of the gen-zero
// follower when the predecessor matches unconditionally, and of lookahead
// followers whose generation the predecessor matches at, together with
// their stored last-match generations.
func (s *seqExpr) matchSet() *intset.Set {
	x := s.cg.Image(s.c.Match())

	am := s.a.Match()
	if !am.Empty() && am.Min() == 0 {
		x.AddSet(s.bMap().Image(s.b.Match()))
	}

	for _, bi := range s.bs {
		if !am.Contains(bi.g) {
			continue
		}
		x.AddSet(bi.eg.Image(bi.e.Match()))
		if bi.gl > 0 {
			x.Add(bi.gl)
		}
	}
	return x
}

func (s *seqExpr) Back() *intset.Set {
	if !s.backOK {
		s.back = s.backSet()
		s.backOK = true
	}
	return s.back
}

func (s *seqExpr) backSet() *intset.Set {
	x := intset.New()
	if s.a.Back().Contains(0) {
		x.Add(0)
	}
	x.AddSet(s.cg.Image(s.c.Back()))

	am := s.a.Match()
	if !am.Empty() && am.Min() == 0 {
		x.AddSet(s.bMap().Image(s.b.Back()))
	}

	for _, bi := range s.bs {
		x.AddSet(bi.eg.Image(bi.e.Back()))
		if bi.gl > 0 {
			x.Add(bi.gl)
		}
	}
	return x
}

func (s *seqExpr) Deriv(x byte) Expr {
	return s.tbl.memoized(s, x, s.deriv)
}

func (s *seqExpr) deriv(x byte) Expr {
	t := s.tbl
	gm := s.gm
	didInc := false

	da := s.a.Deriv(x)

	switch da.Kind() {
	case EpsKind:
		// the sequence completed, continue with the follower; at end of
		// input the follower has to complete as well
		db := s.b
		if x == 0 {
			db = s.b.Deriv(0)
		}
		bg := newBackMap(db, gm, &didInc)
		return Map(t, db, gmInc(gm, didInc), bg)

	case LookKind:
		// lookahead success leaves the appropriate lookahead follower
		g := da.Match().Max()
		for _, bi := range s.bs {
			if bi.g < g {
				continue
			}
			if bi.g > g {
				break // generation list is sorted, g is missing
			}

			dbi := bi.e.Deriv(x)
			if dbi.Kind() == FailKind {
				if bi.gl > 0 {
					return Look(bi.gl) // the follower matched in the past
				}
				return theFail
			}

			big := updateBackMap(bi.eg, bi.e, dbi, gm, &didInc)
			ngm := gmInc(gm, didInc)

			// without a last match (or with a fresh one) the follower
			// stands alone, otherwise the last match stays reachable as
			// a fallback
			dm := dbi.Match()
			if bi.gl == 0 || (!dm.Empty() && dm.Min() == 0) {
				return Map(t, dbi, ngm, big)
			}
			return altWith(t, dbi, Look(1), big, newGenMap(0, bi.gl), ngm)
		}
		// end of input is the only case exposing a lookahead success for
		// an unseen generation
		if x == 0 {
			db := s.b.Deriv(0)
			bg := newBackMap(db, gm, &didInc)
			return Map(t, db, gmInc(gm, didInc), bg)
		}
		return theFail

	case FailKind:
		// continue with the match-fail follower
		dc := s.c.Deriv(x)
		dcg := updateBackMap(s.cg, s.c, dc, gm, &didInc)
		return Map(t, dc, gmInc(gm, didInc), dcg)

	case InfKind:
		return da
	}

	// the predecessor advanced

	var dc Expr
	var dcg GenMap
	dam := da.Match()
	if !dam.Empty() && dam.Min() == 0 {
		// new unconditional match: restart the match-fail follower
		dc = s.b
		dcg = newBackMap(s.b, gm, &didInc)
	} else {
		dc = s.c.Deriv(x)
		dcg = updateBackMap(s.cg, s.c, dc, gm, &didInc)
	}

	// advance lookahead followers, dropping generations gone from the
	// predecessor's backtrack set
	gens := da.Back().Slice()
	if len(gens) > 0 && gens[0] == 0 {
		gens = gens[1:]
	}
	dbs := make([]lookNode, 0, len(gens))
	next := 0
	for _, g := range gens {
		for next < len(s.bs) && s.bs[next].g < g {
			next++
		}
		if next >= len(s.bs) {
			// the predecessor exposed a fresh lookahead generation;
			// attach an unconsumed follower
			if s.b.Kind() != FailKind {
				gl := 0
				bm := s.b.Match()
				if !bm.Empty() && bm.Min() == 0 {
					gl = gm + 1
					didInc = true
				}
				dbs = append(dbs, lookNode{g, s.b, newBackMap(s.b, gm, &didInc), gl})
			}
			break
		}

		bi := s.bs[next]
		next++

		dbi := bi.e.Deriv(x)
		gl := bi.gl
		dm := dbi.Match()
		if !dm.Empty() && dm.Min() == 0 {
			gl = gm + 1
			didInc = true
		}
		if dbi.Kind() == FailKind && gl == 0 {
			continue // dead follower without a recorded match
		}
		big := updateBackMap(bi.eg, bi.e, dbi, gm, &didInc)
		dbs = append(dbs, lookNode{bi.g, dbi, big, gl})
	}

	return &seqExpr{tbl: t, a: da, b: s.b, bs: dbs, c: dc, cg: dcg, gm: gmInc(gm, didInc)}
}
