package derivs

import (
	"github.com/ava12/dpeg/util/intset"
)

// GenMap is a monotone map from the backtrack generations of a
// subexpression to the generations of its enclosing expression. Keys are
// dense (0..MaxKey), values strictly increase with keys. GenMaps are values;
// AddBack returns a fresh map and never touches the receiver.
type GenMap struct {
	to []int
}

// newGenMap creates a map of the given values keyed 0..len(vals)-1.
func newGenMap(vals ...int) GenMap {
	return GenMap{vals}
}

// At returns the value for key k. Missing keys are programmer errors.
func (m GenMap) At(k int) int {
	if k < 0 || k >= len(m.to) {
		panic("derivs: unmapped generation")
	}
	return m.to[k]
}

// MaxKey returns the largest key, -1 for an empty map.
func (m GenMap) MaxKey() int {
	return len(m.to) - 1
}

// Max returns the largest value. Panics on an empty map.
func (m GenMap) Max() int {
	if len(m.to) == 0 {
		panic("derivs: Max of empty generation map")
	}
	return m.to[len(m.to)-1]
}

// AddBack returns a copy of the map with key k bound to v. k must extend
// the key range by one and v must preserve monotonicity.
func (m GenMap) AddBack(k, v int) GenMap {
	if k != len(m.to) {
		panic("derivs: non-contiguous generation map key")
	}
	if len(m.to) > 0 && v <= m.to[len(m.to)-1] {
		panic("derivs: non-monotone generation map value")
	}
	to := make([]int, k+1)
	copy(to, m.to)
	to[k] = v
	return GenMap{to}
}

// Image returns a new set holding the values of all mapped items of s.
func (m GenMap) Image(s *intset.Set) *intset.Set {
	result := intset.New()
	s.Each(func(g int) {
		result.Add(m.At(g))
	})
	return result
}

func (m GenMap) String() string {
	result := intset.New(m.to...)
	return result.String()
}

// defaultBackMap returns the map for an expression whose generations have
// not been renamed yet: {0:0} without lookahead, {0:0, 1:1} with.
func defaultBackMap(e Expr, didInc *bool) GenMap {
	return newBackMap(e, 0, didInc)
}

// newBackMap returns the map binding an expression's generations into a
// namespace whose maximum is gm, allocating gm+1 for a lookahead generation.
func newBackMap(e Expr, gm int, didInc *bool) GenMap {
	if e.Back().Max() > 0 {
		*didInc = true
		return newGenMap(0, gm+1)
	}
	return newGenMap(0)
}

// updateBackMap extends eg for the derivative de of e: a backtrack
// generation exposed by de but absent from e is bound to gm+1.
func updateBackMap(eg GenMap, e, de Expr, gm int, didInc *bool) GenMap {
	debm := de.Back().Max()
	if debm <= e.Back().Max() || debm <= eg.MaxKey() {
		return eg
	}
	*didInc = true
	return eg.AddBack(debm, gm+1)
}
