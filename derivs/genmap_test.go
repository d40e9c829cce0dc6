package derivs

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ava12/dpeg/util/intset"
)

func TestGenMapLookup(t *testing.T) {
	m := newGenMap(0, 2, 5)
	assert.Equal(t, 0, m.At(0))
	assert.Equal(t, 2, m.At(1))
	assert.Equal(t, 5, m.At(2))
	assert.Equal(t, 2, m.MaxKey())
	assert.Equal(t, 5, m.Max())
	assert.Panics(t, func() { m.At(3) })
	assert.Panics(t, func() { m.At(-1) })
}

func TestGenMapAddBack(t *testing.T) {
	m := newGenMap(0)
	m2 := m.AddBack(1, 3)
	assert.Equal(t, 0, m.MaxKey(), "AddBack must not touch the receiver")
	assert.Equal(t, 1, m2.MaxKey())
	assert.Equal(t, 3, m2.At(1))

	assert.Panics(t, func() { m2.AddBack(3, 9) }, "keys are dense")
	assert.Panics(t, func() { m2.AddBack(2, 2) }, "values are monotone")
}

func TestGenMapImage(t *testing.T) {
	m := newGenMap(0, 3)
	assert.Equal(t, []int{0, 3}, m.Image(intset.New(0, 1)).Slice())
	assert.Equal(t, []int{3}, m.Image(intset.New(1)).Slice())
	assert.True(t, m.Image(intset.New()).Empty())
	assert.Panics(t, func() { m.Image(intset.New(2)) })
}

func TestBackMapHelpers(t *testing.T) {
	didInc := false
	m := defaultBackMap(Char('a'), &didInc)
	assert.False(t, didInc)
	assert.Equal(t, 0, m.MaxKey())

	lookahead := Not(NewTable(), Char('a'))
	m = defaultBackMap(lookahead, &didInc)
	assert.True(t, didInc)
	assert.Equal(t, 1, m.At(1))

	didInc = false
	m = newBackMap(lookahead, 4, &didInc)
	assert.True(t, didInc)
	assert.Equal(t, 5, m.At(1))
}

func TestUpdateBackMap(t *testing.T) {
	tbl := NewTable()
	e := Char('a')            // back {0}
	de := Not(tbl, Char('b')) // back {1}: a fresh lookahead generation

	didInc := false
	m := updateBackMap(newGenMap(0), e, de, 2, &didInc)
	assert.True(t, didInc)
	assert.Equal(t, 3, m.At(1))

	// no new generation, map unchanged
	didInc = false
	m = updateBackMap(newGenMap(0), e, Char('b'), 2, &didInc)
	assert.False(t, didInc)
	assert.Equal(t, 0, m.MaxKey())
}
