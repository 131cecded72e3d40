package lattice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetUnionJoin(t *testing.T) {
	lat := SetUnion{}

	a := NewSet("x", "y")
	b := NewSet("y", "z")
	joined := lat.Join(a, b)
	assert.ElementsMatch(t, []string{"x", "y", "z"}, joined.Elems())

	// join is idempotent and commutative
	assert.Equal(t, joined.Elems(), lat.Join(joined, joined).Elems())
	assert.Equal(t, lat.Join(a, b).Elems(), lat.Join(b, a).Elems())
}

func TestSetUnionLeq(t *testing.T) {
	lat := SetUnion{}

	assert.True(t, lat.Leq(lat.Bottom(), NewSet("x")))
	assert.True(t, lat.Leq(NewSet("x"), NewSet("x", "y")))
	assert.False(t, lat.Leq(NewSet("x", "y"), NewSet("x")))
	assert.True(t, lat.Leq(NewSet(), lat.Bottom()))
}

func TestSetWithDoesNotMutate(t *testing.T) {
	a := NewSet("x")
	b := a.With("y")
	assert.False(t, a.Has("y"))
	assert.True(t, b.Has("y"))
	assert.True(t, b.Has("x"))
}

func TestVarLatticeProduct(t *testing.T) {
	lat := VarLattice{}

	bot := lat.Bottom()
	assert.Empty(t, bot.Declared)
	assert.Empty(t, bot.Used)

	a := VarState{Declared: NewSet("x"), Used: NewSet()}
	b := VarState{Declared: NewSet(), Used: NewSet("x")}
	j := lat.Join(a, b)
	assert.True(t, j.Declared.Has("x"))
	assert.True(t, j.Used.Has("x"))

	assert.True(t, lat.Leq(a, j))
	assert.True(t, lat.Leq(b, j))
	assert.False(t, lat.Leq(j, a))
}
