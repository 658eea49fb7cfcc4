package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskAddRemoveHas(t *testing.T) {
	var m Mask
	m.Add(3)
	m.Add(130)

	assert.True(t, m.Has(3))
	assert.True(t, m.Has(130))
	assert.False(t, m.Has(4))
	assert.False(t, m.Has(1000))
	assert.Equal(t, 2, m.Len())

	m.Remove(130)
	m.Remove(9999)
	assert.False(t, m.Has(130))
	assert.Equal(t, []Index{3}, m.Indices())
}

func TestMaskContainsAllIsSubset(t *testing.T) {
	entity := MaskOf(1, 2, 3)

	assert.True(t, entity.ContainsAll(MaskOf(1, 3)))
	assert.True(t, entity.ContainsAll(MaskOf()))
	assert.False(t, entity.ContainsAll(MaskOf(1, 4)))
	assert.False(t, entity.ContainsAll(MaskOf(200)))
	// Order of the set and the set's size relative to the candidate must not matter.
	assert.True(t, MaskOf(3, 2, 1).ContainsAll(MaskOf(2)))
	assert.False(t, MaskOf(2).ContainsAll(MaskOf(1, 2, 3)))
}

func TestMaskContainsAny(t *testing.T) {
	m := MaskOf(5, 70)

	assert.True(t, m.ContainsAny(MaskOf(70, 71)))
	assert.False(t, m.ContainsAny(MaskOf(6, 71)))
	assert.False(t, m.ContainsAny(Mask{}))
	assert.False(t, Mask{}.ContainsAny(m))
}

func TestMaskEqualityIgnoresGrowth(t *testing.T) {
	a := MaskOf(1, 200)
	a.Remove(200)
	b := MaskOf(1)

	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Hash(), b.Hash())
	assert.False(t, a.Equal(MaskOf(2)))
	assert.NotEqual(t, MaskOf(1).Hash(), MaskOf(2).Hash())
	assert.True(t, Mask{}.Equal(MaskOf()))
	assert.False(t, a.IsEmpty())
}

func TestMaskSingle(t *testing.T) {
	idx, ok := MaskOf(67).Single()
	assert.True(t, ok)
	assert.Equal(t, Index(67), idx)

	_, ok = MaskOf(1, 2).Single()
	assert.False(t, ok)
	_, ok = Mask{}.Single()
	assert.False(t, ok)
}

func TestMaskCloneDoesNotAlias(t *testing.T) {
	a := MaskOf(1)
	b := a.Clone()
	a.Add(2)

	assert.False(t, b.Has(2))
	assert.True(t, a.Has(2))
}

func TestMaskUnionAndString(t *testing.T) {
	u := MaskOf(1).Union(MaskOf(65, 1))

	assert.Equal(t, []Index{1, 65}, u.Indices())
	assert.Equal(t, "{1,65}", u.String())
	assert.Equal(t, "{}", Mask{}.String())
}

func TestMaskReset(t *testing.T) {
	m := MaskOf(1, 2, 100)
	m.Reset()

	assert.True(t, m.IsEmpty())
	assert.Equal(t, 0, m.Len())
}
