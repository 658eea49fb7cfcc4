package ecs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeusync/zeuecs/internal/core/types"
)

func TestFastEntityFilterScenario(t *testing.T) {
	m := newTestManager(t)
	w := m.Default()
	require.Equal(t, types.Index(3), maskOf[pos2](w).Indices()[0])

	f := w.Filter(types.MaskOf(3))
	a := w.NewFastEntity()
	require.NoError(t, AddFast(w, a, pos2{X: 1}))
	assert.False(t, f.ContainsFast(a), "filters only change at the drain")

	require.NoError(t, m.Tick(context.Background()))
	assert.True(t, f.ContainsFast(a))
	assert.Equal(t, []FastHandle{a}, f.FastEntities())

	require.NoError(t, w.DestroyFastEntity(a))
	require.NoError(t, m.Tick(context.Background()))
	assert.False(t, f.ContainsFast(a))
	assert.Zero(t, f.Len())
	assert.Equal(t, a.Generation+1, w.fast[a.Index].generation)
}

func TestSlotZeroIsReserved(t *testing.T) {
	w := newTestWorld(t)
	assert.False(t, w.IsValid(FastHandle{}))
	assert.True(t, FastHandle{}.IsZero())

	h := w.NewFastEntity()
	assert.NotZero(t, h.Index)
	assert.False(t, h.IsZero())
}

func TestStaleHandleIsRejected(t *testing.T) {
	w := newTestWorld(t)
	h := w.NewFastEntity()
	require.NoError(t, AddFast(w, h, pos2{}))
	require.NoError(t, w.DestroyFastEntity(h))

	assert.False(t, w.IsValid(h))
	assert.ErrorIs(t, AddFast(w, h, vel2{}), ErrStaleHandle)
	assert.ErrorIs(t, RemoveFast[pos2](w, h), ErrStaleHandle)
	assert.ErrorIs(t, w.DestroyFastEntity(h), ErrStaleHandle)
	_, ok := GetFast[pos2](w, h)
	assert.False(t, ok)
	assert.False(t, HasFast[pos2](w, h))
	_, ok = w.FastEntity(h)
	assert.False(t, ok)

	assert.ErrorIs(t, w.DestroyFastEntity(FastHandle{Index: 1 << 20}), ErrStaleHandle)
}

func TestReusedSlotHasGreaterGeneration(t *testing.T) {
	w := newTestWorld(t)
	require.Equal(t, 4, w.FastCapacity())

	a := w.NewFastEntity()
	b := w.NewFastEntity()
	c := w.NewFastEntity()
	assert.Equal(t, []uint32{1, 2, 3}, []uint32{a.Index, b.Index, c.Index})

	require.NoError(t, w.DestroyFastEntity(b))
	d := w.NewFastEntity()

	assert.Equal(t, b.Index, d.Index)
	assert.Greater(t, d.Generation, b.Generation)
	assert.False(t, w.IsValid(b))
	assert.True(t, w.IsValid(d))
	assert.Equal(t, 3, w.FastCount())
}

func TestFreeListIsFIFO(t *testing.T) {
	w := newTestWorld(t)
	a := w.NewFastEntity()
	b := w.NewFastEntity()
	require.NoError(t, w.DestroyFastEntity(a))
	require.NoError(t, w.DestroyFastEntity(b))

	c := w.NewFastEntity()
	assert.Equal(t, uint32(3), c.Index, "never used slot comes before recycled ones")
	d := w.NewFastEntity()
	assert.Equal(t, a.Index, d.Index)
}

func TestGrowthPreservesExistingEntities(t *testing.T) {
	w := newTestWorld(t)
	var handles []FastHandle
	for i := 0; i < 3; i++ {
		h := w.NewFastEntity()
		require.NoError(t, AddFast(w, h, pos2{X: float32(i)}))
		handles = append(handles, h)
	}
	require.NoError(t, w.DestroyFastEntity(handles[1]))
	handles[1] = w.NewFastEntity()
	before := make([]FastEntity, len(handles))
	for i, h := range handles {
		before[i], _ = w.FastEntity(h)
	}

	grown := w.NewFastEntity()
	assert.Equal(t, 8, w.FastCapacity())
	assert.Equal(t, uint32(4), grown.Index)

	for i, h := range handles {
		after, ok := w.FastEntity(h)
		require.True(t, ok)
		assert.Equal(t, before[i].Index(), after.Index())
		assert.Equal(t, before[i].Generation(), after.Generation())
		assert.True(t, before[i].Mask().Equal(after.Mask()))
	}
	p0, ok := GetFast[pos2](w, handles[0])
	require.True(t, ok)
	assert.Equal(t, float32(0), p0.X)
	p2, ok := GetFast[pos2](w, handles[2])
	require.True(t, ok)
	assert.Equal(t, float32(2), p2.X)

	for i := 0; i < w.reg.Size(); i++ {
		if p := w.Provider(types.Index(i)); p != nil {
			assert.Equal(t, w.FastCapacity(), p.Len(), "provider %s", w.reg.Name(types.Index(i)))
		}
	}
}

func TestFastComponentAccess(t *testing.T) {
	w := newTestWorld(t)
	h := w.NewFastEntity()

	require.NoError(t, AddFast(w, h, pos2{X: 1, Y: 2}))
	assert.ErrorIs(t, AddFast(w, h, pos2{}), ErrComponentExists)
	assert.ErrorIs(t, AddFast(w, h, heat{}), ErrProviderMissing)

	p, ok := GetFast[pos2](w, h)
	require.True(t, ok)
	p.X = 10
	again, _ := GetFast[pos2](w, h)
	assert.Equal(t, float32(10), again.X)

	provider, ok := ProviderOf[pos2](w)
	require.True(t, ok)
	assert.Equal(t, pos2{X: 10, Y: 2}, provider.Value(h.Index))

	assert.False(t, HasFast[vel2](w, h))
	assert.NoError(t, RemoveFast[vel2](w, h))
	require.NoError(t, RemoveFast[pos2](w, h))
	assert.False(t, HasFast[pos2](w, h))
	assert.Equal(t, pos2{}, provider.Value(h.Index))
}

func TestRegisterProviderIsIdempotent(t *testing.T) {
	w := newTestWorld(t)
	_, ok := ProviderOf[heat](w)
	assert.False(t, ok)

	p := RegisterProvider[heat](w)
	assert.Same(t, p, RegisterProvider[heat](w))
	assert.Equal(t, w.FastCapacity(), p.Len())

	h := w.NewFastEntity()
	assert.NoError(t, AddFast(w, h, heat{T: 1}))
}
