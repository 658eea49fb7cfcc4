package types

import (
	"reflect"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type position struct{ X, Y float64 }
type velocity struct{ DX, DY float64 }
type marker struct{}

func TestRegisterAssignsSequentialIndices(t *testing.T) {
	r := NewRegistry()

	assert.Equal(t, Index(0), Register[position](r))
	assert.Equal(t, Index(1), Register[velocity](r))
	assert.Equal(t, Index(0), Register[position](r), "second registration must return the same index")
	assert.Equal(t, 2, r.Size())
}

func TestPointerAndValueAreDistinctTypes(t *testing.T) {
	r := NewRegistry()

	a := Register[position](r)
	b := Register[*position](r)

	assert.NotEqual(t, a, b)
}

func TestIndexOfPanicsWhenUnregistered(t *testing.T) {
	r := NewRegistry()
	Register[position](r)

	assert.Panics(t, func() { IndexOf[velocity](r) })

	_, ok := TryIndexOf[velocity](r)
	assert.False(t, ok)

	idx, ok := TryIndexOf[position](r)
	require.True(t, ok)
	assert.Equal(t, Index(0), idx)
}

func TestSealedRegistryRejectsNewTypes(t *testing.T) {
	r := NewRegistry()
	Register[position](r)
	r.Seal()

	assert.True(t, r.Sealed())
	assert.NotPanics(t, func() { Register[position](r) })
	assert.Panics(t, func() { Register[marker](r) })
	assert.Equal(t, Index(0), IndexOf[position](r))
}

func TestRegisterRacingSealNeverGrowsSealedRegistry(t *testing.T) {
	r := NewRegistry()
	var registered atomic.Int32
	var wg sync.WaitGroup

	for n := 1; n <= 32; n++ {
		wg.Add(1)
		go func(typ reflect.Type) {
			defer wg.Done()
			defer func() { _ = recover() }()
			r.RegisterType(typ)
			registered.Add(1)
		}(reflect.ArrayOf(n, reflect.TypeFor[int]()))
	}
	var sizeAtSeal int
	wg.Add(1)
	go func() {
		defer wg.Done()
		r.Seal()
		sizeAtSeal = r.Size()
	}()
	wg.Wait()

	require.True(t, r.Sealed())
	assert.Equal(t, sizeAtSeal, r.Size())
	assert.Equal(t, int(registered.Load()), r.Size())
	assert.Panics(t, func() { Register[marker](r) })
}

func TestTypeAndName(t *testing.T) {
	r := NewRegistry()
	idx := Register[velocity](r)

	typ, ok := r.Type(idx)
	require.True(t, ok)
	assert.Equal(t, reflect.TypeFor[velocity](), typ)
	assert.Equal(t, "types.velocity", r.Name(idx))

	_, ok = r.Type(42)
	assert.False(t, ok)
	assert.Equal(t, "unregistered(42)", r.Name(42))
}

func TestRegisterNilTypePanics(t *testing.T) {
	r := NewRegistry()
	assert.Panics(t, func() { r.RegisterType(nil) })
}
