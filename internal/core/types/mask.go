package types

import (
	"encoding/binary"
	"math/bits"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

const bitsPerWord = 64

// Mask is a set of component type indices backed by a growable bitset.
// The zero value is an empty mask ready for use.
//
// Mask values share their backing words, use Clone before keeping a mask
// that is still being mutated elsewhere.
type Mask struct {
	words []uint64
}

// MaskOf builds a mask holding every given index.
func MaskOf(indices ...Index) Mask {
	var m Mask
	for _, i := range indices {
		m.Add(i)
	}
	return m
}

// MaskFor builds a single-component mask for the registered type T.
// It panics if T is not registered.
func MaskFor[T any](r *Registry) Mask {
	return MaskOf(IndexOf[T](r))
}

// Add sets the bit for index i.
func (m *Mask) Add(i Index) {
	word := int(i) / bitsPerWord
	if word >= len(m.words) {
		grown := make([]uint64, word+1)
		copy(grown, m.words)
		m.words = grown
	}
	m.words[word] |= 1 << (uint(i) % bitsPerWord)
}

// Remove clears the bit for index i.
func (m *Mask) Remove(i Index) {
	word := int(i) / bitsPerWord
	if word >= len(m.words) {
		return
	}
	m.words[word] &^= 1 << (uint(i) % bitsPerWord)
}

// Reset clears every bit while keeping the allocated words.
func (m *Mask) Reset() {
	clear(m.words)
}

// Has reports whether index i is in the mask.
func (m Mask) Has(i Index) bool {
	word := int(i) / bitsPerWord
	if word >= len(m.words) {
		return false
	}
	return m.words[word]&(1<<(uint(i)%bitsPerWord)) != 0
}

// ContainsAll reports whether every index of sub is present in m.
// An empty sub is contained by every mask.
func (m Mask) ContainsAll(sub Mask) bool {
	for w, bitsSub := range sub.words {
		if bitsSub == 0 {
			continue
		}
		if w >= len(m.words) || m.words[w]&bitsSub != bitsSub {
			return false
		}
	}
	return true
}

// ContainsAny reports whether m and other share at least one index.
func (m Mask) ContainsAny(other Mask) bool {
	n := min(len(m.words), len(other.words))
	for w := 0; w < n; w++ {
		if m.words[w]&other.words[w] != 0 {
			return true
		}
	}
	return false
}

// Equal reports whether both masks hold the same index set.
func (m Mask) Equal(other Mask) bool {
	a, b := m.trimmed(), other.trimmed()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// IsEmpty reports whether no index is set.
func (m Mask) IsEmpty() bool {
	return len(m.trimmed()) == 0
}

// Len returns the number of indices in the mask.
func (m Mask) Len() int {
	n := 0
	for _, w := range m.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// Single returns the only index of a single-component mask.
func (m Mask) Single() (Index, bool) {
	if m.Len() != 1 {
		return 0, false
	}
	for w, word := range m.words {
		if word != 0 {
			return Index(w*bitsPerWord + bits.TrailingZeros64(word)), true
		}
	}
	return 0, false
}

// Clone returns a mask that does not share storage with m.
func (m Mask) Clone() Mask {
	t := m.trimmed()
	if len(t) == 0 {
		return Mask{}
	}
	words := make([]uint64, len(t))
	copy(words, t)
	return Mask{words: words}
}

// Union returns a new mask holding the indices of both masks.
func (m Mask) Union(other Mask) Mask {
	n := max(len(m.words), len(other.words))
	words := make([]uint64, n)
	copy(words, m.words)
	for i, w := range other.words {
		words[i] |= w
	}
	return Mask{words: words}
}

// ForEach calls fn for every index in ascending order.
func (m Mask) ForEach(fn func(Index)) {
	for w, word := range m.words {
		for word != 0 {
			bit := bits.TrailingZeros64(word)
			fn(Index(w*bitsPerWord + bit))
			word &^= 1 << bit
		}
	}
}

// Indices returns the indices of m in ascending order.
func (m Mask) Indices() []Index {
	out := make([]Index, 0, m.Len())
	m.ForEach(func(i Index) { out = append(out, i) })
	return out
}

// Hash returns a stable hash of the index set. Equal masks hash equally.
func (m Mask) Hash() uint64 {
	t := m.trimmed()
	buf := make([]byte, 8*len(t))
	for i, w := range t {
		binary.LittleEndian.PutUint64(buf[i*8:], w)
	}
	return xxhash.Sum64(buf)
}

func (m Mask) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	first := true
	m.ForEach(func(i Index) {
		if !first {
			sb.WriteByte(',')
		}
		first = false
		sb.WriteString(strconv.Itoa(int(i)))
	})
	sb.WriteByte('}')
	return sb.String()
}

// trimmed drops trailing zero words so that equality and hashing ignore
// how far a mask has grown.
func (m Mask) trimmed() []uint64 {
	n := len(m.words)
	for n > 0 && m.words[n-1] == 0 {
		n--
	}
	return m.words[:n]
}
