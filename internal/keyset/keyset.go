// Package keyset provides compact string-key sets for the narrowing funnel.
//
// Dump keys have the shape <prefix><digits> ("tt0111161", "nm0000001"), so
// they are stored as numbers in one roaring bitmap per prefix/width
// namespace. Keys that do not fit that shape fall back to a plain map. A set
// with tens of millions of keys therefore costs a few bytes per key instead of
// a Go string header plus map overhead.
//
// A Builder is owned by exactly one stage. Freeze hands the accumulated keys
// to an immutable Set, which is safe for concurrent readers and is what
// downstream stages receive.
package keyset

import (
	"github.com/RoaringBitmap/roaring"

	"moviecatalog/internal/parser/ints"
)

// Builder accumulates keys. It is not safe for concurrent use.
type Builder struct {
	bms   map[string]*roaring.Bitmap
	other map[string]struct{}
	n     int
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		bms:   make(map[string]*roaring.Bitmap),
		other: make(map[string]struct{}),
	}
}

// Add inserts key and reports whether it was not already present.
func (b *Builder) Add(key string) bool {
	if ns, n, ok := ints.ParseID(key); ok {
		bm := b.bms[ns]
		if bm == nil {
			bm = roaring.New()
			b.bms[ns] = bm
		}
		if !bm.CheckedAdd(n) {
			return false
		}
		b.n++
		return true
	}
	if _, dup := b.other[key]; dup {
		return false
	}
	b.other[key] = struct{}{}
	b.n++
	return true
}

// Len returns the number of distinct keys added so far.
func (b *Builder) Len() int { return b.n }

// Merge adds every key of s.
func (b *Builder) Merge(s Set) {
	for ns, bm := range s.bms {
		dst := b.bms[ns]
		if dst == nil {
			dst = roaring.New()
			b.bms[ns] = dst
		}
		dst.Or(bm)
	}
	for k := range s.other {
		b.other[k] = struct{}{}
	}
	b.recount()
}

func (b *Builder) recount() {
	n := len(b.other)
	for _, bm := range b.bms {
		n += int(bm.GetCardinality())
	}
	b.n = n
}

// Freeze returns an immutable snapshot of the builder's keys. The builder is
// reset and must not be reused to mutate the returned Set.
func (b *Builder) Freeze() Set {
	for _, bm := range b.bms {
		bm.RunOptimize()
	}
	s := Set{bms: b.bms, other: b.other, n: b.n}
	b.bms = make(map[string]*roaring.Bitmap)
	b.other = make(map[string]struct{})
	b.n = 0
	return s
}

// Set is an immutable key set. The zero value is an empty set.
type Set struct {
	bms   map[string]*roaring.Bitmap
	other map[string]struct{}
	n     int
}

// Of builds a Set from keys; convenient for tests and small fixed sets.
func Of(keys ...string) Set {
	b := NewBuilder()
	for _, k := range keys {
		b.Add(k)
	}
	return b.Freeze()
}

// Has reports whether key is in the set. Membership is O(1) amortized.
func (s Set) Has(key string) bool {
	return has(s.bms, s.other, key)
}

// Len returns the number of keys.
func (s Set) Len() int { return s.n }

// SubsetOf reports whether every key of s is also in o.
func (s Set) SubsetOf(o Set) bool {
	if s.n > o.n {
		return false
	}
	for ns, bm := range s.bms {
		card := bm.GetCardinality()
		if card == 0 {
			continue
		}
		obm := o.bms[ns]
		if obm == nil || bm.AndCardinality(obm) != card {
			return false
		}
	}
	for k := range s.other {
		if _, ok := o.other[k]; !ok {
			return false
		}
	}
	return true
}

func has(bms map[string]*roaring.Bitmap, other map[string]struct{}, key string) bool {
	if ns, n, ok := ints.ParseID(key); ok {
		bm := bms[ns]
		return bm != nil && bm.Contains(n)
	}
	_, ok := other[key]
	return ok
}
