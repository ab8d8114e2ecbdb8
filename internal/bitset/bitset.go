// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package bitset provides a compact set of small non-negative integers.
//
// It is used wherever a subset of a dense, integer-indexed array has to be
// tracked cheaply: which activities are in view, which track points survive
// decimation at a zoom level, which segments intersect the viewport.
package bitset

import (
	"iter"
	"math/bits"
)

// BitSet is a set of integers in [0, Cap()).
//
// The bitmap uses one bit per member, packed into uint64 words (64 members
// per word). Bit index i lives in word i/64 at position i%64.
//
// A BitSet is not safe for concurrent mutation.
type BitSet struct {
	words []uint64
	n     int
}

// New creates an empty set able to hold members in [0, capacity).
// A negative capacity is treated as zero.
func New(capacity int) *BitSet {
	if capacity < 0 {
		capacity = 0
	}
	return &BitSet{
		words: make([]uint64, wordsFor(capacity)),
		n:     capacity,
	}
}

func wordsFor(n int) int {
	return (n + 63) / 64 // Ceiling division
}

// Cap returns the capacity: members must be below this value.
func (b *BitSet) Cap() int {
	return b.n
}

// Add inserts i. Does nothing if i is outside [0, Cap()).
func (b *BitSet) Add(i int) {
	if i < 0 || i >= b.n {
		return
	}
	b.words[i>>6] |= 1 << (i & 63)
}

// Remove deletes i. Does nothing if i is not a member.
func (b *BitSet) Remove(i int) {
	if i < 0 || i >= b.n {
		return
	}
	b.words[i>>6] &^= 1 << (i & 63)
}

// Has reports whether i is a member.
func (b *BitSet) Has(i int) bool {
	if i < 0 || i >= b.n {
		return false
	}
	return b.words[i>>6]&(1<<(i&63)) != 0
}

// Clear removes all members. Capacity is unchanged.
func (b *BitSet) Clear() {
	clear(b.words)
}

// IsEmpty returns true if the set has no members.
func (b *BitSet) IsEmpty() bool {
	for _, w := range b.words {
		if w != 0 {
			return false
		}
	}
	return true
}

// Count returns the number of members.
func (b *BitSet) Count() int {
	count := 0
	for _, w := range b.words {
		count += bits.OnesCount64(w)
	}
	return count
}

// Resize changes the capacity to n, keeping every member below n.
// Storage is reused when it is large enough.
func (b *BitSet) Resize(n int) {
	if n < 0 {
		n = 0
	}
	need := wordsFor(n)
	if need > cap(b.words) {
		words := make([]uint64, need)
		copy(words, b.words)
		b.words = words
	} else {
		old := len(b.words)
		b.words = b.words[:need]
		if need > old {
			clear(b.words[old:])
		}
	}
	b.n = n

	// Drop members at or beyond n in the last partial word.
	if rem := n & 63; rem != 0 {
		b.words[need-1] &= (uint64(1) << rem) - 1
	}
}

// Next returns the smallest member >= i.
// The boolean is false if there is none.
func (b *BitSet) Next(i int) (int, bool) {
	if i < 0 {
		i = 0
	}
	if i >= b.n {
		return 0, false
	}
	wi := i >> 6
	w := b.words[wi] >> (i & 63)
	if w != 0 {
		return i + bits.TrailingZeros64(w), true
	}
	for wi++; wi < len(b.words); wi++ {
		if b.words[wi] != 0 {
			return wi<<6 + bits.TrailingZeros64(b.words[wi]), true
		}
	}
	return 0, false
}

// All returns an iterator over members in ascending order.
// Members removed while iterating are not visited if they have not been
// reached yet.
func (b *BitSet) All() iter.Seq[int] {
	return func(yield func(int) bool) {
		b.each(yield)
	}
}

// ForEach calls fn for each member in ascending order.
//
// fn may remove members, including the one being visited. Removed members
// that have not been visited yet are skipped, and no member is visited
// twice.
func (b *BitSet) ForEach(fn func(i int)) {
	if fn == nil {
		return
	}
	b.each(func(i int) bool {
		fn(i)
		return true
	})
}

func (b *BitSet) each(yield func(int) bool) {
	for wi := 0; wi < len(b.words); wi++ {
		// Snapshot the word; consult the live word before each visit so
		// removals made by the callback are honored.
		word := b.words[wi]
		for word != 0 {
			bitIdx := bits.TrailingZeros64(word)
			word &^= 1 << bitIdx
			if wi >= len(b.words) || b.words[wi]&(1<<bitIdx) == 0 {
				continue
			}
			if !yield(wi<<6 + bitIdx) {
				return
			}
		}
	}
}
