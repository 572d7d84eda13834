// Package seenset answers "have I seen this value before" without keeping
// the values.
//
// A Set stores a 64-bit digest of each inserted value instead of the value
// itself, so inserting a borrowed value never copies it:
//
//	seen := seenset.New[string]()
//	for _, path := range walk(root) {
//		if !seen.Insert(path) {
//			continue
//		}
//		// first time we see path
//	}
//
// The price is that two distinct values with the same digest are treated as
// the same value. With a 64-bit digest this becomes likely only after about
// 2^32 distinct values (the birthday bound), so a Set suits deduplication
// heuristics but not callers that need exact membership; those should use a
// map of the values. For small keys such as integers a map is also faster.
package seenset

import (
	"fmt"
	"slices"
	"strings"

	"github.com/yangl1996/seenset/hasher"
	"github.com/yangl1996/seenset/registry"
)

// Set is a set of value digests. V hashes values of type T into digests and
// H spreads digests over the buckets of the underlying table; the two are
// configured independently.
//
// A Set is not safe for concurrent use. Guard it with a mutex, or give each
// goroutine its own Set over a disjoint part of the input.
type Set[T any, V hasher.Hasher[T], H hasher.Hasher[uint64]] struct {
	valueHasher V
	tableHasher H
	bucket      func(uint64) uint64 // tableHasher.Sum64, bound once
	digests     *registry.Table
}

// New creates an empty Set whose hashers are seeded randomly.
func New[T comparable]() *Set[T, hasher.Random[T], hasher.Random[uint64]] {
	return WithCapacity[T](0)
}

// WithCapacity creates an empty Set with randomly seeded hashers that holds
// n values before it has to grow.
func WithCapacity[T comparable](n int) *Set[T, hasher.Random[T], hasher.Random[uint64]] {
	return WithCapacityAndValueHasher[T](n, hasher.NewRandom[T]())
}

// WithCapacityAndValueHasher creates an empty Set that digests values with
// v and seeds its table hasher randomly.
func WithCapacityAndValueHasher[T any, V hasher.Hasher[T]](n int, v V) *Set[T, V, hasher.Random[uint64]] {
	return WithCapacityAndHashers[T](n, v, hasher.NewRandom[uint64]())
}

// WithCapacityAndHashers creates an empty Set with both hashers given
// explicitly. Two Sets built from equal deterministic hashers and fed the
// same operations hold the same digests.
func WithCapacityAndHashers[T any, V hasher.Hasher[T], H hasher.Hasher[uint64]](n int, v V, h H) *Set[T, V, H] {
	s := &Set[T, V, H]{
		valueHasher: v,
		tableHasher: h,
		digests:     registry.New(n),
	}
	s.bucket = s.tableHasher.Sum64
	return s
}

// Insert records value and reports whether its digest was new. A false
// result means value, or a value colliding with it, was inserted before.
func (s *Set[T, V, H]) Insert(value T) bool {
	return s.digests.InsertIfAbsent(s.valueHasher.Sum64(value), s.bucket)
}

// Contains reports whether the digest of value has been inserted. It never
// modifies the Set.
func (s *Set[T, V, H]) Contains(value T) bool {
	return s.digests.Lookup(s.valueHasher.Sum64(value), s.bucket)
}

// Len returns the number of distinct digests in the Set. It never exceeds
// the number of successful inserts.
func (s *Set[T, V, H]) Len() int {
	return s.digests.Len()
}

// Clone returns an independent Set with the same digests and copies of the
// same hashers.
func (s *Set[T, V, H]) Clone() *Set[T, V, H] {
	c := &Set[T, V, H]{
		valueHasher: s.valueHasher,
		tableHasher: s.tableHasher,
		digests:     s.digests.Clone(),
	}
	c.bucket = c.tableHasher.Sum64
	return c
}

// String lists the stored digests in ascending order. Values are never
// stored, so they cannot be shown.
func (s *Set[T, V, H]) String() string {
	d := s.digests.AppendKeys(make([]uint64, 0, s.digests.Len()))
	slices.Sort(d)
	b := &strings.Builder{}
	b.WriteString("Set{digests: [")
	for i, x := range d {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(b, "0x%016x", x)
	}
	b.WriteString("]}")
	return b.String()
}
