// Package hasher turns values into 64-bit digests.
//
// A Hasher is a strategy value. Copying a Hasher duplicates it, and a copy
// always produces the same digests as the original. Within one process and
// for one Hasher, equal values always map to equal digests; distinct values
// may collide.
package hasher

import (
	"hash/maphash"
)

type Hasher[T any] interface {
	// Sum64 returns the digest of v. It must not modify v.
	Sum64(v T) uint64
}

// Func adapts an ordinary function into a Hasher.
type Func[T any] func(v T) uint64

func (f Func[T]) Sum64(v T) uint64 {
	return f(v)
}

// Random hashes comparable values with a seed drawn at construction, so
// digests differ across instances and process runs. It is the default
// strategy since an attacker cannot predict which inputs collide.
type Random[T comparable] struct {
	seed maphash.Seed
}

// NewRandom creates a Random hasher with a fresh seed. The zero Random is
// not usable.
func NewRandom[T comparable]() Random[T] {
	return Random[T]{maphash.MakeSeed()}
}

func (h Random[T]) Sum64(v T) uint64 {
	return maphash.Comparable(h.seed, v)
}
