// Package registry implements an open-addressing hash table of 64-bit keys.
//
// The table only stores keys. It does not hash them itself: every operation
// takes the bucket hash function, so the caller decides how keys are spread
// and the same function must be passed for the whole life of a Table.
package registry

import "math/bits"

const (
	// a bucket is full when its control byte has this bit set
	ctrlFull  uint8 = 0x80
	ctrlEmpty uint8 = 0

	minBuckets = 8
	// maximum load factor is maxLoadNum/maxLoadDen
	maxLoadNum = 7
	maxLoadDen = 8
)

// Table is a set of uint64 keys using linear probing. It never removes keys,
// so it needs no tombstones. A Table is not safe for concurrent use.
type Table struct {
	ctrl  []uint8  // ctrlEmpty, or ctrlFull|tag where tag is 7 bits of the key's hash
	keys  []uint64 // keys[i] is meaningful only when ctrl[i] is full
	count int
	limit int // grow before count exceeds limit
	grows int
}

// New creates a table that holds capacity keys without growing. When
// capacity is not positive no storage is allocated until the first insert.
func New(capacity int) *Table {
	t := &Table{}
	if capacity > 0 {
		t.alloc(bucketsFor(capacity))
	}
	return t
}

// bucketsFor returns the smallest power of two number of buckets that keeps
// n keys within the load factor.
func bucketsFor(n int) int {
	need := (n*maxLoadDen + maxLoadNum - 1) / maxLoadNum
	if need < minBuckets {
		return minBuckets
	}
	return 1 << bits.Len(uint(need-1))
}

func (t *Table) alloc(buckets int) {
	t.ctrl = make([]uint8, buckets)
	t.keys = make([]uint64, buckets)
	t.limit = buckets / maxLoadDen * maxLoadNum
}

// Len returns the number of keys in the table.
func (t *Table) Len() int {
	return t.count
}

// Cap returns the number of keys the table holds before it has to grow.
func (t *Table) Cap() int {
	return t.limit
}

// Grows returns how many times the table reallocated its storage since it
// was created.
func (t *Table) Grows() int {
	return t.grows
}

// Equal is integer equality, the natural predicate for digests.
func Equal(a, b uint64) bool {
	return a == b
}

// Entry is the result of probing the table for one key. It is valid until
// the table is next modified.
type Entry struct {
	t     *Table
	key   uint64
	hash  func(uint64) uint64
	eq    func(a, b uint64) bool
	index int
	tag   uint8
	found bool
}

// Entry probes the table for key. hash selects buckets and eq decides
// whether a stored key matches. The returned Entry reports whether key is
// present, and if it is not, remembers the empty bucket where it belongs.
func (t *Table) Entry(key uint64, hash func(uint64) uint64, eq func(a, b uint64) bool) Entry {
	h := hash(key)
	e := Entry{t: t, key: key, hash: hash, eq: eq, tag: tagOf(h), index: -1}
	if len(t.ctrl) == 0 {
		return e
	}
	e.index, e.found = t.probe(key, h, eq)
	return e
}

func tagOf(h uint64) uint8 {
	return ctrlFull | uint8(h>>57)
}

// probe walks from the home bucket of h until it finds key or an empty
// bucket. The load factor guarantees an empty bucket exists.
func (t *Table) probe(key, h uint64, eq func(a, b uint64) bool) (int, bool) {
	mask := uint64(len(t.ctrl) - 1)
	tag := tagOf(h)
	i := h & mask
	for {
		c := t.ctrl[i]
		if c == ctrlEmpty {
			return int(i), false
		}
		if c == tag && eq(t.keys[i], key) {
			return int(i), true
		}
		i = (i + 1) & mask
	}
}

// Occupied reports whether the key was found.
func (e Entry) Occupied() bool {
	return e.found
}

// Insert adds the key if the entry is vacant and reports whether it did.
func (e Entry) Insert() bool {
	if e.found {
		return false
	}
	t := e.t
	if t.count >= t.limit {
		t.grow(e.hash)
		// the old bucket index means nothing in the new storage
		e.index, _ = t.probe(e.key, e.hash(e.key), e.eq)
	}
	t.ctrl[e.index] = e.tag
	t.keys[e.index] = e.key
	t.count += 1
	return true
}

// grow doubles the bucket array, or allocates the first one, and rehashes
// every key into it.
func (t *Table) grow(hash func(uint64) uint64) {
	oldCtrl, oldKeys := t.ctrl, t.keys
	n := minBuckets
	if len(oldCtrl) > 0 {
		n = len(oldCtrl) * 2
	}
	t.alloc(n)
	t.grows += 1
	mask := uint64(n - 1)
	for j, c := range oldCtrl {
		if c == ctrlEmpty {
			continue
		}
		k := oldKeys[j]
		h := hash(k)
		i := h & mask
		for t.ctrl[i] != ctrlEmpty {
			i = (i + 1) & mask
		}
		t.ctrl[i] = tagOf(h)
		t.keys[i] = k
	}
}

// Lookup reports whether key is in the table.
func (t *Table) Lookup(key uint64, hash func(uint64) uint64) bool {
	if t.count == 0 {
		return false
	}
	_, found := t.probe(key, hash(key), Equal)
	return found
}

// InsertIfAbsent adds key unless it is already present, and reports whether
// it was added.
func (t *Table) InsertIfAbsent(key uint64, hash func(uint64) uint64) bool {
	return t.Entry(key, hash, Equal).Insert()
}

// Clone returns an independent copy of the table.
func (t *Table) Clone() *Table {
	c := *t
	c.ctrl = append([]uint8(nil), t.ctrl...)
	c.keys = append([]uint64(nil), t.keys...)
	return &c
}

// AppendKeys appends every key in the table to dst, in bucket order.
func (t *Table) AppendKeys(dst []uint64) []uint64 {
	for i, c := range t.ctrl {
		if c != ctrlEmpty {
			dst = append(dst, t.keys[i])
		}
	}
	return dst
}
