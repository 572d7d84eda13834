package hasher

import (
	"encoding/binary"
	"hash"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/dchest/siphash"
	"golang.org/x/crypto/blake2b"
)

// KeySize is the size of a SipHash key.
const KeySize = 16

// SipHash is a keyed, deterministic hasher. With a secret key it resists
// hash flooding; with a fixed key it gives digests that are stable across
// process runs.
type SipHash[T any] struct {
	k0, k1 uint64
	enc    Encoder[T]
	pool   *scratchPool
}

func NewSipHash[T any](key [KeySize]byte, enc Encoder[T]) SipHash[T] {
	return SipHash[T]{
		k0:   binary.LittleEndian.Uint64(key[0:8]),
		k1:   binary.LittleEndian.Uint64(key[8:16]),
		enc:  enc,
		pool: newScratchPool(),
	}
}

func (h SipHash[T]) Sum64(v T) uint64 {
	bp := h.pool.get()
	b := h.enc(*bp, v)
	d := siphash.Hash(h.k0, h.k1, b)
	h.pool.put(bp, b)
	return d
}

// XXHash is an unkeyed, deterministic hasher. It is the fastest of the byte
// oriented hashers but offers no protection against crafted inputs.
type XXHash[T any] struct {
	enc  Encoder[T]
	pool *scratchPool
}

func NewXXHash[T any](enc Encoder[T]) XXHash[T] {
	return XXHash[T]{enc, newScratchPool()}
}

func (h XXHash[T]) Sum64(v T) uint64 {
	bp := h.pool.get()
	b := h.enc(*bp, v)
	d := xxhash.Sum64(b)
	h.pool.put(bp, b)
	return d
}

// Blake2b is a keyed cryptographic hasher. The digest is the first 8 bytes
// of the BLAKE2b-256 sum, read as a little-endian integer.
type Blake2b[T any] struct {
	enc     Encoder[T]
	scratch *scratchPool
	hashers *sync.Pool
}

// NewBlake2b creates a Blake2b hasher. The key may be empty and must not be
// longer than 64 bytes.
func NewBlake2b[T any](key []byte, enc Encoder[T]) (Blake2b[T], error) {
	k := append([]byte(nil), key...)
	if _, err := blake2b.New256(k); err != nil {
		return Blake2b[T]{}, err
	}
	hashers := &sync.Pool{
		New: func() interface{} {
			h, _ := blake2b.New256(k) // k is known to be valid
			return h
		},
	}
	return Blake2b[T]{enc, newScratchPool(), hashers}, nil
}

func (h Blake2b[T]) Sum64(v T) uint64 {
	bp := h.scratch.get()
	b := h.enc(*bp, v)
	bh := h.hashers.Get().(hash.Hash)
	bh.Reset()
	bh.Write(b)
	// the sum is appended right after the encoded value
	b = bh.Sum(b)
	d := binary.LittleEndian.Uint64(b[len(b)-blake2b.Size256:])
	h.hashers.Put(bh)
	h.scratch.put(bp, b)
	return d
}
