package hasher

import (
	"encoding/binary"
	"fmt"
	"sync"
)

// Encoder appends a stable byte representation of v to dst and returns the
// extended slice. Equal values must encode to equal bytes.
type Encoder[T any] func(dst []byte, v T) []byte

// Integer is the set of types Int can encode.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

func String(dst []byte, v string) []byte {
	return append(dst, v...)
}

func Bytes(dst []byte, v []byte) []byte {
	return append(dst, v...)
}

// Int encodes v as 8 little-endian bytes regardless of its width, so
// int32(5) and int64(5) share an encoding.
func Int[T Integer](dst []byte, v T) []byte {
	return binary.LittleEndian.AppendUint64(dst, uint64(v))
}

// Stringer encodes the result of v.String().
func Stringer[T fmt.Stringer](dst []byte, v T) []byte {
	return append(dst, v.String()...)
}

// Uint64Encoder is the encoder used when the hashed values are themselves
// digests, e.g. by table hashers.
var Uint64Encoder Encoder[uint64] = Int[uint64]

// initialScratch is large enough for integers and short paths.
const initialScratch = 256

// scratchPool recycles the buffers values are encoded into.
type scratchPool struct {
	sync.Pool
}

func newScratchPool() *scratchPool {
	p := &scratchPool{}
	p.New = func() interface{} {
		b := make([]byte, 0, initialScratch)
		return &b
	}
	return p
}

func (p *scratchPool) get() *[]byte {
	return p.Get().(*[]byte)
}

// put returns bp to the pool, keeping b's backing array if enc grew it.
func (p *scratchPool) put(bp *[]byte, b []byte) {
	*bp = b[:0]
	p.Put(bp)
}
