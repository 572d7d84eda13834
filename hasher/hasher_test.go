package hasher

import (
	"encoding/binary"
	"strings"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/dchest/siphash"
	"golang.org/x/crypto/blake2b"
)

var testKey = [KeySize]byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f}

// TestRandomEqualValues tests that a Random hasher is a function of its
// input.
func TestRandomEqualValues(t *testing.T) {
	h := NewRandom[string]()
	a := strings.Repeat("ab", 100)
	b := "a" + strings.Repeat("ba", 99) + "b"
	if h.Sum64(a) != h.Sum64(b) {
		t.Error("equal strings hashed to different digests")
	}
	c := h
	if c.Sum64(a) != h.Sum64(a) {
		t.Error("copied hasher produced a different digest")
	}
}

// TestRandomSeeds tests that two Random hashers are seeded independently.
func TestRandomSeeds(t *testing.T) {
	h1 := NewRandom[uint64]()
	h2 := NewRandom[uint64]()
	same := 0
	for i := uint64(0); i < 64; i++ {
		if h1.Sum64(i) == h2.Sum64(i) {
			same += 1
		}
	}
	if same == 64 {
		t.Error("two Random hashers produced identical digests")
	}
}

func TestFunc(t *testing.T) {
	var h Hasher[int] = Func[int](func(v int) uint64 { return uint64(v) * 3 })
	if h.Sum64(7) != 21 {
		t.Error("Func did not call the wrapped function")
	}
}

// TestSipHash tests that SipHash matches the reference siphash on the
// encoded bytes.
func TestSipHash(t *testing.T) {
	h := NewSipHash[string](testKey, String)
	k0 := binary.LittleEndian.Uint64(testKey[0:8])
	k1 := binary.LittleEndian.Uint64(testKey[8:16])
	for _, s := range []string{"", "a", "/usr/lib/libc.so", strings.Repeat("x", 4*initialScratch)} {
		if h.Sum64(s) != siphash.Hash(k0, k1, []byte(s)) {
			t.Errorf("incorrect siphash digest for %q", s)
		}
	}
	other := testKey
	other[0] ^= 0xff
	if NewSipHash[string](other, String).Sum64("a") == h.Sum64("a") {
		t.Error("different keys produced the same digest")
	}
}

func TestXXHash(t *testing.T) {
	h := NewXXHash[uint64](Uint64Encoder)
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, 12345)
	if h.Sum64(12345) != xxhash.Sum64(b) {
		t.Error("incorrect xxhash digest")
	}
}

func TestBlake2b(t *testing.T) {
	key := []byte{1, 2, 3}
	h, err := NewBlake2b[[]byte](key, Bytes)
	if err != nil {
		t.Fatal(err)
	}
	data := []byte("hello, world")
	ref, _ := blake2b.New256(key)
	ref.Write(data)
	sum := ref.Sum(nil)
	if h.Sum64(data) != binary.LittleEndian.Uint64(sum[0:8]) {
		t.Error("incorrect blake2b digest")
	}
	// the hasher must not be disturbed by reuse
	if h.Sum64(data) != h.Sum64(data) {
		t.Error("blake2b digest changed between calls")
	}
}

func TestBlake2bLongKey(t *testing.T) {
	_, err := NewBlake2b[string](make([]byte, 65), String)
	if err == nil {
		t.Error("key longer than 64 bytes was accepted")
	}
}

// TestIntWidths tests that integers of different widths share an encoding.
func TestIntWidths(t *testing.T) {
	a := Int[int32](nil, -5)
	b := Int[int64](nil, -5)
	if string(a) != string(b) {
		t.Error("int32 and int64 encode differently")
	}
	if len(Int[uint8](nil, 1)) != 8 {
		t.Error("integers are not encoded into 8 bytes")
	}
}

type path []string

func (p path) String() string {
	return strings.Join(p, "/")
}

func TestStringer(t *testing.T) {
	h := NewSipHash[path](testKey, Stringer[path])
	if h.Sum64(path{"a", "b"}) != NewSipHash[string](testKey, String).Sum64("a/b") {
		t.Error("Stringer did not encode String()")
	}
}

func BenchmarkRandom(b *testing.B) {
	h := NewRandom[string]()
	s := strings.Repeat("0123456789", 10)
	b.ReportAllocs()
	b.SetBytes(int64(len(s)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		h.Sum64(s)
	}
}

func BenchmarkSipHash(b *testing.B) {
	h := NewSipHash[string](testKey, String)
	s := strings.Repeat("0123456789", 10)
	b.ReportAllocs()
	b.SetBytes(int64(len(s)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		h.Sum64(s)
	}
}

func BenchmarkXXHash(b *testing.B) {
	h := NewXXHash[string](String)
	s := strings.Repeat("0123456789", 10)
	b.ReportAllocs()
	b.SetBytes(int64(len(s)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		h.Sum64(s)
	}
}

func BenchmarkBlake2b(b *testing.B) {
	h, _ := NewBlake2b[string](nil, String)
	s := strings.Repeat("0123456789", 10)
	b.ReportAllocs()
	b.SetBytes(int64(len(s)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		h.Sum64(s)
	}
}
