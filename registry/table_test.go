package registry

import (
	"math/rand"
	"testing"

	"github.com/cespare/xxhash/v2"
)

func mix(k uint64) uint64 {
	// splitmix64 finalizer
	k ^= k >> 30
	k *= 0xbf58476d1ce4e5b9
	k ^= k >> 27
	k *= 0x94d049bb133111eb
	k ^= k >> 31
	return k
}

// constant sends every key to the same bucket, so every operation has to
// walk the probe sequence.
func constant(k uint64) uint64 {
	return 0
}

func TestEmpty(t *testing.T) {
	for _, c := range []int{-1, 0, 1, 1000} {
		tb := New(c)
		if tb.Len() != 0 {
			t.Error("new table is not empty")
		}
		if tb.Lookup(0, mix) || tb.Lookup(42, mix) {
			t.Error("new table reports a key")
		}
	}
}

func TestInsertIfAbsent(t *testing.T) {
	tb := New(0)
	if !tb.InsertIfAbsent(1, mix) {
		t.Error("first insert of 1 reported present")
	}
	if tb.InsertIfAbsent(1, mix) {
		t.Error("second insert of 1 reported absent")
	}
	if !tb.InsertIfAbsent(0, mix) {
		t.Error("first insert of 0 reported present")
	}
	if !tb.Lookup(0, mix) || !tb.Lookup(1, mix) || tb.Lookup(2, mix) {
		t.Error("incorrect lookup result")
	}
	if tb.Len() != 2 {
		t.Error("table has", tb.Len(), "keys, should be 2")
	}
}

// TestProbing tests that keys sharing a home bucket are told apart by the
// equality predicate, across growth.
func TestProbing(t *testing.T) {
	tb := New(0)
	for i := uint64(0); i < 100; i++ {
		if !tb.InsertIfAbsent(i, constant) {
			t.Fatal("key", i, "reported present before insertion")
		}
	}
	for i := uint64(0); i < 100; i++ {
		if tb.InsertIfAbsent(i, constant) {
			t.Error("key", i, "reported absent after insertion")
		}
	}
	if tb.Lookup(100, constant) {
		t.Error("lookup found a key never inserted")
	}
}

func TestEntry(t *testing.T) {
	tb := New(4)
	e := tb.Entry(7, mix, Equal)
	if e.Occupied() {
		t.Error("entry of missing key is occupied")
	}
	if !e.Insert() {
		t.Error("insert on vacant entry failed")
	}
	e = tb.Entry(7, mix, Equal)
	if !e.Occupied() {
		t.Error("entry of present key is vacant")
	}
	if e.Insert() {
		t.Error("insert on occupied entry succeeded")
	}
	if tb.Len() != 1 {
		t.Error("table has", tb.Len(), "keys, should be 1")
	}
}

// TestEntryEquality tests that Entry honors a caller-supplied predicate.
func TestEntryEquality(t *testing.T) {
	tb := New(0)
	tb.InsertIfAbsent(0x10, constant)
	sameLowByte := func(a, b uint64) bool { return a&0xf == b&0xf }
	if !tb.Entry(0x20, constant, sameLowByte).Occupied() {
		t.Error("predicate was not used to match keys")
	}
	if tb.Entry(0x20, constant, Equal).Occupied() {
		t.Error("Equal matched different keys")
	}
}

// TestCapacity tests that a presized table never grows while filled to its
// capacity.
func TestCapacity(t *testing.T) {
	for _, n := range []int{1, 7, 8, 100, 1000, 4096} {
		tb := New(n)
		if tb.Cap() < n {
			t.Error("table sized for", n, "only holds", tb.Cap())
		}
		for i := 0; i < n; i++ {
			tb.InsertIfAbsent(uint64(i), mix)
		}
		if tb.Grows() != 0 {
			t.Error("table sized for", n, "grew", tb.Grows(), "times")
		}
	}
}

func TestGrowth(t *testing.T) {
	tb := New(0)
	keys := make([]uint64, 10000)
	for i := range keys {
		keys[i] = rand.Uint64()
		tb.InsertIfAbsent(keys[i], mix)
	}
	if tb.Grows() == 0 {
		t.Error("empty table did not grow")
	}
	for _, k := range keys {
		if !tb.Lookup(k, mix) {
			t.Fatal("key lost after growth")
		}
	}
	if tb.Len() > len(keys) {
		t.Error("table holds more keys than were inserted")
	}
}

func TestClone(t *testing.T) {
	tb := New(0)
	tb.InsertIfAbsent(1, mix)
	c := tb.Clone()
	c.InsertIfAbsent(2, mix)
	if tb.Lookup(2, mix) {
		t.Error("insert into clone changed the original")
	}
	if !c.Lookup(1, mix) {
		t.Error("clone lost a key")
	}
	if New(0).Clone().Len() != 0 {
		t.Error("clone of empty table is not empty")
	}
}

func TestAppendKeys(t *testing.T) {
	tb := New(0)
	want := map[uint64]bool{3: true, 5: true, 0: true}
	for k := range want {
		tb.InsertIfAbsent(k, mix)
	}
	got := tb.AppendKeys(nil)
	if len(got) != len(want) {
		t.Fatal("got", len(got), "keys, should be", len(want))
	}
	for _, k := range got {
		if !want[k] {
			t.Error("unexpected key", k)
		}
	}
}

func xxhashUint64(k uint64) uint64 {
	var b [8]byte
	for i := range b {
		b[i] = byte(k >> (8 * i))
	}
	return xxhash.Sum64(b[:])
}

func BenchmarkInsertIfAbsent(b *testing.B) {
	keys := make([]uint64, 1<<16)
	for i := range keys {
		keys[i] = rand.Uint64()
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tb := New(len(keys))
		for _, k := range keys {
			tb.InsertIfAbsent(k, xxhashUint64)
		}
	}
}

func BenchmarkLookup(b *testing.B) {
	tb := New(1 << 16)
	for i := 0; i < 1<<16; i++ {
		tb.InsertIfAbsent(rand.Uint64(), mix)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tb.Lookup(uint64(i), mix)
	}
}
