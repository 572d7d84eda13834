// Package workload generates the value streams used to exercise and
// benchmark seen-sets.
package workload

import (
	"math/rand"
	"strconv"
	"strings"

	"github.com/yangl1996/soliton"
)

// LongStrings returns n distinct strings. String i is the decimal form of i
// repeated i times, and that repeated 10 times, so they get long quickly;
// string 0 is empty.
func LongStrings(n int) []string {
	res := make([]string, n)
	for i := range res {
		res[i] = strings.Repeat(strings.Repeat(strconv.Itoa(i), i), 10)
	}
	return res
}

// Tree returns the paths of a complete tree with the given depth and
// fanout in depth-first walk order, starting with the root "/".
func Tree(depth, fanout int) []string {
	res := []string{"/"}
	var walk func(prefix string, level int)
	walk = func(prefix string, level int) {
		if level == depth {
			return
		}
		for i := 0; i < fanout; i++ {
			p := prefix + "d" + strconv.Itoa(i)
			res = append(res, p)
			walk(p+"/", level+1)
		}
	}
	walk("/", 0)
	return res
}

// Distribution draws positive integers.
type Distribution interface {
	Uint64() uint64
}

// NewSoliton returns a robust soliton distribution over [1, k]. Most draws
// are 1 or 2 with a long tail, which mimics how often a walker reaches the
// same path through links.
func NewSoliton(rng *rand.Rand, k uint64) Distribution {
	return soliton.NewRobustSoliton(rng, k, 0.03, 0.5)
}

// Revisits emits every value as many times as dist says, at least once, and
// shuffles the result with rng.
func Revisits[T any](values []T, dist Distribution, rng *rand.Rand) []T {
	res := make([]T, 0, len(values))
	for _, v := range values {
		n := dist.Uint64()
		if n == 0 {
			n = 1
		}
		for j := uint64(0); j < n; j++ {
			res = append(res, v)
		}
	}
	rng.Shuffle(len(res), func(i, j int) {
		res[i], res[j] = res[j], res[i]
	})
	return res
}

// Fixed is a Distribution that always draws the same number.
type Fixed uint64

func (f Fixed) Uint64() uint64 {
	return uint64(f)
}
